package battle

import "testing"

func TestPriorityOfFixedBrackets(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())
	p1 := b.AddPlayer("p1", "Player One")
	s1 := b.AddSide(p1)
	mon := b.AddMon(s1, &Mon{Name: "Alpha", HP: 10, MaxHP: 10})

	tests := []struct {
		kind ChoiceKind
		want int
	}{
		{ChoiceForfeit, 7},
		{ChoiceEscape, 6},
		{ChoiceSwitch, 6},
		{ChoiceItem, 5},
		{ChoicePass, -127},
	}
	for _, tt := range tests {
		if got := b.priorityOf(mon, Choice{Mon: mon, Kind: tt.kind}); got != tt.want {
			t.Errorf("priorityOf(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestSpeedOfAppliesBoost(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())
	p1 := b.AddPlayer("p1", "Player One")
	s1 := b.AddSide(p1)
	mon := b.AddMon(s1, &Mon{Name: "Alpha", HP: 10, MaxHP: 10, Stats: [5]int{0, 0, 0, 0, 100}})

	if got := b.speedOf(mon); got != 100 {
		t.Errorf("unboosted speed: got %d, want 100", got)
	}

	b.Mon(mon).SetBoost(StatSpe, 2)
	if got := b.speedOf(mon); got != 200 {
		t.Errorf("+2 speed boost should double effective speed: got %d, want 200", got)
	}
}

func TestRunTurnOrdersByPriorityThenSpeed(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())

	p1 := b.AddPlayer("p1", "Player One")
	p2 := b.AddPlayer("p2", "Player Two")
	s1 := b.AddSide(p1)
	s2 := b.AddSide(p2)

	slow := b.AddMon(s1, &Mon{Name: "Slow", HP: 10, MaxHP: 10, Stats: [5]int{0, 0, 0, 0, 10}})
	fast := b.AddMon(s2, &Mon{Name: "Fast", HP: 10, MaxHP: 10, Stats: [5]int{0, 0, 0, 0, 100}})
	b.Side(s1).Active = []MonRef{slow}
	b.Mon(slow).Position = 0
	b.Side(s2).Active = []MonRef{fast}
	b.Mon(fast).Position = 0

	b.RunTurn([]Choice{
		{Mon: slow, Kind: ChoicePass},
		{Mon: fast, Kind: ChoiceForfeit},
	})

	// ChoiceForfeit outranks ChoicePass regardless of speed, so fast
	// should have been ordered (and thus removed from PendingActors via
	// biDoMove) ahead of slow. RunTurn clears PendingActors entirely by
	// the time every action executes; this just asserts it didn't panic
	// and left the battle in a consistent state.
	if len(b.PendingActors) != 0 {
		t.Errorf("expected PendingActors to be drained after the turn, got %v", b.PendingActors)
	}
}
