package battle

import "testing"

func newTestBattleWithOneSideEach(t *testing.T) (*Battle, MonRef, MonRef) {
	t.Helper()
	cfg := DefaultEngineConfig()
	b := NewBattle(cfg)

	p1 := b.AddPlayer("p1", "Player One")
	p2 := b.AddPlayer("p2", "Player Two")
	s1 := b.AddSide(p1)
	s2 := b.AddSide(p2)

	m1 := b.AddMon(s1, &Mon{Name: "Alpha", HP: 100, MaxHP: 100, Moves: []MonMove{
		{Move: EffectID{Kind: KindMove, ID: "tackle"}, PP: DefaultMovePP, MaxPP: DefaultMovePP},
	}})
	m2 := b.AddMon(s2, &Mon{Name: "Beta", HP: 100, MaxHP: 100})

	b.Side(s1).Active = []MonRef{m1}
	b.Mon(m1).Position = 0
	b.Side(s2).Active = []MonRef{m2}
	b.Mon(m2).Position = 0

	return b, m1, m2
}

func TestValidateChoiceMoveRequiresKnownMove(t *testing.T) {
	b, m1, _ := newTestBattleWithOneSideEach(t)

	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoiceMove, MoveID: "tackle", Target: -1}); err != nil {
		t.Errorf("expected a known move to validate, got %v", err)
	}
	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoiceMove, MoveID: "hyperbeam"}); err == nil {
		t.Error("expected an error for a move the mon does not know")
	}
	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoiceMove}); err == nil {
		t.Error("expected an error for a move choice with no move id")
	}
}

func TestValidateChoiceRejectsFaintedMon(t *testing.T) {
	b, m1, _ := newTestBattleWithOneSideEach(t)
	b.Mon(m1).Fainted = true

	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoicePass}); err == nil {
		t.Error("expected an error for a fainted mon's choice")
	}
}

func TestValidateChoiceSwitchRequiresValidBenchMon(t *testing.T) {
	b, m1, _ := newTestBattleWithOneSideEach(t)

	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoiceSwitch}); err == nil {
		t.Error("expected an error for a switch choice with no target")
	}

	s1 := b.Mon(m1).Side
	bench := b.AddMon(s1, &Mon{Name: "Gamma", HP: 50, MaxHP: 50})
	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoiceSwitch, SwitchTo: bench}); err != nil {
		t.Errorf("expected a healthy bench mon to validate, got %v", err)
	}

	if err := b.ValidateChoice("p1", Choice{Mon: m1, Kind: ChoiceSwitch, SwitchTo: m1}); err == nil {
		t.Error("expected an error for switching into the already-active mon")
	}
}

func TestResolveTargetPositionSignedConvention(t *testing.T) {
	b, m1, m2 := newTestBattleWithOneSideEach(t)

	if got := b.resolveTargetPosition(m1, 0); got != NoMon {
		t.Errorf("target 0 should resolve to NoMon, got %v", got)
	}
	if got := b.resolveTargetPosition(m1, -1); got != m2 {
		t.Errorf("target -1 should resolve to the opposing side's first slot (%v), got %v", m2, got)
	}
	if got := b.resolveTargetPosition(m1, 1); got != m1 {
		t.Errorf("target 1 should resolve to the actor's own side's first slot (%v), got %v", m1, got)
	}
}
