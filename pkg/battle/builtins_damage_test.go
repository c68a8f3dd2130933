package battle

import (
	"testing"

	"goldbox-rpg/pkg/fx"
)

func newTestMonBattle(t *testing.T) (*Battle, MonRef) {
	t.Helper()
	b := NewBattle(DefaultEngineConfig())
	p := b.AddPlayer("p1", "Player One")
	s := b.AddSide(p)
	mon := b.AddMon(s, &Mon{Name: "Alpha", HP: 100, MaxHP: 100, Level: 50, Stats: [5]int{80, 70, 60, 60, 90}})
	b.Side(s).Active = []MonRef{mon}
	b.Mon(mon).Position = 0
	return b, mon
}

func TestBiDamageClampsAndFaints(t *testing.T) {
	b, mon := newTestMonBattle(t)

	dealt, err := biDamage(b, nil, []fx.Value{mon.Value(), fx.Int(30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dealt.AsInt() != 30 || b.Mon(mon).HP != 70 {
		t.Errorf("expected 30 dealt and 70 HP remaining, got dealt=%v hp=%d", dealt, b.Mon(mon).HP)
	}

	dealt, err = biDamage(b, nil, []fx.Value{mon.Value(), fx.Int(1000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dealt.AsInt() != 70 {
		t.Errorf("expected damage to clamp to remaining HP (70), got %v", dealt)
	}
	if !b.Mon(mon).Fainted {
		t.Error("expected the mon to be marked fainted at 0 HP")
	}
	if b.Mon(mon).Position != -1 {
		t.Error("expected a fainted mon's Position to reset to -1")
	}
}

func TestBiHealClampsToMaxHP(t *testing.T) {
	b, mon := newTestMonBattle(t)
	b.Mon(mon).HP = 90

	healed, err := biHeal(b, nil, []fx.Value{mon.Value(), fx.Int(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if healed.AsInt() != 10 || b.Mon(mon).HP != 100 {
		t.Errorf("expected heal clamped to 10 (back to MaxHP), got healed=%v hp=%d", healed, b.Mon(mon).HP)
	}
}

func TestBiHealRefusesFaintedMon(t *testing.T) {
	b, mon := newTestMonBattle(t)
	b.Mon(mon).Fainted = true
	b.Mon(mon).HP = 0

	healed, err := biHeal(b, nil, []fx.Value{mon.Value(), fx.Int(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if healed.AsInt() != 0 {
		t.Error("expected a fainted mon to be unhealable")
	}
}

func TestBiBoostClampsAndReportsActualDelta(t *testing.T) {
	b, mon := newTestMonBattle(t)
	b.Mon(mon).SetBoost(StatAtk, 5)

	deltas := fx.NewObject()
	deltas.Set("atk", fx.Int(3))
	deltas.Set("def", fx.Int(-2))

	res, err := biBoost(b, nil, []fx.Value{mon.Value(), fx.Obj(deltas)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := res.AsObject()

	atkDelta, _ := obj.Get("atk")
	if atkDelta.AsInt() != 1 {
		t.Errorf("expected atk boost to clamp at +6 (delta 1 from +5), got %v", atkDelta)
	}
	defDelta, _ := obj.Get("def")
	if defDelta.AsInt() != -2 {
		t.Errorf("expected def boost delta of -2, got %v", defDelta)
	}
	if b.Mon(mon).Boost(StatAtk) != 6 {
		t.Errorf("expected Atk boost to be clamped at 6, got %d", b.Mon(mon).Boost(StatAtk))
	}
}

func TestBiDisableMoveMarksKnownUndisabledMove(t *testing.T) {
	b, mon := newTestMonBattle(t)
	b.Mon(mon).Moves = []MonMove{{Move: EffectID{Kind: KindMove, ID: "tackle"}, PP: DefaultMovePP, MaxPP: DefaultMovePP}}

	ok, err := biDisableMove(b, nil, []fx.Value{mon.Value(), fx.Str("Tackle")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok.AsBool() {
		t.Error("expected disable_move to succeed for a known, not-yet-disabled move")
	}
	if !b.Mon(mon).Moves[0].Disabled {
		t.Error("expected the move slot to be marked disabled")
	}

	ok, err = biDisableMove(b, nil, []fx.Value{mon.Value(), fx.Str("tackle")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.AsBool() {
		t.Error("expected disable_move to report false for an already-disabled move")
	}
}

func TestBiApplyRecoilDamageAndDrain(t *testing.T) {
	b, mon := newTestMonBattle(t)
	p2 := b.AddPlayer("p2", "Player Two")
	s2 := b.AddSide(p2)
	target := b.AddMon(s2, &Mon{Name: "Beta", HP: 100, MaxHP: 100, Level: 50, Stats: [5]int{80, 70, 60, 60, 90}})

	am := &ActiveMove{Source: mon, Target: target}
	ref := b.NewActiveMoveRef(am)
	am.HitDataFor(target).Damage = 40

	b.Mon(mon).HP = 100
	recoil, err := biApplyRecoilDamage(b, nil, []fx.Value{ref.Value(), fx.Int(1), fx.Int(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recoil.AsInt() != 10 || b.Mon(mon).HP != 90 {
		t.Errorf("expected 10 recoil (1/4 of 40) and 90 HP remaining, got recoil=%v hp=%d", recoil, b.Mon(mon).HP)
	}

	b.Mon(mon).HP = 50
	drained, err := biApplyDrain(b, nil, []fx.Value{ref.Value(), fx.Int(1), fx.Int(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drained.AsInt() != 20 || b.Mon(mon).HP != 70 {
		t.Errorf("expected 20 HP drained (1/2 of 40) and 70 HP remaining, got drained=%v hp=%d", drained, b.Mon(mon).HP)
	}
}
