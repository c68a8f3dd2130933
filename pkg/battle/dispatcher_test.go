package battle

import (
	"encoding/json"
	"testing"

	"goldbox-rpg/pkg/fx"
)

func callbackProgram(t *testing.T, event string, stmts ...string) *Callback {
	t.Helper()
	raw, err := json.Marshal(stmts)
	if err != nil {
		t.Fatalf("failed to marshal program: %v", err)
	}
	return &Callback{Event: event, Raw: raw}
}

func TestDispatchNoCandidatesReturnsInitial(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())
	res, err := b.Dispatcher.Dispatch("SomeEvent", nil, nil, "relay", fx.Int(5), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stopped {
		t.Error("dispatch with no candidates should not report stopped")
	}
	if res.Relay.Kind() != fx.KindInt || res.Relay.AsInt() != 5 {
		t.Errorf("expected the initial relay value to pass through unchanged, got %v", res.Relay)
	}
}

func TestDispatchAppliesCallbackReturnValue(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())
	eff := &Effect{ID: EffectID{Kind: KindItem, ID: "lifeorb"}, Name: "Life Orb"}
	inst := b.EffectStates.Place(eff, ScopeMon, 1, NoMon, NoEffect)
	inst.callbacks = map[string][]*Callback{
		"ModifyDamage": {callbackProgram(t, "ModifyDamage", "return 99")},
	}

	res, err := b.Dispatcher.Dispatch("ModifyDamage", []*ActiveEffectInstance{inst}, map[string]fx.Value{}, "damage", fx.Int(10), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Relay.Kind() != fx.KindInt || res.Relay.AsInt() != 99 {
		t.Errorf("expected the callback's returned value to overwrite the relay, got %v", res.Relay)
	}
}

func TestDispatchStopsOnFalseSentinel(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())
	eff := &Effect{ID: EffectID{Kind: KindAbility, ID: "damp"}, Name: "Damp"}
	inst := b.EffectStates.Place(eff, ScopeMon, 1, NoMon, NoEffect)
	inst.callbacks = map[string][]*Callback{
		"TryMove": {callbackProgram(t, "TryMove", "return false")},
	}

	res, err := b.Dispatcher.Dispatch("TryMove", []*ActiveEffectInstance{inst}, map[string]fx.Value{}, "relay", fx.Undefined, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Stopped {
		t.Error("a callback returning false should stop dispatch")
	}
	if res.Relay.Kind() != fx.KindBool || res.Relay.AsBool() != false {
		t.Errorf("expected relay false on a stopping sentinel, got %v", res.Relay)
	}
}

func TestFilterSuppressedSkipsSuppressedAbility(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())

	ability := &Effect{ID: EffectID{Kind: KindAbility, ID: "intimidate"}, Name: "Intimidate"}
	abilityInst := b.EffectStates.Place(ability, ScopeMon, 1, NoMon, NoEffect)
	abilityInst.callbacks = map[string][]*Callback{
		"Start": {callbackProgram(t, "Start", "return true")},
	}

	suppressor := &Effect{ID: EffectID{Kind: KindStatus, ID: "gastroacid"}, Name: "Gastro Acid"}
	suppressorInst := b.EffectStates.Place(suppressor, ScopeMon, 1, NoMon, NoEffect)
	suppressorInst.callbacks = map[string][]*Callback{
		"SuppressMonAbility": {callbackProgram(t, "SuppressMonAbility", "return true")},
	}

	cs := b.Dispatcher.Collect("Start", []*ActiveEffectInstance{abilityInst})
	if len(cs) != 1 {
		t.Fatalf("expected Collect to find the ability's Start callback, got %d", len(cs))
	}

	filtered := b.Dispatcher.filterSuppressed("Start", cs)
	if len(filtered) != 0 {
		t.Error("a suppressed ability's callback should be filtered out once its SuppressMonAbility check is true")
	}
}

func TestFilterSuppressedLeavesNonSuppressibleKindsAlone(t *testing.T) {
	b := NewBattle(DefaultEngineConfig())

	move := &Effect{ID: EffectID{Kind: KindMove, ID: "tackle"}, Name: "Tackle"}
	moveInst := b.EffectStates.Place(move, ScopeMon, 1, NoMon, NoEffect)
	moveInst.callbacks = map[string][]*Callback{
		"Hit": {callbackProgram(t, "Hit", "return true")},
	}

	cs := b.Dispatcher.Collect("Hit", []*ActiveEffectInstance{moveInst})
	filtered := b.Dispatcher.filterSuppressed("Hit", cs)
	if len(filtered) != 1 {
		t.Error("a move's callback is never suppressible and should pass straight through")
	}
}

func TestSortCandidatesTieBreakIsOrderIndependent(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Seed = 42
	b := NewBattle(cfg)

	var instances []*ActiveEffectInstance
	for i := 0; i < 5; i++ {
		eff := &Effect{ID: EffectID{Kind: KindAbility, ID: "ability"}, Name: "Ability"}
		inst := b.EffectStates.Place(eff, ScopeMon, i, NoMon, NoEffect)
		instances = append(instances, inst)
	}

	def := lookupEvent("SomeTiedEvent")
	same := func(order []int) []EffectRef {
		var cs []candidate
		for _, idx := range order {
			cs = append(cs, candidate{instance: instances[idx], callback: &Callback{Event: "SomeTiedEvent"}, slot: 0})
		}
		sortCandidates(cs, b.RNG, def)
		refs := make([]EffectRef, len(cs))
		for i, c := range cs {
			refs[i] = c.instance.Ref
		}
		return refs
	}

	forward := same([]int{0, 1, 2, 3, 4})
	reversed := same([]int{4, 3, 2, 1, 0})

	if len(forward) != len(reversed) {
		t.Fatalf("expected equal-length results, got %d and %d", len(forward), len(reversed))
	}
	for i := range forward {
		if forward[i] != reversed[i] {
			t.Errorf("tie-break order depends on input order at position %d: forward=%v reversed=%v", i, forward, reversed)
		}
	}
}

func TestSuppressibleKindOf(t *testing.T) {
	tests := []struct {
		kind EffectKind
		want string
	}{
		{KindAbility, "ability"},
		{KindItem, "item"},
		{KindWeather, "weather"},
		{KindTerrain, "terrain"},
		{KindMove, ""},
		{KindStatus, ""},
	}
	for _, tt := range tests {
		if got := suppressibleKindOf(tt.kind); got != tt.want {
			t.Errorf("suppressibleKindOf(%v) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
