package battle

import "goldbox-rpg/pkg/fx"

// registerStateBuiltins wires the built-ins that place, replace, or
// remove ActiveEffectInstances: statuses, volatiles, side conditions, and
// the stat-boost table (spec.md §4.3).
func registerStateBuiltins(reg map[string]BuiltinFunc) {
	reg["set_status"] = biSetStatus
	reg["cure_status"] = biCureStatus
	reg["add_volatile"] = biAddVolatile
	reg["remove_volatile"] = biRemoveVolatile
	reg["add_side_condition"] = biAddSideCondition
	reg["remove_side_condition"] = biRemoveSideCondition
	reg["volatile_effect_state"] = biVolatileEffectState
	reg["side_condition_effect_state"] = biSideConditionEffectState
	reg["boost_table"] = biBoostTable
	reg["boostable_stats"] = biBoostableStats
	reg["get_boost"] = biGetBoost
	reg["set_boost"] = biSetBoost
	reg["append"] = biAppend
	reg["remove"] = biRemove
}

// placeOn starts an ActiveEffectInstance for eff on a Mon scope and fires
// its Start callback against the freshly placed instance alone (spec.md
// §3's "Start" lifecycle hook observes only the instance being placed,
// not the whole scope), then fires Duration so the instance can override
// its catalog-default lifetime (spec.md §3, §4.5's SetStatus sequence:
// "…SetStatus→Duration→Start→AfterSetStatus"). A Duration callback
// returning an int relays the new turn count; anything else leaves the
// default untouched.
func (b *Battle) placeOn(scope ScopeKind, owner int, eff *Effect, source MonRef, sourceEffect EffectRef, bindings map[string]fx.Value) *ActiveEffectInstance {
	inst := b.EffectStates.Place(eff, scope, owner, source, sourceEffect)
	if inst.HasCallback("Start") {
		_, _ = b.Dispatcher.Dispatch("Start", []*ActiveEffectInstance{inst}, bindings, "", fx.Undefined, false)
	}
	if inst.HasCallback("Duration") {
		res, err := b.Dispatcher.Dispatch("Duration", []*ActiveEffectInstance{inst}, bindings, "relay", fx.Undefined, false)
		if err == nil && res.Relay.Kind() == fx.KindInt {
			inst.Duration = NewDuration(int(res.Relay.AsInt()))
		}
	}
	return inst
}

// restartExisting fires inst's Restart callback when a placement built-in
// finds the named effect already active on the target scope rather than
// placing a new instance (spec.md §3: "Restart … fires instead of Start
// if the instance already exists"; §8: "count of active instances is
// unchanged").
func (b *Battle) restartExisting(inst *ActiveEffectInstance, bindings map[string]fx.Value) {
	if inst != nil && inst.HasCallback("Restart") {
		_, _ = b.Dispatcher.Dispatch("Restart", []*ActiveEffectInstance{inst}, bindings, "", fx.Undefined, false)
	}
}

func biSetStatus(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	statusID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	eff, ok := b.Catalog.Get(KindStatus, statusID)
	if !ok {
		return fx.Undefined, typeErrorf("set_status: unknown status %q", statusID)
	}
	if mon.Status.ID != "" {
		return fx.Bool(false), nil
	}
	inst := b.placeOn(ScopeMon, int(target), eff, target, NoEffect, map[string]fx.Value{"mon": target.Value()})
	mon.Status = eff.ID
	_ = inst
	return fx.Bool(true), nil
}

func biCureStatus(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil || mon.Status.ID == "" {
		return fx.Bool(false), nil
	}
	for _, inst := range b.EffectStates.ForScope(ScopeMon, int(target)) {
		if inst.Effect.ID == mon.Status {
			b.EffectStates.Remove(inst.Ref)
			break
		}
	}
	mon.Status = EffectID{}
	return fx.Bool(true), nil
}

func biAddVolatile(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	volID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	norm := NormalizeIdentifier(volID)
	if mon.HasVolatile(norm) {
		b.restartExisting(b.EffectStates.Get(mon.Volatiles[norm]), map[string]fx.Value{"mon": target.Value()})
		return fx.Bool(false), nil
	}
	eff, ok := b.Catalog.Get(KindVolatile, volID)
	if !ok {
		return fx.Undefined, typeErrorf("add_volatile: unknown volatile %q", volID)
	}
	source := NoMon
	if len(args) > 2 {
		if s, err := argMon(args, 2); err == nil {
			source = s
		}
	}
	inst := b.placeOn(ScopeMon, int(target), eff, source, NoEffect, map[string]fx.Value{"mon": target.Value()})
	if mon.Volatiles == nil {
		mon.Volatiles = make(map[string]EffectRef)
	}
	mon.Volatiles[norm] = inst.Ref
	return fx.Bool(true), nil
}

func biRemoveVolatile(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	volID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	norm := NormalizeIdentifier(volID)
	ref, ok := mon.Volatiles[norm]
	if !ok {
		return fx.Bool(false), nil
	}
	b.EffectStates.Remove(ref)
	delete(mon.Volatiles, norm)
	return fx.Bool(true), nil
}

func biAddSideCondition(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	side, err := argSide(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	condID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	s := b.Side(side)
	if s == nil {
		return fx.Bool(false), nil
	}
	norm := NormalizeIdentifier(condID)
	if s.HasSideCondition(norm) {
		b.restartExisting(b.EffectStates.Get(s.SideConditions[norm]), map[string]fx.Value{"side": side.Value()})
		return fx.Bool(false), nil
	}
	eff, ok := b.Catalog.Get(KindSideCondition, condID)
	if !ok {
		return fx.Undefined, typeErrorf("add_side_condition: unknown side condition %q", condID)
	}
	inst := b.placeOn(ScopeSide, int(side), eff, NoMon, NoEffect, map[string]fx.Value{"side": side.Value()})
	s.SideConditions[norm] = inst.Ref
	return fx.Bool(true), nil
}

func biRemoveSideCondition(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	side, err := argSide(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	condID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	s := b.Side(side)
	if s == nil {
		return fx.Bool(false), nil
	}
	norm := NormalizeIdentifier(condID)
	ref, ok := s.SideConditions[norm]
	if !ok {
		return fx.Bool(false), nil
	}
	b.EffectStates.Remove(ref)
	delete(s.SideConditions, norm)
	return fx.Bool(true), nil
}

// volatile_effect_state(mon, volatile_id) -> the $effect_state object of
// the named volatile on mon, borrowed by reference (spec.md §9: resolved
// fresh through the store, never a retained pointer).
func biVolatileEffectState(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	volID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Undefined, nil
	}
	ref, ok := mon.Volatiles[NormalizeIdentifier(volID)]
	if !ok {
		return fx.Undefined, nil
	}
	state := b.EffectStates.State(ref)
	if state == nil {
		return fx.Undefined, nil
	}
	return fx.Obj(state), nil
}

func biSideConditionEffectState(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	side, err := argSide(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	condID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	s := b.Side(side)
	if s == nil {
		return fx.Undefined, nil
	}
	ref, ok := s.SideConditions[NormalizeIdentifier(condID)]
	if !ok {
		return fx.Undefined, nil
	}
	state := b.EffectStates.State(ref)
	if state == nil {
		return fx.Undefined, nil
	}
	return fx.Obj(state), nil
}

// boost_table() -> an object mapping every boostable stat name to its
// canonical order index, the shape ModifyBoosts callbacks iterate over.
func biBoostTable(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	obj := fx.NewObject()
	for s := Stat(0); s < statCount; s++ {
		obj.Set(s.String(), fx.Int(int64(s)))
	}
	return fx.Obj(obj), nil
}

func biBoostableStats(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	items := make([]fx.Value, 0, statCount)
	for s := Stat(0); s < statCount; s++ {
		items = append(items, fx.Str(s.String()))
	}
	return fx.List(items...), nil
}

func statFromName(name string) (Stat, bool) {
	for s := Stat(0); s < statCount; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

func biGetBoost(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	statName, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	stat, ok := statFromName(statName)
	if mon == nil || !ok {
		return fx.Int(0), nil
	}
	return fx.Int(int64(mon.Boost(stat))), nil
}

func biSetBoost(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 3); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	statName, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	value, err := argInt(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	stat, ok := statFromName(statName)
	if mon == nil || !ok {
		return fx.Bool(false), nil
	}
	mon.SetBoost(stat, int(value))
	return fx.Bool(true), nil
}

// append(list, value) -> a new list with value appended. FX lists are
// value types (Value.AsList aliases internal storage but List() copies on
// construction), so built-ins that "mutate" a list always return a fresh
// Value for the caller to reassign.
func biAppend(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	if args[0].Kind() != fx.KindList {
		return fx.Undefined, typeErrorf("append: expected a list, got %s", args[0].Kind())
	}
	items := append(append([]fx.Value{}, args[0].AsList()...), args[1])
	return fx.List(items...), nil
}

// remove(list, value) -> a new list with the first occurrence of value
// removed, or the original list unchanged if not present.
func biRemove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	if args[0].Kind() != fx.KindList {
		return fx.Undefined, typeErrorf("remove: expected a list, got %s", args[0].Kind())
	}
	src := args[0].AsList()
	out := make([]fx.Value, 0, len(src))
	removed := false
	for _, v := range src {
		if !removed && valuesEqual(v, args[1]) {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return fx.List(out...), nil
}

func valuesEqual(a, b fx.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case fx.KindBool:
		return a.AsBool() == b.AsBool()
	case fx.KindInt:
		return a.AsInt() == b.AsInt()
	case fx.KindString:
		return a.AsString() == b.AsString()
	case fx.KindHandle:
		return a.AsHandle() == b.AsHandle()
	default:
		return a.String() == b.String()
	}
}
