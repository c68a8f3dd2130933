package battle

import "goldbox-rpg/pkg/fx"

// registerMoveBuiltins wires the move-resolution built-ins: preparing an
// ActiveMove, running the hit loop's damage formula, and the generic
// run_event family a callback uses to re-enter the dispatcher mid-hit
// (spec.md §4.3, §4.5).
func registerMoveBuiltins(reg map[string]BuiltinFunc) {
	reg["prepare_direct_move"] = biPrepareDirectMove
	reg["new_active_move_from_local_data"] = biNewActiveMoveFromLocalData
	reg["run_event"] = biRunEvent
	reg["run_event_for_mon"] = biRunEventForMon
	reg["run_event_on_move"] = biRunEventOnMove
	reg["calculate_damage"] = biCalculateDamage
	reg["calculate_confusion_damage"] = biCalculateConfusionDamage
	reg["use_active_move"] = biUseActiveMove
	reg["use_move"] = biUseMove
	reg["do_move"] = biDoMove
	reg["cancel_move"] = biCancelMove
	reg["any_mon_will_move_this_turn"] = biAnyMonWillMoveThisTurn
}

// prepare_direct_move(source, target, move_id) -> a fresh ActiveMove
// handle for move_id, bypassing PP/move-slot bookkeeping (the path a
// fixed secondary move like a recoil-free "hit again" effect uses,
// distinct from use_move's full move-selection flow).
func biPrepareDirectMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 3); err != nil {
		return fx.Undefined, err
	}
	source, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	moveID, err := argString(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	move, ok := b.Catalog.Get(KindMove, moveID)
	if !ok {
		return fx.Undefined, typeErrorf("prepare_direct_move: unknown move %q", moveID)
	}
	am := NewActiveMove(move, source, target)
	ref := b.NewActiveMoveRef(am)
	return ref.Value(), nil
}

// new_active_move_from_local_data(active_move, move_id, source, target)
// -> looks up move_id inside the embedded LocalCatalog of active_move's
// catalog Effect (the first argument is an ActiveMove handle),
// falling back to the global move catalog if the effect carries no
// matching local entry (spec.md §4.6's open question on local_data,
// resolved that way — e.g. Bide's internally defined counter-move).
func biNewActiveMoveFromLocalData(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 4); err != nil {
		return fx.Undefined, err
	}
	effRef, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	moveID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	source, err := argMon(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 3)
	if err != nil {
		return fx.Undefined, err
	}
	norm := NormalizeIdentifier(moveID)
	var move *Effect
	if holder := b.ActiveMove(effRef); holder != nil && holder.Move != nil && holder.Move.LocalData != nil {
		move = holder.Move.LocalData.Moves[norm]
	}
	if move == nil {
		var ok bool
		move, ok = b.Catalog.Get(KindMove, moveID)
		if !ok {
			return fx.Undefined, typeErrorf("new_active_move_from_local_data: unknown move %q", moveID)
		}
	}
	am := NewActiveMove(move, source, target)
	ref := b.NewActiveMoveRef(am)
	return ref.Value(), nil
}

// battleWideInstances gathers every live instance sharing scope with mon:
// its own Mon-scoped instances, its side's Side-scoped instances, and the
// Field's instances — the set run_event's battle-wide variant dispatches
// against (spec.md doesn't enumerate run_event's exact collection rule;
// this mirrors §4.5 step 1's "every instance whose scope could plausibly
// contribute").
func (b *Battle) battleWideInstances(mon MonRef) []*ActiveEffectInstance {
	m := b.Mon(mon)
	if m == nil {
		return b.EffectStates.ForScope(ScopeField, int(NoMon))
	}
	out := b.EffectStates.ForScope(ScopeMon, int(mon))
	out = append(out, b.EffectStates.ForScope(ScopeSide, int(m.Side))...)
	out = append(out, b.EffectStates.ForScope(ScopeField, int(NoMon))...)
	return out
}

// run_event(event_name, mon) -> fires event across every instance that
// could plausibly observe mon (its own effects, its side's, the field's),
// returning the relayed value.
func biRunEvent(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	event, err := argString(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon, err := argMon(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	res, err := b.Dispatcher.Dispatch(event, b.battleWideInstances(mon), map[string]fx.Value{"mon": mon.Value()}, "relay", fx.Undefined, false)
	if err != nil {
		return fx.Undefined, err
	}
	return res.Relay, nil
}

// run_event_for_mon(event_name, mon) -> the narrower variant: fires event
// only across instances placed directly on mon (its status, volatiles,
// ability, item), skipping its side and the field.
func biRunEventForMon(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	event, err := argString(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon, err := argMon(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	instances := b.EffectStates.ForScope(ScopeMon, int(mon))
	res, err := b.Dispatcher.Dispatch(event, instances, map[string]fx.Value{"mon": mon.Value()}, "relay", fx.Undefined, false)
	if err != nil {
		return fx.Undefined, err
	}
	return res.Relay, nil
}

// run_event_on_move(event_name, active_move) -> fires event against the
// move's own catalog callbacks (a move's OnTryHit/OnModifyDamage entries
// live on the move Effect itself, not on a placed ActiveEffectInstance,
// so this builds a transient unregistered instance purely to reuse the
// ordinary dispatch pipeline for the one callback chain).
func biRunEventOnMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	event, err := argString(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil {
		return fx.Undefined, nil
	}
	inst := NewActiveEffectInstance(NoEffect, am.Move, ScopeMon, int(am.Source), am.Source, NoEffect)
	bindings := WithExtra(ApplyingEffectContext(am.Source, am.Target, ref), map[string]fx.Value{})
	res, err := b.Dispatcher.Dispatch(event, []*ActiveEffectInstance{inst}, bindings, "relay", fx.Undefined, false)
	if err != nil {
		return fx.Undefined, err
	}
	return res.Relay, nil
}

// boostMultiplier returns the stat-stage multiplier as a reduced
// fraction, the standard halves-based boost table (stage 0 is 2/2,
// +1 is 3/2, -1 is 2/3, clamped at +6/-6 to 8/2 and 2/8).
func boostMultiplier(stage int) (int, int) {
	if stage >= 0 {
		return 2 + stage, 2
	}
	return 2, 2 - stage
}

// calculate_damage(active_move, target) -> the physical/special damage
// active_move would deal to target this hit, folding in the source's
// attacking stat, the target's defending stat, boost stages, a random
// roll, and a crit multiplier if the hit loop already marked this target
// critical. Type effectiveness and weather are intentionally left to the
// Effectiveness/WeatherModifyDamage dispatch events (spec.md §4.5) rather
// than computed inline here, since those tables are catalog-supplied data
// this core doesn't own.
func biCalculateDamage(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil {
		return fx.Int(0), nil
	}
	if am.Category == "status" || am.BasePower <= 0 {
		return fx.Int(0), nil
	}
	source := b.Mon(am.Source)
	dest := b.Mon(target)
	if source == nil || dest == nil {
		return fx.Int(0), nil
	}

	atkStat, defStat := StatAtk, StatDef
	if am.Category == "special" {
		atkStat, defStat = StatSpA, StatSpD
	}
	atkNum, atkDen := boostMultiplier(source.Boost(atkStat))
	defNum, defDen := boostMultiplier(dest.Boost(defStat))
	hd := am.HitDataFor(target)
	if hd.Crit {
		// A critical hit ignores a defensive boost and a negative
		// attacking boost, per the canonical crit rule.
		if defNum < defDen {
			defNum, defDen = 2, 2
		}
		if atkNum < atkDen {
			atkNum, atkDen = 2, 2
		}
	}
	atk := source.Stats[atkStat] * atkNum / atkDen
	def := dest.Stats[defStat] * defNum / defDen
	if def <= 0 {
		def = 1
	}

	level := source.Level
	if level <= 0 {
		level = 1
	}
	base := (2*level/5 + 2) * am.BasePower * atk / def / 50
	base += 2
	if hd.Crit {
		base = base * 3 / 2
	}
	var randomPct int
	switch b.Config.BaseDamageRandomization {
	case RandomizationMin:
		randomPct = 85
	case RandomizationMax:
		randomPct = 100
	default:
		randomPct = 85 + b.RNG.Intn(16) // 85..100 inclusive
	}
	base = base * randomPct / 100
	if base < 1 {
		base = 1
	}

	bindings := WithExtra(ApplyingEffectContext(am.Source, target, ref), map[string]fx.Value{"damage": fx.Int(int64(base))})
	instances := b.battleWideInstances(target)
	for _, event := range []string{"WeatherModifyDamage", "Effectiveness", "ModifyDamage"} {
		res, err := b.Dispatcher.Dispatch(event, instances, bindings, "damage", fx.Int(int64(base)), false)
		if err != nil {
			return fx.Undefined, err
		}
		if res.Relay.Kind() == fx.KindInt {
			base = int(res.Relay.AsInt())
			bindings["damage"] = res.Relay
		}
	}
	if base < 0 {
		base = 0
	}
	hd.Damage = base
	return fx.Int(int64(base)), nil
}

// calculate_confusion_damage(target) -> the fixed-formula typeless
// physical hit a confused Mon deals to itself (level-scaled, base power
// 40, target's own Atk vs its own Def, no STAB/type chart/crit).
func biCalculateConfusionDamage(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Int(0), nil
	}
	level := mon.Level
	if level <= 0 {
		level = 1
	}
	atkNum, atkDen := boostMultiplier(mon.Boost(StatAtk))
	defNum, defDen := boostMultiplier(mon.Boost(StatDef))
	atk := mon.Stats[StatAtk] * atkNum / atkDen
	def := mon.Stats[StatDef] * defNum / defDen
	if def <= 0 {
		def = 1
	}
	const confusionBasePower = 40
	dmg := (2*level/5+2)*confusionBasePower*atk/def/50 + 2
	randomPct := 85 + b.RNG.Intn(16)
	dmg = dmg * randomPct / 100
	if dmg < 1 {
		dmg = 1
	}
	return fx.Int(int64(dmg)), nil
}

// use_active_move(active_move) -> resolves one already-prepared
// ActiveMove against its single target: accuracy check, damage
// calculation and application for a damaging category, then the Hit/
// AfterHit broadcasts. Returns whether the move connected. A cancelled
// ActiveMove (cancel_move) never reaches the accuracy check.
func biUseActiveMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil || am.Cancelled {
		return fx.Bool(false), nil
	}
	target := b.Mon(am.Target)
	source := b.Mon(am.Source)
	if target == nil || source == nil || target.Fainted {
		return fx.Bool(false), nil
	}

	bindings := ApplyingEffectContext(am.Source, am.Target, ref)
	if am.Accuracy > 0 {
		accNum, accDen := boostMultiplier(source.Boost(StatAccuracy))
		evaNum, evaDen := boostMultiplier(target.Boost(StatEvasion))
		chanceNum := am.Accuracy * accNum * evaDen
		chanceDen := 100 * accDen * evaNum
		if !b.RNG.Chance(chanceNum, chanceDen) {
			b.Log.Append(NewLogRecord("miss").Field(MonField(source.Name, b.playerLabel(source), source.Position)).Field(MonField(target.Name, b.playerLabel(target), target.Position)))
			return fx.Bool(false), nil
		}
	}

	if am.Category != "status" && am.BasePower > 0 {
		dmgVal, err := biCalculateDamage(b, ctx, []fx.Value{ref.Value(), am.Target.Value()})
		if err != nil {
			return fx.Undefined, err
		}
		dealt := b.applyDamage(am.Target, int(dmgVal.AsInt()))
		am.HitDataFor(am.Target).Damage = dealt
		if dealt > 0 {
			if _, err := b.Dispatcher.Dispatch("Damage", b.battleWideInstances(am.Target), WithExtra(bindings, map[string]fx.Value{"damage": fx.Int(int64(dealt))}), "damage", fx.Int(int64(dealt)), false); err != nil {
				return fx.Undefined, err
			}
		}
	}

	if _, err := b.Dispatcher.Dispatch("Hit", b.battleWideInstances(am.Target), bindings, "relay", fx.Undefined, false); err != nil {
		return fx.Undefined, err
	}
	if _, err := b.Dispatcher.Dispatch("AfterHit", b.battleWideInstances(am.Target), bindings, "relay", fx.Undefined, false); err != nil {
		return fx.Undefined, err
	}
	return fx.Bool(true), nil
}

// use_move(source, move_id, target) -> the move-selection entry point: it
// prepares an ActiveMove for move_id, runs BeforeMove/UseMove/TryMove,
// resolves the hit via use_active_move, logs a `move` record, and
// releases the ActiveMove. Returns whether the move connected.
func biUseMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 3); err != nil {
		return fx.Undefined, err
	}
	source, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	moveID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	move, ok := b.Catalog.Get(KindMove, moveID)
	if !ok {
		return fx.Undefined, typeErrorf("use_move: unknown move %q", moveID)
	}
	srcMon := b.Mon(source)
	if srcMon == nil || srcMon.Fainted {
		return fx.Bool(false), nil
	}

	am := NewActiveMove(move, source, target)
	ref := b.NewActiveMoveRef(am)
	defer b.ReleaseActiveMove(ref)
	srcMon.LastMove = move.ID

	bindings := ApplyingEffectContext(source, target, ref)
	b.Log.Append(NewLogRecord("move").
		Field(MonField(srcMon.Name, b.playerLabel(srcMon), srcMon.Position)).
		KV("move", move.Name))

	for _, event := range []string{"BeforeMove", "UseMove", "TryMove"} {
		res, err := b.Dispatcher.Dispatch(event, b.battleWideInstances(source), bindings, "relay", fx.Undefined, false)
		if err != nil {
			return fx.Undefined, err
		}
		if res.Stopped && res.Relay.Kind() == fx.KindBool && !res.Relay.AsBool() {
			return fx.Bool(false), nil
		}
	}

	hit, err := biUseActiveMove(b, ctx, []fx.Value{ref.Value()})
	if err != nil {
		return fx.Undefined, err
	}
	if _, err := b.Dispatcher.Dispatch("AfterMove", b.battleWideInstances(source), bindings, "relay", fx.Undefined, false); err != nil {
		return fx.Undefined, err
	}
	return hit, nil
}

// do_move(mon) -> consumes mon's pending turn action, marking it as
// having acted (the scheduler populates PendingActors at the start of
// each turn and removes entries as each Mon's action resolves). Returns
// false if mon was not queued to act.
func biDoMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	mon, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	for i, ref := range b.PendingActors {
		if ref == mon {
			b.PendingActors = append(b.PendingActors[:i], b.PendingActors[i+1:]...)
			return fx.Bool(true), nil
		}
	}
	return fx.Bool(false), nil
}

// cancel_move(active_move) -> marks the ActiveMove cancelled, so a
// subsequent use_active_move call against the same handle becomes a
// no-op (e.g. a Flinch or a failed TryMove check cancelling a queued
// action).
func biCancelMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	if am := b.ActiveMove(ref); am != nil {
		am.Cancelled = true
	}
	return fx.Undefined, nil
}

// any_mon_will_move_this_turn() -> true while the scheduler's
// PendingActors queue still holds an unresolved action, the check a
// Pursuit-style "does my target still get to move" callback needs.
func biAnyMonWillMoveThisTurn(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	return fx.Bool(len(b.PendingActors) > 0), nil
}
