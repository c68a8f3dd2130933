package battle

import (
	"strconv"

	"goldbox-rpg/pkg/fx"
)

// playerLabel resolves the player identifier a battle log entry names
// mon's owner by, per the `name,player,position` log field convention
// (spec.md §6).
func (b *Battle) playerLabel(mon *Mon) string {
	side := b.Side(mon.Side)
	if side == nil {
		return ""
	}
	player := b.Player(side.Player)
	if player == nil {
		return ""
	}
	return player.ID
}

// registerDamageBuiltins wires the HP/boost-mutating built-ins: damage,
// direct_damage, heal, boost, disable_move, do_not_animate_last_move,
// apply_recoil_damage, apply_drain (spec.md §4.3).
func registerDamageBuiltins(reg map[string]BuiltinFunc) {
	reg["damage"] = biDamage
	reg["direct_damage"] = biDirectDamage
	reg["heal"] = biHeal
	reg["boost"] = biBoost
	reg["disable_move"] = biDisableMove
	reg["do_not_animate_last_move"] = biDoNotAnimateLastMove
	reg["apply_recoil_damage"] = biApplyRecoilDamage
	reg["apply_drain"] = biApplyDrain
}

// applyDamage subtracts amount from target's HP, clamped to [0, HP],
// marking the Mon fainted at zero and recording a log entry. It returns
// the actual amount removed (which may be less than requested if the
// target had less remaining HP than the request).
func (b *Battle) applyDamage(target MonRef, amount int) int {
	mon := b.Mon(target)
	if mon == nil || mon.Fainted || amount <= 0 {
		return 0
	}
	if amount > mon.HP {
		amount = mon.HP
	}
	mon.HP -= amount
	player := b.playerLabel(mon)
	rec := NewLogRecord("damage").Field(MonField(mon.Name, player, mon.Position)).KV("hp", strconv.Itoa(mon.HP))
	b.Log.Append(rec)
	if mon.HP == 0 {
		mon.Fainted = true
		mon.Position = -1
		b.Log.Append(NewLogRecord("faint").Field(MonField(mon.Name, player, -1)))
	}
	return amount
}

// damage(target, amount) -> actual HP removed, firing the Damage
// broadcast on target's own Mon-scoped instances so observers (Rocky
// Helmet, Liquid Ooze, ...) can react. This built-in is the
// indirect-damage path (residual damage, Stealth Rock, poison ticks); the
// move hit loop (use_active_move in builtins_move.go) applies move damage
// and fires its own Damage broadcast without calling this built-in.
func biDamage(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	amount, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	dealt := b.applyDamage(target, int(amount))
	if dealt > 0 {
		instances := b.EffectStates.ForScope(ScopeMon, int(target))
		_, _ = b.Dispatcher.Dispatch("Damage", instances, map[string]fx.Value{
			"target": target.Value(),
			"damage": fx.Int(int64(dealt)),
		}, "damage", fx.Int(int64(dealt)), false)
	}
	return fx.Int(int64(dealt)), nil
}

// direct_damage(target, amount) -> actual HP removed, bypassing the
// Damage broadcast entirely (used for damage that must not trigger
// secondary procs, e.g. a fixed-percentage self-destruct cost).
func biDirectDamage(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	amount, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	return fx.Int(int64(b.applyDamage(target, int(amount)))), nil
}

// heal(target, amount) -> actual HP restored, clamped to MaxHP. A fainted
// target cannot be healed.
func biHeal(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	amount, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil || mon.Fainted || amount <= 0 {
		return fx.Int(0), nil
	}
	room := mon.MaxHP - mon.HP
	healed := int(amount)
	if healed > room {
		healed = room
	}
	if healed <= 0 {
		return fx.Int(0), nil
	}
	mon.HP += healed
	b.Log.Append(NewLogRecord("heal").Field(MonField(mon.Name, b.playerLabel(mon), mon.Position)).KV("hp", strconv.Itoa(mon.HP)))
	return fx.Int(int64(healed)), nil
}

// boost(target, stat_changes) -> an object of the stat-name -> actual
// delta applied, after clamping each requested change to the [-6, 6]
// boost range. stat_changes is an Object mapping stat names to signed
// integer deltas.
func biBoost(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	if args[1].Kind() != fx.KindObject {
		return fx.Undefined, typeErrorf("boost: expected an object of stat deltas, got %s", args[1].Kind())
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Obj(fx.NewObject()), nil
	}
	result := fx.NewObject()
	for _, key := range args[1].AsObject().Keys() {
		stat, ok := statFromName(key)
		if !ok {
			continue
		}
		delta, _ := args[1].AsObject().Get(key)
		if delta.Kind() != fx.KindInt {
			continue
		}
		before := mon.Boost(stat)
		mon.SetBoost(stat, before+int(delta.AsInt()))
		result.Set(key, fx.Int(int64(mon.Boost(stat)-before)))
	}
	return fx.Obj(result), nil
}

// disable_move(mon, move_id) -> true if a matching, not-already-disabled
// move slot was found and disabled.
func biDisableMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	moveID, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	norm := NormalizeIdentifier(moveID)
	for i := range mon.Moves {
		if mon.Moves[i].Move.ID == norm && !mon.Moves[i].Disabled {
			mon.Moves[i].Disabled = true
			return fx.Bool(true), nil
		}
	}
	return fx.Bool(false), nil
}

func biDoNotAnimateLastMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	if am := b.ActiveMove(ref); am != nil {
		am.NoAnimation = true
	}
	return fx.Undefined, nil
}

// apply_recoil_damage(active_move, num, den) -> recoil dealt to the
// move's source, a num/den fraction of the damage it most recently dealt
// to its target (tracked in ActiveMove.HitData).
func biApplyRecoilDamage(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 3); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	num, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	den, err := argInt(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil || den == 0 {
		return fx.Int(0), nil
	}
	hd := am.HitDataFor(am.Target)
	recoil := int(int64(hd.Damage) * num / den)
	if recoil < 1 && hd.Damage > 0 {
		recoil = 1
	}
	return fx.Int(int64(b.applyDamage(am.Source, recoil))), nil
}

// apply_drain(active_move, num, den) -> HP restored to the move's source,
// a num/den fraction of the damage it most recently dealt to its target.
func biApplyDrain(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 3); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	num, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	den, err := argInt(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil || den == 0 {
		return fx.Int(0), nil
	}
	hd := am.HitDataFor(am.Target)
	drain := int(int64(hd.Damage) * num / den)
	if drain < 1 && hd.Damage > 0 {
		drain = 1
	}
	healed, _ := biHeal(b, ctx, []fx.Value{am.Source.Value(), fx.Int(int64(drain))})
	return healed, nil
}
