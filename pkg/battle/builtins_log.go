package battle

import "goldbox-rpg/pkg/fx"

// registerLogBuiltins wires the battle-log emission built-ins and the
// move-hit-data bookkeeping helpers (spec.md §4.3, §6).
func registerLogBuiltins(reg map[string]BuiltinFunc) {
	reg["log"] = biLog
	reg["save_move_hit_data_flag_against_target"] = biSaveMoveHitDataFlag
	reg["move_hit_data_flag_against_target"] = biMoveHitDataFlag
}

// log(title, field, field, ...) -> appends one record to the battle log:
// title followed by each remaining argument rendered as a field. A
// string argument of the form "key:value" (produced by an FX program via
// plain string concatenation) becomes a `key:value` field; a Mon handle
// argument renders as the `name,player,position` Mon-reference field
// (spec.md §6); anything else renders via its debug String form as a
// bare flag.
func biLog(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	title, err := argString(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	rec := NewLogRecord(title)
	for _, v := range args[1:] {
		rec.Field(b.renderLogField(v))
	}
	b.Log.Append(rec)
	return fx.Undefined, nil
}

// renderLogField renders one log() argument to its wire-form field text.
func (b *Battle) renderLogField(v fx.Value) string {
	if v.Kind() == fx.KindHandle && v.AsHandle().Kind == fx.HandleMon {
		if mon := b.Mon(MonRef(v.AsHandle().ID)); mon != nil {
			return MonField(mon.Name, b.playerLabel(mon), mon.Position)
		}
	}
	return v.String()
}

// save_move_hit_data_flag_against_target(active_move, target, flag,
// value) -> records a named flag in the move's per-target hit-data bag,
// readable back via move_hit_data_flag_against_target from a later phase
// of the same hit loop (e.g. "substitute_blocked", "crit_boosted").
func biSaveMoveHitDataFlag(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 4); err != nil {
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
	flag, err := argString(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil {
		return fx.Undefined, nil
	}
	hd := am.HitDataFor(target)
	if hd.Flags == nil {
		hd.Flags = make(map[string]fx.Value)
	}
	hd.Flags[flag] = args[3]
	return fx.Undefined, nil
}

// move_hit_data_flag_against_target(active_move, target, flag) -> the
// previously saved flag value, or Undefined if never set.
func biMoveHitDataFlag(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 3); err != nil {
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
	flag, err := argString(args, 2)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil {
		return fx.Undefined, nil
	}
	hd := am.HitDataFor(target)
	if hd.Flags == nil {
		return fx.Undefined, nil
	}
	v, ok := hd.Flags[flag]
	if !ok {
		return fx.Undefined, nil
	}
	return v, nil
}
