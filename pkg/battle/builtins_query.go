package battle

import "goldbox-rpg/pkg/fx"

// registerQueryBuiltins wires the read-only battle-state inspection
// built-ins FX programs use to decide behavior without mutating anything
// (spec.md §4.3).
func registerQueryBuiltins(reg map[string]BuiltinFunc) {
	reg["has_ability"] = biHasAbility
	reg["has_item"] = biHasItem
	reg["has_volatile"] = biHasVolatile
	reg["has_type"] = biHasType
	reg["is_ally"] = biIsAlly
	reg["is_adjacent"] = biIsAdjacent
	reg["adjacent_foes"] = biAdjacentFoes
	reg["all_active_mons"] = biAllActiveMons
	reg["move_has_flag"] = biMoveHasFlag
	reg["get_move"] = biGetMove
	reg["get_all_moves"] = biGetAllMoves
	reg["mon_in_position"] = biMonInPosition
	reg["target_location_of_mon"] = biTargetLocationOfMon
}

func biHasAbility(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	name, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	return fx.Bool(mon.Ability.ID == NormalizeIdentifier(name)), nil
}

func biHasItem(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	name, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	return fx.Bool(mon.Item.ID == NormalizeIdentifier(name)), nil
}

func biHasVolatile(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	name, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	return fx.Bool(mon.HasVolatile(NormalizeIdentifier(name))), nil
}

func biHasType(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	typeName, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Bool(false), nil
	}
	want := NormalizeIdentifier(typeName)
	for _, t := range mon.Types {
		if NormalizeIdentifier(t) == want {
			return fx.Bool(true), nil
		}
	}
	return fx.Bool(false), nil
}

func biIsAlly(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	a, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	other, err := argMon(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	ma, mb := b.Mon(a), b.Mon(other)
	if ma == nil || mb == nil {
		return fx.Bool(false), nil
	}
	return fx.Bool(ma.Side == mb.Side), nil
}

// isAdjacentPositions reports whether two active positions on their
// respective sides are adjacent: the same slot or one slot over,
// matching the common multi-mon-format adjacency rule this engine's
// catalog targets.
func isAdjacentPositions(posA, posB int) bool {
	d := posA - posB
	if d < 0 {
		d = -d
	}
	return d <= 1
}

func biIsAdjacent(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	a, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	other, err := argMon(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	ma, mb := b.Mon(a), b.Mon(other)
	if ma == nil || mb == nil || !ma.IsActive() || !mb.IsActive() {
		return fx.Bool(false), nil
	}
	if ma.Side == mb.Side {
		return fx.Bool(ma.Ref != mb.Ref && isAdjacentPositions(ma.Position, mb.Position)), nil
	}
	return fx.Bool(isAdjacentPositions(ma.Position, mb.Position)), nil
}

// adjacent_foes(mon) -> list of active opposing Mons adjacent to mon.
func biAdjacentFoes(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil || !mon.IsActive() {
		return fx.List(), nil
	}
	var out []fx.Value
	for _, side := range b.Sides {
		if side == nil || side.Ref == mon.Side {
			continue
		}
		for _, ref := range side.Active {
			foe := b.Mon(ref)
			if foe != nil && foe.IsActive() && isAdjacentPositions(mon.Position, foe.Position) {
				out = append(out, ref.Value())
			}
		}
	}
	return fx.List(out...), nil
}

// all_active_mons() -> every Mon currently occupying a battle position,
// across every side.
func biAllActiveMons(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	var out []fx.Value
	for _, side := range b.Sides {
		if side == nil {
			continue
		}
		for _, ref := range side.Active {
			if mon := b.Mon(ref); mon != nil && mon.IsActive() {
				out = append(out, ref.Value())
			}
		}
	}
	return fx.List(out...), nil
}

func biMoveHasFlag(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	ref, err := argActiveMove(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	flag, err := argString(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	am := b.ActiveMove(ref)
	if am == nil {
		return fx.Bool(false), nil
	}
	return fx.Bool(am.HasFlag(flag)), nil
}

func monMoveObject(mm MonMove) fx.Value {
	obj := fx.NewObject()
	obj.Set("move", fx.Str(mm.Move.ID))
	obj.Set("pp", fx.Int(int64(mm.PP)))
	obj.Set("max_pp", fx.Int(int64(mm.MaxPP)))
	obj.Set("disabled", fx.Bool(mm.Disabled))
	return fx.Obj(obj)
}

// get_move(mon, index) -> the move-slot object at index, or undefined if
// out of range.
func biGetMove(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	idx, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil || idx < 0 || int(idx) >= len(mon.Moves) {
		return fx.Undefined, nil
	}
	return monMoveObject(mon.Moves[idx]), nil
}

// get_all_moves(mon) -> list of every move-slot object mon knows.
func biGetAllMoves(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.List(), nil
	}
	out := make([]fx.Value, len(mon.Moves))
	for i, mm := range mon.Moves {
		out[i] = monMoveObject(mm)
	}
	return fx.List(out...), nil
}

// mon_in_position(side, position) -> the Mon handle occupying that slot,
// or undefined if the slot is currently empty.
func biMonInPosition(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 2); err != nil {
		return fx.Undefined, err
	}
	side, err := argSide(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	pos, err := argInt(args, 1)
	if err != nil {
		return fx.Undefined, err
	}
	s := b.Side(side)
	if s == nil {
		return fx.Undefined, nil
	}
	ref := s.MonAt(int(pos))
	if ref == NoMon {
		return fx.Undefined, nil
	}
	return ref.Value(), nil
}

// target_location_of_mon(mon) -> {side, position} object describing
// mon's current battle slot, used by move-targeting built-ins to resolve
// a signed relative-position choice into an absolute slot.
func biTargetLocationOfMon(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error) {
	if err := argCount(args, 1); err != nil {
		return fx.Undefined, err
	}
	target, err := argMon(args, 0)
	if err != nil {
		return fx.Undefined, err
	}
	mon := b.Mon(target)
	if mon == nil {
		return fx.Undefined, nil
	}
	obj := fx.NewObject()
	obj.Set("side", mon.Side.Value())
	obj.Set("position", fx.Int(int64(mon.Position)))
	return fx.Obj(obj), nil
}
