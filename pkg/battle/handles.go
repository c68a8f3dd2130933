package battle

import "goldbox-rpg/pkg/fx"

// Battle entities are never addressed by pointer across a dispatch
// boundary (spec.md §9: "do not hold long-lived references across
// built-in calls; re-derive from a root handle each time"). Every handle
// below is a plain integer index into one of Battle's arenas; resolving a
// handle back to its *Mon/*Side/*ActiveMove always goes through the
// Battle root passed into the call, never through a stored pointer.

// MonRef is a stable reference to a Mon.
type MonRef int

// SideRef is a stable reference to a Side.
type SideRef int

// FieldRef is a stable reference to the (singleton) Field.
type FieldRef int

// EffectRef is a stable reference to an ActiveEffectInstance.
type EffectRef int

// ActiveMoveRef is a stable reference to a transient ActiveMove.
type ActiveMoveRef int

// PlayerRef is a stable reference to a Player.
type PlayerRef int

// NoMon, NoSide, NoEffect, NoActiveMove, NoPlayer are the zero-value "no
// reference" sentinels, matching Go's natural zero value for these types
// (index 0 is never allocated to a real entity; arenas start numbering at
// 1), so a nil-like check is simply `ref == NoMon`.
const (
	NoMon        MonRef        = 0
	NoSide       SideRef       = 0
	NoEffect     EffectRef     = 0
	NoActiveMove ActiveMoveRef = 0
	NoPlayer     PlayerRef     = 0
)

// Value converts a MonRef to its fx.Value handle representation, the form
// in which it crosses into FX programs as an input binding.
func (r MonRef) Value() fx.Value { return fx.HandleVal(fx.HandleMon, int(r)) }

// Value converts a SideRef to its fx.Value handle representation.
func (r SideRef) Value() fx.Value { return fx.HandleVal(fx.HandleSide, int(r)) }

// Value converts a FieldRef to its fx.Value handle representation.
func (r FieldRef) Value() fx.Value { return fx.HandleVal(fx.HandleField, int(r)) }

// Value converts an EffectRef to its fx.Value handle representation.
func (r EffectRef) Value() fx.Value { return fx.HandleVal(fx.HandleEffect, int(r)) }

// Value converts an ActiveMoveRef to its fx.Value handle representation.
func (r ActiveMoveRef) Value() fx.Value { return fx.HandleVal(fx.HandleActiveMove, int(r)) }

// Value converts a PlayerRef to its fx.Value handle representation.
func (r PlayerRef) Value() fx.Value { return fx.HandleVal(fx.HandlePlayer, int(r)) }

// monFromValue extracts a MonRef from an fx.Value, failing with a type
// error if v is not a Mon handle.
func monFromValue(v fx.Value) (MonRef, error) {
	if v.Kind() != fx.KindHandle || v.AsHandle().Kind != fx.HandleMon {
		return NoMon, typeErrorf("expected a mon handle, got %s", v.Kind())
	}
	return MonRef(v.AsHandle().ID), nil
}

func sideFromValue(v fx.Value) (SideRef, error) {
	if v.Kind() != fx.KindHandle || v.AsHandle().Kind != fx.HandleSide {
		return NoSide, typeErrorf("expected a side handle, got %s", v.Kind())
	}
	return SideRef(v.AsHandle().ID), nil
}

func activeMoveFromValue(v fx.Value) (ActiveMoveRef, error) {
	if v.Kind() != fx.KindHandle || v.AsHandle().Kind != fx.HandleActiveMove {
		return NoActiveMove, typeErrorf("expected an active move handle, got %s", v.Kind())
	}
	return ActiveMoveRef(v.AsHandle().ID), nil
}
