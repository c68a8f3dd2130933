package battle

import "goldbox-rpg/pkg/fx"

// ActiveMove is the transient, mutable record of one move resolving right
// now: the move's catalog Effect plus the working copy of its numeric
// properties a callback chain (ModifyDamage, ModifyAccuracy, ...) may
// adjust for this use only, never touching the catalog Effect itself.
// Allocated via Battle.NewActiveMoveRef for the duration of one move's
// resolution and released via Battle.ReleaseActiveMove afterward (spec.md
// §4.5's "use_active_move"/"calculate_damage" built-ins operate against
// one of these).
type ActiveMove struct {
	Ref ActiveMoveRef

	Move   *Effect
	Source MonRef
	Target MonRef

	BasePower int
	Accuracy  int // 0 means "always hits"; -1 means "never misses, bypasses accuracy check"
	Priority  int
	Category  string // "physical" | "special" | "status"
	Type      string

	CritRatio int

	// HitData records per-target bookkeeping a move's own callbacks need
	// to remember across the hit loop's phases (crit roll, type
	// effectiveness, whether this hit was the one that knocked a target
	// out), keyed by target so a multi-target move keeps them distinct.
	HitData map[MonRef]*MoveHitData

	// Flags mirror the catalog Effect's flags for the duration of this
	// use, letting a ModifySecondaryEffects callback add or strip a flag
	// (e.g. "contact") for this use only.
	Flags map[string]bool

	NoAnimation bool
	Cancelled   bool
}

// MoveHitData is one target's bookkeeping for the in-flight ActiveMove.
type MoveHitData struct {
	Crit              bool
	TypeEffectiveness int
	Damage            int

	// Flags carries ad hoc named values a callback chain stashes against
	// this (move, target) pair for a later phase of the same hit loop to
	// read back (save_move_hit_data_flag_against_target).
	Flags map[string]fx.Value
}

// NewActiveMove builds an ActiveMove from a catalog move Effect, copying
// its flags so in-flight adjustments never mutate the shared catalog
// entry.
func NewActiveMove(move *Effect, source, target MonRef) *ActiveMove {
	flags := make(map[string]bool, len(move.Flags))
	for k, v := range move.Flags {
		flags[k] = v
	}
	am := &ActiveMove{
		Move:    move,
		Source:  source,
		Target:  target,
		Flags:   flags,
		HitData: make(map[MonRef]*MoveHitData),
	}
	if move.MoveData != nil {
		am.BasePower = move.MoveData.BasePower
		am.Accuracy = move.MoveData.Accuracy
		am.Priority = move.MoveData.Priority
		am.Category = move.MoveData.Category
		am.Type = move.MoveData.Type
		am.CritRatio = move.MoveData.CritRatio
	}
	return am
}

// HitDataFor returns (creating if absent) the MoveHitData for target.
func (am *ActiveMove) HitDataFor(target MonRef) *MoveHitData {
	hd, ok := am.HitData[target]
	if !ok {
		hd = &MoveHitData{}
		am.HitData[target] = hd
	}
	return hd
}

// HasFlag reports whether this use of the move currently carries flag.
func (am *ActiveMove) HasFlag(flag string) bool {
	return am.Flags[flag]
}
