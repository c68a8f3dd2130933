package battle

import (
	"encoding/json"

	"goldbox-rpg/pkg/fx"
)

// Callback is one registered (event, program) pair on an Effect or its
// Condition overlay, carrying the ordering metadata spec.md §3 sorts
// dispatch candidates by.
type Callback struct {
	Event string `json:"event"`

	// Order, Priority, SubOrder default per-event (Order), to 0
	// (Priority), and to 0 (SubOrder) when absent from the catalog
	// entry; HasOrder distinguishes "absent, use the event's default"
	// from an explicit 0.
	Order      int  `json:"order,omitempty"`
	HasOrder   bool `json:"-"`
	Priority   int  `json:"priority,omitempty"`
	SubOrder   int  `json:"sub_order,omitempty"`

	// Raw is the not-yet-parsed JSON program; Program is filled in by
	// the parsed-program cache on first dispatch of this callback and
	// reused thereafter (spec.md §4.4).
	Raw     json.RawMessage `json:"program"`
	Program *fx.Program     `json:"-"`
}

// Condition is the optional sub-effect carried by a catalog Effect,
// supplying the callbacks and default duration used once the Effect is
// placed on a scope as an ActiveEffectInstance (Start/Restart/End/Duration
// and friends live here, not on the bare Effect, per spec.md §3).
type Condition struct {
	Callbacks       map[string][]*Callback `json:"callbacks,omitempty"`
	DefaultDuration *Duration              `json:"-"`
	NoCopy          bool                   `json:"no_copy,omitempty"`
}

// LocalCatalog is an effect's embedded private sub-catalog (spec.md §4.6
// open question: "local_data... look up a move id inside the effect's
// embedded catalog; if absent, fall back to the global catalog" — e.g.
// Bide's internally-defined move).
type LocalCatalog struct {
	Moves map[string]*Effect `json:"moves,omitempty"`
}

// Effect is the immutable, catalog-supplied definition of a move, ability,
// item, status, volatile, side/slot condition, weather, terrain, or
// pseudo-weather: spec.md §3's `(kind, id)`-identified Effect.
type Effect struct {
	ID    EffectID
	Name  string          `json:"name"`
	Flags map[string]bool `json:"flags,omitempty"`

	// MoveData is populated only for KindMove entries (and move entries
	// embedded in a LocalCatalog): the numeric move properties
	// prepare_direct_move/new_active_move_from_local_data copy onto a
	// fresh ActiveMove. Every other effect kind leaves this nil.
	MoveData *MoveData `json:"move,omitempty"`

	Callbacks map[string][]*Callback `json:"callbacks,omitempty"`
	Condition *Condition             `json:"condition,omitempty"`
	LocalData *LocalCatalog          `json:"local_data,omitempty"`
}

// MoveData is the catalog-supplied numeric data for a move Effect,
// mirrored onto an ActiveMove's working copy when the move is prepared
// for use (spec.md §4.5's hit loop reads BasePower/Accuracy/Category/Type
// off that working copy, never off the catalog Effect directly, so a
// ModifyDamage-family callback can adjust one use without touching data
// shared by every future use of the move).
type MoveData struct {
	BasePower int    `json:"base_power,omitempty"`
	Accuracy  int    `json:"accuracy,omitempty"` // 0 means "always hits"; -1 "never misses, bypasses the accuracy check"
	Priority  int    `json:"priority,omitempty"`
	Category  string `json:"category,omitempty"` // "physical" | "special" | "status"
	Type      string `json:"type,omitempty"`
	CritRatio int    `json:"crit_ratio,omitempty"`
}

// HasFlag reports whether the effect carries the named flag (used
// throughout dispatch, e.g. move_has_flag).
func (e *Effect) HasFlag(name string) bool {
	if e == nil || e.Flags == nil {
		return false
	}
	return e.Flags[name]
}

// ResolvedCallbacks merges an Effect's own callback table with its
// Condition overlay's, the table an ActiveEffectInstance actually
// dispatches against. Condition callbacks take precedence for events both
// define — Condition is the "this effect, once active" behavior, per
// spec.md §3 ("its Condition overlay").
func (e *Effect) ResolvedCallbacks() map[string][]*Callback {
	merged := make(map[string][]*Callback, len(e.Callbacks))
	for event, cbs := range e.Callbacks {
		merged[event] = cbs
	}
	if e.Condition != nil {
		for event, cbs := range e.Condition.Callbacks {
			merged[event] = cbs
		}
	}
	return merged
}

// DefaultDuration returns the Condition's default duration, or an
// indefinite Duration if the effect declares none (AddVolatile/SetStatus
// etc. still fire Duration afterward, which a program may override).
func (e *Effect) DefaultDuration() Duration {
	if e.Condition != nil && e.Condition.DefaultDuration != nil {
		return *e.Condition.DefaultDuration
	}
	return Forever
}
