package battle

import "goldbox-rpg/pkg/fx"

// ActiveEffectInstance is a placed Effect: the live, mutable record created
// when a move, ability, item, status, volatile, side/slot condition,
// weather, terrain, or pseudo-weather is attached to a scope. It owns the
// `$effect_state` store (spec.md §3, §6) the instance's programs read and
// write across dispatches, and the Duration that governs its lifetime.
type ActiveEffectInstance struct {
	Ref EffectRef

	Effect *Effect
	Scope  ScopeKind
	Owner  int // MonRef, SideRef, or FieldRef depending on Scope; Slot uses SideRef plus Position

	// Position disambiguates a Slot-scoped instance (e.g. a slot
	// condition like Wish) from its owning Side when more than one
	// position shares that side.
	Position int

	SourceMon    MonRef
	SourceEffect EffectRef // the effect instance that caused this one to be placed, or NoEffect

	Duration Duration

	// State is the live `$effect_state` object; every read/write during
	// dispatch mutates this pointer directly, so no separate commit step
	// exists between "evaluate a callback" and "the state persists"
	// (spec.md §6: "state changes made during a callback's evaluation are
	// visible to that instance's next dispatch").
	State *fx.Object

	callbacks map[string][]*Callback
}

// NewActiveEffectInstance places eff onto a scope, seeding its
// `$effect_state` to an empty Object and its Duration to the effect's
// catalog default.
func NewActiveEffectInstance(ref EffectRef, eff *Effect, scope ScopeKind, owner int, source MonRef, sourceEffect EffectRef) *ActiveEffectInstance {
	return &ActiveEffectInstance{
		Ref:          ref,
		Effect:       eff,
		Scope:        scope,
		Owner:        owner,
		SourceMon:    source,
		SourceEffect: sourceEffect,
		Duration:     eff.DefaultDuration(),
		State:        fx.NewObject(),
		callbacks:    eff.ResolvedCallbacks(),
	}
}

// Callbacks returns the instance's resolved (Effect ∪ Condition) callback
// table, keyed by event name, the set the dispatcher scans when collecting
// candidates for an event.
func (inst *ActiveEffectInstance) Callbacks(event string) []*Callback {
	return inst.callbacks[event]
}

// HasCallback reports whether the instance registers any handler for event,
// letting the dispatcher skip instances with nothing to contribute before
// paying for a scope/suppression check.
func (inst *ActiveEffectInstance) HasCallback(event string) bool {
	return len(inst.callbacks[event]) > 0
}

// Identity returns the (kind, id) pair used for parsed-program cache keys
// and diagnostic dedup, per spec.md §3/§4.4.
func (inst *ActiveEffectInstance) Identity() EffectID {
	return inst.Effect.ID
}
