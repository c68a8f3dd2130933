package battle

import "goldbox-rpg/pkg/fx"

// EffectStateStore is the set of per-instance `$effect_state` Objects
// live in a Battle, keyed by EffectRef. An ActiveEffectInstance already
// owns its own State pointer (instance.go); the store exists so built-ins
// that need to reach *another* instance's state by reference —
// `volatile_effect_state`, `side_condition_effect_state` — can look it up
// without the instance holding a pointer to anything beyond its own ref
// (spec.md §9's reentrancy discipline: resolve through the store each
// time, never cache the pointer across a built-in boundary).
type EffectStateStore struct {
	instances map[EffectRef]*ActiveEffectInstance
	next      EffectRef
}

// NewEffectStateStore creates an empty store.
func NewEffectStateStore() *EffectStateStore {
	return &EffectStateStore{instances: make(map[EffectRef]*ActiveEffectInstance)}
}

// Place registers a new ActiveEffectInstance and returns its freshly
// allocated EffectRef.
func (s *EffectStateStore) Place(eff *Effect, scope ScopeKind, owner int, source MonRef, sourceEffect EffectRef) *ActiveEffectInstance {
	s.next++
	ref := s.next
	inst := NewActiveEffectInstance(ref, eff, scope, owner, source, sourceEffect)
	s.instances[ref] = inst
	return inst
}

// Get resolves ref to its live instance, or nil if the instance has ended
// and been removed. Callers must re-resolve on every use rather than
// retaining the returned pointer across a built-in call.
func (s *EffectStateStore) Get(ref EffectRef) *ActiveEffectInstance {
	return s.instances[ref]
}

// State returns the `$effect_state` Object for ref, or nil if the
// instance no longer exists (e.g. it ended earlier in the same dispatch).
func (s *EffectStateStore) State(ref EffectRef) *fx.Object {
	inst := s.instances[ref]
	if inst == nil {
		return nil
	}
	return inst.State
}

// Remove ends and deallocates the instance identified by ref. The
// instance's state becomes unreachable; any EffectRef value still held
// elsewhere now resolves to nil via Get, which callers must check.
func (s *EffectStateStore) Remove(ref EffectRef) {
	delete(s.instances, ref)
}

// ForScope iterates the live instances attached to the given scope/owner
// pair, the enumeration the dispatcher uses to collect candidates for an
// event (spec.md §4.5 step 1: "gather every ActiveEffectInstance whose
// scope could plausibly contribute"). The returned order follows Go's
// unspecified map iteration and varies run to run; sortCandidates resolves
// ties by a key derived from each candidate's identity rather than its
// position in this slice, so that variation never changes dispatch order.
func (s *EffectStateStore) ForScope(scope ScopeKind, owner int) []*ActiveEffectInstance {
	var out []*ActiveEffectInstance
	for _, inst := range s.instances {
		if inst.Scope == scope && inst.Owner == owner {
			out = append(out, inst)
		}
	}
	return out
}

// All returns every live instance, used by the Field-scope and
// "all active effects" dispatch paths (e.g. a global event like weather
// change that every instance may want to observe via a generic hook). As
// with ForScope, iteration order follows the backing map and is not
// dispatch-significant: sortCandidates's identity-keyed tie-break is what
// makes dispatch order independent of it.
func (s *EffectStateStore) All() []*ActiveEffectInstance {
	out := make([]*ActiveEffectInstance, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, inst)
	}
	return out
}
