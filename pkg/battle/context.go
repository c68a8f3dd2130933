package battle

import "goldbox-rpg/pkg/fx"

// DispatchContext carries everything needed to turn one ActiveEffectInstance
// callback firing into an *fx.EvalContext: the owning Battle (so the Host
// can resolve handles and run built-ins), the instance whose `$effect_state`
// is mounted for the duration of the call, and the event-specific input
// bindings (spec.md §4.3's `$target`, `$source`, `$damage`, ... — which
// names are present varies per event, per spec.md §4.2/§4.5).
//
// A DispatchContext is built fresh for each callback firing and discarded
// immediately after; nothing holds a DispatchContext across a built-in call
// (spec.md §9).
type DispatchContext struct {
	Battle   *Battle
	Instance *ActiveEffectInstance

	// bindings are the event-specific input variables installed into the
	// EvalContext ahead of evaluation. The mounted `$effect_state` is
	// always Instance's own state.
	bindings map[string]fx.Value
}

// NewDispatchContext seeds a DispatchContext for firing inst's callback for
// event on b, with the given already-evaluated event-specific bindings.
func NewDispatchContext(b *Battle, inst *ActiveEffectInstance, bindings map[string]fx.Value) *DispatchContext {
	return &DispatchContext{Battle: b, Instance: inst, bindings: bindings}
}

// EvalContext builds the *fx.EvalContext this dispatch should evaluate
// under: the instance's live `$effect_state`, the battle as Host, and the
// supplied bindings installed ahead of evaluation.
func (dc *DispatchContext) EvalContext() *fx.EvalContext {
	ec := fx.NewEvalContext(dc.Instance.State, dc.Battle)
	for name, v := range dc.bindings {
		ec.Bind(name, v)
	}
	return ec
}

// ApplyingEffectContext builds the bindings for a move/ability/item
// callback fired while `$source` is acting against `$target` — the most
// common dispatch shape (OnHit, OnTry, OnModifyDamage, ...).
func ApplyingEffectContext(source, target MonRef, move ActiveMoveRef) map[string]fx.Value {
	b := map[string]fx.Value{
		"source": source.Value(),
		"target": target.Value(),
	}
	if move != NoActiveMove {
		b["move"] = move.Value()
	}
	return b
}

// SideEffectContext builds the bindings for a side-condition callback
// (e.g. Reflect's OnSideDamage), scoped to the side the condition lives on
// plus whichever mon triggered the check.
func SideEffectContext(side SideRef, mon MonRef) map[string]fx.Value {
	return map[string]fx.Value{
		"side": side.Value(),
		"mon":  mon.Value(),
	}
}

// FieldEffectContext builds the bindings for a field-scoped callback
// (weather, terrain, pseudo-weather) that still needs a subject mon in
// scope, e.g. weather's OnWeatherMon.
func FieldEffectContext(mon MonRef) map[string]fx.Value {
	return map[string]fx.Value{
		"mon": mon.Value(),
	}
}

// WithExtra returns a copy of base with additional bindings merged in,
// letting a caller layer event-specific values (e.g. `$damage`, `$status`)
// on top of one of the shape helpers above without mutating the original
// map.
func WithExtra(base map[string]fx.Value, extra map[string]fx.Value) map[string]fx.Value {
	merged := make(map[string]fx.Value, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
