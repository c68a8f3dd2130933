package fx

// Host is the battle-side collaborator injected into every evaluation. FX
// itself implements no built-in functions; every CallExpr — whether reached
// as a statement or through the func_call(...) value wrapper — is resolved
// against Host.Call, so that the entire built-in registry (spec.md §4.3:
// random/chance/sample, damage, add_volatile, run_event, ...) lives in the
// package that owns battle state (pkg/battle), not in the language runtime.
type Host interface {
	// Call invokes the built-in named name with the given already-
	// evaluated arguments, in the given EvalContext. It returns the
	// call's result Value (Undefined if the built-in has no return
	// value) or a *RuntimeError for a built-in precondition failure.
	Call(ctx *EvalContext, name string, args []Value) (Value, error)
}

// EvalContext is the scoped evaluation context threaded through one
// Program.Eval call: its Bindings map is shared by every statement in the
// program (assignments are program-scoped — block scoping is absent by
// design, per spec.md §4.3) and its EffectState is the live, mounted
// $effect_state Object of the ActiveEffectInstance the program runs under
// (or a borrowed view of another instance's state, for cross-referencing
// built-ins like volatile_effect_state).
type EvalContext struct {
	Bindings    map[string]Value
	EffectState *Object
	Host        Host
}

// NewEvalContext creates a fresh, empty-bindings EvalContext. EffectState
// may be nil for programs that never touch $effect_state (the first Lookup
// of $effect_state, whether for a read or for a member write in
// evalAssign, replaces a nil EffectState with a new empty Object).
func NewEvalContext(state *Object, host Host) *EvalContext {
	return &EvalContext{
		Bindings:    make(map[string]Value),
		EffectState: state,
		Host:        host,
	}
}

// Bind installs a well-known input binding (e.g. $target, $damage,
// $source) before evaluation. Bind does not enforce the "same primitive
// kind on reassignment" rule (that rule applies to evaluator-performed
// assignments within the program, per spec.md §3); a Host is free to seed
// whatever shape it needs.
func (c *EvalContext) Bind(name string, v Value) {
	c.Bindings[name] = v
}

// Lookup returns the value bound to name, or Undefined if name is unbound.
// Reading an unbound variable is not an error: spec.md documents Undefined
// as "never stored in a typed binding", which this implementation reads as
// governing what assignment may produce, not what a bare read may observe;
// a program referencing an event-specific input that this event category
// did not supply simply observes Undefined, exactly as member access on an
// already-Undefined receiver does.
func (c *EvalContext) Lookup(name string) Value {
	if name == "effect_state" {
		return Obj(c.effectStateObject())
	}
	v, ok := c.Bindings[name]
	if !ok {
		return Undefined
	}
	return v
}

func (c *EvalContext) effectStateObject() *Object {
	if c.EffectState == nil {
		c.EffectState = NewObject()
	}
	return c.EffectState
}
