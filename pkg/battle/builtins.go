package battle

import (
	"goldbox-rpg/pkg/fx"
)

// BuiltinFunc is the signature every built-in in spec.md §4.3 implements:
// given the owning Battle, the calling EvalContext (for Lookup/EffectState
// access a built-in needs beyond its arguments), and the already-evaluated
// argument list, return the call's result or a *fx.RuntimeError for a
// built-in precondition failure. A BuiltinFunc never panics on a caller
// mistake; out-of-range argument counts or kinds return a typed error the
// dispatcher treats as a transparent callback failure (spec.md §4.6).
type BuiltinFunc func(b *Battle, ctx *fx.EvalContext, args []fx.Value) (fx.Value, error)

// defaultBuiltins returns the closed built-in registry every Battle is
// constructed with. Built-ins are grouped by concern across
// builtins_*.go; this function is the single place that wires them all
// into the name table CallExpr nodes dispatch against.
func defaultBuiltins() map[string]BuiltinFunc {
	reg := make(map[string]BuiltinFunc, 64)
	registerRNGBuiltins(reg)
	registerStateBuiltins(reg)
	registerQueryBuiltins(reg)
	registerDamageBuiltins(reg)
	registerLogBuiltins(reg)
	registerMoveBuiltins(reg)
	return reg
}

// --- shared argument helpers, used across builtins_*.go ---

func argCount(args []fx.Value, n int) error {
	if len(args) < n {
		return typeErrorf("expected at least %d argument(s), got %d", n, len(args))
	}
	return nil
}

func argMon(args []fx.Value, i int) (MonRef, error) {
	if i >= len(args) {
		return NoMon, typeErrorf("missing mon argument at position %d", i)
	}
	return monFromValue(args[i])
}

func argSide(args []fx.Value, i int) (SideRef, error) {
	if i >= len(args) {
		return NoSide, typeErrorf("missing side argument at position %d", i)
	}
	return sideFromValue(args[i])
}

func argActiveMove(args []fx.Value, i int) (ActiveMoveRef, error) {
	if i >= len(args) {
		return NoActiveMove, typeErrorf("missing active move argument at position %d", i)
	}
	return activeMoveFromValue(args[i])
}

func argInt(args []fx.Value, i int) (int64, error) {
	if i >= len(args) || args[i].Kind() != fx.KindInt {
		return 0, typeErrorf("expected integer argument at position %d", i)
	}
	return args[i].AsInt(), nil
}

func argString(args []fx.Value, i int) (string, error) {
	if i >= len(args) || args[i].Kind() != fx.KindString {
		return "", typeErrorf("expected string argument at position %d", i)
	}
	return args[i].AsString(), nil
}

func optInt(args []fx.Value, i int, dflt int64) int64 {
	if i >= len(args) || args[i].Kind() != fx.KindInt {
		return dflt
	}
	return args[i].AsInt()
}
