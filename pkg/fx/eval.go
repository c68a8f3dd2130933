package fx

// signal is the control-flow outcome of executing a statement or block:
// normal fallthrough, an in-flight return unwinding the whole program, or a
// break/continue unwinding to the nearest enclosing foreach.
type signal int

const (
	sigNone signal = iota
	sigReturn
	sigBreak
	sigContinue
)

// Eval runs the program to completion (or to its first `return`) against
// ctx, returning the program's result value (Undefined if it fell off the
// end, or returned with no value) or the *RuntimeError that aborted it.
// Per spec.md §4.6, a RuntimeError aborts only this program; the caller
// (pkg/battle's dispatcher) treats the callback as transparent.
func (p *Program) Eval(ctx *EvalContext) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				result, err = Undefined, re
				return
			}
			panic(r)
		}
	}()
	sig, val, err := evalStmts(ctx, p.Stmts)
	if err != nil {
		return Undefined, err
	}
	if sig == sigReturn {
		return val, nil
	}
	return Undefined, nil
}

func evalStmts(ctx *EvalContext, stmts []Stmt) (signal, Value, error) {
	for _, stmt := range stmts {
		sig, val, err := evalStmt(ctx, stmt)
		if err != nil {
			return sigNone, Undefined, err
		}
		if sig != sigNone {
			return sig, val, nil
		}
	}
	return sigNone, Undefined, nil
}

func evalStmt(ctx *EvalContext, stmt Stmt) (signal, Value, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		_, err := evalCall(ctx, s.Call)
		return sigNone, Undefined, err

	case *AssignStmt:
		err := evalAssign(ctx, s)
		return sigNone, Undefined, err

	case *IfStmt:
		for _, branch := range s.Branches {
			if branch.Cond == nil {
				return evalStmts(ctx, branch.Body)
			}
			cv, err := evalExpr(ctx, branch.Cond)
			if err != nil {
				return sigNone, Undefined, err
			}
			if truthy(cv) {
				return evalStmts(ctx, branch.Body)
			}
		}
		return sigNone, Undefined, nil

	case *ForEachStmt:
		return evalForEach(ctx, s)

	case *ReturnStmt:
		if s.Value == nil {
			return sigReturn, Undefined, nil
		}
		v, err := evalExpr(ctx, s.Value)
		if err != nil {
			return sigNone, Undefined, err
		}
		return sigReturn, v, nil

	case *ContinueStmt:
		return sigContinue, Undefined, nil

	case *BreakStmt:
		return sigBreak, Undefined, nil

	default:
		return sigNone, Undefined, typeError("unknown statement node %T", stmt)
	}
}

func evalForEach(ctx *EvalContext, s *ForEachStmt) (signal, Value, error) {
	iterVal, err := evalExpr(ctx, s.Iter)
	if err != nil {
		return sigNone, Undefined, err
	}
	var items []Value
	switch iterVal.Kind() {
	case KindList:
		items = iterVal.AsList()
	case KindObject:
		for _, k := range iterVal.AsObject().Keys() {
			v, _ := iterVal.AsObject().Get(k)
			items = append(items, v)
		}
	case KindUndefined:
		items = nil
	default:
		return sigNone, Undefined, typeError("foreach requires a list or object, got %s", iterVal.Kind())
	}

	for _, item := range items {
		if err := bindVariable(ctx, s.Var, item); err != nil {
			return sigNone, Undefined, err
		}
		sig, val, err := evalStmts(ctx, s.Body)
		if err != nil {
			return sigNone, Undefined, err
		}
		switch sig {
		case sigBreak:
			return sigNone, Undefined, nil
		case sigContinue:
			continue
		case sigReturn:
			return sigReturn, val, nil
		}
	}
	return sigNone, Undefined, nil
}

// primitiveKind groups Integer and Fraction together as one "numeric"
// primitive kind, per spec.md §3's "Once a variable is bound, subsequent
// assignments must be of the same primitive kind" — arithmetic promotes
// freely between Integer and Fraction, so binding-kind stability is
// enforced at that coarser granularity, not the literal Kind tag.
func primitiveKind(v Value) Kind {
	if v.IsNumeric() {
		return KindInt
	}
	return v.Kind()
}

func bindVariable(ctx *EvalContext, name string, v Value) error {
	if v.IsUndefined() {
		return typeError("cannot bind $%s to undefined", name)
	}
	if existing, ok := ctx.Bindings[name]; ok {
		if primitiveKind(existing) != primitiveKind(v) {
			return typeError("$%s is bound to %s, cannot assign %s", name, existing.Kind(), v.Kind())
		}
	}
	ctx.Bindings[name] = v
	return nil
}

func evalAssign(ctx *EvalContext, s *AssignStmt) error {
	v, err := evalExpr(ctx, s.Value)
	if err != nil {
		return err
	}
	switch target := s.Target.(type) {
	case *VarExpr:
		return bindVariable(ctx, target.Name, v)
	case *MemberExpr:
		return evalMemberAssign(ctx, target, v)
	default:
		return typeError("invalid assignment target %T", s.Target)
	}
}

// evalMemberAssign resolves a `$var.a.b.c = value` chain down to its final
// Object receiver and sets `c`. Every link in the chain but the last must
// already evaluate to an Object (this includes `$effect_state`, whose
// underlying Object is mounted live by the EvalContext, so writes through
// this path commit directly into the ActiveEffectInstance's persistent
// state without any separate save step).
func evalMemberAssign(ctx *EvalContext, target *MemberExpr, v Value) error {
	receiver, err := evalExpr(ctx, target.Receiver)
	if err != nil {
		return err
	}
	if receiver.Kind() != KindObject {
		return typeError("cannot assign member %q on a %s", target.Name, receiver.Kind())
	}
	receiver.AsObject().Set(target.Name, v)
	return nil
}

func evalCall(ctx *EvalContext, call *CallExpr) (Value, error) {
	args := make([]Value, len(call.Args))
	for i, a := range call.Args {
		v, err := evalExpr(ctx, a)
		if err != nil {
			return Undefined, err
		}
		args[i] = v
	}
	if ctx.Host == nil {
		return Undefined, typeError("no host bound to evaluate call %q", call.Name)
	}
	return ctx.Host.Call(ctx, call.Name, args)
}

func evalExpr(ctx *EvalContext, e Expr) (Value, error) {
	switch ex := e.(type) {
	case *Literal:
		return ex.Value, nil

	case *VarExpr:
		return ctx.Lookup(ex.Name), nil

	case *MemberExpr:
		receiver, err := evalExpr(ctx, ex.Receiver)
		if err != nil {
			return Undefined, err
		}
		return evalMember(receiver, ex.Name)

	case *ListExpr:
		items := make([]Value, len(ex.Items))
		for i, it := range ex.Items {
			v, err := evalExpr(ctx, it)
			if err != nil {
				return Undefined, err
			}
			items[i] = v
		}
		return List(items...), nil

	case *UnaryExpr:
		operand, err := evalExpr(ctx, ex.Operand)
		if err != nil {
			return Undefined, err
		}
		switch ex.Op {
		case TokBang:
			return negate(operand), nil
		case TokPlus:
			if !operand.IsNumeric() {
				return Undefined, typeError("unary '+' requires a numeric operand, got %s", operand.Kind())
			}
			return operand, nil
		default:
			return Undefined, typeError("unknown unary operator")
		}

	case *BinaryExpr:
		return evalBinary(ctx, ex)

	case *CallExpr:
		return evalCall(ctx, ex)

	case *WrappedExpr:
		return evalExpr(ctx, ex.Inner)

	default:
		return Undefined, typeError("unknown expression node %T", e)
	}
}

func evalBinary(ctx *EvalContext, ex *BinaryExpr) (Value, error) {
	if ex.Op == OpAnd || ex.Op == OpOr {
		left, err := evalExpr(ctx, ex.Left)
		if err != nil {
			return Undefined, err
		}
		if ex.Op == OpAnd && !truthy(left) {
			return Bool(false), nil
		}
		if ex.Op == OpOr && truthy(left) {
			return Bool(true), nil
		}
		right, err := evalExpr(ctx, ex.Right)
		if err != nil {
			return Undefined, err
		}
		return Bool(truthy(right)), nil
	}

	left, err := evalExpr(ctx, ex.Left)
	if err != nil {
		return Undefined, err
	}
	right, err := evalExpr(ctx, ex.Right)
	if err != nil {
		return Undefined, err
	}

	switch ex.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return applyArith(ex.Op, left, right)
	case OpLt, OpLe, OpGt, OpGe:
		return applyCompare(ex.Op, left, right)
	case OpEq, OpNeq:
		return applyEquality(ex.Op, left, right), nil
	case OpHas:
		return applyHas(left, right)
	case OpHasAny:
		return applyHasAny(left, right)
	default:
		return Undefined, typeError("unknown binary operator")
	}
}

// evalMember implements spec.md §4.2's member access rules: access on
// Undefined yields Undefined without error; the `.is_defined`/`.is_undefined`
// pseudo-members always resolve; `.is_<kind>` pseudo-members inspect the
// receiver's Kind (or, for Handle receivers, its HandleKind discriminator);
// access to any other non-existent attribute on a defined value is a fatal
// program error.
func evalMember(receiver Value, name string) (Value, error) {
	if name == "is_defined" {
		return Bool(!receiver.IsUndefined()), nil
	}
	if name == "is_undefined" {
		return Bool(receiver.IsUndefined()), nil
	}
	if kindName, ok := stripIsPrefix(name); ok {
		return Bool(matchesKindPredicate(receiver, kindName)), nil
	}

	if receiver.IsUndefined() {
		return Undefined, nil
	}

	if receiver.Kind() == KindObject {
		if v, ok := receiver.AsObject().Get(name); ok {
			return v, nil
		}
		return Undefined, undefinedAccessError(name)
	}

	return Undefined, undefinedAccessError(name)
}

func stripIsPrefix(name string) (string, bool) {
	const prefix = "is_"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):], true
	}
	return "", false
}

func matchesKindPredicate(v Value, kindName string) bool {
	switch kindName {
	case "boolean":
		return v.Kind() == KindBool
	case "integer":
		return v.Kind() == KindInt
	case "fraction":
		return v.Kind() == KindFraction
	case "number", "numeric":
		return v.IsNumeric()
	case "string":
		return v.Kind() == KindString
	case "list":
		return v.Kind() == KindList
	case "object":
		return v.Kind() == KindObject
	case "handle":
		return v.Kind() == KindHandle
	case "mon":
		return v.Kind() == KindHandle && v.AsHandle().Kind == HandleMon
	case "side":
		return v.Kind() == KindHandle && v.AsHandle().Kind == HandleSide
	case "field":
		return v.Kind() == KindHandle && v.AsHandle().Kind == HandleField
	case "effect":
		return v.Kind() == KindHandle && v.AsHandle().Kind == HandleEffect
	case "move", "active_move":
		return v.Kind() == KindHandle && v.AsHandle().Kind == HandleActiveMove
	case "player":
		return v.Kind() == KindHandle && v.AsHandle().Kind == HandlePlayer
	default:
		return false
	}
}
