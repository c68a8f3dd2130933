package fx

import "testing"

func TestParseCallStatementNoArgs(t *testing.T) {
	p, err := ParseProgram("cancel_move")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(p.Stmts))
	}
	call, ok := p.Stmts[0].(*ExprStmt)
	if !ok || call.Call.Name != "cancel_move" || len(call.Call.Args) != 0 {
		t.Fatalf("unexpected statement: %#v", p.Stmts[0])
	}
}

func TestParseCallStatementWithArgs(t *testing.T) {
	p, err := ParseProgram("damage: $target $amount")
	if err != nil {
		t.Fatal(err)
	}
	call := p.Stmts[0].(*ExprStmt).Call
	if call.Name != "damage" || len(call.Args) != 2 {
		t.Fatalf("unexpected call: %#v", call)
	}
}

func TestParseAssignment(t *testing.T) {
	p, err := ParseProgram("$x = 1 + 2")
	if err != nil {
		t.Fatal(err)
	}
	assign, ok := p.Stmts[0].(*AssignStmt)
	if !ok {
		t.Fatalf("expected assignment, got %#v", p.Stmts[0])
	}
	v, ok := assign.Target.(*VarExpr)
	if !ok || v.Name != "x" {
		t.Fatalf("unexpected target: %#v", assign.Target)
	}
}

func TestParseMemberAssignment(t *testing.T) {
	p, err := ParseProgram("$effect_state.counter = $effect_state.counter + 1")
	if err != nil {
		t.Fatal(err)
	}
	assign := p.Stmts[0].(*AssignStmt)
	m, ok := assign.Target.(*MemberExpr)
	if !ok || m.Name != "counter" {
		t.Fatalf("unexpected target: %#v", assign.Target)
	}
}

func TestParseIfElseIfElse(t *testing.T) {
	raw := []any{
		"if $hp == 0:",
		[]any{"faint: $target"},
		"else if $hp < 10:",
		[]any{"log_low_hp: $target"},
		"else:",
		[]any{"return"},
	}
	p, err := ParseProgram(raw)
	if err != nil {
		t.Fatal(err)
	}
	ifStmt, ok := p.Stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected if statement, got %#v", p.Stmts[0])
	}
	if len(ifStmt.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(ifStmt.Branches))
	}
	if ifStmt.Branches[2].Cond != nil {
		t.Fatal("expected trailing else branch to have nil condition")
	}
}

func TestParseForeach(t *testing.T) {
	raw := []any{
		"foreach $mon in all_active_mons:",
		[]any{"heal: $mon 1"},
	}
	p, err := ParseProgram(raw)
	if err != nil {
		t.Fatal(err)
	}
	fe, ok := p.Stmts[0].(*ForEachStmt)
	if !ok || fe.Var != "mon" {
		t.Fatalf("unexpected statement: %#v", p.Stmts[0])
	}
}

func TestParseIntFractionLiteral(t *testing.T) {
	p, err := ParseProgram("$x = 1/2")
	if err != nil {
		t.Fatal(err)
	}
	lit := p.Stmts[0].(*AssignStmt).Value.(*Literal)
	n, d := lit.Value.AsFraction()
	if n != 1 || d != 2 {
		t.Fatalf("expected 1/2 literal, got %d/%d", n, d)
	}
}

func TestParseFuncCallWrapper(t *testing.T) {
	p, err := ParseProgram("$x = func_call(max: 1 2) + 1")
	if err != nil {
		t.Fatal(err)
	}
	bin, ok := p.Stmts[0].(*AssignStmt).Value.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected binary expr, got %#v", p.Stmts[0].(*AssignStmt).Value)
	}
	call, ok := bin.Left.(*CallExpr)
	if !ok || call.Name != "max" || len(call.Args) != 2 {
		t.Fatalf("unexpected left operand: %#v", bin.Left)
	}
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	p, err := ParseProgram("$x = 1 + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	top := p.Stmts[0].(*AssignStmt).Value.(*BinaryExpr)
	if top.Op != OpAdd {
		t.Fatalf("expected top-level +, got %v", top.Op)
	}
	right := top.Right.(*BinaryExpr)
	if right.Op != OpMul {
		t.Fatalf("expected nested *, got %v", right.Op)
	}
}

func TestParseBareStringLiteral(t *testing.T) {
	p, err := ParseProgram("$x = burned")
	if err != nil {
		t.Fatal(err)
	}
	lit := p.Stmts[0].(*AssignStmt).Value.(*Literal)
	if lit.Value.Kind() != KindString || lit.Value.AsString() != "burned" {
		t.Fatalf("expected bare string 'burned', got %#v", lit.Value)
	}
}

func TestParseMemberChain(t *testing.T) {
	p, err := ParseProgram("$x = $target.status.is_defined")
	if err != nil {
		t.Fatal(err)
	}
	outer := p.Stmts[0].(*AssignStmt).Value.(*MemberExpr)
	if outer.Name != "is_defined" {
		t.Fatalf("unexpected outer member: %s", outer.Name)
	}
	inner, ok := outer.Receiver.(*MemberExpr)
	if !ok || inner.Name != "status" {
		t.Fatalf("unexpected inner member: %#v", outer.Receiver)
	}
}

func TestParseMalformedUnterminatedString(t *testing.T) {
	_, err := ParseProgram("$x = 'unterminated")
	if err == nil {
		t.Fatal("expected parse error for unterminated string")
	}
}
