package fx

// Expr is any expression syntax tree node.
type Expr interface{ exprNode() }

// Literal wraps a constant Value baked in at parse time (booleans,
// integers, int/int fraction literals, strings).
type Literal struct{ Value Value }

// VarExpr references a bound variable, `$name`.
type VarExpr struct{ Name string }

// MemberExpr is member access, `expr.name`.
type MemberExpr struct {
	Receiver Expr
	Name     string
}

// ListExpr is a list literal, `[e1 e2 …]`.
type ListExpr struct{ Items []Expr }

// UnaryExpr is a prefix `!` or `+` applied to an operand.
type UnaryExpr struct {
	Op      TokenKind // TokBang or TokPlus
	Operand Expr
}

// BinaryExpr is any binary operator application.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

// CallExpr invokes a built-in function. It appears both as a Statement
// (bare `identifier: arg arg …` / `identifier` with no args) and, wrapped in
// `func_call(...)`, as a value-producing Expr.
type CallExpr struct {
	Name string
	Args []Expr
}

// WrappedExpr is the parenthesized `expr(...)` value production: it exists
// purely to disambiguate an expression from the call-statement syntax at
// parse sites where both would otherwise be legal; it evaluates to exactly
// its inner expression's value.
type WrappedExpr struct{ Inner Expr }

func (*Literal) exprNode()     {}
func (*VarExpr) exprNode()     {}
func (*MemberExpr) exprNode()  {}
func (*ListExpr) exprNode()    {}
func (*UnaryExpr) exprNode()   {}
func (*BinaryExpr) exprNode()  {}
func (*CallExpr) exprNode()    {}
func (*WrappedExpr) exprNode() {}

// Stmt is any statement syntax tree node. A Program is an ordered slice of
// Stmt; blocks (if/foreach bodies) are themselves []Stmt built from nested
// JSON arrays.
type Stmt interface{ stmtNode() }

// ExprStmt is a bare call-statement, `identifier[: arg arg …]`.
type ExprStmt struct{ Call *CallExpr }

// AssignStmt is `lvalue = expr`. The lvalue is restricted to a VarExpr or a
// MemberExpr chain rooted at one, matching the grammar's assignment
// production.
type AssignStmt struct {
	Target Expr
	Value  Expr
}

// IfBranch is one `if`/`else if` arm: a condition and its block. The
// fallback `else` arm is represented with a nil Cond.
type IfBranch struct {
	Cond Expr // nil for the trailing else
	Body []Stmt
}

// IfStmt is the full if/else-if/else chain.
type IfStmt struct{ Branches []IfBranch }

// ForEachStmt is `foreach $name in expr:` followed by its block.
type ForEachStmt struct {
	Var  string
	Iter Expr
	Body []Stmt
}

// ReturnStmt is `return` or `return expr`; Value is nil for a bare return.
type ReturnStmt struct{ Value Expr }

// ContinueStmt and BreakStmt act on the nearest enclosing ForEachStmt;
// the parser does not reject them elsewhere (see spec.md Open Questions:
// the source grammar's acceptance of these outside a loop is unspecified).
// Outside a loop, evaluation stops the program at that statement and Eval
// returns Undefined, as a bare `return` would.
type ContinueStmt struct{}
type BreakStmt struct{}

func (*ExprStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*ForEachStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode()   {}
func (*ContinueStmt) stmtNode() {}
func (*BreakStmt) stmtNode()    {}

// Program is a parsed, ready-to-evaluate sequence of statements: the unit
// cached by the parsed-program LRU (pkg/battle/programcache.go).
type Program struct {
	Stmts []Stmt
}
