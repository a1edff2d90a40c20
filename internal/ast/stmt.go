package ast

import "github.com/archy-none/lumo/internal/typesystem"

// Scope distinguishes a program-local binding from an exported/global one
// (the `pub` prefix of spec.md §4.6).
type Scope int

const (
	ScopeLocal Scope = iota
	ScopeGlobal
)

// Param is one `name: type` function/import parameter.
type Param struct {
	Name string
	Type typesystem.Type
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct{ Expr Expr }

// LetVar binds or re-checks a local/global variable: `let name = value` or
// `pub let name = value`.
type LetVar struct {
	Scope Scope
	Name  string
	Value Expr
}

// LetFunc is a function definition: `let name(params) = body` or
// `pub let name(params) = body`, optionally with an explicit return type
// from the `Cast(Call(...), ret)` target shape (`let name(params): ret = body`).
// ReturnType is nil when the return type is inferred from Body.
type LetFunc struct {
	Scope      Scope
	Name       string
	Params     []Param
	ReturnType typesystem.Type
	Body       Expr
}

// LetIndexAssign is element assignment: `let arr[idx] = value`.
type LetIndexAssign struct {
	Arr   Expr
	Idx   Expr
	Value Expr
}

// LetFieldAssign is field assignment: `let obj.name = value`.
type LetFieldAssign struct {
	Obj   Expr
	Name  string
	Value Expr
}

// IfStmt is `if cond then then-expr [else else-expr]`. Else is nil when
// absent, in which case the statement's type is the then-branch's type.
type IfStmt struct {
	Cond Expr
	Then Expr
	Else Expr
}

// WhileStmt is `while cond loop body`.
type WhileStmt struct {
	Cond Expr
	Body Expr
}

// TypeDeclStmt is `type name = type-expr`.
type TypeDeclStmt struct {
	Name string
	Type typesystem.Type
}

// TryStmt is `try expr catch recover-stmt`.
type TryStmt struct {
	Expr    Expr
	Recover Stmt
}

// MacroDeclStmt is `macro name(params) = body`.
type MacroDeclStmt struct {
	Name   string
	Params []string
	Body   Expr
}

// OverloadDeclStmt is `overload name = lhs op rhs`, registering FuncName to
// implement operator OpID over the pair (LhsType, RhsType).
type OverloadDeclStmt struct {
	OpID     string
	LhsType  typesystem.Type
	RhsType  typesystem.Type
	FuncName string
}

// ImportStmt is `load [module.]name(params): ret`.
type ImportStmt struct {
	Module     string
	Name       string
	Params     []Param
	ReturnType typesystem.Type
}

// ReturnStmt is `return [expr]`. Expr is nil for a bare return.
type ReturnStmt struct{ Expr Expr }

// BreakStmt is `break`.
type BreakStmt struct{}

// NextStmt is `next`.
type NextStmt struct{}

func (ExprStmt) isNode()        {}
func (ExprStmt) isStmt()        {}
func (LetVar) isNode()          {}
func (LetVar) isStmt()          {}
func (LetFunc) isNode()         {}
func (LetFunc) isStmt()         {}
func (LetIndexAssign) isNode()  {}
func (LetIndexAssign) isStmt()  {}
func (LetFieldAssign) isNode()  {}
func (LetFieldAssign) isStmt()  {}
func (IfStmt) isNode()          {}
func (IfStmt) isStmt()          {}
func (WhileStmt) isNode()       {}
func (WhileStmt) isStmt()       {}
func (TypeDeclStmt) isNode()    {}
func (TypeDeclStmt) isStmt()    {}
func (TryStmt) isNode()         {}
func (TryStmt) isStmt()         {}
func (MacroDeclStmt) isNode()   {}
func (MacroDeclStmt) isStmt()   {}
func (OverloadDeclStmt) isNode() {}
func (OverloadDeclStmt) isStmt() {}
func (ImportStmt) isNode()      {}
func (ImportStmt) isStmt()      {}
func (ReturnStmt) isNode()      {}
func (ReturnStmt) isStmt()      {}
func (BreakStmt) isNode()       {}
func (BreakStmt) isStmt()       {}
func (NextStmt) isNode()        {}
func (NextStmt) isStmt()        {}
