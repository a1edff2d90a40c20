package ast

import "github.com/archy-none/lumo/internal/typesystem"

// Binary arithmetic, bit, comparison and logical operator ids (spec.md §3,
// §6). These are the OpID values BinaryOp.Op carries.
const (
	OpAdd  = "+"
	OpSub  = "-"
	OpMul  = "*"
	OpDiv  = "/"
	OpMod  = "%"
	OpShl  = "<<"
	OpShr  = ">>"
	OpBAnd = "&"
	OpBOr  = "|"
	OpXOr  = "^"
	OpEql  = "=="
	OpNeq  = "!="
	OpLt   = "<"
	OpGt   = ">"
	OpLtEq = "<="
	OpGtEq = ">="
	OpLAnd = "&&"
	OpLOr  = "||"
)

// Unary operator ids.
const (
	OpBNot = "~"
	OpLNot = "!"
)

// BinaryOp is any of the arithmetic/bit/comparison/logical binary operators
// in spec.md §3.
type BinaryOp struct {
	Op  string
	Lhs Expr
	Rhs Expr
}

// UnaryOp is `~x` (bitwise not) or `!x` (logical not). Unary minus is
// desugared by the parser into BinaryOp(Sub, BinaryOp(Sub, x, x), x), per
// spec.md §4.5's "doubled subtraction" recipe, so it needs no node of its
// own.
type UnaryOp struct {
	Op      string
	Operand Expr
}

// Cast is `expr as T`.
type Cast struct {
	Operand Expr
	Type    typesystem.Type
}

// NullCheck is `expr?`.
type NullCheck struct{ Operand Expr }

// Nullable is the `T!` type-term marker (spec.md §3's `Nullable(type)`
// operator variant). It appears in expression position wherever a type
// term was annotated nullable; its inferred type is T itself (which must be
// a heap type), and it compiles to the null sentinel `(i32.const -1)`.
type Nullable struct{ Type typesystem.Type }

// Transmute reinterprets expr's bits as T without any validity check.
type Transmute struct {
	Operand Expr
	Type    typesystem.Type
}

func (BinaryOp) isNode()  {}
func (BinaryOp) isExpr()  {}
func (UnaryOp) isNode()   {}
func (UnaryOp) isExpr()   {}
func (Cast) isNode()      {}
func (Cast) isExpr()      {}
func (NullCheck) isNode() {}
func (NullCheck) isExpr() {}
func (Nullable) isNode()  {}
func (Nullable) isExpr()  {}
func (Transmute) isNode() {}
func (Transmute) isExpr() {}
