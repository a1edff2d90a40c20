package compiler

import (
	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

// overloadCall looks up a registered overload for (opID, lhs, rhs) and, if
// found, rewrites the operator into a call to the registered function —
// spec.md §4.5's overload dispatch rule: "inference and emission of an
// overloaded operator must produce results identical to an explicit call
// of the registered function." For the Cast overload form, rhs is the cast
// target type; a nil rhs is keyed as the empty string.
func overloadCall(c *Context, opID string, lhs, rhs typesystem.Type, args []ast.Expr) (ast.Expr, bool) {
	rhsKey := ""
	if rhs != nil {
		rhsKey = rhs.String()
	}
	fn, ok := c.Overloads[OverloadKey{OpID: opID, Lhs: lhs.String(), Rhs: rhsKey}]
	if !ok {
		return nil, false
	}
	return &ast.Call{Name: fn, Args: args}, true
}

func inferBinaryOp(c *Context, n *ast.BinaryOp) (typesystem.Type, error) {
	lhsT, err := Infer(c, n.Lhs)
	if err != nil {
		return nil, err
	}
	lhsT, err = c.Expand(lhsT)
	if err != nil {
		return nil, err
	}
	rhsT, err := Infer(c, n.Rhs)
	if err != nil {
		return nil, err
	}
	rhsT, err = c.Expand(rhsT)
	if err != nil {
		return nil, err
	}

	if call, ok := overloadCall(c, n.Op, lhsT, rhsT, []ast.Expr{n.Lhs, n.Rhs}); ok {
		return Infer(c, call)
	}

	ctx := "operator " + n.Op
	switch n.Op {
	case ast.OpAdd:
		if !typesystem.Equals(lhsT, rhsT) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: lhsT.String(), Got: rhsT.String()})
		}
		switch lhsT.(type) {
		case typesystem.Integer, typesystem.Number, typesystem.String:
			return lhsT, nil
		default:
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "int|num|str", Got: lhsT.String()})
		}
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !typesystem.Equals(lhsT, rhsT) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: lhsT.String(), Got: rhsT.String()})
		}
		if !typesystem.IsNumeric(lhsT) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "int|num", Got: lhsT.String()})
		}
		return lhsT, nil
	case ast.OpShl, ast.OpShr, ast.OpBAnd, ast.OpBOr, ast.OpXOr:
		if _, ok := lhsT.(typesystem.Integer); !ok {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "int", Got: lhsT.String()})
		}
		if _, ok := rhsT.(typesystem.Integer); !ok {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "int", Got: rhsT.String()})
		}
		return typesystem.Integer{}, nil
	case ast.OpEql, ast.OpNeq:
		if !typesystem.Equals(lhsT, rhsT) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: lhsT.String(), Got: rhsT.String()})
		}
		if !isEqualityComparable(lhsT) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "int|num|str|enum", Got: lhsT.String()})
		}
		return typesystem.Bool{}, nil
	case ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq:
		if !typesystem.Equals(lhsT, rhsT) || !typesystem.IsNumeric(lhsT) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "matching numeric operands", Got: lhsT.String() + ", " + rhsT.String()})
		}
		return typesystem.Bool{}, nil
	case ast.OpLAnd, ast.OpLOr:
		if _, ok := lhsT.(typesystem.Bool); !ok {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "bool", Got: lhsT.String()})
		}
		if _, ok := rhsT.(typesystem.Bool); !ok {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: ctx, Expected: "bool", Got: rhsT.String()})
		}
		return typesystem.Bool{}, nil
	default:
		return nil, c.Fail(&diagnostics.InvariantError{Reason: "unrecognized binary operator " + n.Op})
	}
}

func inferUnaryOp(c *Context, n *ast.UnaryOp) (typesystem.Type, error) {
	t, err := Infer(c, n.Operand)
	if err != nil {
		return nil, err
	}
	t, err = c.Expand(t)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpBNot:
		if _, ok := t.(typesystem.Integer); !ok {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "operator ~", Expected: "int", Got: t.String()})
		}
		return typesystem.Integer{}, nil
	case ast.OpLNot:
		if _, ok := t.(typesystem.Bool); !ok {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "operator !", Expected: "bool", Got: t.String()})
		}
		return typesystem.Bool{}, nil
	default:
		return nil, c.Fail(&diagnostics.InvariantError{Reason: "unrecognized unary operator " + n.Op})
	}
}

// castOpID is the operator id a `Cast` registers its overloads under.
const castOpID = "as"

func inferCast(c *Context, n *ast.Cast) (typesystem.Type, error) {
	srcT, err := Infer(c, n.Operand)
	if err != nil {
		return nil, err
	}
	srcT, err = c.Expand(srcT)
	if err != nil {
		return nil, err
	}
	target, err := c.Expand(n.Type)
	if err != nil {
		return nil, err
	}

	if call, ok := overloadCall(c, castOpID, srcT, target, []ast.Expr{n.Operand}); ok {
		return Infer(c, call)
	}

	if typesystem.Equals(srcT, target) {
		return target, nil
	}

	switch {
	case typesystem.IsNumeric(srcT) && typesystem.IsNumeric(target):
		return target, nil
	case isStringType(srcT) && typesystem.IsNumeric(target):
		return target, nil
	case typesystem.IsNumeric(srcT) && isStringType(target):
		return target, nil
	default:
		return nil, c.Fail(&diagnostics.CastError{From: srcT.String(), To: target.String()})
	}
}

func isStringType(t typesystem.Type) bool {
	_, ok := t.(typesystem.String)
	return ok
}

// isEqualityComparable restricts `==`/`!=` to the operand classes spec.md
// §4.5 lists: Integer, Number, String, Enum. Bool/Array/Dict/Alias operands
// are rejected even when both sides agree structurally.
func isEqualityComparable(t typesystem.Type) bool {
	switch t.(type) {
	case typesystem.Integer, typesystem.Number, typesystem.String, typesystem.Enum:
		return true
	default:
		return false
	}
}

func inferNullCheck(c *Context, n *ast.NullCheck) (typesystem.Type, error) {
	t, err := Infer(c, n.Operand)
	if err != nil {
		return nil, err
	}
	t, err = c.Expand(t)
	if err != nil {
		return nil, err
	}
	if !typesystem.IsHeap(t) {
		return nil, c.Fail(&diagnostics.NullabilityError{Type: t.String()})
	}
	return typesystem.Bool{}, nil
}

func inferTransmute(c *Context, n *ast.Transmute) (typesystem.Type, error) {
	if _, err := Infer(c, n.Operand); err != nil {
		return nil, err
	}
	return c.Expand(n.Type)
}
