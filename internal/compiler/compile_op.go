package compiler

import (
	"fmt"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

func overloadRewrite(c *Context, opID string, lhs, rhs typesystem.Type, args []ast.Expr) (ast.Expr, bool) {
	return overloadCall(c, opID, lhs, rhs, args)
}

func compileBinaryOp(c *Context, n *ast.BinaryOp) (string, error) {
	lhsT, err := Infer(c, n.Lhs)
	if err != nil {
		return "", err
	}
	lhsT, err = c.Expand(lhsT)
	if err != nil {
		return "", err
	}
	rhsT, err := Infer(c, n.Rhs)
	if err != nil {
		return "", err
	}
	rhsT, err = c.Expand(rhsT)
	if err != nil {
		return "", err
	}

	if call, ok := overloadRewrite(c, n.Op, lhsT, rhsT, []ast.Expr{n.Lhs, n.Rhs}); ok {
		return Compile(c, call)
	}

	lhsText, err := Compile(c, n.Lhs)
	if err != nil {
		return "", err
	}
	rhsText, err := Compile(c, n.Rhs)
	if err != nil {
		return "", err
	}
	class, _ := typesystem.Compile(lhsT)
	_, isFloat := lhsT.(typesystem.Number)
	_, isString := lhsT.(typesystem.String)

	switch n.Op {
	case ast.OpAdd:
		if isString {
			return fmt.Sprintf("(call $concat %s %s)", lhsText, rhsText), nil
		}
		return fmt.Sprintf("(%s.add %s %s)", class, lhsText, rhsText), nil
	case ast.OpSub:
		return fmt.Sprintf("(%s.sub %s %s)", class, lhsText, rhsText), nil
	case ast.OpMul:
		return fmt.Sprintf("(%s.mul %s %s)", class, lhsText, rhsText), nil
	case ast.OpDiv:
		if isFloat {
			return fmt.Sprintf("(f32.div %s %s)", lhsText, rhsText), nil
		}
		return fmt.Sprintf("(i32.div_s %s %s)", lhsText, rhsText), nil
	case ast.OpMod:
		if isFloat {
			return compileFloatMod(lhsText, rhsText), nil
		}
		return euclideanModText(lhsText, rhsText, "i32"), nil
	case ast.OpShl:
		return fmt.Sprintf("(i32.shl %s %s)", lhsText, rhsText), nil
	case ast.OpShr:
		return fmt.Sprintf("(i32.shr_s %s %s)", lhsText, rhsText), nil
	case ast.OpBAnd:
		return fmt.Sprintf("(i32.and %s %s)", lhsText, rhsText), nil
	case ast.OpBOr:
		return fmt.Sprintf("(i32.or %s %s)", lhsText, rhsText), nil
	case ast.OpXOr:
		return fmt.Sprintf("(i32.xor %s %s)", lhsText, rhsText), nil
	case ast.OpEql:
		if isString {
			return fmt.Sprintf("(call $strcmp %s %s)", lhsText, rhsText), nil
		}
		return fmt.Sprintf("(%s.eq %s %s)", class, lhsText, rhsText), nil
	case ast.OpNeq:
		if isString {
			return fmt.Sprintf("(i32.eqz (call $strcmp %s %s))", lhsText, rhsText), nil
		}
		return fmt.Sprintf("(%s.ne %s %s)", class, lhsText, rhsText), nil
	case ast.OpLt:
		return compileOrdering(class, isFloat, "lt", lhsText, rhsText), nil
	case ast.OpGt:
		return compileOrdering(class, isFloat, "gt", lhsText, rhsText), nil
	case ast.OpLtEq:
		return compileOrdering(class, isFloat, "le", lhsText, rhsText), nil
	case ast.OpGtEq:
		return compileOrdering(class, isFloat, "ge", lhsText, rhsText), nil
	case ast.OpLAnd:
		return fmt.Sprintf("(i32.and %s %s)", lhsText, rhsText), nil
	case ast.OpLOr:
		return fmt.Sprintf("(i32.or %s %s)", lhsText, rhsText), nil
	default:
		return "", c.Fail(&diagnostics.InvariantError{Reason: "unrecognized binary operator " + n.Op})
	}
}

// compileOrdering appends the signed suffix integer comparisons need but
// floats don't (WebAssembly's flt/fgt/etc. have no signedness).
func compileOrdering(class string, isFloat bool, mnemonic, lhsText, rhsText string) string {
	suffix := "_s"
	if isFloat {
		suffix = ""
	}
	return fmt.Sprintf("(%s.%s%s %s %s)", class, mnemonic, suffix, lhsText, rhsText)
}

// compileFloatMod renders floating Mod as `a - floor(a/b)*b`, there being
// no native f32 remainder instruction.
func compileFloatMod(a, b string) string {
	div := fmt.Sprintf("(f32.div %s %s)", a, b)
	return fmt.Sprintf("(f32.sub %s (f32.mul (f32.floor %s) %s))", a, div, b)
}

func compileUnaryOp(c *Context, n *ast.UnaryOp) (string, error) {
	operandText, err := Compile(c, n.Operand)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case ast.OpBNot:
		return fmt.Sprintf("(i32.xor %s (i32.const -1))", operandText), nil
	case ast.OpLNot:
		return fmt.Sprintf("(i32.eqz %s)", operandText), nil
	default:
		return "", c.Fail(&diagnostics.InvariantError{Reason: "unrecognized unary operator " + n.Op})
	}
}

func compileCast(c *Context, n *ast.Cast) (string, error) {
	srcT, err := Infer(c, n.Operand)
	if err != nil {
		return "", err
	}
	srcT, err = c.Expand(srcT)
	if err != nil {
		return "", err
	}
	target, err := c.Expand(n.Type)
	if err != nil {
		return "", err
	}

	if call, ok := overloadRewrite(c, castOpID, srcT, target, []ast.Expr{n.Operand}); ok {
		return Compile(c, call)
	}

	operandText, err := Compile(c, n.Operand)
	if err != nil {
		return "", err
	}

	if typesystem.Equals(srcT, target) {
		return operandText, nil
	}

	_, srcInt := srcT.(typesystem.Integer)
	_, srcNum := srcT.(typesystem.Number)
	_, tgtInt := target.(typesystem.Integer)
	_, tgtNum := target.(typesystem.Number)
	_, srcStr := srcT.(typesystem.String)
	_, tgtStr := target.(typesystem.String)

	switch {
	case srcInt && tgtNum:
		return fmt.Sprintf("(f32.convert_i32_s %s)", operandText), nil
	case srcNum && tgtInt:
		return fmt.Sprintf("(i32.trunc_f32_s %s)", operandText), nil
	case srcInt && tgtStr:
		return fmt.Sprintf("(call $to_str (f32.convert_i32_s %s))", operandText), nil
	case srcNum && tgtStr:
		return fmt.Sprintf("(call $to_str %s)", operandText), nil
	case srcStr && tgtInt:
		return fmt.Sprintf("(i32.trunc_f32_s (call $to_num %s))", operandText), nil
	case srcStr && tgtNum:
		return fmt.Sprintf("(call $to_num %s)", operandText), nil
	default:
		return "", c.Fail(&diagnostics.CastError{From: srcT.String(), To: target.String()})
	}
}

// compileNullCheck tests operand against the null sentinel -1, not 0: the
// allocator starts at address 0, so the first heap object ever allocated
// lives at 0 and a zero sentinel would misreport it as null.
func compileNullCheck(c *Context, n *ast.NullCheck) (string, error) {
	operandText, err := Compile(c, n.Operand)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(i32.ne %s (i32.const -1))", operandText), nil
}

// compileTransmute reinterprets the operand's bits as Type's class,
// emitting a real reinterpret instruction only when the two classes
// differ; a same-class transmute (e.g. int to a dict reference) is a
// no-op pass-through.
func compileTransmute(c *Context, n *ast.Transmute) (string, error) {
	srcT, err := Infer(c, n.Operand)
	if err != nil {
		return "", err
	}
	srcT, err = c.Expand(srcT)
	if err != nil {
		return "", err
	}
	target, err := c.Expand(n.Type)
	if err != nil {
		return "", err
	}
	operandText, err := Compile(c, n.Operand)
	if err != nil {
		return "", err
	}
	srcClass, _ := typesystem.Compile(srcT)
	tgtClass, _ := typesystem.Compile(target)
	if srcClass == tgtClass {
		return operandText, nil
	}
	if tgtClass == "f32" {
		return fmt.Sprintf("(f32.reinterpret_i32 %s)", operandText), nil
	}
	return fmt.Sprintf("(i32.reinterpret_f32 %s)", operandText), nil
}
