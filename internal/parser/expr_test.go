package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/typesystem"
)

func TestParseExprLiterals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ast.Expr
	}{
		{"integer", "42", &ast.IntegerLit{Value: 42}},
		{"negative integer literal via unary minus", "-5", &ast.BinaryOp{
			Op:  ast.OpSub,
			Lhs: &ast.BinaryOp{Op: ast.OpSub, Lhs: &ast.IntegerLit{Value: 5}, Rhs: &ast.IntegerLit{Value: 5}},
			Rhs: &ast.IntegerLit{Value: 5},
		}},
		{"number", "3.5", &ast.NumberLit{Value: 3.5}},
		{"bool true", "true", &ast.BoolLit{Value: true}},
		{"bool false", "false", &ast.BoolLit{Value: false}},
		{"plain string", `"hi"`, &ast.StringLit{Value: "hi"}},
		{"variable", "x", &ast.Variable{Name: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExprMultiplicationBindsTighterThanAddition(t *testing.T) {
	got, err := parseExpr("1 + 2 * 3")
	require.NoError(t, err)
	assert.Equal(t, &ast.BinaryOp{
		Op:  ast.OpAdd,
		Lhs: &ast.IntegerLit{Value: 1},
		Rhs: &ast.BinaryOp{Op: ast.OpMul, Lhs: &ast.IntegerLit{Value: 2}, Rhs: &ast.IntegerLit{Value: 3}},
	}, got)
}

func TestParseExprSameLevelLeftAssociates(t *testing.T) {
	got, err := parseExpr("1 - 2 - 3")
	require.NoError(t, err)
	assert.Equal(t, &ast.BinaryOp{
		Op:  ast.OpSub,
		Lhs: &ast.BinaryOp{Op: ast.OpSub, Lhs: &ast.IntegerLit{Value: 1}, Rhs: &ast.IntegerLit{Value: 2}},
		Rhs: &ast.IntegerLit{Value: 3},
	}, got)
}

func TestParseExprParenOverridesPrecedence(t *testing.T) {
	got, err := parseExpr("(1 + 2) * 3")
	require.NoError(t, err)
	assert.Equal(t, &ast.BinaryOp{
		Op:  ast.OpMul,
		Lhs: &ast.BinaryOp{Op: ast.OpAdd, Lhs: &ast.IntegerLit{Value: 1}, Rhs: &ast.IntegerLit{Value: 2}},
		Rhs: &ast.IntegerLit{Value: 3},
	}, got)
}

func TestParseExprCast(t *testing.T) {
	got, err := parseExpr("x as int")
	require.NoError(t, err)
	assert.Equal(t, &ast.Cast{Operand: &ast.Variable{Name: "x"}, Type: typesystem.Integer{}}, got)
}

func TestParseExprNullCheck(t *testing.T) {
	got, err := parseExpr("x?")
	require.NoError(t, err)
	assert.Equal(t, &ast.NullCheck{Operand: &ast.Variable{Name: "x"}}, got)
}

func TestParseExprUnaryLogicalNot(t *testing.T) {
	got, err := parseExpr("!x")
	require.NoError(t, err)
	assert.Equal(t, &ast.UnaryOp{Op: ast.OpLNot, Operand: &ast.Variable{Name: "x"}}, got)
}

func TestParseExprArrayLit(t *testing.T) {
	got, err := parseExpr("[1, 2, 3]")
	require.NoError(t, err)
	assert.Equal(t, &ast.ArrayLit{Elems: []ast.Expr{
		&ast.IntegerLit{Value: 1}, &ast.IntegerLit{Value: 2}, &ast.IntegerLit{Value: 3},
	}}, got)
}

func TestParseExprDictLit(t *testing.T) {
	got, err := parseExpr("@{x: 1, y: 2}")
	require.NoError(t, err)
	assert.Equal(t, &ast.DictLit{Entries: []ast.DictEntry{
		{Name: "x", Value: &ast.IntegerLit{Value: 1}},
		{Name: "y", Value: &ast.IntegerLit{Value: 2}},
	}}, got)
}

func TestParseExprEnumTag(t *testing.T) {
	got, err := parseExpr("Color#red")
	require.NoError(t, err)
	assert.Equal(t, &ast.EnumTagLit{TypeName: "Color", Variant: "red"}, got)
}

func TestParseExprCall(t *testing.T) {
	got, err := parseExpr("add(1, 2)")
	require.NoError(t, err)
	assert.Equal(t, &ast.Call{Name: "add", Args: []ast.Expr{
		&ast.IntegerLit{Value: 1}, &ast.IntegerLit{Value: 2},
	}}, got)
}

func TestParseExprMethodCallSugar(t *testing.T) {
	got, err := parseExpr("obj.add(1)")
	require.NoError(t, err)
	assert.Equal(t, &ast.Call{Name: "add", Args: []ast.Expr{
		&ast.Variable{Name: "obj"}, &ast.IntegerLit{Value: 1},
	}}, got)
}

func TestParseExprFieldAndIndex(t *testing.T) {
	got, err := parseExpr("obj.name")
	require.NoError(t, err)
	assert.Equal(t, &ast.Field{Obj: &ast.Variable{Name: "obj"}, Name: "name"}, got)

	got, err = parseExpr("arr[0]")
	require.NoError(t, err)
	assert.Equal(t, &ast.Index{Arr: &ast.Variable{Name: "arr"}, Idx: &ast.IntegerLit{Value: 0}}, got)
}

func TestParseExprChainedPostfix(t *testing.T) {
	got, err := parseExpr("arr[0].name")
	require.NoError(t, err)
	assert.Equal(t, &ast.Field{
		Obj:  &ast.Index{Arr: &ast.Variable{Name: "arr"}, Idx: &ast.IntegerLit{Value: 0}},
		Name: "name",
	}, got)
}

func TestParseExprBuiltinClone(t *testing.T) {
	got, err := parseExpr("memcpy(x)")
	require.NoError(t, err)
	assert.Equal(t, &ast.Clone{Operand: &ast.Variable{Name: "x"}}, got)
}

func TestParseExprBuiltinPeek(t *testing.T) {
	got, err := parseExpr("peek(addr, int)")
	require.NoError(t, err)
	assert.Equal(t, &ast.Peek{Addr: &ast.Variable{Name: "addr"}, Type: typesystem.Integer{}}, got)
}

func TestParseExprBuiltinPoke(t *testing.T) {
	got, err := parseExpr("poke(addr, 1)")
	require.NoError(t, err)
	assert.Equal(t, &ast.Poke{Addr: &ast.Variable{Name: "addr"}, Value: &ast.IntegerLit{Value: 1}}, got)
}

func TestParseExprBuiltinTransmute(t *testing.T) {
	got, err := parseExpr("transmute(x, num)")
	require.NoError(t, err)
	assert.Equal(t, &ast.Transmute{Operand: &ast.Variable{Name: "x"}, Type: typesystem.Number{}}, got)
}

func TestParseExprStringInterpolation(t *testing.T) {
	got, err := parseExpr(`"hi {name}"`)
	require.NoError(t, err)
	assert.Equal(t, &ast.BinaryOp{
		Op:  ast.OpAdd,
		Lhs: &ast.StringLit{Value: "hi "},
		Rhs: &ast.Cast{Operand: &ast.Variable{Name: "name"}, Type: typesystem.String{}},
	}, got)
}

func TestParseExprBlock(t *testing.T) {
	got, err := parseExpr("{ 1 }")
	require.NoError(t, err)
	blockExpr, ok := got.(*ast.BlockExpr)
	require.True(t, ok)
	require.Len(t, blockExpr.Block.Stmts, 1)
}

func TestParseExprEmptyIsError(t *testing.T) {
	_, err := parseExpr("")
	assert.Error(t, err)

	_, err = parseExpr("   ")
	assert.Error(t, err)
}

func TestParseExprUnparseableIsError(t *testing.T) {
	_, err := parseExpr("1 1")
	assert.Error(t, err)
}
