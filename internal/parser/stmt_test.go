package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/typesystem"
)

func TestParseStmtLetVar(t *testing.T) {
	got, err := parseStmt("let x = 1")
	require.NoError(t, err)
	assert.Equal(t, &ast.LetVar{Scope: ast.ScopeLocal, Name: "x", Value: &ast.IntegerLit{Value: 1}}, got)
}

func TestParseStmtPubLetVarIsGlobalScope(t *testing.T) {
	got, err := parseStmt("pub let x = 1")
	require.NoError(t, err)
	assert.Equal(t, &ast.LetVar{Scope: ast.ScopeGlobal, Name: "x", Value: &ast.IntegerLit{Value: 1}}, got)
}

func TestParseStmtPubWithoutLetIsError(t *testing.T) {
	_, err := parseStmt("pub x = 1")
	assert.Error(t, err)
}

func TestParseStmtLetFunc(t *testing.T) {
	got, err := parseStmt("let add(a: int, b: int): int = a + b")
	require.NoError(t, err)
	want := &ast.LetFunc{
		Scope: ast.ScopeLocal,
		Name:  "add",
		Params: []ast.Param{
			{Name: "a", Type: typesystem.Integer{}},
			{Name: "b", Type: typesystem.Integer{}},
		},
		ReturnType: typesystem.Integer{},
		Body:       &ast.BinaryOp{Op: ast.OpAdd, Lhs: &ast.Variable{Name: "a"}, Rhs: &ast.Variable{Name: "b"}},
	}
	assert.Equal(t, want, got)
}

func TestParseStmtLetFuncNoReturnType(t *testing.T) {
	got, err := parseStmt("let inc(a: int) = a + 1")
	require.NoError(t, err)
	letFunc, ok := got.(*ast.LetFunc)
	require.True(t, ok)
	assert.Nil(t, letFunc.ReturnType)
}

func TestParseStmtLetIndexAssign(t *testing.T) {
	got, err := parseStmt("let arr[0] = 5")
	require.NoError(t, err)
	assert.Equal(t, &ast.LetIndexAssign{
		Arr:   &ast.Variable{Name: "arr"},
		Idx:   &ast.IntegerLit{Value: 0},
		Value: &ast.IntegerLit{Value: 5},
	}, got)
}

func TestParseStmtLetFieldAssign(t *testing.T) {
	got, err := parseStmt("let obj.name = 5")
	require.NoError(t, err)
	assert.Equal(t, &ast.LetFieldAssign{
		Obj:   &ast.Variable{Name: "obj"},
		Name:  "name",
		Value: &ast.IntegerLit{Value: 5},
	}, got)
}

func TestParseStmtTypeDecl(t *testing.T) {
	got, err := parseStmt("type Meters = int")
	require.NoError(t, err)
	assert.Equal(t, &ast.TypeDeclStmt{Name: "Meters", Type: typesystem.Integer{}}, got)
}

func TestParseStmtIf(t *testing.T) {
	got, err := parseStmt("if x then 1 else 2")
	require.NoError(t, err)
	assert.Equal(t, &ast.IfStmt{
		Cond: &ast.Variable{Name: "x"},
		Then: &ast.IntegerLit{Value: 1},
		Else: &ast.IntegerLit{Value: 2},
	}, got)
}

func TestParseStmtIfWithoutElse(t *testing.T) {
	got, err := parseStmt("if x then 1")
	require.NoError(t, err)
	ifStmt, ok := got.(*ast.IfStmt)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)
}

func TestParseStmtIfMissingThenIsError(t *testing.T) {
	_, err := parseStmt("if x 1")
	assert.Error(t, err)
}

func TestParseStmtWhile(t *testing.T) {
	got, err := parseStmt("while x loop { next }")
	require.NoError(t, err)
	assert.Equal(t, &ast.WhileStmt{
		Cond: &ast.Variable{Name: "x"},
		Body: &ast.BlockExpr{Block: &ast.Block{Stmts: []ast.Stmt{&ast.NextStmt{}}}},
	}, got)
}

func TestParseStmtTry(t *testing.T) {
	got, err := parseStmt("try x catch break")
	require.NoError(t, err)
	assert.Equal(t, &ast.TryStmt{
		Expr:    &ast.Variable{Name: "x"},
		Recover: &ast.BreakStmt{},
	}, got)
}

func TestParseStmtMacro(t *testing.T) {
	got, err := parseStmt("macro double(x) = x + x")
	require.NoError(t, err)
	assert.Equal(t, &ast.MacroDeclStmt{
		Name:   "double",
		Params: []string{"x"},
		Body:   &ast.BinaryOp{Op: ast.OpAdd, Lhs: &ast.Variable{Name: "x"}, Rhs: &ast.Variable{Name: "x"}},
	}, got)
}

func TestParseStmtOverloadBinary(t *testing.T) {
	got, err := parseStmt("overload vecAdd = Vec + Vec")
	require.NoError(t, err)
	assert.Equal(t, &ast.OverloadDeclStmt{
		OpID:     ast.OpAdd,
		LhsType:  typesystem.Alias{Name: "Vec"},
		RhsType:  typesystem.Alias{Name: "Vec"},
		FuncName: "vecAdd",
	}, got)
}

func TestParseStmtOverloadCast(t *testing.T) {
	got, err := parseStmt("overload vecToStr = Vec as str")
	require.NoError(t, err)
	assert.Equal(t, &ast.OverloadDeclStmt{
		OpID:     "as",
		LhsType:  typesystem.Alias{Name: "Vec"},
		RhsType:  typesystem.String{},
		FuncName: "vecToStr",
	}, got)
}

func TestParseStmtImport(t *testing.T) {
	got, err := parseStmt("load math.sqrt(x: num): num")
	require.NoError(t, err)
	assert.Equal(t, &ast.ImportStmt{
		Module:     "math",
		Name:       "sqrt",
		Params:     []ast.Param{{Name: "x", Type: typesystem.Number{}}},
		ReturnType: typesystem.Number{},
	}, got)
}

func TestParseStmtImportNoModule(t *testing.T) {
	got, err := parseStmt("load log(msg: str): void")
	require.NoError(t, err)
	assert.Equal(t, &ast.ImportStmt{
		Module:     "",
		Name:       "log",
		Params:     []ast.Param{{Name: "msg", Type: typesystem.String{}}},
		ReturnType: typesystem.Void{},
	}, got)
}

func TestParseStmtReturn(t *testing.T) {
	got, err := parseStmt("return 1")
	require.NoError(t, err)
	assert.Equal(t, &ast.ReturnStmt{Expr: &ast.IntegerLit{Value: 1}}, got)
}

func TestParseStmtBareReturn(t *testing.T) {
	got, err := parseStmt("return")
	require.NoError(t, err)
	assert.Equal(t, &ast.ReturnStmt{}, got)
}

func TestParseStmtBreakAndNext(t *testing.T) {
	got, err := parseStmt("break")
	require.NoError(t, err)
	assert.Equal(t, &ast.BreakStmt{}, got)

	got, err = parseStmt("next")
	require.NoError(t, err)
	assert.Equal(t, &ast.NextStmt{}, got)
}

func TestParseStmtExprFallback(t *testing.T) {
	got, err := parseStmt("f(1)")
	require.NoError(t, err)
	assert.Equal(t, &ast.ExprStmt{Expr: &ast.Call{Name: "f", Args: []ast.Expr{&ast.IntegerLit{Value: 1}}}}, got)
}

func TestParseProgramSplitsOnSemicolons(t *testing.T) {
	stmts, err := ParseProgram("let x = 1; let y = 2")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.Equal(t, &ast.LetVar{Scope: ast.ScopeLocal, Name: "x", Value: &ast.IntegerLit{Value: 1}}, stmts[0])
	assert.Equal(t, &ast.LetVar{Scope: ast.ScopeLocal, Name: "y", Value: &ast.IntegerLit{Value: 2}}, stmts[1])
}

func TestParseProgramTrailingSemicolonSkipped(t *testing.T) {
	stmts, err := ParseProgram("let x = 1;")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
}
