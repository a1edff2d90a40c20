package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archy-none/lumo/internal/config"
)

func TestBuildArithmeticExpression(t *testing.T) {
	module, c, err := Build("1 + 2", config.DefaultBuildConfig())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Contains(t, module, "(i32.add (i32.const 1) (i32.const 2))")
	assert.Contains(t, module, "(func $_start (result i32)")
	assert.Contains(t, module, "(export \"_start\" (func $_start)))")
	assert.Contains(t, module, "(memory $mem (export \"mem\")")
	assert.Contains(t, module, "(global $allocator (export \"allocator\")")
	assert.Contains(t, module, "(func $malloc (export \"malloc\")")
}

func TestBuildPubLetDeclaresGlobal(t *testing.T) {
	module, _, err := Build("pub let x = 42", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(global $x (mut i32) (i32.const 0))")
	assert.Contains(t, module, "(global.set $x (i32.const 42))")
}

func TestBuildLetFuncDeclaresAndCalls(t *testing.T) {
	module, c, err := Build("let add(a: int, b: int): int = a + b; add(1, 2)", config.DefaultBuildConfig())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Contains(t, module, "(func $add (param $a i32) (param $b i32)(result i32)")
	assert.Contains(t, module, "(i32.add (local.get $a) (local.get $b))")
	assert.Contains(t, module, "(call $add (i32.const 1) (i32.const 2))")
}

func TestBuildOnlyLastNonVoidStatementIsUndropped(t *testing.T) {
	module, _, err := Build("1 + 1; 2 + 2", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(drop (i32.add (i32.const 1) (i32.const 1)))")
	assert.NotContains(t, module, "(drop (i32.add (i32.const 2) (i32.const 2)))")
}

func TestBuildImportRendersWasmImport(t *testing.T) {
	module, _, err := Build("load math.sqrt(x: num): num", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, `(import "math" "sqrt" (func $sqrt (param $x f32) (result f32)))`)
}

func TestBuildUndefinedVariableIsError(t *testing.T) {
	_, c, err := Build("x + 1", config.DefaultBuildConfig())
	require.Error(t, err)
	if c != nil {
		assert.Error(t, c.Err)
	}
}

func TestBuildStringLiteralGrowsAllocator(t *testing.T) {
	module, c, err := Build(`"hi"`, config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Allocator)
	assert.True(t, strings.Contains(module, `(data (i32.const 0) "hi\00")`))
}

func TestBuildWhileLoopEmitsBlockAndLoop(t *testing.T) {
	module, _, err := Build("let i = 0; while i < 3 loop { let i = i + 1 }", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(loop $while_start_1")
	assert.Contains(t, module, "(block $while_end_1")
}

func TestBuildMacroExpansion(t *testing.T) {
	module, _, err := Build("macro twice(x) = x + x; twice(3)", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(i32.add (i32.const 3) (i32.const 3))")
}

func TestBuildIfWithoutElseAsFinalStatementAnnotatesResult(t *testing.T) {
	module, _, err := Build("if true then 42", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(func $_start (result i32)")
	assert.Contains(t, module, "(if (result i32) (i32.const 1) (then (i32.const 42)))")
	assert.NotContains(t, module, "(drop (if")
}

func TestBuildNullCheckUsesNegativeOneSentinel(t *testing.T) {
	module, _, err := Build(`"hi"?`, config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(i32.ne (i32.const 0) (i32.const -1))")
}

func TestBuildReassigningParameterIsScopeViolation(t *testing.T) {
	_, c, err := Build("let f(a: int): int = { let a = a + 1; a }", config.DefaultBuildConfig())
	require.Error(t, err)
	if c != nil {
		assert.Error(t, c.Err)
	}
}

func TestBuildRebindingLocalWithMismatchedTypeIsError(t *testing.T) {
	_, c, err := Build(`let x = 1; let x = "one"`, config.DefaultBuildConfig())
	require.Error(t, err)
	if c != nil {
		assert.Error(t, c.Err)
	}
}

func TestBuildRebindingLocalWithMatchingTypeSucceeds(t *testing.T) {
	module, _, err := Build("let x = 1; let x = 2; x", config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, "(local.set $x (i32.const 2))")
}

func TestBuildEqualityOnDisallowedClassIsError(t *testing.T) {
	_, c, err := Build(`@{a: 1} == @{a: 1}`, config.DefaultBuildConfig())
	require.Error(t, err)
	if c != nil {
		assert.Error(t, c.Err)
	}
}

func TestBuildArrayLiteralCompilesHeapElementsBeforeHeader(t *testing.T) {
	module, c, err := Build(`["a", "b"]`, config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, `(data (i32.const 0) "a\00")`)
	assert.Contains(t, module, `(data (i32.const 2) "b\00")`)
	assert.Contains(t, module, "(i32.store (i32.const 4) (i32.const 2))")
	assert.Contains(t, module, "(i32.store (i32.const 8) (i32.const 0))")
	assert.Contains(t, module, "(i32.store (i32.const 12) (i32.const 2))")
	assert.Equal(t, 16, c.Allocator)
}

func TestBuildDictLiteralCompilesHeapFieldBeforeRecord(t *testing.T) {
	module, c, err := Build(`@{name: "hi"}`, config.DefaultBuildConfig())
	require.NoError(t, err)
	assert.Contains(t, module, `(data (i32.const 0) "hi\00")`)
	assert.Contains(t, module, "(i32.store (i32.const 3) (i32.const 0))")
	assert.Equal(t, 7, c.Allocator)
}
