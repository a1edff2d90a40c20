package compiler

import (
	"fmt"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

// CompileStmt is the statement half of the emission pass. It renders the
// instructions a statement executes; declarative forms (type/macro/overload
// declarations) were already fully resolved during Infer and emit nothing.
func CompileStmt(c *Context, s ast.Stmt) (string, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return Compile(c, n.Expr)
	case *ast.LetVar:
		return compileLetVar(c, n)
	case *ast.LetFunc:
		return compileLetFunc(c, n)
	case *ast.LetIndexAssign:
		return compileLetIndexAssign(c, n)
	case *ast.LetFieldAssign:
		return compileLetFieldAssign(c, n)
	case *ast.IfStmt:
		return compileIfStmt(c, n)
	case *ast.WhileStmt:
		return compileWhileStmt(c, n)
	case *ast.TypeDeclStmt, *ast.MacroDeclStmt, *ast.OverloadDeclStmt, *ast.ImportStmt:
		return "", nil
	case *ast.TryStmt:
		return compileTryStmt(c, n)
	case *ast.ReturnStmt:
		return compileReturnStmt(c, n)
	case *ast.BreakStmt:
		return fmt.Sprintf("(br $while_end_%d)", c.loopDepth), nil
	case *ast.NextStmt:
		return fmt.Sprintf("(br $while_start_%d)", c.loopDepth), nil
	default:
		return "", c.Fail(&diagnostics.InvariantError{Reason: "unrecognized statement node"})
	}
}

// CompileBlock renders every statement in b in sequence, dropping the value
// of every non-final statement that produces one so the wasm operand stack
// balances (spec.md §6's `(drop)` rule), and returning the last statement's
// compiled text as the block's value.
func CompileBlock(c *Context, b *ast.Block) (string, error) {
	saved := c.enterBlock()
	defer c.exitBlock(saved)

	var parts []string
	var last string = "(nop)"
	for i, stmt := range b.Stmts {
		text, err := CompileStmt(c, stmt)
		if err != nil {
			return "", err
		}
		if i == len(b.Stmts)-1 {
			last = text
			continue
		}
		if text == "" {
			continue
		}
		valueType, _ := InferStmt(c, stmt)
		if valueType != nil {
			if _, isVoid := valueType.(typesystem.Void); !isVoid {
				text = fmt.Sprintf("(drop %s)", text)
			}
		}
		parts = append(parts, text)
	}
	return wrapSequence(parts, last), nil
}

func compileLetVar(c *Context, n *ast.LetVar) (string, error) {
	t, err := Infer(c, n.Value)
	if err != nil {
		return "", err
	}
	t, err = c.Expand(t)
	if err != nil {
		return "", err
	}
	valText, err := Compile(c, n.Value)
	if err != nil {
		return "", err
	}
	class, _ := typesystem.Compile(t)
	if n.Scope == ast.ScopeGlobal {
		c.Globals.Set(n.Name, t)
		return fmt.Sprintf("(global.set $%s %s)", n.Name, valText), nil
	}
	c.Variables.Set(n.Name, t)
	c.declareLocal(n.Name, class)
	return fmt.Sprintf("(local.set $%s %s)", n.Name, valText), nil
}

func compileLetIndexAssign(c *Context, n *ast.LetIndexAssign) (string, error) {
	arrType, err := Infer(c, n.Arr)
	if err != nil {
		return "", err
	}
	arrType, err = c.Expand(arrType)
	if err != nil {
		return "", err
	}
	arr, ok := arrType.(typesystem.Array)
	if !ok {
		return "", c.Fail(&diagnostics.InvariantError{Reason: "index assignment target is not an array"})
	}
	arrText, err := Compile(c, n.Arr)
	if err != nil {
		return "", err
	}
	idxText, err := Compile(c, n.Idx)
	if err != nil {
		return "", err
	}
	valText, err := Compile(c, n.Value)
	if err != nil {
		return "", err
	}
	class, _ := typesystem.Compile(arr.Elem)
	return fmt.Sprintf("(%s.store %s %s)", class, arrayElemAddr(arrText, idxText), valText), nil
}

func compileLetFieldAssign(c *Context, n *ast.LetFieldAssign) (string, error) {
	objType, err := Infer(c, n.Obj)
	if err != nil {
		return "", err
	}
	objType, err = c.Expand(objType)
	if err != nil {
		return "", err
	}
	dict, ok := objType.(typesystem.Dict)
	if !ok {
		return "", c.Fail(&diagnostics.InvariantError{Reason: "field assignment target is not a dict"})
	}
	offset, ok := dict.FieldOffset(n.Name)
	if !ok {
		return "", c.Fail(&diagnostics.UndefinedReferenceError{Kind: "field", Name: n.Name})
	}
	fieldType, _ := dict.FieldType(n.Name)
	objText, err := Compile(c, n.Obj)
	if err != nil {
		return "", err
	}
	valText, err := Compile(c, n.Value)
	if err != nil {
		return "", err
	}
	class, _ := typesystem.Compile(fieldType)
	return fmt.Sprintf("(%s.store %s %s)", class, dictFieldAddr(objText, offset/4), valText), nil
}

// compileLetFunc renders `(func $name (param $p class)... (result class) body)`
// and appends it to c.Declares. The function record (Args/Locals/ReturnType)
// was already finalized by the Infer pass, so this only needs to emit text.
func compileLetFunc(c *Context, n *ast.LetFunc) (string, error) {
	fn, ok := c.Functions[n.Name]
	if !ok {
		return "", c.Fail(&diagnostics.InvariantError{Reason: "function " + n.Name + " missing from context at emission time"})
	}

	saved := c.enterFunction(fn.Args, fn.ReturnType, true)
	outer := c.takeLocals()
	bodyText, err := Compile(c, n.Body)
	if err != nil {
		c.pendingLocals = outer
		c.exitFunction(saved)
		return "", err
	}
	locals := c.takeLocals()
	c.pendingLocals = outer
	c.exitFunction(saved)

	var params []string
	for _, name := range fn.Args.Keys() {
		t, _ := fn.Args.Get(name)
		class, _ := typesystem.Compile(t)
		params = append(params, fmt.Sprintf("(param $%s %s)", name, class))
	}
	var localDecls []string
	for _, l := range locals {
		localDecls = append(localDecls, fmt.Sprintf("(local $%s %s)", l.Name, l.Class))
	}
	resultClass, hasResult := typesystem.Compile(fn.ReturnType)
	result := ""
	if hasResult {
		result = fmt.Sprintf("(result %s) ", resultClass)
	}

	decl := fmt.Sprintf("(func $%s %s%s%s %s)",
		n.Name, joinSpace(params), result, joinSpace(localDecls), bodyText)
	c.Declares = append(c.Declares, decl)
	return "", nil
}

func compileIfStmt(c *Context, n *ast.IfStmt) (string, error) {
	condText, err := Compile(c, n.Cond)
	if err != nil {
		return "", err
	}
	thenType, err := Infer(c, n.Then)
	if err != nil {
		return "", err
	}
	thenType, err = c.Expand(thenType)
	if err != nil {
		return "", err
	}
	thenText, err := Compile(c, n.Then)
	if err != nil {
		return "", err
	}
	class, hasResult := typesystem.Compile(thenType)
	result := ""
	if hasResult {
		result = fmt.Sprintf("(result %s) ", class)
	}
	if n.Else == nil {
		return fmt.Sprintf("(if %s%s (then %s))", result, condText, thenText), nil
	}
	elseText, err := Compile(c, n.Else)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(if %s%s (then %s) (else %s))", result, condText, thenText, elseText), nil
}

func compileWhileStmt(c *Context, n *ast.WhileStmt) (string, error) {
	c.loopDepth++
	label := c.loopDepth
	condText, err := Compile(c, n.Cond)
	if err != nil {
		c.loopDepth--
		return "", err
	}
	bodyType, err := Infer(c, n.Body)
	if err != nil {
		c.loopDepth--
		return "", err
	}
	bodyText, err := Compile(c, n.Body)
	c.loopDepth--
	if err != nil {
		return "", err
	}
	if _, isVoid := bodyType.(typesystem.Void); !isVoid {
		bodyText = fmt.Sprintf("(drop %s)", bodyText)
	}
	return fmt.Sprintf(
		"(block $while_end_%d (loop $while_start_%d (br_if $while_end_%d (i32.eqz %s)) %s (br $while_start_%d)))",
		label, label, label, condText, bodyText, label), nil
}

func compileTryStmt(c *Context, n *ast.TryStmt) (string, error) {
	before := c.Snapshot()
	text, err := Compile(c, n.Expr)
	if err == nil {
		return text, nil
	}
	c.Restore(before)
	return CompileStmt(c, n.Recover)
}

func compileReturnStmt(c *Context, n *ast.ReturnStmt) (string, error) {
	if n.Expr == nil {
		return "(return)", nil
	}
	text, err := Compile(c, n.Expr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(return %s)", text), nil
}
