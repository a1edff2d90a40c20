package compiler

import (
	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
)

// rewrite is a name -> replacement-expression substitution applied by
// substituteExpr. A parameter name maps to the argument expression tree
// that replaces every reference to it; a macro-body-local name maps to a
// freshly suffixed Variable so repeated expansions of the same macro never
// collide (spec.md §9's recommended "hygienic substitution at the AST
// level", replacing the source's fragile textual-substitution approach).
type rewrite map[string]ast.Expr

// expandMacro binds def's parameters to args and returns a hygienically
// substituted copy of the body, ready to Infer/Compile in place of the
// original Call. Arity is checked first (spec.md §7: arity mismatch).
func expandMacro(c *Context, macroName string, def MacroDef, args []ast.Expr) (ast.Expr, error) {
	if len(def.Params) != len(args) {
		return nil, c.Fail(&diagnostics.ArityMismatchError{Name: macroName, Expected: len(def.Params), Got: len(args)})
	}

	subst := rewrite{}
	for i, p := range def.Params {
		subst[p] = args[i]
	}

	suffix := c.freshID("macro:" + macroName)
	for _, local := range collectLocalNames(def.Body, subst) {
		subst[local] = &ast.Variable{Name: local + "_" + suffix}
	}

	return substituteExpr(def.Body, subst), nil
}

// collectLocalNames finds every name a local-scope LetVar statement binds
// inside body that is not already a macro parameter (those are in subst).
// Names bound by a LetFunc inside the body are not collected or renamed.
// Those names get hygienic renaming so two expansions of the same macro in
// the same scope never declare the same local twice.
func collectLocalNames(e ast.Expr, params rewrite) []string {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if _, isParam := params[name]; isParam {
			return
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.BlockExpr:
			for _, s := range n.Block.Stmts {
				walkStmt(s)
			}
		case *ast.Call:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.Index:
			walkExpr(n.Arr)
			walkExpr(n.Idx)
		case *ast.Field:
			walkExpr(n.Obj)
		case *ast.Clone:
			walkExpr(n.Operand)
		case *ast.BinaryOp:
			walkExpr(n.Lhs)
			walkExpr(n.Rhs)
		case *ast.UnaryOp:
			walkExpr(n.Operand)
		case *ast.Cast:
			walkExpr(n.Operand)
		case *ast.NullCheck:
			walkExpr(n.Operand)
		case *ast.Transmute:
			walkExpr(n.Operand)
		case *ast.ArrayLit:
			for _, el := range n.Elems {
				walkExpr(el)
			}
		case *ast.DictLit:
			for _, f := range n.Entries {
				walkExpr(f.Value)
			}
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.ExprStmt:
			walkExpr(n.Expr)
		case *ast.LetVar:
			if n.Scope == ast.ScopeLocal {
				add(n.Name)
			}
			walkExpr(n.Value)
		case *ast.LetIndexAssign:
			walkExpr(n.Arr)
			walkExpr(n.Idx)
			walkExpr(n.Value)
		case *ast.LetFieldAssign:
			walkExpr(n.Obj)
			walkExpr(n.Value)
		case *ast.IfStmt:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			if n.Else != nil {
				walkExpr(n.Else)
			}
		case *ast.WhileStmt:
			walkExpr(n.Cond)
			walkExpr(n.Body)
		case *ast.TryStmt:
			walkExpr(n.Expr)
			walkStmt(n.Recover)
		case *ast.ReturnStmt:
			if n.Expr != nil {
				walkExpr(n.Expr)
			}
		}
	}

	walkExpr(e)
	return names
}

// substituteExpr returns a deep copy of e with every Variable reference in
// subst replaced by its mapped expression.
func substituteExpr(e ast.Expr, subst rewrite) ast.Expr {
	switch n := e.(type) {
	case *ast.Variable:
		if repl, ok := subst[n.Name]; ok {
			return repl
		}
		return n
	case *ast.IntegerLit, *ast.NumberLit, *ast.BoolLit, *ast.StringLit, *ast.EnumTagLit:
		return e
	case *ast.ArrayLit:
		elems := make([]ast.Expr, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = substituteExpr(el, subst)
		}
		return &ast.ArrayLit{Elems: elems}
	case *ast.DictLit:
		entries := make([]ast.DictEntry, len(n.Entries))
		for i, f := range n.Entries {
			entries[i] = ast.DictEntry{Name: f.Name, Value: substituteExpr(f.Value, subst)}
		}
		return &ast.DictLit{Entries: entries}
	case *ast.Call:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = substituteExpr(a, subst)
		}
		return &ast.Call{Name: n.Name, Args: args}
	case *ast.Index:
		return &ast.Index{Arr: substituteExpr(n.Arr, subst), Idx: substituteExpr(n.Idx, subst)}
	case *ast.Field:
		return &ast.Field{Obj: substituteExpr(n.Obj, subst), Name: n.Name}
	case *ast.BlockExpr:
		return &ast.BlockExpr{Block: &ast.Block{Stmts: substituteStmts(n.Block.Stmts, subst)}}
	case *ast.Clone:
		return &ast.Clone{Operand: substituteExpr(n.Operand, subst)}
	case *ast.Peek:
		return &ast.Peek{Addr: substituteExpr(n.Addr, subst), Type: n.Type}
	case *ast.Poke:
		return &ast.Poke{Addr: substituteExpr(n.Addr, subst), Value: substituteExpr(n.Value, subst)}
	case *ast.BinaryOp:
		return &ast.BinaryOp{Op: n.Op, Lhs: substituteExpr(n.Lhs, subst), Rhs: substituteExpr(n.Rhs, subst)}
	case *ast.UnaryOp:
		return &ast.UnaryOp{Op: n.Op, Operand: substituteExpr(n.Operand, subst)}
	case *ast.Cast:
		return &ast.Cast{Operand: substituteExpr(n.Operand, subst), Type: n.Type}
	case *ast.NullCheck:
		return &ast.NullCheck{Operand: substituteExpr(n.Operand, subst)}
	case *ast.Nullable:
		return n
	case *ast.Transmute:
		return &ast.Transmute{Operand: substituteExpr(n.Operand, subst), Type: n.Type}
	default:
		return e
	}
}

func substituteStmts(stmts []ast.Stmt, subst rewrite) []ast.Stmt {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = substituteStmt(s, subst)
	}
	return out
}

func substituteStmt(s ast.Stmt, subst rewrite) ast.Stmt {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return &ast.ExprStmt{Expr: substituteExpr(n.Expr, subst)}
	case *ast.LetVar:
		name := n.Name
		if repl, ok := subst[name]; ok {
			if v, ok := repl.(*ast.Variable); ok {
				name = v.Name
			}
		}
		return &ast.LetVar{Scope: n.Scope, Name: name, Value: substituteExpr(n.Value, subst)}
	case *ast.LetIndexAssign:
		return &ast.LetIndexAssign{Arr: substituteExpr(n.Arr, subst), Idx: substituteExpr(n.Idx, subst), Value: substituteExpr(n.Value, subst)}
	case *ast.LetFieldAssign:
		return &ast.LetFieldAssign{Obj: substituteExpr(n.Obj, subst), Name: n.Name, Value: substituteExpr(n.Value, subst)}
	case *ast.IfStmt:
		var elseExpr ast.Expr
		if n.Else != nil {
			elseExpr = substituteExpr(n.Else, subst)
		}
		return &ast.IfStmt{Cond: substituteExpr(n.Cond, subst), Then: substituteExpr(n.Then, subst), Else: elseExpr}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: substituteExpr(n.Cond, subst), Body: substituteExpr(n.Body, subst)}
	case *ast.TryStmt:
		return &ast.TryStmt{Expr: substituteExpr(n.Expr, subst), Recover: substituteStmt(n.Recover, subst)}
	case *ast.ReturnStmt:
		var expr ast.Expr
		if n.Expr != nil {
			expr = substituteExpr(n.Expr, subst)
		}
		return &ast.ReturnStmt{Expr: expr}
	default:
		return s
	}
}
