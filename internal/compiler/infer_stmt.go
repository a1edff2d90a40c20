package compiler

import (
	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

// InferStmt is the statement half of the inference pass's type-switch
// dispatcher. It returns the statement's type — Void for every purely
// declarative form, the branch type for If/Try, the expression's type for
// ExprStmt — so Block can report "the last statement's type" (spec.md §4.7).
func InferStmt(c *Context, s ast.Stmt) (typesystem.Type, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return Infer(c, n.Expr)
	case *ast.LetVar:
		return inferLetVar(c, n)
	case *ast.LetFunc:
		return inferLetFunc(c, n)
	case *ast.LetIndexAssign:
		return inferLetIndexAssign(c, n)
	case *ast.LetFieldAssign:
		return inferLetFieldAssign(c, n)
	case *ast.IfStmt:
		return inferIfStmt(c, n)
	case *ast.WhileStmt:
		return inferWhileStmt(c, n)
	case *ast.TypeDeclStmt:
		return inferTypeDecl(c, n)
	case *ast.TryStmt:
		return inferTryStmt(c, n)
	case *ast.MacroDeclStmt:
		c.Macros[n.Name] = MacroDef{Params: n.Params, Body: n.Body}
		return typesystem.Void{}, nil
	case *ast.OverloadDeclStmt:
		return inferOverloadDecl(c, n)
	case *ast.ImportStmt:
		return inferImportStmt(c, n)
	case *ast.ReturnStmt:
		return inferReturnStmt(c, n)
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			return nil, c.Fail(&diagnostics.ScopeViolationError{Reason: "break outside while"})
		}
		return typesystem.Void{}, nil
	case *ast.NextStmt:
		if c.loopDepth == 0 {
			return nil, c.Fail(&diagnostics.ScopeViolationError{Reason: "next outside while"})
		}
		return typesystem.Void{}, nil
	default:
		return nil, c.Fail(&diagnostics.InvariantError{Reason: "unrecognized statement node"})
	}
}

// InferBlock infers every statement in b in order, threading c through each,
// inside its own save/restore scope (spec.md §4.7: variables, functions and
// macros declared within a block never escape it). The block's type is its
// last statement's type, or Void when empty.
func InferBlock(c *Context, b *ast.Block) (typesystem.Type, error) {
	saved := c.enterBlock()
	defer c.exitBlock(saved)

	var last typesystem.Type = typesystem.Void{}
	for _, stmt := range b.Stmts {
		t, err := InferStmt(c, stmt)
		if err != nil {
			return nil, err
		}
		last = t
	}
	return last, nil
}

func inferLetVar(c *Context, n *ast.LetVar) (typesystem.Type, error) {
	t, err := Infer(c, n.Value)
	if err != nil {
		return nil, err
	}
	t, err = c.Expand(t)
	if err != nil {
		return nil, err
	}
	if c.Arguments.Has(n.Name) {
		return nil, c.Fail(&diagnostics.ScopeViolationError{Reason: "reassigning to a parameter: " + n.Name})
	}
	if n.Scope == ast.ScopeGlobal {
		if existing, ok := c.Globals.Get(n.Name); ok && !typesystem.Equals(existing, t) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "let " + n.Name, Expected: existing.String(), Got: t.String()})
		}
		c.Globals.Set(n.Name, t)
	} else {
		if existing, ok := c.Variables.Get(n.Name); ok && !typesystem.Equals(existing, t) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "let " + n.Name, Expected: existing.String(), Got: t.String()})
		}
		c.Variables.Set(n.Name, t)
	}
	return typesystem.Void{}, nil
}

func inferLetIndexAssign(c *Context, n *ast.LetIndexAssign) (typesystem.Type, error) {
	elemT, err := inferIndex(c, &ast.Index{Arr: n.Arr, Idx: n.Idx})
	if err != nil {
		return nil, err
	}
	valT, err := Infer(c, n.Value)
	if err != nil {
		return nil, err
	}
	valT, err = c.Expand(valT)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equals(elemT, valT) {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "index assignment", Expected: elemT.String(), Got: valT.String()})
	}
	return typesystem.Void{}, nil
}

func inferLetFieldAssign(c *Context, n *ast.LetFieldAssign) (typesystem.Type, error) {
	fieldT, err := inferField(c, &ast.Field{Obj: n.Obj, Name: n.Name})
	if err != nil {
		return nil, err
	}
	valT, err := Infer(c, n.Value)
	if err != nil {
		return nil, err
	}
	valT, err = c.Expand(valT)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equals(fieldT, valT) {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "field assignment", Expected: fieldT.String(), Got: valT.String()})
	}
	return typesystem.Void{}, nil
}

func inferLetFunc(c *Context, n *ast.LetFunc) (typesystem.Type, error) {
	params := NewOrderedMap[typesystem.Type]()
	for _, p := range n.Params {
		pt, err := c.Expand(p.Type)
		if err != nil {
			return nil, err
		}
		params.Set(p.Name, pt)
	}

	var explicitRet typesystem.Type
	explicit := n.ReturnType != nil
	if explicit {
		r, err := c.Expand(n.ReturnType)
		if err != nil {
			return nil, err
		}
		explicitRet = r
	}

	placeholderRet := explicitRet
	if !explicit {
		placeholderRet = typesystem.Void{}
	}
	fn := &Function{Args: params, Locals: NewOrderedMap[typesystem.Type](), ReturnType: placeholderRet}
	c.Functions[n.Name] = fn
	if n.Scope == ast.ScopeGlobal {
		c.Exports[n.Name] = fn
	}

	saved := c.enterFunction(params, explicitRet, explicit)
	bodyType, err := Infer(c, n.Body)
	if err != nil {
		c.exitFunction(saved)
		return nil, err
	}
	locals := c.Variables.Clone()
	c.exitFunction(saved)

	finalRet := explicitRet
	if explicit {
		if !typesystem.Equals(explicitRet, bodyType) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "function " + n.Name, Expected: explicitRet.String(), Got: bodyType.String()})
		}
	} else {
		finalRet = bodyType
	}

	fn.Locals = locals
	fn.ReturnType = finalRet
	return typesystem.Void{}, nil
}

func inferIfStmt(c *Context, n *ast.IfStmt) (typesystem.Type, error) {
	condT, err := Infer(c, n.Cond)
	if err != nil {
		return nil, err
	}
	condT, err = c.Expand(condT)
	if err != nil {
		return nil, err
	}
	if _, ok := condT.(typesystem.Bool); !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "if condition", Expected: "bool", Got: condT.String()})
	}
	thenT, err := Infer(c, n.Then)
	if err != nil {
		return nil, err
	}
	thenT, err = c.Expand(thenT)
	if err != nil {
		return nil, err
	}
	if n.Else == nil {
		return thenT, nil
	}
	elseT, err := Infer(c, n.Else)
	if err != nil {
		return nil, err
	}
	elseT, err = c.Expand(elseT)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equals(thenT, elseT) {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "if branches", Expected: thenT.String(), Got: elseT.String()})
	}
	return thenT, nil
}

func inferWhileStmt(c *Context, n *ast.WhileStmt) (typesystem.Type, error) {
	condT, err := Infer(c, n.Cond)
	if err != nil {
		return nil, err
	}
	condT, err = c.Expand(condT)
	if err != nil {
		return nil, err
	}
	if _, ok := condT.(typesystem.Bool); !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "while condition", Expected: "bool", Got: condT.String()})
	}
	c.loopDepth++
	_, err = Infer(c, n.Body)
	c.loopDepth--
	if err != nil {
		return nil, err
	}
	return typesystem.Void{}, nil
}

func inferTypeDecl(c *Context, n *ast.TypeDeclStmt) (typesystem.Type, error) {
	c.TypeAlias[n.Name] = n.Type
	return typesystem.Void{}, nil
}

func inferTryStmt(c *Context, n *ast.TryStmt) (typesystem.Type, error) {
	before := c.Snapshot()
	t, err := Infer(c, n.Expr)
	if err == nil && c.Err == nil {
		return t, nil
	}
	c.Restore(before)
	return InferStmt(c, n.Recover)
}

func inferOverloadDecl(c *Context, n *ast.OverloadDeclStmt) (typesystem.Type, error) {
	lhs, err := c.Expand(n.LhsType)
	if err != nil {
		return nil, err
	}
	rhsKey := ""
	if n.RhsType != nil {
		rhs, err := c.Expand(n.RhsType)
		if err != nil {
			return nil, err
		}
		rhsKey = rhs.String()
	}
	c.Overloads[OverloadKey{OpID: n.OpID, Lhs: lhs.String(), Rhs: rhsKey}] = n.FuncName
	return typesystem.Void{}, nil
}

func inferImportStmt(c *Context, n *ast.ImportStmt) (typesystem.Type, error) {
	params := NewOrderedMap[typesystem.Type]()
	for _, p := range n.Params {
		pt, err := c.Expand(p.Type)
		if err != nil {
			return nil, err
		}
		params.Set(p.Name, pt)
	}
	ret, err := c.Expand(n.ReturnType)
	if err != nil {
		return nil, err
	}
	c.Functions[n.Name] = &Function{Args: params, Locals: NewOrderedMap[typesystem.Type](), ReturnType: ret}
	return typesystem.Void{}, nil
}

func inferReturnStmt(c *Context, n *ast.ReturnStmt) (typesystem.Type, error) {
	if !c.inFunc {
		return nil, c.Fail(&diagnostics.ScopeViolationError{Reason: "return outside function"})
	}
	var t typesystem.Type = typesystem.Void{}
	if n.Expr != nil {
		var err error
		t, err = Infer(c, n.Expr)
		if err != nil {
			return nil, err
		}
		t, err = c.Expand(t)
		if err != nil {
			return nil, err
		}
	}
	if c.funcReturnExplicit && !typesystem.Equals(c.funcReturnType, t) {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "return", Expected: c.funcReturnType.String(), Got: t.String()})
	}
	return typesystem.Void{}, nil
}
