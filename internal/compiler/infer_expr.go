package compiler

import (
	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/config"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

// Infer is the inference pass's entry point: a type-switch dispatcher over
// every ast.Expr variant (spec.md §4, §9's design note preferring a
// type-switch dispatcher over a Visitor interface). It returns the
// expression's type, or an error already recorded on c via c.Fail. An enum
// tag literal's type is the Alias it names; it is not expanded here.
func Infer(c *Context, e ast.Expr) (typesystem.Type, error) {
	switch n := e.(type) {
	case *ast.IntegerLit:
		return typesystem.Integer{}, nil
	case *ast.NumberLit:
		return typesystem.Number{}, nil
	case *ast.BoolLit:
		return typesystem.Bool{}, nil
	case *ast.StringLit:
		return typesystem.String{}, nil
	case *ast.ArrayLit:
		return inferArrayLit(c, n)
	case *ast.DictLit:
		return inferDictLit(c, n)
	case *ast.EnumTagLit:
		return inferEnumTagLit(c, n)
	case *ast.Variable:
		return inferVariable(c, n)
	case *ast.Call:
		return inferCall(c, n)
	case *ast.Index:
		return inferIndex(c, n)
	case *ast.Field:
		return inferField(c, n)
	case *ast.BlockExpr:
		return InferBlock(c, n.Block)
	case *ast.Clone:
		return inferClone(c, n)
	case *ast.Peek:
		return inferPeek(c, n)
	case *ast.Poke:
		return inferPoke(c, n)
	case *ast.BinaryOp:
		return inferBinaryOp(c, n)
	case *ast.UnaryOp:
		return inferUnaryOp(c, n)
	case *ast.Cast:
		return inferCast(c, n)
	case *ast.NullCheck:
		return inferNullCheck(c, n)
	case *ast.Nullable:
		t, err := c.Expand(n.Type)
		if err != nil {
			return nil, err
		}
		if !typesystem.IsHeap(t) {
			return nil, c.Fail(&diagnostics.NullabilityError{Type: t.String()})
		}
		return t, nil
	case *ast.Transmute:
		return inferTransmute(c, n)
	default:
		return nil, c.Fail(&diagnostics.InvariantError{Reason: "unrecognized expression node"})
	}
}

func inferArrayLit(c *Context, n *ast.ArrayLit) (typesystem.Type, error) {
	if len(n.Elems) == 0 {
		return nil, c.Fail(&diagnostics.InvariantError{Reason: "cannot infer element type of empty array literal"})
	}
	elemType, err := Infer(c, n.Elems[0])
	if err != nil {
		return nil, err
	}
	elemType, err = c.Expand(elemType)
	if err != nil {
		return nil, err
	}
	for _, el := range n.Elems[1:] {
		t, err := Infer(c, el)
		if err != nil {
			return nil, err
		}
		t, err = c.Expand(t)
		if err != nil {
			return nil, err
		}
		if !typesystem.Equals(elemType, t) {
			return nil, c.Fail(&diagnostics.InvariantError{Reason: "mixed array element types"})
		}
	}
	return typesystem.Array{Elem: elemType}, nil
}

func inferDictLit(c *Context, n *ast.DictLit) (typesystem.Type, error) {
	fields := make([]typesystem.DictField, 0, len(n.Entries))
	seen := map[string]int{}
	for _, entry := range n.Entries {
		t, err := Infer(c, entry.Value)
		if err != nil {
			return nil, err
		}
		t, err = c.Expand(t)
		if err != nil {
			return nil, err
		}
		if idx, dup := seen[entry.Name]; dup {
			if c.Config.DictDuplicateKeys == config.DictReject {
				return nil, c.Fail(&diagnostics.InvariantError{Reason: "duplicate dict literal key: " + entry.Name})
			}
			fields[idx] = typesystem.DictField{Name: entry.Name, Type: t}
			continue
		}
		seen[entry.Name] = len(fields)
		fields = append(fields, typesystem.DictField{Name: entry.Name, Type: t})
	}
	return typesystem.Dict{Fields: fields}, nil
}

func inferEnumTagLit(c *Context, n *ast.EnumTagLit) (typesystem.Type, error) {
	aliased, ok := c.TypeAlias[n.TypeName]
	if !ok {
		return nil, c.Fail(&diagnostics.UndefinedReferenceError{Kind: "type alias", Name: n.TypeName})
	}
	expanded, err := c.Expand(aliased)
	if err != nil {
		return nil, err
	}
	enum, ok := expanded.(typesystem.Enum)
	if !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "enum tag", Expected: "enum", Got: expanded.String()})
	}
	if _, ok := enum.VariantIndex(n.Variant); !ok {
		return nil, c.Fail(&diagnostics.InvariantError{Reason: n.Variant + " is not a variant of " + n.TypeName})
	}
	return typesystem.Alias{Name: n.TypeName}, nil
}

func inferVariable(c *Context, n *ast.Variable) (typesystem.Type, error) {
	t, ok := c.LookupVariable(n.Name)
	if !ok {
		return nil, c.Fail(&diagnostics.UndefinedReferenceError{Kind: "variable", Name: n.Name})
	}
	return t, nil
}

func inferCall(c *Context, n *ast.Call) (typesystem.Type, error) {
	if fn, ok := c.Functions[n.Name]; ok {
		return inferFunctionCall(c, n, fn)
	}
	if def, ok := c.Macros[n.Name]; ok {
		expanded, err := expandMacro(c, n.Name, def, n.Args)
		if err != nil {
			return nil, err
		}
		return Infer(c, expanded)
	}
	return nil, c.Fail(&diagnostics.UndefinedReferenceError{Kind: "function", Name: n.Name})
}

func inferFunctionCall(c *Context, n *ast.Call, fn *Function) (typesystem.Type, error) {
	params := fn.Args.Keys()
	if len(params) != len(n.Args) {
		return nil, c.Fail(&diagnostics.ArityMismatchError{Name: n.Name, Expected: len(params), Got: len(n.Args)})
	}
	for i, arg := range n.Args {
		argType, err := Infer(c, arg)
		if err != nil {
			return nil, err
		}
		argType, err = c.Expand(argType)
		if err != nil {
			return nil, err
		}
		declared, _ := fn.Args.Get(params[i])
		declared, err = c.bindOrExpand(declared, argType)
		if err != nil {
			return nil, err
		}
		if !typesystem.Equals(declared, argType) {
			return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "call to " + n.Name, Expected: declared.String(), Got: argType.String()})
		}
	}
	ret, err := c.bindOrExpand(fn.ReturnType, fn.ReturnType)
	if err != nil {
		return nil, err
	}
	return c.Expand(ret)
}

func inferIndex(c *Context, n *ast.Index) (typesystem.Type, error) {
	arrT, err := Infer(c, n.Arr)
	if err != nil {
		return nil, err
	}
	arrT, err = c.Expand(arrT)
	if err != nil {
		return nil, err
	}
	arr, ok := arrT.(typesystem.Array)
	if !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "index", Expected: "array", Got: arrT.String()})
	}
	idxT, err := Infer(c, n.Idx)
	if err != nil {
		return nil, err
	}
	idxT, err = c.Expand(idxT)
	if err != nil {
		return nil, err
	}
	if _, ok := idxT.(typesystem.Integer); !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "index", Expected: "int", Got: idxT.String()})
	}
	return c.Expand(arr.Elem)
}

func inferField(c *Context, n *ast.Field) (typesystem.Type, error) {
	objT, err := Infer(c, n.Obj)
	if err != nil {
		return nil, err
	}
	objT, err = c.Expand(objT)
	if err != nil {
		return nil, err
	}
	dict, ok := objT.(typesystem.Dict)
	if !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "field access", Expected: "dict", Got: objT.String()})
	}
	fieldType, ok := dict.FieldType(n.Name)
	if !ok {
		return nil, c.Fail(&diagnostics.UndefinedReferenceError{Kind: "field", Name: n.Name})
	}
	return c.Expand(fieldType)
}

func inferClone(c *Context, n *ast.Clone) (typesystem.Type, error) {
	t, err := Infer(c, n.Operand)
	if err != nil {
		return nil, err
	}
	t, err = c.Expand(t)
	if err != nil {
		return nil, err
	}
	if !typesystem.IsHeap(t) {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "clone", Expected: "heap type", Got: t.String()})
	}
	return t, nil
}

func inferPeek(c *Context, n *ast.Peek) (typesystem.Type, error) {
	addrT, err := Infer(c, n.Addr)
	if err != nil {
		return nil, err
	}
	addrT, err = c.Expand(addrT)
	if err != nil {
		return nil, err
	}
	if _, ok := addrT.(typesystem.Integer); !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "peek address", Expected: "int", Got: addrT.String()})
	}
	return c.Expand(n.Type)
}

func inferPoke(c *Context, n *ast.Poke) (typesystem.Type, error) {
	addrT, err := Infer(c, n.Addr)
	if err != nil {
		return nil, err
	}
	addrT, err = c.Expand(addrT)
	if err != nil {
		return nil, err
	}
	if _, ok := addrT.(typesystem.Integer); !ok {
		return nil, c.Fail(&diagnostics.TypeMismatchError{Context: "poke address", Expected: "int", Got: addrT.String()})
	}
	if _, err := Infer(c, n.Value); err != nil {
		return nil, err
	}
	return typesystem.Void{}, nil
}
