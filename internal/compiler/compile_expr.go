package compiler

import (
	"fmt"
	"strings"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/config"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

// Compile is the emission pass's entry point: a type-switch dispatcher over
// every ast.Expr variant that renders the target stack-machine assembly
// text for e (spec.md §4, §6). It assumes e already passed Infer — it does
// not re-validate types, only recovers the type information it needs to
// choose an instruction class or compute an address, by re-running Infer on
// pure subexpressions (inference has no side effect outside statement
// forms, so this is safe and keeps the two passes independent).
func Compile(c *Context, e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.IntegerLit:
		return fmt.Sprintf("(i32.const %d)", n.Value), nil
	case *ast.NumberLit:
		return fmt.Sprintf("(f32.const %g)", n.Value), nil
	case *ast.BoolLit:
		if n.Value {
			return "(i32.const 1)", nil
		}
		return "(i32.const 0)", nil
	case *ast.StringLit:
		return compileStringLit(c, n)
	case *ast.ArrayLit:
		return compileArrayLit(c, n)
	case *ast.DictLit:
		return compileDictLit(c, n)
	case *ast.EnumTagLit:
		return compileEnumTagLit(c, n)
	case *ast.Variable:
		return compileVariable(c, n), nil
	case *ast.Call:
		return compileCall(c, n)
	case *ast.Index:
		return compileIndex(c, n)
	case *ast.Field:
		return compileField(c, n)
	case *ast.BlockExpr:
		return CompileBlock(c, n.Block)
	case *ast.Clone:
		return compileClone(c, n)
	case *ast.Peek:
		return compilePeek(c, n)
	case *ast.Poke:
		return compilePoke(c, n)
	case *ast.BinaryOp:
		return compileBinaryOp(c, n)
	case *ast.UnaryOp:
		return compileUnaryOp(c, n)
	case *ast.Cast:
		return compileCast(c, n)
	case *ast.NullCheck:
		return compileNullCheck(c, n)
	case *ast.Nullable:
		// The null value itself, sentinel -1 (never a live heap address).
		return "(i32.const -1)", nil
	case *ast.Transmute:
		return compileTransmute(c, n)
	default:
		return "", c.Fail(&diagnostics.InvariantError{Reason: "unrecognized expression node"})
	}
}

// allocate bumps the allocator by size bytes and returns the base address
// the newly allocated block starts at, tracing the growth when enabled.
func (c *Context) allocate(label string, size int) int {
	before := c.Allocator
	addr := c.Allocator
	c.Allocator += size
	c.traceAlloc(label, before, c.Allocator)
	return addr
}

// compileStringLit lays out Value as a null-terminated byte buffer in a
// data segment (no length header — runtime helpers use $strlen), growing
// the allocator by len+1 bytes for the terminator (spec.md §6's "Object
// size" rule has no entry for strings precisely because their size is
// discovered at runtime via the terminator, not stored in a header).
func compileStringLit(c *Context, n *ast.StringLit) (string, error) {
	addr := c.allocate("string literal", len(n.Value)+1)
	c.Data = append(c.Data, fmt.Sprintf("(data (i32.const %d) %s)", addr, wasmQuote(n.Value+"\x00")))
	return fmt.Sprintf("(i32.const %d)", addr), nil
}

// wasmQuote renders s as a target-text string literal: printable ASCII is
// left as-is, `"` and `\` are backslash-escaped, and every other byte
// (including the NUL terminator compileStringLit appends) is emitted as a
// `\HH` two-digit hex escape, the byte-escape form target text uses instead
// of Go's `%q`/`\x`/`\u` escapes.
func wasmQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '"' || ch == '\\':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case ch >= 0x20 && ch < 0x7f:
			b.WriteByte(ch)
		default:
			fmt.Fprintf(&b, "\\%02x", ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// compileArrayLit allocates a length-prefixed array object: a 4-byte length
// header followed by one 4-byte slot per element, each stored with its
// element class's store instruction (spec.md §6).
func compileArrayLit(c *Context, n *ast.ArrayLit) (string, error) {
	arrType, err := Infer(c, n)
	if err != nil {
		return "", err
	}
	arrType, err = c.Expand(arrType)
	if err != nil {
		return "", err
	}
	arr, ok := arrType.(typesystem.Array)
	if !ok {
		return "", c.Fail(&diagnostics.InvariantError{Reason: "array literal did not infer to an array type"})
	}
	class, _ := typesystem.Compile(arr.Elem)

	// Heap-typed elements (nested arrays/dicts/strings) are compiled before
	// this array's own header is allocated, since compiling one may itself
	// bump the allocator; allocating the header first would interleave the
	// two objects' memory. Primitive elements have no such ordering
	// constraint, so they compile after the header the same as before.
	var elemTexts []string
	if typesystem.IsHeap(arr.Elem) {
		elemTexts = make([]string, len(n.Elems))
		for i, el := range n.Elems {
			text, err := Compile(c, el)
			if err != nil {
				return "", err
			}
			elemTexts[i] = text
		}
	}

	addr := c.allocate("array literal", config.Bytes+len(n.Elems)*config.Bytes)
	stores := []string{fmt.Sprintf("(i32.store (i32.const %d) (i32.const %d))", addr, len(n.Elems))}
	for i, el := range n.Elems {
		elText := ""
		if elemTexts != nil {
			elText = elemTexts[i]
		} else {
			text, err := Compile(c, el)
			if err != nil {
				return "", err
			}
			elText = text
		}
		offset := addr + config.Bytes + i*config.Bytes
		stores = append(stores, fmt.Sprintf("(%s.store (i32.const %d) %s)", class, offset, elText))
	}
	return wrapSequence(stores, fmt.Sprintf("(i32.const %d)", addr)), nil
}

// compileDictLit allocates a fixed-size record (no header — the field count
// is known statically from the dict's type) and stores each field at its
// declaration-order offset.
func compileDictLit(c *Context, n *ast.DictLit) (string, error) {
	dictType, err := Infer(c, n)
	if err != nil {
		return "", err
	}
	dictType, err = c.Expand(dictType)
	if err != nil {
		return "", err
	}
	dict, ok := dictType.(typesystem.Dict)
	if !ok {
		return "", c.Fail(&diagnostics.InvariantError{Reason: "dict literal did not infer to a dict type"})
	}

	values := make(map[string]ast.Expr, len(n.Entries))
	for _, entry := range n.Entries {
		values[entry.Name] = entry.Value
	}

	// As in compileArrayLit: heap-typed fields compile before this dict's
	// own fixed-size record is allocated, so a nested heap object never
	// shares address space with the record that references it.
	prestore := make(map[string]string, len(dict.Fields))
	for _, f := range dict.Fields {
		if typesystem.IsHeap(f.Type) {
			text, err := Compile(c, values[f.Name])
			if err != nil {
				return "", err
			}
			prestore[f.Name] = text
		}
	}

	addr := c.allocate("dict literal", len(dict.Fields)*config.Bytes)
	var stores []string
	for i, f := range dict.Fields {
		valText, ok := prestore[f.Name]
		if !ok {
			text, err := Compile(c, values[f.Name])
			if err != nil {
				return "", err
			}
			valText = text
		}
		class, _ := typesystem.Compile(f.Type)
		stores = append(stores, fmt.Sprintf("(%s.store (i32.const %d) %s)", class, addr+i*config.Bytes, valText))
	}
	return wrapSequence(stores, fmt.Sprintf("(i32.const %d)", addr)), nil
}

func compileEnumTagLit(c *Context, n *ast.EnumTagLit) (string, error) {
	aliased, ok := c.TypeAlias[n.TypeName]
	if !ok {
		return "", c.Fail(&diagnostics.UndefinedReferenceError{Kind: "type alias", Name: n.TypeName})
	}
	expanded, err := c.Expand(aliased)
	if err != nil {
		return "", err
	}
	enum, ok := expanded.(typesystem.Enum)
	if !ok {
		return "", c.Fail(&diagnostics.TypeMismatchError{Context: "enum tag", Expected: "enum", Got: expanded.String()})
	}
	idx, ok := enum.VariantIndex(n.Variant)
	if !ok {
		return "", c.Fail(&diagnostics.InvariantError{Reason: n.Variant + " is not a variant of " + n.TypeName})
	}
	return fmt.Sprintf("(i32.const %d)", idx), nil
}

func compileVariable(c *Context, n *ast.Variable) string {
	if c.IsGlobal(n.Name) {
		return fmt.Sprintf("(global.get $%s)", n.Name)
	}
	return fmt.Sprintf("(local.get $%s)", n.Name)
}

func compileCall(c *Context, n *ast.Call) (string, error) {
	if _, ok := c.Functions[n.Name]; ok {
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			text, err := Compile(c, a)
			if err != nil {
				return "", err
			}
			args[i] = text
		}
		return fmt.Sprintf("(call $%s %s)", n.Name, joinSpace(args)), nil
	}
	if def, ok := c.Macros[n.Name]; ok {
		expanded, err := expandMacro(c, n.Name, def, n.Args)
		if err != nil {
			return "", err
		}
		return Compile(c, expanded)
	}
	return "", c.Fail(&diagnostics.UndefinedReferenceError{Kind: "function", Name: n.Name})
}

func compileIndex(c *Context, n *ast.Index) (string, error) {
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
		return "", c.Fail(&diagnostics.InvariantError{Reason: "index target did not infer to an array type"})
	}
	arrText, err := Compile(c, n.Arr)
	if err != nil {
		return "", err
	}
	idxText, err := Compile(c, n.Idx)
	if err != nil {
		return "", err
	}
	class, _ := typesystem.Compile(arr.Elem)
	addr := arrayElemAddr(arrText, idxText)
	return fmt.Sprintf("(%s.load %s)", class, addr), nil
}

func compileField(c *Context, n *ast.Field) (string, error) {
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
		return "", c.Fail(&diagnostics.InvariantError{Reason: "field target did not infer to a dict type"})
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
	class, _ := typesystem.Compile(fieldType)
	return fmt.Sprintf("(%s.load %s)", class, dictFieldAddr(objText, offset/config.Bytes)), nil
}

// compileClone deep-copies a heap object into freshly allocated space and
// returns the new address. The byte count is computed per runtime type
// since a Clone operand's class (string/array/dict) determines which size
// formula and which copy helper applies.
func compileClone(c *Context, n *ast.Clone) (string, error) {
	t, err := Infer(c, n.Operand)
	if err != nil {
		return "", err
	}
	t, err = c.Expand(t)
	if err != nil {
		return "", err
	}
	operandText, err := Compile(c, n.Operand)
	if err != nil {
		return "", err
	}
	switch tv := t.(type) {
	case typesystem.String:
		return fmt.Sprintf("(call $clone_str %s)", operandText), nil
	case typesystem.Array:
		return fmt.Sprintf("(call $memcopy %s %s)", operandText, arrayObjectSizeText(operandText)), nil
	case typesystem.Dict:
		return fmt.Sprintf("(call $memcopy %s %s)", operandText, dictObjectSizeText(len(tv.Fields))), nil
	default:
		return "", c.Fail(&diagnostics.TypeMismatchError{Context: "clone", Expected: "heap type", Got: t.String()})
	}
}

func compilePeek(c *Context, n *ast.Peek) (string, error) {
	addrText, err := Compile(c, n.Addr)
	if err != nil {
		return "", err
	}
	t, err := c.Expand(n.Type)
	if err != nil {
		return "", err
	}
	class, _ := typesystem.Compile(t)
	return fmt.Sprintf("(%s.load %s)", class, addrText), nil
}

func compilePoke(c *Context, n *ast.Poke) (string, error) {
	addrText, err := Compile(c, n.Addr)
	if err != nil {
		return "", err
	}
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
	return fmt.Sprintf("(%s.store %s %s)", class, addrText, valText), nil
}

// wrapSequence renders a block of side-effecting instructions followed by a
// trailing value-producing instruction, the way every heap literal needs to
// (store the header and fields, then leave the base address on the stack).
func wrapSequence(effects []string, value string) string {
	if len(effects) == 0 {
		return value
	}
	return fmt.Sprintf("(block (result i32) %s %s)", joinSpace(effects), value)
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
