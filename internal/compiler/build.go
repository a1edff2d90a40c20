package compiler

import (
	"fmt"
	"strings"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/config"
	"github.com/archy-none/lumo/internal/parser"
	"github.com/archy-none/lumo/internal/typesystem"
)

// Build parses source, runs it through both compiler passes, and renders
// the target module's textual stack-machine assembly (spec.md §5, §6).
//
// The top-level program is deliberately NOT processed through
// InferBlock/CompileBlock: both wrap themselves in enterBlock/exitBlock,
// which restores the caller's Variables/Functions/Macros on return — exactly
// right for a nested `{ ... }` block, but fatal for the program root, since
// it would discard every top-level `let`/`pub let` the instant the "block"
// exited, leaving the second (emission) pass unable to see what the first
// (inference) pass declared. Build instead walks the parsed []ast.Stmt
// directly through InferStmt, then a second time through CompileStmt, so
// every top-level declaration lives in c for the whole build.
func Build(source string, cfg config.BuildConfig) (string, *Context, error) {
	stmts, err := parser.ParseProgram(source)
	if err != nil {
		return "", nil, err
	}

	c := New(cfg)

	var programReturn typesystem.Type = typesystem.Void{}
	stmtTypes := make([]typesystem.Type, len(stmts))
	for i, stmt := range stmts {
		t, err := InferStmt(c, stmt)
		if err != nil {
			return "", c, err
		}
		stmtTypes[i] = t
		programReturn = t
	}
	c.ProgramReturn = programReturn

	var bodyParts []string
	for i, stmt := range stmts {
		text, err := CompileStmt(c, stmt)
		if err != nil {
			return "", c, err
		}
		if imp, ok := stmt.(*ast.ImportStmt); ok {
			c.Imports = append(c.Imports, renderImportDecl(imp))
		}
		if text == "" {
			continue
		}
		if i < len(stmts)-1 {
			if _, isVoid := stmtTypes[i].(typesystem.Void); !isVoid {
				text = fmt.Sprintf("(drop %s)", text)
			}
		}
		bodyParts = append(bodyParts, text)
	}
	startLocals := c.takeLocals()

	return renderModule(c, bodyParts, startLocals), c, nil
}

// renderImportDecl renders `load [module.]name(params): ret` as a wasm
// function import; Build calls this once per ImportStmt it walks, since
// CompileStmt's declarative-form branch intentionally emits nothing for it
// (the function record it needs was already registered during Infer).
func renderImportDecl(n *ast.ImportStmt) string {
	var params []string
	for _, p := range n.Params {
		class, _ := typesystem.Compile(p.Type)
		params = append(params, fmt.Sprintf("(param $%s %s)", p.Name, class))
	}
	resultClass, hasResult := typesystem.Compile(n.ReturnType)
	result := ""
	if hasResult {
		result = fmt.Sprintf(" (result %s)", resultClass)
	}
	module := n.Module
	if module == "" {
		module = "env"
	}
	return fmt.Sprintf("(import %q %q (func $%s %s%s))", module, n.Name, n.Name, joinSpace(params), result)
}

// renderGlobalDecl declares a `pub let` top-level variable's backing wasm
// global with a zeroed initializer; the value it actually holds is set by
// the `(global.set ...)` instruction compileLetVar already emitted into
// _start's body.
func renderGlobalDecl(name string, t typesystem.Type) string {
	class, ok := typesystem.Compile(t)
	if !ok {
		class = "i32"
	}
	zero := "(i32.const 0)"
	if class == "f32" {
		zero = "(f32.const 0)"
	}
	return fmt.Sprintf("(global $%s (mut %s) %s)", name, class, zero)
}

// renderModule assembles the final module text: memory and allocator
// setup, the fixed runtime helper prelude, every import/data/function
// declaration the build accumulated, one global per top-level `pub let`,
// and the exported _start entry point running bodyParts in sequence.
func renderModule(c *Context, bodyParts []string, startLocals []LocalDecl) string {
	var b strings.Builder
	b.WriteString("(module\n")
	fmt.Fprintf(&b, "  (memory $mem (export \"mem\") %d)\n", config.MemoryPages)
	fmt.Fprintf(&b, "  (global $allocator (export \"allocator\") (mut i32) (i32.const %d))\n", c.Allocator)

	for _, imp := range c.Imports {
		fmt.Fprintf(&b, "  %s\n", imp)
	}

	b.WriteString(runtimePrelude)

	for _, data := range c.Data {
		fmt.Fprintf(&b, "  %s\n", data)
	}

	for _, decl := range c.Declares {
		fmt.Fprintf(&b, "  %s\n", decl)
	}

	for _, name := range c.Globals.Keys() {
		t, _ := c.Globals.Get(name)
		fmt.Fprintf(&b, "  %s\n", renderGlobalDecl(name, t))
	}

	var localDecls []string
	for _, l := range startLocals {
		localDecls = append(localDecls, fmt.Sprintf("(local $%s %s)", l.Name, l.Class))
	}
	body := "(nop)"
	if len(bodyParts) > 0 {
		body = joinSpace(bodyParts)
	}
	result := ""
	if class, ok := typesystem.Compile(c.ProgramReturn); ok {
		result = fmt.Sprintf("(result %s) ", class)
	}
	fmt.Fprintf(&b, "  (func $_start %s%s %s)\n", joinSpace(localDecls), result, body)
	b.WriteString("  (export \"_start\" (func $_start)))\n")
	return b.String()
}

// runtimePrelude is the fixed set of runtime helper functions every module
// links in, regardless of source content: a bump allocator atop the
// $allocator global, a generic byte-range copy used by $clone_str and heap
// Clone, and the string primitives spec.md §4.4/§6 reference by name
// ($concat for `+`, $strcmp for `==`/`!=`, $to_str/$to_num for Cast).
const runtimePrelude = `  (func $malloc (export "malloc") (param $size i32) (result i32)
    (local $addr i32)
    (local.set $addr (global.get $allocator))
    (global.set $allocator (i32.add (global.get $allocator) (local.get $size)))
    (local.get $addr))

  (func $memcopy (param $src i32) (param $size i32) (result i32)
    (local $dst i32)
    (local.set $dst (call $malloc (local.get $size)))
    (memory.copy (local.get $dst) (local.get $src) (local.get $size))
    (local.get $dst))

  (func $strlen (param $ptr i32) (result i32)
    (local $i i32)
    (block $done (result i32)
      (loop $scan
        (if (i32.eqz (i32.load8_u (i32.add (local.get $ptr) (local.get $i))))
          (then (br $done (local.get $i))))
        (local.set $i (i32.add (local.get $i) (i32.const 1)))
        (br $scan))
      (local.get $i)))

  (func $clone_str (param $src i32) (result i32)
    (call $memcopy (local.get $src) (i32.add (call $strlen (local.get $src)) (i32.const 1))))

  (func $concat (param $a i32) (param $b i32) (result i32)
    (local $len_a i32)
    (local $len_b i32)
    (local $dst i32)
    (local.set $len_a (call $strlen (local.get $a)))
    (local.set $len_b (call $strlen (local.get $b)))
    (local.set $dst (call $malloc (i32.add (i32.add (local.get $len_a) (local.get $len_b)) (i32.const 1))))
    (memory.copy (local.get $dst) (local.get $a) (local.get $len_a))
    (memory.copy (i32.add (local.get $dst) (local.get $len_a)) (local.get $b) (i32.add (local.get $len_b) (i32.const 1)))
    (local.get $dst))

  (func $strcmp (param $a i32) (param $b i32) (result i32)
    (local $i i32)
    (block $done (result i32)
      (loop $scan
        (if (i32.ne (i32.load8_u (i32.add (local.get $a) (local.get $i))) (i32.load8_u (i32.add (local.get $b) (local.get $i))))
          (then (br $done (i32.const 0))))
        (if (i32.eqz (i32.load8_u (i32.add (local.get $a) (local.get $i))))
          (then (br $done (i32.const 1))))
        (local.set $i (i32.add (local.get $i) (i32.const 1)))
        (br $scan))
      (i32.const 1)))

  (func $to_str (param $val f32) (result i32)
    (local $n i32)
    (local $digit i32)
    (local $neg i32)
    (local $buf i32)
    (local $i i32)
    (local.set $n (i32.trunc_f32_s (local.get $val)))
    (if (i32.lt_s (local.get $n) (i32.const 0))
      (then
        (local.set $neg (i32.const 1))
        (local.set $n (i32.sub (i32.const 0) (local.get $n)))))
    (local.set $buf (call $malloc (i32.const 12)))
    (local.set $i (i32.const 11))
    (i32.store8 (i32.add (local.get $buf) (local.get $i)) (i32.const 0))
    (block $digits_done
      (loop $digits
        (local.set $i (i32.sub (local.get $i) (i32.const 1)))
        (local.set $digit (i32.rem_s (local.get $n) (i32.const 10)))
        (i32.store8 (i32.add (local.get $buf) (local.get $i)) (i32.add (local.get $digit) (i32.const 48)))
        (local.set $n (i32.div_s (local.get $n) (i32.const 10)))
        (br_if $digits_done (i32.eqz (local.get $n)))
        (br $digits)))
    (if (local.get $neg)
      (then
        (local.set $i (i32.sub (local.get $i) (i32.const 1)))
        (i32.store8 (i32.add (local.get $buf) (local.get $i)) (i32.const 45))))
    (call $clone_str (i32.add (local.get $buf) (local.get $i))))

  (func $to_num (param $ptr i32) (result f32)
    (local $i i32)
    (local $neg i32)
    (local $acc f32)
    (local $ch i32)
    (if (i32.eq (i32.load8_u (local.get $ptr)) (i32.const 45))
      (then
        (local.set $neg (i32.const 1))
        (local.set $i (i32.const 1))))
    (block $done
      (loop $digits
        (local.set $ch (i32.load8_u (i32.add (local.get $ptr) (local.get $i))))
        (br_if $done (i32.eqz (local.get $ch)))
        (br_if $done (i32.lt_s (local.get $ch) (i32.const 48)))
        (br_if $done (i32.gt_s (local.get $ch) (i32.const 57)))
        (local.set $acc (f32.add (f32.mul (local.get $acc) (f32.const 10))
          (f32.convert_i32_s (i32.sub (local.get $ch) (i32.const 48)))))
        (local.set $i (i32.add (local.get $i) (i32.const 1)))
        (br $digits)))
    (if (local.get $neg) (then (local.set $acc (f32.neg (local.get $acc)))))
    (local.get $acc))

`
