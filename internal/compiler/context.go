// Package compiler implements lumo's shared mutable compilation context
// and the two passes — inference and code emission — that walk the AST
// through it (spec.md §3, §4). Both passes are type-switch dispatchers over
// ast.Node rather than methods on the node types themselves, which keeps
// package ast a dependency-free leaf (spec.md §9's design note).
package compiler

import (
	"crypto/sha1"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/archy-none/lumo/internal/config"
	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/typesystem"
)

// AnyBindingKey is the reserved type_alias key spec.md §4.2 uses to record
// the concrete type Any was fixed to on first contact.
const AnyBindingKey = "$any"

// OverloadKey identifies one registered operator overload: an operator id
// paired with the string form of its operand types after full alias
// expansion. Two alias names for the same structural type therefore give
// the same key; overloads cannot be told apart by alias name.
type OverloadKey struct {
	OpID string
	Lhs  string
	Rhs  string
}

// MacroDef is a macro's parameter list and unexpanded body.
type MacroDef struct {
	Params []string
	Body   ast.Expr
}

// Function is the function record of spec.md §3: an ordered parameter map,
// an ordered local-variable map, and a return type.
type Function struct {
	Args       *OrderedMap[typesystem.Type]
	Locals     *OrderedMap[typesystem.Type]
	ReturnType typesystem.Type
}

// Context is the single mutable compilation context spec.md §3 describes.
// The inference and emission passes take *Context by pointer (the parser
// needs no context); nothing here is ever hidden behind package-level
// globals.
type Context struct {
	Allocator int

	Imports  []string
	Declares []string
	Data     []string

	Macros    map[string]MacroDef
	Overloads map[OverloadKey]string
	TypeAlias map[string]typesystem.Type

	Variables *OrderedMap[typesystem.Type]
	Globals   *OrderedMap[typesystem.Type]
	Arguments *OrderedMap[typesystem.Type]

	Functions map[string]*Function
	Exports   map[string]*Function

	ProgramReturn typesystem.Type
	Err           error

	Config config.BuildConfig

	// Trace accumulates human-readable allocator-growth notes when
	// TraceEnabled is set; sizes are humanize-formatted.
	Trace        []string
	TraceEnabled bool

	loopDepth int
	idCounter int

	inFunc             bool
	funcReturnType     typesystem.Type
	funcReturnExplicit bool

	// pendingLocals accumulates the (name, class) pairs CompileStmt's LetVar
	// case discovers while emitting one function body (or the top-level
	// _start body); compileLetFunc drains it per function and Build drains it
	// for _start, via takeLocals, to render the `(local $name class)` lines.
	pendingLocals []LocalDecl
}

// LocalDecl is one wasm-style local variable declaration: a name and the
// numeric class (i32/f32) it was first bound with.
type LocalDecl struct {
	Name  string
	Class string
}

// declareLocal records name/class once; a second declaration of the same
// name (e.g. a `let` re-used inside a loop body) is a no-op.
func (c *Context) declareLocal(name, class string) {
	for _, d := range c.pendingLocals {
		if d.Name == name {
			return
		}
	}
	c.pendingLocals = append(c.pendingLocals, LocalDecl{Name: name, Class: class})
}

// takeLocals drains and returns the locals accumulated since the last call,
// ready for rendering a function's header.
func (c *Context) takeLocals() []LocalDecl {
	out := c.pendingLocals
	c.pendingLocals = nil
	return out
}

// New returns a freshly initialized Context ready to run Build.
func New(cfg config.BuildConfig) *Context {
	return &Context{
		Macros:    make(map[string]MacroDef),
		Overloads: make(map[OverloadKey]string),
		TypeAlias: make(map[string]typesystem.Type),
		Variables: NewOrderedMap[typesystem.Type](),
		Globals:   NewOrderedMap[typesystem.Type](),
		Arguments: NewOrderedMap[typesystem.Type](),
		Functions: make(map[string]*Function),
		Exports:   make(map[string]*Function),
		Config:    cfg,
	}
}

// Fail records err as the context's first error, if none has been recorded
// yet, and returns it. Spec.md §7: "the first failure records a
// human-readable message in context.error and aborts the pass" — every
// subsequent Fail call on the same context is a no-op so the original
// failure is never overwritten.
func (c *Context) Fail(err error) error {
	if c.Err == nil {
		c.Err = err
	}
	return err
}

// trace appends a formatted step note when tracing is enabled.
func (c *Context) trace(format string, args ...interface{}) {
	if !c.TraceEnabled {
		return
	}
	c.Trace = append(c.Trace, fmt.Sprintf(format, args...))
}

// traceAlloc records allocator growth in a human-readable form.
func (c *Context) traceAlloc(label string, before, after int) {
	c.trace("%s: allocator %s -> %s (+%s)", label,
		humanize.Comma(int64(before)), humanize.Comma(int64(after)), humanize.Bytes(uint64(after-before)))
}

// lumoNamespace seeds every deterministic id this context generates so two
// builds of the same source produce byte-identical output (spec.md §5).
var lumoNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("github.com/archy-none/lumo"))

// freshID returns a short, deterministic, collision-resistant suffix
// derived from seed and an internal call counter. It backs hygienic macro
// parameter renaming (spec.md §9's recommendation to make macro expansion
// hygienic), so two nested or recursive expansions of the same macro never
// collide. Using uuid.NewSHA1 over a namespace plus (seed, counter) keeps
// the id fully determined by the source text and its position in the
// compile, rather than by wall-clock time or entropy, preserving spec.md
// §5's determinism guarantee. While-loop labels use the loop nesting depth
// instead (see compileWhileStmt), not freshID.
func (c *Context) freshID(seed string) string {
	c.idCounter++
	data := []byte(fmt.Sprintf("%s#%d", seed, c.idCounter))
	id := uuid.NewSHA1(lumoNamespace, data)
	sum := sha1.Sum(id[:])
	return fmt.Sprintf("%x", sum[:4])
}

// scopeSnapshot captures the three maps spec.md says are saved before
// entering a function body or a macro expansion, and restored on exit.
type scopeSnapshot struct {
	variables *OrderedMap[typesystem.Type]
	arguments *OrderedMap[typesystem.Type]
	macros    map[string]MacroDef
}

func cloneMacros(m map[string]MacroDef) map[string]MacroDef {
	out := make(map[string]MacroDef, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// saveScope snapshots variables/arguments/macros without mutating them.
func (c *Context) saveScope() scopeSnapshot {
	return scopeSnapshot{variables: c.Variables, arguments: c.Arguments, macros: c.Macros}
}

// restoreScope reinstates a previously saved snapshot.
func (c *Context) restoreScope(s scopeSnapshot) {
	c.Variables = s.variables
	c.Arguments = s.arguments
	c.Macros = s.macros
}

// funcSnapshot adds the function-local bookkeeping (loop depth resets at a
// function boundary so a `break`/`next` can never reach through a nested
// function literal, and the expected-return-type tracking ReturnStmt checks
// against) to a scopeSnapshot.
type funcSnapshot struct {
	scope              scopeSnapshot
	loopDepth          int
	inFunc             bool
	funcReturnType     typesystem.Type
	funcReturnExplicit bool
}

// enterFunction saves the caller's scope and function context, then installs
// a fresh one for a function body: new Arguments bound to params, Variables
// reset to empty (locals accumulate fresh per call during inference), loop
// depth reset to zero, and the expected return type recorded (nil/false
// when the function has no explicit return type annotation, in which case
// ReturnStmt type-checking is skipped and the body's trailing type wins).
func (c *Context) enterFunction(params *OrderedMap[typesystem.Type], retType typesystem.Type, explicit bool) funcSnapshot {
	saved := funcSnapshot{
		scope:              c.saveScope(),
		loopDepth:          c.loopDepth,
		inFunc:             c.inFunc,
		funcReturnType:     c.funcReturnType,
		funcReturnExplicit: c.funcReturnExplicit,
	}
	c.Arguments = params.Clone()
	c.Variables = NewOrderedMap[typesystem.Type]()
	c.loopDepth = 0
	c.inFunc = true
	c.funcReturnType = retType
	c.funcReturnExplicit = explicit
	return saved
}

func (c *Context) exitFunction(saved funcSnapshot) {
	c.restoreScope(saved.scope)
	c.loopDepth = saved.loopDepth
	c.inFunc = saved.inFunc
	c.funcReturnType = saved.funcReturnType
	c.funcReturnExplicit = saved.funcReturnExplicit
}

// blockSnapshot is the narrower save/restore a Block performs around
// itself (spec.md §4.7): variables, functions and macros, but not
// arguments, which belong to the enclosing function for its whole body.
type blockSnapshot struct {
	variables *OrderedMap[typesystem.Type]
	functions map[string]*Function
	macros    map[string]MacroDef
}

func cloneFunctions(m map[string]*Function) map[string]*Function {
	out := make(map[string]*Function, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// enterBlock clones variables/functions/macros so statements inside the
// block can freely mutate the clones; exitBlock discards the clones and
// restores the originals, guaranteeing property 5 of spec.md §8 ("the set
// of variable names added to the parent context equals ∅").
func (c *Context) enterBlock() blockSnapshot {
	saved := blockSnapshot{variables: c.Variables, functions: c.Functions, macros: c.Macros}
	c.Variables = c.Variables.Clone()
	c.Functions = cloneFunctions(c.Functions)
	c.Macros = cloneMacros(c.Macros)
	return saved
}

func (c *Context) exitBlock(saved blockSnapshot) {
	c.Variables = saved.variables
	c.Functions = saved.functions
	c.Macros = saved.macros
}

// snapshot is the full context image try/catch rolls back to: everything a
// failed attempt could have mutated, per spec.md §5's
// recommended try/catch implementation strategy.
type snapshot struct {
	allocator int
	imports   []string
	declares  []string
	data      []string
	macros    map[string]MacroDef
	overloads map[OverloadKey]string
	typeAlias map[string]typesystem.Type
	variables *OrderedMap[typesystem.Type]
	globals   *OrderedMap[typesystem.Type]
	arguments *OrderedMap[typesystem.Type]
	functions map[string]*Function
	exports   map[string]*Function
	err       error
}

// Snapshot captures everything a try/catch attempt could mutate.
func (c *Context) Snapshot() snapshot {
	overloads := make(map[OverloadKey]string, len(c.Overloads))
	for k, v := range c.Overloads {
		overloads[k] = v
	}
	typeAlias := make(map[string]typesystem.Type, len(c.TypeAlias))
	for k, v := range c.TypeAlias {
		typeAlias[k] = v
	}
	return snapshot{
		allocator: c.Allocator,
		imports:   append([]string(nil), c.Imports...),
		declares:  append([]string(nil), c.Declares...),
		data:      append([]string(nil), c.Data...),
		macros:    cloneMacros(c.Macros),
		overloads: overloads,
		typeAlias: typeAlias,
		variables: c.Variables.Clone(),
		globals:   c.Globals.Clone(),
		arguments: c.Arguments.Clone(),
		functions: cloneFunctions(c.Functions),
		exports:   cloneFunctions(c.Exports),
		err:       c.Err,
	}
}

// Restore rolls the context back to a prior Snapshot, discarding any
// mutation performed since — spec.md §5 and §7's try/catch rollback.
func (c *Context) Restore(s snapshot) {
	c.Allocator = s.allocator
	c.Imports = s.imports
	c.Declares = s.declares
	c.Data = s.data
	c.Macros = s.macros
	c.Overloads = s.overloads
	c.TypeAlias = s.typeAlias
	c.Variables = s.variables
	c.Globals = s.globals
	c.Arguments = s.arguments
	c.Functions = s.functions
	c.Exports = s.exports
	c.Err = s.err
}

// LookupVariable resolves a name through globals, then locals, then
// arguments, in that order (spec.md §4.4).
func (c *Context) LookupVariable(name string) (typesystem.Type, bool) {
	if t, ok := c.Globals.Get(name); ok {
		return t, true
	}
	if t, ok := c.Variables.Get(name); ok {
		return t, true
	}
	if t, ok := c.Arguments.Get(name); ok {
		return t, true
	}
	return nil, false
}

// IsGlobal reports whether name is bound in Globals, which the emission
// pass uses to choose between `global.get`/`global.set` and
// `local.get`/`local.set` (spec.md §4.4).
func (c *Context) IsGlobal(name string) bool {
	return c.Globals.Has(name)
}

// bindOrExpand resolves declared the normal way unless it is the bare Any
// wildcard (spec.md §9, gated by config.AnyPolymorphism): the first call
// site fixes AnyBindingKey in TypeAlias to observed's type, and every
// subsequent call reuses that binding instead of re-expanding Any. When the
// flag is off, Any expands to itself and then matches no concrete argument
// type, so such a call fails with a type mismatch.
func (c *Context) bindOrExpand(declared, observed typesystem.Type) (typesystem.Type, error) {
	if _, isAny := declared.(typesystem.Any); isAny && c.Config.AnyPolymorphism {
		if bound, ok := c.TypeAlias[AnyBindingKey]; ok {
			return bound, nil
		}
		c.TypeAlias[AnyBindingKey] = observed
		return observed, nil
	}
	return c.Expand(declared)
}

// Expand fully resolves t through TypeAlias, recording a failure if an
// alias is undefined.
func (c *Context) Expand(t typesystem.Type) (typesystem.Type, error) {
	expanded, err := typesystem.Expand(t, c.TypeAlias)
	if err != nil {
		return nil, c.Fail(err)
	}
	return expanded, nil
}
