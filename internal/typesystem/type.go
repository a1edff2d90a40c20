// Package typesystem implements lumo's algebraic type-term model: parsing
// type syntax, structural equality, alias resolution and the mapping from
// surface types to the target assembly's numeric classes (spec.md §4.2).
package typesystem

import "strings"

// Type is the interface every type-term variant implements. lumo has no
// notion of kinds or higher-order types (unlike the teacher's Hindley-Milner
// TCon/TApp/TForall hierarchy) — every Type is fully concrete once aliases
// are resolved.
type Type interface {
	String() string
	isType()
}

// Integer is lumo's 32-bit signed integer primitive.
type Integer struct{}

// Number is lumo's 32-bit float primitive.
type Number struct{}

// Bool is the boolean primitive.
type Bool struct{}

// String is the heap-allocated, null-terminated string primitive.
type String struct{}

// Void is the unit/no-value type; it has no compiled form.
type Void struct{}

// Array is a homogeneous, heap-allocated, length-prefixed sequence.
type Array struct {
	Elem Type
}

// DictField is one ordered field of a Dict. Field order is significant: it
// determines a field's byte offset (spec.md §6 offset formula).
type DictField struct {
	Name string
	Type Type
}

// Dict is an ordered-field record, heap-allocated with fields stored at
// contiguous 4-byte offsets in declaration order.
type Dict struct {
	Fields []DictField
}

// Enum is an ordered set of variant names; a variant's ordinal is its index.
type Enum struct {
	Variants []string
}

// Alias is a user-defined name for some other type term, resolved lazily
// against the compiler context's type_alias table.
type Alias struct {
	Name string
}

// Any is the optional wildcard type from spec.md §9, gated behind the
// any_polymorphism config flag. It unifies with any concrete type on first
// contact and is then fixed via a binding recorded under a reserved alias
// key (see Context.bindOrExpand in package compiler).
type Any struct{}

func (Integer) isType() {}
func (Number) isType()  {}
func (Bool) isType()    {}
func (String) isType()  {}
func (Void) isType()    {}
func (Array) isType()   {}
func (Dict) isType()    {}
func (Enum) isType()    {}
func (Alias) isType()   {}
func (Any) isType()     {}

func (Integer) String() string { return "int" }
func (Number) String() string  { return "num" }
func (Bool) String() string    { return "bool" }
func (String) String() string  { return "str" }
func (Void) String() string    { return "void" }
func (Any) String() string     { return "any" }

func (a Array) String() string { return "[" + a.Elem.String() + "]" }

func (d Dict) String() string {
	var b strings.Builder
	b.WriteString("@{")
	for i, f := range d.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.String())
	}
	b.WriteString("}")
	return b.String()
}

func (e Enum) String() string { return "(" + strings.Join(e.Variants, " | ") + ")" }

func (a Alias) String() string { return a.Name }

// IsHeap reports whether values of t are represented as a pointer at
// runtime: strings, arrays and dicts.
func IsHeap(t Type) bool {
	switch t.(type) {
	case String, Array, Dict:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t supports the numeric operators (spec.md §4.5).
func IsNumeric(t Type) bool {
	switch t.(type) {
	case Integer, Number:
		return true
	default:
		return false
	}
}

// Equals is structural equality: two Alias terms are equal only when they
// carry the identical name; every other pairing compares structurally
// (spec.md §4.2 — "ignores alias identity except between two Alias(name)
// terms").
func Equals(a, b Type) bool {
	switch av := a.(type) {
	case Integer:
		_, ok := b.(Integer)
		return ok
	case Number:
		_, ok := b.(Number)
		return ok
	case Bool:
		_, ok := b.(Bool)
		return ok
	case String:
		_, ok := b.(String)
		return ok
	case Void:
		_, ok := b.(Void)
		return ok
	case Any:
		_, ok := b.(Any)
		return ok
	case Array:
		bv, ok := b.(Array)
		return ok && Equals(av.Elem, bv.Elem)
	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !Equals(av.Fields[i].Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	case Enum:
		bv, ok := b.(Enum)
		if !ok || len(av.Variants) != len(bv.Variants) {
			return false
		}
		for i := range av.Variants {
			if av.Variants[i] != bv.Variants[i] {
				return false
			}
		}
		return true
	case Alias:
		bv, ok := b.(Alias)
		return ok && av.Name == bv.Name
	default:
		return false
	}
}

// FieldOffset returns the byte offset of field name within d, per spec.md
// §6's dict offset formula (field_index * BYTES), and ok=false if no such
// field exists.
func (d Dict) FieldOffset(name string) (int, bool) {
	for i, f := range d.Fields {
		if f.Name == name {
			return i * 4, true
		}
	}
	return 0, false
}

// FieldType returns the type of field name within d.
func (d Dict) FieldType(name string) (Type, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// VariantIndex returns the ordinal of variant within e.
func (e Enum) VariantIndex(variant string) (int, bool) {
	for i, v := range e.Variants {
		if v == variant {
			return i, true
		}
	}
	return 0, false
}
