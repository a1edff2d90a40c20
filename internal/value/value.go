// Package value defines lumo's literal value forms and recognizes their
// surface syntax (spec.md §4.3). Emission and inference of these forms live
// in package compiler, which owns the single mutable Context the formulas
// in spec.md §4.3 and §6 read and write.
package value

import (
	"regexp"
)

// Kind discriminates the literal forms a Value can take.
type Kind int

const (
	KindInteger Kind = iota
	KindNumber
	KindBool
	KindString
	KindArray
	KindDict
	KindEnumTag
)

var integerRe = regexp.MustCompile(`^-?\d+$`)
var numberRe = regexp.MustCompile(`^-?\d+\.\d+$`)

// LooksLikeInteger reports whether src matches the integer literal syntax.
func LooksLikeInteger(src string) bool { return integerRe.MatchString(src) }

// LooksLikeNumber reports whether src matches the float literal syntax.
func LooksLikeNumber(src string) bool { return numberRe.MatchString(src) }
