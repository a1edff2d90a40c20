// Package token holds the lexical constants shared by the lexer, parser and
// compiler: the operator table, the reserved-word set and the whitespace
// set described in spec.md §6.
package token

// Operators lists every multi-character and single-character operator
// symbol the lexer recognizes, in scan order: longer symbols that share a
// prefix with a shorter one must come first so the longest match wins.
var Operators = []string{
	"<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+", "-", "*", "/", "%", "=", "<", ">",
	"&", "|", "^", ":", "!", "?", "~",
}

// ReservedWords are identifiers the language reserves for itself; is_identifier
// rejects any candidate in this set. The set is fixed: the reserved_words
// list of lumo.yaml is not added to it.
var ReservedWords = map[string]bool{
	"pub":      true,
	"let":      true,
	"type":     true,
	"if":       true,
	"then":     true,
	"else":     true,
	"while":    true,
	"loop":     true,
	"break":    true,
	"next":     true,
	"return":   true,
	"load":     true,
	"as":       true,
	"try":      true,
	"catch":    true,
	"import":   true,
	"overload": true,
	"macro":    true,
	"true":     true,
	"false":    true,
}

// Whitespace is the set of code points treated as inter-token separators
// when delimiters include them.
var Whitespace = map[rune]bool{
	' ':      true,
	'　': true, // ideographic space
	'\n':     true,
	'\t':     true,
	'\r':     true,
}

// IsReserved reports whether name is a reserved word.
func IsReserved(name string) bool {
	return ReservedWords[name]
}
