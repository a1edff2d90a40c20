package parser

import (
	"strings"

	"github.com/archy-none/lumo/internal/ast"
)

// overloadableOps lists the binary operator ids an `overload` declaration
// can bind, longest symbols first so a scan never stops on a operator's
// own prefix (e.g. "<" inside "<=").
var overloadableOps = []string{
	ast.OpShl, ast.OpShr, ast.OpLtEq, ast.OpGtEq, ast.OpEql, ast.OpNeq,
	ast.OpLAnd, ast.OpLOr,
	ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
	ast.OpBAnd, ast.OpBOr, ast.OpXOr, ast.OpLt, ast.OpGt,
}

// splitTopLevelOperator finds the single top-level occurrence of one of
// overloadableOps in text (e.g. `Vec + Vec`) and returns the operator id
// plus its left/right operand text.
func splitTopLevelOperator(text string) (opID, lhs, rhs string, ok bool) {
	depth := 0
	inQuote := false
	runes := []rune(text)
	n := len(runes)
	for i := 0; i < n; i++ {
		ch := runes[i]
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, op := range overloadableOps {
			opRunes := []rune(op)
			end := i + len(opRunes)
			if end <= n && string(runes[i:end]) == op {
				return op, strings.TrimSpace(string(runes[:i])), strings.TrimSpace(string(runes[end:])), true
			}
		}
	}
	return "", text, "", false
}

// splitKeyword finds the first standalone occurrence of kw in text at
// bracket depth zero and outside a quoted string, and splits text around
// it. "Standalone" means kw is bounded by whitespace or string edges on
// both sides, so it never matches inside a longer identifier.
func splitKeyword(text, kw string) (before, after string, found bool) {
	depth := 0
	inQuote := false
	runes := []rune(text)
	n := len(runes)
	kwLen := len([]rune(kw))

	isBoundary := func(i int) bool {
		if i < 0 || i >= n {
			return true
		}
		r := runes[i]
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}

	for i := 0; i < n; i++ {
		ch := runes[i]
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if i+kwLen <= n && string(runes[i:i+kwLen]) == kw && isBoundary(i-1) && isBoundary(i+kwLen) {
			return strings.TrimSpace(string(runes[:i])), strings.TrimSpace(string(runes[i+kwLen:])), true
		}
	}
	return text, "", false
}

// topLevelAssign splits text at the first bare `=` found at bracket depth
// zero, outside quotes, that is not part of a two-character operator
// (`==`, `!=`, `<=`, `>=`). Used to separate a `let` statement's target
// from its value expression.
func topLevelAssign(text string) (lhs, rhs string, ok bool) {
	depth := 0
	inQuote := false
	runes := []rune(text)
	for i, ch := range runes {
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 || ch != '=' {
			continue
		}
		prev := rune(0)
		if i > 0 {
			prev = runes[i-1]
		}
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		if next == '=' || prev == '=' || prev == '!' || prev == '<' || prev == '>' {
			continue
		}
		return strings.TrimSpace(string(runes[:i])), strings.TrimSpace(string(runes[i+1:])), true
	}
	return text, "", false
}

// indexOutermost returns the rune index of the first top-level occurrence
// (outside brackets and quotes) of any of targets in text, or -1 if there is
// none — used, for example, to find the ':' of a `name: value` pair or the
// '#' of an enum tag.
func indexOutermost(text string, targets ...rune) int {
	depth := 0
	inQuote := false
	runes := []rune(text)
	for i, ch := range runes {
		if ch == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch ch {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, t := range targets {
			if ch == t {
				return i
			}
		}
	}
	return -1
}
