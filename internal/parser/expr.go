package parser

import (
	"strconv"
	"strings"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/lexer"
	"github.com/archy-none/lumo/internal/token"
	"github.com/archy-none/lumo/internal/typesystem"
	"github.com/archy-none/lumo/internal/value"
)

// opLevels ladders spec.md §4.5's binary operators from loosest (1) to
// tightest (7) binding. `as` and the unary prefixes bind tighter still and
// are resolved outside this table; a trailing `?` is split off before any
// binary level, so NullCheck applies to the whole expression before it.
var opLevels = map[string]int{
	ast.OpLOr:  1,
	ast.OpLAnd: 2,
	ast.OpEql:  3, ast.OpNeq: 3, ast.OpLt: 3, ast.OpLtEq: 3, ast.OpGt: 3, ast.OpGtEq: 3,
	ast.OpBOr: 4, ast.OpXOr: 4,
	ast.OpBAnd: 5, ast.OpShl: 5, ast.OpShr: 5,
	ast.OpAdd: 6, ast.OpSub: 6,
	ast.OpMul: 7, ast.OpDiv: 7, ast.OpMod: 7,
}

const maxOpLevel = 7

// parseExpr parses text as a single lumo expression via the right-to-left
// lowest-precedence scan spec.md §4.5 describes: split at the loosest
// operator still present, preferring its rightmost occurrence so splitting
// recurses into a left-associative tree.
func parseExpr(text string) (ast.Expr, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &diagnostics.ParseError{Reason: "empty expression"}
	}
	tokens := splitExprTokens(text)
	if len(tokens) == 0 {
		return nil, &diagnostics.ParseError{Reason: "empty expression"}
	}
	return parseBinarySplit(tokens)
}

// parseExprList parses a comma-separated argument/element list.
func parseExprList(body string) ([]ast.Expr, error) {
	parts, err := splitArgs(body)
	if err != nil {
		return nil, err
	}
	exprs := make([]ast.Expr, 0, len(parts))
	for _, p := range parts {
		e, err := parseExpr(p)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// splitExprTokens tokenizes text into operator symbols and whitespace/
// operator-bounded words, gluing bracket groups (and whatever immediately
// follows a closing bracket, like a postfix `.field`) onto the same token
// so a whole postfix chain survives as one atom for parseBinarySplit.
func splitExprTokens(text string) []string {
	runes := []rune(text)
	n := len(runes)
	var tokens []string
	var pending strings.Builder
	depth := 0
	inQuote := false

	flush := func() {
		if pending.Len() > 0 {
			tokens = append(tokens, pending.String())
			pending.Reset()
		}
	}

	for i := 0; i < n; {
		ch := runes[i]
		if ch == '"' {
			inQuote = !inQuote
			pending.WriteRune(ch)
			i++
			continue
		}
		if inQuote {
			if ch == '\\' && i+1 < n {
				pending.WriteRune(ch)
				pending.WriteRune(runes[i+1])
				i += 2
				continue
			}
			pending.WriteRune(ch)
			i++
			continue
		}
		if ch == '(' || ch == '[' || ch == '{' {
			depth++
			pending.WriteRune(ch)
			i++
			continue
		}
		if ch == ')' || ch == ']' || ch == '}' {
			depth--
			pending.WriteRune(ch)
			i++
			continue
		}
		if depth > 0 {
			pending.WriteRune(ch)
			i++
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			flush()
			i++
			continue
		}
		if op, opLen, ok := matchOperatorAt(runes[i:]); ok {
			flush()
			tokens = append(tokens, op)
			i += opLen
			continue
		}
		pending.WriteRune(ch)
		i++
	}
	flush()
	return tokens
}

func matchOperatorAt(rest []rune) (string, int, bool) {
	s := string(rest)
	for _, op := range token.Operators {
		if strings.HasPrefix(s, op) {
			return op, len([]rune(op)), true
		}
	}
	return "", 0, false
}

// parseBinarySplit resolves one layer of tokens: a trailing NullCheck `?`,
// then each binary precedence level loosest-first (rightmost occurrence of
// that level), then `as` casts, then unary prefixes, falling back to a
// single atom.
func parseBinarySplit(tokens []string) (ast.Expr, error) {
	if len(tokens) == 1 {
		return parseAtomToken(tokens[0])
	}

	if tokens[len(tokens)-1] == "?" {
		inner, err := parseBinarySplit(tokens[:len(tokens)-1])
		if err != nil {
			return nil, err
		}
		return &ast.NullCheck{Operand: inner}, nil
	}

	for level := 1; level <= maxOpLevel; level++ {
		for i := len(tokens) - 1; i >= 1; i-- {
			if opLevels[tokens[i]] != level {
				continue
			}
			lhs, err := parseBinarySplit(tokens[:i])
			if err != nil {
				return nil, err
			}
			rhs, err := parseBinarySplit(tokens[i+1:])
			if err != nil {
				return nil, err
			}
			return &ast.BinaryOp{Op: tokens[i], Lhs: lhs, Rhs: rhs}, nil
		}
	}

	for i := len(tokens) - 1; i >= 1; i-- {
		if tokens[i] == "as" {
			lhs, err := parseBinarySplit(tokens[:i])
			if err != nil {
				return nil, err
			}
			t, err := typesystem.Parse(strings.Join(tokens[i+1:], " "))
			if err != nil {
				return nil, &diagnostics.ParseError{Reason: err.Error()}
			}
			return &ast.Cast{Operand: lhs, Type: t}, nil
		}
	}

	switch tokens[0] {
	case "!", "~":
		operand, err := parseBinarySplit(tokens[1:])
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: tokens[0], Operand: operand}, nil
	case "-":
		// Unary minus has no node of its own: `-x` desugars to the doubled
		// subtraction `(x - x) - x`, which is -x however x evaluates.
		operand, err := parseBinarySplit(tokens[1:])
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{
			Op:  ast.OpSub,
			Lhs: &ast.BinaryOp{Op: ast.OpSub, Lhs: operand, Rhs: operand},
			Rhs: operand,
		}, nil
	}

	return nil, &diagnostics.ParseError{Reason: "unable to parse expression: " + strings.Join(tokens, " ")}
}

// parseAtomToken parses one glued token with no top-level operator left in
// it: a literal, a parenthesized/array/dict/block form, an enum tag, or a
// postfix chain rooted at an identifier.
func parseAtomToken(tok string) (ast.Expr, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, &diagnostics.ParseError{Reason: "empty expression"}
	}

	switch tok {
	case "true":
		return &ast.BoolLit{Value: true}, nil
	case "false":
		return &ast.BoolLit{Value: false}, nil
	}

	if strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) && len(tok) >= 2 {
		return parseStringLit(tok[1 : len(tok)-1])
	}
	if value.LooksLikeInteger(tok) {
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		return &ast.IntegerLit{Value: int32(n)}, nil
	}
	if value.LooksLikeNumber(tok) {
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		return &ast.NumberLit{Value: float32(f)}, nil
	}

	if isWholeBracket(tok, '(', ')') {
		return parseExpr(tok[1 : len(tok)-1])
	}
	if isWholeBracket(tok, '{', '}') {
		block, err := parseBlock(tok)
		if err != nil {
			return nil, err
		}
		return &ast.BlockExpr{Block: block}, nil
	}
	if isWholeBracket(tok, '[', ']') {
		elems, err := parseExprList(tok[1 : len(tok)-1])
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Elems: elems}, nil
	}
	if strings.HasPrefix(tok, "@{") && strings.HasSuffix(tok, "}") {
		return parseDictLit(tok[2 : len(tok)-1])
	}
	if hash := indexOutermost(tok, '#'); hash > 0 {
		return &ast.EnumTagLit{TypeName: tok[:hash], Variant: tok[hash+1:]}, nil
	}

	return parsePostfixChain(tok)
}

// isWholeBracket reports whether tok is exactly one bracket group: it opens
// with open, and that opening bracket's match is tok's final character.
func isWholeBracket(tok string, open, close byte) bool {
	if len(tok) < 2 || tok[0] != open || tok[len(tok)-1] != close {
		return false
	}
	return matchingBracket(tok, 0) == len(tok)-1
}

// parseDictLit parses the comma-separated `name: expr` body of `@{...}`.
func parseDictLit(body string) (ast.Expr, error) {
	parts, err := splitArgs(body)
	if err != nil {
		return nil, err
	}
	entries := make([]ast.DictEntry, 0, len(parts))
	for _, p := range parts {
		colon := indexOutermost(p, ':')
		if colon < 0 {
			return nil, &diagnostics.ParseError{Reason: "dict literal entry missing ':': " + p}
		}
		name := strings.TrimSpace(p[:colon])
		value, err := parseExpr(p[colon+1:])
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.DictEntry{Name: name, Value: value})
	}
	return &ast.DictLit{Entries: entries}, nil
}

// parseStringLit builds a StringLit, or for an interpolated literal (one
// containing `{...}` chunks) a left-folded `+` chain of StringLit chunks
// and `Cast(inner, str)` substitutions, per spec.md §4.1's f-string rule.
func parseStringLit(raw string) (ast.Expr, error) {
	unescaped := unescapeString(raw)
	chunks, err := lexer.StrFormat(unescaped)
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	if len(chunks) == 0 {
		return &ast.StringLit{Value: ""}, nil
	}

	hasBrace := false
	for _, c := range chunks {
		if strings.HasPrefix(c, "{") && strings.HasSuffix(c, "}") {
			hasBrace = true
			break
		}
	}
	if !hasBrace {
		return &ast.StringLit{Value: unescaped}, nil
	}

	var result ast.Expr
	for _, c := range chunks {
		var piece ast.Expr
		if strings.HasPrefix(c, "{") && strings.HasSuffix(c, "}") {
			innerExpr, err := parseExpr(c[1 : len(c)-1])
			if err != nil {
				return nil, err
			}
			piece = &ast.Cast{Operand: innerExpr, Type: typesystem.String{}}
		} else {
			piece = &ast.StringLit{Value: c}
		}
		if result == nil {
			result = piece
			continue
		}
		result = &ast.BinaryOp{Op: ast.OpAdd, Lhs: result, Rhs: piece}
	}
	return result, nil
}

func unescapeString(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// These are the builtin call names carved out of the ordinary call grammar;
// buildCall parses each to its dedicated AST node instead of a generic Call.
const (
	builtinClone     = "memcpy"
	builtinPeek      = "peek"
	builtinPoke      = "poke"
	builtinTransmute = "transmute"
)

// parsePostfixChain parses an identifier followed by any run of `(args)`,
// `[idx]`, and `.field` suffixes, resolving `obj.name(args)` to the
// `name(obj, args...)` method-call sugar spec.md §4.4 describes.
func parsePostfixChain(tok string) (ast.Expr, error) {
	name, rest := scanIdentifier(tok)
	if name == "" {
		return nil, &diagnostics.ParseError{Reason: "malformed expression: " + tok}
	}

	var expr ast.Expr
	if strings.HasPrefix(rest, "(") {
		close := matchingBracket(rest, 0)
		if close < 0 {
			return nil, &diagnostics.ParseError{Reason: "unterminated call arguments in " + tok}
		}
		call, err := buildCall(name, rest[1:close])
		if err != nil {
			return nil, err
		}
		expr = call
		rest = rest[close+1:]
	} else {
		expr = &ast.Variable{Name: name}
	}

	for len(rest) > 0 {
		switch rest[0] {
		case '[':
			close := matchingBracket(rest, 0)
			if close < 0 {
				return nil, &diagnostics.ParseError{Reason: "unterminated index in " + tok}
			}
			idx, err := parseExpr(rest[1:close])
			if err != nil {
				return nil, err
			}
			expr = &ast.Index{Arr: expr, Idx: idx}
			rest = rest[close+1:]
		case '.':
			rest = rest[1:]
			fieldName, remain := scanIdentifier(rest)
			if fieldName == "" {
				return nil, &diagnostics.ParseError{Reason: "malformed field access in " + tok}
			}
			if strings.HasPrefix(remain, "(") {
				close := matchingBracket(remain, 0)
				if close < 0 {
					return nil, &diagnostics.ParseError{Reason: "unterminated method call arguments in " + tok}
				}
				args, err := parseExprList(remain[1:close])
				if err != nil {
					return nil, err
				}
				expr = &ast.Call{Name: fieldName, Args: append([]ast.Expr{expr}, args...)}
				rest = remain[close+1:]
			} else {
				expr = &ast.Field{Obj: expr, Name: fieldName}
				rest = remain
			}
		default:
			return nil, &diagnostics.ParseError{Reason: "unexpected trailing text after " + tok}
		}
	}
	return expr, nil
}

// buildCall parses a top-level `name(args)` call, diverting the builtin
// pseudo-calls to their dedicated AST nodes.
func buildCall(name, argsText string) (ast.Expr, error) {
	switch name {
	case builtinClone:
		args, err := parseExprList(argsText)
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, &diagnostics.ParseError{Reason: "memcpy takes exactly one argument"}
		}
		return &ast.Clone{Operand: args[0]}, nil
	case builtinPeek:
		addrText, typeText, err := splitLastArg(argsText)
		if err != nil {
			return nil, err
		}
		addr, err := parseExpr(addrText)
		if err != nil {
			return nil, err
		}
		t, err := typesystem.Parse(typeText)
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		return &ast.Peek{Addr: addr, Type: t}, nil
	case builtinPoke:
		parts, err := splitArgs(argsText)
		if err != nil {
			return nil, err
		}
		if len(parts) != 2 {
			return nil, &diagnostics.ParseError{Reason: "poke takes exactly two arguments"}
		}
		addr, err := parseExpr(parts[0])
		if err != nil {
			return nil, err
		}
		val, err := parseExpr(parts[1])
		if err != nil {
			return nil, err
		}
		return &ast.Poke{Addr: addr, Value: val}, nil
	case builtinTransmute:
		addrText, typeText, err := splitLastArg(argsText)
		if err != nil {
			return nil, err
		}
		operand, err := parseExpr(addrText)
		if err != nil {
			return nil, err
		}
		t, err := typesystem.Parse(typeText)
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		return &ast.Transmute{Operand: operand, Type: t}, nil
	default:
		args, err := parseExprList(argsText)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args}, nil
	}
}

// splitLastArg splits a two-argument builtin's argument text into its
// expression first argument and type-term second argument.
func splitLastArg(argsText string) (exprText, typeText string, err error) {
	parts, splitErr := splitArgs(argsText)
	if splitErr != nil {
		return "", "", splitErr
	}
	if len(parts) != 2 {
		return "", "", &diagnostics.ParseError{Reason: "expected exactly two arguments, got " + strconv.Itoa(len(parts))}
	}
	return parts[0], parts[1], nil
}

// scanIdentifier reads s's leading identifier run, stopping at the first
// `(`, `[`, or `.`.
func scanIdentifier(s string) (name, rest string) {
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		switch runes[i] {
		case '(', '[', '.':
			return string(runes[:i]), string(runes[i:])
		}
		i++
	}
	return string(runes), ""
}
