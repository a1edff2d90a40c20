package parser

import (
	"strings"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/typesystem"
)

// parseStmt dispatches on text's leading keyword, the way spec.md §4.6
// describes the statement grammar.
func parseStmt(text string) (ast.Stmt, error) {
	text = strings.TrimSpace(text)
	switch firstWord(text) {
	case "pub":
		return parsePub(strings.TrimSpace(text[len("pub"):]))
	case "let":
		return parseLet(strings.TrimSpace(text[len("let"):]), ast.ScopeLocal)
	case "type":
		return parseTypeDecl(strings.TrimSpace(text[len("type"):]))
	case "if":
		return parseIf(strings.TrimSpace(text[len("if"):]))
	case "while":
		return parseWhile(strings.TrimSpace(text[len("while"):]))
	case "try":
		return parseTry(strings.TrimSpace(text[len("try"):]))
	case "macro":
		return parseMacro(strings.TrimSpace(text[len("macro"):]))
	case "overload":
		return parseOverload(strings.TrimSpace(text[len("overload"):]))
	case "load":
		return parseImport(strings.TrimSpace(text[len("load"):]))
	case "return":
		return parseReturn(strings.TrimSpace(text[len("return"):]))
	case "break":
		return &ast.BreakStmt{}, nil
	case "next":
		return &ast.NextStmt{}, nil
	default:
		expr, err := parseExpr(text)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: expr}, nil
	}
}

func parsePub(rest string) (ast.Stmt, error) {
	if firstWord(rest) != "let" {
		return nil, &diagnostics.ParseError{Reason: "pub must prefix a let statement"}
	}
	return parseLet(strings.TrimSpace(rest[len("let"):]), ast.ScopeGlobal)
}

// parseLet distinguishes the four target shapes spec.md §4.6 lists: a plain
// variable binding, a function definition, element assignment, and field
// assignment, by inspecting the character immediately after the target
// name on the left of the top-level `=`.
func parseLet(rest string, scope ast.Scope) (ast.Stmt, error) {
	lhs, rhs, ok := topLevelAssign(rest)
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "let statement missing '='"}
	}

	name, suffix := splitNamePrefix(lhs)
	if name == "" {
		return nil, &diagnostics.ParseError{Reason: "let statement missing target name"}
	}

	switch {
	case suffix == "":
		value, err := parseExpr(rhs)
		if err != nil {
			return nil, err
		}
		return &ast.LetVar{Scope: scope, Name: name, Value: value}, nil

	case strings.HasPrefix(suffix, "("):
		return parseLetFunc(scope, name, suffix, rhs)

	case strings.HasPrefix(suffix, "["):
		idxBody := strings.TrimSuffix(strings.TrimPrefix(suffix, "["), "]")
		idx, err := parseExpr(idxBody)
		if err != nil {
			return nil, err
		}
		value, err := parseExpr(rhs)
		if err != nil {
			return nil, err
		}
		return &ast.LetIndexAssign{Arr: &ast.Variable{Name: name}, Idx: idx, Value: value}, nil

	case strings.HasPrefix(suffix, "."):
		field := strings.TrimPrefix(suffix, ".")
		value, err := parseExpr(rhs)
		if err != nil {
			return nil, err
		}
		return &ast.LetFieldAssign{Obj: &ast.Variable{Name: name}, Name: field, Value: value}, nil

	default:
		return nil, &diagnostics.ParseError{Reason: "malformed let target: " + lhs}
	}
}

// splitNamePrefix reads a leading identifier off lhs and returns it along
// with whatever (possibly empty) suffix follows immediately, with no
// intervening space — `(params)`, `[idx]`, or `.field`.
func splitNamePrefix(lhs string) (name, suffix string) {
	i := 0
	runes := []rune(lhs)
	for i < len(runes) {
		r := runes[i]
		if r == '(' || r == '[' || r == '.' || r == ':' {
			break
		}
		i++
	}
	return strings.TrimSpace(string(runes[:i])), strings.TrimSpace(string(runes[i:]))
}

// parseLetFunc parses the `(params)[: rettype]` suffix that follows a
// function name and builds the LetFunc node.
func parseLetFunc(scope ast.Scope, name, suffix, body string) (ast.Stmt, error) {
	close := matchingBracket(suffix, 0)
	if close < 0 {
		return nil, &diagnostics.ParseError{Reason: "unterminated parameter list for " + name}
	}
	paramsBody := suffix[1:close]
	rest := strings.TrimSpace(suffix[close+1:])

	params, err := parseParams(paramsBody)
	if err != nil {
		return nil, err
	}

	var retType typesystem.Type
	if strings.HasPrefix(rest, ":") {
		t, err := typesystem.Parse(strings.TrimSpace(rest[1:]))
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		retType = t
	}

	bodyExpr, err := parseExpr(body)
	if err != nil {
		return nil, err
	}
	return &ast.LetFunc{Scope: scope, Name: name, Params: params, ReturnType: retType, Body: bodyExpr}, nil
}

// parseParams parses a comma-separated `name: type` list.
func parseParams(body string) ([]ast.Param, error) {
	parts, err := splitArgs(body)
	if err != nil {
		return nil, err
	}
	params := make([]ast.Param, 0, len(parts))
	for _, p := range parts {
		colon := indexOutermost(p, ':')
		if colon < 0 {
			return nil, &diagnostics.ParseError{Reason: "parameter missing type: " + p}
		}
		name := strings.TrimSpace(p[:colon])
		t, err := typesystem.Parse(strings.TrimSpace(p[colon+1:]))
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		params = append(params, ast.Param{Name: name, Type: t})
	}
	return params, nil
}

// matchingBracket returns the index within s of the bracket that closes the
// opening bracket at index open.
func matchingBracket(s string, open int) int {
	runes := []rune(s)
	if open >= len(runes) {
		return -1
	}
	depth := 0
	inQuote := false
	for i := open; i < len(runes); i++ {
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
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseTypeDecl(rest string) (ast.Stmt, error) {
	name, body, ok := topLevelAssign(rest)
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "type declaration missing '='"}
	}
	t, err := typesystem.Parse(body)
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	return &ast.TypeDeclStmt{Name: strings.TrimSpace(name), Type: t}, nil
}

func parseIf(rest string) (ast.Stmt, error) {
	cond, afterThen, ok := splitKeyword(rest, "then")
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "if statement missing 'then'"}
	}
	condExpr, err := parseExpr(cond)
	if err != nil {
		return nil, err
	}
	thenText, elseText, hasElse := splitKeyword(afterThen, "else")
	thenExpr, err := parseExpr(thenText)
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: condExpr, Then: thenExpr}
	if hasElse {
		elseExpr, err := parseExpr(elseText)
		if err != nil {
			return nil, err
		}
		stmt.Else = elseExpr
	}
	return stmt, nil
}

func parseWhile(rest string) (ast.Stmt, error) {
	cond, body, ok := splitKeyword(rest, "loop")
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "while statement missing 'loop'"}
	}
	condExpr, err := parseExpr(cond)
	if err != nil {
		return nil, err
	}
	bodyExpr, err := parseExpr(body)
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: condExpr, Body: bodyExpr}, nil
}

func parseTry(rest string) (ast.Stmt, error) {
	tryText, catchText, ok := splitKeyword(rest, "catch")
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "try statement missing 'catch'"}
	}
	tryExpr, err := parseExpr(tryText)
	if err != nil {
		return nil, err
	}
	recover, err := parseStmt(catchText)
	if err != nil {
		return nil, err
	}
	return &ast.TryStmt{Expr: tryExpr, Recover: recover}, nil
}

func parseMacro(rest string) (ast.Stmt, error) {
	lhs, rhs, ok := topLevelAssign(rest)
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "macro declaration missing '='"}
	}
	name, suffix := splitNamePrefix(lhs)
	if !strings.HasPrefix(suffix, "(") {
		return nil, &diagnostics.ParseError{Reason: "macro declaration missing parameter list"}
	}
	close := matchingBracket(suffix, 0)
	if close < 0 {
		return nil, &diagnostics.ParseError{Reason: "unterminated macro parameter list"}
	}
	rawParams, err := splitArgs(suffix[1:close])
	if err != nil {
		return nil, err
	}
	body, err := parseExpr(rhs)
	if err != nil {
		return nil, err
	}
	return &ast.MacroDeclStmt{Name: name, Params: rawParams, Body: body}, nil
}

// parseOverload parses `overload funcName = lhsType OP rhsType` (binary) or
// `overload funcName = lhsType as rhsType` (the unary Cast overload form).
func parseOverload(rest string) (ast.Stmt, error) {
	funcName, signature, ok := topLevelAssign(rest)
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "overload declaration missing '='"}
	}
	if lhsText, rhsText, ok := splitKeyword(signature, "as"); ok {
		lhsType, err := typesystem.Parse(lhsText)
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		rhsType, err := typesystem.Parse(rhsText)
		if err != nil {
			return nil, &diagnostics.ParseError{Reason: err.Error()}
		}
		return &ast.OverloadDeclStmt{OpID: "as", LhsType: lhsType, RhsType: rhsType, FuncName: strings.TrimSpace(funcName)}, nil
	}

	opID, lhsText, rhsText, ok := splitTopLevelOperator(signature)
	if !ok {
		return nil, &diagnostics.ParseError{Reason: "overload declaration missing an operator"}
	}
	lhsType, err := typesystem.Parse(lhsText)
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	rhsType, err := typesystem.Parse(rhsText)
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	return &ast.OverloadDeclStmt{OpID: opID, LhsType: lhsType, RhsType: rhsType, FuncName: strings.TrimSpace(funcName)}, nil
}

func parseImport(rest string) (ast.Stmt, error) {
	parenIdx := strings.IndexByte(rest, '(')
	if parenIdx < 0 {
		return nil, &diagnostics.ParseError{Reason: "load declaration missing parameter list"}
	}
	head := strings.TrimSpace(rest[:parenIdx])
	suffix := strings.TrimSpace(rest[parenIdx:])

	module := ""
	fnName := head
	if dot := strings.LastIndex(head, "."); dot >= 0 {
		module = strings.TrimSpace(head[:dot])
		fnName = strings.TrimSpace(head[dot+1:])
	}
	if !strings.HasPrefix(suffix, "(") {
		return nil, &diagnostics.ParseError{Reason: "load declaration missing parameter list"}
	}
	close := matchingBracket(suffix, 0)
	if close < 0 {
		return nil, &diagnostics.ParseError{Reason: "unterminated load parameter list"}
	}
	params, err := parseParams(suffix[1:close])
	if err != nil {
		return nil, err
	}
	retText := strings.TrimSpace(suffix[close+1:])
	retText = strings.TrimPrefix(retText, ":")
	retType, err := typesystem.Parse(strings.TrimSpace(retText))
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	return &ast.ImportStmt{Module: module, Name: fnName, Params: params, ReturnType: retType}, nil
}

func parseReturn(rest string) (ast.Stmt, error) {
	if strings.TrimSpace(rest) == "" {
		return &ast.ReturnStmt{}, nil
	}
	expr, err := parseExpr(rest)
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Expr: expr}, nil
}
