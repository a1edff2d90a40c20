// Package parser builds lumo's ast.Stmt/ast.Expr tree by re-entering
// package lexer on successively narrower substrings, per spec.md §4's
// design note: the lexer stays grammar-free, and all recursive-descent
// structure lives here. There is no separate token-kind enumeration or
// position tracking — each parse function receives a source substring and
// returns a node, exactly mirroring how package compiler's two passes are
// type-switch dispatchers rather than a Visitor hierarchy.
package parser

import (
	"strings"

	"github.com/archy-none/lumo/internal/ast"
	"github.com/archy-none/lumo/internal/diagnostics"
	"github.com/archy-none/lumo/internal/lexer"
)

// ParseProgram splits source into top-level, semicolon-delimited
// statements and parses each in turn. A trailing semicolon is optional;
// blank statements (from a trailing or doubled semicolon) are skipped.
func ParseProgram(source string) ([]ast.Stmt, error) {
	return parseStmts(source)
}

// parseStmts splits body on top-level semicolons (bracketed groups are kept
// intact by the lexer's bracket-depth tracking) and parses each resulting
// chunk as one statement.
func parseStmts(body string) ([]ast.Stmt, error) {
	chunks, err := lexer.Tokenize(body, []string{";"}, false, true, false)
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	var stmts []ast.Stmt
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		stmt, err := parseStmt(trimmed)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// parseBlock parses `{ stmts }` text (braces already confirmed present by
// the caller) into an *ast.Block.
func parseBlock(braced string) (*ast.Block, error) {
	inner := strings.TrimSpace(braced)
	inner = strings.TrimPrefix(inner, "{")
	inner = strings.TrimSuffix(inner, "}")
	stmts, err := parseStmts(inner)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts}, nil
}

// firstWord returns the leading run of non-space characters of s.
func firstWord(s string) string {
	i := strings.IndexAny(s, " \t\n\r")
	if i < 0 {
		return s
	}
	return s[:i]
}

// splitArgs tokenizes a comma-separated, bracket-aware argument list body
// (the text between an already-stripped pair of parens/brackets).
func splitArgs(body string) ([]string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	parts, err := lexer.Tokenize(body, []string{","}, false, true, false)
	if err != nil {
		return nil, &diagnostics.ParseError{Reason: err.Error()}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out, nil
}
