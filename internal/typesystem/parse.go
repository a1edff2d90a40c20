package typesystem

import (
	"fmt"
	"strings"

	"github.com/archy-none/lumo/internal/lexer"
)

// DuplicateKeyMode controls how Parse treats a Dict literal type with a
// repeated field name; spec.md §9 leaves this an open question between two
// historical drafts. See DESIGN.md for the decision (default: reject).
type DuplicateKeyMode int

const (
	// DictLastWins keeps the last occurrence of a duplicated field name.
	DictLastWins DuplicateKeyMode = iota
	// DictReject treats a duplicated field name as a parse error.
	DictReject
)

// ParseOptions configures Parse's handling of the open questions spec.md
// §9 leaves to the implementer.
type ParseOptions struct {
	DictDuplicateKeys DuplicateKeyMode
}

// DefaultParseOptions matches the decisions recorded in DESIGN.md.
var DefaultParseOptions = ParseOptions{DictDuplicateKeys: DictReject}

// Parse recognizes a type term: the five primitive keywords plus `any`, `[T]` arrays,
// `@{name: T, ...}` dicts, `(a | b | c)` enums, and otherwise a bare
// identifier as an Alias (spec.md §4.2).
func Parse(src string) (Type, error) {
	return ParseWith(src, DefaultParseOptions)
}

// ParseWith is Parse with explicit ParseOptions.
func ParseWith(src string, opts ParseOptions) (Type, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return nil, fmt.Errorf("type parse error: empty type expression")
	}

	switch s {
	case "int":
		return Integer{}, nil
	case "num":
		return Number{}, nil
	case "bool":
		return Bool{}, nil
	case "str":
		return String{}, nil
	case "void":
		return Void{}, nil
	case "any":
		return Any{}, nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		elem, err := ParseWith(s[1:len(s)-1], opts)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	}

	if strings.HasPrefix(s, "@{") && strings.HasSuffix(s, "}") {
		return parseDict(s[2:len(s)-1], opts)
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return parseEnum(s[1 : len(s)-1])
	}

	if !lexer.IsIdentifier(s) {
		return nil, fmt.Errorf("type parse error: %q is not a valid type", s)
	}
	return Alias{Name: s}, nil
}

func parseDict(body string, opts ParseOptions) (Type, error) {
	entries, err := lexer.Tokenize(body, []string{","}, false, true, false)
	if err != nil {
		return nil, fmt.Errorf("type parse error: malformed dict type: %w", err)
	}

	var fields []DictField
	seen := map[string]int{}
	for _, entry := range entries {
		parts, err := lexer.Tokenize(entry, []string{":"}, false, true, false)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("type parse error: malformed dict field %q", entry)
		}
		name := strings.TrimSpace(parts[0])
		if !lexer.IsIdentifier(name) {
			return nil, fmt.Errorf("type parse error: %q is not a valid field name", name)
		}
		fieldType, err := ParseWith(strings.TrimSpace(parts[1]), opts)
		if err != nil {
			return nil, err
		}
		if idx, ok := seen[name]; ok {
			if opts.DictDuplicateKeys == DictReject {
				return nil, fmt.Errorf("type parse error: duplicate dict field %q", name)
			}
			fields[idx] = DictField{Name: name, Type: fieldType}
			continue
		}
		seen[name] = len(fields)
		fields = append(fields, DictField{Name: name, Type: fieldType})
	}
	return Dict{Fields: fields}, nil
}

func parseEnum(body string) (Type, error) {
	parts, err := lexer.Tokenize(body, []string{"|"}, false, true, false)
	if err != nil {
		return nil, fmt.Errorf("type parse error: malformed enum type: %w", err)
	}
	seen := map[string]bool{}
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if !lexer.IsIdentifier(name) {
			return nil, fmt.Errorf("type parse error: %q is not a valid enum variant", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("type parse error: duplicate enum variant %q", name)
		}
		seen[name] = true
		variants = append(variants, name)
	}
	return Enum{Variants: variants}, nil
}
