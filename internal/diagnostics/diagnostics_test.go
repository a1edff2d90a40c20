package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNonTerminalIsUncolored(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &UndefinedReferenceError{Kind: "variable", Name: "x"})
	assert.Equal(t, "error: undefined variable: x\n", buf.String())
}

func TestRenderNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestErrorKindMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&ParseError{Reason: "bad token"}, "parse error: bad token"},
		{&ArityMismatchError{Name: "f", Expected: 2, Got: 1}, "f expects 2 argument(s), got 1"},
		{&TypeMismatchError{Context: "add", Expected: "int", Got: "str"}, "add: expected int, got str"},
		{&ScopeViolationError{Reason: "break outside while"}, "scope error: break outside while"},
		{&NullabilityError{Type: "int"}, "nullability error: int is not a heap type"},
		{&CastError{From: "bool", To: "str"}, "cannot cast bool to str"},
		{&InvariantError{Reason: "mixed array element types"}, "invariant violation: mixed array element types"},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
