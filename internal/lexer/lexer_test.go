package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeDelimited(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		delims  []string
		trim    bool
		want    []string
	}{
		{
			name:   "simple comma split",
			input:  "a, b, c",
			delims: []string{","},
			want:   []string{"a", " b", " c"},
		},
		{
			name:   "nested brackets are not split",
			input:  "[1, 2], [3, 4]",
			delims: []string{", "},
			want:   []string{"[1, 2]", "[3, 4]"},
		},
		{
			name:   "quoted delimiter is ignored",
			input:  `"a,b", c`,
			delims: []string{","},
			want:   []string{`"a,b"`, " c"},
		},
		{
			name:   "comment is discarded",
			input:  "a ~~ skip me ~~ , b",
			delims: []string{","},
			want:   []string{"a  ", " b"},
		},
		{
			name:   "trailing empty token trimmed",
			input:  "a,",
			delims: []string{","},
			trim:   true,
			want:   []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input, tt.delims, false, tt.trim, false)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeExprOperators(t *testing.T) {
	got, err := Tokenize("a+b*c", nil, true, true, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "+", "b", "*", "c"}, got)
}

func TestTokenizeExprLongestOperatorWins(t *testing.T) {
	got, err := Tokenize("a<=b", nil, true, true, false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "<=", "b"}, got)
}

func TestTokenizeIsSplitFlushesBeforeBracket(t *testing.T) {
	got, err := Tokenize("f(1,2)", nil, false, true, true)
	assert.NoError(t, err)
	assert.Equal(t, []string{"f", "(1,2)"}, got)
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	_, err := Tokenize(`"abc`, []string{","}, false, true, false)
	assert.Error(t, err)
}

func TestTokenizeUnterminatedEscape(t *testing.T) {
	_, err := Tokenize(`abc\`, []string{","}, false, true, false)
	assert.Error(t, err)
}

func TestTokenizeUnbalancedBrackets(t *testing.T) {
	_, err := Tokenize("(a,b", []string{","}, false, true, false)
	assert.Error(t, err)

	_, err = Tokenize("a,b)", []string{","}, false, true, false)
	assert.Error(t, err)
}

func TestStrFormat(t *testing.T) {
	got, err := StrFormat(`hi {name}, you are {age + 1} years old`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"hi ", "{name}", ", you are ", "{age + 1}", " years old"}, got)
}

func TestStrFormatNestedBraces(t *testing.T) {
	got, err := StrFormat(`{ @{x: 1} }`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"{ @{x: 1} }"}, got)
}

func TestStrFormatEscape(t *testing.T) {
	got, err := StrFormat(`a\{b`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a{b"}, got)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("foo"))
	assert.True(t, IsIdentifier("_bar"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("let"))
	assert.False(t, IsIdentifier("while"))
}
