package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitives(t *testing.T) {
	cases := map[string]Type{
		"int":  Integer{},
		"num":  Number{},
		"bool": Bool{},
		"str":  String{},
		"void": Void{},
	}
	for src, want := range cases {
		got, err := Parse(src)
		require.NoError(t, err)
		assert.True(t, Equals(want, got), "Parse(%q) = %v, want %v", src, got, want)
	}
}

func TestParseArray(t *testing.T) {
	got, err := Parse("[int]")
	require.NoError(t, err)
	assert.Equal(t, Array{Elem: Integer{}}, got)
}

func TestParseDict(t *testing.T) {
	got, err := Parse("@{x: int, y: int}")
	require.NoError(t, err)
	want := Dict{Fields: []DictField{{Name: "x", Type: Integer{}}, {Name: "y", Type: Integer{}}}}
	assert.True(t, Equals(want, got))
}

func TestParseDictDuplicateLastWins(t *testing.T) {
	got, err := ParseWith("@{x: int, x: bool}", ParseOptions{DictDuplicateKeys: DictLastWins})
	require.NoError(t, err)
	want := Dict{Fields: []DictField{{Name: "x", Type: Bool{}}}}
	assert.True(t, Equals(want, got))
}

func TestParseDictDuplicateReject(t *testing.T) {
	_, err := ParseWith("@{x: int, x: bool}", ParseOptions{DictDuplicateKeys: DictReject})
	assert.Error(t, err)
}

func TestParseEnum(t *testing.T) {
	got, err := Parse("(red | green | blue)")
	require.NoError(t, err)
	assert.Equal(t, Enum{Variants: []string{"red", "green", "blue"}}, got)
}

func TestParseEnumDuplicateRejected(t *testing.T) {
	_, err := Parse("(red | red)")
	assert.Error(t, err)
}

func TestParseAlias(t *testing.T) {
	got, err := Parse("Point")
	require.NoError(t, err)
	assert.Equal(t, Alias{Name: "Point"}, got)
}

func TestEqualsAliasIdentity(t *testing.T) {
	assert.True(t, Equals(Alias{Name: "P"}, Alias{Name: "P"}))
	assert.False(t, Equals(Alias{Name: "P"}, Alias{Name: "Q"}))
}

func TestCompile(t *testing.T) {
	class, ok := Compile(Number{})
	assert.True(t, ok)
	assert.Equal(t, "f32", class)

	class, ok = Compile(Integer{})
	assert.True(t, ok)
	assert.Equal(t, "i32", class)

	class, ok = Compile(Array{Elem: Integer{}})
	assert.True(t, ok)
	assert.Equal(t, "i32", class)

	_, ok = Compile(Void{})
	assert.False(t, ok)
}

func TestExpandSimpleAlias(t *testing.T) {
	aliases := map[string]Type{
		"Point": Dict{Fields: []DictField{{Name: "x", Type: Integer{}}, {Name: "y", Type: Integer{}}}},
	}
	got, err := Expand(Alias{Name: "Point"}, aliases)
	require.NoError(t, err)
	assert.True(t, Equals(aliases["Point"], got))
}

func TestExpandMissingAlias(t *testing.T) {
	_, err := Expand(Alias{Name: "Missing"}, map[string]Type{})
	assert.Error(t, err)
}

// TestExpandCyclicAliasTerminates exercises spec.md §8 property 4 and the
// worked example in §9: `type L = [L]` must resolve to a finite type term
// rather than recursing forever.
func TestExpandCyclicAliasTerminates(t *testing.T) {
	aliases := map[string]Type{
		"L": Array{Elem: Alias{Name: "L"}},
	}
	got, err := Expand(Alias{Name: "L"}, aliases)
	require.NoError(t, err)
	_, ok := got.(Array)
	assert.True(t, ok, "expected a finite Array nesting, got %v", got)
}
