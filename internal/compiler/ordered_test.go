package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("b", 2)
	m.Set("a", 1)
	m.Set("c", 3)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
}

func TestOrderedMapUpdateKeepsPosition(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Delete("a")
	assert.False(t, m.Has("a"))
	assert.Equal(t, []string{"b"}, m.Keys())
}

func TestOrderedMapCloneIsIndependent(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	clone := m.Clone()
	clone.Set("b", 2)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, clone.Len())
}
