package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayElemAddrFormula(t *testing.T) {
	got := arrayElemAddr("(local.get $arr)", "(local.get $i)")
	want := "(i32.add (i32.add (i32.const 4) (local.get $arr)) (i32.mul " +
		"(i32.rem_s (i32.add (i32.rem_s (local.get $i) (i32.load (local.get $arr))) (i32.load (local.get $arr))) (i32.load (local.get $arr))) " +
		"(i32.const 4)))"
	assert.Equal(t, want, got)
}

func TestDictFieldAddrFormula(t *testing.T) {
	got := dictFieldAddr("(local.get $obj)", 2)
	assert.Equal(t, "(i32.add (local.get $obj) (i32.const 8))", got)
}

func TestDictObjectSizeText(t *testing.T) {
	assert.Equal(t, "(i32.const 12)", dictObjectSizeText(3))
}

func TestArrayObjectSizeText(t *testing.T) {
	got := arrayObjectSizeText("(local.get $arr)")
	assert.Equal(t, "(i32.add (i32.const 4) (i32.mul (i32.const 4) (i32.load (local.get $arr))))", got)
}

func TestEuclideanModText(t *testing.T) {
	got := euclideanModText("(local.get $a)", "(local.get $b)", "i32")
	assert.Equal(t, "(i32.rem_s (i32.add (i32.rem_s (local.get $a) (local.get $b)) (local.get $b)) (local.get $b))", got)
}
