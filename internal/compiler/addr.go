package compiler

import (
	"fmt"

	"github.com/archy-none/lumo/internal/config"
)

// arrayElemAddr renders spec.md §6's array address formula:
// `4 + (arr as i32) + (idx mod length) * 4`, where length is the header
// word read from arr. The modulo makes indexing Euclidean and never
// out-of-bounds, per spec.md §6.
func arrayElemAddr(arrText, idxText string) string {
	length := fmt.Sprintf("(i32.load %s)", arrText)
	modIdx := euclideanModText(idxText, length, "i32")
	return fmt.Sprintf("(i32.add (i32.add (i32.const %d) %s) (i32.mul %s (i32.const %d)))",
		config.Bytes, arrText, modIdx, config.Bytes)
}

// dictFieldAddr renders spec.md §6's dict offset formula:
// `(obj as i32) + field_index * BYTES`.
func dictFieldAddr(objText string, fieldIndex int) string {
	return fmt.Sprintf("(i32.add %s (i32.const %d))", objText, fieldIndex*config.Bytes)
}

// euclideanModText renders `((a class.rem b)+b)%b`-style Euclidean modulo
// for the integer class (spec.md §4.5's Mod rule), used by the array
// address formula so indices are never negative.
func euclideanModText(a, b, class string) string {
	rem := fmt.Sprintf("(%s.rem_s %s %s)", class, a, b)
	return fmt.Sprintf("(%s.rem_s (%s.add %s %s) %s)", class, class, rem, b, b)
}

// dictObjectSizeText renders a dict's byte size: field count * BYTES
// (spec.md §4.4's "Object size" rule). The field count is known statically
// from the dict's type, so this is always a constant.
func dictObjectSizeText(fieldCount int) string {
	return fmt.Sprintf("(i32.const %d)", fieldCount*config.Bytes)
}

// arrayObjectSizeText renders an array's byte size: `4 + 4 * length`, where
// length is read from the header at runtime, since ptrText may name any
// heap expression (e.g. a variable) whose length is not known until the
// header is loaded (spec.md §4.4's "Object size" rule).
func arrayObjectSizeText(ptrText string) string {
	return fmt.Sprintf("(i32.add (i32.const %d) (i32.mul (i32.const %d) (i32.load %s)))",
		config.Bytes, config.Bytes, ptrText)
}
