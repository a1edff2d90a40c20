package typesystem

// Compile maps t to the target assembly's numeric instruction class, per
// spec.md §4.2: Number compiles to "f32"; every other concrete primitive or
// heap type (Integer, Bool, String, Array, Dict, Enum) compiles to "i32"
// since references, booleans, enum ordinals and integers are all one
// 32-bit stack slot. Void has no compiled form, so ok is false.
func Compile(t Type) (class string, ok bool) {
	switch t.(type) {
	case Void:
		return "", false
	case Number:
		return "f32", true
	default:
		return "i32", true
	}
}
