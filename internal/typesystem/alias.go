package typesystem

import "fmt"

// compressOnce resolves t through exactly one alias lookup: an Alias(name)
// becomes whatever type_alias[name] holds (which may itself be another
// Alias); any other term is returned unchanged. Missing aliases are an
// error, per spec.md §4.2.
func compressOnce(t Type, aliases map[string]Type) (Type, error) {
	a, ok := t.(Alias)
	if !ok {
		return t, nil
	}
	resolved, ok := aliases[a.Name]
	if !ok {
		return nil, fmt.Errorf("undefined type alias %q", a.Name)
	}
	return resolved, nil
}

// SolveAlias fully expands t through the type_alias table, terminating on
// cyclic aliases (spec.md §4.2, §8 property 4, §9). expected is the trail
// of already-compressed terms seen on the current descent; pass nil at the
// top-level call.
//
// Algorithm: compress t by exactly one alias lookup. If the compressed
// term structurally matches an entry already in expected, the cycle has
// been detected — return the compressed term as-is rather than recursing
// further, which is what keeps `type L = [L]` finite (spec.md §9). Otherwise
// push the compressed term onto expected and descend into Array/Dict
// element types, or continue resolving an alias-to-alias chain.
func SolveAlias(t Type, aliases map[string]Type, expected []Type) (Type, error) {
	compressed, err := compressOnce(t, aliases)
	if err != nil {
		return nil, err
	}

	for _, e := range expected {
		if Equals(compressed, e) {
			return compressed, nil
		}
	}

	next := append([]Type{compressed}, expected...)

	switch c := compressed.(type) {
	case Alias:
		return SolveAlias(c, aliases, next)
	case Array:
		elem, err := SolveAlias(c.Elem, aliases, next)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	case Dict:
		fields := make([]DictField, len(c.Fields))
		for i, f := range c.Fields {
			ft, err := SolveAlias(f.Type, aliases, next)
			if err != nil {
				return nil, err
			}
			fields[i] = DictField{Name: f.Name, Type: ft}
		}
		return Dict{Fields: fields}, nil
	default:
		return compressed, nil
	}
}

// Expand is SolveAlias with a fresh trail; it is the entry point `infer`
// operations use to fully expand a type through type_alias.
func Expand(t Type, aliases map[string]Type) (Type, error) {
	return SolveAlias(t, aliases, nil)
}
