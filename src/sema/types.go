package sema

import "cplusc/src/ast"

// typesCompatible implements the base-type half of `types_compatible`: equal types, or both numeric.
func typesCompatible(a, b ast.TypeKind) bool {
	if a == b {
		return true
	}
	return a.IsNumeric() && b.IsNumeric()
}

// compatibleWithPointers implements `types_compatible_with_pointers`.
func compatibleWithPointers(t1 ast.TypeKind, lvl1 int, t2 ast.TypeKind, lvl2 int) bool {
	// Rule 1: String <-> Char* in either direction.
	if t1 == ast.String && lvl1 == 0 && t2 == ast.Char && lvl2 == 1 {
		return true
	}
	if t2 == ast.String && lvl2 == 0 && t1 == ast.Char && lvl1 == 1 {
		return true
	}

	// Rule 2: any two pointer types are compatible if either side's base is Void.
	if lvl1 > 0 && lvl2 > 0 && (t1 == ast.Void || t2 == ast.Void) {
		return true
	}

	// Rule 3: Int <-> any pointer.
	if t1 == ast.Int && lvl1 == 0 && lvl2 > 0 {
		return true
	}
	if t2 == ast.Int && lvl2 == 0 && lvl1 > 0 {
		return true
	}

	// Rule 4: otherwise levels must match and base types must be compatible.
	if lvl1 != lvl2 {
		return false
	}
	return typesCompatible(t1, t2)
}
