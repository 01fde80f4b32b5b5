package llvmgen

import (
	"tinygo.org/x/go-llvm"

	"cplusc/src/ast"
)

// scalarType lowers a non-pointer TypeKind to its LLVM representation. String lowers directly to i8* since C+ has no concept of a string value
// distinct from a char pointer at the IR level.
func (g *generator) scalarType(t ast.TypeKind) llvm.Type {
	switch t {
	case ast.Int:
		return llvm.Int32Type()
	case ast.Long:
		return llvm.Int64Type()
	case ast.Char:
		return llvm.Int8Type()
	case ast.Float:
		return llvm.FloatType()
	case ast.Double:
		return llvm.DoubleType()
	case ast.Boolean:
		return llvm.Int1Type()
	case ast.String:
		return llvm.PointerType(llvm.Int8Type(), 0)
	case ast.Void:
		return llvm.VoidType()
	default:
		return llvm.Int32Type()
	}
}

// lowerType wraps scalarType in level layers of pointer indirection.
func (g *generator) lowerType(t ast.TypeKind, level int) llvm.Type {
	typ := g.scalarType(t)
	for i := 0; i < level; i++ {
		typ = llvm.PointerType(typ, 0)
	}
	return typ
}

// arrayType lowers a fixed-size stack array `T[n]` to `[n x T]`.
func (g *generator) arrayType(t ast.TypeKind, level, n int) llvm.Type {
	return llvm.ArrayType(g.lowerType(t, level), n)
}
