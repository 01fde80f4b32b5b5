// Package ast defines the tagged-variant syntax tree produced by the parser and
// annotated in place by the semantic analyzer. Each AST family (Expr, Stmt) is
// rendered as a Go sum type: an interface marker method plus one payload struct per
// variant. Nodes that need analyzer-filled fields (Expr.Type, Expr.PointerLevel) carry
// them directly.
package ast

import "cplusc/src/source"

// TypeKind is the scalar type family of a value.
type TypeKind int

const (
	Int TypeKind = iota
	Long
	Char
	Float
	Double
	String
	Boolean
	Void
)

var typeKindName = [...]string{
	Int: "int",
	Long: "long",
	Char: "char",
	Float: "float",
	Double: "double",
	String: "string",
	Boolean: "bool",
	Void: "void",
}

// String returns the source-syntax spelling of the type keyword.
func (t TypeKind) String() string {
	if int(t) < 0 || int(t) >= len(typeKindName) {
		return "<invalid type>"
	}
	return typeKindName[t]
}

// IsNumeric reports whether t is one of Int/Long/Char/Float/Double.
func (t TypeKind) IsNumeric() bool {
	switch t {
	case Int, Long, Char, Float, Double:
		return true
	}
	return false
}

// IsFloating reports whether t is Float or Double.
func (t TypeKind) IsFloating() bool {
	return t == Float || t == Double
}

// UnaryOp enumerates the prefix unary operators.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
	Deref
	AddrOf
)

// BinaryOp enumerates binary operators. Ordinal grouping is an invariant:
// arithmetic < comparison < Assign < logical.
type BinaryOp int

const (
	// Arithmetic.
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	// Comparison.
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
	// Assignment.
	Assign
	// Logical.
	And
	Or
)

// IsArithmetic reports whether op is one of {Add, Sub, Mul, Div, Mod}.
func (op BinaryOp) IsArithmetic() bool { return op >= Add && op <= Mod }

// IsComparison reports whether op is one of {Eq, Ne, Lt, Gt, Le, Ge}.
func (op BinaryOp) IsComparison() bool { return op >= Eq && op <= Ge }

// IsLogical reports whether op is one of {And, Or}.
func (op BinaryOp) IsLogical() bool { return op == And || op == Or }

var binaryOpSymbol = map[BinaryOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Ne: "!=", Lt: "<", Gt: ">", Le: "<=", Ge: ">=",
	Assign: "=", And: "&&", Or: "||",
}

func (op BinaryOp) String() string {
	if s, ok := binaryOpSymbol[op]; ok {
		return s
	}
	return "<invalid op>"
}

var unaryOpSymbol = map[UnaryOp]string{
	Neg: "-", Not: "!", Deref: "*", AddrOf: "&",
}

func (op UnaryOp) String() string {
	if s, ok := unaryOpSymbol[op]; ok {
		return s
	}
	return "<invalid op>"
}

// Loc is embedded by every AST node to carry its SourceLocation.
type Loc struct {
	Location source.Location
}

// Pos returns the node's SourceLocation.
func (l Loc) Pos() source.Location { return l.Location }
