package ast

import "cplusc/src/source"

// Expr is the interface implemented by every expression variant. exprNode is
// unexported so the variant set is closed to this package (the sum-type pattern spec
// §9 recommends). Every variant embeds Loc and the two analyzer-filled fields (spec
// invariant 1: "Every expression's type and pointer_level are set exactly once, by the
// analyzer, before any backend sees it").
type Expr interface {
	exprNode()
	Pos() source.Location
	ExprType() TypeKind
	SetExprType(t TypeKind, pointerLevel int)
	PointerLevel() int
}

// exprBase is embedded by every Expr variant, carrying the fields common to all of
// them. The analyzer fills Type/Level via SetExprType; no other stage may write them.
type exprBase struct {
	Loc
	Type  TypeKind
	Level int
}

func (e *exprBase) ExprType() TypeKind { return e.Type }
func (e *exprBase) PointerLevel() int  { return e.Level }
func (e *exprBase) SetExprType(t TypeKind, pointerLevel int) {
	e.Type = t
	e.Level = pointerLevel
}

// Number is an integer or decimal numeric literal, kept as source text; parsing to a
// numeric value is deferred to the backend.
type Number struct {
	exprBase
	Text string
}

func (*Number) exprNode() {}

// StringLiteral is a quoted string literal, with escapes already resolved by the lexer.
type StringLiteral struct {
	exprBase
	Text string
}

func (*StringLiteral) exprNode() {}

// Var is a reference to a variable, parameter or (in Call position, see Call) function
// name.
type Var struct {
	exprBase
	Name string
}

func (*Var) exprNode() {}

// Unary is a prefix unary operator applied to Operand.
type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

func (*Unary) exprNode() {}

// Binary is an infix binary operator applied to Left and Right.
type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Call is a function invocation.
type Call struct {
	exprBase
	Name string
	Args []Expr
}

func (*Call) exprNode() {}

// ArrayIndex indexes Array at Index.
type ArrayIndex struct {
	exprBase
	Array Expr
	Index Expr
}

func (*ArrayIndex) exprNode() {}

// IsLvalue reports whether e designates a storage location: a Var, a dereference
// (Unary Deref), or an array element.
func IsLvalue(e Expr) bool {
	switch v := e.(type) {
	case *Var:
		return true
	case *Unary:
		return v.Op == Deref
	case *ArrayIndex:
		return true
	}
	return false
}
