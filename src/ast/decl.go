package ast

// Param is one function parameter.
type Param struct {
	Loc
	Type         TypeKind
	PointerLevel int
	Name         string
	IsConst      bool
}

// GlobalVar is a file-scope variable declaration, optionally a fixed-size array (spec
// §3). Its symbol's pointer_level is var.PointerLevel + 1 when ArraySize > 0 (spec
// invariant 5, "array decay").
type GlobalVar struct {
	Loc
	Type         TypeKind
	PointerLevel int
	ArraySize    int
	Name         string
	Init         Expr // nil if there is no initializer
	IsConst      bool
}

// Function is a top-level function definition.
type Function struct {
	Loc
	Name               string
	ReturnType         TypeKind
	ReturnPointerLevel int
	Params             []Param
	Body               *Compound
}

// Program is the root of the syntax tree: every global variable and function, in
// source order.
type Program struct {
	Globals   []*GlobalVar
	Functions []*Function
}
