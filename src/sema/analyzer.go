package sema

import (
	"cplusc/src/ast"
	"cplusc/src/source"
	"cplusc/src/util"
)

// Analyzer runs the two-pass semantic analysis over a Program, reporting diagnostics
// to diag.
type Analyzer struct {
	diag *util.Engine
	global *Scope

	// Set for the duration of analyzeFunction; consulted by Return.
	expectedReturnType ast.TypeKind
	expectedReturnLevel int
}

// New returns an Analyzer reporting diagnostics to diag.
func New(diag *util.Engine) *Analyzer {
	return &Analyzer{diag: diag}
}

func (a *Analyzer) errorAt(loc source.Location, format string, args...interface{}) {
	a.diag.Report(util.Error, loc, format, args...)
}

// Analyze runs pass 1 (global signatures) then pass 2 (function bodies) over prog.
func (a *Analyzer) Analyze(prog *ast.Program) {
	a.global = NewScope(Global, nil)
	registerBuiltins(a.global)

	for _, fn := range prog.Functions {
		a.declareFunction(fn)
	}
	for _, g := range prog.Globals {
		a.declareGlobal(g)
	}
	for _, fn := range prog.Functions {
		a.analyzeFunction(fn)
	}
}

func (a *Analyzer) declareDuplicate(scope *Scope, sym *Symbol) {
	if existing, ok := scope.Declare(sym); !ok {
		a.errorAt(sym.Location, "duplicate declaration of %q", sym.Name)
		a.diag.Report(util.Note, existing.Location, "previous declaration of %q is here", existing.Name)
	}
}

func (a *Analyzer) declareFunction(fn *ast.Function) {
	params := make([]ParamSig, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ParamSig{Type: p.Type, PointerLevel: p.PointerLevel}
	}
	a.declareDuplicate(a.global, &Symbol{
		Name: fn.Name, Kind: Function, Location: fn.Pos(),
		Params: params, ReturnType: fn.ReturnType, ReturnPointerLevel: fn.ReturnPointerLevel,
	})
}

func (a *Analyzer) declareGlobal(g *ast.GlobalVar) {
	level := g.PointerLevel
	if g.ArraySize > 0 {
		level++
	}
	a.declareDuplicate(a.global, &Symbol{
		Name: g.Name, Kind: Variable, Type: g.Type, PointerLevel: level,
		IsConst: g.IsConst, ArraySize: g.ArraySize, Location: g.Pos(),
	})
	if g.Init != nil {
		t, lvl := a.analyzeExpr(g.Init, a.global)
		if !compatibleWithPointers(t, lvl, g.Type, level) {
			a.errorAt(g.Init.Pos(), "incompatible type in initializer for %q", g.Name)
		}
	}
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	scope := NewScope(FunctionScope, a.global)
	for _, param := range fn.Params {
		a.declareDuplicate(scope, &Symbol{
			Name: param.Name, Kind: Parameter, Type: param.Type,
			PointerLevel: param.PointerLevel, IsConst: param.IsConst, Location: param.Pos(),
		})
	}

	a.expectedReturnType = fn.ReturnType
	a.expectedReturnLevel = fn.ReturnPointerLevel

	alwaysReturns := a.analyzeStmt(fn.Body, scope)
	if fn.ReturnType != ast.Void && !alwaysReturns {
		a.diag.Report(util.Warning, fn.Pos(), "control reaches end of non-void function %q without a return", fn.Name)
	}
}

// analyzeStmt analyses s in scope and returns whether every path through s returns.
func (a *Analyzer) analyzeStmt(s ast.Stmt, scope *Scope) bool {
	switch n := s.(type) {
	case *ast.Return:
		if n.Expr != nil {
			t, lvl := a.analyzeExpr(n.Expr, scope)
			if !compatibleWithPointers(t, lvl, a.expectedReturnType, a.expectedReturnLevel) {
				a.errorAt(n.Pos(), "return type does not match the function's declared return type")
			}
		} else if a.expectedReturnType != ast.Void {
			a.errorAt(n.Pos(), "missing return value in a function returning %s", a.expectedReturnType)
		}
		return true

	case *ast.If:
		t, _ := a.analyzeExpr(n.Cond, scope)
		if t != ast.Boolean && !t.IsNumeric() {
			a.errorAt(n.Cond.Pos(), "if condition must be boolean or numeric")
		}
		thenReturns := a.analyzeStmt(n.Then, scope)
		elseReturns := false
		if n.Else != nil {
			elseReturns = a.analyzeStmt(n.Else, scope)
		}
		return thenReturns && elseReturns

	case *ast.While:
		t, _ := a.analyzeExpr(n.Cond, scope)
		if t != ast.Boolean && !t.IsNumeric() {
			a.errorAt(n.Cond.Pos(), "while condition must be boolean or numeric")
		}
		loopScope := NewScope(Loop, scope)
		a.analyzeStmt(n.Body, loopScope)
		return false

	case *ast.For:
		loopScope := NewScope(Loop, scope)
		if n.Init != nil {
			a.analyzeStmt(n.Init, loopScope)
		}
		if n.Cond != nil {
			t, _ := a.analyzeExpr(n.Cond, loopScope)
			if t != ast.Boolean && !t.IsNumeric() {
				a.errorAt(n.Cond.Pos(), "for condition must be boolean or numeric")
			}
		}
		if n.Incr != nil {
			a.analyzeExpr(n.Incr, loopScope)
		}
		a.analyzeStmt(n.Body, loopScope)
		return false

	case *ast.Break:
		if _, ok := scope.EnclosingLoop(); !ok {
			a.errorAt(n.Pos(), "'break' used outside of a loop")
		}
		return false

	case *ast.Continue:
		if _, ok := scope.EnclosingLoop(); !ok {
			a.errorAt(n.Pos(), "'continue' used outside of a loop")
		}
		return false

	case *ast.VarDecl:
		if n.Type == ast.Void && n.PointerLevel == 0 {
			a.errorAt(n.Pos(), "variable %q cannot have type void", n.Name)
		}
		level := n.PointerLevel
		if n.ArraySize > 0 {
			level++
		}
		a.declareDuplicate(scope, &Symbol{
			Name: n.Name, Kind: Variable, Type: n.Type, PointerLevel: level,
			IsConst: n.IsConst, ArraySize: n.ArraySize, Location: n.Pos(),
		})
		if n.Init != nil {
			t, lvl := a.analyzeExpr(n.Init, scope)
			if !compatibleWithPointers(t, lvl, n.Type, level) {
				a.errorAt(n.Init.Pos(), "incompatible type in initializer for %q", n.Name)
			}
		}
		return false

	case *ast.ExprStmt:
		a.analyzeExpr(n.Expr, scope)
		return false

	case *ast.Compound:
		blockScope := NewScope(Block, scope)
		returns := false
		for _, inner := range n.Stmts {
			if a.analyzeStmt(inner, blockScope) {
				returns = true
			}
		}
		return returns

	case *ast.Asm:
		for _, out := range n.Outputs {
			if !ast.IsLvalue(out) {
				a.errorAt(out.Pos(), "asm output operand must be an lvalue")
			}
			a.analyzeExpr(out, scope)
		}
		for _, in := range n.Inputs {
			a.analyzeExpr(in, scope)
		}
		return false

	default:
		return false
	}
}

// analyzeExpr types e in scope, filling its Type/PointerLevel fields, and returns
// them.
func (a *Analyzer) analyzeExpr(e ast.Expr, scope *Scope) (ast.TypeKind, int) {
	switch n := e.(type) {
	case *ast.Number:
		n.SetExprType(ast.Int, 0)
		return ast.Int, 0

	case *ast.StringLiteral:
		n.SetExprType(ast.String, 0)
		return ast.String, 0

	case *ast.Var:
		sym, ok := scope.Lookup(n.Name)
		if !ok {
			a.errorAt(n.Pos(), "undefined name %q", n.Name)
			n.SetExprType(ast.Int, 0)
			return ast.Int, 0
		}
		n.SetExprType(sym.Type, sym.PointerLevel)
		return sym.Type, sym.PointerLevel

	case *ast.Unary:
		return a.analyzeUnary(n, scope)

	case *ast.Binary:
		return a.analyzeBinary(n, scope)

	case *ast.Call:
		return a.analyzeCall(n, scope)

	case *ast.ArrayIndex:
		at, al := a.analyzeExpr(n.Array, scope)
		it, _ := a.analyzeExpr(n.Index, scope)
		if al <= 0 {
			a.errorAt(n.Pos(), "cannot index a non-pointer value")
		}
		if !it.IsNumeric() {
			a.errorAt(n.Index.Pos(), "array index must be numeric")
		}
		level := al - 1
		if level < 0 {
			level = 0
		}
		n.SetExprType(at, level)
		return at, level

	default:
		return ast.Int, 0
	}
}

func (a *Analyzer) analyzeUnary(n *ast.Unary, scope *Scope) (ast.TypeKind, int) {
	t, lvl := a.analyzeExpr(n.Operand, scope)
	switch n.Op {
	case ast.Neg:
		if !t.IsNumeric() {
			a.errorAt(n.Pos(), "operand of unary '-' must be numeric")
		}
		n.SetExprType(t, lvl)
		return t, lvl
	case ast.Not:
		if t == ast.Void || t == ast.String {
			a.errorAt(n.Pos(), "operand of '!' must not be void or string")
		}
		n.SetExprType(ast.Boolean, 0)
		return ast.Boolean, 0
	case ast.Deref:
		if lvl <= 0 {
			a.errorAt(n.Pos(), "cannot dereference a non-pointer value")
		}
		level := lvl - 1
		if level < 0 {
			level = 0
		}
		n.SetExprType(t, level)
		return t, level
	case ast.AddrOf:
		if !ast.IsLvalue(n.Operand) {
			a.errorAt(n.Pos(), "operand of '&' must be an lvalue")
		}
		n.SetExprType(t, lvl+1)
		return t, lvl + 1
	default:
		n.SetExprType(t, lvl)
		return t, lvl
	}
}

func (a *Analyzer) analyzeBinary(n *ast.Binary, scope *Scope) (ast.TypeKind, int) {
	lt, ll := a.analyzeExpr(n.Left, scope)
	rt, rl := a.analyzeExpr(n.Right, scope)

	switch {
	case n.Op.IsArithmetic():
		switch {
		case ll > 0 && rl == 0 && rt.IsNumeric():
			n.SetExprType(lt, ll)
			return lt, ll
		case rl > 0 && ll == 0 && lt.IsNumeric():
			n.SetExprType(rt, rl)
			return rt, rl
		default:
			if !lt.IsNumeric() || !rt.IsNumeric() {
				a.errorAt(n.Pos(), "operands of %q must be numeric", n.Op)
			}
			n.SetExprType(lt, 0)
			return lt, 0
		}

	case n.Op.IsComparison():
		if !compatibleWithPointers(lt, ll, rt, rl) {
			a.errorAt(n.Pos(), "incompatible operand types for %q", n.Op)
		}
		n.SetExprType(ast.Boolean, 0)
		return ast.Boolean, 0

	case n.Op == ast.Assign:
		if !ast.IsLvalue(n.Left) {
			a.errorAt(n.Pos(), "left-hand side of assignment must be an lvalue")
		}
		if v, ok := n.Left.(*ast.Var); ok {
			if sym, ok := scope.Lookup(v.Name); ok && sym.IsConst {
				a.errorAt(n.Pos(), "cannot assign to const variable %q", v.Name)
			}
		}
		if !compatibleWithPointers(lt, ll, rt, rl) {
			a.errorAt(n.Pos(), "incompatible types in assignment")
		}
		n.SetExprType(lt, ll)
		return lt, ll

	case n.Op.IsLogical():
		if lt != ast.Boolean || rt != ast.Boolean {
			a.diag.Report(util.Warning, n.Pos(), "operands of %q should be boolean", n.Op)
		}
		n.SetExprType(ast.Boolean, 0)
		return ast.Boolean, 0

	default:
		n.SetExprType(lt, 0)
		return lt, 0
	}
}

// analyzeCall resolves n's callee symbol and types its arguments. Argument count and
// type checking is a documented extension beyond the core specification.
func (a *Analyzer) analyzeCall(n *ast.Call, scope *Scope) (ast.TypeKind, int) {
	sym, ok := scope.Lookup(n.Name)
	for _, arg := range n.Args {
		a.analyzeExpr(arg, scope)
	}

	if !ok || sym.Kind != Function {
		a.errorAt(n.Pos(), "call to undefined function %q", n.Name)
		n.SetExprType(ast.Int, 0)
		return ast.Int, 0
	}

	if len(n.Args) != len(sym.Params) {
		a.errorAt(n.Pos(), "function %q expects %d argument(s), got %d", n.Name, len(sym.Params), len(n.Args))
	} else {
		for i, arg := range n.Args {
			want := sym.Params[i]
			if !compatibleWithPointers(arg.ExprType(), arg.PointerLevel(), want.Type, want.PointerLevel) {
				a.errorAt(arg.Pos(), "argument %d to %q has an incompatible type", i+1, n.Name)
			}
		}
	}

	n.SetExprType(sym.ReturnType, sym.ReturnPointerLevel)
	return sym.ReturnType, sym.ReturnPointerLevel
}
