package llvmgen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"cplusc/src/ast"
)

// genExpr lowers e to an LLVM value.
func (g *generator) genExpr(e ast.Expr) (llvm.Value, error) {
	switch n := e.(type) {
	case *ast.Number:
		return g.genNumber(n), nil
	case *ast.StringLiteral:
		return g.internString(n.Text), nil
	case *ast.Var:
		return g.genVarLoad(n)
	case *ast.Unary:
		return g.genUnary(n)
	case *ast.Binary:
		return g.genBinary(n)
	case *ast.Call:
		return g.genCall(n)
	case *ast.ArrayIndex:
		addr, err := g.elementAddress(n)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.builder.CreateLoad(addr, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

// genNumber lowers a Number literal, which the analyzer always types Int, level 0.
func (g *generator) genNumber(n *ast.Number) llvm.Value {
	return llvm.ConstInt(llvm.Int32Type(), uint64(parseIntText(n.Text)), true)
}

// genVarLoad loads the value of a variable reference, decaying stack arrays to a
// pointer to their first element.
func (g *generator) genVarLoad(n *ast.Var) (llvm.Value, error) {
	info, ok := g.lookup(n.Name)
	if !ok {
		return llvm.Value{}, fmt.Errorf("undeclared identifier %q", n.Name)
	}
	if info.arraySize > 0 {
		zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
		return g.builder.CreateGEP(info.value, []llvm.Value{zero, zero}, ""), nil
	}
	return g.builder.CreateLoad(info.value, ""), nil
}

// genAddr computes the storage address of an lvalue without loading through it (spec
// §4.6 "Assign" and "AddrOf"): a Var yields its alloca, `*e` yields e itself, and an
// ArrayIndex yields its element pointer.
func (g *generator) genAddr(e ast.Expr) (llvm.Value, error) {
	switch n := e.(type) {
	case *ast.Var:
		info, ok := g.lookup(n.Name)
		if !ok {
			return llvm.Value{}, fmt.Errorf("undeclared identifier %q", n.Name)
		}
		return info.value, nil
	case *ast.Unary:
		if n.Op != ast.Deref {
			return llvm.Value{}, fmt.Errorf("expression is not an lvalue")
		}
		return g.genExpr(n.Operand)
	case *ast.ArrayIndex:
		return g.elementAddress(n)
	default:
		return llvm.Value{}, fmt.Errorf("expression is not an lvalue")
	}
}

// elementAddress computes the address of one array element: a
// true stack array GEPs with a leading zero index into the `[N x T]` alloca; a pointer
// variable is loaded first and GEP'd with a single index.
func (g *generator) elementAddress(n *ast.ArrayIndex) (llvm.Value, error) {
	idx, err := g.genExpr(n.Index)
	if err != nil {
		return llvm.Value{}, err
	}
	if v, ok := n.Array.(*ast.Var); ok {
		if info, ok2 := g.lookup(v.Name); ok2 && info.arraySize > 0 {
			zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
			return g.builder.CreateGEP(info.value, []llvm.Value{zero, idx}, ""), nil
		}
	}
	base, err := g.genExpr(n.Array)
	if err != nil {
		return llvm.Value{}, err
	}
	return g.builder.CreateGEP(base, []llvm.Value{idx}, ""), nil
}

// genUnary lowers prefix unary expressions.
func (g *generator) genUnary(n *ast.Unary) (llvm.Value, error) {
	switch n.Op {
	case ast.AddrOf:
		return g.genAddr(n.Operand)
	case ast.Deref:
		ptr, err := g.genExpr(n.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.builder.CreateLoad(ptr, ""), nil
	case ast.Neg:
		v, err := g.genExpr(n.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		if n.Operand.ExprType().IsFloating() {
			return g.builder.CreateFNeg(v, ""), nil
		}
		return g.builder.CreateNeg(v, ""), nil
	case ast.Not:
		v, err := g.genExpr(n.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		zero := llvm.ConstInt(v.Type(), 0, false)
		return g.builder.CreateICmp(llvm.IntEQ, v, zero, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("unsupported unary operator %s", n.Op)
	}
}

// genBinary dispatches to the arithmetic, comparison, assignment, or logical lowering
// for n.
func (g *generator) genBinary(n *ast.Binary) (llvm.Value, error) {
	switch {
	case n.Op == ast.Assign:
		return g.genAssign(n)
	case n.Op.IsComparison():
		return g.genComparison(n)
	case n.Op.IsLogical():
		return g.genLogical(n)
	default:
		return g.genArithmetic(n)
	}
}

// genArithmetic lowers +, -, *, /, %.
func (g *generator) genArithmetic(n *ast.Binary) (llvm.Value, error) {
	if (n.Op == ast.Add || n.Op == ast.Sub) && (n.Left.PointerLevel() > 0 || n.Right.PointerLevel() > 0) {
		return g.genPointerArithmetic(n)
	}

	lv, err := g.genExpr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	rv, err := g.genExpr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}

	floating := n.Left.ExprType().IsFloating() || n.Right.ExprType().IsFloating()
	switch n.Op {
	case ast.Add:
		if floating {
			return g.builder.CreateFAdd(lv, rv, ""), nil
		}
		return g.builder.CreateAdd(lv, rv, ""), nil
	case ast.Sub:
		if floating {
			return g.builder.CreateFSub(lv, rv, ""), nil
		}
		return g.builder.CreateSub(lv, rv, ""), nil
	case ast.Mul:
		if floating {
			return g.builder.CreateFMul(lv, rv, ""), nil
		}
		return g.builder.CreateMul(lv, rv, ""), nil
	case ast.Div:
		if floating {
			return g.builder.CreateFDiv(lv, rv, ""), nil
		}
		return g.builder.CreateSDiv(lv, rv, ""), nil
	case ast.Mod:
		if floating {
			return g.builder.CreateFRem(lv, rv, ""), nil
		}
		return g.builder.CreateSRem(lv, rv, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("unsupported arithmetic operator %s", n.Op)
	}
}

// genPointerArithmetic implements pointer +/- integer via a byte-typed GEP: the
// pointer is bitcast to i8* so the offset is counted in bytes rather than elements.
func (g *generator) genPointerArithmetic(n *ast.Binary) (llvm.Value, error) {
	ptrExpr, offsetExpr := n.Left, n.Right
	if ptrExpr.PointerLevel() == 0 {
		ptrExpr, offsetExpr = n.Right, n.Left
	}

	ptrVal, err := g.genExpr(ptrExpr)
	if err != nil {
		return llvm.Value{}, err
	}
	offsetVal, err := g.genExpr(offsetExpr)
	if err != nil {
		return llvm.Value{}, err
	}
	if n.Op == ast.Sub && ptrExpr == n.Left {
		offsetVal = g.builder.CreateNeg(offsetVal, "")
	}

	i8ptrTyp := llvm.PointerType(llvm.Int8Type(), 0)
	bytePtr := g.builder.CreateBitCast(ptrVal, i8ptrTyp, "")
	addr := g.builder.CreateGEP(bytePtr, []llvm.Value{offsetVal}, "")
	return g.builder.CreateBitCast(addr, g.lowerType(ptrExpr.ExprType(), ptrExpr.PointerLevel()), ""), nil
}

var intPredicate = map[ast.BinaryOp]llvm.IntPredicate{
	ast.Eq: llvm.IntEQ, ast.Ne: llvm.IntNE,
	ast.Lt: llvm.IntSLT, ast.Gt: llvm.IntSGT,
	ast.Le: llvm.IntSLE, ast.Ge: llvm.IntSGE,
}

var floatPredicate = map[ast.BinaryOp]llvm.FloatPredicate{
	ast.Eq: llvm.FloatOEQ, ast.Ne: llvm.FloatONE,
	ast.Lt: llvm.FloatOLT, ast.Gt: llvm.FloatOGT,
	ast.Le: llvm.FloatOLE, ast.Ge: llvm.FloatOGE,
}

// genComparison lowers relational/equality operators, sign-extending a Char operand
// compared against an Int operand.
func (g *generator) genComparison(n *ast.Binary) (llvm.Value, error) {
	lv, err := g.genExpr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	rv, err := g.genExpr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}

	if n.Left.ExprType() == ast.Char && n.Right.ExprType() == ast.Int {
		lv = g.builder.CreateSExt(lv, g.scalarType(ast.Int), "")
	} else if n.Right.ExprType() == ast.Char && n.Left.ExprType() == ast.Int {
		rv = g.builder.CreateSExt(rv, g.scalarType(ast.Int), "")
	}

	if n.Left.ExprType().IsFloating() || n.Right.ExprType().IsFloating() {
		return g.builder.CreateFCmp(floatPredicate[n.Op], lv, rv, ""), nil
	}
	return g.builder.CreateICmp(intPredicate[n.Op], lv, rv, ""), nil
}

// genLogical lowers && and || by coercing both operands to i1 and applying a bitwise
// and/or.
func (g *generator) genLogical(n *ast.Binary) (llvm.Value, error) {
	lv, err := g.genExpr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	rv, err := g.genExpr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	lb := g.toBool(lv)
	rb := g.toBool(rv)
	if n.Op == ast.And {
		return g.builder.CreateAnd(lb, rb, ""), nil
	}
	return g.builder.CreateOr(lb, rb, ""), nil
}

// toBool coerces v to i1 by comparing against zero, leaving an already-i1 value alone.
func (g *generator) toBool(v llvm.Value) llvm.Value {
	if v.Type() == llvm.Int1Type() {
		return v
	}
	if v.Type().TypeKind() == llvm.FloatTypeKind || v.Type().TypeKind() == llvm.DoubleTypeKind {
		return g.builder.CreateFCmp(llvm.FloatONE, v, llvm.ConstFloat(v.Type(), 0), "")
	}
	return g.builder.CreateICmp(llvm.IntNE, v, llvm.ConstInt(v.Type(), 0, false), "")
}

// genAssign computes the LHS address (without loading), stores the RHS, and yields
// the RHS value.
func (g *generator) genAssign(n *ast.Binary) (llvm.Value, error) {
	addr, err := g.genAddr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	rv, err := g.genExpr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	g.builder.CreateStore(rv, addr)
	return rv, nil
}

// genCall looks up the target function, lowers arguments, and issues the call (spec
// §4.6 "Call").
func (g *generator) genCall(n *ast.Call) (llvm.Value, error) {
	target := g.module.NamedFunction(n.Name)
	if target.IsNil() {
		return llvm.Value{}, fmt.Errorf("undeclared function %q", n.Name)
	}

	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := g.genExpr(a)
		if err != nil {
			return llvm.Value{}, err
		}
		args[i] = v
	}

	name := "calltmp"
	if n.ExprType() == ast.Void {
		name = ""
	}
	return g.builder.CreateCall(target, args, name), nil
}
