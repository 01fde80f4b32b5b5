package cat

import (
	"fmt"
	"strconv"

	"cplusc/src/ast"
	"cplusc/src/util"
)

// genExpr lowers e into caller-specified register reg.
func (g *generator) genExpr(e ast.Expr, reg int) error {
	switch n := e.(type) {
	case *ast.Number:
		return g.genNumber(n, reg)
	case *ast.StringLiteral:
		g.w.Ins2("mov", regName(reg), g.internString(n.Text))
		return nil
	case *ast.Var:
		return g.genVarLoad(n, reg)
	case *ast.Unary:
		return g.genUnary(n, reg)
	case *ast.Binary:
		return g.genBinary(n, reg)
	case *ast.Call:
		return g.genCall(n, reg)
	case *ast.ArrayIndex:
		if err := g.genArrayAddr(n, reg); err != nil {
			return err
		}
		g.w.Write("\tmov %s, @%s\n", regName(reg), regName(reg))
		return nil
	default:
		return fmt.Errorf("unsupported expression node %T", e)
	}
}

// genNumber lowers a Number literal, which the analyzer always types Int, level 0. It
// reads a leading run of digits the way C's atoi does, so a decimal-literal token such
// as "3.14" truncates to 3 rather than silently becoming 0.
func (g *generator) genNumber(n *ast.Number, reg int) error {
	g.w.Ins2imm("mov", regName(reg), int(atoiText(n.Text)))
	return nil
}

func atoiText(text string) int64 {
	i := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	v, err := strconv.ParseInt(text[:i], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// genVarLoad computes a variable's frame address and dereferences it.
func (g *generator) genVarLoad(n *ast.Var, reg int) error {
	loc, ok := g.offsets[n.Name]
	if !ok {
		return fmt.Errorf("undeclared identifier %q", n.Name)
	}
	g.w.Ins2("mov", regName(reg), "r7")
	g.w.Ins2imm("sub", regName(reg), loc.offset)
	g.w.Write("\tmov %s, @%s\n", regName(reg), regName(reg))
	return nil
}

// genAddr computes the storage address of an lvalue into reg without a final
// dereference.
func (g *generator) genAddr(e ast.Expr, reg int) error {
	switch n := e.(type) {
	case *ast.Var:
		loc, ok := g.offsets[n.Name]
		if !ok {
			return fmt.Errorf("undeclared identifier %q", n.Name)
		}
		g.w.Ins2("mov", regName(reg), "r7")
		g.w.Ins2imm("sub", regName(reg), loc.offset)
		return nil
	case *ast.ArrayIndex:
		return g.genArrayAddr(n, reg)
	case *ast.Unary:
		if n.Op != ast.Deref {
			return fmt.Errorf("expression is not an lvalue")
		}
		depth := 0
		var cur ast.Expr = n
		for {
			u, ok := cur.(*ast.Unary)
			if !ok || u.Op != ast.Deref {
				break
			}
			depth++
			cur = u.Operand
		}
		if err := g.genExpr(cur, reg); err != nil {
			return err
		}
		for i := 1; i < depth; i++ {
			g.w.Write("\tmov %s, @%s\n", regName(reg), regName(reg))
		}
		return nil
	default:
		return fmt.Errorf("expression is not an lvalue")
	}
}

// genArrayAddr computes the element address of an array index expression: the array
// base (itself a pointer value per genVarDecl's array lowering) plus the index scaled
// by the word size.
func (g *generator) genArrayAddr(n *ast.ArrayIndex, reg int) error {
	if err := g.genExpr(n.Array, reg); err != nil {
		return err
	}
	idx, preserve := g.regs.borrow(reg)
	if preserve {
		g.w.Ins1("push", regName(idx))
	}
	if err := g.genExpr(n.Index, idx); err != nil {
		return err
	}
	g.w.Ins2imm("umul", regName(idx), wordSize)
	g.w.Ins2("add", regName(reg), regName(idx))
	if preserve {
		g.w.Ins1("pop", regName(idx))
	}
	g.regs.give(idx, preserve)
	return nil
}

// genUnary lowers prefix unary expressions.
func (g *generator) genUnary(n *ast.Unary, reg int) error {
	switch n.Op {
	case ast.AddrOf:
		return g.genAddr(n.Operand, reg)
	case ast.Deref:
		if err := g.genExpr(n.Operand, reg); err != nil {
			return err
		}
		g.w.Write("\tmov %s, @%s\n", regName(reg), regName(reg))
		return nil
	case ast.Neg:
		if err := g.genExpr(n.Operand, reg); err != nil {
			return err
		}
		g.w.Ins1("not", regName(reg))
		g.w.Ins2imm("add", regName(reg), 1)
		return nil
	case ast.Not:
		if err := g.genExpr(n.Operand, reg); err != nil {
			return err
		}
		g.emitBoolFromZeroTest(reg, "je")
		return nil
	default:
		return fmt.Errorf("unsupported unary operator %s", n.Op)
	}
}

// emitBoolFromZeroTest compares reg to zero and sets reg to 1 along the given jump
// mnemonic's taken branch, 0 otherwise, rejoining at a shared done label.
func (g *generator) emitBoolFromZeroTest(reg int, jumpIfTrue string) {
	trueLbl := g.lbl.Next(util.LabelIfTrue)
	doneLbl := g.lbl.Next(util.LabelIfDone)
	g.w.Ins2imm("cmp", regName(reg), 0)
	g.w.Write("\t%s %s\n", jumpIfTrue, trueLbl)
	g.w.Ins2imm("mov", regName(reg), 0)
	g.w.Write("\tjmp %s\n", doneLbl)
	g.w.Label(trueLbl)
	g.w.Ins2imm("mov", regName(reg), 1)
	g.w.Label(doneLbl)
}

var jumpMnemonic = map[ast.BinaryOp]string{
	ast.Eq: "je", ast.Ne: "jne",
	ast.Gt: "jug", ast.Lt: "jul",
	ast.Ge: "juge", ast.Le: "jule",
}

// genBinary dispatches to the arithmetic/logical, comparison, or assignment lowering
// for n.
func (g *generator) genBinary(n *ast.Binary, reg int) error {
	switch {
	case n.Op == ast.Assign:
		return g.genAssign(n, reg)
	case n.Op.IsComparison():
		return g.genComparison(n, reg)
	default:
		return g.genArithmeticOrLogical(n, reg)
	}
}

var arithmeticMnemonic = map[ast.BinaryOp]string{
	ast.Add: "add", ast.Sub: "sub", ast.Mul: "umul", ast.Div: "udiv", ast.Mod: "umod",
	ast.And: "and", ast.Or: "or",
}

// genArithmeticOrLogical borrows two scratch registers, lowers each operand into one,
// emits the operator, and moves the result into reg.
func (g *generator) genArithmeticOrLogical(n *ast.Binary, reg int) error {
	s1, p1 := g.regs.borrow(noExclusion)
	if p1 {
		g.w.Ins1("push", regName(s1))
	}
	if err := g.genExpr(n.Left, s1); err != nil {
		return err
	}

	s2, p2 := g.regs.borrow(s1)
	if p2 {
		g.w.Ins1("push", regName(s2))
	}
	if err := g.genExpr(n.Right, s2); err != nil {
		return err
	}

	mnemonic, ok := arithmeticMnemonic[n.Op]
	if !ok {
		return fmt.Errorf("unsupported binary operator %s", n.Op)
	}
	g.w.Ins2(mnemonic, regName(s1), regName(s2))
	g.w.Ins2("mov", regName(reg), regName(s1))

	if p2 {
		g.w.Ins1("pop", regName(s2))
	}
	g.regs.give(s2, p2)
	if p1 {
		g.w.Ins1("pop", regName(s1))
	}
	g.regs.give(s1, p1)
	return nil
}

// genComparison lowers a relational/equality operator by comparing two scratch
// registers and branching to paired true/false labels.
func (g *generator) genComparison(n *ast.Binary, reg int) error {
	s1, p1 := g.regs.borrow(noExclusion)
	if p1 {
		g.w.Ins1("push", regName(s1))
	}
	if err := g.genExpr(n.Left, s1); err != nil {
		return err
	}

	s2, p2 := g.regs.borrow(s1)
	if p2 {
		g.w.Ins1("push", regName(s2))
	}
	if err := g.genExpr(n.Right, s2); err != nil {
		return err
	}

	g.w.Ins2("cmp", regName(s1), regName(s2))
	jmp, ok := jumpMnemonic[n.Op]
	if !ok {
		return fmt.Errorf("unsupported comparison operator %s", n.Op)
	}

	if p2 {
		g.w.Ins1("pop", regName(s2))
	}
	g.regs.give(s2, p2)
	if p1 {
		g.w.Ins1("pop", regName(s1))
	}
	g.regs.give(s1, p1)

	g.emitBoolFromZeroTest2(reg, jmp)
	return nil
}

// emitBoolFromZeroTest2 is the comparison-specific counterpart of
// emitBoolFromZeroTest: it assumes the flags are already set by a preceding `cmp` and
// jumps on jmp directly, without re-comparing reg to zero.
func (g *generator) emitBoolFromZeroTest2(reg int, jmp string) {
	trueLbl := g.lbl.Next(util.LabelIfTrue)
	doneLbl := g.lbl.Next(util.LabelIfDone)
	g.w.Write("\t%s %s\n", jmp, trueLbl)
	g.w.Ins2imm("mov", regName(reg), 0)
	g.w.Write("\tjmp %s\n", doneLbl)
	g.w.Label(trueLbl)
	g.w.Ins2imm("mov", regName(reg), 1)
	g.w.Label(doneLbl)
}

// genAssign computes the LHS address, lowers the RHS into a scratch register, stores
// it, and yields the value in reg.
func (g *generator) genAssign(n *ast.Binary, reg int) error {
	addrReg, pa := g.regs.borrow(noExclusion)
	if pa {
		g.w.Ins1("push", regName(addrReg))
	}
	if err := g.genAddr(n.Left, addrReg); err != nil {
		return err
	}

	rhsReg, pr := g.regs.borrow(addrReg)
	if pr {
		g.w.Ins1("push", regName(rhsReg))
	}
	if err := g.genExpr(n.Right, rhsReg); err != nil {
		return err
	}

	g.w.Write("\tmov @%s, %s\n", regName(addrReg), regName(rhsReg))
	if reg != rhsReg {
		g.w.Ins2("mov", regName(reg), regName(rhsReg))
	}

	if pr {
		g.w.Ins1("pop", regName(rhsReg))
	}
	g.regs.give(rhsReg, pr)
	if pa {
		g.w.Ins1("pop", regName(addrReg))
	}
	g.regs.give(addrReg, pa)
	return nil
}

// genCall lowers a call expression using the three-register calling convention (spec
// §4.7 "Call").
func (g *generator) genCall(n *ast.Call, reg int) error {
	g.w.Comment("call %s", n.Name)

	preserveR0 := reg != 0
	if preserveR0 {
		g.w.Ins1("push", "r0")
	}

	var pushedArgRegs []int
	extraBytes := 0
	for i, a := range n.Args {
		if i < 3 {
			argReg := i + 1
			pres := g.regs.borrowSpecific(argReg)
			if pres {
				g.w.Ins1("push", regName(argReg))
				pushedArgRegs = append(pushedArgRegs, argReg)
			}
			if err := g.genExpr(a, argReg); err != nil {
				return err
			}
		} else {
			if err := g.genExpr(a, 0); err != nil {
				return err
			}
			g.w.Ins1("push", "r0")
			extraBytes += wordSize
		}
	}

	g.w.Write("\tcall %s\n", n.Name)

	if extraBytes > 0 {
		g.w.Ins2imm("add", "sp", extraBytes)
	}
	for i := len(pushedArgRegs) - 1; i >= 0; i-- {
		g.w.Ins1("pop", regName(pushedArgRegs[i]))
	}

	switch {
	case preserveR0:
		g.w.Ins2("mov", regName(reg), "r0")
		g.w.Ins1("pop", "r0")
	case reg != 0:
		g.w.Ins2("mov", regName(reg), "r0")
	}
	return nil
}
