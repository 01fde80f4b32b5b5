package cat

import (
	"fmt"

	"cplusc/src/ast"
	"cplusc/src/util"
)

// genStmt lowers s, threading loopID down so a nested Break/Continue resolves to the
// innermost loop. loopID is -1 outside any loop.
func (g *generator) genStmt(s ast.Stmt, loopID int) error {
	switch n := s.(type) {
	case *ast.Return:
		return g.genReturn(n)
	case *ast.VarDecl:
		return g.genVarDecl(n)
	case *ast.ExprStmt:
		return g.genExprStmt(n)
	case *ast.If:
		return g.genIf(n, loopID)
	case *ast.While:
		return g.genWhile(n)
	case *ast.For:
		return g.genFor(n)
	case *ast.Break:
		return g.genBreak(loopID)
	case *ast.Continue:
		return g.genContinue(loopID)
	case *ast.Compound:
		for _, s1 := range n.Stmts {
			if err := g.genStmt(s1, loopID); err != nil {
				return err
			}
		}
		return nil
	case *ast.Asm:
		return g.genAsm(n)
	default:
		return fmt.Errorf("unsupported statement node %T", s)
	}
}

func (g *generator) genReturn(n *ast.Return) error {
	if n.Expr != nil {
		if err := g.genExpr(n.Expr, 0); err != nil {
			return err
		}
	}
	g.w.Write("\tjmp .end\n")
	return nil
}

// genVarDecl allocates a local's stack slot. Arrays reserve 4*N+4 bytes (an implicit
// base-pointer slot at the named offset plus N element slots) and initialize the base
// slot to point at the first element.
func (g *generator) genVarDecl(n *ast.VarDecl) error {
	offset := g.curOffset
	g.offsets[n.Name] = varLoc{offset: offset, arraySize: n.ArraySize}

	if n.ArraySize > 0 {
		size := wordSize*n.ArraySize + wordSize
		g.w.Ins2imm("sub", "sp", size)
		g.curOffset += size

		base, _ := g.regs.borrow(noExclusion)
		g.w.Ins2("mov", regName(base), "r7")
		g.w.Ins2imm("sub", regName(base), offset-wordSize)
		addr, _ := g.regs.borrow(base)
		g.w.Ins2("mov", regName(addr), "r7")
		g.w.Ins2imm("sub", regName(addr), offset)
		g.w.Write("\tmov @%s, %s\n", regName(addr), regName(base))
		g.regs.give(addr, false)
		g.regs.give(base, false)
		return nil
	}

	g.w.Ins2imm("sub", "sp", wordSize)
	g.curOffset += wordSize

	if n.Init != nil {
		scratch, preserve := g.regs.borrow(noExclusion)
		if preserve {
			g.w.Ins1("push", regName(scratch))
		}
		if err := g.genExpr(n.Init, scratch); err != nil {
			return err
		}
		addr, preserveAddr := g.regs.borrow(scratch)
		if preserveAddr {
			g.w.Ins1("push", regName(addr))
		}
		g.w.Ins2("mov", regName(addr), "r7")
		g.w.Ins2imm("sub", regName(addr), offset)
		g.w.Write("\tmov @%s, %s\n", regName(addr), regName(scratch))
		if preserveAddr {
			g.w.Ins1("pop", regName(addr))
		}
		g.regs.give(addr, preserveAddr)
		if preserve {
			g.w.Ins1("pop", regName(scratch))
		}
		g.regs.give(scratch, preserve)
	}
	return nil
}

// genExprStmt lowers a bare expression statement, which must be a call or an
// assignment; any other expression is rejected.
func (g *generator) genExprStmt(n *ast.ExprStmt) error {
	if b, ok := n.Expr.(*ast.Binary); ok && b.Op != ast.Assign {
		return fmt.Errorf("expression statement must be a call or an assignment")
	}
	switch n.Expr.(type) {
	case *ast.Call, *ast.Binary:
		scratch, preserve := g.regs.borrow(noExclusion)
		if preserve {
			g.w.Ins1("push", regName(scratch))
		}
		if err := g.genExpr(n.Expr, scratch); err != nil {
			return err
		}
		if preserve {
			g.w.Ins1("pop", regName(scratch))
		}
		g.regs.give(scratch, preserve)
		return nil
	default:
		return fmt.Errorf("expression statement must be a call or an assignment")
	}
}

// genIf lowers a condition to a scratch register, compares it against 1, and branches
// to the then/else arms.
func (g *generator) genIf(n *ast.If, loopID int) error {
	scratch, preserve := g.regs.borrow(noExclusion)
	if preserve {
		g.w.Ins1("push", regName(scratch))
	}
	if err := g.genExpr(n.Cond, scratch); err != nil {
		return err
	}
	g.w.Ins2imm("cmp", regName(scratch), 1)
	if preserve {
		g.w.Ins1("pop", regName(scratch))
	}
	g.regs.give(scratch, preserve)

	trueLbl := g.lbl.Next(util.LabelIfTrue)
	doneLbl := g.lbl.Next(util.LabelIfDone)
	g.w.Write("\tje %s\n", trueLbl)

	if n.Else != nil {
		if err := g.genStmt(n.Else, loopID); err != nil {
			return err
		}
	}
	g.w.Write("\tjmp %s\n", doneLbl)
	g.w.Label(trueLbl)
	if err := g.genStmt(n.Then, loopID); err != nil {
		return err
	}
	g.w.Label(doneLbl)
	return nil
}

// genWhile lowers a pre-tested loop with labels.loopN/.continueloopN/.doneloopN (spec
// §4.7 "While").
func (g *generator) genWhile(n *ast.While) error {
	id := g.lbl.Next(util.LabelWhileLoop)
	contLbl := ".continueloop" + id[len(".loop"):]
	doneLbl := ".doneloop" + id[len(".loop"):]

	g.w.Label(id)
	scratch, preserve := g.regs.borrow(noExclusion)
	if preserve {
		g.w.Ins1("push", regName(scratch))
	}
	if err := g.genExpr(n.Cond, scratch); err != nil {
		return err
	}
	g.w.Ins2imm("cmp", regName(scratch), 1)
	if preserve {
		g.w.Ins1("pop", regName(scratch))
	}
	g.regs.give(scratch, preserve)

	g.w.Write("\tjne %s\n", doneLbl)

	loopID := g.nextLoopID()
	g.registerLoopLabels(loopID, id, contLbl, doneLbl)
	if err := g.genStmt(n.Body, loopID); err != nil {
		return err
	}
	g.w.Label(contLbl)
	g.w.Write("\tjmp %s\n", id)
	g.w.Label(doneLbl)
	return nil
}

// genFor lowers a C-style counted loop: init runs once before.loopN, and the
// increment is emitted at.continueloopN before the jump back to.loopN.
func (g *generator) genFor(n *ast.For) error {
	if n.Init != nil {
		if err := g.genStmt(n.Init, -1); err != nil {
			return err
		}
	}

	id := g.lbl.Next(util.LabelForLoop)
	contLbl := ".continueloop" + id[len(".loop"):]
	doneLbl := ".doneloop" + id[len(".loop"):]

	g.w.Label(id)
	if n.Cond != nil {
		scratch, preserve := g.regs.borrow(noExclusion)
		if preserve {
			g.w.Ins1("push", regName(scratch))
		}
		if err := g.genExpr(n.Cond, scratch); err != nil {
			return err
		}
		g.w.Ins2imm("cmp", regName(scratch), 1)
		if preserve {
			g.w.Ins1("pop", regName(scratch))
		}
		g.regs.give(scratch, preserve)
		g.w.Write("\tjne %s\n", doneLbl)
	}

	loopID := g.nextLoopID()
	g.registerLoopLabels(loopID, id, contLbl, doneLbl)
	if err := g.genStmt(n.Body, loopID); err != nil {
		return err
	}
	g.w.Label(contLbl)
	if n.Incr != nil {
		scratch, preserve := g.regs.borrow(noExclusion)
		if preserve {
			g.w.Ins1("push", regName(scratch))
		}
		if err := g.genExpr(n.Incr, scratch); err != nil {
			return err
		}
		if preserve {
			g.w.Ins1("pop", regName(scratch))
		}
		g.regs.give(scratch, preserve)
	}
	g.w.Write("\tjmp %s\n", id)
	g.w.Label(doneLbl)
	return nil
}

func (g *generator) genBreak(loopID int) error {
	lbl, ok := g.loopDone[loopID]
	if !ok {
		return fmt.Errorf("break statement can only be used inside a loop")
	}
	g.w.Write("\tjmp %s\n", lbl)
	return nil
}

func (g *generator) genContinue(loopID int) error {
	lbl, ok := g.loopContinue[loopID]
	if !ok {
		return fmt.Errorf("continue statement can only be used inside a loop")
	}
	g.w.Write("\tjmp %s\n", lbl)
	return nil
}

// nextLoopID and registerLoopLabels implement the "nested loop id threading" that
// lets Break/Continue resolve to the innermost enclosing loop.
func (g *generator) nextLoopID() int {
	g.loopCounter++
	return g.loopCounter
}

func (g *generator) registerLoopLabels(loopID int, loopLbl, contLbl, doneLbl string) {
	if g.loopDone == nil {
		g.loopDone = make(map[int]string)
		g.loopContinue = make(map[int]string)
	}
	g.loopDone[loopID] = doneLbl
	g.loopContinue[loopID] = contLbl
}
