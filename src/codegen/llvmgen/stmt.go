package llvmgen

import (
	"fmt"
	"strings"

	"tinygo.org/x/go-llvm"

	"cplusc/src/ast"
)

// genStmt lowers s into the current basic block.
func (g *generator) genStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Return:
		return g.genReturn(n)
	case *ast.If:
		return g.genIf(n)
	case *ast.While:
		return g.genWhile(n)
	case *ast.For:
		return g.genFor(n)
	case *ast.Break:
		return g.genBreak(n)
	case *ast.Continue:
		return g.genContinue(n)
	case *ast.VarDecl:
		return g.genVarDecl(n)
	case *ast.ExprStmt:
		_, err := g.genExpr(n.Expr)
		return err
	case *ast.Compound:
		return g.genCompound(n)
	case *ast.Asm:
		return g.genAsm(n)
	default:
		return fmt.Errorf("unsupported statement node %T", s)
	}
}

func (g *generator) blockTerminated() bool {
	cur := g.builder.GetInsertBlock()
	last := cur.LastInstruction()
	return !last.IsNil() && isTerminator(last)
}

func (g *generator) genReturn(n *ast.Return) error {
	if n.Expr == nil {
		g.builder.CreateRetVoid()
		return nil
	}
	v, err := g.genExpr(n.Expr)
	if err != nil {
		return err
	}
	g.builder.CreateRet(v)
	return nil
}

// genIf wires If-Then and If-Then-Else into basic blocks, guarding each branch so an
// already-terminated block does not emit a stray branch.
func (g *generator) genIf(n *ast.If) error {
	cond, err := g.genExpr(n.Cond)
	if err != nil {
		return err
	}
	cond = g.toBool(cond)

	fn := g.builder.GetInsertBlock().Parent()
	thenBB := llvm.AddBasicBlock(fn, "")

	if n.Else == nil {
		doneBB := llvm.AddBasicBlock(fn, "")
		g.builder.CreateCondBr(cond, thenBB, doneBB)

		g.builder.SetInsertPointAtEnd(thenBB)
		if err := g.genStmt(n.Then); err != nil {
			return err
		}
		if !g.blockTerminated() {
			g.builder.CreateBr(doneBB)
		}
		g.builder.SetInsertPointAtEnd(doneBB)
		return nil
	}

	elseBB := llvm.AddBasicBlock(fn, "")
	g.builder.CreateCondBr(cond, thenBB, elseBB)

	g.builder.SetInsertPointAtEnd(thenBB)
	if err := g.genStmt(n.Then); err != nil {
		return err
	}
	thenTerminated := g.blockTerminated()

	g.builder.SetInsertPointAtEnd(elseBB)
	if err := g.genStmt(n.Else); err != nil {
		return err
	}
	elseTerminated := g.blockTerminated()

	if !thenTerminated || !elseTerminated {
		doneBB := llvm.AddBasicBlock(fn, "")
		if !thenTerminated {
			g.builder.SetInsertPointAtEnd(thenBB)
			g.builder.CreateBr(doneBB)
		}
		if !elseTerminated {
			g.builder.SetInsertPointAtEnd(elseBB)
			g.builder.CreateBr(doneBB)
		}
		g.builder.SetInsertPointAtEnd(doneBB)
	}
	return nil
}

// genWhile wires a pre-tested loop, pushing its break/continue targets.
func (g *generator) genWhile(n *ast.While) error {
	fn := g.builder.GetInsertBlock().Parent()
	head := llvm.AddBasicBlock(fn, "")
	body := llvm.AddBasicBlock(fn, "")
	done := llvm.AddBasicBlock(fn, "")

	g.builder.CreateBr(head)
	g.builder.SetInsertPointAtEnd(head)
	cond, err := g.genExpr(n.Cond)
	if err != nil {
		return err
	}
	g.builder.CreateCondBr(g.toBool(cond), body, done)

	g.fn.push(done, head)
	g.builder.SetInsertPointAtEnd(body)
	if err := g.genStmt(n.Body); err != nil {
		g.fn.pop()
		return err
	}
	if !g.blockTerminated() {
		g.builder.CreateBr(head)
	}
	g.fn.pop()

	g.builder.SetInsertPointAtEnd(done)
	return nil
}

// genFor wires a C-style counted loop. A VarDecl init allocates its slot in the
// enclosing block before the loop head and is removed from locals on exit.
func (g *generator) genFor(n *ast.For) error {
	var loopVar string
	if vd, ok := n.Init.(*ast.VarDecl); ok {
		loopVar = vd.Name
		if err := g.genStmt(vd); err != nil {
			return err
		}
	} else if n.Init != nil {
		if err := g.genStmt(n.Init); err != nil {
			return err
		}
	}

	fn := g.builder.GetInsertBlock().Parent()
	head := llvm.AddBasicBlock(fn, "")
	body := llvm.AddBasicBlock(fn, "")
	incr := llvm.AddBasicBlock(fn, "")
	done := llvm.AddBasicBlock(fn, "")

	g.builder.CreateBr(head)
	g.builder.SetInsertPointAtEnd(head)
	if n.Cond != nil {
		cond, err := g.genExpr(n.Cond)
		if err != nil {
			return err
		}
		g.builder.CreateCondBr(g.toBool(cond), body, done)
	} else {
		g.builder.CreateBr(body)
	}

	g.fn.push(done, incr)
	g.builder.SetInsertPointAtEnd(body)
	if err := g.genStmt(n.Body); err != nil {
		g.fn.pop()
		return err
	}
	if !g.blockTerminated() {
		g.builder.CreateBr(incr)
	}
	g.fn.pop()

	g.builder.SetInsertPointAtEnd(incr)
	if n.Incr != nil {
		if _, err := g.genExpr(n.Incr); err != nil {
			return err
		}
	}
	g.builder.CreateBr(head)

	g.builder.SetInsertPointAtEnd(done)
	if loopVar != "" {
		delete(g.locals, loopVar)
	}
	return nil
}

// genBreak and genContinue branch to the innermost loop's saved targets, then move
// the builder to an unreachable dead block so later statements in the same compound
// body are silently dropped.
func (g *generator) genBreak(n *ast.Break) error {
	brk, _, ok := g.fn.current()
	if !ok {
		return fmt.Errorf("break outside of a loop")
	}
	g.builder.CreateBr(brk)
	g.startDeadBlock()
	return nil
}

func (g *generator) genContinue(n *ast.Continue) error {
	_, cont, ok := g.fn.current()
	if !ok {
		return fmt.Errorf("continue outside of a loop")
	}
	g.builder.CreateBr(cont)
	g.startDeadBlock()
	return nil
}

func (g *generator) startDeadBlock() {
	fn := g.builder.GetInsertBlock().Parent()
	dead := llvm.AddBasicBlock(fn, "")
	g.builder.SetInsertPointAtEnd(dead)
}

// genVarDecl allocates a local's storage, registering arrays with their element count
// so later references decay correctly.
func (g *generator) genVarDecl(n *ast.VarDecl) error {
	if n.ArraySize > 0 {
		if n.Init != nil {
			return fmt.Errorf("array initializer lists are not supported")
		}
		typ := g.arrayType(n.Type, n.PointerLevel, n.ArraySize)
		slot := g.builder.CreateAlloca(typ, n.Name)
		g.locals[n.Name] = &varInfo{value: slot, typ: n.Type, level: n.PointerLevel + 1, arraySize: n.ArraySize}
		return nil
	}

	typ := g.lowerType(n.Type, n.PointerLevel)
	slot := g.builder.CreateAlloca(typ, n.Name)
	g.locals[n.Name] = &varInfo{value: slot, typ: n.Type, level: n.PointerLevel}

	if n.Init != nil {
		v, err := g.genExpr(n.Init)
		if err != nil {
			return err
		}
		g.builder.CreateStore(v, slot)
	}
	return nil
}

// genCompound lowers a brace-delimited statement sequence, stopping early if a nested
// statement terminated the current block.
func (g *generator) genCompound(n *ast.Compound) error {
	for _, s := range n.Stmts {
		if err := g.genStmt(s); err != nil {
			return err
		}
		if g.blockTerminated() {
			break
		}
	}
	return nil
}

// genAsm lowers an inline assembly statement to an LLVM inline-asm call: `$N` placeholders become `${N}`, 32-bit integer inputs are zero-extended to
// 64 bits, and multi-output asm yields an aggregate whose elements are extracted and
// stored individually.
func (g *generator) genAsm(n *ast.Asm) error {
	code := convertAsmPlaceholders(n.Code)

	inputVals := make([]llvm.Value, len(n.Inputs))
	inputTypes := make([]llvm.Type, len(n.Inputs))
	for i, in := range n.Inputs {
		v, err := g.genExpr(in)
		if err != nil {
			return err
		}
		if v.Type() == llvm.Int32Type() {
			v = g.builder.CreateZExt(v, llvm.Int64Type(), "")
		}
		inputVals[i] = v
		inputTypes[i] = v.Type()
	}

	constraints := buildConstraintString(n.OutputConstraints, n.InputConstraints, n.Clobbers)

	var retType llvm.Type
	outputTypes := make([]llvm.Type, len(n.Outputs))
	for i, out := range n.Outputs {
		addr, err := g.genAddr(out)
		if err != nil {
			return err
		}
		outputTypes[i] = addr.Type().ElementType()
	}
	switch len(outputTypes) {
	case 0:
		retType = llvm.VoidType()
	case 1:
		retType = outputTypes[0]
	default:
		retType = g.ctx.StructType(outputTypes, false)
	}

	fnType := llvm.FunctionType(retType, inputTypes, false)
	asm := llvm.InlineAsm(fnType, code, constraints, true, false, llvm.InlineAsmDialectATT)
	result := g.builder.CreateCall(asm, inputVals, "")

	switch len(n.Outputs) {
	case 0:
		// No result to store.
	case 1:
		addr, err := g.genAddr(n.Outputs[0])
		if err != nil {
			return err
		}
		g.builder.CreateStore(result, addr)
	default:
		for i, out := range n.Outputs {
			addr, err := g.genAddr(out)
			if err != nil {
				return err
			}
			elem := g.builder.CreateExtractValue(result, i, "")
			g.builder.CreateStore(elem, addr)
		}
	}
	return nil
}

// convertAsmPlaceholders rewrites GCC-style `$N` operand placeholders to LLVM's
// Intel-dialect `${N}` form.
func convertAsmPlaceholders(code string) string {
	var sb strings.Builder
	for i := 0; i < len(code); i++ {
		if code[i] == '$' && i+1 < len(code) && code[i+1] >= '0' && code[i+1] <= '9' {
			j := i + 1
			for j < len(code) && code[j] >= '0' && code[j] <= '9' {
				j++
			}
			sb.WriteString("${")
			sb.WriteString(code[i+1: j])
			sb.WriteString("}")
			i = j - 1
			continue
		}
		sb.WriteByte(code[i])
	}
	return sb.String()
}

// buildConstraintString assembles the LLVM inline-asm constraint string from the
// output, input, and clobber lists (output constraints prefixed `=`, clobbers
// rendered `~{reg}`).
func buildConstraintString(outputs, inputs, clobbers []string) string {
	parts := make([]string, 0, len(outputs)+len(inputs)+len(clobbers))
	for _, o := range outputs {
		parts = append(parts, "="+o)
	}
	parts = append(parts, inputs...)
	for _, c := range clobbers {
		parts = append(parts, "~{"+c+"}")
	}
	return strings.Join(parts, ",")
}
