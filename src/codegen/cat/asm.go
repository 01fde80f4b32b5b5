package cat

import (
	"fmt"
	"strconv"
	"strings"

	"cplusc/src/ast"
)

// outputAddrReg is the scratch register the Asm lowering computes lvalue addresses
// into before storing an output.
const outputAddrReg = 6

// genAsm lowers an inline assembly statement: clobbered registers are borrowed and
// preserved, inputs are evaluated straight into their constrained registers, the
// assembly template is emitted verbatim, and outputs are stored through an address
// computed in r6.
func (g *generator) genAsm(n *ast.Asm) error {
	var pushedClobbers []int
	for _, c := range n.Clobbers {
		idx, ok := parseRegConstraint(c)
		if !ok {
			continue
		}
		if g.regs.borrowSpecific(idx) {
			g.w.Ins1("push", regName(idx))
			pushedClobbers = append(pushedClobbers, idx)
		}
	}

	for i, in := range n.Inputs {
		idx, ok := parseRegConstraint(n.InputConstraints[i])
		if !ok {
			return fmt.Errorf("unsupported asm input constraint %q", n.InputConstraints[i])
		}
		if err := g.genExpr(in, idx); err != nil {
			return err
		}
	}

	g.w.WriteString("\t" + n.Code + "\n")

	for i, out := range n.Outputs {
		idx, ok := parseRegConstraint(n.OutputConstraints[i])
		if !ok {
			return fmt.Errorf("unsupported asm output constraint %q", n.OutputConstraints[i])
		}
		if err := g.genAddr(out, outputAddrReg); err != nil {
			return err
		}
		g.w.Write("\tmov @%s, %s\n", regName(outputAddrReg), regName(idx))
	}

	for i := len(pushedClobbers) - 1; i >= 0; i-- {
		g.w.Ins1("pop", regName(pushedClobbers[i]))
	}
	return nil
}

// parseRegConstraint parses a constraint of the form "r<N>", tolerating surrounding
// quotes carried over from the asm() source syntax.
func parseRegConstraint(c string) (int, bool) {
	c = strings.Trim(strings.TrimSpace(c), "\"")
	if len(c) < 2 || c[0] != 'r' {
		return 0, false
	}
	n, err := strconv.Atoi(c[1:])
	if err != nil || n < 0 || n >= numRegisters+1 {
		return 0, false
	}
	return n, true
}
