package cat

import (
	"fmt"
	"os"

	"cplusc/src/ast"
	"cplusc/src/util"
)

// savedRegisterBytes is the stack space consumed by the prologue's push of r4, r5,
// r6 and r7, each 4 bytes wide.
const savedRegisterBytes = 16

// wordSize is the byte width of one scalar slot or array element.
const wordSize = 4

// varLoc is a local or parameter's frame-relative location. arraySize > 0 marks a true stack array, mirroring the sema package's
// array-decay bookkeeping.
type varLoc struct {
	offset int
	arraySize int
}

// generator carries all per-compilation Cat backend state.
type generator struct {
	diag *util.Engine
	w *util.Writer
	lbl *util.Labeler
	regs *allocator

	offsets map[string]varLoc
	curOffset int

	strTable []string
	strIndex map[string]int

	loopCounter int
	loopDone map[int]string
	loopContinue map[int]string
}

// Generate lowers prog to textual Cat assembly and writes it to the requested output
// path.
func Generate(opt util.Options, prog *ast.Program, diag *util.Engine) error {
	g := &generator{
		diag: diag,
		w: util.NewWriter(),
		lbl: util.NewLabeler(),
		regs: newAllocator(),
		strIndex: make(map[string]int),
	}

	g.w.WriteString("; GENERATED FROM C+ BY C+ COMPILER\n")
	g.w.WriteString("\tjmp main\n")

	for _, fn := range prog.Functions {
		g.genFunction(fn)
	}
	g.emitStringData()

	out := opt.Out
	if out == "" {
		out = "output.asm"
	}
	fd, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fd.Close()
	return g.w.Flush(fd)
}

// genFunction emits one function's prologue, body and epilogue.
func (g *generator) genFunction(fn *ast.Function) {
	g.offsets = make(map[string]varLoc)
	g.curOffset = savedRegisterBytes
	g.loopCounter = 0
	g.loopDone = nil
	g.loopContinue = nil

	g.w.Label(fn.Name)
	g.w.Ins1("push", "r4")
	g.w.Ins1("push", "r5")
	g.w.Ins1("push", "r6")
	g.w.Ins1("push", "r7")
	g.w.Ins2("mov", "r7", "sp")

	for i, p := range fn.Params {
		switch {
		case i < 3:
			g.w.Ins1("push", regName(i+1))
			g.offsets[p.Name] = varLoc{offset: g.curOffset}
			g.curOffset += wordSize
		default:
			g.offsets[p.Name] = varLoc{offset: -(8 + wordSize*(i-3))}
		}
	}

	if err := g.genStmt(fn.Body, -1); err != nil {
		g.diag.Report(util.Error, fn.Pos(), "cat backend: %s", err)
	}

	g.w.Label(".end")
	g.w.Ins1("pop", "r7")
	g.w.Ins1("pop", "r6")
	g.w.Ins1("pop", "r5")
	g.w.Ins1("pop", "r4")
	g.w.WriteString("\tret\n")
}

// internString interns a string literal and returns its label.
func (g *generator) internString(s string) string {
	if i, ok := g.strIndex[s]; ok {
		return fmt.Sprintf("str_%d", i)
	}
	i := len(g.strTable)
	g.strTable = append(g.strTable, s)
	g.strIndex[s] = i
	return fmt.Sprintf("str_%d", i)
}

// emitStringData writes the trailing data section of interned string literals,
// terminated by a zero byte.
func (g *generator) emitStringData() {
	for i, s := range g.strTable {
		g.w.Label(fmt.Sprintf("str_%d", i))
		g.w.Write("\t.bytes %q, 0\n", s)
	}
}
