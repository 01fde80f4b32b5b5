// Package llvmgen lowers an analyzed program to LLVM IR and emits a native object
// file: alloca/load/store/GEP/branch builder calls followed by a verify-dump-emit
// final stage, via a plain recursive walk of ast.Program.
package llvmgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tinygo.org/x/go-llvm"

	"cplusc/src/ast"
	"cplusc/src/util"
)

// varInfo tracks everything a later reference to a local or global needs: its storage
// value, declared type, pointer_level, and (for stack arrays) its element count (spec
// §4.6 "Symbol tracking").
type varInfo struct {
	value llvm.Value
	typ ast.TypeKind
	level int
	arraySize int
}

// generator carries all backend state for one compilation.
type generator struct {
	diag *util.Engine
	ctx llvm.Context
	builder llvm.Builder
	module llvm.Module

	globals map[string]*varInfo
	locals map[string]*varInfo

	fn loopTargets

	strCount int
}

// loopTargets is the saved/restored break-continue target pair for the innermost
// enclosing loop.
type loopTargets struct {
	breakTo []llvm.BasicBlock
	continueTo []llvm.BasicBlock
}

func (l *loopTargets) push(brk, cont llvm.BasicBlock) {
	l.breakTo = append(l.breakTo, brk)
	l.continueTo = append(l.continueTo, cont)
}

func (l *loopTargets) pop() {
	l.breakTo = l.breakTo[:len(l.breakTo)-1]
	l.continueTo = l.continueTo[:len(l.continueTo)-1]
}

func (l *loopTargets) current() (brk, cont llvm.BasicBlock, ok bool) {
	if len(l.breakTo) == 0 {
		return llvm.BasicBlock{}, llvm.BasicBlock{}, false
	}
	n := len(l.breakTo) - 1
	return l.breakTo[n], l.continueTo[n], true
}

// Generate lowers prog to LLVM IR, verifies the module, writes a textual IR listing
// next to the object file, and emits a native object file.
func Generate(opt util.Options, prog *ast.Program, diag *util.Engine) error {
	g := &generator{
		diag: diag,
		ctx: llvm.NewContext(),
		globals: make(map[string]*varInfo),
	}
	defer g.ctx.Dispose()

	g.builder = g.ctx.NewBuilder()
	defer g.builder.Dispose()

	base := filepath.Base(opt.Src)
	g.module = g.ctx.NewModule(strings.TrimSuffix(base, filepath.Ext(base)))
	defer g.module.Dispose()

	for _, gv := range prog.Globals {
		if err := g.declareGlobal(gv); err != nil {
			return err
		}
	}
	for _, fn := range prog.Functions {
		if err := g.declareFunctionHeader(fn); err != nil {
			return err
		}
	}
	for _, fn := range prog.Functions {
		if err := g.genFunctionBody(fn); err != nil {
			return err
		}
	}

	if err := llvm.VerifyModule(g.module, llvm.ReturnStatusAction); err != nil {
		return fmt.Errorf("module verification failed: %w", err)
	}

	out := opt.Out
	if out == "" {
		out = "output.o"
	}
	if err := os.WriteFile(out+".ll", []byte(g.module.String()), 0644); err != nil {
		return fmt.Errorf("writing IR listing: %w", err)
	}

	return g.emitObject(out)
}

// emitObject initializes the native target, builds a position-independent target
// machine for the host triple, and writes an object file to out.
func (g *generator) emitObject(out string) error {
	if err := llvm.InitializeNativeTarget(); err != nil {
		return err
	}
	if err := llvm.InitializeNativeAsmPrinter(); err != nil {
		return err
	}

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return fmt.Errorf("resolving target triple %q: %w", triple, err)
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelDefault, llvm.RelocPIC, llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()
	g.module.SetDataLayout(td.String())
	g.module.SetTarget(tm.Triple())

	buf, err := tm.EmitToMemoryBuffer(g.module, llvm.ObjectFile)
	if err != nil {
		return fmt.Errorf("emitting object code: %w", err)
	}

	fd, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	defer fd.Close()
	_, err = fd.Write(buf.Bytes())
	return err
}

// declareGlobal adds one file-scope variable to the module and the global symbol
// table. Array-decayed globals register at ArraySize so later loads of the name know
// to GEP-decay rather than load.
func (g *generator) declareGlobal(gv *ast.GlobalVar) error {
	level := gv.PointerLevel
	var typ llvm.Type
	if gv.ArraySize > 0 {
		typ = g.arrayType(gv.Type, gv.PointerLevel, gv.ArraySize)
	} else {
		typ = g.lowerType(gv.Type, level)
	}

	val := llvm.AddGlobal(g.module, typ, gv.Name)
	val.SetInitializer(llvm.ConstNull(typ))
	g.globals[gv.Name] = &varInfo{value: val, typ: gv.Type, level: level, arraySize: gv.ArraySize}
	return nil
}

// declareFunctionHeader declares fn's LLVM signature.
func (g *generator) declareFunctionHeader(fn *ast.Function) error {
	ret := g.lowerType(fn.ReturnType, fn.ReturnPointerLevel)
	params := make([]llvm.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = g.lowerType(p.Type, p.PointerLevel)
	}
	ftyp := llvm.FunctionType(ret, params, false)
	llfn := llvm.AddFunction(g.module, fn.Name, ftyp)
	for i, p := range fn.Params {
		llfn.Param(i).SetName(p.Name)
	}
	return nil
}

// genFunctionBody emits fn's entry block, parameter allocas, and statement body,
// appending a default return if control falls off the end.
func (g *generator) genFunctionBody(fn *ast.Function) error {
	llfn := g.module.NamedFunction(fn.Name)
	if llfn.IsNil() {
		return fmt.Errorf("internal error: function %q was not declared", fn.Name)
	}

	g.locals = make(map[string]*varInfo)
	entry := llvm.AddBasicBlock(llfn, "entry")
	g.builder.SetInsertPointAtEnd(entry)

	for i, p := range fn.Params {
		typ := g.lowerType(p.Type, p.PointerLevel)
		slot := g.builder.CreateAlloca(typ, p.Name)
		g.builder.CreateStore(llfn.Param(i), slot)
		g.locals[p.Name] = &varInfo{value: slot, typ: p.Type, level: p.PointerLevel}
	}

	if err := g.genStmt(fn.Body); err != nil {
		return fmt.Errorf("function %q: %w", fn.Name, err)
	}

	if cur := g.builder.GetInsertBlock(); cur.LastInstruction().IsNil() || !isTerminator(cur.LastInstruction()) {
		if fn.ReturnType == ast.Void {
			g.builder.CreateRetVoid()
		} else {
			g.builder.CreateRet(llvm.ConstNull(g.lowerType(fn.ReturnType, fn.ReturnPointerLevel)))
		}
	}

	return nil
}

func isTerminator(v llvm.Value) bool {
	switch v.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.IndirectBr, llvm.Invoke, llvm.Unreachable:
		return true
	}
	return false
}

// lookup resolves name in locals first, then globals.
func (g *generator) lookup(name string) (*varInfo, bool) {
	if v, ok := g.locals[name]; ok {
		return v, true
	}
	v, ok := g.globals[name]
	return v, ok
}

// internString returns a pointer to a freshly emitted global string constant. Unlike
// the Cat backend, which interns by content into a shared table, this backend simply
// asks the builder for a private global each time: LLVM's own constant merging pass is
// left to dedupe identical literals.
func (g *generator) internString(text string) llvm.Value {
	name := fmt.Sprintf("%s%d", stringPrefix, g.strCount)
	g.strCount++
	return g.builder.CreateGlobalStringPtr(text, name)
}

const stringPrefix = "L_STR"

// parseIntText parses the lexer's number-literal source text the way C's atoi does:
// it reads a run of leading digits and stops at the first non-digit rather than
// failing outright, so a decimal-literal token such as "3.14" (still always typed
// Int by the analyzer) lowers to 3 instead of 0.
func parseIntText(text string) int64 {
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
