// Command cplusc compiles a single C+ source file to a native object file or to
// textual Cat assembly, running it through a preprocess -> parse -> analyze -> codegen
// pipeline that checks for diagnostics at every stage boundary.
package main

import (
	"fmt"
	"os"

	"cplusc/src/codegen/cat"
	"cplusc/src/codegen/llvmgen"
	"cplusc/src/lexer"
	"cplusc/src/parser"
	"cplusc/src/preprocessor"
	"cplusc/src/sema"
	"cplusc/src/util"
)

func run(opt util.Options) error {
	util.ConfigureLogging(opt.Verbose)
	diag := util.NewEngine()

	util.Stage("preprocess")
	pp := preprocessor.New(diag)
	src, err := pp.ProcessFile(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	if opt.TokenStream {
		return printTokenStream(opt.Src, src, diag)
	}

	util.Stage("parse")
	prog := parser.Parse(opt.Src, src, diag)
	if diag.HasErrors() {
		diag.Print()
		os.Exit(1)
	}

	util.Stage("analyze")
	sema.New(diag).Analyze(prog)
	if diag.HasErrors() {
		diag.Print()
		os.Exit(1)
	}

	util.Stage("codegen")
	switch opt.Codegen {
	case util.CodegenCat:
		err = cat.Generate(opt, prog, diag)
	default:
		err = llvmgen.Generate(opt, prog, diag)
	}
	if err != nil {
		return fmt.Errorf("code generation error: %s", err)
	}

	diag.Print()
	if diag.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// printTokenStream lexes src and prints every token, for the --token-stream debug
// flag.
func printTokenStream(filename, src string, diag *util.Engine) error {
	lx := lexer.New(filename, src, diag)
	for {
		tok := lx.NextToken()
		fmt.Printf("%d %q\n", tok.Kind, tok.Text)
		if tok.Kind == lexer.KindEOF {
			break
		}
	}
	diag.Print()
	return nil
}

func main() {
	cmd := util.NewRootCommand(run)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
