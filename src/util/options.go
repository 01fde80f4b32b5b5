// options.go defines the compiler's configuration surface and the cobra command that
// populates it.

package util

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Codegen selects which backend main.go runs: cat.Generate or llvmgen.Generate.
type Codegen int

const (
	// CodegenLLVM lowers the annotated program to LLVM IR and a native object file.
	CodegenLLVM Codegen = iota
	// CodegenCat lowers the annotated program to textual Cat assembly.
	CodegenCat
)

// Options holds every flag the compiler accepts, populated by cobra before Run is
// invoked.
type Options struct {
	Src         string  // Path to the source file.
	Out         string  // Path to the output file, used as given; empty selects output.o or output.asm.
	Codegen     Codegen // Selected backend.
	Verbose     bool    // Emit stage-boundary logging.
	TokenStream bool    // Print the token stream and exit.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "cplusc 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// NewRootCommand builds the cobra root command. run is invoked with the fully
// populated Options once cobra has parsed arguments.
func NewRootCommand(run func(Options) error) *cobra.Command {
	opt := Options{}
	var codegenFlag string

	cmd := &cobra.Command{
		Use:     "cplusc <source-file>",
		Short:   "Compile C+ source to a native object file or Cat assembly",
		Version: appVersion,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Src = args[0]
			switch codegenFlag {
			case "llvm":
				opt.Codegen = CodegenLLVM
			case "cat":
				opt.Codegen = CodegenCat
			default:
				return fmt.Errorf("unknown backend %q: must be 'llvm' or 'cat'", codegenFlag)
			}
			return run(opt)
		},
	}

	cmd.Flags().StringVar(&codegenFlag, "codegen", "llvm", "backend to use: 'llvm' or 'cat'")
	cmd.Flags().StringVarP(&opt.Out, "out", "o", "", "output file path (defaults to output.o / output.asm)")
	cmd.Flags().BoolVarP(&opt.Verbose, "verbose", "v", false, "log compiler stage progress")
	cmd.Flags().BoolVar(&opt.TokenStream, "token-stream", false, "print the token stream and exit")

	return cmd
}
