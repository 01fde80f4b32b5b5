package cat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cplusc/src/parser"
	"cplusc/src/sema"
	"cplusc/src/util"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	diag := util.NewEngine()
	prog := parser.Parse("test.cp", src, diag)
	require.False(t, diag.HasErrors(), "parse errors: %v", diag.Diagnostics())
	sema.New(diag).Analyze(prog)
	require.False(t, diag.HasErrors(), "semantic errors: %v", diag.Diagnostics())

	out := filepath.Join(t.TempDir(), "output.asm")
	err := Generate(util.Options{Out: out}, prog, diag)
	require.NoError(t, err)
	require.False(t, diag.HasErrors(), "codegen errors: %v", diag.Diagnostics())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	return string(b)
}

func TestGenerateEmitsHeaderAndEntryJump(t *testing.T) {
	asm := generate(t, "int main() { return 0; }")
	require.True(t, strings.HasPrefix(asm, "; GENERATED FROM C+ BY C+ COMPILER\n\tjmp main\n"))
}

func TestGenerateFunctionHasPrologueAndEpilogue(t *testing.T) {
	asm := generate(t, "int main() { return 0; }")
	require.Contains(t, asm, "main:\n")
	require.Contains(t, asm, "\tpush r4\n")
	require.Contains(t, asm, "\tmov r7, sp\n")
	require.Contains(t, asm, ".end:\n")
	require.Contains(t, asm, "\tret\n")
}

func TestGenerateSingleBreakLoopHasExactlyOneLabelPair(t *testing.T) {
	asm := generate(t, "int main() { while (1) { break; } return 0; }")
	assert := require.New(t)
	assert.Equal(1, strings.Count(asm, ".loop0:\n"))
	assert.Equal(1, strings.Count(asm, ".doneloop0:\n"))
	assert.Contains(asm, "jmp .doneloop0\n")
}

func TestGenerateRecursiveCallEmitsCallInstruction(t *testing.T) {
	asm := generate(t, `
int factorial(int n) {
	if (n <= 1) { return 1; }
	return n * factorial(n - 1);
}
int main() { return factorial(5); }`)
	require.Contains(t, asm, "\tcall factorial\n")
}

func TestGenerateStringLiteralInternedInDataSection(t *testing.T) {
	asm := generate(t, `int main() { __cplus_print_("hi"); return 0; }`)
	require.Contains(t, asm, "str_0:\n")
	require.Contains(t, asm, "mov r1, str_0\n")
}

func TestGenerateForLoopUsesForLabelKind(t *testing.T) {
	asm := generate(t, "int main() { int i; int s; for (i = 1; i <= 10; i = i + 1) { s = s + i; } return s; }")
	require.Contains(t, asm, ".loop0:\n")
	require.Contains(t, asm, ".continueloop0:\n")
	require.Contains(t, asm, ".doneloop0:\n")
}
