package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cplusc/src/parser"
	"cplusc/src/util"
)

func check(t *testing.T, src string) *util.Engine {
	t.Helper()
	diag := util.NewEngine()
	prog := parser.Parse("test.cp", src, diag)
	require.False(t, diag.HasErrors(), "parse errors: %v", diag.Diagnostics())
	New(diag).Analyze(prog)
	return diag
}

func TestAnalyzeWellFormedProgram(t *testing.T) {
	diag := check(t, `
int factorial(int n) {
	if (n <= 1) {
		return 1;
	}
	return n * factorial(n - 1);
}
int main() {
	return factorial(5);
}`)
	assert.False(t, diag.HasErrors())
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	diag := check(t, "int main() { return missing; }")
	assert.True(t, diag.HasErrors())
}

func TestAnalyzeDuplicateGlobalReportsNote(t *testing.T) {
	diag := check(t, "int x = 1; int x = 2; int main() { return 0; }")
	require.True(t, diag.HasErrors())
	var sawNote bool
	for _, d := range diag.Diagnostics() {
		if d.Level == util.Note {
			sawNote = true
		}
	}
	assert.True(t, sawNote, "expected a 'previous declaration' note")
}

func TestAnalyzeBreakOutsideLoop(t *testing.T) {
	diag := check(t, "int main() { break; return 0; }")
	assert.True(t, diag.HasErrors())
}

func TestAnalyzeBreakInsideLoopOK(t *testing.T) {
	diag := check(t, "int main() { while (1) { break; } return 0; }")
	assert.False(t, diag.HasErrors())
}

func TestAnalyzeMissingReturnWarns(t *testing.T) {
	diag := check(t, "int f() { int x = 1; }")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, 1, diag.WarningCount())
}

func TestAnalyzeVoidVariableIsError(t *testing.T) {
	diag := check(t, "int main() { void v; return 0; }")
	assert.True(t, diag.HasErrors())
}

func TestAnalyzeConstAssignmentIsError(t *testing.T) {
	diag := check(t, "int main() { const int x = 1; x = 2; return 0; }")
	assert.True(t, diag.HasErrors())
}

func TestAnalyzeDereferenceOfNonPointerIsError(t *testing.T) {
	diag := check(t, "int main() { int x = 1; return *x; }")
	assert.True(t, diag.HasErrors())
}

func TestAnalyzeArgumentCountMismatch(t *testing.T) {
	diag := check(t, "int add(int a, int b) { return a + b; } int main() { return add(1); }")
	assert.True(t, diag.HasErrors())
}

func TestAnalyzePointerArithmeticResultIsPointer(t *testing.T) {
	diag := check(t, "int main() { int *p; int x = 1; p = p + x; return 0; }")
	assert.False(t, diag.HasErrors())
}

func TestAnalyzeStringCharStarCompatible(t *testing.T) {
	diag := check(t, "char *p; string s = p;")
	assert.False(t, diag.HasErrors())
}

func TestAnalyzeIntPointerImplicitConversion(t *testing.T) {
	diag := check(t, "int *p = 0;")
	assert.False(t, diag.HasErrors())
}

func TestAnalyzeBuiltinCallResolves(t *testing.T) {
	diag := check(t, `int main() { __cplus_print_("hi"); return 0; }`)
	assert.False(t, diag.HasErrors())
}
