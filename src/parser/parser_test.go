package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cplusc/src/ast"
	"cplusc/src/util"
)

func parse(t *testing.T, src string) (*ast.Program, *util.Engine) {
	t.Helper()
	diag := util.NewEngine()
	prog := Parse("test.cp", src, diag)
	return prog, diag
}

func TestParseMinimalMain(t *testing.T) {
	prog, diag := parse(t, "int main() { return 0; }")
	require.False(t, diag.HasErrors())
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, ast.Int, fn.ReturnType)
	require.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	num, ok := ret.Expr.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, "0", num.Text)
}

func TestParseGlobalVariable(t *testing.T) {
	prog, diag := parse(t, "const int LIMIT = 10;")
	require.False(t, diag.HasErrors())
	require.Len(t, prog.Globals, 1)

	g := prog.Globals[0]
	assert.Equal(t, "LIMIT", g.Name)
	assert.True(t, g.IsConst)
	require.NotNil(t, g.Init)
}

func TestParsePointerAndArrayDeclarations(t *testing.T) {
	prog, diag := parse(t, "int *p; int[10] *arr;")
	require.False(t, diag.HasErrors())
	require.Len(t, prog.Globals, 2)
	assert.Equal(t, 1, prog.Globals[0].PointerLevel)
	assert.Equal(t, 10, prog.Globals[1].ArraySize)
	assert.Equal(t, 1, prog.Globals[1].PointerLevel)
}

func TestParseForLoopSummingOneToTen(t *testing.T) {
	src := `
int main() {
	int sum = 0;
	int i = 0;
	for (i = 1; i <= 10; i = i + 1) {
		sum = sum + i;
	}
	return sum;
}`
	prog, diag := parse(t, src)
	require.False(t, diag.HasErrors())
	require.Len(t, prog.Functions, 1)

	body := prog.Functions[0].Body.Stmts
	require.Len(t, body, 3)

	forStmt, ok := body[2].(*ast.For)
	require.True(t, ok)
	assert.NotNil(t, forStmt.Init)
	assert.NotNil(t, forStmt.Cond)
	assert.NotNil(t, forStmt.Incr)
}

func TestParseFactorialRecursion(t *testing.T) {
	src := `
int factorial(int n) {
	if (n <= 1) {
		return 1;
	}
	return n * factorial(n - 1);
}`
	prog, diag := parse(t, src)
	require.False(t, diag.HasErrors())
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0].Name)

	ifStmt, ok := fn.Body.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)

	ret, ok := fn.Body.Stmts[1].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, bin.Op)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3).
	prog, diag := parse(t, "int main() { return 1 + 2 * 3; }")
	require.False(t, diag.HasErrors())
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	add, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Add, add.Op)
	mul, ok := add.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, mul.Op)
}

func TestParseLogicalAndComparisonPrecedence(t *testing.T) {
	prog, diag := parse(t, "int main() { return a < b && c == d; }")
	require.False(t, diag.HasErrors())
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	and, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.And, and.Op)
	assert.Equal(t, ast.Lt, and.Left.(*ast.Binary).Op)
	assert.Equal(t, ast.Eq, and.Right.(*ast.Binary).Op)
}

func TestParseUnaryAndPostfix(t *testing.T) {
	prog, diag := parse(t, "int main() { return *arr[0] + &x - !y; }")
	require.False(t, diag.HasErrors())
	ret := prog.Functions[0].Body.Stmts[0].(*ast.Return)
	sub, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, sub.Op)
}

func TestParseBreakOutsideLoopStillParses(t *testing.T) {
	// The parser accepts break/continue anywhere; scope validity is a sema concern.
	prog, diag := parse(t, "int main() { break; return 0; }")
	require.False(t, diag.HasErrors())
	_, ok := prog.Functions[0].Body.Stmts[0].(*ast.Break)
	assert.True(t, ok)
}

func TestParseInlineAsm(t *testing.T) {
	src := `int main() {
	int x = 1;
	int y = 0;
	asm("mov $1, $0" : "=r"(y) : "r"(x) : "cc");
	return y;
}`
	prog, diag := parse(t, src)
	require.False(t, diag.HasErrors())
	asmStmt, ok := prog.Functions[0].Body.Stmts[2].(*ast.Asm)
	require.True(t, ok)
	assert.Equal(t, "mov $1, $0", asmStmt.Code)
	require.Len(t, asmStmt.Outputs, 1)
	require.Len(t, asmStmt.Inputs, 1)
	assert.Equal(t, []string{"cc"}, asmStmt.Clobbers)
}

func TestParseMalformedTopLevelRecovers(t *testing.T) {
	prog, diag := parse(t, "int 123abc; int ok() { return 0; }")
	assert.True(t, diag.HasErrors())
	// Recovery should still let the following well-formed function parse.
	found := false
	for _, fn := range prog.Functions {
		if fn.Name == "ok" {
			found = true
		}
	}
	assert.True(t, found)
}
