package preprocessor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cplusc/src/util"
)

func TestObjectLikeMacro(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	out := p.process("t.cp", ".", "#define MAX 100\nint x = MAX;")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, "\nint x = 100;", out)
}

func TestFunctionLikeMacroDoubleExpansion(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	out := p.process("t.cp", ".", "#define SQ(x) ((x)*(x))\nint main() { return SQ(3+1); }")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, "\nint main() { return ((3+1)*(3+1)); }", out)
}

func TestFunctionLikeMacroArityMismatch(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	p.process("t.cp", ".", "#define ADD(a, b) ((a)+(b))\nint x = ADD(1);")
	assert.True(t, diag.HasErrors())
}

func TestUndef(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	out := p.process("t.cp", ".", "#define FOO 1\n#undef FOO\nint x = FOO;")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, "\n\nint x = FOO;", out)
}

func TestUndefOfUnknownNameIsSilent(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	p.process("t.cp", ".", "#undef NEVER_DEFINED\n")
	assert.False(t, diag.HasErrors())
}

func TestRedefinitionWithDifferentTextReportsNote(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	out := p.process("t.cp", ".", "#define MAX 100\n#define MAX 200\nint x = MAX;")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, "\n\nint x = 200;", out)
	var sawNote bool
	for _, d := range diag.Diagnostics() {
		if d.Level == util.Note {
			sawNote = true
		}
	}
	assert.True(t, sawNote, "expected a 'redefined' note")
}

func TestRedefinitionWithIdenticalTextIsSilent(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	p.process("t.cp", ".", "#define MAX 100\n#define MAX 100\nint x = MAX;")
	assert.False(t, diag.HasErrors())
	for _, d := range diag.Diagnostics() {
		assert.NotEqual(t, util.Note, d.Level)
	}
}

func TestSelfReferencingMacroDoesNotLoop(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	out := p.process("t.cp", ".", "#define X X\nint y = X;")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, "\nint y = X;", out)
}

func TestIncludeQuoted(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "defs.cph")
	require.NoError(t, os.WriteFile(header, []byte("#define ONE 1"), 0o644))

	main := filepath.Join(dir, "main.cp")
	require.NoError(t, os.WriteFile(main, []byte("#include \"defs.cph\"\nint x = ONE;"), 0o644))

	diag := util.NewEngine()
	p := New(diag)
	out, err := p.ProcessFile(main)
	require.NoError(t, err)
	assert.False(t, diag.HasErrors())
	assert.Contains(t, out, "int x = 1;")
}

func TestIncludeCircularIsReported(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.cph")
	b := filepath.Join(dir, "b.cph")
	require.NoError(t, os.WriteFile(a, []byte("#include \"b.cph\"\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("#include \"a.cph\"\n"), 0o644))

	diag := util.NewEngine()
	p := New(diag)
	_, err := p.ProcessFile(a)
	require.NoError(t, err)
	assert.True(t, diag.HasErrors())
}

func TestIncludeSystemFormIsSilentlyEmpty(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	out := p.process("t.cp", ".", "#include <stdio.h>\nint x;")
	assert.False(t, diag.HasErrors())
	assert.Equal(t, "\nint x;", out)
}

func TestIncludeMissingFileIsReported(t *testing.T) {
	diag := util.NewEngine()
	p := New(diag)
	p.process("t.cp", ".", "#include \"nope.cph\"\n")
	assert.True(t, diag.HasErrors())
}
