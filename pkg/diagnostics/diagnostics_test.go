package diagnostics

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrlcore/vrlcore/pkg/compstate"
)

func TestFromCompileError_AttachesSourceSnippet(t *testing.T) {
	source := "x = 1\ny = ,\nz = 3"
	err := &compstate.CompileError{Message: "unexpected token", Line: 2, Column: 5}

	d := FromCompileError(err, source, "prog.vrl")
	assert.Equal(t, "unexpected token", d.Message)
	assert.Equal(t, "y = ,", d.SourceSnippet)
	assert.Equal(t, "prog.vrl", d.FileName)
}

func TestFromCompileError_NoLineMeansNoSnippet(t *testing.T) {
	err := &compstate.CompileError{Message: "unresolved reference"}
	d := FromCompileError(err, "x = 1", "prog.vrl")
	assert.Empty(t, d.SourceSnippet)
}

func TestDiagnostic_FormatWithoutColor(t *testing.T) {
	d := &Diagnostic{
		Message:       "unknown function upcse",
		Line:          3,
		Column:        5,
		SourceSnippet: `y = upcse(.x)`,
		Suggestion:    "did you mean upcase?",
		FileName:      "prog.vrl",
	}

	out := d.Format(false)
	assert.Contains(t, out, "compile error in prog.vrl at line 3, column 5")
	assert.Contains(t, out, "y = upcse(.x)")
	assert.Contains(t, out, "unknown function upcse")
	assert.Contains(t, out, "suggestion: did you mean upcase?")
	assert.Contains(t, out, "^")
}

func TestFormatAll_RendersEachErrorWithBlankLineBetween(t *testing.T) {
	errs := []*compstate.CompileError{
		{Message: "first error", Line: 1, Column: 1},
		{Message: "second error", Line: 2, Column: 1},
	}
	out := FormatAll(errs, "a\nb", "prog.vrl", false)
	require.Contains(t, out, "first error")
	require.Contains(t, out, "second error")
	assert.Contains(t, out, "first error\n\ncompile error in prog.vrl at line 2")
}

func TestDumpWriter_DisabledWithoutDir(t *testing.T) {
	w := NewDumpWriter("")
	assert.False(t, w.Enabled())
	assert.NoError(t, w.WriteIR("prog", "unoptimized", "define void @main() {}"))
}

func TestDumpWriter_WritesUnoptimizedAndOptimizedFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewDumpWriter(dir)
	require.True(t, w.Enabled())

	require.NoError(t, w.WriteIR("prog", "unoptimized", "ir-before"))
	require.NoError(t, w.WriteIR("prog", "optimized", "ir-after"))

	unopt, err := os.ReadFile(dir + "/prog.vrl.ll")
	require.NoError(t, err)
	assert.Equal(t, "ir-before", string(unopt))

	opt, err := os.ReadFile(dir + "/prog.vrl.opt.ll")
	require.NoError(t, err)
	assert.Equal(t, "ir-after", string(opt))
}

func TestSuggestFunctionName_FindsCloseMatch(t *testing.T) {
	registered := []string{"upcase", "downcase", "length", "parse_json"}
	got := SuggestFunctionName("upcse", registered)
	require.NotEmpty(t, got)
	assert.Equal(t, "upcase", got[0])
}

func TestSuggestFunctionName_ExcludesExactMatch(t *testing.T) {
	registered := []string{"upcase", "downcase"}
	got := SuggestFunctionName("upcase", registered)
	assert.NotContains(t, got, "upcase")
}

func TestSuggestFunctionName_NothingCloseReturnsEmpty(t *testing.T) {
	registered := []string{"upcase", "downcase", "length"}
	got := SuggestFunctionName("completely_unrelated_name", registered)
	assert.Empty(t, got)
}

func TestSuggestFunctionName_CapsAtThreeResults(t *testing.T) {
	registered := []string{"parse_a", "parse_b", "parse_c", "parse_d"}
	got := SuggestFunctionName("parse_x", registered)
	assert.LessOrEqual(t, len(got), 3)
}
