package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/glintlabs/glint/internal/types"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(opts)
	require.NoError(t, err)
	return e
}

func analyzeSrc(t *testing.T, e *Engine, src string) Result {
	t.Helper()
	res := e.RunSource(filepath.Join(t.TempDir(), "main.go"), []byte(src))
	require.NoError(t, res.Err)
	return res
}

func byLint(diags []tt.Diagnostic, lint string) []tt.Diagnostic {
	var out []tt.Diagnostic
	for _, d := range diags {
		if d.Lint == lint {
			out = append(out, d)
		}
	}
	return out
}

const selfAssignSrc = `package main

func f() {
	x := 1
	x = x
	_ = x
}
`

func TestRunSourceCleanFile(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := analyzeSrc(t, e, "package main\n\nfunc main() {}\n")
	assert.Empty(t, res.Diagnostics)
	assert.Empty(t, res.ConfigErrors)
	assert.Equal(t, tt.LevelAllow, res.WorstLevel())
}

func TestParseErrorIsInternal(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.RunSource("broken.go", []byte("package main\n\nfunc {{{\n"))
	require.Error(t, res.Err)
	assert.Empty(t, res.Diagnostics, "partial findings are never surfaced")
}

func TestUnitDirectiveSilencesWholeFile(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := "//glint:allow(self-assignment)\n\n" + selfAssignSrc
	res := analyzeSrc(t, e, src)
	assert.Empty(t, byLint(res.Diagnostics, "self-assignment"))
}

func TestItemDirectiveOverridesUnitDirective(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := `//glint:deny(unnecessary-else)

package main

//glint:allow(unnecessary-else)
func quiet(x int) string {
	if x > 0 {
		return "pos"
	} else {
		return "neg"
	}
}

func loud(x int) string {
	if x > 0 {
		return "pos"
	} else {
		return "neg"
	}
}
`
	res := analyzeSrc(t, e, src)
	got := byLint(res.Diagnostics, "unnecessary-else")
	require.Len(t, got, 1, "only the unannotated function reports")
	assert.Equal(t, tt.LevelDeny, got[0].Severity, "the unit directive raised the level")
	assert.Equal(t, 17, got[0].Span.Start.Line, "the else block of loud")
}

func TestForbidCannotBeLoweredBelowDeny(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := "//glint:forbid(self-assignment)\n\n" + `package main

//glint:allow(self-assignment)
func f() {
	x := 1
	x = x
	_ = x
}
`
	res := analyzeSrc(t, e, src)

	finds := byLint(res.Diagnostics, "self-assignment")
	require.Len(t, finds, 1, "the allow attempt had no effect")
	assert.Equal(t, tt.LevelForbid, finds[0].Severity)

	overrides := byLint(res.Diagnostics, ForbidOverrideLint)
	require.Len(t, overrides, 1)
	assert.Equal(t, tt.LevelDeny, overrides[0].Severity)
	assert.Equal(t, 5, overrides[0].Span.Start.Line, "points at the offending directive")
}

func TestRaisingWithinForbidScopeIsLegal(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := "//glint:forbid(self-assignment)\n\n" + `package main

//glint:deny(self-assignment)
func f() {
	x := 1
	x = x
	_ = x
}
`
	res := analyzeSrc(t, e, src)
	assert.Empty(t, byLint(res.Diagnostics, ForbidOverrideLint))
	finds := byLint(res.Diagnostics, "self-assignment")
	require.Len(t, finds, 1)
	assert.Equal(t, tt.LevelDeny, finds[0].Severity)
}

func TestDiagnosticsSortedBySpanThenRegistration(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := `package main

func f(ok bool) bool {
	x := 1
	x = x
	_ = x
	return ok == true
}
`
	res := analyzeSrc(t, e, src)
	require.GreaterOrEqual(t, len(res.Diagnostics), 2)
	for i := 1; i < len(res.Diagnostics); i++ {
		prev, cur := res.Diagnostics[i-1], res.Diagnostics[i]
		assert.LessOrEqual(t, prev.Span.Start.Offset, cur.Span.Start.Offset)
	}
}

func TestCommandLineLevels(t *testing.T) {
	e := newTestEngine(t, Options{Levels: map[string]tt.Level{"self-assignment": tt.LevelAllow}})
	res := analyzeSrc(t, e, selfAssignSrc)
	assert.Empty(t, byLint(res.Diagnostics, "self-assignment"))

	// Source directives still outrank the command line.
	e = newTestEngine(t, Options{Levels: map[string]tt.Level{"self-assignment": tt.LevelAllow}})
	src := "//glint:deny(self-assignment)\n\n" + selfAssignSrc
	res = analyzeSrc(t, e, src)
	finds := byLint(res.Diagnostics, "self-assignment")
	require.Len(t, finds, 1)
	assert.Equal(t, tt.LevelDeny, finds[0].Severity)
}

func TestGroupDirective(t *testing.T) {
	e := newTestEngine(t, Options{})
	src := "//glint:allow(style)\n\n" + `package main

func f(ok bool) bool {
	return ok == true
}
`
	res := analyzeSrc(t, e, src)
	assert.Empty(t, byLint(res.Diagnostics, "bool-comparison"))
}

func TestConfigErrorsAreRecoverable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/ws\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glint.toml"),
		[]byte("cyclomatic-complexity-threshold = \"lots\"\n"), 0o644))

	e := newTestEngine(t, Options{})
	res := e.RunSource(filepath.Join(dir, "main.go"), []byte(selfAssignSrc))
	require.NoError(t, res.Err)
	assert.Len(t, res.ConfigErrors, 1)
	assert.Len(t, byLint(res.Diagnostics, "self-assignment"), 1, "analysis proceeded with defaults")
}

func TestIgnoredPaths(t *testing.T) {
	e := newTestEngine(t, Options{})
	require.NoError(t, e.IgnorePath("*_gen.go"))

	assert.True(t, e.Ignored("pkg/models_gen.go"))
	assert.False(t, e.Ignored("pkg/models.go"))
	assert.Error(t, e.IgnorePath("[bad"))
}

func TestFixAppliesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	src := `package main

func f(ok bool, x int) bool {
	switch x {
	case 1:
		println(x)
		break
	}
	return ok == true
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	e := newTestEngine(t, Options{})
	n, err := e.Fix(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(fixed), "break")
	assert.NotContains(t, string(fixed), "== true")

	// A second pass finds nothing machine-applicable to change.
	n, err = e.Fix(path)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWorstLevel(t *testing.T) {
	r := Result{Diagnostics: []tt.Diagnostic{
		{Severity: tt.LevelWarn},
		{Severity: tt.LevelDeny},
		{Severity: tt.LevelWarn},
	}}
	assert.Equal(t, tt.LevelDeny, r.WorstLevel())
}

func TestSourceCodeLines(t *testing.T) {
	src := NewSourceCode([]byte("a\nb\nc"))
	assert.Equal(t, []string{"a", "b", "c"}, src.Lines)

	src = NewSourceCode([]byte("a\n"))
	assert.Equal(t, []string{"a", ""}, src.Lines)
}
