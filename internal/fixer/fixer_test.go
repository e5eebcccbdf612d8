package fixer

import (
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/glintlabs/glint/internal/types"
)

func span(file string, start, end int) tt.Span {
	return tt.Span{
		Filename: file,
		Start:    token.Position{Filename: file, Offset: start, Line: 1, Column: start + 1},
		End:      token.Position{Filename: file, Offset: end, Line: 1, Column: end + 1},
	}
}

func diagWithFix(lint string, s tt.Span, newText string, app tt.Applicability) tt.Diagnostic {
	return tt.Diagnostic{
		Lint:     lint,
		Severity: tt.LevelWarn,
		Span:     s,
		Suggestions: []tt.Suggestion{{
			Message:       "fix",
			Edits:         []tt.TextEdit{{Span: s, NewText: newText}},
			Applicability: app,
		}},
	}
}

func TestCollectFiltersByApplicability(t *testing.T) {
	diags := []tt.Diagnostic{
		diagWithFix("a", span("f.go", 10, 12), "x", tt.MachineApplicable),
		diagWithFix("b", span("f.go", 0, 2), "y", tt.MaybeIncorrect),
		diagWithFix("c", span("f.go", 5, 7), "z", tt.MachineApplicable),
	}

	f := New()
	edits := f.Collect(diags)
	require.Len(t, edits, 2, "only machine-applicable edits are collected")
	assert.Equal(t, 5, edits[0].Span.Start.Offset, "sorted by start offset")
	assert.Equal(t, 10, edits[1].Span.Start.Offset)

	f.MaxApplicability = tt.MaybeIncorrect
	assert.Len(t, f.Collect(diags), 3, "raising the tier admits more edits")
}

func TestApplyRewritesSource(t *testing.T) {
	//                       0         1         2         3
	//                       0123456789012345678901234567890123456789
	src := []byte("package p\n\nvar v = x == true\n")
	start := strings.Index(string(src), "x == true")
	d := diagWithFix("bool-comparison", span("f.go", start, start+len("x == true")), "x", tt.MachineApplicable)

	f := New()
	fixed, err := f.Apply("f.go", src, []tt.Diagnostic{d})
	require.NoError(t, err)
	assert.Equal(t, "package p\n\nvar v = x\n", string(fixed))
	assert.Equal(t, "package p\n\nvar v = x == true\n", string(src), "input is never mutated")
}

func TestApplyNoEditsReturnsNil(t *testing.T) {
	f := New()
	fixed, err := f.Apply("f.go", []byte("package p\n"), nil)
	require.NoError(t, err)
	assert.Nil(t, fixed)
}

func TestApplyRejectsOverlap(t *testing.T) {
	src := []byte("package p\n\nvar v = a + b\n")
	d1 := diagWithFix("one", span("f.go", 12, 21), "x", tt.MachineApplicable)
	d2 := diagWithFix("two", span("f.go", 16, 25), "y", tt.MachineApplicable)

	f := New()
	_, err := f.Apply("f.go", src, []tt.Diagnostic{d1, d2})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "f.go", conflict.Filename)
	assert.Equal(t, 12, conflict.First.Start.Offset)
	assert.Equal(t, 16, conflict.Second.Start.Offset)
}

func TestTouchingEditsDoNotConflict(t *testing.T) {
	src := []byte("package p\n\nvar v = ab\n")
	i := strings.Index(string(src), "ab")
	d1 := diagWithFix("one", span("f.go", i, i+1), "x", tt.MachineApplicable)
	d2 := diagWithFix("two", span("f.go", i+1, i+2), "y", tt.MachineApplicable)

	f := New()
	fixed, err := f.Apply("f.go", src, []tt.Diagnostic{d1, d2})
	require.NoError(t, err)
	assert.Equal(t, "package p\n\nvar v = xy\n", string(fixed))
}

func TestApplyRejectsBrokenOutput(t *testing.T) {
	src := []byte("package p\n\nvar v = 1\n")
	i := strings.Index(string(src), "var")
	d := diagWithFix("bad", span("f.go", i, i+3), "}{", tt.MachineApplicable)

	f := New()
	_, err := f.Apply("f.go", src, []tt.Diagnostic{d})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer parses")
}

func TestPreview(t *testing.T) {
	src := []byte("package p\n\nvar v = x == true\n")
	i := strings.Index(string(src), "x == true")
	edits := []tt.TextEdit{{Span: span("f.go", i, i+len("x == true")), NewText: "x"}}

	got := Preview(src, edits)
	assert.Equal(t, "- x == true\n+ x\n", got)
}

func TestPreviewDeletion(t *testing.T) {
	src := []byte("break\n")
	edits := []tt.TextEdit{{Span: span("f.go", 0, 5), NewText: ""}}

	got := Preview(src, edits)
	assert.Equal(t, "- break\n", got, "deletions render no + line")
}

func TestVerifyAcceptsIdempotentFix(t *testing.T) {
	src := []byte("package p\n\nvar v = x == true\n")
	i := strings.Index(string(src), "x == true")
	d := diagWithFix("bool-comparison", span("f.go", i, i+len("x == true")), "x", tt.MachineApplicable)

	analyze := func(filename string, fixed []byte) ([]tt.Diagnostic, error) {
		return nil, nil
	}

	f := New()
	assert.NoError(t, f.Verify("f.go", src, []tt.Diagnostic{d}, analyze))
}

func TestVerifyRejectsRegression(t *testing.T) {
	src := []byte("package p\n\nvar v = x == true\n")
	i := strings.Index(string(src), "x == true")
	d := diagWithFix("bool-comparison", span("f.go", i, i+len("x == true")), "y == true", tt.MachineApplicable)

	// The same lint fires again inside the rewritten region.
	analyze := func(filename string, fixed []byte) ([]tt.Diagnostic, error) {
		j := strings.Index(string(fixed), "y == true")
		require.GreaterOrEqual(t, j, 0)
		return []tt.Diagnostic{{
			Lint: "bool-comparison",
			Span: span("f.go", j, j+len("y == true")),
		}}, nil
	}

	f := New()
	err := f.Verify("f.go", src, []tt.Diagnostic{d}, analyze)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fired again")
}

func TestVerifyIgnoresFindingsOutsideRewrittenRegions(t *testing.T) {
	src := []byte("package p\n\nvar v = x == true\n")
	i := strings.Index(string(src), "x == true")
	d := diagWithFix("bool-comparison", span("f.go", i, i+len("x == true")), "x", tt.MachineApplicable)

	analyze := func(filename string, fixed []byte) ([]tt.Diagnostic, error) {
		return []tt.Diagnostic{
			{Lint: "other-lint", Span: span("f.go", i, i+1)},
			{Lint: "bool-comparison", Span: span("f.go", 0, 7)},
		}, nil
	}

	f := New()
	assert.NoError(t, f.Verify("f.go", src, []tt.Diagnostic{d}, analyze))
}
