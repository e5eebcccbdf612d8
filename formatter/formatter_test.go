package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/glintlabs/glint/internal"
	tt "github.com/glintlabs/glint/internal/types"
)

func init() {
	color.NoColor = true
}

func pos(line, column, offset int) token.Position {
	return token.Position{Filename: "main.go", Line: line, Column: column, Offset: offset}
}

func TestFormatWarningWithInlineFix(t *testing.T) {
	src := internal.NewSourceCode([]byte("package main\nx == true"))
	span := tt.Span{
		Filename: "main.go",
		Start:    pos(2, 1, 13),
		End:      pos(2, 10, 22),
	}
	d := tt.Diagnostic{
		Lint:     "bool-comparison",
		Severity: tt.LevelWarn,
		Span:     span,
		Message:  "comparison with `true` can be simplified",
		Suggestions: []tt.Suggestion{{
			Message:       "use `x`",
			Edits:         []tt.TextEdit{{Span: span, NewText: "x"}},
			Applicability: tt.MachineApplicable,
		}},
	}

	want := "warning: comparison with `true` can be simplified\n" +
		" --> main.go:2:1\n" +
		"  |\n" +
		"2 | x == true\n" +
		"  | ^^^^^^^^^\n" +
		"  |\n" +
		"help: try: `x`\n" +
		"\n"
	assert.Equal(t, want, Format([]tt.Diagnostic{d}, src))
}

func TestFormatErrorHeaderAndNotes(t *testing.T) {
	src := internal.NewSourceCode([]byte("package main\nx = x"))
	span := tt.Span{
		Filename: "main.go",
		Start:    pos(2, 1, 13),
		End:      pos(2, 6, 18),
	}
	noteSpan := tt.Span{Filename: "main.go", Start: pos(1, 1, 0), End: pos(1, 8, 7)}
	d := tt.Diagnostic{
		Lint:     "self-assignment",
		Severity: tt.LevelDeny,
		Span:     span,
		Message:  "`x` is assigned to itself",
		Notes: []tt.Note{
			{Message: "this has no effect"},
			{Message: "declared here", Span: &noteSpan},
		},
		Helps: []string{"drop the statement"},
	}

	want := "error: `x` is assigned to itself\n" +
		" --> main.go:2:1\n" +
		"  |\n" +
		"2 | x = x\n" +
		"  | ^^^^^\n" +
		"  |\n" +
		"  = note: this has no effect\n" +
		"  = note: declared here (main.go:1:1)\n" +
		"  = help: drop the statement\n" +
		"\n"
	assert.Equal(t, want, Format([]tt.Diagnostic{d}, src))
}

func TestFormatMultiLineSuggestionAsDiff(t *testing.T) {
	src := internal.NewSourceCode([]byte("package main\nold line"))
	span := tt.Span{
		Filename: "main.go",
		Start:    pos(2, 1, 13),
		End:      pos(2, 9, 21),
	}
	d := tt.Diagnostic{
		Lint:     "some-lint",
		Severity: tt.LevelWarn,
		Span:     span,
		Message:  "rewrite this",
		Suggestions: []tt.Suggestion{{
			Message:       "split it up",
			Edits:         []tt.TextEdit{{Span: span, NewText: "first()\nsecond()"}},
			Applicability: tt.MaybeIncorrect,
		}},
	}

	got := Format([]tt.Diagnostic{d}, src)
	assert.Contains(t, got, "help: split it up:\n")
	assert.Contains(t, got, "- old line\n")
	assert.Contains(t, got, "+ first()\n")
	assert.Contains(t, got, "+ second()\n")
}

func TestUnderlineExpandsTabs(t *testing.T) {
	src := internal.NewSourceCode([]byte("package main\n\tx == true"))
	span := tt.Span{
		Filename: "main.go",
		Start:    pos(2, 2, 14),
		End:      pos(2, 11, 23),
	}
	d := tt.Diagnostic{
		Lint:     "bool-comparison",
		Severity: tt.LevelWarn,
		Span:     span,
		Message:  "m",
	}

	got := Format([]tt.Diagnostic{d}, src)
	// The tab occupies eight visual columns, so the carets start at column 9.
	assert.Contains(t, got, "  | "+"        "+"^^^^^^^^^\n")
}

func TestCountErrors(t *testing.T) {
	diags := []tt.Diagnostic{
		{Severity: tt.LevelWarn},
		{Severity: tt.LevelDeny},
		{Severity: tt.LevelForbid},
	}
	assert.Equal(t, 2, CountErrors(diags))
	assert.Zero(t, CountErrors(nil))
}

func TestSummary(t *testing.T) {
	assert.Empty(t, Summary(0))
	assert.Equal(t, "error: aborting due to 1 previous error\n", Summary(1))
	assert.Equal(t, "error: aborting due to 3 previous errors\n", Summary(3))
}
