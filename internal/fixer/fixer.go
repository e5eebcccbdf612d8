package fixer

import (
	"fmt"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	tt "github.com/glintlabs/glint/internal/types"
)

// ConflictError reports overlapping machine-applicable edits for one file.
// Applying them would produce undefined text, so the whole file's auto-fix
// is refused; analysis of other files continues.
type ConflictError struct {
	Filename string
	First    tt.Span
	Second   tt.Span
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"%s: conflicting machine-applicable suggestions at %d:%d and %d:%d",
		e.Filename,
		e.First.Start.Line, e.First.Start.Column,
		e.Second.Start.Line, e.Second.Start.Column,
	)
}

// Fixer applies machine-applicable suggestions to an immutable copy of the
// source text.
type Fixer struct {
	// MaxApplicability is the least confident tier still applied;
	// the default applies MachineApplicable only.
	MaxApplicability tt.Applicability
}

func New() *Fixer {
	return &Fixer{MaxApplicability: tt.MachineApplicable}
}

// Collect flattens the applicable suggestions of all diagnostics for one
// file into a single edit list sorted by start offset.
func (f *Fixer) Collect(diags []tt.Diagnostic) []tt.TextEdit {
	var edits []tt.TextEdit
	for _, d := range diags {
		for _, sugg := range d.Suggestions {
			if sugg.Applicability > f.MaxApplicability {
				continue
			}
			edits = append(edits, sugg.Edits...)
		}
	}
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Span.Start.Offset < edits[j].Span.Start.Offset
	})
	return edits
}

// Apply validates non-overlap and applies the edits to a copy of src,
// returning the fixed text. The original bytes are never modified.
func (f *Fixer) Apply(filename string, src []byte, diags []tt.Diagnostic) ([]byte, error) {
	edits := f.Collect(diags)
	if len(edits) == 0 {
		return nil, nil
	}

	for i := 1; i < len(edits); i++ {
		prev, cur := edits[i-1], edits[i]
		if prev.Span.End.Offset > cur.Span.Start.Offset {
			return nil, &ConflictError{
				Filename: filename,
				First:    prev.Span,
				Second:   cur.Span,
			}
		}
	}

	fixed := append([]byte(nil), src...)
	// Back-to-front so earlier offsets stay valid.
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		var buf []byte
		buf = append(buf, fixed[:e.Span.Start.Offset]...)
		buf = append(buf, e.NewText...)
		buf = append(buf, fixed[e.Span.End.Offset:]...)
		fixed = buf
	}

	// The fixed text must still parse; a rule producing broken output is
	// an internal error, not a user problem.
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, filename, fixed, parser.ParseComments); err != nil {
		return nil, fmt.Errorf("fixed source no longer parses: %w", err)
	}
	return fixed, nil
}

// Preview renders an edit list as a unified-diff style block for dry runs.
func Preview(src []byte, edits []tt.TextEdit) string {
	var b strings.Builder
	for _, e := range edits {
		old := string(src[e.Span.Start.Offset:e.Span.End.Offset])
		for _, line := range strings.Split(old, "\n") {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		if e.NewText != "" {
			for _, line := range strings.Split(e.NewText, "\n") {
				fmt.Fprintf(&b, "+ %s\n", line)
			}
		}
	}
	return b.String()
}
