package fixer

import (
	"fmt"

	tt "github.com/glintlabs/glint/internal/types"
)

// Analyze re-runs the engine over source text. Supplied by the caller to
// keep the fixer free of engine dependencies.
type Analyze func(filename string, src []byte) ([]tt.Diagnostic, error)

// editRegion is where an applied edit landed in the fixed text.
type editRegion struct {
	lint  string
	start int
	end   int
}

// Verify applies the machine-applicable suggestions and re-analyzes the
// result. It returns an error when a lint fires again inside the region its
// own fix rewrote: a regression against the idempotence property.
func (f *Fixer) Verify(filename string, src []byte, diags []tt.Diagnostic, analyze Analyze) error {
	fixed, err := f.Apply(filename, src, diags)
	if err != nil {
		return err
	}
	if fixed == nil {
		return nil
	}

	regions := f.appliedRegions(diags)

	again, err := analyze(filename, fixed)
	if err != nil {
		return fmt.Errorf("re-analyzing fixed source: %w", err)
	}
	for _, d := range again {
		for _, r := range regions {
			if d.Lint != r.lint {
				continue
			}
			if d.Span.Start.Offset < r.end && r.start < d.Span.End.Offset {
				return fmt.Errorf(
					"lint %q fired again at %s after applying its own suggestion",
					d.Lint, d.Span,
				)
			}
		}
	}
	return nil
}

// appliedRegions maps each applied edit to its offsets in the fixed text,
// tagged with the lint the suggestion belongs to.
func (f *Fixer) appliedRegions(diags []tt.Diagnostic) []editRegion {
	type taggedEdit struct {
		lint string
		edit tt.TextEdit
	}
	var tagged []taggedEdit
	for _, d := range diags {
		for _, sugg := range d.Suggestions {
			if sugg.Applicability > f.MaxApplicability {
				continue
			}
			for _, e := range sugg.Edits {
				tagged = append(tagged, taggedEdit{lint: d.Lint, edit: e})
			}
		}
	}
	// Same order Apply sorts into, so deltas accumulate identically.
	for i := 1; i < len(tagged); i++ {
		for j := i; j > 0 && tagged[j].edit.Span.Start.Offset < tagged[j-1].edit.Span.Start.Offset; j-- {
			tagged[j], tagged[j-1] = tagged[j-1], tagged[j]
		}
	}

	var regions []editRegion
	delta := 0
	for _, t := range tagged {
		start := t.edit.Span.Start.Offset + delta
		end := start + len(t.edit.NewText)
		regions = append(regions, editRegion{lint: t.lint, start: start, end: end})
		delta += len(t.edit.NewText) - (t.edit.Span.End.Offset - t.edit.Span.Start.Offset)
	}
	return regions
}
