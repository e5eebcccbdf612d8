package diag

import (
	tt "github.com/glintlabs/glint/internal/types"
)

// LevelFunc reports the effective level of a lint at the current walk
// position. The dispatcher supplies its level resolver here.
type LevelFunc func(lint string) tt.Level

// CategoryFunc resolves a lint id to its category for rendering.
type CategoryFunc func(lint string) string

// Sink collects the diagnostics of one file's analysis. It is exclusively
// owned by the current walk; no locking.
type Sink struct {
	size     int
	levels   LevelFunc
	category CategoryFunc
	diags    []tt.Diagnostic
	dropped  int
}

// NewSink builds a sink for a file of the given byte size. Suggestions with
// spans outside [0, size) are rejected at emission time.
func NewSink(size int, levels LevelFunc, category CategoryFunc) *Sink {
	return &Sink{size: size, levels: levels, category: category}
}

// Option augments a diagnostic under construction.
type Option func(*tt.Diagnostic)

// WithNote attaches an auxiliary message, optionally anchored to a span.
func WithNote(message string, span *tt.Span) Option {
	return func(d *tt.Diagnostic) {
		d.Notes = append(d.Notes, tt.Note{Message: message, Span: span})
	}
}

// WithHelp attaches a free-form help line.
func WithHelp(message string) Option {
	return func(d *tt.Diagnostic) {
		d.Helps = append(d.Helps, message)
	}
}

// WithSuggestion attaches a single-edit fix proposal.
func WithSuggestion(message string, span tt.Span, newText string, app tt.Applicability) Option {
	return WithMultiSuggestion(message, app, tt.TextEdit{Span: span, NewText: newText})
}

// WithMultiSuggestion attaches a fix proposal whose edits are applied
// atomically; the applicability tier covers the whole group.
func WithMultiSuggestion(message string, app tt.Applicability, edits ...tt.TextEdit) Option {
	return func(d *tt.Diagnostic) {
		d.Suggestions = append(d.Suggestions, tt.Suggestion{
			Message:       message,
			Edits:         edits,
			Applicability: app,
		})
	}
}

// Emit records a finding. It is a silent no-op when the lint is Allow at
// the current position, which lets rule code stay unconditional. Malformed
// suggestion spans are dropped from the diagnostic, never fatal.
func (s *Sink) Emit(lint string, span tt.Span, message string, opts ...Option) {
	lvl := s.levels(lint)
	if lvl == tt.LevelAllow {
		s.dropped++
		return
	}

	d := tt.Diagnostic{
		Lint:     lint,
		Severity: lvl,
		Span:     span,
		Message:  message,
	}
	if s.category != nil {
		d.Category = s.category(lint)
	}
	for _, opt := range opts {
		opt(&d)
	}
	d.Suggestions = s.validSuggestions(span.Filename, d.Suggestions)
	s.diags = append(s.diags, d)
}

// validSuggestions filters out suggestions with ill-formed spans: outside
// the current file, negative length, or inverted offsets. Overlap between
// different diagnostics is permitted here; the fix engine polices it.
func (s *Sink) validSuggestions(filename string, suggs []tt.Suggestion) []tt.Suggestion {
	kept := suggs[:0]
	for _, sugg := range suggs {
		ok := len(sugg.Edits) > 0
		for _, edit := range sugg.Edits {
			if edit.Span.Filename != filename ||
				edit.Span.Start.Offset < 0 ||
				edit.Span.End.Offset < edit.Span.Start.Offset ||
				edit.Span.End.Offset > s.size {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, sugg)
		}
	}
	return kept
}

// Diagnostics returns everything emitted so far, in emission order.
func (s *Sink) Diagnostics() []tt.Diagnostic {
	return s.diags
}

// Dropped returns how many emissions were no-ops due to Allow.
func (s *Sink) Dropped() int {
	return s.dropped
}
