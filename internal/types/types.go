package types

import (
	"fmt"
	"go/token"
)

// Level is the effective strictness of a lint at a tree position.
// The zero value is LevelAllow.
type Level int

const (
	LevelAllow Level = iota
	LevelWarn
	LevelDeny
	LevelForbid
)

var levelNames = map[string]Level{
	"allow":  LevelAllow,
	"warn":   LevelWarn,
	"deny":   LevelDeny,
	"forbid": LevelForbid,
}

// ParseLevel parses a level name as it appears in directives and manifests.
func ParseLevel(s string) (Level, error) {
	if lvl, ok := levelNames[s]; ok {
		return lvl, nil
	}
	return LevelAllow, fmt.Errorf("unknown lint level %q", s)
}

func (l Level) String() string {
	switch l {
	case LevelAllow:
		return "allow"
	case LevelWarn:
		return "warn"
	case LevelDeny:
		return "deny"
	case LevelForbid:
		return "forbid"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Header returns the diagnostic header keyword for the level.
func (l Level) Header() string {
	if l >= LevelDeny {
		return "error"
	}
	return "warning"
}

// Applicability is the confidence tier of a suggestion, from fully
// automatic to merely illustrative.
type Applicability int

const (
	// MachineApplicable suggestions can be applied without review.
	MachineApplicable Applicability = iota
	// MaybeIncorrect suggestions are plausible but may change semantics.
	MaybeIncorrect
	// HasPlaceholders suggestions contain text the user must fill in.
	HasPlaceholders
	// Unspecified suggestions carry no confidence statement.
	Unspecified
)

func (a Applicability) String() string {
	switch a {
	case MachineApplicable:
		return "machine-applicable"
	case MaybeIncorrect:
		return "maybe-incorrect"
	case HasPlaceholders:
		return "has-placeholders"
	default:
		return "unspecified"
	}
}

// Span is a half-open source region [Start, End) in one file.
type Span struct {
	Filename string
	Start    token.Position
	End      token.Position
}

// NewSpan records the span of [pos, end) resolved against fset.
func NewSpan(fset *token.FileSet, pos, end token.Pos) Span {
	start := fset.Position(pos)
	return Span{
		Filename: start.Filename,
		Start:    start,
		End:      fset.Position(end),
	}
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Start.Line, s.Start.Column)
}

// Overlaps reports whether two spans in the same file share any offset.
func (s Span) Overlaps(other Span) bool {
	if s.Filename != other.Filename {
		return false
	}
	return s.Start.Offset < other.End.Offset && other.Start.Offset < s.End.Offset
}

// TextEdit replaces the text under Span with NewText.
type TextEdit struct {
	Span    Span
	NewText string
}

// Suggestion is a structured fix proposal. All edits are applied together
// or not at all; Applicability covers the whole group.
type Suggestion struct {
	Message       string
	Edits         []TextEdit
	Applicability Applicability
}

// Note is an auxiliary message attached to a diagnostic, optionally
// anchored to its own span.
type Note struct {
	Message string
	Span    *Span
}

// Diagnostic is one finding emitted by a lint rule.
type Diagnostic struct {
	Lint        string
	Category    string
	Severity    Level
	Span        Span
	Message     string
	Notes       []Note
	Helps       []string
	Suggestions []Suggestion
}
