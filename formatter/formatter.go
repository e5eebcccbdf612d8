package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/glintlabs/glint/internal"
	tt "github.com/glintlabs/glint/internal/types"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	helpStyle    = color.New(color.FgGreen, color.Bold)
)

const issueTemplate = `{{header .Severity .Message -}}
{{location .Padding .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .Padding -}}
{{underline .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines -}}
{{notes .Notes .Padding -}}
{{helps .Helps .Padding -}}
{{suggestions .Suggestions .SnippetLines}}`

// issueData feeds one diagnostic into the template.
type issueData struct {
	Severity        tt.Level
	Message         string
	Filename        string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Padding         string
	SnippetLines    []string
	Notes           []tt.Note
	Helps           []string
	Suggestions     []tt.Suggestion
}

// Format renders diagnostics for one file in emission order. The run-wide
// summary line is rendered separately by Summary.
func Format(diags []tt.Diagnostic, src *internal.SourceCode) string {
	var b strings.Builder
	for _, d := range diags {
		b.WriteString(formatOne(d, src))
		b.WriteString("\n")
	}
	return b.String()
}

// CountErrors returns how many findings are deny level or above.
func CountErrors(diags []tt.Diagnostic) int {
	errors := 0
	for _, d := range diags {
		if d.Severity >= tt.LevelDeny {
			errors++
		}
	}
	return errors
}

// Summary renders the trailing count line; empty when no errors occurred.
func Summary(errors int) string {
	switch errors {
	case 0:
		return ""
	case 1:
		return errorStyle.Sprint("error") + ": aborting due to 1 previous error\n"
	default:
		return errorStyle.Sprint("error") + fmt.Sprintf(": aborting due to %d previous errors\n", errors)
	}
}

func formatOne(d tt.Diagnostic, src *internal.SourceCode) string {
	maxLineNumWidth := len(fmt.Sprintf("%d", d.Span.End.Line))
	data := issueData{
		Severity:        d.Severity,
		Message:         d.Message,
		Filename:        d.Span.Filename,
		StartLine:       d.Span.Start.Line,
		StartColumn:     d.Span.Start.Column,
		EndLine:         d.Span.End.Line,
		EndColumn:       d.Span.End.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		SnippetLines:    src.Lines,
		Notes:           d.Notes,
		Helps:           d.Helps,
		Suggestions:     d.Suggestions,
	}

	funcMap := template.FuncMap{
		"header":      header,
		"location":    location,
		"snippet":     snippet,
		"underline":   underline,
		"notes":       notes,
		"helps":       helps,
		"suggestions": suggestions,
	}
	tmpl := template.Must(template.New("issue").Funcs(funcMap).Parse(issueTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("error formatting diagnostic: %v\n", err)
	}
	return buf.String()
}

func header(severity tt.Level, message string) string {
	style := warningStyle
	if severity >= tt.LevelDeny {
		style = errorStyle
	}
	return style.Sprint(severity.Header()) + messageStyle.Sprintf(": %s\n", message)
}

func location(padding, filename string, line, column int) string {
	return lineStyle.Sprintf("%s--> ", padding[:len(padding)-1]) +
		fileStyle.Sprintf("%s:%d:%d\n", filename, line, column)
}

func snippet(lines []string, startLine, endLine, maxLineNumWidth int, padding string) string {
	var b strings.Builder
	b.WriteString(lineStyle.Sprintf("%s|\n", padding))
	for i := startLine; i <= endLine && i-1 < len(lines); i++ {
		if i < 1 {
			continue
		}
		b.WriteString(lineStyle.Sprintf("%*d | ", maxLineNumWidth, i))
		b.WriteString(lines[i-1])
		b.WriteString("\n")
	}
	return b.String()
}

// underline draws the caret line under the first source line of the span.
func underline(padding string, startLine, endLine, startColumn, endColumn int, lines []string) string {
	if startLine < 1 || startLine > len(lines) {
		return lineStyle.Sprintf("%s|\n", padding)
	}
	line := lines[startLine-1]

	start := visualColumn(line, startColumn)
	var width int
	if endLine == startLine {
		width = visualColumn(line, endColumn) - start
	} else {
		width = visualWidth(line) - start
	}
	if width < 1 {
		width = 1
	}

	return lineStyle.Sprintf("%s| ", padding) +
		strings.Repeat(" ", start) +
		messageStyle.Sprint(strings.Repeat("^", width)) + "\n" +
		lineStyle.Sprintf("%s|\n", padding)
}

func notes(items []tt.Note, padding string) string {
	var b strings.Builder
	for _, n := range items {
		b.WriteString(lineStyle.Sprintf("%s= ", padding))
		b.WriteString(helpStyle.Sprint("note"))
		b.WriteString(fmt.Sprintf(": %s", n.Message))
		if n.Span != nil {
			b.WriteString(fmt.Sprintf(" (%s)", n.Span))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func helps(items []string, padding string) string {
	var b strings.Builder
	for _, h := range items {
		b.WriteString(lineStyle.Sprintf("%s= ", padding))
		b.WriteString(helpStyle.Sprint("help"))
		b.WriteString(fmt.Sprintf(": %s\n", h))
	}
	return b.String()
}

// suggestions renders fix proposals: single-edit suggestions as a
// `help: try:` line, multi-part ones as a -/+ diff block.
func suggestions(items []tt.Suggestion, lines []string) string {
	var b strings.Builder
	for _, s := range items {
		if len(s.Edits) == 1 && !strings.Contains(s.Edits[0].NewText, "\n") {
			b.WriteString(helpStyle.Sprint("help"))
			b.WriteString(fmt.Sprintf(": try: `%s`\n", s.Edits[0].NewText))
			continue
		}
		b.WriteString(helpStyle.Sprint("help"))
		b.WriteString(fmt.Sprintf(": %s:\n", s.Message))
		for _, e := range s.Edits {
			for line := e.Span.Start.Line; line <= e.Span.End.Line && line-1 < len(lines); line++ {
				b.WriteString(messageStyle.Sprintf("- %s\n", lines[line-1]))
			}
			for _, newLine := range strings.Split(e.NewText, "\n") {
				if strings.TrimSpace(newLine) == "" {
					continue
				}
				b.WriteString(helpStyle.Sprintf("+ %s\n", newLine))
			}
		}
	}
	return b.String()
}

// visualColumn converts a 1-based byte column to a 0-based visual column,
// expanding tabs.
func visualColumn(line string, column int) int {
	visual := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else if !unicode.IsControl(ch) {
			visual++
		}
	}
	return visual
}

func visualWidth(line string) int {
	return visualColumn(line, len(line)+1)
}
