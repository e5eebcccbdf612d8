package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	tt "github.com/glintlabs/glint/internal/types"
)

const prefix = "//glint:"

// Setting is one parsed level override: a level applied to a lint or lint
// group name for the remainder of the scope it is attached to.
type Setting struct {
	Level  tt.Level
	Target string
	// Span is where the directive itself appears, used when the override
	// must be reported (e.g. lowering a forbidden lint).
	Span tt.Span
}

// Table maps tree scopes to the level-setting directives attached to them.
// Unit-scoped directives (written before the package clause) apply to the
// whole file; item- and statement-scoped directives apply to the subtree of
// the node they annotate.
type Table struct {
	file   []Setting
	byNode map[ast.Node][]Setting
}

// ParseComments scans every comment in f for glint directives and anchors
// each one to the scope it governs.
func ParseComments(f *ast.File, fset *token.FileSet) *Table {
	t := &Table{byNode: make(map[ast.Node][]Setting)}
	stmtByLine := indexStatementsByLine(f, fset)
	declByLine := indexDeclsByLine(f, fset)
	packageLine := fset.Position(f.Package).Line

	for _, cg := range f.Comments {
		for _, comment := range cg.List {
			settings, err := parseComment(comment, fset)
			if err != nil || len(settings) == 0 {
				// Malformed directives are ignored, matching the
				// lenient handling of unknown comments.
				continue
			}
			pos := fset.Position(comment.Slash)

			// Before the package clause: unit scope.
			if pos.Line < packageLine {
				t.file = append(t.file, settings...)
				continue
			}

			// Inline with a statement: that statement's subtree.
			if stmt, ok := stmtByLine[pos.Line]; ok {
				if pos.Offset > fset.Position(stmt.Pos()).Offset {
					t.byNode[stmt] = append(t.byNode[stmt], settings...)
					continue
				}
			}

			// Standalone comment: the declaration or statement that
			// starts on the following line.
			if decl, ok := declByLine[pos.Line+1]; ok {
				t.byNode[decl] = append(t.byNode[decl], settings...)
				continue
			}
			if stmt, ok := stmtByLine[pos.Line+1]; ok {
				t.byNode[stmt] = append(t.byNode[stmt], settings...)
			}
		}
	}
	return t
}

// parseComment parses one `//glint:<level>(target, ...)` comment.
func parseComment(comment *ast.Comment, fset *token.FileSet) ([]Setting, error) {
	text := comment.Text
	if !strings.HasPrefix(text, prefix) {
		return nil, nil
	}
	rest := text[len(prefix):]
	open := strings.IndexByte(rest, '(')
	if open < 0 || !strings.HasSuffix(strings.TrimSpace(rest), ")") {
		return nil, fmt.Errorf("malformed directive %q", text)
	}
	level, err := tt.ParseLevel(rest[:open])
	if err != nil {
		return nil, err
	}
	args := strings.TrimSpace(rest[open+1:])
	args = strings.TrimSuffix(args, ")")

	span := tt.NewSpan(fset, comment.Slash, comment.End())
	var settings []Setting
	for _, target := range strings.Split(args, ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		settings = append(settings, Setting{Level: level, Target: target, Span: span})
	}
	if len(settings) == 0 {
		return nil, fmt.Errorf("directive %q names no lints", text)
	}
	return settings, nil
}

// File returns the unit-scoped settings, applied from the start of the file.
func (t *Table) File() []Setting {
	return t.file
}

// At returns the settings attached to node, nil for most nodes.
func (t *Table) At(node ast.Node) []Setting {
	return t.byNode[node]
}

// indexStatementsByLine maps each line to the first statement starting on it.
func indexStatementsByLine(f *ast.File, fset *token.FileSet) map[int]ast.Stmt {
	stmts := make(map[int]ast.Stmt)
	ast.Inspect(f, func(n ast.Node) bool {
		if stmt, ok := n.(ast.Stmt); ok {
			line := fset.Position(stmt.Pos()).Line
			if _, exists := stmts[line]; !exists {
				stmts[line] = stmt
			}
		}
		return true
	})
	return stmts
}

// indexDeclsByLine maps each line to the top-level declaration starting on it.
func indexDeclsByLine(f *ast.File, fset *token.FileSet) map[int]ast.Decl {
	decls := make(map[int]ast.Decl)
	for _, decl := range f.Decls {
		line := fset.Position(decl.Pos()).Line
		if _, exists := decls[line]; !exists {
			decls[line] = decl
		}
	}
	return decls
}
