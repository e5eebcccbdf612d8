package lints

import (
	"fmt"
	"go/ast"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// RepeatedRegexCompilation flags compiling the same regular expression
// literal more than once in a file. The pattern should be compiled once and
// stored in a package-level variable.
//
// The rule keeps the first occurrence of each pattern in the pass's scratch
// state and reports every later one.
type RepeatedRegexCompilation struct{}

func NewRepeatedRegexCompilation() dispatch.Rule { return &RepeatedRegexCompilation{} }

func (r *RepeatedRegexCompilation) Meta() registry.Lint {
	return registry.Lint{
		ID:       "repeated-regex-compilation",
		Category: registry.Performance,
		Since:    "0.1.0",
		Doc:      "same regex literal compiled more than once",
	}
}

// regexState is the per-file scratch: pattern literal -> first compile span.
type regexState map[string]tt.Span

// NewRegexState is the pass scratch constructor for this rule's pass.
func NewRegexState() any { return regexState{} }

func (r *RepeatedRegexCompilation) InspectExpr(ctx *dispatch.Context, expr ast.Expr) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "regexp" {
		return
	}
	if sel.Sel.Name != "Compile" && sel.Sel.Name != "MustCompile" {
		return
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok {
		return
	}

	state, ok := ctx.State.(regexState)
	if !ok {
		return
	}
	span := ctx.SpanOf(call)
	if first, seen := state[lit.Value]; seen {
		ctx.Emit(r.Meta().ID, span,
			fmt.Sprintf("regex %s is compiled more than once in this file", lit.Value),
			diag.WithNote("first compiled here", &first),
			diag.WithHelp("compile the pattern once and store it in a package-level variable"),
		)
		return
	}
	state[lit.Value] = span
}
