package lints

import (
	"go/ast"
	gotypes "go/types"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// RedundantSprint flags fmt.Sprint(s) and fmt.Sprintf("%s", s) where s is
// already a string. Late phase: the operand type must be resolved.
type RedundantSprint struct{}

func NewRedundantSprint() dispatch.Rule { return &RedundantSprint{} }

func (r *RedundantSprint) Meta() registry.Lint {
	return registry.Lint{
		ID:       "redundant-sprint",
		Category: registry.Performance,
		Since:    "0.1.0",
		Doc:      "fmt.Sprint of a value that is already a string",
	}
}

func (r *RedundantSprint) InspectExpr(ctx *dispatch.Context, expr ast.Expr) {
	if ctx.Types == nil {
		return
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "fmt" {
		return
	}

	var operand ast.Expr
	switch sel.Sel.Name {
	case "Sprint":
		if len(call.Args) != 1 {
			return
		}
		operand = call.Args[0]
	case "Sprintf":
		if len(call.Args) != 2 || !isStringLit(call.Args[0], `"%s"`) {
			return
		}
		operand = call.Args[1]
	default:
		return
	}
	if !isStringType(operand, ctx.Types) {
		return
	}

	span := ctx.SpanOf(call)
	replacement := ctx.Text(operand)
	ctx.Emit(r.Meta().ID, span,
		"redundant fmt call on a value that is already a string",
		diag.WithSuggestion("use the value directly", span, replacement, tt.MachineApplicable),
	)
}

func isStringLit(expr ast.Expr, want string) bool {
	lit, ok := expr.(*ast.BasicLit)
	return ok && lit.Value == want
}

// isStringType requires the exact predeclared string type: for a named
// string type the operand would not be assignable where the fmt result was.
func isStringType(expr ast.Expr, info *gotypes.Info) bool {
	tv, ok := info.Types[expr]
	if !ok || tv.Type == nil {
		return false
	}
	basic, ok := tv.Type.(*gotypes.Basic)
	return ok && basic.Kind() == gotypes.String
}
