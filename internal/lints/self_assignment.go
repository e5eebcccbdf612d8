package lints

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
)

// SelfAssignment flags statements assigning a variable to itself. These are
// almost always a typo for an assignment to or from a similarly named
// variable or field.
type SelfAssignment struct{}

func NewSelfAssignment() dispatch.Rule { return &SelfAssignment{} }

func (r *SelfAssignment) Meta() registry.Lint {
	return registry.Lint{
		ID:       "self-assignment",
		Category: registry.Correctness,
		Since:    "0.1.0",
		Doc:      "assignment of a variable to itself",
	}
}

func (r *SelfAssignment) InspectStmt(ctx *dispatch.Context, stmt ast.Stmt) {
	assign, ok := stmt.(*ast.AssignStmt)
	if !ok || assign.Tok != token.ASSIGN || len(assign.Lhs) != len(assign.Rhs) {
		return
	}
	for i := range assign.Lhs {
		if !isPlainRef(assign.Lhs[i]) || !isPlainRef(assign.Rhs[i]) {
			continue
		}
		lhs := ctx.Text(assign.Lhs[i])
		if lhs == "" || lhs != ctx.Text(assign.Rhs[i]) {
			continue
		}
		ctx.Emit(r.Meta().ID, ctx.SpanOf(assign),
			fmt.Sprintf("`%s` is assigned to itself", lhs),
			diag.WithNote("this has no effect; a different operand was probably intended", nil),
		)
	}
}

// isPlainRef reports whether expr is a bare variable or field reference,
// with no calls or index expressions that could carry side effects.
func isPlainRef(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		return isPlainRef(e.X)
	default:
		return false
	}
}
