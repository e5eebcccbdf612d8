package lints

import (
	"go/ast"
	"go/token"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// UselessBreak flags break statements at the end of switch case and select
// comm clauses, where Go breaks implicitly.
type UselessBreak struct{}

func NewUselessBreak() dispatch.Rule { return &UselessBreak{} }

func (r *UselessBreak) Meta() registry.Lint {
	return registry.Lint{
		ID:       "useless-break",
		Category: registry.Style,
		Since:    "0.1.0",
		Doc:      "redundant break at the end of a case clause",
	}
}

func (r *UselessBreak) InspectStmt(ctx *dispatch.Context, stmt ast.Stmt) {
	switch v := stmt.(type) {
	case *ast.SwitchStmt:
		for _, clause := range v.Body.List {
			if cc, ok := clause.(*ast.CaseClause); ok {
				r.checkClause(ctx, cc.Body)
			}
		}
	case *ast.TypeSwitchStmt:
		for _, clause := range v.Body.List {
			if cc, ok := clause.(*ast.CaseClause); ok {
				r.checkClause(ctx, cc.Body)
			}
		}
	case *ast.SelectStmt:
		for _, clause := range v.Body.List {
			if cc, ok := clause.(*ast.CommClause); ok {
				r.checkClause(ctx, cc.Body)
			}
		}
	}
}

func (r *UselessBreak) checkClause(ctx *dispatch.Context, stmts []ast.Stmt) {
	if len(stmts) == 0 {
		return
	}
	last := stmts[len(stmts)-1]
	br, ok := last.(*ast.BranchStmt)
	if !ok || br.Tok != token.BREAK || br.Label != nil {
		return
	}
	span := ctx.SpanOf(br)
	ctx.Emit(r.Meta().ID, span,
		"useless break statement at the end of case clause",
		diag.WithSuggestion("remove the break", span, "", tt.MachineApplicable),
	)
}
