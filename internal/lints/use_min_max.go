package lints

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// UseMinMax flags if/else chains that reimplement the min and max builtins
// added in Go 1.21. The msrv gate keeps it quiet for code targeting older
// toolchains.
type UseMinMax struct{}

func NewUseMinMax() dispatch.Rule { return &UseMinMax{} }

func (r *UseMinMax) Meta() registry.Lint {
	return registry.Lint{
		ID:           "use-min-max",
		Category:     registry.Style,
		Since:        "0.2.0",
		MinGoVersion: "1.21",
		Doc:          "if/else that reimplements the min or max builtin",
	}
}

func (r *UseMinMax) InspectStmt(ctx *dispatch.Context, stmt ast.Stmt) {
	ifStmt, ok := stmt.(*ast.IfStmt)
	if !ok || ifStmt.Init != nil || ifStmt.Else == nil {
		return
	}
	cond, ok := ifStmt.Cond.(*ast.BinaryExpr)
	if !ok {
		return
	}

	var builtin string
	switch cond.Op {
	case token.GTR, token.GEQ:
		builtin = "max"
	case token.LSS, token.LEQ:
		builtin = "min"
	default:
		return
	}

	thenTarget, thenValue, ok := singleAssign(ifStmt.Body)
	if !ok {
		return
	}
	elseBlock, ok := ifStmt.Else.(*ast.BlockStmt)
	if !ok {
		return
	}
	elseTarget, elseValue, ok := singleAssign(elseBlock)
	if !ok {
		return
	}

	// if a > b { x = a } else { x = b }  ->  x = max(a, b)
	if ctx.Text(thenTarget) != ctx.Text(elseTarget) {
		return
	}
	a, b := ctx.Text(cond.X), ctx.Text(cond.Y)
	if ctx.Text(thenValue) != a || ctx.Text(elseValue) != b {
		return
	}

	span := ctx.SpanOf(ifStmt)
	replacement := fmt.Sprintf("%s = %s(%s, %s)", ctx.Text(thenTarget), builtin, a, b)
	ctx.Emit(r.Meta().ID, span,
		fmt.Sprintf("this if/else reimplements the `%s` builtin", builtin),
		diag.WithSuggestion(fmt.Sprintf("use `%s`", replacement), span, replacement, tt.MachineApplicable),
	)
}

// singleAssign returns the target and value of a block consisting of
// exactly one plain assignment.
func singleAssign(block *ast.BlockStmt) (target, value ast.Expr, ok bool) {
	if len(block.List) != 1 {
		return nil, nil, false
	}
	assign, isAssign := block.List[0].(*ast.AssignStmt)
	if !isAssign || assign.Tok != token.ASSIGN || len(assign.Lhs) != 1 || len(assign.Rhs) != 1 {
		return nil, nil, false
	}
	return assign.Lhs[0], assign.Rhs[0], true
}
