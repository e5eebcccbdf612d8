package lints

import (
	"go/ast"
	"go/token"
	gotypes "go/types"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// UnnecessaryConversion flags type conversions whose operand already has
// the target type. Runs in the late phase because it needs resolved types.
type UnnecessaryConversion struct{}

func NewUnnecessaryConversion() dispatch.Rule { return &UnnecessaryConversion{} }

func (r *UnnecessaryConversion) Meta() registry.Lint {
	return registry.Lint{
		ID:       "unnecessary-conversion",
		Category: registry.Complexity,
		Since:    "0.1.0",
		Doc:      "type conversion to the operand's own type",
	}
}

func (r *UnnecessaryConversion) InspectExpr(ctx *dispatch.Context, expr ast.Expr) {
	if ctx.Types == nil {
		return
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return
	}

	ft, ok := ctx.Types.Types[call.Fun]
	if !ok || !ft.IsType() {
		return
	}
	arg := astutil.Unparen(call.Args[0])
	at, ok := ctx.Types.Types[arg]
	if !ok {
		return
	}
	if !gotypes.Identical(ft.Type, at.Type) || isUntypedValue(arg, ctx.Types) {
		return
	}

	span := ctx.SpanOf(call)
	replacement := ctx.Text(arg)
	ctx.Emit(r.Meta().ID, span,
		"unnecessary type conversion",
		diag.WithNote("the operand already has type "+at.Type.String(), nil),
		diag.WithSuggestion("remove the conversion", span, replacement, tt.MachineApplicable),
	)
}

// isUntypedValue reports whether n evaluates to an untyped constant value,
// in which case the conversion is load-bearing.
func isUntypedValue(n ast.Expr, info *gotypes.Info) bool {
	switch n := n.(type) {
	case *ast.BinaryExpr:
		switch n.Op {
		case token.SHL, token.SHR:
			return isUntypedValue(n.X, info)
		case token.EQL, token.NEQ, token.LSS, token.GTR, token.LEQ, token.GEQ:
			return true
		case token.ADD, token.SUB, token.MUL, token.QUO, token.REM,
			token.AND, token.OR, token.XOR, token.AND_NOT,
			token.LAND, token.LOR:
			return isUntypedValue(n.X, info) && isUntypedValue(n.Y, info)
		}
	case *ast.UnaryExpr:
		switch n.Op {
		case token.ADD, token.SUB, token.NOT, token.XOR:
			return isUntypedValue(n.X, info)
		}
	case *ast.BasicLit:
		return true
	case *ast.ParenExpr:
		return isUntypedValue(n.X, info)
	case *ast.Ident:
		if obj, ok := info.Uses[n]; ok {
			if obj.Pkg() == nil && obj.Name() == "nil" {
				return true
			}
			if b, ok := obj.Type().(*gotypes.Basic); ok && b.Info()&gotypes.IsUntyped != 0 {
				return true
			}
		}
	}
	return false
}
