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

// BoolComparison flags comparisons against the literals true and false,
// which can always be written as the operand itself or its negation.
type BoolComparison struct{}

func NewBoolComparison() dispatch.Rule { return &BoolComparison{} }

func (r *BoolComparison) Meta() registry.Lint {
	return registry.Lint{
		ID:       "bool-comparison",
		Category: registry.Style,
		Since:    "0.1.0",
		Doc:      "comparison against a boolean literal",
	}
}

func (r *BoolComparison) InspectExpr(ctx *dispatch.Context, expr ast.Expr) {
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok || (bin.Op != token.EQL && bin.Op != token.NEQ) {
		return
	}

	operand, literal := bin.X, boolLiteral(bin.Y)
	if literal == "" {
		operand, literal = bin.Y, boolLiteral(bin.X)
	}
	if literal == "" || boolLiteral(operand) != "" {
		return
	}

	// x == true / x != false  ->  x
	// x == false / x != true  ->  !x
	negate := (bin.Op == token.EQL) == (literal == "false")
	replacement := ctx.Text(operand)
	if negate {
		if _, isIdent := operand.(*ast.Ident); !isIdent {
			replacement = "(" + replacement + ")"
		}
		replacement = "!" + replacement
	}

	span := ctx.SpanOf(bin)
	ctx.Emit(r.Meta().ID, span,
		fmt.Sprintf("comparison with `%s` can be simplified", literal),
		diag.WithSuggestion(fmt.Sprintf("use `%s`", replacement), span, replacement, tt.MachineApplicable),
	)
}

// boolLiteral returns "true" or "false" when expr is the corresponding
// predeclared identifier, otherwise the empty string.
func boolLiteral(expr ast.Expr) string {
	id, ok := expr.(*ast.Ident)
	if !ok {
		return ""
	}
	if id.Name == "true" || id.Name == "false" {
		return id.Name
	}
	return ""
}
