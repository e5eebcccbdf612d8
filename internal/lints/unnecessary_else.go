package lints

import (
	"go/ast"
	"strings"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// UnnecessaryElse flags else blocks that follow an if block ending in a
// return statement. The else block can be removed and the code flattened.
type UnnecessaryElse struct{}

func NewUnnecessaryElse() dispatch.Rule { return &UnnecessaryElse{} }

func (r *UnnecessaryElse) Meta() registry.Lint {
	return registry.Lint{
		ID:       "unnecessary-else",
		Category: registry.Style,
		Since:    "0.1.0",
		Doc:      "else block after an if that always returns",
	}
}

func (r *UnnecessaryElse) InspectStmt(ctx *dispatch.Context, stmt ast.Stmt) {
	ifStmt, ok := stmt.(*ast.IfStmt)
	if !ok || ifStmt.Else == nil {
		return
	}
	elseBlock, ok := ifStmt.Else.(*ast.BlockStmt)
	if !ok || len(ifStmt.Body.List) == 0 {
		return
	}
	last := ifStmt.Body.List[len(ifStmt.Body.List)-1]
	if _, isReturn := last.(*ast.ReturnStmt); !isReturn {
		return
	}

	span := ctx.SpanOf(ifStmt.Else)
	// Replace `else { ... }` with the dedented body so the statements run
	// after the early return. The rewrite moves code across a brace, so it
	// is flagged for review rather than auto-applied.
	replacement := "\n" + dedentBlock(ctx.Text(elseBlock))
	ctx.Emit(r.Meta().ID, span,
		"unnecessary else block after an if that returns",
		diag.WithHelp("flatten the else branch into the enclosing block"),
		diag.WithSuggestion("remove the else", span, replacement, tt.MaybeIncorrect),
	)
}

// dedentBlock strips the surrounding braces and one level of indentation
// from a block's source text.
func dedentBlock(block string) string {
	body := strings.TrimSpace(block)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")
	body = strings.Trim(body, "\n")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	return strings.Join(lines, "\n")
}
