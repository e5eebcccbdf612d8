package lints

import (
	"fmt"
	"go/token"

	"github.com/fzipp/gocyclo"

	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// ThresholdKey is the configuration parameter gating this lint.
const ThresholdKey = "cyclomatic-complexity-threshold"

// CyclomaticComplexity reports functions whose cyclomatic complexity
// exceeds the configured threshold. It runs once per file, at end of walk.
type CyclomaticComplexity struct{}

func NewCyclomaticComplexity() dispatch.Rule { return &CyclomaticComplexity{} }

func (r *CyclomaticComplexity) Meta() registry.Lint {
	return registry.Lint{
		ID:       "cyclomatic-complexity",
		Category: registry.Complexity,
		Since:    "0.1.0",
		Doc:      "function with high cyclomatic complexity",
		Params: []registry.Param{
			{
				Key:     ThresholdKey,
				Kind:    registry.ParamInt,
				Default: 10,
				Doc:     "complexity above which a function is reported",
			},
		},
	}
}

func (r *CyclomaticComplexity) FileDone(ctx *dispatch.Context) {
	threshold := ctx.Config.Int(ThresholdKey)
	stats := gocyclo.AnalyzeASTFile(ctx.File, ctx.Fset, nil)
	for _, stat := range stats {
		if stat.Complexity <= threshold {
			continue
		}
		span := tt.Span{
			Filename: ctx.Filename,
			Start:    stat.Pos,
			End:      endOfLine(ctx.Src, stat.Pos),
		}
		ctx.Emit(r.Meta().ID, span,
			fmt.Sprintf("function %s has cyclomatic complexity %d (threshold %d)",
				stat.FuncName, stat.Complexity, threshold),
			diag.WithHelp("consider splitting the function or flattening its branches"),
		)
	}
}

// endOfLine extends a position to the end of its source line so the caret
// underlines the whole function signature.
func endOfLine(src []byte, pos token.Position) token.Position {
	end := pos
	for off := pos.Offset; off < len(src) && src[off] != '\n'; off++ {
		end.Offset++
		end.Column++
	}
	return end
}
