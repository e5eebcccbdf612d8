package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glintlabs/glint/internal/fixer"
	"github.com/glintlabs/glint/lint"
)

var (
	fixDryRun bool
	fixVerify bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply machine-applicable suggestions in place",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := lint.New(lint.Options{
			ManifestPath: manifestPath,
			StrictConfig: strictConfig,
			IgnorePaths:  ignorePaths,
		})
		if err != nil {
			logger.Fatal("failed to initialize engine", zap.Error(err))
		}

		results, err := lint.ProcessFiles(ctx, logger, engine, args, false)
		if err != nil {
			logger.Error("error processing files", zap.Error(err))
			os.Exit(2)
		}

		fx := fixer.New()
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("error: internal: %v\n", r.Err)
				continue
			}
			edits := fx.Collect(r.Diagnostics)
			if len(edits) == 0 {
				continue
			}

			if fixDryRun {
				src, err := os.ReadFile(r.Filename)
				if err != nil {
					logger.Error("error reading file", zap.String("file", r.Filename), zap.Error(err))
					continue
				}
				fmt.Printf("would fix %s:\n%s", r.Filename, fixer.Preview(src, edits))
				continue
			}

			if fixVerify {
				src, err := os.ReadFile(r.Filename)
				if err != nil {
					logger.Error("error reading file", zap.String("file", r.Filename), zap.Error(err))
					continue
				}
				if err := fx.Verify(r.Filename, src, r.Diagnostics, engine.Analyze); err != nil {
					// Conflicts and regressions skip this file only.
					fmt.Printf("error: %v\n", err)
					continue
				}
			}

			n, err := engine.Fix(r.Filename)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("fixed %s (%d edits)\n", r.Filename, n)
		}
	},
}

func init() {
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "Show fixes without applying them")
	fixCmd.Flags().BoolVar(&fixVerify, "verify", true, "Re-analyze fixed text and refuse regressing fixes")
}
