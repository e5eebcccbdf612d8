package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glintlabs/glint/formatter"
	"github.com/glintlabs/glint/internal"
	tt "github.com/glintlabs/glint/internal/types"
	"github.com/glintlabs/glint/lint"
)

var (
	checkJSONOutput bool
	checkOutPath    string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Analyze files and report findings",
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

		results, err := lint.ProcessFiles(ctx, logger, engine, args, !checkJSONOutput)
		if err != nil {
			logger.Error("error processing files", zap.Error(err))
			os.Exit(2)
		}

		printResults(results, checkJSONOutput, checkOutPath)
		os.Exit(lint.ExitCode(results))
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output findings in JSON format")
	checkCmd.Flags().StringVarP(&checkOutPath, "output", "o", "", "Output path (when using JSON)")
}

func printResults(results []internal.Result, asJSON bool, outPath string) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})

	if asJSON {
		printJSON(results, outPath)
		return
	}

	// Configuration errors first, once per key.
	for _, r := range results {
		for _, cfgErr := range r.ConfigErrors {
			fmt.Printf("warning: config: %v\n", cfgErr)
		}
	}

	totalErrors := 0
	for _, r := range results {
		if r.Err != nil {
			// Internal errors are reported distinctly from findings and
			// never suppress other files' output.
			fmt.Printf("error: internal: %v\n", r.Err)
			continue
		}
		if len(r.Diagnostics) == 0 {
			continue
		}
		src, err := internal.ReadSourceCode(r.Filename)
		if err != nil {
			logger.Error("error reading source file", zap.String("file", r.Filename), zap.Error(err))
			continue
		}
		fmt.Print(formatter.Format(r.Diagnostics, src))
		totalErrors += formatter.CountErrors(r.Diagnostics)
	}
	fmt.Print(formatter.Summary(totalErrors))
}

func printJSON(results []internal.Result, outPath string) {
	byFile := make(map[string][]tt.Diagnostic)
	for _, r := range results {
		if len(r.Diagnostics) > 0 {
			byFile[r.Filename] = r.Diagnostics
		}
	}
	data, err := json.Marshal(byFile)
	if err != nil {
		logger.Error("error marshalling findings to JSON", zap.Error(err))
		return
	}
	if outPath == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("error writing JSON output file", zap.Error(err))
	}
}
