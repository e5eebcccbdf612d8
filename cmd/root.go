package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	manifestPath string
	strictConfig bool
	ignorePaths  []string
	timeout      time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "glint [paths...]",
	Short:            "glint - a lint-dispatch and suggestion engine for Go source",
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// `glint path1 path2` behaves like the check subcommand.
		checkCmd.Run(checkCmd, args)
	},
}

func Execute() error {
	defer func() {
		_ = logger.Sync()
	}()
	return rootCmd.Execute()
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}

	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "c", "", "Path to a YAML run manifest with per-lint level overrides")
	rootCmd.PersistentFlags().BoolVar(&strictConfig, "strict-config", false, "Treat unknown configuration keys as errors")
	rootCmd.PersistentFlags().StringSliceVar(&ignorePaths, "ignore-paths", nil, "Glob patterns for paths to skip")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Analysis timeout")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}
