package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glintlabs/glint/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered lints and their defaults",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := lint.New(lint.Options{ManifestPath: manifestPath})
		if err != nil {
			logger.Fatal("failed to initialize engine", zap.Error(err))
		}

		reg := engine.Registry()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tDEFAULT\tSINCE\tDOC")
		for _, id := range reg.All() {
			meta, _ := reg.Lookup(id)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				meta.ID, meta.Category, meta.DefaultLevel(), meta.Since, meta.Doc)
		}
		w.Flush()
	},
}
