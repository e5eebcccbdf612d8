package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glintlabs/glint/formatter"
	"github.com/glintlabs/glint/internal"
	"github.com/glintlabs/glint/lint"
)

// debounce window: editors often fire several write events per save.
const watchSettle = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-analyze files as they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: please provide file or directory paths")
			os.Exit(1)
		}

		engine, err := lint.New(lint.Options{
			ManifestPath: manifestPath,
			StrictConfig: strictConfig,
			IgnorePaths:  ignorePaths,
		})
		if err != nil {
			logger.Fatal("failed to initialize engine", zap.Error(err))
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Fatal("failed to create watcher", zap.Error(err))
		}
		defer watcher.Close()

		for _, path := range args {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return watcher.Add(p)
				}
				return nil
			})
			if err != nil {
				logger.Fatal("error adding directory to watcher", zap.Error(err))
			}
		}

		fmt.Println("watching for changes...")
		watchLoop(watcher, engine)
	},
}

func watchLoop(watcher *fsnotify.Watcher, engine *internal.Engine) {
	var lastFile string
	var lastTime time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".go") || engine.Ignored(event.Name) {
				continue
			}
			if event.Name == lastFile && time.Since(lastTime) < watchSettle {
				continue
			}
			lastFile, lastTime = event.Name, time.Now()

			res := engine.Run(event.Name)
			if res.Err != nil {
				fmt.Printf("error: internal: %v\n", res.Err)
				continue
			}
			if len(res.Diagnostics) == 0 {
				fmt.Printf("%s: clean\n", event.Name)
				continue
			}
			src, err := internal.ReadSourceCode(res.Filename)
			if err != nil {
				logger.Error("error reading source file", zap.String("file", res.Filename), zap.Error(err))
				continue
			}
			fmt.Print(formatter.Format(res.Diagnostics, src))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watch error", zap.Error(err))
		}
	}
}
