package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/glintlabs/glint/internal"
	tt "github.com/glintlabs/glint/internal/types"
)

// Engine is the per-run analysis surface the commands drive.
type Engine interface {
	Run(filename string) internal.Result
	RunSource(filename string, src []byte) internal.Result
	Fix(filename string) (int, error)
	Ignored(path string) bool
}

// Options mirrors the command-line surface.
type Options struct {
	// ManifestPath points at an optional YAML run manifest with per-lint
	// level overrides.
	ManifestPath string
	// StrictConfig forces strict-keys configuration mode.
	StrictConfig bool
	// IgnorePaths holds glob patterns for files to skip.
	IgnorePaths []string
	// Progress enables the progress bar for directory runs.
	Progress bool
}

// Manifest is the YAML run manifest: a name plus level overrides applied
// as command-line overrides (between defaults and source directives).
type Manifest struct {
	Name   string            `yaml:"name"`
	Levels map[string]string `yaml:"levels"`
}

// New builds an engine from options, loading the manifest when given.
func New(opts Options) (*internal.Engine, error) {
	levels, err := loadManifest(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	engine, err := internal.NewEngine(internal.Options{
		StrictConfig: opts.StrictConfig,
		Levels:       levels,
	})
	if err != nil {
		return nil, err
	}
	for _, pattern := range opts.IgnorePaths {
		if err := engine.IgnorePath(pattern); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

func loadManifest(path string) (map[string]tt.Level, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	levels := make(map[string]tt.Level, len(m.Levels))
	for lint, name := range m.Levels {
		lvl, err := tt.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("manifest: lint %q: %w", lint, err)
		}
		levels[lint] = lvl
	}
	return levels, nil
}

// ProcessFiles analyzes every path, expanding directories. Results arrive
// in deterministic path order regardless of worker scheduling.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine Engine, paths []string, progress bool) ([]internal.Result, error) {
	var results []internal.Result
	for _, path := range paths {
		rs, err := ProcessPath(ctx, logger, engine, path, progress)
		if err != nil {
			if logger != nil {
				logger.Error("error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

// ProcessPath analyzes one file or directory tree. Files are independent,
// so directory runs fan out to one worker per CPU; each worker gets its own
// diagnostic sink inside the engine.
func ProcessPath(ctx context.Context, logger *zap.Logger, engine Engine, path string, progress bool) ([]internal.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !isGoFile(path) || engine.Ignored(path) {
			return nil, nil
		}
		return []internal.Result{engine.Run(path)}, nil
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && isGoFile(filePath) && !engine.Ignored(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription(path),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)
	}

	results := make([]internal.Result, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, filePath := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = engine.Run(fp)
			if bar != nil {
				bar.Add(1)
			}
		}(i, filePath)
	}
	wg.Wait()

	if logger != nil {
		for _, r := range results {
			if r.Err != nil {
				logger.Error("analysis failed", zap.String("file", r.Filename), zap.Error(r.Err))
			}
		}
	}
	return results, nil
}

func isGoFile(path string) bool {
	return filepath.Ext(path) == ".go"
}

// ExitCode folds results into the process exit code. Deny and forbid
// findings outrank internal errors, which outrank warnings and clean runs.
func ExitCode(results []internal.Result) int {
	code := 0
	for _, r := range results {
		if r.WorstLevel() >= tt.LevelDeny {
			return 1
		}
		if r.Err != nil {
			code = 2
		}
	}
	return code
}
