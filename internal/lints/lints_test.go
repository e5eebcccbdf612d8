package lints_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintlabs/glint/internal"
	tt "github.com/glintlabs/glint/internal/types"
)

// analyze runs the full engine over one source snippet and returns every
// finding. Rules are exercised through the dispatcher, exactly as in a run.
func analyze(t *testing.T, src string) []tt.Diagnostic {
	t.Helper()
	return analyzeIn(t, t.TempDir(), src)
}

// analyzeIn anchors the snippet in dir so configuration discovery sees the
// files the test planted there.
func analyzeIn(t *testing.T, dir, src string) []tt.Diagnostic {
	t.Helper()
	engine, err := internal.NewEngine(internal.Options{})
	require.NoError(t, err)

	res := engine.RunSource(filepath.Join(dir, "main.go"), []byte(src))
	require.NoError(t, res.Err)
	return res.Diagnostics
}

// findings filters diagnostics down to one lint id.
func findings(diags []tt.Diagnostic, lint string) []tt.Diagnostic {
	var out []tt.Diagnostic
	for _, d := range diags {
		if d.Lint == lint {
			out = append(out, d)
		}
	}
	return out
}

// writeConfig plants a workspace-rooted glint.toml next to the analyzed file.
func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/ws\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glint.toml"), []byte(content), 0o644))
}
