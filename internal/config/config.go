package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/glintlabs/glint/internal/registry"
)

// Config file names searched in each directory scope, in priority order.
var configFileNames = []string{".glint.toml", "glint.toml"}

// Builtin keys the resolver understands regardless of registered lints.
const (
	// KeyMSRV is the minimum Go version the analyzed code targets.
	KeyMSRV = "msrv"
	// KeyStrictKeys toggles hard errors on unknown configuration keys.
	// It is read from the raw table before the rest of the file is
	// validated so that it can govern its own file.
	KeyStrictKeys = "strict-keys"
)

// KeyError is a typed configuration error. It is reported once per
// offending key; analysis continues with the declared default.
type KeyError struct {
	Path   string
	Key    string
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: key %q: %s", e.Path, e.Key, e.Reason)
}

// scope is one parsed configuration file, attached to a directory.
type scope struct {
	path   string
	values map[string]any
}

// Config is the merged view over all discovered scopes, ordered from
// workspace root to the analyzed file's directory. The nearest scope that
// defines a key wins; unset keys fall through to the lint's declared
// default.
type Config struct {
	scopes []scope
	params map[string]registry.Param
	strict bool
	errs   []error
}

// Resolver locates and merges configuration files for a directory.
type Resolver struct {
	// Strict forces strict-keys mode regardless of the config files.
	Strict bool
}

// Load builds the configuration for files under dir. Discovery walks from
// dir upward to the workspace root (the first directory containing go.mod
// or .git), collecting one config file per level. Parse and validation
// errors are recorded on the returned Config, never fatal.
func (r *Resolver) Load(dir string, reg *registry.Registry) *Config {
	cfg := &Config{params: reg.Params(), strict: r.Strict}

	paths := discover(dir)
	// Scopes are collected leaf to root; reverse so the merge below can
	// let later (nearer) scopes win.
	for i := len(paths) - 1; i >= 0; i-- {
		cfg.loadFile(paths[i])
	}

	// Bootstrap pass: strict-keys must be known before key validation.
	if !cfg.strict {
		if v, ok := cfg.raw(KeyStrictKeys); ok {
			if b, ok := v.(bool); ok {
				cfg.strict = b
			}
		}
	}
	cfg.validate()
	return cfg
}

// discover returns config file paths from dir up to the workspace root,
// nearest first.
func discover(dir string) []string {
	var paths []string
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(current, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				paths = append(paths, candidate)
				break
			}
		}
		if isWorkspaceRoot(current) {
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return paths
}

func isWorkspaceRoot(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

func (c *Config) loadFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("reading %s: %w", path, err))
		return
	}
	values := make(map[string]any)
	if err := toml.Unmarshal(data, &values); err != nil {
		c.errs = append(c.errs, fmt.Errorf("parsing %s: %w", path, err))
		return
	}
	// Nested tables are reserved for future per-rule scoping.
	for key, v := range values {
		if _, isTable := v.(map[string]any); isTable {
			delete(values, key)
		}
	}
	c.scopes = append(c.scopes, scope{path: path, values: values})
}

// raw returns the nearest-scope value for key without validation.
func (c *Config) raw(key string) (any, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// validate checks every key of every scope against the declared parameter
// set, recording one KeyError per offending key.
func (c *Config) validate() {
	seen := make(map[string]bool)
	for _, s := range c.scopes {
		for key, value := range s.values {
			if seen[key] {
				continue
			}
			seen[key] = true
			switch key {
			case KeyStrictKeys:
				if _, ok := value.(bool); !ok {
					c.keyError(s.path, key, "expected a bool")
				}
			case KeyMSRV:
				if _, ok := value.(string); !ok {
					c.keyError(s.path, key, "expected a version string")
				}
			default:
				param, known := c.params[key]
				if !known {
					if c.strict {
						c.keyError(s.path, key, "unknown configuration key")
					}
					continue
				}
				if !matchesKind(value, param.Kind) {
					c.keyError(s.path, key, fmt.Sprintf("expected %s", param.Kind))
				}
			}
		}
	}
}

func (c *Config) keyError(path, key, reason string) {
	c.errs = append(c.errs, &KeyError{Path: path, Key: key, Reason: reason})
}

func matchesKind(value any, kind registry.ParamKind) bool {
	switch kind {
	case registry.ParamBool:
		_, ok := value.(bool)
		return ok
	case registry.ParamInt:
		switch value.(type) {
		case int64, int:
			return true
		}
		return false
	case registry.ParamString:
		_, ok := value.(string)
		return ok
	case registry.ParamStringSlice:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// Errors returns every configuration error recorded during load, one per
// offending key or file.
func (c *Config) Errors() []error {
	return c.errs
}

// Strict reports whether unknown keys are treated as hard errors.
func (c *Config) Strict() bool {
	return c.strict
}

// lookup returns the merged value for key when it passes the declared type
// check, otherwise the fallthrough default.
func (c *Config) lookup(key string) (any, bool) {
	v, ok := c.raw(key)
	if !ok {
		return nil, false
	}
	if param, known := c.params[key]; known && !matchesKind(v, param.Kind) {
		return nil, false
	}
	return v, true
}

// Int resolves an integer parameter, falling back to the declared default.
func (c *Config) Int(key string) int {
	if v, ok := c.lookup(key); ok {
		switch n := v.(type) {
		case int64:
			return int(n)
		case int:
			return n
		}
	}
	return defaultAs[int](c.params, key)
}

// Bool resolves a boolean parameter.
func (c *Config) Bool(key string) bool {
	if v, ok := c.lookup(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultAs[bool](c.params, key)
}

// String resolves a string parameter.
func (c *Config) String(key string) string {
	if key == KeyMSRV {
		if v, ok := c.raw(key); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	if v, ok := c.lookup(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultAs[string](c.params, key)
}

// StringSlice resolves a list-of-strings parameter.
func (c *Config) StringSlice(key string) []string {
	if v, ok := c.lookup(key); ok {
		if items, ok := v.([]any); ok {
			out := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return defaultAs[[]string](c.params, key)
}

// MSRV returns the configured minimum supported Go version, empty when unset.
func (c *Config) MSRV() string {
	return c.String(KeyMSRV)
}

func defaultAs[T any](params map[string]registry.Param, key string) T {
	var zero T
	param, ok := params[key]
	if !ok || param.Default == nil {
		return zero
	}
	if v, ok := param.Default.(T); ok {
		return v
	}
	return zero
}

// IsKeyError reports whether err is a per-key configuration error.
func IsKeyError(err error) bool {
	var ke *KeyError
	return errors.As(err, &ke)
}
