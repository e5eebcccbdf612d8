package internal

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/directive"
	"github.com/glintlabs/glint/internal/dispatch"
	"github.com/glintlabs/glint/internal/fixer"
	"github.com/glintlabs/glint/internal/level"
	"github.com/glintlabs/glint/internal/lints"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// ForbidOverrideLint is the synthetic lint id findings about illegal
// forbid-lowering directives are reported under.
const ForbidOverrideLint = "forbid-override"

// Options configures a new engine context.
type Options struct {
	// StrictConfig forces strict-keys mode regardless of config files.
	StrictConfig bool
	// Levels holds command-line level overrides, keyed by lint id.
	Levels map[string]tt.Level
}

// Engine is the per-run context tying the registry, the configuration
// resolver, and the pass dispatcher together. One engine may analyze many
// files; all per-file mutable state is created inside Run, so files can be
// analyzed concurrently.
type Engine struct {
	reg        *registry.Registry
	dispatcher *dispatch.Dispatcher
	conf       *config.Resolver
	levels     map[string]tt.Level
	// ranks maps lint id to registration index for the diagnostic
	// ordering tie-break.
	ranks       map[string]int
	ignoreGlobs []glob.Glob
}

// NewEngine builds an engine with the builtin passes registered.
func NewEngine(opts Options) (*Engine, error) {
	reg := registry.New()
	e := &Engine{
		reg:        reg,
		dispatcher: dispatch.New(reg),
		conf:       &config.Resolver{Strict: opts.StrictConfig},
		levels:     opts.Levels,
		ranks:      make(map[string]int),
	}

	passes := []*dispatch.Pass{
		{
			Name:  "style",
			Phase: dispatch.PhaseEarly,
			Rules: []dispatch.Rule{
				lints.NewUnnecessaryElse(),
				lints.NewUselessBreak(),
				lints.NewBoolComparison(),
				lints.NewUseMinMax(),
			},
		},
		{
			Name:  "correctness",
			Phase: dispatch.PhaseEarly,
			Rules: []dispatch.Rule{lints.NewSelfAssignment()},
		},
		{
			Name:     "performance",
			Phase:    dispatch.PhaseEarly,
			Rules:    []dispatch.Rule{lints.NewRepeatedRegexCompilation()},
			NewState: lints.NewRegexState,
		},
		{
			Name:  "metrics",
			Phase: dispatch.PhaseEarly,
			Rules: []dispatch.Rule{lints.NewCyclomaticComplexity()},
		},
		{
			Name:  "types",
			Phase: dispatch.PhaseLate,
			Rules: []dispatch.Rule{
				lints.NewUnnecessaryConversion(),
				lints.NewRedundantSprint(),
			},
		},
	}
	for _, p := range passes {
		if err := e.AddPass(p); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddPass registers a pass and catalogs its rules. Pass registration order
// fixes the diagnostic emission order for same-span findings.
func (e *Engine) AddPass(p *dispatch.Pass) error {
	for _, rule := range p.Rules {
		meta := rule.Meta()
		if err := e.reg.Register(meta); err != nil {
			return err
		}
		e.ranks[meta.ID] = len(e.ranks)
	}
	e.dispatcher.AddPass(p)
	return nil
}

// Registry exposes the catalog for listing commands and tests.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// IgnorePath adds a glob pattern; matching files are skipped by Run.
func (e *Engine) IgnorePath(pattern string) error {
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
	}
	e.ignoreGlobs = append(e.ignoreGlobs, g)
	return nil
}

// Ignored reports whether a path matches any ignore pattern.
func (e *Engine) Ignored(path string) bool {
	for _, g := range e.ignoreGlobs {
		if g.Match(path) || g.Match(filepath.Base(path)) {
			return true
		}
	}
	return false
}

// Result is the complete outcome of analyzing one file. ConfigErrors are
// recoverable and reported alongside findings; Err is an internal error
// that voided this file's findings without stopping the run.
type Result struct {
	Filename     string
	Diagnostics  []tt.Diagnostic
	ConfigErrors []error
	Err          error
}

// WorstLevel returns the highest severity among the findings.
func (r Result) WorstLevel() tt.Level {
	worst := tt.LevelAllow
	for _, d := range r.Diagnostics {
		if d.Severity > worst {
			worst = d.Severity
		}
	}
	return worst
}

// Run analyzes one file on disk.
func (e *Engine) Run(filename string) Result {
	src, err := os.ReadFile(filename)
	if err != nil {
		return Result{Filename: filename, Err: fmt.Errorf("reading %s: %w", filename, err)}
	}
	return e.RunSource(filename, src)
}

// RunSource analyzes source text. It performs one early walk over the
// syntax tree and one late walk with type information attached. Internal
// errors (malformed tree, panicking rule) discard the in-progress sink:
// partial diagnostics for the file are never surfaced.
func (e *Engine) RunSource(filename string, src []byte) Result {
	res := Result{Filename: filename}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		res.Err = fmt.Errorf("parsing %s: %w", filename, err)
		return res
	}

	cfg := e.conf.Load(filepath.Dir(filename), e.reg)
	res.ConfigErrors = cfg.Errors()

	table := directive.ParseComments(file, fset)
	resolver := level.New(e.reg, e.levels, cfg.MSRV())
	sink := diag.NewSink(len(src), resolver.Effective, e.category)

	ctx := &dispatch.Context{
		Filename: filename,
		Src:      src,
		Fset:     fset,
		File:     file,
		Config:   cfg,
	}
	ctx.AttachSink(sink)

	if err := e.dispatcher.RunPhase(dispatch.PhaseEarly, ctx, resolver, table); err != nil {
		res.Err = err
		return res
	}

	// Late phase: resolve types. Check errors are deliberately ignored;
	// partially typed files still get the syntax-only findings.
	info := &gotypes.Info{
		Types: make(map[ast.Expr]gotypes.TypeAndValue),
		Defs:  make(map[*ast.Ident]gotypes.Object),
		Uses:  make(map[*ast.Ident]gotypes.Object),
	}
	tconf := gotypes.Config{
		Importer: importer.Default(),
		Error:    func(error) {},
	}
	tconf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	ctx.Types = info

	if err := e.dispatcher.RunPhase(dispatch.PhaseLate, ctx, resolver, table); err != nil {
		res.Err = err
		return res
	}

	res.Diagnostics = sink.Diagnostics()
	for _, v := range resolver.Violations() {
		res.Diagnostics = append(res.Diagnostics, tt.Diagnostic{
			Lint:     ForbidOverrideLint,
			Category: string(registry.Correctness),
			Severity: tt.LevelDeny,
			Span:     v.Span,
			Message:  v.Message(),
		})
	}
	e.sortDiagnostics(res.Diagnostics)
	return res
}

// sortDiagnostics orders findings by span start, breaking ties by lint
// registration order. This ordering is part of the user-visible contract.
func (e *Engine) sortDiagnostics(diags []tt.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Span.Start.Offset != diags[j].Span.Start.Offset {
			return diags[i].Span.Start.Offset < diags[j].Span.Start.Offset
		}
		return e.ranks[diags[i].Lint] < e.ranks[diags[j].Lint]
	})
}

func (e *Engine) category(lint string) string {
	if meta, ok := e.reg.Lookup(lint); ok {
		return string(meta.Category)
	}
	return ""
}

// Fix applies the machine-applicable suggestions for one file in place.
// Returns the number of edits applied; conflict errors skip the file.
func (e *Engine) Fix(filename string) (int, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	res := e.RunSource(filename, src)
	if res.Err != nil {
		return 0, res.Err
	}

	f := fixer.New()
	edits := f.Collect(res.Diagnostics)
	if len(edits) == 0 {
		return 0, nil
	}
	fixed, err := f.Apply(filename, src, res.Diagnostics)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filename, fixed, 0o644); err != nil {
		return 0, err
	}
	return len(edits), nil
}

// Analyze adapts the engine to the fixer's re-analysis hook for
// idempotence verification.
func (e *Engine) Analyze(filename string, src []byte) ([]tt.Diagnostic, error) {
	res := e.RunSource(filename, src)
	return res.Diagnostics, res.Err
}

// SourceCode stores the lines of a file for excerpt rendering.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode loads a file as lines.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits source text into lines.
func NewSourceCode(content []byte) *SourceCode {
	var lines []string
	start := 0
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, string(content[start:i]))
			start = i + 1
		}
	}
	lines = append(lines, string(content[start:]))
	return &SourceCode{Lines: lines}
}
