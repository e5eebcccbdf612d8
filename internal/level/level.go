package level

import (
	"fmt"

	version "github.com/hashicorp/go-version"

	"github.com/glintlabs/glint/internal/directive"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// Violation records a directive that tried to lower a forbidden lint.
// It is a reportable finding, not an engine error.
type Violation struct {
	Lint string
	Span tt.Span
}

func (v Violation) Message() string {
	return fmt.Sprintf("lint %q is forbidden by an enclosing scope and cannot be lowered", v.Lint)
}

type frame struct {
	lint  string
	level tt.Level
	// prevForbidden restores the forbid flag on pop.
	prevForbidden bool
}

// Resolver computes the effective level of a lint at the current tree
// position. Precedence, weakest first: category/lint default, command-line
// override, source directive (inner directives win). The MSRV gate and the
// forbid invariant apply on top of all of these.
type Resolver struct {
	reg      *registry.Registry
	cmdline  map[string]tt.Level
	msrv     *version.Version
	stack    []frame
	marks    []int
	current  map[string]tt.Level
	forbid   map[string]bool
	gated    map[string]bool
	violated []Violation
	// reported dedupes violations: the early and late walks enter the
	// same directive scopes.
	reported map[string]bool
}

// New builds a resolver for one file walk. cmdline holds per-lint overrides
// from flags or the run manifest; msrv is the configured minimum supported
// Go version (empty to disable the gate).
func New(reg *registry.Registry, cmdline map[string]tt.Level, msrv string) *Resolver {
	r := &Resolver{
		reg:      reg,
		cmdline:  cmdline,
		current:  make(map[string]tt.Level),
		forbid:   make(map[string]bool),
		gated:    make(map[string]bool),
		reported: make(map[string]bool),
	}
	if msrv != "" {
		if v, err := version.NewVersion(msrv); err == nil {
			r.msrv = v
		}
	}
	for _, id := range reg.All() {
		lint, _ := reg.Lookup(id)
		lvl := lint.DefaultLevel()
		if override, ok := cmdline[id]; ok {
			lvl = override
		}
		r.current[id] = lvl
		r.forbid[id] = lvl == tt.LevelForbid
		r.gated[id] = r.gateFails(lint)
	}
	return r
}

// gateFails reports whether the msrv gate suppresses the lint: the code
// targets a Go version older than the lint requires.
func (r *Resolver) gateFails(lint registry.Lint) bool {
	if lint.MinGoVersion == "" || r.msrv == nil {
		return false
	}
	required, err := version.NewVersion(lint.MinGoVersion)
	if err != nil {
		return false
	}
	return r.msrv.LessThan(required)
}

// Enter pushes the directives attached to a scope. Group names expand to
// the member set registered at engine construction. Attempts to lower a
// forbidden lint are recorded as violations and otherwise ignored.
// Every Enter must be paired with a Leave.
func (r *Resolver) Enter(settings []directive.Setting) {
	mark := len(r.stack)
	for _, s := range settings {
		lints, ok := r.reg.Expand(s.Target)
		if !ok {
			continue
		}
		for _, id := range lints {
			if r.forbid[id] && s.Level < tt.LevelDeny {
				key := id + "@" + s.Span.String()
				if !r.reported[key] {
					r.reported[key] = true
					r.violated = append(r.violated, Violation{Lint: id, Span: s.Span})
				}
				continue
			}
			r.stack = append(r.stack, frame{
				lint:          id,
				level:         r.current[id],
				prevForbidden: r.forbid[id],
			})
			r.current[id] = s.Level
			if s.Level == tt.LevelForbid {
				r.forbid[id] = true
			}
		}
	}
	r.marks = append(r.marks, mark)
}

// Leave pops the frames pushed by the matching Enter.
func (r *Resolver) Leave() {
	if len(r.marks) == 0 {
		return
	}
	mark := r.marks[len(r.marks)-1]
	r.marks = r.marks[:len(r.marks)-1]
	for i := len(r.stack) - 1; i >= mark; i-- {
		f := r.stack[i]
		r.current[f.lint] = f.level
		r.forbid[f.lint] = f.prevForbidden
	}
	r.stack = r.stack[:mark]
}

// Effective returns the level of a lint at the current position. Lints
// suppressed by the msrv gate are Allow regardless of directives.
func (r *Resolver) Effective(id string) tt.Level {
	if r.gated[id] {
		return tt.LevelAllow
	}
	if lvl, ok := r.current[id]; ok {
		return lvl
	}
	return tt.LevelAllow
}

// Violations returns every forbid-lowering attempt seen during the walk.
func (r *Resolver) Violations() []Violation {
	return r.violated
}
