package registry

import (
	"fmt"

	tt "github.com/glintlabs/glint/internal/types"
)

// Category groups lints by the kind of problem they report. Each category
// doubles as a lint group name for bulk level-setting.
type Category string

const (
	Correctness Category = "correctness"
	Style       Category = "style"
	Complexity  Category = "complexity"
	Performance Category = "performance"
	Pedantic    Category = "pedantic"
	Restriction Category = "restriction"
	Nursery     Category = "nursery"
)

// DefaultLevel returns the level a lint of this category starts at when
// neither configuration nor directives say otherwise.
func (c Category) DefaultLevel() tt.Level {
	switch c {
	case Correctness:
		return tt.LevelDeny
	case Style, Complexity, Performance:
		return tt.LevelWarn
	default:
		return tt.LevelAllow
	}
}

// ParamKind is the declared type of a lint configuration parameter.
type ParamKind int

const (
	ParamBool ParamKind = iota
	ParamInt
	ParamString
	ParamStringSlice
)

func (k ParamKind) String() string {
	switch k {
	case ParamBool:
		return "bool"
	case ParamInt:
		return "int"
	case ParamString:
		return "string"
	case ParamStringSlice:
		return "list of strings"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// Param declares one configuration key a lint reads, with its type and the
// default used when no configuration scope sets it.
type Param struct {
	Key     string
	Kind    ParamKind
	Default any
	Doc     string
}

// Lint is the immutable metadata of one registered lint.
type Lint struct {
	ID       string
	Category Category
	// Default overrides the category default when non-nil.
	Default *tt.Level
	// Since is the engine version the lint first shipped in.
	Since string
	// MinGoVersion, when set, suppresses the lint for code targeting an
	// older Go version (the msrv gate).
	MinGoVersion string
	Params       []Param
	Doc          string
}

// DefaultLevel resolves the lint's own default, falling back to its category.
func (l Lint) DefaultLevel() tt.Level {
	if l.Default != nil {
		return *l.Default
	}
	return l.Category.DefaultLevel()
}

// Registry is the process-wide lint catalog. It is populated during engine
// construction and read-only once analysis begins.
type Registry struct {
	lints  map[string]Lint
	order  []string
	groups map[string][]string
}

func New() *Registry {
	return &Registry{
		lints:  make(map[string]Lint),
		groups: make(map[string][]string),
	}
}

// Register adds a lint to the catalog and to its category group.
// Duplicate ids are an error, not a panic.
func (r *Registry) Register(lint Lint) error {
	if lint.ID == "" {
		return fmt.Errorf("lint id must not be empty")
	}
	if _, exists := r.lints[lint.ID]; exists {
		return fmt.Errorf("lint %q is already registered", lint.ID)
	}
	r.lints[lint.ID] = lint
	r.order = append(r.order, lint.ID)
	r.groups[string(lint.Category)] = append(r.groups[string(lint.Category)], lint.ID)
	r.groups["all"] = append(r.groups["all"], lint.ID)
	return nil
}

// Lookup returns the metadata for a lint id.
func (r *Registry) Lookup(id string) (Lint, bool) {
	lint, ok := r.lints[id]
	return lint, ok
}

// All returns every registered lint id in registration order.
func (r *Registry) All() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// RegisterGroup declares a named alias expanding to a set of member lints.
// Members are resolved against the catalog at registration time; unknown
// members are an error.
func (r *Registry) RegisterGroup(name string, members []string) error {
	if _, exists := r.groups[name]; exists {
		return fmt.Errorf("lint group %q is already registered", name)
	}
	for _, id := range members {
		if _, ok := r.lints[id]; !ok {
			return fmt.Errorf("lint group %q names unknown lint %q", name, id)
		}
	}
	r.groups[name] = append([]string(nil), members...)
	return nil
}

// Group returns the member lints of a group name.
func (r *Registry) Group(name string) ([]string, bool) {
	members, ok := r.groups[name]
	return members, ok
}

// Expand resolves a directive target to lint ids: a lint id expands to
// itself, a group name to its members. Unknown names return false.
func (r *Registry) Expand(name string) ([]string, bool) {
	if _, ok := r.lints[name]; ok {
		return []string{name}, true
	}
	if members, ok := r.groups[name]; ok {
		return members, true
	}
	return nil, false
}

// Params returns the configuration keys declared by all registered lints,
// keyed by parameter key.
func (r *Registry) Params() map[string]Param {
	params := make(map[string]Param)
	for _, id := range r.order {
		for _, p := range r.lints[id].Params {
			params[p.Key] = p
		}
	}
	return params
}
