package dispatch

import (
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"

	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/diag"
	"github.com/glintlabs/glint/internal/directive"
	"github.com/glintlabs/glint/internal/level"
	"github.com/glintlabs/glint/internal/registry"
	tt "github.com/glintlabs/glint/internal/types"
)

// Phase selects which tree representation a pass visits.
type Phase int

const (
	// PhaseEarly visits the raw syntax tree, before type resolution.
	PhaseEarly Phase = iota
	// PhaseLate visits the tree with go/types information attached.
	PhaseLate
)

// Rule is the capability every lint rule implements. A rule additionally
// implements one optional inspector interface per node kind it wants
// callbacks for; unhandled kinds are never invoked.
type Rule interface {
	Meta() registry.Lint
}

// Per-node-kind inspector capabilities.
type (
	ExprInspector interface {
		Rule
		InspectExpr(ctx *Context, expr ast.Expr)
	}
	StmtInspector interface {
		Rule
		InspectStmt(ctx *Context, stmt ast.Stmt)
	}
	DeclInspector interface {
		Rule
		InspectDecl(ctx *Context, decl ast.Decl)
	}
	TypeInspector interface {
		Rule
		InspectType(ctx *Context, typ ast.Expr)
	}
	CommentInspector interface {
		Rule
		InspectComment(ctx *Context, group *ast.CommentGroup)
	}
	// FileDoneInspector runs once at end of file, after the walk.
	FileDoneInspector interface {
		Rule
		FileDone(ctx *Context)
	}
)

// Pass is an ordered, named bundle of rules sharing one phase and one
// mutable scratch state object created fresh for every file walk.
type Pass struct {
	Name  string
	Phase Phase
	Rules []Rule
	// NewState builds the pass's scratch state at walk start; nil passes
	// get a nil state.
	NewState func() any
}

// Context is handed to every rule callback. Rules may read the tree and
// config, accumulate private state in State, and emit diagnostics through
// the sink; they must not mutate the tree.
type Context struct {
	Filename string
	Src      []byte
	Fset     *token.FileSet
	File     *ast.File
	// Types carries resolved type information in the late phase, nil in
	// the early phase.
	Types  *gotypes.Info
	Config *config.Config
	// State is the scratch state of the pass the current rule belongs to.
	State any

	sink *diag.Sink
}

// AttachSink wires the diagnostic sink rules emit through.
func (c *Context) AttachSink(s *diag.Sink) {
	c.sink = s
}

// Span builds a span for [pos, end) in the current file.
func (c *Context) Span(pos, end token.Pos) tt.Span {
	return tt.NewSpan(c.Fset, pos, end)
}

// SpanOf builds a span covering an entire node.
func (c *Context) SpanOf(node ast.Node) tt.Span {
	return c.Span(node.Pos(), node.End())
}

// Text returns the source text under a node.
func (c *Context) Text(node ast.Node) string {
	start := c.Fset.Position(node.Pos()).Offset
	end := c.Fset.Position(node.End()).Offset
	if start < 0 || end > len(c.Src) || start > end {
		return ""
	}
	return string(c.Src[start:end])
}

// Emit records a finding; a no-op when the lint is Allow here.
func (c *Context) Emit(lint string, span tt.Span, message string, opts ...diag.Option) {
	c.sink.Emit(lint, span, message, opts...)
}

// handler pairs a rule with the scratch state of its pass.
type handler struct {
	rule  Rule
	state *any
}

// Dispatcher owns the ordered pass list of one phase pair and routes tree
// nodes to interested rules. One dispatcher instance serves one engine
// context; per-file mutable state lives in run below.
type Dispatcher struct {
	reg    *registry.Registry
	passes []*Pass
}

func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// AddPass appends a pass. Registration order is a user-visible contract:
// it fixes the relative order diagnostics are emitted in when several
// lints fire on the same span.
func (d *Dispatcher) AddPass(p *Pass) {
	d.passes = append(d.passes, p)
}

// Passes returns the registered passes in order.
func (d *Dispatcher) Passes() []*Pass {
	return d.passes
}

// run is the per-file, per-phase walk state.
type run struct {
	ctx      *Context
	resolver *level.Resolver
	table    *directive.Table

	exprs    []handler
	stmts    []handler
	decls    []handler
	typs     []handler
	comments []handler
	dones    []handler
}

// RunPhase performs the single depth-first walk of one phase, invoking
// every interested, non-Allow rule per node. A panicking rule callback is
// converted into an error; the caller discards the file's diagnostics.
func (d *Dispatcher) RunPhase(
	phase Phase,
	ctx *Context,
	resolver *level.Resolver,
	table *directive.Table,
) (err error) {
	r := &run{ctx: ctx, resolver: resolver, table: table}

	for _, p := range d.passes {
		if p.Phase != phase {
			continue
		}
		var state any
		if p.NewState != nil {
			state = p.NewState()
		}
		// All handlers of one pass share the pass's scratch state.
		box := &state
		for _, rule := range p.Rules {
			if h, ok := rule.(ExprInspector); ok {
				r.exprs = append(r.exprs, handler{h, box})
			}
			if h, ok := rule.(StmtInspector); ok {
				r.stmts = append(r.stmts, handler{h, box})
			}
			if h, ok := rule.(DeclInspector); ok {
				r.decls = append(r.decls, handler{h, box})
			}
			if h, ok := rule.(TypeInspector); ok {
				r.typs = append(r.typs, handler{h, box})
			}
			if h, ok := rule.(CommentInspector); ok {
				r.comments = append(r.comments, handler{h, box})
			}
			if h, ok := rule.(FileDoneInspector); ok {
				r.dones = append(r.dones, handler{h, box})
			}
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: rule callback panicked on %s: %v", ctx.Filename, rec)
		}
	}()

	resolver.Enter(table.File())
	defer resolver.Leave()

	for _, cg := range ctx.File.Comments {
		r.dispatchComment(cg)
	}

	ast.Walk(r, ctx.File)

	for _, h := range r.dones {
		r.invoke(h, func() {
			h.rule.(FileDoneInspector).FileDone(r.ctx)
		})
	}
	return nil
}

// Visit implements ast.Visitor: scope directives are pushed on node entry
// and popped when ast.Walk signals the subtree is done (nil node).
func (r *run) Visit(node ast.Node) ast.Visitor {
	if node == nil {
		r.resolver.Leave()
		return nil
	}
	r.resolver.Enter(r.table.At(node))
	r.dispatch(node)
	return r
}

func (r *run) dispatch(node ast.Node) {
	switch n := node.(type) {
	case *ast.ArrayType, *ast.StructType, *ast.FuncType, *ast.InterfaceType, *ast.MapType, *ast.ChanType:
		typ := n.(ast.Expr)
		for _, h := range r.typs {
			r.invoke(h, func() {
				h.rule.(TypeInspector).InspectType(r.ctx, typ)
			})
		}
	case ast.Expr:
		for _, h := range r.exprs {
			r.invoke(h, func() {
				h.rule.(ExprInspector).InspectExpr(r.ctx, n)
			})
		}
	case ast.Stmt:
		for _, h := range r.stmts {
			r.invoke(h, func() {
				h.rule.(StmtInspector).InspectStmt(r.ctx, n)
			})
		}
	case ast.Decl:
		for _, h := range r.decls {
			r.invoke(h, func() {
				h.rule.(DeclInspector).InspectDecl(r.ctx, n)
			})
		}
	}
}

func (r *run) dispatchComment(group *ast.CommentGroup) {
	for _, h := range r.comments {
		r.invoke(h, func() {
			h.rule.(CommentInspector).InspectComment(r.ctx, group)
		})
	}
}

// invoke calls one rule hook with its pass state wired into the context,
// skipping rules that are Allow at the current position.
func (r *run) invoke(h handler, call func()) {
	if r.resolver.Effective(h.rule.Meta().ID) == tt.LevelAllow {
		return
	}
	prev := r.ctx.State
	r.ctx.State = *h.state
	call()
	*h.state = r.ctx.State
	r.ctx.State = prev
}
