// Package manifold builds the call-site-indexed manifold graph of spec
// §4.4: starting from each exported root declaration, it walks the
// declaration's application chain, allocating one manifold per call site
// and classifying each argument as a bound name, a free nest, inline data,
// or a nested call.
//
// The walk is grounded on the teacher's Builder.BuildAll/ensureWorkingType
// (internal/parser/builder.go), which assigns each discovered struct a slot
// in a flat byName map rather than a nested tree and then fills in its
// fields in a second pass; here the map is keyed by a monotonic call-site ID
// instead of a struct name, and the "field" is an application argument.
package manifold

import (
	"fmt"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/diagnostics"
	"github.com/morloc-lang/morloc/internal/termtype"
)

// ArgKind classifies one argument of a call site, per spec §3's Argument
// sum.
type ArgKind int

const (
	// ArgName is a reference to one of the enclosing manifold's bound
	// variables, passed through unchanged.
	ArgName ArgKind = iota
	// ArgNest is a free variable: one bound further up the call chain,
	// threaded through as a closure value rather than a fresh argument.
	ArgNest
	// ArgData is an inline literal (number, string, bool, list, tuple,
	// record) with no term reference.
	ArgData
	// ArgCall is a nested application, realized as its own manifold and
	// referenced here by ID.
	ArgCall
	// ArgPositional is a top-of-tree argument with no supplying
	// expression: it is read from the nexus's own CLI arguments at
	// position Position.
	ArgPositional
)

func (k ArgKind) String() string {
	switch k {
	case ArgName:
		return "Name"
	case ArgNest:
		return "Nest"
	case ArgData:
		return "Data"
	case ArgCall:
		return "Call"
	case ArgPositional:
		return "Positional"
	default:
		return "Unknown"
	}
}

// Argument is one classified position in a manifold's call.
type Argument struct {
	Kind     ArgKind
	Name     ast.EVar  // ArgName, ArgNest
	Data     ast.ExprI // ArgData
	CallID   int       // ArgCall
	Position int       // ArgPositional
}

// Manifold is one node of the call-site graph: see SPEC_FULL.md's "Manifold
// field semantics" section for how MorlocName and Composition divide the
// work of naming the call versus naming the exported declaration it serves.
type Manifold struct {
	ID           int
	CallIndex    int
	AbstractType *ast.Type
	Realizations []termtype.Realization
	MorlocName   ast.EVar
	Exported     bool
	Called       bool
	Defined      bool
	Composition  ast.EVar
	// BoundVars is the owning root declaration's full lambda parameter
	// list, threaded through unchanged to every manifold in the chain
	// (not just the root itself). A nested manifold has no lambda of its
	// own — §4.4 rejects lambda arguments outright — so every manifold in
	// one root's expansion shares exactly the root's scope. Pool emission
	// relies on this: a generated manifold function's parameters are
	// always this same list, in this same order, so a Call argument can
	// be rendered as a plain forwarding call and a cross-language Trans
	// stub can pack the same positions onto argv without knowing anything
	// about the manifold it is calling into beyond its ID.
	BoundVars []ast.EVar
	Args      []Argument
}

// Builder accumulates manifolds across every exported root declaration of a
// compilation, sharing one monotonic ID counter the way spec §4.4 requires
// ("Manifold IDs are assigned once ... and never reused").
//
// resolving names the declarations currently being expanded, the same
// re-entry guard as the teacher's Builder.populateFields
// (internal/parser/builder.go), which marks b.resolving[wt.Name] before
// recursing into a WorkingType's own fields and returns early on re-entry
// instead of looping forever on a cyclic alias. Here a "field" is a call
// to another declared term instead of a struct field's type.
type Builder struct {
	table       *termtype.Table
	defaultLang string
	nextID      int
	all         []*Manifold
	resolving   map[ast.EVar]bool
}

// NewBuilder constructs a Builder. defaultLang is stored but not read while
// expanding: a manifold whose term has no concrete realization (a bare
// literal or a bare bound-parameter passthrough) keeps empty Realizations,
// and poolgen, nexusgen and the compiler apply the default language to it.
func NewBuilder(table *termtype.Table, defaultLang string) *Builder {
	return &Builder{table: table, defaultLang: defaultLang, resolving: make(map[ast.EVar]bool)}
}

// All returns every manifold built so far, in allocation order.
func (b *Builder) All() []*Manifold { return b.all }

// BuildRoot expands the exported root declaration named `name` in `module`
// into one or more manifolds, returning the outermost one.
func (b *Builder) BuildRoot(module ast.MVar, name ast.EVar) (*Manifold, error) {
	tt, ok := b.table.Resolve(module, name)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindTreeShape, diagnostics.ReasonUnboundVariable, module,
			"exported term %q has no declaration or signature", name)
	}
	if len(tt.Decls) == 0 {
		if len(tt.Concrete) == 0 {
			return nil, diagnostics.New(diagnostics.KindTreeShape, diagnostics.ReasonNonLambdaRoot, module,
				"exported term %q has no declaration body to compile", name)
		}
		// A sourced term exported with no declaration of its own is a direct
		// re-export: one manifold calling the term, its arguments read
		// positionally from the nexus.
		arity := tt.Concrete[0].Type.Arity()
		if tt.General != nil {
			arity = tt.General.Arity()
		}
		m := &Manifold{ID: b.nextID, AbstractType: tt.General, Realizations: tt.Concrete, MorlocName: name, Composition: name}
		b.nextID++
		for i := 0; i < arity; i++ {
			m.Args = append(m.Args, Argument{Kind: ArgPositional, Position: i})
		}
		b.all = append(b.all, m)
		return m, nil
	}
	decl, ok := tt.Decls[len(tt.Decls)-1].Node.(ast.ValueDecl)
	if !ok {
		return nil, diagnostics.Internal("declaration bucket for %q holds a non-ValueDecl node", name)
	}

	declModule := tt.Module
	if declModule == "" {
		declModule = module
	}

	var params []ast.EVar
	body := decl.Body
	if lam, ok := decl.Body.Node.(ast.Lambda); ok {
		params = lam.Params
		body = lam.Body
	}

	shadow := map[ast.EVar]bool{}
	for _, p := range params {
		shadow[p] = true
	}

	if _, isApp := body.Node.(ast.App); !isApp {
		if _, isVar := body.Node.(ast.Var); !isVar {
			// A declaration whose body is a bare literal (no application,
			// no variable reference to borrow a source from) compiles to
			// a single manifold holding the literal as inline data, per
			// the "trivial export" edge case.
			id := b.nextID
			b.nextID++
			m := &Manifold{
				ID: id, CallIndex: body.Index, MorlocName: name, BoundVars: params,
				Defined: true, Args: []Argument{{Kind: ArgData, Data: body}},
			}
			b.all = append(b.all, m)
			m.Composition = name
			return m, nil
		}
	}

	// name is "currently being expanded" for the whole walk below, so any
	// nested call that re-applies it - directly or through another
	// declaration's own body - is rejected rather than silently compiled.
	b.resolving[name] = true
	defer delete(b.resolving, name)

	m, err := b.expandBody(declModule, body, params, shadow, true)
	if err != nil {
		return nil, err
	}
	m.Composition = name
	m.BoundVars = params
	m.Defined = true
	return m, nil
}

// expandBody builds the manifold for one call site: body is the expression
// in callee position (coerced, if not already an App, into a zero-argument
// application of itself per §4.4's edge case), params/shadow describe the
// enclosing lambda's bound variables, and atRoot controls whether missing
// argument expressions synthesize Positional arguments (true only for the
// manifold produced directly from a root declaration's own body).
func (b *Builder) expandBody(module ast.MVar, body ast.ExprI, params []ast.EVar, shadow map[ast.EVar]bool, atRoot bool) (*Manifold, error) {
	app, isApp := body.Node.(ast.App)
	if !isApp {
		app = ast.App{Fn: body, Args: nil}
	}

	fnVar, isVar := app.Fn.Node.(ast.Var)
	if !isVar {
		return nil, diagnostics.At(diagnostics.KindTreeShape, diagnostics.ReasonNonLambdaRoot, module, app.Fn.Index,
			"call site does not apply a named term")
	}

	id := b.nextID
	b.nextID++
	m := &Manifold{ID: id, CallIndex: body.Index, MorlocName: fnVar.Name, BoundVars: params}
	b.all = append(b.all, m)

	if shadow[fnVar.Name] {
		// The head of the application is itself a bound variable (e.g.
		// `id x = x`, coerced above into App{Fn: Var{x}}): there is no
		// term to borrow realizations or a general type from, so this
		// manifold is a pure passthrough, realized in the configured
		// default language.
		m.Defined = true
	} else {
		if b.resolving[fnVar.Name] {
			return nil, diagnostics.At(diagnostics.KindTreeShape, diagnostics.ReasonRecursiveDeclaration, module, app.Fn.Index,
				"declaration %q is invoked while it is still being expanded (self- or mutual recursion)", fnVar.Name)
		}
		tt, ok := b.table.Resolve(module, fnVar.Name)
		if !ok {
			return nil, diagnostics.At(diagnostics.KindTreeShape, diagnostics.ReasonUnboundVariable, module, app.Fn.Index,
				"%q is not in scope", fnVar.Name)
		}
		b.resolving[fnVar.Name] = true
		defer delete(b.resolving, fnVar.Name)

		// classifyArg below only walks the argument expressions of *this*
		// body, so a cycle hidden entirely inside fnVar.Name's own
		// declared body (two declared terms that only ever reference each
		// other by name, never as a nested call argument) would otherwise
		// never be visited. checkCallees closes that gap.
		if err := b.checkCallees(module, tt); err != nil {
			return nil, err
		}

		m.AbstractType = tt.General
		m.Realizations = tt.Concrete
		m.Defined = len(tt.Decls) > 0
	}

	if len(app.Args) == 0 && atRoot {
		for i := range params {
			m.Args = append(m.Args, Argument{Kind: ArgPositional, Position: i})
		}
		return m, nil
	}

	for _, argExpr := range app.Args {
		arg, err := b.classifyArg(module, argExpr, params, shadow)
		if err != nil {
			return nil, err
		}
		m.Args = append(m.Args, arg)
	}
	return m, nil
}

// classifyArg classifies a single application argument per §4.4: a bound
// variable is Name, a lambda is rejected outright (LambdaArgumentUnsupported
// per the resolved Open Question), a free variable reference to a declared
// or sourced term recurses into a fresh call-site manifold (Call), and
// everything else is inline Data.
func (b *Builder) classifyArg(module ast.MVar, argExpr ast.ExprI, params []ast.EVar, shadow map[ast.EVar]bool) (Argument, error) {
	switch n := argExpr.Node.(type) {
	case ast.Lambda:
		return Argument{}, diagnostics.At(diagnostics.KindTreeShape, diagnostics.ReasonLambdaArgument, module, argExpr.Index,
			"a lambda cannot appear as a call argument")
	case ast.Var:
		if shadow[n.Name] {
			return Argument{Kind: ArgName, Name: n.Name}, nil
		}
		// A free variable naming a term in scope: if it is itself called
		// with no arguments (a bare reference used as a value, e.g.
		// passing a nullary composition by name) it still recurses as a
		// nested call so its own realizations are tracked; a variable
		// that does not resolve at all is a Nest reference to an
		// outer-scope closure value instead of a hard error, since the
		// term-type table only tracks named terms, not every lexical
		// binding a parser might introduce via where-clauses elsewhere
		// in the tree.
		if _, ok := b.table.Resolve(module, n.Name); ok {
			child, err := b.expandBody(module, argExpr, params, shadow, false)
			if err != nil {
				return Argument{}, err
			}
			child.Called = true
			return Argument{Kind: ArgCall, CallID: child.ID}, nil
		}
		return Argument{Kind: ArgNest, Name: n.Name}, nil
	case ast.App:
		child, err := b.expandBody(module, argExpr, params, shadow, false)
		if err != nil {
			return Argument{}, err
		}
		child.Called = true
		return Argument{Kind: ArgCall, CallID: child.ID}, nil
	default:
		return Argument{Kind: ArgData, Data: argExpr}, nil
	}
}

// checkCallees walks the declared body backing tt — the term expandBody just
// resolved — looking for a free reference to any declaration currently in
// b.resolving. classifyArg only ever discovers a cycle that shows up as a
// nested call argument in the body being expanded right now; two
// declarations that call each other only by name in tail position
// (`f x = g x` / `g x = f x`) never nest one inside the other's argument
// list, so without this second walk into the callee's own body the cycle
// would go undetected and fall through to a pure passthrough manifold.
//
// declModule follows TermTypes.Module (falling back to the calling module)
// the same way BuildRoot does, so a callee's free variables resolve in the
// scope its declaration was written in rather than the scope it was called
// from.
func (b *Builder) checkCallees(module ast.MVar, tt *termtype.TermTypes) error {
	if len(tt.Decls) == 0 {
		return nil
	}
	declModule := tt.Module
	if declModule == "" {
		declModule = module
	}
	decl, ok := tt.Decls[len(tt.Decls)-1].Node.(ast.ValueDecl)
	if !ok {
		return diagnostics.Internal("declaration bucket for a resolved term holds a non-ValueDecl node")
	}

	var params []ast.EVar
	body := decl.Body
	if lam, ok := decl.Body.Node.(ast.Lambda); ok {
		params = lam.Params
		body = lam.Body
	}
	bound := map[ast.EVar]bool{}
	for _, p := range params {
		bound[p] = true
	}

	for _, callee := range freeCallees(body, bound) {
		if b.resolving[callee] {
			return diagnostics.At(diagnostics.KindTreeShape, diagnostics.ReasonRecursiveDeclaration, declModule, body.Index,
				"declaration %q is mutually recursive with %q", decl.Name, callee)
		}
		next, ok := b.table.Resolve(declModule, callee)
		if !ok || len(next.Decls) == 0 {
			continue
		}
		b.resolving[callee] = true
		err := b.checkCallees(declModule, next)
		delete(b.resolving, callee)
		if err != nil {
			return err
		}
	}
	return nil
}

// freeCallees collects every Var reference in e not covered by bound,
// recursing the same shape termtype.walk uses to index free variables
// against the term-type table, but returning names instead of side-table
// entries.
func freeCallees(e ast.ExprI, bound map[ast.EVar]bool) []ast.EVar {
	var out []ast.EVar
	var walk func(e ast.ExprI, bound map[ast.EVar]bool)
	walk = func(e ast.ExprI, bound map[ast.EVar]bool) {
		switch n := e.Node.(type) {
		case ast.Var:
			if !bound[n.Name] {
				out = append(out, n.Name)
			}
		case ast.App:
			walk(n.Fn, bound)
			for _, a := range n.Args {
				walk(a, bound)
			}
		case ast.Lambda:
			child := make(map[ast.EVar]bool, len(bound)+len(n.Params))
			for k, v := range bound {
				child[k] = v
			}
			for _, p := range n.Params {
				child[p] = true
			}
			walk(n.Body, child)
		case ast.Accessor:
			walk(n.Target, bound)
		case ast.Annotation:
			walk(n.Target, bound)
		case ast.ListLit:
			for _, el := range n.Elems {
				walk(el, bound)
			}
		case ast.TupleLit:
			for _, el := range n.Elems {
				walk(el, bound)
			}
		case ast.RecordLit:
			for _, f := range n.Fields {
				walk(f.Value, bound)
			}
		}
	}
	walk(e, bound)
	return out
}

// ExportSet reports whether name is exported from the root module, the
// final piece of §4.4's "marked exported iff its morloc name is in the root
// module's export set" check applied at the Composition (declaration)
// level rather than the call-site (MorlocName) level — see
// SPEC_FULL.md's manifold field semantics note.
func ExportSet(root *ast.Module) map[ast.EVar]bool {
	out := make(map[ast.EVar]bool, len(root.Exports))
	for _, e := range root.Exports {
		out[e] = true
	}
	return out
}

// BuildAll expands every exported declaration of the root module, marking
// each root manifold Exported, and returns the full accumulated graph.
func BuildAll(g *dag.Graph, table *termtype.Table, defaultLang string) ([]*Manifold, error) {
	root, ok := g.Modules[g.Root]
	if !ok {
		return nil, diagnostics.Internal("resolved graph has no root module %q", g.Root)
	}
	exports := ExportSet(root)

	b := NewBuilder(table, defaultLang)
	var coll diagnostics.Collector
	for _, name := range root.Exports {
		m, err := b.BuildRoot(g.Root, name)
		if err != nil {
			coll.Add(asDiagnostic(err))
			continue
		}
		m.Exported = exports[m.Composition]
	}
	if err := coll.Err(); err != nil {
		return nil, err
	}
	return b.All(), nil
}

func asDiagnostic(err error) *diagnostics.Diagnostic {
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		return d
	}
	return diagnostics.Internal("%s", fmt.Sprintf("%v", err))
}
