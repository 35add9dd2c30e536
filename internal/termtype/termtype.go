// Package termtype builds the global term-type table of spec §4.3: for
// every term, it merges the at-most-one general type, every language-tagged
// concrete realization, and every declaration body into one TermTypes
// record, then records that record against every expression node that
// refers to the term.
//
// The per-module bucketing step is modeled on the teacher's
// Parser.collectStructs (internal/parser/parser.go), which walks a file's
// declarations and sorts each into the bucket its concrete AST shape
// belongs to (generic alias / slice alias / struct) before anything is
// merged; here the buckets are signatures/sources/declarations and the AST
// shape is spec §3's Expr sum instead of go/ast.
package termtype

import (
	"fmt"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/diagnostics"
)

// Realization is one concrete, language-tagged signature together with the
// source declaration it must be backed by.
type Realization struct {
	Lang    string
	Type    *ast.Type
	Props   map[string]string
	Path    string
	Remote  ast.EVar
}

// TermTypes bundles everything known about one term within a scope. Module
// is the module the term's signatures/sources/declarations were collected
// from (not the importer that may see it under an alias) — manifold
// construction needs this to resolve the free variables of a declaration's
// body in the scope it was written in, not the scope it was called from.
type TermTypes struct {
	General  *ast.Type
	Concrete []Realization
	Decls    []ast.ExprI
	Module   ast.MVar
}

// Table is the frozen nodeId -> TermTypes side table plus, for convenience,
// the per-module/per-term merged records the table was built from.
type Table struct {
	byModuleTerm map[ast.MVar]map[ast.EVar]*TermTypes
	byNode       map[int]*TermTypes
}

// Lookup returns the merged TermTypes recorded for a given expression node.
func (t *Table) Lookup(nodeIndex int) (*TermTypes, bool) {
	tt, ok := t.byNode[nodeIndex]
	return tt, ok
}

// Resolve looks up a term by name within a module, following the module's
// import aliases the way Builder.resolveIdentType falls through local ->
// alias -> external lookups in the teacher.
func (t *Table) Resolve(module ast.MVar, name ast.EVar) (*TermTypes, bool) {
	tt, ok := t.byModuleTerm[module][name]
	return tt, ok
}

// AllRealizations returns every concrete realization recorded anywhere in
// the table, deduplicated by the TermTypes record they came from (import
// joining can make the same record reachable under several module/name
// pairs). Used by the serialization planner, which needs every
// language-tagged signature in the whole program rather than one term at a
// time.
func (t *Table) AllRealizations() []Realization {
	seen := make(map[*TermTypes]bool)
	var out []Realization
	for _, terms := range t.byModuleTerm {
		for _, tt := range terms {
			if seen[tt] {
				continue
			}
			seen[tt] = true
			out = append(out, tt.Concrete...)
		}
	}
	return out
}

type bucket struct {
	general  *ast.Type
	concrete []Realization
	decls    []ast.ExprI
	sources  map[ast.EVar][]SourceInfo
}

// SourceInfo is one source declaration backing a concrete signature.
type SourceInfo struct {
	Lang string
	Path string
}

func newBucket() *bucket {
	return &bucket{sources: make(map[ast.EVar][]SourceInfo)}
}

// Build walks every module's body, partitions per-term items into
// signatures/sources/declarations, merges them, joins across the resolved
// import graph, and freezes the per-node lookup table.
func Build(g *dag.Graph) (*Table, error) {
	var coll diagnostics.Collector

	local := make(map[ast.MVar]map[ast.EVar]*bucket, len(g.Modules))
	for name, m := range g.Modules {
		buckets := make(map[ast.EVar]*bucket)
		get := func(n ast.EVar) *bucket {
			b, ok := buckets[n]
			if !ok {
				b = newBucket()
				buckets[n] = b
			}
			return b
		}

		for _, item := range m.Body {
			switch n := item.Node.(type) {
			case ast.SignatureDecl:
				b := get(n.Name)
				if n.Lang == "" {
					if b.general != nil {
						coll.Add(diagnostics.At(diagnostics.KindSignatureMerge, diagnostics.ReasonMultipleGeneralTypes, name, item.Index,
							"term %s has more than one general type in this scope", n.Name))
						continue
					}
					b.general = n.Type
				} else {
					b.concrete = append(b.concrete, Realization{Lang: n.Lang, Type: n.Type, Props: n.Props, Remote: n.Name})
				}
			case ast.SourceDecl:
				for _, rem := range n.Remotes {
					b := get(rem.Alias)
					b.sources[rem.Alias] = append(b.sources[rem.Alias], SourceInfo{Lang: n.Lang, Path: n.Path})
				}
			case ast.ValueDecl:
				b := get(n.Name)
				b.decls = append(b.decls, item)
			}
		}
		local[name] = buckets
	}

	merged := make(map[ast.MVar]map[ast.EVar]*TermTypes, len(local))
	for name, buckets := range local {
		out := make(map[ast.EVar]*TermTypes, len(buckets))
		for term, b := range buckets {
			for i, c := range b.concrete {
				if _, ok := b.sources[term]; !ok {
					coll.Add(diagnostics.New(diagnostics.KindSignatureMerge, diagnostics.ReasonConcreteWithoutSource, name,
						"term %s has a concrete %s signature with no matching source", term, c.Lang))
				} else {
					b.concrete[i].Path = b.sources[term][0].Path
				}
			}
			out[term] = &TermTypes{General: b.general, Concrete: b.concrete, Decls: b.decls, Module: name}
		}
		merged[name] = out
	}
	if err := coll.Err(); err != nil {
		return nil, err
	}

	joined, err := joinImports(g, merged)
	if err != nil {
		return nil, err
	}

	byNode := make(map[int]*TermTypes)
	for name, m := range g.Modules {
		for _, item := range m.Body {
			indexNode(item, name, joined, byNode)
		}
	}

	return &Table{byModuleTerm: joined, byNode: byNode}, nil
}

// joinImports merges each module's local TermTypes with the terms declared
// locally in each module it imports directly, keyed by the importer's local
// alias. A term that an imported module itself imports and re-exports is
// not carried on to the importer.
func joinImports(g *dag.Graph, local map[ast.MVar]map[ast.EVar]*TermTypes) (map[ast.MVar]map[ast.EVar]*TermTypes, error) {
	out := make(map[ast.MVar]map[ast.EVar]*TermTypes, len(local))
	for name, terms := range local {
		copyTerms := make(map[ast.EVar]*TermTypes, len(terms))
		for k, v := range terms {
			copyTerms[k] = v
		}
		out[name] = copyTerms
	}

	var coll diagnostics.Collector
	for mname, edges := range g.Edges {
		for _, e := range edges {
			for _, pair := range e.Aliases {
				tt, ok := local[e.Module][pair.Remote]
				if !ok {
					continue
				}
				if existing, already := out[mname][pair.Local]; already && existing != tt {
					merged, err := mergeGeneral(existing, tt)
					if err != nil {
						coll.Add(diagnostics.New(diagnostics.KindSignatureMerge, diagnostics.ReasonIncompatibleGeneral, mname,
							"term %s: %v", pair.Local, err))
						continue
					}
					out[mname][pair.Local] = merged
				} else {
					out[mname][pair.Local] = tt
				}
			}
		}
	}
	if err := coll.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeGeneral combines two TermTypes records whose terms were joined
// through different import paths, unifying their general types structurally
// (equal variables pass through, existentials absorb non-existentials,
// function/applied/record forms recurse componentwise; any other mismatch
// is an IncompatibleGeneralType).
func mergeGeneral(a, b *TermTypes) (*TermTypes, error) {
	g, err := unify(a.General, b.General)
	if err != nil {
		return nil, err
	}
	return &TermTypes{
		General:  g,
		Concrete: append(append([]Realization{}, a.Concrete...), b.Concrete...),
		Decls:    append(append([]ast.ExprI{}, a.Decls...), b.Decls...),
		Module:   a.Module,
	}, nil
}

func unify(a, b *ast.Type) (*ast.Type, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	if a.Kind == ast.KindExistential {
		return b, nil
	}
	if b.Kind == ast.KindExistential {
		return a, nil
	}
	if a.Kind == ast.KindVar && b.Kind == ast.KindVar {
		if a.Var == b.Var {
			return a, nil
		}
		return nil, fmt.Errorf("incompatible type variables %s and %s", a.Var, b.Var)
	}
	if a.Kind != b.Kind {
		return nil, fmt.Errorf("incompatible types %s and %s", ast.PrintType(a), ast.PrintType(b))
	}
	switch a.Kind {
	case ast.KindFunction:
		if len(a.Params) != len(b.Params) {
			return nil, fmt.Errorf("incompatible arity: %s and %s", ast.PrintType(a), ast.PrintType(b))
		}
		params := make([]*ast.Type, len(a.Params))
		for i := range a.Params {
			p, err := unify(a.Params[i], b.Params[i])
			if err != nil {
				return nil, err
			}
			params[i] = p
		}
		result, err := unify(a.Result, b.Result)
		if err != nil {
			return nil, err
		}
		return ast.NewFunction(params, result), nil
	case ast.KindApp:
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return nil, fmt.Errorf("incompatible types %s and %s", ast.PrintType(a), ast.PrintType(b))
		}
		args := make([]*ast.Type, len(a.Args))
		for i := range a.Args {
			x, err := unify(a.Args[i], b.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = x
		}
		return ast.NewApp(a.Name, args...), nil
	case ast.KindRecord:
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return nil, fmt.Errorf("incompatible types %s and %s", ast.PrintType(a), ast.PrintType(b))
		}
		fields := make([]ast.RecordField, len(a.Fields))
		for i := range a.Fields {
			if a.Fields[i].Key != b.Fields[i].Key {
				return nil, fmt.Errorf("incompatible record fields in %s and %s", ast.PrintType(a), ast.PrintType(b))
			}
			ty, err := unify(a.Fields[i].Type, b.Fields[i].Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.RecordField{Key: a.Fields[i].Key, Type: ty}
		}
		return ast.NewRecord(a.Name, a.RecordParams, fields), nil
	case ast.KindForall:
		if a.Bound != b.Bound {
			return nil, fmt.Errorf("incompatible quantifiers in %s and %s", ast.PrintType(a), ast.PrintType(b))
		}
		body, err := unify(a.Body, b.Body)
		if err != nil {
			return nil, err
		}
		return ast.NewForall(a.Bound, body), nil
	default:
		return nil, fmt.Errorf("incompatible types %s and %s", ast.PrintType(a), ast.PrintType(b))
	}
}

// indexNode records tt for every Var reference within item, recursing into
// sub-expressions; lambda parameters, declaration LHS and where-clause
// names temporarily shadow the looked-up term for the body they introduce,
// mirroring the teacher's delete-then-defer-restore binding discipline in
// Builder.populateFields (internal/parser/builder.go's `resolving` guard,
// generalized here to real lexical shadowing rather than cycle avoidance).
func indexNode(item ast.ExprI, module ast.MVar, table map[ast.MVar]map[ast.EVar]*TermTypes, out map[int]*TermTypes) {
	shadow := map[ast.EVar]bool{}
	walk(item, module, table, out, shadow)
}

func walk(item ast.ExprI, module ast.MVar, table map[ast.MVar]map[ast.EVar]*TermTypes, out map[int]*TermTypes, shadow map[ast.EVar]bool) {
	switch n := item.Node.(type) {
	case ast.Var:
		if !shadow[n.Name] {
			if tt, ok := table[module][n.Name]; ok {
				out[item.Index] = tt
			}
		}
	case ast.App:
		walk(n.Fn, module, table, out, shadow)
		for _, a := range n.Args {
			walk(a, module, table, out, shadow)
		}
	case ast.Lambda:
		child := cloneShadow(shadow)
		for _, p := range n.Params {
			child[p] = true
		}
		walk(n.Body, module, table, out, child)
	case ast.ValueDecl:
		child := cloneShadow(shadow)
		child[n.Name] = true
		for _, w := range n.Where {
			child[w.Name] = true
		}
		for _, w := range n.Where {
			walk(w.Body, module, table, out, child)
		}
		walk(n.Body, module, table, out, child)
	case ast.Accessor:
		walk(n.Target, module, table, out, shadow)
	case ast.Annotation:
		walk(n.Target, module, table, out, shadow)
	case ast.ListLit:
		for _, e := range n.Elems {
			walk(e, module, table, out, shadow)
		}
	case ast.TupleLit:
		for _, e := range n.Elems {
			walk(e, module, table, out, shadow)
		}
	case ast.RecordLit:
		for _, f := range n.Fields {
			walk(f.Value, module, table, out, shadow)
		}
	}
}

func cloneShadow(s map[ast.EVar]bool) map[ast.EVar]bool {
	out := make(map[ast.EVar]bool, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}
