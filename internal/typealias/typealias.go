// Package typealias resolves `type` declarations transitively across the
// module DAG (spec §4.2): it gathers local alias definitions, reconciles
// conflicting definitions reached through different import paths, and
// substitutes alias applications in every type it is asked to desugar.
//
// Substitution's positional-argument/arity-mismatch handling mirrors the
// teacher's generic-parameter substitution over a WorkingType graph
// (internal/parser/builder.go's instantiateGeneric/substituteParamsInWT):
// there, a generic base struct's TypeParams are bound to concrete argument
// WorkingTypes positionally and rewritten through the field tree; here, a
// type alias's Params are bound to concrete argument Types positionally and
// rewritten through the type tree. The teacher tolerates an arity mismatch
// with a "T0, T1..." fallback; this package treats it as the hard
// BadTypeAliasParameters error the spec requires.
package typealias

import (
	"fmt"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/diagnostics"
)

// AliasDef is one `type` declaration's parameter list and body.
type AliasDef struct {
	Module ast.MVar
	Params []ast.TVar
	Body   *ast.Type
}

// Table holds, per module, the alias definitions visible for substitution
// (local declarations plus anything reconciled in from imports).
type Table struct {
	visible map[ast.MVar]map[string]*AliasDef
}

// Desugar builds a Table from every module's TypeAliasDecl nodes, rejecting
// self-recursive aliases and reconciling same-name aliases reached through
// more than one import path.
func Desugar(g *dag.Graph) (*Table, error) {
	var coll diagnostics.Collector

	local := make(map[ast.MVar]map[string]*AliasDef, len(g.Modules))
	for name, m := range g.Modules {
		defs := make(map[string]*AliasDef)
		for _, item := range m.Body {
			ta, ok := item.Node.(ast.TypeAliasDecl)
			if !ok {
				continue
			}
			if occursIn(ta.Name.Name, ta.Body) {
				coll.Add(diagnostics.At(diagnostics.KindTypeAlias, diagnostics.ReasonSelfRecursiveAlias, name, item.Index,
					"type %s is self-recursive", ta.Name.Name))
				continue
			}
			defs[ta.Name.Name] = &AliasDef{Module: name, Params: ta.Params, Body: ta.Body}
		}
		local[name] = defs
	}
	if err := coll.Err(); err != nil {
		return nil, err
	}

	visible := make(map[ast.MVar]map[string]*AliasDef, len(g.Modules))
	for name := range g.Modules {
		visible[name] = make(map[string]*AliasDef, len(local[name]))
		for k, v := range local[name] {
			visible[name][k] = v
		}
	}

	for mname, edges := range g.Edges {
		for _, e := range edges {
			for aliasName, def := range local[e.Module] {
				// The alias is visible under whatever local name the
				// importer chose, same as a term export (the dag's alias
				// map is reused here: a type name travels through the
				// same (remote, local) pairs as a term of the same name).
				localName := aliasName
				for _, p := range e.Aliases {
					if string(p.Remote) == aliasName {
						localName = string(p.Local)
						break
					}
				}
				if existing, ok := visible[mname][localName]; ok && existing.Module != def.Module {
					reconciled, err := reconcile(existing, def)
					if err != nil {
						coll.Add(diagnostics.New(diagnostics.KindTypeAlias, diagnostics.ReasonConflictingAlias, mname,
							"type %s: %v", localName, err))
						continue
					}
					visible[mname][localName] = reconciled
				} else if !ok {
					visible[mname][localName] = def
				}
			}
		}
	}
	if err := coll.Err(); err != nil {
		return nil, err
	}

	return &Table{visible: visible}, nil
}

// occursIn reports whether name appears anywhere within t, used to reject
// self-recursive aliases before any substitution is attempted.
func occursIn(name string, t *ast.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case ast.KindVar:
		return t.Var.Name == name
	case ast.KindForall:
		return occursIn(name, t.Body)
	case ast.KindExistential:
		for _, d := range t.Defaults {
			if occursIn(name, d) {
				return true
			}
		}
		return false
	case ast.KindFunction:
		for _, p := range t.Params {
			if occursIn(name, p) {
				return true
			}
		}
		return occursIn(name, t.Result)
	case ast.KindApp:
		if t.Name == name {
			return true
		}
		for _, a := range t.Args {
			if occursIn(name, a) {
				return true
			}
		}
		return false
	case ast.KindRecord:
		if t.Name == name {
			return true
		}
		for _, f := range t.Fields {
			if occursIn(name, f.Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// reconcile merges two definitions of the same alias name reached through
// different import paths by bidirectional subtyping under equal arity: each
// must structurally match the other once corresponding parameters are
// unified by position (alpha-equivalence), per spec §4.2.
func reconcile(a, b *AliasDef) (*AliasDef, error) {
	if len(a.Params) != len(b.Params) {
		return nil, fmt.Errorf("conflicting arity (%d vs %d)", len(a.Params), len(b.Params))
	}
	canonA := alphaRename(a.Body, a.Params)
	canonB := alphaRename(b.Body, b.Params)
	if !ast.Equal(canonA, canonB) {
		return nil, fmt.Errorf("incompatible definitions: %s vs %s", ast.PrintType(a.Body), ast.PrintType(b.Body))
	}
	return a, nil
}

// alphaRename substitutes each of params with a canonical positional
// variable (_0, _1, ...) so two definitions that differ only in bound
// parameter names compare equal.
func alphaRename(t *ast.Type, params []ast.TVar) *ast.Type {
	sub := make(map[string]*ast.Type, len(params))
	for i, p := range params {
		sub[p.Name] = ast.NewVar(ast.TVar{Name: fmt.Sprintf("_%d", i)})
	}
	return substituteVars(t, sub)
}

func substituteVars(t *ast.Type, sub map[string]*ast.Type) *ast.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case ast.KindVar:
		if r, ok := sub[t.Var.Name]; ok {
			return r
		}
		return t
	case ast.KindForall:
		return ast.NewForall(t.Bound, substituteVars(t.Body, sub))
	case ast.KindExistential:
		defaults := make([]*ast.Type, len(t.Defaults))
		for i, d := range t.Defaults {
			defaults[i] = substituteVars(d, sub)
		}
		return ast.NewExistential(t.Name, defaults...)
	case ast.KindFunction:
		params := make([]*ast.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = substituteVars(p, sub)
		}
		return ast.NewFunction(params, substituteVars(t.Result, sub))
	case ast.KindApp:
		args := make([]*ast.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substituteVars(a, sub)
		}
		return ast.NewApp(t.Name, args...)
	case ast.KindRecord:
		fields := make([]ast.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = ast.RecordField{Key: f.Key, Type: substituteVars(f.Type, sub)}
		}
		return ast.NewRecord(t.Name, t.RecordParams, fields)
	default:
		return t
	}
}

// Substitute recursively resolves every alias application in t that is
// visible from module, substituting arguments positionally and resolving
// existentials to their first default instantiation.
func (tbl *Table) Substitute(module ast.MVar, t *ast.Type) (*ast.Type, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Kind {
	case ast.KindVar:
		if def, ok := tbl.visible[module][t.Var.Name]; ok && len(def.Params) == 0 {
			return tbl.Substitute(module, def.Body)
		}
		return t, nil
	case ast.KindForall:
		body, err := tbl.Substitute(module, t.Body)
		if err != nil {
			return nil, err
		}
		return ast.NewForall(t.Bound, body), nil
	case ast.KindExistential:
		if len(t.Defaults) > 0 {
			return tbl.Substitute(module, t.Defaults[0])
		}
		return t, nil
	case ast.KindFunction:
		params := make([]*ast.Type, len(t.Params))
		for i, p := range t.Params {
			sp, err := tbl.Substitute(module, p)
			if err != nil {
				return nil, err
			}
			params[i] = sp
		}
		result, err := tbl.Substitute(module, t.Result)
		if err != nil {
			return nil, err
		}
		return ast.NewFunction(params, result), nil
	case ast.KindApp:
		var args []*ast.Type
		if t.Args != nil {
			args = make([]*ast.Type, len(t.Args))
		}
		for i, a := range t.Args {
			sa, err := tbl.Substitute(module, a)
			if err != nil {
				return nil, err
			}
			args[i] = sa
		}
		def, ok := tbl.visible[module][t.Name]
		if !ok {
			return ast.NewApp(t.Name, args...), nil
		}
		if len(def.Params) != len(args) {
			return nil, diagnostics.New(diagnostics.KindTypeAlias, diagnostics.ReasonBadAliasArity, module,
				"alias %s expects %d parameter(s), got %d", t.Name, len(def.Params), len(args))
		}
		sub := make(map[string]*ast.Type, len(def.Params))
		for i, p := range def.Params {
			sub[p.Name] = args[i]
		}
		expanded := substituteVars(def.Body, sub)
		return tbl.Substitute(module, expanded)
	case ast.KindRecord:
		fields := make([]ast.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			sf, err := tbl.Substitute(module, f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ast.RecordField{Key: f.Key, Type: sf}
		}
		return ast.NewRecord(t.Name, t.RecordParams, fields), nil
	default:
		return t, nil
	}
}
