// Package dag resolves a set of parsed modules into the acyclic
// import/export graph of spec §4.1: for every import edge it computes the
// alias map from the target's exported surface to the importer's local
// names, detects cycles, and identifies the unique compilation root.
package dag

import (
	"fmt"
	"sort"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/diagnostics"
)

// Edge is one resolved import: From imports Module via an alias map from
// the target's exported name to the local name the importer sees.
type Edge struct {
	Module  ast.MVar
	Aliases []AliasPair
}

// AliasPair is one (exported name in target) -> (local name in importer)
// binding, the "alias map" of spec §3's glossary.
type AliasPair struct {
	Remote ast.EVar
	Local  ast.EVar
}

// Graph is the resolved module DAG: node -> outgoing edges, plus the
// identified root.
type Graph struct {
	Modules map[ast.MVar]*ast.Module
	Edges   map[ast.MVar][]Edge
	Root    ast.MVar
}

// AliasFor looks up the local name an importer in `from` sees for a
// `remote` name exported by `to`, honoring the glossary's tie-break rule:
// "alias transitively wins over source name on any downstream lookup" (the
// map below is already built with that precedence, so lookup here is a
// plain index).
func (g *Graph) AliasFor(from, to ast.MVar, remote ast.EVar) (ast.EVar, bool) {
	for _, e := range g.Edges[from] {
		if e.Module != to {
			continue
		}
		for _, p := range e.Aliases {
			if p.Remote == remote {
				return p.Local, true
			}
		}
	}
	return "", false
}

// Resolve builds the Graph from a flat module set.
func Resolve(modules []*ast.Module) (*Graph, error) {
	byName := make(map[ast.MVar]*ast.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}

	var coll diagnostics.Collector
	g := &Graph{Modules: byName, Edges: make(map[ast.MVar][]Edge, len(modules))}

	hasParent := make(map[ast.MVar]bool, len(modules))

	for _, m := range modules {
		for _, imp := range m.Imports {
			target, ok := byName[imp.Spec.Module]
			if !ok {
				coll.Add(diagnostics.New(diagnostics.KindImport, diagnostics.ReasonImportMissing, m.Name,
					"imported module %q not found", imp.Spec.Module))
				continue
			}

			surface := exportedSurface(target, imp.Spec.Include)

			for _, excl := range imp.Spec.Exclude {
				if contains(imp.Spec.Include, excl) {
					coll.Add(diagnostics.New(diagnostics.KindImport, diagnostics.ReasonImportContradiction, m.Name,
						"%q is both included and excluded from import of %q", excl, target.Name))
				}
			}
			if len(imp.Spec.Include) > 0 {
				for _, inc := range imp.Spec.Include {
					if !contains(target.Exports, inc) {
						coll.Add(diagnostics.New(diagnostics.KindImport, diagnostics.ReasonImportMissing, m.Name,
							"%q is not exported by %q", inc, target.Name))
					}
				}
			}

			aliases := make([]AliasPair, 0, len(surface))
			for _, remote := range surface {
				if contains(imp.Spec.Exclude, remote) {
					continue
				}
				local := remote
				if l, ok := imp.Renames[remote]; ok {
					local = l
				}
				aliases = append(aliases, AliasPair{Remote: remote, Local: local})
			}

			g.Edges[m.Name] = append(g.Edges[m.Name], Edge{Module: target.Name, Aliases: aliases})
			hasParent[target.Name] = true
		}
	}

	if err := coll.Err(); err != nil {
		return nil, err
	}

	if err := detectCycle(g); err != nil {
		return nil, err
	}

	var roots []ast.MVar
	for name := range byName {
		if !hasParent[name] {
			roots = append(roots, name)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	switch len(roots) {
	case 0:
		return nil, diagnostics.New(diagnostics.KindImport, diagnostics.ReasonCyclicDependency, "",
			"no module is free of incoming imports; the graph has no source")
	case 1:
		g.Root = roots[0]
	default:
		return nil, diagnostics.New(diagnostics.KindImport, diagnostics.ReasonNonUniqueRoot, "",
			"modules imported by nothing: %v", roots)
	}

	return g, nil
}

// exportedSurface is the full export set of target, or its declared include
// list when one is supplied.
func exportedSurface(target *ast.Module, include []ast.EVar) []ast.EVar {
	if len(include) == 0 {
		return append([]ast.EVar(nil), target.Exports...)
	}
	return append([]ast.EVar(nil), include...)
}

func contains(list []ast.EVar, v ast.EVar) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// detectCycle runs an explicit three-color DFS over the import graph (each
// node white/grey/black) so that, unlike a re-entrance guard that merely
// refuses to recurse, the cycle itself can be reported by name. This
// generalizes the teacher's Builder.populateFields "resolving" guard
// (internal/parser/builder.go), which silently no-ops on re-entrance because
// it only needs to avoid infinite recursion, not explain a cycle to a user.
func detectCycle(g *Graph) error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[ast.MVar]int, len(g.Modules))
	var path []ast.MVar

	var visit func(n ast.MVar) error
	visit = func(n ast.MVar) error {
		color[n] = grey
		path = append(path, n)
		for _, e := range g.Edges[n] {
			switch color[e.Module] {
			case white:
				if err := visit(e.Module); err != nil {
					return err
				}
			case grey:
				return diagnostics.New(diagnostics.KindImport, diagnostics.ReasonCyclicDependency, n,
					"cyclic import: %s", formatCycle(path, e.Module))
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return nil
	}

	for name := range g.Modules {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatCycle(path []ast.MVar, back ast.MVar) string {
	start := 0
	for i, n := range path {
		if n == back {
			start = i
			break
		}
	}
	s := ""
	for _, n := range path[start:] {
		s += string(n) + " -> "
	}
	return fmt.Sprintf("%s%s", s, back)
}
