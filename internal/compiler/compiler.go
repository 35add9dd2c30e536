// Package compiler wires the middle-end passes into one pipeline: resolve
// the module DAG, desugar type aliases, unify term types, build the
// manifold graph, then emit one pool per realized language plus the
// nexus — all buffered in memory so a failure at any stage leaves nothing
// on disk, per §7's "no partial output on error" requirement.
//
// The buffer-until-success shape is grounded on the teacher's
// cmd/initialize.go, which builds its whole Api model in memory (parsing
// every input file into one *model.Api) before pkg/generator.Generate
// ever touches the filesystem; here the "model" is the manifold graph and
// the emitted pool/nexus sources, and the filesystem write is left to
// internal/emit.
package compiler

import (
	"fmt"
	"sort"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/config"
	"github.com/morloc-lang/morloc/internal/dag"
	"github.com/morloc-lang/morloc/internal/diagnostics"
	"github.com/morloc-lang/morloc/internal/grammar"
	"github.com/morloc-lang/morloc/internal/grammar/c"
	"github.com/morloc-lang/morloc/internal/grammar/golang"
	"github.com/morloc-lang/morloc/internal/grammar/python"
	"github.com/morloc-lang/morloc/internal/grammar/r"
	"github.com/morloc-lang/morloc/internal/manifold"
	"github.com/morloc-lang/morloc/internal/nexusgen"
	"github.com/morloc-lang/morloc/internal/poolgen"
	"github.com/morloc-lang/morloc/internal/serial"
	"github.com/morloc-lang/morloc/internal/termtype"
	"github.com/morloc-lang/morloc/internal/typealias"
)

// Artifacts is the complete in-memory output of a successful Compile:
// every pool file keyed by language, plus the nexus dispatcher.
type Artifacts struct {
	Nexus *nexusgen.NexusFile
	Pools map[string]*poolgen.PoolFile
}

// defaultRegistry returns the backend Grammar for every language the
// teacher's pack supplies an emitter for.
func defaultRegistry() *grammar.Registry {
	return grammar.NewRegistry(golang.New(), python.New(), c.New(), r.New())
}

// desugarSignatures rewrites every SignatureDecl's type in place, resolving
// type-alias applications via tbl, so term-type unification and pool
// emission downstream never see an alias application directly.
func desugarSignatures(g *dag.Graph, tbl *typealias.Table) error {
	for name, m := range g.Modules {
		for i, item := range m.Body {
			sig, ok := item.Node.(ast.SignatureDecl)
			if !ok {
				continue
			}
			resolved, err := tbl.Substitute(name, sig.Type)
			if err != nil {
				return fmt.Errorf("module %q: desugaring signature for %q: %w", name, sig.Name, err)
			}
			sig.Type = resolved
			m.Body[i] = ast.ExprI{Index: item.Index, Node: sig}
		}
	}
	return nil
}

// languagesNeeded returns the sorted set of backend languages a manifold
// graph actually realizes into, plus defaultLang if any manifold has no
// realization of its own to borrow a language from.
func languagesNeeded(manifolds []*manifold.Manifold, defaultLang string) []string {
	seen := map[string]bool{}
	for _, m := range manifolds {
		if len(m.Realizations) == 0 {
			seen[defaultLang] = true
			continue
		}
		for _, real := range m.Realizations {
			seen[real.Lang] = true
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// checkGoSources validates every Go-backend source declaration against the
// package it names, grouping realizations by source path so a path with
// several bound names is only loaded once. Other backend languages' source
// files are opaque text to the middle end (§1 non-goals).
func checkGoSources(table *termtype.Table) error {
	wanted := make(map[string][]string)
	for _, r := range table.AllRealizations() {
		if r.Lang != "go" || r.Path == "" {
			continue
		}
		wanted[r.Path] = append(wanted[r.Path], string(r.Remote))
	}
	paths := make([]string, 0, len(wanted))
	for p := range wanted {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var coll diagnostics.Collector
	for _, p := range paths {
		if err := golang.CheckSource(p, wanted[p]); err != nil {
			coll.Add(diagnostics.Internal("%s", err.Error()))
		}
	}
	return coll.Err()
}

// executorsFor adapts a config.ExecutorConfig map into the poolgen.Executor
// map a single language's EmitPool needs, one entry per *other* language
// (a pool never foreign-calls itself).
func executorsFor(lang string, languages []string, cfg *config.Config) (map[string]poolgen.Executor, error) {
	out := make(map[string]poolgen.Executor, len(languages))
	for _, other := range languages {
		if other == lang {
			continue
		}
		ec, ok := cfg.Executors[other]
		if !ok {
			return nil, fmt.Errorf("no executor configured for language %q, needed for a foreign call from %q", other, lang)
		}
		out[other] = poolgen.Executor{Command: ec.Command, PoolPath: "pool." + other}
	}
	return out, nil
}

// nexusExecutors adapts cfg's executors into the language -> executor map
// nexusgen needs, keeping only the languages the build actually realizes
// into. A language with no configured executor is left out of the map;
// EmitNexus reports the error when a root subcommand needs it.
func nexusExecutors(languages []string, cfg *config.Config) map[string]config.ExecutorConfig {
	out := make(map[string]config.ExecutorConfig, len(languages))
	for _, l := range languages {
		if ec, ok := cfg.Executors[l]; ok {
			out[l] = ec
		}
	}
	return out
}

// Compile runs the full pipeline over modules and returns the rendered
// nexus plus one pool per realized language. Nothing is written to disk;
// see internal/emit for that step.
func Compile(cfg *config.Config, modules []*ast.Module) (*Artifacts, error) {
	g, err := dag.Resolve(modules)
	if err != nil {
		return nil, err
	}

	aliases, err := typealias.Desugar(g)
	if err != nil {
		return nil, err
	}
	if err := desugarSignatures(g, aliases); err != nil {
		return nil, err
	}

	table, err := termtype.Build(g)
	if err != nil {
		return nil, err
	}

	if err := checkGoSources(table); err != nil {
		return nil, err
	}

	manifolds, err := manifold.BuildAll(g, table, cfg.DefaultLang)
	if err != nil {
		return nil, err
	}

	languages := languagesNeeded(manifolds, cfg.DefaultLang)
	registry := defaultRegistry()

	var coll diagnostics.Collector
	pools := make(map[string]*poolgen.PoolFile, len(languages))
	for _, lang := range languages {
		gram, err := registry.Get(lang)
		if err != nil {
			coll.Add(diagnostics.New(diagnostics.KindEmission, diagnostics.ReasonUnknownLanguage, g.Root, "%s", err.Error()))
			continue
		}
		sm, err := serial.Plan(table, lang)
		if err != nil {
			coll.Add(diagnostics.New(diagnostics.KindEmission, diagnostics.ReasonUnserializableType, g.Root,
				"serialization plan for %q: %s", lang, err.Error()))
			continue
		}
		execs, err := executorsFor(lang, languages, cfg)
		if err != nil {
			coll.Add(diagnostics.New(diagnostics.KindEmission, diagnostics.ReasonMissingExecutor, g.Root, "%s", err.Error()))
			continue
		}
		pf, err := poolgen.EmitPool(manifolds, lang, cfg.DefaultLang, sm, execs, gram)
		if err != nil {
			coll.Add(diagnostics.Internal("emitting pool for %q: %s", lang, err.Error()))
			continue
		}
		pools[lang] = pf
	}
	if err := coll.Err(); err != nil {
		return nil, err
	}

	roots := nexusgen.Roots(manifolds)
	nexus, err := nexusgen.EmitNexus(roots, cfg.DefaultLang, nexusExecutors(languages, cfg))
	if err != nil {
		return nil, err
	}

	return &Artifacts{Nexus: nexus, Pools: pools}, nil
}
