// Package nexusgen renders the single dispatcher script of spec §4.6: one
// subcommand per exported root manifold, each forwarding its positional
// arguments to the pool executable for that manifold's realized language.
//
// The nexus is emitted in Go via internal/grammar/golang rather than the
// historical Perl §4.6 mentions as precedent, because every other emitted
// artifact in this tree already goes through the Grammar abstraction and a
// second, special-cased "nexus templating" path would duplicate it for no
// benefit — §4.6 explicitly allows "alternatives" to Perl. Subcommand
// construction mirrors the teacher's cmd/initialize.go: one function per
// subcommand, flags/positional arity declared up front, dispatch in a
// single small switch the way NewInitCommand/NewSnapshotCommand are wired
// into rootCmd.
package nexusgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/config"
	"github.com/morloc-lang/morloc/internal/grammar/golang"
	"github.com/morloc-lang/morloc/internal/manifold"
)

// NexusFile is the rendered nexus source plus the subcommand names it
// exposes, for the build report internal/emit writes alongside it.
type NexusFile struct {
	Source      string
	Subcommands []string
}

// Roots filters manifolds down to the exported, uncalled root manifolds
// §4.6 generates one subcommand per — see manifold.BuildAll's doc comment
// for why "exported and never itself called" is exactly "is a root".
func Roots(manifolds []*manifold.Manifold) []*manifold.Manifold {
	var out []*manifold.Manifold
	for _, m := range manifolds {
		if m.Exported && !m.Called {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// poolPathFor returns the pool file path this root's realized language
// will be emitted under, matching the naming internal/emit writes to.
func poolPathFor(lang string) string {
	return "pool." + lang
}

// realizedLang returns the language a root manifold will actually be
// compiled into: its first concrete realization's language, or
// defaultLang for the bare-literal/bare-parameter degenerate case.
func realizedLang(m *manifold.Manifold, defaultLang string) string {
	if len(m.Realizations) == 0 {
		return defaultLang
	}
	return m.Realizations[0].Lang
}

// EmitNexus renders the dispatcher for every root manifold, one
// subcommand per root, routed to the executor configured for that root's
// realized language.
func EmitNexus(roots []*manifold.Manifold, defaultLang string, execs map[string]config.ExecutorConfig) (*NexusFile, error) {
	g := golang.New()
	var names []string
	var cases []string
	var helpLines []string

	for _, root := range roots {
		name := string(root.Composition)
		lang := realizedLang(root, defaultLang)
		exec, ok := execs[lang]
		if !ok {
			return nil, fmt.Errorf("nexus: no executor configured for language %q needed by subcommand %q", lang, name)
		}
		n := len(root.BoundVars)
		if n == 0 {
			n = len(root.Args)
		}

		names = append(names, name)
		cases = append(cases, renderSubcommand(g, name, root.ID, n, exec, poolPathFor(lang)))
		helpLines = append(helpLines, fmt.Sprintf("  %s\t%s", name, ast.PrintType(root.AbstractType)))
	}

	body := []string{
		g.DispatchHeader(names, helpLines),
	}
	body = append(body, cases...)
	body = append(body, g.DispatchFooter())

	src := g.Import("fmt") + "\n" + g.Import("os") + "\n" + g.Import("os/exec") + "\n" +
		g.Main(body)

	return &NexusFile{Source: src, Subcommands: names}, nil
}

func renderSubcommand(g *golang.Grammar, name string, manifoldID, arity int, exec config.ExecutorConfig, poolPath string) string {
	args := make([]string, arity)
	for i := range args {
		args[i] = fmt.Sprintf("os.Args[%d]", i+2)
	}
	argv := append(append([]string{}, exec.Args...), poolPath, itoa(manifoldID))
	argv = append(argv, args...)

	quoted := make([]string, 0, len(argv))
	for _, a := range argv {
		if strings.HasPrefix(a, "os.Args[") {
			quoted = append(quoted, a)
		} else {
			quoted = append(quoted, g.Quote(a))
		}
	}
	return g.Case(g.Quote(name), g.ForeignCallRaw(exec.Command, quoted))
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }
