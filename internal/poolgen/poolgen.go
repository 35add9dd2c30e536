// Package poolgen classifies the manifold graph relative to one backend
// language and renders that language's pool file, per spec §4.5.
//
// The classifier and emitter are grounded on the teacher's two-pass split
// in internal/parser/builder.go: Builder.populateFields first decides what
// a field *is* (alias, plain, omitted) before any jennifer statement gets
// rendered from the result; here Classify decides what a manifold *is*
// relative to a language before EmitPool renders a single line, and
// neither step leaks the other's concerns — EmitPool never re-derives a
// classification, and Classify never touches a Grammar.
package poolgen

import (
	"fmt"
	"sort"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/grammar"
	"github.com/morloc-lang/morloc/internal/manifold"
	"github.com/morloc-lang/morloc/internal/serial"
)

// Class is a manifold's role relative to one backend language, per §3's
// Manifold definition.
type Class int

const (
	Uncalled Class = iota
	Source
	Cis
	Trans
)

func (c Class) String() string {
	switch c {
	case Source:
		return "Source"
	case Cis:
		return "Cis"
	case Trans:
		return "Trans"
	default:
		return "Uncalled"
	}
}

// Executor names the command used to invoke another language's pool, and
// the path that pool will be emitted to, for Trans foreign-call rendering.
type Executor struct {
	Command  string
	PoolPath string
}

func hasArgCall(m *manifold.Manifold) bool {
	for _, a := range m.Args {
		if a.Kind == manifold.ArgCall {
			return true
		}
	}
	return false
}

func realizedIn(m *manifold.Manifold, lang, defaultLang string) bool {
	if len(m.Realizations) == 0 {
		return lang == defaultLang
	}
	for _, r := range m.Realizations {
		if r.Lang == lang {
			return true
		}
	}
	return false
}

// Classify sorts every manifold into {Source, Cis, Trans, Uncalled}
// relative to lang, per §3: Cis when realized in lang and called, Trans
// when called but realized elsewhere, Source when exported, realized in
// lang, not called, and a plain re-export with no nested call of its own.
// An exported, uncalled, realized root with a nested call is classified
// Cis instead of Source — see SPEC_FULL.md's "Pool emission calling
// convention" section for why Source's flat positional signature cannot
// carry a nested call.
func Classify(manifolds []*manifold.Manifold, lang, defaultLang string) map[int]Class {
	classes := make(map[int]Class, len(manifolds))
	for _, m := range manifolds {
		in := realizedIn(m, lang, defaultLang)
		switch {
		case m.Called && in:
			classes[m.ID] = Cis
		case m.Called && !in:
			classes[m.ID] = Trans
		case !m.Called && m.Exported && in && len(m.Realizations) > 0 && !hasArgCall(m):
			classes[m.ID] = Source
		case !m.Called && m.Exported && in:
			// Either a nested call the flat Source signature can't carry,
			// or no backing realization at all (a bare literal or bound-
			// parameter body) — both render through the Cis path, which
			// degrades to a direct passthrough when there is no function
			// to call (see noBackingFunction).
			classes[m.ID] = Cis
		default:
			classes[m.ID] = Uncalled
		}
	}
	return classes
}

// PoolFile is the rendered output of EmitPool: one source file's text plus
// the manifold IDs it dispatches on, for the nexus/compiler to wire the
// executor invocation and record in a build report.
type PoolFile struct {
	Lang        string
	Source      string
	ManifoldIDs []int
}

// EmitPool renders the pool file for lang from the full manifold set,
// delegating every language-shaped rendering decision to g.
func EmitPool(manifolds []*manifold.Manifold, lang, defaultLang string, sm *serial.Map, execs map[string]Executor, g grammar.Grammar) (*PoolFile, error) {
	classes := Classify(manifolds, lang, defaultLang)
	byID := make(map[int]*manifold.Manifold, len(manifolds))
	for _, m := range manifolds {
		byID[m.ID] = m
	}

	var funcs []string
	var dispatchIDs []int
	var imports []string
	seenImport := map[string]bool{}

	ordered := make([]*manifold.Manifold, 0, len(manifolds))
	for _, m := range manifolds {
		if classes[m.ID] == Cis || classes[m.ID] == Source {
			ordered = append(ordered, m)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, m := range ordered {
		for _, r := range m.Realizations {
			if r.Lang == lang && r.Path != "" && !seenImport[r.Path] {
				seenImport[r.Path] = true
				imports = append(imports, r.Path)
			}
		}

		var body string
		var err error
		switch classes[m.ID] {
		case Source:
			body, err = emitSource(m, lang, sm, g)
		case Cis:
			body, err = emitCis(m, byID, classes, lang, defaultLang, sm, execs, g)
		}
		if err != nil {
			return nil, fmt.Errorf("manifold %d: %w", m.ID, err)
		}
		funcs = append(funcs, body)
		dispatchIDs = append(dispatchIDs, m.ID)
	}

	var out string
	for _, path := range imports {
		out += g.Import(path) + "\n"
	}
	for _, f := range funcs {
		out += f + "\n"
	}
	out += g.Main([]string{g.DispatchTail(dispatchIDs)})

	return &PoolFile{Lang: lang, Source: out, ManifoldIDs: dispatchIDs}, nil
}

// sourceName returns the callable name for m: the morloc name of the term
// this call site invokes, which §3's Realization.remote binds 1:1 to the
// foreign function of the same name (see termtype.Realization.Remote).
func sourceName(m *manifold.Manifold, _ string) string {
	return string(m.MorlocName)
}

// noBackingFunction reports whether m has no realization to call through
// at all: a bare literal body (e.g. `x = 1`), a bare bound-parameter
// reference (e.g. `id x = x`), or a call whose head is itself a pure
// composition with no sourced realization of its own. All three render as
// a direct passthrough of the manifold's single computed argument rather
// than a call, per SPEC_FULL.md's "Manifold field semantics" section.
func noBackingFunction(m *manifold.Manifold) bool {
	return len(m.Realizations) == 0 && len(m.Args) == 1
}

func emitSource(m *manifold.Manifold, lang string, sm *serial.Map, g grammar.Grammar) (string, error) {
	params := make([]string, len(m.Args))
	var lines []string
	for i := range m.Args {
		x := fmt.Sprintf("x%d", i)
		a := fmt.Sprintf("a%d", i)
		params[i] = x
		domain := argDomainType(m, i)
		lines = append(lines, g.Assign(a, g.Call(sm.UnpackerFor(domain), x)))
	}
	callArgs := make([]string, len(m.Args))
	for i := range m.Args {
		callArgs[i] = fmt.Sprintf("a%d", i)
	}
	lines = append(lines, "return "+g.Call(sourceName(m, lang), callArgs...))
	return g.FuncDecl(fmt.Sprintf("m%d", m.ID), params, lines), nil
}

func emitCis(m *manifold.Manifold, byID map[int]*manifold.Manifold, classes map[int]Class, lang, defaultLang string, sm *serial.Map, execs map[string]Executor, g grammar.Grammar) (string, error) {
	params := make([]string, len(m.BoundVars))
	for i, bv := range m.BoundVars {
		params[i] = string(bv)
	}
	nameIndex := make(map[ast.EVar]int, len(m.BoundVars))
	for i, bv := range m.BoundVars {
		nameIndex[bv] = i
	}

	var lines []string
	callArgs := make([]string, len(m.Args))
	for i, arg := range m.Args {
		local := fmt.Sprintf("a%d", i)
		domain := argDomainType(m, i)
		switch arg.Kind {
		case manifold.ArgName, manifold.ArgNest:
			idx, ok := nameIndex[arg.Name]
			if !ok {
				return "", fmt.Errorf("argument %d references %q, not one of the manifold's bound variables", i, arg.Name)
			}
			lines = append(lines, g.Assign(local, g.Call(sm.UnpackerFor(domain), params[idx])))
		case manifold.ArgPositional:
			lines = append(lines, g.Assign(local, g.Call(sm.UnpackerFor(domain), g.ArgAccessor(arg.Position))))
		case manifold.ArgData:
			lines = append(lines, g.Assign(local, renderData(arg.Data, g)))
		case manifold.ArgCall:
			callee, ok := byID[arg.CallID]
			if !ok {
				return "", fmt.Errorf("argument %d calls unknown manifold %d", i, arg.CallID)
			}
			calleeParams := make([]string, len(callee.BoundVars))
			for j, bv := range callee.BoundVars {
				calleeParams[j] = string(bv)
			}
			if classes[callee.ID] == Trans {
				exec, ok := execs[calleeLang(callee, defaultLang)]
				if !ok {
					return "", fmt.Errorf("no executor configured for language %q needed by manifold %d", calleeLang(callee, defaultLang), callee.ID)
				}
				call := g.ForeignCall(exec.Command, exec.PoolPath, callee.ID, calleeParams)
				lines = append(lines, g.Assign(local, g.Call(sm.UnpackerFor(domain), call)))
			} else {
				lines = append(lines, g.Assign(local, g.Call(fmt.Sprintf("m%d", callee.ID), calleeParams...)))
			}
		}
		callArgs[i] = local
	}

	if noBackingFunction(m) {
		lines = append(lines, "return "+callArgs[0])
	} else {
		lines = append(lines, "return "+g.Call(sourceName(m, lang), callArgs...))
	}

	return g.FuncDecl(fmt.Sprintf("m%d", m.ID), params, lines), nil
}

// calleeLang picks the language a Trans callee will actually be emitted
// in: its first realized language, or defaultLang when it has none.
func calleeLang(m *manifold.Manifold, defaultLang string) string {
	if len(m.Realizations) == 0 {
		return defaultLang
	}
	return m.Realizations[0].Lang
}

// argDomainType returns the type an argument should be packed/unpacked
// as: the manifold's abstract function type's matching parameter when
// known, nil otherwise (falling back to the serialization plan's generic
// (un)packer).
func argDomainType(m *manifold.Manifold, i int) *ast.Type {
	if m.AbstractType == nil {
		return nil
	}
	t := m.AbstractType
	if t.Kind == ast.KindForall {
		t = t.Body
	}
	if t.Kind != ast.KindFunction || i >= len(t.Params) {
		return nil
	}
	return t.Params[i]
}

func renderData(e ast.ExprI, g grammar.Grammar) string {
	switch n := e.Node.(type) {
	case ast.NumLit:
		return fmt.Sprintf("%v", n.Value)
	case ast.StrLit:
		return g.Quote(n.Value)
	case ast.BoolLit:
		return g.Bool(n.Value)
	case ast.UnitLit:
		return g.Quote("")
	case ast.ListLit:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = renderData(el, g)
		}
		return g.List(elems)
	case ast.TupleLit:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = renderData(el, g)
		}
		return g.Tuple(elems)
	case ast.RecordLit:
		fields := make(map[string]string, len(n.Fields))
		for _, f := range n.Fields {
			fields[string(f.Key)] = renderData(f.Value, g)
		}
		return g.Record(fields)
	default:
		return g.Quote(fmt.Sprintf("%v", e.Node))
	}
}
