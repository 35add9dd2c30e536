// Package serial builds the per-language serialization plan of spec §4.7:
// for each backend language, the map from a domain type's canonical
// rendering to the name of the function that packs or unpacks it across a
// foreign-call boundary, plus the single generic fallback used when no
// type-specific entry matches.
//
// Realization.Props is already a flat string map by the time it reaches
// this package (it arrives as a map on ast.SignatureDecl and the term-type
// table copies it onto each Realization unchanged), so there is no tag-literal to split apart the way the
// teacher's parseStructTagLit does — but the lookup shape is the same one
// scanned there: walk a flat property map, bucket entries by a marker key,
// and keep the rest as a side payload (here, the domain type key instead
// of a struct field name).
package serial

import (
	"fmt"

	"github.com/morloc-lang/morloc/internal/ast"
	"github.com/morloc-lang/morloc/internal/termtype"
)

// Map is one language's serialization plan.
type Map struct {
	Lang            string
	Packer          map[string]string // canonical domain type -> packer function name
	Unpacker        map[string]string // canonical domain type -> unpacker function name
	GenericPacker   string
	GenericUnpacker string
	Sources         []string
}

// PackerFor returns the packer function name for domainType, falling back to
// the generic packer when no type-specific entry matches.
func (m *Map) PackerFor(domainType *ast.Type) string {
	if name, ok := m.Packer[ast.PrintType(domainType)]; ok {
		return name
	}
	return m.GenericPacker
}

// UnpackerFor returns the unpacker function name for domainType, falling
// back to the generic unpacker when no type-specific entry matches.
func (m *Map) UnpackerFor(domainType *ast.Type) string {
	if name, ok := m.Unpacker[ast.PrintType(domainType)]; ok {
		return name
	}
	return m.GenericUnpacker
}

// Plan scans every concrete realization tagged for lang and sorts it into
// the packer or unpacker map by its "pack"/"unpack" property, per §4.7. The
// domain type is the first parameter of the realization's function type;
// a realization whose property value is "generic" (rather than naming no
// particular type) becomes the language's fallback instead of a
// type-keyed entry.
func Plan(table *termtype.Table, lang string) (*Map, error) {
	m := &Map{Lang: lang, Packer: map[string]string{}, Unpacker: map[string]string{}}

	seenSource := map[string]bool{}
	for _, r := range table.AllRealizations() {
		if r.Lang != lang {
			continue
		}
		if r.Path != "" && !seenSource[r.Path] {
			seenSource[r.Path] = true
			m.Sources = append(m.Sources, r.Path)
		}

		domain := firstParam(r.Type)
		if kind, ok := r.Props["pack"]; ok {
			assign(&m.GenericPacker, m.Packer, kind, domain, string(r.Remote))
		}
		if kind, ok := r.Props["unpack"]; ok {
			assign(&m.GenericUnpacker, m.Unpacker, kind, domain, string(r.Remote))
		}
	}

	if m.GenericPacker == "" {
		return nil, fmt.Errorf("serial: language %q declares no generic packer", lang)
	}
	if m.GenericUnpacker == "" {
		return nil, fmt.Errorf("serial: language %q declares no generic unpacker", lang)
	}
	return m, nil
}

func assign(generic *string, into map[string]string, propValue string, domain *ast.Type, fnName string) {
	if propValue == "generic" || domain == nil {
		*generic = fnName
		return
	}
	into[ast.PrintType(domain)] = fnName
}

func firstParam(t *ast.Type) *ast.Type {
	if t == nil {
		return nil
	}
	if t.Kind == ast.KindForall {
		return firstParam(t.Body)
	}
	if t.Kind != ast.KindFunction || len(t.Params) == 0 {
		return nil
	}
	return t.Params[0]
}
