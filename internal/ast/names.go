// Package ast holds the in-memory representation of parsed morloc modules:
// names, types, and the indexed expression tree that the middle end
// consumes. The surface parser is an external collaborator (see spec §1);
// this package only defines the shapes it must produce.
package ast

// MVar is a module name. Module names and expression variable names are
// distinct value types even though both are, underneath, opaque strings.
type MVar string

// EVar is an expression-level variable name (a term, field accessor key, or
// bound lambda parameter).
type EVar string

// TVar is a type variable name, optionally tagged with the backend language
// it was declared against. An empty Lang means the variable is untagged
// (visible from the general, language-agnostic type).
type TVar struct {
	Name string
	Lang string
}

// Tagged reports whether this type variable carries a language tag.
func (v TVar) Tagged() bool { return v.Lang != "" }

func (v TVar) String() string {
	if v.Lang == "" {
		return v.Name
	}
	return v.Name + "@" + v.Lang
}
