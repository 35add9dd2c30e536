package ast

// TypeKind discriminates the single Type sum described in spec §3. A Type
// value is multiplexed by Kind the same way the teacher's WorkingType is
// multiplexed by its own Kind: only the fields relevant to that Kind are
// populated, the rest left zero.
type TypeKind int

const (
	KindInvalid     TypeKind = iota
	KindVar                  // a bare type variable
	KindForall               // universally quantified: Bound, Body
	KindExistential          // unsolved, with defaults: Name, Defaults
	KindFunction             // Params (may be empty), Result
	KindApp                  // applied parameterised type: Name, Args
	KindRecord               // tag + name + params + ordered fields: Name, RecordParams, Fields
)

func (k TypeKind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindForall:
		return "forall"
	case KindExistential:
		return "existential"
	case KindFunction:
		return "function"
	case KindApp:
		return "app"
	case KindRecord:
		return "record"
	default:
		return "invalid"
	}
}

// RecordField is one (key, type) pair of an ordered record field list.
type RecordField struct {
	Key  EVar
	Type *Type
}

// Type is the single sum type of spec §3 ("Type representation").
type Type struct {
	Kind TypeKind

	// KindVar
	Var TVar

	// KindForall
	Bound TVar
	Body  *Type

	// KindExistential
	Name     string
	Defaults []*Type

	// KindFunction
	Params []*Type
	Result *Type

	// KindApp
	// Name (shared with KindExistential/KindRecord) is the head/type name.
	Args []*Type

	// KindRecord
	// Name is shared; Params are the record's own type parameters.
	RecordParams []TVar
	Fields       []RecordField
}

// NewVar builds a KindVar type.
func NewVar(v TVar) *Type { return &Type{Kind: KindVar, Var: v} }

// NewForall builds a universally quantified type.
func NewForall(bound TVar, body *Type) *Type {
	return &Type{Kind: KindForall, Bound: bound, Body: body}
}

// NewExistential builds an unsolved type with default instantiations.
func NewExistential(name string, defaults ...*Type) *Type {
	return &Type{Kind: KindExistential, Name: name, Defaults: defaults}
}

// NewFunction builds a function type.
func NewFunction(params []*Type, result *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Result: result}
}

// NewApp builds an applied parameterised type, e.g. `List a`.
func NewApp(name string, args ...*Type) *Type {
	return &Type{Kind: KindApp, Name: name, Args: args}
}

// NewRecord builds a named record type with an ordered field list.
func NewRecord(name string, params []TVar, fields []RecordField) *Type {
	return &Type{Kind: KindRecord, Name: name, RecordParams: params, Fields: fields}
}

// Clone returns a deep copy of t, used by the desugarer before it rewrites
// a type in place during alias substitution.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := &Type{Kind: t.Kind, Var: t.Var, Bound: t.Bound, Name: t.Name, RecordParams: append([]TVar(nil), t.RecordParams...)}
	c.Body = t.Body.Clone()
	c.Result = t.Result.Clone()
	for _, d := range t.Defaults {
		c.Defaults = append(c.Defaults, d.Clone())
	}
	for _, p := range t.Params {
		c.Params = append(c.Params, p.Clone())
	}
	for _, a := range t.Args {
		c.Args = append(c.Args, a.Clone())
	}
	for _, f := range t.Fields {
		c.Fields = append(c.Fields, RecordField{Key: f.Key, Type: f.Type.Clone()})
	}
	return c
}

// Arity returns the number of parameters of a function type, 0 otherwise.
// Used by the invariant in spec §8: length(args) == arity(abstractType).
func (t *Type) Arity() int {
	if t == nil {
		return 0
	}
	if t.Kind == KindForall {
		return t.Body.Arity()
	}
	if t.Kind != KindFunction {
		return 0
	}
	return len(t.Params)
}
