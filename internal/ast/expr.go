package ast

// ExprI is an indexed expression: i is a globally unique integer assigned by
// the parser (or, for synthetic nodes, by the middle end on ingestion), used
// later as a key into the term-type table and other side tables.
type ExprI struct {
	Index int
	Node  Expr
}

// Expr is the sum over expression-node alternatives from spec §3. Each
// alternative is a distinct Go type implementing this marker interface,
// matching the teacher's approach of one concrete struct per AST shape
// rather than a single flat struct multiplexed by a kind tag — expressions
// nest heterogeneously enough (and are walked with type switches throughout
// the middle end) that the interface form reads more naturally here than
// the Kind-tagged struct used for Type.
type Expr interface {
	exprNode()
}

// ImportSpec names one imported module and the selection applied to its
// exports: Include nil means "the whole export set"; Exclude removes names
// after inclusion; Alias renames the module's local binding (unused for
// import-by-name form).
type ImportSpec struct {
	Module  MVar
	Include []EVar
	Exclude []EVar
	Alias   *MVar
}

// ImportDecl is one `import` statement, which may carry per-name aliases
// via Renames (remote name -> local name), independent of ImportSpec.Alias
// which renames the module binding itself.
type ImportDecl struct {
	Spec    ImportSpec
	Renames map[EVar]EVar
}

func (ImportDecl) exprNode() {}

// ExportDecl exposes a term from the current module under its existing
// local name.
type ExportDecl struct {
	Name EVar
}

func (ExportDecl) exprNode() {}

// SourceRemote is one (remote-name, alias) pair of a `source` declaration.
type SourceRemote struct {
	Remote EVar
	Alias  EVar
}

// SourceDecl declares that a term is implemented directly by a backend
// source file, independent of any morloc-level declaration body.
type SourceDecl struct {
	Lang    string
	Path    string
	Remotes []SourceRemote
}

func (SourceDecl) exprNode() {}

// WhereClause is one `where` binding attached to a ValueDecl.
type WhereClause struct {
	Name EVar
	Body ExprI
}

// ValueDecl is `v = e`, optionally followed by where-clauses that introduce
// local bindings visible only within Body.
type ValueDecl struct {
	Name  EVar
	Body  ExprI
	Where []WhereClause
}

func (ValueDecl) exprNode() {}

// SignatureDecl is `v :: t`. Lang == "" marks a general (language-agnostic)
// signature; a non-empty Lang marks a concrete, language-tagged one. Props
// carries signature-level property tags such as `pack`/`unpack` (§4.7).
type SignatureDecl struct {
	Name  EVar
	Lang  string
	Type  *Type
	Props map[string]string
}

func (SignatureDecl) exprNode() {}

// TypeAliasDecl is `type V p... = t`.
type TypeAliasDecl struct {
	Name   TVar
	Params []TVar
	Body   *Type
}

func (TypeAliasDecl) exprNode() {}

// Var references a bound or free variable by name.
type Var struct {
	Name EVar
}

func (Var) exprNode() {}

// Accessor is `e.k`.
type Accessor struct {
	Target ExprI
	Key    EVar
}

func (Accessor) exprNode() {}

// ListLit, TupleLit and RecordLit are literal aggregate constructors.
type ListLit struct{ Elems []ExprI }

func (ListLit) exprNode() {}

type TupleLit struct{ Elems []ExprI }

func (TupleLit) exprNode() {}

type RecordField2 struct {
	Key   EVar
	Value ExprI
}

type RecordLit struct{ Fields []RecordField2 }

func (RecordLit) exprNode() {}

// Lambda is `\p... -> body` with zero or more parameters.
type Lambda struct {
	Params []EVar
	Body   ExprI
}

func (Lambda) exprNode() {}

// App is a function application chain's single node: Fn applied to Args
// left to right.
type App struct {
	Fn   ExprI
	Args []ExprI
}

func (App) exprNode() {}

// Annotation is `e :: t`.
type Annotation struct {
	Target ExprI
	Type   *Type
}

func (Annotation) exprNode() {}

// NumLit, StrLit, BoolLit and UnitLit are the primitive literal forms.
type NumLit struct{ Value float64 }

func (NumLit) exprNode() {}

type StrLit struct{ Value string }

func (StrLit) exprNode() {}

type BoolLit struct{ Value bool }

func (BoolLit) exprNode() {}

type UnitLit struct{}

func (UnitLit) exprNode() {}

// Module is the parser's per-file output, matching spec §6's external
// interface shape exactly.
type Module struct {
	Name    MVar
	Exports []EVar
	Imports []ImportDecl
	Body    []ExprI
}
