// Package diagnostics implements the error-kind taxonomy and accumulation
// discipline of spec §7/§9: short-circuit at a module/declaration boundary,
// but accumulate every diagnostic raised within that boundary so a caller
// sees all related problems at once.
package diagnostics

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/morloc-lang/morloc/internal/ast"
)

// Kind names one of the semantic error families of spec §7. These are not
// Go types — every Diagnostic carries one as data — because the spec frames
// them as a closed set of *reasons*, not a type hierarchy to extend.
type Kind string

const (
	KindParse           Kind = "parse"
	KindImport          Kind = "import"
	KindTypeAlias       Kind = "type-alias"
	KindSignatureMerge  Kind = "signature-merge"
	KindTreeShape       Kind = "tree-shape"
	KindEmission        Kind = "emission"
	KindInternal        Kind = "internal"
)

// Reason is a stable, greppable code within a Kind, named in spec §4/§7
// (e.g. ImportContradiction, CyclicDependency, SelfRecursiveTypeAlias).
type Reason string

const (
	ReasonImportContradiction   Reason = "ImportContradiction"
	ReasonImportMissing         Reason = "ImportMissing"
	ReasonCyclicDependency      Reason = "CyclicDependency"
	ReasonNonUniqueRoot         Reason = "NonUniqueRoot"
	ReasonSelfRecursiveAlias    Reason = "SelfRecursiveTypeAlias"
	ReasonBadAliasArity         Reason = "BadTypeAliasParameters"
	ReasonConflictingAlias      Reason = "ConflictingTypeAlias"
	ReasonMultipleGeneralTypes  Reason = "MultipleGeneralTypes"
	ReasonConcreteWithoutSource Reason = "ConcreteSignatureWithoutSource"
	ReasonIncompatibleGeneral   Reason = "IncompatibleGeneralType"
	ReasonNonLambdaRoot         Reason = "NonLambdaAtRoot"
	ReasonLambdaArgument        Reason = "LambdaArgumentUnsupported"
	ReasonRecursiveDeclaration  Reason = "RecursiveDeclaration"
	ReasonUnboundVariable       Reason = "UnboundVariable"
	ReasonUnknownLanguage       Reason = "UnknownLanguage"
	ReasonMissingExecutor       Reason = "MissingExecutor"
	ReasonUnserializableType    Reason = "UnserializableType"
	ReasonInvariantViolated     Reason = "InvariantViolated"
)

// Diagnostic is one reported problem, indexed to its source node when known
// (per §7 "with source indexing when the index is known; otherwise with the
// enclosing module name").
type Diagnostic struct {
	Kind      Kind
	Reason    Reason
	Message   string
	NodeIndex *int
	Module    ast.MVar
}

func (d *Diagnostic) Error() string {
	loc := string(d.Module)
	if d.NodeIndex != nil {
		loc = fmt.Sprintf("%s#%d", loc, *d.NodeIndex)
	}
	if loc == "" {
		return fmt.Sprintf("[%s/%s] %s", d.Kind, d.Reason, d.Message)
	}
	return fmt.Sprintf("[%s/%s] %s: %s", d.Kind, d.Reason, loc, d.Message)
}

// IsInternal distinguishes compiler bugs from user-facing diagnostics, per
// §7 "Internal errors are distinguished in presentation".
func (d *Diagnostic) IsInternal() bool { return d.Kind == KindInternal }

// New builds a module-scoped Diagnostic (no node index known).
func New(kind Kind, reason Reason, module ast.MVar, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Reason: reason, Module: module, Message: fmt.Sprintf(format, args...)}
}

// At builds a node-scoped Diagnostic.
func At(kind Kind, reason Reason, module ast.MVar, index int, format string, args ...any) *Diagnostic {
	d := New(kind, reason, module, format, args...)
	i := index
	d.NodeIndex = &i
	return d
}

// Internal reports a violated invariant: a bug, never expected to fire in
// released code (§7).
func Internal(format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: KindInternal, Reason: ReasonInvariantViolated, Message: fmt.Sprintf(format, args...)}
}

// Collector accumulates diagnostics raised while processing one scope
// (a module or a declaration) and flushes them as a single error at the
// scope boundary, per §9's "Result-like sum with a Vec<Diagnostic> tail".
type Collector struct {
	errs *multierror.Error
}

// Add records d. A nil d is ignored so call sites can add conditionally
// without an extra branch.
func (c *Collector) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	c.errs = multierror.Append(c.errs, d)
}

// HasErrors reports whether anything has been collected.
func (c *Collector) HasErrors() bool {
	return c.errs != nil && c.errs.Len() > 0
}

// Err returns the accumulated error, or nil if nothing was collected. The
// caller treats a non-nil result as a hard abort: spec §7 forbids partial
// output once any diagnostic has been raised within a failed scope.
func (c *Collector) Err() error {
	if !c.HasErrors() {
		return nil
	}
	return c.errs.ErrorOrNil()
}

// Diagnostics returns the accumulated diagnostics in report order.
func (c *Collector) Diagnostics() []*Diagnostic {
	if c.errs == nil {
		return nil
	}
	out := make([]*Diagnostic, 0, len(c.errs.Errors))
	for _, e := range c.errs.Errors {
		if d, ok := e.(*Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}
