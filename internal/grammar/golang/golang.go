// Package golang implements grammar.Grammar for Go pool/nexus output using
// github.com/dave/jennifer (`jen`) to render syntactically valid Go source
// instead of hand-assembled strings, the way the teacher's go.mod clearly
// intends (see SPEC_FULL.md's Domain Stack section on GenerateApiFile).
//
// Every Grammar method renders one jen.Code value immediately to a string
// via jennifer's documented `%#v` GoStringer rendering, rather than
// accumulating into one jen.File, because the Grammar interface is
// string-in/string-out so poolgen can compose fragments produced by
// different calls (an argument built by Unpack nested inside a Call built
// by ForeignCall, etc). Pre-rendered fragments are spliced back in via
// jen.Op, which jennifer documents as inserting a raw token verbatim.
package golang

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
)

// Grammar is the Go backend's code-shape strategy.
type Grammar struct{}

// New constructs the Go Grammar.
func New() *Grammar { return &Grammar{} }

func (g *Grammar) Lang() string { return "go" }
func (g *Grammar) Ext() string  { return "go" }

func render(c jen.Code) string {
	return fmt.Sprintf("%#v", c)
}

func (g *Grammar) Comment(text string) string {
	return render(jen.Comment(text))
}

func (g *Grammar) Assign(lhs, rhs string) string {
	return render(jen.Id(lhs).Op(":=").Op(rhs))
}

func (g *Grammar) Call(fn string, args ...string) string {
	return render(jen.Id(fn).Call(rawCodes(args)...))
}

func (g *Grammar) Import(path string) string {
	return render(jen.Import(path))
}

func (g *Grammar) Quote(s string) string {
	return render(jen.Lit(s))
}

func (g *Grammar) Bool(b bool) string {
	return render(jen.Lit(b))
}

func (g *Grammar) List(elems []string) string {
	return render(jen.Index().Interface().Values(rawCodes(elems)...))
}

func (g *Grammar) Tuple(elems []string) string {
	return g.List(elems)
}

func (g *Grammar) Record(fields map[string]string) string {
	dict := make(jen.Dict, len(fields))
	for k, v := range fields {
		dict[jen.Lit(k)] = jen.Op(v)
	}
	return render(jen.Map(jen.String()).Interface().Values(dict))
}

func (g *Grammar) Indent() string { return "\t" }

func (g *Grammar) TryWrap(body string) string {
	stmt := jen.Func().Params().Block(jen.Op(body)).Call()
	return render(stmt)
}

func (g *Grammar) Unpack(typeName, expr string) string {
	return render(jen.Qual("morloc_runtime", "Unpack").Types(jen.Id(typeName)).Call(jen.Op(expr)))
}

func (g *Grammar) Pack(typeName, expr string) string {
	return render(jen.Qual("morloc_runtime", "Pack").Call(jen.Lit(typeName), jen.Op(expr)))
}

// ForeignCall shells out to another pool's executable using os/exec,
// passing the manifold ID and pre-packed argument strings on argv and
// returning the packed stdout.
func (g *Grammar) ForeignCall(executor, poolPath string, manifoldID int, args []string) string {
	argv := append([]string{poolPath, fmt.Sprintf("%d", manifoldID)}, args...)
	argCodes := make([]jen.Code, len(argv))
	for i, a := range argv {
		argCodes[i] = jen.Lit(a)
	}
	stmt := jen.Qual("morloc_runtime", "ForeignCall").Call(append([]jen.Code{jen.Lit(executor)}, argCodes...)...)
	return render(stmt)
}

func (g *Grammar) DispatchTail(manifoldIDs []int) string {
	var b strings.Builder
	b.WriteString(render(jen.Id("mid").Op(":=").Qual("strconv", "Atoi").Call(jen.Qual("os", "Args").Index(jen.Lit(1)))))
	b.WriteString("\n")
	for _, id := range manifoldIDs {
		b.WriteString(fmt.Sprintf("if mid == %d { fmt.Print(m%d(os.Args[2:])); return }\n", id, id))
	}
	b.WriteString(`fmt.Fprintln(os.Stderr, "no such manifold"); os.Exit(1)` + "\n")
	return b.String()
}

func (g *Grammar) ArgAccessor(i int) string {
	return render(jen.Id("args").Index(jen.Lit(i)))
}

func (g *Grammar) Main(body []string) string {
	stmt := jen.Func().Id("main").Params().Block(rawCodes(body)...)
	return render(stmt)
}

// FuncDecl renders a top-level function with interface{}-typed parameters
// and result, matching the runtime's boxed value convention (every
// manifold exchanges values through morloc_runtime's packed representation
// rather than native Go types, since a manifold's concrete type is only
// known per-language at compile time for the *other* backends it talks to).
func (g *Grammar) FuncDecl(name string, params []string, body []string) string {
	paramCodes := make([]jen.Code, len(params))
	for i, p := range params {
		paramCodes[i] = jen.Id(p).Interface()
	}
	stmt := jen.Func().Id(name).Params(paramCodes...).Interface().Block(rawCodes(body)...)
	return render(stmt)
}

// DispatchHeader renders the nexus's -h/--help short-circuit and the
// opening of its subcommand switch. Nexus-specific: the shared Grammar
// interface's DispatchTail is the pool-side manifold-ID dispatch, a
// different shape from a nexus's named-subcommand dispatch, so nexusgen
// calls this directly on the concrete Grammar rather than through the
// interface.
func (g *Grammar) DispatchHeader(names, helpLines []string) string {
	var b strings.Builder
	b.WriteString(`if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {` + "\n")
	b.WriteString("\tfmt.Println(\"usage: nexus <subcommand> [args...]\")\n")
	for _, l := range helpLines {
		b.WriteString("\tfmt.Println(" + g.Quote(l) + ")\n")
	}
	b.WriteString("\tos.Exit(0)\n}\n")
	b.WriteString("switch os.Args[1] {\n")
	return b.String()
}

// Case renders one subcommand's switch arm.
func (g *Grammar) Case(label, body string) string {
	return fmt.Sprintf("case %s:\n%s\n", label, body)
}

// DispatchFooter closes the subcommand switch with an unknown-subcommand
// fallback.
func (g *Grammar) DispatchFooter() string {
	return "default:\n\tfmt.Fprintln(os.Stderr, \"no such subcommand: \"+os.Args[1])\n\tos.Exit(1)\n}\n"
}

// ForeignCallRaw streams a subprocess's stdout/stderr straight through to
// the nexus's own and propagates its exit status, the shape a nexus
// subcommand needs — unlike ForeignCall's capture-to-string form, used by
// a pool body that must hand the result back to its own caller.
func (g *Grammar) ForeignCallRaw(executor string, argv []string) string {
	return fmt.Sprintf(
		"\tcmd := exec.Command(%s, %s)\n\tcmd.Stdout = os.Stdout\n\tcmd.Stderr = os.Stderr\n"+
			"\tif err := cmd.Run(); err != nil {\n\t\tif exitErr, ok := err.(*exec.ExitError); ok {\n\t\t\tos.Exit(exitErr.ExitCode())\n\t\t}\n"+
			"\t\tfmt.Fprintln(os.Stderr, err)\n\t\tos.Exit(1)\n\t}\n",
		g.Quote(executor), strings.Join(argv, ", "),
	)
}

func rawCodes(lines []string) []jen.Code {
	out := make([]jen.Code, len(lines))
	for i, l := range lines {
		out[i] = jen.Op(l)
	}
	return out
}
