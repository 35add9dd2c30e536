// Package r implements grammar.Grammar for R pool/source output.
package r

import (
	"fmt"
	"strings"

	"github.com/morloc-lang/morloc/internal/grammar/text"
)

// Grammar is the R backend's code-shape strategy.
type Grammar struct {
	text.Base
}

// New constructs the R Grammar.
func New() *Grammar {
	return &Grammar{Base: text.Base{
		LangName:   "r",
		Extension:  "R",
		CommentTok: "#",
		IndentUnit: "  ",
		TrueLit:    "TRUE",
		FalseLit:   "FALSE",
	}}
}

func (g *Grammar) Assign(lhs, rhs string) string {
	return fmt.Sprintf("%s <- %s", lhs, rhs)
}

func (g *Grammar) List(elems []string) string {
	return "list(" + strings.Join(elems, ", ") + ")"
}

func (g *Grammar) Tuple(elems []string) string {
	return "list(" + strings.Join(elems, ", ") + ")"
}

func (g *Grammar) Record(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s = %s", k, v))
	}
	return "list(" + strings.Join(parts, ", ") + ")"
}

func (g *Grammar) Import(path string) string {
	return fmt.Sprintf("library(%s)", path)
}

func (g *Grammar) FuncDecl(name string, params []string, body []string) string {
	lines := []string{fmt.Sprintf("%s <- function(%s) {", name, strings.Join(params, ", "))}
	lines = append(lines, g.IndentLines(body)...)
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func (g *Grammar) TryWrap(body string) string {
	lines := []string{
		"tryCatch({",
		g.Indent() + body,
		"}, error = function(_morloc_err) {",
		g.Indent() + `write(paste("morloc error:", conditionMessage(_morloc_err)), stderr())`,
		g.Indent() + "quit(status = 1)",
		"})",
	}
	return strings.Join(lines, "\n")
}

func (g *Grammar) Unpack(typeName, expr string) string {
	return fmt.Sprintf("morloc_unpack(%s, %s)", g.Quote(typeName), expr)
}

func (g *Grammar) Pack(typeName, expr string) string {
	return fmt.Sprintf("morloc_pack(%s, %s)", g.Quote(typeName), expr)
}

// ForeignCall shells out to another pool's executor via R's system2, the
// same subprocess bridge the other scripting backends use.
func (g *Grammar) ForeignCall(executor, poolPath string, manifoldID int, args []string) string {
	argv := append([]string{g.Quote(poolPath), g.Quote(fmt.Sprintf("%d", manifoldID))}, args...)
	return fmt.Sprintf("system2(%s, c(%s), stdout = TRUE)", g.Quote(executor), strings.Join(argv, ", "))
}

func (g *Grammar) DispatchTail(manifoldIDs []int) string {
	var b strings.Builder
	b.WriteString("morloc_mid <- as.integer(commandArgs(trailingOnly = TRUE)[1])\n")
	b.WriteString("morloc_args <- commandArgs(trailingOnly = TRUE)[-1]\n")
	for i, id := range manifoldIDs {
		kw := "if"
		if i > 0 {
			kw = "else if"
		}
		b.WriteString(fmt.Sprintf("%s (morloc_mid == %d) { cat(m%d(morloc_args)) }\n", kw, id, id))
	}
	b.WriteString(`else { write("no such manifold", stderr()); quit(status = 1) }` + "\n")
	return b.String()
}

func (g *Grammar) ArgAccessor(i int) string {
	return fmt.Sprintf("morloc_args[[%d]]", i+1)
}

func (g *Grammar) Main(body []string) string {
	return strings.Join(body, "\n")
}
