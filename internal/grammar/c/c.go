// Package c implements grammar.Grammar for C pool/source output. C pools
// are the one backend where packed values cross the wire as raw bytes
// rather than a host-native object, so Pack/Unpack render calls into a
// small runtime (morloc_pack_buf/morloc_unpack_buf) rather than an
// in-process conversion.
package c

import (
	"fmt"
	"strings"

	"github.com/morloc-lang/morloc/internal/grammar/text"
)

// Grammar is the C backend's code-shape strategy.
type Grammar struct {
	text.Base
}

// New constructs the C Grammar.
func New() *Grammar {
	return &Grammar{Base: text.Base{
		LangName:   "c",
		Extension:  "c",
		CommentTok: "//",
		IndentUnit: "    ",
		TrueLit:    "1",
		FalseLit:   "0",
	}}
}

func (g *Grammar) Record(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf(".%s = %s", k, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Assign terminates the statement, since C statements need a semicolon.
func (g *Grammar) Assign(lhs, rhs string) string {
	return fmt.Sprintf("%s = %s;", lhs, rhs)
}

func (g *Grammar) Import(path string) string {
	return fmt.Sprintf("#include %s", g.Quote(path))
}

func (g *Grammar) FuncDecl(name string, params []string, body []string) string {
	sig := make([]string, len(params))
	for i, p := range params {
		sig[i] = "morloc_value_t " + p
	}
	lines := []string{fmt.Sprintf("morloc_value_t %s(%s) {", name, strings.Join(sig, ", "))}
	lines = append(lines, g.IndentLines(body)...)
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// TryWrap reports a non-zero morloc_errno as a crash, since C has no
// exception mechanism to lean on.
func (g *Grammar) TryWrap(body string) string {
	lines := []string{
		body + ";",
		"if (morloc_errno != 0) {",
		g.Indent() + `fprintf(stderr, "morloc error: %s", morloc_strerror(morloc_errno));`,
		g.Indent() + "exit(1);",
		"}",
	}
	return strings.Join(lines, "\n")
}

func (g *Grammar) Unpack(typeName, expr string) string {
	return fmt.Sprintf("morloc_unpack_buf(%s, %s)", g.Quote(typeName), expr)
}

func (g *Grammar) Pack(typeName, expr string) string {
	return fmt.Sprintf("morloc_pack_buf(%s, %s)", g.Quote(typeName), expr)
}

// ForeignCall shells out to another pool's executor via the morloc runtime's
// process-bridge helper, passing the manifold ID and packed argument
// buffers and returning the packed result buffer.
func (g *Grammar) ForeignCall(executor, poolPath string, manifoldID int, args []string) string {
	argv := append([]string{g.Quote(executor), g.Quote(poolPath)}, args...)
	return fmt.Sprintf("morloc_foreign_call(%s, %d, %s)", strings.Join(argv, ", "), manifoldID, g.List(args))
}

func (g *Grammar) DispatchTail(manifoldIDs []int) string {
	var b strings.Builder
	b.WriteString("switch (morloc_mid) {\n")
	for _, id := range manifoldIDs {
		b.WriteString(fmt.Sprintf("case %d: return m%d(morloc_args);\n", id, id))
	}
	b.WriteString(`default: fprintf(stderr, "no such manifold"); exit(1);` + "\n")
	b.WriteString("}\n")
	return b.String()
}

func (g *Grammar) ArgAccessor(i int) string {
	return fmt.Sprintf("morloc_args[%d]", i)
}

func (g *Grammar) Main(body []string) string {
	lines := []string{"int main(int argc, char** argv) {"}
	lines = append(lines, g.IndentLines(body)...)
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}
