// Package python implements grammar.Grammar for Python pool/source output,
// rendering the shapes §4.5 requires (Cis function bodies, foreign calls,
// the dispatch tail) in the subprocess-and-stdio style real morloc pools
// use to talk to one another.
package python

import (
	"fmt"
	"strings"

	"github.com/morloc-lang/morloc/internal/grammar/text"
)

// Grammar is the Python backend's code-shape strategy.
type Grammar struct {
	text.Base
}

// New constructs the Python Grammar.
func New() *Grammar {
	return &Grammar{Base: text.Base{
		LangName:   "py",
		Extension:  "py",
		CommentTok: "#",
		IndentUnit: "    ",
		TrueLit:    "True",
		FalseLit:   "False",
	}}
}

func (g *Grammar) Record(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", g.Quote(k), v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (g *Grammar) Import(path string) string {
	return "import " + path
}

func (g *Grammar) FuncDecl(name string, params []string, body []string) string {
	lines := []string{fmt.Sprintf("def %s(%s):", name, strings.Join(params, ", "))}
	if len(body) == 0 {
		lines = append(lines, g.Indent()+"pass")
	} else {
		lines = append(lines, g.IndentLines(body)...)
	}
	return strings.Join(lines, "\n")
}

// TryWrap reports runtime errors on stderr as a tagged failure line so the
// nexus (or a calling pool) can distinguish a normal result from a crash.
func (g *Grammar) TryWrap(body string) string {
	lines := []string{
		"try:",
		g.Indent() + body,
		"except Exception as _morloc_err:",
		g.Indent() + `sys.stderr.write("morloc error: " + str(_morloc_err))`,
		g.Indent() + "sys.exit(1)",
	}
	return strings.Join(lines, "\n")
}

func (g *Grammar) Unpack(typeName, expr string) string {
	return fmt.Sprintf("morloc_unpack(%s, %s)", g.Quote(typeName), expr)
}

func (g *Grammar) Pack(typeName, expr string) string {
	return fmt.Sprintf("morloc_pack(%s, %s)", g.Quote(typeName), expr)
}

// ForeignCall shells out to another pool's executor, passing the manifold
// ID and pre-packed arguments on argv and reading the packed result back
// from stdout, mirroring the subprocess bridge real morloc pools use.
func (g *Grammar) ForeignCall(executor, poolPath string, manifoldID int, args []string) string {
	argv := append([]string{g.Quote(executor), g.Quote(poolPath), g.Quote(fmt.Sprintf("%d", manifoldID))}, args...)
	return fmt.Sprintf("subprocess.run([%s], capture_output=True, check=True).stdout.decode()", strings.Join(argv, ", "))
}

func (g *Grammar) DispatchTail(manifoldIDs []int) string {
	var b strings.Builder
	b.WriteString("_morloc_mid = int(sys.argv[1])\n")
	b.WriteString("_morloc_args = sys.argv[2:]\n")
	for i, id := range manifoldIDs {
		kw := "if"
		if i > 0 {
			kw = "elif"
		}
		b.WriteString(fmt.Sprintf("%s _morloc_mid == %d:\n%ssys.stdout.write(m%d(*_morloc_args))\n", kw, id, g.Indent(), id))
	}
	b.WriteString("else:\n" + g.Indent() + `sys.stderr.write("no such manifold")` + "\n" + g.Indent() + "sys.exit(1)\n")
	return b.String()
}

func (g *Grammar) ArgAccessor(i int) string {
	return fmt.Sprintf("_morloc_args[%d]", i)
}

func (g *Grammar) Main(body []string) string {
	lines := append([]string{`if __name__ == "__main__":`}, g.IndentLines(body)...)
	return strings.Join(lines, "\n")
}
