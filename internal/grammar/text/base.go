// Package text provides the shared, purely-lexical half of a text-rendered
// Grammar (quoting, literals, indentation, comments) so the
// python/c/r grammar packages only need to write the language-shaped
// methods (FuncDecl, TryWrap, ForeignCall, Main, Record, Import, Unpack,
// Pack, DispatchTail, ArgAccessor, plus any lexical method whose syntax
// differs, such as C's Assign or R's List) themselves. Grounded in
// the teacher's option-driven, string-building helpers in
// internal/parser/builder.go (name/tag formatting) generalized from Go
// struct-tag syntax to arbitrary target-language token sets.
package text

import (
	"fmt"
	"strings"
)

// Base holds the literal tokens that differ between otherwise-similar
// scripting languages and implements the Grammar methods that are pure
// syntax, not control flow.
type Base struct {
	LangName   string
	Extension  string
	CommentTok string
	IndentUnit string
	TrueLit    string
	FalseLit   string
}

func (b Base) Lang() string { return b.LangName }
func (b Base) Ext() string  { return b.Extension }

func (b Base) Comment(text string) string {
	return b.CommentTok + " " + text
}

func (b Base) Assign(lhs, rhs string) string {
	return fmt.Sprintf("%s = %s", lhs, rhs)
}

func (b Base) Call(fn string, args ...string) string {
	return fmt.Sprintf("%s(%s)", fn, strings.Join(args, ", "))
}

func (b Base) Quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func (b Base) Bool(v bool) string {
	if v {
		return b.TrueLit
	}
	return b.FalseLit
}

func (b Base) List(elems []string) string {
	return "[" + strings.Join(elems, ", ") + "]"
}

func (b Base) Tuple(elems []string) string {
	return "(" + strings.Join(elems, ", ") + ")"
}

func (b Base) Indent() string { return b.IndentUnit }

// IndentLines prefixes every non-empty line of body with one IndentUnit,
// a small helper every language package's FuncDecl/TryWrap reuses.
func (b Base) IndentLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = l
			continue
		}
		out[i] = b.IndentUnit + l
	}
	return out
}
