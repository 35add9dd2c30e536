package ast

import "strings"

// PrintType renders t back to morloc's surface type syntax. It exists to
// satisfy the round-trip law of spec §8 ("emitting and re-reading a
// realization's abstract type yields a structurally equal type") and to
// drive the nexus `-h` help text of §4.6.
func PrintType(t *Type) string {
	var b strings.Builder
	printType(&b, t)
	return b.String()
}

func printType(b *strings.Builder, t *Type) {
	if t == nil {
		b.WriteString("?")
		return
	}
	switch t.Kind {
	case KindVar:
		b.WriteString(t.Var.String())
	case KindForall:
		b.WriteString("forall ")
		b.WriteString(t.Bound.String())
		b.WriteString(". ")
		printType(b, t.Body)
	case KindExistential:
		b.WriteString("?")
		b.WriteString(t.Name)
	case KindFunction:
		for _, p := range t.Params {
			printParenIfFunc(b, p)
			b.WriteString(" -> ")
		}
		printType(b, t.Result)
	case KindApp:
		b.WriteString(t.Name)
		for _, a := range t.Args {
			b.WriteString(" ")
			printParenIfComposite(b, a)
		}
	case KindRecord:
		b.WriteString(t.Name)
		b.WriteString(" {")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(f.Key))
			b.WriteString(" :: ")
			printType(b, f.Type)
		}
		b.WriteString("}")
	default:
		b.WriteString("<invalid>")
	}
}

func printParenIfFunc(b *strings.Builder, t *Type) {
	if t != nil && t.Kind == KindFunction {
		b.WriteString("(")
		printType(b, t)
		b.WriteString(")")
		return
	}
	printType(b, t)
}

func printParenIfComposite(b *strings.Builder, t *Type) {
	if t != nil && (t.Kind == KindFunction || t.Kind == KindApp && len(t.Args) > 0) {
		b.WriteString("(")
		printType(b, t)
		b.WriteString(")")
		return
	}
	printType(b, t)
}
