package cao

import (
	"fmt"
	"strings"
)

// Render produces a value's canonical text form, used by `.`, `.s`
// and anywhere else a Value reaches the text sink.
func Render(v Value) string {
	switch v.Kind {
	case KUnit:
		return "()"
	case KBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KNat:
		return fmt.Sprintf("%d", v.Nat)
	case KStr:
		return v.Str
	case KOrdinal:
		return v.Ordinal.Render()
	case KQuote:
		parts := make([]string, len(v.Quote))
		for i, t := range v.Quote {
			parts[i] = RenderToken(t)
		}
		return "[ " + strings.Join(parts, " ") + " ]"
	case KComposite:
		var b strings.Builder
		b.WriteString(v.Composite.Name)
		b.WriteString("{ ")
		for i, f := range v.Composite.Fields {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s:%s", f.Name, Render(f.Value))
		}
		b.WriteString(" }")
		return b.String()
	case KOption:
		if v.OptSet {
			return "Some(" + Render(*v.Opt) + ")"
		}
		return "None"
	case KResult:
		if v.ResOK {
			return "Ok(" + Render(*v.Res) + ")"
		}
		return "Err(" + Render(*v.Res) + ")"
	case KList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = Render(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}

// RenderToken renders one token of a Quote's body for display purposes. It
// is not a parser round-trip: match forms render as a placeholder since
// their surface syntax (matchsyntax.go) has no canonical rendered form.
func RenderToken(t Token) string {
	switch t.Kind {
	case TLiteral:
		if t.Literal.Kind == KStr {
			return `"` + t.Literal.Str + `"`
		}
		return Render(t.Literal)
	case TWord:
		return t.Word
	case TComment:
		return "( " + t.Comment + " )"
	case TMatch:
		return "match ... end"
	default:
		return "?"
	}
}

// RenderStack renders `.s`'s "<depth> v1 v2 … vN" line (no trailing newline;
// callers own line endings).
func RenderStack(stack []Value) string {
	parts := make([]string, 0, len(stack)+1)
	parts = append(parts, fmt.Sprintf("%d", len(stack)))
	for _, v := range stack {
		parts = append(parts, Render(v))
	}
	return strings.Join(parts, " ")
}
