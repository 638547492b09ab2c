package cao

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the type universe: Unit | Bool | Nat | Str | Ordinal |
// Quote | Var(name) | Option(T) | Result(T,E) | List(T) | Composite{name,
// fields}. Elem/ErrElem hold the single nested type for Option/List and
// Result respectively (ErrElem is Result's error-side type).
type Type struct {
	Kind Kind
	Name string // Var name, or Composite tag name.

	Elem    *Type // Option(elem), List(elem), Result(ok=elem)
	ErrElem *Type // Result(err=ErrElem)

	Fields map[string]Type // Composite only.
}

func concreteType(k Kind) Type { return Type{Kind: k} }

// VarType builds a fresh schematic type variable.
func VarType(name string) Type { return Type{Kind: KVar, Name: name} }

// OptionType, ResultType, ListType, CompositeType build compound types.
func OptionType(elem Type) Type { return Type{Kind: KOption, Elem: &elem} }
func ResultType(ok, err Type) Type {
	return Type{Kind: KResult, Elem: &ok, ErrElem: &err}
}
func ListType(elem Type) Type { return Type{Kind: KList, Elem: &elem} }
func CompositeType(name string, fields map[string]Type) Type {
	return Type{Kind: KComposite, Name: name, Fields: fields}
}

// Equal is structural equality over Type: Composite requires equal tag and
// equal field map. Two distinct Vars are unequal; unification
// (infer.go) is what makes Vars interchangeable during inference.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KVar:
		return t.Name == o.Name
	case KOption:
		return t.Elem.Equal(*o.Elem)
	case KResult:
		return t.Elem.Equal(*o.Elem) && t.ErrElem.Equal(*o.ErrElem)
	case KList:
		return t.Elem.Equal(*o.Elem)
	case KComposite:
		if t.Name != o.Name || len(t.Fields) != len(o.Fields) {
			return false
		}
		for k, v := range t.Fields {
			ov, ok := o.Fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KVar:
		return t.Name
	case KOption:
		return "Option(" + t.Elem.String() + ")"
	case KResult:
		return "Result(" + t.Elem.String() + "," + t.ErrElem.String() + ")"
	case KList:
		return "List(" + t.Elem.String() + ")"
	case KComposite:
		names := make([]string, 0, len(t.Fields))
		for n := range t.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		var b strings.Builder
		b.WriteString(t.Name)
		b.WriteByte('{')
		for i, n := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s:%s", n, t.Fields[n])
		}
		b.WriteByte('}')
		return b.String()
	default:
		return t.Kind.String()
	}
}

// builtinTypeNames maps the concrete type keywords recognized by the parser
// to their Type. Any other identifier becomes a fresh Var.
var builtinTypeNames = map[string]Kind{
	"Unit":    KUnit,
	"Bool":    KBool,
	"Nat":     KNat,
	"Ordinal": KOrdinal,
	"Quote":   KQuote,
	"Str":     KStr,
}

func namedType(ident string) Type {
	if k, ok := builtinTypeNames[ident]; ok {
		return concreteType(k)
	}
	return VarType(ident)
}

// TypeSig is a stack-effect signature, written ( inputs -> outputs ),
// inputs read top-of-stack-rightmost.
type TypeSig struct {
	Inputs  []Type
	Outputs []Type
}

func (s TypeSig) String() string {
	parts := make([]string, 0, len(s.Inputs)+len(s.Outputs)+1)
	for _, in := range s.Inputs {
		parts = append(parts, in.String())
	}
	parts = append(parts, "->")
	for _, out := range s.Outputs {
		parts = append(parts, out.String())
	}
	return "( " + strings.Join(parts, " ") + " )"
}

// Equal compares two signatures structurally, element-wise.
func (s TypeSig) Equal(o TypeSig) bool {
	if len(s.Inputs) != len(o.Inputs) || len(s.Outputs) != len(o.Outputs) {
		return false
	}
	for i := range s.Inputs {
		if !s.Inputs[i].Equal(o.Inputs[i]) {
			return false
		}
	}
	for i := range s.Outputs {
		if !s.Outputs[i].Equal(o.Outputs[i]) {
			return false
		}
	}
	return true
}

// Empty reports whether both arities are zero (the "no signature yet"
// sentinel used by declarations pending inference).
func (s TypeSig) Empty() bool { return len(s.Inputs) == 0 && len(s.Outputs) == 0 }

// WordDef is a dictionary entry.
type WordDef struct {
	Name      string
	Signature TypeSig
	Body      []Token
	IsAxiom   bool
	Ordinal   Ordinal
	Doc       string
}
