package cao

import "fmt"

// Kind discriminates the constructors of Value and Type.
type Kind int

const (
	KUnit Kind = iota
	KBool
	KNat
	KStr
	KOrdinal
	KQuote
	KComposite
	KOption
	KResult
	KList
	KVar // Type-only: a schematic type variable.
)

func (k Kind) String() string {
	switch k {
	case KUnit:
		return "Unit"
	case KBool:
		return "Bool"
	case KNat:
		return "Nat"
	case KStr:
		return "Str"
	case KOrdinal:
		return "Ordinal"
	case KQuote:
		return "Quote"
	case KComposite:
		return "Composite"
	case KOption:
		return "Option"
	case KResult:
		return "Result"
	case KList:
		return "List"
	case KVar:
		return "Var"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the runtime's tagged value universe. The zero Value is
// Unit. Exactly one of the payload fields is meaningful, chosen by Kind.
type Value struct {
	Kind Kind

	Bool bool
	Nat  uint64
	Str  string

	Ordinal Ordinal
	Quote   []Token

	Composite *CompositeValue

	// Option: OptSet indicates Some(Opt); OptSet false is None.
	OptSet bool
	Opt    *Value

	// Result: ResOK selects Ok(Res) vs Err(Res).
	ResOK bool
	Res   *Value

	List []Value
}

// CompositeValue is a named tag plus insertion-ordered fields.
type CompositeValue struct {
	Name   string
	Fields []Field
}

// Field is one named slot of a CompositeValue or Composite type.
type Field struct {
	Name  string
	Value Value
}

func (c *CompositeValue) get(name string) (Value, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Constructors for commonly built values.

func UnitValue() Value                  { return Value{Kind: KUnit} }
func BoolValue(b bool) Value            { return Value{Kind: KBool, Bool: b} }
func NatValue(n uint64) Value           { return Value{Kind: KNat, Nat: n} }
func StrValue(s string) Value           { return Value{Kind: KStr, Str: s} }
func OrdinalValue(o Ordinal) Value      { return Value{Kind: KOrdinal, Ordinal: o} }
func QuoteValue(ts []Token) Value       { return Value{Kind: KQuote, Quote: ts} }
func NoneValue() Value                  { return Value{Kind: KOption} }
func SomeValue(v Value) Value           { return Value{Kind: KOption, OptSet: true, Opt: &v} }
func OkValue(v Value) Value             { return Value{Kind: KResult, ResOK: true, Res: &v} }
func ErrValue(v Value) Value            { return Value{Kind: KResult, ResOK: false, Res: &v} }
func ListValue(items []Value) Value     { return Value{Kind: KList, List: items} }
func CompositeVal(c *CompositeValue) Value {
	return Value{Kind: KComposite, Composite: c}
}

// TypeOf returns the concrete Type of a value. Composite, Option, Result
// and List carry element/field type information recursively so that
// TypeOf can stand in for the "type-of" core word.
func (v Value) TypeOf() Type {
	switch v.Kind {
	case KUnit:
		return Type{Kind: KUnit}
	case KBool:
		return Type{Kind: KBool}
	case KNat:
		return Type{Kind: KNat}
	case KStr:
		return Type{Kind: KStr}
	case KOrdinal:
		return Type{Kind: KOrdinal}
	case KQuote:
		return Type{Kind: KQuote}
	case KComposite:
		fields := make(map[string]Type, len(v.Composite.Fields))
		for _, f := range v.Composite.Fields {
			fields[f.Name] = f.Value.TypeOf()
		}
		return Type{Kind: KComposite, Name: v.Composite.Name, Fields: fields}
	case KOption:
		if v.OptSet {
			return Type{Kind: KOption, Elem: typeRef(v.Opt.TypeOf())}
		}
		return Type{Kind: KOption, Elem: typeRef(Type{Kind: KVar, Name: "a"})}
	case KResult:
		if v.ResOK {
			return Type{Kind: KResult, Elem: typeRef(v.Res.TypeOf()), ErrElem: typeRef(Type{Kind: KVar, Name: "e"})}
		}
		return Type{Kind: KResult, Elem: typeRef(Type{Kind: KVar, Name: "a"}), ErrElem: typeRef(v.Res.TypeOf())}
	case KList:
		if len(v.List) == 0 {
			return Type{Kind: KList, Elem: typeRef(Type{Kind: KVar, Name: "a"})}
		}
		return Type{Kind: KList, Elem: typeRef(v.List[0].TypeOf())}
	default:
		return Type{Kind: v.Kind}
	}
}

func typeRef(t Type) *Type { return &t }

// Equal implements total, structural (in)equality:
// cross-constructor comparisons are simply unequal, never an error.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KUnit:
		return true
	case KBool:
		return v.Bool == o.Bool
	case KNat:
		return v.Nat == o.Nat
	case KStr:
		return v.Str == o.Str
	case KOrdinal:
		return v.Ordinal.Compare(o.Ordinal) == 0
	case KQuote:
		if len(v.Quote) != len(o.Quote) {
			return false
		}
		for i := range v.Quote {
			if !v.Quote[i].Equal(o.Quote[i]) {
				return false
			}
		}
		return true
	case KComposite:
		return v.Composite.equal(o.Composite)
	case KOption:
		if v.OptSet != o.OptSet {
			return false
		}
		return !v.OptSet || v.Opt.Equal(*o.Opt)
	case KResult:
		if v.ResOK != o.ResOK {
			return false
		}
		return v.Res.Equal(*o.Res)
	case KList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *CompositeValue) equal(o *CompositeValue) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Name != o.Name || len(c.Fields) != len(o.Fields) {
		return false
	}
	for _, f := range c.Fields {
		ov, ok := o.get(f.Name)
		if !ok || !f.Value.Equal(ov) {
			return false
		}
	}
	return true
}

// Less orders two values by their Nat payloads only; it ignores Kind, so
// callers must check TypeOf first.
func (v Value) Less(o Value) bool { return v.Nat < o.Nat }
