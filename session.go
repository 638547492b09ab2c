package cao

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Session serialization: the core only promises structural
// accessors and a bulk installer, no wire-format stability. This is one
// reasonable encoding, built the way a front end consuming gjson/sjson
// would build and read an opaque blob, with tidwall/pretty for a
// human-diffable on-disk form.

// SaveSession renders rt's stack and dictionary into an opaque JSON blob.
func SaveSession(rt *Runtime) ([]byte, error) {
	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "stack", encodeValues(rt.vm.Stack)); err != nil {
		return nil, err
	}
	dict := map[string]interface{}{}
	for name, wd := range rt.vm.Dictionary {
		dict[name] = encodeWordDef(*wd)
	}
	if doc, err = sjson.Set(doc, "dictionary", dict); err != nil {
		return nil, err
	}
	pending := map[string]interface{}{}
	for name, sig := range rt.vm.PendingSignatures {
		pending[name] = encodeTypeSig(sig)
	}
	if doc, err = sjson.Set(doc, "pending_signatures", pending); err != nil {
		return nil, err
	}
	return pretty.Pretty([]byte(doc)), nil
}

// LoadSession installs a blob produced by SaveSession into rt, replacing
// its stack, dictionary and pending signatures wholesale.
func LoadSession(rt *Runtime, blob []byte) error {
	root := gjson.ParseBytes(blob)
	if !root.Exists() {
		return &SystemError{Message: "invalid session blob"}
	}

	stack, err := decodeValues(root.Get("stack"))
	if err != nil {
		return err
	}

	dictionary := map[string]*WordDef{}
	var decodeErr error
	root.Get("dictionary").ForEach(func(key, val gjson.Result) bool {
		wd, err := decodeWordDef(key.String(), val)
		if err != nil {
			decodeErr = err
			return false
		}
		dictionary[key.String()] = &wd
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	pending := map[string]TypeSig{}
	root.Get("pending_signatures").ForEach(func(key, val gjson.Result) bool {
		pending[key.String()] = decodeTypeSig(val)
		return true
	})

	rt.vm.Stack = stack
	rt.vm.Dictionary = dictionary
	rt.vm.PendingSignatures = pending
	return nil
}

func encodeValues(vs []Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = encodeValue(v)
	}
	return out
}

func decodeValues(r gjson.Result) ([]Value, error) {
	var out []Value
	var err error
	r.ForEach(func(_, item gjson.Result) bool {
		v, derr := decodeValue(item)
		if derr != nil {
			err = derr
			return false
		}
		out = append(out, v)
		return true
	})
	return out, err
}

func encodeValue(v Value) map[string]interface{} {
	m := map[string]interface{}{"kind": v.Kind.String()}
	switch v.Kind {
	case KBool:
		m["bool"] = v.Bool
	case KNat:
		m["nat"] = v.Nat
	case KStr:
		m["str"] = v.Str
	case KOrdinal:
		m["ordinal"] = encodeOrdinal(v.Ordinal)
	case KQuote:
		toks := make([]interface{}, len(v.Quote))
		for i, t := range v.Quote {
			toks[i] = encodeToken(t)
		}
		m["quote"] = toks
	case KComposite:
		fields := map[string]interface{}{}
		for _, f := range v.Composite.Fields {
			fields[f.Name] = encodeValue(f.Value)
		}
		m["composite_name"] = v.Composite.Name
		m["fields"] = fields
	case KOption:
		m["set"] = v.OptSet
		if v.OptSet {
			m["value"] = encodeValue(*v.Opt)
		}
	case KResult:
		m["ok"] = v.ResOK
		m["value"] = encodeValue(*v.Res)
	case KList:
		items := make([]interface{}, len(v.List))
		for i, item := range v.List {
			items[i] = encodeValue(item)
		}
		m["items"] = items
	}
	return m
}

func decodeValue(r gjson.Result) (Value, error) {
	kind := r.Get("kind").String()
	switch kind {
	case "Unit":
		return UnitValue(), nil
	case "Bool":
		return BoolValue(r.Get("bool").Bool()), nil
	case "Nat":
		return NatValue(r.Get("nat").Uint()), nil
	case "Str":
		return StrValue(r.Get("str").String()), nil
	case "Ordinal":
		return OrdinalValue(decodeOrdinal(r.Get("ordinal"))), nil
	case "Quote":
		toks, err := decodeTokens(r.Get("quote"))
		if err != nil {
			return Value{}, err
		}
		return QuoteValue(toks), nil
	case "Composite":
		var fields []Field
		var err error
		r.Get("fields").ForEach(func(key, val gjson.Result) bool {
			fv, ferr := decodeValue(val)
			if ferr != nil {
				err = ferr
				return false
			}
			fields = append(fields, Field{Name: key.String(), Value: fv})
			return true
		})
		if err != nil {
			return Value{}, err
		}
		return CompositeVal(&CompositeValue{Name: r.Get("composite_name").String(), Fields: fields}), nil
	case "Option":
		if !r.Get("set").Bool() {
			return NoneValue(), nil
		}
		inner, err := decodeValue(r.Get("value"))
		if err != nil {
			return Value{}, err
		}
		return SomeValue(inner), nil
	case "Result":
		inner, err := decodeValue(r.Get("value"))
		if err != nil {
			return Value{}, err
		}
		if r.Get("ok").Bool() {
			return OkValue(inner), nil
		}
		return ErrValue(inner), nil
	case "List":
		var items []Value
		var err error
		r.Get("items").ForEach(func(_, item gjson.Result) bool {
			v, ierr := decodeValue(item)
			if ierr != nil {
				err = ierr
				return false
			}
			items = append(items, v)
			return true
		})
		if err != nil {
			return Value{}, err
		}
		return ListValue(items), nil
	default:
		return Value{}, &SystemError{Message: fmt.Sprintf("unknown value kind in session blob: %q", kind)}
	}
}

func encodeToken(t Token) map[string]interface{} {
	switch t.Kind {
	case TLiteral:
		return map[string]interface{}{"kind": "Literal", "literal": encodeValue(t.Literal)}
	case TWord:
		return map[string]interface{}{"kind": "Word", "word": t.Word}
	case TMatch:
		arms := make([]interface{}, len(t.Match.Arms))
		for i, arm := range t.Match.Arms {
			body := make([]interface{}, len(arm.Body))
			for j, bt := range arm.Body {
				body[j] = encodeToken(bt)
			}
			arms[i] = map[string]interface{}{"pattern": encodePattern(arm.Pattern), "body": body}
		}
		value := make([]interface{}, len(t.Match.Value))
		for i, vt := range t.Match.Value {
			value[i] = encodeToken(vt)
		}
		return map[string]interface{}{"kind": "Match", "value": value, "arms": arms}
	default:
		return map[string]interface{}{"kind": "Comment", "comment": t.Comment}
	}
}

func decodeTokens(r gjson.Result) ([]Token, error) {
	var out []Token
	var err error
	r.ForEach(func(_, item gjson.Result) bool {
		t, derr := decodeToken(item)
		if derr != nil {
			err = derr
			return false
		}
		out = append(out, t)
		return true
	})
	return out, err
}

func decodeToken(r gjson.Result) (Token, error) {
	switch r.Get("kind").String() {
	case "Literal":
		v, err := decodeValue(r.Get("literal"))
		if err != nil {
			return Token{}, err
		}
		return litTok(v, 0), nil
	case "Word":
		return wordTok(r.Get("word").String(), 0), nil
	case "Match":
		value, err := decodeTokens(r.Get("value"))
		if err != nil {
			return Token{}, err
		}
		var arms []MatchArm
		r.Get("arms").ForEach(func(_, armR gjson.Result) bool {
			body, berr := decodeTokens(armR.Get("body"))
			if berr != nil {
				err = berr
				return false
			}
			arms = append(arms, MatchArm{Pattern: decodePattern(armR.Get("pattern")), Body: body})
			return true
		})
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TMatch, Match: &MatchForm{Value: value, Arms: arms}}, nil
	default:
		return Token{Kind: TComment, Comment: r.Get("comment").String()}, nil
	}
}

func encodePattern(p Pattern) map[string]interface{} {
	switch p.Kind {
	case PWild:
		return map[string]interface{}{"kind": "Wild"}
	case PVar:
		return map[string]interface{}{"kind": "Var", "var": p.Var}
	case PLit:
		return map[string]interface{}{"kind": "Lit", "lit": encodeValue(p.Lit)}
	case PCtor:
		args := make([]interface{}, len(p.Args))
		for i, a := range p.Args {
			args[i] = encodePattern(a)
		}
		return map[string]interface{}{"kind": "Ctor", "ctor": p.Ctor, "args": args}
	default: // PList
		args := make([]interface{}, len(p.Args))
		for i, a := range p.Args {
			args[i] = encodePattern(a)
		}
		return map[string]interface{}{"kind": "List", "args": args}
	}
}

func decodePattern(r gjson.Result) Pattern {
	switch r.Get("kind").String() {
	case "Var":
		return Pattern{Kind: PVar, Var: r.Get("var").String()}
	case "Lit":
		v, _ := decodeValue(r.Get("lit"))
		return Pattern{Kind: PLit, Lit: v}
	case "Ctor":
		var args []Pattern
		r.Get("args").ForEach(func(_, a gjson.Result) bool {
			args = append(args, decodePattern(a))
			return true
		})
		return Pattern{Kind: PCtor, Ctor: r.Get("ctor").String(), Args: args}
	case "List":
		var args []Pattern
		r.Get("args").ForEach(func(_, a gjson.Result) bool {
			args = append(args, decodePattern(a))
			return true
		})
		return Pattern{Kind: PList, Args: args}
	default:
		return Pattern{Kind: PWild}
	}
}

func encodeOrdinal(o Ordinal) map[string]interface{} {
	m := map[string]interface{}{"kind": o.Kind}
	switch o.Kind {
	case OZero:
		m["kind"] = "Zero"
	case OFinite:
		m["kind"] = "Finite"
		m["n"] = o.N
	case OOmega:
		m["kind"] = "Omega"
	case OOmegaPow:
		m["kind"] = "OmegaPow"
		m["exp"] = encodeOrdinal(*o.Exp)
	case OSum:
		m["kind"] = "Sum"
		terms := make([]interface{}, len(o.Terms))
		for i, t := range o.Terms {
			terms[i] = encodeOrdinal(t)
		}
		m["terms"] = terms
	case OProd:
		m["kind"] = "Prod"
		m["a"] = encodeOrdinal(*o.A)
		m["b"] = encodeOrdinal(*o.B)
	}
	return m
}

func decodeOrdinal(r gjson.Result) Ordinal {
	switch r.Get("kind").String() {
	case "Finite":
		return Finite(r.Get("n").Uint())
	case "Omega":
		return Omega()
	case "OmegaPow":
		return OmegaPow(decodeOrdinal(r.Get("exp")))
	case "Sum":
		var terms []Ordinal
		r.Get("terms").ForEach(func(_, t gjson.Result) bool {
			terms = append(terms, decodeOrdinal(t))
			return true
		})
		return Sum(terms...)
	case "Prod":
		return Prod(decodeOrdinal(r.Get("a")), decodeOrdinal(r.Get("b")))
	default:
		return Zero()
	}
}

func encodeType(t Type) map[string]interface{} {
	m := map[string]interface{}{"kind": t.Kind.String()}
	switch t.Kind {
	case KVar:
		m["name"] = t.Name
	case KOption:
		m["elem"] = encodeType(*t.Elem)
	case KResult:
		m["elem"] = encodeType(*t.Elem)
		m["errElem"] = encodeType(*t.ErrElem)
	case KList:
		m["elem"] = encodeType(*t.Elem)
	case KComposite:
		m["name"] = t.Name
		fields := map[string]interface{}{}
		for k, v := range t.Fields {
			fields[k] = encodeType(v)
		}
		m["fields"] = fields
	}
	return m
}

func decodeType(r gjson.Result) Type {
	switch r.Get("kind").String() {
	case "Var":
		return VarType(r.Get("name").String())
	case "Option":
		return OptionType(decodeType(r.Get("elem")))
	case "Result":
		return ResultType(decodeType(r.Get("elem")), decodeType(r.Get("errElem")))
	case "List":
		return ListType(decodeType(r.Get("elem")))
	case "Composite":
		fields := map[string]Type{}
		r.Get("fields").ForEach(func(key, val gjson.Result) bool {
			fields[key.String()] = decodeType(val)
			return true
		})
		return CompositeType(r.Get("name").String(), fields)
	default:
		if k, ok := builtinTypeNames[r.Get("kind").String()]; ok {
			return concreteType(k)
		}
		return concreteType(KUnit)
	}
}

func encodeTypeSig(sig TypeSig) map[string]interface{} {
	ins := make([]interface{}, len(sig.Inputs))
	for i, t := range sig.Inputs {
		ins[i] = encodeType(t)
	}
	outs := make([]interface{}, len(sig.Outputs))
	for i, t := range sig.Outputs {
		outs[i] = encodeType(t)
	}
	return map[string]interface{}{"inputs": ins, "outputs": outs}
}

func decodeTypeSig(r gjson.Result) TypeSig {
	var sig TypeSig
	r.Get("inputs").ForEach(func(_, t gjson.Result) bool {
		sig.Inputs = append(sig.Inputs, decodeType(t))
		return true
	})
	r.Get("outputs").ForEach(func(_, t gjson.Result) bool {
		sig.Outputs = append(sig.Outputs, decodeType(t))
		return true
	})
	return sig
}

func encodeWordDef(wd WordDef) map[string]interface{} {
	body := make([]interface{}, len(wd.Body))
	for i, t := range wd.Body {
		body[i] = encodeToken(t)
	}
	return map[string]interface{}{
		"signature": encodeTypeSig(wd.Signature),
		"body":      body,
		"is_axiom":  wd.IsAxiom,
		"ordinal":   encodeOrdinal(wd.Ordinal),
		"doc":       wd.Doc,
	}
}

func decodeWordDef(name string, r gjson.Result) (WordDef, error) {
	body, err := decodeTokens(r.Get("body"))
	if err != nil {
		return WordDef{}, err
	}
	return WordDef{
		Name:      name,
		Signature: decodeTypeSig(r.Get("signature")),
		Body:      body,
		IsAxiom:   r.Get("is_axiom").Bool(),
		Ordinal:   decodeOrdinal(r.Get("ordinal")),
		Doc:       r.Get("doc").String(),
	}, nil
}
