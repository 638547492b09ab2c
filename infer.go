package cao

import "fmt"

// SigLookup resolves a word name to a signature during inference, searching
// core library ∪ dictionary ∪ pending signatures.
type SigLookup func(name string) (TypeSig, bool)

// Infer runs Hindley-Milner-style unification over stack effects and
// returns the most general TypeSig for body, or a typed error.
func Infer(body []Token, lookup SigLookup) (TypeSig, error) {
	inf := &inferer{lookup: lookup, subst: map[string]Type{}}
	for _, t := range body {
		if err := inf.step(t); err != nil {
			return TypeSig{}, err
		}
	}
	outputs := make([]Type, len(inf.stack))
	for i, t := range inf.stack {
		outputs[i] = inf.apply(t)
	}
	inputs := make([]Type, len(inf.inputs))
	for i, t := range inf.inputs {
		inputs[i] = inf.apply(t)
	}
	return TypeSig{Inputs: inputs, Outputs: outputs}, nil
}

// unifySigs checks a declared signature against an inferred one: equal
// arities, with each corresponding pair of types unifiable. Declared
// signatures may be more specific than inferred ones; unification covers
// that case by binding the inferred signature's Vars.
func unifySigs(declared, inferred TypeSig) error {
	if len(declared.Inputs) != len(inferred.Inputs) || len(declared.Outputs) != len(inferred.Outputs) {
		return &TypeError{Message: "signature arity mismatch"}
	}
	u := &inferer{subst: map[string]Type{}}
	inst := u.instantiate(inferred)
	for i := range declared.Inputs {
		if err := u.unify(inst.Inputs[i], declared.Inputs[i]); err != nil {
			return err
		}
	}
	for i := range declared.Outputs {
		if err := u.unify(inst.Outputs[i], declared.Outputs[i]); err != nil {
			return err
		}
	}
	return nil
}

type inferer struct {
	lookup SigLookup
	stack  []Type // abstract stack, top = end
	inputs []Type // accumulated underflow types, already in top-of-stack-rightmost order
	subst  map[string]Type
	fresh  int
}

func (inf *inferer) step(t Token) error {
	switch t.Kind {
	case TLiteral:
		inf.stack = append(inf.stack, t.Literal.TypeOf())
		return nil
	case TWord:
		return inf.stepWord(t.Word)
	case TMatch:
		return &TypeError{Message: fmt.Sprintf("unsupported form for inference: match")}
	default:
		return &TypeError{Message: fmt.Sprintf("unsupported form for inference: %v", t.Kind)}
	}
}

func (inf *inferer) stepWord(name string) error {
	declared, ok := inf.lookup(name)
	if !ok {
		return &UndefinedError{Name: name}
	}
	instSig := inf.instantiate(declared)

	for i := len(instSig.Inputs) - 1; i >= 0; i-- {
		want := instSig.Inputs[i]
		if n := len(inf.stack); n > 0 {
			got := inf.stack[n-1]
			inf.stack = inf.stack[:n-1]
			if err := inf.unify(got, want); err != nil {
				return err
			}
		} else {
			inf.inputs = append([]Type{want}, inf.inputs...)
		}
	}
	for _, out := range instSig.Outputs {
		inf.stack = append(inf.stack, out)
	}
	return nil
}

// instantiate refreshes every Var in sig to a new name, consistently within
// this one instantiation.
func (inf *inferer) instantiate(sig TypeSig) TypeSig {
	rename := map[string]string{}
	return TypeSig{
		Inputs:  inf.instantiateAll(sig.Inputs, rename),
		Outputs: inf.instantiateAll(sig.Outputs, rename),
	}
}

func (inf *inferer) instantiateAll(ts []Type, rename map[string]string) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = inf.instantiateOne(t, rename)
	}
	return out
}

func (inf *inferer) instantiateOne(t Type, rename map[string]string) Type {
	switch t.Kind {
	case KVar:
		n, ok := rename[t.Name]
		if !ok {
			inf.fresh++
			n = fmt.Sprintf("%s#%d", t.Name, inf.fresh)
			rename[t.Name] = n
		}
		return VarType(n)
	case KOption:
		e := inf.instantiateOne(*t.Elem, rename)
		return OptionType(e)
	case KResult:
		ok := inf.instantiateOne(*t.Elem, rename)
		errT := inf.instantiateOne(*t.ErrElem, rename)
		return ResultType(ok, errT)
	case KList:
		e := inf.instantiateOne(*t.Elem, rename)
		return ListType(e)
	case KComposite:
		fields := make(map[string]Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = inf.instantiateOne(v, rename)
		}
		return CompositeType(t.Name, fields)
	default:
		return t
	}
}

// apply deep-resolves every Var in t against the current substitution.
func (inf *inferer) apply(t Type) Type {
	switch t.Kind {
	case KVar:
		if bound, ok := inf.subst[t.Name]; ok {
			return inf.apply(bound)
		}
		return t
	case KOption:
		e := inf.apply(*t.Elem)
		return OptionType(e)
	case KResult:
		ok := inf.apply(*t.Elem)
		errT := inf.apply(*t.ErrElem)
		return ResultType(ok, errT)
	case KList:
		e := inf.apply(*t.Elem)
		return ListType(e)
	case KComposite:
		fields := make(map[string]Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = inf.apply(v)
		}
		return CompositeType(t.Name, fields)
	default:
		return t
	}
}

// unify is the standard first-order unification algorithm with an occurs
// check; substitution composition is simply adding to
// the shared inf.subst map, so later unifications see earlier bindings.
func (inf *inferer) unify(t1, t2 Type) error {
	t1 = inf.apply(t1)
	t2 = inf.apply(t2)

	if t1.Kind == KVar && t2.Kind == KVar && t1.Name == t2.Name {
		return nil
	}
	if t1.Kind == KVar {
		if inf.occurs(t1.Name, t2) {
			return &TypeError{Message: "occurs check failed", Left: t1, Right: t2}
		}
		inf.subst[t1.Name] = t2
		return nil
	}
	if t2.Kind == KVar {
		return inf.unify(t2, t1)
	}
	if t1.Kind != t2.Kind {
		return &TypeError{Message: "cannot unify", Left: t1, Right: t2}
	}
	switch t1.Kind {
	case KOption:
		return inf.unify(*t1.Elem, *t2.Elem)
	case KResult:
		if err := inf.unify(*t1.Elem, *t2.Elem); err != nil {
			return err
		}
		return inf.unify(*t1.ErrElem, *t2.ErrElem)
	case KList:
		return inf.unify(*t1.Elem, *t2.Elem)
	case KComposite:
		if t1.Name != t2.Name || len(t1.Fields) != len(t2.Fields) {
			return &TypeError{Message: "cannot unify composites", Left: t1, Right: t2}
		}
		for k, v := range t1.Fields {
			ov, ok := t2.Fields[k]
			if !ok {
				return &TypeError{Message: "cannot unify composites", Left: t1, Right: t2}
			}
			if err := inf.unify(v, ov); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (inf *inferer) occurs(name string, t Type) bool {
	t = inf.apply(t)
	switch t.Kind {
	case KVar:
		return t.Name == name
	case KOption, KList:
		return inf.occurs(name, *t.Elem)
	case KResult:
		return inf.occurs(name, *t.Elem) || inf.occurs(name, *t.ErrElem)
	case KComposite:
		for _, v := range t.Fields {
			if inf.occurs(name, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
