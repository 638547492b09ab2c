package cao

// CoreEntry is one genesis axiom's registry record: name,
// signature and documentation. The VM additionally hosts a built-in handler
// for each entry named here (vm_builtins.go); CoreEntry itself only carries
// the type-level facts the inferer and verifier need.
type CoreEntry struct {
	Name string
	Sig  TypeSig
	Doc  string
	// Group is the word-group label `words`/`help` use to print the
	// registry back out grouped.
	Group string
}

func sig(in, out []Type) TypeSig { return TypeSig{Inputs: in, Outputs: out} }

var a = VarType("a")
var b = VarType("b")

// coreLibrary is the fixed genesis-axiom registry populated at runtime
// construction; groups are declared in display order.
var coreLibrary = []CoreEntry{
	// Stack
	{"dup", sig([]Type{a}, []Type{a, a}), "duplicate the top of the stack", "Stack"},
	{"drop", sig([]Type{a}, nil), "discard the top of the stack", "Stack"},
	{"swap", sig([]Type{a, b}, []Type{b, a}), "exchange the top two elements", "Stack"},
	{"over", sig([]Type{a, b}, []Type{a, b, a}), "copy the second element to the top", "Stack"},
	{"rot", sig([]Type{VarType("a"), VarType("b"), VarType("c")}, []Type{VarType("b"), VarType("c"), VarType("a")}), "rotate the third element to the top", "Stack"},
	{"nip", sig([]Type{a, b}, []Type{b}), "remove the second element", "Stack"},
	{"tuck", sig([]Type{a, b}, []Type{b, a, b}), "copy the top below the second", "Stack"},

	// Arithmetic (Nat only; `-` faults on underflow, `1-` saturates, `/` `mod` fault on zero divisor)
	{"+", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KNat)}), "add two naturals", "Arithmetic"},
	{"-", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KNat)}), "subtract, faulting if the result would be below zero", "Arithmetic"},
	{"*", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KNat)}), "multiply two naturals", "Arithmetic"},
	{"/", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KNat)}), "divide, faulting on a zero divisor", "Arithmetic"},
	{"mod", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KNat)}), "remainder, faulting on a zero divisor", "Arithmetic"},
	{"1+", sig([]Type{concreteType(KNat)}, []Type{concreteType(KNat)}), "increment", "Arithmetic"},
	{"1-", sig([]Type{concreteType(KNat)}, []Type{concreteType(KNat)}), "decrement, saturating at zero", "Arithmetic"},

	// Compare/Logic
	{"=", sig([]Type{a, a}, []Type{concreteType(KBool)}), "structural equality", "Compare/Logic"},
	{"<>", sig([]Type{a, a}, []Type{concreteType(KBool)}), "structural inequality", "Compare/Logic"},
	{"<", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KBool)}), "less than, Nat only", "Compare/Logic"},
	{">", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KBool)}), "greater than, Nat only", "Compare/Logic"},
	{"<=", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KBool)}), "less than or equal, Nat only", "Compare/Logic"},
	{">=", sig([]Type{concreteType(KNat), concreteType(KNat)}, []Type{concreteType(KBool)}), "greater than or equal, Nat only", "Compare/Logic"},
	{"not", sig([]Type{concreteType(KBool)}, []Type{concreteType(KBool)}), "boolean negation", "Compare/Logic"},
	{"and", sig([]Type{concreteType(KBool), concreteType(KBool)}, []Type{concreteType(KBool)}), "boolean conjunction", "Compare/Logic"},
	{"or", sig([]Type{concreteType(KBool), concreteType(KBool)}, []Type{concreteType(KBool)}), "boolean disjunction", "Compare/Logic"},

	// Control
	{"if", sig([]Type{concreteType(KBool), concreteType(KQuote), concreteType(KQuote)}, nil), "execute the then- or else-quote", "Control"},
	{"when", sig([]Type{concreteType(KBool), concreteType(KQuote)}, nil), "execute the quote iff true", "Control"},
	{"unless", sig([]Type{concreteType(KBool), concreteType(KQuote)}, nil), "execute the quote iff false", "Control"},
	{"times", sig([]Type{concreteType(KNat), concreteType(KQuote)}, nil), "execute the quote n times", "Control"},
	{"call", sig([]Type{concreteType(KQuote)}, nil), "execute a quote as tokens", "Control"},

	// Types
	{"type-of", sig([]Type{a}, []Type{concreteType(KStr)}), "render a value's type name", "Types"},
	{"is-type?", sig([]Type{a, concreteType(KStr)}, []Type{concreteType(KBool)}), "test a value's type name", "Types"},
	{"cast", sig([]Type{a}, []Type{b}), "unsafe reinterpretation; never called from core logic", "Types"},

	// System
	{".", sig([]Type{a}, nil), "render and pop the top of the stack", "System"},
	{".s", sig(nil, nil), "render the entire stack without mutating it", "System"},
	{"words", sig(nil, nil), "list dictionary word names", "System"},
	{"see", sig(nil, nil), "print a word's signature and body", "System"},
	{"--ordinal", sig([]Type{concreteType(KQuote)}, []Type{concreteType(KOrdinal)}), "estimate a quote's ordinal cost", "System"},
	{"clear", sig(nil, nil), "clear the stack", "System"},
	{"depth", sig(nil, []Type{concreteType(KNat)}), "push the current stack depth", "System"},
	{"help", sig(nil, nil), "print core library documentation", "System"},
	{"quit", sig(nil, nil), "signal orderly termination to the host", "System"},

	// Constructors
	{"Some", sig([]Type{a}, []Type{OptionType(a)}), "wrap a value as Some", "Constructors"},
	{"None", sig(nil, []Type{OptionType(a)}), "push the empty option", "Constructors"},
	{"Ok", sig([]Type{a}, []Type{ResultType(a, b)}), "wrap a value as Ok", "Constructors"},
	{"Err", sig([]Type{a}, []Type{ResultType(a, b)}), "wrap a value as Err", "Constructors"},
	// `list` is inherently variadic (it pops a runtime-determined count of
	// values); its declared signature only accounts for the Nat count
	// argument, not the elements it goes on to consume. Real inference over
	// it is therefore necessarily approximate.
	{"list", sig([]Type{concreteType(KNat)}, []Type{ListType(a)}), "pop n values, push them as a List", "Constructors"},
}

var coreLibraryIndex = func() map[string]CoreEntry {
	idx := make(map[string]CoreEntry, len(coreLibrary))
	for _, e := range coreLibrary {
		idx[e.Name] = e
	}
	return idx
}()

// lookupCore returns a core library entry by name.
func lookupCore(name string) (CoreEntry, bool) {
	e, ok := coreLibraryIndex[name]
	return e, ok
}

// coreGroups returns the group names in display order.
func coreGroups() []string {
	return []string{"Stack", "Arithmetic", "Compare/Logic", "Control", "Types", "System", "Constructors"}
}
