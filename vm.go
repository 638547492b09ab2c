package cao

import "io"

// defState is the definition-mode state machine driving the streaming,
// token-at-a-time Feed entry point.
type defState int

const (
	dNormal defState = iota
	dAwaitingSigName
	dInSignature
	dAwaitingBodyName
	dInBody
)

// VM is the stack-based evaluator: stack, dictionary,
// pending signatures, call stack and the definition-mode state machine all
// live here. A VM is single-threaded and must not be shared across
// goroutines without external synchronization.
type VM struct {
	Stack             []Value
	Dictionary        map[string]*WordDef
	PendingSignatures map[string]TypeSig
	CallStack         []string
	MaxRecursionDepth int
	Mode              VerifyMode

	// CtorFields records the field layout of each `type` declaration's
	// generated constructor word, keyed by type/constructor name; a
	// dictionary entry with a nil Body is a constructor iff its name is
	// here.
	CtorFields map[string][]TypeField

	// Out is the host-supplied text sink; the core never otherwise
	// touches the outside world.
	Out io.Writer

	defining defState
	sigName  string
	sigBuf   []Token
	bodyName string
	bodyBuf  []Token

	// quoteStack buffers a streaming QuoteStart..QuoteEnd span so Feed can
	// fold it into a single Literal(Quote) the same way Parse does for
	// batch input.
	quoteStack [][]Token

	halted bool
}

// NewVM constructs an empty VM; the core library is looked up directly by
// name (see lookupCore) rather than pre-installed into Dictionary, since
// axioms are immutable and never shadowed.
func NewVM() *VM {
	return &VM{
		Dictionary:        map[string]*WordDef{},
		PendingSignatures: map[string]TypeSig{},
		CtorFields:        map[string][]TypeField{},
		MaxRecursionDepth: 512,
		Mode:              Lenient,
	}
}

func (vm *VM) Halted() bool { return vm.halted }

// sigLookup resolves a name against core ∪ dictionary ∪ pending, the search
// order used when instantiating a word's signature during inference.
func (vm *VM) sigLookup(name string) (TypeSig, bool) {
	if e, ok := lookupCore(name); ok {
		return e.Sig, true
	}
	if wd, ok := vm.Dictionary[name]; ok {
		return wd.Signature, true
	}
	if sig, ok := vm.PendingSignatures[name]; ok {
		return sig, true
	}
	return TypeSig{}, false
}

// callGraph returns the direct-call bodies of every derived dictionary word,
// the input verifyStrict needs to build its call graph.
func (vm *VM) callGraph() map[string][]Token {
	g := make(map[string][]Token, len(vm.Dictionary))
	for name, wd := range vm.Dictionary {
		if !wd.IsAxiom && wd.Body != nil {
			g[name] = wd.Body
		}
	}
	return g
}

// EvalSource runs the full batch pipeline: lex, parse, then dispatch each
// statement. This is the primary entry point;
// Feed (below) offers the token-at-a-time alternative for a streaming
// front end.
func (vm *VM) EvalSource(src string) error {
	toks, err := Lex(src)
	if err != nil {
		return err
	}
	stmts, err := Parse(toks)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := vm.execStatement(stmt); err != nil {
			if _, isQuit := err.(quitSignal); isQuit {
				vm.halted = true
				return nil
			}
			return err
		}
	}
	return nil
}

func (vm *VM) execStatement(stmt Statement) error {
	switch stmt.Kind {
	case StmtExpression:
		return vm.execTokens(stmt.Tokens)
	case StmtTypeSigDecl:
		vm.PendingSignatures[stmt.Name] = stmt.Sig
		return nil
	case StmtWordDef:
		return vm.installWordDef(stmt.Name, stmt.Body)
	case StmtTypeDef:
		return vm.installTypeDef(stmt.Name, stmt.Fields)
	case StmtAxiomDecl:
		return vm.installAxiom(stmt.Name)
	default:
		return &DefinitionError{Message: "unreachable statement kind"}
	}
}

// installWordDef runs the full definition pipeline (inference,
// declared-signature reconciliation, ordinal verification), leaving
// dictionary/pending_signatures untouched on any failure.
func (vm *VM) installWordDef(name string, body []Token) error {
	if _, ok := lookupCore(name); ok {
		return &DefinitionError{Message: "cannot shadow genesis axiom " + name}
	}

	declared, hasDeclared := vm.PendingSignatures[name]

	// A self-call in an undeclared body has no signature yet; it is
	// inferred as ( -> ) so the body still reaches the ordinal verifier.
	lookup := func(n string) (TypeSig, bool) {
		if sig, ok := vm.sigLookup(n); ok {
			return sig, true
		}
		if n == name {
			return TypeSig{}, true
		}
		return TypeSig{}, false
	}
	inferred, inferErr := Infer(body, lookup)
	var finalSig TypeSig
	switch {
	case inferErr != nil && hasDeclared:
		// Inference fails outright on a form it cannot model (match
		// expressions), an undefined word or a unification failure; with
		// a declared signature the body is still installed, annotated
		// exactly as declared, whatever the inference error was.
		finalSig = declared
	case inferErr != nil:
		return inferErr
	case hasDeclared && !declared.Empty() && !inferred.Empty():
		if err := unifySigs(declared, inferred); err != nil && !tokensContainQuote(body) {
			// Quote-bearing bodies route stack effects through call/if/times,
			// which monomorphic Quote inference cannot see; the
			// declaration is authoritative for those.
			return &TypeError{Message: "declared signature does not unify with inferred signature for " + name}
		}
		finalSig = declared
	case hasDeclared && !declared.Empty():
		finalSig = declared
	default:
		finalSig = inferred
	}

	ord, err := Verify(name, body, vm.Mode, vm.callGraph())
	if err != nil {
		if oerr, ok := err.(*OrdinalError); ok {
			return &OrdVerifyError{Reason: oerr.Reason}
		}
		return err
	}

	delete(vm.PendingSignatures, name)
	vm.Dictionary[name] = &WordDef{Name: name, Signature: finalSig, Body: body, IsAxiom: false, Ordinal: ord}
	return nil
}

func tokensContainQuote(body []Token) bool {
	for _, t := range body {
		if t.Kind == TLiteral && t.Literal.Kind == KQuote {
			return true
		}
	}
	return false
}

func (vm *VM) installTypeDef(name string, fields []TypeField) error {
	if _, ok := lookupCore(name); ok {
		return &DefinitionError{Message: "cannot shadow genesis axiom " + name}
	}
	if _, ok := vm.Dictionary[name]; ok {
		return &DefinitionError{Message: "word " + name + " already defined"}
	}
	fieldMap := make(map[string]Type, len(fields))
	inputs := make([]Type, len(fields))
	for i, f := range fields {
		fieldMap[f.Name] = f.Type
		inputs[i] = f.Type
	}
	vm.CtorFields[name] = fields
	vm.Dictionary[name] = &WordDef{
		Name:      name,
		Signature: TypeSig{Inputs: inputs, Outputs: []Type{CompositeType(name, fieldMap)}},
		IsAxiom:   false,
		Body:      nil,
		Ordinal:   Finite(1),
	}
	return nil
}

func (vm *VM) installAxiom(name string) error {
	if _, ok := lookupCore(name); ok {
		return &DefinitionError{Message: "cannot shadow genesis axiom " + name}
	}
	sig, ok := vm.PendingSignatures[name]
	if !ok {
		return &DefinitionError{Message: "axiom " + name + " declared without a pending signature"}
	}
	delete(vm.PendingSignatures, name)
	vm.Dictionary[name] = &WordDef{Name: name, Signature: sig, IsAxiom: true, Ordinal: Zero()}
	return nil
}

// execTokens left-folds execOne over an already-folded, match-extracted
// token list. "see" is handled here rather
// than as a stack-consuming builtin: its registry signature is empty,
// so it must read its target name directly off the following token instead
// of the stack, the same way a classic Forth "see" does. "help" gets the
// same lookahead when the following token names something resolvable,
// documenting just that word instead of the whole registry.
func (vm *VM) execTokens(tokens []Token) error {
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.Kind == TWord && t.Word == "see" && i+1 < len(tokens) && tokens[i+1].Kind == TWord {
			vm.biSeeName(tokens[i+1].Word)
			i++
			continue
		}
		if t.Kind == TWord && t.Word == "help" && i+1 < len(tokens) && tokens[i+1].Kind == TWord && vm.resolvable(tokens[i+1].Word) {
			vm.biHelpName(tokens[i+1].Word)
			i++
			continue
		}
		if err := vm.execOne(t); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) resolvable(name string) bool {
	if _, ok := lookupCore(name); ok {
		return true
	}
	_, ok := vm.Dictionary[name]
	return ok
}

func (vm *VM) execOne(t Token) error {
	switch t.Kind {
	case TLiteral:
		vm.Stack = append(vm.Stack, t.Literal)
		return nil
	case TComment:
		return nil
	case TWord:
		return vm.execWord(t.Word)
	case TMatch:
		return vm.execMatch(t.Match)
	default:
		return &RuntimeError{Message: "unexpected token in evaluation stream"}
	}
}

func (vm *VM) execWord(name string) error {
	if h, ok := builtinHandlers[name]; ok {
		return h(vm)
	}
	wd, ok := vm.Dictionary[name]
	if !ok {
		return &UndefinedError{Name: name}
	}
	if wd.IsAxiom {
		return &InvalidOperationError{Message: "Cannot execute axiom"}
	}
	if fields, isCtor := vm.CtorFields[name]; isCtor {
		return vm.execConstructor(name, fields)
	}
	if len(vm.CallStack) >= vm.MaxRecursionDepth {
		return &InvalidOperationError{Message: "Maximum recursion depth exceeded"}
	}
	vm.CallStack = append(vm.CallStack, name)
	err := vm.execTokens(wd.Body)
	vm.CallStack = vm.CallStack[:len(vm.CallStack)-1]
	return err
}

func (vm *VM) execConstructor(name string, fields []TypeField) error {
	if len(vm.Stack) < len(fields) {
		return &StackError{Op: name}
	}
	vals := make([]Field, len(fields))
	base := len(vm.Stack) - len(fields)
	for i, f := range fields {
		vals[i] = Field{Name: f.Name, Value: vm.Stack[base+i]}
	}
	vm.Stack = vm.Stack[:base]
	vm.Stack = append(vm.Stack, CompositeVal(&CompositeValue{Name: name, Fields: vals}))
	return nil
}

// execMatch implements pattern-match evaluation: run the scrutinee,
// consume its single result, try arms in order, bind and execute the first
// one that matches.
func (vm *VM) execMatch(form *MatchForm) error {
	if err := vm.execTokens(form.Value); err != nil {
		return err
	}
	if len(vm.Stack) == 0 {
		return &StackError{Op: "match"}
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]

	for _, arm := range form.Arms {
		if ok, binds := matchPattern(arm.Pattern, v); ok {
			vm.Stack = append(vm.Stack, binds...)
			return vm.execTokens(arm.Body)
		}
	}
	return &InvalidOperationError{Message: "No pattern matched"}
}

func matchPattern(p Pattern, v Value) (bool, []Value) {
	switch p.Kind {
	case PWild:
		return true, nil
	case PVar:
		return true, []Value{v}
	case PLit:
		return v.Equal(p.Lit), nil
	case PCtor:
		switch p.Ctor {
		case "None":
			return v.Kind == KOption && !v.OptSet, nil
		case "Some":
			if v.Kind != KOption || !v.OptSet {
				return false, nil
			}
			return matchPattern(p.Args[0], *v.Opt)
		case "Ok":
			if v.Kind != KResult || !v.ResOK {
				return false, nil
			}
			return matchPattern(p.Args[0], *v.Res)
		case "Err":
			if v.Kind != KResult || v.ResOK {
				return false, nil
			}
			return matchPattern(p.Args[0], *v.Res)
		default:
			return false, nil
		}
	case PList:
		if v.Kind != KList || len(v.List) != len(p.Args) {
			return false, nil
		}
		var binds []Value
		for i, sub := range p.Args {
			ok, b := matchPattern(sub, v.List[i])
			if !ok {
				return false, nil
			}
			binds = append(binds, b...)
		}
		return true, binds
	default:
		return false, nil
	}
}

// Feed implements the token-at-a-time definition-mode state machine,
// for a front end that forwards tokens one at a time instead of calling
// EvalSource on complete source text.
func (vm *VM) Feed(t Token) error {
	if len(vm.quoteStack) > 0 {
		return vm.feedInsideQuote(t)
	}
	if t.Kind == TQuoteStart {
		vm.quoteStack = append(vm.quoteStack, nil)
		return nil
	}
	return vm.feedOutsideQuote(t)
}

func (vm *VM) feedInsideQuote(t Token) error {
	switch t.Kind {
	case TQuoteStart:
		vm.quoteStack = append(vm.quoteStack, nil)
		return nil
	case TQuoteEnd:
		n := len(vm.quoteStack)
		inner := vm.quoteStack[n-1]
		vm.quoteStack = vm.quoteStack[:n-1]
		lit := litTok(QuoteValue(inner), t.Pos)
		if len(vm.quoteStack) > 0 {
			top := len(vm.quoteStack) - 1
			vm.quoteStack[top] = append(vm.quoteStack[top], lit)
			return nil
		}
		return vm.feedFoldedToken(lit)
	case TComment:
		// Parse drops comments before folding quotes; Feed does the same so
		// a streamed quote literal matches its batch-parsed equivalent.
		return nil
	default:
		top := len(vm.quoteStack) - 1
		vm.quoteStack[top] = append(vm.quoteStack[top], t)
		return nil
	}
}

func (vm *VM) feedOutsideQuote(t Token) error {
	if t.Kind == TComment {
		return nil
	}
	return vm.feedFoldedToken(t)
}

// feedFoldedToken dispatches a token that is never itself a raw
// QuoteStart/QuoteEnd (those are resolved by the quote buffer above) against
// the definition-mode transition table.
func (vm *VM) feedFoldedToken(t Token) error {
	switch vm.defining {
	case dNormal:
		if t.Kind == TWord && t.Word == kwSigDecl {
			vm.defining = dAwaitingSigName
			return nil
		}
		if t.Kind == TWord && t.Word == kwWordDef {
			vm.defining = dAwaitingBodyName
			return nil
		}
		return vm.execOne(t)
	case dAwaitingSigName:
		name, err := expectStreamWord(t)
		if err != nil {
			return err
		}
		vm.sigName, vm.sigBuf, vm.defining = name, nil, dInSignature
		return nil
	case dInSignature:
		if t.Kind == TWord && t.Word == ";" {
			var sig TypeSig
			if len(vm.sigBuf) > 0 {
				var err error
				sig, _, err = parseSignatureGroup(vm.sigBuf, 0)
				if err != nil {
					return err
				}
			}
			vm.PendingSignatures[vm.sigName] = sig
			vm.defining = dNormal
			return nil
		}
		vm.sigBuf = append(vm.sigBuf, t)
		return nil
	case dAwaitingBodyName:
		name, err := expectStreamWord(t)
		if err != nil {
			return err
		}
		vm.bodyName, vm.bodyBuf, vm.defining = name, nil, dInBody
		return nil
	case dInBody:
		if t.Kind == TWord && t.Word == ";" {
			body, err := extractMatches(vm.bodyBuf)
			if err != nil {
				return err
			}
			if err := vm.installWordDef(vm.bodyName, body); err != nil {
				vm.defining = dNormal
				return err
			}
			vm.defining = dNormal
			return nil
		}
		vm.bodyBuf = append(vm.bodyBuf, t)
		return nil
	default:
		return &DefinitionError{Message: "unreachable definition-mode state"}
	}
}

func expectStreamWord(t Token) (string, error) {
	if t.Kind != TWord {
		return "", &DefinitionError{Message: "expected a name"}
	}
	return t.Word, nil
}

// FeedEOF reports whether the stream ended cleanly: EOF mid-definition is
// an error, not a silent partial-state retention.
func (vm *VM) FeedEOF() error {
	if vm.defining != dNormal {
		return &DefinitionError{Message: "input ended while still defining a word"}
	}
	return nil
}
