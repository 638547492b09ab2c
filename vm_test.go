package cao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalVM(t *testing.T, src string) *VM {
	t.Helper()
	vm := NewVM()
	require.NoError(t, vm.EvalSource(src))
	return vm
}

// --- literal scenarios ---

func TestScenarioArithmetic(t *testing.T) {
	vm := evalVM(t, "3 4 +")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(7), vm.Stack[0])
}

func TestScenarioCompoundArithmetic(t *testing.T) {
	vm := evalVM(t, "5 3 + 7 2 - *")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(40), vm.Stack[0])
}

func TestScenarioConditionalTrue(t *testing.T) {
	vm := evalVM(t, "true [ 10 ] [ 20 ] if")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(10), vm.Stack[0])
}

func TestScenarioConditionalFalse(t *testing.T) {
	vm := evalVM(t, "false [ 10 ] [ 20 ] if")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(20), vm.Stack[0])
}

func TestScenarioUserWord(t *testing.T) {
	vm := evalVM(t, ":: square ( Nat -> Nat ) ;  : square dup * ;  6 square")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(36), vm.Stack[0])
}

func TestScenarioTimesLoop(t *testing.T) {
	vm := evalVM(t, "0 3 [ 1+ ] times")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(3), vm.Stack[0])
}

func TestScenarioPatternMatching(t *testing.T) {
	vm := NewVM()
	vm.Stack = append(vm.Stack, SomeValue(NatValue(42)))
	err := vm.EvalSource("match case Some x -> dup + case None -> 0 end")
	require.NoError(t, err)
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(84), vm.Stack[0])
}

// --- invariants ---

func TestInvariantDeterminism(t *testing.T) {
	run := func() []Value {
		vm := evalVM(t, ":: fact ( Nat -> Nat ) ;\n: fact dup 0 = [ drop 1 ] [ dup 1 - fact * ] if ;\n5 fact")
		return vm.Stack
	}
	a, b := run(), run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].Equal(b[i]))
	}
}

func TestInvariantStackDepthDelta(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(1), NatValue(2)}
	before := len(vm.Stack)
	require.NoError(t, vm.execWord("+")) // (Nat Nat -> Nat): delta -1
	assert.Equal(t, before-1, len(vm.Stack))
}

func TestInvariantNoGhostDictionaryStateOnOrdinalRejection(t *testing.T) {
	vm := NewVM()
	src := ": foo foo foo foo foo foo foo foo foo foo foo foo foo ;"
	err := vm.EvalSource(src)
	require.Error(t, err)
	var verr *OrdVerifyError
	assert.ErrorAs(t, err, &verr)
	_, exists := vm.Dictionary["foo"]
	assert.False(t, exists)
	_, pending := vm.PendingSignatures["foo"]
	assert.False(t, pending)
}

func TestInvariantNoGhostDictionaryStateOnInferenceFailure(t *testing.T) {
	vm := NewVM()
	err := vm.EvalSource(": bogus not 1+ ;")
	require.Error(t, err)
	_, exists := vm.Dictionary["bogus"]
	assert.False(t, exists)
}

func TestInvariantQuoteTransparency(t *testing.T) {
	direct := evalVM(t, "3 4 +")
	viaCall := evalVM(t, "[ 3 4 + ] call")
	require.Len(t, direct.Stack, 1)
	require.Len(t, viaCall.Stack, 1)
	assert.True(t, direct.Stack[0].Equal(viaCall.Stack[0]))
}

func TestInvariantSaturationDoesNotPush(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(2), NatValue(5)}
	err := vm.execWord("-")
	require.Error(t, err)
	var ioerr *InvalidOperationError
	assert.ErrorAs(t, err, &ioerr)
	require.Len(t, vm.Stack, 2, "operands remain on the stack")
	assert.Equal(t, NatValue(2), vm.Stack[0])
	assert.Equal(t, NatValue(5), vm.Stack[1])
}

// --- round-trip / idempotence laws ---

func TestLawDupDropIsIdentity(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(7)}
	require.NoError(t, vm.execWord("dup"))
	require.NoError(t, vm.execWord("drop"))
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(7), vm.Stack[0])
}

func TestLawSwapSwapIsIdentity(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(1), NatValue(2)}
	require.NoError(t, vm.execWord("swap"))
	require.NoError(t, vm.execWord("swap"))
	assert.Equal(t, []Value{NatValue(1), NatValue(2)}, vm.Stack)
}

func TestLawRotRotRotIsIdentity(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(1), NatValue(2), NatValue(3)}
	for i := 0; i < 3; i++ {
		require.NoError(t, vm.execWord("rot"))
	}
	assert.Equal(t, []Value{NatValue(1), NatValue(2), NatValue(3)}, vm.Stack)
}

func TestLawSelfEquality(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(9), NatValue(9)}
	require.NoError(t, vm.execWord("="))
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, BoolValue(true), vm.Stack[0])
}

// --- boundary behaviors ---

func TestBoundaryDupOnEmptyStack(t *testing.T) {
	vm := NewVM()
	err := vm.execWord("dup")
	require.Error(t, err)
	var serr *StackError
	assert.ErrorAs(t, err, &serr)
}

func TestBoundaryDivisionByZero(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(1), NatValue(0)}
	err := vm.execWord("/")
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Division by zero", rerr.Message)
	require.Len(t, vm.Stack, 2, "operands remain on the stack")
}

func TestBoundaryModuloByZero(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(1), NatValue(0)}
	err := vm.execWord("mod")
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Modulo by zero", rerr.Message)
}

func TestBoundaryArithmeticOverflow(t *testing.T) {
	vm := NewVM()
	vm.Stack = []Value{NatValue(^uint64(0))}
	err := vm.execWord("1+")
	require.Error(t, err)
	var aerr *ArithmeticError
	assert.ErrorAs(t, err, &aerr)
}

func TestBoundaryUnclosedQuote(t *testing.T) {
	_, err := Parse(mustLex(t, "[ 1 2"))
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func mustLex(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Lex(src)
	require.NoError(t, err)
	return toks
}

// --- additional coverage: control flow, recursion, quotes, axioms, ctors ---

func TestExecCannotExecuteAxiom(t *testing.T) {
	vm := NewVM()
	require.NoError(t, vm.EvalSource(":: halt ( -> ) ;\naxiom halt"))
	err := vm.execWord("halt")
	require.Error(t, err)
	var ioerr *InvalidOperationError
	assert.ErrorAs(t, err, &ioerr)
}

func TestInstallWordDefCannotShadowAxiom(t *testing.T) {
	vm := NewVM()
	err := vm.EvalSource(": dup drop ;")
	require.Error(t, err)
	var derr *DefinitionError
	assert.ErrorAs(t, err, &derr)
}

func TestRecursionDepthCap(t *testing.T) {
	vm := NewVM()
	vm.MaxRecursionDepth = 3
	require.NoError(t, vm.EvalSource(": loop loop ;"))
	err := vm.execWord("loop")
	require.Error(t, err)
	var ioerr *InvalidOperationError
	assert.ErrorAs(t, err, &ioerr)
}

func TestTypeDefConstructorAndFieldAccessByRender(t *testing.T) {
	vm := evalVM(t, "type Point { x :: Nat, y :: Nat }\n1 2 Point")
	require.Len(t, vm.Stack, 1)
	v := vm.Stack[0]
	require.Equal(t, KComposite, v.Kind)
	assert.Equal(t, "Point", v.Composite.Name)
	xv, ok := v.Composite.get("x")
	require.True(t, ok)
	assert.Equal(t, NatValue(1), xv)
	yv, ok := v.Composite.get("y")
	require.True(t, ok)
	assert.Equal(t, NatValue(2), yv)
}

func TestListBuiltinOrderingIsEarliestPushedFirst(t *testing.T) {
	vm := evalVM(t, "1 2 3 3 list")
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, ListValue([]Value{NatValue(1), NatValue(2), NatValue(3)}), vm.Stack[0])
}

func TestWhenUnless(t *testing.T) {
	vm := evalVM(t, "true [ 1 ] when false [ 2 ] unless")
	require.Len(t, vm.Stack, 2)
	assert.Equal(t, NatValue(1), vm.Stack[0])
	assert.Equal(t, NatValue(2), vm.Stack[1])
}

func TestQuitHaltsEvaluation(t *testing.T) {
	vm := NewVM()
	err := vm.EvalSource("1 quit 2")
	require.NoError(t, err)
	assert.True(t, vm.Halted())
	require.Len(t, vm.Stack, 1)
	assert.Equal(t, NatValue(1), vm.Stack[0])
}

func TestFeedStreamingMatchesBatchEval(t *testing.T) {
	src := ":: square ( Nat -> Nat ) ;  : square dup * ;  6 square"
	batch := evalVM(t, src)

	vm := NewVM()
	toks := mustLex(t, src)
	for _, tok := range toks {
		require.NoError(t, vm.Feed(tok))
	}
	require.NoError(t, vm.FeedEOF())

	require.Equal(t, len(batch.Stack), len(vm.Stack))
	for i := range batch.Stack {
		assert.True(t, batch.Stack[i].Equal(vm.Stack[i]))
	}
}

func TestFeedEOFMidDefinitionIsError(t *testing.T) {
	vm := NewVM()
	for _, tok := range mustLex(t, ": square dup *") {
		require.NoError(t, vm.Feed(tok))
	}
	err := vm.FeedEOF()
	require.Error(t, err)
	var derr *DefinitionError
	assert.ErrorAs(t, err, &derr)
}

func TestUndefinedWordError(t *testing.T) {
	vm := NewVM()
	err := vm.EvalSource("nonexistent-word")
	require.Error(t, err)
	var uerr *UndefinedError
	assert.ErrorAs(t, err, &uerr)
}

func TestParseOrTypeErrorAbortsOnlyCurrentStatement(t *testing.T) {
	vm := NewVM()
	require.NoError(t, vm.EvalSource("1 2 +"))
	err := vm.EvalSource(": bogus not 1+ ;") // inference error, no declared sig
	require.Error(t, err)
	require.Len(t, vm.Stack, 1, "prior statement's effect remains")
	assert.Equal(t, NatValue(3), vm.Stack[0])
}
