package cao

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeEvalPushPopStack(t *testing.T) {
	rt := New()
	require.NoError(t, rt.Eval("3 4 +"))
	assert.Equal(t, 1, rt.StackDepth())
	v, ok := rt.Pop()
	require.True(t, ok)
	assert.Equal(t, NatValue(7), v)
	_, ok = rt.Pop()
	assert.False(t, ok)
}

func TestRuntimePush(t *testing.T) {
	rt := New()
	rt.Push(NatValue(5))
	require.NoError(t, rt.Eval("1+"))
	v, ok := rt.Pop()
	require.True(t, ok)
	assert.Equal(t, NatValue(6), v)
}

func TestRuntimeClearStackAndReset(t *testing.T) {
	rt := New()
	require.NoError(t, rt.Eval(": triple dup dup ;"))
	require.NoError(t, rt.Eval("3 triple"))
	assert.Equal(t, 3, rt.StackDepth())
	rt.ClearStack()
	assert.Equal(t, 0, rt.StackDepth())
	assert.True(t, rt.IsDefined("triple"))

	rt.Reset()
	assert.False(t, rt.IsDefined("triple"))
	assert.Equal(t, 0, rt.StackDepth())
}

func TestRuntimeWithOutput(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithOutput(&buf))
	require.NoError(t, rt.Eval(`"hello" .`))
	require.NoError(t, rt.Flush())
	assert.Equal(t, "hello\n", buf.String())
}

func TestRuntimeWithMaxRecursionDepth(t *testing.T) {
	rt := New(WithMaxRecursionDepth(2))
	require.NoError(t, rt.Eval(": loop loop ;"))
	err := rt.Eval("loop")
	require.Error(t, err)
	var ioerr *InvalidOperationError
	assert.ErrorAs(t, err, &ioerr)
}

func TestRuntimeWithVerifyModeStrict(t *testing.T) {
	rt := New(WithVerifyMode(Strict))
	err := rt.Eval(": step step ;")
	require.Error(t, err)
}

func TestRuntimeDefineWordBypassesVerification(t *testing.T) {
	rt := New()
	err := rt.DefineWord(WordDef{
		Name:      "always-zero",
		Signature: TypeSig{Outputs: []Type{concreteType(KNat)}},
		Body:      []Token{litTok(NatValue(0), 0)},
		Ordinal:   Finite(1),
	})
	require.NoError(t, err)
	require.NoError(t, rt.Eval("always-zero"))
	v, ok := rt.Pop()
	require.True(t, ok)
	assert.Equal(t, NatValue(0), v)
}

func TestRuntimeDefineWordCannotShadowAxiom(t *testing.T) {
	rt := New()
	err := rt.DefineWord(WordDef{Name: "dup"})
	require.Error(t, err)
	var derr *DefinitionError
	assert.ErrorAs(t, err, &derr)
}

func TestRuntimeWordsIncludesCoreAndDictionary(t *testing.T) {
	rt := New()
	require.NoError(t, rt.Eval(": double dup + ;"))
	words := rt.Words()
	assert.Contains(t, words, "dup")
	assert.Contains(t, words, "double")
}

func TestRuntimeWordDefinition(t *testing.T) {
	rt := New()
	require.NoError(t, rt.Eval(":: square ( Nat -> Nat ) ;\n: square dup * ;"))
	wd, ok := rt.WordDefinition("square")
	require.True(t, ok)
	assert.Equal(t, "square", wd.Name)
	assert.False(t, wd.IsAxiom)
	assert.True(t, wd.Ordinal.Compare(Zero()) > 0)
}

func TestRuntimeTokenizeAndParseSource(t *testing.T) {
	rt := New()
	toks, err := rt.Tokenize("3 4 +")
	require.NoError(t, err)
	assert.Len(t, toks, 3)

	stmts, err := rt.ParseSource("3 4 +")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, StmtExpression, stmts[0].Kind)
}

func TestRuntimeHalted(t *testing.T) {
	rt := New()
	require.NoError(t, rt.Eval("1 quit"))
	assert.True(t, rt.Halted())
}
