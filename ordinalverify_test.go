package cao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyOf(t *testing.T, name, src string) []Token {
	t.Helper()
	toks, err := Lex(src)
	require.NoError(t, err)
	stmts, err := Parse(toks)
	require.NoError(t, err)
	for _, s := range stmts {
		if s.Kind == StmtWordDef && s.Name == name {
			return s.Body
		}
	}
	t.Fatalf("no word def %q found in %q", name, src)
	return nil
}

func TestVerifyLenientNonRecursiveIsFiniteOne(t *testing.T) {
	body := bodyOf(t, "square", ": square dup * ;")
	ord, err := Verify("square", body, Lenient, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ord.Compare(Finite(1)))
}

func TestVerifyLenientRecursionWithGuardIsFiniteRPlusOne(t *testing.T) {
	body := bodyOf(t, "countdown", ": countdown dup 0 = [ drop ] [ 1 - countdown ] if ;")
	ord, err := Verify("countdown", body, Lenient, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ord.Compare(Finite(2)))
}

func TestVerifyLenientDecreasingSubtractPattern(t *testing.T) {
	// The literal sub-sequence Literal(Nat) Literal(Nat 1) Word("-") is
	// itself the recognized guard, token-shape only.
	body := bodyOf(t, "step", ": step 0 1 - step ;")
	ord, err := Verify("step", body, Lenient, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ord.Compare(Finite(2)))
}

func TestVerifyLenientRejectsUnguardedRecursionOverTen(t *testing.T) {
	body := bodyOf(t, "foo", ": foo foo foo foo foo foo foo foo foo foo foo foo foo ;")
	require.Len(t, body, 12, "want exactly twelve direct self-calls")
	_, err := Verify("foo", body, Lenient, nil)
	require.Error(t, err)
	var oerr *OrdinalError
	assert.ErrorAs(t, err, &oerr)
}

func TestVerifyLenientFewUnguardedCallsIsFiniteTwiceR(t *testing.T) {
	body := bodyOf(t, "foo", ": foo foo foo ;")
	ord, err := Verify("foo", body, Lenient, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ord.Compare(Finite(4)))
}

func TestVerifyStrictDirectRecursionStillWorks(t *testing.T) {
	body := bodyOf(t, "countdown", ": countdown dup 0 = [ drop ] [ 1 - countdown ] if ;")
	ord, err := Verify("countdown", body, Strict, nil)
	require.NoError(t, err)
	assert.True(t, ord.Compare(Zero()) > 0)
}

func TestVerifyStrictMutualRecursionWithGuardAccepted(t *testing.T) {
	evenBody := bodyOf(t, "even?", ": even? dup 0 = [ drop true ] [ 1 - odd? ] if ;")
	oddBody := bodyOf(t, "odd?", ": odd? dup 0 = [ drop false ] [ 1 - even? ] if ;")
	graph := map[string][]Token{"odd?": oddBody}
	ord, err := Verify("even?", evenBody, Strict, graph)
	require.NoError(t, err)
	assert.True(t, ord.Compare(Zero()) > 0)
}

func TestVerifyStrictMutualRecursionWithoutGuardRejected(t *testing.T) {
	// No Nat-literal guard anywhere in either body: the decreasing-pattern
	// scan can't recognize a base case, so the mutually-recursive pair is
	// rejected outright.
	evenBody := []Token{wordTok("step", 0), wordTok("odd?", 0)}
	oddBody := []Token{wordTok("step", 0), wordTok("even?", 0)}
	graph := map[string][]Token{"odd?": oddBody}
	_, err := Verify("even?", evenBody, Strict, graph)
	require.Error(t, err)
	var oerr *OrdinalError
	assert.ErrorAs(t, err, &oerr)
}

func TestEstimateQuoteOrdinal(t *testing.T) {
	ord, err := EstimateQuoteOrdinal([]Token{litTok(NatValue(1), 0), wordTok("+", 0)})
	require.NoError(t, err)
	assert.Equal(t, 0, ord.Compare(Finite(1)))
}
