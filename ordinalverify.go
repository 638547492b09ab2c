package cao

// VerifyMode selects the verification strategy. Lenient is the default;
// Strict is a call-graph-based mode a host can opt in to.
type VerifyMode int

const (
	Lenient VerifyMode = iota
	Strict
)

// Verify assigns an ordinal cost to a candidate word body, or rejects it as
// suspected non-terminating. callGraph is only consulted in
// Strict mode; Lenient mode looks only at body itself.
func Verify(name string, body []Token, mode VerifyMode, callGraph map[string][]Token) (Ordinal, error) {
	switch mode {
	case Strict:
		return verifyStrict(name, body, callGraph)
	default:
		return verifyLenient(name, body)
	}
}

// verifyLenient counts direct self-calls, checks for a recognized
// decreasing pattern, and applies fixed cost thresholds.
func verifyLenient(name string, body []Token) (Ordinal, error) {
	r := countDirectRecursion(name, body)
	switch {
	case r == 0:
		return Finite(1), nil
	case r >= 1 && hasDecreasingPattern(body):
		return Finite(r + 1), nil
	case r > 10:
		return Ordinal{}, &OrdinalError{Reason: "non-terminating"}
	default:
		return Finite(2 * r), nil
	}
}

func countDirectRecursion(name string, body []Token) uint64 {
	var n uint64
	walkTokens(body, func(t Token) {
		if t.Kind == TWord && t.Word == name {
			n++
		}
	})
	return n
}

// hasDecreasingPattern looks for either of the two recognized guards
// anywhere in body, including inside quote literals and match arms, since a
// recursive call guarded inside a nested quote is still a legitimate base
// case guard in practice.
func hasDecreasingPattern(body []Token) bool {
	found := false
	flat := flattenTokens(body)
	for i := 0; i < len(flat); i++ {
		if isNatLit(flat[i]) {
			if i+2 < len(flat) && isNatLitN(flat[i+1], 1) && isWord(flat[i+2], "-") {
				found = true
				break
			}
			if isNatLitN(flat[i], 0) && i+1 < len(flat) && (isWord(flat[i+1], "=") || isWord(flat[i+1], "<")) {
				found = true
				break
			}
		}
	}
	return found
}

func isNatLit(t Token) bool { return t.Kind == TLiteral && t.Literal.Kind == KNat }
func isNatLitN(t Token, n uint64) bool {
	return t.Kind == TLiteral && t.Literal.Kind == KNat && t.Literal.Nat == n
}

// flattenTokens walks quote literals and match arms so decreasing-pattern and
// recursion-count scans see tokens nested inside them too.
func flattenTokens(body []Token) []Token {
	var out []Token
	walkTokens(body, func(t Token) { out = append(out, t) })
	return out
}

func walkTokens(body []Token, visit func(Token)) {
	for _, t := range body {
		visit(t)
		switch t.Kind {
		case TLiteral:
			if t.Literal.Kind == KQuote {
				walkTokens(t.Literal.Quote, visit)
			}
		case TMatch:
			walkTokens(t.Match.Value, visit)
			for _, arm := range t.Match.Arms {
				walkTokens(arm.Body, visit)
			}
		}
	}
}

// verifyStrict is the call-graph pass behind Strict mode: build the direct
// call graph restricted to callGraph (the dictionary at verification time
// plus the candidate being installed under name), find name's strongly
// connected component, and require some member of that component to carry
// a decreasing pattern.
func verifyStrict(name string, body []Token, callGraph map[string][]Token) (Ordinal, error) {
	graph := map[string][]Token{name: body}
	for k, v := range callGraph {
		graph[k] = v
	}
	scc := sccContaining(name, graph)

	decreasing := false
	for _, member := range scc {
		if hasDecreasingPattern(graph[member]) {
			decreasing = true
			break
		}
	}

	r := countDirectRecursion(name, body)
	mutual := len(scc) > 1
	switch {
	case !mutual && r == 0:
		return Finite(1), nil
	case decreasing:
		return Finite(uint64(len(scc)) + r + 1), nil
	case mutual:
		return Ordinal{}, &OrdinalError{Reason: "non-terminating: mutual recursion without a decreasing pattern"}
	default:
		// Any remaining case is direct recursion with no recognizable
		// decreasing pattern; strict mode rejects it outright instead of
		// lenient mode's doubled-cost benefit of the doubt.
		return Ordinal{}, &OrdinalError{Reason: "non-terminating: recursion without a decreasing pattern"}
	}
}

// sccContaining returns the strongly connected component of root in the
// direct call graph, via a small two-pass Kosaraju-style reachability check
// (the graphs here are small dictionaries, not worth a Tarjan index stack).
func sccContaining(root string, graph map[string][]Token) []string {
	calls := func(body []Token) []string {
		seen := map[string]bool{}
		var out []string
		walkTokens(body, func(t Token) {
			if t.Kind == TWord {
				if _, ok := graph[t.Word]; ok && !seen[t.Word] {
					seen[t.Word] = true
					out = append(out, t.Word)
				}
			}
		})
		return out
	}

	reachableFrom := func(start string) map[string]bool {
		seen := map[string]bool{start: true}
		stack := []string{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, callee := range calls(graph[cur]) {
				if !seen[callee] {
					seen[callee] = true
					stack = append(stack, callee)
				}
			}
		}
		return seen
	}

	forward := reachableFrom(root)

	reverseReachable := map[string]bool{root: true}
	changed := true
	for changed {
		changed = false
		for name, body := range graph {
			if reverseReachable[name] {
				continue
			}
			for _, callee := range calls(body) {
				if reverseReachable[callee] {
					reverseReachable[name] = true
					changed = true
					break
				}
			}
		}
	}

	var scc []string
	for n := range forward {
		if reverseReachable[n] {
			scc = append(scc, n)
		}
	}
	return scc
}

// EstimateQuoteOrdinal backs the `--ordinal` built-in: a quote
// literal has no name of its own, so direct-recursion counting never fires
// and the estimate reduces to the decreasing-pattern/base-cost cases.
func EstimateQuoteOrdinal(tokens []Token) (Ordinal, error) {
	return verifyLenient("", tokens)
}
