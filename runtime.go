package cao

import (
	"github.com/cao-lang/cao/internal/flushio"
	"github.com/cao-lang/cao/internal/logio"
	"github.com/cao-lang/cao/internal/panicerr"
)

// Runtime is the thin façade over the evaluator: it owns a VM and the core
// library, and exposes the small set of operations a host needs without
// reaching into VM internals directly.
type Runtime struct {
	vm         *VM
	log        *logio.Logger
	outFlusher flushio.WriteFlusher
}

// New builds a fresh Runtime with the genesis axioms installed (installed
// in the sense of being resolvable by name; see VM.sigLookup/execWord:
// the core library itself is a read-only registry, never copied into the
// dictionary, so it can never be shadowed).
func New(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{vm: NewVM()}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Eval runs the full pipeline over source text, wrapped through
// panicerr.Recover so an internal panic surfaces as an ordinary error
// instead of crashing the host process.
func (rt *Runtime) Eval(source string) error {
	err := panicerr.Recover("cao.Eval", func() error {
		return rt.vm.EvalSource(source)
	})
	if rt.log != nil {
		rt.log.ErrorIf(err)
	}
	return err
}

// Halted reports whether `quit` has been evaluated on this runtime.
func (rt *Runtime) Halted() bool { return rt.vm.Halted() }

// Tokenize and ParseSource are inspection hooks over the front half of the
// pipeline.
func (rt *Runtime) Tokenize(source string) ([]Token, error) { return Lex(source) }
func (rt *Runtime) ParseSource(source string) ([]Statement, error) {
	toks, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// Push, Pop, Stack, StackDepth, ClearStack expose the data stack directly.
func (rt *Runtime) Push(v Value) { rt.vm.Stack = append(rt.vm.Stack, v) }

func (rt *Runtime) Pop() (Value, bool) {
	n := len(rt.vm.Stack)
	if n == 0 {
		return Value{}, false
	}
	v := rt.vm.Stack[n-1]
	rt.vm.Stack = rt.vm.Stack[:n-1]
	return v, true
}

func (rt *Runtime) Stack() []Value {
	out := make([]Value, len(rt.vm.Stack))
	copy(out, rt.vm.Stack)
	return out
}

func (rt *Runtime) StackDepth() int { return len(rt.vm.Stack) }

func (rt *Runtime) ClearStack() { rt.vm.Stack = nil }

// DefineWord installs a fully-built WordDef directly, bypassing inference
// and the ordinal verifier, the path a front-end uses when restoring a
// session blob.
func (rt *Runtime) DefineWord(wd WordDef) error {
	if _, ok := lookupCore(wd.Name); ok {
		return &DefinitionError{Message: "cannot shadow genesis axiom " + wd.Name}
	}
	cp := wd
	rt.vm.Dictionary[wd.Name] = &cp
	return nil
}

// Words lists every resolvable name: genesis axioms plus dictionary words.
func (rt *Runtime) Words() []string {
	names := make([]string, 0, len(coreLibrary)+len(rt.vm.Dictionary))
	for _, e := range coreLibrary {
		names = append(names, e.Name)
	}
	for name := range rt.vm.Dictionary {
		names = append(names, name)
	}
	return names
}

func (rt *Runtime) IsDefined(name string) bool {
	if _, ok := lookupCore(name); ok {
		return true
	}
	_, ok := rt.vm.Dictionary[name]
	return ok
}

// WordDefinition returns the installed definition for a dictionary word
// (not a genesis axiom, which has no WordDef of its own; see CoreEntry).
func (rt *Runtime) WordDefinition(name string) (WordDef, bool) {
	wd, ok := rt.vm.Dictionary[name]
	if !ok {
		return WordDef{}, false
	}
	return *wd, true
}

// Reset discards the dictionary, pending signatures, stack, call stack and
// definition-mode state, returning the Runtime to its just-constructed
// shape.
func (rt *Runtime) Reset() {
	mode, depth, out := rt.vm.Mode, rt.vm.MaxRecursionDepth, rt.vm.Out
	rt.vm = NewVM()
	rt.vm.Mode, rt.vm.MaxRecursionDepth, rt.vm.Out = mode, depth, out
}

// Flush drains any buffered output sink installed via WithOutput.
func (rt *Runtime) Flush() error {
	if rt.outFlusher == nil {
		return nil
	}
	return rt.outFlusher.Flush()
}

// Feed exposes the token-at-a-time streaming entry point.
func (rt *Runtime) Feed(t Token) error { return rt.vm.Feed(t) }

// FeedEOF finalizes a streaming session; ending a stream mid-definition is
// an error (see VM.FeedEOF).
func (rt *Runtime) FeedEOF() error { return rt.vm.FeedEOF() }
