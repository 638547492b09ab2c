package cao

import (
	"io"

	"github.com/cao-lang/cao/internal/flushio"
	"github.com/cao-lang/cao/internal/logio"
)

// RuntimeOption configures a Runtime at construction time.
type RuntimeOption func(*Runtime)

// WithOutput sets the text sink that `.`, `.s`, `words`, `see` and `help`
// write to. The writer is wrapped in a flushio.WriteFlusher so
// Runtime.Flush can reliably drain any internal buffering.
func WithOutput(w io.Writer) RuntimeOption {
	return func(rt *Runtime) {
		wf := flushio.NewWriteFlusher(w)
		rt.outFlusher = wf
		rt.vm.Out = wf
	}
}

// WithMaxRecursionDepth overrides the call-stack depth cap (default 512).
func WithMaxRecursionDepth(n int) RuntimeOption {
	return func(rt *Runtime) { rt.vm.MaxRecursionDepth = n }
}

// WithVerifyMode selects the ordinal-verifier strategy; the
// runtime defaults to Lenient.
func WithVerifyMode(mode VerifyMode) RuntimeOption {
	return func(rt *Runtime) { rt.vm.Mode = mode }
}

// WithLogger installs a diagnostic logger (distinct from the language's own
// text sink) for host-level reporting around Eval calls.
func WithLogger(log *logio.Logger) RuntimeOption {
	return func(rt *Runtime) { rt.log = log }
}
