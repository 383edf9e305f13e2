package envelope

import "fmt"

// Kind classifies a gateway failure. Engines translate their own conventions
// (return codes, exceptions, convergence flags) into one of these at the
// innermost boundary; the normalizer is code-set-agnostic.
type Kind string

const (
	// KindInputNotFound means a referenced input file does not exist.
	KindInputNotFound Kind = "InputNotFound"

	// KindUnsupportedInputFormat means the input extension or content is not
	// one the engine accepts.
	KindUnsupportedInputFormat Kind = "UnsupportedInputFormat"

	// KindStateNotLoaded means a dependent operation ran before any
	// load-type operation activated a session.
	KindStateNotLoaded Kind = "StateNotLoaded"

	// KindBridgeProcessFailure means a bridged child process exited non-zero
	// or could not be started.
	KindBridgeProcessFailure Kind = "BridgeProcessFailure"

	// KindBridgeProtocolError means a bridged child exited zero but its
	// output was not the expected single JSON document.
	KindBridgeProtocolError Kind = "BridgeProtocolError"

	// KindWorkspaceRestoreFailure means the ambient working directory could
	// not be restored after a call. The process isolation invariant is
	// broken for every subsequent call; this kind is escalated, never
	// silently absorbed.
	KindWorkspaceRestoreFailure Kind = "WorkspaceRestoreFailure"

	// KindUnknownEngineError is the catch-all for unanticipated engine
	// failures.
	KindUnknownEngineError Kind = "UnknownEngineError"
)

// Failure is the tagged failure value engines return instead of raising.
// Extra fields are merged verbatim into the envelope alongside status and
// message.
type Failure struct {
	Kind    Kind
	Message string
	Extra   map[string]any
}

// Error implements the error interface so a Failure can travel either as a
// returned value or through an error path.
func (f *Failure) Error() string {
	if f.Kind == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Fail builds a tagged failure.
func Fail(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// With attaches an extra field to the failure and returns it for chaining.
func (f *Failure) With(key string, value any) *Failure {
	if f.Extra == nil {
		f.Extra = make(map[string]any)
	}
	f.Extra[key] = value
	return f
}

// InputNotFound builds the standard missing-input failure.
func InputNotFound(path string) *Failure {
	return Fail(KindInputNotFound, "input file not found: %s", path).With("path", path)
}

// UnsupportedInputFormat builds the standard bad-format failure.
func UnsupportedInputFormat(path string, accepted ...string) *Failure {
	f := Fail(KindUnsupportedInputFormat, "unsupported input format: %s", path)
	if len(accepted) > 0 {
		f.With("accepted", accepted)
	}
	return f
}

// StateNotLoaded builds the standard read-before-activation failure.
func StateNotLoaded(what string) *Failure {
	return Fail(KindStateNotLoaded, "no %s is currently loaded; run a load or solve operation first", what)
}
