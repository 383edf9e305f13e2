package gateway

import (
	"context"
	"time"

	"github.com/smilealdway/PowerMCP/internal/session"
	"github.com/smilealdway/PowerMCP/internal/workspace"
)

// OpKind classifies how an operation interacts with the session cache.
type OpKind string

const (
	// OpStateless operations neither read nor write the session slot.
	OpStateless OpKind = "stateless"

	// OpLoad operations activate a new engine handle on success.
	OpLoad OpKind = "load"

	// OpDependent operations require a previously activated handle and are
	// gated before any workspace is created.
	OpDependent OpKind = "dependent"
)

// Operation describes one engine call to be run through the gateway
// pipeline. Tool bodies build these; the gateway owns isolation, capture,
// session handling, and normalization.
type Operation struct {
	// Name is the exposed tool name, e.g. "andes_run_power_flow".
	Name string

	// Engine is the engine family owning any session state.
	Engine string

	Kind OpKind

	// KeyPrefix requests a workspace. When Inputs is non-empty the key is
	// content-derived from the first input; otherwise KeySuffix (possibly
	// empty) completes a static key. An empty KeyPrefix means the operation
	// runs without a workspace.
	KeyPrefix string
	KeySuffix string

	// Inputs are artifact paths staged into the workspace before the run.
	Inputs []string

	// ChdirIsolation switches the ambient working directory into the
	// workspace for the duration of the run. Only for engines that resolve
	// paths ambiently; everything else receives the workspace dir
	// explicitly via Call.
	ChdirIsolation bool

	// Run is the engine operation itself. It returns a domain value, a
	// tagged failure value, or an error; the gateway normalizes all three.
	Run func(ctx context.Context, call *Call) (any, error)
}

// Call is the per-invocation context handed to an operation.
type Call struct {
	// ID is the invocation id.
	ID string

	// Workspace is the acquired workspace, or nil for workspace-less
	// operations.
	Workspace *workspace.Workspace

	// Handle is the active session handle, pre-fetched for dependent
	// operations; nil otherwise.
	Handle *session.Handle

	// StartedAt is when the gateway began the invocation.
	StartedAt time.Time

	pendingHandle any
	activated     bool
}

// Activate stages value as the new session handle. The gateway commits it to
// the session slot only if the operation returns success, so a failed load
// never clobbers a previously active case.
func (c *Call) Activate(value any) {
	c.pendingHandle = value
	c.activated = true
}

// Input returns the staged in-workspace path for the operation's first
// input, or the empty string when there is none.
func (c *Call) Input() string {
	if c.Workspace == nil || len(c.Workspace.Inputs) == 0 {
		return ""
	}
	return c.Workspace.InputPath(c.Workspace.Inputs[0])
}
