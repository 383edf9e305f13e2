// Package gateway is the dispatcher every exposed tool goes through. It
// wraps a caller-supplied engine operation with the full pipeline: session
// gating, workspace acquisition, output capture, session activation, and
// result normalization.
//
// The ambient working directory, the session slot, and the diagnostic
// streams are process-wide resources and the wrapped engines are not
// thread-safe, so one process-wide lock serializes every invocation for its
// full acquire→operate→release extent. At most one call is in flight at a
// time; callers observe strict FIFO-ish ordering through the lock.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smilealdway/PowerMCP/internal/capture"
	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/log"
	"github.com/smilealdway/PowerMCP/internal/session"
	"github.com/smilealdway/PowerMCP/internal/workspace"
)

// Recorder receives one record per completed invocation. The history store
// implements it; a nil recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, rec InvocationRecord) error
}

// InvocationRecord is the persisted summary of one envelope.
type InvocationRecord struct {
	ID           string
	Tool         string
	Engine       string
	Status       string
	ErrorKind    string
	Message      string
	WorkspaceKey string
	StartedAt    time.Time
	Duration     time.Duration
	Stdout       string
	Stderr       string
}

// Observer receives timing signals for metrics. Nil disables.
type Observer interface {
	ObserveInvocation(tool, status string, d time.Duration)
}

// Gateway composes the pipeline around engine operations.
type Gateway struct {
	mu sync.Mutex

	workspaces *workspace.Manager
	sessions   *session.Store
	recorder   Recorder
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures optional gateway collaborators.
type Option func(*Gateway)

// WithRecorder attaches an invocation recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(g *Gateway) { g.observer = o }
}

// New creates a Gateway. The session store is injected so tests can use
// independent slots.
func New(ws *workspace.Manager, sessions *session.Store, opts ...Option) *Gateway {
	g := &Gateway{
		workspaces: ws,
		sessions:   sessions,
		logger:     log.WithComponent("gateway"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sessions exposes the session store for informational surfaces.
func (g *Gateway) Sessions() *session.Store {
	return g.sessions
}

// Workspaces exposes the workspace manager.
func (g *Gateway) Workspaces() *workspace.Manager {
	return g.workspaces
}

// Invoke runs op through the pipeline and always returns exactly one
// envelope. Any failure mode (missing input, engine panic, bridge error)
// is recovered here and reported as a tagged error envelope; callers never
// see a raised failure.
func (g *Gateway) Invoke(ctx context.Context, op Operation) envelope.Envelope {
	g.mu.Lock()
	defer g.mu.Unlock()

	started := g.now()
	call := &Call{ID: uuid.NewString(), StartedAt: started}
	logger := log.WithInvocation(call.ID).With("tool", op.Name)

	env := g.run(ctx, op, call, logger)
	if err := env.Validate(); err != nil {
		// The pipeline itself produced a malformed envelope; never let it out.
		logger.Error("malformed envelope from pipeline", "error", err)
		env = envelope.Error(envelope.KindUnknownEngineError, "internal: "+err.Error())
	}

	duration := g.now().Sub(started)
	logger.Info("invocation finished",
		"status", env.Status, "error_kind", string(env.ErrorKind()), "duration", duration)

	if g.observer != nil {
		g.observer.ObserveInvocation(op.Name, env.Status, duration)
	}
	if g.recorder != nil {
		wsKey := ""
		if call.Workspace != nil {
			wsKey = call.Workspace.Key
		}
		rec := InvocationRecord{
			ID:           call.ID,
			Tool:         op.Name,
			Engine:       op.Engine,
			Status:       env.Status,
			ErrorKind:    string(env.ErrorKind()),
			Message:      env.Message,
			WorkspaceKey: wsKey,
			StartedAt:    started,
			Duration:     duration,
			Stdout:       env.Stdout,
			Stderr:       env.Stderr,
		}
		if err := g.recorder.Record(ctx, rec); err != nil {
			logger.Warn("failed to record invocation", "error", err)
		}
	}

	return env
}

// run executes the stage pipeline under the gateway lock.
func (g *Gateway) run(ctx context.Context, op Operation, call *Call, logger *slog.Logger) envelope.Envelope {
	if op.Run == nil || op.Name == "" {
		return envelope.Error(envelope.KindUnknownEngineError,
			fmt.Sprintf("operation %q is not runnable", op.Name))
	}

	// Session gating happens before any filesystem side effect: a dependent
	// call with nothing loaded must not create a workspace.
	if op.Kind == OpDependent {
		handle, err := g.sessions.Get(op.Engine)
		if err != nil {
			return envelope.Normalize(nil, err)
		}
		call.Handle = handle
	}

	if op.KeyPrefix != "" {
		ws, err := g.acquireWorkspace(ctx, op)
		if err != nil {
			return envelope.Normalize(nil, err)
		}
		call.Workspace = &ws
		logger.Debug("workspace acquired", "key", ws.Key, "dir", ws.Dir)
	}

	var guard *workspace.DirGuard
	if op.ChdirIsolation && call.Workspace != nil {
		var err error
		guard, err = workspace.EnterDir(call.Workspace.Dir)
		if err != nil {
			return envelope.Normalize(nil, err)
		}
	}

	var value any
	stdout, stderr, opErr := capture.Scoped(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("engine panicked: %v", r)
			}
		}()
		value, err = op.Run(ctx, call)
		return err
	})

	// Restoration runs on every path. If it fails the process isolation
	// invariant is broken for all subsequent calls; escalate loudly and
	// override whatever the operation produced.
	if restoreErr := guard.Release(); restoreErr != nil {
		logger.Error("FATAL: working directory not restored; isolation invariant broken for this process",
			"error", restoreErr)
		env := envelope.Normalize(nil, restoreErr)
		env.Stdout, env.Stderr = stdout, stderr
		return env
	}

	if op.Kind == OpLoad && opErr == nil && call.activated {
		if _, isFailure := value.(*envelope.Failure); !isFailure {
			g.sessions.Set(op.Engine, call.pendingHandle)
			logger.Debug("session handle activated", "engine", op.Engine)
		}
	}

	env := envelope.Normalize(value, opErr)
	// Bridged children attach their own streams; in-process output arrives
	// through the capture scope. Keep both.
	env.Stdout = mergeStream(env.Stdout, stdout)
	env.Stderr = mergeStream(env.Stderr, stderr)

	// Successful workspace-backed runs report where their artifacts landed,
	// partial or failed ones leave the directory in place for post-mortem.
	if call.Workspace != nil && env.OK() {
		files, err := call.Workspace.Files()
		if err == nil {
			if env.Data == nil {
				env.Data = make(map[string]any)
			}
			env.Data["output_dir"] = call.Workspace.Dir
			env.Data["output_files"] = files
		}
	}

	return env
}

func mergeStream(existing, captured string) string {
	switch {
	case existing == "":
		return captured
	case captured == "":
		return existing
	default:
		return existing + "\n" + captured
	}
}

func (g *Gateway) acquireWorkspace(ctx context.Context, op Operation) (workspace.Workspace, error) {
	var key string
	if len(op.Inputs) > 0 {
		var err error
		key, err = workspace.Key(op.KeyPrefix, op.Inputs[0])
		if err != nil {
			return workspace.Workspace{}, err
		}
	} else {
		key = workspace.StaticKey(op.KeyPrefix, op.KeySuffix)
	}
	return g.workspaces.Acquire(ctx, key, op.Inputs)
}
