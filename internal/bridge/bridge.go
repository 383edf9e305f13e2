// Package bridge adapts engines whose native runtime cannot be hosted in
// this process (typically a vendor Python environment). It spawns a child
// process per call with a fixed argument vector, injects library search
// paths through an environment overlay, and expects exactly one JSON
// document on the child's stdout after it terminates. No streaming, no
// handshakes.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/log"
)

const (
	// maxStderrBytes caps the amount of stderr captured from a child.
	maxStderrBytes = 64 * 1024

	// terminationGracePeriod is the time between SIGTERM and SIGKILL when a
	// call times out.
	terminationGracePeriod = 5 * time.Second

	// defaultTimeout bounds a call when the config does not set one. Bridge
	// calls are the only gateway operations with a timeout at all: a child
	// can be killed safely, an in-process engine cannot.
	defaultTimeout = 5 * time.Minute
)

// Config describes how to reach one bridged engine runtime.
type Config struct {
	// Engine names the engine family this runtime serves; it scopes the
	// runner's log records. Optional.
	Engine string

	// Interpreter is the foreign runtime binary, e.g. a Python 2.7 path.
	// When empty, Entrypoint is executed directly.
	Interpreter string

	// Entrypoint is the operations script the child runs. Its contract:
	// argv[1] is the subcommand, the rest are flags, and it prints one JSON
	// envelope to stdout.
	Entrypoint string

	// Env is the baseline environment overlay (binary/library search paths).
	// Per-call overlays merge on top of it.
	Env map[string]string

	// Timeout bounds each call; zero means defaultTimeout.
	Timeout time.Duration
}

// Runner executes bridge calls against one configured runtime.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Entrypoint == "" {
		return nil, fmt.Errorf("bridge entrypoint is empty")
	}
	logger := log.WithComponent("bridge")
	if cfg.Engine != "" {
		logger = log.WithEngine(cfg.Engine).With("component", "bridge")
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

// Call spawns the child for subcommand with args, waits for it to terminate,
// and decodes its single JSON document into an envelope.
//
// Failure mapping: a spawn error or non-zero exit is a BridgeProcessFailure
// whose message includes the captured stderr; a zero exit whose stdout is
// not a valid envelope document is a BridgeProtocolError. Either is returned
// as a tagged failure, never as a half-filled envelope.
func (r *Runner) Call(ctx context.Context, subcommand string, args []string, envOverlay map[string]string) (envelope.Envelope, error) {
	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	argv := make([]string, 0, len(args)+2)
	var bin string
	if r.cfg.Interpreter != "" {
		bin = r.cfg.Interpreter
		argv = append(argv, r.cfg.Entrypoint)
	} else {
		bin = r.cfg.Entrypoint
	}
	argv = append(argv, subcommand)
	argv = append(argv, args...)

	cmd := exec.Command(bin, argv...)
	cmd.Env = mergeEnv(os.Environ(), r.cfg.Env, envOverlay)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("spawning bridge child",
		"binary", bin, "subcommand", subcommand, "timeout", timeout)

	if err := cmd.Start(); err != nil {
		return envelope.Envelope{}, envelope.Fail(envelope.KindBridgeProcessFailure,
			"start bridge process: %v", err)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		r.terminate(cmd, waitErr)
		return envelope.Envelope{}, envelope.Fail(envelope.KindBridgeProcessFailure,
			"bridge call cancelled: %v", ctx.Err())

	case <-timer.C:
		r.terminate(cmd, waitErr)
		return envelope.Envelope{}, envelope.Fail(envelope.KindBridgeProcessFailure,
			"bridge call timed out after %v", timeout).
			With("stderr_tail", truncate(stderr.String()))

	case err := <-waitErr:
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return envelope.Envelope{}, envelope.Fail(envelope.KindBridgeProcessFailure,
					"bridge process exited with code %d: %s",
					exitErr.ExitCode(), truncate(stderr.String())).
					With("exit_code", exitErr.ExitCode())
			}
			return envelope.Envelope{}, envelope.Fail(envelope.KindBridgeProcessFailure,
				"wait for bridge process: %v", err)
		}
	}

	env, err := decodeDocument(stdout.Bytes())
	if err != nil {
		return envelope.Envelope{}, envelope.Fail(envelope.KindBridgeProtocolError,
			"bridge output is not a valid response document: %v", err).
			With("raw_output", truncate(stdout.String()))
	}

	if env.Stderr == "" {
		env.Stderr = truncate(stderr.String())
	}
	return env, nil
}

// terminate enforces the SIGTERM then SIGKILL shutdown of a child.
func (r *Runner) terminate(cmd *exec.Cmd, waitErr chan error) {
	if cmd.Process == nil {
		return
	}

	r.logger.Warn("terminating bridge child", "pid", cmd.Process.Pid)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		r.logger.Error("failed to send SIGTERM", "error", err)
	}

	grace := time.NewTimer(terminationGracePeriod)
	defer grace.Stop()

	select {
	case <-waitErr:
	case <-grace.C:
		r.logger.Warn("bridge child ignored SIGTERM, sending SIGKILL")
		if err := cmd.Process.Kill(); err != nil {
			r.logger.Error("failed to send SIGKILL", "error", err)
		}
		<-waitErr
	}
}

// decodeDocument parses the child's stdout as exactly one envelope document.
func decodeDocument(data []byte) (envelope.Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return envelope.Envelope{}, fmt.Errorf("child produced no output on stdout")
	}

	var env envelope.Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return envelope.Envelope{}, fmt.Errorf("decode response: %w", err)
	}
	if err := env.Validate(); err != nil {
		return envelope.Envelope{}, err
	}
	return env, nil
}

// mergeEnv layers overlays over the base environment; later overlays win.
func mergeEnv(base []string, overlays ...map[string]string) []string {
	merged := make(map[string]string, len(base))
	order := make([]string, 0, len(base))
	for _, kv := range base {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				k := kv[:i]
				if _, seen := merged[k]; !seen {
					order = append(order, k)
				}
				merged[k] = kv[i+1:]
				break
			}
		}
	}
	var added []string
	for _, overlay := range overlays {
		for k, v := range overlay {
			if _, seen := merged[k]; !seen {
				added = append(added, k)
			}
			merged[k] = v
		}
	}
	sort.Strings(added)

	out := make([]string, 0, len(merged))
	for _, k := range append(order, added...) {
		out = append(out, k+"="+merged[k])
	}
	return out
}

func truncate(s string) string {
	if len(s) > maxStderrBytes {
		return s[:maxStderrBytes]
	}
	return s
}
