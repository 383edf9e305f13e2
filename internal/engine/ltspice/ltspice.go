// Package ltspice wraps LTspice batch-mode circuit simulation. A
// session is a workspace holding one netlist; the simulator writes its
// raw waveform file and log next to it, so every artifact path derives
// from the session directory.
package ltspice

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "ltspice"

const (
	netlistFile = "circuit.net"
	rawFile     = "circuit.raw"
	logFile     = "circuit.log"
)

// Session is the handle for a created simulation session.
type Session struct {
	Dir     string
	Netlist string
}

func (s *Session) RawPath() string { return filepath.Join(s.Dir, rawFile) }
func (s *Session) LogPath() string { return filepath.Join(s.Dir, logFile) }

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) Run(ctx context.Context, netlistPath, sessionDir string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "run_simulation",
		[]string{"--netlist", netlistPath, "--session-dir", sessionDir}, nil)
}

func (e *Engine) Traces(ctx context.Context, rawPath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "list_available_traces", []string{"--raw", rawPath}, nil)
}

func (e *Engine) Plot(ctx context.Context, rawPath, sessionDir string, traces []string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "plot_specific_traces", []string{
		"--raw", rawPath,
		"--session-dir", sessionDir,
		"--traces", strings.Join(traces, ","),
	}, nil)
}

func (e *Engine) ReadLog(ctx context.Context, logPath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "read_simulation_log", []string{"--log", logPath}, nil)
}
