// Package andes wraps the ANDES transient-stability engine. A successful
// power-flow or eigenvalue run activates the solved case as the current
// session handle; the time-domain and info tools operate on that case.
package andes

import (
	"context"
	"strconv"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

// Name is the engine family identifier used for session gating.
const Name = "andes"

// Case is the session handle for an activated ANDES case.
type Case struct {
	// Path is the staged in-workspace case file.
	Path string

	// Dir is the workspace directory simulation outputs land in.
	Dir string
}

// Engine drives the ANDES runtime. The runtime is a one-shot worker: every
// call receives the case path and re-establishes state itself.
type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) PowerFlow(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "run_power_flow", []string{"--case", casePath}, nil)
}

func (e *Engine) TimeDomain(ctx context.Context, casePath string, stepSize, tEnd float64) (envelope.Envelope, error) {
	args := []string{
		"--case", casePath,
		"--step-size", formatFloat(stepSize),
		"--t-end", formatFloat(tEnd),
	}
	return e.caller.Call(ctx, "run_time_domain_simulation", args, nil)
}

func (e *Engine) Eigenvalues(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "run_eigenvalue_analysis", []string{"--case", casePath}, nil)
}

func (e *Engine) SystemInfo(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "get_system_info", []string{"--case", casePath}, nil)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
