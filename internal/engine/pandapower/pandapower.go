// Package pandapower wraps the pandapower distribution-grid engine. The
// session handle is the serialized network file; every runtime call reloads
// it, mutating tools write it back before returning.
package pandapower

import (
	"context"
	"strconv"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "pandapower"

// Network is the session handle for the active pandapower network.
type Network struct {
	// Path is the serialized network inside the workspace.
	Path string

	Dir string
}

// PowerFlowOptions mirror pp.runpp keyword arguments.
type PowerFlowOptions struct {
	Algorithm              string
	CalculateVoltageAngles bool
	MaxIteration           int
	ToleranceMVA           float64
}

// DefaultPowerFlowOptions returns the runtime's defaults.
func DefaultPowerFlowOptions() PowerFlowOptions {
	return PowerFlowOptions{
		Algorithm:              "nr",
		CalculateVoltageAngles: true,
		MaxIteration:           10,
		ToleranceMVA:           1e-8,
	}
}

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

// CreateEmpty asks the runtime to serialize a fresh empty network to outPath.
func (e *Engine) CreateEmpty(ctx context.Context, outPath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "create_empty_network", []string{"--out", outPath}, nil)
}

func (e *Engine) Load(ctx context.Context, networkPath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "load_network", []string{"--network", networkPath}, nil)
}

func (e *Engine) PowerFlow(ctx context.Context, networkPath string, opts PowerFlowOptions) (envelope.Envelope, error) {
	args := []string{
		"--network", networkPath,
		"--algorithm", opts.Algorithm,
		"--max-iteration", strconv.Itoa(opts.MaxIteration),
		"--tolerance-mva", strconv.FormatFloat(opts.ToleranceMVA, 'g', -1, 64),
		"--calculate-voltage-angles", strconv.FormatBool(opts.CalculateVoltageAngles),
	}
	return e.caller.Call(ctx, "run_power_flow", args, nil)
}

func (e *Engine) Contingency(ctx context.Context, networkPath, contingencyType string, elements []string) (envelope.Envelope, error) {
	args := []string{"--network", networkPath, "--type", contingencyType}
	for _, el := range elements {
		args = append(args, "--element", el)
	}
	return e.caller.Call(ctx, "run_contingency_analysis", args, nil)
}

func (e *Engine) Info(ctx context.Context, networkPath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "get_network_info", []string{"--network", networkPath}, nil)
}
