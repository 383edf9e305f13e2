// Package pypsa wraps the PyPSA energy-system engine. Both tools are
// stateless: the network file is read fresh on every call.
package pypsa

import (
	"context"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "pypsa"

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) NetworkInfo(ctx context.Context, networkFile string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "get_network_info", []string{"--network", networkFile}, nil)
}

func (e *Engine) Optimize(ctx context.Context, networkFile, solver, formulation string) (envelope.Envelope, error) {
	args := []string{"--network", networkFile, "--solver", solver, "--formulation", formulation}
	return e.caller.Call(ctx, "optimize_network", args, nil)
}
