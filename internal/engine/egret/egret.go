// Package egret wraps the Egret optimization engine. All three solvers are
// stateless: each call reads an Egret-format JSON case, solves, and returns
// the solution document.
package egret

import (
	"context"
	"strconv"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "egret"

// UnitCommitmentOptions tune the MIP solve.
type UnitCommitmentOptions struct {
	Solver    string
	MIPGap    float64
	TimeLimit int
}

// DefaultUnitCommitmentOptions returns the runtime's defaults.
func DefaultUnitCommitmentOptions() UnitCommitmentOptions {
	return UnitCommitmentOptions{Solver: "gurobi", MIPGap: 0.01, TimeLimit: 300}
}

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) SolveACOPF(ctx context.Context, caseFile, solver string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "solve_ac_opf", []string{"--case", caseFile, "--solver", solver}, nil)
}

func (e *Engine) SolveDCOPF(ctx context.Context, caseFile, solver string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "solve_dc_opf", []string{"--case", caseFile, "--solver", solver}, nil)
}

func (e *Engine) SolveUnitCommitment(ctx context.Context, caseFile string, opts UnitCommitmentOptions) (envelope.Envelope, error) {
	args := []string{
		"--case", caseFile,
		"--solver", opts.Solver,
		"--mipgap", strconv.FormatFloat(opts.MIPGap, 'g', -1, 64),
		"--timelimit", strconv.Itoa(opts.TimeLimit),
	}
	return e.caller.Call(ctx, "solve_unit_commitment", args, nil)
}
