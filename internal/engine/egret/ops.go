package egret

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// SolveACOPF solves an AC optimal power flow on an Egret JSON case.
func SolveACOPF(eng *Engine, caseFile, solver string) gateway.Operation {
	if solver == "" {
		solver = "ipopt"
	}
	return stateless("egret_solve_ac_opf", caseFile, func(ctx context.Context, staged string) (envelope.Envelope, error) {
		return eng.SolveACOPF(ctx, staged, solver)
	})
}

// SolveDCOPF solves a DC optimal power flow on an Egret JSON case.
func SolveDCOPF(eng *Engine, caseFile, solver string) gateway.Operation {
	if solver == "" {
		solver = "gurobi"
	}
	return stateless("egret_solve_dc_opf", caseFile, func(ctx context.Context, staged string) (envelope.Envelope, error) {
		return eng.SolveDCOPF(ctx, staged, solver)
	})
}

// SolveUnitCommitment solves a unit commitment MIP on an Egret JSON case.
func SolveUnitCommitment(eng *Engine, caseFile string, opts UnitCommitmentOptions) gateway.Operation {
	if opts.Solver == "" {
		opts.Solver = "gurobi"
	}
	if opts.MIPGap <= 0 {
		opts.MIPGap = 0.01
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = 300
	}
	return stateless("egret_solve_unit_commitment", caseFile, func(ctx context.Context, staged string) (envelope.Envelope, error) {
		return eng.SolveUnitCommitment(ctx, staged, opts)
	})
}

func stateless(name, caseFile string, run func(context.Context, string) (envelope.Envelope, error)) gateway.Operation {
	return gateway.Operation{
		Name:      name,
		Engine:    Name,
		Kind:      gateway.OpStateless,
		KeyPrefix: "egret",
		Inputs:    []string{caseFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if strings.ToLower(filepath.Ext(caseFile)) != ".json" {
				return nil, envelope.UnsupportedInputFormat(caseFile, ".json")
			}
			env, err := run(ctx, call.Input())
			if err != nil {
				return nil, err
			}
			return env, nil
		},
	}
}
