package pypsa

import (
	"context"

	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// GetNetworkInfo reports component counts for a network file.
func GetNetworkInfo(eng *Engine, networkFile string) gateway.Operation {
	return gateway.Operation{
		Name:      "pypsa_get_network_info",
		Engine:    Name,
		Kind:      gateway.OpStateless,
		KeyPrefix: "pypsa",
		Inputs:    []string{networkFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			env, err := eng.NetworkInfo(ctx, call.Input())
			if err != nil {
				return nil, err
			}
			return env, nil
		},
	}
}

// OptimizeNetwork runs a linear optimal power flow on a network file.
func OptimizeNetwork(eng *Engine, networkFile, solver, formulation string) gateway.Operation {
	if solver == "" {
		solver = "gurobi"
	}
	if formulation == "" {
		formulation = "kirchhoff"
	}
	return gateway.Operation{
		Name:      "pypsa_optimize_network",
		Engine:    Name,
		Kind:      gateway.OpStateless,
		KeyPrefix: "pypsa_opt",
		Inputs:    []string{networkFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			env, err := eng.Optimize(ctx, call.Input(), solver, formulation)
			if err != nil {
				return nil, err
			}
			return env, nil
		},
	}
}
