package andes

import (
	"context"
	"fmt"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// RunPowerFlow stages caseFile into a content-addressed workspace, solves
// it, and on success activates the case. Nonconvergence is a success
// envelope with converged=false, not an error.
func RunPowerFlow(eng *Engine, caseFile string) gateway.Operation {
	return loadOperation(eng.PowerFlow, "andes_run_power_flow", "andes_pf", caseFile)
}

// RunEigenvalueAnalysis loads caseFile, runs small-signal analysis, and
// activates the case.
func RunEigenvalueAnalysis(eng *Engine, caseFile string) gateway.Operation {
	return loadOperation(eng.Eigenvalues, "andes_run_eigenvalue_analysis", "andes_eig", caseFile)
}

// RunTimeDomainSimulation runs a time-domain simulation on the currently
// active case.
func RunTimeDomainSimulation(eng *Engine, stepSize, tEnd float64) gateway.Operation {
	return gateway.Operation{
		Name:   "andes_run_time_domain_simulation",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if stepSize <= 0 {
				return nil, fmt.Errorf("step_size must be positive, got %g", stepSize)
			}
			if tEnd <= 0 {
				return nil, fmt.Errorf("t_end must be positive, got %g", tEnd)
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			return passthrough(eng.TimeDomain(ctx, cs.Path, stepSize, tEnd))
		},
	}
}

// GetSystemInfo reports bus/generator counts and base MVA for the active
// case.
func GetSystemInfo(eng *Engine) gateway.Operation {
	return gateway.Operation{
		Name:   "andes_get_system_info",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			return passthrough(eng.SystemInfo(ctx, cs.Path))
		},
	}
}

func loadOperation(run func(context.Context, string) (envelope.Envelope, error), name, keyPrefix, caseFile string) gateway.Operation {
	return gateway.Operation{
		Name:      name,
		Engine:    Name,
		Kind:      gateway.OpLoad,
		KeyPrefix: keyPrefix,
		Inputs:    []string{caseFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			env, err := run(ctx, call.Input())
			if err != nil {
				return nil, err
			}
			if env.OK() {
				call.Activate(&Case{Path: call.Input(), Dir: call.Workspace.Dir})
			}
			return env, nil
		},
	}
}

func activeCase(call *gateway.Call) (*Case, error) {
	cs, ok := call.Handle.Value.(*Case)
	if !ok {
		return nil, envelope.StateNotLoaded("andes case")
	}
	return cs, nil
}

func passthrough(env envelope.Envelope, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return env, nil
}
