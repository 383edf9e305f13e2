package pslf

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// OpenCase stages a .sav case and activates it.
func OpenCase(eng *Engine, caseFile string) gateway.Operation {
	return gateway.Operation{
		Name:      "pslf_open_case",
		Engine:    Name,
		Kind:      gateway.OpLoad,
		KeyPrefix: "pslf",
		Inputs:    []string{caseFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if strings.ToLower(filepath.Ext(caseFile)) != ".sav" {
				return nil, envelope.UnsupportedInputFormat(caseFile, ".sav")
			}
			env, err := eng.OpenCase(ctx, call.Input())
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

// SolveCase solves the active case and translates the vendor return code.
func SolveCase(eng *Engine) gateway.Operation {
	return gateway.Operation{
		Name:   "pslf_solve_case",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.SolveCase(ctx, cs.Path)
			if callErr != nil {
				return nil, callErr
			}
			if !env.OK() {
				return env, nil
			}
			code, ok := resultCode(env)
			if !ok {
				return nil, envelope.Fail(envelope.KindBridgeProtocolError,
					"solver document carries no usable result_code")
			}
			return translateSolve(code), nil
		},
	}
}

// AreaReport prints area totals and interchanges; the text arrives through
// the capture scope as stdout.
func AreaReport(eng *Engine) gateway.Operation {
	return gateway.Operation{
		Name:   "pslf_area_report",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.AreaReport(ctx, cs.Path)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

func activeCase(call *gateway.Call) (*Case, error) {
	cs, ok := call.Handle.Value.(*Case)
	if !ok {
		return nil, envelope.StateNotLoaded("pslf case")
	}
	return cs, nil
}
