package powerworld

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// OpenCase stages a .pwb binary case and activates it.
func OpenCase(eng *Engine, caseFile string) gateway.Operation {
	return gateway.Operation{
		Name:      "powerworld_open_case",
		Engine:    Name,
		Kind:      gateway.OpLoad,
		KeyPrefix: "pw",
		Inputs:    []string{caseFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if strings.ToLower(filepath.Ext(caseFile)) != ".pwb" {
				return nil, envelope.UnsupportedInputFormat(caseFile, ".pwb")
			}
			env, err := eng.Open(ctx, call.Input())
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

// RunPowerFlow solves the active case with the requested SimAuto method.
func RunPowerFlow(eng *Engine, method string) gateway.Operation {
	return gateway.Operation{
		Name:   "powerworld_run_powerflow",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if !solutionMethods[method] {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"unsupported solution method %q", method)
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.PowerFlow(ctx, cs.Path, method)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// AnalyzeContingencies runs automated contingency screening. SimAuto's
// CTG tooling only automates single-element outages, so anything but
// N-1 is rejected here.
func AnalyzeContingencies(eng *Engine, option string, validate bool) gateway.Operation {
	return gateway.Operation{
		Name:   "powerworld_analyze_contingencies",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if option != "N-1" {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"unsupported contingency option %q, only N-1 is available", option)
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.Contingencies(ctx, cs.Path, option, validate)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// GetPowerFlowResults reads the solved values for one object family,
// key fields plus any requested extra fields.
func GetPowerFlowResults(eng *Engine, objectType string, fields []string) gateway.Operation {
	return gateway.Operation{
		Name:   "powerworld_get_power_flow_results",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if err := checkObjectType(objectType); err != nil {
				return nil, err
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.Results(ctx, cs.Path, objectType, fields)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// GetKeyFieldList lists the identifying fields for one object family.
func GetKeyFieldList(eng *Engine, objectType string) gateway.Operation {
	return gateway.Operation{
		Name:   "powerworld_get_key_field_list",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if err := checkObjectType(objectType); err != nil {
				return nil, err
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.KeyFields(ctx, cs.Path, objectType)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// ChangeParametersMultipleElement bulk-edits one object family. params
// must start with the family's key fields so the worker can locate each
// element; every value row supplies one value per parameter.
func ChangeParametersMultipleElement(eng *Engine, objectType string, params []string, values [][]any) gateway.Operation {
	return gateway.Operation{
		Name:   "powerworld_change_parameters_multiple_element",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if err := checkObjectType(objectType); err != nil {
				return nil, err
			}
			if len(params) == 0 {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"param_list must name at least the key fields")
			}
			if len(values) == 0 {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"value_list must carry at least one element row")
			}
			for i, row := range values {
				if len(row) != len(params) {
					return nil, envelope.Fail(envelope.KindUnknownEngineError,
						"value row %d has %d values, want %d", i, len(row), len(params))
				}
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.ChangeParameters(ctx, cs.Path, objectType, params, values)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// GetYbus extracts the admittance matrix, sparse CSR by default or a
// dense complex matrix when full is set.
func GetYbus(eng *Engine, full bool) gateway.Operation {
	return dependent("powerworld_get_ybus", func(ctx context.Context, cs *Case) (envelope.Envelope, error) {
		return eng.Ybus(ctx, cs.Path, full)
	})
}

// ToGraph exports the network as a node/edge list, aggregated by bus or
// by substation.
func ToGraph(eng *Engine, node string, geographic, directed bool) gateway.Operation {
	return gateway.Operation{
		Name:   "powerworld_to_graph",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			switch node {
			case "bus", "substation":
			default:
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"node must be bus or substation, got %q", node)
			}
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.Graph(ctx, cs.Path, node, geographic, directed)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

func dependent(name string, run func(context.Context, *Case) (envelope.Envelope, error)) gateway.Operation {
	return gateway.Operation{
		Name:   name,
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			cs, err := activeCase(call)
			if err != nil {
				return nil, err
			}
			env, callErr := run(ctx, cs)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

func checkObjectType(objectType string) error {
	if !resultObjectTypes[objectType] {
		return envelope.Fail(envelope.KindUnknownEngineError,
			"object_type must be one of bus, gen, load, shunt, branch, got %q", objectType)
	}
	return nil
}

func activeCase(call *gateway.Call) (*Case, error) {
	cs, ok := call.Handle.Value.(*Case)
	if !ok {
		return nil, envelope.StateNotLoaded("powerworld case")
	}
	return cs, nil
}
