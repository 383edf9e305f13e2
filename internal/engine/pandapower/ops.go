package pandapower

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// emptyNetworkFile is where a freshly created network is serialized.
const emptyNetworkFile = "network.json"

// CreateEmptyNetwork creates and activates a fresh empty network.
func CreateEmptyNetwork(eng *Engine) gateway.Operation {
	return gateway.Operation{
		Name:      "pandapower_create_empty_network",
		Engine:    Name,
		Kind:      gateway.OpLoad,
		KeyPrefix: "pp",
		KeySuffix: "empty",
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			out := filepath.Join(call.Workspace.Dir, emptyNetworkFile)
			env, err := eng.CreateEmpty(ctx, out)
			if err != nil {
				return nil, err
			}
			if env.OK() {
				call.Activate(&Network{Path: out, Dir: call.Workspace.Dir})
			}
			return env, nil
		},
	}
}

// LoadNetwork stages and activates a serialized network. Only .json and .p
// files are accepted.
func LoadNetwork(eng *Engine, networkFile string) gateway.Operation {
	return gateway.Operation{
		Name:      "pandapower_load_network",
		Engine:    Name,
		Kind:      gateway.OpLoad,
		KeyPrefix: "pp",
		Inputs:    []string{networkFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			switch strings.ToLower(filepath.Ext(networkFile)) {
			case ".json", ".p":
			default:
				return nil, envelope.UnsupportedInputFormat(networkFile, ".json", ".p")
			}
			env, err := eng.Load(ctx, call.Input())
			if err != nil {
				return nil, err
			}
			if env.OK() {
				call.Activate(&Network{Path: call.Input(), Dir: call.Workspace.Dir})
			}
			return env, nil
		},
	}
}

// RunPowerFlow solves the active network. Nonconvergence is a success
// envelope with converged=false.
func RunPowerFlow(eng *Engine, opts PowerFlowOptions) gateway.Operation {
	return dependent("pandapower_run_power_flow", func(ctx context.Context, net *Network) (envelope.Envelope, error) {
		return eng.PowerFlow(ctx, net.Path, opts)
	})
}

// RunContingencyAnalysis runs N-1 or N-2 screening on the active network.
func RunContingencyAnalysis(eng *Engine, contingencyType string, elements []string) gateway.Operation {
	return gateway.Operation{
		Name:   "pandapower_run_contingency_analysis",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			switch contingencyType {
			case "N-1", "N-2":
			default:
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"contingency_type must be N-1 or N-2, got %q", contingencyType)
			}
			net, err := activeNetwork(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.Contingency(ctx, net.Path, contingencyType, elements)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// GetNetworkInfo summarizes the active network.
func GetNetworkInfo(eng *Engine) gateway.Operation {
	return dependent("pandapower_get_network_info", func(ctx context.Context, net *Network) (envelope.Envelope, error) {
		return eng.Info(ctx, net.Path)
	})
}

func dependent(name string, run func(context.Context, *Network) (envelope.Envelope, error)) gateway.Operation {
	return gateway.Operation{
		Name:   name,
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			net, err := activeNetwork(call)
			if err != nil {
				return nil, err
			}
			env, callErr := run(ctx, net)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

func activeNetwork(call *gateway.Call) (*Network, error) {
	net, ok := call.Handle.Value.(*Network)
	if !ok {
		return nil, envelope.StateNotLoaded("pandapower network")
	}
	return net, nil
}
