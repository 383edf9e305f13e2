package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/pandapower"
)

type ppLoadInput struct {
	FilePath string `json:"file_path" jsonschema:"required,Path to the network file (.json or .p)"`
}

type ppPowerFlowInput struct {
	Algorithm              string  `json:"algorithm,omitempty" jsonschema:"Power flow algorithm: nr or bfsw (default: nr)"`
	CalculateVoltageAngles *bool   `json:"calculate_voltage_angles,omitempty" jsonschema:"Consider voltage angles in calculation (default: true)"`
	MaxIteration           int     `json:"max_iteration,omitempty" jsonschema:"Maximum number of iterations (default: 10)"`
	ToleranceMVA           float64 `json:"tolerance_mva,omitempty" jsonschema:"Convergence tolerance in MVA (default: 1e-8)"`
}

type ppContingencyInput struct {
	ContingencyType string   `json:"contingency_type,omitempty" jsonschema:"Type of contingency analysis: N-1 or N-2 (default: N-1)"`
	Elements        []string `json:"elements,omitempty" jsonschema:"Specific elements to analyze"`
}

func (s *Server) registerPandapowerTools() {
	eng := s.engines.Pandapower
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pandapower_create_empty_network",
		Description: "Create an empty pandapower network and activate it as the current network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pandapower.CreateEmptyNetwork(eng))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pandapower_load_network",
		Description: "Load a pandapower network from a .json or .p file and activate it as the current network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ppLoadInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pandapower.LoadNetwork(eng, args.FilePath))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pandapower_run_power_flow",
		Description: "Run power flow analysis on the current network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ppPowerFlowInput) (*mcp.CallToolResult, map[string]any, error) {
		opts := pandapower.DefaultPowerFlowOptions()
		if args.Algorithm != "" {
			opts.Algorithm = args.Algorithm
		}
		if args.CalculateVoltageAngles != nil {
			opts.CalculateVoltageAngles = *args.CalculateVoltageAngles
		}
		if args.MaxIteration > 0 {
			opts.MaxIteration = args.MaxIteration
		}
		if args.ToleranceMVA > 0 {
			opts.ToleranceMVA = args.ToleranceMVA
		}
		env := s.gw.Invoke(ctx, pandapower.RunPowerFlow(eng, opts))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pandapower_run_contingency_analysis",
		Description: "Run N-1 or N-2 contingency analysis on the current network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ppContingencyInput) (*mcp.CallToolResult, map[string]any, error) {
		contingencyType := args.ContingencyType
		if contingencyType == "" {
			contingencyType = "N-1"
		}
		env := s.gw.Invoke(ctx, pandapower.RunContingencyAnalysis(eng, contingencyType, args.Elements))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pandapower_get_network_info",
		Description: "Get bus, line, and transformer counts for the current network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pandapower.GetNetworkInfo(eng))
		return nil, env.Payload(), nil
	})
}
