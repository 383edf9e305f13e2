package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/andes"
)

type andesCaseInput struct {
	FilePath string `json:"file_path" jsonschema:"required,Path to the power system case file"`
}

type andesTimeDomainInput struct {
	StepSize float64 `json:"step_size,omitempty" jsonschema:"Time step size in seconds (default: 0.01)"`
	TEnd     float64 `json:"t_end,omitempty" jsonschema:"End time in seconds (default: 10.0)"`
}

type emptyInput struct{}

func (s *Server) registerANDESTools() {
	eng := s.engines.ANDES
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "andes_run_power_flow",
		Description: "Run power flow analysis on a power system case and activate it as the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args andesCaseInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, andes.RunPowerFlow(eng, args.FilePath))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "andes_run_time_domain_simulation",
		Description: "Run a time domain simulation on the currently loaded power system. Requires a prior power flow or eigenvalue run.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args andesTimeDomainInput) (*mcp.CallToolResult, map[string]any, error) {
		stepSize := args.StepSize
		if stepSize == 0 {
			stepSize = 0.01
		}
		tEnd := args.TEnd
		if tEnd == 0 {
			tEnd = 10.0
		}
		env := s.gw.Invoke(ctx, andes.RunTimeDomainSimulation(eng, stepSize, tEnd))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "andes_run_eigenvalue_analysis",
		Description: "Run eigenvalue (small-signal stability) analysis on a power system case and activate it as the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args andesCaseInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, andes.RunEigenvalueAnalysis(eng, args.FilePath))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "andes_get_system_info",
		Description: "Get bus, generator, and base MVA information about the currently loaded power system.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, andes.GetSystemInfo(eng))
		return nil, env.Payload(), nil
	})
}
