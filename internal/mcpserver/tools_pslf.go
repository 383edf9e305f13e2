package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/pslf"
)

type pslfOpenInput struct {
	Case string `json:"case" jsonschema:"required,Path to the .sav case file"`
}

func (s *Server) registerPSLFTools() {
	eng := s.engines.PSLF
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pslf_open_case",
		Description: "Open a PSLF .sav case and activate it as the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pslfOpenInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pslf.OpenCase(eng, args.Case))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pslf_solve_case",
		Description: "Solve the power flow for the current PSLF case. Nonconvergence is reported as converged=false.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pslf.SolveCase(eng))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pslf_area_report",
		Description: "Print area totals and interchanges for the current PSLF case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pslf.AreaReport(eng))
		return nil, env.Payload(), nil
	})
}
