package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/pypsa"
)

type pypsaInfoInput struct {
	NetworkFile string `json:"network_file" jsonschema:"required,Path to the PyPSA network file"`
}

type pypsaOptimizeInput struct {
	NetworkFile string `json:"network_file" jsonschema:"required,Path to the PyPSA network file"`
	SolverName  string `json:"solver_name,omitempty" jsonschema:"Solver to use (default: gurobi)"`
	Formulation string `json:"formulation,omitempty" jsonschema:"LOPF formulation (default: kirchhoff)"`
}

func (s *Server) registerPyPSATools() {
	eng := s.engines.PyPSA
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pypsa_get_network_info",
		Description: "Get component counts and basic information about a PyPSA network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pypsaInfoInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pypsa.GetNetworkInfo(eng, args.NetworkFile))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pypsa_optimize_network",
		Description: "Run a linear optimal power flow (LOPF) on a PyPSA network.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pypsaOptimizeInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, pypsa.OptimizeNetwork(eng, args.NetworkFile, args.SolverName, args.Formulation))
		return nil, env.Payload(), nil
	})
}
