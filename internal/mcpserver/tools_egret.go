package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/egret"
)

type egretOPFInput struct {
	CaseFile string `json:"case_file" jsonschema:"required,Path to the case file in Egret JSON format"`
	Solver   string `json:"solver,omitempty" jsonschema:"Solver to use"`
}

type egretUCInput struct {
	CaseFile  string  `json:"case_file" jsonschema:"required,Path to the case file in Egret JSON format"`
	Solver    string  `json:"solver,omitempty" jsonschema:"Solver to use (default: gurobi)"`
	MIPGap    float64 `json:"mipgap,omitempty" jsonschema:"MIP gap tolerance (default: 0.01)"`
	TimeLimit int     `json:"timelimit,omitempty" jsonschema:"Time limit in seconds (default: 300)"`
}

func (s *Server) registerEgretTools() {
	eng := s.engines.Egret
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "egret_solve_ac_opf",
		Description: "Solve an AC optimal power flow problem using Egret.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args egretOPFInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, egret.SolveACOPF(eng, args.CaseFile, args.Solver))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "egret_solve_dc_opf",
		Description: "Solve a DC optimal power flow problem using Egret.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args egretOPFInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, egret.SolveDCOPF(eng, args.CaseFile, args.Solver))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "egret_solve_unit_commitment",
		Description: "Solve a unit commitment problem using Egret.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args egretUCInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, egret.SolveUnitCommitment(eng, args.CaseFile, egret.UnitCommitmentOptions{
			Solver:    args.Solver,
			MIPGap:    args.MIPGap,
			TimeLimit: args.TimeLimit,
		}))
		return nil, env.Payload(), nil
	})
}
