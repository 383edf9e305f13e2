package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/psse"
)

type psseSolveInput struct {
	CasePath string `json:"case_path" jsonschema:"required,Path to the .sav case file"`
}

type psseDynamicInput struct {
	SavCase             string  `json:"sav_case" jsonschema:"required,Path to the .sav case file"`
	DyrCase             string  `json:"dyr_case" jsonschema:"required,Path to the .dyr dynamics file"`
	FaultBus            int     `json:"fault_bus" jsonschema:"required,Bus number for fault application"`
	FaultDurationCycles float64 `json:"fault_duration_cycles,omitempty" jsonschema:"Fault duration in cycles (default: 3.0)"`
	TotalSimulationTime float64 `json:"total_simulation_time,omitempty" jsonschema:"Total simulation time in seconds (default: 10.0)"`
	OutputFile          string  `json:"output_file,omitempty" jsonschema:"Optional path for the channel output file"`
}

type psseExportInput struct {
	ChannelFile string `json:"channel_file" jsonschema:"required,Path to the channel output file"`
	ExcelFile   string `json:"excel_file,omitempty" jsonschema:"Path for the Excel output file (default: out.xls)"`
	SheetName   string `json:"sheet_name,omitempty" jsonschema:"Name of the sheet in Excel"`
}

func (s *Server) registerPSSETools() {
	eng := s.engines.PSSE
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "psse_load_and_solve_case",
		Description: "Load a PSS/E .sav case and solve the power flow.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args psseSolveInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, psse.LoadAndSolveCase(eng, args.CasePath))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "psse_run_dynamic_simulation",
		Description: "Run a dynamic simulation with a bus fault on a PSS/E case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args psseDynamicInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, psse.RunDynamicSimulation(eng, psse.DynamicSimulationParams{
			SavCase:             args.SavCase,
			DyrCase:             args.DyrCase,
			FaultBus:            args.FaultBus,
			FaultDurationCycles: args.FaultDurationCycles,
			SimulationTime:      args.TotalSimulationTime,
			OutputFile:          args.OutputFile,
		}))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "psse_export_results_to_excel",
		Description: "Export dynamic simulation channel results to an Excel file.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args psseExportInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, psse.ExportResultsToExcel(eng, args.ChannelFile, args.ExcelFile, args.SheetName))
		return nil, env.Payload(), nil
	})
}
