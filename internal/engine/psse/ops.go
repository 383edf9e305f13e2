package psse

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// LoadAndSolveCase loads a .sav case and solves it in one child process.
func LoadAndSolveCase(eng *Engine, savCase string) gateway.Operation {
	return gateway.Operation{
		Name:      "psse_load_and_solve_case",
		Engine:    Name,
		Kind:      gateway.OpStateless,
		KeyPrefix: "psse",
		Inputs:    []string{savCase},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if strings.ToLower(filepath.Ext(savCase)) != ".sav" {
				return nil, envelope.UnsupportedInputFormat(savCase, ".sav")
			}
			env, err := eng.Solve(ctx, call.Input())
			if err != nil {
				return nil, err
			}
			return env, nil
		},
	}
}

// RunDynamicSimulation applies a bus fault and simulates. Channel output
// lands in the workspace unless an explicit output file is given.
func RunDynamicSimulation(eng *Engine, p DynamicSimulationParams) gateway.Operation {
	return gateway.Operation{
		Name:      "psse_run_dynamic_simulation",
		Engine:    Name,
		Kind:      gateway.OpStateless,
		KeyPrefix: "psse_dyn",
		Inputs:    []string{p.SavCase, p.DyrCase},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if p.FaultBus <= 0 {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"fault_bus must be a positive bus number, got %d", p.FaultBus)
			}
			staged := p
			staged.SavCase = call.Workspace.InputPath(filepath.Base(p.SavCase))
			staged.DyrCase = call.Workspace.InputPath(filepath.Base(p.DyrCase))
			if staged.OutputFile == "" {
				staged.OutputFile = filepath.Join(call.Workspace.Dir, "channels.out")
			}
			if staged.FaultDurationCycles <= 0 {
				staged.FaultDurationCycles = 3.0
			}
			if staged.SimulationTime <= 0 {
				staged.SimulationTime = 10.0
			}
			env, err := eng.Simulate(ctx, staged)
			if err != nil {
				return nil, err
			}
			return env, nil
		},
	}
}

// ExportResultsToExcel converts a channel output file to a spreadsheet.
func ExportResultsToExcel(eng *Engine, channelFile, excelFile, sheetName string) gateway.Operation {
	return gateway.Operation{
		Name:      "psse_export_results_to_excel",
		Engine:    Name,
		Kind:      gateway.OpStateless,
		KeyPrefix: "psse_export",
		Inputs:    []string{channelFile},
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if excelFile == "" {
				excelFile = "out.xls"
			}
			if !filepath.IsAbs(excelFile) {
				excelFile = filepath.Join(call.Workspace.Dir, excelFile)
			}
			env, err := eng.Export(ctx, call.Input(), excelFile, sheetName)
			if err != nil {
				return nil, err
			}
			return env, nil
		},
	}
}
