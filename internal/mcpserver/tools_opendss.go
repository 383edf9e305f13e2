package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/opendss"
)

type dssCompileInput struct {
	DSSFile string `json:"dss_file" jsonschema:"required,Path to the master OpenDSS file (.dss)"`
}

type dssLoadMultInput struct {
	LoadMult float64 `json:"load_mult" jsonschema:"required,Load multiplier value"`
}

type dssDailyMeterInput struct {
	MeterName string `json:"meter_name,omitempty" jsonschema:"Name of the energy meter (default: Feeder)"`
	Hours     int    `json:"hours,omitempty" jsonschema:"Number of hours to simulate (default: 24)"`
}

type dssHarmonicInput struct {
	LoadName string `json:"load_name" jsonschema:"required,Name of the load"`
	Harmonic int    `json:"harmonic" jsonschema:"required,Harmonic order"`
}

func (s *Server) registerOpenDSSTools() {
	eng := s.engines.OpenDSS
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "opendss_compile_and_solve",
		Description: "Compile an OpenDSS master file, solve the circuit, and activate it as the current circuit.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args dssCompileInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, opendss.CompileAndSolve(eng, args.DSSFile))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "opendss_get_total_power",
		Description: "Get total power [P, Q] in kW and kVAr from the current circuit.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, opendss.GetTotalPower(eng))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "opendss_set_load_multiplier",
		Description: "Set the load multiplier, re-solve the circuit, and report the minimum per-unit voltage.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args dssLoadMultInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, opendss.SetLoadMultiplier(eng, args.LoadMult))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "opendss_get_bus_voltages",
		Description: "Get per-unit voltages for all nodes in the current circuit.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, opendss.GetBusVoltages(eng))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "opendss_run_daily_energy_meter",
		Description: "Run a daily simulation and return hourly energy (kWh) from the named energy meter.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args dssDailyMeterInput) (*mcp.CallToolResult, map[string]any, error) {
		hours := args.Hours
		if hours == 0 {
			hours = 24
		}
		env := s.gw.Invoke(ctx, opendss.RunDailyEnergyMeter(eng, args.MeterName, hours))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "opendss_get_harmonic_results",
		Description: "Get current and voltage magnitude and angle for a load at a specific harmonic order.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args dssHarmonicInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, opendss.GetHarmonicResults(eng, args.LoadName, args.Harmonic))
		return nil, env.Payload(), nil
	})
}
