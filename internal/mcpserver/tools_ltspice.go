package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/ltspice"
)

type ltCreateSessionInput struct {
	NetlistText string `json:"netlist_text" jsonschema:"required,Complete SPICE netlist text including the .end line"`
}

type ltRCNetlistInput struct {
	Resistance  float64 `json:"resistance,omitempty" jsonschema:"Resistance in ohms (default: 1000)"`
	Capacitance float64 `json:"capacitance,omitempty" jsonschema:"Capacitance in farads (default: 1e-6)"`
	PulseVOn    float64 `json:"pulse_v_on,omitempty" jsonschema:"Pulse on-voltage in volts (default: 5)"`
	PulseWidth  float64 `json:"pulse_width,omitempty" jsonschema:"Pulse width in seconds (default: 1e-3)"`
	SimDuration float64 `json:"sim_duration,omitempty" jsonschema:"Transient simulation duration in seconds (default: 5e-3)"`
}

type ltPlotInput struct {
	TraceNames []string `json:"trace_names" jsonschema:"required,Trace names to plot, e.g. V(out) or I(R1)"`
}

func (s *Server) registerLTSpiceTools() {
	eng := s.engines.LTSpice
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ltspice_create_simulation_session",
		Description: "Create a simulation session from netlist text and activate it. The netlist is written as circuit.net in the session directory.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ltCreateSessionInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, ltspice.CreateSimulationSession(eng, args.NetlistText))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ltspice_create_rc_transient_netlist",
		Description: "Build a pulse-driven RC transient netlist and open a session for it.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ltRCNetlistInput) (*mcp.CallToolResult, map[string]any, error) {
		r, c := args.Resistance, args.Capacitance
		vOn, width, dur := args.PulseVOn, args.PulseWidth, args.SimDuration
		if r == 0 {
			r = 1000
		}
		if c == 0 {
			c = 1e-6
		}
		if vOn == 0 {
			vOn = 5
		}
		if width == 0 {
			width = 1e-3
		}
		if dur == 0 {
			dur = 5e-3
		}
		env := s.gw.Invoke(ctx, ltspice.CreateRCTransientNetlist(eng, r, c, vOn, width, dur))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ltspice_run_simulation",
		Description: "Run LTspice in batch mode on the current session's netlist, producing circuit.raw and circuit.log.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, ltspice.RunSimulation(eng))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ltspice_list_available_traces",
		Description: "List the waveform trace names in the current session's raw file.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, ltspice.ListAvailableTraces(eng))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ltspice_plot_specific_traces",
		Description: "Render the named traces from the current session's raw file to a PNG in the session directory.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ltPlotInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, ltspice.PlotSpecificTraces(eng, args.TraceNames))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ltspice_read_simulation_log",
		Description: "Return the text of the current session's simulation log.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args emptyInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, ltspice.ReadSimulationLog(eng))
		return nil, env.Payload(), nil
	})
}
