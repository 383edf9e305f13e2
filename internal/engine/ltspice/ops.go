package ltspice

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// CreateSimulationSession writes the netlist into a fresh workspace and
// activates it. No simulator process is involved yet: session creation
// is pure file staging, so the same netlist text always lands in the
// same workspace.
func CreateSimulationSession(eng *Engine, netlistText string) gateway.Operation {
	return gateway.Operation{
		Name:      "ltspice_create_simulation_session",
		Engine:    Name,
		Kind:      gateway.OpLoad,
		KeyPrefix: "ltspice",
		KeySuffix: netlistKey(netlistText),
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if strings.TrimSpace(netlistText) == "" {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"netlist text must not be empty")
			}
			path := filepath.Join(call.Workspace.Dir, netlistFile)
			if err := os.WriteFile(path, []byte(netlistText), 0o644); err != nil {
				return nil, fmt.Errorf("write netlist: %w", err)
			}
			call.Activate(&Session{Dir: call.Workspace.Dir, Netlist: path})
			return envelope.Success("Simulation session created", map[string]any{
				"session_dir":     call.Workspace.Dir,
				"session_name":    filepath.Base(call.Workspace.Dir),
				"netlist_path":    path,
				"netlist_content": netlistText,
			}), nil
		},
	}
}

// CreateRCTransientNetlist builds a pulse-driven RC netlist and opens a
// session for it. Component values are in ohms, farads, volts, seconds.
func CreateRCTransientNetlist(eng *Engine, resistance, capacitance, pulseVOn, pulseWidth, simDuration float64) gateway.Operation {
	for name, v := range map[string]float64{
		"resistance":   resistance,
		"capacitance":  capacitance,
		"pulse_width":  pulseWidth,
		"sim_duration": simDuration,
	} {
		if v <= 0 {
			return invalidOp("ltspice_create_rc_transient_netlist",
				"%s must be positive, got %g", name, v)
		}
	}
	netlist := fmt.Sprintf(`* RC transient response
V1 in 0 PULSE(0 %g 0 1n 1n %g %g)
R1 in out %g
C1 out 0 %g
.tran %g
.end
`, pulseVOn, pulseWidth, 2*pulseWidth, resistance, capacitance, simDuration)
	op := CreateSimulationSession(eng, netlist)
	op.Name = "ltspice_create_rc_transient_netlist"
	return op
}

// RunSimulation runs LTspice in batch mode on the active session's
// netlist. The worker reports the raw and log paths it produced.
func RunSimulation(eng *Engine) gateway.Operation {
	return dependent("ltspice_run_simulation", func(ctx context.Context, s *Session) (envelope.Envelope, error) {
		return eng.Run(ctx, s.Netlist, s.Dir)
	})
}

// ListAvailableTraces lists the waveform names in the session's raw file.
func ListAvailableTraces(eng *Engine) gateway.Operation {
	return dependent("ltspice_list_available_traces", func(ctx context.Context, s *Session) (envelope.Envelope, error) {
		return eng.Traces(ctx, s.RawPath())
	})
}

// PlotSpecificTraces renders the named traces to a PNG in the session
// directory.
func PlotSpecificTraces(eng *Engine, traces []string) gateway.Operation {
	return gateway.Operation{
		Name:   "ltspice_plot_specific_traces",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if len(traces) == 0 {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"at least one trace name is required")
			}
			s, err := activeSession(call)
			if err != nil {
				return nil, err
			}
			env, callErr := eng.Plot(ctx, s.RawPath(), s.Dir, traces)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// ReadSimulationLog returns the text of the session's simulation log.
func ReadSimulationLog(eng *Engine) gateway.Operation {
	return dependent("ltspice_read_simulation_log", func(ctx context.Context, s *Session) (envelope.Envelope, error) {
		return eng.ReadLog(ctx, s.LogPath())
	})
}

// netlistKey fingerprints the netlist text so distinct circuits get
// distinct session workspaces.
func netlistKey(netlistText string) string {
	sum := blake3.Sum256([]byte(netlistText))
	return hex.EncodeToString(sum[:])[:8]
}

func dependent(name string, run func(context.Context, *Session) (envelope.Envelope, error)) gateway.Operation {
	return gateway.Operation{
		Name:   name,
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			s, err := activeSession(call)
			if err != nil {
				return nil, err
			}
			env, callErr := run(ctx, s)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

func invalidOp(name, format string, args ...any) gateway.Operation {
	err := envelope.Fail(envelope.KindUnknownEngineError, format, args...)
	return gateway.Operation{
		Name:   name,
		Engine: Name,
		Kind:   gateway.OpStateless,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			return nil, err
		},
	}
}

func activeSession(call *gateway.Call) (*Session, error) {
	s, ok := call.Handle.Value.(*Session)
	if !ok {
		return nil, envelope.StateNotLoaded("ltspice session")
	}
	return s, nil
}
