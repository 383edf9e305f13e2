package opendss

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
)

// CompileAndSolve compiles a master .dss file and activates the circuit.
// Compile directives resolve include files relative to the working
// directory, so this runs inside the workspace.
func CompileAndSolve(eng *Engine, dssFile string) gateway.Operation {
	return gateway.Operation{
		Name:           "opendss_compile_and_solve",
		Engine:         Name,
		Kind:           gateway.OpLoad,
		KeyPrefix:      "dss",
		Inputs:         []string{dssFile},
		ChdirIsolation: true,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if strings.ToLower(filepath.Ext(dssFile)) != ".dss" {
				return nil, envelope.UnsupportedInputFormat(dssFile, ".dss")
			}
			env, err := eng.CompileAndSolve(ctx, call.Input())
			if err != nil {
				return nil, err
			}
			if env.OK() {
				call.Activate(&Circuit{Master: call.Input(), Dir: call.Workspace.Dir})
			}
			return env, nil
		},
	}
}

// GetTotalPower reports total circuit [P, Q] in kW / kVAr.
func GetTotalPower(eng *Engine) gateway.Operation {
	return dependent("opendss_get_total_power", func(ctx context.Context, c *Circuit) (envelope.Envelope, error) {
		return eng.TotalPower(ctx, c.Master)
	})
}

// SetLoadMultiplier scales all loads and re-solves.
func SetLoadMultiplier(eng *Engine, mult float64) gateway.Operation {
	return dependent("opendss_set_load_multiplier", func(ctx context.Context, c *Circuit) (envelope.Envelope, error) {
		return eng.SetLoadMultiplier(ctx, c.Master, mult)
	})
}

// GetBusVoltages reports per-unit voltages for every node.
func GetBusVoltages(eng *Engine) gateway.Operation {
	return dependent("opendss_get_bus_voltages", func(ctx context.Context, c *Circuit) (envelope.Envelope, error) {
		return eng.BusVoltages(ctx, c.Master)
	})
}

// RunDailyEnergyMeter runs a daily-mode simulation and reads hourly energy
// from the named meter.
func RunDailyEnergyMeter(eng *Engine, meter string, hours int) gateway.Operation {
	return gateway.Operation{
		Name:   "opendss_run_daily_energy_meter",
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			if hours <= 0 {
				return nil, envelope.Fail(envelope.KindUnknownEngineError,
					"hours must be positive, got %d", hours)
			}
			c, err := activeCircuit(call)
			if err != nil {
				return nil, err
			}
			if meter == "" {
				meter = "Feeder"
			}
			env, callErr := eng.DailyEnergyMeter(ctx, c.Master, meter, hours)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

// GetHarmonicResults reads current and voltage phasors for one load at one
// harmonic order.
func GetHarmonicResults(eng *Engine, loadName string, harmonic int) gateway.Operation {
	return dependent("opendss_get_harmonic_results", func(ctx context.Context, c *Circuit) (envelope.Envelope, error) {
		return eng.HarmonicResults(ctx, c.Master, loadName, harmonic)
	})
}

func dependent(name string, run func(context.Context, *Circuit) (envelope.Envelope, error)) gateway.Operation {
	return gateway.Operation{
		Name:   name,
		Engine: Name,
		Kind:   gateway.OpDependent,
		Run: func(ctx context.Context, call *gateway.Call) (any, error) {
			c, err := activeCircuit(call)
			if err != nil {
				return nil, err
			}
			env, callErr := run(ctx, c)
			if callErr != nil {
				return nil, callErr
			}
			return env, nil
		},
	}
}

func activeCircuit(call *gateway.Call) (*Circuit, error) {
	c, ok := call.Handle.Value.(*Circuit)
	if !ok {
		return nil, envelope.StateNotLoaded("opendss circuit")
	}
	return c, nil
}
