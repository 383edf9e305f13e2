// Package opendss wraps the OpenDSS distribution-circuit engine. OpenDSS
// resolves compile-time includes against the ambient working directory, so
// the compile tool runs with chdir isolation; the circuit activated by a
// compile is the session handle for every other tool.
package opendss

import (
	"context"
	"strconv"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "opendss"

// Circuit is the session handle for a compiled circuit.
type Circuit struct {
	// Master is the staged master .dss file.
	Master string

	Dir string
}

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) CompileAndSolve(ctx context.Context, dssFile string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "compile_and_solve", []string{"--master", dssFile}, nil)
}

func (e *Engine) TotalPower(ctx context.Context, master string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "get_total_power", []string{"--master", master}, nil)
}

func (e *Engine) SetLoadMultiplier(ctx context.Context, master string, mult float64) (envelope.Envelope, error) {
	args := []string{"--master", master, "--loadmult", strconv.FormatFloat(mult, 'g', -1, 64)}
	return e.caller.Call(ctx, "set_load_multiplier", args, nil)
}

func (e *Engine) BusVoltages(ctx context.Context, master string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "get_bus_voltages", []string{"--master", master}, nil)
}

func (e *Engine) DailyEnergyMeter(ctx context.Context, master, meter string, hours int) (envelope.Envelope, error) {
	args := []string{"--master", master, "--meter", meter, "--hours", strconv.Itoa(hours)}
	return e.caller.Call(ctx, "run_daily_energy_meter", args, nil)
}

func (e *Engine) HarmonicResults(ctx context.Context, master, loadName string, harmonic int) (envelope.Envelope, error) {
	args := []string{"--master", master, "--load", loadName, "--harmonic", strconv.Itoa(harmonic)}
	return e.caller.Call(ctx, "get_harmonic_results", args, nil)
}
