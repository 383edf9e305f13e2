// Package psse wraps the PSS/E engine. PSS/E ships a Python 2.7 API, so
// every tool goes over the bridge with the PSSBIN library directory
// injected into the child's search paths. All three tools are one-shot:
// the case is loaded, operated on, and discarded within a single child
// process, so no session handle is kept.
package psse

import (
	"context"
	"strconv"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "psse"

// Engine drives the PSS/E operations worker.
type Engine struct {
	caller engine.Caller

	// binPath is the PSSBIN directory injected as PATH/PYTHONPATH overlay.
	binPath string
}

func New(caller engine.Caller, binPath string) *Engine {
	return &Engine{caller: caller, binPath: binPath}
}

func (e *Engine) overlay() map[string]string {
	if e.binPath == "" {
		return nil
	}
	return map[string]string{
		"PSSBIN":     e.binPath,
		"PYTHONPATH": e.binPath,
	}
}

func (e *Engine) Solve(ctx context.Context, savCase string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "solve", []string{"--sav-case", savCase}, e.overlay())
}

// DynamicSimulationParams collects the fault scenario for Simulate.
type DynamicSimulationParams struct {
	SavCase             string
	DyrCase             string
	FaultBus            int
	FaultDurationCycles float64
	SimulationTime      float64
	OutputFile          string
}

func (e *Engine) Simulate(ctx context.Context, p DynamicSimulationParams) (envelope.Envelope, error) {
	args := []string{
		"--sav-case", p.SavCase,
		"--dyr-case", p.DyrCase,
		"--fault-bus", strconv.Itoa(p.FaultBus),
		"--fault-duration", strconv.FormatFloat(p.FaultDurationCycles, 'g', -1, 64),
		"--simulation-time", strconv.FormatFloat(p.SimulationTime, 'g', -1, 64),
	}
	if p.OutputFile != "" {
		args = append(args, "--output-file", p.OutputFile)
	}
	return e.caller.Call(ctx, "simulate", args, e.overlay())
}

func (e *Engine) Export(ctx context.Context, channelFile, excelFile, sheetName string) (envelope.Envelope, error) {
	args := []string{
		"--output-file", channelFile,
		"--excel-file", excelFile,
		"--sheet-name", sheetName,
	}
	return e.caller.Call(ctx, "export", args, e.overlay())
}
