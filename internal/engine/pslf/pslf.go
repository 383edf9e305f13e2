// Package pslf wraps the GE PSLF load-flow engine. The solver reports
// vendor integer codes; translation into the canonical result shape
// happens here, at the innermost boundary, so downstream only ever sees
// one failure shape.
package pslf

import (
	"context"
	"math"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "pslf"

// Case is the session handle for an opened PSLF case.
type Case struct {
	Path string
	Dir  string
}

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) OpenCase(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "open_case", []string{"--case", casePath}, nil)
}

func (e *Engine) SolveCase(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "solve_case", []string{"--case", casePath}, nil)
}

func (e *Engine) AreaReport(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "area_report", []string{"--case", casePath}, nil)
}

// translateSolve maps the vendor solve code. Nonconvergence (-1, -2) is a
// domain outcome, not a call failure: the solver ran to completion and
// reported its verdict, so those come back as success envelopes with
// converged=false.
func translateSolve(code int) any {
	data := map[string]any{"result_code": code}
	switch {
	case code == 0:
		data["converged"] = true
		return envelope.Success("Power flow solved successfully", data)
	case code == -1:
		data["converged"] = false
		return envelope.Success("Power flow did not converge: case diverged", data)
	case code == -2:
		data["converged"] = false
		return envelope.Success("Power flow did not converge: exceeded maximum iterations", data)
	case code < -2:
		return envelope.Fail(envelope.KindUnknownEngineError,
			"no swing bus or HVDC error (code %d)", code).With("result_code", code)
	default:
		return envelope.Fail(envelope.KindUnknownEngineError,
			"unexpected solver return code %d", code).With("result_code", code)
	}
}

// resultCode digs the vendor code out of the worker's document.
func resultCode(env envelope.Envelope) (int, bool) {
	v, ok := env.Data["result_code"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
