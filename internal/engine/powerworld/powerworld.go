// Package powerworld wraps PowerWorld Simulator through its SimAuto
// automation surface. Beyond load flow it exposes the simulator's
// tabular data access (key fields, bulk parameter edits), the Ybus
// admittance matrix, and a network-graph export.
package powerworld

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

const Name = "powerworld"

// Case is the session handle for an opened PowerWorld binary case.
type Case struct {
	Path string
	Dir  string
}

// solutionMethods are the SimAuto power-flow solvers the worker accepts.
var solutionMethods = map[string]bool{
	"RECTNEWT":    true, // rectangular Newton-Raphson
	"POLARNEWTON": true,
	"GAUSSSEIDEL": true,
	"FDXB":        true, // fast decoupled
	"DC":          true,
}

// resultObjectTypes are the tabular object families the worker can read
// and write.
var resultObjectTypes = map[string]bool{
	"bus":    true,
	"gen":    true,
	"load":   true,
	"shunt":  true,
	"branch": true,
}

type Engine struct {
	caller engine.Caller
}

func New(caller engine.Caller) *Engine {
	return &Engine{caller: caller}
}

func (e *Engine) Open(ctx context.Context, casePath string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "open_case", []string{"--case", casePath}, nil)
}

func (e *Engine) PowerFlow(ctx context.Context, casePath, method string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "run_powerflow",
		[]string{"--case", casePath, "--method", method}, nil)
}

func (e *Engine) Contingencies(ctx context.Context, casePath, option string, validate bool) (envelope.Envelope, error) {
	args := []string{"--case", casePath, "--option", option}
	if validate {
		args = append(args, "--validate")
	}
	return e.caller.Call(ctx, "analyze_contingencies", args, nil)
}

func (e *Engine) Results(ctx context.Context, casePath, objectType string, fields []string) (envelope.Envelope, error) {
	args := []string{"--case", casePath, "--object-type", objectType}
	if len(fields) > 0 {
		args = append(args, "--fields", strings.Join(fields, ","))
	}
	return e.caller.Call(ctx, "get_power_flow_results", args, nil)
}

func (e *Engine) KeyFields(ctx context.Context, casePath, objectType string) (envelope.Envelope, error) {
	return e.caller.Call(ctx, "get_key_field_list",
		[]string{"--case", casePath, "--object-type", objectType}, nil)
}

// ChangeParameters ships the edit matrix as one JSON argument; flag
// splitting would mangle values that contain commas or spaces.
func (e *Engine) ChangeParameters(ctx context.Context, casePath, objectType string, params []string, values [][]any) (envelope.Envelope, error) {
	encoded, err := json.Marshal(values)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return e.caller.Call(ctx, "change_parameters_multiple_element", []string{
		"--case", casePath,
		"--object-type", objectType,
		"--params", strings.Join(params, ","),
		"--values", string(encoded),
	}, nil)
}

func (e *Engine) Ybus(ctx context.Context, casePath string, full bool) (envelope.Envelope, error) {
	args := []string{"--case", casePath}
	if full {
		args = append(args, "--full")
	}
	return e.caller.Call(ctx, "get_ybus", args, nil)
}

func (e *Engine) Graph(ctx context.Context, casePath, node string, geographic, directed bool) (envelope.Envelope, error) {
	args := []string{"--case", casePath, "--node", node,
		"--geographic", strconv.FormatBool(geographic),
		"--directed", strconv.FormatBool(directed)}
	return e.caller.Call(ctx, "to_graph", args, nil)
}
