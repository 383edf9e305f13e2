// Package engine defines the boundary between tool bodies and the analysis
// runtimes they drive. The runtimes are native Python/vendor processes, so
// the shipped implementation of Caller is the cross-process bridge; tests
// substitute mocks.
package engine

import (
	"context"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

//go:generate mockgen -destination=mocks/mock_caller.go -package=mocks github.com/smilealdway/PowerMCP/internal/engine Caller

// Caller executes one engine subcommand and returns its result document.
// bridge.Runner is the production implementation.
type Caller interface {
	Call(ctx context.Context, subcommand string, args []string, envOverlay map[string]string) (envelope.Envelope, error)
}
