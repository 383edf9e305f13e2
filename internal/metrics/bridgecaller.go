package metrics

import (
	"context"
	"errors"

	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/envelope"
)

type observedCaller struct {
	next    engine.Caller
	metrics *Metrics
}

// InstrumentCaller decorates a bridge caller with outcome counting.
func (m *Metrics) InstrumentCaller(next engine.Caller) engine.Caller {
	return &observedCaller{next: next, metrics: m}
}

func (c *observedCaller) Call(ctx context.Context, subcommand string, args []string, envOverlay map[string]string) (envelope.Envelope, error) {
	env, err := c.next.Call(ctx, subcommand, args, envOverlay)
	c.metrics.ObserveBridgeCall(bridgeOutcome(err))
	return env, err
}

func bridgeOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var failure *envelope.Failure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case envelope.KindBridgeProcessFailure:
			return "process_failure"
		case envelope.KindBridgeProtocolError:
			return "protocol_error"
		}
	}
	return "error"
}
