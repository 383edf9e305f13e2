package mcpserver

import (
	"fmt"

	"github.com/smilealdway/PowerMCP/internal/bridge"
	"github.com/smilealdway/PowerMCP/internal/config"
	"github.com/smilealdway/PowerMCP/internal/engine"
	"github.com/smilealdway/PowerMCP/internal/engine/andes"
	"github.com/smilealdway/PowerMCP/internal/engine/egret"
	"github.com/smilealdway/PowerMCP/internal/engine/ltspice"
	"github.com/smilealdway/PowerMCP/internal/engine/opendss"
	"github.com/smilealdway/PowerMCP/internal/engine/pandapower"
	"github.com/smilealdway/PowerMCP/internal/engine/powerworld"
	"github.com/smilealdway/PowerMCP/internal/engine/pslf"
	"github.com/smilealdway/PowerMCP/internal/engine/psse"
	"github.com/smilealdway/PowerMCP/internal/engine/pypsa"
)

// BuildEngines constructs a bridge runner per enabled engine and wraps it
// in the engine's typed API. wrap, when non-nil, decorates every caller
// (used for bridge-call metrics).
func BuildEngines(cfg *config.Config, wrap func(engine.Caller) engine.Caller) (Engines, error) {
	var engines Engines

	for name, ec := range cfg.Engines {
		if !ec.Enabled {
			continue
		}

		runner, err := bridge.NewRunner(bridge.Config{
			Engine:      name,
			Interpreter: ec.Bridge.Interpreter,
			Entrypoint:  ec.Bridge.Entrypoint,
			Env:         ec.Bridge.Env,
			Timeout:     ec.Bridge.Timeout,
		})
		if err != nil {
			return Engines{}, fmt.Errorf("engine %q: %w", name, err)
		}

		var caller engine.Caller = runner
		if wrap != nil {
			caller = wrap(caller)
		}

		switch name {
		case andes.Name:
			engines.ANDES = andes.New(caller)
		case pandapower.Name:
			engines.Pandapower = pandapower.New(caller)
		case opendss.Name:
			engines.OpenDSS = opendss.New(caller)
		case psse.Name:
			engines.PSSE = psse.New(caller, ec.Bridge.Env["PSSBIN"])
		case pslf.Name:
			engines.PSLF = pslf.New(caller)
		case powerworld.Name:
			engines.PowerWorld = powerworld.New(caller)
		case ltspice.Name:
			engines.LTSpice = ltspice.New(caller)
		case egret.Name:
			engines.Egret = egret.New(caller)
		case pypsa.Name:
			engines.PyPSA = pypsa.New(caller)
		default:
			return Engines{}, fmt.Errorf("unknown engine %q in configuration", name)
		}
	}

	return engines, nil
}
