// Package mcpserver exposes every engine tool over the Model Context
// Protocol. Tool handlers validate and shape their typed input, hand the
// resulting operation to the gateway, and return the flattened result
// envelope as structured content. Handlers never fail the protocol call:
// engine failures travel inside the envelope.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/andes"
	"github.com/smilealdway/PowerMCP/internal/engine/egret"
	"github.com/smilealdway/PowerMCP/internal/engine/ltspice"
	"github.com/smilealdway/PowerMCP/internal/engine/opendss"
	"github.com/smilealdway/PowerMCP/internal/engine/pandapower"
	"github.com/smilealdway/PowerMCP/internal/engine/powerworld"
	"github.com/smilealdway/PowerMCP/internal/engine/pslf"
	"github.com/smilealdway/PowerMCP/internal/engine/psse"
	"github.com/smilealdway/PowerMCP/internal/engine/pypsa"
	"github.com/smilealdway/PowerMCP/internal/gateway"
	"github.com/smilealdway/PowerMCP/internal/log"
)

// Engines holds the constructed engine wrappers. A nil entry means the
// engine is disabled and its tools are not registered.
type Engines struct {
	ANDES      *andes.Engine
	Pandapower *pandapower.Engine
	OpenDSS    *opendss.Engine
	PSSE       *psse.Engine
	PSLF       *pslf.Engine
	PowerWorld *powerworld.Engine
	LTSpice    *ltspice.Engine
	Egret      *egret.Engine
	PyPSA      *pypsa.Engine
}

// Server bridges MCP tool calls into the gateway.
type Server struct {
	mcp     *mcp.Server
	gw      *gateway.Gateway
	engines Engines
	logger  *slog.Logger
}

// NewServer creates the MCP server and registers tools for every enabled
// engine.
func NewServer(name, version string, gw *gateway.Gateway, engines Engines) (*Server, error) {
	if gw == nil {
		return nil, fmt.Errorf("gateway is required")
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, nil),
		gw:      gw,
		engines: engines,
		logger:  log.WithComponent("mcpserver"),
	}

	s.registerANDESTools()
	s.registerPandapowerTools()
	s.registerOpenDSSTools()
	s.registerPSSETools()
	s.registerPSLFTools()
	s.registerPowerWorldTools()
	s.registerLTSpiceTools()
	s.registerEgretTools()
	s.registerPyPSATools()

	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled. Stdout belongs to the
// protocol; all logging goes to stderr.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
