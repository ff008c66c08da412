// ABOUTME: MCP server setup for the kal daily log.
// ABOUTME: Wraps the MCP server around a logbook Keeper.
package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/harperreed/kal/internal/logbook"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with log access. Tool calls are serialized
// because every write is followed by a snapshot of the store file.
type Server struct {
	mcpServer *mcp.Server
	keeper    *logbook.Keeper
	mu        sync.Mutex
	now       func() time.Time
}

// NewServer creates a new MCP server backed by keeper.
func NewServer(keeper *logbook.Keeper, version string) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "kal",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		keeper:    keeper,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
