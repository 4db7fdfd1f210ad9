package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/codegraphhq/codegraph/internal/graph"
	"github.com/codegraphhq/codegraph/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "codegraph"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// IngestService runs ingestions.
type IngestService interface {
	Ingest(ctx context.Context, req types.IngestRequest) (types.IngestSummary, error)
}

// QueryService answers questions over the graph.
type QueryService interface {
	Query(ctx context.Context, req types.QueryRequest) (types.QueryResult, error)
}

// StatsService reads per-module graph statistics.
type StatsService interface {
	Stats(ctx context.Context, module string) (graph.ModuleStats, error)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	ingest IngestService
	query  QueryService
	stats  StatsService
	log    *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(ingest IngestService, query QueryService, stats StatsService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		ingest: ingest,
		query:  query,
		stats:  stats,
		log:    log,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("mcp server starting on stdio",
		zap.String("name", ServerName), zap.String("version", ServerVersion))
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestModuleTool(), s.handleIngestModule)
	s.mcp.AddTool(queryCodebaseTool(), s.handleQueryCodebase)
	s.mcp.AddTool(graphStatusTool(), s.handleGraphStatus)
}
