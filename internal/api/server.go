package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codegraphhq/codegraph/internal/graph"
	"github.com/codegraphhq/codegraph/pkg/types"
)

// IngestService runs ingestions.
type IngestService interface {
	Ingest(ctx context.Context, req types.IngestRequest) (types.IngestSummary, error)
}

// QueryService answers questions over the graph.
type QueryService interface {
	Query(ctx context.Context, req types.QueryRequest) (types.QueryResult, error)
}

// GraphService exposes direct graph reads.
type GraphService interface {
	ExpandNodes(ctx context.Context, nodeIDs []string, hops int) (types.Subgraph, error)
	ShortestTypePath(ctx context.Context, sourceFQName, targetFQName string) (types.Subgraph, error)
	Stats(ctx context.Context, module string) (graph.ModuleStats, error)
}

// Server is the HTTP surface.
type Server struct {
	engine  *gin.Engine
	ingest  IngestService
	query   QueryService
	graph   GraphService
	log     *zap.Logger
	started time.Time
}

// NewServer builds the router. All dependencies are required except log.
func NewServer(ingest IngestService, query QueryService, graphSvc GraphService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:  gin.New(),
		ingest:  ingest,
		query:   query,
		graph:   graphSvc,
		log:     log,
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/health", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/ingest", s.handleIngest)
	v1.POST("/query", s.handleQuery)
	v1.POST("/graph/expand", s.handleExpand)
	v1.POST("/graph/path", s.handlePath)
	v1.GET("/modules/:name/stats", s.handleStats)
}

// Handler exposes the router for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).String(),
	})
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrSynthesis):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
