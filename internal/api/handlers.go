package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codegraphhq/codegraph/pkg/types"
)

type ingestRequest struct {
	RepoPath     string `json:"repoPath" binding:"required"`
	ModuleName   string `json:"moduleName" binding:"required"`
	IncludeTests bool   `json:"includeTests"`
	ChunkChars   int    `json:"chunkChars"`
	Overlap      *int   `json:"overlap"`
	Embed        *bool  `json:"embed"`
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := types.IngestOptions{
		IncludeTests: req.IncludeTests,
		ChunkChars:   req.ChunkChars,
		Overlap:      -1,
		Embed:        true,
	}
	if req.Overlap != nil {
		opts.Overlap = *req.Overlap
	}
	if req.Embed != nil {
		opts.Embed = *req.Embed
	}

	summary, err := s.ingest.Ingest(c.Request.Context(), types.IngestRequest{
		RepoPath:   req.RepoPath,
		ModuleName: req.ModuleName,
		Options:    opts,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type queryRequest struct {
	Question       string `json:"question" binding:"required"`
	Module         string `json:"module"`
	TopK           int    `json:"topK"`
	Hops           *int   `json:"hops"`
	GenerateAnswer *bool  `json:"generateAnswer"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qr := types.QueryRequest{
		Question:       req.Question,
		ModuleFilter:   req.Module,
		TopK:           req.TopK,
		Hops:           -1,
		GenerateAnswer: true,
	}
	if req.Hops != nil {
		qr.Hops = *req.Hops
	}
	if req.GenerateAnswer != nil {
		qr.GenerateAnswer = *req.GenerateAnswer
	}

	result, err := s.query.Query(c.Request.Context(), qr)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type expandRequest struct {
	NodeIDs []string `json:"nodeIds" binding:"required"`
	Hops    int      `json:"hops"`
}

func (s *Server) handleExpand(c *gin.Context) {
	var req expandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := s.graph.ExpandNodes(c.Request.Context(), req.NodeIDs, req.Hops)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type pathRequest struct {
	SourceType string `json:"sourceType" binding:"required"`
	TargetType string `json:"targetType" binding:"required"`
}

func (s *Server) handlePath(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := s.graph.ShortestTypePath(c.Request.Context(), req.SourceType, req.TargetType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.graph.Stats(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
