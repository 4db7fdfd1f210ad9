package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphhq/codegraph/internal/graph"
	"github.com/codegraphhq/codegraph/pkg/types"
)

type fakeIngest struct {
	req     types.IngestRequest
	summary types.IngestSummary
	err     error
}

func (f *fakeIngest) Ingest(_ context.Context, req types.IngestRequest) (types.IngestSummary, error) {
	f.req = req
	return f.summary, f.err
}

type fakeQuery struct {
	req    types.QueryRequest
	result types.QueryResult
	err    error
}

func (f *fakeQuery) Query(_ context.Context, req types.QueryRequest) (types.QueryResult, error) {
	f.req = req
	return f.result, f.err
}

type fakeGraph struct {
	nodeIDs []string
	hops    int
	source  string
	target  string
	module  string
	sub     types.Subgraph
	stats   graph.ModuleStats
	err     error
}

func (f *fakeGraph) ExpandNodes(_ context.Context, nodeIDs []string, hops int) (types.Subgraph, error) {
	f.nodeIDs = nodeIDs
	f.hops = hops
	return f.sub, f.err
}

func (f *fakeGraph) ShortestTypePath(_ context.Context, source, target string) (types.Subgraph, error) {
	f.source = source
	f.target = target
	return f.sub, f.err
}

func (f *fakeGraph) Stats(_ context.Context, module string) (graph.ModuleStats, error) {
	f.module = module
	return f.stats, f.err
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func newTestServer(ing *fakeIngest, q *fakeQuery, g *fakeGraph) *Server {
	if ing == nil {
		ing = &fakeIngest{}
	}
	if q == nil {
		q = &fakeQuery{}
	}
	if g == nil {
		g = &fakeGraph{sub: types.EmptySubgraph()}
	}
	return NewServer(ing, q, g, nil)
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(nil, nil, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestIngestDefaults(t *testing.T) {
	ing := &fakeIngest{summary: types.IngestSummary{ModuleName: "billing", Chunks: 3}}
	s := newTestServer(ing, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/ingest", map[string]any{
		"repoPath":   "/src/billing",
		"moduleName": "billing",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ing.req.Options.Embed, "embed defaults on")
	assert.Equal(t, -1, ing.req.Options.Overlap, "overlap defaults to configured")
	assert.Contains(t, rec.Body.String(), `"chunks":3`)
}

func TestIngestExplicitOptions(t *testing.T) {
	ing := &fakeIngest{}
	s := newTestServer(ing, nil, nil)

	embed := false
	overlap := 40
	rec := doJSON(t, s, http.MethodPost, "/api/v1/ingest", map[string]any{
		"repoPath":   "/src/billing",
		"moduleName": "billing",
		"embed":      embed,
		"overlap":    overlap,
		"chunkChars": 400,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ing.req.Options.Embed)
	assert.Equal(t, 40, ing.req.Options.Overlap)
	assert.Equal(t, 400, ing.req.Options.ChunkChars)
}

func TestIngestMissingFields(t *testing.T) {
	rec := doJSON(t, newTestServer(nil, nil, nil), http.MethodPost, "/api/v1/ingest", map[string]any{
		"repoPath": "/src/billing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestValidationErrorMapsTo400(t *testing.T) {
	ing := &fakeIngest{err: fmt.Errorf("%w: bad repo", types.ErrValidation)}
	rec := doJSON(t, newTestServer(ing, nil, nil), http.MethodPost, "/api/v1/ingest", map[string]any{
		"repoPath": "/src/billing", "moduleName": "billing",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryDefaults(t *testing.T) {
	q := &fakeQuery{result: types.QueryResult{Hits: []types.Hit{}, Subgraph: types.EmptySubgraph()}}
	s := newTestServer(nil, q, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/query", map[string]any{
		"question": "how does charging work?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, q.req.GenerateAnswer)
	assert.Equal(t, -1, q.req.Hops, "hops defaults to the retriever's")
	assert.Contains(t, rec.Body.String(), `"hits":[]`)
}

func TestQueryMissingQuestion(t *testing.T) {
	rec := doJSON(t, newTestServer(nil, nil, nil), http.MethodPost, "/api/v1/query", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuerySynthesisFailureMapsTo502(t *testing.T) {
	q := &fakeQuery{err: fmt.Errorf("%w: model overloaded", types.ErrSynthesis)}
	rec := doJSON(t, newTestServer(nil, q, nil), http.MethodPost, "/api/v1/query", map[string]any{
		"question": "q",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestQueryInternalErrorMapsTo500(t *testing.T) {
	q := &fakeQuery{err: errors.New("store down")}
	rec := doJSON(t, newTestServer(nil, q, nil), http.MethodPost, "/api/v1/query", map[string]any{
		"question": "q",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGraphExpand(t *testing.T) {
	g := &fakeGraph{sub: types.Subgraph{
		Nodes:         []types.GraphNode{{ID: "n1", Label: "Type"}},
		Relationships: []types.GraphRelationship{},
	}}
	s := newTestServer(nil, nil, g)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/graph/expand", map[string]any{
		"nodeIds": []string{"n1"},
		"hops":    3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"n1"}, g.nodeIDs)
	assert.Equal(t, 3, g.hops)
	assert.Contains(t, rec.Body.String(), `"label":"Type"`)
}

func TestGraphPath(t *testing.T) {
	g := &fakeGraph{sub: types.EmptySubgraph()}
	s := newTestServer(nil, nil, g)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/graph/path", map[string]any{
		"sourceType": "invoice.Service",
		"targetType": "invoice.Store",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "invoice.Service", g.source)
	assert.Equal(t, "invoice.Store", g.target)
}

func TestModuleStats(t *testing.T) {
	g := &fakeGraph{stats: graph.ModuleStats{Types: 4, Chunks: 9}}
	s := newTestServer(nil, nil, g)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/modules/billing/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "billing", g.module)
	assert.Contains(t, rec.Body.String(), `"types":4`)
}
