package query

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphhq/codegraph/internal/vector"
	"github.com/codegraphhq/codegraph/pkg/types"
)

type stubEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

func (s *stubEmbedder) Dimension() int { return len(s.vec) }
func (s *stubEmbedder) Model() string  { return "stub" }

type stubIndex struct {
	calls   int
	topK    int
	matches []vector.Match
	err     error
}

func (s *stubIndex) AddAll(_ context.Context, _ [][]float32, _ []vector.ChunkPayload) error {
	return nil
}

func (s *stubIndex) Search(_ context.Context, _ []float32, topK int) ([]vector.Match, error) {
	s.calls++
	s.topK = topK
	return s.matches, s.err
}

type stubExpander struct {
	calls    int
	chunkIDs []string
	hops     int
	sub      types.Subgraph
	err      error
}

func (s *stubExpander) Expand(_ context.Context, chunkIDs []string, hops int) (types.Subgraph, error) {
	s.calls++
	s.chunkIDs = chunkIDs
	s.hops = hops
	return s.sub, s.err
}

type stubChat struct {
	prompt string
	answer string
	err    error
}

func (s *stubChat) Chat(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.answer, s.err
}

func match(id, module string, score float64) vector.Match {
	return vector.Match{
		Score: score,
		Payload: vector.ChunkPayload{
			ID:            id,
			Module:        module,
			OwnerIdentity: "invoice.Service",
			Kind:          types.ChunkKindMethodBody,
			Text:          "func Charge() {}",
		},
	}
}

func TestQueryBlankQuestionShortCircuits(t *testing.T) {
	emb := &stubEmbedder{}
	idx := &stubIndex{}
	exp := &stubExpander{}
	r := NewRetriever(emb, idx, exp, nil, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{Question: "   "})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Empty(t, res.Subgraph.Nodes)
	assert.Zero(t, emb.calls)
	assert.Zero(t, idx.calls)
	assert.Zero(t, exp.calls)
}

func TestQueryDefaultsTopKAndHops(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{match("c1", "billing", 0.9)}}
	exp := &stubExpander{sub: types.EmptySubgraph()}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, nil, nil)

	_, err := r.Query(context.Background(), types.QueryRequest{Question: "how is charging done?", Hops: -1})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, idx.topK)
	assert.Equal(t, DefaultHops, exp.hops)
}

func TestQueryModuleFilterDropsForeignHits(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{
		match("c1", "billing", 0.9),
		match("c2", "auth", 0.8),
		match("c3", "billing", 0.7),
	}}
	exp := &stubExpander{sub: types.EmptySubgraph()}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, nil, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{
		Question: "charge flow", ModuleFilter: "billing", Hops: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, []string{"c1", "c3"}, exp.chunkIDs)
}

func TestQueryHitsKeepRankedOrder(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{
		match("c1", "billing", 0.9),
		match("c2", "billing", 0.5),
	}}
	exp := &stubExpander{sub: types.EmptySubgraph()}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, nil, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{Question: "q", Hops: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.9, res.Hits[0].Score)
	assert.Equal(t, 0.5, res.Hits[1].Score)
	assert.Equal(t, "Chunk", res.Hits[0].Node.Label)
}

func TestQueryMissingChunkIDExcludedFromExpansion(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{
		match("", "billing", 0.9),
		match("c2", "billing", 0.8),
	}}
	exp := &stubExpander{sub: types.EmptySubgraph()}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, nil, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{Question: "q", Hops: 1})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2, "the hit itself is kept")
	assert.Equal(t, []string{"c2"}, exp.chunkIDs)
}

func TestQueryNoChunkIDsSkipsExpansion(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{match("", "billing", 0.9)}}
	exp := &stubExpander{}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, nil, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{Question: "q", Hops: 2})
	require.NoError(t, err)
	assert.Zero(t, exp.calls)
	assert.Empty(t, res.Subgraph.Nodes)
	assert.NotNil(t, res.Subgraph.Nodes)
}

func TestQueryEmbedFailure(t *testing.T) {
	r := NewRetriever(&stubEmbedder{err: errors.New("provider down")}, &stubIndex{}, &stubExpander{}, nil, nil)

	_, err := r.Query(context.Background(), types.QueryRequest{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed question")
}

func TestQuerySynthesisIncludesContext(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{match("c1", "billing", 0.9)}}
	exp := &stubExpander{sub: types.Subgraph{
		Nodes:         []types.GraphNode{{ID: "n1"}, {ID: "n2"}},
		Relationships: []types.GraphRelationship{{ID: "r1"}},
	}}
	chat := &stubChat{answer: "Charging goes through Service.Charge."}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, chat, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{
		Question: "how is charging done?", Hops: 2, GenerateAnswer: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Charging goes through Service.Charge.", res.Answer)
	assert.Contains(t, chat.prompt, "how is charging done?")
	assert.Contains(t, chat.prompt, "func Charge() {}")
	assert.Contains(t, chat.prompt, "2 nodes, 1 relationships")
}

func TestQuerySynthesisFailureSurfaced(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{match("c1", "billing", 0.9)}}
	exp := &stubExpander{sub: types.EmptySubgraph()}
	chat := &stubChat{err: errors.New("model overloaded")}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, chat, nil)

	_, err := r.Query(context.Background(), types.QueryRequest{
		Question: "q", Hops: 1, GenerateAnswer: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSynthesis)
}

func TestQueryWithoutChatModelReturnsHitsWithoutAnswer(t *testing.T) {
	idx := &stubIndex{matches: []vector.Match{match("c1", "billing", 0.9)}}
	exp := &stubExpander{sub: types.Subgraph{
		Nodes:         []types.GraphNode{{ID: "n1"}},
		Relationships: []types.GraphRelationship{},
	}}
	r := NewRetriever(&stubEmbedder{vec: []float32{1}}, idx, exp, nil, nil)

	res, err := r.Query(context.Background(), types.QueryRequest{
		Question: "q", Hops: 1, GenerateAnswer: true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Answer)
	require.Len(t, res.Hits, 1)
	assert.Len(t, res.Subgraph.Nodes, 1, "expansion still runs")
}

func TestExcerptBounded(t *testing.T) {
	long := strings.Repeat("x", maxExcerptChars+100)
	got := excerpt(long)
	assert.Len(t, got, maxExcerptChars+3)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "short", excerpt("short"))
}

func TestExcerptMultiByteRuneBound(t *testing.T) {
	long := strings.Repeat("ü", maxExcerptChars+50)
	got := excerpt(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxExcerptChars+3, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
