package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/codegraphhq/codegraph/internal/embedder"
	"github.com/codegraphhq/codegraph/internal/llm"
	"github.com/codegraphhq/codegraph/internal/vector"
	"github.com/codegraphhq/codegraph/pkg/types"
)

const (
	// DefaultTopK is the vector-search depth when the request leaves it unset.
	DefaultTopK = 10

	// DefaultHops is the expansion depth when the request leaves it unset.
	DefaultHops = 2
)

// Expander is the graph-traversal collaborator of the retriever.
type Expander interface {
	Expand(ctx context.Context, chunkIDs []string, hops int) (types.Subgraph, error)
}

// Retriever answers questions over the code graph: embed the question, rank
// chunks by vector similarity, expand the graph neighborhood of the hits,
// and optionally synthesize a prose answer from the assembled context.
type Retriever struct {
	embedder embedder.Embedder
	index    vector.Index
	graph    Expander
	chat     llm.ChatModel
	log      *zap.Logger
}

// NewRetriever wires a retriever. chat may be nil; answer requests then
// degrade to hits and subgraph without an answer.
func NewRetriever(emb embedder.Embedder, index vector.Index, graph Expander, chat llm.ChatModel, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{embedder: emb, index: index, graph: graph, chat: chat, log: log}
}

// Query runs one retrieval. A blank question short-circuits to an empty
// result without touching any collaborator.
func (r *Retriever) Query(ctx context.Context, req types.QueryRequest) (types.QueryResult, error) {
	result := types.QueryResult{Hits: []types.Hit{}, Subgraph: types.EmptySubgraph()}

	if strings.TrimSpace(req.Question) == "" {
		return result, nil
	}

	queryVec, err := r.embedder.Embed(ctx, req.Question)
	if err != nil {
		return result, fmt.Errorf("embed question: %w", err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	matches, err := r.index.Search(ctx, queryVec, topK)
	if err != nil {
		return result, fmt.Errorf("vector search: %w", err)
	}

	var chunkIDs []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if req.ModuleFilter != "" && m.Payload.Module != req.ModuleFilter {
			continue
		}
		result.Hits = append(result.Hits, types.Hit{
			Score: m.Score,
			Node: types.GraphNode{
				ID:         m.Payload.ID,
				Label:      "Chunk",
				Properties: m.Payload.ToMap(),
			},
		})
		if m.Payload.ID == "" {
			r.log.Warn("search match without chunk id, excluded from expansion",
				zap.Float64("score", m.Score))
			continue
		}
		if !seen[m.Payload.ID] {
			seen[m.Payload.ID] = true
			chunkIDs = append(chunkIDs, m.Payload.ID)
		}
	}

	if len(chunkIDs) > 0 {
		hops := req.Hops
		if hops < 0 {
			hops = DefaultHops
		}
		sub, err := r.graph.Expand(ctx, chunkIDs, hops)
		if err != nil {
			return result, fmt.Errorf("graph expansion: %w", err)
		}
		result.Subgraph = sub
	}

	if req.GenerateAnswer {
		if r.chat == nil {
			r.log.Debug("answer requested but no chat model configured, returning hits only")
			return result, nil
		}
		answer, err := r.synthesize(ctx, req.Question, result)
		if err != nil {
			return result, err
		}
		result.Answer = answer
	}
	return result, nil
}

func (r *Retriever) synthesize(ctx context.Context, question string, result types.QueryResult) (string, error) {
	prompt := buildPrompt(question, result.Hits, result.Subgraph)
	answer, err := r.chat.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrSynthesis, err)
	}
	return answer, nil
}
