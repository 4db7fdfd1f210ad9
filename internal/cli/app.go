package cli

import (
	"context"
	"fmt"

	"github.com/codegraphhq/codegraph/internal/embedder"
	"github.com/codegraphhq/codegraph/internal/graph"
	"github.com/codegraphhq/codegraph/internal/ingest"
	"github.com/codegraphhq/codegraph/internal/llm"
	"github.com/codegraphhq/codegraph/internal/parser"
	"github.com/codegraphhq/codegraph/internal/query"
	"github.com/codegraphhq/codegraph/internal/vector"
)

// app is the wired dependency graph behind every command.
type app struct {
	graph       *graph.Client
	coordinator *graph.Coordinator
	pipeline    *ingest.Pipeline
	retriever   *query.Retriever
}

// newApp builds every collaborator from the loaded configuration. It fails
// fast when the graph store or the vector index is unreachable.
func newApp(ctx context.Context) (*app, error) {
	client, err := graph.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username,
		cfg.Neo4j.Password, cfg.Neo4j.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect graph store: %w", err)
	}
	coordinator := graph.NewCoordinator(client, log)

	index, err := vector.NewQdrantIndex(ctx, cfg.Qdrant.Host, cfg.Qdrant.Collection,
		cfg.Embedding.Dimensions, log)
	if err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("connect vector index: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimensions,
		APIKey:    cfg.Embedding.APIKey,
		Host:      cfg.Embedding.Host,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	chat, err := llm.New(llm.Config{
		Provider: cfg.Chat.Provider,
		Model:    cfg.Chat.Model,
		Host:     cfg.Chat.Host,
		APIKey:   cfg.Chat.APIKey,
	})
	if err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	memo := embedder.NewCache(cfg.Embedding.CacheSize)
	cache := ingest.NewEmbeddingCache(emb, memo, coordinator, index, cfg.Ingest.Workers, log)
	pipeline := ingest.NewPipeline(parser.New(log), coordinator, cache,
		cfg.Ingest.ChunkChars, cfg.Ingest.Overlap, log)
	retriever := query.NewRetriever(emb, index, coordinator, chat, log)

	return &app{
		graph:       client,
		coordinator: coordinator,
		pipeline:    pipeline,
		retriever:   retriever,
	}, nil
}

func (a *app) close(ctx context.Context) {
	_ = a.graph.Close(ctx)
}
