package ingest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codegraphhq/codegraph/internal/embedder"
	"github.com/codegraphhq/codegraph/internal/graph"
	"github.com/codegraphhq/codegraph/internal/vector"
	"github.com/codegraphhq/codegraph/pkg/types"
)

const defaultEmbedWorkers = 4

// ChunkStore is the slice of the graph layer the embedding cache needs.
type ChunkStore interface {
	FindChunk(ctx context.Context, id string) (*graph.ChunkState, error)
	UpsertChunks(ctx context.Context, chunks []types.ChunkRecord) (types.UpsertResult, error)
}

// EmbeddingCache decides, per chunk, whether a previously stored vector can
// be reused or a fresh one must be computed. The durable record of the
// decision is the chunk node itself: a vector is reused only when the stored
// chunk carries the same text hash under the same model name and its vector
// is present.
type EmbeddingCache struct {
	embedder embedder.Embedder
	memo     *embedder.Cache
	store    ChunkStore
	index    vector.Index
	workers  int
	log      *zap.Logger
}

// NewEmbeddingCache wires the cache. workers <= 0 selects the default
// parallelism for embed calls.
func NewEmbeddingCache(emb embedder.Embedder, memo *embedder.Cache, store ChunkStore, index vector.Index, workers int, log *zap.Logger) *EmbeddingCache {
	if workers <= 0 {
		workers = defaultEmbedWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EmbeddingCache{
		embedder: emb,
		memo:     memo,
		store:    store,
		index:    index,
		workers:  workers,
		log:      log,
	}
}

// Process resolves vectors for a batch of chunks, upserts every chunk node,
// and pushes the freshly computed vectors to the vector index. Chunk nodes
// are always written, vector or not; an embed failure downgrades that one
// chunk to vector-less and the batch continues. A vector-index failure is
// logged and reported on the affected chunks but does not fail the batch,
// since the index is rebuildable from the graph.
func (c *EmbeddingCache) Process(ctx context.Context, chunks []types.ChunkRecord, embed bool) ([]types.ChunkRecord, []types.ChunkOutcome, types.UpsertResult, error) {
	if len(chunks) == 0 {
		return nil, nil, types.UpsertResult{}, nil
	}

	outcomes := make([]types.ChunkOutcome, len(chunks))
	resolved := make([]types.ChunkRecord, len(chunks))
	fresh := make([]bool, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range chunks {
		g.Go(func() error {
			resolved[i], outcomes[i], fresh[i] = c.resolve(gctx, chunks[i], embed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, types.UpsertResult{}, err
	}

	stored := make([]types.ChunkRecord, 0, len(resolved))
	for i, ch := range resolved {
		if outcomes[i].Status == types.ChunkSkipped && strings.TrimSpace(ch.Text) == "" {
			continue
		}
		stored = append(stored, ch)
	}
	res, err := c.store.UpsertChunks(ctx, stored)
	if err != nil {
		return nil, nil, types.UpsertResult{}, err
	}

	c.pushFresh(ctx, resolved, fresh, outcomes)
	return resolved, outcomes, res, nil
}

func (c *EmbeddingCache) resolve(ctx context.Context, chunk types.ChunkRecord, embed bool) (types.ChunkRecord, types.ChunkOutcome, bool) {
	outcome := types.ChunkOutcome{ChunkID: chunk.ID}

	if strings.TrimSpace(chunk.Text) == "" {
		outcome.Status = types.ChunkSkipped
		return chunk, outcome, false
	}
	if !embed {
		outcome.Status = types.ChunkSkipped
		return chunk, outcome, false
	}

	chunk.EmbeddingModel = c.embedder.Model()

	prior, err := c.store.FindChunk(ctx, chunk.ID)
	if err != nil {
		c.log.Warn("chunk lookup failed, embedding fresh",
			zap.String("chunk_id", chunk.ID), zap.Error(err))
	}
	if prior != nil &&
		prior.EmbeddingModel == chunk.EmbeddingModel &&
		prior.TextHash == chunk.TextHash &&
		len(prior.Embedding) > 0 {
		chunk.EmbeddingVector = prior.Embedding
		outcome.Status = types.ChunkReused
		return chunk, outcome, false
	}

	if vec, ok := c.memo.Get(chunk.TextHash); ok {
		chunk.EmbeddingVector = vec
		outcome.Status = types.ChunkEmbedded
		return chunk, outcome, true
	}

	vec, err := c.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		c.log.Warn("embedding failed, storing chunk without vector",
			zap.String("chunk_id", chunk.ID), zap.Error(err))
		chunk.EmbeddingVector = nil
		outcome.Status = types.ChunkFailed
		outcome.Err = err.Error()
		return chunk, outcome, false
	}
	c.memo.Set(chunk.TextHash, vec)
	chunk.EmbeddingVector = vec
	outcome.Status = types.ChunkEmbedded
	return chunk, outcome, true
}

// pushFresh sends only newly computed vectors to the index. Reused vectors
// are already there under the same deterministic point id.
func (c *EmbeddingCache) pushFresh(ctx context.Context, chunks []types.ChunkRecord, fresh []bool, outcomes []types.ChunkOutcome) {
	var vectors [][]float32
	var payloads []vector.ChunkPayload
	var indices []int
	for i, ch := range chunks {
		if !fresh[i] || ch.EmbeddingVector == nil {
			continue
		}
		vectors = append(vectors, ch.EmbeddingVector)
		payloads = append(payloads, vector.PayloadFromChunk(ch))
		indices = append(indices, i)
	}
	if len(vectors) == 0 {
		return
	}
	if err := c.index.AddAll(ctx, vectors, payloads); err != nil {
		c.log.Error("vector index update failed, graph remains authoritative",
			zap.Int("vectors", len(vectors)), zap.Error(err))
		for _, i := range indices {
			outcomes[i].Err = err.Error()
		}
	}
}
