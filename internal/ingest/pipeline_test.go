package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphhq/codegraph/internal/embedder"
	"github.com/codegraphhq/codegraph/internal/graph"
	"github.com/codegraphhq/codegraph/pkg/types"
)

type fakeGraphStore struct {
	fakeChunkStore
	mu        sync.Mutex
	order     []string
	modules   []types.ModuleNode
	types     []types.TypeNode
	methods   []types.MethodNode
	endpoints []types.EndpointNode
	chunkRels []types.ChunkOfMethod
	failOn    string
}

func (f *fakeGraphStore) record(step string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, step)
	if f.failOn == step {
		return errors.New(step + " failed")
	}
	return nil
}

func (f *fakeGraphStore) UpsertModules(_ context.Context, m []types.ModuleNode) (types.UpsertResult, error) {
	f.modules = append(f.modules, m...)
	return types.UpsertResult{}, f.record("modules")
}

func (f *fakeGraphStore) UpsertTypes(_ context.Context, t []types.TypeNode) (types.UpsertResult, error) {
	f.types = append(f.types, t...)
	return types.UpsertResult{}, f.record("types")
}

func (f *fakeGraphStore) UpsertMethods(_ context.Context, m []types.MethodNode) (types.UpsertResult, error) {
	f.methods = append(f.methods, m...)
	return types.UpsertResult{}, f.record("methods")
}

func (f *fakeGraphStore) UpsertEndpoints(_ context.Context, e []types.EndpointNode) (types.UpsertResult, error) {
	f.endpoints = append(f.endpoints, e...)
	return types.UpsertResult{}, f.record("endpoints")
}

func (f *fakeGraphStore) RelateModuleContainsTypes(_ context.Context, _ []types.ModuleContainsType) (types.UpsertResult, error) {
	return types.UpsertResult{}, f.record("contains")
}

func (f *fakeGraphStore) RelateTypeDeclaresMethods(_ context.Context, _ []types.TypeDeclaresMethod) (types.UpsertResult, error) {
	return types.UpsertResult{}, f.record("declares")
}

func (f *fakeGraphStore) RelateTypeDependencies(_ context.Context, _ []types.TypeDependency) (types.UpsertResult, error) {
	return types.UpsertResult{}, f.record("depends")
}

func (f *fakeGraphStore) RelateTypeExposesEndpoints(_ context.Context, _ []types.TypeExposesEndpoint) (types.UpsertResult, error) {
	return types.UpsertResult{}, f.record("exposes")
}

func (f *fakeGraphStore) RelateEndpointImplementsMethods(_ context.Context, _ []types.EndpointImplementsMethod) (types.UpsertResult, error) {
	return types.UpsertResult{}, f.record("implements")
}

func (f *fakeGraphStore) RelateChunkOfMethods(_ context.Context, rels []types.ChunkOfMethod) (types.UpsertResult, error) {
	f.chunkRels = append(f.chunkRels, rels...)
	return types.UpsertResult{}, f.record("chunkOf")
}

type fakeParser struct {
	parsed *types.ParsedModule
	err    error
}

func (f *fakeParser) Parse(_ context.Context, _, _ string, _ types.IngestOptions) (*types.ParsedModule, error) {
	return f.parsed, f.err
}

func writeSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func parsedFixture(repo string) *types.ParsedModule {
	return &types.ParsedModule{
		ModuleName: "billing",
		RepoPath:   repo,
		Types: []types.TypeDef{{
			ModuleName: "billing", FQName: "invoice.Service", Name: "Service",
			Kind: "struct", Path: "invoice/service.go", StartLine: 1, EndLine: 9,
		}},
		Methods: []types.MethodDef{{
			ModuleName: "billing", DeclaringType: "invoice.Service", Name: "Charge",
			Signature: "Charge(amount int) error", ReturnType: "error",
			Visibility: types.VisibilityExported, PointerRecv: true,
			Path: "invoice/service.go", StartLine: 5, EndLine: 7,
		}},
		Endpoints: []types.EndpointDef{{
			ModuleName: "billing", HTTPMethod: "POST", Path: "/charge",
			ImplementingType: "invoice.Service", ImplementingSignature: "Charge(amount int) error",
		}},
		Dependencies: []types.TypeDependencyDef{{
			SourceFQName: "invoice.Service", TargetFQName: "invoice.Store",
			Kind: "field", Via: "store",
		}},
	}
}

const serviceSource = `package invoice

type Service struct{ store Store }

func (s *Service) Charge(amount int) error {
	return s.store.Save(amount)
}

type Store interface{ Save(int) error }
`

func newTestPipeline(store *fakeGraphStore, parser Parser) *Pipeline {
	emb := &fakeEmbedder{vec: []float32{1, 0}, model: "m1", dim: 2}
	cache := NewEmbeddingCache(emb, embedder.NewCache(16), store, &fakeIndex{}, 1, nil)
	return NewPipeline(parser, store, cache, 0, -1, nil)
}

func TestIngestEndToEnd(t *testing.T) {
	repo := t.TempDir()
	writeSource(t, repo, "invoice/service.go", serviceSource)
	store := &fakeGraphStore{}
	p := newTestPipeline(store, &fakeParser{parsed: parsedFixture(repo)})

	summary, err := p.Ingest(context.Background(), types.IngestRequest{
		RepoPath:   repo,
		ModuleName: "billing",
		Options:    types.IngestOptions{Embed: true, Overlap: -1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Types)
	assert.Equal(t, 1, summary.Methods)
	assert.Equal(t, 1, summary.Endpoints)
	assert.Equal(t, 1, summary.Chunks)
	assert.Equal(t, 1, summary.Embedded)
	assert.Zero(t, summary.Failed)
	// contains + declares + depends + exposes + implements + chunkOf
	assert.Equal(t, 6, summary.Relationships)
	assert.GreaterOrEqual(t, summary.DurationMS, int64(0))

	require.Len(t, store.chunkRels, 1)
	assert.Equal(t, "invoice.Service", store.chunkRels[0].MethodFQName)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, types.ChunkKindMethodBody, store.upserted[0][0].Kind)
}

func TestIngestWriteOrderEndpointsBeforeRelationships(t *testing.T) {
	repo := t.TempDir()
	writeSource(t, repo, "invoice/service.go", serviceSource)
	store := &fakeGraphStore{}
	p := newTestPipeline(store, &fakeParser{parsed: parsedFixture(repo)})

	_, err := p.Ingest(context.Background(), types.IngestRequest{
		RepoPath: repo, ModuleName: "billing",
		Options: types.IngestOptions{Embed: true, Overlap: -1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"modules", "types", "methods", "endpoints",
		"contains", "declares", "depends", "exposes", "implements",
		"chunkOf",
	}, store.order)
}

func TestIngestValidatesRequest(t *testing.T) {
	p := newTestPipeline(&fakeGraphStore{}, &fakeParser{})

	_, err := p.Ingest(context.Background(), types.IngestRequest{ModuleName: "billing"})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = p.Ingest(context.Background(), types.IngestRequest{RepoPath: "/tmp/repo"})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestIngestParserFailure(t *testing.T) {
	p := newTestPipeline(&fakeGraphStore{}, &fakeParser{err: errors.New("not a repo")})

	_, err := p.Ingest(context.Background(), types.IngestRequest{
		RepoPath: "/nope", ModuleName: "billing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a repo")
}

func TestIngestStoreFailureStopsRun(t *testing.T) {
	repo := t.TempDir()
	writeSource(t, repo, "invoice/service.go", serviceSource)
	store := &fakeGraphStore{failOn: "declares"}
	p := newTestPipeline(store, &fakeParser{parsed: parsedFixture(repo)})

	_, err := p.Ingest(context.Background(), types.IngestRequest{
		RepoPath: repo, ModuleName: "billing",
		Options: types.IngestOptions{Embed: true, Overlap: -1},
	})
	require.Error(t, err)
	assert.NotContains(t, store.order, "depends", "later batches are not attempted")
}

func TestIngestMissingSourceSkipsMethod(t *testing.T) {
	repo := t.TempDir()
	store := &fakeGraphStore{}
	p := newTestPipeline(store, &fakeParser{parsed: parsedFixture(repo)})

	summary, err := p.Ingest(context.Background(), types.IngestRequest{
		RepoPath: repo, ModuleName: "billing",
		Options: types.IngestOptions{Embed: true, Overlap: -1},
	})
	require.NoError(t, err, "an unreadable source file must not fail the run")
	assert.Zero(t, summary.Chunks)
	assert.Equal(t, 1, summary.Methods, "the method node is still written")
}

func TestReadSnippetRange(t *testing.T) {
	repo := t.TempDir()
	writeSource(t, repo, "a.go", "one\ntwo\nthree\nfour\n")

	got, err := readSnippet(repo, "a.go", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "two\nthree", got)

	got, err = readSnippet(repo, "a.go", 1, 99)
	require.NoError(t, err)
	assert.Contains(t, got, "four")

	_, err = readSnippet(repo, "missing.go", 1, 2)
	assert.Error(t, err)
}

func TestIngestReusePathOnSecondRun(t *testing.T) {
	repo := t.TempDir()
	writeSource(t, repo, "invoice/service.go", serviceSource)

	emb := &fakeEmbedder{vec: []float32{1, 0}, model: "m1", dim: 2}
	store := &fakeGraphStore{}
	cache := NewEmbeddingCache(emb, embedder.NewCache(16), store, &fakeIndex{}, 1, nil)
	p := NewPipeline(&fakeParser{parsed: parsedFixture(repo)}, store, cache, 0, -1, nil)

	req := types.IngestRequest{
		RepoPath: repo, ModuleName: "billing",
		Options: types.IngestOptions{Embed: true, Overlap: -1},
	}
	first, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, first.Embedded)

	// Simulate the stored state the first run left behind, then re-ingest
	// with a fresh memo so reuse must come from the store.
	stored := store.upserted[0][0]
	store.prior = map[string]*graph.ChunkState{stored.ID: {
		TextHash:       stored.TextHash,
		EmbeddingModel: stored.EmbeddingModel,
		Embedding:      stored.EmbeddingVector,
	}}
	cache.memo = embedder.NewCache(16)

	second, err := p.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Reused)
	assert.Zero(t, second.Embedded)
	assert.Equal(t, 1, emb.calls, "unchanged code does not re-embed")
}
