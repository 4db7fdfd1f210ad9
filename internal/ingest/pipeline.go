package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codegraphhq/codegraph/internal/chunker"
	"github.com/codegraphhq/codegraph/internal/render"
	"github.com/codegraphhq/codegraph/pkg/types"
)

// Parser extracts the structural model of a repository. The pipeline never
// reads source structure itself.
type Parser interface {
	Parse(ctx context.Context, repoPath, moduleName string, opts types.IngestOptions) (*types.ParsedModule, error)
}

// GraphStore is the slice of the graph layer the pipeline writes through.
type GraphStore interface {
	ChunkStore
	UpsertModules(ctx context.Context, modules []types.ModuleNode) (types.UpsertResult, error)
	UpsertTypes(ctx context.Context, defs []types.TypeNode) (types.UpsertResult, error)
	UpsertMethods(ctx context.Context, defs []types.MethodNode) (types.UpsertResult, error)
	UpsertEndpoints(ctx context.Context, defs []types.EndpointNode) (types.UpsertResult, error)
	RelateModuleContainsTypes(ctx context.Context, rels []types.ModuleContainsType) (types.UpsertResult, error)
	RelateTypeDeclaresMethods(ctx context.Context, rels []types.TypeDeclaresMethod) (types.UpsertResult, error)
	RelateTypeDependencies(ctx context.Context, rels []types.TypeDependency) (types.UpsertResult, error)
	RelateTypeExposesEndpoints(ctx context.Context, rels []types.TypeExposesEndpoint) (types.UpsertResult, error)
	RelateEndpointImplementsMethods(ctx context.Context, rels []types.EndpointImplementsMethod) (types.UpsertResult, error)
	RelateChunkOfMethods(ctx context.Context, rels []types.ChunkOfMethod) (types.UpsertResult, error)
}

// Pipeline runs one ingestion end to end: parse, upsert the structural graph,
// render and chunk method bodies, resolve embeddings, and link chunks back to
// their methods.
type Pipeline struct {
	parser   Parser
	store    GraphStore
	cache    *EmbeddingCache
	renderer *render.Renderer
	log      *zap.Logger

	defaultChunkChars int
	defaultOverlap    int
}

// NewPipeline wires a pipeline. chunkChars and overlap are the configured
// defaults; per-request options override them.
func NewPipeline(parser Parser, store GraphStore, cache *EmbeddingCache, chunkChars, overlap int, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		parser:            parser,
		store:             store,
		cache:             cache,
		renderer:          render.New(),
		log:               log,
		defaultChunkChars: chunkChars,
		defaultOverlap:    overlap,
	}
}

// Ingest runs one ingestion. The run is not transactional: each batch that
// succeeds stays even when a later batch fails, and re-running the same
// request converges because every write is a natural-key merge.
func (p *Pipeline) Ingest(ctx context.Context, req types.IngestRequest) (types.IngestSummary, error) {
	start := time.Now()
	summary := types.IngestSummary{ModuleName: req.ModuleName}

	if req.RepoPath == "" {
		return summary, fmt.Errorf("%w: repo path is required", types.ErrValidation)
	}
	if req.ModuleName == "" {
		return summary, fmt.Errorf("%w: module name is required", types.ErrValidation)
	}

	parsed, err := p.parser.Parse(ctx, req.RepoPath, req.ModuleName, req.Options)
	if err != nil {
		return summary, fmt.Errorf("parse %s: %w", req.RepoPath, err)
	}

	if err := p.upsertStructure(ctx, parsed, &summary); err != nil {
		return summary, err
	}

	chunks, chunkRels, err := p.chunkMethods(parsed, req.Options)
	if err != nil {
		return summary, err
	}

	resolved, outcomes, _, err := p.cache.Process(ctx, chunks, req.Options.Embed)
	if err != nil {
		return summary, fmt.Errorf("process chunks: %w", err)
	}
	summary.Chunks = len(resolved)
	summary.Outcomes = outcomes
	for _, o := range outcomes {
		switch o.Status {
		case types.ChunkEmbedded:
			summary.Embedded++
		case types.ChunkReused:
			summary.Reused++
		case types.ChunkFailed:
			summary.Failed++
		}
	}

	if _, err := p.store.RelateChunkOfMethods(ctx, chunkRels); err != nil {
		return summary, err
	}
	summary.Relationships += len(chunkRels)

	summary.Duration = time.Since(start)
	summary.DurationMS = summary.Duration.Milliseconds()
	p.log.Info("module ingested",
		zap.String("module", summary.ModuleName),
		zap.Int("types", summary.Types),
		zap.Int("methods", summary.Methods),
		zap.Int("chunks", summary.Chunks),
		zap.Int("embedded", summary.Embedded),
		zap.Int("reused", summary.Reused),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (p *Pipeline) upsertStructure(ctx context.Context, parsed *types.ParsedModule, summary *types.IngestSummary) error {
	if _, err := p.store.UpsertModules(ctx, []types.ModuleNode{{
		Name: parsed.ModuleName,
		Path: parsed.RepoPath,
	}}); err != nil {
		return err
	}

	typeNodes := make([]types.TypeNode, 0, len(parsed.Types))
	contains := make([]types.ModuleContainsType, 0, len(parsed.Types))
	for _, t := range parsed.Types {
		typeNodes = append(typeNodes, types.TypeNode{
			Module: t.ModuleName, FQName: t.FQName, Name: t.Name,
			Kind: t.Kind, Path: t.Path, StartLine: t.StartLine, EndLine: t.EndLine,
		})
		contains = append(contains, types.ModuleContainsType{
			ModuleName: parsed.ModuleName, TypeModule: t.ModuleName, TypeFQName: t.FQName,
		})
	}
	if _, err := p.store.UpsertTypes(ctx, typeNodes); err != nil {
		return err
	}
	summary.Types = len(typeNodes)

	methodNodes := make([]types.MethodNode, 0, len(parsed.Methods))
	declares := make([]types.TypeDeclaresMethod, 0, len(parsed.Methods))
	for _, m := range parsed.Methods {
		methodNodes = append(methodNodes, types.MethodNode{
			Module: m.ModuleName, FQName: m.DeclaringType, Name: m.Name,
			Signature: m.Signature, ReturnType: m.ReturnType,
			Visibility: m.Visibility, PointerRecv: m.PointerRecv,
			Path: m.Path, StartLine: m.StartLine, EndLine: m.EndLine,
		})
		declares = append(declares, types.TypeDeclaresMethod{
			TypeModule: m.ModuleName, TypeFQName: m.DeclaringType,
			MethodModule: m.ModuleName, MethodFQName: m.DeclaringType,
			Signature: m.Signature,
		})
	}
	if _, err := p.store.UpsertMethods(ctx, methodNodes); err != nil {
		return err
	}
	summary.Methods = len(methodNodes)

	endpointNodes := make([]types.EndpointNode, 0, len(parsed.Endpoints))
	exposes := make([]types.TypeExposesEndpoint, 0, len(parsed.Endpoints))
	implements := make([]types.EndpointImplementsMethod, 0, len(parsed.Endpoints))
	for _, e := range parsed.Endpoints {
		endpointNodes = append(endpointNodes, types.EndpointNode{
			Module: e.ModuleName, HTTPMethod: e.HTTPMethod, Path: e.Path,
		})
		exposes = append(exposes, types.TypeExposesEndpoint{
			TypeModule: e.ModuleName, TypeFQName: e.ImplementingType,
			EndpointModule: e.ModuleName, HTTPMethod: e.HTTPMethod, Path: e.Path,
		})
		implements = append(implements, types.EndpointImplementsMethod{
			EndpointModule: e.ModuleName, HTTPMethod: e.HTTPMethod, Path: e.Path,
			MethodModule: e.ModuleName, MethodFQName: e.ImplementingType,
			Signature: e.ImplementingSignature,
		})
	}
	if _, err := p.store.UpsertEndpoints(ctx, endpointNodes); err != nil {
		return err
	}
	summary.Endpoints = len(endpointNodes)

	deps := make([]types.TypeDependency, 0, len(parsed.Dependencies))
	for _, d := range parsed.Dependencies {
		deps = append(deps, types.TypeDependency{
			SourceModule: parsed.ModuleName, SourceFQName: d.SourceFQName,
			TargetModule: parsed.ModuleName, TargetFQName: d.TargetFQName,
			Kind: d.Kind, Via: d.Via,
		})
	}

	for _, relate := range []func() (types.UpsertResult, int, error){
		func() (types.UpsertResult, int, error) {
			r, err := p.store.RelateModuleContainsTypes(ctx, contains)
			return r, len(contains), err
		},
		func() (types.UpsertResult, int, error) {
			r, err := p.store.RelateTypeDeclaresMethods(ctx, declares)
			return r, len(declares), err
		},
		func() (types.UpsertResult, int, error) {
			r, err := p.store.RelateTypeDependencies(ctx, deps)
			return r, len(deps), err
		},
		func() (types.UpsertResult, int, error) {
			r, err := p.store.RelateTypeExposesEndpoints(ctx, exposes)
			return r, len(exposes), err
		},
		func() (types.UpsertResult, int, error) {
			r, err := p.store.RelateEndpointImplementsMethods(ctx, implements)
			return r, len(implements), err
		},
	} {
		_, n, err := relate()
		if err != nil {
			return err
		}
		summary.Relationships += n
	}
	return nil
}

func (p *Pipeline) chunkMethods(parsed *types.ParsedModule, opts types.IngestOptions) ([]types.ChunkRecord, []types.ChunkOfMethod, error) {
	chunkChars := opts.ChunkChars
	if chunkChars == 0 {
		chunkChars = p.defaultChunkChars
	}
	overlap := opts.Overlap
	if overlap < 0 {
		overlap = p.defaultOverlap
	}
	ck, err := chunker.New(chunkChars, overlap)
	if err != nil {
		return nil, nil, err
	}

	var chunks []types.ChunkRecord
	var rels []types.ChunkOfMethod
	for _, m := range parsed.Methods {
		snippet, err := readSnippet(parsed.RepoPath, m.Path, m.StartLine, m.EndLine)
		if err != nil {
			p.log.Warn("snippet read failed, method not chunked",
				zap.String("method", m.DeclaringType+"."+m.Name),
				zap.String("path", m.Path), zap.Error(err))
			continue
		}
		rendered := p.renderer.Method(m, snippet)
		for _, ch := range ck.ChunkMethod(m, rendered) {
			chunks = append(chunks, ch)
			rels = append(rels, types.ChunkOfMethod{
				ChunkID: ch.ID, MethodModule: m.ModuleName,
				MethodFQName: m.DeclaringType, Signature: m.Signature,
			})
		}
	}
	return chunks, rels, nil
}

// readSnippet extracts the 1-based inclusive line range of a source file.
func readSnippet(repoPath, relPath string, startLine, endLine int) (string, error) {
	data, err := os.ReadFile(filepath.Join(repoPath, relPath))
	if err != nil {
		return "", err
	}
	lines := strings.Split(string(data), "\n")
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine {
		return "", fmt.Errorf("line range %d-%d out of bounds for %s", startLine, endLine, relPath)
	}
	return strings.Join(lines[startLine-1:endLine], "\n"), nil
}
