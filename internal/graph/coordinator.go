package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// Coordinator performs idempotent batch writes against the property graph.
// Every batch is a single UNWIND+MERGE statement keyed on the entity's
// natural key, so re-running an identical batch converges to zero creates.
type Coordinator struct {
	runner Runner
	log    *zap.Logger
}

// ChunkState is what the reuse decision needs from a previously stored chunk.
type ChunkState struct {
	TextHash       string
	EmbeddingModel string
	Embedding      []float32
}

// ModuleStats summarizes what the graph holds for one module.
type ModuleStats struct {
	Types          int64 `json:"types"`
	Methods        int64 `json:"methods"`
	Endpoints      int64 `json:"endpoints"`
	Chunks         int64 `json:"chunks"`
	EmbeddedChunks int64 `json:"embeddedChunks"`
}

func NewCoordinator(runner Runner, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{runner: runner, log: log}
}

// UpsertModules merges module nodes by name.
func (c *Coordinator) UpsertModules(ctx context.Context, modules []types.ModuleNode) (types.UpsertResult, error) {
	if len(modules) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(modules))
	for _, m := range modules {
		rows = append(rows, map[string]any{
			"name": m.Name,
			"path": m.Path,
		})
	}
	return c.mergeBatch(ctx, cypherUpsertModules, "modules", rows)
}

// UpsertTypes merges type nodes by (module, fqName).
func (c *Coordinator) UpsertTypes(ctx context.Context, defs []types.TypeNode) (types.UpsertResult, error) {
	if len(defs) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(defs))
	for _, t := range defs {
		rows = append(rows, map[string]any{
			"module":    t.Module,
			"fqName":    t.FQName,
			"name":      t.Name,
			"kind":      t.Kind,
			"path":      t.Path,
			"startLine": t.StartLine,
			"endLine":   t.EndLine,
		})
	}
	return c.mergeBatch(ctx, cypherUpsertTypes, "types", rows)
}

// UpsertMethods merges method nodes by (module, fqName, signature).
func (c *Coordinator) UpsertMethods(ctx context.Context, defs []types.MethodNode) (types.UpsertResult, error) {
	if len(defs) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(defs))
	for _, m := range defs {
		rows = append(rows, map[string]any{
			"module":      m.Module,
			"fqName":      m.FQName,
			"signature":   m.Signature,
			"name":        m.Name,
			"returnType":  m.ReturnType,
			"visibility":  m.Visibility,
			"pointerRecv": m.PointerRecv,
			"path":        m.Path,
			"startLine":   m.StartLine,
			"endLine":     m.EndLine,
		})
	}
	return c.mergeBatch(ctx, cypherUpsertMethods, "methods", rows)
}

// UpsertEndpoints merges endpoint nodes by (module, httpMethod, path).
func (c *Coordinator) UpsertEndpoints(ctx context.Context, defs []types.EndpointNode) (types.UpsertResult, error) {
	if len(defs) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(defs))
	for _, e := range defs {
		rows = append(rows, map[string]any{
			"module":     e.Module,
			"httpMethod": e.HTTPMethod,
			"path":       e.Path,
		})
	}
	return c.mergeBatch(ctx, cypherUpsertEndpoints, "endpoints", rows)
}

// UpsertChunks merges chunk nodes by id. A chunk with a nil vector still gets
// its node written, with a null embedding property.
func (c *Coordinator) UpsertChunks(ctx context.Context, chunks []types.ChunkRecord) (types.UpsertResult, error) {
	if len(chunks) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(chunks))
	for _, ch := range chunks {
		var embedding any
		if ch.EmbeddingVector != nil {
			vec := make([]float64, len(ch.EmbeddingVector))
			for i, v := range ch.EmbeddingVector {
				vec[i] = float64(v)
			}
			embedding = vec
		}
		rows = append(rows, map[string]any{
			"id":             ch.ID,
			"module":         ch.Module,
			"ownerIdentity":  ch.OwnerIdentity,
			"ownerSignature": ch.OwnerSignature,
			"sourcePath":     ch.SourcePath,
			"startLine":      ch.StartLine,
			"endLine":        ch.EndLine,
			"kind":           ch.Kind,
			"text":           ch.Text,
			"textHash":       ch.TextHash,
			"embeddingModel": ch.EmbeddingModel,
			"embedding":      embedding,
		})
	}
	return c.mergeBatch(ctx, cypherUpsertChunks, "chunks", rows)
}

// RelateModuleContainsTypes merges CONTAINS edges from modules to types.
func (c *Coordinator) RelateModuleContainsTypes(ctx context.Context, rels []types.ModuleContainsType) (types.UpsertResult, error) {
	if len(rels) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, map[string]any{
			"moduleName": r.ModuleName,
			"typeModule": r.TypeModule,
			"typeFqName": r.TypeFQName,
		})
	}
	return c.mergeBatch(ctx, cypherRelModuleContainsTypes, "relationships", rows)
}

// RelateTypeDeclaresMethods merges DECLARES edges from types to methods.
func (c *Coordinator) RelateTypeDeclaresMethods(ctx context.Context, rels []types.TypeDeclaresMethod) (types.UpsertResult, error) {
	if len(rels) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, map[string]any{
			"typeModule":   r.TypeModule,
			"typeFqName":   r.TypeFQName,
			"methodModule": r.MethodModule,
			"methodFqName": r.MethodFQName,
			"signature":    r.Signature,
		})
	}
	return c.mergeBatch(ctx, cypherRelTypeDeclaresMethods, "relationships", rows)
}

// RelateTypeDependencies merges DEPENDS_ON edges between types. The kind and
// via properties are part of the merge key, so the same pair of types can
// carry one edge per distinct dependency.
func (c *Coordinator) RelateTypeDependencies(ctx context.Context, rels []types.TypeDependency) (types.UpsertResult, error) {
	if len(rels) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, map[string]any{
			"sourceModule": r.SourceModule,
			"sourceFqName": r.SourceFQName,
			"targetModule": r.TargetModule,
			"targetFqName": r.TargetFQName,
			"kind":         r.Kind,
			"via":          r.Via,
		})
	}
	return c.mergeBatch(ctx, cypherRelTypeDependencies, "relationships", rows)
}

// RelateTypeExposesEndpoints merges EXPOSES edges from types to endpoints.
func (c *Coordinator) RelateTypeExposesEndpoints(ctx context.Context, rels []types.TypeExposesEndpoint) (types.UpsertResult, error) {
	if len(rels) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, map[string]any{
			"typeModule":     r.TypeModule,
			"typeFqName":     r.TypeFQName,
			"endpointModule": r.EndpointModule,
			"httpMethod":     r.HTTPMethod,
			"path":           r.Path,
		})
	}
	return c.mergeBatch(ctx, cypherRelTypeExposesEndpoints, "relationships", rows)
}

// RelateEndpointImplementsMethods merges IMPLEMENTS edges from endpoints to
// their handler methods.
func (c *Coordinator) RelateEndpointImplementsMethods(ctx context.Context, rels []types.EndpointImplementsMethod) (types.UpsertResult, error) {
	if len(rels) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, map[string]any{
			"endpointModule": r.EndpointModule,
			"httpMethod":     r.HTTPMethod,
			"path":           r.Path,
			"methodModule":   r.MethodModule,
			"methodFqName":   r.MethodFQName,
			"signature":      r.Signature,
		})
	}
	return c.mergeBatch(ctx, cypherRelEndpointImplementsMethods, "relationships", rows)
}

// RelateChunkOfMethods merges CHUNK_OF edges from chunks to their methods.
func (c *Coordinator) RelateChunkOfMethods(ctx context.Context, rels []types.ChunkOfMethod) (types.UpsertResult, error) {
	if len(rels) == 0 {
		return types.UpsertResult{}, nil
	}
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, map[string]any{
			"chunkId":      r.ChunkID,
			"methodModule": r.MethodModule,
			"methodFqName": r.MethodFQName,
			"signature":    r.Signature,
		})
	}
	return c.mergeBatch(ctx, cypherRelChunkOfMethods, "relationships", rows)
}

// FindChunk returns the stored state of a chunk, or nil when the chunk does
// not exist.
func (c *Coordinator) FindChunk(ctx context.Context, id string) (*ChunkState, error) {
	rows, err := c.runner.ExecuteRead(ctx, cypherFindChunkByID, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("find chunk %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	state := &ChunkState{
		TextHash:       stringValue(row["textHash"]),
		EmbeddingModel: stringValue(row["embeddingModel"]),
	}
	if raw, ok := row["embedding"].([]any); ok && len(raw) > 0 {
		vec := make([]float32, 0, len(raw))
		for _, v := range raw {
			if f, ok := v.(float64); ok {
				vec = append(vec, float32(f))
			}
		}
		state.Embedding = vec
	}
	return state, nil
}

// Stats reports node counts for one module.
func (c *Coordinator) Stats(ctx context.Context, module string) (ModuleStats, error) {
	rows, err := c.runner.ExecuteRead(ctx, cypherModuleStats, map[string]any{"module": module})
	if err != nil {
		return ModuleStats{}, fmt.Errorf("module stats: %w", err)
	}
	if len(rows) == 0 {
		return ModuleStats{}, nil
	}
	row := rows[0]
	return ModuleStats{
		Types:          int64Value(row["types"]),
		Methods:        int64Value(row["methods"]),
		Endpoints:      int64Value(row["endpoints"]),
		Chunks:         int64Value(row["chunks"]),
		EmbeddedChunks: int64Value(row["embeddedChunks"]),
	}, nil
}

func (c *Coordinator) mergeBatch(ctx context.Context, cypher, param string, rows []map[string]any) (types.UpsertResult, error) {
	out, err := c.runner.ExecuteWrite(ctx, cypher, map[string]any{param: rows})
	if err != nil {
		return types.UpsertResult{}, fmt.Errorf("%w: batch of %d %s: %v", types.ErrStoreWrite, len(rows), param, err)
	}
	if len(out) == 0 {
		return types.UpsertResult{}, nil
	}
	res := types.UpsertResult{
		Created: int64Value(out[0]["created"]),
		Updated: int64Value(out[0]["updated"]),
	}
	c.log.Debug("batch merged",
		zap.String("batch", param),
		zap.Int("size", len(rows)),
		zap.Int64("created", res.Created),
		zap.Int64("updated", res.Updated))
	return res, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func int64Value(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
