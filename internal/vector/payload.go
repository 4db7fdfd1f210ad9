package vector

import "github.com/codegraphhq/codegraph/pkg/types"

// ChunkPayload is the typed metadata stored alongside each vector. It is the
// only shape that crosses the vector-index boundary; conversion to and from
// the index's generic key-value representation is enumerated here rather
// than scattered through callers.
type ChunkPayload struct {
	ID             string
	Module         string
	OwnerIdentity  string
	OwnerSignature string
	SourcePath     string
	StartLine      int
	EndLine        int
	Kind           string
	Text           string
	TextHash       string
	EmbeddingModel string
}

// PayloadFromChunk builds the payload for one chunk record.
func PayloadFromChunk(c types.ChunkRecord) ChunkPayload {
	return ChunkPayload{
		ID:             c.ID,
		Module:         c.Module,
		OwnerIdentity:  c.OwnerIdentity,
		OwnerSignature: c.OwnerSignature,
		SourcePath:     c.SourcePath,
		StartLine:      c.StartLine,
		EndLine:        c.EndLine,
		Kind:           c.Kind,
		Text:           c.Text,
		TextHash:       c.TextHash,
		EmbeddingModel: c.EmbeddingModel,
	}
}

// ToMap converts the payload to the generic representation the index stores.
func (p ChunkPayload) ToMap() map[string]any {
	return map[string]any{
		"id":             p.ID,
		"module":         p.Module,
		"ownerIdentity":  p.OwnerIdentity,
		"ownerSignature": p.OwnerSignature,
		"sourcePath":     p.SourcePath,
		"startLine":      p.StartLine,
		"endLine":        p.EndLine,
		"kind":           p.Kind,
		"text":           p.Text,
		"textHash":       p.TextHash,
		"embeddingModel": p.EmbeddingModel,
	}
}

// PayloadFromMap rebuilds a payload from the generic representation returned
// by a search. Missing or mistyped keys yield zero values; the caller decides
// whether a payload without an id is usable.
func PayloadFromMap(m map[string]any) ChunkPayload {
	return ChunkPayload{
		ID:             asString(m, "id"),
		Module:         asString(m, "module"),
		OwnerIdentity:  asString(m, "ownerIdentity"),
		OwnerSignature: asString(m, "ownerSignature"),
		SourcePath:     asString(m, "sourcePath"),
		StartLine:      asInt(m, "startLine"),
		EndLine:        asInt(m, "endLine"),
		Kind:           asString(m, "kind"),
		Text:           asString(m, "text"),
		TextHash:       asString(m, "textHash"),
		EmbeddingModel: asString(m, "embeddingModel"),
	}
}

func asString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func asInt(m map[string]any, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return 0
}
