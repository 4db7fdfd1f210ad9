package types

import (
	"errors"
	"fmt"
)

// ChunkKindMethodBody is the kind stamped on chunks cut from a method body.
// It is currently the only chunk kind the pipeline produces.
const ChunkKindMethodBody = "METHOD_BODY"

// ChunkRecord is one embeddable window of rendered code text together with
// the metadata needed to cite it. Records are value types; the ID is computed
// by the chunker and stays stable across re-ingestion of unchanged code.
type ChunkRecord struct {
	ID             string
	Module         string
	OwnerIdentity  string // FQName of the declaring type
	OwnerSignature string
	SourcePath     string
	StartLine      int
	EndLine        int
	Kind           string
	Text           string
	TextHash       string

	// Embedding state. EmbeddingVector is nil for chunks whose embedding
	// failed or was never requested; a later ingestion retries those.
	EmbeddingModel  string
	EmbeddingVector []float32
}

// Validate checks the record invariants. dimension is the configured model
// dimension; pass 0 to skip the vector-length check.
func (c *ChunkRecord) Validate(dimension int) error {
	if c.ID == "" {
		return errors.New("chunk id cannot be empty")
	}
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.TextHash == "" {
		return errors.New("chunk text hash cannot be empty")
	}
	if dimension > 0 && c.EmbeddingVector != nil && len(c.EmbeddingVector) != dimension {
		return fmt.Errorf("embedding vector has %d dimensions, expected %d", len(c.EmbeddingVector), dimension)
	}
	return nil
}
