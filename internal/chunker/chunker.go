package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/codegraphhq/codegraph/pkg/types"
)

const (
	// DefaultChunkChars is the default window size in characters.
	DefaultChunkChars = 800

	// DefaultOverlapDivisor derives the default overlap: chunkSize / 5 (20%).
	DefaultOverlapDivisor = 5
)

// Chunker splits rendered code text into overlapping fixed-size windows with
// deterministic, content-derived identifiers. It performs no I/O.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker. chunkSize must be positive; pass 0 for the default.
// overlap < 0 selects the default (20% of chunkSize); any overlap is clamped
// to [0, chunkSize-1] so every window makes forward progress.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize == 0 {
		chunkSize = DefaultChunkChars
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", types.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		overlap = chunkSize / DefaultOverlapDivisor
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the effective window size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the effective overlap after clamping.
func (c *Chunker) Overlap() int { return c.overlap }

// ChunkMethod windows the rendered text of one method into chunk records.
// A blank text yields no chunks. Chunk identity covers the owning method,
// the window position and the window content, so unchanged code re-chunks to
// identical ids and any edit produces new ones.
func (c *Chunker) ChunkMethod(method types.MethodDef, text string) []types.ChunkRecord {
	if text == "" {
		return nil
	}

	// Window by rune so a multi-byte character is never split across chunks.
	runes := []rune(text)

	var chunks []types.ChunkRecord
	index := 0
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		textHash := hashHex(window)
		id := hashHex(fmt.Sprintf("%s|%s|%s|%d|%s",
			method.ModuleName, method.DeclaringType, method.Signature, index, textHash))

		chunks = append(chunks, types.ChunkRecord{
			ID:             id,
			Module:         method.ModuleName,
			OwnerIdentity:  method.DeclaringType,
			OwnerSignature: method.Signature,
			SourcePath:     method.Path,
			StartLine:      method.StartLine,
			EndLine:        method.EndLine,
			Kind:           types.ChunkKindMethodBody,
			Text:           window,
			TextHash:       textHash,
		})

		if end == len(runes) {
			break
		}
		start = end - c.overlap
		index++
	}
	return chunks
}

func hashHex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
