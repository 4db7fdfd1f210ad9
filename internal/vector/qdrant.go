package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	upsertBatchSize = 100
	requestTimeout  = 30 * time.Second
)

// Match is one vector-search result: similarity score plus the stored
// payload.
type Match struct {
	Score   float64
	Payload ChunkPayload
}

// Index is the vector-index collaborator contract.
type Index interface {
	// AddAll stores vectors with their payloads. len(vectors) must equal
	// len(payloads).
	AddAll(ctx context.Context, vectors [][]float32, payloads []ChunkPayload) error

	// Search returns the topK nearest matches, ranked by similarity.
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)
}

// QdrantIndex implements Index against a Qdrant server over REST.
type QdrantIndex struct {
	host       string
	collection string
	dimension  int
	httpClient *http.Client
	log        *zap.Logger
}

// NewQdrantIndex creates the index client and ensures the collection exists
// with the configured dimension and cosine distance.
func NewQdrantIndex(ctx context.Context, host, collection string, dimension int, log *zap.Logger) (*QdrantIndex, error) {
	idx := &QdrantIndex{
		host:       host,
		collection: collection,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/collections/%s", q.host, q.collection), nil)
	if err != nil {
		return err
	}
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	createReq := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	body, err := json.Marshal(createReq)
	if err != nil {
		return err
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s", q.host, q.collection), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to create collection: %s", string(bodyBytes))
	}
	q.log.Info("created vector collection",
		zap.String("collection", q.collection),
		zap.Int("dimension", q.dimension))
	return nil
}

// AddAll upserts vectors in batches. Point ids are derived deterministically
// from the chunk id, so re-adding the same chunk overwrites its point rather
// than duplicating it.
func (q *QdrantIndex) AddAll(ctx context.Context, vectors [][]float32, payloads []ChunkPayload) error {
	if len(vectors) != len(payloads) {
		return fmt.Errorf("vector/payload length mismatch: %d vs %d", len(vectors), len(payloads))
	}
	if len(vectors) == 0 {
		return nil
	}

	points := make([]map[string]any, len(vectors))
	for i := range vectors {
		points[i] = map[string]any{
			"id":      PointID(payloads[i].ID),
			"vector":  vectors[i],
			"payload": payloads[i].ToMap(),
		}
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}

		body, err := json.Marshal(map[string]any{"points": points[start:end]})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPut,
			fmt.Sprintf("%s/collections/%s/points", q.host, q.collection), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := q.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to upsert points: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("failed to upsert points: %s", string(bodyBytes))
		}
		resp.Body.Close()
	}
	return nil
}

// Search returns the topK nearest points with payloads, in the index's
// similarity-ranked order.
func (q *QdrantIndex) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	body, err := json.Marshal(map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", q.host, q.collection), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search failed: %s", string(bodyBytes))
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	matches := make([]Match, len(searchResp.Result))
	for i, r := range searchResp.Result {
		matches[i] = Match{
			Score:   r.Score,
			Payload: PayloadFromMap(r.Payload),
		}
	}
	return matches, nil
}

// PointID derives the Qdrant point id for a chunk id. Qdrant requires
// numeric or UUID ids; a UUIDv5 of the chunk id keeps point identity stable
// across ingestion runs.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
