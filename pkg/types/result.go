package types

import "time"

// GraphNode is the generic node representation returned by graph reads.
type GraphNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

// GraphRelationship is the generic relationship representation returned by
// graph reads.
type GraphRelationship struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	SourceID   string         `json:"sourceId"`
	TargetID   string         `json:"targetId"`
	Properties map[string]any `json:"properties"`
}

// Subgraph is the union of nodes and relationships visited during graph
// expansion. Order follows the store's traversal order and is not stable.
type Subgraph struct {
	Nodes         []GraphNode         `json:"nodes"`
	Relationships []GraphRelationship `json:"relationships"`
}

// EmptySubgraph returns a subgraph with allocated, empty slices so JSON
// renders [] rather than null.
func EmptySubgraph() Subgraph {
	return Subgraph{Nodes: []GraphNode{}, Relationships: []GraphRelationship{}}
}

// Hit is one vector-search match: the similarity score and the chunk node it
// resolved to. Hits keep the ranked order returned by the vector index.
type Hit struct {
	Score float64   `json:"score"`
	Node  GraphNode `json:"node"`
}

// QueryRequest is the input of one retrieval call.
type QueryRequest struct {
	Question       string
	ModuleFilter   string
	TopK           int
	Hops           int
	GenerateAnswer bool
}

// QueryResult is the output of one retrieval call. Answer is empty unless
// synthesis was requested and succeeded.
type QueryResult struct {
	Answer   string   `json:"answer,omitempty"`
	Hits     []Hit    `json:"hits"`
	Subgraph Subgraph `json:"subgraph"`
}

// IngestOptions are the per-request overrides of one ingestion call.
type IngestOptions struct {
	IncludeTests bool
	ChunkChars   int // 0 means the configured default
	Overlap      int // -1 means the configured default
	Embed        bool
}

// IngestRequest is the input of one ingestion call.
type IngestRequest struct {
	RepoPath   string
	ModuleName string
	Options    IngestOptions
}

// ChunkOutcomeStatus tags how one chunk fared during embedding.
type ChunkOutcomeStatus string

const (
	ChunkEmbedded ChunkOutcomeStatus = "embedded" // fresh vector computed
	ChunkReused   ChunkOutcomeStatus = "reused"   // prior vector reused
	ChunkFailed   ChunkOutcomeStatus = "failed"   // embed call failed, stored without vector
	ChunkSkipped  ChunkOutcomeStatus = "skipped"  // blank text, not stored
)

// ChunkOutcome is the per-chunk result of the embedding step. Failures are
// reported here rather than only logged.
type ChunkOutcome struct {
	ChunkID string             `json:"chunkId"`
	Status  ChunkOutcomeStatus `json:"status"`
	Err     string             `json:"error,omitempty"`
}

// IngestSummary reports what one ingestion run accomplished. Counts reflect
// whichever sub-steps succeeded; a run is not transactional across batches.
type IngestSummary struct {
	ModuleName    string         `json:"moduleName"`
	Types         int            `json:"types"`
	Methods       int            `json:"methods"`
	Endpoints     int            `json:"endpoints"`
	Chunks        int            `json:"chunks"`
	Relationships int            `json:"relationships"`
	Embedded      int            `json:"embedded"`
	Reused        int            `json:"reused"`
	Failed        int            `json:"failed"`
	Duration      time.Duration  `json:"-"`
	DurationMS    int64          `json:"durationMs"`
	Outcomes      []ChunkOutcome `json:"-"`
}
