package common

import "time"

// Status describes the lifecycle of a document inside the ingestion
// pipeline. A document starts as New, moves to Processing while chunks
// are embedded and extracted, and ends as Completed, Failed or
// Cancelled.
type Status string

const (
	StatusNew        Status = "New"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
	StatusCancelled  Status = "Cancelled"
)

// Document is the source-level record of an ingested file. It carries
// the processing state and the running counters that clients poll for
// progress.
type Document struct {
	FileName          string    `json:"file_name"`
	Source            string    `json:"source"`
	Status            Status    `json:"status"`
	TotalPages        int       `json:"total_pages"`
	TotalChunks       int       `json:"total_chunks"`
	ProcessedChunks   int       `json:"processed_chunks"`
	NodeCount         int       `json:"node_count"`
	RelationshipCount int       `json:"relationship_count"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	IsCancelled       bool      `json:"is_cancelled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DocumentUpdate is a partial update of a document record. Only
// non-nil fields are written, so a zero value such as an empty error
// message or a zero counter can still be set explicitly.
type DocumentUpdate struct {
	Status            *Status
	TotalPages        *int
	TotalChunks       *int
	ProcessedChunks   *int
	NodeCount         *int
	RelationshipCount *int
	ErrorMessage      *string
}

// Chunk is a token-limited segment of a document's text. Its ID is the
// hex SHA-1 of the chunk text, so re-ingestion of identical content is
// idempotent and repeated text merges into a single chunk.
//
// Position is 1-based and ContentOffset is the accumulated length of
// all preceding chunk texts. PageNumber is set only when the source
// pages carried page metadata.
type Chunk struct {
	ID            string `json:"id"`
	FileName      string `json:"file_name"`
	Text          string `json:"text"`
	Position      int    `json:"position"`
	Length        int    `json:"length"`
	ContentOffset int    `json:"content_offset"`
	PageNumber    *int   `json:"page_number,omitempty"`
}

// Chunk link types. The first chunk of a document is attached to the
// document itself, every later chunk to its predecessor.
const (
	LinkFirstChunk = "FIRST_CHUNK"
	LinkNextChunk  = "NEXT_CHUNK"
)

// ChunkLink is an ordering edge in the chunk chain of a document.
// For a FIRST_CHUNK link PreviousID is empty.
type ChunkLink struct {
	Type       string `json:"type"`
	PreviousID string `json:"previous_chunk_id,omitempty"`
	ChunkID    string `json:"current_chunk_id"`
}

// ChunkEmbedding pairs a chunk with its embedding vector.
type ChunkEmbedding struct {
	ChunkID   string    `json:"chunk_id"`
	Embedding []float32 `json:"embedding"`
}

// Entity is a node extracted from text. Entities are identified by the
// pair (Type, ID); the same pair extracted from different chunks refers
// to the same node.
type Entity struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Relationship is a directed edge between two extracted entities.
// Endpoints are referenced by their (Type, ID) pair.
type Relationship struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Type       string `json:"type"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
}

// Fragment is the result of one extraction call: the entities and
// relationships found in a combined span of chunks, together with the
// IDs of the chunks that span covered.
type Fragment struct {
	ChunkIDs      []string       `json:"chunk_ids"`
	Nodes         []Entity       `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// ChunkEntityLink records that a chunk mentions an entity.
type ChunkEntityLink struct {
	ChunkID    string `json:"chunk_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}
