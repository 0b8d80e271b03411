package store

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
)

// ErrDocumentNotFound is returned when a document record does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// GraphStore defines the interface for persisting ingested documents and
// the knowledge graph derived from them: chunks, chunk ordering, chunk
// embeddings, entities, relationships and similarity edges.
//
// All write operations are idempotent so a re-ingested document
// converges to the same stored graph instead of duplicating rows.
type GraphStore interface {
	CreateDocument(ctx context.Context, doc common.Document) error
	GetDocument(ctx context.Context, fileName string) (common.Document, error)
	ListDocuments(ctx context.Context) ([]common.Document, error)
	UpdateDocument(ctx context.Context, fileName string, update common.DocumentUpdate) error
	MarkCancelled(ctx context.Context, fileName string) error
	DeleteDocument(ctx context.Context, fileName string) error

	SaveChunks(ctx context.Context, fileName string, chunks []common.Chunk, links []common.ChunkLink) error
	SaveEmbeddings(ctx context.Context, embeddings []common.ChunkEmbedding) error
	EnsureVectorIndex(ctx context.Context, dimensions int) error

	MergeFragments(ctx context.Context, fragments []common.Fragment) error
	LinkChunkEntities(ctx context.Context, links []common.ChunkEntityLink) error

	UpdateKNNGraph(ctx context.Context, params KNNParams) (int, error)
}

// KNNParams configures a similarity edge refresh.
//
// K is the number of nearest neighbours fetched per chunk (the chunk
// itself included). MinScore is the cosine similarity floor below which
// no edge is written. MaxPerChunk caps the number of outgoing edges per
// chunk so hub chunks do not dominate the graph.
type KNNParams struct {
	K           int
	MinScore    float64
	MaxPerChunk int
}

// DefaultKNNParams returns the standard similarity refresh settings.
func DefaultKNNParams() KNNParams {
	return KNNParams{
		K:           6,
		MinScore:    0.94,
		MaxPerChunk: 5,
	}
}

// ChunkRange calls fn for consecutive [start, end) ranges of size
// chunkSize over a collection of the given total length.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
