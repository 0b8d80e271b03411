package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai/mock"
)

func TestEmbedChunksPreservesOrder(t *testing.T) {
	client := mock.New()
	chunks := testChunks("alpha", "beta", "gamma", "delta", "epsilon")

	embeddings, err := embedChunks(context.Background(), client, chunks, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(embeddings) != len(chunks) {
		t.Fatalf("got %d embeddings, want %d", len(embeddings), len(chunks))
	}
	for i, emb := range embeddings {
		if emb.ChunkID != chunks[i].ID {
			t.Errorf("embedding %d belongs to chunk %s, want %s", i, emb.ChunkID, chunks[i].ID)
		}
		if len(emb.Embedding) != client.Dimensions {
			t.Errorf("embedding %d has %d dimensions, want %d", i, len(emb.Embedding), client.Dimensions)
		}
	}
}

func TestEmbedChunksDeterministic(t *testing.T) {
	client := mock.New()
	chunks := testChunks("same text")

	first, err := embedChunks(context.Background(), client, chunks, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := embedChunks(context.Background(), client, chunks, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first[0].Embedding {
		if first[0].Embedding[i] != second[0].Embedding[i] {
			t.Fatal("equal text produced different embeddings")
		}
	}
}

func TestEmbedChunksPropagatesErrors(t *testing.T) {
	client := mock.New()
	client.EmbeddingFn = func(ctx context.Context, input []byte) ([]float32, error) {
		return nil, errors.New("embedding backend down")
	}

	_, err := embedChunks(context.Background(), client, testChunks("a", "b"), 1, 2)
	if err == nil {
		t.Fatal("expected error from failing embedding backend")
	}
}

func TestEmbedChunksEmptyInput(t *testing.T) {
	embeddings, err := embedChunks(context.Background(), mock.New(), nil, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if embeddings != nil {
		t.Errorf("expected nil for empty input, got %v", embeddings)
	}
}
