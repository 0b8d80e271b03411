package graph

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"

	"golang.org/x/sync/errgroup"
)

// embedChunks generates one embedding per chunk, batching requests and
// running up to workers batches concurrently. The result order matches the
// input order.
func embedChunks(
	ctx context.Context,
	client ai.GraphAIClient,
	chunks []common.Chunk,
	batchSize int,
	workers int,
) ([]common.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = 16
	}
	if workers <= 0 {
		workers = 1
	}

	embeddings := make([]common.ChunkEmbedding, len(chunks))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batch := chunks[start:end]
		offset := start

		eg.Go(func() error {
			inputs := make([][]byte, len(batch))
			for i, chunk := range batch {
				inputs[i] = []byte(chunk.Text)
			}

			vectors, err := client.GenerateEmbeddings(gCtx, inputs)
			if err != nil {
				return fmt.Errorf("failed to embed chunk batch at %d: %w", offset, err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(vectors), len(batch))
			}

			for i, vec := range vectors {
				embeddings[offset+i] = common.ChunkEmbedding{
					ChunkID:   batch[i].ID,
					Embedding: vec,
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return embeddings, nil
}
