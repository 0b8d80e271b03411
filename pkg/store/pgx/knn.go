package pgx

import (
	"context"

	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

// UpdateKNNGraph recomputes similarity edges between embedded chunks.
// For each chunk the K nearest neighbours by cosine distance are
// considered (the chunk itself counts as one of K); an undirected edge
// is upserted for every pair scoring at least MinScore, unless the
// chunk already carries MaxPerChunk edges. Returns the number of edges
// written.
//
// The refresh is a no-op while the vector index does not exist yet.
func (s *GraphDBStore) UpdateKNNGraph(ctx context.Context, params store.KNNParams) (int, error) {
	var indexes int
	err := s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM pg_indexes WHERE indexname = $1`,
		vectorIndexName,
	).Scan(&indexes)
	if err != nil {
		return 0, err
	}
	if indexes == 0 {
		logger.Warn("[Store][UpdateKNNGraph] Vector index missing, skipping similarity refresh")
		return 0, nil
	}

	neighbours := max(params.K-1, 1)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tag, err := s.conn.Exec(ctx, `
		INSERT INTO chunk_similarities (chunk_a, chunk_b, score)
		SELECT LEAST(c.id, n.id), GREATEST(c.id, n.id), n.score
		FROM chunks c
		JOIN LATERAL (
			SELECT o.id, 1 - (c.embedding <=> o.embedding) AS score
			FROM chunks o
			WHERE o.embedding IS NOT NULL AND o.id <> c.id
			ORDER BY c.embedding <=> o.embedding
			LIMIT $1
		) n ON TRUE
		WHERE c.embedding IS NOT NULL
		  AND n.score >= $2
		  AND (
			SELECT COUNT(*) FROM chunk_similarities cs
			WHERE cs.chunk_a = c.id OR cs.chunk_b = c.id
		  ) < $3
		ON CONFLICT (chunk_a, chunk_b) DO UPDATE SET score = EXCLUDED.score`,
		neighbours, params.MinScore, params.MaxPerChunk,
	)
	if err != nil {
		return 0, err
	}

	edges := int(tag.RowsAffected())
	logger.Info("[Store][UpdateKNNGraph] Similarity refresh completed", "edges", edges)
	return edges, nil
}
