package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/OFFIS-RIT/corpusgraph/internal/util"
	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

const vectorIndexName = "chunks_embedding_idx"

// SaveChunks persists the chunks of a document and their ordering links
// within a single transaction. Chunk IDs are content hashes, so saving
// the same document twice upserts instead of duplicating rows.
func (s *GraphDBStore) SaveChunks(ctx context.Context, fileName string, chunks []common.Chunk, links []common.ChunkLink) error {
	if len(chunks) == 0 {
		return nil
	}

	logger.Debug("[Store][SaveChunks] Bulk upserting chunks", "file", fileName, "chunks", len(chunks))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	err := store.ChunkRange(len(chunks), 1000, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		batch := &pgxv5.Batch{}
		for _, chunk := range chunks[start:end] {
			batch.Queue(`
				INSERT INTO chunks (id, file_name, content, chunk_position, chunk_length, content_offset, page_number)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE SET
					file_name = EXCLUDED.file_name,
					content = EXCLUDED.content,
					chunk_position = EXCLUDED.chunk_position,
					chunk_length = EXCLUDED.chunk_length,
					content_offset = EXCLUDED.content_offset,
					page_number = EXCLUDED.page_number`,
				chunk.ID,
				fileName,
				util.SanitizePostgresText(chunk.Text),
				chunk.Position,
				chunk.Length,
				chunk.ContentOffset,
				chunk.PageNumber,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	// links reference chunk rows, so they go in after all chunk batches
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgxv5.Batch{}
	for _, link := range links {
		var prev any
		if link.PreviousID != "" {
			prev = link.PreviousID
		}
		batch.Queue(`
			INSERT INTO chunk_links (link_type, previous_chunk_id, chunk_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (chunk_id, link_type) DO UPDATE SET
				previous_chunk_id = EXCLUDED.previous_chunk_id`,
			link.Type, prev, link.ChunkID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveEmbeddings writes embedding vectors onto existing chunk rows.
func (s *GraphDBStore) SaveEmbeddings(ctx context.Context, embeddings []common.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	return store.ChunkRange(len(embeddings), 1000, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		batch := &pgxv5.Batch{}
		for _, emb := range embeddings[start:end] {
			batch.Queue(
				`UPDATE chunks SET embedding = $2 WHERE id = $1`,
				emb.ChunkID, pgvector.NewVector(emb.Embedding),
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}

// EnsureVectorIndex makes sure the embedding column matches the model's
// dimensionality and that the cosine HNSW index exists. When the
// configured dimension changes, stored embeddings are invalidated and
// the column is re-typed.
func (s *GraphDBStore) EnsureVectorIndex(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", dimensions)
	}

	var current int
	err := s.conn.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'chunks'::regclass AND attname = 'embedding'`,
	).Scan(&current)
	if err != nil {
		return err
	}

	if current != dimensions {
		logger.Warn("[Store][EnsureVectorIndex] Embedding dimension changed, invalidating stored embeddings",
			"old", current, "new", dimensions)

		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DROP INDEX IF EXISTS `+vectorIndexName); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE chunks SET embedding = NULL`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`ALTER TABLE chunks ALTER COLUMN embedding TYPE vector(%d)`, dimensions,
		)); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}

	_, err = s.conn.Exec(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON chunks USING hnsw (embedding vector_cosine_ops)`,
		vectorIndexName,
	))
	return err
}
