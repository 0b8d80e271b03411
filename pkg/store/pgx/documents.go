package pgx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/logger"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

const documentColumns = `file_name, source, status, total_pages, total_chunks, processed_chunks,
	node_count, relationship_count, error_message, is_cancelled, created_at, updated_at`

func scanDocument(row pgxv5.Row) (common.Document, error) {
	var doc common.Document
	err := row.Scan(
		&doc.FileName,
		&doc.Source,
		&doc.Status,
		&doc.TotalPages,
		&doc.TotalChunks,
		&doc.ProcessedChunks,
		&doc.NodeCount,
		&doc.RelationshipCount,
		&doc.ErrorMessage,
		&doc.IsCancelled,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.Document{}, store.ErrDocumentNotFound
	}
	return doc, err
}

// CreateDocument inserts a new document record. Re-registering an
// existing file name resets its state to the given document while
// keeping the original creation time.
func (s *GraphDBStore) CreateDocument(ctx context.Context, doc common.Document) error {
	logger.Debug("[Store][CreateDocument] Upserting document", "file", doc.FileName)

	_, err := s.conn.Exec(ctx, `
		INSERT INTO documents (file_name, source, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (file_name) DO UPDATE SET
			source = EXCLUDED.source,
			status = EXCLUDED.status,
			error_message = '',
			is_cancelled = FALSE,
			updated_at = now()`,
		doc.FileName, doc.Source, string(doc.Status),
	)
	return err
}

// GetDocument returns the document record for the given file name.
func (s *GraphDBStore) GetDocument(ctx context.Context, fileName string) (common.Document, error) {
	row := s.conn.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE file_name = $1`,
		fileName,
	)
	return scanDocument(row)
}

// ListDocuments returns all document records ordered by creation time,
// newest first.
func (s *GraphDBStore) ListDocuments(ctx context.Context) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []common.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateDocument applies a partial update to a document record. Only
// non-nil fields of the update are written, so explicit zero values
// (e.g. clearing the error message) still take effect.
func (s *GraphDBStore) UpdateDocument(ctx context.Context, fileName string, update common.DocumentUpdate) error {
	sets := []string{"updated_at = now()"}
	args := []any{fileName}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if update.TotalPages != nil {
		add("total_pages", *update.TotalPages)
	}
	if update.TotalChunks != nil {
		add("total_chunks", *update.TotalChunks)
	}
	if update.ProcessedChunks != nil {
		add("processed_chunks", *update.ProcessedChunks)
	}
	if update.NodeCount != nil {
		add("node_count", *update.NodeCount)
	}
	if update.RelationshipCount != nil {
		add("relationship_count", *update.RelationshipCount)
	}
	if update.ErrorMessage != nil {
		add("error_message", *update.ErrorMessage)
	}

	query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE file_name = $1"
	tag, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDocumentNotFound
	}
	return nil
}

// MarkCancelled flags a document for cancellation. The pipeline checks
// the flag between chunk batches and finalizes the run as Cancelled.
func (s *GraphDBStore) MarkCancelled(ctx context.Context, fileName string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE documents SET is_cancelled = TRUE, updated_at = now() WHERE file_name = $1`,
		fileName,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDocumentNotFound
	}
	return nil
}

// DeleteDocument removes a document, its chunks and all chunk-scoped
// graph data, then drops entities that are no longer referenced by any
// remaining chunk. Relationships of removed entities cascade away.
func (s *GraphDBStore) DeleteDocument(ctx context.Context, fileName string) error {
	logger.Debug("[Store][DeleteDocument] Deleting document", "file", fileName)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE file_name = $1`, fileName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDocumentNotFound
	}

	// entities only referenced by the deleted chunks are orphans now
	if _, err := tx.Exec(ctx, `
		DELETE FROM entities e
		WHERE NOT EXISTS (
			SELECT 1 FROM chunk_entities ce
			WHERE ce.entity_type = e.entity_type AND ce.entity_id = e.entity_id
		)`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
