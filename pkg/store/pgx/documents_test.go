package pgx

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/OFFIS-RIT/corpusgraph/pkg/common"
	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *GraphDBStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewGraphDBStoreWithConnection(mock)
}

func documentRow(doc common.Document) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"file_name", "source", "status", "total_pages", "total_chunks", "processed_chunks",
		"node_count", "relationship_count", "error_message", "is_cancelled", "created_at", "updated_at",
	}).AddRow(
		doc.FileName, doc.Source, doc.Status, doc.TotalPages, doc.TotalChunks, doc.ProcessedChunks,
		doc.NodeCount, doc.RelationshipCount, doc.ErrorMessage, doc.IsCancelled, doc.CreatedAt, doc.UpdatedAt,
	)
}

func TestGetDocument(t *testing.T) {
	mock, s := newMockStore(t)

	want := common.Document{
		FileName:        "report.pdf",
		Source:          "s3",
		Status:          common.StatusProcessing,
		TotalPages:      4,
		TotalChunks:     20,
		ProcessedChunks: 10,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	mock.ExpectQuery(`SELECT .+ FROM documents WHERE file_name = \$1`).
		WithArgs("report.pdf").
		WillReturnRows(documentRow(want))

	got, err := s.GetDocument(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.FileName != want.FileName || got.Status != want.Status || got.ProcessedChunks != want.ProcessedChunks {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM documents WHERE file_name = \$1`).
		WithArgs("missing.pdf").
		WillReturnRows(pgxmock.NewRows([]string{"file_name"}))

	_, err := s.GetDocument(context.Background(), "missing.pdf")
	if !errors.Is(err, store.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestCreateDocumentUpsert(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs("notes.txt", "local", "New").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateDocument(context.Background(), common.Document{
		FileName: "notes.txt",
		Source:   "local",
		Status:   common.StatusNew,
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateDocumentPartial(t *testing.T) {
	mock, s := newMockStore(t)

	status := common.StatusCompleted
	processed := 20
	msg := ""

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE documents SET updated_at = now(), status = $2, processed_chunks = $3, error_message = $4 WHERE file_name = $1",
	)).
		WithArgs("report.pdf", "Completed", 20, "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateDocument(context.Background(), "report.pdf", common.DocumentUpdate{
		Status:          &status,
		ProcessedChunks: &processed,
		ErrorMessage:    &msg,
	})
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateDocumentNotFound(t *testing.T) {
	mock, s := newMockStore(t)

	status := common.StatusFailed
	mock.ExpectExec("UPDATE documents SET").
		WithArgs("missing.pdf", "Failed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateDocument(context.Background(), "missing.pdf", common.DocumentUpdate{Status: &status})
	if !errors.Is(err, store.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestMarkCancelled(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET is_cancelled = TRUE")).
		WithArgs("report.pdf").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := s.MarkCancelled(context.Background(), "report.pdf"); err != nil {
		t.Fatalf("MarkCancelled failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteDocumentCleansOrphanEntities(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE file_name = $1")).
		WithArgs("report.pdf").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM entities").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	if err := s.DeleteDocument(context.Background(), "report.pdf"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteDocumentNotFound(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE file_name = $1")).
		WithArgs("missing.pdf").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := s.DeleteDocument(context.Background(), "missing.pdf")
	if !errors.Is(err, store.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
