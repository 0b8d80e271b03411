package pgx

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/OFFIS-RIT/corpusgraph/pkg/store"
)

func TestUpdateKNNGraphSkipsWithoutIndex(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(vectorIndexName).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	edges, err := s.UpdateKNNGraph(context.Background(), store.DefaultKNNParams())
	if err != nil {
		t.Fatalf("UpdateKNNGraph failed: %v", err)
	}
	if edges != 0 {
		t.Errorf("expected 0 edges without a vector index, got %d", edges)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateKNNGraphWritesEdges(t *testing.T) {
	mock, s := newMockStore(t)

	params := store.KNNParams{K: 6, MinScore: 0.94, MaxPerChunk: 5}

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(vectorIndexName).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	// K includes the chunk itself, so 5 neighbours are considered
	mock.ExpectExec("INSERT INTO chunk_similarities").
		WithArgs(5, params.MinScore, params.MaxPerChunk).
		WillReturnResult(pgxmock.NewResult("INSERT", 17))

	edges, err := s.UpdateKNNGraph(context.Background(), params)
	if err != nil {
		t.Fatalf("UpdateKNNGraph failed: %v", err)
	}
	if edges != 17 {
		t.Errorf("expected 17 edges, got %d", edges)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
