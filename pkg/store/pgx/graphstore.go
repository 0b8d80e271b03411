package pgx

import (
	"context"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStore implements the store.GraphStore interface using PostgreSQL
// with pgvector for vector similarity search. Concurrent writers from the
// pipeline stages are serialized with a mutex.
type GraphDBStore struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

// NewGraphDBStoreWithConnection creates a new GraphDBStore using an
// existing database connection or pool.
func NewGraphDBStoreWithConnection(conn pgxIConn) *GraphDBStore {
	return &GraphDBStore{
		conn:   conn,
		dbLock: sync.Mutex{},
	}
}
