package pgx

import (
	"context"
	"errors"
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

type closer interface {
	Close()
}

// Storage implements the store.Storage interface on PostgreSQL with
// pgvector columns for the embeddings. Writes replace the stored index
// wholesale inside a transaction, so readers always see either the old
// build or the new one. Concurrent writers are serialized with a mutex.
type Storage struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

type NewStorageParams struct {
	// Conn is an open pgx connection or pool. The pool should register
	// pgvector types in its AfterConnect hook.
	Conn pgxIConn
}

func NewStorage(params NewStorageParams) (*Storage, error) {
	if params.Conn == nil {
		return nil, errors.New("database connection is required")
	}
	return &Storage{conn: params.Conn}, nil
}

// Close releases the underlying pool when the storage owns one.
func (s *Storage) Close() {
	if c, ok := s.conn.(closer); ok {
		c.Close()
	}
}
