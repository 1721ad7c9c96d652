// Package store provides pgx-backed persistence for templates, imported
// catalog rows, the append-only scenario log, and override state.
//
// The store never interprets the data it holds: key resolution, scenario
// replay, and override merging happen in the catalog package. Timestamps are
// assigned by the database, not by callers.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx operations the store needs. It is satisfied by
// *pgxpool.Pool and by pgx.Tx, so the same queries run inside or outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store executes all catalog persistence queries against a DBTX.
type Store struct {
	db DBTX
}

// New creates a Store backed by the given connection source.
func New(db DBTX) *Store {
	return &Store{db: db}
}
