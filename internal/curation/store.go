// Package curation implements the Postgres-backed Curation Store (spec
// §4.2): the durable queue of entities, relationships, and spans
// awaiting human review between the Extraction Engine and the Graph
// Writer. It is grounded on db/postgres_pgx.go's pgx pool wrapper and
// db/repository/postgres.go's one-JSONB-column-per-row pattern, rather
// than an ORM — the same "direct SQL control" tradeoff the teacher
// documents for high-churn, narrow-shape rows.
package curation

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxTx is a local alias so call sites read naturally as "tx" without
// importing pgx directly.
type pgxTx = pgx.Tx

// Store is the Curation Store. All multi-row writes run inside a
// single pgx.Tx (spec §4.2 transactional semantics).
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing pgx pool. Callers own the pool's
// lifecycle (creation via pgxpool.New, shutdown on process exit).
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// withTx runs fn inside a transaction, committing on success; the
// deferred Rollback undoes the transaction on any error or panic in fn.
func (s *Store) withTx(ctx context.Context, fn func(tx pgxTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
