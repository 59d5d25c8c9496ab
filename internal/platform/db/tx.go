package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// TxKey carries the active transaction through a request context so that
// repositories participate in it transparently.
const TxKey contextKey = "db_tx"

// Queryable is the subset of pgx operations repositories need; both
// *pgxpool.Pool and pgx.Tx satisfy it.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// TxFromContext returns the transaction bound to ctx, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}

// Conn returns the executor for ctx: the bound transaction when one is
// active, otherwise the pool.
func Conn(ctx context.Context, pool *pgxpool.Pool) Queryable {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// TxRunner binds WithTx to a pool so services can open transactions without
// holding the pool themselves.
type TxRunner struct{ pool *pgxpool.Pool }

func NewTxRunner(pool *pgxpool.Pool) *TxRunner { return &TxRunner{pool: pool} }

func (t *TxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, t.pool, fn)
}

// WithTx runs fn inside a transaction bound to the derived context. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// failed fn leaves no partial state behind.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		// Already transactional: join the outer transaction.
		return fn(ctx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, TxKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
