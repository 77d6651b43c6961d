package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyclesync/cyclesync/internal/application/scheduling"
)

// querier is what repository methods run against: the pool, or a
// transaction opened by inTx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements scheduling.Repository on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

var _ scheduling.Repository = (*Store)(nil)

// NewStore wraps a pool whose schema is already migrated.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// inTx runs fn with a Store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise; a panic in fn rolls
// back and propagates.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *Store) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	start := time.Now()

	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback uses a fresh context so a cancelled request still releases
		// the connection.
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "rollback failed", "op", op, "error", rbErr)
			if err != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(&Store{pool: s.pool, db: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	committed = true

	slog.DebugContext(ctx, "transaction committed", "op", op, "duration", time.Since(start))
	return nil
}
