package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bmvt/backend/internal/pkg/logger"
)

// ErrNotFound is returned by Get when the query yields no row.
var ErrNotFound = errors.New("record not found")

// DatabaseError wraps any driver-level failure. The driver error stays
// reachable through errors.As so constraint violations can be detected.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return e.Err.Error()
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}
	return &DatabaseError{Op: op, Err: err}
}

// Result is the uniform outcome of Execute.
type Result struct {
	Rows         []map[string]any
	RowsAffected int64
	// InsertID is read from the "id" column of the first RETURNING row of an INSERT.
	InsertID *int64
}

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Executor runs parameterized SQL against the configured store.
type Executor interface {
	Execute(ctx context.Context, sql string, args ...any) (*Result, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// WithTx runs fn with an executor bound to a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error
}

type pgExecutor struct {
	q    Querier
	pool *pgxpool.Pool
}

// NewExecutor returns an Executor backed by the pool.
func NewExecutor(pool *pgxpool.Pool) Executor {
	return &pgExecutor{q: pool, pool: pool}
}

func (e *pgExecutor) Execute(ctx context.Context, sql string, args ...any) (*Result, error) {
	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("query", err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, wrapError("collect", err)
	}
	if maps == nil {
		maps = []map[string]any{}
	}

	tag := rows.CommandTag()
	res := &Result{Rows: maps, RowsAffected: tag.RowsAffected()}
	if tag.Insert() && len(maps) > 0 {
		if id, ok := toInt64(maps[0]["id"]); ok {
			res.InsertID = &id
		}
	}
	return res, nil
}

func (e *pgExecutor) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("query", err)
	}
	return rows, nil
}

func (e *pgExecutor) WithTx(ctx context.Context, fn func(ctx context.Context, tx Executor) error) error {
	if e.pool == nil {
		// already inside a transaction
		return fn(ctx, e)
	}
	return withTransaction(ctx, e.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgExecutor{q: tx})
	})
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case int16:
		return int64(n), true
	default:
		return 0, false
	}
}

// Select scans every row into T by matching column names to `db` tags.
func Select[T any](ctx context.Context, ex Executor, sql string, args ...any) ([]T, error) {
	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, wrapError("collect", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get scans exactly one row into T, returning ErrNotFound when there is none.
func Get[T any](ctx context.Context, ex Executor, sql string, args ...any) (*T, error) {
	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrapError("collect", err)
	}
	return item, nil
}

// SelectBuilt renders b and runs Select.
func SelectBuilt[T any](ctx context.Context, ex Executor, b squirrel.Sqlizer) ([]T, error) {
	sql, args, err := build(b)
	if err != nil {
		return nil, err
	}
	return Select[T](ctx, ex, sql, args...)
}

// GetBuilt renders b and runs Get.
func GetBuilt[T any](ctx context.Context, ex Executor, b squirrel.Sqlizer) (*T, error) {
	sql, args, err := build(b)
	if err != nil {
		return nil, err
	}
	return Get[T](ctx, ex, sql, args...)
}

// ExecuteBuilt renders b and runs Execute.
func ExecuteBuilt(ctx context.Context, ex Executor, b squirrel.Sqlizer) (*Result, error) {
	sql, args, err := build(b)
	if err != nil {
		return nil, err
	}
	return ex.Execute(ctx, sql, args...)
}

// Count runs a single-column COUNT query.
func Count(ctx context.Context, ex Executor, b squirrel.Sqlizer) (int64, error) {
	res, err := ExecuteBuilt(ctx, ex, b)
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 {
		return 0, nil
	}
	for _, v := range res.Rows[0] {
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	}
	return 0, nil
}

func build(b squirrel.Sqlizer) (string, []any, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building SQL")
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}
	return sql, args, nil
}
