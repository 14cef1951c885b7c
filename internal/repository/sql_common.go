package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/repository/builder"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// window clamps a list filter to sane bounds.
func window(f domain.ListFilter) (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// insertReturningID runs an INSERT built by b and returns the generated key in idCol.
func insertReturningID(ctx context.Context, q queryer, dialect database.Dialect, b *builder.SQLBuilder, idCol string) (int64, error) {
	if !dialect.SupportsLastInsertID() {
		query, args := b.Suffix("RETURNING " + idCol).Build()
		var id int64
		if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args := b.Build()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// writeError maps driver constraint violations onto domain error kinds.
func writeError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrConflict, op, err)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: referenced row does not exist: %w", domain.ErrInvalidInput, op, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// readError maps sql.ErrNoRows onto domain.ErrNotFound.
func readError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// affectedOne turns a zero-row UPDATE or DELETE into domain.ErrNotFound.
func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return nil
}
