// Package repository holds the query plumbing shared by every domain
// repository: a Postgres-flavoured squirrel builder and traced sqlx runners.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slotkeeper/infras/otel"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/logger"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Psql builds statements with $n placeholders.
var Psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Get runs a single-row query. found is false when no row matched.
func Get[T any](ctx context.Context, db sqlx.QueryerContext, scope otel.Scope, entity string, builder squirrel.Sqlizer) (res T, found bool, err error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return res, false, fmt.Errorf("failed to build query (%s): %w", entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = sqlx.GetContext(ctx, db, &res, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return res, false, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return res, false, fmt.Errorf("failed to get data (%s): %w", entity, err)
	}

	return res, true, nil
}

// Select runs a multi-row query.
func Select[T any](ctx context.Context, db sqlx.QueryerContext, scope otel.Scope, entity string, builder squirrel.Sqlizer) ([]T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query (%s): %w", entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	res := []T{}

	if err := sqlx.SelectContext(ctx, db, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get data (%s): %w", entity, err)
	}

	return res, nil
}

// Exec runs a write statement and returns the affected row count.
func Exec(ctx context.Context, db sqlx.ExecerContext, scope otel.Scope, entity string, builder squirrel.Sqlizer) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query (%s): %w", entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to write data (%s): %w", entity, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows (%s): %w", entity, err)
	}

	return affected, nil
}

// IsUniqueViolation reports a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation
}
