// Package sqlxrepos implements the repositories on PostgreSQL through sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// deleteByID runs a single-row delete and returns notFound when nothing was removed.
func deleteByID(ctx context.Context, db *sqlx.DB, query string, id int, notFound error) error {
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, "deleting row")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting row")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// getOne runs a single-row query into dest and maps sql.ErrNoRows to notFound.
func getOne(ctx context.Context, db *sqlx.DB, dest interface{}, notFound error, query string, args ...interface{}) error {
	if err := db.GetContext(ctx, dest, query, args...); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return notFound
		case errors.Is(err, sql.ErrConnDone):
			return core.NewShutdownError("database connection closed")
		}
		return errors.Wrap(err, "selecting row")
	}
	return nil
}
