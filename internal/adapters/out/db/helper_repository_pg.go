// internal/adapters/out/db/helper_repository_pg.go
package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// RowScanner is implemented by both *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// IsUniqueViolation detects a PostgreSQL duplicate key error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// timeOrZero unwraps a nullable timestamp column.
func timeOrZero(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// nullableTime stores the zero time as NULL.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
