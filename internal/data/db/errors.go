package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorKind is a coarse classification of a persistence failure.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindForeignKey ErrorKind = "foreign_key"
	KindRetryable  ErrorKind = "retryable"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// Classify maps a gorm/pgx error to a kind and, for Postgres errors, its SQLSTATE.
func Classify(err error) (ErrorKind, string) {
	if err == nil {
		return "", ""
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound, ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled, ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := strings.TrimSpace(pgErr.Code)
		switch code {
		case "23505":
			return KindConflict, code // unique_violation
		case "23503":
			return KindForeignKey, code // foreign_key_violation
		case "40001", "40P01", "55P03":
			return KindRetryable, code // serialization/deadlock/lock_not_available
		}
		return KindInternal, code
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return KindConflict, ""
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"):
		return KindRetryable, ""
	default:
		return KindInternal, ""
	}
}
