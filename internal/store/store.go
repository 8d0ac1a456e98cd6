// Package store provides database access methods for all Pressroom
// entities. Each store struct wraps a *sqlx.DB and exposes typed query
// methods. Failures are returned as *apperr.Error: unique, foreign key
// and check violations become ValidationFailed on the offending column,
// anything else StoreUnavailable.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"pressroom/internal/apperr"
)

// PostgreSQL SQLSTATE codes that are the caller's fault.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// storeError converts a database failure into a typed error, wrapping the
// original with op for the logs.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		field := constraintField(pgErr.TableName, pgErr.ConstraintName)
		switch pgErr.Code {
		case codeUniqueViolation:
			return withCause(apperr.Invalid(field, field+" already exists"), op, err)
		case codeForeignKeyViolation:
			return withCause(apperr.Invalid(field, "referenced record does not exist"), op, err)
		case codeCheckViolation:
			return withCause(apperr.Invalid(field, "value is out of range"), op, err)
		case codeInvalidText:
			return withCause(apperr.Invalid("value", "malformed value"), op, err)
		}
	}
	return apperr.StoreUnavailable(fmt.Errorf("%s: %w", op, err))
}

func withCause(e *apperr.Error, op string, err error) *apperr.Error {
	e.Err = fmt.Errorf("%s: %w", op, err)
	return e
}

// constraintField recovers the column from PostgreSQL's default constraint
// names: "<table>_<column>_key", "<table>_<column>_fkey", "<table>_<column>_check".
func constraintField(table, constraint string) string {
	name := strings.TrimPrefix(constraint, table+"_")
	for _, suffix := range []string{"_fkey", "_key", "_check"} {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	if name == "" || name == constraint || name == "check" {
		return "value"
	}
	return name
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
