// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/encre-app/encre/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The action names the failed operation ("insert book") and is kept in the
// cause chain for server-side logs only.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified upstream
	if apperr.IsAppError(err) {
		return err
	}

	cause := fmt.Errorf("postgres: failed to %s: %w", action, err)

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		notFound := apperr.NotFound("Resource")
		notFound.Cause = cause
		return notFound
	}

	// 2. Constraint violations surface as conflicts
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ExclusionViolation:
			conflict := apperr.Conflict("The resource was modified concurrently. Please retry.")
			conflict.Cause = cause
			return conflict
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			conflict := apperr.Conflict("The resource is busy. Please retry.")
			conflict.Cause = cause
			return conflict
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(cause)
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
