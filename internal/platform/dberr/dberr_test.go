// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encre-app/encre/internal/platform/apperr"
	"github.com/encre-app/encre/internal/platform/dberr"
)

/*
TestWrap covers the mapping from driver errors to application errors.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, apperr.CodeConflict},
		{"serialization_failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, apperr.CodeConflict},
		{"other_pg_error", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, apperr.CodeInternal},
		{"plain", errors.New("connection reset"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "update book")
			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

/*
TestWrap_Passthrough verifies nil and already-classified errors are returned untouched.
*/
func TestWrap_Passthrough(t *testing.T) {
	assert.Nil(t, dberr.Wrap(nil, "noop"))

	original := apperr.BadRequest("Invalid status")
	assert.Same(t, original, dberr.Wrap(original, "update").(*apperr.AppError))
}

/*
TestIsUniqueViolation checks SQLSTATE detection through wrapping.
*/
func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, dberr.IsUniqueViolation(err))
	assert.False(t, dberr.IsUniqueViolation(errors.New("nope")))
}
