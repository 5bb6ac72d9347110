// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
)

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

func TestWrap_NoRows(t *testing.T) {
	err := dberr.Wrap(fmt.Errorf("scan: %w", pgx.ErrNoRows), "get_contact")
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

func TestWrap_UniqueViolation(t *testing.T) {
	err := dberr.Wrap(&pgconn.PgError{Code: "23505"}, "create_user")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
	assert.ErrorIs(t, err, dberr.ErrConflict)
	assert.True(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
}

func TestWrap_Internal(t *testing.T) {
	cause := errors.New("connection reset")
	err := dberr.Wrap(cause, "list_contacts")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)

	// The cause stays reachable for logging but never leaks into the message.
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, ae.Message, "connection reset")
	assert.Contains(t, ae.Cause.Error(), "list_contacts")
}
