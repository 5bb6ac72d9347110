// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	poolConfig, err := configure("postgres://contactbook:secret@db:5432/contacts?sslmode=disable", PoolOptions{MaxConns: 8, MinConns: 2})
	require.NoError(t, err)

	assert.Equal(t, int32(8), poolConfig.MaxConns)
	assert.Equal(t, int32(2), poolConfig.MinConns)
	assert.Equal(t, "db", poolConfig.ConnConfig.Host)
	assert.Equal(t, "contacts", poolConfig.ConnConfig.Database)
	assert.NotNil(t, poolConfig.AfterConnect)
}

func TestConfigure_IgnoresInconsistentMinimum(t *testing.T) {
	poolConfig, err := configure("postgres://u:p@localhost:5432/db", PoolOptions{MaxConns: 2, MinConns: 5})
	require.NoError(t, err)

	assert.Equal(t, int32(2), poolConfig.MaxConns)
	assert.LessOrEqual(t, poolConfig.MinConns, poolConfig.MaxConns)
}

func TestConfigure_InvalidDSN(t *testing.T) {
	_, err := configure("postgres://u:p@localhost:notaport/db", PoolOptions{})
	assert.Error(t, err)
}
