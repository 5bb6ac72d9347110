// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/sec"
)

func TestHashPassword_Verify(t *testing.T) {
	hash, err := sec.HashPassword("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123456", hash)
	assert.True(t, sec.CheckPasswordHash("pw123456", hash))
	assert.False(t, sec.CheckPasswordHash("pw1234567", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := sec.HashPassword("same-password")
	require.NoError(t, err)
	second, err := sec.HashPassword("same-password")
	require.NoError(t, err)

	// Same input, different salt.
	assert.NotEqual(t, first, second)
}

func TestCheckPasswordHash_Malformed(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("anything", "not-a-bcrypt-hash"))
	assert.False(t, sec.CheckPasswordHash("anything", ""))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := sec.HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}
