// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package gravatar derives the default avatar URL for an email address.
package gravatar

import (
	"crypto/md5" //nolint:gosec // md5 is what the Gravatar URL scheme uses
	"encoding/hex"
	"errors"
	"strings"
)

const baseURL = "https://www.gravatar.com/avatar/"

// ErrEmptyEmail is returned when there is nothing to hash.
var ErrEmptyEmail = errors.New("gravatar: empty email")

// URL returns the Gravatar image URL for email.
// The address is trimmed and lower-cased before hashing.
func URL(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrEmptyEmail
	}

	sum := md5.Sum([]byte(normalized))
	return baseURL + hex.EncodeToString(sum[:]), nil
}
