// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account serves the authenticated user's own profile: the /me view and
avatar replacement.

All endpoints require a user resolved by the Authenticate middleware.
*/
package account

import (
	"context"
	"io"

	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # Contracts

// AvatarRepository persists the avatar URL of an account.
type AvatarRepository interface {

	/*
		UpdateAvatar stores url on the account identified by email.

		Returns:
		  - *identity.User: The updated entity
		  - error: dberr.ErrNotFound or persistence failures
	*/
	UpdateAvatar(ctx context.Context, email, url string) (*identity.User, error)
}

// Uploader stores an object and returns its public URL.
// [storage.Uploader] implementations satisfy it.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// SessionCache refreshes the snapshot read by the authorization middleware.
type SessionCache interface {
	Set(ctx context.Context, user *identity.User) error
}

// # Constraints

const (
	// MaxAvatarBytes caps the size of an uploaded avatar.
	MaxAvatarBytes = 5 << 20

	// avatarKeyPrefix namespaces avatar objects inside the bucket.
	avatarKeyPrefix = "avatars/"

	// sniffLength is how much of the upload http.DetectContentType inspects.
	sniffLength = 512
)
