// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - *identity.User: Hydrated entity
		  - error: dberr.ErrNotFound when absent, or database failures
	*/
	FindByEmail(ctx context.Context, email string) (*identity.User, error)

	/*
		Create persists a brand-new account and fills in its ID and timestamps.

		Parameters:
		  - ctx: context.Context
		  - user: *identity.User

		Returns:
		  - error: Conflict on a duplicate email, or persistence failures
	*/
	Create(ctx context.Context, user *identity.User) error

	/*
		UpdateRefreshToken overwrites the stored refresh token. A nil token clears it.

		Parameters:
		  - ctx: context.Context
		  - userID: int64
		  - token: *string

		Returns:
		  - error: Persistence failures
	*/
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error

	/*
		MarkConfirmed flags the account's email address as verified.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	MarkConfirmed(ctx context.Context, email string) error
}

// # Volatile Data Access

// SessionCache stores short-lived snapshots of accounts keyed by email.
type SessionCache interface {

	// Get returns the cached snapshot, or (nil, nil) on a miss.
	Get(ctx context.Context, email string) (*identity.User, error)

	// Set stores a snapshot and resets its TTL.
	Set(ctx context.Context, user *identity.User) error

	// Delete evicts the snapshot so the next request reloads it.
	Delete(ctx context.Context, email string) error
}
