// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity holds the account entity shared by the authentication flow,
the authorization middleware and the account endpoints.

It has no dependencies on storage or transport so that both the platform
middleware and the domain packages can import it without cycles.
*/
package identity

import "time"

// # Domain Entities

// User represents a registered Contactbook account.
//
// The email is the natural key: it is the token subject and the session
// cache key. Secrets never leave the server through JSON.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Confirmed    bool      `json:"confirmed"`
	RefreshToken *string   `json:"-"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRefreshToken reports whether token is the one currently stored for the user.
func (u *User) HasRefreshToken(token string) bool {
	return u.RefreshToken != nil && *u.RefreshToken == token
}

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldFile     = "file"
)
