// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// AccessTokenDecoder verifies an access token and returns its subject email.
//
// Defining it here decouples the middleware from [sec.TokenService] so tests
// can inject a stub.
type AccessTokenDecoder interface {
	DecodeAccessToken(token string) (string, error)
}

// UserCache is the short-lived snapshot store consulted before the database.
//
// Get returns (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, email string) (*identity.User, error)
	Set(ctx context.Context, user *identity.User) error
}

// UserFinder loads an account from durable storage. An absent account is
// reported as [dberr.ErrNotFound].
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*identity.User, error)
}

// Authenticate resolves the caller behind an 'Authorization: Bearer' header.
//
// # Flow
//  1. Missing or malformed header: 401 Not authenticated.
//  2. Token fails to decode as an access token: 401 Could not validate credentials.
//  3. Session cache hit: the snapshot is used and the database is skipped.
//  4. Cache miss: the account is loaded by email and written back to the cache.
//     An unknown email is treated like an invalid token.
//  5. The [*identity.User] is injected into the request context.
//
// Cache failures are logged and otherwise ignored; the database stays the
// source of truth.
func Authenticate(decoder AccessTokenDecoder, cache UserCache, finder UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			// ── 1. Credential Presence ────────────────────────────────────────
			token, ok := BearerToken(request)
			if !ok {
				rejectUnauthorized(writer, request, identity.ErrMissingCredential)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			email, err := decoder.DecodeAccessToken(token)
			if err != nil {
				rejectUnauthorized(writer, request, identity.ErrInvalidCredential)
				return
			}

			// ── 3. User Resolution ────────────────────────────────────────────
			user, err := resolveUser(ctx, cache, finder, email)
			if err != nil {
				if errors.Is(err, dberr.ErrNotFound) {
					rejectUnauthorized(writer, request, identity.ErrInvalidCredential)
					return
				}
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			rememberUser(ctx, user.Email)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(ctx, user)))
		})
	}
}

// resolveUser prefers the cache and falls back to the store, repopulating the cache.
func resolveUser(ctx context.Context, cache UserCache, finder UserFinder, email string) (*identity.User, error) {
	logger := ctxutil.GetLogger(ctx)

	cached, err := cache.Get(ctx, email)
	if err != nil {
		logger.WarnContext(ctx, "session_cache_read_failed", slog.String("error", err.Error()))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := finder.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := cache.Set(ctx, user); err != nil {
		logger.WarnContext(ctx, "session_cache_write_failed", slog.String("error", err.Error()))
	}

	return user, nil
}

// RequireAuth blocks requests that did not pass through [Authenticate].
//
// Handlers mounted behind it may assume [ctxutil.GetAuthUser] is non-nil.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			rejectUnauthorized(writer, request, identity.ErrMissingCredential)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// BearerToken extracts the credential from an 'Authorization: Bearer <token>' header.
// The scheme is matched case-insensitively.
func BearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get(constants.HeaderAuthorization)
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func rejectUnauthorized(writer http.ResponseWriter, request *http.Request, err error) {
	writer.Header().Set("WWW-Authenticate", "Bearer")
	respond.Error(writer, request, err)
}
