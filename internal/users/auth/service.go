// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements registration, login, token rotation and email
confirmation for Contactbook accounts.

Architecture:

  - Service: Orchestrates the account lifecycle (Signup, Login, Refresh, ConfirmEmail).
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Session snapshots).
  - Security: bcrypt password hashes and HMAC-signed JWTs scoped per purpose.

Each account holds exactly one valid refresh token. Issuing a new pair
overwrites it, and presenting any other refresh token clears it, which
forces the owner to log in again.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/gravatar"
	"github.com/taibuivan/contactbook/internal/platform/mail"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # Contracts & Types

// TokenProvider issues and verifies the three token kinds.
// [*sec.TokenService] satisfies it.
type TokenProvider interface {
	CreateAccessToken(subject string) (string, error)
	CreateRefreshToken(subject string) (string, error)
	CreateEmailToken(subject string) (string, error)
	DecodeRefreshToken(token string) (string, error)
	DecodeEmailToken(token string) (string, error)
}

// Mailer schedules an email without waiting for delivery.
// [*mail.Queue] satisfies it.
type Mailer interface {
	Enqueue(message mail.Message) bool
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// SignupInput holds the data required to register an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Service implements the authentication use cases.
type Service struct {
	userRepository UserRepository
	sessionCache   SessionCache
	tokenProvider  TokenProvider
	mailer         Mailer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	cache SessionCache,
	tokens TokenProvider,
	mailer Mailer,
) *Service {
	return &Service{
		userRepository: userRepo,
		sessionCache:   cache,
		tokenProvider:  tokens,
		mailer:         mailer,
	}
}

// # Registration Flow

/*
Signup registers a new, unconfirmed account and schedules its confirmation email.

Description: The email must be free. The avatar defaults to the Gravatar image
of the address. Mail scheduling never fails the signup.

Parameters:
  - ctx: context.Context
  - input: SignupInput
  - baseURL: Public URL prefix (ending in '/') used to build the confirmation link

Returns:
  - *identity.User: Created entity
  - error: identity.ErrEmailAlreadyExists or storage errors
*/
func (service *Service) Signup(ctx context.Context, input SignupInput, baseURL string) (*identity.User, error) {
	logger := ctxutil.GetLogger(ctx)

	// Reject taken addresses before doing any hashing work.
	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, identity.ErrEmailAlreadyExists
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &identity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Confirmed:    false,
	}

	if avatarURL, err := gravatar.URL(input.Email); err == nil {
		user.Avatar = &avatarURL
	} else {
		logger.WarnContext(ctx, "gravatar_lookup_failed", slog.String("error", err.Error()))
	}

	if err := service.userRepository.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, dberr.ErrConflict) {
			return nil, identity.ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.InfoContext(ctx, "user_signed_up", slog.Int64("user_id", user.ID))

	service.sendConfirmation(ctx, user, baseURL)

	return user, nil
}

// # Authentication Flow

/*
Login verifies credentials and issues a fresh token pair.

Description: The checks run in a fixed order (unknown email, wrong password,
unconfirmed email) and no token is issued on any failure. On success the new
refresh token replaces the stored one.

Parameters:
  - ctx: context.Context
  - email: string
  - password: string

Returns:
  - *TokenPair: Access and refresh tokens
  - error: identity.ErrInvalidEmail, ErrInvalidPassword, ErrEmailNotConfirmed or internal failures
*/
func (service *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, identity.ErrInvalidEmail
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, identity.ErrInvalidPassword
	}

	if !user.Confirmed {
		return nil, identity.ErrEmailNotConfirmed
	}

	pair, err := service.rotate(ctx, user)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_logged_in", slog.Int64("user_id", user.ID))
	return pair, nil
}

/*
Refresh exchanges the stored refresh token for a new pair.

Description: A refresh token that decodes but differs from the stored one is
treated as replayed or stolen: the stored token is cleared so neither copy
works any more.

The compare-then-rotate sequence is not atomic; two concurrent refreshes
with the same valid token may both succeed.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New access and refresh tokens
  - error: identity.ErrInvalidCredential, ErrInvalidRefreshToken or internal failures
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := service.tokenProvider.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, identity.ErrInvalidCredential
	}

	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, identity.ErrInvalidCredential
		}
		return nil, err
	}

	if !user.HasRefreshToken(refreshToken) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "refresh_token_mismatch", slog.Int64("user_id", user.ID))

		if err := service.userRepository.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return nil, err
		}
		service.evict(ctx, user.Email)

		return nil, identity.ErrInvalidRefreshToken
	}

	return service.rotate(ctx, user)
}

// rotate issues a new pair for user and persists its refresh token.
func (service *Service) rotate(ctx context.Context, user *identity.User) (*TokenPair, error) {
	accessToken, err := service.tokenProvider.CreateAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.userRepository.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}
	service.evict(ctx, user.Email)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    constants.TokenTypeBearer,
	}, nil
}

// # Email Confirmation

/*
ConfirmEmail marks the owner of an email token as confirmed.

Description: Idempotent. Confirming twice returns the "already confirmed"
message instead of an error.

Parameters:
  - ctx: context.Context
  - token: string (email token from the confirmation link)

Returns:
  - string: Client message
  - error: identity.ErrVerification or storage failures
*/
func (service *Service) ConfirmEmail(ctx context.Context, token string) (string, error) {
	email, err := service.tokenProvider.DecodeEmailToken(token)
	if err != nil {
		return "", identity.ErrVerification
	}

	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return "", identity.ErrVerification
		}
		return "", err
	}

	if user.Confirmed {
		return MsgEmailAlreadyConfirmed, nil
	}

	if err := service.userRepository.MarkConfirmed(ctx, email); err != nil {
		return "", err
	}
	service.evict(ctx, email)

	ctxutil.GetLogger(ctx).InfoContext(ctx, "email_confirmed", slog.Int64("user_id", user.ID))
	return MsgEmailConfirmed, nil
}

/*
RequestEmail re-sends the confirmation email.

Description: Unknown addresses get the same answer as unconfirmed ones.

Parameters:
  - ctx: context.Context
  - email: string
  - baseURL: Public URL prefix used to build the confirmation link

Returns:
  - string: Client message
  - error: Storage failures only
*/
func (service *Service) RequestEmail(ctx context.Context, email, baseURL string) (string, error) {
	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return MsgCheckEmail, nil
		}
		return "", err
	}

	if user.Confirmed {
		return MsgEmailAlreadyConfirmed, nil
	}

	service.sendConfirmation(ctx, user, baseURL)
	return MsgCheckEmail, nil
}

// sendConfirmation signs an email token and hands the message to the mail queue.
func (service *Service) sendConfirmation(ctx context.Context, user *identity.User, baseURL string) {
	logger := ctxutil.GetLogger(ctx)

	token, err := service.tokenProvider.CreateEmailToken(user.Email)
	if err != nil {
		logger.ErrorContext(ctx, "confirmation_token_failed", slog.String("error", err.Error()))
		return
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	queued := service.mailer.Enqueue(mail.Message{
		To:      user.Email,
		ToName:  user.Username,
		Subject: confirmationSubject,
		Body: fmt.Sprintf(
			"Hello %s,\n\nThanks for signing up for Contactbook. Please confirm your email address by opening this link:\n\n%s%s%s\n",
			user.Username, baseURL, confirmationPath, token,
		),
	})

	if !queued {
		logger.WarnContext(ctx, "confirmation_email_not_queued", slog.Int64("user_id", user.ID))
	}
}

// evict drops the cached snapshot after a write. Failures only cost freshness.
func (service *Service) evict(ctx context.Context, email string) {
	if err := service.sessionCache.Delete(ctx, email); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_cache_evict_failed", slog.String("error", err.Error()))
	}
}
