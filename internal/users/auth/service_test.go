// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/mail"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/auth"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # Test Doubles

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *mockUserRepository) MarkConfirmed(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// nopCache satisfies auth.SessionCache and records evictions.
type nopCache struct {
	mu      sync.Mutex
	evicted []string
}

func (c *nopCache) Get(context.Context, string) (*identity.User, error) { return nil, nil }
func (c *nopCache) Set(context.Context, *identity.User) error           { return nil }
func (c *nopCache) Delete(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, email)
	return nil
}

type capturingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *capturingMailer) Enqueue(message mail.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return true
}

func (m *capturingMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

func newTestTokens(t *testing.T) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     []byte("service-test-secret"),
		Algorithm:  "HS256",
		Issuer:     "contactbook",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		EmailTTL:   7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return tokens
}

type fixture struct {
	repository *mockUserRepository
	cache      *nopCache
	mailer     *capturingMailer
	tokens     *sec.TokenService
	service    *auth.Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		repository: &mockUserRepository{},
		cache:      &nopCache{},
		mailer:     &capturingMailer{},
		tokens:     newTestTokens(t),
	}
	f.service = auth.NewService(f.repository, f.cache, f.tokens, f.mailer)
	t.Cleanup(func() { f.repository.AssertExpectations(t) })
	return f
}

func confirmedUser(t *testing.T, password string) *identity.User {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return &identity.User{ID: 1, Username: "alice", Email: "a@x.com", PasswordHash: hash, Confirmed: true}
}

// # Signup

/*
TestService_Signup_Success verifies the account is stored unconfirmed with a
hashed password and exactly one confirmation email is queued.
*/
func TestService_Signup_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repository.On("FindByEmail", ctx, "a@x.com").Return(nil, dberr.ErrNotFound).Once()
	f.repository.On("Create", ctx, mock.MatchedBy(func(user *identity.User) bool {
		return user.Email == "a@x.com" && !user.Confirmed && user.PasswordHash != "pw123456"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*identity.User).ID = 1
	}).Return(nil).Once()

	user, err := f.service.Signup(ctx, auth.SignupInput{Username: "alice", Email: "a@x.com", Password: "pw123456"}, "http://api.local/")
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.False(t, user.Confirmed)
	assert.True(t, sec.CheckPasswordHash("pw123456", user.PasswordHash))
	require.NotNil(t, user.Avatar)
	assert.Contains(t, *user.Avatar, "gravatar.com/avatar/")

	sent := f.mailer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)

	// The link in the body carries a valid email token for the new account.
	index := strings.Index(sent[0].Body, "http://api.local/api/auth/confirmed_email/")
	require.GreaterOrEqual(t, index, 0)
	token := strings.TrimSpace(sent[0].Body[index+len("http://api.local/api/auth/confirmed_email/"):])
	subject, err := f.tokens.DecodeEmailToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

/*
TestService_Signup_Duplicate verifies a taken email fails without an insert or email.
*/
func TestService_Signup_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repository.On("FindByEmail", ctx, "a@x.com").Return(confirmedUser(t, "pw123456"), nil).Once()

	_, err := f.service.Signup(ctx, auth.SignupInput{Username: "alice", Email: "a@x.com", Password: "other1"}, "http://api.local/")
	assert.ErrorIs(t, err, identity.ErrEmailAlreadyExists)

	f.repository.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.mailer.sent())
}

func TestService_Signup_LostRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repository.On("FindByEmail", ctx, "a@x.com").Return(nil, dberr.ErrNotFound).Once()
	f.repository.On("Create", ctx, mock.Anything).Return(dberr.ErrConflict).Once()

	_, err := f.service.Signup(ctx, auth.SignupInput{Username: "alice", Email: "a@x.com", Password: "pw123456"}, "http://api.local/")
	assert.ErrorIs(t, err, identity.ErrEmailAlreadyExists)
	assert.Empty(t, f.mailer.sent())
}

// # Login

/*
TestService_Login_Failures verifies each rejection reason and that no token is persisted.
*/
func TestService_Login_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown_email", func(t *testing.T) {
		f := newFixture(t)
		f.repository.On("FindByEmail", ctx, "nobody@x.com").Return(nil, dberr.ErrNotFound).Once()

		pair, err := f.service.Login(ctx, "nobody@x.com", "pw123456")
		assert.ErrorIs(t, err, identity.ErrInvalidEmail)
		assert.Nil(t, pair)
	})

	t.Run("wrong_password", func(t *testing.T) {
		f := newFixture(t)
		f.repository.On("FindByEmail", ctx, "a@x.com").Return(confirmedUser(t, "pw123456"), nil).Once()

		pair, err := f.service.Login(ctx, "a@x.com", "wrong-pw")
		assert.ErrorIs(t, err, identity.ErrInvalidPassword)
		assert.Nil(t, pair)
	})

	t.Run("unconfirmed", func(t *testing.T) {
		f := newFixture(t)
		user := confirmedUser(t, "pw123456")
		user.Confirmed = false
		f.repository.On("FindByEmail", ctx, "a@x.com").Return(user, nil).Once()

		pair, err := f.service.Login(ctx, "a@x.com", "pw123456")
		assert.ErrorIs(t, err, identity.ErrEmailNotConfirmed)
		assert.Nil(t, pair)
	})

	t.Run("store_failure", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("connection refused")
		f.repository.On("FindByEmail", ctx, "a@x.com").Return(nil, boom).Once()

		_, err := f.service.Login(ctx, "a@x.com", "pw123456")
		assert.ErrorIs(t, err, boom)
	})
}

/*
TestService_Login_Success verifies the pair decodes to the user and the refresh token is stored.
*/
func TestService_Login_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var stored *string
	f.repository.On("FindByEmail", ctx, "a@x.com").Return(confirmedUser(t, "pw123456"), nil).Once()
	f.repository.On("UpdateRefreshToken", ctx, int64(1), mock.AnythingOfType("*string")).Run(func(args mock.Arguments) {
		stored = args.Get(2).(*string)
	}).Return(nil).Once()

	pair, err := f.service.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	assert.Equal(t, "bearer", pair.TokenType)
	require.NotNil(t, stored)
	assert.Equal(t, pair.RefreshToken, *stored)

	subject, err := f.tokens.DecodeAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)

	assert.Contains(t, f.cache.evicted, "a@x.com")
}

// # Refresh

/*
TestService_Refresh_Rotation verifies a matching token is rotated and that
replaying the superseded token afterwards clears the stored one.
*/
func TestService_Refresh_Rotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	current, err := f.tokens.CreateRefreshToken("a@x.com")
	require.NoError(t, err)

	user := confirmedUser(t, "pw123456")
	user.RefreshToken = &current

	// 1. The stored token is exchanged for a new pair
	f.repository.On("FindByEmail", ctx, "a@x.com").Return(user, nil).Once()
	f.repository.On("UpdateRefreshToken", ctx, int64(1), mock.MatchedBy(func(token *string) bool {
		return token != nil
	})).Return(nil).Once()

	pair, err := f.service.Refresh(ctx, current)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, current, pair.RefreshToken)

	// 2. Replaying the superseded token revokes the session
	rotated := &identity.User{ID: 1, Email: "a@x.com", Confirmed: true, RefreshToken: &pair.RefreshToken}
	f.repository.On("FindByEmail", ctx, "a@x.com").Return(rotated, nil).Once()
	f.repository.On("UpdateRefreshToken", ctx, int64(1), (*string)(nil)).Return(nil).Once()

	replayed, err := f.service.Refresh(ctx, current)
	assert.ErrorIs(t, err, identity.ErrInvalidRefreshToken)
	assert.Nil(t, replayed)
}

func TestService_Refresh_ClearsOnMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	presented, err := f.tokens.CreateRefreshToken("a@x.com")
	require.NoError(t, err)

	other := "some-other-refresh-token"
	user := confirmedUser(t, "pw123456")
	user.RefreshToken = &other

	f.repository.On("FindByEmail", ctx, "a@x.com").Return(user, nil).Once()
	f.repository.On("UpdateRefreshToken", ctx, int64(1), (*string)(nil)).Return(nil).Once()

	pair, err := f.service.Refresh(ctx, presented)
	assert.ErrorIs(t, err, identity.ErrInvalidRefreshToken)
	assert.Nil(t, pair)
}

func TestService_Refresh_RejectsOtherKinds(t *testing.T) {
	f := newFixture(t)

	access, err := f.tokens.CreateAccessToken("a@x.com")
	require.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)
	f.repository.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestService_Refresh_UnknownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.CreateRefreshToken("gone@x.com")
	require.NoError(t, err)
	f.repository.On("FindByEmail", ctx, "gone@x.com").Return(nil, dberr.ErrNotFound).Once()

	_, err = f.service.Refresh(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)
}

// # Confirmation

/*
TestService_ConfirmEmail_Idempotent verifies the second confirmation is a no-op message.
*/
func TestService_ConfirmEmail_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.CreateEmailToken("a@x.com")
	require.NoError(t, err)

	pending := confirmedUser(t, "pw123456")
	pending.Confirmed = false

	f.repository.On("FindByEmail", ctx, "a@x.com").Return(pending, nil).Once()
	f.repository.On("MarkConfirmed", ctx, "a@x.com").Return(nil).Once()

	message, err := f.service.ConfirmEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, auth.MsgEmailConfirmed, message)

	f.repository.On("FindByEmail", ctx, "a@x.com").Return(confirmedUser(t, "pw123456"), nil).Once()

	message, err = f.service.ConfirmEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, auth.MsgEmailAlreadyConfirmed, message)
}

func TestService_ConfirmEmail_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("access_token_is_not_an_email_token", func(t *testing.T) {
		f := newFixture(t)
		access, err := f.tokens.CreateAccessToken("a@x.com")
		require.NoError(t, err)

		_, err = f.service.ConfirmEmail(ctx, access)
		assert.ErrorIs(t, err, identity.ErrVerification)
	})

	t.Run("unknown_user", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.tokens.CreateEmailToken("gone@x.com")
		require.NoError(t, err)
		f.repository.On("FindByEmail", ctx, "gone@x.com").Return(nil, dberr.ErrNotFound).Once()

		_, err = f.service.ConfirmEmail(ctx, token)
		assert.ErrorIs(t, err, identity.ErrVerification)
	})
}

func TestService_RequestEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("already_confirmed", func(t *testing.T) {
		f := newFixture(t)
		f.repository.On("FindByEmail", ctx, "a@x.com").Return(confirmedUser(t, "pw123456"), nil).Once()

		message, err := f.service.RequestEmail(ctx, "a@x.com", "http://api.local/")
		require.NoError(t, err)
		assert.Equal(t, auth.MsgEmailAlreadyConfirmed, message)
		assert.Empty(t, f.mailer.sent())
	})

	t.Run("pending", func(t *testing.T) {
		f := newFixture(t)
		user := confirmedUser(t, "pw123456")
		user.Confirmed = false
		f.repository.On("FindByEmail", ctx, "a@x.com").Return(user, nil).Once()

		message, err := f.service.RequestEmail(ctx, "a@x.com", "http://api.local")
		require.NoError(t, err)
		assert.Equal(t, auth.MsgCheckEmail, message)
		require.Len(t, f.mailer.sent(), 1)
		assert.Contains(t, f.mailer.sent()[0].Body, "http://api.local/api/auth/confirmed_email/")
	})

	t.Run("unknown", func(t *testing.T) {
		f := newFixture(t)
		f.repository.On("FindByEmail", ctx, "nobody@x.com").Return(nil, dberr.ErrNotFound).Once()

		message, err := f.service.RequestEmail(ctx, "nobody@x.com", "http://api.local/")
		require.NoError(t, err)
		assert.Equal(t, auth.MsgCheckEmail, message)
		assert.Empty(t, f.mailer.sent())
	})
}
