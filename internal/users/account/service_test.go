// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/storage"
	"github.com/taibuivan/contactbook/internal/users/account"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockAvatarRepository struct {
	mock.Mock
}

func (m *mockAvatarRepository) UpdateAvatar(ctx context.Context, email, url string) (*identity.User, error) {
	args := m.Called(ctx, email, url)
	user, _ := args.Get(0).(*identity.User)
	return user, args.Error(1)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

type recordingCache struct {
	stored *identity.User
	err    error
}

func (c *recordingCache) Set(_ context.Context, user *identity.User) error {
	c.stored = user
	return c.err
}

func TestService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	user := &identity.User{ID: 7, Email: "a@x.com"}
	url := "https://cdn.contactbook.dev/avatars/a@x.com"
	updated := &identity.User{ID: 7, Email: "a@x.com", Avatar: &url}

	repository := &mockAvatarRepository{}
	uploader := &mockUploader{}
	cache := &recordingCache{}

	uploader.On("Upload", ctx, "avatars/a@x.com", pngHeader, "image/png").Return(url, nil).Once()
	repository.On("UpdateAvatar", ctx, "a@x.com", url).Return(updated, nil).Once()

	service := account.NewService(repository, uploader, cache)
	result, err := service.UpdateAvatar(ctx, user, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.Same(t, updated, result)
	assert.Same(t, updated, cache.stored)
	uploader.AssertExpectations(t)
	repository.AssertExpectations(t)
}

func TestService_UpdateAvatar_Rejections(t *testing.T) {
	ctx := context.Background()
	user := &identity.User{ID: 7, Email: "a@x.com"}

	t.Run("not_an_image", func(t *testing.T) {
		uploader := &mockUploader{}
		service := account.NewService(&mockAvatarRepository{}, uploader, &recordingCache{})

		_, err := service.UpdateAvatar(ctx, user, bytes.NewReader([]byte("plain text, not a picture")))
		assert.ErrorIs(t, err, account.ErrAvatarNotImage)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("too_large", func(t *testing.T) {
		uploader := &mockUploader{}
		service := account.NewService(&mockAvatarRepository{}, uploader, &recordingCache{})

		oversized := append(append([]byte{}, pngHeader...), make([]byte, account.MaxAvatarBytes)...)
		_, err := service.UpdateAvatar(ctx, user, bytes.NewReader(oversized))
		assert.ErrorIs(t, err, account.ErrAvatarTooLarge)
		uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage_disabled", func(t *testing.T) {
		service := account.NewService(&mockAvatarRepository{}, storage.Disabled{}, &recordingCache{})

		_, err := service.UpdateAvatar(ctx, user, bytes.NewReader(pngHeader))
		assert.ErrorIs(t, err, account.ErrAvatarUnavailable)
	})

	t.Run("upload_failure", func(t *testing.T) {
		uploader := &mockUploader{}
		uploader.On("Upload", ctx, "avatars/a@x.com", pngHeader, "image/png").Return("", errors.New("timeout")).Once()
		service := account.NewService(&mockAvatarRepository{}, uploader, &recordingCache{})

		_, err := service.UpdateAvatar(ctx, user, bytes.NewReader(pngHeader))
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestService_UpdateAvatar_CacheFailureIsTolerated(t *testing.T) {
	ctx := context.Background()
	url := "https://cdn.contactbook.dev/avatars/a@x.com"

	repository := &mockAvatarRepository{}
	uploader := &mockUploader{}
	uploader.On("Upload", ctx, "avatars/a@x.com", pngHeader, "image/png").Return(url, nil)
	repository.On("UpdateAvatar", ctx, "a@x.com", url).Return(&identity.User{ID: 7, Email: "a@x.com", Avatar: &url}, nil)

	service := account.NewService(repository, uploader, &recordingCache{err: errors.New("redis down")})
	result, err := service.UpdateAvatar(ctx, &identity.User{ID: 7, Email: "a@x.com"}, bytes.NewReader(pngHeader))

	require.NoError(t, err)
	assert.Equal(t, url, *result.Avatar)
}
