// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/storage"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

var (
	// ErrAvatarTooLarge is returned for uploads above [MaxAvatarBytes].
	ErrAvatarTooLarge = apperr.Unprocessable("Avatar must not exceed 5 MiB")

	// ErrAvatarNotImage is returned when the upload does not sniff as an image.
	ErrAvatarNotImage = apperr.Unprocessable("Avatar must be an image")

	// ErrAvatarUnavailable is returned when object storage is not configured.
	ErrAvatarUnavailable = &apperr.AppError{
		Code:       "STORAGE_UNAVAILABLE",
		Message:    "Avatar upload is not available",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// # Service Layer

// Service implements the profile use cases.
type Service struct {
	avatarRepository AvatarRepository
	uploader         Uploader
	sessionCache     SessionCache
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository AvatarRepository, uploader Uploader, cache SessionCache) *Service {
	return &Service{
		avatarRepository: repository,
		uploader:         uploader,
		sessionCache:     cache,
	}
}

/*
UpdateAvatar uploads a new avatar image and stores its URL on the account.

Description: The content type is sniffed from the first bytes rather than
trusted from the client. The object key is derived from the email, so a new
upload replaces the previous one. The session snapshot is refreshed so the
next request sees the new URL.

Parameters:
  - ctx: context.Context
  - user: *identity.User (the authenticated account)
  - file: io.Reader (at most MaxAvatarBytes are read)

Returns:
  - *identity.User: Updated entity
  - error: ErrAvatarTooLarge, ErrAvatarNotImage, ErrAvatarUnavailable or upstream failures
*/
func (service *Service) UpdateAvatar(ctx context.Context, user *identity.User, file io.Reader) (*identity.User, error) {
	// One extra byte tells "exactly the limit" apart from "over the limit".
	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("account_service_read_avatar_failed: %w", err)
	}
	if len(data) > MaxAvatarBytes {
		return nil, ErrAvatarTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), sniffLength)])
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrAvatarNotImage
	}

	url, err := service.uploader.Upload(ctx, avatarKeyPrefix+user.Email, bytes.NewReader(data), contentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrAvatarUnavailable
		}
		return nil, fmt.Errorf("account_service_upload_avatar_failed: %w", err)
	}

	updated, err := service.avatarRepository.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(ctx)
	if err := service.sessionCache.Set(ctx, updated); err != nil {
		logger.WarnContext(ctx, "session_cache_refresh_failed", slog.String("error", err.Error()))
	}

	logger.InfoContext(ctx, "avatar_updated", slog.Int64("user_id", updated.ID))
	return updated, nil
}
