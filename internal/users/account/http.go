// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/middleware"
	requestutil "github.com/taibuivan/contactbook/internal/platform/request"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/validate"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// multipartOverhead leaves room for boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// Handler implements the HTTP layer for the authenticated user's profile.
type Handler struct {
	accountService *Service
	limiter        middleware.WindowLimiter
}

// NewHandler constructs a new account [Handler]. A nil limiter disables per-route quotas.
func NewHandler(service *Service, limiter middleware.WindowLimiter) *Handler {
	return &Handler{accountService: service, limiter: limiter}
}

// Routes returns a [chi.Router] configured with the account endpoints.
//
// # Endpoints
//   - GET   /me     : Current user.
//   - PATCH /avatar : Replaces the avatar (multipart field "file").
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.limit("users.me")).Get("/me", handler.getMe)
	router.With(handler.limit("users.avatar")).Patch("/avatar", handler.updateAvatar)

	return router
}

func (handler *Handler) limit(route string) func(http.Handler) http.Handler {
	if handler.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.LimitRoute(handler.limiter, route)
}

/*
GET /api/users/me.

Response:
  - 200: identity.User
  - 401: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/users/avatar.

Request:
  - Multipart form with an image in the "file" field

Response:
  - 200: identity.User with the new avatar URL
  - 400: Missing file
  - 422: Not an image, or larger than 5 MiB
  - 503: Storage not configured
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, MaxAvatarBytes+multipartOverhead)

	file, _, err := request.FormFile(identity.FieldFile)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, ErrAvatarTooLarge)
			return
		}
		respond.Error(writer, request, validate.RequiredError(identity.FieldFile, "An image file is required"))
		return
	}
	defer file.Close()

	updated, err := handler.accountService.UpdateAvatar(request.Context(), user, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}
