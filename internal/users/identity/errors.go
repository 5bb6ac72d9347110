// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"net/http"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
)

// # Authentication Errors
//
// Sentinels compared with [errors.Is]. The messages are what clients see.

var (
	ErrMissingCredential = &apperr.AppError{
		Code:       "MISSING_CREDENTIAL",
		Message:    "Not authenticated",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredential = &apperr.AppError{
		Code:       "INVALID_CREDENTIAL",
		Message:    "Could not validate credentials",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidEmail = &apperr.AppError{
		Code:       "INVALID_EMAIL",
		Message:    "Invalid email",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidPassword = &apperr.AppError{
		Code:       "INVALID_PASSWORD",
		Message:    "Invalid password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrEmailNotConfirmed = &apperr.AppError{
		Code:       "EMAIL_NOT_CONFIRMED",
		Message:    "Email not confirmed",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrEmailAlreadyExists = &apperr.AppError{
		Code:       "EMAIL_ALREADY_EXISTS",
		Message:    "Account already exists",
		HTTPStatus: http.StatusConflict,
	}

	ErrInvalidRefreshToken = &apperr.AppError{
		Code:       "INVALID_REFRESH_TOKEN",
		Message:    "Invalid refresh token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrVerification = &apperr.AppError{
		Code:       "VERIFICATION_ERROR",
		Message:    "Verification error",
		HTTPStatus: http.StatusBadRequest,
	}
)
