// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/validate"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// maxJSONBody caps JSON payloads; the largest legitimate body is a contact.
const maxJSONBody = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	body := http.MaxBytesReader(nil, request.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Int64Param parses a named URL parameter as a positive integer ID.

Returns:
  - int64: The parsed ID
  - error: A VALIDATION_ERROR naming the parameter when it is not a positive integer
*/
func Int64Param(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || id < 1 {
		return 0, validate.RequiredError(name, "Must be a positive integer")
	}
	return id, nil
}

/*
User extracts the authenticated account from the request context.

Returns nil if the request is not authenticated.
*/
func User(request *http.Request) *identity.User {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredUser ensures the request is authenticated and returns the account.

Returns:
  - *identity.User: The authenticated account
  - error: identity.ErrMissingCredential if the request is not authenticated
*/
func RequiredUser(request *http.Request) (*identity.User, error) {

	// Get the resolved account
	user := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if user == nil {
		return nil, identity.ErrMissingCredential
	}

	return user, nil
}

/*
BaseURL reconstructs the URL prefix the request was addressed to, ending in '/'.

Only the Host header and the connection are consulted. Forwarded headers reach
it solely through middleware.TrustedProxy, which rewrites Host and URL.Scheme.
*/
func BaseURL(request *http.Request) string {
	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}
	if request.URL != nil && request.URL.Scheme != "" {
		scheme = request.URL.Scheme
	}

	return scheme + "://" + request.Host + "/"
}
