// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	requestutil "github.com/taibuivan/contactbook/internal/platform/request"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/validate"
	"github.com/taibuivan/contactbook/internal/users/identity"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// Token responses are written without the data envelope so that standard
// OAuth2 password-flow clients can read access_token at the top level.
type Handler struct {
	authService   *Service
	publicBaseURL string
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// publicBaseURL prefixes the links in confirmation emails. When empty the
// prefix is derived from the request's Host header.
func NewHandler(service *Service, publicBaseURL string) *Handler {
	if publicBaseURL != "" && !strings.HasSuffix(publicBaseURL, "/") {
		publicBaseURL += "/"
	}
	return &Handler{authService: service, publicBaseURL: publicBaseURL}
}

// linkBase is the prefix for links sent by email.
func (handler *Handler) linkBase(request *http.Request) string {
	if handler.publicBaseURL != "" {
		return handler.publicBaseURL
	}
	return requestutil.BaseURL(request)
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup                  : Creates a new account.
//   - POST /login                   : Authenticates and returns a token pair.
//   - GET  /refresh_token           : Rotates the pair using the Bearer refresh token.
//   - GET  /confirmed_email/{token} : Confirms the email address.
//   - POST /request_email           : Re-sends the confirmation email.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Get("/refresh_token", handler.refresh)
	router.Get("/confirmed_email/{token}", handler.confirmedEmail)
	router.Post("/request_email", handler.requestEmail)

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type requestEmailRequest struct {
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

/*
Signup handles the creation of a new user account.

POST /api/auth/signup

Request:
  - Body: signupRequest (Username, Email, Password)

Response:
  - 201: identity.User: Created account
  - 400: Validation failure
  - 409: Account already exists
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(identity.FieldUsername, input.Username).
		MinLen(identity.FieldUsername, input.Username, UsernameMinLength).
		MaxLen(identity.FieldUsername, input.Username, UsernameMaxLength).
		Required(identity.FieldEmail, input.Email).
		Email(identity.FieldEmail, input.Email).
		Required(identity.FieldPassword, input.Password).
		MinLen(identity.FieldPassword, input.Password, PasswordMinLength).
		MaxBytes(identity.FieldPassword, input.Password, PasswordMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	}, handler.linkBase(request))

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and issues a token pair.

POST /api/auth/login

Request:
  - Form: username (the email), password; or
  - Body: loginRequest (Email, Password)

Response:
  - 200: TokenPair
  - 401: Invalid email, invalid password or email not confirmed
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	email, password, err := readLoginCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(identity.FieldUsername, email)
	validator.Required(identity.FieldPassword, password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), email, password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, pair)
}

// readLoginCredentials accepts both the OAuth2 password form and a JSON body.
func readLoginCredentials(request *http.Request) (string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))

	if mediaType == "application/json" {
		var input loginRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			return "", "", validate.ErrInvalidJSON
		}
		email := input.Email
		if email == "" {
			email = input.Username
		}
		return strings.TrimSpace(email), input.Password, nil
	}

	if err := request.ParseForm(); err != nil {
		return "", "", validate.RequiredError(identity.FieldUsername, "Unreadable form body")
	}
	return strings.TrimSpace(request.PostForm.Get("username")), request.PostForm.Get("password"), nil
}

/*
Refresh issues a new token pair using a valid refresh token.

GET /api/auth/refresh_token

Request:
  - Header: Authorization: Bearer <refresh token>

Response:
  - 200: TokenPair
  - 401: Missing, invalid or replayed refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	token, ok := middleware.BearerToken(request)
	if !ok {
		writer.Header().Set("WWW-Authenticate", "Bearer")
		respond.Error(writer, request, identity.ErrMissingCredential)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, pair)
}

/*
ConfirmedEmail confirms a user's email ownership.

GET /api/auth/confirmed_email/{token}

Response:
  - 200: {"message": "Email confirmed" | "Your email is already confirmed"}
  - 400: Verification error
*/
func (handler *Handler) confirmedEmail(writer http.ResponseWriter, request *http.Request) {
	message, err := handler.authService.ConfirmEmail(request.Context(), requestutil.Param(request, "token"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: message})
}

/*
RequestEmail re-sends the confirmation link.

POST /api/auth/request_email

Request:
  - Body: requestEmailRequest (Email)

Response:
  - 200: {"message": ...}
  - 400: Invalid email format
*/
func (handler *Handler) requestEmail(writer http.ResponseWriter, request *http.Request) {
	var input requestEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.Email = strings.TrimSpace(input.Email)

	v := &validate.Validator{}
	v.Required(identity.FieldEmail, input.Email).Email(identity.FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.authService.RequestEmail(request.Context(), input.Email, handler.linkBase(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: message})
}
