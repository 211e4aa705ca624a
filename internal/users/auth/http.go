// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	requestutil "github.com/taibuivan/contactbook/internal/platform/request"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /api/auth endpoints.
type Handler struct {
	authService   *Service
	limiter       *middleware.RateLimiter
	publicBaseURL string
}

// NewHandler constructs a new [Handler].
//
// publicBaseURL is the API root used in emailed links; empty derives it from
// each request's host.
func NewHandler(service *Service, limiter *middleware.RateLimiter, publicBaseURL string) *Handler {
	return &Handler{authService: service, limiter: limiter, publicBaseURL: publicBaseURL}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup                  : Creates a new account (3 per minute).
//   - POST /login                   : Exchanges credentials for a token pair.
//   - GET  /refresh_token           : Rotates the token pair.
//   - GET  /confirmed_email/{token} : Confirms an email address.
//   - POST /request_email           : Re-sends the confirmation mail.
//   - POST /reset_password          : Sets a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.limiter.PerMinute("auth_signup", constants.SignupPerMinute)).Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Get("/refresh_token", handler.refreshToken)
	router.Get("/confirmed_email/{token}", handler.confirmedEmail)
	router.Post("/request_email", handler.requestEmail)
	router.Post("/reset_password", handler.resetPassword)

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type requestEmailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

/*
Signup handles the creation of a new account.

POST /api/auth/signup

Response:
  - 201: Identity
  - 400: Validation failure
  - 409: "Account already exists"
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Length(FieldUsername, strings.TrimSpace(input.Username), UsernameMinLen, UsernameMaxLen).
		Email(FieldEmail, input.Email).
		Length(FieldPassword, input.Password, PasswordMinLen, PasswordMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	}, handler.baseURL(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

/*
Login exchanges credentials for a token pair.

POST /api/auth/login

Accepts an OAuth2-style form (username, password) or the same fields as JSON.
The username field carries the email address.

Response:
  - 200: TokenPair
  - 401: "Invalid email" | "Email not confirmed" | "Invalid password"
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	input, err := decodeLogin(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
RefreshToken rotates the token pair.

GET /api/auth/refresh_token

Request:
  - Header: Authorization: Bearer <refresh token>
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	token, ok := requestutil.BearerToken(request)
	if !ok {
		respond.Error(writer, request, apperr.Unauthorized(MsgNotAuthenticated))
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
ConfirmedEmail confirms the address carried by an email token.

GET /api/auth/confirmed_email/{token}
*/
func (handler *Handler) confirmedEmail(writer http.ResponseWriter, request *http.Request) {
	message, err := handler.authService.ConfirmEmail(request.Context(), requestutil.Param(request, FieldToken))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, message)
}

/*
RequestEmail re-sends the confirmation mail.

POST /api/auth/request_email
*/
func (handler *Handler) requestEmail(writer http.ResponseWriter, request *http.Request) {
	var input requestEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Email(FieldEmail, input.Email).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.authService.RequestEmail(request.Context(), input.Email, handler.baseURL(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, message)
}

/*
ResetPassword sets a new password for an email address.

POST /api/auth/reset_password

Response:
  - 200: "Password reset complete!"
  - 404: "Invalid email"
  - 409: Passwords differ
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, input.Email).
		Length(FieldNewPassword, input.NewPassword, PasswordMinLen, PasswordMaxLen).
		Length(FieldConfirmPassword, input.ConfirmPassword, PasswordMinLen, PasswordMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), ResetPasswordInput{
		Email:           input.Email,
		NewPassword:     input.NewPassword,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MsgPasswordReset)
}

// # Helpers

func decodeLogin(request *http.Request) (loginRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := request.ParseMultipartForm(requestutil.MaxBodyBytes); err != nil && err != http.ErrNotMultipart {
			return loginRequest{}, apperr.BadRequest("Invalid form payload")
		}
		return loginRequest{
			Username: request.PostFormValue(FieldUsername),
			Password: request.PostFormValue(FieldPassword),
		}, nil
	default:
		var input loginRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			return loginRequest{}, validate.ErrInvalidJSON
		}
		return input, nil
	}
}

// baseURL returns the API root ending in "/".
func (handler *Handler) baseURL(request *http.Request) string {
	if handler.publicBaseURL != "" {
		return strings.TrimRight(handler.publicBaseURL, "/") + "/"
	}

	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}
	if forwarded := request.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + request.Host + "/"
}
