// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/mailer"
	"github.com/taibuivan/contactbook/internal/platform/metrics"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/pkg/pointer"
	"github.com/taibuivan/contactbook/pkg/uuid"
)

// # Contracts

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates scoped tokens.
type TokenIssuer interface {
	TokenValidator
	Issue(scope sec.Scope, subject string, ttl time.Duration) (string, error)
}

// MailQueue accepts outbound mail without blocking.
type MailQueue interface {
	Enqueue(message mailer.Message) bool
}

// Service implements the authentication flows.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance or confirmation logic must be reviewed with care.
type Service struct {
	store   IdentityStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	mail    MailQueue
	metrics *metrics.Metrics
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store IdentityStore, hasher PasswordHasher, tokens TokenIssuer, mail MailQueue, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		mail:    mail,
		metrics: m,
	}
}

// # Registration Flow

// SignupInput holds the data required to create an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

/*
Signup creates an unconfirmed account and queues the confirmation mail.

Parameters:
  - context: context.Context
  - input: SignupInput (already validated)
  - baseURL: string (public API root ending in "/", used in the confirmation link)

Returns:
  - *Identity: Created entity
  - error: 409 "Account already exists" or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput, baseURL string) (*Identity, error) {
	email := normalizeEmail(input.Email)

	_, err := service.store.FindByEmail(context, email)
	if err == nil {
		service.metrics.AuthEvent("signup", "duplicate")
		return nil, apperr.Conflict(MsgAccountExists)
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_service_signup_lookup_failed: %w", err)
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	identity := &Identity{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(input.Username),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		Confirmed:    false,
		Avatar:       pointer.To(GravatarURL(email)),
	}

	if err := service.store.Create(context, identity); err != nil {
		// A concurrent signup for the same email lost the race.
		if apperr.IsConflict(err) {
			service.metrics.AuthEvent("signup", "duplicate")
			return nil, apperr.Conflict(MsgAccountExists)
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered",
		slog.String("user_id", identity.ID),
		slog.String("email", identity.Email),
	)
	service.metrics.AuthEvent("signup", "success")

	service.sendConfirmation(context, identity, baseURL)

	return identity.Snapshot(), nil
}

// # Authentication Flow

/*
Login verifies credentials and issues a token pair.

The checks run in order: known email, confirmed email, matching password.
The new refresh token replaces the stored one.
*/
func (service *Service) Login(context context.Context, email, password string) (*TokenPair, error) {
	identity, err := service.store.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			service.metrics.AuthEvent("login", "invalid_email")
			return nil, apperr.Unauthorized(MsgInvalidEmail)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !identity.Confirmed {
		service.metrics.AuthEvent("login", "not_confirmed")
		return nil, apperr.Unauthorized(MsgEmailNotConfirmed)
	}

	if !service.hasher.Verify(password, identity.PasswordHash) {
		service.metrics.AuthEvent("login", "invalid_password")
		return nil, apperr.Unauthorized(MsgInvalidPassword)
	}

	pair, err := service.issuePair(context, identity)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_logged_in", slog.String("user_id", identity.ID))
	service.metrics.AuthEvent("login", "success")
	return pair, nil
}

/*
Refresh rotates the token pair for a valid refresh token.

A refresh token that validates but differs from the stored one is treated as
reuse: the stored token is cleared, forcing a new login.
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*TokenPair, error) {
	email, err := service.tokens.Validate(refreshToken, sec.ScopeRefresh)
	if err != nil {
		service.metrics.AuthEvent("refresh", "invalid_token")
		if errors.Is(err, sec.ErrScopeMismatch) {
			return nil, apperr.Unauthorized(MsgInvalidScope)
		}
		return nil, apperr.Unauthorized(MsgCouldNotValidate).WithCause(err)
	}

	identity, err := service.store.FindByEmail(context, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			service.metrics.AuthEvent("refresh", "unknown_subject")
			return nil, apperr.Unauthorized(MsgCouldNotValidate)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if identity.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*identity.RefreshToken), []byte(refreshToken)) != 1 {
		if err := service.store.UpdateRefreshToken(context, identity.ID, nil); err != nil {
			return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
		}
		ctxutil.GetLogger(context).WarnContext(context, "refresh_token_reuse_detected", slog.String("user_id", identity.ID))
		service.metrics.AuthEvent("refresh", "reuse")
		return nil, apperr.Unauthorized(MsgInvalidRefreshToken)
	}

	pair, err := service.issuePair(context, identity)
	if err != nil {
		return nil, err
	}

	service.metrics.AuthEvent("refresh", "success")
	return pair, nil
}

// # Email Confirmation

/*
ConfirmEmail validates an email token and marks its identity confirmed.

Returns:
  - string: "Email confirmed" or "Your email is already confirmed"
  - error: 422 bad token, 401 wrong scope, 400 unknown identity
*/
func (service *Service) ConfirmEmail(context context.Context, token string) (string, error) {
	email, err := service.tokens.Validate(token, sec.ScopeEmail)
	if err != nil {
		if errors.Is(err, sec.ErrScopeMismatch) {
			return "", apperr.Unauthorized(MsgInvalidScope)
		}
		return "", apperr.Unprocessable(MsgInvalidEmailToken).WithCause(err)
	}

	identity, err := service.store.FindByEmail(context, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return "", apperr.BadRequest(MsgVerificationError)
		}
		return "", fmt.Errorf("auth_service_confirm_lookup_failed: %w", err)
	}

	if identity.Confirmed {
		return MsgEmailAlreadyConfirmed, nil
	}

	if err := service.store.ConfirmEmail(context, email); err != nil {
		return "", fmt.Errorf("auth_service_confirm_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "email_confirmed", slog.String("user_id", identity.ID))
	service.metrics.AuthEvent("confirm_email", "success")
	return MsgEmailConfirmed, nil
}

/*
RequestEmail re-sends the confirmation mail.

Unknown addresses get the same answer as known unconfirmed ones so the
endpoint cannot be used to probe for accounts.
*/
func (service *Service) RequestEmail(context context.Context, email, baseURL string) (string, error) {
	identity, err := service.store.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return MsgCheckEmail, nil
		}
		return "", fmt.Errorf("auth_service_request_email_failed: %w", err)
	}

	if identity.Confirmed {
		return MsgEmailAlreadyConfirmed, nil
	}

	service.sendConfirmation(context, identity, baseURL)
	return MsgCheckEmail, nil
}

// # Password Recovery

// ResetPasswordInput carries the new credentials.
type ResetPasswordInput struct {
	Email           string
	NewPassword     string
	ConfirmPassword string
}

/*
ResetPassword replaces the password of the identity with the given email.

The identity lookup comes first, so an unknown email is reported even when the
two passwords differ. The confirmed flag is left untouched.
*/
func (service *Service) ResetPassword(context context.Context, input ResetPasswordInput) error {
	identity, err := service.store.FindByEmail(context, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFoundMsg(MsgInvalidEmail)
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	if input.NewPassword != input.ConfirmPassword {
		return apperr.Conflict(MsgPasswordMismatch)
	}

	hashedPassword, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.store.UpdatePassword(context, identity.ID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_reset", slog.String("user_id", identity.ID))
	service.metrics.AuthEvent("reset_password", "success")
	return nil
}

// # Administration

// ChangeRole sets the role of the identity with email.
func (service *Service) ChangeRole(context context.Context, email string, role sec.Role) error {
	if !role.Valid() {
		return apperr.BadRequest(fmt.Sprintf("Unknown role %q", role))
	}
	if err := service.store.UpdateRole(context, normalizeEmail(email), role); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFoundMsg(MsgInvalidEmail)
		}
		return fmt.Errorf("auth_service_change_role_failed: %w", err)
	}
	return nil
}

// MarkConfirmed confirms an email without a token.
func (service *Service) MarkConfirmed(context context.Context, email string) error {
	if err := service.store.ConfirmEmail(context, normalizeEmail(email)); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFoundMsg(MsgInvalidEmail)
		}
		return fmt.Errorf("auth_service_mark_confirmed_failed: %w", err)
	}
	return nil
}

// # Helpers

func (service *Service) issuePair(context context.Context, identity *Identity) (*TokenPair, error) {
	accessToken, err := service.tokens.Issue(sec.ScopeAccess, identity.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_access_failed: %w", err)
	}

	refreshToken, err := service.tokens.Issue(sec.ScopeRefresh, identity.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_refresh_failed: %w", err)
	}

	if err := service.store.UpdateRefreshToken(context, identity.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
	}, nil
}

// sendConfirmation queues the confirmation mail. Failures are logged only.
func (service *Service) sendConfirmation(context context.Context, identity *Identity, baseURL string) {
	logger := ctxutil.GetLogger(context)

	token, err := service.tokens.Issue(sec.ScopeEmail, identity.Email, 0)
	if err != nil {
		logger.ErrorContext(context, "email_token_issue_failed", slog.Any("error", err))
		return
	}

	message, err := mailer.ConfirmationEmail(identity.Email, identity.Username, ConfirmationLink(baseURL, token))
	if err != nil {
		logger.ErrorContext(context, "confirmation_mail_render_failed", slog.Any("error", err))
		return
	}

	if service.mail.Enqueue(message) {
		logger.DebugContext(context, "confirmation_mail_queued", slog.String("user_id", identity.ID))
	}
}

// ConfirmationLink builds the URL embedded in the confirmation mail.
func ConfirmationLink(baseURL, token string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + "api/auth/confirmed_email/" + token
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
