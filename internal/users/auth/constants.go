// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// TokenTypeBearer is the token_type of every issued pair.
	TokenTypeBearer = "bearer"

	// Username length bounds.
	UsernameMinLen = 3
	UsernameMaxLen = 15

	// Password length bounds. The upper bound is kept for client compatibility.
	PasswordMinLen = 6
	PasswordMaxLen = 12
)

// # Client-facing Messages

const (
	MsgCouldNotValidate      = "Could not validate credentials"
	MsgInvalidScope          = "Invalid scope for token"
	MsgInvalidRefreshToken   = "Invalid refresh token"
	MsgAccountExists         = "Account already exists"
	MsgInvalidEmail          = "Invalid email"
	MsgEmailNotConfirmed     = "Email not confirmed"
	MsgInvalidPassword       = "Invalid password"
	MsgInvalidEmailToken     = "Invalid token for email verification"
	MsgVerificationError     = "Verification error"
	MsgEmailConfirmed        = "Email confirmed"
	MsgEmailAlreadyConfirmed = "Your email is already confirmed"
	MsgCheckEmail            = "Check your email for confirmation."
	MsgPasswordMismatch      = "New password does not equal to password from field 'Confirm password'"
	MsgPasswordReset         = "Password reset complete!"
	MsgOperationForbidden    = "Operation forbidden"
)
