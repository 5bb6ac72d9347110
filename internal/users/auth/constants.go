// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// UsernameMinLength and UsernameMaxLength bound the display name chosen at signup.
	UsernameMinLength = 3
	UsernameMaxLength = 50

	// PasswordMinLength is the shortest accepted password.
	PasswordMinLength = 6

	// PasswordMaxLength is bcrypt's input limit; longer secrets would be truncated silently.
	PasswordMaxLength = 72
)

// # Client Messages

const (
	MsgEmailConfirmed        = "Email confirmed"
	MsgEmailAlreadyConfirmed = "Your email is already confirmed"
	MsgCheckEmail            = "Check your email for confirmation."
)

// confirmationSubject is the subject line of the confirmation email.
const confirmationSubject = "Confirm your email"

// confirmationPath is appended to the public base URL to build the link in the email.
const confirmationPath = "api/auth/confirmed_email/"
