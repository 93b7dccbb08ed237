package services

import "errors"

// Sentinel errors the handlers translate into HTTP responses. The message
// strings the client sees live in the handlers; these carry the reason.
var (
	ErrEmailExists          = errors.New("email already exists")
	ErrUsernameExists       = errors.New("username already exists")
	ErrUsernameTaken        = errors.New("username is already taken")
	ErrInvalidUser          = errors.New("invalid user")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrInvalidOTP           = errors.New("invalid or expired otp")
	ErrVerificationRequired = errors.New("verification required")
	ErrEmailDispatch        = errors.New("email dispatch failed")
	ErrOTPRateLimited       = errors.New("otp rate limited")
	ErrNoFields             = errors.New("no fields provided to update")
)
