package domain

import "errors"

// Common domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternalServer  = errors.New("internal server error")
	ErrPendingApproval = errors.New("account pending approval")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrInvalidSecretKey   = errors.New("invalid secret key")
)

// User errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already exists")
	ErrInvalidRole    = errors.New("invalid role")
	ErrPartialFailure = errors.New("account partially created")
)

// Report errors
var (
	ErrReportNotFound = errors.New("report not found")
	ErrAlreadySigned  = errors.New("report already signed")
	ErrPeriodMismatch = errors.New("period does not match report")
)
