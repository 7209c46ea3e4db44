package domain

import "errors"

// Error taxonomy shared by every service. Callers wrap these with fmt.Errorf
// and %w; the transport layer classifies them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUpstream           = errors.New("upstream service failure")
)
