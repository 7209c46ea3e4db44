package handler

import (
	"errors"
	"net/http"

	"github.com/skinscan/api/internal/core/domain"
)

// statusFor maps the domain error taxonomy onto HTTP status codes. Upstream
// and unexpected failures both become 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
