package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/api/metrics"
	"github.com/skinscan/api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Email and password (at least 6 characters)"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.reject(c, "register", "invalid", http.StatusBadRequest, msgInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return h.reject(c, "register", "invalid", http.StatusBadRequest, msgInvalidInput)
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch status := statusFor(err); status {
		case http.StatusBadRequest:
			return h.reject(c, "register", "invalid", status, msgInvalidInput)
		case http.StatusConflict:
			return h.reject(c, "register", "conflict", status, msgUserExists)
		default:
			h.log.Error().Err(err).Str("path", c.Path()).Msg("registration failed")
			return h.reject(c, "register", "error", http.StatusInternalServerError, msgServerError)
		}
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusCreated, authResponse{Message: msgRegistered, Email: user.Email})
}

// Login verifies an email/password pair. No session or token is issued.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.reject(c, "login", "invalid", http.StatusBadRequest, msgMissingCreds)
	}
	if err := c.Validate(&req); err != nil {
		return h.reject(c, "login", "invalid", http.StatusBadRequest, msgMissingCreds)
	}

	user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch status := statusFor(err); status {
		case http.StatusBadRequest:
			return h.reject(c, "login", "invalid", status, msgMissingCreds)
		case http.StatusUnauthorized:
			return h.reject(c, "login", "unauthorized", status, msgInvalidCreds)
		default:
			h.log.Error().Err(err).Str("path", c.Path()).Msg("login failed")
			return h.reject(c, "login", "error", http.StatusInternalServerError, msgServerError)
		}
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return c.JSON(http.StatusOK, authResponse{Message: msgLoggedIn, Email: user.Email})
}

func (h *AuthHandler) reject(c echo.Context, operation, outcome string, status int, msg string) error {
	metrics.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
	return c.JSON(status, messageResponse{Message: msg})
}
