package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/ports"
)

// AccountHandler handles registration and login requests
type AccountHandler struct {
	accounts ports.AccountService
	logger   *logger.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts ports.AccountService, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// Register godoc
// @Summary Register an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body ports.CredentialsRequest true "Credentials"
// @Success 200 {object} ports.MessageResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 500 {object} ports.ErrorResponse
// @Router /register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req ports.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accounts.Register(c.Request().Context(), req.Username, req.Password); err != nil {
		h.logger.WithError(err).Warnw("Register failed", "username", req.Username)
		if errors.Is(err, entities.ErrConflict) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Registration successful"})
}

// Login godoc
// @Summary Check credentials
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body ports.CredentialsRequest true "Credentials"
// @Success 200 {object} ports.MessageResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 401 {object} ports.ErrorResponse
// @Router /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req ports.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.accounts.Login(c.Request().Context(), req.Username, req.Password); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Login successful"})
}

// toHTTPError maps service errors onto status codes
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, entities.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, entities.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, entities.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, entities.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errorMessage(err))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save data").SetInternal(err)
	}
}

// errorMessage drops the "failed to ...:" wrapping added by the services
func errorMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil || isSentinel(next) {
			return err.Error()
		}
		err = next
	}
}

func isSentinel(err error) bool {
	return err == entities.ErrValidation || err == entities.ErrConflict ||
		err == entities.ErrAuthentication || err == entities.ErrNotFound || err == entities.ErrStorage
}
