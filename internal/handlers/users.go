package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/users"
)

// UsersHandler serves the current user's profile.
type UsersHandler struct {
	service *users.Service
	logger  *slog.Logger
}

// NewUsersHandler creates a UsersHandler.
func NewUsersHandler(log *slog.Logger, service *users.Service) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{
		service: service,
		logger:  log.With(slog.String("handler", "users")),
	}
}

// Register registers user routes.
func (h *UsersHandler) Register(e *echo.Echo) {
	e.GET("/api/v1/users/me", h.Me)
}

// Me returns the authenticated user's profile.
func (h *UsersHandler) Me(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "users service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}
