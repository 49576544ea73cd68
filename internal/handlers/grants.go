package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/grants"
)

// GrantsHandler exposes access grant listing and revocation.
type GrantsHandler struct {
	service *grants.Service
	bots    *bots.Service
	logger  *slog.Logger
}

// NewGrantsHandler creates a GrantsHandler.
func NewGrantsHandler(log *slog.Logger, service *grants.Service, botsSvc *bots.Service) *GrantsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GrantsHandler{
		service: service,
		bots:    botsSvc,
		logger:  log.With(slog.String("handler", "grants")),
	}
}

// Register registers grant routes.
func (h *GrantsHandler) Register(e *echo.Echo) {
	e.GET("/api/v1/bots/:bot_id/grants", h.ListForBot)
	e.GET("/api/v1/users/me/grants", h.ListMine)
	e.DELETE("/api/v1/grants/:id", h.Revoke)
}

// ListForBot returns every grant on a bot. Owner only.
func (h *GrantsHandler) ListForBot(c echo.Context) error {
	if h.service == nil || h.bots == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "grants service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	bot, err := h.bots.Get(c.Request().Context(), c.Param("bot_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	list, err := h.service.ListForBot(c.Request().Context(), userID, bot.ID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListMine returns the caller's active grants.
func (h *GrantsHandler) ListMine(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "grants service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	list, err := h.service.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// Revoke deactivates a grant. Bot owner only.
func (h *GrantsHandler) Revoke(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "grants service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	grant, err := h.service.Revoke(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, grant)
}
