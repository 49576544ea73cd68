package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/bots"
)

// BotsHandler exposes bot registration, liveness and catalog routes.
type BotsHandler struct {
	service *bots.Service
	logger  *slog.Logger
}

// NewBotsHandler creates a BotsHandler.
func NewBotsHandler(log *slog.Logger, service *bots.Service) *BotsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BotsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "bots")),
	}
}

// Register registers bot routes.
func (h *BotsHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/claim/bots/register", h.RegisterBot)
	e.POST("/api/v1/bots/:bot_id/heartbeat", h.Heartbeat)
	e.GET("/api/v1/bots", h.List)
	e.GET("/api/v1/bots/:bot_id", h.Get)
	e.PATCH("/api/v1/bots/:bot_id", h.Update)
	e.DELETE("/api/v1/bots/:bot_id", h.Delete)
	e.PUT("/api/v1/bots/:bot_id/avatar", h.SetAvatar)
}

// RegisterBot self-registers a bot and returns its one-time claim code.
func (h *BotsHandler) RegisterBot(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	var req bots.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reg, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, reg)
}

// Heartbeat updates a bot's liveness status. Bot-originated, no JWT.
func (h *BotsHandler) Heartbeat(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	var req bots.HeartbeatRequest
	if err := c.Bind(&req); err != nil && !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bot, err := h.service.Heartbeat(c.Request().Context(), c.Param("bot_id"), req)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, bot)
}

// List returns a filtered, paginated bot catalog.
func (h *BotsHandler) List(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	filter := bots.ListFilter{
		Status:  strings.TrimSpace(c.QueryParam("status")),
		OwnerID: strings.TrimSpace(c.QueryParam("owner_id")),
		Search:  strings.TrimSpace(c.QueryParam("search")),
	}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
		filter.Page = page
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid page_size")
		}
		filter.PageSize = size
	}
	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns a single bot by its external bot_id.
func (h *BotsHandler) Get(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	bot, err := h.service.Get(c.Request().Context(), c.Param("bot_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, bot)
}

// Update changes display metadata. Owner only.
func (h *BotsHandler) Update(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	bot, err := h.requireOwnedBot(c)
	if err != nil {
		return err
	}
	var req bots.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.service.Update(c.Request().Context(), bot.BotID, req)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a bot. Owner only.
func (h *BotsHandler) Delete(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	bot, err := h.requireOwnedBot(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), bot.BotID); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type avatarRequest struct {
	AvatarURL string `json:"avatar_url"`
}

// SetAvatar stores the bot's avatar URL. Owner only.
func (h *BotsHandler) SetAvatar(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "bots service not available")
	}
	bot, err := h.requireOwnedBot(c)
	if err != nil {
		return err
	}
	var req avatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.AvatarURL) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar_url is required")
	}
	updated, err := h.service.SetAvatar(c.Request().Context(), bot.BotID, req.AvatarURL)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *BotsHandler) requireOwnedBot(c echo.Context) (bots.Bot, error) {
	userID, err := RequireUserID(c)
	if err != nil {
		return bots.Bot{}, err
	}
	bot, err := h.service.Get(c.Request().Context(), c.Param("bot_id"))
	if err != nil {
		return bots.Bot{}, domainHTTPError(err)
	}
	if bot.OwnerID == "" || bot.OwnerID != userID {
		return bots.Bot{}, echo.NewHTTPError(http.StatusForbidden, "only the bot owner may do this")
	}
	return bot, nil
}
