package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/claims"
)

// ClaimsHandler exposes the claim workflow routes.
type ClaimsHandler struct {
	service *claims.Service
	bots    *bots.Service
	logger  *slog.Logger
}

// NewClaimsHandler creates a ClaimsHandler.
func NewClaimsHandler(log *slog.Logger, service *claims.Service, botsSvc *bots.Service) *ClaimsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ClaimsHandler{
		service: service,
		bots:    botsSvc,
		logger:  log.With(slog.String("handler", "claims")),
	}
}

// Register registers claim routes.
func (h *ClaimsHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/claim/request", h.Create)
	e.POST("/api/v1/claim/approve", h.Decide)
	e.GET("/api/v1/claim/requests", h.ListMine)
	e.GET("/api/v1/claim/requests/:id", h.Get)
	e.GET("/api/v1/bots/:bot_id/requests", h.ListForBot)
}

// Create starts a claim. The requester's identity comes from the Feishu
// auth code in the body, so this route takes no JWT.
func (h *ClaimsHandler) Create(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "claims service not available")
	}
	var req claims.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

type decideRequest struct {
	RequestID string `json:"request_id"`
	Approved  bool   `json:"approved"`
	Message   string `json:"message,omitempty"`
}

// Decide approves or rejects a pending request. Bot owner only.
func (h *ClaimsHandler) Decide(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "claims service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	var req decideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.RequestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request_id is required")
	}
	decided, err := h.service.Decide(c.Request().Context(), userID, req.RequestID, claims.Decision{
		Approve: req.Approved,
		Message: req.Message,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, decided)
}

// ListMine returns the caller's own claim requests.
func (h *ClaimsHandler) ListMine(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "claims service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	requests, err := h.service.ListMine(c.Request().Context(), userID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// Get returns one claim request, visible to requester and bot owner.
func (h *ClaimsHandler) Get(c echo.Context) error {
	if h.service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "claims service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	req, err := h.service.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, req)
}

// ListForBot returns every request targeting a bot. Owner only.
func (h *ClaimsHandler) ListForBot(c echo.Context) error {
	if h.service == nil || h.bots == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "claims service not available")
	}
	userID, err := RequireUserID(c)
	if err != nil {
		return err
	}
	bot, err := h.bots.Get(c.Request().Context(), c.Param("bot_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	requests, err := h.service.ListForBot(c.Request().Context(), userID, bot.ID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, requests)
}
