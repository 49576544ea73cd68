package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/auth"
	"github.com/bothubai/bothub/internal/config"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/users"
)

// OAuthHandler exchanges a Feishu login code for a session JWT.
type OAuthHandler struct {
	verifier *feishu.Service
	users    *users.Service
	authCfg  config.AuthConfig
	logger   *slog.Logger
}

// NewOAuthHandler creates an OAuthHandler.
func NewOAuthHandler(log *slog.Logger, verifier *feishu.Service, usersSvc *users.Service, authCfg config.AuthConfig) *OAuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OAuthHandler{
		verifier: verifier,
		users:    usersSvc,
		authCfg:  authCfg,
		logger:   log.With(slog.String("handler", "oauth")),
	}
}

// Register registers the OAuth callback route.
func (h *OAuthHandler) Register(e *echo.Echo) {
	e.POST("/api/v1/oauth/feishu/callback", h.Callback)
}

type oauthCallbackRequest struct {
	Code string `json:"code"`
}

type oauthCallbackResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      users.User `json:"user"`
}

// Callback resolves the auth code upstream, upserts the user and
// returns a signed JWT.
func (h *OAuthHandler) Callback(c echo.Context) error {
	if h.verifier == nil || h.users == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "oauth services not available")
	}
	var req oauthCallbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	ident, err := h.verifier.ResolveIdentity(c.Request().Context(), req.Code)
	if err != nil {
		return domainHTTPError(err)
	}
	user, err := h.users.UpsertFromIdentity(c.Request().Context(), ident)
	if err != nil {
		return domainHTTPError(err)
	}

	expiresIn, err := time.ParseDuration(h.authCfg.JWTExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	token, expiresAt, err := auth.GenerateToken(user.ID, h.authCfg.JWTSecret, expiresIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.logger.Info("user logged in", slog.String("user_id", user.ID))
	return c.JSON(http.StatusOK, oauthCallbackResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}
