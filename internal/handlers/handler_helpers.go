package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/auth"
	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/claims"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/grants"
	"github.com/bothubai/bothub/internal/users"
)

// RequireUserID extracts the authenticated user's id from the JWT.
func RequireUserID(c echo.Context) (string, error) {
	return auth.UserIDFromContext(c)
}

// domainHTTPError maps domain sentinel errors onto HTTP status codes.
func domainHTTPError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	switch {
	case errors.Is(err, bots.ErrBotNotFound),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, claims.ErrRequestNotFound),
		errors.Is(err, claims.ErrCodeNotFound),
		errors.Is(err, grants.ErrGrantNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, bots.ErrBotConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, claims.ErrForbidden), errors.Is(err, grants.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, claims.ErrCodeExpired),
		errors.Is(err, claims.ErrInvalidState),
		errors.Is(err, claims.ErrInvalidInput),
		errors.Is(err, bots.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, feishu.ErrUpstreamAuth):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
