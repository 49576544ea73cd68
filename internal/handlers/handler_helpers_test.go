package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/claims"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/grants"
)

func TestDomainHTTPError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err      error
		wantCode int
	}{
		{err: bots.ErrBotNotFound, wantCode: http.StatusNotFound},
		{err: claims.ErrRequestNotFound, wantCode: http.StatusNotFound},
		{err: grants.ErrGrantNotFound, wantCode: http.StatusNotFound},
		{err: bots.ErrBotConflict, wantCode: http.StatusConflict},
		{err: claims.ErrForbidden, wantCode: http.StatusForbidden},
		{err: grants.ErrForbidden, wantCode: http.StatusForbidden},
		{err: claims.ErrCodeNotFound, wantCode: http.StatusNotFound},
		{err: claims.ErrCodeExpired, wantCode: http.StatusBadRequest},
		{err: claims.ErrInvalidState, wantCode: http.StatusBadRequest},
		{err: claims.ErrInvalidInput, wantCode: http.StatusBadRequest},
		{err: bots.ErrInvalidStatus, wantCode: http.StatusBadRequest},
		{err: feishu.ErrUpstreamAuth, wantCode: http.StatusBadGateway},
		{err: errors.New("boom"), wantCode: http.StatusInternalServerError},
		// Wrapped sentinels map the same way.
		{err: fmt.Errorf("%w: request is approved", claims.ErrInvalidState), wantCode: http.StatusBadRequest},
		{err: fmt.Errorf("%w: exchange code: 502", feishu.ErrUpstreamAuth), wantCode: http.StatusBadGateway},
	}
	for _, tc := range cases {
		var httpErr *echo.HTTPError
		if !errors.As(domainHTTPError(tc.err), &httpErr) {
			t.Fatalf("domainHTTPError(%v) is not an HTTPError", tc.err)
		}
		if httpErr.Code != tc.wantCode {
			t.Fatalf("domainHTTPError(%v) = %d, want %d", tc.err, httpErr.Code, tc.wantCode)
		}
	}
}

func TestDomainHTTPErrorPassthrough(t *testing.T) {
	t.Parallel()

	original := echo.NewHTTPError(http.StatusTeapot, "short and stout")
	var httpErr *echo.HTTPError
	if !errors.As(domainHTTPError(original), &httpErr) || httpErr.Code != http.StatusTeapot {
		t.Fatalf("existing HTTP errors must pass through unchanged")
	}
}
