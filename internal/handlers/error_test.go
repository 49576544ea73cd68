package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/conflict", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "bot id already exists")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("connection reset")
	})

	cases := []struct {
		path        string
		wantCode    int
		wantMessage string
	}{
		{path: "/conflict", wantCode: http.StatusConflict, wantMessage: "bot id already exists"},
		{path: "/boom", wantCode: http.StatusInternalServerError, wantMessage: "Internal Server Error"},
		{path: "/nowhere", wantCode: http.StatusNotFound, wantMessage: "Not Found"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.wantCode {
			t.Fatalf("%s: code = %d, want %d", tc.path, rec.Code, tc.wantCode)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", tc.path, err)
		}
		if body.Message != tc.wantMessage {
			t.Fatalf("%s: message = %q, want %q", tc.path, body.Message, tc.wantMessage)
		}
	}
}

func TestErrorHandlerHead(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/nowhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("HEAD error carried a body: %q", rec.Body.String())
	}
}
