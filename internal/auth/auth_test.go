package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	t.Parallel()

	signed, expiresAt, err := GenerateToken("user-1", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject != "user-1" {
		t.Fatalf("subject = %q (%v), want user-1", subject, err)
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	t.Parallel()

	if _, _, err := GenerateToken("u", "", time.Hour); err == nil {
		t.Fatal("empty secret must fail")
	}
	if _, _, err := GenerateToken("u", "s", 0); err == nil {
		t.Fatal("non-positive expiry must fail")
	}
}

func TestJWTMiddleware(t *testing.T) {
	t.Parallel()

	secret := "mw-secret"
	signed, _, err := GenerateToken("user-9", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	e := echo.New()
	e.Use(JWTMiddleware(secret, func(c echo.Context) bool {
		return c.Request().URL.Path == "/public"
	}))
	e.GET("/me", func(c echo.Context) error {
		userID, err := UserIDFromContext(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, userID)
	})
	e.GET("/public", func(c echo.Context) error {
		return c.String(http.StatusOK, "open")
	})

	// Valid token reaches the handler with its subject.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "user-9" {
		t.Fatalf("authenticated request: %d %q", rec.Code, rec.Body.String())
	}

	// Missing token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request: %d", rec.Code)
	}

	// Skipped route needs no token.
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("public request: %d", rec.Code)
	}
}
