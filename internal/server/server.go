// Package server provides the HTTP server and Echo setup for the registry API.
package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bothubai/bothub/internal/auth"
	"github.com/bothubai/bothub/internal/handlers"
)

// Server is the HTTP server (Echo) with JWT middleware and registered handlers.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// NewServer builds the Echo server with recovery, request logging, JWT auth, and the given handlers.
func NewServer(log *slog.Logger, addr, jwtSecret string,
	hs ...Handler,
) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	e.Use(auth.JWTMiddleware(jwtSecret, publicRoute))

	for _, h := range hs {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{
		echo:   e,
		addr:   addr,
		logger: log.With(slog.String("component", "server")),
	}
}

// publicRoute marks routes reachable without a JWT: liveness, the OAuth
// callback, bot-originated registration/heartbeat, catalog reads, and
// the claim request itself (its identity comes from the auth code).
func publicRoute(c echo.Context) bool {
	path := c.Request().URL.Path
	method := c.Request().Method

	switch path {
	case "/ping", "/health",
		"/api/v1/oauth/feishu/callback",
		"/api/v1/claim/bots/register",
		"/api/v1/claim/request":
		return true
	}
	if method == "POST" && strings.HasPrefix(path, "/api/v1/bots/") && strings.HasSuffix(path, "/heartbeat") {
		return true
	}
	if method == "GET" {
		if path == "/api/v1/bots" {
			return true
		}
		// Single-bot reads are public; nested collections are not.
		if strings.HasPrefix(path, "/api/v1/bots/") && !strings.Contains(strings.TrimPrefix(path, "/api/v1/bots/"), "/") {
			return true
		}
	}
	return false
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
