package modules

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/bothubai/bothub/internal/config"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/handlers"
	"github.com/bothubai/bothub/internal/server"
	"github.com/bothubai/bothub/internal/users"
)

var HandlersModule = fx.Module(
	"handlers",
	fx.Provide(
		annotateHandler(handlers.NewPingHandler),
		annotateHandler(handlers.NewBotsHandler),
		annotateHandler(handlers.NewClaimsHandler),
		annotateHandler(handlers.NewGrantsHandler),
		annotateHandler(handlers.NewUsersHandler),
		annotateHandler(provideOAuthHandler),
	),
)

// annotateHandler wraps a handler provider function with fx.Annotate
// to register it as a server.Handler with the correct group tag
func annotateHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

// ---------------------------------------------------------------------------
// handler providers (config extraction)
// ---------------------------------------------------------------------------

func provideOAuthHandler(log *slog.Logger, verifier *feishu.Service, usersSvc *users.Service, cfg config.Config) *handlers.OAuthHandler {
	return handlers.NewOAuthHandler(log, verifier, usersSvc, cfg.Auth)
}
