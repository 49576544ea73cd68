package modules

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/claims"
	"github.com/bothubai/bothub/internal/config"
	dbsqlc "github.com/bothubai/bothub/internal/db/sqlc"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/grants"
	"github.com/bothubai/bothub/internal/notify"
	"github.com/bothubai/bothub/internal/users"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		users.NewService,
		grants.NewService,
		provideFeishuService,
		provideBotsService,
		provideDispatcher,
		provideClaimsService,
	),
)

// ---------------------------------------------------------------------------
// domain service providers (interface adapters)
// ---------------------------------------------------------------------------

func provideFeishuService(log *slog.Logger, cfg config.Config) *feishu.Service {
	return feishu.NewService(log, cfg.Feishu)
}

func provideBotsService(log *slog.Logger, queries *dbsqlc.Queries, cfg config.Config) *bots.Service {
	return bots.NewService(log, queries, cfg.Claim)
}

func provideDispatcher(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, usersSvc *users.Service) *notify.Dispatcher {
	dispatcher := notify.NewDispatcher(log, cfg.Feishu, usersSvc)
	lc.Append(fx.Hook{
		OnStart: dispatcher.Start,
		OnStop:  dispatcher.Stop,
	})
	return dispatcher
}

func provideClaimsService(log *slog.Logger, conn *pgxpool.Pool, queries *dbsqlc.Queries, usersSvc *users.Service, verifier *feishu.Service, dispatcher *notify.Dispatcher) *claims.Service {
	return claims.NewService(log, conn, queries, usersSvc, verifier, dispatcher)
}
