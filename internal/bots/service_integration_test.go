package bots

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	migrationsdb "github.com/bothubai/bothub/db"
	"github.com/bothubai/bothub/internal/config"
	"github.com/bothubai/bothub/internal/db/sqlc"
)

func testService(t *testing.T) *Service {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	source, err := fs.Sub(migrationsdb.MigrationsFS, "migrations")
	if err != nil {
		t.Fatalf("migrations fs: %v", err)
	}
	driver, err := iofs.New(source, ".")
	if err != nil {
		t.Fatalf("migration source: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", driver, dsn)
	if err != nil {
		t.Fatalf("migrate init: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("migrate up: %v", err)
	}
	m.Close()

	pool, err := pgxpool.New(t.Context(), dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return NewService(nil, sqlc.New(pool), config.ClaimConfig{FrontendURL: "http://localhost:3000"})
}

func TestRegisterAndHeartbeat(t *testing.T) {
	svc := testService(t)
	botID := "bot-" + uuid.NewString()

	reg, err := svc.Register(t.Context(), RegisterRequest{
		BotID:        botID,
		BotName:      "Lifecycle Bot",
		Capabilities: map[string]any{"chat": true},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Bot.Status != StatusUnclaimed {
		t.Fatalf("fresh bot status = %s, want unclaimed", reg.Bot.Status)
	}
	if len(reg.ClaimCode) != 20 {
		t.Fatalf("claim code length = %d", len(reg.ClaimCode))
	}
	if reg.ClaimURL == "" {
		t.Fatal("claim url missing")
	}

	// Duplicate bot_id conflicts.
	if _, err := svc.Register(t.Context(), RegisterRequest{BotID: botID, BotName: "Dup"}); !errors.Is(err, ErrBotConflict) {
		t.Fatalf("duplicate register: err = %v, want ErrBotConflict", err)
	}

	// Heartbeat moves the bot to a liveness status and stamps the time.
	bot, err := svc.Heartbeat(t.Context(), botID, HeartbeatRequest{Status: "online", Version: "1.2.0"})
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if bot.Status != StatusOnline || bot.Version != "1.2.0" {
		t.Fatalf("after heartbeat: %+v", bot)
	}
	if bot.LastHeartbeatAt.IsZero() {
		t.Fatal("last_heartbeat_at not set")
	}

	// Claim-state statuses are not reachable through heartbeats.
	if _, err := svc.Heartbeat(t.Context(), botID, HeartbeatRequest{Status: "claimed"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("claimed heartbeat: err = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateAndList(t *testing.T) {
	svc := testService(t)
	botID := "bot-" + uuid.NewString()

	if _, err := svc.Register(t.Context(), RegisterRequest{BotID: botID, BotName: "Searchable Bot"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	newName := "Renamed Bot"
	desc := "updated description"
	bot, err := svc.Update(t.Context(), botID, UpdateRequest{BotName: &newName, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if bot.BotName != newName || bot.Description != desc {
		t.Fatalf("after update: %+v", bot)
	}
	// Update never touches claim state.
	if bot.Status != StatusUnclaimed {
		t.Fatalf("update changed status to %s", bot.Status)
	}

	page, err := svc.List(t.Context(), ListFilter{Search: "Renamed", Status: StatusUnclaimed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, item := range page.Items {
		if item.BotID == botID {
			found = true
			if item.ClaimCode != "" {
				t.Fatal("claim code must not leak through listings")
			}
		}
	}
	if !found {
		t.Fatalf("bot %s not found via search, total=%d", botID, page.Total)
	}

	if err := svc.Delete(t.Context(), botID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(t.Context(), botID); !errors.Is(err, ErrBotNotFound) {
		t.Fatalf("get deleted: err = %v, want ErrBotNotFound", err)
	}
}
