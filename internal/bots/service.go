// Package bots provides the bot registry: self-registration with claim code
// issuance, liveness heartbeats, and metadata CRUD.
package bots

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bothubai/bothub/internal/config"
	"github.com/bothubai/bothub/internal/db"
	"github.com/bothubai/bothub/internal/db/sqlc"
)

const (
	claimCodeBytes    = 15 // base64url encodes to 20 characters
	claimCodeTTL      = 7 * 24 * time.Hour
	maxClaimCodeTries = 5

	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the bot registry.
type Service struct {
	queries  *sqlc.Queries
	claimCfg config.ClaimConfig
	logger   *slog.Logger
}

// NewService creates a bot registry service.
func NewService(log *slog.Logger, queries *sqlc.Queries, claimCfg config.ClaimConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries:  queries,
		claimCfg: claimCfg,
		logger:   log.With(slog.String("service", "bots")),
	}
}

// Register creates an unclaimed bot with a fresh single-use claim code.
// Returns ErrBotConflict when the bot_id is already taken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Registration, error) {
	if s.queries == nil {
		return Registration{}, fmt.Errorf("bot queries not configured")
	}
	botID := strings.TrimSpace(req.BotID)
	if botID == "" {
		return Registration{}, fmt.Errorf("bot id is required")
	}
	botName := strings.TrimSpace(req.BotName)
	if botName == "" {
		return Registration{}, fmt.Errorf("bot name is required")
	}
	capabilities := req.Capabilities
	if capabilities == nil {
		capabilities = map[string]any{}
	}
	payload, err := json.Marshal(capabilities)
	if err != nil {
		return Registration{}, err
	}

	expiresAt := time.Now().UTC().Add(claimCodeTTL)
	for range maxClaimCodeTries {
		code, err := newClaimCode()
		if err != nil {
			return Registration{}, fmt.Errorf("generate claim code: %w", err)
		}
		row, err := s.queries.CreateBot(ctx, sqlc.CreateBotParams{
			BotID:              botID,
			BotName:            botName,
			FeishuAppID:        db.PgText(strings.TrimSpace(req.FeishuAppID)),
			FeishuBotID:        db.PgText(strings.TrimSpace(req.FeishuBotID)),
			Description:        db.PgText(strings.TrimSpace(req.Description)),
			Capabilities:       payload,
			Endpoint:           db.PgText(strings.TrimSpace(req.Endpoint)),
			Version:            db.PgText(strings.TrimSpace(req.Version)),
			ClaimCode:          db.PgText(code),
			ClaimCodeExpiresAt: db.PgTime(expiresAt),
		})
		if err == nil {
			bot, err := toBot(row)
			if err != nil {
				return Registration{}, err
			}
			s.logger.Info("bot registered",
				slog.String("bot_id", bot.BotID),
				slog.Time("claim_code_expires_at", expiresAt),
			)
			return Registration{
				Bot:                bot,
				ClaimCode:          code,
				ClaimURL:           s.claimCfg.ClaimURL(code),
				ClaimCodeExpiresAt: expiresAt,
			}, nil
		}
		switch db.UniqueConstraint(err) {
		case "bots_bot_id_unique":
			return Registration{}, ErrBotConflict
		case "bots_claim_code_unique":
			continue
		}
		return Registration{}, fmt.Errorf("create bot: %w", err)
	}
	return Registration{}, errors.New("create bot: claim code collision after retries")
}

// Heartbeat records a liveness report. Claim-state statuses are rejected:
// unclaimed/claimed transitions belong to the claim engine.
func (s *Service) Heartbeat(ctx context.Context, botID string, req HeartbeatRequest) (Bot, error) {
	if s.queries == nil {
		return Bot{}, fmt.Errorf("bot queries not configured")
	}
	status, err := normalizeLivenessStatus(req.Status)
	if err != nil {
		return Bot{}, err
	}
	existing, err := s.getByBotID(ctx, botID)
	if err != nil {
		return Bot{}, err
	}
	var capabilities []byte
	if req.Capabilities != nil {
		capabilities, err = json.Marshal(req.Capabilities)
		if err != nil {
			return Bot{}, err
		}
	}
	row, err := s.queries.UpdateBotHeartbeat(ctx, sqlc.UpdateBotHeartbeatParams{
		ID:           existing.ID,
		Status:       status,
		Capabilities: capabilities,
		Version:      db.PgText(strings.TrimSpace(req.Version)),
	})
	if err != nil {
		return Bot{}, err
	}
	return toBot(row)
}

// Get returns a bot by its external bot_id.
func (s *Service) Get(ctx context.Context, botID string) (Bot, error) {
	if s.queries == nil {
		return Bot{}, fmt.Errorf("bot queries not configured")
	}
	row, err := s.getByBotID(ctx, botID)
	if err != nil {
		return Bot{}, err
	}
	return toBot(row)
}

// List returns a filtered, paginated bot listing.
func (s *Service) List(ctx context.Context, filter ListFilter) (Page, error) {
	if s.queries == nil {
		return Page{}, fmt.Errorf("bot queries not configured")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var pgOwner pgtype.UUID
	if strings.TrimSpace(filter.OwnerID) != "" {
		parsed, err := db.ParseUUID(filter.OwnerID)
		if err != nil {
			return Page{}, err
		}
		pgOwner = parsed
	}
	status := db.PgText(strings.TrimSpace(filter.Status))
	search := db.PgText(strings.TrimSpace(filter.Search))

	total, err := s.queries.CountBots(ctx, sqlc.CountBotsParams{
		Status:  status,
		OwnerID: pgOwner,
		Search:  search,
	})
	if err != nil {
		return Page{}, err
	}
	rows, err := s.queries.ListBots(ctx, sqlc.ListBotsParams{
		Status:     status,
		OwnerID:    pgOwner,
		Search:     search,
		PageLimit:  int32(pageSize),
		PageOffset: int32((page - 1) * pageSize),
	})
	if err != nil {
		return Page{}, err
	}
	items := make([]Bot, 0, len(rows))
	for _, row := range rows {
		item, err := toBot(row)
		if err != nil {
			return Page{}, err
		}
		items = append(items, item)
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	}, nil
}

// Update mutates display metadata. Status, owner, and claim fields are
// claim-engine-owned and not touched here.
func (s *Service) Update(ctx context.Context, botID string, req UpdateRequest) (Bot, error) {
	if s.queries == nil {
		return Bot{}, fmt.Errorf("bot queries not configured")
	}
	existing, err := s.getByBotID(ctx, botID)
	if err != nil {
		return Bot{}, err
	}
	botName := existing.BotName
	description := db.TextToString(existing.Description)
	avatarURL := db.TextToString(existing.AvatarUrl)
	endpoint := db.TextToString(existing.Endpoint)
	version := db.TextToString(existing.Version)
	capabilities := existing.Capabilities
	if req.BotName != nil {
		botName = strings.TrimSpace(*req.BotName)
	}
	if botName == "" {
		return Bot{}, fmt.Errorf("bot name is required")
	}
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	if req.AvatarURL != nil {
		avatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Endpoint != nil {
		endpoint = strings.TrimSpace(*req.Endpoint)
	}
	if req.Version != nil {
		version = strings.TrimSpace(*req.Version)
	}
	if req.Capabilities != nil {
		capabilities, err = json.Marshal(req.Capabilities)
		if err != nil {
			return Bot{}, err
		}
	}
	row, err := s.queries.UpdateBotProfile(ctx, sqlc.UpdateBotProfileParams{
		ID:           existing.ID,
		BotName:      botName,
		Description:  db.PgText(description),
		AvatarUrl:    db.PgText(avatarURL),
		Endpoint:     db.PgText(endpoint),
		Version:      db.PgText(version),
		Capabilities: capabilities,
	})
	if err != nil {
		return Bot{}, err
	}
	return toBot(row)
}

// SetAvatar stores the bot's avatar URL.
func (s *Service) SetAvatar(ctx context.Context, botID, avatarURL string) (Bot, error) {
	if s.queries == nil {
		return Bot{}, fmt.Errorf("bot queries not configured")
	}
	existing, err := s.getByBotID(ctx, botID)
	if err != nil {
		return Bot{}, err
	}
	row, err := s.queries.SetBotAvatar(ctx, sqlc.SetBotAvatarParams{
		ID:        existing.ID,
		AvatarUrl: db.PgText(strings.TrimSpace(avatarURL)),
	})
	if err != nil {
		return Bot{}, err
	}
	return toBot(row)
}

// Delete removes a bot.
func (s *Service) Delete(ctx context.Context, botID string) error {
	if s.queries == nil {
		return fmt.Errorf("bot queries not configured")
	}
	existing, err := s.getByBotID(ctx, botID)
	if err != nil {
		return err
	}
	return s.queries.DeleteBotByID(ctx, existing.ID)
}

func (s *Service) getByBotID(ctx context.Context, botID string) (sqlc.Bot, error) {
	row, err := s.queries.GetBotByBotID(ctx, strings.TrimSpace(botID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlc.Bot{}, ErrBotNotFound
		}
		return sqlc.Bot{}, err
	}
	return row, nil
}

func newClaimCode() (string, error) {
	buf := make([]byte, claimCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func normalizeLivenessStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case StatusOnline, StatusOffline, StatusBusy, StatusError:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

func toBot(row sqlc.Bot) (Bot, error) {
	capabilities, err := decodeCapabilities(row.Capabilities)
	if err != nil {
		return Bot{}, err
	}
	bot := Bot{
		ID:                 row.ID.String(),
		BotID:              row.BotID,
		BotName:            row.BotName,
		FeishuAppID:        db.TextToString(row.FeishuAppID),
		FeishuBotID:        db.TextToString(row.FeishuBotID),
		Description:        db.TextToString(row.Description),
		AvatarURL:          db.TextToString(row.AvatarUrl),
		Status:             row.Status,
		Capabilities:       capabilities,
		Endpoint:           db.TextToString(row.Endpoint),
		Version:            db.TextToString(row.Version),
		ClaimCode:          db.TextToString(row.ClaimCode),
		ClaimCodeExpiresAt: db.TimeFromPg(row.ClaimCodeExpiresAt),
		CreatedAt:          db.TimeFromPg(row.CreatedAt),
		UpdatedAt:          db.TimeFromPg(row.UpdatedAt),
		ClaimedAt:          db.TimeFromPg(row.ClaimedAt),
		LastHeartbeatAt:    db.TimeFromPg(row.LastHeartbeatAt),
	}
	if row.OwnerID.Valid {
		bot.OwnerID = row.OwnerID.String()
	}
	return bot, nil
}

func decodeCapabilities(payload []byte) (map[string]any, error) {
	if len(payload) == 0 {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
