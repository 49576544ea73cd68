package grants

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/db"
	"github.com/bothubai/bothub/internal/db/sqlc"
)

// Service reads and revokes bot access grants. Grants are created by
// the claim engine when a hire or share request is approved.
type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "grants")),
	}
}

// ListForBot returns every grant ever issued for the bot, active and
// revoked alike. Only the bot owner may call this.
func (s *Service) ListForBot(ctx context.Context, actorUserID, botRowID string) ([]Grant, error) {
	botUUID, err := db.ParseUUID(botRowID)
	if err != nil {
		return nil, bots.ErrBotNotFound
	}
	bot, err := s.queries.GetBotByID(ctx, botUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bots.ErrBotNotFound
		}
		return nil, err
	}
	if !isOwner(bot, actorUserID) {
		return nil, ErrForbidden
	}
	rows, err := s.queries.ListBotAccessGrantsByBot(ctx, botUUID)
	if err != nil {
		return nil, err
	}
	grants := make([]Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, toGrant(row))
	}
	return grants, nil
}

// ListForUser returns the caller's active grants, i.e. the bots they
// have hired or been given access to.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Grant, error) {
	userUUID, err := db.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListActiveBotAccessGrantsByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	grants := make([]Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, toGrant(row))
	}
	return grants, nil
}

// Revoke deactivates a grant. The actor must own the bot the grant is
// attached to. Revoking an already revoked grant is a no-op that
// returns the grant as is.
func (s *Service) Revoke(ctx context.Context, actorUserID, grantID string) (Grant, error) {
	grantUUID, err := db.ParseUUID(grantID)
	if err != nil {
		return Grant{}, ErrGrantNotFound
	}
	row, err := s.queries.GetBotAccessGrant(ctx, grantUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Grant{}, ErrGrantNotFound
		}
		return Grant{}, err
	}
	bot, err := s.queries.GetBotByID(ctx, row.BotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Grant{}, bots.ErrBotNotFound
		}
		return Grant{}, err
	}
	if !isOwner(bot, actorUserID) {
		return Grant{}, ErrForbidden
	}
	if !row.IsActive {
		return toGrant(row), nil
	}
	revoked, err := s.queries.RevokeBotAccessGrant(ctx, grantUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race with another revocation.
			return toGrant(row), nil
		}
		return Grant{}, err
	}
	s.logger.Info("access grant revoked",
		slog.String("grant_id", grantID),
		slog.String("bot_id", row.BotID.String()),
		slog.String("revoked_by", actorUserID))
	return toGrant(revoked), nil
}

func isOwner(bot sqlc.Bot, userID string) bool {
	return bot.OwnerID.Valid && bot.OwnerID.String() == userID
}

func toGrant(row sqlc.BotAccessGrant) Grant {
	var perms Permissions
	if len(row.Permissions) > 0 {
		// Unknown keys are dropped, absent keys default to false.
		_ = json.Unmarshal(row.Permissions, &perms)
	}
	grant := Grant{
		ID:          row.ID.String(),
		BotID:       row.BotID.String(),
		UserID:      row.UserID.String(),
		AccessType:  row.AccessType,
		Permissions: perms,
		IsActive:    row.IsActive,
		ValidFrom:   db.TimeFromPg(row.ValidFrom),
		CreatedAt:   db.TimeFromPg(row.CreatedAt),
	}
	if row.ValidUntil.Valid {
		t := row.ValidUntil.Time
		grant.ValidUntil = &t
	}
	if row.RevokedAt.Valid {
		t := row.RevokedAt.Time
		grant.RevokedAt = &t
	}
	return grant
}
