// Package users manages user records keyed by Feishu identity.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bothubai/bothub/internal/db"
	"github.com/bothubai/bothub/internal/db/sqlc"
	"github.com/bothubai/bothub/internal/feishu"
)

// ErrUserNotFound is returned when a user lookup finds no row.
var ErrUserNotFound = errors.New("user not found")

// Service provides user lookup and identity-driven upsert.
type Service struct {
	queries *sqlc.Queries
	logger  *slog.Logger
}

// NewService creates a users service.
func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "users")),
	}
}

// Get returns a user by internal ID.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	if s.queries == nil {
		return User{}, fmt.Errorf("user queries not configured")
	}
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return User{}, err
	}
	row, err := s.queries.GetUserByID(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return toUser(row), nil
}

// GetByFeishuUserID returns a user by their stable Feishu user ID.
func (s *Service) GetByFeishuUserID(ctx context.Context, feishuUserID string) (User, error) {
	if s.queries == nil {
		return User{}, fmt.Errorf("user queries not configured")
	}
	row, err := s.queries.GetUserByFeishuUserID(ctx, strings.TrimSpace(feishuUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return toUser(row), nil
}

// UpsertFromIdentity creates the user for a resolved Feishu identity, or
// refreshes the stored profile when the user already exists.
func (s *Service) UpsertFromIdentity(ctx context.Context, ident feishu.Identity) (User, error) {
	if s.queries == nil {
		return User{}, fmt.Errorf("user queries not configured")
	}
	feishuUserID := strings.TrimSpace(ident.UserID)
	if feishuUserID == "" {
		return User{}, fmt.Errorf("feishu user id is required")
	}
	name := strings.TrimSpace(ident.Name)
	if name == "" {
		name = feishuUserID
	}

	existing, err := s.queries.GetUserByFeishuUserID(ctx, feishuUserID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return User{}, err
		}
		row, err := s.queries.CreateUser(ctx, sqlc.CreateUserParams{
			FeishuUserID: feishuUserID,
			FeishuOpenID: db.PgText(strings.TrimSpace(ident.OpenID)),
			Name:         name,
			Email:        db.PgText(strings.TrimSpace(ident.Email)),
			AvatarUrl:    db.PgText(strings.TrimSpace(ident.AvatarURL)),
		})
		if err != nil {
			// A concurrent callback may have created the row first.
			if db.IsUniqueViolation(err) {
				return s.GetByFeishuUserID(ctx, feishuUserID)
			}
			return User{}, err
		}
		s.logger.Info("user created", slog.String("user_id", row.ID.String()))
		return toUser(row), nil
	}

	row, err := s.queries.UpdateUserProfile(ctx, sqlc.UpdateUserProfileParams{
		ID:           existing.ID,
		FeishuOpenID: db.PgText(strings.TrimSpace(ident.OpenID)),
		Name:         name,
		Email:        db.PgText(strings.TrimSpace(ident.Email)),
		AvatarUrl:    db.PgText(strings.TrimSpace(ident.AvatarURL)),
	})
	if err != nil {
		return User{}, err
	}
	return toUser(row), nil
}

func toUser(row sqlc.User) User {
	return User{
		ID:           row.ID.String(),
		FeishuUserID: row.FeishuUserID,
		FeishuOpenID: db.TextToString(row.FeishuOpenID),
		Name:         row.Name,
		Email:        db.TextToString(row.Email),
		AvatarURL:    db.TextToString(row.AvatarUrl),
		CreatedAt:    db.TimeFromPg(row.CreatedAt),
		UpdatedAt:    db.TimeFromPg(row.UpdatedAt),
	}
}
