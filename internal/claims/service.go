package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bothubai/bothub/internal/bots"
	"github.com/bothubai/bothub/internal/db"
	"github.com/bothubai/bothub/internal/db/sqlc"
	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/grants"
	"github.com/bothubai/bothub/internal/users"
)

// requestTTL bounds how long a pending request stays decidable.
const requestTTL = 30 * 24 * time.Hour

// Service runs the claim workflow. Identity resolution and ownership
// verification talk to Feishu before any transaction starts; the state
// transition itself happens under a row lock so concurrent claims on
// the same bot serialize.
type Service struct {
	pool     *pgxpool.Pool
	queries  *sqlc.Queries
	users    *users.Service
	verifier Verifier
	notifier Notifier
	logger   *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool, queries *sqlc.Queries, usersSvc *users.Service, verifier Verifier, notifier Notifier) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:     pool,
		queries:  queries,
		users:    usersSvc,
		verifier: verifier,
		notifier: notifier,
		logger:   log.With(slog.String("service", "claims")),
	}
}

// Create starts a claim on behalf of whoever the auth code resolves to.
// A claim-code request claims ownership and completes immediately; a
// bot-id request records a pending hire or share request for the owner
// to decide.
func (s *Service) Create(ctx context.Context, in CreateRequest) (Request, error) {
	if in.AuthCode == "" {
		return Request{}, fmt.Errorf("%w: auth_code is required", ErrInvalidInput)
	}

	ident, err := s.verifier.ResolveIdentity(ctx, in.AuthCode)
	if err != nil {
		return Request{}, err
	}
	requester, err := s.users.UpsertFromIdentity(ctx, ident)
	if err != nil {
		return Request{}, err
	}
	requesterUUID, err := db.ParseUUID(requester.ID)
	if err != nil {
		return Request{}, err
	}

	now := time.Now().UTC()

	var (
		claimType string
		botRow    sqlc.Bot
	)
	switch {
	case in.ClaimCode != "":
		claimType = TypeOwner
		botRow, err = s.queries.GetUnclaimedBotByClaimCode(ctx, db.PgText(in.ClaimCode))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Request{}, ErrCodeNotFound
			}
			return Request{}, err
		}
		if codeExpired(botRow, now) {
			return Request{}, ErrCodeExpired
		}
	case in.BotID != "":
		claimType, err = accessClaimType(in.ClaimType)
		if err != nil {
			return Request{}, err
		}
		botRow, err = s.queries.GetBotByBotID(ctx, in.BotID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Request{}, bots.ErrBotNotFound
			}
			return Request{}, err
		}
		if botRow.Status == bots.StatusUnclaimed {
			return Request{}, fmt.Errorf("%w: bot is unclaimed, use its claim code", ErrInvalidState)
		}
	default:
		return Request{}, fmt.Errorf("%w: claim_code or bot_id is required", ErrInvalidInput)
	}

	verified, ownerOrAdmin, evidence := s.verifyRequester(ctx, botRow, ident)
	if claimType == TypeOwner && db.TextToString(botRow.FeishuAppID) != "" && !(verified && ownerOrAdmin) {
		return Request{}, fmt.Errorf("%w: requester is not an owner or admin of the bot's Feishu app", ErrForbidden)
	}
	verificationData, err := json.Marshal(evidence)
	if err != nil {
		return Request{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	var row sqlc.ClaimRequest
	if claimType == TypeOwner {
		locked, err := qtx.GetUnclaimedBotByClaimCodeForUpdate(ctx, db.PgText(in.ClaimCode))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Claimed out from under us between the read and the lock.
				return Request{}, ErrCodeNotFound
			}
			return Request{}, err
		}
		if codeExpired(locked, now) {
			return Request{}, ErrCodeExpired
		}
		botRow = locked

		row, err = qtx.CreateClaimRequest(ctx, sqlc.CreateClaimRequestParams{
			BotID:                  locked.ID,
			RequesterID:            requesterUUID,
			ClaimType:              TypeOwner,
			Status:                 StatusApproved,
			Message:                db.PgText(in.Message),
			FeishuVerified:         verified,
			FeishuVerificationData: verificationData,
			ApprovedBy:             requesterUUID,
			ApprovedAt:             db.PgTime(now),
			ExpiresAt:              db.PgTime(now.Add(requestTTL)),
		})
		if err != nil {
			return Request{}, err
		}
		if _, err := qtx.ClaimBot(ctx, sqlc.ClaimBotParams{ID: locked.ID, OwnerID: requesterUUID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Request{}, fmt.Errorf("%w: bot is no longer claimable", ErrInvalidState)
			}
			return Request{}, err
		}
	} else {
		locked, err := qtx.GetBotByIDForUpdate(ctx, botRow.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Request{}, bots.ErrBotNotFound
			}
			return Request{}, err
		}
		if locked.Status == bots.StatusUnclaimed {
			return Request{}, fmt.Errorf("%w: bot is unclaimed, use its claim code", ErrInvalidState)
		}
		botRow = locked

		row, err = qtx.CreateClaimRequest(ctx, sqlc.CreateClaimRequestParams{
			BotID:                  locked.ID,
			RequesterID:            requesterUUID,
			ClaimType:              claimType,
			Status:                 StatusPending,
			Message:                db.PgText(in.Message),
			FeishuVerified:         verified,
			FeishuVerificationData: verificationData,
			ExpiresAt:              db.PgTime(now.Add(requestTTL)),
		})
		if err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	req := toRequest(row, botRow.BotName, &requester, now)
	s.logger.Info("claim request created",
		slog.String("request_id", req.ID),
		slog.String("bot_id", req.BotID),
		slog.String("claim_type", req.ClaimType),
		slog.String("status", req.Status),
		slog.String("requester_id", req.RequesterID))

	if claimType != TypeOwner && s.notifier != nil && botRow.OwnerID.Valid {
		s.notifier.ClaimRequested(req, botRow.OwnerID.String())
	}
	return req, nil
}

// Decide approves or rejects a pending request. Only the bot owner may
// decide. Approval creates the access grant in the same transaction so
// an approved request without a grant cannot be observed.
func (s *Service) Decide(ctx context.Context, deciderUserID, requestID string, d Decision) (Request, error) {
	requestUUID, err := db.ParseUUID(requestID)
	if err != nil {
		return Request{}, ErrRequestNotFound
	}
	deciderUUID, err := db.ParseUUID(deciderUserID)
	if err != nil {
		return Request{}, fmt.Errorf("%w: bad decider id", ErrInvalidInput)
	}

	now := time.Now().UTC()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, err
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	row, err := qtx.GetClaimRequestForUpdate(ctx, requestUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, err
	}
	botRow, err := qtx.GetBotByID(ctx, row.BotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, bots.ErrBotNotFound
		}
		return Request{}, err
	}
	if !botRow.OwnerID.Valid || botRow.OwnerID.String() != deciderUserID {
		return Request{}, fmt.Errorf("%w: only the bot owner may decide", ErrForbidden)
	}
	if row.Status != StatusPending {
		return Request{}, fmt.Errorf("%w: request is %s", ErrInvalidState, row.Status)
	}
	if row.ExpiresAt.Valid && row.ExpiresAt.Time.Before(now) {
		return Request{}, fmt.Errorf("%w: request has expired", ErrInvalidState)
	}

	// Rejection records only the status and message; the approval
	// columns stay null.
	decideParams := sqlc.DecideClaimRequestParams{
		ID:              requestUUID,
		Status:          StatusRejected,
		ApprovalMessage: db.PgText(d.Message),
	}
	if d.Approve {
		decideParams.Status = StatusApproved
		decideParams.ApprovedBy = deciderUUID
		decideParams.ApprovedAt = db.PgTime(now)
	}
	decided, err := qtx.DecideClaimRequest(ctx, decideParams)
	if err != nil {
		return Request{}, err
	}

	if d.Approve {
		perms, err := json.Marshal(grants.DefaultPermissions(row.ClaimType))
		if err != nil {
			return Request{}, err
		}
		if _, err := qtx.CreateBotAccessGrant(ctx, sqlc.CreateBotAccessGrantParams{
			BotID:       row.BotID,
			UserID:      row.RequesterID,
			AccessType:  row.ClaimType,
			Permissions: perms,
			ValidFrom:   db.PgTime(now),
		}); err != nil {
			return Request{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}

	var requesterProfile *users.User
	if profile, err := s.users.Get(ctx, decided.RequesterID.String()); err == nil {
		requesterProfile = &profile
	}
	req := toRequest(decided, botRow.BotName, requesterProfile, now)
	s.logger.Info("claim request decided",
		slog.String("request_id", req.ID),
		slog.String("status", req.Status),
		slog.String("decided_by", deciderUserID))

	if s.notifier != nil {
		s.notifier.ClaimDecided(req)
	}
	return req, nil
}

// Get returns a request. Visible to its requester and to the owner of
// the bot it targets.
func (s *Service) Get(ctx context.Context, actorUserID, requestID string) (Request, error) {
	requestUUID, err := db.ParseUUID(requestID)
	if err != nil {
		return Request{}, ErrRequestNotFound
	}
	row, err := s.queries.GetClaimRequest(ctx, requestUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, err
	}
	botRow, err := s.queries.GetBotByID(ctx, row.BotID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Request{}, err
	}
	isRequester := row.RequesterID.String() == actorUserID
	isOwner := botRow.OwnerID.Valid && botRow.OwnerID.String() == actorUserID
	if !isRequester && !isOwner {
		return Request{}, fmt.Errorf("%w: not your request", ErrForbidden)
	}
	var requesterProfile *users.User
	if profile, err := s.users.Get(ctx, row.RequesterID.String()); err == nil {
		requesterProfile = &profile
	}
	return toRequest(row, botRow.BotName, requesterProfile, time.Now().UTC()), nil
}

// ListForBot returns every request targeting the bot. Owner only.
func (s *Service) ListForBot(ctx context.Context, actorUserID, botRowID string) ([]Request, error) {
	botUUID, err := db.ParseUUID(botRowID)
	if err != nil {
		return nil, bots.ErrBotNotFound
	}
	botRow, err := s.queries.GetBotByID(ctx, botUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bots.ErrBotNotFound
		}
		return nil, err
	}
	if !botRow.OwnerID.Valid || botRow.OwnerID.String() != actorUserID {
		return nil, fmt.Errorf("%w: only the bot owner may list its claim requests", ErrForbidden)
	}
	rows, err := s.queries.ListClaimRequestsByBot(ctx, botUUID)
	if err != nil {
		return nil, err
	}
	return s.toRequests(ctx, rows, botRow.BotName), nil
}

// ListMine returns the caller's own claim requests, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Request, error) {
	userUUID, err := db.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.queries.ListClaimRequestsByRequester(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	botNames := map[string]string{}
	out := make([]Request, 0, len(rows))
	for _, row := range rows {
		key := row.BotID.String()
		name, ok := botNames[key]
		if !ok {
			if botRow, err := s.queries.GetBotByID(ctx, row.BotID); err == nil {
				name = botRow.BotName
			}
			botNames[key] = name
		}
		out = append(out, toRequest(row, name, nil, now))
	}
	return out, nil
}

func (s *Service) toRequests(ctx context.Context, rows []sqlc.ClaimRequest, botName string) []Request {
	now := time.Now().UTC()
	profiles := map[string]*users.User{}
	out := make([]Request, 0, len(rows))
	for _, row := range rows {
		key := row.RequesterID.String()
		profile, ok := profiles[key]
		if !ok {
			if p, err := s.users.Get(ctx, key); err == nil {
				profile = &p
			}
			profiles[key] = profile
		}
		out = append(out, toRequest(row, botName, profile, now))
	}
	return out
}

// verifyRequester checks the requester against the bot's Feishu app.
// The first result is whether the check reached a conclusive answer
// and is what gets recorded on the request; the second is whether the
// requester administers the app. Bots registered without an app
// binding are trivially verified.
func (s *Service) verifyRequester(ctx context.Context, botRow sqlc.Bot, ident feishu.Identity) (bool, bool, map[string]any) {
	appID := db.TextToString(botRow.FeishuAppID)
	if appID == "" {
		return true, true, map[string]any{"note": "bot has no feishu app binding"}
	}
	rel := s.verifier.VerifyRelationship(ctx, appID, ident.UserID)
	if rel.Evidence == nil {
		rel.Evidence = map[string]any{}
	}
	return rel.Verified, rel.IsOwnerOrAdmin, rel.Evidence
}

func accessClaimType(raw string) (string, error) {
	switch raw {
	case TypeHire, TypeShare:
		return raw, nil
	case TypeOwner:
		return "", fmt.Errorf("%w: ownership claims require a claim code", ErrInvalidInput)
	case "":
		return "", fmt.Errorf("%w: claim_type is required", ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: unknown claim type %q", ErrInvalidInput, raw)
	}
}

func codeExpired(row sqlc.Bot, now time.Time) bool {
	return row.ClaimCodeExpiresAt.Valid && row.ClaimCodeExpiresAt.Time.Before(now)
}

func toRequest(row sqlc.ClaimRequest, botName string, requester *users.User, now time.Time) Request {
	status := row.Status
	if status == StatusPending && row.ExpiresAt.Valid && row.ExpiresAt.Time.Before(now) {
		status = StatusExpired
	}
	req := Request{
		ID:              row.ID.String(),
		BotID:           row.BotID.String(),
		BotName:         botName,
		RequesterID:     row.RequesterID.String(),
		Requester:       requester,
		ClaimType:       row.ClaimType,
		Status:          status,
		Message:         db.TextToString(row.Message),
		FeishuVerified:  row.FeishuVerified,
		ApprovalMessage: db.TextToString(row.ApprovalMessage),
		CreatedAt:       db.TimeFromPg(row.CreatedAt),
		UpdatedAt:       db.TimeFromPg(row.UpdatedAt),
	}
	if len(row.FeishuVerificationData) > 0 {
		_ = json.Unmarshal(row.FeishuVerificationData, &req.Verification)
	}
	if row.ApprovedBy.Valid {
		req.ApprovedBy = row.ApprovedBy.String()
	}
	if row.ApprovedAt.Valid {
		t := row.ApprovedAt.Time
		req.ApprovedAt = &t
	}
	if row.ExpiresAt.Valid {
		t := row.ExpiresAt.Time
		req.ExpiresAt = &t
	}
	return req
}
