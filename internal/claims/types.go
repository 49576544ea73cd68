package claims

import (
	"context"
	"errors"
	"time"

	"github.com/bothubai/bothub/internal/feishu"
	"github.com/bothubai/bothub/internal/users"
)

// Claim types. An owner claim transfers the bot, hire and share only
// grant access.
const (
	TypeOwner = "owner"
	TypeHire  = "hire"
	TypeShare = "share"
)

// Request lifecycle states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

var (
	ErrRequestNotFound = errors.New("claim request not found")
	ErrCodeNotFound    = errors.New("invalid or expired claim code")
	ErrCodeExpired     = errors.New("claim code expired")
	ErrInvalidState    = errors.New("claim request state does not allow this")
	ErrInvalidInput    = errors.New("invalid claim request input")
	ErrForbidden       = errors.New("not allowed to perform this claim action")
)

// Verifier resolves a Feishu login code to an identity and checks
// whether that identity administers a given Feishu application.
type Verifier interface {
	ResolveIdentity(ctx context.Context, authCode string) (feishu.Identity, error)
	VerifyRelationship(ctx context.Context, appID, userID string) feishu.Relationship
}

// Notifier delivers claim lifecycle notices. Implementations must not
// block; delivery is best effort and happens after commit.
type Notifier interface {
	ClaimRequested(req Request, ownerUserID string)
	ClaimDecided(req Request)
}

// CreateRequest starts a claim. Exactly one of ClaimCode and BotID
// identifies the bot; ClaimType is ignored on the code path, which is
// always an ownership claim.
type CreateRequest struct {
	AuthCode  string `json:"auth_code"`
	ClaimCode string `json:"claim_code,omitempty"`
	BotID     string `json:"bot_id,omitempty"`
	ClaimType string `json:"claim_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Decision resolves a pending request.
type Decision struct {
	Approve bool   `json:"approve"`
	Message string `json:"message,omitempty"`
}

type Request struct {
	ID              string         `json:"id"`
	BotID           string         `json:"bot_id"`
	BotName         string         `json:"bot_name,omitempty"`
	RequesterID     string         `json:"requester_id"`
	Requester       *users.User    `json:"requester,omitempty"`
	ClaimType       string         `json:"claim_type"`
	Status          string         `json:"status"`
	Message         string         `json:"message,omitempty"`
	FeishuVerified  bool           `json:"feishu_verified"`
	Verification    map[string]any `json:"feishu_verification_data,omitempty"`
	ApprovedBy      string         `json:"approved_by,omitempty"`
	ApprovalMessage string         `json:"approval_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
}
