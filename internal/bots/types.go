package bots

import (
	"errors"
	"time"
)

// Bot status values. Unclaimed and claimed belong to the claim state machine;
// the rest are liveness statuses reported by heartbeats.
const (
	StatusUnclaimed = "unclaimed"
	StatusClaimed   = "claimed"
	StatusOffline   = "offline"
	StatusOnline    = "online"
	StatusBusy      = "busy"
	StatusError     = "error"
)

// Errors returned by registry operations.
var (
	ErrBotNotFound   = errors.New("bot not found")
	ErrBotConflict   = errors.New("bot id already exists")
	ErrInvalidStatus = errors.New("invalid bot status")
)

// Bot is a registered bot.
type Bot struct {
	ID                 string         `json:"id"`
	BotID              string         `json:"bot_id"`
	BotName            string         `json:"bot_name"`
	FeishuAppID        string         `json:"feishu_app_id,omitempty"`
	FeishuBotID        string         `json:"feishu_bot_id,omitempty"`
	OwnerID            string         `json:"owner_id,omitempty"`
	Description        string         `json:"description,omitempty"`
	AvatarURL          string         `json:"avatar_url,omitempty"`
	Status             string         `json:"status"`
	Capabilities       map[string]any `json:"capabilities"`
	Endpoint           string         `json:"endpoint,omitempty"`
	Version            string         `json:"version,omitempty"`
	ClaimCode          string         `json:"-"`
	ClaimCodeExpiresAt time.Time      `json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	ClaimedAt          time.Time      `json:"claimed_at,omitzero"`
	LastHeartbeatAt    time.Time      `json:"last_heartbeat_at,omitzero"`
}

// RegisterRequest is the input for bot self-registration.
type RegisterRequest struct {
	BotID        string         `json:"bot_id"`
	BotName      string         `json:"bot_name"`
	FeishuAppID  string         `json:"feishu_app_id,omitempty"`
	FeishuBotID  string         `json:"feishu_bot_id,omitempty"`
	Description  string         `json:"description,omitempty"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
	Endpoint     string         `json:"endpoint,omitempty"`
	Version      string         `json:"version,omitempty"`
}

// Registration is the result of bot self-registration, including the one-time
// claim code and its shareable URL.
type Registration struct {
	Bot                Bot       `json:"bot"`
	ClaimCode          string    `json:"claim_code"`
	ClaimURL           string    `json:"claim_url"`
	ClaimCodeExpiresAt time.Time `json:"claim_code_expires_at"`
}

// HeartbeatRequest updates a bot's liveness status.
type HeartbeatRequest struct {
	Status       string         `json:"status"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
	Version      string         `json:"version,omitempty"`
}

// UpdateRequest mutates display metadata only. Claim-owned fields (status,
// owner, claim code, claimed_at) are not reachable through this path.
type UpdateRequest struct {
	BotName      *string        `json:"bot_name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	AvatarURL    *string        `json:"avatar_url,omitempty"`
	Endpoint     *string        `json:"endpoint,omitempty"`
	Version      *string        `json:"version,omitempty"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// ListFilter selects bots for listing.
type ListFilter struct {
	Status   string
	OwnerID  string
	Search   string
	Page     int
	PageSize int
}

// Page is a paginated bot listing.
type Page struct {
	Items    []Bot `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int   `json:"pages"`
}
