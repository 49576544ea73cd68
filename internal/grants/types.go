package grants

import (
	"errors"
	"time"
)

// Access types mirror the claim types that produce them.
const (
	AccessHire  = "hire"
	AccessShare = "share"
)

var (
	ErrGrantNotFound = errors.New("access grant not found")
	ErrForbidden     = errors.New("not allowed to manage this grant")
)

// Permissions is the capability set attached to an access grant.
type Permissions struct {
	CanInvoke         bool `json:"can_invoke"`
	CanViewLogs       bool `json:"can_view_logs"`
	CanModifySettings bool `json:"can_modify_settings"`
}

// DefaultPermissions returns the permission set granted when a claim
// of the given type is approved. Hired bots expose their logs to the
// hirer, shared bots do not.
func DefaultPermissions(accessType string) Permissions {
	return Permissions{
		CanInvoke:         true,
		CanViewLogs:       accessType == AccessHire,
		CanModifySettings: false,
	}
}

type Grant struct {
	ID          string      `json:"id"`
	BotID       string      `json:"bot_id"`
	UserID      string      `json:"user_id"`
	AccessType  string      `json:"access_type"`
	Permissions Permissions `json:"permissions"`
	IsActive    bool        `json:"is_active"`
	ValidFrom   time.Time   `json:"valid_from"`
	ValidUntil  *time.Time  `json:"valid_until,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	RevokedAt   *time.Time  `json:"revoked_at,omitempty"`
}
