package feishu

// Relationship kind constants: owner, admin, or no relationship.
const (
	RelationshipOwner = "owner"
	RelationshipAdmin = "admin"
	RelationshipNone  = "none"
)

// Identity is a Feishu user resolved from an OAuth authorization code.
type Identity struct {
	UserID    string `json:"user_id"`
	OpenID    string `json:"open_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Relationship is the outcome of a bot-app ownership check. Verified=false
// means the check could not be completed (upstream error), not a denial;
// Evidence carries the diagnostic payload either way.
type Relationship struct {
	IsOwnerOrAdmin bool           `json:"is_owner_or_admin"`
	Kind           string         `json:"kind"`
	Verified       bool           `json:"verified"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}
