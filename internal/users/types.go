package users

import "time"

// User is a human identified by their Feishu account.
type User struct {
	ID           string    `json:"id"`
	FeishuUserID string    `json:"feishu_user_id"`
	FeishuOpenID string    `json:"feishu_open_id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
