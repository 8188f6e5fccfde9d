package model

import "time"

// OAuthToken stores platform OAuth credentials per user. Token issuance
// happens outside this service; we only look tokens up to call the
// upstream APIs on the owner's behalf.
type OAuthToken struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     string     `json:"platform"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       string     `json:"scopes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
