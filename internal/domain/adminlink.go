package domain

import "time"

const AdminLinkTTL = 15 * time.Minute

// AdminLink grants a simulator admin console access to one event until ExpiresAt.
type AdminLink struct {
	EventCode string    `json:"event_code"`
	Token     string    `json:"admin_token"`
	URL       string    `json:"admin_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminLinkClaims is what a verified admin token proves.
type AdminLinkClaims struct {
	EventCode   string `json:"event_code"`
	AdminUserID string `json:"admin_user_id"`
}
