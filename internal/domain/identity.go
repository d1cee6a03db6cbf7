package domain

// Identity is the caller of a request.
// Verified is false when the id came from the legacy trusted header.
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Verified bool   `json:"verified"`
}

// IdentitySource is one credential presented with a request.
// Implemented by VerifiedSource and LegacyHeaderSource only.
type IdentitySource interface {
	identitySource()
}

// VerifiedSource is a bearer token signed by the identity provider.
type VerifiedSource struct {
	Token string
}

func (VerifiedSource) identitySource() {}

// LegacyHeaderSource is a user id asserted by a trusted upstream through a header.
type LegacyHeaderSource struct {
	UserID string
}

func (LegacyHeaderSource) identitySource() {}

type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}
