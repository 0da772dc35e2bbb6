package models

import "time"

// IdentityProvider records where an identity was established
type IdentityProvider string

const (
	ProviderLocal  IdentityProvider = "local"
	ProviderHosted IdentityProvider = "hosted"
)

// Identity is the signed-in user every note is scoped to
type Identity struct {
	ID         string           `json:"id"`
	Email      string           `json:"email,omitempty"`
	Provider   IdentityProvider `json:"provider"`
	Token      string           `json:"token,omitempty"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	SignedInAt time.Time        `json:"signed_in_at"`
}

// Expired reports whether the identity's access token has lapsed at now
func (i Identity) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}
