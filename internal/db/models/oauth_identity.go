package models

import "time"

// OAuthIdentity is one remote identity at one provider, optionally bound to a
// local user. The pair (ProviderID, ProviderUserID) is unique: a remote
// identity exists at most once, no matter how often its owner signs in.
type OAuthIdentity struct {
	// ID is the unique identifier for the identity row.
	ID uint64 `gorm:"primaryKey"`
	// ProviderID references the OAuthProvider this identity belongs to.
	ProviderID uint64 `gorm:"not null;uniqueIndex:idx_provider_identity"`
	// ProviderUserID is the stable identifier at the remote provider.
	ProviderUserID string `gorm:"size:255;not null;uniqueIndex:idx_provider_identity"`
	// Token is the JSON encoded OAuth2 token last obtained for this identity.
	Token []byte
	// UserID is the bound local user, or nil while the identity is unbound.
	UserID *uint64 `gorm:"index"`
	// User is the bound local user record (populated on preload).
	User *User
	// CreatedAt is the timestamp when the identity was first seen (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the identity was last updated (managed by GORM).
	UpdatedAt time.Time
}

// Bound reports whether the identity is bound to a local user.
func (i *OAuthIdentity) Bound() bool {
	return i.UserID != nil
}
