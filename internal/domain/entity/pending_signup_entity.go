package entity

import "time"

// PendingSignup is a registration awaiting code confirmation. It is keyed by
// the lowercased email and expires at ExpiresAt.
type PendingSignup struct {
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Expired reports whether the code can no longer be used at now.
func (p *PendingSignup) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
