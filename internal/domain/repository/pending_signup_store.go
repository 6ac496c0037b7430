package repository

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// PendingSignupStore keeps at most one pending signup per email. Records
// disappear on their own at ExpiresAt.
type PendingSignupStore interface {
	// Upsert replaces any record for p.Email.
	Upsert(ctx context.Context, p *entity.PendingSignup) error
	Get(ctx context.Context, email string) (*entity.PendingSignup, error)
	// GetByUsername resolves a reserved username to its pending record.
	GetByUsername(ctx context.Context, username string) (*entity.PendingSignup, error)
	Delete(ctx context.Context, email string) error
}

// SessionStore holds the active session id per user.
type SessionStore interface {
	Save(ctx context.Context, s entity.Session) error
	Get(ctx context.Context, userID string) (*entity.Session, error)
	Delete(ctx context.Context, userID string) error
}
