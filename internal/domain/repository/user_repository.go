package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

// UserRepository defines the persistence operations on users.
// Create and Update return ErrDuplicate when username or email is taken.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]entity.User, error)
	UpdateAccount(ctx context.Context, id, username, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	SetResetCode(ctx context.Context, id, code string, expires time.Time) error
	// ResetPassword stores hash and clears the reset code pair in one write.
	ResetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// AuditRepository records security relevant account events.
type AuditRepository interface {
	Insert(ctx context.Context, e AuditEntry) error
}

type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}
