package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/pkg/mailer"
)

// Mailer hands an email job to the delivery pipeline.
type Mailer interface {
	Send(ctx context.Context, job mailer.EmailJob) error
}

// ImageStore keeps product images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
	Role   entity.Role
}

func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

// CodePurpose selects where a verification code is stored.
type CodePurpose string

const (
	PurposeSignup CodePurpose = "signup"
	PurposeReset  CodePurpose = "reset"
)
