package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

// DefaultCodeTTL is how long a signup or reset code stays valid.
const DefaultCodeTTL = 10 * time.Minute

// VerificationService issues and checks the 4-digit codes that gate signup
// and password reset. Only the most recently issued code for an email is valid.
type VerificationService struct {
	Users   repo.UserRepository
	Pending repo.PendingSignupStore
	Mail    Mailer
	Cfg     *config.Config
	Logger  *logrus.Logger

	CodeTTL time.Duration
	Now     func() time.Time
	GenCode func() (string, error)
}

func NewVerificationService(users repo.UserRepository, pending repo.PendingSignupStore, mail Mailer, cfg *config.Config, logger *logrus.Logger) *VerificationService {
	ttl := DefaultCodeTTL
	if cfg != nil && cfg.CodeTTL > 0 {
		ttl = cfg.CodeTTL
	}
	return &VerificationService{
		Users:   users,
		Pending: pending,
		Mail:    mail,
		Cfg:     cfg,
		Logger:  logger,
		CodeTTL: ttl,
		Now:     time.Now,
		GenCode: helpers.GenVerificationCode,
	}
}

func (s *VerificationService) newCode() (string, time.Time, error) {
	code, err := s.GenCode()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, s.Now().Add(s.CodeTTL), nil
}

// StartSignup records a pending signup for email and mails its code. A second
// call for the same email overwrites the previous code and expiry.
func (s *VerificationService) StartSignup(ctx context.Context, username, email, password string) (*entity.PendingSignup, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = helpers.NormalizeEmail(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, apperr.Validation("all fields are required")
	}

	exists, err := s.Users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	if other, err := s.Pending.GetByUsername(ctx, username); err == nil && other.Email != email {
		return nil, ErrUserExists
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	code, expiresAt, err := s.newCode()
	if err != nil {
		return nil, err
	}
	p := &entity.PendingSignup{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Code:         code,
		ExpiresAt:    expiresAt,
		CreatedAt:    s.Now(),
	}
	if err := s.Pending.Upsert(ctx, p); err != nil {
		return nil, err
	}
	incr(metricSignupsStarted)
	s.sendSignupCode(ctx, p)
	return p, nil
}

// IssueCode replaces the active code for email and mails it.
func (s *VerificationService) IssueCode(ctx context.Context, email string, purpose CodePurpose) error {
	email = helpers.NormalizeEmail(email)
	switch purpose {
	case PurposeSignup:
		p, err := s.Pending.Get(ctx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPendingSignupNotFound
		}
		if err != nil {
			return err
		}
		if p.Code, p.ExpiresAt, err = s.newCode(); err != nil {
			return err
		}
		if err := s.Pending.Upsert(ctx, p); err != nil {
			return err
		}
		incr(metricCodesIssued)
		s.sendSignupCode(ctx, p)
		return nil

	case PurposeReset:
		u, err := s.Users.GetByEmail(ctx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		code, expiresAt, err := s.newCode()
		if err != nil {
			return err
		}
		if err := s.Users.SetResetCode(ctx, u.ID, code, expiresAt); err != nil {
			return err
		}
		incr(metricCodesIssued)
		data := mailtpl.NewForgotPasswordData(s.Cfg, u.Username, u.Email, code, expiresAt)
		sendBestEffort(ctx, s.Mail, s.Logger, universalJob(u.Email, data))
		return nil
	}
	return apperr.Validation("unknown code purpose")
}

// VerifyCode checks code for email. For signup it promotes the pending record
// into a verified user and returns it; for reset it returns the user and
// leaves the code in place until ResetPassword consumes it.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string, purpose CodePurpose) (*entity.User, error) {
	email = helpers.NormalizeEmail(email)
	switch purpose {
	case PurposeSignup:
		p, err := s.Pending.Get(ctx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPendingSignupNotFound
		}
		if err != nil {
			return nil, err
		}
		if p.Code != code || p.Expired(s.Now()) {
			incr(metricVerifyFailures)
			return nil, ErrInvalidOrExpiredCode
		}
		u := &entity.User{
			Username:        p.Username,
			Email:           p.Email,
			Password:        p.PasswordHash,
			Role:            entity.RoleUser,
			IsEmailVerified: true,
		}
		if err := s.Users.Create(ctx, u); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return nil, ErrUserExists
			}
			return nil, err
		}
		if err := s.Pending.Delete(ctx, email); err != nil {
			// the record still expires on its own
			helpers.LogWarn(s.Logger, "delete pending signup failed", err, logrus.Fields{"email": email})
		}
		incr(metricVerifications)
		return u, nil

	case PurposeReset:
		u, err := s.Users.GetByEmail(ctx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		if u.PasswordResetCode == "" || u.PasswordResetCode != code ||
			u.PasswordResetCodeExpires == nil || s.Now().After(*u.PasswordResetCodeExpires) {
			incr(metricVerifyFailures)
			return nil, ErrInvalidOrExpiredCode
		}
		incr(metricVerifications)
		return u, nil
	}
	return nil, apperr.Validation("unknown code purpose")
}

// ResetPassword verifies a reset code, stores the new password and clears the
// code in the same write. Existing refresh tokens stop working.
func (s *VerificationService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("new password is required")
	}
	u, err := s.VerifyCode(ctx, email, code, PurposeReset)
	if err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Users.ResetPassword(ctx, u.ID, hash)
}

func (s *VerificationService) sendSignupCode(ctx context.Context, p *entity.PendingSignup) {
	data := mailtpl.NewVerifyEmailData(s.Cfg, p.Username, p.Email, p.Code, p.ExpiresAt)
	sendBestEffort(ctx, s.Mail, s.Logger, universalJob(p.Email, data))
}
