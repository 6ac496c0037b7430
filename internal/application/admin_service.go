package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// AdminService manages user accounts from the dashboard.
type AdminService struct {
	Users    repo.UserRepository
	Sessions repo.SessionStore
	Audit    repo.AuditRepository
	Logger   *logrus.Logger
}

func NewAdminService(users repo.UserRepository, sessions repo.SessionStore, audit repo.AuditRepository, logger *logrus.Logger) *AdminService {
	return &AdminService{Users: users, Sessions: sessions, Audit: audit, Logger: logger}
}

func (s *AdminService) ListUsers(ctx context.Context, actor Principal) ([]entity.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

func (s *AdminService) GetUser(ctx context.Context, id string, actor Principal) (*entity.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// DeleteUser removes the account and ends its session. Admins cannot delete
// themselves.
func (s *AdminService) DeleteUser(ctx context.Context, id string, actor Principal) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if id == actor.UserID {
		return apperr.Validation("cannot delete your own account")
	}
	err := s.Users.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Sessions.Delete(ctx, id); err != nil {
		helpers.LogWarn(s.Logger, "delete session failed", err, logrus.Fields{"user_id": id})
	}
	if s.Audit != nil {
		if err := s.Audit.Insert(ctx, repo.AuditEntry{UserID: actor.UserID, Action: "delete_user", Metadata: map[string]any{"deleted_user_id": id}}); err != nil {
			helpers.LogWarn(s.Logger, "audit insert failed", err, logrus.Fields{"action": "delete_user"})
		}
	}
	return nil
}
