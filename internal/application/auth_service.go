package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// AuthService owns logins, token rotation and self-service account changes.
type AuthService struct {
	Users    repo.UserRepository
	Audit    repo.AuditRepository
	Pending  repo.PendingSignupStore
	Sessions repo.SessionStore
	JWT      *helpers.JWTManager
	Logger   *logrus.Logger
}

func NewAuthService(users repo.UserRepository, audit repo.AuditRepository, pending repo.PendingSignupStore, sessions repo.SessionStore, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		Audit:    audit,
		Pending:  pending,
		Sessions: sessions,
		JWT:      jwt,
		Logger:   logger,
	}
}

type TokenPair struct {
	AccessToken        string    `json:"accessToken"`
	AccessTokenExpiry  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken       string    `json:"refreshToken"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiresAt"`
}

// LoginInput identifies the account by username or email.
type LoginInput struct {
	Username  string
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// Login checks credentials and opens a new session. The lookup failures are
// ordered: unknown account (404, or 403 while a signup is pending), wrong
// password (401), unverified email (403).
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*entity.User, TokenPair, error) {
	u, err := s.authenticate(ctx, in)
	if err != nil {
		incr(metricLoginFailures)
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	incr(metricLogins)
	s.audit(ctx, repo.AuditEntry{UserID: u.ID, Email: u.Email, Action: "login", IP: in.IP, UserAgent: in.UserAgent})
	return u, pair, nil
}

// AdminLogin is Login restricted to admin accounts.
func (s *AuthService) AdminLogin(ctx context.Context, in LoginInput) (*entity.User, TokenPair, error) {
	u, err := s.authenticate(ctx, in)
	if err != nil {
		incr(metricLoginFailures)
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrEmailNotVerified) {
			return nil, TokenPair{}, ErrNotAdmin
		}
		return nil, TokenPair{}, err
	}
	if !u.IsAdmin() {
		s.audit(ctx, repo.AuditEntry{UserID: u.ID, Email: u.Email, Action: "admin_login_denied", IP: in.IP, UserAgent: in.UserAgent})
		return nil, TokenPair{}, ErrNotAdmin
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	incr(metricLogins)
	s.audit(ctx, repo.AuditEntry{UserID: u.ID, Email: u.Email, Action: "admin_login", IP: in.IP, UserAgent: in.UserAgent})
	return u, pair, nil
}

func (s *AuthService) authenticate(ctx context.Context, in LoginInput) (*entity.User, error) {
	email := helpers.NormalizeEmail(in.Email)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if email == "" && username == "" {
		return nil, apperr.Validation("username or email is required")
	}
	if in.Password == "" {
		return nil, apperr.Validation("password is required")
	}

	var (
		u   *entity.User
		err error
	)
	if email != "" {
		u, err = s.Users.GetByEmail(ctx, email)
	} else {
		u, err = s.Users.GetByUsername(ctx, username)
	}
	if errors.Is(err, repo.ErrNotFound) {
		if s.hasPendingSignup(ctx, email, username) {
			return nil, ErrEmailNotVerified
		}
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		s.audit(ctx, repo.AuditEntry{UserID: u.ID, Email: u.Email, Action: "login_failed", IP: in.IP, UserAgent: in.UserAgent})
		return nil, ErrInvalidCredentials
	}
	if !u.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	return u, nil
}

func (s *AuthService) hasPendingSignup(ctx context.Context, email, username string) bool {
	if s.Pending == nil {
		return false
	}
	var err error
	if email != "" {
		_, err = s.Pending.Get(ctx, email)
	} else {
		_, err = s.Pending.GetByUsername(ctx, username)
	}
	return err == nil
}

// IssueTokens opens a new session for u, replacing any previous one, and
// stores the refresh token as the single active token.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	role := string(u.Role)
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid, role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid, role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	sess := entity.Session{
		UserID:    u.ID,
		ID:        sid,
		Role:      u.Role,
		Username:  u.Username,
		Email:     u.Email,
		ExpiresAt: rexp,
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return TokenPair{}, apperr.Dependency("session store unavailable", err)
	}
	if err := s.Users.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates both tokens. The presented token must be the one stored on
// the user and belong to the live session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	if refreshToken == "" {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	sess, err := s.Sessions.Get(ctx, u.ID)
	if err != nil || sess.ID != claims.SessionID {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Logout drops the refresh token and the session. It is safe to call twice.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.Users.SetRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.Sessions.Delete(ctx, userID); err != nil {
		helpers.LogWarn(s.Logger, "delete session failed", err, logrus.Fields{"user_id": userID})
	}
	s.audit(ctx, repo.AuditEntry{UserID: userID, Action: "logout"})
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return apperr.Validation("old and new password are required")
	}
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return ErrInvalidOldPassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	s.audit(ctx, repo.AuditEntry{UserID: u.ID, Email: u.Email, Action: "change_password"})
	return nil
}

// UpdateAccount changes username and/or email; empty values keep the
// current one.
func (s *AuthService) UpdateAccount(ctx context.Context, userID, username, email string) (*entity.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = helpers.NormalizeEmail(email)
	if username == "" && email == "" {
		return nil, apperr.Validation("nothing to update")
	}
	cur, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if username == "" {
		username = cur.Username
	}
	if email == "" {
		email = cur.Email
	}
	u, err := s.Users.UpdateAccount(ctx, userID, username, email)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrUserExists
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	// keep the cached session identity in step
	if sess, sErr := s.Sessions.Get(ctx, u.ID); sErr == nil && !sess.ExpiresAt.IsZero() {
		sess.Username, sess.Email = u.Username, u.Email
		if sErr = s.Sessions.Save(ctx, *sess); sErr != nil {
			helpers.LogWarn(s.Logger, "session refresh failed", sErr, logrus.Fields{"user_id": u.ID})
		}
	}
	return u, nil
}

func (s *AuthService) audit(ctx context.Context, e repo.AuditEntry) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Insert(ctx, e); err != nil {
		helpers.LogWarn(s.Logger, "audit insert failed", err, logrus.Fields{"action": e.Action, "user_id": e.UserID})
	}
}
