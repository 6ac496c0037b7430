package memory

import (
	"context"
	"sort"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

type UserRepository struct{ s *Store }

// taken reports whether username or email belongs to a user other than exceptID.
func (r *UserRepository) taken(username, email, exceptID string) bool {
	for _, u := range r.s.users {
		if u.ID == exceptID {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.taken(u.Username, u.Email, "") {
		return repository.ErrDuplicate
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.ID = newID()
	u.CreatedAt = r.s.stamp()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *UserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.taken(username, email, ""), nil
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) UpdateAccount(_ context.Context, id, username, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.taken(username, email, id) {
		return nil, repository.ErrDuplicate
	}
	if username != "" {
		u.Username = username
	}
	if email != "" {
		u.Email = email
	}
	u.UpdatedAt = r.s.Now()
	cp := *u
	return &cp, nil
}

func (r *UserRepository) update(id string, fn func(u *entity.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.Now()
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update(id, func(u *entity.User) { u.Password = hash })
}

func (r *UserRepository) SetRefreshToken(_ context.Context, id, token string) error {
	return r.update(id, func(u *entity.User) { u.RefreshToken = token })
}

func (r *UserRepository) SetResetCode(_ context.Context, id, code string, expires time.Time) error {
	return r.update(id, func(u *entity.User) {
		u.PasswordResetCode = code
		u.PasswordResetCodeExpires = &expires
	})
}

func (r *UserRepository) ResetPassword(_ context.Context, id, hash string) error {
	return r.update(id, func(u *entity.User) {
		u.Password = hash
		u.PasswordResetCode = ""
		u.PasswordResetCodeExpires = nil
		u.RefreshToken = ""
	})
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	delete(r.s.carts, id)
	delete(r.s.wishlist, id)
	delete(r.s.sessions, id)
	// orders are kept without an owner
	for _, o := range r.s.orders {
		if o.UserID == id {
			o.UserID = ""
		}
	}
	return nil
}

type AuditRepository struct{ s *Store }

func (r *AuditRepository) Insert(_ context.Context, e repository.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, e)
	return nil
}

var (
	_ repository.UserRepository  = (*UserRepository)(nil)
	_ repository.AuditRepository = (*AuditRepository)(nil)
)
