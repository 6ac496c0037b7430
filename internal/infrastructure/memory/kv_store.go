package memory

import (
	"context"
	"strings"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

// PendingSignupStore drops records once Store.Now passes ExpiresAt, like the
// Redis adapter does.
type PendingSignupStore struct{ s *Store }

func (p *PendingSignupStore) live(email string) (entity.PendingSignup, bool) {
	rec, ok := p.s.pending[email]
	if !ok {
		return rec, false
	}
	if rec.Expired(p.s.Now()) {
		delete(p.s.pending, email)
		return rec, false
	}
	return rec, true
}

func (p *PendingSignupStore) Upsert(_ context.Context, rec *entity.PendingSignup) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.pending[strings.ToLower(rec.Email)] = *rec
	return nil
}

func (p *PendingSignupStore) Get(_ context.Context, email string) (*entity.PendingSignup, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	rec, ok := p.live(strings.ToLower(email))
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (p *PendingSignupStore) GetByUsername(_ context.Context, username string) (*entity.PendingSignup, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for email, rec := range p.s.pending {
		if rec.Username != username {
			continue
		}
		if rec, ok := p.live(email); ok {
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p *PendingSignupStore) Delete(_ context.Context, email string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	delete(p.s.pending, strings.ToLower(email))
	return nil
}

type SessionStore struct{ s *Store }

func (r *SessionStore) Save(_ context.Context, sess entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[sess.UserID] = sess
	return nil
}

func (r *SessionStore) Get(_ context.Context, userID string) (*entity.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[userID]
	if !ok || (!sess.ExpiresAt.IsZero() && r.s.Now().After(sess.ExpiresAt)) {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r *SessionStore) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, userID)
	return nil
}

var (
	_ repository.PendingSignupStore = (*PendingSignupStore)(nil)
	_ repository.SessionStore       = (*SessionStore)(nil)
)
