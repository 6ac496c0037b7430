// Package memory is a test fake: it implements the repository ports in
// process with the same invariants as the Postgres and Redis adapters.
// Only _test.go files import it; production wiring lives in
// container.PostgresRepositories.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

// Store is the shared state behind every in-memory repository.
type Store struct {
	mu sync.Mutex

	users      map[string]*entity.User
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	banners    map[string]*entity.Banner
	carts      map[string]*entity.Cart // by user id
	orders     map[string]*entity.Order
	wishlist   map[string][]entity.WishlistItem
	pending    map[string]entity.PendingSignup
	sessions   map[string]entity.Session
	audit      []repository.AuditEntry

	// Now drives expiry of pending signups and sessions.
	Now func() time.Time
	// tick keeps created_at strictly increasing so ordering is deterministic.
	tick time.Time
}

func NewStore() *Store {
	return &Store{
		users:      map[string]*entity.User{},
		products:   map[string]*entity.Product{},
		categories: map[string]*entity.Category{},
		banners:    map[string]*entity.Banner{},
		carts:      map[string]*entity.Cart{},
		orders:     map[string]*entity.Order{},
		wishlist:   map[string][]entity.WishlistItem{},
		pending:    map[string]entity.PendingSignup{},
		sessions:   map[string]entity.Session{},
		Now:        time.Now,
	}
}

// stamp returns a creation time strictly after the previous one. Callers hold mu.
func (s *Store) stamp() time.Time {
	now := s.Now()
	if !now.After(s.tick) {
		now = s.tick.Add(time.Microsecond)
	}
	s.tick = now
	return now
}

func newID() string { return uuid.NewString() }

// AuditEntries returns a copy of the recorded audit events.
func (s *Store) AuditEntries() []repository.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repository.AuditEntry(nil), s.audit...)
}

func (s *Store) Users() *UserRepository              { return &UserRepository{s: s} }
func (s *Store) Audit() *AuditRepository             { return &AuditRepository{s: s} }
func (s *Store) Products() *ProductRepository        { return &ProductRepository{s: s} }
func (s *Store) Categories() *CategoryRepository     { return &CategoryRepository{s: s} }
func (s *Store) Banners() *BannerRepository          { return &BannerRepository{s: s} }
func (s *Store) Wishlist() *WishlistRepository       { return &WishlistRepository{s: s} }
func (s *Store) Carts() *CartRepository              { return &CartRepository{s: s} }
func (s *Store) Orders() *OrderRepository            { return &OrderRepository{s: s} }
func (s *Store) PendingSignups() *PendingSignupStore { return &PendingSignupStore{s: s} }
func (s *Store) Sessions() *SessionStore             { return &SessionStore{s: s} }
