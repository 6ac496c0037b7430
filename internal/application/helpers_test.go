package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/memory"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/mailer"
)

type recordingMailer struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (m *recordingMailer) Send(_ context.Context, job mailer.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return m.err
}

func (m *recordingMailer) last() mailer.EmailJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.jobs) == 0 {
		return mailer.EmailJob{}
	}
	return m.jobs[len(m.jobs)-1]
}

type clock struct{ now time.Time }

func newClock() *clock { return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// sequentialCodes hands out 1000, 1001, ... so tests know every code issued.
func sequentialCodes() func() (string, error) {
	n := 999
	return func() (string, error) {
		n++
		return fmt.Sprint(n), nil
	}
}

type testEnv struct {
	store  *memory.Store
	clock  *clock
	mail   *recordingMailer
	verify *VerificationService
	auth   *AuthService
	carts  *CartService
	orders *OrderService
	cat    *CatalogService
	wish   *WishlistService
	admin  *AdminService
}

func newTestEnv() *testEnv {
	st := memory.NewStore()
	clk := newClock()
	st.Now = clk.Now
	mail := &recordingMailer{}
	logger := helpers.NewNopLogger()

	v := NewVerificationService(st.Users(), st.PendingSignups(), mail, nil, logger)
	v.Now = clk.Now
	v.GenCode = sequentialCodes()

	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return &testEnv{
		store:  st,
		clock:  clk,
		mail:   mail,
		verify: v,
		auth:   NewAuthService(st.Users(), st.Audit(), st.PendingSignups(), st.Sessions(), jwt, logger),
		carts:  NewCartService(st.Carts(), st.Products(), logger),
		orders: NewOrderService(st.Orders(), st.Users(), mail, nil, logger),
		cat:    NewCatalogService(st.Products(), st.Categories(), st.Banners(), nil, nil, logger),
		wish:   NewWishlistService(st.Wishlist(), st.Products()),
		admin:  NewAdminService(st.Users(), st.Sessions(), st.Audit(), logger),
	}
}

// registered creates a verified user through the signup flow.
func (e *testEnv) registered(username, email, password string) *entity.User {
	p, err := e.verify.StartSignup(context.Background(), username, email, password)
	if err != nil {
		panic(err)
	}
	u, err := e.verify.VerifyCode(context.Background(), email, p.Code, PurposeSignup)
	if err != nil {
		panic(err)
	}
	return u
}

func (e *testEnv) adminUser() *entity.User {
	hash, err := helpers.HashPassword("admin123")
	if err != nil {
		panic(err)
	}
	u := &entity.User{Username: "admin", Email: "admin@example.com", Password: hash, Role: entity.RoleAdmin, IsEmailVerified: true}
	if err := e.store.Users().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (e *testEnv) product(name string, price float64, stock int) *entity.Product {
	p := &entity.Product{Name: name, Price: price, Stock: stock}
	if err := e.store.Products().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func plainUser(username, email string) *entity.User {
	return &entity.User{Username: username, Email: email, Password: "x", Role: entity.RoleUser, IsEmailVerified: true}
}

var errBoom = errors.New("boom")

func statusOf(err error) int { return apperr.StatusOf(err) }
