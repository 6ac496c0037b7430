package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/container"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/memory"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/mailer"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

var initValidation sync.Once

type captureMailer struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (m *captureMailer) Send(_ context.Context, job mailer.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

// codeFor returns the code of the latest mail sent to email.
func (m *captureMailer) codeFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.jobs) - 1; i >= 0; i-- {
		if m.jobs[i].To == email {
			return fmt.Sprint(m.jobs[i].Data["Code"])
		}
	}
	return ""
}

type app struct {
	engine *gin.Engine
	store  *memory.Store
	mail   *captureMailer
	redis  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:             "storefront",
		Env:                 "test",
		JWTAccessSecret:     "access-secret",
		JWTRefreshSecret:    "refresh-secret",
		AccessTTL:           15 * time.Minute,
		RefreshTTL:          24 * time.Hour,
		CookieDomain:        "localhost",
		CodeTTL:             10 * time.Minute,
		RateLimitEnabled:    true,
		DebugMetricsEnabled: true,
	}
}

func newApp(t *testing.T, mutate ...func(*config.Config)) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	initValidation.Do(validation.Init)

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := memory.NewStore()
	mail := &captureMailer{}
	repos := container.Repositories{
		Users:      st.Users(),
		Audit:      st.Audit(),
		Pending:    st.PendingSignups(),
		Sessions:   st.Sessions(),
		Products:   st.Products(),
		Categories: st.Categories(),
		Banners:    st.Banners(),
		Wishlist:   st.Wishlist(),
		Carts:      st.Carts(),
		Orders:     st.Orders(),
	}
	c := container.Build(cfg, helpers.NewNopLogger(), rdb, repos, container.Options{Mailer: mail})
	return &app{engine: NewEngine(c), store: st, mail: mail, redis: mr}
}

type envelope struct {
	Status    int             `json:"status"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Errors    []any           `json:"errors"`
}

func (a *app) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

// seedUser stores a verified account directly and logs it in.
func (a *app) seedUser(t *testing.T, username string, role entity.Role) (string, string) {
	t.Helper()
	hash, err := helpers.HashPassword("secret123")
	require.NoError(t, err)
	u := &entity.User{
		Username:        username,
		Email:           username + "@example.com",
		Password:        hash,
		Role:            role,
		IsEmailVerified: true,
	}
	require.NoError(t, a.store.Users().Create(context.Background(), u))

	w, env := a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return u.ID, data.AccessToken
}

func (a *app) seedProduct(t *testing.T, name string, price float64, stock int) string {
	t.Helper()
	p := &entity.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, a.store.Products().Create(context.Background(), p))
	return p.ID
}

func TestHealthzAndRequestID(t *testing.T) {
	a := newApp(t)

	w, env := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), env.RequestID)
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	a := newApp(t)
	const email = "ana@example.com"

	w, env := a.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "ana", "email": "Ana@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"email":"ana@example.com","otpSent":true}`, string(env.Data))

	// Not verified yet.
	w, _ = a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": email, "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	code := a.mail.codeFor(email)
	require.Len(t, code, 4)
	wrong := "1000"
	if code == wrong {
		wrong = "1001"
	}
	w, env = a.do(t, http.MethodPost, "/api/v1/users/verify-email", "", map[string]string{"email": email, "code": wrong})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotNil(t, env.Errors)

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/verify-email", "", map[string]string{"email": email, "code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": email, "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = a.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken  string       `json:"accessToken"`
		RefreshToken string       `json:"refreshToken"`
		User         *entity.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "ana", login.User.Username)
	assert.NotEmpty(t, login.RefreshToken)

	cookies := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck.HttpOnly && ck.Value != ""
	}
	assert.True(t, cookies[helpers.AccessCookie])
	assert.True(t, cookies[helpers.RefreshCookie])

	w, _ = a.do(t, http.MethodGet, "/api/v1/users/current-user", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/logout", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The session is gone, so the still-unexpired token is rejected.
	w, _ = a.do(t, http.MethodGet, "/api/v1/users/current-user", login.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	a := newApp(t)
	a.seedUser(t, "taken", entity.RoleUser)

	w, env := a.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Errors)

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "taken", "email": "other@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/register/resend-code", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	a := newApp(t)
	_, token := a.seedUser(t, "buyer", entity.RoleUser)
	pid := a.seedProduct(t, "Mug", 12.5, 10)

	w, _ := a.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/cart/remove", token, map[string]string{"productId": pid})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/cart/add", token, map[string]any{"productId": pid, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/cart/add", token, map[string]any{"productId": pid, "quantity": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/cart/add", token, map[string]any{"productId": "missing", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, qty := range []int{2, 3} {
		w, _ = a.do(t, http.MethodPost, "/api/v1/cart/add", token, map[string]any{"productId": pid, "quantity": qty})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w, env := a.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		TotalAmount float64 `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.InDelta(t, 62.5, cart.TotalAmount, 1e-9)

	w, _ = a.do(t, http.MethodPost, "/api/v1/cart/remove", token, map[string]string{"productId": "not-in-cart"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func orderBody(pid string) map[string]any {
	return map[string]any{
		"items":   []map[string]any{{"productId": pid, "name": "Mug", "price": 12.5, "quantity": 2}},
		"address": map[string]any{"fullAddress": "1 Main St", "city": "Springfield", "state": "IL"},
		"pricing": map[string]any{"itemsTotal": 25, "tax": 0, "shippingCharges": 5, "discount": 0, "totalAmount": 30},
	}
}

func TestOrderEndpoints(t *testing.T) {
	a := newApp(t)
	_, userTok := a.seedUser(t, "buyer", entity.RoleUser)
	_, adminTok := a.seedUser(t, "boss", entity.RoleAdmin)
	pid := a.seedProduct(t, "Mug", 12.5, 10)

	w, env := a.do(t, http.MethodPost, "/api/v1/orders", userTok, orderBody(pid))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order entity.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, entity.OrderCreated, order.Status)

	w, _ = a.do(t, http.MethodPost, "/api/v1/orders", userTok, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	statusURL := "/api/v1/orders/" + order.ID + "/status"
	for _, status := range []string{"Shipped", "bogus", ""} {
		w, _ = a.do(t, http.MethodPatch, statusURL, userTok, map[string]string{"status": status})
		assert.Equal(t, http.StatusForbidden, w.Code, "non-admin with status %q", status)
	}

	w, _ = a.do(t, http.MethodPatch, statusURL, adminTok, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, entity.OrderCreated, order.Status)

	w, env = a.do(t, http.MethodPatch, statusURL, adminTok, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, entity.OrderShipped, order.Status)

	w, _ = a.do(t, http.MethodPatch, "/api/v1/orders/missing/status", adminTok, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(t, http.MethodGet, "/api/v1/orders/user", userTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []entity.Order
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	w, _ = a.do(t, http.MethodGet, "/api/v1/admin/orders", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(t, http.MethodGet, "/api/v1/admin/orders", adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodDelete, "/api/v1/orders/"+order.ID, userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(t, http.MethodDelete, "/api/v1/orders/"+order.ID, adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(t, http.MethodDelete, "/api/v1/orders/"+order.ID, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLoginRejectsRegularUser(t *testing.T) {
	a := newApp(t)
	a.seedUser(t, "buyer", entity.RoleUser)

	w, _ := a.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"username": "buyer", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogAdminRoutes(t *testing.T) {
	a := newApp(t)
	_, adminTok := a.seedUser(t, "boss", entity.RoleAdmin)
	_, userTok := a.seedUser(t, "buyer", entity.RoleUser)

	w, _ := a.do(t, http.MethodPost, "/api/v1/admin/categories", userTok, map[string]string{"name": "Books"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/admin/categories", adminTok, map[string]string{"name": "Books"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = a.do(t, http.MethodPost, "/api/v1/admin/categories", adminTok, map[string]string{"name": "Books"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/admin/products", adminTok, map[string]any{
		"name": "Go Book", "price": 39.9, "stock": 3, "category": "Books",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(t, http.MethodGet, "/api/v1/catalog/products?category=Books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []entity.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Go Book", products[0].Name)

	w, env = a.do(t, http.MethodGet, "/api/v1/catalog/products/search?q=book", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 1)

	w, _ = a.do(t, http.MethodGet, "/api/v1/catalog/products/"+products[0].ID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitOnAuthRoutes(t *testing.T) {
	a := newApp(t)

	body := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < 10; i++ {
		w, _ := a.do(t, http.MethodPost, "/api/v1/users/login", "", body)
		require.Equal(t, http.StatusNotFound, w.Code)
	}
	w, env := a.do(t, http.MethodPost, "/api/v1/users/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Budgets are per route.
	w, _ = a.do(t, http.MethodPost, "/api/v1/users/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	a.redis.FastForward(time.Minute)
	w, _ = a.do(t, http.MethodPost, "/api/v1/users/login", "", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyEmailCodeShapeLeftToService(t *testing.T) {
	a := newApp(t)

	w, _ := a.do(t, http.MethodPost, "/api/v1/users/verify-email", "", map[string]string{"email": "ghost@example.com", "code": "12"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "bea", "email": "bea@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(t, http.MethodPost, "/api/v1/users/verify-email", "", map[string]string{"email": "bea@example.com", "code": "12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid or expired code", env.Message)

	w, _ = a.do(t, http.MethodPost, "/api/v1/users/verify-email", "", map[string]string{"email": "bea@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	a := newApp(t)

	verify := func(xff string) int {
		body := strings.NewReader(`{"email":"ghost@example.com","code":"0000"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/verify-email", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", xff)
		req.Header.Set("X-Real-IP", xff)
		req.RemoteAddr = "203.0.113.7:40000"
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		return w.Code
	}

	// Private and rotating header values neither bypass nor reset the budget.
	for i := 0; i < 30; i++ {
		require.Equal(t, http.StatusNotFound, verify(fmt.Sprintf("10.0.0.%d", i+1)))
	}
	assert.Equal(t, http.StatusTooManyRequests, verify("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, verify("198.51.100.9"))
}

func TestDebugVarsToggle(t *testing.T) {
	a := newApp(t)
	w, _ := a.do(t, http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront")

	off := newApp(t, func(c *config.Config) { c.DebugMetricsEnabled = false })
	w, _ = off.do(t, http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
