package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/memory"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  []any  `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthAndRequireAdmin(t *testing.T) {
	store := memory.NewStore()
	sessions := store.Sessions()
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, entity.Session{UserID: "u1", ID: "s1", Role: entity.RoleUser, Username: "ann", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, sessions.Save(ctx, entity.Session{UserID: "a1", ID: "s2", Role: entity.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}))

	userTok, _, err := jwt.GenerateAccessToken("u1", "s1", "user")
	require.NoError(t, err)
	staleTok, _, err := jwt.GenerateAccessToken("u1", "old-session", "user")
	require.NoError(t, err)
	adminTok, _, err := jwt.GenerateAccessToken("a1", "s2", "admin")
	require.NoError(t, err)
	// the role claim is not trusted; the session's role is
	forgedTok, _, err := jwt.GenerateAccessToken("u1", "s1", "admin")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Auth(sessions, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserID)+":"+c.GetString(CtxUserName))
	})
	r.GET("/admin", Auth(sessions, jwt), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name   string
		path   string
		header string
		cookie string
		want   int
	}{
		{"no token", "/me", "", "", http.StatusUnauthorized},
		{"garbage", "/me", "Bearer nope", "", http.StatusUnauthorized},
		{"stale session", "/me", "Bearer " + staleTok, "", http.StatusUnauthorized},
		{"bearer", "/me", "Bearer " + userTok, "", http.StatusOK},
		{"cookie", "/me", "", userTok, http.StatusOK},
		{"user on admin route", "/admin", "Bearer " + userTok, "", http.StatusForbidden},
		{"forged role", "/admin", "Bearer " + forgedTok, "", http.StatusForbidden},
		{"admin", "/admin", "Bearer " + adminTok, "", http.StatusNoContent},
		{"anonymous on admin route", "/admin", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "u1:ann", w.Body.String())
			}
			if tt.want >= 400 {
				env := decode(t, w)
				assert.False(t, env.Success)
				assert.NotNil(t, env.Errors)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	newRouter := func(showInternal bool) *gin.Engine {
		r := gin.New()
		r.Use(RequestIDMiddleware(), ErrorHandler(helpers.NewNopLogger(), showInternal))
		r.GET("/typed", func(c *gin.Context) {
			_ = c.Error(apperr.Conflict("user with email or username already exists"))
		})
		r.GET("/details", func(c *gin.Context) {
			_ = c.Error(apperr.Validation("validation error", map[string]string{"field": "quantity"}))
		})
		r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
		return r
	}

	w := httptest.NewRecorder()
	newRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/typed", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.Equal(t, "user with email or username already exists", env.Message)
	assert.Equal(t, []any{}, env.Errors)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	newRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/details", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decode(t, w).Errors, 1)

	w = httptest.NewRecorder()
	newRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w).Message)

	w = httptest.NewRecorder()
	newRouter(true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, "pq: connection refused", decode(t, w).Message)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.Use(RealIP(true))
	r.POST("/login", RateLimit(rdb, nil, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, hit("203.0.113.7").Code)
	w := hit("203.0.113.7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = hit("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit("198.51.100.2").Code, "separate budget per ip")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, hit("203.0.113.7").Code)
}

func TestRateLimit_FailsOpenAndBypass(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	r := gin.New()
	r.GET("/x", RateLimit(rdb, nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	mr2 := miniredis.RunT(t)
	rdb2 := redis.NewClient(&redis.Options{Addr: mr2.Addr()})
	r2 := gin.New()
	r2.Use(RealIP(false))
	r2.GET("/y", RateLimit(rdb2, nil, 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/y", nil)
		req.RemoteAddr = "127.0.0.1:5555"
		w := httptest.NewRecorder()
		r2.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.GET("/ip", RealIP(true), func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip, 1.2.3.4")
	req.Header.Set("CF-Connecting-IP", "9.9.9.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "9.9.9.9", w.Body.String())
}
