package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SessionStore keeps one session hash per user; a new login replaces it.
type SessionStore struct {
	rdb redis.Cmdable
}

func NewSessionStore(rdb redis.Cmdable) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, sess entity.Session) error {
	key := sessionKey(sess.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"sid":        sess.ID,
		"role":       string(sess.Role),
		"name":       sess.Username,
		"email":      sess.Email,
		"created_at": nowRFC3339(),
	})
	pipe.ExpireAt(ctx, key, sess.ExpiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*entity.Session, error) {
	key := sessionKey(userID)
	data, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, repository.ErrNotFound
	}
	sess := &entity.Session{
		UserID:   data["user_id"],
		ID:       data["sid"],
		Role:     entity.Role(data["role"]),
		Username: data["name"],
		Email:    data["email"],
	}
	if ttl, err := s.rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
		sess.ExpiresAt = time.Now().Add(ttl)
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

var _ repository.SessionStore = (*SessionStore)(nil)
