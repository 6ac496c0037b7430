package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// PendingSignupStore keeps pending signups as JSON values that Redis expires
// at the record's ExpiresAt. A second key maps the reserved username back to
// the email.
type PendingSignupStore struct {
	rdb redis.Cmdable
}

func NewPendingSignupStore(rdb redis.Cmdable) *PendingSignupStore {
	return &PendingSignupStore{rdb: rdb}
}

func (s *PendingSignupStore) Upsert(ctx context.Context, p *entity.PendingSignup) error {
	key := helpers.KeyPendingSignup(p.Email)

	var prev entity.PendingSignup
	found, err := helpers.RedisGetJSON(ctx, s.rdb, key, &prev)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	if found && prev.Username != p.Username {
		pipe.Del(ctx, helpers.KeyPendingUsername(prev.Username))
	}
	if err := helpers.RedisSetJSONUntil(ctx, pipe, key, p, p.ExpiresAt); err != nil {
		return err
	}
	pipe.Set(ctx, helpers.KeyPendingUsername(p.Username), p.Email, 0)
	pipe.PExpireAt(ctx, helpers.KeyPendingUsername(p.Username), p.ExpiresAt)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *PendingSignupStore) Get(ctx context.Context, email string) (*entity.PendingSignup, error) {
	var p entity.PendingSignup
	found, err := helpers.RedisGetJSON(ctx, s.rdb, helpers.KeyPendingSignup(email), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *PendingSignupStore) GetByUsername(ctx context.Context, username string) (*entity.PendingSignup, error) {
	email, err := s.rdb.Get(ctx, helpers.KeyPendingUsername(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	// the username may have been released by a later signup for the same email
	if p.Username != username {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *PendingSignupStore) Delete(ctx context.Context, email string) error {
	p, err := s.Get(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return helpers.RedisDel(ctx, s.rdb, helpers.KeyPendingSignup(email), helpers.KeyPendingUsername(p.Username))
}

var _ repository.PendingSignupStore = (*PendingSignupStore)(nil)
