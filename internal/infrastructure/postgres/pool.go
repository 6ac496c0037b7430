package postgres

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 5 * time.Second

var publishStats sync.Once

// NewPool opens a pgx pool and fails fast when the database is unreachable.
// Pool counters are published on the debug vars endpoint as "pgxpool".
func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, maxConnLife time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLife
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	publishStats.Do(func() {
		expvar.Publish("pgxpool", expvar.Func(func() any {
			s := pool.Stat()
			return map[string]any{
				"total":    s.TotalConns(),
				"idle":     s.IdleConns(),
				"acquired": s.AcquiredConns(),
				"max":      s.MaxConns(),
			}
		}))
	})
	return pool, nil
}
