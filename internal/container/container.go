package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/objectstore"
	pginfra "github.com/oksasatya/go-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-storefront/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-storefront/internal/infrastructure/search"
	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/mailer"
)

// Repositories groups the persistence ports the services are built from.
type Repositories struct {
	Users      repository.UserRepository
	Audit      repository.AuditRepository
	Pending    repository.PendingSignupStore
	Sessions   repository.SessionStore
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Banners    repository.BannerRepository
	Wishlist   repository.WishlistRepository
	Carts      repository.CartRepository
	Orders     repository.OrderRepository
}

// Options carries the optional collaborators. Nil Index disables search
// indexing, nil Images disables uploads and nil Mailer logs jobs instead.
type Options struct {
	Index  repository.ProductIndex
	Images application.ImageStore
	Mailer application.Mailer
}

// Container is built once at startup and handed to the router.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Redis   *redis.Client
	JWT     *helpers.JWTManager
	Cookies *helpers.CookieManager
	Mailer  application.Mailer
	Repos   Repositories

	Verify   *application.VerificationService
	Auth     *application.AuthService
	Carts    *application.CartService
	Orders   *application.OrderService
	Catalog  *application.CatalogService
	Wishlist *application.WishlistService
	Admin    *application.AdminService

	closers []func()
}

// Build wires services on top of already constructed repositories.
func Build(cfg *config.Config, logger *logrus.Logger, rdb *redis.Client, repos Repositories, opts Options) *Container {
	mail := opts.Mailer
	if mail == nil {
		mail = mailer.NewLogSender(logger)
	}
	jwt := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Redis:   rdb,
		JWT:     jwt,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Mailer:  mail,
		Repos:   repos,

		Verify:   application.NewVerificationService(repos.Users, repos.Pending, mail, cfg, logger),
		Auth:     application.NewAuthService(repos.Users, repos.Audit, repos.Pending, repos.Sessions, jwt, logger),
		Carts:    application.NewCartService(repos.Carts, repos.Products, logger),
		Orders:   application.NewOrderService(repos.Orders, repos.Users, mail, cfg, logger),
		Catalog:  application.NewCatalogService(repos.Products, repos.Categories, repos.Banners, opts.Index, opts.Images, logger),
		Wishlist: application.NewWishlistService(repos.Wishlist, repos.Products),
		Admin:    application.NewAdminService(repos.Users, repos.Sessions, repos.Audit, logger),
	}
}

// New connects Postgres, Redis and the optional RabbitMQ, Elasticsearch and
// GCS clients, then builds the container on top of them.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	var closers []func()
	fail := func(err error) (*Container, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return fail(fmt.Errorf("postgres: %w", err))
	}
	closers = append(closers, pool.Close)

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	closers = append(closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fail(fmt.Errorf("redis: %w", err))
	}

	var opts Options

	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; email jobs will only be logged", err, logrus.Fields{
				"queue": cfg.RabbitMQEmailQueue,
			})
		} else {
			closers = append(closers, pub.Close)
			opts.Mailer = mailer.NewQueueSender(pub)
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		return fail(fmt.Errorf("elasticsearch: %w", err))
	}
	if es != nil {
		opts.Index = search.NewProductIndex(es, cfg.ESProductsIndex)
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fail(fmt.Errorf("gcs: %w", err))
		}
		closers = append(closers, func() { _ = gcs.Close() })
		opts.Images = objectstore.NewGCSImageStore(gcs, cfg.GCSBucket)
	}

	c := Build(cfg, logger, rdb, PostgresRepositories(pool, rdb), opts)
	c.closers = closers
	helpers.LogInfo(logger, "container ready", logrus.Fields{
		"search": opts.Index != nil,
		"images": opts.Images != nil,
		"queue":  opts.Mailer != nil,
	})
	return c, nil
}

// PostgresRepositories backs the relational ports with pgx and the
// short-lived state with Redis.
func PostgresRepositories(pool *pgxpool.Pool, rdb redis.Cmdable) Repositories {
	return Repositories{
		Users:      pginfra.NewUserRepository(pool),
		Audit:      pginfra.NewAuditRepository(pool),
		Pending:    redisstore.NewPendingSignupStore(rdb),
		Sessions:   redisstore.NewSessionStore(rdb),
		Products:   pginfra.NewProductRepository(pool),
		Categories: pginfra.NewCategoryRepository(pool),
		Banners:    pginfra.NewBannerRepository(pool),
		Wishlist:   pginfra.NewWishlistRepository(pool),
		Carts:      pginfra.NewCartRepository(pool),
		Orders:     pginfra.NewOrderRepository(pool),
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
