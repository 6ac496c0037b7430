package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	pginfra "github.com/oksasatya/go-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/go-storefront/internal/infrastructure/search"
	"github.com/oksasatya/go-storefront/pkg/helpers"
)

type demoProduct struct {
	name, description, category string
	price                       float64
	stock                       int
}

var (
	demoCategories = []entity.Category{
		{Name: "Electronics", Description: "Phones, audio and accessories"},
		{Name: "Home", Description: "Kitchen and living"},
		{Name: "Books", Description: "Print and e-books"},
	}
	demoProducts = []demoProduct{
		{"Wireless Earbuds", "Bluetooth earbuds with charging case", "Electronics", 59.99, 40},
		{"USB-C Charger 65W", "GaN wall charger", "Electronics", 34.5, 25},
		{"Ceramic Mug", "350ml stoneware mug", "Home", 12, 100},
		{"Chef Knife", "20cm stainless steel", "Home", 45, 15},
		{"The Go Programming Language", "Donovan and Kernighan", "Books", 39.9, 30},
	}
	demoBanners = []entity.Banner{
		{Title: "New season arrivals", Subtitle: "Fresh picks for your home", Badge: "Featured", CTAText: "Shop Now", CTALink: "/products", Order: 1, Active: true},
		{Title: "Audio week", Subtitle: "Up to 30% off earbuds", Badge: "Sale", CTAText: "Browse", CTALink: "/products?category=Electronics", Order: 2, Active: true},
	}
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	if err := seedAdmin(ctx, users, cfg); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithField("email", cfg.AdminEmail).Info("admin user ensured")

	// Products go through the catalog service so they are indexed when search is configured.
	var index repository.ProductIndex
	if es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass); err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable; products will not be indexed")
	} else if es != nil {
		index = search.NewProductIndex(es, cfg.ESProductsIndex)
	}
	products := pginfra.NewProductRepository(pool)
	catalog := application.NewCatalogService(products, pginfra.NewCategoryRepository(pool),
		pginfra.NewBannerRepository(pool), index, nil, logger)

	categories, err := seedCategories(ctx, catalog)
	if err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}
	n, err := seedProducts(ctx, catalog, products, categories)
	if err != nil {
		log.Fatalf("failed to seed products: %v", err)
	}
	logger.WithFields(logrus.Fields{"categories": len(categories), "products_created": n}).Info("catalog seeded")

	if err := seedBanners(ctx, catalog); err != nil {
		log.Fatalf("failed to seed banners: %v", err)
	}
	logger.Info("seed complete")
}

// seedAdmin creates the configured administrator unless the username or email is taken.
func seedAdmin(ctx context.Context, users repository.UserRepository, cfg *config.Config) error {
	exists, err := users.ExistsByUsernameOrEmail(ctx, cfg.AdminUsername, cfg.AdminEmail)
	if err != nil || exists {
		return err
	}
	hash, err := helpers.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	err = users.Create(ctx, &entity.User{
		Username:        strings.ToLower(cfg.AdminUsername),
		Email:           strings.ToLower(cfg.AdminEmail),
		Password:        hash,
		Role:            entity.RoleAdmin,
		IsEmailVerified: true,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	return err
}

func seedCategories(ctx context.Context, catalog *application.CatalogService) (map[string]string, error) {
	for _, c := range demoCategories {
		if _, err := catalog.CreateCategory(ctx, c.Name, c.Description); err != nil && !errors.Is(err, application.ErrCategoryExists) {
			return nil, err
		}
	}
	list, err := catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(list))
	for _, c := range list {
		ids[c.Name] = c.ID
	}
	return ids, nil
}

// seedProducts creates demo products whose name is not in the catalog yet.
func seedProducts(ctx context.Context, catalog *application.CatalogService, products repository.ProductRepository, categories map[string]string) (int, error) {
	existing, err := products.List(ctx, "")
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.Name] = true
	}

	created := 0
	for _, d := range demoProducts {
		if have[d.name] {
			continue
		}
		_, err := catalog.CreateProduct(ctx, application.ProductInput{
			Name:        d.name,
			Description: d.description,
			Price:       d.price,
			Stock:       d.stock,
			Category:    categories[d.category],
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func seedBanners(ctx context.Context, catalog *application.CatalogService) error {
	current, err := catalog.ListBanners(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	for _, b := range demoBanners {
		active := b.Active
		if _, err := catalog.CreateBanner(ctx, application.BannerInput{
			Title:    b.Title,
			Subtitle: b.Subtitle,
			Badge:    b.Badge,
			CTAText:  b.CTAText,
			CTALink:  b.CTALink,
			Image:    "https://placehold.co/1200x400?text=" + strings.ReplaceAll(b.Title, " ", "+"),
			Order:    b.Order,
			Active:   &active,
		}); err != nil {
			return err
		}
	}
	return nil
}
