package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.stock, COALESCE(p.category_id::text, ''), p.image,
	       p.created_at, p.updated_at, c.id, c.name, c.description, c.created_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	p := &entity.Product{}
	var (
		catID, catName, catDesc *string
		catCreated              *time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.Image,
		&p.CreatedAt, &p.UpdatedAt, &catID, &catName, &catDesc, &catCreated); err != nil {
		return nil, mapErr(err)
	}
	// LEFT JOIN: all category columns are NULL together.
	if catID != nil && catName != nil && catDesc != nil && catCreated != nil {
		p.Category = &entity.Category{ID: *catID, Name: *catName, Description: *catDesc, CreatedAt: *catCreated}
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock, category_id, image)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.Image)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.id::text = ANY($1)`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, mapErr(rows.Err())
}

func (r *ProductRepository) List(ctx context.Context, categoryID string) ([]entity.Product, error) {
	if categoryID != "" {
		return r.collect(ctx, productSelect+` WHERE p.category_id::text = $1 ORDER BY p.created_at DESC`, categoryID)
	}
	return r.collect(ctx, productSelect+` ORDER BY p.created_at DESC`)
}

// Search is the fallback used when no search index is configured.
func (r *ProductRepository) Search(ctx context.Context, q string, limit int) ([]entity.Product, error) {
	return r.collect(ctx, productSelect+`
		WHERE p.name ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%'
		ORDER BY p.created_at DESC
		LIMIT $2`, q, limit)
}

func (r *ProductRepository) collect(ctx context.Context, sql string, args ...any) ([]entity.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := make([]entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, mapErr(rows.Err())
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5,
		    category_id = NULLIF($6, '')::uuid, image = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.Image)
	return mapErr(row.Scan(&p.UpdatedAt))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING id, created_at
	`, c.Name, c.Description)
	return mapErr(row.Scan(&c.ID, &c.CreatedAt))
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	c := &entity.Category{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	c := &entity.Category{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, created_at FROM categories WHERE lower(name) = lower($1)`, name).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]entity.Category, 0)
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, mapErr(rows.Err())
}

type BannerRepository struct {
	pool *pgxpool.Pool
}

func NewBannerRepository(pool *pgxpool.Pool) *BannerRepository {
	return &BannerRepository{pool: pool}
}

func (r *BannerRepository) Create(ctx context.Context, b *entity.Banner) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO banners (title, subtitle, badge, cta_text, cta_link, image, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, b.Title, b.Subtitle, b.Badge, b.CTAText, b.CTALink, b.Image, b.Order, b.Active)
	return mapErr(row.Scan(&b.ID, &b.CreatedAt))
}

func (r *BannerRepository) ListActive(ctx context.Context) ([]entity.Banner, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, subtitle, badge, cta_text, cta_link, image, sort_order, is_active, created_at
		FROM banners
		WHERE is_active
		ORDER BY sort_order ASC, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]entity.Banner, 0)
	for rows.Next() {
		var b entity.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.Subtitle, &b.Badge, &b.CTAText, &b.CTALink, &b.Image,
			&b.Order, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, mapErr(rows.Err())
}

func (r *BannerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	return mapErr(err)
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id::text = $2`, userID, productID)
	return mapErr(err)
}

func (r *WishlistRepository) List(ctx context.Context, userID string) ([]entity.WishlistItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.product_id, w.added_at, p.name, p.description, p.price, p.stock,
		       COALESCE(p.category_id::text, ''), p.image, p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.added_at ASC
	`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := make([]entity.WishlistItem, 0)
	for rows.Next() {
		var (
			it entity.WishlistItem
			p  entity.Product
		)
		if err := rows.Scan(&it.ProductID, &it.AddedAt, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.CategoryID, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.ID = it.ProductID
		it.Product = &p
		out = append(out, it)
	}
	return out, mapErr(rows.Err())
}

var (
	_ repository.ProductRepository  = (*ProductRepository)(nil)
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.BannerRepository   = (*BannerRepository)(nil)
	_ repository.WishlistRepository = (*WishlistRepository)(nil)
)
