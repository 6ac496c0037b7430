package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// AddQuantity finds or creates the user's cart and upserts the line in one
// statement; the conflict branch increments instead of duplicating.
func (r *CartRepository) AddQuantity(ctx context.Context, userID, productID string, qty int) error {
	_, err := r.pool.Exec(ctx, `
		WITH c AS (
			INSERT INTO carts (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
			RETURNING id
		)
		INSERT INTO cart_items (cart_id, product_id, quantity)
		SELECT id, $2, $3 FROM c
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, userID, productID, qty)
	return mapErr(err)
}

// DecrementQuantity runs both branches against the same snapshot: the line
// is lowered when above 1, otherwise deleted.
func (r *CartRepository) DecrementQuantity(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `
		WITH dec AS (
			UPDATE cart_items ci SET quantity = ci.quantity - 1
			FROM carts c
			WHERE c.id = ci.cart_id AND c.user_id = $1 AND ci.product_id::text = $2 AND ci.quantity > 1
			RETURNING ci.cart_id
		)
		DELETE FROM cart_items ci USING carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1 AND ci.product_id::text = $2 AND ci.quantity <= 1
		  AND NOT EXISTS (SELECT 1 FROM dec)
	`, userID, productID)
	return mapErr(err)
}

func (r *CartRepository) RemoveLine(ctx context.Context, userID, productID string) error {
	var carts int
	err := r.pool.QueryRow(ctx, `
		WITH c AS (SELECT id FROM carts WHERE user_id = $1),
		d AS (
			DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM c) AND product_id::text = $2
		)
		SELECT count(*) FROM c
	`, userID, productID).Scan(&carts)
	if err != nil {
		return mapErr(err)
	}
	if carts == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	cart := &entity.Cart{}
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, quantity FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at ASC, product_id ASC
	`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = make([]entity.CartLine, 0)
	for rows.Next() {
		var l entity.CartLine
		if err := rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, l)
	}
	return cart, mapErr(rows.Err())
}

var _ repository.CartRepository = (*CartRepository)(nil)
