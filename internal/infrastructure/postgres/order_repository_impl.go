package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

const orderSelect = `
	SELECT o.id, COALESCE(o.user_id::text, ''), o.full_address, o.city, o.state, o.postal_code, o.country, o.phone,
	       o.items_total, o.tax, o.shipping_charges, o.discount, o.total_amount, o.status,
	       o.created_at, o.updated_at, u.username, u.email
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create stores the order and its item snapshot in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	if o.Status == "" {
		o.Status = entity.OrderCreated
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, p := o.Address, o.Pricing
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, full_address, city, state, postal_code, country, phone,
		                    items_total, tax, shipping_charges, discount, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, o.UserID, a.FullAddress, a.City, a.State, a.PostalCode, a.Country, a.Phone,
		p.ItemsTotal, p.Tax, p.ShippingCharges, p.Discount, p.TotalAmount, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	batch := &pgx.Batch{}
	for i, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, product_id, name, price, quantity, image)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, o.ID, i, it.ProductID, it.Name, it.Price, it.Quantity, it.Image)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapErr(err)
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	orders, err := r.list(ctx, orderSelect+` WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, repository.ErrNotFound
	}
	return &orders[0], nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]entity.Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	res, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]entity.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]entity.Order, 0)
	index := map[string]int{}
	for rows.Next() {
		var (
			o               entity.Order
			st              string
			username, email *string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Address.FullAddress, &o.Address.City, &o.Address.State,
			&o.Address.PostalCode, &o.Address.Country, &o.Address.Phone,
			&o.Pricing.ItemsTotal, &o.Pricing.Tax, &o.Pricing.ShippingCharges, &o.Pricing.Discount,
			&o.Pricing.TotalAmount, &st, &o.CreatedAt, &o.UpdatedAt, &username, &email); err != nil {
			return nil, mapErr(err)
		}
		o.Status = entity.OrderStatus(st)
		if username != nil && email != nil {
			o.User = &entity.UserSummary{ID: o.UserID, Username: *username, Email: *email}
		}
		o.Items = make([]entity.OrderItem, 0)
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.pool.Query(ctx, `
		SELECT oi.order_id, oi.product_id, oi.name, oi.price, oi.quantity, oi.image, p.id, p.name, p.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id::text = ANY($1)
		ORDER BY oi.order_id, oi.position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			orderID   string
			it        entity.OrderItem
			liveID    *string
			liveName  *string
			livePrice *float64
		)
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.Image,
			&liveID, &liveName, &livePrice); err != nil {
			return nil, err
		}
		if liveID != nil && liveName != nil && livePrice != nil {
			it.Product = &entity.ProductSummary{ID: *liveID, Name: *liveName, Price: *livePrice}
		}
		i := index[orderID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, mapErr(itemRows.Err())
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
