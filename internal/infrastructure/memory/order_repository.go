package memory

import (
	"context"
	"sort"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

type OrderRepository struct{ s *Store }

func (r *OrderRepository) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[o.UserID]; !ok {
		return repository.ErrNotFound
	}
	if o.Status == "" {
		o.Status = entity.OrderCreated
	}
	o.ID = newID()
	o.CreatedAt = r.s.stamp()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	r.s.orders[o.ID] = &cp
	return nil
}

// populate copies o and fills the user summary and live product fields. Callers hold mu.
func (r *OrderRepository) populate(o *entity.Order) entity.Order {
	cp := *o
	if u, ok := r.s.users[o.UserID]; ok {
		cp.User = &entity.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	cp.Items = make([]entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.Product = nil
		if p, ok := r.s.products[it.ProductID]; ok {
			it.Product = &entity.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price}
		}
		cp.Items[i] = it
	}
	return cp
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.populate(o)
	return &out, nil
}

func (r *OrderRepository) collect(match func(*entity.Order) bool) []entity.Order {
	out := make([]entity.Order, 0)
	for _, o := range r.s.orders {
		if match(o) {
			out = append(out, r.populate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(o *entity.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(*entity.Order) bool { return true }), nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = r.s.Now()
	out := r.populate(o)
	return &out, nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
