package memory

import (
	"context"
	"errors"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

var errQuantity = errors.New("cart line quantity must be at least 1")

type CartRepository struct{ s *Store }

func (r *CartRepository) AddQuantity(_ context.Context, userID, productID string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if qty < 1 {
		return errQuantity
	}
	cart, ok := r.s.carts[userID]
	if !ok {
		now := r.s.stamp()
		cart = &entity.Cart{ID: newID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.s.carts[userID] = cart
	}
	cart.UpdatedAt = r.s.Now()
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			return nil
		}
	}
	cart.Items = append(cart.Items, entity.CartLine{ProductID: productID, Quantity: qty})
	return nil
}

func (r *CartRepository) DecrementQuantity(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[userID]
	if !ok {
		return nil
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID != productID {
			continue
		}
		if cart.Items[i].Quantity > 1 {
			cart.Items[i].Quantity--
		} else {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		}
		return nil
	}
	return nil
}

func (r *CartRepository) RemoveLine(_ context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[userID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := make([]entity.CartLine, 0, len(cart.Items))
	for _, l := range cart.Items {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	cart.Items = kept
	return nil
}

func (r *CartRepository) Get(_ context.Context, userID string) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cart, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cart
	cp.Items = make([]entity.CartLine, len(cart.Items))
	copy(cp.Items, cart.Items)
	return &cp, nil
}

var _ repository.CartRepository = (*CartRepository)(nil)
