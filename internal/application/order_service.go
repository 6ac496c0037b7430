package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/config"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/apperr"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

// OrderService stores orders as snapshots of what the client submitted.
// Prices are never recomputed from the catalog and stock is not reserved.
type OrderService struct {
	Orders repo.OrderRepository
	Users  repo.UserRepository
	Mail   Mailer
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewOrderService(orders repo.OrderRepository, users repo.UserRepository, mail Mailer, cfg *config.Config, logger *logrus.Logger) *OrderService {
	return &OrderService{Orders: orders, Users: users, Mail: mail, Cfg: cfg, Logger: logger}
}

type CreateOrderInput struct {
	Items   []entity.OrderItem
	Address entity.Address
	Pricing entity.Pricing
}

func validateOrderInput(in CreateOrderInput) error {
	var details []any
	bad := func(field, msg string) {
		details = append(details, validation.FieldError{Field: field, Message: msg})
	}
	if len(in.Items) == 0 {
		bad("items", "must contain at least 1 item")
	}
	for i, it := range in.Items {
		prefix := "items[" + strconv.Itoa(i) + "]."
		if strings.TrimSpace(it.ProductID) == "" {
			bad(prefix+"productId", "is required")
		}
		if strings.TrimSpace(it.Name) == "" {
			bad(prefix+"name", "is required")
		}
		if it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
			bad(prefix+"price", "must be a non-negative number")
		}
		if it.Quantity < 1 {
			bad(prefix+"quantity", "must be at least 1")
		}
	}
	if strings.TrimSpace(in.Address.FullAddress) == "" {
		bad("address.fullAddress", "is required")
	}
	if strings.TrimSpace(in.Address.City) == "" {
		bad("address.city", "is required")
	}
	if strings.TrimSpace(in.Address.State) == "" {
		bad("address.state", "is required")
	}
	pr := in.Pricing
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"itemsTotal", pr.ItemsTotal},
		{"tax", pr.Tax},
		{"shippingCharges", pr.ShippingCharges},
		{"discount", pr.Discount},
		{"totalAmount", pr.TotalAmount},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			bad("pricing."+f.name, "must be a number")
		}
	}
	if len(details) > 0 {
		return apperr.Validation("validation error", details...)
	}
	return nil
}

// CreateOrder persists the submitted items, address and pricing verbatim in
// the Created state.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*entity.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}
	items := make([]entity.OrderItem, len(in.Items))
	for i, it := range in.Items {
		it.Product = nil
		items[i] = it
	}
	o := &entity.Order{
		UserID:  userID,
		Items:   items,
		Address: in.Address,
		Pricing: in.Pricing,
		Status:  entity.OrderCreated,
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	incr(metricOrdersCreated)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": o.ID, "user_id": userID, "total": o.Pricing.TotalAmount}).Info("order created")
	}
	s.sendConfirmation(ctx, o)
	return o, nil
}

func (s *OrderService) sendConfirmation(ctx context.Context, o *entity.Order) {
	if s.Mail == nil || s.Users == nil {
		return
	}
	u, err := s.Users.GetByID(ctx, o.UserID)
	if err != nil {
		return
	}
	lines := make([]mailtpl.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, mailtpl.OrderLine{Name: it.Name, Quantity: it.Quantity, Price: money(it.Price)})
	}
	data := mailtpl.NewOrderCreatedData(s.Cfg, u.Username, u.Email, o.ID, string(o.Status), money(o.Pricing.TotalAmount), lines)
	sendBestEffort(ctx, s.Mail, s.Logger, universalJob(u.Email, data))
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

// UpdateStatus sets any recognised status; transitions are not constrained.
// The actor is checked before the status and the status before the lookup.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus, actor Principal) (*entity.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus.WithDetails(validation.FieldError{Field: "status", Tag: "oneof", Message: "must be one of " + statusList()})
	}
	o, err := s.Orders.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": o.ID, "status": status, "actor": actor.UserID}).Info("order status updated")
	}
	return o, nil
}

func statusList() string {
	names := make([]string, len(entity.OrderStatuses))
	for i, st := range entity.OrderStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// GetOrdersByUser returns the caller's orders, newest first.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

func (s *OrderService) GetAllOrders(ctx context.Context, actor Principal) ([]entity.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	orders, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// GetOrderByID hides other users' orders behind NotFound.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID string, actor Principal) (*entity.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	owned := o.UserID != "" && o.UserID == actor.UserID
	if !owned && !actor.IsAdmin() {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID string, actor Principal) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	err := s.Orders.Delete(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": orderID, "actor": actor.UserID}).Info("order deleted")
	}
	return nil
}
