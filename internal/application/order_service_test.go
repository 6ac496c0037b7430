package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

func orderInput(p *entity.Product, qty int) CreateOrderInput {
	total := p.Price * float64(qty)
	return CreateOrderInput{
		Items:   []entity.OrderItem{{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty}},
		Address: entity.Address{FullAddress: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701"},
		Pricing: entity.Pricing{ItemsTotal: total, Tax: 1, ShippingCharges: 5, Discount: 0, TotalAmount: total + 6},
	}
}

func TestCreateOrder_SnapshotIsVerbatim(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	u := e.registered("uma", "uma@example.com", "secret1")
	p := e.product("Mug", 15, 10)

	o, err := e.orders.CreateOrder(ctx, u.ID, orderInput(p, 2))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCreated, o.Status)
	assert.Equal(t, 36.0, o.Pricing.TotalAmount)

	// stock is not reserved
	still, err := e.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, still.Stock)

	newPrice := 99.0
	_, err = e.cat.UpdateProduct(ctx, p.ID, ProductPatch{Price: &newPrice})
	require.NoError(t, err)

	got, err := e.orders.GetOrderByID(ctx, o.ID, Principal{UserID: u.ID, Role: entity.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.Items[0].Price)
	assert.Equal(t, 36.0, got.Pricing.TotalAmount)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, 99.0, got.Items[0].Product.Price)
	require.NotNil(t, got.User)
	assert.Equal(t, "uma", got.User.Username)

	job := e.mail.last()
	assert.Equal(t, mailtpl.OrderCreated, job.Data["Type"])
	assert.Equal(t, o.ID, job.Data["OrderID"])
	assert.Equal(t, "36.00", job.Data["OrderTotal"])
}

func TestCreateOrder_ShapeValidation(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	u := e.registered("vic", "vic@example.com", "secret1")
	p := e.product("Mug", 15, 10)

	empty := orderInput(p, 1)
	empty.Items = nil
	noCity := orderInput(p, 1)
	noCity.Address.City = ""
	zeroQty := orderInput(p, 1)
	zeroQty.Items[0].Quantity = 0

	for name, in := range map[string]CreateOrderInput{"no items": empty, "no city": noCity, "zero qty": zeroQty} {
		t.Run(name, func(t *testing.T) {
			_, err := e.orders.CreateOrder(ctx, u.ID, in)
			require.Error(t, err)
			assert.Equal(t, 400, statusOf(err))
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	u := e.registered("wes", "wes@example.com", "secret1")
	admin := e.adminUser()
	p := e.product("Mug", 15, 10)
	o, err := e.orders.CreateOrder(ctx, u.ID, orderInput(p, 1))
	require.NoError(t, err)

	asUser := Principal{UserID: u.ID, Role: entity.RoleUser}
	asAdmin := Principal{UserID: admin.ID, Role: entity.RoleAdmin}

	t.Run("non admin is forbidden whatever the status", func(t *testing.T) {
		for _, st := range []entity.OrderStatus{entity.OrderShipped, "bogus", ""} {
			_, err := e.orders.UpdateStatus(ctx, o.ID, st, asUser)
			assert.ErrorIs(t, err, ErrForbidden)
			assert.Equal(t, 403, statusOf(err))
		}
		_, err := e.orders.UpdateStatus(ctx, "missing", "bogus", asUser)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown status leaves the order unchanged", func(t *testing.T) {
		for _, st := range []entity.OrderStatus{"bogus", "processing", "paid", "pending"} {
			_, err := e.orders.UpdateStatus(ctx, o.ID, st, asAdmin)
			assert.ErrorIs(t, err, ErrInvalidStatus)
			assert.Equal(t, 400, statusOf(err))
		}
		got, err := e.orders.GetOrderByID(ctx, o.ID, asAdmin)
		require.NoError(t, err)
		assert.Equal(t, entity.OrderCreated, got.Status)
	})

	t.Run("any recognised status is accepted", func(t *testing.T) {
		for _, st := range []entity.OrderStatus{entity.OrderDelivered, entity.OrderCreated, entity.OrderPaid} {
			got, err := e.orders.UpdateStatus(ctx, o.ID, st, asAdmin)
			require.NoError(t, err)
			assert.Equal(t, st, got.Status)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := e.orders.UpdateStatus(ctx, "missing", entity.OrderPaid, asAdmin)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderListsAndVisibility(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	a := e.registered("xena", "xena@example.com", "secret1")
	b := e.registered("yuri", "yuri@example.com", "secret1")
	admin := e.adminUser()
	p := e.product("Mug", 15, 10)

	first, err := e.orders.CreateOrder(ctx, a.ID, orderInput(p, 1))
	require.NoError(t, err)
	second, err := e.orders.CreateOrder(ctx, a.ID, orderInput(p, 2))
	require.NoError(t, err)
	other, err := e.orders.CreateOrder(ctx, b.ID, orderInput(p, 3))
	require.NoError(t, err)

	mine, err := e.orders.GetOrdersByUser(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, err = e.orders.GetAllOrders(ctx, Principal{UserID: a.ID, Role: entity.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)
	all, err := e.orders.GetAllOrders(ctx, Principal{UserID: admin.ID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)

	_, err = e.orders.GetOrderByID(ctx, other.ID, Principal{UserID: a.ID, Role: entity.RoleUser})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	none, err := e.orders.GetOrdersByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDeleteOrder(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	u := e.registered("zoe", "zoe@example.com", "secret1")
	admin := e.adminUser()
	p := e.product("Mug", 15, 10)
	o, err := e.orders.CreateOrder(ctx, u.ID, orderInput(p, 1))
	require.NoError(t, err)

	err = e.orders.DeleteOrder(ctx, o.ID, Principal{UserID: u.ID, Role: entity.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	asAdmin := Principal{UserID: admin.ID, Role: entity.RoleAdmin}
	require.NoError(t, e.orders.DeleteOrder(ctx, o.ID, asAdmin))
	assert.ErrorIs(t, e.orders.DeleteOrder(ctx, o.ID, asAdmin), ErrOrderNotFound)
}
