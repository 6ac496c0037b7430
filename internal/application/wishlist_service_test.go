package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
)

func TestWishlist(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	u := e.registered("amy", "amy@example.com", "secret1")
	a := e.product("A", 1, 1)
	b := e.product("B", 2, 1)

	_, err := e.wish.Add(ctx, u.ID, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = e.wish.Add(ctx, u.ID, a.ID)
	require.NoError(t, err)
	_, err = e.wish.Add(ctx, u.ID, b.ID)
	require.NoError(t, err)
	items, err := e.wish.Add(ctx, u.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, items, 2, "adding twice is a no-op")
	assert.Equal(t, a.ID, items[0].ProductID)
	assert.Equal(t, b.ID, items[1].ProductID)
	require.NotNil(t, items[0].Product)

	items, err = e.wish.Remove(ctx, u.ID, "not-saved")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = e.wish.Remove(ctx, u.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ProductID)
}

func TestAdminUsers(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	admin := e.adminUser()
	u := e.registered("ben", "ben@example.com", "secret1")
	_, _, err := e.auth.Login(ctx, LoginInput{Email: "ben@example.com", Password: "secret1"})
	require.NoError(t, err)

	asUser := Principal{UserID: u.ID, Role: entity.RoleUser}
	asAdmin := Principal{UserID: admin.ID, Role: entity.RoleAdmin}

	_, err = e.admin.ListUsers(ctx, asUser)
	assert.ErrorIs(t, err, ErrForbidden)

	users, err := e.admin.ListUsers(ctx, asAdmin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := e.admin.GetUser(ctx, u.ID, asAdmin)
	require.NoError(t, err)
	assert.Equal(t, "ben", got.Username)

	assert.Error(t, e.admin.DeleteUser(ctx, admin.ID, asAdmin))
	require.NoError(t, e.admin.DeleteUser(ctx, u.ID, asAdmin))
	_, err = e.store.Sessions().Get(ctx, u.ID)
	assert.Error(t, err)
	assert.ErrorIs(t, e.admin.DeleteUser(ctx, u.ID, asAdmin), ErrUserNotFound)
}

func TestAdminDeleteUserKeepsOrders(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	admin := e.adminUser()
	u := e.registered("cara", "cara@example.com", "secret1")
	asAdmin := Principal{UserID: admin.ID, Role: entity.RoleAdmin}

	o := &entity.Order{UserID: u.ID, Items: []entity.OrderItem{{ProductID: "p1", Name: "Mug", Price: 3, Quantity: 2}}}
	require.NoError(t, e.store.Orders().Create(ctx, o))

	require.NoError(t, e.admin.DeleteUser(ctx, u.ID, asAdmin))

	all, err := e.orders.GetAllOrders(ctx, asAdmin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, o.ID, all[0].ID)
	assert.Empty(t, all[0].UserID)
	assert.Nil(t, all[0].User)
	assert.Equal(t, "Mug", all[0].Items[0].Name)

	got, err := e.orders.GetOrderByID(ctx, o.ID, asAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)

	require.NoError(t, e.orders.DeleteOrder(ctx, o.ID, asAdmin))
}
