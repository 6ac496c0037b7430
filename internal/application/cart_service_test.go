package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_AccumulatesQuantity(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Mug", 12.5, 10)

	_, err := e.carts.AddItem(ctx, "u1", p.ID, 2)
	require.NoError(t, err)
	cart, err := e.carts.AddItem(ctx, "u1", p.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 62.5, cart.TotalAmount)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Mug", cart.Items[0].Product.Name)
}

func TestAddItem_ChecksRequestedQuantityOnly(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Lamp", 40, 3)

	_, err := e.carts.AddItem(ctx, "u1", p.ID, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 400, statusOf(err))

	_, err = e.carts.AddItem(ctx, "u1", p.ID, 3)
	require.NoError(t, err)
	// combined quantity is not re-checked against stock
	cart, err := e.carts.AddItem(ctx, "u1", p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItem_Validation(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Pen", 1, 5)

	_, err := e.carts.AddItem(ctx, "u1", p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = e.carts.AddItem(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = e.carts.AddItem(ctx, "u1", "", 1)
	assert.Equal(t, 400, statusOf(err))

	_, err = e.carts.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound, "failed adds must not create a cart")
}

func TestRemoveItem(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	a := e.product("A", 1, 10)
	b := e.product("B", 2, 10)

	_, err := e.carts.RemoveItem(ctx, "u1", a.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = e.carts.AddItem(ctx, "u1", a.ID, 1)
	require.NoError(t, err)
	before, err := e.carts.GetCart(ctx, "u1")
	require.NoError(t, err)

	after, err := e.carts.RemoveItem(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)

	after, err = e.carts.RemoveItem(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
	assert.NotNil(t, after.Items)

	// the empty cart persists
	_, err = e.carts.GetCart(ctx, "u1")
	assert.NoError(t, err)
}

func TestDecreaseItem_RemovesLineAtOne(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Cup", 3, 10)

	_, err := e.carts.DecreaseItem(ctx, "u1", p.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = e.carts.AddItem(ctx, "u1", p.ID, 1)
	require.NoError(t, err)
	cart, err := e.carts.IncreaseItem(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = e.carts.DecreaseItem(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = e.carts.DecreaseItem(ctx, "u1", p.ID)
	require.NoError(t, err)
	_, found := cart.Line(p.ID)
	assert.False(t, found)
}

func TestGetCart_DeletedProductContributesZero(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	keep := e.product("Keep", 10, 10)
	gone := e.product("Gone", 99, 10)

	_, err := e.carts.AddItem(ctx, "u1", keep.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, "u1", gone.ID, 1)
	require.NoError(t, err)
	require.NoError(t, e.cat.DeleteProduct(ctx, gone.ID))

	cart, err := e.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	line, ok := cart.Line(gone.ID)
	require.True(t, ok)
	assert.Nil(t, line.Product)
	assert.Equal(t, 20.0, cart.TotalAmount)
}

func TestCartsAreScopedToTheirOwner(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Hat", 5, 10)

	_, err := e.carts.AddItem(ctx, "u1", p.ID, 1)
	require.NoError(t, err)
	_, err = e.carts.GetCart(ctx, "u2")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestAddItem_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()
	p := e.product("Sock", 1, 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.carts.AddItem(ctx, "u1", p.ID, 1)
		}()
	}
	wg.Wait()

	cart, err := e.carts.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 20, cart.Items[0].Quantity)
}
