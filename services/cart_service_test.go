package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesLines(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	food := seedFood(t, f.db, "Pho Bo", 10000, true)

	cart, err := f.carts.Add(ctx, "s1", food.ID, 2)
	require.NoError(t, err)
	cart, err = f.carts.Add(ctx, "s1", food.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, "Pho Bo", cart.Lines[0].Name)
	assert.True(t, dec(50000).Equal(cart.TotalAmount()))

	// tersimpan di redis
	reloaded := f.carts.Get(ctx, "s1")
	assert.Equal(t, 5, reloaded.TotalItems())
}

func TestCartAddIgnoresInvalidInput(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	off := seedFood(t, f.db, "Sold out", 10000, false)
	on := seedFood(t, f.db, "Banh Mi", 5000, true)

	cart, err := f.carts.Add(ctx, "s1", on.ID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	cart, err = f.carts.Add(ctx, "s1", on.ID, -2)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	cart, err = f.carts.Add(ctx, "s1", off.ID, 1)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	cart, err = f.carts.Add(ctx, "s1", 9999, 1)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.False(t, f.mr.Exists("foodorder:cart:s1"))
}

func TestCartPriceSnapshot(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	food := seedFood(t, f.db, "Com Tam", 30000, true)

	_, err := f.carts.Add(ctx, "s1", food.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&food).Update("price", dec(45000)).Error)

	cart := f.carts.Get(ctx, "s1")
	assert.True(t, dec(30000).Equal(cart.Lines[0].UnitPrice))
}

func TestCartUpdateAndRemove(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	a := seedFood(t, f.db, "A", 10000, true)
	b := seedFood(t, f.db, "B", 5000, true)
	f.fill(t, "s1", map[uint]int{a.ID: 2, b.ID: 1})

	cart, err := f.carts.UpdateQuantity(ctx, "s1", a.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.TotalItems())

	// food yang tidak ada di cart diabaikan
	cart, err = f.carts.UpdateQuantity(ctx, "s1", 999, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.TotalItems())

	cart, err = f.carts.UpdateQuantity(ctx, "s1", b.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, a.ID, cart.Lines[0].FoodID)

	cart, err = f.carts.Remove(ctx, "s1", a.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.False(t, f.mr.Exists("foodorder:cart:s1"))
}

func TestCartSessionsAreIsolated(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	food := seedFood(t, f.db, "A", 10000, true)
	f.fill(t, "s1", map[uint]int{food.ID: 1})

	assert.True(t, f.carts.Get(ctx, "s2").IsEmpty())
	require.NoError(t, f.carts.Clear(ctx, "s1"))
	assert.True(t, f.carts.Get(ctx, "s1").IsEmpty())
}

func TestCartGetSurvivesCorruptPayload(t *testing.T) {
	f := newFixture(t, 200000, nil)
	require.NoError(t, f.mr.Set("foodorder:cart:s1", "{not json"))

	cart := f.carts.Get(context.Background(), "s1")
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, "s1", cart.SessionID)
}
