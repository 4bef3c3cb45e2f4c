package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-ordering-app/models"
)

func TestResolveZoneByNameAndKeyword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShippingService(db, dec(15000), dec(200000))
	ctx := context.Background()

	seedZone(t, db, "District 1", 20000, "ben thanh, nguyen hue", true)
	seedZone(t, db, "Thu Duc", 35000, "", true)
	seedZone(t, db, "Closed area", 99000, "ben thanh", false)

	zone, err := svc.ResolveZone(ctx, "12 Le Loi, DISTRICT 1, HCMC")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, "District 1", zone.AreaName)

	zone, err = svc.ResolveZone(ctx, "near Ben Thanh market")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, "District 1", zone.AreaName)

	seedZone(t, db, "Khanh Hoa", 30000, " Nha Trang ,cam ranh", true)
	zone, err = svc.ResolveZone(ctx, "123 Nha Trang city")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, "Khanh Hoa", zone.AreaName)

	zone, err = svc.ResolveZone(ctx, "Hanoi")
	require.NoError(t, err)
	assert.Nil(t, zone)

	zone, err = svc.ResolveZone(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, zone)
}

func TestResolveZonePrefersHighestFee(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShippingService(db, dec(15000), dec(200000))

	seedZone(t, db, "District", 10000, "", true)
	high := seedZone(t, db, "Far District", 40000, "", true)
	// fee sama: id terkecil menang
	seedZone(t, db, "Far", 40000, "", true)

	zone, err := svc.ResolveZone(context.Background(), "1 Far District road")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, high.ID, zone.ID)
}

func TestQuote(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShippingService(db, dec(15000), dec(200000))
	ctx := context.Background()
	seedZone(t, db, "District 7", 25000, "phu my hung", true)

	q := svc.Quote(ctx, "Phu My Hung", dec(50000))
	assert.True(t, q.Success)
	assert.False(t, q.IsFree)
	assert.True(t, dec(25000).Equal(q.Fee))
	assert.Equal(t, "District 7", q.AreaName)
	assert.Equal(t, "Shipping fee: 25.000 đ", q.Message)

	q = svc.Quote(ctx, "Somewhere else", dec(50000))
	assert.True(t, q.Success)
	assert.True(t, dec(15000).Equal(q.Fee))
	assert.Equal(t, OtherAreaLabel, q.AreaName)

	// tepat di threshold sudah gratis
	q = svc.Quote(ctx, "Phu My Hung", dec(200000))
	assert.True(t, q.IsFree)
	assert.True(t, q.Fee.IsZero())
}

func TestQuoteFallsBackOnLookupFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShippingService(db, dec(15000), dec(200000))
	require.NoError(t, db.Migrator().DropTable(&models.ShippingZone{}))

	q := svc.Quote(context.Background(), "District 1", dec(10000))
	assert.False(t, q.Success)
	assert.True(t, dec(15000).Equal(q.Fee))
}

func TestZoneCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShippingService(db, dec(15000), dec(200000))
	ctx := context.Background()

	zone := &models.ShippingZone{AreaName: "  Binh Thanh ", FeeAmount: dec(20000), IsActive: true}
	require.NoError(t, svc.CreateZone(ctx, zone))
	assert.Equal(t, "Binh Thanh", zone.AreaName)
	assert.Nil(t, zone.UpdatedAt)

	zone.FeeAmount = dec(22000)
	require.NoError(t, svc.UpdateZone(ctx, zone))
	got, err := svc.GetZone(ctx, zone.ID)
	require.NoError(t, err)
	assert.True(t, dec(22000).Equal(got.FeeAmount))
	assert.NotNil(t, got.UpdatedAt)

	bad := &models.ShippingZone{AreaName: "X", FeeAmount: dec(2000000)}
	assert.True(t, errors.Is(svc.CreateZone(ctx, bad), ErrInvalidZone))
	dist := -1
	bad = &models.ShippingZone{AreaName: "X", FeeAmount: dec(1000), EstimatedDistanceKm: &dist}
	assert.True(t, errors.Is(svc.CreateZone(ctx, bad), ErrInvalidZone))

	require.NoError(t, svc.DeleteZone(ctx, zone.ID))
	assert.ErrorIs(t, svc.DeleteZone(ctx, zone.ID), ErrZoneNotFound)
	_, err = svc.GetZone(ctx, zone.ID)
	assert.ErrorIs(t, err, ErrZoneNotFound)
}
