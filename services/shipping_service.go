package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

const OtherAreaLabel = "Other area"

var maxZoneFee = decimal.NewFromInt(1000000)

type Quote struct {
	Success           bool                 `json:"success"`
	Fee               decimal.Decimal      `json:"shipping_fee"`
	IsFree            bool                 `json:"is_free_shipping"`
	Zone              *models.ShippingZone `json:"-"`
	AreaName          string               `json:"area_name,omitempty"`
	EstimatedDistance *int                 `json:"estimated_distance,omitempty"`
	Message           string               `json:"message"`
}

type ShippingService struct {
	db         *gorm.DB
	defaultFee decimal.Decimal
	threshold  decimal.Decimal
}

func NewShippingService(db *gorm.DB, defaultFee, freeThreshold decimal.Decimal) *ShippingService {
	return &ShippingService{db: db, defaultFee: defaultFee, threshold: freeThreshold}
}

func (s *ShippingService) DefaultFee() decimal.Decimal {
	return s.defaultFee
}

func (s *ShippingService) FreeShippingThreshold() decimal.Decimal {
	return s.threshold
}

func (s *ShippingService) IsFreeShipping(orderTotal decimal.Decimal) bool {
	return orderTotal.GreaterThanOrEqual(s.threshold)
}

// ResolveZone mencari zona aktif pertama (fee tertinggi dulu, id sebagai
// tie-break) yang nama area atau salah satu keyword-nya ada di alamat.
func (s *ShippingService) ResolveZone(ctx context.Context, address string) (*models.ShippingZone, error) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return nil, nil
	}

	var zones []models.ShippingZone
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("fee_amount DESC, id ASC").
		Find(&zones).Error; err != nil {
		return nil, err
	}

	for i := range zones {
		z := &zones[i]
		if name := strings.ToLower(strings.TrimSpace(z.AreaName)); name != "" && strings.Contains(addr, name) {
			return z, nil
		}
		for _, kw := range z.Keywords() {
			if strings.Contains(addr, kw) {
				return z, nil
			}
		}
	}
	return nil, nil
}

// FeeFor tanpa cek free shipping: zona yang cocok atau default fee
func (s *ShippingService) FeeFor(ctx context.Context, address string) (decimal.Decimal, error) {
	zone, err := s.ResolveZone(ctx, address)
	if err != nil {
		return s.defaultFee, err
	}
	if zone != nil {
		return zone.FeeAmount, nil
	}
	return s.defaultFee, nil
}

// Quote never returns an error. Lookup failures fall back to the default fee
// with Success=false.
func (s *ShippingService) Quote(ctx context.Context, address string, orderTotal decimal.Decimal) Quote {
	if s.IsFreeShipping(orderTotal) {
		return Quote{
			Success: true,
			Fee:     decimal.Zero,
			IsFree:  true,
			Message: fmt.Sprintf("Free shipping for orders from %s", utils.FormatCurrency(s.threshold)),
		}
	}

	zone, err := s.ResolveZone(ctx, address)
	if err != nil {
		utils.ErrorLogger.WithField("address", address).Errorf("resolve shipping zone: %v", err)
		return Quote{
			Success: false,
			Fee:     s.defaultFee,
			Message: "Could not calculate the shipping fee, the default fee applies",
		}
	}

	if zone != nil {
		return Quote{
			Success:           true,
			Fee:               zone.FeeAmount,
			Zone:              zone,
			AreaName:          zone.AreaName,
			EstimatedDistance: zone.EstimatedDistanceKm,
			Message:           fmt.Sprintf("Shipping fee: %s", utils.FormatCurrency(zone.FeeAmount)),
		}
	}

	return Quote{
		Success:  true,
		Fee:      s.defaultFee,
		AreaName: OtherAreaLabel,
		Message:  fmt.Sprintf("Shipping fee: %s", utils.FormatCurrency(s.defaultFee)),
	}
}

// ---------- admin CRUD ----------

func validateZone(z *models.ShippingZone) error {
	z.AreaName = strings.TrimSpace(z.AreaName)
	if z.AreaName == "" {
		return fmt.Errorf("%w: area name is required", ErrInvalidZone)
	}
	if z.FeeAmount.IsNegative() || z.FeeAmount.GreaterThan(maxZoneFee) {
		return fmt.Errorf("%w: fee must be between 0 and %s", ErrInvalidZone, maxZoneFee)
	}
	if d := z.EstimatedDistanceKm; d != nil && (*d < 0 || *d > 1000) {
		return fmt.Errorf("%w: distance must be between 0 and 1000 km", ErrInvalidZone)
	}
	return nil
}

func (s *ShippingService) ListZones(ctx context.Context) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := s.db.WithContext(ctx).Order("area_name ASC").Find(&zones).Error
	return zones, err
}

func (s *ShippingService) GetZone(ctx context.Context, id uint) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	if err := s.db.WithContext(ctx).First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return &zone, nil
}

func (s *ShippingService) CreateZone(ctx context.Context, zone *models.ShippingZone) error {
	if err := validateZone(zone); err != nil {
		return err
	}
	zone.ID = 0
	zone.CreatedAt = time.Now()
	zone.UpdatedAt = nil
	return s.db.WithContext(ctx).Create(zone).Error
}

func (s *ShippingService) UpdateZone(ctx context.Context, zone *models.ShippingZone) error {
	if err := validateZone(zone); err != nil {
		return err
	}
	existing, err := s.GetZone(ctx, zone.ID)
	if err != nil {
		return err
	}
	now := time.Now()
	zone.CreatedAt = existing.CreatedAt
	zone.UpdatedAt = &now
	return s.db.WithContext(ctx).Save(zone).Error
}

func (s *ShippingService) DeleteZone(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ShippingZone{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrZoneNotFound
	}
	return nil
}
