package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingZone adalah area pengiriman dengan tarif tetap.
// SearchKeywords berisi token dipisah koma, dicocokkan secara substring.
type ShippingZone struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	AreaName            string          `gorm:"type:varchar(200);not null" json:"area_name"`
	Description         string          `gorm:"type:varchar(500)" json:"description"`
	FeeAmount           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"fee_amount"`
	EstimatedDistanceKm *int            `json:"estimated_distance_km,omitempty"`
	IsActive            bool            `gorm:"not null;index" json:"is_active"`
	SearchKeywords      string          `gorm:"type:varchar(1000)" json:"search_keywords"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           *time.Time      `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// Keywords returns the trimmed, lowercased, non-empty keyword tokens.
func (z *ShippingZone) Keywords() []string {
	var out []string
	for _, k := range strings.Split(z.SearchKeywords, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
