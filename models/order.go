package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipping   OrderStatus = "shipping"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

var AllOrderStatuses = []OrderStatus{
	StatusPending, StatusProcessing, StatusShipping, StatusCompleted, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range AllOrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DisplayName -> label untuk email dan ekspor
func (s OrderStatus) DisplayName() string {
	switch s {
	case StatusPending:
		return "Awaiting confirmation"
	case StatusProcessing:
		return "Preparing"
	case StatusShipping:
		return "Out for delivery"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type Order struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	Code               string             `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	CustomerName       string             `gorm:"type:varchar(100);not null" json:"customer_name"`
	PhoneNumber        string             `gorm:"type:varchar(20);not null;index" json:"phone_number"`
	Email              string             `gorm:"type:varchar(100)" json:"email,omitempty"`
	DeliveryAddress    string             `gorm:"type:varchar(500);not null" json:"delivery_address"`
	Note               string             `gorm:"type:varchar(500)" json:"note,omitempty"`
	TotalAmount        decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	ShippingFee        decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"shipping_fee"`
	FinalTotal         decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"final_total"`
	Status             OrderStatus        `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OrderDate          time.Time          `gorm:"not null;index" json:"order_date"`
	CompletedDate      *time.Time         `json:"completed_date,omitempty"`
	CancellationReason string             `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`
	CancelledDate      *time.Time         `json:"cancelled_date,omitempty"`
	Lines              []OrderLine        `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	Events             []OrderStatusEvent `gorm:"foreignKey:OrderID" json:"events,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// BeforeSave menjaga final_total selalu = total_amount + shipping_fee
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.FinalTotal = o.TotalAmount.Add(o.ShippingFee)
	return nil
}

type OrderLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	FoodID    uint            `gorm:"not null;index" json:"food_id"`
	FoodName  string          `gorm:"type:varchar(200);not null" json:"food_name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderStatusEvent append-only, tidak pernah diubah setelah ditulis
type OrderStatusEvent struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	ChangedBy  string      `gorm:"type:varchar(100);not null" json:"changed_by"`
	Note       string      `gorm:"type:varchar(500)" json:"note,omitempty"`
	ChangedAt  time.Time   `gorm:"not null;index" json:"changed_at"`
}
