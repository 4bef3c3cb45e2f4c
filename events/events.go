package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderCancelled     = "order.cancelled"
)

// OrderEvent adalah payload yang dikirim ke broker
type OrderEvent struct {
	Type         string             `json:"type"`
	OrderID      uint               `json:"order_id"`
	Code         string             `json:"code"`
	CustomerName string             `json:"customer_name"`
	PhoneNumber  string             `json:"phone_number"`
	FromStatus   models.OrderStatus `json:"from_status,omitempty"`
	ToStatus     models.OrderStatus `json:"to_status"`
	ChangedBy    string             `json:"changed_by,omitempty"`
	Note         string             `json:"note,omitempty"`
	FinalTotal   decimal.Decimal    `json:"final_total"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

func NewOrderEvent(eventType string, order *models.Order, from models.OrderStatus, changedBy, note string) OrderEvent {
	return OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		Code:         order.Code,
		CustomerName: order.CustomerName,
		PhoneNumber:  order.PhoneNumber,
		FromStatus:   from,
		ToStatus:     order.Status,
		ChangedBy:    changedBy,
		Note:         note,
		FinalTotal:   order.FinalTotal,
		OccurredAt:   time.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt OrderEvent) error
	Close() error
}

// NoopPublisher dipakai saat EVENT_BROKER=none
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// Notifier mengubah event lifecycle order menjadi pesan broker
type Notifier struct {
	Publisher Publisher
}

func NewNotifier(p Publisher) *Notifier {
	return &Notifier{Publisher: p}
}

func (n *Notifier) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	return n.Publisher.Publish(ctx, NewOrderEvent(TypeOrderPlaced, order, "", "", ""))
}

func (n *Notifier) NotifyStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, changedBy, note string) error {
	return n.Publisher.Publish(ctx, NewOrderEvent(TypeOrderStatusChanged, order, from, changedBy, note))
}

func (n *Notifier) NotifyCancellation(ctx context.Context, order *models.Order, from models.OrderStatus, cancelledBy, reason string) error {
	return n.Publisher.Publish(ctx, NewOrderEvent(TypeOrderCancelled, order, from, cancelledBy, reason))
}
