package models

import (
	"time"
)

const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

// Notification mencatat setiap percobaan pengiriman notifikasi ke pelanggan.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	Channel   string    `gorm:"type:varchar(20);not null" json:"channel"`
	Recipient string    `gorm:"type:varchar(255)" json:"recipient"`
	Subject   string    `gorm:"type:varchar(255)" json:"subject"`
	Status    string    `gorm:"type:varchar(10);not null;index" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
