package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	ImageUrl    string    `gorm:"type:varchar(255)" json:"image_url"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	Foods       []Food    `gorm:"foreignKey:CategoryID" json:"foods,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
