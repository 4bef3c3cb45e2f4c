package models

// All dipakai untuk AutoMigrate di main dan di test
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Food{},
		&ShippingZone{},
		&Order{},
		&OrderLine{},
		&OrderStatusEvent{},
		&Notification{},
	}
}
