package services

import "errors"

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrZoneNotFound         = errors.New("shipping zone not found")
	ErrFoodNotFound         = errors.New("food not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidContact       = errors.New("customer name and phone number are required")
	ErrAddressRequired      = errors.New("delivery address is required")
	ErrCancelReasonRequired = errors.New("cancellation reason is required")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrInvalidStatus        = errors.New("unknown order status")
	ErrConcurrentUpdate     = errors.New("order was modified by another request")
	ErrInvalidZone          = errors.New("invalid shipping zone")
	ErrPersistence          = errors.New("could not save changes, please try again")
)
