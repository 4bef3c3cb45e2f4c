package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
)

// Notifier dipanggil setelah transaksi order commit. Error tidak pernah
// membatalkan perubahan status.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, order *models.Order) error
	NotifyStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, changedBy, note string) error
	NotifyCancellation(ctx context.Context, order *models.Order, from models.OrderStatus, cancelledBy, reason string) error
}

// MultiNotifier meneruskan ke semua notifier secara paralel sehingga setiap
// channel mendapat sisa deadline ctx yang sama, lalu menggabungkan error-nya
type MultiNotifier []Notifier

func (m MultiNotifier) fanOut(call func(Notifier) error) error {
	errs := make([]error, len(m))
	var wg sync.WaitGroup
	for i, n := range m {
		wg.Add(1)
		go func(i int, n Notifier) {
			defer wg.Done()
			errs[i] = call(n)
		}(i, n)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (m MultiNotifier) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	return m.fanOut(func(n Notifier) error {
		return n.NotifyOrderPlaced(ctx, order)
	})
}

func (m MultiNotifier) NotifyStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, changedBy, note string) error {
	return m.fanOut(func(n Notifier) error {
		return n.NotifyStatusChange(ctx, order, from, changedBy, note)
	})
}

func (m MultiNotifier) NotifyCancellation(ctx context.Context, order *models.Order, from models.OrderStatus, cancelledBy, reason string) error {
	return m.fanOut(func(n Notifier) error {
		return n.NotifyCancellation(ctx, order, from, cancelledBy, reason)
	})
}

// NopNotifier untuk test dan saat tidak ada channel notifikasi
type NopNotifier struct{}

func (NopNotifier) NotifyOrderPlaced(context.Context, *models.Order) error { return nil }
func (NopNotifier) NotifyStatusChange(context.Context, *models.Order, models.OrderStatus, string, string) error {
	return nil
}
func (NopNotifier) NotifyCancellation(context.Context, *models.Order, models.OrderStatus, string, string) error {
	return nil
}

func logNotifyError(action string, order *models.Order, err error) {
	if err == nil {
		return
	}
	utils.ErrorLogger.WithFields(map[string]interface{}{
		"order_code": order.Code,
		"action":     action,
	}).Errorf("notification failed: %v", err)
}
