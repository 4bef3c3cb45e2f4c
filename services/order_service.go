package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/utils"
	"gorm.io/gorm"
)

const (
	orderCodePrefix  = "DH"
	codeAttempts     = 5
	notifyTimeout    = 10 * time.Second
	SystemActor      = "system"
	cancelNotePrefix = "Cancelled: "
	defaultOrderPage = 20
	maxOrderPageSize = 100
)

// transitions: graf status yang diizinkan lewat SetStatus.
// cancelled hanya bisa dicapai lewat Cancel.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing},
	models.StatusProcessing: {models.StatusShipping},
	models.StatusShipping:   {models.StatusCompleted},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Contact: data pemesan yang disalin ke order saat checkout
type Contact struct {
	Name  string
	Phone string
	Email string
	Note  string
}

func (c *Contact) normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Note = strings.TrimSpace(c.Note)
	if c.Name == "" || c.Phone == "" {
		return ErrInvalidContact
	}
	return nil
}

type OrderFilter struct {
	Search   string
	Status   models.OrderStatus
	From     *time.Time
	To       *time.Time
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal
	Page     int
	PageSize int
}

type OrderService struct {
	db       *gorm.DB
	carts    *CartService
	shipping *ShippingService
	notifier Notifier
	now      func() time.Time
	// batas waktu fan-out notifikasi setelah commit
	notifyTimeout time.Duration
}

func NewOrderService(db *gorm.DB, carts *CartService, shipping *ShippingService, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{
		db:            db,
		carts:         carts,
		shipping:      shipping,
		notifier:      notifier,
		now:           time.Now,
		notifyTimeout: notifyTimeout,
	}
}

func orderLog(order *models.Order) *logrus.Entry {
	return utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"order_code": order.Code,
	})
}

// GenerateCode: "DH" + yyyyMMddHHmmss + 4 digit acak (1000-9998)
func GenerateCode(t time.Time) string {
	return fmt.Sprintf("%s%s%d", orderCodePrefix, t.Format("20060102150405"), 1000+rand.IntN(8999))
}

// Checkout membaca cart session, menghitung ongkir dari alamat lalu membuat order.
func (s *OrderService) Checkout(ctx context.Context, sessionID string, contact Contact, address string) (*models.Order, error) {
	cart := s.carts.Get(ctx, sessionID)
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	quote := s.shipping.Quote(ctx, address, cart.TotalAmount())
	order, err := s.CreateOrder(ctx, cart, contact, address, quote.Fee)
	if err != nil {
		return nil, err
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	logNotifyError("order_placed", order, s.notifier.NotifyOrderPlaced(nctx, order))

	return order, nil
}

// CreateOrder menyimpan order + baris order dalam satu transaksi lalu
// mengosongkan cart. Gagal mengosongkan cart hanya dicatat di log.
func (s *OrderService) CreateOrder(ctx context.Context, cart *models.Cart, contact Contact, address string, fee decimal.Decimal) (*models.Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := contact.normalize(); err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}

	var order *models.Order
	var err error
	for attempt := 1; attempt <= codeAttempts; attempt++ {
		order, err = s.insertOrder(ctx, cart, contact, address, fee)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		utils.InfoLogger.WithField("attempt", attempt).Warn("order code collision, retrying")
	}
	if err != nil {
		utils.ErrorLogger.WithField("session_id", cart.SessionID).Errorf("create order: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	orderLog(order).WithField("final_total", order.FinalTotal.String()).Info("order created")

	if cart.SessionID != "" && s.carts != nil {
		if err := s.carts.Clear(ctx, cart.SessionID); err != nil {
			utils.ErrorLogger.WithField("session_id", cart.SessionID).Errorf("clear cart after order %s: %v", order.Code, err)
		}
	}
	return order, nil
}

func (s *OrderService) uniqueCode(tx *gorm.DB) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := GenerateCode(s.now())
		var n int64
		if err := tx.Model(&models.Order{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", gorm.ErrDuplicatedKey
}

func (s *OrderService) insertOrder(ctx context.Context, cart *models.Cart, contact Contact, address string, fee decimal.Decimal) (*models.Order, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	code, err := s.uniqueCode(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order := &models.Order{
		Code:            code,
		CustomerName:    contact.Name,
		PhoneNumber:     contact.Phone,
		Email:           contact.Email,
		DeliveryAddress: address,
		Note:            contact.Note,
		TotalAmount:     cart.TotalAmount(),
		ShippingFee:     fee,
		Status:          models.StatusPending,
		OrderDate:       s.now(),
	}
	if err := tx.Omit("Lines", "Events").Create(order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, models.OrderLine{
			OrderID:   order.ID,
			FoodID:    l.FoodID,
			FoodName:  l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	if err := tx.Create(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

func (s *OrderService) find(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &order, nil
}

// SetStatus memindahkan order mengikuti graf transitions dan menambah tepat
// satu event. Notifikasi dikirim setelah commit.
func (s *OrderService) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus, changedBy, note string) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if status == models.StatusCancelled {
		return nil, fmt.Errorf("%w: use cancel with a reason", ErrInvalidTransition)
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !CanTransition(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}

	now := s.now()
	updates := map[string]interface{}{"status": status}
	if status == models.StatusCompleted {
		updates["completed_date"] = now
	}

	event := models.OrderStatusEvent{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   status,
		ChangedBy:  actor(changedBy),
		Note:       strings.TrimSpace(note),
		ChangedAt:  now,
	}
	if err := s.applyTransition(ctx, order, from, updates, &event); err != nil {
		return nil, err
	}

	order.Status = status
	if status == models.StatusCompleted {
		order.CompletedDate = &now
	}
	orderLog(order).WithFields(logrus.Fields{"from": from, "to": status, "by": event.ChangedBy}).Info("order status changed")

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	logNotifyError("status_change", order, s.notifier.NotifyStatusChange(nctx, order, from, event.ChangedBy, event.Note))

	return order, nil
}

// Cancel membutuhkan alasan, ditolak sebelum ada perubahan apa pun.
func (s *OrderService) Cancel(ctx context.Context, orderID uint, reason, cancelledBy string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrCancelReasonRequired
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if from.Terminal() {
		return nil, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, from)
	}

	now := s.now()
	updates := map[string]interface{}{
		"status":              models.StatusCancelled,
		"cancellation_reason": reason,
		"cancelled_date":      now,
	}
	event := models.OrderStatusEvent{
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   models.StatusCancelled,
		ChangedBy:  actor(cancelledBy),
		Note:       cancelNotePrefix + reason,
		ChangedAt:  now,
	}
	if err := s.applyTransition(ctx, order, from, updates, &event); err != nil {
		return nil, err
	}

	order.Status = models.StatusCancelled
	order.CancellationReason = reason
	order.CancelledDate = &now
	orderLog(order).WithFields(logrus.Fields{"from": from, "by": event.ChangedBy, "reason": reason}).Info("order cancelled")

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	logNotifyError("cancellation", order, s.notifier.NotifyCancellation(nctx, order, from, event.ChangedBy, reason))

	return order, nil
}

// applyTransition: update bersyarat (status lama harus masih sama) + insert event
func (s *OrderService) applyTransition(ctx context.Context, order *models.Order, from models.OrderStatus, updates map[string]interface{}, event *models.OrderStatusEvent) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, tx.Error)
	}

	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		utils.ErrorLogger.WithField("order_code", order.Code).Errorf("update status: %v", res.Error)
		return fmt.Errorf("%w: %v", ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrConcurrentUpdate
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.WithField("order_code", order.Code).Errorf("append status event: %v", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.WithField("order_code", order.Code).Errorf("commit status change: %v", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func actor(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return SystemActor
	}
	return name
}

// History: event terbaru lebih dulu
func (s *OrderService) History(ctx context.Context, orderID uint) ([]models.OrderStatusEvent, error) {
	if _, err := s.find(ctx, orderID); err != nil {
		return nil, err
	}
	var events []models.OrderStatusEvent
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at DESC, id DESC").
		Find(&events).Error
	return events, err
}

func (s *OrderService) GetByID(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at DESC, id DESC")
		}).
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) GetByCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at DESC, id DESC")
		}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List untuk halaman admin: pencarian kode/nama/telepon, status, rentang
// tanggal (tanggal akhir inklusif sampai akhir hari), rentang total.
func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > maxOrderPageSize {
		f.PageSize = defaultOrderPage
	}

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := s.filtered(ctx, f).Order("order_date DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&orders).Error
	return orders, total, err
}

// All returns every order matching the filter, used by exports.
func (s *OrderService) All(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	err := s.filtered(ctx, f).Preload("Lines").Order("order_date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (s *OrderService) filtered(ctx context.Context, f OrderFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(code) LIKE ? OR LOWER(customer_name) LIKE ? OR phone_number LIKE ?", like, like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("order_date >= ?", startOfDay(*f.From))
	}
	if f.To != nil {
		q = q.Where("order_date < ?", startOfDay(*f.To).AddDate(0, 0, 1))
	}
	if f.MinTotal != nil {
		q = q.Where("final_total >= ?", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		q = q.Where("final_total <= ?", *f.MaxTotal)
	}
	return q
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
