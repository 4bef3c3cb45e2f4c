package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-ordering-app/hub"
	"github.com/yeremiapane/food-ordering-app/models"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyOrderPlaced(ctx context.Context, order *models.Order) error {
	return m.Called(order.Code).Error(0)
}

func (m *mockNotifier) NotifyStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, changedBy, note string) error {
	return m.Called(order.Status, from, changedBy).Error(0)
}

func (m *mockNotifier) NotifyCancellation(ctx context.Context, order *models.Order, from models.OrderStatus, cancelledBy, reason string) error {
	return m.Called(from, cancelledBy, reason).Error(0)
}

func validContact() Contact {
	return Contact{Name: "Lan", Phone: "0901234567", Email: "lan@example.com"}
}

func placeOrder(t *testing.T, f *fixture) *models.Order {
	t.Helper()
	a := seedFood(t, f.db, "A", 10000, true)
	f.fill(t, "s1", map[uint]int{a.ID: 1})
	order, err := f.orders.Checkout(context.Background(), "s1", validContact(), "1 Main street")
	require.NoError(t, err)
	return order
}

func TestCheckoutComputesTotals(t *testing.T) {
	n := new(mockNotifier)
	n.On("NotifyOrderPlaced", mock.Anything).Return(nil)
	f := newFixture(t, 200000, n)

	a := seedFood(t, f.db, "A", 10000, true)
	b := seedFood(t, f.db, "B", 5000, true)
	f.fill(t, "s1", map[uint]int{a.ID: 2, b.ID: 1})

	order, err := f.orders.Checkout(context.Background(), "s1", validContact(), "42 Nowhere road")
	require.NoError(t, err)

	assert.True(t, dec(25000).Equal(order.TotalAmount))
	assert.True(t, dec(15000).Equal(order.ShippingFee))
	assert.True(t, dec(40000).Equal(order.FinalTotal))
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Regexp(t, `^DH\d{14}\d{4}$`, order.Code)
	assert.Len(t, order.Lines, 2)

	// cart dikosongkan
	assert.True(t, f.carts.Get(context.Background(), "s1").IsEmpty())

	stored, err := f.orders.GetByCode(context.Background(), strings.ToLower(order.Code))
	require.NoError(t, err)
	assert.True(t, dec(40000).Equal(stored.FinalTotal))
	assert.Len(t, stored.Lines, 2)
	n.AssertExpectations(t)
}

func TestCheckoutFreeShipping(t *testing.T) {
	f := newFixture(t, 20000, nil)
	seedZone(t, f.db, "Main", 30000, "", true)
	a := seedFood(t, f.db, "A", 10000, true)
	b := seedFood(t, f.db, "B", 5000, true)
	f.fill(t, "s1", map[uint]int{a.ID: 2, b.ID: 1})

	order, err := f.orders.Checkout(context.Background(), "s1", validContact(), "Main street")
	require.NoError(t, err)
	assert.True(t, order.ShippingFee.IsZero())
	assert.True(t, dec(25000).Equal(order.FinalTotal))
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()

	_, err := f.orders.Checkout(ctx, "empty", validContact(), "addr")
	assert.ErrorIs(t, err, ErrEmptyCart)

	a := seedFood(t, f.db, "A", 10000, true)
	f.fill(t, "s1", map[uint]int{a.ID: 1})

	_, err = f.orders.Checkout(ctx, "s1", Contact{Name: " ", Phone: "1"}, "addr")
	assert.ErrorIs(t, err, ErrInvalidContact)
	_, err = f.orders.Checkout(ctx, "s1", validContact(), "  ")
	assert.ErrorIs(t, err, ErrAddressRequired)

	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
	assert.False(t, f.carts.Get(ctx, "s1").IsEmpty())
}

func TestNotifierFailureDoesNotFailCheckout(t *testing.T) {
	n := new(mockNotifier)
	n.On("NotifyOrderPlaced", mock.Anything).Return(errors.New("smtp down"))
	f := newFixture(t, 200000, n)

	order := placeOrder(t, f)
	assert.NotZero(t, order.ID)
	n.AssertExpectations(t)
}

// frozenConn: client live feed yang berhenti membaca. Tulis menggantung
// sampai write deadline lewat, seperti socket dengan buffer penuh.
type frozenConn struct {
	mu       sync.Mutex
	deadline time.Time
}

func (c *frozenConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = t
	return nil
}

func (c *frozenConn) WriteMessage(int, []byte) error {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()
	if deadline.IsZero() {
		return errors.New("write without deadline")
	}
	time.Sleep(time.Until(deadline))
	return errors.New("i/o timeout")
}

func (c *frozenConn) Close() error { return nil }

func TestSetStatusNotBlockedBySlowChannels(t *testing.T) {
	sender := &stuckSender{release: make(chan struct{})}
	t.Cleanup(func() { close(sender.release) })

	liveHub := hub.New()

	f := newFixture(t, 200000, nil)
	email := NewEmailService(f.db, smtpConfig(), "http://shop.test").WithSender(sender)
	f.orders = NewOrderService(f.db, f.carts, f.shipping, MultiNotifier{email, liveHub})
	f.orders.notifyTimeout = 100 * time.Millisecond

	order := placeOrder(t, f)
	liveHub.Register(&frozenConn{}, "staff")

	start := time.Now()
	updated, err := f.orders.SetStatus(context.Background(), order.ID, models.StatusProcessing, "admin", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, updated.Status)
	assert.Less(t, time.Since(start), 2*time.Second)

	// client yang macet sudah dilepas dari hub
	assert.Zero(t, liveHub.Count())
}

func TestSetStatusFollowsGraph(t *testing.T) {
	n := new(mockNotifier)
	n.On("NotifyOrderPlaced", mock.Anything).Return(nil)
	n.On("NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, 200000, n)
	ctx := context.Background()
	order := placeOrder(t, f)

	_, err := f.orders.SetStatus(ctx, order.ID, models.StatusCompleted, "admin", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.orders.SetStatus(ctx, order.ID, models.StatusCancelled, "admin", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.orders.SetStatus(ctx, order.ID, "baked", "admin", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	for _, st := range []models.OrderStatus{models.StatusProcessing, models.StatusShipping, models.StatusCompleted} {
		updated, err := f.orders.SetStatus(ctx, order.ID, st, "admin", "ok")
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
	}

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedDate)

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.StatusCompleted, history[0].ToStatus)
	assert.Equal(t, models.StatusPending, history[2].FromStatus)

	// terminal
	_, err = f.orders.SetStatus(ctx, order.ID, models.StatusProcessing, "admin", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	n.AssertNumberOfCalls(t, "NotifyStatusChange", 3)
}

func TestSetStatusDefaultsActor(t *testing.T) {
	f := newFixture(t, 200000, nil)
	order := placeOrder(t, f)

	_, err := f.orders.SetStatus(context.Background(), order.ID, models.StatusProcessing, "", "")
	require.NoError(t, err)
	history, err := f.orders.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, SystemActor, history[0].ChangedBy)
}

func TestCancel(t *testing.T) {
	n := new(mockNotifier)
	n.On("NotifyOrderPlaced", mock.Anything).Return(nil)
	n.On("NotifyCancellation", models.StatusPending, "admin", "out of stock").Return(nil)
	f := newFixture(t, 200000, n)
	ctx := context.Background()
	order := placeOrder(t, f)

	_, err := f.orders.Cancel(ctx, order.ID, "   ", "admin")
	assert.ErrorIs(t, err, ErrCancelReasonRequired)

	cancelled, err := f.orders.Cancel(ctx, order.ID, " out of stock ", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "out of stock", cancelled.CancellationReason)

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Cancelled: out of stock", history[0].Note)

	_, err = f.orders.Cancel(ctx, order.ID, "again", "admin")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	n.AssertExpectations(t)
}

func TestOrderNotFound(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()

	_, err := f.orders.SetStatus(ctx, 404, models.StatusProcessing, "admin", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.Cancel(ctx, 404, "reason", "admin")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.History(ctx, 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.GetByCode(ctx, "DH0")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConcurrentTransitionsAppendOneEvent(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	order := placeOrder(t, f)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.SetStatus(ctx, order.ID, models.StatusProcessing, "admin", "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestGenerateCode(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	for i := 0; i < 50; i++ {
		code := GenerateCode(at)
		require.True(t, strings.HasPrefix(code, "DH20240305140709"))
		suffix := code[len("DH20240305140709"):]
		assert.Len(t, suffix, 4)
		assert.GreaterOrEqual(t, suffix, "1000")
		assert.LessOrEqual(t, suffix, "9998")
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t, 200000, nil)
	ctx := context.Background()
	a := seedFood(t, f.db, "A", 10000, true)

	for i, name := range []string{"Lan", "Minh", "Hoa"} {
		f.fill(t, name, map[uint]int{a.ID: i + 1})
		_, err := f.orders.Checkout(ctx, name, Contact{Name: name, Phone: "09000000" + string(rune('0'+i))}, "addr")
		require.NoError(t, err)
	}

	orders, total, err := f.orders.List(ctx, OrderFilter{Search: "minh"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "Minh", orders[0].CustomerName)

	min := dec(30000)
	orders, total, err = f.orders.List(ctx, OrderFilter{MinTotal: &min})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orders, 2)

	orders, total, err = f.orders.List(ctx, OrderFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, orders, 1)

	all, err := f.orders.All(ctx, OrderFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.NotEmpty(t, all[0].Lines)
}
