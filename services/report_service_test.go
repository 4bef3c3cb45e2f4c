package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-ordering-app/models"
	"gorm.io/gorm"
)

type testLine struct {
	food models.Food
	qty  int
}

func insertOrderAt(t *testing.T, db *gorm.DB, code, phone string, at time.Time, status models.OrderStatus, fee int64, lines ...testLine) models.Order {
	t.Helper()
	order := models.Order{
		Code:            code,
		CustomerName:    "Customer " + phone,
		PhoneNumber:     phone,
		DeliveryAddress: "addr",
		ShippingFee:     dec(fee),
		Status:          status,
		OrderDate:       at,
	}
	for _, l := range lines {
		order.TotalAmount = order.TotalAmount.Add(l.food.Price.Mul(dec(int64(l.qty))))
		order.Lines = append(order.Lines, models.OrderLine{
			FoodID: l.food.ID, FoodName: l.food.Name, Quantity: l.qty, UnitPrice: l.food.Price,
		})
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestRevenueReport(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db)
	a := seedFood(t, db, "A", 10000, true)

	d1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	insertOrderAt(t, db, "DH1", "01", d1, models.StatusCompleted, 15000, testLine{a, 2})
	insertOrderAt(t, db, "DH2", "02", d1, models.StatusCancelled, 15000, testLine{a, 1})
	insertOrderAt(t, db, "DH3", "03", d2, models.StatusCompleted, 0, testLine{a, 3})
	insertOrderAt(t, db, "DH4", "04", d2.AddDate(0, 0, 5), models.StatusPending, 0, testLine{a, 1})

	from, to := d1, d2
	report, err := svc.Revenue(context.Background(), ReportFilter{From: &from, To: &to, Period: PeriodDay})
	require.NoError(t, err)

	require.Len(t, report.Buckets, 2)
	assert.Equal(t, "2024-03-01", report.Buckets[0].Period)
	assert.Equal(t, 2, report.Buckets[0].TotalOrders)
	assert.True(t, dec(30000).Equal(report.Buckets[0].TotalRevenue))
	assert.True(t, dec(60000).Equal(report.Buckets[0].NetRevenue))

	sum := report.Summary
	assert.Equal(t, 3, sum.TotalOrders)
	assert.True(t, dec(60000).Equal(sum.TotalRevenue))
	assert.True(t, dec(30000).Equal(sum.TotalShipping))
	assert.True(t, dec(90000).Equal(sum.NetRevenue))
	assert.True(t, dec(30000).Equal(sum.AverageOrderValue))
	assert.Equal(t, 2, sum.CompletedOrders)
	assert.Equal(t, 1, sum.CancelledOrders)
	assert.InDelta(t, 66.67, sum.CompletionRate, 0.001)

	require.Len(t, report.ByStatus, 2)
	assert.Equal(t, models.StatusCompleted, report.ByStatus[0].Status)
	assert.Equal(t, 2, report.ByStatus[0].Count)
}

func TestPeriodKey(t *testing.T) {
	at := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	key, _ := PeriodKey(at, PeriodWeek)
	assert.Equal(t, "2025-W01", key)
	key, _ = PeriodKey(at, PeriodMonth)
	assert.Equal(t, "2024-12", key)
	key, _ = PeriodKey(at, PeriodYear)
	assert.Equal(t, "2024", key)
	assert.Equal(t, PeriodDay, ParsePeriod("bogus"))
	assert.Equal(t, PeriodWeek, ParsePeriod("WEEK"))
}

func TestBestSellingCountsCompletedOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db)
	a := seedFood(t, db, "A", 10000, true)
	b := seedFood(t, db, "B", 5000, true)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	insertOrderAt(t, db, "DH1", "01", at, models.StatusCompleted, 0, testLine{a, 2}, testLine{b, 1})
	insertOrderAt(t, db, "DH2", "02", at, models.StatusCompleted, 0, testLine{b, 4})
	insertOrderAt(t, db, "DH3", "03", at, models.StatusPending, 0, testLine{a, 10})

	report, err := svc.BestSelling(context.Background(), ReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.Foods, 2)

	assert.Equal(t, "B", report.Foods[0].FoodName)
	assert.Equal(t, 5, report.Foods[0].QuantitySold)
	assert.Equal(t, 2, report.Foods[0].OrderCount)
	assert.InDelta(t, 2.5, report.Foods[0].AvgQtyPerOrder, 0.001)
	assert.True(t, dec(25000).Equal(report.Foods[0].Revenue))

	assert.Equal(t, 2, report.Foods[1].QuantitySold)

	require.Len(t, report.Categories, 1)
	assert.Equal(t, "Main", report.Categories[0].CategoryName)
	assert.Equal(t, 2, report.Categories[0].ProductCount)
	assert.InDelta(t, 100, report.Categories[0].Percentage, 0.001)

	top1, err := svc.BestSelling(context.Background(), ReportFilter{Top: 1})
	require.NoError(t, err)
	assert.Len(t, top1.Foods, 1)
}

func TestCustomerReport(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db)
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	a := seedFood(t, db, "A", 100000, true)

	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertOrderAt(t, db, "DHL"+string(rune('0'+i)), "0900", at.AddDate(0, 0, i), models.StatusCompleted, 0, testLine{a, 1})
	}
	insertOrderAt(t, db, "DHX", "0900", at, models.StatusCancelled, 0, testLine{a, 3})
	insertOrderAt(t, db, "DHN", "0911", at, models.StatusPending, 0, testLine{a, 1})

	report, err := svc.Customers(context.Background(), ReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.Customers, 2)

	loyal := report.Customers[0]
	assert.Equal(t, "0900", loyal.PhoneNumber)
	assert.Equal(t, 6, loyal.TotalOrders)
	assert.True(t, dec(500000).Equal(loyal.TotalSpent))
	assert.Equal(t, "133333.33", loyal.AverageOrderValue.StringFixed(2))
	assert.Equal(t, LevelLoyal, loyal.Level)
	assert.Equal(t, 6, loyal.DaysSinceLastOrder)

	st := report.Statistics
	assert.Equal(t, 2, st.TotalCustomers)
	assert.Equal(t, 1, st.NewCustomers)
	assert.Equal(t, 1, st.ReturningCustomers)
	assert.InDelta(t, 3.5, st.AverageOrdersPerCustomer, 0.001)
	assert.Equal(t, 1, st.LoyalCustomers)
	assert.Equal(t, 1, st.RegularCustomers)
}

func TestCustomerLevel(t *testing.T) {
	assert.Equal(t, LevelVIP, CustomerLevel(10, dec(1000000)))
	assert.Equal(t, LevelLoyal, CustomerLevel(10, dec(999999)))
	assert.Equal(t, LevelLoyal, CustomerLevel(5, dec(500000)))
	assert.Equal(t, LevelRegular, CustomerLevel(4, dec(5000000)))
}

func TestDashboard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewReportService(db)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	a := seedFood(t, db, "A", 10000, true)

	insertOrderAt(t, db, "DH1", "01", now.Add(-time.Hour), models.StatusCompleted, 0, testLine{a, 4})
	insertOrderAt(t, db, "DH2", "02", now.Add(-2*time.Hour), models.StatusPending, 0, testLine{a, 1})
	insertOrderAt(t, db, "DH3", "01", now.AddDate(0, 0, -3), models.StatusCompleted, 0, testLine{a, 2})
	insertOrderAt(t, db, "DH4", "03", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC), models.StatusCompleted, 0, testLine{a, 2})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, d.TodayOrders)
	assert.True(t, dec(40000).Equal(d.TodayRevenue))
	assert.Equal(t, 3, d.ThisMonthOrders)
	assert.True(t, dec(60000).Equal(d.ThisMonthRevenue))
	assert.InDelta(t, 200, d.RevenueGrowth, 0.001)
	assert.InDelta(t, 200, d.OrderGrowth, 0.001)
	assert.EqualValues(t, 3, d.TotalCustomers)
	assert.EqualValues(t, 1, d.PendingOrders)

	require.Len(t, d.TopFoods, 1)
	assert.Equal(t, 6, d.TopFoods[0].QuantitySold)

	require.Len(t, d.RevenueChart, 7)
	assert.Equal(t, "2024-03-09", d.RevenueChart[0].Date)
	assert.Equal(t, "2024-03-15", d.RevenueChart[6].Date)
	assert.True(t, dec(40000).Equal(d.RevenueChart[6].Revenue))
	assert.True(t, dec(20000).Equal(d.RevenueChart[3].Revenue))

	require.Len(t, d.RecentOrders, 4)
	assert.Equal(t, "DH1", d.RecentOrders[0].Code)
}
