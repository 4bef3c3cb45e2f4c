package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
	"gorm.io/gorm"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

const (
	LevelVIP     = "VIP"
	LevelLoyal   = "Loyal"
	LevelRegular = "Regular"
)

var (
	hundred        = decimal.NewFromInt(100)
	vipSpend       = decimal.NewFromInt(1000000)
	loyalSpend     = decimal.NewFromInt(500000)
	uncategorized  = "Uncategorized"
	defaultTopSize = 10
)

type ReportFilter struct {
	From       *time.Time
	To         *time.Time
	Status     models.OrderStatus
	Period     Period
	CategoryID *uint
	Top        int
}

type RevenueBucket struct {
	Period          string          `json:"period"`
	Label           string          `json:"label"`
	TotalOrders     int             `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalShipping   decimal.Decimal `json:"total_shipping_fee"`
	NetRevenue      decimal.Decimal `json:"net_revenue"`
	CompletedOrders int             `json:"completed_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
}

type RevenueSummary struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalShipping     decimal.Decimal `json:"total_shipping_fee"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	CompletedOrders   int             `json:"completed_orders"`
	CancelledOrders   int             `json:"cancelled_orders"`
	CompletionRate    float64         `json:"completion_rate"`
}

type StatusRevenue struct {
	Status      models.OrderStatus `json:"status"`
	StatusText  string             `json:"status_text"`
	Count       int                `json:"count"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Percentage  float64            `json:"percentage"`
}

type RevenueReport struct {
	Period   Period          `json:"period"`
	Buckets  []RevenueBucket `json:"buckets"`
	Summary  RevenueSummary  `json:"summary"`
	ByStatus []StatusRevenue `json:"by_status"`
}

type FoodSales struct {
	FoodID         uint            `json:"food_id"`
	FoodName       string          `json:"food_name"`
	CategoryName   string          `json:"category_name"`
	ImageUrl       string          `json:"image_url,omitempty"`
	QuantitySold   int             `json:"quantity_sold"`
	Revenue        decimal.Decimal `json:"revenue"`
	OrderCount     int             `json:"order_count"`
	AvgQtyPerOrder float64         `json:"average_quantity_per_order"`
	orderIDs       map[uint]struct{}
}

type CategorySales struct {
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	QuantitySold int             `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	ProductCount int             `json:"product_count"`
	Percentage   float64         `json:"percentage"`
	foodIDs      map[uint]struct{}
}

type BestSellingReport struct {
	Foods      []FoodSales     `json:"foods"`
	Categories []CategorySales `json:"categories"`
}

type CustomerSummary struct {
	CustomerName       string          `json:"customer_name"`
	PhoneNumber        string          `json:"phone_number"`
	Email              string          `json:"email,omitempty"`
	TotalOrders        int             `json:"total_orders"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	AverageOrderValue  decimal.Decimal `json:"average_order_value"`
	LastOrderDate      time.Time       `json:"last_order_date"`
	DaysSinceLastOrder int             `json:"days_since_last_order"`
	Level              string          `json:"level"`
}

type CustomerStatistics struct {
	TotalCustomers           int             `json:"total_customers"`
	NewCustomers             int             `json:"new_customers"`
	ReturningCustomers       int             `json:"returning_customers"`
	AverageOrdersPerCustomer float64         `json:"average_orders_per_customer"`
	AverageSpentPerCustomer  decimal.Decimal `json:"average_spent_per_customer"`
	VIPCustomers             int             `json:"vip_customers"`
	LoyalCustomers           int             `json:"loyal_customers"`
	RegularCustomers         int             `json:"regular_customers"`
}

type CustomerReport struct {
	Customers  []CustomerSummary  `json:"customers"`
	Statistics CustomerStatistics `json:"statistics"`
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	ID           uint               `json:"id"`
	Code         string             `json:"code"`
	CustomerName string             `json:"customer_name"`
	FinalTotal   decimal.Decimal    `json:"final_total"`
	Status       models.OrderStatus `json:"status"`
	OrderDate    time.Time          `json:"order_date"`
}

type Dashboard struct {
	TodayOrders      int             `json:"today_orders"`
	TodayRevenue     decimal.Decimal `json:"today_revenue"`
	ThisMonthOrders  int             `json:"this_month_orders"`
	ThisMonthRevenue decimal.Decimal `json:"this_month_revenue"`
	RevenueGrowth    float64         `json:"revenue_growth"`
	OrderGrowth      float64         `json:"order_growth"`
	TotalCustomers   int64           `json:"total_customers"`
	PendingOrders    int64           `json:"pending_orders"`
	TopFoods         []FoodSales     `json:"top_foods"`
	RevenueChart     []DailyRevenue  `json:"revenue_chart"`
	RecentOrders     []RecentOrder   `json:"recent_orders"`
}

type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(s)) {
	case PeriodWeek:
		return PeriodWeek
	case PeriodMonth:
		return PeriodMonth
	case PeriodYear:
		return PeriodYear
	}
	return PeriodDay
}

func CustomerLevel(orders int, spent decimal.Decimal) string {
	if orders >= 10 && spent.GreaterThanOrEqual(vipSpend) {
		return LevelVIP
	}
	if orders >= 5 && spent.GreaterThanOrEqual(loyalSpend) {
		return LevelLoyal
	}
	return LevelRegular
}

// PeriodKey returns the sortable bucket key and a display label.
func PeriodKey(t time.Time, p Period) (string, string) {
	switch p {
	case PeriodWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w), fmt.Sprintf("Week %d/%d", w, y)
	case PeriodMonth:
		return t.Format("2006-01"), t.Format("01/2006")
	case PeriodYear:
		return t.Format("2006"), t.Format("2006")
	}
	return t.Format("2006-01-02"), t.Format("02/01/2006")
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).Round(2).InexactFloat64()
}

func (s *ReportService) ordersInRange(ctx context.Context, f ReportFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.From != nil {
		q = q.Where("order_date >= ?", startOfDay(*f.From))
	}
	if f.To != nil {
		q = q.Where("order_date < ?", startOfDay(*f.To).AddDate(0, 0, 1))
	}
	return q
}

func (s *ReportService) Revenue(ctx context.Context, f ReportFilter) (*RevenueReport, error) {
	q := s.ordersInRange(ctx, f)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var orders []models.Order
	if err := q.Order("order_date ASC").Find(&orders).Error; err != nil {
		return nil, err
	}

	period := f.Period
	if period == "" {
		period = PeriodDay
	}
	report := &RevenueReport{Period: period, Buckets: []RevenueBucket{}, ByStatus: []StatusRevenue{}}
	sum := &report.Summary

	buckets := map[string]*RevenueBucket{}
	byStatus := map[models.OrderStatus]*StatusRevenue{}
	for _, o := range orders {
		key, label := PeriodKey(o.OrderDate, period)
		b, ok := buckets[key]
		if !ok {
			b = &RevenueBucket{Period: key, Label: label}
			buckets[key] = b
		}
		b.TotalOrders++
		b.TotalRevenue = b.TotalRevenue.Add(o.TotalAmount)
		b.TotalShipping = b.TotalShipping.Add(o.ShippingFee)
		b.NetRevenue = b.NetRevenue.Add(o.FinalTotal)

		sum.TotalOrders++
		sum.TotalRevenue = sum.TotalRevenue.Add(o.TotalAmount)
		sum.TotalShipping = sum.TotalShipping.Add(o.ShippingFee)
		sum.NetRevenue = sum.NetRevenue.Add(o.FinalTotal)

		switch o.Status {
		case models.StatusCompleted:
			b.CompletedOrders++
			sum.CompletedOrders++
		case models.StatusCancelled:
			b.CancelledOrders++
			sum.CancelledOrders++
		}

		st, ok := byStatus[o.Status]
		if !ok {
			st = &StatusRevenue{Status: o.Status, StatusText: o.Status.DisplayName()}
			byStatus[o.Status] = st
		}
		st.Count++
		st.TotalAmount = st.TotalAmount.Add(o.FinalTotal)
	}

	if sum.TotalOrders > 0 {
		sum.AverageOrderValue = sum.NetRevenue.Div(decimal.NewFromInt(int64(sum.TotalOrders))).Round(2)
	}
	sum.CompletionRate = percent(sum.CompletedOrders, sum.TotalOrders)

	for _, b := range buckets {
		report.Buckets = append(report.Buckets, *b)
	}
	sort.Slice(report.Buckets, func(i, j int) bool { return report.Buckets[i].Period < report.Buckets[j].Period })

	for _, st := range byStatus {
		st.Percentage = percent(st.Count, sum.TotalOrders)
		report.ByStatus = append(report.ByStatus, *st)
	}
	sort.Slice(report.ByStatus, func(i, j int) bool {
		if report.ByStatus[i].Count != report.ByStatus[j].Count {
			return report.ByStatus[i].Count > report.ByStatus[j].Count
		}
		return report.ByStatus[i].Status < report.ByStatus[j].Status
	})
	return report, nil
}

type soldLine struct {
	OrderID      uint
	FoodID       uint
	FoodName     string
	Quantity     int
	UnitPrice    decimal.Decimal
	CategoryID   *uint
	CategoryName *string
	ImageUrl     *string
}

// soldLines: baris dari order completed saja, dengan kategori food saat ini
func (s *ReportService) soldLines(ctx context.Context, f ReportFilter) ([]soldLine, error) {
	q := s.db.WithContext(ctx).
		Table("order_lines AS ol").
		Select("ol.order_id, ol.food_id, ol.food_name, ol.quantity, ol.unit_price, f.category_id, c.name AS category_name, f.image_url").
		Joins("JOIN orders o ON o.id = ol.order_id").
		Joins("LEFT JOIN foods f ON f.id = ol.food_id").
		Joins("LEFT JOIN categories c ON c.id = f.category_id").
		Where("o.status = ?", models.StatusCompleted)
	if f.From != nil {
		q = q.Where("o.order_date >= ?", startOfDay(*f.From))
	}
	if f.To != nil {
		q = q.Where("o.order_date < ?", startOfDay(*f.To).AddDate(0, 0, 1))
	}
	if f.CategoryID != nil && *f.CategoryID > 0 {
		q = q.Where("f.category_id = ?", *f.CategoryID)
	}

	var lines []soldLine
	err := q.Scan(&lines).Error
	return lines, err
}

func aggregateFoods(lines []soldLine) []FoodSales {
	byFood := map[uint]*FoodSales{}
	for _, l := range lines {
		fs, ok := byFood[l.FoodID]
		if !ok {
			fs = &FoodSales{FoodID: l.FoodID, FoodName: l.FoodName, CategoryName: uncategorized, orderIDs: map[uint]struct{}{}}
			if l.CategoryName != nil {
				fs.CategoryName = *l.CategoryName
			}
			if l.ImageUrl != nil {
				fs.ImageUrl = *l.ImageUrl
			}
			byFood[l.FoodID] = fs
		}
		fs.QuantitySold += l.Quantity
		fs.Revenue = fs.Revenue.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		fs.orderIDs[l.OrderID] = struct{}{}
	}

	out := make([]FoodSales, 0, len(byFood))
	for _, fs := range byFood {
		fs.OrderCount = len(fs.orderIDs)
		if fs.OrderCount > 0 {
			fs.AvgQtyPerOrder = decimal.NewFromInt(int64(fs.QuantitySold)).Div(decimal.NewFromInt(int64(fs.OrderCount))).Round(2).InexactFloat64()
		}
		out = append(out, *fs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantitySold != out[j].QuantitySold {
			return out[i].QuantitySold > out[j].QuantitySold
		}
		return out[i].FoodID < out[j].FoodID
	})
	return out
}

func (s *ReportService) BestSelling(ctx context.Context, f ReportFilter) (*BestSellingReport, error) {
	lines, err := s.soldLines(ctx, f)
	if err != nil {
		return nil, err
	}

	top := f.Top
	if top <= 0 {
		top = defaultTopSize
	}
	foods := aggregateFoods(lines)
	if len(foods) > top {
		foods = foods[:top]
	}

	byCat := map[uint]*CategorySales{}
	total := decimal.Zero
	for _, l := range lines {
		var id uint
		name := uncategorized
		if l.CategoryID != nil {
			id = *l.CategoryID
		}
		if l.CategoryName != nil {
			name = *l.CategoryName
		}
		cs, ok := byCat[id]
		if !ok {
			cs = &CategorySales{CategoryID: id, CategoryName: name, foodIDs: map[uint]struct{}{}}
			byCat[id] = cs
		}
		sub := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		cs.QuantitySold += l.Quantity
		cs.Revenue = cs.Revenue.Add(sub)
		cs.foodIDs[l.FoodID] = struct{}{}
		total = total.Add(sub)
	}

	cats := make([]CategorySales, 0, len(byCat))
	for _, cs := range byCat {
		cs.ProductCount = len(cs.foodIDs)
		if total.IsPositive() {
			cs.Percentage = cs.Revenue.Mul(hundred).Div(total).Round(2).InexactFloat64()
		}
		cats = append(cats, *cs)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Revenue.GreaterThan(cats[j].Revenue) })

	return &BestSellingReport{Foods: foods, Categories: cats}, nil
}

// Customers mengelompokkan order per telepon+nama+email. Total belanja hanya
// dari order completed.
func (s *ReportService) Customers(ctx context.Context, f ReportFilter) (*CustomerReport, error) {
	var orders []models.Order
	if err := s.ordersInRange(ctx, f).Order("order_date ASC").Find(&orders).Error; err != nil {
		return nil, err
	}

	type acc struct {
		summary CustomerSummary
		all     decimal.Decimal
	}
	byKey := map[string]*acc{}
	var keys []string
	grand := decimal.Zero
	for _, o := range orders {
		key := o.PhoneNumber + "|" + o.CustomerName + "|" + o.Email
		a, ok := byKey[key]
		if !ok {
			a = &acc{summary: CustomerSummary{CustomerName: o.CustomerName, PhoneNumber: o.PhoneNumber, Email: o.Email}}
			byKey[key] = a
			keys = append(keys, key)
		}
		a.summary.TotalOrders++
		a.all = a.all.Add(o.FinalTotal)
		if o.Status == models.StatusCompleted {
			a.summary.TotalSpent = a.summary.TotalSpent.Add(o.FinalTotal)
		}
		if o.OrderDate.After(a.summary.LastOrderDate) {
			a.summary.LastOrderDate = o.OrderDate
		}
		grand = grand.Add(o.FinalTotal)
	}

	now := s.now()
	report := &CustomerReport{Customers: []CustomerSummary{}}
	st := &report.Statistics
	for _, k := range keys {
		a := byKey[k]
		c := a.summary
		c.AverageOrderValue = a.all.Div(decimal.NewFromInt(int64(c.TotalOrders))).Round(2)
		c.DaysSinceLastOrder = int(now.Sub(c.LastOrderDate).Hours() / 24)
		c.Level = CustomerLevel(c.TotalOrders, c.TotalSpent)
		report.Customers = append(report.Customers, c)

		st.TotalCustomers++
		if c.TotalOrders == 1 {
			st.NewCustomers++
		} else {
			st.ReturningCustomers++
		}
		switch c.Level {
		case LevelVIP:
			st.VIPCustomers++
		case LevelLoyal:
			st.LoyalCustomers++
		default:
			st.RegularCustomers++
		}
	}
	if st.TotalCustomers > 0 {
		st.AverageOrdersPerCustomer = decimal.NewFromInt(int64(len(orders))).Div(decimal.NewFromInt(int64(st.TotalCustomers))).Round(2).InexactFloat64()
		st.AverageSpentPerCustomer = grand.Div(decimal.NewFromInt(int64(st.TotalCustomers))).Round(2)
	}

	sort.SliceStable(report.Customers, func(i, j int) bool {
		return report.Customers[i].TotalSpent.GreaterThan(report.Customers[j].TotalSpent)
	})
	top := f.Top
	if top <= 0 {
		top = defaultTopSize
	}
	if len(report.Customers) > top {
		report.Customers = report.Customers[:top]
	}
	return report, nil
}

func completedRevenue(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == models.StatusCompleted {
			total = total.Add(o.FinalTotal)
		}
	}
	return total
}

func growth(current, previous decimal.Decimal) float64 {
	if !previous.IsPositive() {
		return 0
	}
	return current.Sub(previous).Mul(hundred).Div(previous).Round(2).InexactFloat64()
}

func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	today := startOfDay(now)
	thisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)
	weekStart := today.AddDate(0, 0, -6)

	var monthOrders, lastMonthOrders []models.Order
	if err := db.Where("order_date >= ?", thisMonth).Find(&monthOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Where("order_date >= ? AND order_date < ?", lastMonth, thisMonth).Find(&lastMonthOrders).Error; err != nil {
		return nil, err
	}

	d := &Dashboard{TopFoods: []FoodSales{}, RevenueChart: []DailyRevenue{}, RecentOrders: []RecentOrder{}}

	var todayOrders []models.Order
	if err := db.Where("order_date >= ? AND order_date < ?", today, today.AddDate(0, 0, 1)).Find(&todayOrders).Error; err != nil {
		return nil, err
	}
	d.TodayOrders = len(todayOrders)
	d.TodayRevenue = completedRevenue(todayOrders)

	d.ThisMonthOrders = len(monthOrders)
	d.ThisMonthRevenue = completedRevenue(monthOrders)
	d.RevenueGrowth = growth(d.ThisMonthRevenue, completedRevenue(lastMonthOrders))
	d.OrderGrowth = growth(decimal.NewFromInt(int64(len(monthOrders))), decimal.NewFromInt(int64(len(lastMonthOrders))))

	if err := db.Model(&models.Order{}).Distinct("phone_number").Count(&d.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Where("status = ?", models.StatusPending).Count(&d.PendingOrders).Error; err != nil {
		return nil, err
	}

	lines, err := s.soldLines(ctx, ReportFilter{From: &thisMonth})
	if err != nil {
		return nil, err
	}
	d.TopFoods = aggregateFoods(lines)
	if len(d.TopFoods) > 5 {
		d.TopFoods = d.TopFoods[:5]
	}

	var weekOrders []models.Order
	if err := db.Where("order_date >= ? AND status = ?", weekStart, models.StatusCompleted).Find(&weekOrders).Error; err != nil {
		return nil, err
	}
	daily := map[string]decimal.Decimal{}
	for _, o := range weekOrders {
		key := o.OrderDate.In(today.Location()).Format("2006-01-02")
		daily[key] = daily[key].Add(o.FinalTotal)
	}
	for i := 0; i < 7; i++ {
		key := weekStart.AddDate(0, 0, i).Format("2006-01-02")
		d.RevenueChart = append(d.RevenueChart, DailyRevenue{Date: key, Revenue: daily[key]})
	}

	var recent []models.Order
	if err := db.Order("order_date DESC, id DESC").Limit(10).Find(&recent).Error; err != nil {
		return nil, err
	}
	for _, o := range recent {
		d.RecentOrders = append(d.RecentOrders, RecentOrder{
			ID: o.ID, Code: o.Code, CustomerName: o.CustomerName,
			FinalTotal: o.FinalTotal, Status: o.Status, OrderDate: o.OrderDate,
		})
	}
	return d, nil
}
