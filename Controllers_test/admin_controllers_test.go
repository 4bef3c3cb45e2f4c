package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
)

// completeOrder menjalankan order sampai completed lewat endpoint admin
func completeOrder(t *testing.T, app *testApp, token string, id uint) {
	t.Helper()
	for _, st := range []string{"processing", "shipping", "completed"} {
		w := app.do(t, http.MethodPatch, fmt.Sprintf("/admin/orders/%d/status", id), map[string]string{"status": st}, withToken(token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestReportsAndExports(t *testing.T) {
	app := setupApp(t, 200000)
	token := adminToken(t, app)
	cat := app.seedCategory(t, "Main")
	pho := app.seedFood(t, cat.ID, "Pho", 10000, true)
	tea := app.seedFood(t, cat.ID, "Iced Tea", 5000, true)

	first := checkout(t, app, fillCart(t, app, map[uint]int{pho.ID: 2, tea.ID: 1}))
	checkout(t, app, fillCart(t, app, map[uint]int{tea.ID: 4}))
	completeOrder(t, app, token, uint(first["id"].(float64)))

	w := app.do(t, http.MethodGet, "/admin/reports/revenue?period=month", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decodeData(t, w)
	assert.Equal(t, "month", report["period"])
	summary := report["summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["total_orders"])
	assert.EqualValues(t, 1, summary["completed_orders"])
	assertAmount(t, 45000, summary["total_revenue"])
	assert.Len(t, report["buckets"], 1)

	w = app.do(t, http.MethodGet, "/admin/reports/revenue?status=weird", nil, withToken(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = app.do(t, http.MethodGet, "/admin/reports/revenue?from=19-10-2026", nil, withToken(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Best selling hanya menghitung order completed
	w = app.do(t, http.MethodGet, "/admin/reports/best-selling", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	foods := decodeData(t, w)["foods"].([]interface{})
	require.Len(t, foods, 2)
	top := foods[0].(map[string]interface{})
	assert.Equal(t, "Pho", top["food_name"])
	assert.EqualValues(t, 2, top["quantity_sold"])

	w = app.do(t, http.MethodGet, "/admin/reports/customers", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeData(t, w)["statistics"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_customers"])

	w = app.do(t, http.MethodGet, "/admin/dashboard", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/admin/reports/revenue/excel", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ContentTypeXLSX, w.Header().Get("Content-Type"))

	w = app.do(t, http.MethodGet, "/admin/reports/revenue/pdf", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF", w.Body.String()[:4])

	w = app.do(t, http.MethodGet, "/admin/reports/revenue/chart", nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ContentTypePNG, w.Header().Get("Content-Type"))
}

func TestRevenueChartWithoutData(t *testing.T) {
	app := setupApp(t, 200000)
	token := adminToken(t, app)

	w := app.do(t, http.MethodGet, "/admin/reports/revenue/chart", nil, withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationsList(t *testing.T) {
	app := setupApp(t, 200000)
	token := adminToken(t, app)
	orderID := uint(7)
	require.NoError(t, app.db.Create(&[]models.Notification{
		{OrderID: &orderID, Channel: "email", Recipient: "a@example.com", Subject: "Order confirmation", Status: models.NotificationSent},
		{OrderID: &orderID, Channel: "email", Recipient: "", Subject: "Order cancelled", Status: models.NotificationSkipped},
	}).Error)

	w := app.do(t, http.MethodGet, "/admin/notifications?status="+string(models.NotificationSkipped), nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decodeData(t, w)
	assert.EqualValues(t, 1, page["total_items"])

	items := page["items"].([]interface{})
	id := uint(items[0].(map[string]interface{})["id"].(float64))
	w = app.do(t, http.MethodGet, fmt.Sprintf("/admin/notifications/%d", id), nil, withToken(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order cancelled", decodeData(t, w)["subject"])

	w = app.do(t, http.MethodGet, "/admin/notifications/999", nil, withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
