package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartFlow(t *testing.T) {
	app := setupApp(t, 200000)
	cat := app.seedCategory(t, "Main")
	pho := app.seedFood(t, cat.ID, "Pho", 10000, true)
	tea := app.seedFood(t, cat.ID, "Iced Tea", 5000, true)

	// Cart kosong + cookie session baru
	w := app.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	data := decodeData(t, w)
	assert.Empty(t, data["lines"])
	assertAmount(t, 0, data["total_amount"])

	w = app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": pho.ID, "quantity": 2}, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": tea.ID}, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data = decodeData(t, w)
	assert.Len(t, data["lines"], 2)
	assert.EqualValues(t, 3, data["total_items"])
	assertAmount(t, 25000, data["total_amount"])
	assertAmount(t, 15000, data["shipping_fee"])
	assertAmount(t, 40000, data["final_total"])
	assert.Equal(t, false, data["is_free_shipping"])

	w = app.do(t, http.MethodGet, "/cart/count", nil, withCookie(cookie))
	assert.EqualValues(t, 3, decodeData(t, w)["count"])

	// quantity 0 -> baris dihapus
	w = app.do(t, http.MethodPatch, fmt.Sprintf("/cart/items/%d", tea.ID), map[string]int{"quantity": 0}, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.Len(t, data["lines"], 1)
	assertAmount(t, 20000, data["total_amount"])

	w = app.do(t, http.MethodPatch, fmt.Sprintf("/cart/items/%d", pho.ID), map[string]int{"quantity": 5}, withCookie(cookie))
	assertAmount(t, 50000, decodeData(t, w)["total_amount"])

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/cart/items/%d", pho.ID), nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["lines"])

	app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": pho.ID, "quantity": 1}, withCookie(cookie))
	w = app.do(t, http.MethodDelete, "/cart", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(t, http.MethodGet, "/cart/count", nil, withCookie(cookie))
	assert.EqualValues(t, 0, decodeData(t, w)["count"])
}

func TestCartIgnoresUnavailableFood(t *testing.T) {
	app := setupApp(t, 200000)
	cat := app.seedCategory(t, "Main")
	soldOut := app.seedFood(t, cat.ID, "Banh Xeo", 30000, false)

	w := app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": soldOut.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["lines"])

	w = app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": 9999, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["lines"])

	w = app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartSessionsAreIsolated(t *testing.T) {
	app := setupApp(t, 200000)
	cat := app.seedCategory(t, "Main")
	pho := app.seedFood(t, cat.ID, "Pho", 10000, true)

	w := app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": pho.ID, "quantity": 2})
	first := sessionCookie(t, w)
	w = app.do(t, http.MethodGet, "/cart/count", nil)
	second := sessionCookie(t, w)
	assert.NotEqual(t, first.Value, second.Value)
	assert.EqualValues(t, 0, decodeData(t, w)["count"])

	w = app.do(t, http.MethodGet, "/cart/count", nil, withCookie(first))
	assert.EqualValues(t, 2, decodeData(t, w)["count"])
}

func TestCartFreeShippingPreview(t *testing.T) {
	app := setupApp(t, 20000)
	cat := app.seedCategory(t, "Main")
	pho := app.seedFood(t, cat.ID, "Pho", 10000, true)

	w := app.do(t, http.MethodPost, "/cart/items", map[string]interface{}{"food_id": pho.ID, "quantity": 2})
	data := decodeData(t, w)
	assert.Equal(t, true, data["is_free_shipping"])
	assertAmount(t, 0, data["shipping_fee"])
	assertAmount(t, 20000, data["final_total"])
	assertAmount(t, 20000, data["free_shipping_threshold"])
}
