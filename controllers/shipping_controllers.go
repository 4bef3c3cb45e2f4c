package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
)

type ShippingController struct {
	Shipping *services.ShippingService
}

func NewShippingController(shipping *services.ShippingService) *ShippingController {
	return &ShippingController{Shipping: shipping}
}

// Calculate -> quote ongkir untuk alamat dan total belanja. Selalu 200,
// kegagalan lookup dilaporkan lewat success=false.
func (sc *ShippingController) Calculate(c *gin.Context) {
	var body struct {
		Address    string          `json:"address"`
		OrderTotal decimal.Decimal `json:"order_total"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(body.Address) == "" {
		utils.RespondError(c, http.StatusBadRequest, services.ErrAddressRequired)
		return
	}

	quote := sc.Shipping.Quote(c.Request.Context(), body.Address, body.OrderTotal)
	utils.RespondJSON(c, http.StatusOK, quote.Message, quote)
}

// Threshold
func (sc *ShippingController) Threshold(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Free shipping threshold", gin.H{
		"threshold":           sc.Shipping.FreeShippingThreshold(),
		"formatted_threshold": utils.FormatCurrency(sc.Shipping.FreeShippingThreshold()),
		"default_fee":         sc.Shipping.DefaultFee(),
	})
}

type zoneRequest struct {
	AreaName            string          `json:"area_name" binding:"required"`
	Description         string          `json:"description"`
	FeeAmount           decimal.Decimal `json:"fee_amount"`
	EstimatedDistanceKm *int            `json:"estimated_distance_km"`
	IsActive            *bool           `json:"is_active"`
	SearchKeywords      string          `json:"search_keywords"`
}

func (r zoneRequest) apply(z *models.ShippingZone) {
	z.AreaName = r.AreaName
	z.Description = r.Description
	z.FeeAmount = r.FeeAmount
	z.EstimatedDistanceKm = r.EstimatedDistanceKm
	z.SearchKeywords = r.SearchKeywords
	z.IsActive = r.IsActive == nil || *r.IsActive
}

// ListZones
func (sc *ShippingController) ListZones(c *gin.Context) {
	zones, err := sc.Shipping.ListZones(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All shipping zones", zones)
}

// GetZone
func (sc *ShippingController) GetZone(c *gin.Context) {
	id, err := paramID(c, "zone_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	zone, err := sc.Shipping.GetZone(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shipping zone detail", zone)
}

// CreateZone
func (sc *ShippingController) CreateZone(c *gin.Context) {
	var body zoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var zone models.ShippingZone
	body.apply(&zone)
	if err := sc.Shipping.CreateZone(c.Request.Context(), &zone); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Shipping zone created", zone)
}

// UpdateZone
func (sc *ShippingController) UpdateZone(c *gin.Context) {
	id, err := paramID(c, "zone_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body zoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	zone := models.ShippingZone{ID: id}
	body.apply(&zone)
	if err := sc.Shipping.UpdateZone(c.Request.Context(), &zone); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shipping zone updated", zone)
}

// DeleteZone
func (sc *ShippingController) DeleteZone(c *gin.Context) {
	id, err := paramID(c, "zone_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := sc.Shipping.DeleteZone(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shipping zone deleted", gin.H{"zone_id": id})
}
