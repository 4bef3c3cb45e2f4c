package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/food-ordering-app/middlewares"
	"github.com/yeremiapane/food-ordering-app/models"
	"github.com/yeremiapane/food-ordering-app/services"
	"github.com/yeremiapane/food-ordering-app/utils"
)

type CartController struct {
	Carts    *services.CartService
	Shipping *services.ShippingService
}

func NewCartController(carts *services.CartService, shipping *services.ShippingService) *CartController {
	return &CartController{Carts: carts, Shipping: shipping}
}

type cartLineView struct {
	models.CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartSummary struct {
	Lines                 []cartLineView  `json:"lines"`
	TotalItems            int             `json:"total_items"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	IsFreeShipping        bool            `json:"is_free_shipping"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	FinalTotal            decimal.Decimal `json:"final_total"`
}

// summary: preview ongkir memakai default fee, zona dihitung saat checkout
func (cc *CartController) summary(cart *models.Cart) CartSummary {
	total := cart.TotalAmount()
	free := cc.Shipping.IsFreeShipping(total)
	fee := cc.Shipping.DefaultFee()
	if free {
		fee = decimal.Zero
	}

	lines := make([]cartLineView, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, cartLineView{CartLine: l, Subtotal: l.Subtotal()})
	}
	return CartSummary{
		Lines:                 lines,
		TotalItems:            cart.TotalItems(),
		TotalAmount:           total,
		ShippingFee:           fee,
		IsFreeShipping:        free,
		FreeShippingThreshold: cc.Shipping.FreeShippingThreshold(),
		FinalTotal:            cart.FinalTotal(fee),
	}
}

// GetCart
func (cc *CartController) GetCart(c *gin.Context) {
	cart := cc.Carts.Get(c.Request.Context(), middlewares.CartSessionID(c))
	utils.RespondJSON(c, http.StatusOK, "Cart", cc.summary(cart))
}

// GetCount -> jumlah item untuk badge keranjang
func (cc *CartController) GetCount(c *gin.Context) {
	cart := cc.Carts.Get(c.Request.Context(), middlewares.CartSessionID(c))
	utils.RespondJSON(c, http.StatusOK, "Cart item count", gin.H{"count": cart.TotalItems()})
}

// AddItem
func (cc *CartController) AddItem(c *gin.Context) {
	var body struct {
		FoodID   uint `json:"food_id" binding:"required"`
		Quantity int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	cart, err := cc.Carts.Add(c.Request.Context(), middlewares.CartSessionID(c), body.FoodID, body.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added to cart", cc.summary(cart))
}

// UpdateItem: quantity <= 0 menghapus item
func (cc *CartController) UpdateItem(c *gin.Context) {
	foodID, err := paramID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart, err := cc.Carts.UpdateQuantity(c.Request.Context(), middlewares.CartSessionID(c), foodID, *body.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart updated", cc.summary(cart))
}

// RemoveItem
func (cc *CartController) RemoveItem(c *gin.Context) {
	foodID, err := paramID(c, "food_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	cart, err := cc.Carts.Remove(c.Request.Context(), middlewares.CartSessionID(c), foodID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed from cart", cc.summary(cart))
}

// ClearCart
func (cc *CartController) ClearCart(c *gin.Context) {
	sid := middlewares.CartSessionID(c)
	if err := cc.Carts.Clear(c.Request.Context(), sid); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", cc.summary(&models.Cart{SessionID: sid}))
}
