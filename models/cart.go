package models

import "github.com/shopspring/decimal"

// CartLine menyimpan snapshot nama dan harga saat item ditambahkan.
type CartLine struct {
	FoodID    uint            `json:"food_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	ImageUrl  string          `json:"image_url,omitempty"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
}

func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// FinalTotal -> shipping fee tidak disimpan di cart
func (c *Cart) FinalTotal(fee decimal.Decimal) decimal.Decimal {
	return c.TotalAmount().Add(fee)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Find(foodID uint) int {
	for i, l := range c.Lines {
		if l.FoodID == foodID {
			return i
		}
	}
	return -1
}
