package dto

import "github.com/fekuna/superfume-sync/internal/model"

// Totals only counts lines whose product is known locally.
type Totals struct {
	LineCount     int   `json:"line_count"`
	TotalQuantity int   `json:"total_quantity"`
	TotalPrice    int64 `json:"total_price"`
}

func TotalsOf(items []model.CartItem) Totals {
	var t Totals
	for _, it := range items {
		t.LineCount++
		t.TotalQuantity += it.Quantity
		t.TotalPrice += it.Subtotal()
	}
	return t
}

type CheckoutResult struct {
	OrderID       int64
	PaymentID     int64
	Total         int64
	OrderStatus   string
	PaymentStatus string
}
