package domain

import "fmt"

// StockRequest is one line of a checkout-time stock check.
type StockRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// StockError reports the first line that cannot be fulfilled from the
// authoritative stock counters.
type StockError struct {
	ProductID string
	Size      string
	Available int
}

func (e *StockError) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("insufficient stock for product %s size %s: %d available", e.ProductID, e.Size, e.Available)
	}
	return fmt.Sprintf("insufficient stock for product %s: %d available", e.ProductID, e.Available)
}
