package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
	StockBySize map[string]int  `json:"stock_by_size,omitempty"`
	IsNew       bool            `json:"is_new"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EffectiveStock is the quantity ceiling the cart enforces at mutation time.
// A product without a stock figure sells nothing: missing data blocks the
// addition instead of permitting it.
func (p Product) EffectiveStock(size string) int {
	if size != "" && len(p.StockBySize) > 0 {
		return p.StockBySize[size]
	}
	if p.Stock == nil {
		return 0
	}
	return *p.Stock
}
