package domain

import "github.com/shopspring/decimal"

// CartLine is a (product, size) pair with a quantity. StockCeiling is the
// effective stock observed at the last successful mutation of this line; it
// is a point-in-time figure, not continuously re-verified.
type CartLine struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Size         string          `json:"size,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	StockCeiling int             `json:"stock_ceiling"`
}

// Cart is the session-owned line collection. All mutations are pure and
// local; persistence is the caller's concern.
type Cart struct {
	Lines   []CartLine `json:"lines"`
	Visible bool       `json:"visible"`
}

func (c *Cart) find(productID, size string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID && line.Size == size {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing (product, size) line or appends a
// new one. It fails, leaving the cart untouched, when the combined quantity
// would exceed the product's effective stock.
func (c *Cart) AddItem(p Product, size string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	ceiling := p.EffectiveStock(size)
	i := c.find(p.ID, size)

	existing := 0
	if i >= 0 {
		existing = c.Lines[i].Quantity
	}
	if existing+quantity > ceiling {
		return false
	}

	if i >= 0 {
		c.Lines[i].Quantity += quantity
		c.Lines[i].StockCeiling = ceiling
	} else {
		c.Lines = append(c.Lines, CartLine{
			ProductID:    p.ID,
			Name:         p.Name,
			Size:         size,
			UnitPrice:    p.Price,
			Quantity:     quantity,
			StockCeiling: ceiling,
		})
	}
	c.Visible = true
	return true
}

// RemoveItem drops lines for the product. An empty size drops every size
// variant; a concrete size drops only the matching line. Missing lines are
// a no-op.
func (c *Cart) RemoveItem(productID, size string) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ProductID == productID && (size == "" || line.Size == size) {
			continue
		}
		kept = append(kept, line)
	}
	c.Lines = kept
}

// UpdateQuantity sets the quantity of an existing line. Zero or negative is
// equivalent to RemoveItem. A quantity above the line's recorded stock
// ceiling is a silent no-op: we reject rather than clamp, so the cart never
// jumps to a quantity the store could not fulfil.
func (c *Cart) UpdateQuantity(productID string, quantity int, size string) {
	if quantity <= 0 {
		c.RemoveItem(productID, size)
		return
	}

	i := c.find(productID, size)
	if i < 0 {
		return
	}
	if quantity > c.Lines[i].StockCeiling {
		return
	}
	c.Lines[i].Quantity = quantity
}

// Clear empties the cart. The visibility flag is left as is.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is the sum of unit price times quantity over all lines. No tax or
// shipping.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
