package domain

import "github.com/shopspring/decimal"

// CartLine is a product held in a dashboard cart.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in the order products were first added.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Set adds the product or replaces the quantity of an existing line.
// A non-positive quantity removes the line.
func (c *Cart) Set(line CartLine) {
	if line.Quantity <= 0 {
		c.Remove(line.ProductID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i] = line
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// Remove drops the line for productID, if present.
func (c *Cart) Remove(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() { c.Lines = nil }

func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

// Total sums line subtotals, rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}
