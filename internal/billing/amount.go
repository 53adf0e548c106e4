// Package billing holds the pure bill computation core: line-item arithmetic,
// draft-to-bill assembly, creation-response normalization, and payment link
// construction. Nothing in this package touches the network or the database.
package billing

import "github.com/shopspring/decimal"

// LineItem is a single draft line. Quantity and UnitPrice are validated by the
// caller; Subtotal does not clamp negative inputs.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns the sum of quantity * unit price over all items.
// An empty slice yields zero. Order of items does not affect the result.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Total returns subtotal minus discount, floored at zero.
func Total(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Balance returns total minus advance, floored at zero.
func Balance(total, advance decimal.Decimal) decimal.Decimal {
	balance := total.Sub(advance)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}
