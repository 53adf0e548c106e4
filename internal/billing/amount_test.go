package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSubtotal_EmptyItems(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
	assert.True(t, Subtotal([]LineItem{}).IsZero())
}

func TestSubtotal_SumsPairwiseProducts(t *testing.T) {
	items := []LineItem{
		{Name: "Blouse", Quantity: 2, UnitPrice: dec("500")},
		{Name: "Kurti", Quantity: 1, UnitPrice: dec("300")},
	}
	assert.True(t, Subtotal(items).Equal(dec("1300")), "got %s", Subtotal(items))
}

func TestSubtotal_OrderInvariant(t *testing.T) {
	a := []LineItem{
		{Quantity: 3, UnitPrice: dec("120.50")},
		{Quantity: 1, UnitPrice: dec("45")},
		{Quantity: 7, UnitPrice: dec("9.99")},
	}
	b := []LineItem{a[2], a[0], a[1]}
	assert.True(t, Subtotal(a).Equal(Subtotal(b)))
}

func TestSubtotal_DecimalSafe(t *testing.T) {
	// 0.10 * 3 must be exactly 0.30, no binary float drift
	items := []LineItem{
		{Quantity: 1, UnitPrice: dec("0.10")},
		{Quantity: 1, UnitPrice: dec("0.10")},
		{Quantity: 1, UnitPrice: dec("0.10")},
	}
	assert.Equal(t, "0.30", Subtotal(items).StringFixed(2))
}

func TestSubtotal_DoesNotClampNegative(t *testing.T) {
	// Validation is the caller's job; the arithmetic returns what it is given.
	items := []LineItem{{Quantity: 1, UnitPrice: dec("-50")}}
	assert.True(t, Subtotal(items).Equal(dec("-50")))
}

func TestTotal_SubtractsDiscount(t *testing.T) {
	assert.True(t, Total(dec("1300"), dec("100")).Equal(dec("1200")))
	assert.True(t, Total(dec("1300"), decimal.Zero).Equal(dec("1300")))
}

func TestTotal_NeverNegative(t *testing.T) {
	assert.True(t, Total(dec("100"), dec("250")).IsZero())
}

func TestBalance_SubtractsAdvance(t *testing.T) {
	assert.True(t, Balance(dec("1200"), dec("400")).Equal(dec("800")))
}

func TestBalance_NeverNegative(t *testing.T) {
	assert.True(t, Balance(dec("500"), dec("9999")).IsZero())
}

func TestAmounts_EndToEndScenario(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, UnitPrice: dec("500")},
		{Quantity: 1, UnitPrice: dec("300")},
	}
	subtotal := Subtotal(items)
	total := Total(subtotal, dec("100"))
	balance := Balance(total, dec("400"))

	assert.Equal(t, "1300.00", subtotal.StringFixed(2))
	assert.Equal(t, "1200.00", total.StringFixed(2))
	assert.Equal(t, "800.00", balance.StringFixed(2))
}
