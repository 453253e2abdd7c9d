package billing

import (
	"bullion-backend/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals fills each line total and the bill subtotal, tax and total.
// A line is weight * rate + making charge; TaxRate is a percentage of the
// subtotal. Amounts are rounded to 2 places.
func ComputeTotals(b *models.Bill) {
	subtotal := decimal.Zero
	for i := range b.Items {
		it := &b.Items[i]
		it.LineTotal = it.Weight.Mul(it.Rate).Add(it.MakingCharge).Round(2)
		subtotal = subtotal.Add(it.LineTotal)
	}
	rate := b.TaxRate
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	b.Subtotal = subtotal
	b.Tax = subtotal.Mul(rate).Div(hundred).Round(2)
	b.Total = b.Subtotal.Add(b.Tax)
}
