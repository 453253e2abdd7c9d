package models

import "github.com/shopspring/decimal"

func init() {
	// Weights and amounts go over the wire as JSON numbers, like the
	// frontend always sent them.
	decimal.MarshalJSONWithoutQuotes = true
}

// Balance is a signed fine/amount pair. Positive means the business owes the
// nominee (credit), negative means the nominee owes the business.
type Balance struct {
	Fine   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"fine"`
	Amount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
}

func (b Balance) Add(o Balance) Balance {
	return Balance{Fine: b.Fine.Add(o.Fine), Amount: b.Amount.Add(o.Amount)}
}

func (b Balance) Sub(o Balance) Balance {
	return Balance{Fine: b.Fine.Sub(o.Fine), Amount: b.Amount.Sub(o.Amount)}
}

func (b Balance) Neg() Balance {
	return Balance{Fine: b.Fine.Neg(), Amount: b.Amount.Neg()}
}

func (b Balance) Equal(o Balance) bool {
	return b.Fine.Equal(o.Fine) && b.Amount.Equal(o.Amount)
}

func (b Balance) IsZero() bool {
	return b.Fine.IsZero() && b.Amount.IsZero()
}
