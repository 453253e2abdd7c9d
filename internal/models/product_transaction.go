package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Box struct {
	Quantity decimal.Decimal `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
}

type Polythene struct {
	Quantity decimal.Decimal `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
}

// ProductLine is one product handed over in a give transaction.
type ProductLine struct {
	Name        string          `json:"name"`
	GrossWeight decimal.Decimal `json:"grossWeight"`
	Tunch       decimal.Decimal `json:"tunch"`
	Boxes       []Box           `json:"boxes"`
	Polythene   []Polythene     `json:"polythene"`
	Wastage     decimal.Decimal `json:"wastage"`
	Fine        decimal.Decimal `json:"fine"`
}

type ProductGiveTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	NomineeID   uint            `gorm:"index;not null" json:"nomineeId"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Description string          `gorm:"size:500" json:"description"`
	Products    []ProductLine   `gorm:"serializer:json;type:text" json:"products"`
	TotalFine   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"Totalfine"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"index" json:"updatedAt"`
}

type MetalEntry struct {
	Weight decimal.Decimal `json:"weight"`
	Tunch  decimal.Decimal `json:"tunch"`
	Fine   decimal.Decimal `json:"fine"`
	Bhav   decimal.Decimal `json:"bhav"`
	Badla  *int            `json:"badla,omitempty"`
}

// ProductTakeTransaction records cash and/or metal received from a nominee.
type ProductTakeTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	NomineeID   uint            `gorm:"index;not null" json:"nomineeId"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Description string          `gorm:"size:500" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Metal       bool            `gorm:"not null;default:false" json:"metal"`
	Metals      []MetalEntry    `gorm:"serializer:json;type:text" json:"metals"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"index" json:"updatedAt"`
}

// MetalFine sums the fine of all metal entries.
func (t *ProductTakeTransaction) MetalFine() decimal.Decimal {
	total := decimal.Zero
	for _, m := range t.Metals {
		total = total.Add(m.Fine)
	}
	return total
}

// LineFine sums the fine of all product lines.
func (t *ProductGiveTransaction) LineFine() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Products {
		total = total.Add(p.Fine)
	}
	return total
}
