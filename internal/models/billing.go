package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Buyer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null;index" json:"name"`
	Contact   string    `gorm:"size:100" json:"contact"`
	Address   string    `gorm:"size:500" json:"address"`
	GSTIN     string    `gorm:"size:20" json:"gstin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Bill is an invoice issued to a buyer. Totals are computed server side.
type Bill struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Number    string          `gorm:"size:40;uniqueIndex;not null" json:"number"`
	BuyerID   uint            `gorm:"index;not null" json:"buyerId"`
	Buyer     *Buyer          `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Date      time.Time       `gorm:"index;not null" json:"date"`
	Items     []BillItem      `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"taxRate"` // percent, e.g. 3
	Tax       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Notes     string          `gorm:"size:500" json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type BillItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	BillID       uint            `gorm:"index;not null" json:"billId"`
	Description  string          `gorm:"size:200;not null" json:"description"`
	Weight       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"weight"`
	Rate         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	MakingCharge decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"makingCharge"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"lineTotal"`
}
