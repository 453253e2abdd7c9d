package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LendenType - credit is money received, debit is money lent out.
type LendenType string

const (
	LendenCredit LendenType = "credit"
	LendenDebit  LendenType = "debit"
)

// LendenEntry is a row of the cash lending book. Name is free text and is not
// tied to a nominee.
type LendenEntry struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:200;not null;index" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	TransType   LendenType      `gorm:"type:varchar(10);not null;index" json:"transType"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
