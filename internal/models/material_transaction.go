package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialTransType - Naam is a debit against the nominee, Jama a credit.
type MaterialTransType string

const (
	TransTypeNaam MaterialTransType = "Naam"
	TransTypeJama MaterialTransType = "Jama"
)

type MaterialMode string

const (
	MaterialModeCash  MaterialMode = "cash"
	MaterialModeMetal MaterialMode = "metal"
	MaterialModeBhav  MaterialMode = "bhav"
)

type MaterialTransaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	NomineeID   uint              `gorm:"index;not null" json:"nomineeId"`
	Date        time.Time         `gorm:"index;not null" json:"date"`
	Product     string            `gorm:"size:200;not null" json:"product"`
	NetWeight   decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"netWeight"`
	Tunch       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"tunch"`
	Wastage     decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"wastage"`
	Pieces      int               `json:"pieces"`
	Fine        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"fine"`
	Bhav        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"bhav"`
	Badla       *int              `json:"badla,omitempty"` // 0, 10 or 12
	Amount      decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"amount"`
	TransType   MaterialTransType `gorm:"size:10;not null" json:"transType"`
	Mode        MaterialMode      `gorm:"size:10;not null" json:"mode"`
	Description string            `gorm:"size:500" json:"description"`
	CreatedAt   time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"index" json:"updatedAt"`
}
