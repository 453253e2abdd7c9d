package models

import "time"

type NomineeType string

const (
	NomineeTypeMaterial NomineeType = "Material"
	NomineeTypeProduct  NomineeType = "Product"
)

func (t NomineeType) Valid() bool {
	return t == NomineeTypeMaterial || t == NomineeTypeProduct
}

// Nominee is a counterparty (customer or supplier). CurrentBalance is a cache
// of the ledger total and is only written by the ledger reconciler.
type Nominee struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Name           string      `gorm:"size:200;not null;index" json:"name"`
	Contact        string      `gorm:"size:100" json:"contact"`
	Type           NomineeType `gorm:"size:20;not null;index" json:"type"`
	CurrentBalance Balance     `gorm:"embedded;embeddedPrefix:current_" json:"currentBalance"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
