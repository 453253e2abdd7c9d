package ledger

import (
	"time"

	"bullion-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindMaterial    Kind = "Material"
	KindProductGive Kind = "ProductGive"
	KindProductTake Kind = "ProductTake"
)

// rank fixes the order of kinds when everything else ties.
func (k Kind) rank() int {
	switch k {
	case KindMaterial:
		return 0
	case KindProductGive:
		return 1
	default:
		return 2
	}
}

// ParseKind accepts the spellings clients use ("Product Give", "productgive", ...).
func ParseKind(s string) (Kind, bool) {
	n := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			continue
		case r >= 'A' && r <= 'Z':
			n = append(n, r+('a'-'A'))
		default:
			n = append(n, r)
		}
	}
	switch string(n) {
	case "material":
		return KindMaterial, true
	case "productgive":
		return KindProductGive, true
	case "producttake":
		return KindProductTake, true
	}
	return "", false
}

// Entry is one transaction of any kind in a ledger feed. Exactly one of the
// payload pointers is set, matching Kind.
type Entry struct {
	Kind         Kind            `json:"kind"`
	ID           uint            `json:"id"`
	NomineeID    uint            `json:"nomineeId"`
	NomineeName  string          `json:"nomineeName,omitempty"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Contribution models.Balance  `json:"contribution"`
	Running      *models.Balance `json:"runningBalance,omitempty"`

	Material    *models.MaterialTransaction    `json:"material,omitempty"`
	ProductGive *models.ProductGiveTransaction `json:"productGive,omitempty"`
	ProductTake *models.ProductTakeTransaction `json:"productTake,omitempty"`
}

func materialEntry(t *models.MaterialTransaction) Entry {
	return Entry{
		Kind: KindMaterial, ID: t.ID, NomineeID: t.NomineeID,
		Date: t.Date, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		Contribution: MaterialContribution(t),
		Material:     t,
	}
}

func productGiveEntry(t *models.ProductGiveTransaction) Entry {
	return Entry{
		Kind: KindProductGive, ID: t.ID, NomineeID: t.NomineeID,
		Date: t.Date, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		Contribution: ProductGiveContribution(t),
		ProductGive:  t,
	}
}

func productTakeEntry(t *models.ProductTakeTransaction) Entry {
	return Entry{
		Kind: KindProductTake, ID: t.ID, NomineeID: t.NomineeID,
		Date: t.Date, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		Contribution: ProductTakeContribution(t),
		ProductTake:  t,
	}
}

// Sign convention: a positive balance is owed to the nominee.
//
//	Material Jama      +fine +amount
//	Material Naam      -fine -amount
//	Product give       -Totalfine
//	Product take       +amount +sum(metals.fine)

func MaterialContribution(t *models.MaterialTransaction) models.Balance {
	b := models.Balance{Fine: t.Fine, Amount: t.Amount}
	if t.TransType == models.TransTypeNaam {
		return b.Neg()
	}
	return b
}

func ProductGiveContribution(t *models.ProductGiveTransaction) models.Balance {
	return models.Balance{Fine: t.TotalFine.Neg(), Amount: decimal.Zero}
}

func ProductTakeContribution(t *models.ProductTakeTransaction) models.Balance {
	return models.Balance{Fine: t.MetalFine(), Amount: t.Amount}
}

// Sum adds up the contributions of entries.
func Sum(entries []Entry) models.Balance {
	total := models.Balance{}
	for _, e := range entries {
		total = total.Add(e.Contribution)
	}
	return total
}
