package ledger

import (
	"strings"
	"time"

	"bullion-backend/internal/models"

	"github.com/shopspring/decimal"
)

// fineTolerance is how far Totalfine may drift from the sum of line fines.
var fineTolerance = decimal.New(1, -4)

type MaterialInput struct {
	NomineeID   uint            `json:"nomineeId" validate:"required"`
	Date        string          `json:"date"`
	Product     string          `json:"product" validate:"required,max=200"`
	NetWeight   decimal.Decimal `json:"netWeight"`
	Tunch       decimal.Decimal `json:"tunch"`
	Wastage     decimal.Decimal `json:"wastage"`
	Pieces      int             `json:"pieces" validate:"min=0"`
	Fine        decimal.Decimal `json:"fine"`
	Bhav        decimal.Decimal `json:"bhav"`
	Badla       *int            `json:"badla" validate:"omitempty,oneof=0 10 12"`
	Amount      decimal.Decimal `json:"amount"`
	TransType   string          `json:"transType" validate:"required,oneof=Naam Jama"`
	Mode        string          `json:"mode" validate:"required,oneof=cash metal bhav"`
	Description string          `json:"description" validate:"max=500"`
}

func (in MaterialInput) build() (*models.MaterialTransaction, error) {
	in.Product = strings.TrimSpace(in.Product)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(in); err != nil {
		return nil, err
	}
	date, err := txnDate(in.Date)
	if err != nil {
		return nil, err
	}
	return &models.MaterialTransaction{
		NomineeID:   in.NomineeID,
		Date:        date,
		Product:     in.Product,
		NetWeight:   in.NetWeight,
		Tunch:       in.Tunch,
		Wastage:     in.Wastage,
		Pieces:      in.Pieces,
		Fine:        in.Fine,
		Bhav:        in.Bhav,
		Badla:       in.Badla,
		Amount:      in.Amount,
		TransType:   models.MaterialTransType(in.TransType),
		Mode:        models.MaterialMode(in.Mode),
		Description: in.Description,
	}, nil
}

func materialInputOf(m *models.MaterialTransaction) MaterialInput {
	return MaterialInput{
		NomineeID:   m.NomineeID,
		Date:        m.Date.UTC().Format(time.RFC3339Nano),
		Product:     m.Product,
		NetWeight:   m.NetWeight,
		Tunch:       m.Tunch,
		Wastage:     m.Wastage,
		Pieces:      m.Pieces,
		Fine:        m.Fine,
		Bhav:        m.Bhav,
		Badla:       m.Badla,
		Amount:      m.Amount,
		TransType:   string(m.TransType),
		Mode:        string(m.Mode),
		Description: m.Description,
	}
}

type QuantityWeightInput struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
	Weight   *decimal.Decimal `json:"weight" validate:"required"`
}

type ProductLineInput struct {
	Name        string                `json:"name" validate:"required,max=200"`
	GrossWeight *decimal.Decimal      `json:"grossWeight" validate:"required"`
	Tunch       *decimal.Decimal      `json:"tunch" validate:"required"`
	Boxes       []QuantityWeightInput `json:"boxes" validate:"dive"`
	Polythene   []QuantityWeightInput `json:"polythene" validate:"dive"`
	Wastage     *decimal.Decimal      `json:"wastage" validate:"required"`
	Fine        *decimal.Decimal      `json:"fine" validate:"required"`
}

type ProductGiveInput struct {
	NomineeID   uint               `json:"nomineeId" validate:"required"`
	Date        string             `json:"date"`
	Description string             `json:"description" validate:"max=500"`
	Products    []ProductLineInput `json:"products" validate:"dive"`
	TotalFine   *decimal.Decimal   `json:"Totalfine" validate:"required"`
}

func (in ProductGiveInput) build() (*models.ProductGiveTransaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(in); err != nil {
		return nil, err
	}
	date, err := txnDate(in.Date)
	if err != nil {
		return nil, err
	}

	rec := &models.ProductGiveTransaction{
		NomineeID:   in.NomineeID,
		Date:        date,
		Description: in.Description,
		Products:    make([]models.ProductLine, 0, len(in.Products)),
		TotalFine:   *in.TotalFine,
	}
	for _, p := range in.Products {
		line := models.ProductLine{
			Name:        strings.TrimSpace(p.Name),
			GrossWeight: *p.GrossWeight,
			Tunch:       *p.Tunch,
			Boxes:       make([]models.Box, 0, len(p.Boxes)),
			Polythene:   make([]models.Polythene, 0, len(p.Polythene)),
			Wastage:     *p.Wastage,
			Fine:        *p.Fine,
		}
		for _, b := range p.Boxes {
			line.Boxes = append(line.Boxes, models.Box{Quantity: *b.Quantity, Weight: *b.Weight})
		}
		for _, pt := range p.Polythene {
			line.Polythene = append(line.Polythene, models.Polythene{Quantity: *pt.Quantity, Weight: *pt.Weight})
		}
		rec.Products = append(rec.Products, line)
	}

	if len(rec.Products) > 0 && rec.LineFine().Sub(rec.TotalFine).Abs().GreaterThan(fineTolerance) {
		return nil, newValidationError("Totalfine", "must equal the sum of product fine ("+rec.LineFine().String()+")")
	}
	return rec, nil
}

func productGiveInputOf(m *models.ProductGiveTransaction) ProductGiveInput {
	total := m.TotalFine
	in := ProductGiveInput{
		NomineeID:   m.NomineeID,
		Date:        m.Date.UTC().Format(time.RFC3339Nano),
		Description: m.Description,
		Products:    make([]ProductLineInput, 0, len(m.Products)),
		TotalFine:   &total,
	}
	for _, p := range m.Products {
		line := ProductLineInput{
			Name:        p.Name,
			GrossWeight: ptr(p.GrossWeight),
			Tunch:       ptr(p.Tunch),
			Wastage:     ptr(p.Wastage),
			Fine:        ptr(p.Fine),
		}
		for _, b := range p.Boxes {
			line.Boxes = append(line.Boxes, QuantityWeightInput{Quantity: ptr(b.Quantity), Weight: ptr(b.Weight)})
		}
		for _, pt := range p.Polythene {
			line.Polythene = append(line.Polythene, QuantityWeightInput{Quantity: ptr(pt.Quantity), Weight: ptr(pt.Weight)})
		}
		in.Products = append(in.Products, line)
	}
	return in
}

type MetalInput struct {
	Weight decimal.Decimal `json:"weight"`
	Tunch  decimal.Decimal `json:"tunch"`
	Fine   decimal.Decimal `json:"fine"`
	Bhav   decimal.Decimal `json:"bhav"`
	Badla  *int            `json:"badla" validate:"omitempty,oneof=0 10 12"`
}

type ProductTakeInput struct {
	NomineeID   uint            `json:"nomineeId" validate:"required"`
	Date        string          `json:"date"`
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Metal       bool            `json:"metal"`
	Metals      []MetalInput    `json:"metals" validate:"dive"`
}

func (in ProductTakeInput) build() (*models.ProductTakeTransaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(in); err != nil {
		return nil, err
	}
	if in.Amount.IsZero() && !in.Metal {
		return nil, newValidationError("amount", "either amount or metal must be provided")
	}
	date, err := txnDate(in.Date)
	if err != nil {
		return nil, err
	}

	rec := &models.ProductTakeTransaction{
		NomineeID:   in.NomineeID,
		Date:        date,
		Description: in.Description,
		Amount:      in.Amount,
		Metal:       in.Metal,
		Metals:      make([]models.MetalEntry, 0, len(in.Metals)),
	}
	for _, m := range in.Metals {
		rec.Metals = append(rec.Metals, models.MetalEntry{
			Weight: m.Weight,
			Tunch:  m.Tunch,
			Fine:   m.Fine,
			Bhav:   m.Bhav,
			Badla:  m.Badla,
		})
	}
	return rec, nil
}

func productTakeInputOf(m *models.ProductTakeTransaction) ProductTakeInput {
	in := ProductTakeInput{
		NomineeID:   m.NomineeID,
		Date:        m.Date.UTC().Format(time.RFC3339Nano),
		Description: m.Description,
		Amount:      m.Amount,
		Metal:       m.Metal,
		Metals:      make([]MetalInput, 0, len(m.Metals)),
	}
	for _, e := range m.Metals {
		in.Metals = append(in.Metals, MetalInput{Weight: e.Weight, Tunch: e.Tunch, Fine: e.Fine, Bhav: e.Bhav, Badla: e.Badla})
	}
	return in
}

// txnDate parses a transaction date; empty means now.
func txnDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Now().UTC(), nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, newValidationError("date", "invalid date")
	}
	return t, nil
}

func ptr[T any](v T) *T { return &v }
