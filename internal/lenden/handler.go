package lenden

import (
	"strings"
	"time"

	"bullion-backend/internal/httpx"
	"bullion-backend/internal/ledger"
	"bullion-backend/internal/models"
	"bullion-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateLendenRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=500"`
	Date        string          `json:"date"` // "2025-12-09", empty means today
	TransType   string          `json:"transType" validate:"required,oneof=credit debit"`
	Amount      decimal.Decimal `json:"amount"`
}

type UpdateLendenRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Date        *string          `json:"date"`
	TransType   *string          `json:"transType" validate:"omitempty,oneof=credit debit"`
	Amount      *decimal.Decimal `json:"amount"`
}

type Summary struct {
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Net    decimal.Decimal `json:"net"`
	Count  int             `json:"count"`
}

// Summarize totals credits and debits; Net is credit minus debit.
func Summarize(entries []models.LendenEntry) Summary {
	s := Summary{Credit: decimal.Zero, Debit: decimal.Zero}
	for _, e := range entries {
		switch e.TransType {
		case models.LendenCredit:
			s.Credit = s.Credit.Add(e.Amount)
		case models.LendenDebit:
			s.Debit = s.Debit.Add(e.Amount)
		}
	}
	s.Net = s.Credit.Sub(s.Debit)
	s.Count = len(entries)
	return s
}

type Handler struct {
	gw *store.Gateway
}

func NewHandler(gw *store.Gateway) *Handler {
	return &Handler{gw: gw}
}

// POST /lenden
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLendenRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Description = strings.TrimSpace(body.Description)
		if err := ledger.Validate(body); err != nil {
			return err
		}
		if !body.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
		}

		d, err := entryDate(body.Date)
		if err != nil {
			return err
		}

		e := models.LendenEntry{
			Name:        body.Name,
			Description: body.Description,
			Date:        d,
			TransType:   models.LendenType(body.TransType),
			Amount:      body.Amount,
		}
		if err := store.Insert(c.UserContext(), h.gw, &e); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// GET /lenden?startDate=...&endDate=...&name=...
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters, err := h.filters(c)
		if err != nil {
			return err
		}
		entries, err := store.Find[models.LendenEntry](c.UserContext(), h.gw, store.Query{
			Filters: filters,
			Order:   []string{"date desc", "id desc"},
		})
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// GET /lenden/summary?startDate=...&endDate=...&name=...
func (h *Handler) Summary() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters, err := h.filters(c)
		if err != nil {
			return err
		}
		entries, err := store.Find[models.LendenEntry](c.UserContext(), h.gw, store.Query{Filters: filters})
		if err != nil {
			return err
		}
		return c.JSON(Summarize(entries))
	}
}

// PUT /lenden/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateLendenRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		if err := ledger.Validate(body); err != nil {
			return err
		}

		patch := map[string]any{}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name can not be empty")
			}
			patch["name"] = name
		}
		if body.Description != nil {
			patch["description"] = strings.TrimSpace(*body.Description)
		}
		if body.Date != nil {
			d, err := entryDate(*body.Date)
			if err != nil {
				return err
			}
			patch["date"] = d
		}
		if body.TransType != nil {
			patch["trans_type"] = *body.TransType
		}
		if body.Amount != nil {
			if !body.Amount.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
			}
			patch["amount"] = *body.Amount
		}

		if len(patch) == 0 {
			e, err := store.FindByID[models.LendenEntry](c.UserContext(), h.gw, id)
			if err != nil {
				return err
			}
			return c.JSON(e)
		}

		e, err := store.UpdateByID[models.LendenEntry](c.UserContext(), h.gw, id, patch)
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

// DELETE /lenden/:id
func (h *Handler) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		e, err := store.DeleteByID[models.LendenEntry](c.UserContext(), h.gw, id)
		if err != nil {
			return err
		}
		return c.JSON(e)
	}
}

func (h *Handler) filters(c *fiber.Ctx) ([]store.Filter, error) {
	r, err := httpx.DateRange(c)
	if err != nil {
		return nil, err
	}
	var out []store.Filter
	if r.Start != nil {
		out = append(out, store.Where("date >= ?", *r.Start))
	}
	if r.End != nil {
		out = append(out, store.Where("date <= ?", *r.End))
	}
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		out = append(out, store.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%"))
	}
	return out, nil
}

func entryDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Now().UTC(), nil
	}
	return ledger.ParseDate(s)
}
