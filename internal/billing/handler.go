package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bullion-backend/internal/httpx"
	"bullion-backend/internal/ledger"
	"bullion-backend/internal/models"
	"bullion-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BuyerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"max=100"`
	Address string `json:"address" validate:"max=500"`
	GSTIN   string `json:"gstin" validate:"max=20"`
}

type BillItemRequest struct {
	Description  string           `json:"description" validate:"required,max=200"`
	Weight       *decimal.Decimal `json:"weight" validate:"required"`
	Rate         *decimal.Decimal `json:"rate" validate:"required"`
	MakingCharge decimal.Decimal  `json:"makingCharge"`
}

type CreateBillRequest struct {
	BuyerID uint              `json:"buyerId" validate:"required"`
	Date    string            `json:"date"`
	Items   []BillItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxRate decimal.Decimal   `json:"taxRate"`
	Notes   string            `json:"notes" validate:"max=500"`
}

type Handler struct {
	gw *store.Gateway
}

func NewHandler(gw *store.Gateway) *Handler {
	return &Handler{gw: gw}
}

// -------------------------
// Buyers
// -------------------------

// POST /buyers
func (h *Handler) CreateBuyer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BuyerRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		body.trim()
		if err := ledger.Validate(body); err != nil {
			return err
		}
		b := models.Buyer{Name: body.Name, Contact: body.Contact, Address: body.Address, GSTIN: body.GSTIN}
		if err := store.Insert(c.UserContext(), h.gw, &b); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

// GET /buyers
func (h *Handler) ListBuyers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := store.Query{Order: []string{"name asc", "id asc"}}
		if name := strings.TrimSpace(c.Query("name")); name != "" {
			q.Filters = append(q.Filters, store.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%"))
		}
		buyers, err := store.Find[models.Buyer](c.UserContext(), h.gw, q)
		if err != nil {
			return err
		}
		return c.JSON(buyers)
	}
}

// GET /buyers/:id
func (h *Handler) GetBuyer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		b, err := store.FindByID[models.Buyer](c.UserContext(), h.gw, id)
		if err != nil {
			return fmt.Errorf("buyer %d: %w", id, err)
		}
		return c.JSON(b)
	}
}

// PUT /buyers/:id replaces every editable field.
func (h *Handler) UpdateBuyer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body BuyerRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		body.trim()
		if err := ledger.Validate(body); err != nil {
			return err
		}
		b, err := store.UpdateByID[models.Buyer](c.UserContext(), h.gw, id, map[string]any{
			"name":    body.Name,
			"contact": body.Contact,
			"address": body.Address,
			"gstin":   body.GSTIN,
		})
		if err != nil {
			return fmt.Errorf("buyer %d: %w", id, err)
		}
		return c.JSON(b)
	}
}

func (r *BuyerRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Contact = strings.TrimSpace(r.Contact)
	r.Address = strings.TrimSpace(r.Address)
	r.GSTIN = strings.ToUpper(strings.TrimSpace(r.GSTIN))
}

// -------------------------
// Bills
// -------------------------

// POST /bills
func (h *Handler) CreateBill() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBillRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		if err := ledger.Validate(body); err != nil {
			return err
		}
		if body.TaxRate.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "taxRate can not be negative")
		}

		date := time.Now().UTC()
		if strings.TrimSpace(body.Date) != "" {
			d, err := ledger.ParseDate(body.Date)
			if err != nil {
				return err
			}
			date = d
		}

		bill := models.Bill{
			Number:  newBillNumber(date),
			BuyerID: body.BuyerID,
			Date:    date,
			TaxRate: body.TaxRate,
			Notes:   strings.TrimSpace(body.Notes),
			Items:   make([]models.BillItem, 0, len(body.Items)),
		}
		for _, it := range body.Items {
			bill.Items = append(bill.Items, models.BillItem{
				Description:  strings.TrimSpace(it.Description),
				Weight:       *it.Weight,
				Rate:         *it.Rate,
				MakingCharge: it.MakingCharge,
			})
		}
		ComputeTotals(&bill)

		ctx := c.UserContext()
		err := h.gw.Transaction(ctx, func(tx *store.Gateway) error {
			if _, err := store.FindByID[models.Buyer](ctx, tx, body.BuyerID); err != nil {
				return fmt.Errorf("buyer %d: %w", body.BuyerID, err)
			}
			return store.Insert(ctx, tx, &bill)
		})
		if err != nil {
			return err
		}

		out, err := h.loadBill(c, bill.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// GET /bills?buyerId=...&startDate=...&endDate=...
func (h *Handler) ListBills() fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := httpx.DateRange(c)
		if err != nil {
			return err
		}
		var filters []store.Filter
		if r.Start != nil {
			filters = append(filters, store.Where("date >= ?", *r.Start))
		}
		if r.End != nil {
			filters = append(filters, store.Where("date <= ?", *r.End))
		}
		if v := c.Query("buyerId"); v != "" {
			buyerID, err := strconv.ParseUint(v, 10, 0)
			if err != nil || buyerID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "buyerId must be a positive integer")
			}
			filters = append(filters, store.Where("buyer_id = ?", buyerID))
		}
		filters = append(filters, func(db *gorm.DB) *gorm.DB { return db.Preload("Buyer") })

		bills, err := store.Find[models.Bill](c.UserContext(), h.gw, store.Query{
			Filters: filters,
			Order:   []string{"date desc", "id desc"},
		})
		if err != nil {
			return err
		}
		return c.JSON(bills)
	}
}

// GET /bills/:id
func (h *Handler) GetBill() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		b, err := h.loadBill(c, id)
		if err != nil {
			return err
		}
		return c.JSON(b)
	}
}

// DELETE /bills/:id
func (h *Handler) DeleteBill() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		ctx := c.UserContext()
		var deleted *models.Bill
		err = h.gw.Transaction(ctx, func(tx *store.Gateway) error {
			items, err := store.Find[models.BillItem](ctx, tx, store.Query{
				Filters: []store.Filter{store.Where("bill_id = ?", id)},
			})
			if err != nil {
				return err
			}
			for _, it := range items {
				if _, err := store.DeleteByID[models.BillItem](ctx, tx, it.ID); err != nil {
					return err
				}
			}
			deleted, err = store.DeleteByID[models.Bill](ctx, tx, id)
			return err
		})
		if err != nil {
			return fmt.Errorf("bill %d: %w", id, err)
		}
		return c.JSON(deleted)
	}
}

func (h *Handler) loadBill(c *fiber.Ctx, id uint) (*models.Bill, error) {
	bills, err := store.Find[models.Bill](c.UserContext(), h.gw, store.Query{
		Filters: []store.Filter{
			store.Where("id = ?", id),
			func(db *gorm.DB) *gorm.DB { return db.Preload("Buyer").Preload("Items") },
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, fmt.Errorf("bill %d: %w", id, store.ErrNotFound)
	}
	return &bills[0], nil
}

// newBillNumber is date prefixed so numbers sort by issue date.
func newBillNumber(date time.Time) string {
	return fmt.Sprintf("B-%s-%s", date.UTC().Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

