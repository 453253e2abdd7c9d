package nominee

import (
	"strings"

	"bullion-backend/internal/httpx"
	"bullion-backend/internal/ledger"
	"bullion-backend/internal/models"
	"bullion-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const searchLimit = 5

type CreateNomineeRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"max=100"`
	Type    string `json:"type" validate:"required,oneof=Material Product"`
}

// UpdateNomineeRequest can not touch the balance; that belongs to the ledger.
type UpdateNomineeRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Contact *string `json:"contact" validate:"omitempty,max=100"`
	Type    *string `json:"type" validate:"omitempty,oneof=Material Product"`
}

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

// GET /nominees
func (h *Handler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := store.Query{Order: []string{"name asc", "id asc"}}
		if t := c.Query("type"); t != "" {
			if !models.NomineeType(t).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "type must be 'Material' or 'Product'")
			}
			q.Filters = append(q.Filters, store.Where("type = ?", t))
		}

		nominees, err := store.Find[models.Nominee](c.UserContext(), h.svc.Gateway(), q)
		if err != nil {
			return err
		}
		return c.JSON(nominees)
	}
}

// GET /nominees/search?query=...&type=...
func (h *Handler) Search() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("query"))
		filters := []store.Filter{
			store.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(query))+"%"),
		}
		if t := c.Query("type"); t != "" {
			if !models.NomineeType(t).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "type must be 'Material' or 'Product'")
			}
			filters = append(filters, store.Where("type = ?", t))
		}

		nominees, err := store.Find[models.Nominee](c.UserContext(), h.svc.Gateway(), store.Query{
			Filters: filters,
			Order:   []string{"name asc", "id asc"},
			Limit:   searchLimit,
		})
		if err != nil {
			return err
		}
		return c.JSON(nominees)
	}
}

// POST /nominees
func (h *Handler) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateNomineeRequest
		if err := httpx.Body(c, &body); err != nil {
			return err
		}
		body.Name = strings.TrimSpace(body.Name)
		body.Contact = strings.TrimSpace(body.Contact)
		if err := ledger.Validate(body); err != nil {
			return err
		}

		n := models.Nominee{
			Name:    body.Name,
			Contact: body.Contact,
			Type:    models.NomineeType(body.Type),
			CurrentBalance: models.Balance{
				Fine:   decimal.Zero,
				Amount: decimal.Zero,
			},
		}
		if err := store.Insert(c.UserContext(), h.svc.Gateway(), &n); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(n)
	}
}

// GET /nominees/:id
func (h *Handler) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		n, err := h.svc.Nominee(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(n)
	}
}

// PUT /nominees/:id
func (h *Handler) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateNomineeRequest
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
		if body.Contact != nil {
			patch["contact"] = strings.TrimSpace(*body.Contact)
		}
		if body.Type != nil {
			patch["type"] = *body.Type
		}

		if len(patch) == 0 {
			n, err := h.svc.Nominee(c.UserContext(), id)
			if err != nil {
				return err
			}
			return c.JSON(n)
		}

		n, err := store.UpdateByID[models.Nominee](c.UserContext(), h.svc.Gateway(), id, patch)
		if err != nil {
			return err
		}
		return c.JSON(n)
	}
}

// GET /nominees/:id/balance
func (h *Handler) Balance() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		check, err := h.svc.Verify(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(check)
	}
}

// POST /nominees/:id/reconcile
func (h *Handler) Reconcile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		check, err := h.svc.Recompute(c.UserContext(), id)
		if err != nil {
			return err
		}
		n, err := h.svc.Nominee(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"repaired":       !check.InSync,
			"previous":       check.Cached,
			"currentBalance": n.CurrentBalance,
		})
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
