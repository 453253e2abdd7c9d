package transaction

import (
	"encoding/json"

	"bullion-backend/internal/httpx"
	"bullion-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

// -------------------------
// Feeds
// -------------------------

// GET /transactions/by-nominee/:nomineeId?startDate=...&endDate=...
func (h *Handler) ByNominee() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "nomineeId")
		if err != nil {
			return err
		}
		r, err := httpx.DateRange(c)
		if err != nil {
			return err
		}
		l, err := h.svc.ListTransactions(c.UserContext(), id, r)
		if err != nil {
			return err
		}
		return c.JSON(l)
	}
}

// GET /transactions/all?startDate=...&endDate=...
func (h *Handler) All() fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := httpx.DateRange(c)
		if err != nil {
			return err
		}
		entries, err := h.svc.ListAllTransactions(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// -------------------------
// Material
// -------------------------

// POST /material-transactions
func (h *Handler) CreateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in ledger.MaterialInput
		if err := httpx.Body(c, &in); err != nil {
			return err
		}
		t, err := h.svc.CreateMaterial(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// GET /material-transactions/:id, also served as GET /transactions/:id
func (h *Handler) GetMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := h.svc.Material(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// PUT /material-transactions/:id, also served as PUT /transactions/:id
func (h *Handler) UpdateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		body, err := patchBody(c)
		if err != nil {
			return err
		}
		t, err := h.svc.UpdateMaterial(c.UserContext(), id, func(in *ledger.MaterialInput) error {
			return merge(body, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// DELETE /material-transactions/:id
func (h *Handler) DeleteMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := h.svc.DeleteMaterial(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// -------------------------
// Product give
// -------------------------

// POST /product-give-transactions
func (h *Handler) CreateProductGive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in ledger.ProductGiveInput
		if err := httpx.Body(c, &in); err != nil {
			return err
		}
		t, err := h.svc.CreateProductGive(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// GET /product-give-transactions/:id
func (h *Handler) GetProductGive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := h.svc.ProductGive(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// PUT /product-give-transactions/:id
func (h *Handler) UpdateProductGive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		body, err := patchBody(c)
		if err != nil {
			return err
		}
		t, err := h.svc.UpdateProductGive(c.UserContext(), id, func(in *ledger.ProductGiveInput) error {
			if _, ok := body["products"]; ok {
				in.Products = nil
			}
			return merge(body, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// DELETE /product-give-transactions/:id
func (h *Handler) DeleteProductGive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := h.svc.DeleteProductGive(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// -------------------------
// Product take
// -------------------------

// POST /product-take-transactions
func (h *Handler) CreateProductTake() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in ledger.ProductTakeInput
		if err := httpx.Body(c, &in); err != nil {
			return err
		}
		t, err := h.svc.CreateProductTake(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// GET /product-take-transactions/:id
func (h *Handler) GetProductTake() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := h.svc.ProductTake(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// PUT /product-take-transactions/:id
func (h *Handler) UpdateProductTake() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		body, err := patchBody(c)
		if err != nil {
			return err
		}
		t, err := h.svc.UpdateProductTake(c.UserContext(), id, func(in *ledger.ProductTakeInput) error {
			if _, ok := body["metals"]; ok {
				in.Metals = nil
			}
			return merge(body, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// DELETE /product-take-transactions/:id
func (h *Handler) DeleteProductTake() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		t, err := h.svc.DeleteProductTake(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(t)
	}
}

// DELETE /transactions/:id?type=material|productgive|producttake
func (h *Handler) DeleteTyped() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		kind, ok := ledger.ParseKind(c.Query("type"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid transaction type")
		}
		if _, err := h.svc.DeleteByKind(c.UserContext(), kind, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
	}
}

// patchBody reads a partial update. Fields left out keep their stored value.
func patchBody(c *fiber.Ctx) (map[string]json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil || body == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return body, nil
}

func merge(body map[string]json.RawMessage, dst any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}
