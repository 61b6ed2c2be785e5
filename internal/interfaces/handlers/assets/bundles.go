package assets

import (
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CreateBundle POST /api/v1/bundles
func (h *Handlers) CreateBundle(c *fiber.Ctx) error {
	var body struct {
		AssetIDs    []uint64 `json:"asset_ids"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	b, err := h.Service.CreateBundle(c.UserContext(), middleware.AccountID(c), body.AssetIDs, body.Name, body.Description)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.SuccessCreated(c, "Bundle created", b, nil)
}

func (h *Handlers) GetBundle(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid bundle id")
	}
	b, err := h.Service.Ledger.GetAssetBundle(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Bundle fetched", b, nil)
}

// Unbundle DELETE /api/v1/bundles/:id
func (h *Handlers) Unbundle(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid bundle id")
	}
	if err := h.Service.Unbundle(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Bundle dissolved", fiber.Map{"bundle_id": id}, nil)
}
