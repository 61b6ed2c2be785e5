package assets

import (
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Collateralize POST /api/v1/assets/:id/collateral
func (h *Handlers) Collateralize(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.Service.Collateralize(c.UserContext(), middleware.AccountID(c), id, body.Amount); err != nil {
		return httperr.Reply(c, err)
	}
	pos, err := h.Service.Ledger.GetCollateral(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.SuccessCreated(c, "Asset collateralized", pos, nil)
}

// ReleaseCollateral DELETE /api/v1/assets/:id/collateral
func (h *Handlers) ReleaseCollateral(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	if err := h.Service.ReleaseCollateral(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.replyAsset(c, "Collateral released", id)
}

func (h *Handlers) Collateral(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	pos, err := h.Service.Ledger.GetCollateral(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Collateral position fetched", pos, nil)
}
