package auctions

import (
	"time"

	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"
	"ledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *marketplace.Service
}

func (h *Handlers) reply(c *fiber.Ctx, message string, id uint64) error {
	a, err := h.Service.Ledger.GetAuction(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, message, a, nil)
}

// Create POST /api/v1/auctions
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		AssetID         uint64 `json:"asset_id"`
		StartingPrice   int64  `json:"starting_price"`
		DurationSeconds int64  `json:"duration_seconds"`
	}
	if err := c.BodyParser(&body); err != nil || body.AssetID == 0 {
		return response.BadRequest(c, "asset_id is required")
	}
	a, err := h.Service.CreateAuction(c.UserContext(), middleware.AccountID(c), body.AssetID,
		body.StartingPrice, time.Duration(body.DurationSeconds)*time.Second)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.SuccessCreated(c, "Auction created", a, nil)
}

// List GET /api/v1/auctions: open auctions and ended ones awaiting settlement.
func (h *Handlers) List(c *fiber.Ctx) error {
	list := h.Service.Ledger.GetActiveAuctions()
	return response.Success(c, "Auctions fetched", list, fiber.Map{"count": len(list)})
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid auction id")
	}
	return h.reply(c, "Auction fetched", id)
}

// Bid POST /api/v1/auctions/:id/bids. The amount is taken from the wallet.
func (h *Handlers) Bid(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid auction id")
	}
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.Service.PlaceBid(c.UserContext(), middleware.AccountID(c), id, body.Amount); err != nil {
		return httperr.Reply(c, err)
	}
	return h.reply(c, "Bid placed", id)
}

func (h *Handlers) Settle(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid auction id")
	}
	if err := h.Service.SettleAuction(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.reply(c, "Auction settled", id)
}

func (h *Handlers) Cancel(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid auction id")
	}
	if err := h.Service.CancelAuction(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.reply(c, "Auction cancelled", id)
}
