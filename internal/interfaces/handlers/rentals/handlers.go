package rentals

import (
	"time"

	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"
	"ledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *marketplace.Service
}

func (h *Handlers) reply(c *fiber.Ctx, message string, id uint64) error {
	r, err := h.Service.Ledger.GetRental(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, message, r, nil)
}

// Create POST /api/v1/rentals
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		AssetID         uint64 `json:"asset_id"`
		DurationSeconds int64  `json:"duration_seconds"`
		Price           int64  `json:"price"`
	}
	if err := c.BodyParser(&body); err != nil || body.AssetID == 0 {
		return response.BadRequest(c, "asset_id is required")
	}
	r, err := h.Service.CreateRental(c.UserContext(), middleware.AccountID(c), body.AssetID,
		time.Duration(body.DurationSeconds)*time.Second, body.Price)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.SuccessCreated(c, "Rental offered", r, nil)
}

func (h *Handlers) List(c *fiber.Ctx) error {
	list := h.Service.Ledger.GetActiveRentals()
	return response.Success(c, "Rentals fetched", list, fiber.Map{"count": len(list)})
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid rental id")
	}
	return h.reply(c, "Rental fetched", id)
}

// Pay POST /api/v1/rentals/:id/pay. Payment must equal the price exactly.
func (h *Handlers) Pay(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid rental id")
	}
	var body struct {
		Payment int64 `json:"payment"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.Service.PayRent(c.UserContext(), middleware.AccountID(c), id, body.Payment); err != nil {
		return httperr.Reply(c, err)
	}
	return h.reply(c, "Rent paid", id)
}

// Extend POST /api/v1/rentals/:id/extend. Overpayment becomes claimable.
func (h *Handlers) Extend(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid rental id")
	}
	var body struct {
		ExtraSeconds int64 `json:"extra_seconds"`
		Payment      int64 `json:"payment"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	extra := time.Duration(body.ExtraSeconds) * time.Second
	before, err := h.Service.Ledger.GetRental(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	if err := h.Service.ExtendRental(c.UserContext(), middleware.AccountID(c), id, extra, body.Payment); err != nil {
		return httperr.Reply(c, err)
	}
	// only the renter can extend, so the period priced is the one read above
	cost, _ := ledger.ExtensionCost(before, extra)
	r, err := h.Service.Ledger.GetRental(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Rental extended", r, fiber.Map{
		"cost":   cost,
		"refund": body.Payment - cost,
	})
}

func (h *Handlers) Close(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid rental id")
	}
	if err := h.Service.CloseRental(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.reply(c, "Rental closed", id)
}

func (h *Handlers) Cancel(c *fiber.Ctx) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid rental id")
	}
	if err := h.Service.CancelRental(c.UserContext(), middleware.AccountID(c), id); err != nil {
		return httperr.Reply(c, err)
	}
	return h.reply(c, "Rental cancelled", id)
}
