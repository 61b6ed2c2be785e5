package admin

import (
	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"
	"ledger-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers serves operator endpoints. Route-level permissions gate access;
// suspend and reinstate are checked again against the caller's role.
type Handlers struct {
	Market *marketplace.Service
}

func (h *Handlers) asset(c *fiber.Ctx, message string, suspend bool) error {
	id, ok := validation.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid asset id")
	}
	caller := middleware.AccountID(c)
	var err error
	if suspend {
		err = h.Market.SuspendAsset(c.UserContext(), caller, id)
	} else {
		err = h.Market.ReinstateAsset(c.UserContext(), caller, id)
	}
	if err != nil {
		return httperr.Reply(c, err)
	}
	a, err := h.Market.Ledger.GetAsset(id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	log.Info().Str("operator", caller).Uint64("asset_id", id).Bool("suspended", suspend).Msg("Asset moderation")
	return response.Success(c, message, a, nil)
}

// Suspend POST /api/v1/admin/assets/:id/suspend
func (h *Handlers) Suspend(c *fiber.Ctx) error {
	return h.asset(c, "Asset suspended", true)
}

// Reinstate POST /api/v1/admin/assets/:id/reinstate
func (h *Handlers) Reinstate(c *fiber.Ctx) error {
	return h.asset(c, "Asset reinstated", false)
}

// Blacklist PATCH /api/v1/admin/blacklist
func (h *Handlers) Blacklist(c *fiber.Ctx) error {
	var body struct {
		AccountID   string `json:"account_id"`
		Blacklisted *bool  `json:"blacklisted"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !validation.IsValidAddress(body.AccountID) || body.Blacklisted == nil {
		return response.BadRequest(c, "account_id and blacklisted are required")
	}
	if err := h.Market.Accounts.SetBlacklisted(c.UserContext(), body.AccountID, *body.Blacklisted); err != nil {
		return httperr.Reply(c, err)
	}
	log.Info().Str("operator", middleware.AccountID(c)).Str("account_id", body.AccountID).
		Bool("blacklisted", *body.Blacklisted).Msg("Blacklist updated")
	return response.Success(c, "Blacklist updated", fiber.Map{
		"account_id":  body.AccountID,
		"blacklisted": *body.Blacklisted,
	}, nil)
}

// Credit POST /api/v1/admin/wallet/credit adds funds outside the payment flow.
func (h *Handlers) Credit(c *fiber.Ctx) error {
	var body struct {
		AccountID string `json:"account_id"`
		Amount    int64  `json:"amount"`
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !validation.IsValidAddress(body.AccountID) {
		return response.BadRequest(c, "Invalid account_id")
	}
	if body.Reference == "" {
		body.Reference = "admin:" + middleware.AccountID(c)
	}
	ctx := c.UserContext()
	if err := h.Market.Accounts.AdminCredit(ctx, body.AccountID, body.Amount, body.Reference); err != nil {
		return httperr.Reply(c, err)
	}
	bal, err := h.Market.Accounts.Balance(ctx, body.AccountID)
	if err != nil {
		return httperr.Reply(c, err)
	}
	log.Info().Str("operator", middleware.AccountID(c)).Str("account_id", body.AccountID).
		Int64("amount", body.Amount).Msg("Wallet credited")
	return response.Success(c, "Wallet credited", fiber.Map{
		"account_id": body.AccountID,
		"balance":    bal,
	}, nil)
}
