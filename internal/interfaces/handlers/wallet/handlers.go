package wallet

import (
	"ledger-backend/internal/application/accounts"
	"ledger-backend/internal/application/deposits"
	"ledger-backend/internal/application/marketplace"
	"ledger-backend/internal/interfaces/handlers/httperr"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/middleware"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Accounts *accounts.Service
	Deposits *deposits.Service
	Market   *marketplace.Service
}

// Get GET /api/v1/wallet: balance and the latest movements.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id := middleware.AccountID(c)
	bal, err := h.Accounts.Balance(c.UserContext(), id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	entries, err := h.Accounts.Entries(c.UserContext(), id, c.QueryInt("limit", 50))
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Wallet fetched", fiber.Map{
		"account_id": id,
		"balance":    bal,
		"claimable":  h.Market.Ledger.Claimable(ledger.Address(id)),
		"entries":    entries,
	}, nil)
}

// DepositIntent POST /api/v1/wallet/deposit-intent creates a Stripe PaymentIntent.
// The wallet is credited by the webhook once the payment succeeds.
func (h *Handlers) DepositIntent(c *fiber.Ctx) error {
	var body struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if h.Deposits == nil || h.Deposits.Creator == nil {
		return response.Error(c, "Stripe not configured", fiber.StatusInternalServerError, nil)
	}
	pi, err := h.Deposits.CreateIntent(c.UserContext(), middleware.AccountID(c), body.AmountCents)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Payment intent created", pi, nil)
}

func (h *Handlers) Claims(c *fiber.Ctx) error {
	id := middleware.AccountID(c)
	return response.Success(c, "Claimable balance fetched", fiber.Map{
		"account_id": id,
		"claimable":  h.Market.Ledger.Claimable(ledger.Address(id)),
	}, nil)
}

// Withdraw POST /api/v1/wallet/withdraw moves the claimable balance into the wallet.
func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	id := middleware.AccountID(c)
	amount, err := h.Market.Withdraw(c.UserContext(), id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	bal, err := h.Accounts.Balance(c.UserContext(), id)
	if err != nil {
		return httperr.Reply(c, err)
	}
	return response.Success(c, "Funds withdrawn", fiber.Map{
		"withdrawn": amount,
		"balance":   bal,
	}, nil)
}
