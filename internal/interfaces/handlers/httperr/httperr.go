// Package httperr maps service errors to HTTP replies.
package httperr

import (
	"errors"

	"ledger-backend/internal/application/accounts"
	"ledger-backend/internal/application/auth"
	"ledger-backend/internal/application/deposits"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var statusMap = []struct {
	err  error
	code int
}{
	{ledger.ErrNotFound, fiber.StatusNotFound},
	{accounts.ErrAccountNotFound, fiber.StatusNotFound},
	{ledger.ErrNoCollateralPosition, fiber.StatusNotFound},

	{ledger.ErrNotOwner, fiber.StatusForbidden},
	{ledger.ErrUnauthorized, fiber.StatusForbidden},
	{ledger.ErrBlacklisted, fiber.StatusForbidden},

	{ledger.ErrInvalidAmount, fiber.StatusBadRequest},
	{ledger.ErrInvalidAddress, fiber.StatusBadRequest},
	{ledger.ErrEmptyBundle, fiber.StatusBadRequest},
	{ledger.ErrDuplicateBundleMember, fiber.StatusBadRequest},
	{ledger.ErrCollateralExceeds, fiber.StatusBadRequest},
	{ledger.ErrTokenizationExceeds, fiber.StatusBadRequest},
	{ledger.ErrIncorrectPayment, fiber.StatusBadRequest},
	{ledger.ErrInsufficientPayment, fiber.StatusBadRequest},
	{ledger.ErrBidTooLow, fiber.StatusBadRequest},
	{accounts.ErrInvalidAmount, fiber.StatusBadRequest},
	{accounts.ErrInvalidEmail, fiber.StatusBadRequest},
	{accounts.ErrInvalidPassword, fiber.StatusBadRequest},
	{accounts.ErrInvalidFullname, fiber.StatusBadRequest},
	{accounts.ErrInvalidRole, fiber.StatusBadRequest},
	{deposits.ErrInvalidAmount, fiber.StatusBadRequest},
	{auth.ErrEmailPasswordRequired, fiber.StatusBadRequest},
	{auth.ErrInvalidEmail, fiber.StatusBadRequest},

	{auth.ErrIncorrectPassword, fiber.StatusUnauthorized},
	{auth.ErrNotAuthenticated, fiber.StatusUnauthorized},

	{accounts.ErrInsufficientFunds, fiber.StatusPaymentRequired},

	{ledger.ErrInvalidState, fiber.StatusConflict},
	{ledger.ErrNotTransferable, fiber.StatusConflict},
	{ledger.ErrStillLocked, fiber.StatusConflict},
	{ledger.ErrAlreadyTokenized, fiber.StatusConflict},
	{ledger.ErrNotAllOwned, fiber.StatusConflict},
	{ledger.ErrBundleLocked, fiber.StatusConflict},
	{ledger.ErrAuctionNotActive, fiber.StatusConflict},
	{ledger.ErrAuctionStillOpen, fiber.StatusConflict},
	{ledger.ErrAuctionHasBids, fiber.StatusConflict},
	{ledger.ErrAlreadySettled, fiber.StatusConflict},
	{ledger.ErrRentalNotActive, fiber.StatusConflict},
	{ledger.ErrRentalNotExpired, fiber.StatusConflict},
	{ledger.ErrAlreadyPaid, fiber.StatusConflict},
	{ledger.ErrNothingToClaim, fiber.StatusConflict},
	{accounts.ErrEmailTaken, fiber.StatusConflict},
	{ledger.ErrReentrantCall, fiber.StatusConflict},
}

// Status returns the HTTP status for err; unknown errors are 500.
func Status(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, m := range statusMap {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return fiber.StatusInternalServerError
}

// Reply writes the standard error body for err. Details of a state error are
// passed through so clients can see the actual status.
func Reply(c *fiber.Ctx, err error) error {
	code := Status(err)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled service error")
		return response.Error(c, "Internal server error", code, nil)
	}
	var se *ledger.StateError
	if errors.As(err, &se) {
		return response.Error(c, err.Error(), code, fiber.Map{
			"expected":    se.Expected,
			"actual":      se.Actual,
			"lock_reason": se.Reason,
		})
	}
	return response.Error(c, err.Error(), code, nil)
}
