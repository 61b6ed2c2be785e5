package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("Record not found")
	ErrNotOwner              = errors.New("Caller is not the owner")
	ErrNotTransferable       = errors.New("Asset is not transferable")
	ErrInvalidState          = errors.New("Invalid asset state")
	ErrInvalidAmount         = errors.New("Amount must be a positive number")
	ErrInvalidAddress        = errors.New("Invalid address")
	ErrUnauthorized          = errors.New("Caller is not allowed to perform this action")
	ErrBlacklisted           = errors.New("Address is blacklisted")
	ErrStillLocked           = errors.New("Asset is still locked")
	ErrAlreadyTokenized      = errors.New("Asset is already tokenized")
	ErrTokenizationExceeds   = errors.New("Tokenized amount would exceed asset value")
	ErrEmptyBundle           = errors.New("Bundle must contain at least one asset")
	ErrDuplicateBundleMember = errors.New("Bundle lists the same asset twice")
	ErrNotAllOwned           = errors.New("Caller does not own every asset in the bundle")
	ErrBundleLocked          = errors.New("Bundle is locked")
	ErrAuctionNotActive      = errors.New("Auction is not active")
	ErrAuctionStillOpen      = errors.New("Auction has not ended yet")
	ErrAuctionHasBids        = errors.New("Auction already has a bid")
	ErrAlreadySettled        = errors.New("Auction already settled")
	ErrBidTooLow             = errors.New("Bid must be higher than the current bid")
	ErrRentalNotActive       = errors.New("Rental is not active")
	ErrRentalNotExpired      = errors.New("Rental period has not ended yet")
	ErrAlreadyPaid           = errors.New("Rent already paid")
	ErrIncorrectPayment      = errors.New("Payment must equal the rental price")
	ErrInsufficientPayment   = errors.New("Payment does not cover the extension cost")
	ErrCollateralExceeds     = errors.New("Collateral exceeds asset value")
	ErrNoCollateralPosition  = errors.New("No collateral position for asset")
	ErrNothingToClaim        = errors.New("No claimable balance")
	ErrReentrantCall         = errors.New("Ledger mutation attempted during a payout")
)

// StateError reports a status precondition failure. It matches ErrInvalidState
// under errors.Is.
type StateError struct {
	Expected Status
	Actual   Status
	Reason   LockReason
}

func (e *StateError) Error() string {
	if e.Reason != LockNone {
		return fmt.Sprintf("Invalid asset state: expected %s, got %s (%s)", e.Expected, e.Actual, e.Reason)
	}
	return fmt.Sprintf("Invalid asset state: expected %s, got %s", e.Expected, e.Actual)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

func invalidState(expected Status, a *Asset) error {
	return &StateError{Expected: expected, Actual: a.Status, Reason: a.LockReason}
}
