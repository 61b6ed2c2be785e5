package marketplace

import (
	"context"
	"fmt"
	"time"

	"ledger-backend/internal/domain"
	"ledger-backend/internal/ledger"
)

func auctionRef(id uint64) string { return fmt.Sprintf("auction:%d", id) }

func rentalRef(id uint64) string { return fmt.Sprintf("rental:%d", id) }

func (s *Service) CreateAuction(ctx context.Context, caller string, assetID uint64, startingPrice int64, d time.Duration) (ledger.Auction, error) {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return ledger.Auction{}, err
	}
	id, err := s.Ledger.CreateAuction(ctx, addr, assetID, startingPrice, d)
	if err != nil {
		return ledger.Auction{}, err
	}
	return s.Ledger.GetAuction(id)
}

// PlaceBid debits the bid from the caller's wallet into auction escrow. An
// outbid amount becomes claimable by its bidder.
func (s *Service) PlaceBid(ctx context.Context, caller string, auctionID uint64, amount int64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.withDebit(ctx, caller, amount, domain.WalletEntryBid, auctionRef(auctionID), func(ctx context.Context) error {
		return s.Ledger.PlaceBid(ctx, addr, auctionID, amount)
	})
}

// SettleAuction hands the asset to the winning bidder, who counts as a
// transfer recipient and so must not be blacklisted either.
func (s *Service) SettleAuction(ctx context.Context, caller string, auctionID uint64) error {
	au, err := s.Ledger.GetAuction(auctionID)
	if err != nil {
		return err
	}
	var recipients []string
	if au.HasBid() {
		recipients = append(recipients, string(au.CurrentBidder))
	}
	addr, err := s.guard(ctx, caller, recipients...)
	if err != nil {
		return err
	}
	return s.Ledger.SettleAuction(ctx, addr, auctionID)
}

func (s *Service) CancelAuction(ctx context.Context, caller string, auctionID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.CancelAuction(ctx, addr, auctionID)
}

func (s *Service) CreateRental(ctx context.Context, caller string, assetID uint64, d time.Duration, price int64) (ledger.Rental, error) {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return ledger.Rental{}, err
	}
	id, err := s.Ledger.CreateRental(ctx, addr, assetID, d, price)
	if err != nil {
		return ledger.Rental{}, err
	}
	return s.Ledger.GetRental(id)
}

func (s *Service) PayRent(ctx context.Context, caller string, rentalID uint64, payment int64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.withDebit(ctx, caller, payment, domain.WalletEntryRent, rentalRef(rentalID), func(ctx context.Context) error {
		return s.Ledger.PayRent(ctx, addr, rentalID, payment)
	})
}

// ExtendRental debits the full payment; anything above the extension cost is
// credited back to the caller as a claim.
func (s *Service) ExtendRental(ctx context.Context, caller string, rentalID uint64, extra time.Duration, payment int64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.withDebit(ctx, caller, payment, domain.WalletEntryExtend, rentalRef(rentalID), func(ctx context.Context) error {
		return s.Ledger.ExtendRental(ctx, addr, rentalID, extra, payment)
	})
}

func (s *Service) CloseRental(ctx context.Context, caller string, rentalID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.CloseRental(ctx, addr, rentalID)
}

func (s *Service) CancelRental(ctx context.Context, caller string, rentalID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.CancelRental(ctx, addr, rentalID)
}
