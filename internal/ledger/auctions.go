package ledger

import (
	"context"
	"time"
)

func (l *Ledger) CreateAuction(ctx context.Context, caller Address, assetID uint64, startingPrice int64, d time.Duration) (uint64, error) {
	if startingPrice < 0 || d <= 0 {
		return 0, ErrInvalidAmount
	}
	var id uint64
	err := l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if err := l.requireActive(a); err != nil {
			return err
		}
		id = l.auctionSeq.next()
		l.auctions[id] = &Auction{
			ID:            id,
			AssetID:       assetID,
			Seller:        caller,
			StartingPrice: startingPrice,
			CurrentBid:    startingPrice,
			EndTime:       tx.now.Add(d),
			IsActive:      true,
		}
		a.Status = StatusInAuction
		a.AuctionID = id
		h := l.history[assetID]
		h.AuctionIDs = append(h.AuctionIDs, id)
		tx.emit(Event{Kind: EventAuctionCreated, AssetID: assetID, AuctionID: id, Actor: caller, Amount: startingPrice})
		return nil
	})
	return id, err
}

// liveAuction returns an auction and its asset when the auction can still change hands.
func (l *Ledger) liveAuction(auctionID uint64) (*Auction, *Asset, error) {
	au, ok := l.auctions[auctionID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if au.IsSettled {
		return nil, nil, ErrAlreadySettled
	}
	if !au.IsActive {
		return nil, nil, ErrAuctionNotActive
	}
	a := l.assets[au.AssetID]
	if a.Status != StatusInAuction || a.AuctionID != auctionID {
		return nil, nil, invalidState(StatusInAuction, a)
	}
	return au, a, nil
}

// PlaceBid escrows amount as the new highest bid. The outbid amount becomes
// claimable by its bidder before the new bid is recorded.
func (l *Ledger) PlaceBid(ctx context.Context, caller Address, auctionID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return l.update(ctx, func(tx *txn) error {
		au, _, err := l.liveAuction(auctionID)
		if err != nil {
			return err
		}
		if !tx.now.Before(au.EndTime) {
			return ErrAuctionNotActive
		}
		if caller == au.Seller {
			return ErrUnauthorized
		}
		if amount <= au.CurrentBid {
			return ErrBidTooLow
		}
		if err := tx.collect(); err != nil {
			return err
		}
		if au.HasBid() {
			l.escrowed -= au.CurrentBid
			l.credit(au.CurrentBidder, au.CurrentBid)
		}
		l.escrowed += amount
		au.CurrentBid = amount
		au.CurrentBidder = caller
		tx.emit(Event{Kind: EventBidPlaced, AssetID: au.AssetID, AuctionID: auctionID, Actor: caller, Amount: amount})
		return nil
	})
}

// SettleAuction closes an ended auction. Anyone may call it.
func (l *Ledger) SettleAuction(ctx context.Context, caller Address, auctionID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		au, a, err := l.liveAuction(auctionID)
		if err != nil {
			return err
		}
		if tx.now.Before(au.EndTime) {
			return ErrAuctionStillOpen
		}
		au.IsActive = false
		au.IsSettled = true
		a.AuctionID = 0
		l.setActive(a)

		e := Event{Kind: EventAuctionSettled, AssetID: a.ID, AuctionID: auctionID, Actor: caller}
		if au.HasBid() {
			l.escrowed -= au.CurrentBid
			l.credit(au.Seller, au.CurrentBid)
			l.moveOwnership(a, au.CurrentBidder)
			e.Counterparty = au.CurrentBidder
			e.Amount = au.CurrentBid
		}
		tx.emit(e)
		if au.HasBid() {
			tx.emit(Event{Kind: EventAssetTransferred, AssetID: a.ID, Actor: au.Seller, Counterparty: au.CurrentBidder})
		}
		return nil
	})
}

func (l *Ledger) CancelAuction(ctx context.Context, caller Address, auctionID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		au, a, err := l.liveAuction(auctionID)
		if err != nil {
			return err
		}
		if caller != au.Seller {
			return ErrNotOwner
		}
		if au.HasBid() {
			return ErrAuctionHasBids
		}
		au.IsActive = false
		au.IsCancelled = true
		a.AuctionID = 0
		l.setActive(a)
		tx.emit(Event{Kind: EventAuctionCancelled, AssetID: a.ID, AuctionID: auctionID, Actor: caller})
		return nil
	})
}
