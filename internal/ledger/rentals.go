package ledger

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

func (l *Ledger) CreateRental(ctx context.Context, caller Address, assetID uint64, d time.Duration, price int64) (uint64, error) {
	if d < time.Second || price < 0 {
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
		id = l.rentalSeq.next()
		l.rentals[id] = &Rental{
			ID:        id,
			AssetID:   assetID,
			Owner:     caller,
			StartTime: tx.now,
			EndTime:   tx.now.Add(d),
			Price:     price,
			IsActive:  true,
		}
		a.Status = StatusRented
		a.RentalID = id
		h := l.history[assetID]
		h.RentalIDs = append(h.RentalIDs, id)
		tx.emit(Event{Kind: EventRentalCreated, AssetID: assetID, RentalID: id, Actor: caller, Amount: price})
		return nil
	})
	return id, err
}

func (l *Ledger) activeRental(rentalID uint64) (*Rental, *Asset, error) {
	r, ok := l.rentals[rentalID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	if !r.IsActive {
		return nil, nil, ErrRentalNotActive
	}
	a := l.assets[r.AssetID]
	if a.Status != StatusRented || a.RentalID != rentalID {
		return nil, nil, invalidState(StatusRented, a)
	}
	return r, a, nil
}

// PayRent accepts exactly the rental price from a caller other than the
// owner. The payment becomes claimable by the owner.
func (l *Ledger) PayRent(ctx context.Context, caller Address, rentalID uint64, payment int64) error {
	return l.update(ctx, func(tx *txn) error {
		r, _, err := l.activeRental(rentalID)
		if err != nil {
			return err
		}
		if r.IsPaid {
			return ErrAlreadyPaid
		}
		if !tx.now.Before(r.EndTime) {
			return ErrRentalNotActive
		}
		if caller == r.Owner {
			return ErrUnauthorized
		}
		if payment != r.Price {
			return ErrIncorrectPayment
		}
		if err := tx.collect(); err != nil {
			return err
		}
		r.IsPaid = true
		r.Renter = caller
		l.credit(r.Owner, payment)
		tx.emit(Event{Kind: EventRentalPaid, AssetID: r.AssetID, RentalID: rentalID, Actor: caller, Counterparty: r.Owner, Amount: payment})
		return nil
	})
}

// ExtensionCost prices extra time pro rata over the current rental period,
// in whole seconds, truncating.
func ExtensionCost(r Rental, extra time.Duration) (int64, error) {
	period := int64(r.EndTime.Sub(r.StartTime) / time.Second)
	secs := int64(extra / time.Second)
	if secs <= 0 || period <= 0 {
		return 0, ErrInvalidAmount
	}
	q, _ := decimal.NewFromInt(r.Price).
		Mul(decimal.NewFromInt(secs)).
		QuoRem(decimal.NewFromInt(period), 0)
	if q.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrInvalidAmount
	}
	return q.IntPart(), nil
}

// ExtendRental pushes the end time out by extra. The owner is credited the
// cost and any overpayment is credited back to the renter.
func (l *Ledger) ExtendRental(ctx context.Context, caller Address, rentalID uint64, extra time.Duration, payment int64) error {
	if payment < 0 {
		return ErrInvalidAmount
	}
	return l.update(ctx, func(tx *txn) error {
		r, _, err := l.activeRental(rentalID)
		if err != nil {
			return err
		}
		if !r.IsPaid || caller != r.Renter {
			return ErrUnauthorized
		}
		cost, err := ExtensionCost(*r, extra)
		if err != nil {
			return err
		}
		if payment < cost {
			return ErrInsufficientPayment
		}
		if err := tx.collect(); err != nil {
			return err
		}
		r.EndTime = r.EndTime.Add(extra.Truncate(time.Second))
		l.credit(r.Owner, cost)
		l.credit(caller, payment-cost)
		tx.emit(Event{Kind: EventRentalExtended, AssetID: r.AssetID, RentalID: rentalID, Actor: caller, Counterparty: r.Owner, Amount: cost})
		return nil
	})
}

// CloseRental returns an expired rental's asset to its owner's control.
func (l *Ledger) CloseRental(ctx context.Context, caller Address, rentalID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		r, a, err := l.activeRental(rentalID)
		if err != nil {
			return err
		}
		if caller != r.Owner && (r.Renter == "" || caller != r.Renter) {
			return ErrUnauthorized
		}
		if tx.now.Before(r.EndTime) {
			return ErrRentalNotExpired
		}
		l.endRental(r, a)
		tx.emit(Event{Kind: EventRentalClosed, AssetID: a.ID, RentalID: rentalID, Actor: caller})
		return nil
	})
}

// CancelRental withdraws an offer nobody has paid for yet.
func (l *Ledger) CancelRental(ctx context.Context, caller Address, rentalID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		r, a, err := l.activeRental(rentalID)
		if err != nil {
			return err
		}
		if caller != r.Owner {
			return ErrNotOwner
		}
		if r.IsPaid {
			return ErrAlreadyPaid
		}
		l.endRental(r, a)
		tx.emit(Event{Kind: EventRentalClosed, AssetID: a.ID, RentalID: rentalID, Actor: caller})
		return nil
	})
}

func (l *Ledger) endRental(r *Rental, a *Asset) {
	r.IsActive = false
	a.RentalID = 0
	l.setActive(a)
}
