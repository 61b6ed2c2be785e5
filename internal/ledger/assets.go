package ledger

import (
	"context"
	"slices"
	"time"
)

// Register mints a new Active, transferable asset owned by caller.
func (l *Ledger) Register(ctx context.Context, caller Address, name string, value int64, meta Metadata) (uint64, error) {
	if value < 0 {
		return 0, ErrInvalidAmount
	}
	var id uint64
	err := l.update(ctx, func(tx *txn) error {
		id = l.assetSeq.next()
		meta.Tags = slices.Clone(meta.Tags)
		meta.CreatedAt = tx.now
		meta.UpdatedAt = tx.now
		l.assets[id] = &Asset{
			ID:             id,
			Name:           name,
			Value:          value,
			Owner:          caller,
			Status:         StatusActive,
			IsTransferable: true,
			Metadata:       meta,
		}
		l.history[id] = &History{AssetID: id}
		l.indexAdd(caller, id)
		tx.emit(Event{Kind: EventAssetCreated, AssetID: id, Actor: caller, Amount: value})
		return nil
	})
	return id, err
}

func (l *Ledger) TransferOwnership(ctx context.Context, caller Address, assetID uint64, to Address) error {
	if to == "" {
		return ErrInvalidAddress
	}
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if err := l.requireActive(a); err != nil {
			return err
		}
		if !a.IsTransferable {
			return ErrNotTransferable
		}
		if to == caller {
			return nil
		}
		l.moveOwnership(a, to)
		tx.emit(Event{Kind: EventAssetTransferred, AssetID: assetID, Actor: caller, Counterparty: to})
		return nil
	})
}

func (l *Ledger) SetTransferable(ctx context.Context, caller Address, assetID uint64, transferable bool) error {
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if a.Status == StatusBurned {
			return invalidState(StatusActive, a)
		}
		a.IsTransferable = transferable
		a.Metadata.UpdatedAt = tx.now
		tx.emit(Event{Kind: EventAssetMetadataUpdated, AssetID: assetID, Actor: caller})
		return nil
	})
}

func (l *Ledger) UpdateMetadata(ctx context.Context, caller Address, assetID uint64, upd MetadataUpdate) error {
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if a.Status == StatusBurned {
			return invalidState(StatusActive, a)
		}
		m := &a.Metadata
		if upd.Description != nil {
			m.Description = *upd.Description
		}
		if upd.ImageURI != nil {
			m.ImageURI = *upd.ImageURI
		}
		if upd.DocumentURI != nil {
			m.DocumentURI = *upd.DocumentURI
		}
		if upd.Category != nil {
			m.Category = *upd.Category
		}
		if upd.Tags != nil {
			m.Tags = slices.Clone(upd.Tags)
		}
		m.UpdatedAt = tx.now
		tx.emit(Event{Kind: EventAssetMetadataUpdated, AssetID: assetID, Actor: caller})
		return nil
	})
}

// LockTimed locks an Active asset until now+d.
func (l *Ledger) LockTimed(ctx context.Context, caller Address, assetID uint64, d time.Duration) error {
	if d <= 0 {
		return ErrInvalidAmount
	}
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if err := l.requireActive(a); err != nil {
			return err
		}
		a.Status = StatusLocked
		a.LockReason = LockTimed
		a.LockedUntil = tx.now.Add(d)
		tx.emit(Event{Kind: EventAssetLocked, AssetID: assetID, Actor: caller})
		return nil
	})
}

// UnlockTimed releases a timed lock once its deadline has passed. Bundle and
// collateral locks are released only by their own operations.
func (l *Ledger) UnlockTimed(ctx context.Context, caller Address, assetID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if a.Status != StatusLocked || a.LockReason != LockTimed {
			return invalidState(StatusLocked, a)
		}
		if tx.now.Before(a.LockedUntil) {
			return ErrStillLocked
		}
		l.setActive(a)
		tx.emit(Event{Kind: EventAssetUnlocked, AssetID: assetID, Actor: caller})
		return nil
	})
}

// Burn is terminal. The record stays queryable but leaves the owner index.
func (l *Ledger) Burn(ctx context.Context, caller Address, assetID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if err := l.requireActive(a); err != nil {
			return err
		}
		a.Status = StatusBurned
		l.indexRemove(a.Owner, a.ID)
		tx.emit(Event{Kind: EventAssetBurned, AssetID: assetID, Actor: caller})
		return nil
	})
}

// Tokenize records amount as represented by fungible tokens. Minting them is
// left to the caller.
func (l *Ledger) Tokenize(ctx context.Context, caller Address, assetID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		if err := l.requireActive(a); err != nil {
			return err
		}
		if a.IsTokenized {
			return ErrAlreadyTokenized
		}
		if amount > a.Value-a.TokenizedAmount {
			return ErrTokenizationExceeds
		}
		a.TokenizedAmount += amount
		a.IsTokenized = a.TokenizedAmount == a.Value
		tx.emit(Event{Kind: EventAssetTokenized, AssetID: assetID, Actor: caller, Amount: amount})
		return nil
	})
}

// Suspend freezes any live asset. The prior status and lock reason are kept
// so Reinstate can restore them exactly.
func (l *Ledger) Suspend(ctx context.Context, admin Address, assetID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		a, ok := l.assets[assetID]
		if !ok {
			return ErrNotFound
		}
		if a.Status == StatusBurned || a.Status == StatusSuspended {
			return invalidState(StatusActive, a)
		}
		a.suspendedStatus = a.Status
		a.suspendedReason = a.LockReason
		a.Status = StatusSuspended
		a.LockReason = LockNone
		tx.emit(Event{Kind: EventAssetSuspended, AssetID: assetID, Actor: admin, Counterparty: a.Owner})
		return nil
	})
}

func (l *Ledger) Reinstate(ctx context.Context, admin Address, assetID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		a, ok := l.assets[assetID]
		if !ok {
			return ErrNotFound
		}
		if a.Status != StatusSuspended {
			return invalidState(StatusSuspended, a)
		}
		a.Status = a.suspendedStatus
		a.LockReason = a.suspendedReason
		a.suspendedStatus = ""
		a.suspendedReason = LockNone
		tx.emit(Event{Kind: EventAssetReinstated, AssetID: assetID, Actor: admin, Counterparty: a.Owner})
		return nil
	})
}
