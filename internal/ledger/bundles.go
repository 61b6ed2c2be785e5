package ledger

import (
	"context"
	"slices"
)

// CreateBundle locks every member under a new bundle. All members are checked
// before any of them is touched, so a failure leaves the ledger unchanged.
func (l *Ledger) CreateBundle(ctx context.Context, caller Address, assetIDs []uint64, name, description string) (uint64, error) {
	if len(assetIDs) == 0 {
		return 0, ErrEmptyBundle
	}
	var id uint64
	err := l.update(ctx, func(tx *txn) error {
		members := make([]*Asset, 0, len(assetIDs))
		seen := make(map[uint64]struct{}, len(assetIDs))
		var total int64
		for _, assetID := range assetIDs {
			if _, dup := seen[assetID]; dup {
				return ErrDuplicateBundleMember
			}
			seen[assetID] = struct{}{}

			a, ok := l.assets[assetID]
			if !ok {
				return ErrNotFound
			}
			if a.Owner != caller {
				return ErrNotAllOwned
			}
			if err := l.requireActive(a); err != nil {
				return err
			}
			members = append(members, a)
			total += a.Value
		}

		id = l.bundleSeq.next()
		for _, a := range members {
			a.Status = StatusLocked
			a.LockReason = LockBundle
			a.BundleID = id
		}
		l.bundles[id] = &Bundle{
			ID:          id,
			AssetIDs:    slices.Clone(assetIDs),
			Name:        name,
			Description: description,
			TotalValue:  total,
			Owner:       caller,
		}
		tx.emit(Event{Kind: EventBundleCreated, BundleID: id, Actor: caller, Amount: total})
		return nil
	})
	return id, err
}

func (l *Ledger) Unbundle(ctx context.Context, caller Address, bundleID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		b, ok := l.bundles[bundleID]
		if !ok {
			return ErrNotFound
		}
		if b.Owner != caller {
			return ErrNotOwner
		}
		if b.IsLocked {
			return ErrBundleLocked
		}
		for _, assetID := range b.AssetIDs {
			a := l.assets[assetID]
			if a.Status != StatusLocked || a.LockReason != LockBundle || a.BundleID != bundleID {
				return invalidState(StatusLocked, a)
			}
		}
		for _, assetID := range b.AssetIDs {
			a := l.assets[assetID]
			l.setActive(a)
			a.BundleID = 0
		}
		delete(l.bundles, bundleID)
		tx.emit(Event{Kind: EventUnbundled, BundleID: bundleID, Actor: caller})
		return nil
	})
}
