package ledger

import "context"

func (l *Ledger) Collateralize(ctx context.Context, caller Address, assetID uint64, amount int64) error {
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
		if amount > a.Value {
			return ErrCollateralExceeds
		}
		l.collateral[assetID] = &CollateralPosition{Owner: caller, AssetID: assetID, Amount: amount}
		a.Status = StatusLocked
		a.LockReason = LockCollateral
		tx.emit(Event{Kind: EventAssetCollateralized, AssetID: assetID, Actor: caller, Amount: amount})
		return nil
	})
}

func (l *Ledger) ReleaseCollateral(ctx context.Context, caller Address, assetID uint64) error {
	return l.update(ctx, func(tx *txn) error {
		a, err := l.ownedAsset(assetID, caller)
		if err != nil {
			return err
		}
		pos, ok := l.collateral[assetID]
		if !ok || pos.Amount == 0 {
			return ErrNoCollateralPosition
		}
		if a.Status != StatusLocked || a.LockReason != LockCollateral {
			return invalidState(StatusLocked, a)
		}
		delete(l.collateral, assetID)
		l.setActive(a)
		tx.emit(Event{Kind: EventCollateralReleased, AssetID: assetID, Actor: caller, Amount: pos.Amount})
		return nil
	})
}
