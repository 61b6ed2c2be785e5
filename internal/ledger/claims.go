package ledger

import (
	"context"
	"fmt"
)

// Withdraw pays out the caller's whole claimable balance. The payout runs last
// and, if it fails, the balance is restored and the error returned.
func (l *Ledger) Withdraw(ctx context.Context, caller Address) (int64, error) {
	var amount int64
	err := l.update(ctx, func(tx *txn) error {
		amount = l.claims[caller]
		if amount <= 0 {
			return ErrNothingToClaim
		}
		delete(l.claims, caller)
		tx.onRollback(func() { l.claims[caller] = amount })

		if l.payout != nil {
			if err := l.payout.Payout(externalCall(ctx), caller, amount); err != nil {
				return fmt.Errorf("payout of %d to %s: %w", amount, caller, err)
			}
		}
		tx.emit(Event{Kind: EventFundsWithdrawn, Actor: caller, Amount: amount})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func (l *Ledger) Claimable(addr Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.claims[addr]
}
