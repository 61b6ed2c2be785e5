package payouts

import (
	"context"

	"ledger-backend/internal/application/accounts"
	"ledger-backend/internal/domain"
	"ledger-backend/internal/ledger"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WalletPayout moves withdrawn ledger claims into the account wallet.
type WalletPayout struct {
	DB *gorm.DB
}

var _ ledger.Payout = (*WalletPayout)(nil)

func (p *WalletPayout) Payout(ctx context.Context, to ledger.Address, amount int64) error {
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return accounts.Credit(tx, string(to), amount, domain.WalletEntryPayout, "ledger-claim")
	})
	if err != nil {
		log.Error().Err(err).Str("account_id", string(to)).Int64("amount", amount).Msg("Wallet payout failed")
		return err
	}
	log.Info().Str("account_id", string(to)).Int64("amount", amount).Msg("Wallet payout credited")
	return nil
}
