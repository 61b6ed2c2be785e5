package deposits

import (
	"context"
	"errors"

	"ledger-backend/internal/application/accounts"
	"ledger-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrMissingAccount = errors.New("Payment intent has no account_id metadata")
	ErrInvalidAmount  = errors.New("Deposit amount must be a positive number")
)

// MinDepositCents guards against dust intents.
const MinDepositCents = 50

type Service struct {
	DB      *gorm.DB
	Creator PaymentIntentCreator
	// Currency of wallet deposits, lower case ISO code.
	Currency string
}

// CreateIntent starts a wallet top-up. The account id travels in the intent
// metadata and is read back by the webhook.
func (s *Service) CreateIntent(ctx context.Context, accountID string, amountCents int64) (*PaymentIntentResult, error) {
	if amountCents < MinDepositCents {
		return nil, ErrInvalidAmount
	}
	if _, err := (&accounts.Service{DB: s.DB}).Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.Creator.Create(amountCents, s.Currency, map[string]string{
		"account_id": accountID,
		"purpose":    "wallet_deposit",
	})
}

// SucceededIntent is the subset of a payment_intent.succeeded event we act on.
type SucceededIntent struct {
	ID             string
	EventID        string
	AccountID      string
	AmountReceived int64
	Currency       string
	Status         string
	Raw            []byte
}

// Record credits the wallet for a succeeded intent exactly once. It reports
// false when the intent was already recorded.
func (s *Service) Record(ctx context.Context, pi SucceededIntent) (bool, error) {
	if pi.AccountID == "" {
		return false, ErrMissingAccount
	}
	accountID, err := uuid.Parse(pi.AccountID)
	if err != nil {
		return false, ErrMissingAccount
	}
	if pi.AmountReceived <= 0 {
		return false, ErrInvalidAmount
	}
	if len(pi.Raw) == 0 {
		pi.Raw = []byte("{}")
	}

	credited := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Deposit
		if err := tx.Where("stripe_payment_intent_id = ?", pi.ID).First(&existing).Error; err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&domain.Deposit{
			StripePaymentIntentID: pi.ID,
			StripeEventID:         pi.EventID,
			AccountID:             accountID,
			AmountCents:           pi.AmountReceived,
			Currency:              pi.Currency,
			Status:                pi.Status,
			RawPaymentIntent:      pi.Raw,
		}).Error; err != nil {
			return err
		}
		credited = true
		return accounts.Credit(tx, pi.AccountID, pi.AmountReceived, domain.WalletEntryDeposit, pi.ID)
	})
	if err != nil {
		return false, err
	}
	if credited {
		log.Info().Str("account_id", pi.AccountID).Str("payment_intent", pi.ID).Int64("amount", pi.AmountReceived).Msg("Deposit credited")
	}
	return credited, nil
}
