package marketplace

import (
	"context"
	"errors"
	"time"

	"ledger-backend/internal/application/accounts"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/pkg/constants"
	"ledger-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service routes one authenticated caller operation at a time into the ledger.
// It resolves the caller against the Accounts table, refuses blacklisted
// addresses and debits wallet funds for bids and rent from inside the ledger
// call.
type Service struct {
	DB       *gorm.DB
	Ledger   *ledger.Ledger
	Accounts *accounts.Service
}

func New(db *gorm.DB, l *ledger.Ledger) *Service {
	return &Service{DB: db, Ledger: l, Accounts: &accounts.Service{DB: db}}
}

// guard validates every address taking part in a mutation and rejects the
// call when any of them is blacklisted.
func (s *Service) guard(ctx context.Context, caller string, others ...string) (ledger.Address, error) {
	for _, addr := range append([]string{caller}, others...) {
		if !validation.IsValidAddress(addr) {
			return "", ledger.ErrInvalidAddress
		}
		black, err := s.Accounts.IsBlacklisted(ctx, addr)
		if err != nil {
			return "", err
		}
		if black {
			return "", ledger.ErrBlacklisted
		}
	}
	return ledger.Address(caller), nil
}

// withDebit runs op with a wallet debit of amount attached as its ledger
// Charge. The ledger collects it under its write lock after validation, so the
// lock order is always ledger then database, and a failed debit or commit
// leaves the ledger untouched. Zero amounts (free rentals) skip the wallet.
func (s *Service) withDebit(ctx context.Context, caller string, amount int64, kind, reference string, op func(ctx context.Context) error) error {
	if amount < 0 {
		return ledger.ErrInvalidAmount
	}
	if amount == 0 {
		return op(ctx)
	}
	charge := func(cctx context.Context) error {
		err := s.DB.WithContext(cctx).Transaction(func(tx *gorm.DB) error {
			return accounts.Debit(tx, caller, amount, kind, reference)
		})
		if err != nil && !errors.Is(err, accounts.ErrInsufficientFunds) {
			log.Error().Err(err).Str("account_id", caller).Int64("amount", amount).Str("reference", reference).
				Msg("Wallet debit failed")
		}
		return err
	}
	return op(ledger.WithCharge(ctx, charge))
}

type RegisterAssetInput struct {
	Name     string          `json:"name"`
	Value    int64           `json:"value"`
	Metadata ledger.Metadata `json:"metadata"`
}

func (s *Service) RegisterAsset(ctx context.Context, caller string, in RegisterAssetInput) (ledger.Asset, error) {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return ledger.Asset{}, err
	}
	id, err := s.Ledger.Register(ctx, addr, in.Name, in.Value, in.Metadata)
	if err != nil {
		return ledger.Asset{}, err
	}
	return s.Ledger.GetAsset(id)
}

func (s *Service) TransferAsset(ctx context.Context, caller string, assetID uint64, to string) error {
	addr, err := s.guard(ctx, caller, to)
	if err != nil {
		return err
	}
	return s.Ledger.TransferOwnership(ctx, addr, assetID, ledger.Address(to))
}

func (s *Service) SetTransferable(ctx context.Context, caller string, assetID uint64, transferable bool) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.SetTransferable(ctx, addr, assetID, transferable)
}

func (s *Service) UpdateMetadata(ctx context.Context, caller string, assetID uint64, upd ledger.MetadataUpdate) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.UpdateMetadata(ctx, addr, assetID, upd)
}

func (s *Service) LockAsset(ctx context.Context, caller string, assetID uint64, d time.Duration) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.LockTimed(ctx, addr, assetID, d)
}

func (s *Service) UnlockAsset(ctx context.Context, caller string, assetID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.UnlockTimed(ctx, addr, assetID)
}

func (s *Service) BurnAsset(ctx context.Context, caller string, assetID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.Burn(ctx, addr, assetID)
}

func (s *Service) TokenizeAsset(ctx context.Context, caller string, assetID uint64, amount int64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.Tokenize(ctx, addr, assetID, amount)
}

func (s *Service) CreateBundle(ctx context.Context, caller string, assetIDs []uint64, name, description string) (ledger.Bundle, error) {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return ledger.Bundle{}, err
	}
	id, err := s.Ledger.CreateBundle(ctx, addr, assetIDs, name, description)
	if err != nil {
		return ledger.Bundle{}, err
	}
	return s.Ledger.GetAssetBundle(id)
}

func (s *Service) Unbundle(ctx context.Context, caller string, bundleID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.Unbundle(ctx, addr, bundleID)
}

func (s *Service) Collateralize(ctx context.Context, caller string, assetID uint64, amount int64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.Collateralize(ctx, addr, assetID, amount)
}

func (s *Service) ReleaseCollateral(ctx context.Context, caller string, assetID uint64) error {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.ReleaseCollateral(ctx, addr, assetID)
}

// Withdraw moves the caller's claimable ledger balance into their wallet.
func (s *Service) Withdraw(ctx context.Context, caller string) (int64, error) {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return 0, err
	}
	return s.Ledger.Withdraw(ctx, addr)
}

// SuspendAsset and ReinstateAsset are operator actions; the caller must hold
// an admin role.
func (s *Service) SuspendAsset(ctx context.Context, caller string, assetID uint64) error {
	addr, err := s.operator(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.Suspend(ctx, addr, assetID)
}

func (s *Service) ReinstateAsset(ctx context.Context, caller string, assetID uint64) error {
	addr, err := s.operator(ctx, caller)
	if err != nil {
		return err
	}
	return s.Ledger.Reinstate(ctx, addr, assetID)
}

func (s *Service) operator(ctx context.Context, caller string) (ledger.Address, error) {
	addr, err := s.guard(ctx, caller)
	if err != nil {
		return "", err
	}
	for _, role := range []string{constants.Superadmin, constants.Admin} {
		ok, err := s.Accounts.HasRole(ctx, role, caller)
		if err != nil {
			return "", err
		}
		if ok {
			return addr, nil
		}
	}
	return "", ledger.ErrUnauthorized
}
