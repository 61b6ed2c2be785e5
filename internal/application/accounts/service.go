package accounts

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"ledger-backend/internal/domain"
	"ledger-backend/internal/pkg/constants"
	"ledger-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service owns the Accounts table: registration, roles, the blacklist and
// wallet balances.
type Service struct {
	DB *gorm.DB
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

// Register creates a trader account. Returns the created model (caller hides password_hash).
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	fullname := strings.TrimSpace(in.Fullname)
	if !validation.IsValidFullname(fullname) {
		return nil, ErrInvalidFullname
	}

	var existing domain.Account
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	a := &domain.Account{
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     titleCaseAndNormalize(fullname),
		Role:         constants.Trader,
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return find(s.DB.WithContext(ctx), accountID)
}

func find(tx *gorm.DB, accountID string) (*domain.Account, error) {
	var a domain.Account
	if err := tx.Where("account_id = ?", accountID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// HasRole reports whether the account holds role. Unknown accounts hold none.
func (s *Service) HasRole(ctx context.Context, role, accountID string) (bool, error) {
	a, err := s.Get(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Role == role, nil
}

func (s *Service) SetRole(ctx context.Context, accountID, role string) error {
	if !constants.IsValidRole(role) {
		return ErrInvalidRole
	}
	return s.update(ctx, accountID, "role", role)
}

// IsBlacklisted reports whether address is barred from mutating calls.
// Addresses without an account are not blacklisted.
func (s *Service) IsBlacklisted(ctx context.Context, accountID string) (bool, error) {
	a, err := s.Get(ctx, accountID)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Blacklisted, nil
}

func (s *Service) SetBlacklisted(ctx context.Context, accountID string, blacklisted bool) error {
	return s.update(ctx, accountID, "blacklisted", blacklisted)
}

func (s *Service) update(ctx context.Context, accountID, column string, value interface{}) error {
	res := s.DB.WithContext(ctx).Model(&domain.Account{}).Where("account_id = ?", accountID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Service) Balance(ctx context.Context, accountID string) (int64, error) {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// Entries lists the wallet movements of an account, newest first.
func (s *Service) Entries(ctx context.Context, accountID string, limit int) ([]domain.WalletEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []domain.WalletEntry
	err := s.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// AdminCredit adds funds to a wallet outside any payment flow.
func (s *Service) AdminCredit(ctx context.Context, accountID string, amount int64, reference string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Credit(tx, accountID, amount, domain.WalletEntryAdjust, reference)
	})
}

// Credit adds amount to the wallet inside tx and records the entry.
func Credit(tx *gorm.DB, accountID string, amount int64, kind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	res := tx.Model(&domain.Account{}).
		Where("account_id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return record(tx, accountID, amount, kind, reference)
}

// Debit removes amount from the wallet inside tx. The balance never goes negative.
func Debit(tx *gorm.DB, accountID string, amount int64, kind, reference string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	res := tx.Model(&domain.Account{}).
		Where("account_id = ? AND balance >= ?", accountID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := find(tx, accountID); err != nil {
			return err
		}
		return ErrInsufficientFunds
	}
	return record(tx, accountID, -amount, kind, reference)
}

func record(tx *gorm.DB, accountID string, amount int64, kind, reference string) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return ErrAccountNotFound
	}
	return tx.Create(&domain.WalletEntry{
		AccountID: id,
		Kind:      kind,
		Amount:    amount,
		Reference: reference,
	}).Error
}

// titleCaseAndNormalize lowercases, collapses whitespace and capitalizes each word.
func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
