package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WalletEntryDeposit = "deposit"
	WalletEntryPayout  = "payout"
	WalletEntryBid     = "bid"
	WalletEntryRent    = "rent"
	WalletEntryExtend  = "extend"
	WalletEntryAdjust  = "admin_credit"
)

// WalletEntry is one balance movement on an account wallet. Payouts of ledger
// claimable balances land here with kind "payout".
type WalletEntry struct {
	EntryID   uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;index" json:"account_id"`
	Kind      string    `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	Amount    int64     `gorm:"column:amount;not null" json:"amount"`
	Reference string    `gorm:"column:reference" json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WalletEntry) TableName() string {
	return "WalletEntries"
}

func (e *WalletEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}
