package ledger

import (
	"slices"
	"time"
)

// Address identifies a caller or owner. The HTTP layer uses account ids.
type Address string

type Status string

const (
	StatusActive    Status = "active"
	StatusLocked    Status = "locked"
	StatusInAuction Status = "in_auction"
	StatusRented    Status = "rented"
	StatusBurned    Status = "burned"
	StatusSuspended Status = "suspended"
)

// LockReason records which mechanism put an asset into StatusLocked.
// Only the matching operation may unlock it.
type LockReason string

const (
	LockNone       LockReason = ""
	LockTimed      LockReason = "timed"
	LockBundle     LockReason = "bundle"
	LockCollateral LockReason = "collateral"
)

type Metadata struct {
	Description string    `json:"description"`
	ImageURI    string    `json:"image_uri"`
	DocumentURI string    `json:"document_uri"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MetadataUpdate carries the fields to change; nil fields are left as they are.
type MetadataUpdate struct {
	Description *string
	ImageURI    *string
	DocumentURI *string
	Category    *string
	Tags        []string
}

type Asset struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	Value           int64      `json:"value"`
	Owner           Address    `json:"owner"`
	Status          Status     `json:"status"`
	LockReason      LockReason `json:"lock_reason,omitempty"`
	LockedUntil     time.Time  `json:"locked_until,omitempty"`
	IsTransferable  bool       `json:"is_transferable"`
	TokenizedAmount int64      `json:"tokenized_amount"`
	IsTokenized     bool       `json:"is_tokenized"`
	BundleID        uint64     `json:"bundle_id,omitempty"`
	AuctionID       uint64     `json:"auction_id,omitempty"`
	RentalID        uint64     `json:"rental_id,omitempty"`
	Metadata        Metadata   `json:"metadata"`

	// status and lock reason to restore when a suspension is lifted
	suspendedStatus Status
	suspendedReason LockReason
}

func (a *Asset) clone() Asset {
	out := *a
	out.Metadata.Tags = slices.Clone(a.Metadata.Tags)
	return out
}

type Bundle struct {
	ID          uint64   `json:"id"`
	AssetIDs    []uint64 `json:"asset_ids"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TotalValue  int64    `json:"total_value"`
	Owner       Address  `json:"owner"`
	IsLocked    bool     `json:"is_locked"`
}

func (b *Bundle) clone() Bundle {
	out := *b
	out.AssetIDs = slices.Clone(b.AssetIDs)
	return out
}

type Auction struct {
	ID            uint64    `json:"id"`
	AssetID       uint64    `json:"asset_id"`
	Seller        Address   `json:"seller"`
	StartingPrice int64     `json:"starting_price"`
	CurrentBid    int64     `json:"current_bid"`
	CurrentBidder Address   `json:"current_bidder,omitempty"`
	EndTime       time.Time `json:"end_time"`
	IsActive      bool      `json:"is_active"`
	IsSettled     bool      `json:"is_settled"`
	IsCancelled   bool      `json:"is_cancelled"`
}

// HasBid reports whether a bid is held in escrow.
func (a Auction) HasBid() bool { return a.CurrentBidder != "" }

type Rental struct {
	ID        uint64    `json:"id"`
	AssetID   uint64    `json:"asset_id"`
	Owner     Address   `json:"owner"`
	Renter    Address   `json:"renter,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Price     int64     `json:"price"`
	IsActive  bool      `json:"is_active"`
	IsPaid    bool      `json:"is_paid"`
}

type CollateralPosition struct {
	Owner   Address `json:"owner"`
	AssetID uint64  `json:"asset_id"`
	Amount  int64   `json:"amount"`
}

type History struct {
	AssetID        uint64    `json:"asset_id"`
	PreviousOwners []Address `json:"previous_owners"`
	AuctionIDs     []uint64  `json:"auction_ids"`
	RentalIDs      []uint64  `json:"rental_ids"`
}

func (h *History) clone() History {
	return History{
		AssetID:        h.AssetID,
		PreviousOwners: slices.Clone(h.PreviousOwners),
		AuctionIDs:     slices.Clone(h.AuctionIDs),
		RentalIDs:      slices.Clone(h.RentalIDs),
	}
}

// Stats is a cheap summary used by the health endpoint.
type Stats struct {
	Assets         int   `json:"assets"`
	Bundles        int   `json:"bundles"`
	ActiveAuctions int   `json:"active_auctions"`
	ActiveRentals  int   `json:"active_rentals"`
	Escrowed       int64 `json:"escrowed"`
	Claimable      int64 `json:"claimable"`
}
