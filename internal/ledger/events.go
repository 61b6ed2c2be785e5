package ledger

import (
	"context"
	"time"
)

type EventKind string

const (
	EventAssetCreated         EventKind = "AssetCreated"
	EventAssetTransferred     EventKind = "AssetTransferred"
	EventAssetTokenized       EventKind = "AssetTokenized"
	EventAssetMetadataUpdated EventKind = "AssetMetadataUpdated"
	EventAssetLocked          EventKind = "AssetLocked"
	EventAssetUnlocked        EventKind = "AssetUnlocked"
	EventAssetBurned          EventKind = "AssetBurned"
	EventAssetSuspended       EventKind = "AssetSuspended"
	EventAssetReinstated      EventKind = "AssetReinstated"
	EventBundleCreated        EventKind = "AssetBundleCreated"
	EventUnbundled            EventKind = "AssetUnbundled"
	EventAuctionCreated       EventKind = "AuctionCreated"
	EventBidPlaced            EventKind = "BidPlaced"
	EventAuctionSettled       EventKind = "AuctionSettled"
	EventAuctionCancelled     EventKind = "AuctionCancelled"
	EventRentalCreated        EventKind = "RentalCreated"
	EventRentalPaid           EventKind = "RentalPaid"
	EventRentalExtended       EventKind = "RentalExtended"
	EventRentalClosed         EventKind = "RentalClosed"
	EventAssetCollateralized  EventKind = "AssetCollateralized"
	EventCollateralReleased   EventKind = "CollateralReleased"
	EventFundsWithdrawn       EventKind = "FundsWithdrawn"
)

// Event is a domain notification emitted after a transaction commits.
type Event struct {
	Kind         EventKind `json:"kind"`
	AssetID      uint64    `json:"asset_id,omitempty"`
	BundleID     uint64    `json:"bundle_id,omitempty"`
	AuctionID    uint64    `json:"auction_id,omitempty"`
	RentalID     uint64    `json:"rental_id,omitempty"`
	Actor        Address   `json:"actor,omitempty"`
	Counterparty Address   `json:"counterparty,omitempty"`
	Amount       int64     `json:"amount,omitempty"`
	At           time.Time `json:"at"`
}

// Notifier receives committed events in commit order. Implementations must not
// call back into the ledger.
type Notifier interface {
	Notify(ctx context.Context, events []Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, []Event) {}
