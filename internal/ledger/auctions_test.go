package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAuction(t *testing.T) {
	l, clock, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)

	_, err := l.CreateAuction(ctx, bob, id, 100, time.Hour)
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = l.CreateAuction(ctx, alice, id, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	auctionID, err := l.CreateAuction(ctx, alice, id, 100, time.Hour)
	require.NoError(t, err)
	au, err := l.GetAuction(auctionID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), au.CurrentBid)
	assert.False(t, au.HasBid())
	assert.Equal(t, clock.Now().Add(time.Hour), au.EndTime)
	assert.True(t, au.IsActive)

	a, _ := l.GetAsset(id)
	assert.Equal(t, StatusInAuction, a.Status)
	assert.Equal(t, auctionID, a.AuctionID)
	h, _ := l.GetAssetHistory(id)
	assert.Equal(t, []uint64{auctionID}, h.AuctionIDs)
	assert.Len(t, l.GetActiveAuctions(), 1)

	_, err = l.CreateAuction(ctx, alice, id, 100, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPlaceBid_Monotonic(t *testing.T) {
	l, _, rec := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 50, time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, l.PlaceBid(ctx, bob, auctionID, 50), ErrBidTooLow)
	require.NoError(t, l.PlaceBid(ctx, bob, auctionID, 100))
	assert.Equal(t, int64(0), l.Claimable(bob))

	require.NoError(t, l.PlaceBid(ctx, carol, auctionID, 150))
	assert.Equal(t, int64(100), l.Claimable(bob), "outbid amount is refunded")

	assert.ErrorIs(t, l.PlaceBid(ctx, bob, auctionID, 150), ErrBidTooLow)
	assert.ErrorIs(t, l.PlaceBid(ctx, alice, auctionID, 1000), ErrUnauthorized)

	au, _ := l.GetAuction(auctionID)
	assert.Equal(t, int64(150), au.CurrentBid)
	assert.Equal(t, carol, au.CurrentBidder)
	assert.Equal(t, int64(150), l.Stats().Escrowed)
	assertConservation(t, l, 250, 0)

	var bids []int64
	for _, e := range rec.events {
		if e.Kind == EventBidPlaced {
			bids = append(bids, e.Amount)
		}
	}
	assert.Equal(t, []int64{100, 150}, bids)
}

func TestPlaceBid_AfterEnd(t *testing.T) {
	l, clock, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 50, time.Hour)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	assert.ErrorIs(t, l.PlaceBid(ctx, bob, auctionID, 60), ErrAuctionNotActive)
	assert.ErrorIs(t, l.PlaceBid(ctx, bob, 42, 60), ErrNotFound)
}

func TestSettleAuction_WithBidder(t *testing.T) {
	l, clock, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 50, time.Hour)
	require.NoError(t, err)
	require.NoError(t, l.PlaceBid(ctx, bob, auctionID, 100))

	assert.ErrorIs(t, l.SettleAuction(ctx, carol, auctionID), ErrAuctionStillOpen)
	clock.Advance(time.Hour)
	require.NoError(t, l.SettleAuction(ctx, carol, auctionID))

	a, _ := l.GetAsset(id)
	assert.Equal(t, bob, a.Owner)
	assert.Equal(t, StatusActive, a.Status)
	assert.Zero(t, a.AuctionID)
	assert.Equal(t, int64(100), l.Claimable(alice))
	assert.Equal(t, int64(0), l.Stats().Escrowed)
	assertIndex(t, l)
	assertConservation(t, l, 100, 0)

	au, _ := l.GetAuction(auctionID)
	assert.True(t, au.IsSettled)
	assert.False(t, au.IsActive)
	assert.Empty(t, l.GetActiveAuctions())

	assert.ErrorIs(t, l.SettleAuction(ctx, carol, auctionID), ErrAlreadySettled)
	assert.Equal(t, int64(100), l.Claimable(alice), "second settle pays nothing")
	h, _ := l.GetAssetHistory(id)
	assert.Equal(t, []Address{alice}, h.PreviousOwners)
}

func TestSettleAuction_Unsold(t *testing.T) {
	l, clock, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 50, time.Hour)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	require.NoError(t, l.SettleAuction(ctx, bob, auctionID))

	a, _ := l.GetAsset(id)
	assert.Equal(t, alice, a.Owner)
	assert.Equal(t, StatusActive, a.Status)
	assert.Zero(t, l.Claimable(alice))
	assert.ErrorIs(t, l.SettleAuction(ctx, bob, auctionID), ErrAlreadySettled)
}

func TestCancelAuction(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 50, time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, l.CancelAuction(ctx, bob, auctionID), ErrNotOwner)
	require.NoError(t, l.CancelAuction(ctx, alice, auctionID))

	au, _ := l.GetAuction(auctionID)
	assert.True(t, au.IsCancelled)
	assert.False(t, au.IsActive)
	a, _ := l.GetAsset(id)
	assert.Equal(t, StatusActive, a.Status)
	assert.ErrorIs(t, l.CancelAuction(ctx, alice, auctionID), ErrAuctionNotActive)
	assert.ErrorIs(t, l.PlaceBid(ctx, bob, auctionID, 60), ErrAuctionNotActive)

	second, err := l.CreateAuction(ctx, alice, id, 50, time.Hour)
	require.NoError(t, err)
	require.NoError(t, l.PlaceBid(ctx, bob, second, 60))
	assert.ErrorIs(t, l.CancelAuction(ctx, alice, second), ErrAuctionHasBids)
}

func TestPlaceBid_CollectsChargeBeforeMutating(t *testing.T) {
	l, _, rec := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 10, time.Hour)
	require.NoError(t, err)
	before := len(rec.kinds())

	var charged int
	ok := WithCharge(ctx, func(context.Context) error { charged++; return nil })
	failing := WithCharge(ctx, func(context.Context) error { charged++; return assert.AnError })

	// validation failures never reach the charge
	assert.ErrorIs(t, l.PlaceBid(ok, alice, auctionID, 50), ErrUnauthorized)
	assert.ErrorIs(t, l.PlaceBid(ok, bob, auctionID, 5), ErrBidTooLow)
	assert.Zero(t, charged)

	assert.ErrorIs(t, l.PlaceBid(failing, bob, auctionID, 50), assert.AnError)
	assert.Equal(t, 1, charged)
	au, _ := l.GetAuction(auctionID)
	assert.False(t, au.HasBid())
	assert.Equal(t, int64(10), au.CurrentBid)
	assert.Len(t, rec.kinds(), before)
	assertConservation(t, l, 0, 0)

	require.NoError(t, l.PlaceBid(ok, bob, auctionID, 50))
	assert.Equal(t, 2, charged)
	au, _ = l.GetAuction(auctionID)
	assert.Equal(t, bob, au.CurrentBidder)
	assertConservation(t, l, 50, 0)
}

func TestCharge_CannotReenterLedger(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(ctx, alice, id, 10, time.Hour)
	require.NoError(t, err)

	var inner error
	charge := WithCharge(ctx, func(cctx context.Context) error {
		_, inner = l.Withdraw(cctx, bob)
		return nil
	})
	require.NoError(t, l.PlaceBid(charge, bob, auctionID, 20))
	assert.ErrorIs(t, inner, ErrReentrantCall)
}

func TestUpdate_RejectsDoneContext(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	id := mustRegister(t, l, alice, 500)
	auctionID, err := l.CreateAuction(context.Background(), alice, id, 10, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.PlaceBid(ctx, bob, auctionID, 20), context.Canceled)
	au, _ := l.GetAuction(auctionID)
	assert.False(t, au.HasBid())
}
