package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice Address = "alice"
	bob   Address = "bob"
	carol Address = "carol"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, events []Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func setupLedgerTest(t *testing.T) (*Ledger, *fakeClock, *recorder) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	l := New(Options{Clock: clock, Notifier: rec})
	return l, clock, rec
}

func mustRegister(t *testing.T, l *Ledger, owner Address, value int64) uint64 {
	t.Helper()
	id, err := l.Register(context.Background(), owner, "asset", value, Metadata{Category: "art"})
	require.NoError(t, err)
	return id
}

// assertIndex checks that every non-burned asset appears in exactly its
// owner's set and nowhere else.
func assertIndex(t *testing.T, l *Ledger) {
	t.Helper()
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := map[uint64]int{}
	for owner, ids := range l.owned {
		for i, id := range ids {
			seen[id]++
			a := l.assets[id]
			assert.Equal(t, owner, a.Owner, "asset %d indexed under wrong owner", id)
			assert.Equal(t, i, l.ownedPos[id])
		}
	}
	for id, a := range l.assets {
		if a.Status == StatusBurned {
			assert.Zero(t, seen[id], "burned asset %d still indexed", id)
			continue
		}
		assert.Equal(t, 1, seen[id], "asset %d index count", id)
	}
}

// assertConservation checks escrow plus claimable equals collected minus withdrawn.
func assertConservation(t *testing.T, l *Ledger, collected, withdrawn int64) {
	t.Helper()
	s := l.Stats()
	assert.Equal(t, collected-withdrawn, s.Escrowed+s.Claimable)
}

func TestNew_Defaults(t *testing.T) {
	l := New(Options{})
	id, err := l.Register(context.Background(), alice, "x", 1, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, Stats{Assets: 1}, l.Stats())
}

func TestClock_NeverGoesBackwards(t *testing.T) {
	l, clock, _ := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 10)
	first, _ := l.GetAsset(id)

	clock.Advance(-time.Hour)
	require.NoError(t, l.UpdateMetadata(ctx, alice, id, MetadataUpdate{}))
	second, _ := l.GetAsset(id)
	assert.False(t, second.Metadata.UpdatedAt.Before(first.Metadata.CreatedAt))
}

func TestIDs_StartAtOneAndArePerKind(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	ctx := context.Background()
	a1 := mustRegister(t, l, alice, 10)
	a2 := mustRegister(t, l, alice, 10)
	assert.Equal(t, uint64(1), a1)
	assert.Equal(t, uint64(2), a2)

	auctionID, err := l.CreateAuction(ctx, alice, a1, 5, time.Hour)
	require.NoError(t, err)
	rentalID, err := l.CreateRental(ctx, alice, a2, time.Hour, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), auctionID)
	assert.Equal(t, uint64(1), rentalID)

	_, err = l.GetAsset(0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvents_PublishedOnlyOnCommit(t *testing.T) {
	l, _, rec := setupLedgerTest(t)
	ctx := context.Background()
	id := mustRegister(t, l, alice, 10)

	err := l.TransferOwnership(ctx, bob, id, carol)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, []EventKind{EventAssetCreated}, rec.kinds())

	require.NoError(t, l.TransferOwnership(ctx, alice, id, bob))
	assert.Equal(t, []EventKind{EventAssetCreated, EventAssetTransferred}, rec.kinds())
}

func TestQueries_ReturnCopies(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	ctx := context.Background()
	id, err := l.Register(ctx, alice, "x", 10, Metadata{Tags: []string{"a"}})
	require.NoError(t, err)

	a, _ := l.GetAsset(id)
	a.Metadata.Tags[0] = "mutated"
	a.Owner = bob

	again, _ := l.GetAsset(id)
	assert.Equal(t, []string{"a"}, again.Metadata.Tags)
	assert.Equal(t, alice, again.Owner)
}

func TestConcurrentMutations_KeepIndexConsistent(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	ctx := context.Background()
	ids := make([]uint64, 50)
	for i := range ids {
		ids[i] = mustRegister(t, l, alice, 1)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(2)
		go func(id uint64) {
			defer wg.Done()
			_ = l.TransferOwnership(ctx, alice, id, bob)
		}(id)
		go func(id uint64) {
			defer wg.Done()
			_ = l.TransferOwnership(ctx, alice, id, carol)
		}(id)
	}
	wg.Wait()

	assertIndex(t, l)
	assert.Len(t, l.GetUserAssets(alice), 0)
	assert.Equal(t, len(ids), len(l.GetUserAssets(bob))+len(l.GetUserAssets(carol)))
}

func TestActiveListings_OrderedByID(t *testing.T) {
	l, _, _ := setupLedgerTest(t)
	ctx := context.Background()
	var auctionIDs, rentalIDs []uint64
	for i := 0; i < 6; i++ {
		a := mustRegister(t, l, alice, 10)
		r := mustRegister(t, l, alice, 10)
		id, err := l.CreateAuction(ctx, alice, a, 1, time.Hour)
		require.NoError(t, err)
		auctionIDs = append(auctionIDs, id)
		id, err = l.CreateRental(ctx, alice, r, time.Hour, 1)
		require.NoError(t, err)
		rentalIDs = append(rentalIDs, id)
	}

	var gotAuctions, gotRentals []uint64
	for _, au := range l.GetActiveAuctions() {
		gotAuctions = append(gotAuctions, au.ID)
	}
	for _, r := range l.GetActiveRentals() {
		gotRentals = append(gotRentals, r.ID)
	}
	assert.Equal(t, auctionIDs, gotAuctions)
	assert.Equal(t, rentalIDs, gotRentals)
}
