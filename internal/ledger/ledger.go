package ledger

import (
	"context"
	"sync"
	"time"
)

// Clock supplies the current time. The ledger never lets observed time go backwards.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads wall-clock time.
var SystemClock Clock = ClockFunc(time.Now)

// Payout moves funds out of the ledger to a recipient. It is invoked only as
// the final effect of Withdraw; returning an error rolls the withdrawal back.
// The ledger lock is held during the call, so a Payout must not query the ledger.
type Payout interface {
	Payout(ctx context.Context, to Address, amount int64) error
}

type PayoutFunc func(ctx context.Context, to Address, amount int64) error

func (f PayoutFunc) Payout(ctx context.Context, to Address, amount int64) error {
	return f(ctx, to, amount)
}

type Options struct {
	Clock    Clock
	Notifier Notifier
	Payout   Payout
}

// sequence hands out ids starting at 1; 0 means "does not exist".
type sequence struct {
	last uint64
}

func (s *sequence) next() uint64 {
	s.last++
	return s.last
}

// Ledger owns every asset record and the engines built on them. All mutations
// run under one write lock; queries take the read lock and return copies.
type Ledger struct {
	mu       sync.RWMutex
	clock    Clock
	lastNow  time.Time
	notifier Notifier
	payout   Payout

	assetSeq   sequence
	bundleSeq  sequence
	auctionSeq sequence
	rentalSeq  sequence

	assets     map[uint64]*Asset
	owned      map[Address][]uint64
	ownedPos   map[uint64]int
	history    map[uint64]*History
	bundles    map[uint64]*Bundle
	auctions   map[uint64]*Auction
	rentals    map[uint64]*Rental
	collateral map[uint64]*CollateralPosition
	claims     map[Address]int64
	escrowed   int64
}

func New(opts Options) *Ledger {
	l := &Ledger{
		clock:      opts.Clock,
		notifier:   opts.Notifier,
		payout:     opts.Payout,
		assets:     make(map[uint64]*Asset),
		owned:      make(map[Address][]uint64),
		ownedPos:   make(map[uint64]int),
		history:    make(map[uint64]*History),
		bundles:    make(map[uint64]*Bundle),
		auctions:   make(map[uint64]*Auction),
		rentals:    make(map[uint64]*Rental),
		collateral: make(map[uint64]*CollateralPosition),
		claims:     make(map[Address]int64),
	}
	if l.clock == nil {
		l.clock = SystemClock
	}
	if l.notifier == nil {
		l.notifier = nopNotifier{}
	}
	return l
}

// Charge collects an operation's payment from outside the ledger, typically a
// wallet debit. Paying operations (PlaceBid, PayRent, ExtendRental) run it under
// the write lock once they have validated and before they mutate, so an error
// leaves the ledger untouched and success is always followed by the mutation.
// Like a Payout, a Charge must not call back into the ledger.
type Charge func(ctx context.Context) error

type chargeKey struct{}

// WithCharge attaches c to ctx; the next paying operation called with the
// returned context collects it.
func WithCharge(ctx context.Context, c Charge) context.Context {
	return context.WithValue(ctx, chargeKey{}, c)
}

// txn collects the events and compensations of one mutation.
type txn struct {
	ctx    context.Context
	now    time.Time
	charge Charge
	events []Event
	undo   []func()
}

func (tx *txn) emit(e Event) {
	e.At = tx.now
	tx.events = append(tx.events, e)
}

func (tx *txn) onRollback(f func()) {
	tx.undo = append(tx.undo, f)
}

// collect runs the attached Charge, if any, at most once.
func (tx *txn) collect() error {
	c := tx.charge
	if c == nil {
		return nil
	}
	tx.charge = nil
	return c(externalCall(tx.ctx))
}

type externalCallKey struct{}

// externalCall marks ctx as belonging to a Payout or Charge running under the
// write lock, so re-entering the ledger fails instead of deadlocking.
func externalCall(ctx context.Context) context.Context {
	return context.WithValue(ctx, externalCallKey{}, true)
}

func inExternalCall(ctx context.Context) bool {
	return ctx.Value(externalCallKey{}) != nil
}

// update runs fn as one serialized transaction. Operations validate before
// they mutate; the undo list covers effects that follow a fallible call. A
// context already done once the lock is held aborts before fn runs.
func (l *Ledger) update(ctx context.Context, fn func(tx *txn) error) error {
	if inExternalCall(ctx) {
		return ErrReentrantCall
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	charge, _ := ctx.Value(chargeKey{}).(Charge)
	tx := &txn{ctx: ctx, now: l.tick(), charge: charge}
	if err := fn(tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	if len(tx.events) > 0 {
		l.notifier.Notify(context.WithoutCancel(ctx), tx.events)
	}
	return nil
}

// tick must be called with the write lock held.
func (l *Ledger) tick() time.Time {
	now := l.clock.Now()
	if now.Before(l.lastNow) {
		now = l.lastNow
	}
	l.lastNow = now
	return now
}

func (l *Ledger) indexAdd(owner Address, id uint64) {
	l.ownedPos[id] = len(l.owned[owner])
	l.owned[owner] = append(l.owned[owner], id)
}

// indexRemove swap-removes id from the owner's set in O(1).
func (l *Ledger) indexRemove(owner Address, id uint64) {
	ids := l.owned[owner]
	i, ok := l.ownedPos[id]
	if !ok {
		return
	}
	last := len(ids) - 1
	ids[i] = ids[last]
	l.ownedPos[ids[i]] = i
	ids = ids[:last]
	delete(l.ownedPos, id)
	if len(ids) == 0 {
		delete(l.owned, owner)
		return
	}
	l.owned[owner] = ids
}

func (l *Ledger) moveOwnership(a *Asset, to Address) {
	from := a.Owner
	l.indexRemove(from, a.ID)
	l.indexAdd(to, a.ID)
	h := l.history[a.ID]
	h.PreviousOwners = append(h.PreviousOwners, from)
	a.Owner = to
}

// ownedAsset returns the live record for id when caller owns it and it is not suspended.
func (l *Ledger) ownedAsset(id uint64, caller Address) (*Asset, error) {
	a, ok := l.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Owner != caller {
		return nil, ErrNotOwner
	}
	if a.Status == StatusSuspended {
		return nil, invalidState(StatusActive, a)
	}
	return a, nil
}

func (l *Ledger) requireActive(a *Asset) error {
	if a.Status != StatusActive {
		return invalidState(StatusActive, a)
	}
	return nil
}

func (l *Ledger) setActive(a *Asset) {
	a.Status = StatusActive
	a.LockReason = LockNone
	a.LockedUntil = time.Time{}
}

func (l *Ledger) credit(to Address, amount int64) {
	if amount <= 0 {
		return
	}
	l.claims[to] += amount
}
