package ledger

import (
	"cmp"
	"slices"
)

func (l *Ledger) GetAsset(id uint64) (Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.assets[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	return a.clone(), nil
}

func (l *Ledger) GetAssetMetadata(id uint64) (Metadata, error) {
	a, err := l.GetAsset(id)
	if err != nil {
		return Metadata{}, err
	}
	return a.Metadata, nil
}

// GetUserAssets lists the ids owned by addr in ascending order.
func (l *Ledger) GetUserAssets(addr Address) []uint64 {
	l.mu.RLock()
	ids := slices.Clone(l.owned[addr])
	l.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (l *Ledger) GetUserTotalAssetValue(addr Address) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total int64
	for _, id := range l.owned[addr] {
		total += l.assets[id].Value
	}
	return total
}

func (l *Ledger) GetAssetBundle(id uint64) (Bundle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bundles[id]
	if !ok {
		return Bundle{}, ErrNotFound
	}
	return b.clone(), nil
}

func (l *Ledger) GetAuction(id uint64) (Auction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	au, ok := l.auctions[id]
	if !ok {
		return Auction{}, ErrNotFound
	}
	return *au, nil
}

// GetActiveAuctions returns auctions that have been neither settled nor
// cancelled, ordered by id. Ended but unsettled auctions are included.
func (l *Ledger) GetActiveAuctions() []Auction {
	l.mu.RLock()
	out := make([]Auction, 0)
	for _, au := range l.auctions {
		if au.IsActive {
			out = append(out, *au)
		}
	}
	l.mu.RUnlock()
	slices.SortFunc(out, func(a, b Auction) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (l *Ledger) GetRental(id uint64) (Rental, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.rentals[id]
	if !ok {
		return Rental{}, ErrNotFound
	}
	return *r, nil
}

func (l *Ledger) GetActiveRentals() []Rental {
	l.mu.RLock()
	out := make([]Rental, 0)
	for _, r := range l.rentals {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	l.mu.RUnlock()
	slices.SortFunc(out, func(a, b Rental) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (l *Ledger) GetAssetHistory(id uint64) (History, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.history[id]
	if !ok {
		return History{}, ErrNotFound
	}
	return h.clone(), nil
}

func (l *Ledger) GetCollateral(assetID uint64) (CollateralPosition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, ok := l.collateral[assetID]
	if !ok {
		return CollateralPosition{}, ErrNoCollateralPosition
	}
	return *pos, nil
}

func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Stats{
		Assets:   len(l.assets),
		Bundles:  len(l.bundles),
		Escrowed: l.escrowed,
	}
	for _, au := range l.auctions {
		if au.IsActive {
			s.ActiveAuctions++
		}
	}
	for _, r := range l.rentals {
		if r.IsActive {
			s.ActiveRentals++
		}
	}
	for _, v := range l.claims {
		s.Claimable += v
	}
	return s
}
