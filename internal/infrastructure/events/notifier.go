package events

import (
	"context"
	"encoding/json"

	"ledger-backend/internal/ledger"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// LogNotifier writes every committed ledger event to the global logger.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, evs []ledger.Event) {
	for _, e := range evs {
		entry := log.Info().Str("event", string(e.Kind)).Time("at", e.At)
		if e.AssetID != 0 {
			entry = entry.Uint64("asset_id", e.AssetID)
		}
		if e.BundleID != 0 {
			entry = entry.Uint64("bundle_id", e.BundleID)
		}
		if e.AuctionID != 0 {
			entry = entry.Uint64("auction_id", e.AuctionID)
		}
		if e.RentalID != 0 {
			entry = entry.Uint64("rental_id", e.RentalID)
		}
		if e.Actor != "" {
			entry = entry.Str("actor", string(e.Actor))
		}
		if e.Counterparty != "" {
			entry = entry.Str("counterparty", string(e.Counterparty))
		}
		if e.Amount != 0 {
			entry = entry.Int64("amount", e.Amount)
		}
		entry.Msg("Ledger event")
	}
}

// RedisPublisher publishes each event as JSON on a pub/sub channel.
// Publish failures are logged; the transaction has already committed.
type RedisPublisher struct {
	Rdb     *redis.Client
	Channel string
}

func (p *RedisPublisher) Notify(ctx context.Context, evs []ledger.Event) {
	if p.Rdb == nil || len(evs) == 0 {
		return
	}
	pipe := p.Rdb.Pipeline()
	for _, e := range evs {
		b, err := json.Marshal(e)
		if err != nil {
			log.Error().Err(err).Str("event", string(e.Kind)).Msg("Failed to encode ledger event")
			continue
		}
		pipe.Publish(ctx, p.Channel, b)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("channel", p.Channel).Int("events", len(evs)).Msg("Failed to publish ledger events")
	}
}

// Fanout delivers events to every notifier in order.
type Fanout []ledger.Notifier

func (f Fanout) Notify(ctx context.Context, evs []ledger.Event) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, evs)
		}
	}
}
