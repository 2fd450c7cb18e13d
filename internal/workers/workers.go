package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// EventPruner deletes audit rows received before cutoff (unix seconds).
type EventPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)
}

// PruneWebhookEvents removes audit rows older than retention. A non-positive
// retention keeps everything.
func PruneWebhookEvents(ctx context.Context, store EventPruner, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-retention).Unix()
	return store.DeleteOlderThan(ctx, cutoff)
}

// RunWebhookEventPruner prunes once immediately and then every interval until
// ctx is cancelled.
func RunWebhookEventPruner(ctx context.Context, store EventPruner, retention, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		deleted, err := PruneWebhookEvents(ctx, store, retention, time.Now())
		if err != nil {
			log.Error().Err(err).Msg("Worker: pruning webhook events failed")
		} else if deleted > 0 {
			log.Info().Int64("deleted", deleted).Dur("retention", retention).Msg("Worker: pruned webhook events")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
