package events

import (
	"context"
	"time"

	"github.com/vitaldent/clinic-site/pkg/logging"
)

// Deliverer polls the outbox and invokes the handler. Failed entries are
// retried with exponential backoff until maxAttempts, then abandoned.
type Deliverer struct {
	store       Store
	handler     DeliveryHandler
	logger      *logging.Logger
	batchSize   int32
	interval    time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	now         func() time.Time
}

func NewDeliverer(store Store, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:       store,
		handler:     handler,
		logger:      logger,
		batchSize:   25,
		interval:    2 * time.Second,
		maxAttempts: 8,
		baseDelay:   30 * time.Second,
		maxDelay:    time.Hour,
		now:         time.Now,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) WithMaxAttempts(n int) *Deliverer {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

func (d *Deliverer) WithBaseDelay(delay time.Duration) *Deliverer {
	if delay > 0 {
		d.baseDelay = delay
	}
	return d
}

// Start drains immediately, then on every tick until ctx is done.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// drain delivers one batch and returns how many entries were marked delivered.
func (d *Deliverer) drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, entry := range entries {
		if err := d.handler.Handle(ctx, entry); err != nil {
			d.fail(ctx, entry, err)
			continue
		}
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark outbox delivered", "error", err, "event_id", entry.ID)
		} else if ok {
			delivered++
			d.logger.Debug("outbox delivered", "event_id", entry.ID, "type", entry.Type)
		}
	}
	return delivered
}

func (d *Deliverer) fail(ctx context.Context, entry OutboxEntry, cause error) {
	attempt := entry.Attempts + 1
	var retryAt *time.Time
	if attempt < d.maxAttempts {
		at := d.now().Add(d.nextDelay(entry.Attempts))
		retryAt = &at
		d.logger.Warn("outbox delivery failed, will retry",
			"error", cause, "event_id", entry.ID, "type", entry.Type, "attempt", attempt, "retry_at", at)
	} else {
		d.logger.Error("outbox delivery abandoned",
			"error", cause, "event_id", entry.ID, "type", entry.Type, "attempts", attempt)
	}
	if err := d.store.MarkFailed(ctx, entry.ID, cause.Error(), retryAt); err != nil {
		d.logger.Error("failed to record outbox failure", "error", err, "event_id", entry.ID)
	}
}

// nextDelay doubles baseDelay per previous failure, capped at maxDelay.
func (d *Deliverer) nextDelay(attempts int) time.Duration {
	if attempts > 20 {
		return d.maxDelay
	}
	delay := d.baseDelay * time.Duration(1<<attempts)
	if delay > d.maxDelay {
		delay = d.maxDelay
	}
	return delay
}
