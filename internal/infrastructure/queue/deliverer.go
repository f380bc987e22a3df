package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/api/metrics"
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// DeliveryLog suppresses duplicate deliveries of the same notification id.
type DeliveryLog interface {
	Claim(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

// Deliverer sends one notification through the notifier, retrying with
// linear backoff. Both the in-process dispatcher and the broker consumer use
// it.
type Deliverer struct {
	notifier    ports.Notifier
	deliveries  DeliveryLog
	maxAttempts int
	backoff     time.Duration
	log         zerolog.Logger
}

// NewDeliverer builds a Deliverer. deliveries may be nil.
func NewDeliverer(notifier ports.Notifier, deliveries DeliveryLog, maxAttempts int, log zerolog.Logger) *Deliverer {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Deliverer{
		notifier:    notifier,
		deliveries:  deliveries,
		maxAttempts: maxAttempts,
		backoff:     defaultBackoff,
		log:         log,
	}
}

// Deliver returns the last send error once every attempt failed.
func (d *Deliverer) Deliver(ctx context.Context, n domain.Notification) error {
	if d.deliveries != nil && n.ID != "" {
		first, err := d.deliveries.Claim(ctx, n.ID)
		if err != nil {
			d.log.Warn().Err(err).Str("notification_id", n.ID).Msg("delivery log unavailable, sending anyway")
		} else if !first {
			metrics.NotificationsDeliveredTotal.WithLabelValues(string(n.Kind), "duplicate").Inc()
			return nil
		}
	}

	start := time.Now()
	var err error
attempts:
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = d.notifier.Send(ctx, n.Address, n.Subject, n.Body); err == nil {
			break
		}
		d.log.Warn().Err(err).
			Str("kind", string(n.Kind)).
			Str("request_id", n.RequestID).
			Str("address", n.Address).
			Int("attempt", attempt).
			Msg("notification delivery failed")
		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break attempts
		case <-time.After(d.backoff * time.Duration(attempt)):
		}
	}

	if err != nil {
		metrics.NotificationsDeliveredTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		metrics.NotificationDeliveryDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		if d.deliveries != nil && n.ID != "" {
			if ferr := d.deliveries.Forget(context.WithoutCancel(ctx), n.ID); ferr != nil {
				d.log.Warn().Err(ferr).Str("notification_id", n.ID).Msg("failed to drop delivery claim")
			}
		}
		return fmt.Errorf("deliver %s to %s: %w", n.Kind, n.Address, err)
	}

	metrics.NotificationsDeliveredTotal.WithLabelValues(string(n.Kind), "sent").Inc()
	metrics.NotificationDeliveryDuration.WithLabelValues("sent").Observe(time.Since(start).Seconds())
	return nil
}
