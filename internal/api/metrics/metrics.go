// Package metrics defines and registers all custom Prometheus metrics for the
// visit access service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; /metrics exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "visit_access"

// ── Request lifecycle ─────────────────────────────────────────────────────────

// RequestsCreatedTotal counts newly created visit requests.
var RequestsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of visit requests created.",
	},
)

// RequestsReviewedTotal counts committed reviews.
// Label:
//   - decision: "accepted" or "rejected"
var RequestsReviewedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_reviewed_total",
		Help:      "Total number of visit requests reviewed, by decision.",
	},
	[]string{"decision"},
)

// ReviewConflictsTotal counts reviews rejected because the request had
// already left the "new" state.
var ReviewConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_conflicts_total",
		Help:      "Total number of reviews refused because the request was no longer new.",
	},
)

// CredentialsIssuedTotal counts credential issuance attempts.
// Label:
//   - result: "ok", "error", or "unsaved" (issued but the location was not stored)
var CredentialsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credentials_issued_total",
		Help:      "Total number of credential issuance attempts, by result.",
	},
	[]string{"result"},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsEnqueuedTotal counts notification intents handed to the queue.
// Labels:
//   - kind: notification kind (e.g. "guest_pass")
//   - result: "ok" or "error"
var NotificationsEnqueuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_enqueued_total",
		Help:      "Total number of notification intents enqueued, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationsDeliveredTotal counts delivery outcomes.
// Labels:
//   - kind: notification kind
//   - result: "sent", "failed" or "duplicate"
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notification deliveries, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks pending intents per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures a single delivery including retries.
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of notification delivery from dequeue to final outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// EventsPublishedTotal counts review events published for fan-out.
// Labels:
//   - channel_kind: "sec" or "applicant"
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of review events published, by channel kind and result.",
	},
	[]string{"channel_kind", "result"},
)

// ── Accounts ──────────────────────────────────────────────────────────────────

// TokensIssuedTotal counts activation tokens issued, by purpose.
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of activation tokens issued, by purpose.",
	},
	[]string{"purpose"},
)

// TokensConsumedTotal counts consumption attempts.
// Labels:
//   - purpose: "registration" or "password_recovery"
//   - result: "ok", "not_found", "already_used" or "action_failed"
var TokensConsumedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_consumed_total",
		Help:      "Total number of activation token consumption attempts, by purpose and result.",
	},
	[]string{"purpose", "result"},
)

// TokenCollisionsTotal counts generated token values that were already taken.
var TokenCollisionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_collisions_total",
		Help:      "Total number of generated token values rejected as duplicates.",
	},
)
