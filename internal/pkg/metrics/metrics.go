// Package metrics defines and registers the custom Prometheus metrics of the
// CRM API. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default registry on package init (promauto),
// and exposed by the /metrics endpoint together with the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - outcome: "success", "unknown_user" or "bad_password"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenValidationsTotal counts token validations.
// Label:
//   - result: "valid", "anonymous", "missing", "malformed", "bad_signature" or "expired"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of token validations, by result.",
	},
	[]string{"result"},
)

// AccessDecisionsTotal counts access policy decisions.
// Labels:
//   - resource: the policy resource (e.g. "customers:write")
//   - decision: "allow" or "deny"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access policy decisions, by resource and decision.",
	},
	[]string{"resource", "decision"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of login events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of login events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts login events discarded because the audit queue was full
// or already stopped.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of login audit events dropped before persistence.",
	},
)

// AuditWriteDuration measures how long persisting a single login event takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of login audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── CRM metrics ───────────────────────────────────────────────────────────────

// CustomersCreatedTotal counts newly created customers.
// Label:
//   - customer_type: "REGULAR", "PREMIUM" or "VIP"
var CustomersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "customers_created_total",
		Help:      "Total number of customers created, by customer type.",
	},
	[]string{"customer_type"},
)

// InteractionsCreatedTotal counts newly logged interactions.
// Label:
//   - interaction_type: "PURCHASE", "INQUIRY", "SUPPORT" or "COMPLAINT"
var InteractionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interactions_created_total",
		Help:      "Total number of interactions created, by interaction type.",
	},
	[]string{"interaction_type"},
)

// AnalyticsCacheTotal counts analytics cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var AnalyticsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_cache_total",
		Help:      "Total number of analytics cache lookups, by result.",
	},
	[]string{"result"},
)
