// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure". Failure covers every rejection
//     (unknown account, wrong password, inactive account) without
//     distinguishing them, matching the uniform API response.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts refresh token redemptions.
// Label:
//   - result: "success", "failure", or "replay"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of refresh token redemptions, by result.",
	},
	[]string{"result"},
)

// TokenReplaysTotal counts detected refresh token replays. Any increase is a
// probable credential theft and should page.
var TokenReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_replays_total",
		Help:      "Total number of refresh token replay detections.",
	},
)

// PasswordHashUpgradesTotal counts transparent hash upgrades performed at
// login.
// Label:
//   - from: the hash family the stored credential was in ("bcrypt" or "argon2id")
var PasswordHashUpgradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_hash_upgrades_total",
		Help:      "Total number of stored password hashes upgraded to the current format.",
	},
	[]string{"from"},
)

// RateLimitRejectionsTotal counts requests rejected by the per-client rate
// limiter on the authentication endpoints.
// Label:
//   - scope: the limited operation ("login", "refresh", "register")
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by the auth rate limiter.",
	},
	[]string{"scope"},
)

// ── Marketplace metrics ───────────────────────────────────────────────────────

// ShiftsCreatedTotal counts newly posted shifts.
var ShiftsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shifts_created_total",
		Help:      "Total number of shifts posted.",
	},
)

// ApplicationsCreatedTotal counts newly submitted applications.
var ApplicationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_created_total",
		Help:      "Total number of shift applications submitted.",
	},
)

// ApplicationTransitionsTotal counts application status transitions.
// Label:
//   - to: the resulting status ("accepted", "rejected", "withdrawn")
var ApplicationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_transitions_total",
		Help:      "Total number of application status transitions, by resulting status.",
	},
	[]string{"to"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDeliveredTotal counts notifications persisted and published.
// Label:
//   - type: the notification type (e.g. "application.accepted")
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notifications delivered to the inbox, by type.",
	},
	[]string{"type"},
)

// NotificationsErrorsTotal counts notification deliveries that failed.
// Label:
//   - reason: short description of the failure ("persist_failed", "publish_failed")
var NotificationsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_errors_total",
		Help:      "Total number of notification deliveries that failed.",
	},
	[]string{"reason"},
)

// NotificationsQueueDepth tracks the number of notifications waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
