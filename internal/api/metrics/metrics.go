// Package metrics defines and registers all custom Prometheus metrics for the
// user administration API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry via promauto at package
// load; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "useradmin"

// UsersCreatedTotal counts successfully created accounts.
// Label:
//   - role: the created account's role (e.g. "ADMIN", "USER")
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

// PermissionDeniedTotal counts policy rejections surfaced to clients.
// Label:
//   - operation: the attempted operation (e.g. "create", "delete", "manage")
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests rejected by the authorization policy.",
	},
	[]string{"operation"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// MembershipMutationsTotal counts group membership writes.
// Label:
//   - operation: "add", "remove", or "replace"
var MembershipMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_mutations_total",
		Help:      "Total number of group membership mutations, by operation.",
	},
	[]string{"operation"},
)
