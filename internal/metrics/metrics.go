// Package metrics exposes prometheus instrumentation for the auth engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth holds the counters tracking authentication outcomes. The fine-grained
// failure kinds live here and in logs; clients only ever see generic errors.
type Auth struct {
	RegisterSuccess   prometheus.Counter
	RegisterDuplicate prometheus.Counter
	LoginSuccess      prometheus.Counter
	LoginFailure      prometheus.Counter
	RefreshSuccess    prometheus.Counter
	RefreshFailure    prometheus.Counter
	RefreshReuse      prometheus.Counter
	Logout            prometheus.Counter
	GateRejected      prometheus.Counter
}

// NewAuth registers the auth counters on the given registerer.
func NewAuth(reg prometheus.Registerer) *Auth {
	factory := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: "stillmind",
			Subsystem: "auth",
			Name:      name,
			Help:      help,
		})
	}

	return &Auth{
		RegisterSuccess:   counter("register_success_total", "Successful registrations."),
		RegisterDuplicate: counter("register_duplicate_total", "Registrations rejected for a taken email."),
		LoginSuccess:      counter("login_success_total", "Successful logins."),
		LoginFailure:      counter("login_failure_total", "Logins rejected for invalid credentials."),
		RefreshSuccess:    counter("refresh_success_total", "Successful refresh-token rotations."),
		RefreshFailure:    counter("refresh_failure_total", "Refresh attempts rejected as invalid or expired."),
		RefreshReuse:      counter("refresh_reuse_total", "Refresh attempts presenting an already-revoked token."),
		Logout:            counter("logout_total", "Logout calls."),
		GateRejected:      counter("gate_rejected_total", "Protected requests rejected by the request gate."),
	}
}

// NewAuthUnregistered returns counters not attached to any registry, for
// tests and tools that do not scrape.
func NewAuthUnregistered() *Auth {
	return NewAuth(prometheus.NewRegistry())
}
