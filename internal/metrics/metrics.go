// Package metrics exposes Prometheus counters for the auth service's
// security-relevant events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	LoginSuccess        prometheus.Counter
	LoginFailure        prometheus.Counter
	RefreshSuccess      prometheus.Counter
	RefreshRejected     prometheus.Counter
	ReuseDetected       prometheus.Counter
	FingerprintMismatch prometheus.Counter
	SessionsRevoked     prometheus.Counter
	OTPIssued           *prometheus.CounterVec
	OTPConsumed         *prometheus.CounterVec
	VerifyRequests      *prometheus.CounterVec
}

// New registers and returns the service metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginSuccess: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "login_success_total",
			Help: "Successful logins.",
		}),
		LoginFailure: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "login_failure_total",
			Help: "Failed login attempts.",
		}),
		RefreshSuccess: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "refresh_success_total",
			Help: "Successful token rotations.",
		}),
		RefreshRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "refresh_rejected_total",
			Help: "Rejected refresh attempts, any reason.",
		}),
		ReuseDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "refresh_reuse_detected_total",
			Help: "Refresh attempts with a stale token hash (possible theft).",
		}),
		FingerprintMismatch: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "fingerprint_mismatch_total",
			Help: "Refresh attempts whose fingerprint did not match the session.",
		}),
		SessionsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth", Name: "sessions_revoked_total",
			Help: "Sessions revoked for any reason.",
		}),
		OTPIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth", Name: "otp_issued_total",
			Help: "One-time codes issued, by type.",
		}, []string{"type"}),
		OTPConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth", Name: "otp_consumed_total",
			Help: "One-time code consumption attempts, by type and outcome.",
		}, []string{"type", "outcome"}),
		VerifyRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth", Name: "verify_requests_total",
			Help: "Internal verify calls, by outcome.",
		}, []string{"outcome"}),
	}
}

// NewNop returns metrics on a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
