package service

import (
	"context"
	"log/slog"
	"time"

	"volunteens/auth-service/internal/metrics"
	"volunteens/auth-service/internal/security"
	userdomain "volunteens/auth-service/internal/user/domain"
)

// AuthContext is the verified identity attached to a request on behalf of a
// sibling service. Permissions are the effective set: role defaults plus
// per-user grants.
type AuthContext struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	SessionID   string   `json:"sessionId"`
	Permissions []string `json:"permissions"`
}

// VerifyService resolves an access token into an AuthContext. It sits on the
// hot path of every authenticated request in the platform, so its store
// lookups run under a bounded timeout and infrastructure failures are
// reported as ErrUnavailable rather than as authentication failures.
type VerifyService struct {
	users    UserRepo
	sessions SessionRepo
	tokens   *security.TokenProvider
	metrics  *metrics.Metrics
	logger   *slog.Logger
	timeout  time.Duration
}

// NewVerifyService returns a VerifyService with the given lookup timeout.
// A non-positive timeout defaults to two seconds.
func NewVerifyService(users UserRepo, sessions SessionRepo, tokens *security.TokenProvider, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) *VerifyService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &VerifyService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
		timeout:  timeout,
	}
}

// Verify validates the access token, confirms the backing session is still
// live and the account still active, and returns the caller's identity and
// effective permissions.
//
// Error contract: security.ErrTokenExpired and security.ErrTokenMalformed
// pass through for the stateless checks; ErrSessionInvalid covers a revoked
// or missing session and a non-active account; ErrUnavailable covers store
// failures and timeouts.
func (s *VerifyService) Verify(ctx context.Context, accessToken string) (*AuthContext, error) {
	claims, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		s.metrics.VerifyRequests.WithLabelValues("rejected").Inc()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.sessions.GetActive(ctx, claims.SessionID)
	if err != nil {
		s.metrics.VerifyRequests.WithLabelValues("unavailable").Inc()
		s.logger.Error("verify: session lookup failed", "error", err)
		return nil, ErrUnavailable
	}
	if sess == nil {
		s.metrics.VerifyRequests.WithLabelValues("rejected").Inc()
		return nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		s.metrics.VerifyRequests.WithLabelValues("unavailable").Inc()
		s.logger.Error("verify: user lookup failed", "error", err)
		return nil, ErrUnavailable
	}
	if user == nil || user.Status != userdomain.StatusActive {
		s.metrics.VerifyRequests.WithLabelValues("rejected").Inc()
		return nil, ErrSessionInvalid
	}

	s.metrics.VerifyRequests.WithLabelValues("ok").Inc()
	return &AuthContext{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		SessionID:   sess.ID,
		Permissions: user.EffectivePermissions(),
	}, nil
}
