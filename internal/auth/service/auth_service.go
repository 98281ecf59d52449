package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"volunteens/auth-service/internal/audit"
	auditdomain "volunteens/auth-service/internal/audit/domain"
	"volunteens/auth-service/internal/email"
	"volunteens/auth-service/internal/metrics"
	otpdomain "volunteens/auth-service/internal/otp/domain"
	otpservice "volunteens/auth-service/internal/otp/service"
	"volunteens/auth-service/internal/security"
	sessiondomain "volunteens/auth-service/internal/session/domain"
	userdomain "volunteens/auth-service/internal/user/domain"
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdateStatus(ctx context.Context, id string, status userdomain.AccountStatus) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepo is the minimal session ledger interface needed by the auth
// service. Rotate must be atomic per session (compare-and-swap semantics).
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	GetActive(ctx context.Context, id string) (*sessiondomain.Session, error)
	UpdateRefreshHash(ctx context.Context, id, refreshTokenHash string) error
	Rotate(ctx context.Context, id, oldHash, newHash string, now time.Time) (bool, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
}

// ClientInfo carries descriptive, non-authoritative request metadata recorded
// on the session.
type ClientInfo struct {
	UserAgent  string
	IPAddress  string
	DeviceName string
}

// RegisterInput is the self-service registration request.
type RegisterInput struct {
	Email            string
	Password         string
	Role             userdomain.Role // student or organization only
	FirstName        string
	LastName         string
	OrganizationName string
	OrganizationType string
	AcceptTerms      bool
}

// TokenPair is a freshly issued access + refresh credential pair.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginResult is the outcome of a successful login: the token pair plus the
// raw fingerprint secret, handed to the client exactly once.
type LoginResult struct {
	TokenPair
	Fingerprint string
	SessionID   string
	User        *userdomain.User
}

// RefreshResult is the outcome of a successful rotation. The fingerprint is
// unchanged across rotations, so it is not reissued.
type RefreshResult struct {
	TokenPair
	SessionID string
	UserID    string
}

// Links holds the public URLs embedded in outbound emails.
type Links struct {
	// VerifyBase is prefixed to the OTP token for verification links.
	VerifyBase string
	// ResetBase is prefixed to the OTP token for password reset links.
	ResetBase string
	// Dashboard is linked from welcome emails.
	Dashboard string
}

// AuthService implements login, the refresh/rotation protocol with reuse
// detection, logout, and the OTP-backed verification and reset flows.
type AuthService struct {
	users    UserRepo
	sessions SessionRepo
	otps     *otpservice.Service
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	mailer   email.Sender
	metrics  *metrics.Metrics
	logger   *slog.Logger
	audit    audit.Recorder
	links    Links
	now      func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	users UserRepo,
	sessions SessionRepo,
	otps *otpservice.Service,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	mailer email.Sender,
	m *metrics.Metrics,
	logger *slog.Logger,
	rec audit.Recorder,
	links Links,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		otps:     otps,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		metrics:  m,
		logger:   logger,
		audit:    rec,
		links:    links,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a student or organization account. Students start in
// pending_verification and receive an email-verification code; organizations
// start in pending_approval and wait for an administrator.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*userdomain.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.validateRegistration(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &userdomain.User{
		ID:              uuid.New().String(),
		Email:           in.Email,
		PasswordHash:    hashed,
		Role:            in.Role,
		TermsAcceptedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	switch in.Role {
	case userdomain.RoleStudent:
		user.FirstName = strings.TrimSpace(in.FirstName)
		user.LastName = strings.TrimSpace(in.LastName)
		user.Status = userdomain.StatusPendingVerification
	case userdomain.RoleOrganization:
		user.OrganizationName = strings.TrimSpace(in.OrganizationName)
		user.OrganizationType = strings.TrimSpace(in.OrganizationType)
		user.Status = userdomain.StatusPendingApproval
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRegistration, err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	switch in.Role {
	case userdomain.RoleStudent:
		code, err := s.otps.Issue(ctx, user.ID, otpdomain.TypeEmailVerification)
		if err != nil {
			return nil, err
		}
		s.metrics.OTPIssued.WithLabelValues(string(otpdomain.TypeEmailVerification)).Inc()
		s.sendMail(ctx, "emailVerification", user.Email, map[string]any{
			"studentName": user.DisplayName(),
			"otpLink":     s.links.VerifyBase + code.Token,
		})
	case userdomain.RoleOrganization:
		s.sendMail(ctx, "orgSignupPending", user.Email, map[string]any{
			"organizationName": user.OrganizationName,
		})
	}
	return user, nil
}

// Login checks the credentials, creates a session in the ledger, and issues
// the three client-held values: access token, refresh token, and fingerprint.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string, client ClientInfo) (*LoginResult, error) {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	if emailAddr == "" || password == "" {
		s.metrics.LoginFailure.Inc()
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.LoginFailure.Inc()
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.metrics.LoginFailure.Inc()
		s.audit.Record(ctx, user.ID, auditdomain.ActionLoginFailure, client.IPAddress, client.UserAgent, "bad password")
		return nil, ErrInvalidCredentials
	}
	if user.Status != userdomain.StatusActive {
		s.metrics.LoginFailure.Inc()
		return nil, ErrAccountNotActive
	}

	fingerprint, err := security.GenerateFingerprint()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &sessiondomain.Session{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		FingerprintHash: security.HashToken(fingerprint),
		UserAgent:       client.UserAgent,
		IPAddress:       client.IPAddress,
		DeviceName:      client.DeviceName,
		LastUsedAt:      now,
		ExpiresAt:       now.Add(s.tokens.RefreshTTL()),
		CreatedAt:       now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := s.tokens.IssueRefresh(user.ID, sess.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateRefreshHash(ctx, sess.ID, security.HashToken(refreshToken)); err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, sess.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.LoginSuccess.Inc()
	s.audit.Record(ctx, user.ID, auditdomain.ActionLoginSuccess, client.IPAddress, client.UserAgent, "session "+sess.ID)
	s.logger.Info("login", "user_id", user.ID, "session_id", sess.ID)
	return &LoginResult{
		TokenPair: TokenPair{
			AccessToken:      accessToken,
			AccessExpiresAt:  accessExp,
			RefreshToken:     refreshToken,
			RefreshExpiresAt: refreshExp,
		},
		Fingerprint: fingerprint,
		SessionID:   sess.ID,
		User:        user,
	}, nil
}

// Refresh runs the rotation protocol. Check order matters: the stateless
// signature/expiry check filters garbage before any ledger lookup, and the
// refresh-hash comparison runs before the fingerprint check so that token
// reuse is attributed correctly in logs even when the fingerprint would also
// fail. Every failure past step 2 revokes the session before returning.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, fingerprint string) (*RefreshResult, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		// The token did not reliably identify a session; nothing to revoke.
		s.metrics.RefreshRejected.Inc()
		return nil, ErrInvalidRefresh
	}

	sess, err := s.sessions.GetActive(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		s.metrics.RefreshRejected.Inc()
		return nil, ErrSessionInvalid
	}

	if !security.TokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		// A previously rotated token is being replayed: either an attacker
		// captured it, or the legitimate client raced a retry. Fail closed.
		s.revoke(ctx, sess.ID)
		s.metrics.ReuseDetected.Inc()
		s.metrics.RefreshRejected.Inc()
		s.audit.Record(ctx, sess.UserID, auditdomain.ActionTokenReuse, sess.IPAddress, sess.UserAgent, "session "+sess.ID)
		s.logger.Warn("refresh token reuse detected, session revoked",
			"session_id", sess.ID, "user_id", sess.UserID)
		return nil, ErrSessionInvalid
	}

	now := s.now()
	if sess.IsExpiredAt(now) {
		s.revoke(ctx, sess.ID)
		s.metrics.RefreshRejected.Inc()
		return nil, ErrSessionExpired
	}

	if !security.TokenHashEqual(fingerprint, sess.FingerprintHash) {
		s.revoke(ctx, sess.ID)
		s.metrics.FingerprintMismatch.Inc()
		s.metrics.RefreshRejected.Inc()
		s.audit.Record(ctx, sess.UserID, auditdomain.ActionFingerprintMismatch, sess.IPAddress, sess.UserAgent, "session "+sess.ID)
		s.logger.Warn("fingerprint mismatch on refresh, session revoked",
			"session_id", sess.ID, "user_id", sess.UserID)
		return nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.StatusActive {
		s.revoke(ctx, sess.ID)
		s.metrics.RefreshRejected.Inc()
		return nil, ErrSessionInvalid
	}

	newRefresh, refreshExp, err := s.tokens.IssueRefresh(user.ID, sess.ID)
	if err != nil {
		return nil, err
	}
	rotated, err := s.sessions.Rotate(ctx, sess.ID, sess.RefreshTokenHash, security.HashToken(newRefresh), now)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// Lost the rotation race: a concurrent request already rotated or
		// revoked this session. Treat like reuse and contain.
		s.revoke(ctx, sess.ID)
		s.metrics.ReuseDetected.Inc()
		s.metrics.RefreshRejected.Inc()
		s.logger.Warn("concurrent rotation detected, session revoked",
			"session_id", sess.ID, "user_id", sess.UserID)
		return nil, ErrSessionInvalid
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, sess.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RefreshSuccess.Inc()
	return &RefreshResult{
		TokenPair: TokenPair{
			AccessToken:      accessToken,
			AccessExpiresAt:  accessExp,
			RefreshToken:     newRefresh,
			RefreshExpiresAt: refreshExp,
		},
		SessionID: sess.ID,
		UserID:    user.ID,
	}, nil
}

// Logout revokes the session identified by the refresh token. Decode is
// best-effort: an invalid or missing token is not an error, the caller clears
// client-held credentials regardless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil
	}
	s.metrics.SessionsRevoked.Inc()
	s.audit.Record(ctx, claims.Subject, auditdomain.ActionLogout, "", "", "session "+claims.SessionID)
	return s.sessions.Revoke(ctx, claims.SessionID)
}

// VerifyEmail consumes an email-verification code and activates the account.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*userdomain.User, error) {
	code, err := s.otps.Consume(ctx, token, otpdomain.TypeEmailVerification)
	if err != nil {
		s.metrics.OTPConsumed.WithLabelValues(string(otpdomain.TypeEmailVerification), "rejected").Inc()
		return nil, err
	}
	s.metrics.OTPConsumed.WithLabelValues(string(otpdomain.TypeEmailVerification), "ok").Inc()

	user, err := s.users.GetByID(ctx, code.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, otpservice.ErrOTPInvalid
	}
	if err := s.users.UpdateStatus(ctx, user.ID, userdomain.StatusActive); err != nil {
		return nil, err
	}
	user.Status = userdomain.StatusActive

	s.sendMail(ctx, "welcomeStudent", user.Email, map[string]any{
		"studentName":  user.DisplayName(),
		"dashboardUrl": s.links.Dashboard,
	})
	s.audit.Record(ctx, user.ID, auditdomain.ActionEmailVerified, "", "", "")
	s.logger.Info("email verified", "user_id", user.ID)
	return user, nil
}

// ForgotPassword issues a password-reset code and emails the link. It never
// reveals whether the address is registered: unknown addresses return nil.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = strings.TrimSpace(strings.ToLower(emailAddr))
	if emailAddr == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRegistration)
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	code, err := s.otps.Issue(ctx, user.ID, otpdomain.TypePasswordReset)
	if err != nil {
		return err
	}
	s.metrics.OTPIssued.WithLabelValues(string(otpdomain.TypePasswordReset)).Inc()
	s.sendMail(ctx, "passwordReset", user.Email, map[string]any{
		"userName":  user.DisplayName(),
		"resetLink": s.links.ResetBase + code.Token,
		"expiresIn": 15,
	})
	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset code, replaces the password, and revokes all
// of the user's sessions so any stolen session dies with the old password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordPolicy
	}
	code, err := s.otps.Consume(ctx, token, otpdomain.TypePasswordReset)
	if err != nil {
		s.metrics.OTPConsumed.WithLabelValues(string(otpdomain.TypePasswordReset), "rejected").Inc()
		return err
	}
	s.metrics.OTPConsumed.WithLabelValues(string(otpdomain.TypePasswordReset), "ok").Inc()

	hashed, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, code.UserID, hashed); err != nil {
		return err
	}
	if err := s.sessions.RevokeAllByUser(ctx, code.UserID); err != nil {
		return err
	}
	s.metrics.SessionsRevoked.Inc()
	s.audit.Record(ctx, code.UserID, auditdomain.ActionPasswordReset, "", "", "all sessions revoked")
	s.logger.Info("password reset completed, all sessions revoked", "user_id", code.UserID)
	return nil
}

// revoke is the best-effort containment step taken before an error return.
func (s *AuthService) revoke(ctx context.Context, sessionID string) {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		s.logger.Error("session revocation failed", "session_id", sessionID, "error", err)
		return
	}
	s.metrics.SessionsRevoked.Inc()
}

func (s *AuthService) sendMail(ctx context.Context, template, to string, data map[string]any) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, template, to, data); err != nil {
		s.logger.Error("failed to send email", "template", template, "error", err)
	}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (s *AuthService) validateRegistration(in RegisterInput) error {
	if in.Email == "" || !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email", ErrInvalidRegistration)
	}
	if len(in.Password) < 8 {
		return ErrPasswordPolicy
	}
	if !in.AcceptTerms {
		return fmt.Errorf("%w: terms must be accepted", ErrInvalidRegistration)
	}
	switch in.Role {
	case userdomain.RoleStudent:
		if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
			return fmt.Errorf("%w: first and last name are required", ErrInvalidRegistration)
		}
	case userdomain.RoleOrganization:
		if strings.TrimSpace(in.OrganizationName) == "" {
			return fmt.Errorf("%w: organization name is required", ErrInvalidRegistration)
		}
	default:
		return fmt.Errorf("%w: invalid account type", ErrInvalidRegistration)
	}
	return nil
}
