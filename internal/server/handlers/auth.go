package handlers

import (
	"net/http"
	"time"

	authservice "volunteens/auth-service/internal/auth/service"
	"volunteens/auth-service/internal/server/middleware"
	userdomain "volunteens/auth-service/internal/user/domain"
)

// Cookie names for the three client-held credentials.
const (
	AccessCookieName      = "accessToken"
	RefreshCookieName     = "refreshToken"
	FingerprintCookieName = "fingerprint"
)

// authCookiePath scopes the refresh and fingerprint cookies to the refresh
// and logout endpoints only, so they are never attached to ordinary requests.
const authCookiePath = "/api/v1/auth"

// AuthHandler serves registration, login, token rotation, and the OTP-backed
// verification and reset flows.
type AuthHandler struct {
	auth          *authservice.AuthService
	secureCookies bool
}

// NewAuthHandler returns an AuthHandler. secureCookies should be true outside
// local development.
func NewAuthHandler(auth *authservice.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

type registerRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType"`
	AcceptTerms      bool   `json:"acceptTerms"`
}

type userResponse struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	Status           string   `json:"status"`
	FirstName        string   `json:"firstName,omitempty"`
	LastName         string   `json:"lastName,omitempty"`
	OrganizationName string   `json:"organizationName,omitempty"`
	OrganizationType string   `json:"organizationType,omitempty"`
	Permissions      []string `json:"permissions"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		Role:             string(u.Role),
		Status:           string(u.Status),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		OrganizationName: u.OrganizationName,
		OrganizationType: u.OrganizationType,
		Permissions:      u.EffectivePermissions(),
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), authservice.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		Role:             userdomain.Role(req.Role),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		OrganizationName: req.OrganizationName,
		OrganizationType: req.OrganizationType,
		AcceptTerms:      req.AcceptTerms,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"deviceName"`
}

// Login handles POST /api/v1/auth/login. On success the three client-held
// credentials are set as cookies and the access token is also returned in the
// body for non-browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password, authservice.ClientInfo{
		UserAgent:  r.UserAgent(),
		IPAddress:  clientIP(r),
		DeviceName: req.DeviceName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setAuthCookies(w, res.AccessToken, res.AccessExpiresAt, res.RefreshToken, res.Fingerprint, res.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": res.AccessToken,
		"expiresAt":   res.AccessExpiresAt.UTC().Format(time.RFC3339),
		"user":        toUserResponse(res.User),
	})
}

// Refresh handles POST /api/v1/auth/refresh. Any failure clears all three
// credential cookies; the client must log in again.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookieValue(r, RefreshCookieName)
	fingerprint := cookieValue(r, FingerprintCookieName)

	res, err := h.auth.Refresh(r.Context(), refreshToken, fingerprint)
	if err != nil {
		h.clearAuthCookies(w)
		writeServiceError(w, err)
		return
	}
	h.setAuthCookies(w, res.AccessToken, res.AccessExpiresAt, res.RefreshToken, fingerprint, res.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken": res.AccessToken,
		"expiresAt":   res.AccessExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Status handles GET /api/v1/auth/status. It runs behind RequireAuth and
// echoes the caller's verified identity and effective permissions.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, ac)
}

// Logout handles POST /api/v1/auth/logout. Always clears cookies and returns
// 200, even when the refresh token is missing or fails to decode.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	_ = h.auth.Logout(r.Context(), cookieValue(r, RefreshCookieName))
	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"loggedOut": true})
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

// VerifyEmail handles POST /api/v1/auth/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.auth.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response is
// identical whether or not the address is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "if the address is registered, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword handles POST /api/v1/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "password updated, please log in again"})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, access string, accessExp time.Time, refresh, fingerprint string, refreshExp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    access,
		Path:     "/",
		Expires:  accessExp,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refresh,
		Path:     authCookiePath,
		Expires:  refreshExp,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     FingerprintCookieName,
		Value:    fingerprint,
		Path:     authCookiePath,
		Expires:  refreshExp,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	expire := func(name, path string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
	expire(AccessCookieName, "/")
	expire(RefreshCookieName, authCookiePath)
	expire(FingerprintCookieName, authCookiePath)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func clientIP(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		return v
	}
	return r.RemoteAddr
}
