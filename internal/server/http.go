// Package server assembles the HTTP router and runs the server with graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"volunteens/auth-service/internal/server/handlers"
	"volunteens/auth-service/internal/server/middleware"
)

// Pinger reports storage liveness for the readiness endpoint (e.g. *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the handlers and infrastructure the router wires together.
type Deps struct {
	Auth     *handlers.AuthHandler
	Sessions *handlers.SessionHandler
	Internal *handlers.InternalHandler
	// Admin serves staff endpoints. Nil disables them.
	Admin    *handlers.AdminHandler
	Verifier middleware.Verifier
	// Registry serves /metrics. Nil disables the endpoint.
	Registry *prometheus.Registry
	// DB is pinged by /healthz. Nil skips the ping.
	DB Pinger
}

// NewRouter builds the service's route table.
func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Tracing())

	r.HandleFunc("/healthz", healthz(deps.DB)).Methods(http.MethodGet)
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	auth := r.PathPrefix("/api/v1/auth").Subrouter()
	auth.HandleFunc("/register", deps.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", deps.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", deps.Auth.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/logout", deps.Auth.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/verify-email", deps.Auth.VerifyEmail).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", deps.Auth.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", deps.Auth.ResetPassword).Methods(http.MethodPost)
	auth.Handle("/status",
		middleware.RequireAuth(deps.Verifier)(http.HandlerFunc(deps.Auth.Status)),
	).Methods(http.MethodGet)

	sessions := r.PathPrefix("/api/v1/sessions").Subrouter()
	sessions.Use(middleware.RequireAuth(deps.Verifier))
	sessions.HandleFunc("", deps.Sessions.List).Methods(http.MethodGet)
	sessions.HandleFunc("", deps.Sessions.RevokeOthers).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}", deps.Sessions.Revoke).Methods(http.MethodDelete)

	internal := r.PathPrefix("/api/v1/internal").Subrouter()
	internal.HandleFunc("/verify", deps.Internal.Verify).Methods(http.MethodPost)

	if deps.Admin != nil {
		admin := r.PathPrefix("/api/v1/admin").Subrouter()
		admin.Use(middleware.RequireAuth(deps.Verifier))
		admin.Handle("/security-events",
			middleware.RequirePermission("system:logs")(http.HandlerFunc(deps.Admin.ListSecurityEvents)),
		).Methods(http.MethodGet)
	}

	return r
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Run serves the router on addr until ctx is cancelled, then shuts down
// gracefully with the given timeout.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
