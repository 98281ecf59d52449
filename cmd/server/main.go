package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"volunteens/auth-service/internal/audit"
	auditrepo "volunteens/auth-service/internal/audit/repository"
	authservice "volunteens/auth-service/internal/auth/service"
	"volunteens/auth-service/internal/config"
	"volunteens/auth-service/internal/db"
	"volunteens/auth-service/internal/email"
	"volunteens/auth-service/internal/metrics"
	otprepo "volunteens/auth-service/internal/otp/repository"
	otpservice "volunteens/auth-service/internal/otp/service"
	"volunteens/auth-service/internal/security"
	"volunteens/auth-service/internal/server"
	"volunteens/auth-service/internal/server/handlers"
	sessionrepo "volunteens/auth-service/internal/session/repository"
	sessionservice "volunteens/auth-service/internal/session/service"
	"volunteens/auth-service/internal/telemetry/otel"
	userrepo "volunteens/auth-service/internal/user/repository"
)

const serviceName = "auth-service"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, false)
	if err != nil {
		logger.Error("telemetry", "error", err)
		os.Exit(1)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown", "error", err)
		}
	}()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	tokens := security.NewTokenProvider(
		[]byte(cfg.JWTAccessSecret), []byte(cfg.JWTRefreshSecret),
		cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	var mailer email.Sender = email.Noop{}
	if cfg.EmailServiceURL != "" {
		mailer = email.NewClient(cfg.EmailServiceURL, cfg.EmailServiceSecret)
	}

	users := userrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresRepository(pool)
	otps := otpservice.NewService(otprepo.NewPostgresRepository(pool))
	events := auditrepo.NewPostgresRepository(pool)
	recorder := audit.NewLogger(events, logger)

	auth := authservice.NewAuthService(users, sessions, otps, hasher, tokens, mailer, m, logger, recorder, authservice.Links{
		VerifyBase: cfg.FrontendURL + "/verify-email?token=",
		ResetBase:  cfg.FrontendURL + "/reset-password?token=",
		Dashboard:  cfg.FrontendURL + "/dashboard",
	})
	verify := authservice.NewVerifyService(users, sessions, tokens, m, logger, cfg.VerifyLookupTimeout())
	sessionSvc := sessionservice.NewService(sessions, logger)

	router := server.NewRouter(server.Deps{
		Auth:     handlers.NewAuthHandler(auth, cfg.Env == "production"),
		Sessions: handlers.NewSessionHandler(sessionSvc),
		Internal: handlers.NewInternalHandler(verify),
		Admin:    handlers.NewAdminHandler(events),
		Verifier: verify,
		Registry: registry,
		DB:       pool,
	})

	if err := server.Run(ctx, cfg.HTTPAddr, router, 10*time.Second, logger); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
