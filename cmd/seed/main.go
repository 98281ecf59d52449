// seed inserts the initial super admin account for a fresh deployment.
// Idempotent: skips the insert if the admin email already exists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"volunteens/auth-service/internal/config"
	"volunteens/auth-service/internal/db"
	"volunteens/auth-service/internal/security"
	userdomain "volunteens/auth-service/internal/user/domain"
	userrepo "volunteens/auth-service/internal/user/repository"
)

const (
	adminEmailEnv    = "SEED_ADMIN_EMAIL"
	adminPasswordEnv = "SEED_ADMIN_PASSWORD"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	adminEmail := os.Getenv(adminEmailEnv)
	adminPassword := os.Getenv(adminPasswordEnv)
	if adminEmail == "" || adminPassword == "" {
		return fmt.Errorf("%s and %s must be set", adminEmailEnv, adminPasswordEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := userrepo.NewPostgresRepository(pool)
	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Println("super admin already exists, nothing to do")
		return nil
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(adminPassword))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         userdomain.RoleSuperAdmin,
		Status:       userdomain.StatusActive,
		FirstName:    "Super",
		LastName:     "Admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	fmt.Println("super admin created:", adminEmail)
	return nil
}
