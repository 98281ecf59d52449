package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"volunteens/auth-service/internal/otp/domain"
)

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns an OTP repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const otpColumns = `id, user_id, token, type, used, used_at, expires_at, created_at`

// Create persists the code. The code must have ID, Token, and ExpiresAt set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.OTP) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otp (`+otpColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		o.ID, o.UserID, o.Token, o.Type, o.Used, o.UsedAt, o.ExpiresAt, o.CreatedAt,
	)
	return err
}

// GetByToken returns the code matching token and type, or nil if not found.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string, typ domain.Type) (*domain.OTP, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+otpColumns+` FROM otp WHERE token = $1 AND type = $2`,
		token, typ,
	)
	var o domain.OTP
	err := row.Scan(&o.ID, &o.UserID, &o.Token, &o.Type, &o.Used, &o.UsedAt, &o.ExpiresAt, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Consume marks the code used. The WHERE used = false guard makes the
// mark-used step first-wins under concurrent consumption.
func (r *PostgresRepository) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE otp SET used = true, used_at = $2 WHERE id = $1 AND used = false`,
		id, at,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// InvalidateUnused marks all unconsumed codes of the type for the user as used.
func (r *PostgresRepository) InvalidateUnused(ctx context.Context, userID string, typ domain.Type) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE otp SET used = true WHERE user_id = $1 AND type = $2 AND used = false`,
		userID, typ,
	)
	return err
}
