package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"volunteens/auth-service/internal/session/domain"
)

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a session repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const sessionColumns = `id, user_id, refresh_token_hash, fingerprint_hash, user_agent, ip_address, device_name, last_used_at, expires_at, revoked, created_at`

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		s.ID, s.UserID, s.RefreshTokenHash, s.FingerprintHash,
		s.UserAgent, s.IPAddress, s.DeviceName,
		s.LastUsedAt, s.ExpiresAt, s.Revoked, s.CreatedAt,
	)
	return err
}

// GetByID returns the session for id, or nil if not found. It returns an
// error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// GetActive returns the session for id only when it is not revoked.
func (r *PostgresRepository) GetActive(ctx context.Context, id string) (*domain.Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND revoked = false`, id)
	return scanSession(row)
}

// UpdateRefreshHash sets the refresh token hash for the session. Used once at
// login, after the refresh token has been issued.
func (r *PostgresRepository) UpdateRefreshHash(ctx context.Context, id, refreshTokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET refresh_token_hash = $2 WHERE id = $1`,
		id, refreshTokenHash,
	)
	return err
}

// Rotate performs a compare-and-swap on the refresh token hash. The WHERE
// clause pins both the revocation flag and the previous hash, so exactly one
// concurrent rotation can match the row; every other participant sees
// rotated=false.
func (r *PostgresRepository) Rotate(ctx context.Context, id, oldHash, newHash string, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET refresh_token_hash = $3, last_used_at = $4
		WHERE id = $1 AND revoked = false AND refresh_token_hash = $2
	`, id, oldHash, newHash, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Revoke marks the session revoked. Revoking an already revoked or missing
// session is a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET revoked = true WHERE id = $1`, id)
	return err
}

// RevokeAllByUser revokes every session of the user.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET revoked = true WHERE user_id = $1 AND revoked = false`, userID)
	return err
}

// RevokeAllByUserExcept revokes every session of the user except keepID.
func (r *PostgresRepository) RevokeAllByUserExcept(ctx context.Context, userID, keepID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET revoked = true WHERE user_id = $1 AND id <> $2 AND revoked = false`,
		userID, keepID,
	)
	return err
}

// ListActiveByUser returns the user's non-revoked sessions ordered by last use.
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = $1 AND revoked = false
		ORDER BY last_used_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.RefreshTokenHash, &s.FingerprintHash,
		&s.UserAgent, &s.IPAddress, &s.DeviceName,
		&s.LastUsedAt, &s.ExpiresAt, &s.Revoked, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
