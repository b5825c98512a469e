package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/swediversity/swediversity-api/internal/models"
)

// ResetTokenRepository provides database access for password-reset tokens.
// The table holds at most one row per user.
type ResetTokenRepository struct {
	db *sqlx.DB
}

// NewResetTokenRepository creates a new instance of ResetTokenRepository.
func NewResetTokenRepository(db *sqlx.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Upsert stores the token for a user, replacing any previously issued one.
func (r *ResetTokenRepository) Upsert(ctx context.Context, userID, token string) error {
	const query = `INSERT INTO reset_tokens (user_id, token, created_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at`
	if _, err := r.db.ExecContext(ctx, query, userID, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert reset token: %w", err)
	}
	return nil
}

// FindByUser returns the active token for a user.
func (r *ResetTokenRepository) FindByUser(ctx context.Context, userID string) (*models.ResetToken, error) {
	const query = `SELECT user_id, token, created_at FROM reset_tokens WHERE user_id = $1 LIMIT 1`
	var token models.ResetToken
	if err := r.db.GetContext(ctx, &token, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	return &token, nil
}

// Delete removes a user's token. Called after a successful redeem so the
// token cannot be replayed.
func (r *ResetTokenRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM reset_tokens WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}
