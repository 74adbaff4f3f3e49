package otpcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pennywise/internal/common"
	"pennywise/internal/dbx"
	"pennywise/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, code *models.OTPCode) error {
	query := `
		INSERT INTO user_otp_codes (id, user_id, code, purpose, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		code.ID, code.UserID, code.Code, code.Purpose, code.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LastUnconsumedCreatedAt(ctx context.Context, userID string, purpose string) (time.Time, error) {
	query := `
		SELECT created_at FROM user_otp_codes
		WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	var createdAt time.Time
	if err := r.db.QueryRowContext(ctx, query, userID, purpose).Scan(&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return createdAt, nil
}

func (r *PostgresRepository) FindUsable(ctx context.Context, userID string, code string, purpose string) (*models.OTPCode, error) {
	query := `
		SELECT id, user_id, code, purpose, expires_at, used_at, created_at
		FROM user_otp_codes
		WHERE user_id = $1 AND code = $2 AND purpose = $3
		  AND used_at IS NULL AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`
	otp := &models.OTPCode{}
	err := r.db.QueryRowContext(ctx, query, userID, code, purpose).Scan(
		&otp.ID, &otp.UserID, &otp.Code, &otp.Purpose, &otp.ExpiresAt, &otp.UsedAt, &otp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return otp, nil
}

// MarkConsumed is a conditional update: the used_at IS NULL guard means only
// one of two racing consumers can see an affected row count of 1.
func (r *PostgresRepository) MarkConsumed(ctx context.Context, id string) (bool, error) {
	query := `UPDATE user_otp_codes SET used_at = now() WHERE id = $1 AND used_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}
