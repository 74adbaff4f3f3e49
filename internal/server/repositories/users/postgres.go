package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pennywise/internal/common"
	"pennywise/internal/dbx"
	"pennywise/internal/server/models"

	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, name, email, password_hash, auth_provider, google_sub, is_verified, created_at"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.AuthProvider, &user.GoogleSub, &user.IsVerified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, auth_provider, google_sub, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.AuthProvider, user.GoogleSub, user.IsVerified)
	return scanUser(row)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) LinkGoogleSub(ctx context.Context, id string, sub string) (*models.User, error) {
	query := `
		UPDATE users SET google_sub = $1, auth_provider = $2
		WHERE id = $3
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, sub, models.ProviderGoogle, id)
	return scanUser(row)
}

func (r *PostgresRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE users SET is_verified = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, verified, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetPassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, is_verified = true WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
