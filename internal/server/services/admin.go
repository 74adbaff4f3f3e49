package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pennywise/internal/common"
	"pennywise/internal/server/auth"
	"pennywise/internal/server/config"
	"pennywise/internal/server/models"
	"pennywise/internal/server/repositories/repomanager"

	"github.com/google/uuid"
)

// AdminAuthResult bundles a session token with the administrator profile.
type AdminAuthResult struct {
	Token string             `json:"token"`
	Admin models.PublicAdmin `json:"admin"`
}

// AdminAuthService handles administrator registration (with the bootstrap
// allowance), login and profile access. Administrators have no OTP flow and
// no verified-flag gate.
type AdminAuthService struct {
	db            *sql.DB
	repos         repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewAdminAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AdminAuthService {
	return &AdminAuthService{
		db:            db,
		repos:         m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity(),
	}
}

// Register creates an administrator. When the administrator set is empty the
// call is allowed without authentication (bootstrap); afterwards only an
// authenticated administrator may add more.
//
// The count-then-insert sequence is not serialized: two concurrent first
// registrations with different emails can both bootstrap. Accepted race,
// see DESIGN.md.
func (s *AdminAuthService) Register(ctx context.Context, name, email, password string, callerIsAdmin bool) (*AdminAuthResult, error) {
	repo := s.repos.Admins(s.db)

	count, err := repo.Count(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if count > 0 && !callerIsAdmin {
		return nil, common.ErrorForbidden
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	admin, err := repo.Create(ctx, &models.Admin{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        CanonicalEmail(email),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: admin email already exists", common.ErrorConflict)
		}
		return nil, common.ErrorInternal
	}

	return s.authResult(admin)
}

// Login verifies administrator credentials and issues a token.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*AdminAuthResult, error) {
	admin, err := s.repos.Admins(s.db).GetByEmail(ctx, CanonicalEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(password, admin.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrorUnauthorized
	}

	return s.authResult(admin)
}

// Me returns the administrator profile for adminID.
func (s *AdminAuthService) Me(ctx context.Context, adminID string) (*models.PublicAdmin, error) {
	admin, err := s.repos.Admins(s.db).GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: admin not found", common.ErrorNotFound)
		}
		return nil, common.ErrorInternal
	}
	pub := admin.Public()
	return &pub, nil
}

// IsAdmin reports whether id belongs to the administrator set. A store
// failure is returned as-is so the resolver can fail closed.
func (s *AdminAuthService) IsAdmin(ctx context.Context, id string) (bool, error) {
	_, err := s.repos.Admins(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AdminAuthService) authResult(admin *models.Admin) (*AdminAuthResult, error) {
	token, err := auth.GenerateToken(admin.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AdminAuthResult{Token: token, Admin: admin.Public()}, nil
}
