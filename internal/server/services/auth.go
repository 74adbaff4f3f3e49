// Package services contains server-side business logic. This file implements
// AuthService: account registration and login, one-time code issuance and
// consumption, and Google sign-in.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"pennywise/internal/common"
	"pennywise/internal/dbx"
	"pennywise/internal/logging"
	"pennywise/internal/server/auth"
	"pennywise/internal/server/config"
	"pennywise/internal/server/google"
	"pennywise/internal/server/mail"
	"pennywise/internal/server/models"
	"pennywise/internal/server/repositories/repomanager"

	"github.com/google/uuid"
)

const (
	otpCooldown = 120 * time.Second
	otpValidity = 10 * time.Minute
)

// IdentityVerifier is the slice of the Google verifier AuthService depends on.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, clientID, rawToken string) (*google.Identity, error)
}

// AuthResult bundles a freshly issued session token with the public profile
// it belongs to.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// AuthService provides authentication operations for ordinary accounts:
// register/login, profile access, OTP verification and password reset,
// and federated Google login.
type AuthService struct {
	db             *sql.DB
	repos          repomanager.RepositoryManager
	mailer         mail.Mailer
	verifier       IdentityVerifier
	logger         logging.Logger
	jwtSecret      []byte
	tokenValidity  time.Duration
	googleClientID string
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, mailer mail.Mailer,
	verifier IdentityVerifier, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:             db,
		repos:          m,
		mailer:         mailer,
		verifier:       verifier,
		logger:         logger.With("module", "auth_service"),
		jwtSecret:      []byte(cfg.SecretKey),
		tokenValidity:  cfg.TokenValidity(),
		googleClientID: cfg.GoogleClientID,
	}
}

// CanonicalEmail normalizes an email for storage and lookup.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", common.ErrorInternal
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register creates a local account and issues a session token. A verification
// code is auto-sent best effort: neither a storage nor a delivery failure
// fails the registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = CanonicalEmail(email)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		AuthProvider: models.ProviderLocal,
	}

	user, err = s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return nil, common.ErrorInternal
	}

	s.sendFreshCode(ctx, user, models.OTPPurposeVerify)

	return s.authResult(user)
}

// Login verifies the password and issues a token. Unknown email and wrong
// password are indistinguishable to the caller; an unverified account is
// Forbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, CanonicalEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		// Malformed stored hash. Keep the detail in the logs, show the
		// caller a plain authentication failure.
		s.logger.Error(ctx, "stored credential unreadable", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if !user.IsVerified {
		return nil, common.ErrorForbidden
	}

	return s.authResult(user)
}

// Me returns the caller's public profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user not found", common.ErrorNotFound)
		}
		return nil, common.ErrorInternal
	}
	pub := user.Public()
	return &pub, nil
}

// DeleteMe removes the caller's account.
func (s *AuthService) DeleteMe(ctx context.Context, userID string) error {
	affected, err := s.repos.Users(s.db).Delete(ctx, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if affected == 0 {
		return fmt.Errorf("%w: user not found", common.ErrorNotFound)
	}
	return nil
}

// RequestOTP issues a fresh email-verification code, subject to the cooldown.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	return s.requestCode(ctx, email, models.OTPPurposeVerify)
}

// ForgotPassword issues a fresh password-reset code, subject to the cooldown.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.requestCode(ctx, email, models.OTPPurposeReset)
}

func (s *AuthService) requestCode(ctx context.Context, email, purpose string) error {
	email = CanonicalEmail(email)
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: user not found", common.ErrorNotFound)
		}
		return common.ErrorInternal
	}

	createdAt, err := s.repos.OTPCodes(s.db).LastUnconsumedCreatedAt(ctx, user.ID, purpose)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return common.ErrorInternal
	}
	if err == nil {
		elapsed := int64(time.Since(createdAt).Seconds())
		if wait := int64(otpCooldown.Seconds()) - elapsed; wait > 0 {
			return &common.CooldownError{WaitSeconds: wait}
		}
	}

	code, err := generateOTPCode()
	if err != nil {
		return common.ErrorInternal
	}

	otp := &models.OTPCode{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	if err := s.repos.OTPCodes(s.db).Create(ctx, otp); err != nil {
		return common.ErrorInternal
	}

	if err := mail.SendOTP(ctx, s.mailer, user.Email, code); err != nil {
		// Deliberate best effort: the code is valid and observable through
		// logs in development, so the caller still gets success.
		s.logger.Warn(ctx, "otp mail delivery failed", "email", user.Email, "purpose", purpose, "code", code, "error", err.Error())
	} else {
		s.logger.Info(ctx, "otp sent", "email", user.Email, "purpose", purpose)
	}

	return nil
}

// sendFreshCode issues a code without a cooldown guard; used right after
// registration when no prior code can exist.
func (s *AuthService) sendFreshCode(ctx context.Context, user *models.User, purpose string) {
	code, err := generateOTPCode()
	if err != nil {
		s.logger.Warn(ctx, "otp generation failed", "email", user.Email)
		return
	}
	otp := &models.OTPCode{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	if err := s.repos.OTPCodes(s.db).Create(ctx, otp); err != nil {
		s.logger.Warn(ctx, "otp store failed", "email", user.Email, "error", err.Error())
		return
	}
	if err := mail.SendOTP(ctx, s.mailer, user.Email, code); err != nil {
		s.logger.Warn(ctx, "otp mail delivery failed", "email", user.Email, "code", code, "error", err.Error())
	}
}

// VerifyOTP consumes a verify code and marks the account verified, both in
// one transaction.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	return s.consumeCode(ctx, email, code, models.OTPPurposeVerify,
		func(ctx context.Context, tx dbx.DBTX, userID string) error {
			return s.repos.Users(tx).SetVerified(ctx, userID, true)
		})
}

// ResetPassword consumes a reset code and replaces the password credential,
// both in one transaction. A successful reset also marks the account verified.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}
	return s.consumeCode(ctx, email, code, models.OTPPurposeReset,
		func(ctx context.Context, tx dbx.DBTX, userID string) error {
			return s.repos.Users(tx).SetPassword(ctx, userID, hash)
		})
}

func (s *AuthService) consumeCode(ctx context.Context, email, code, purpose string,
	sideEffect func(ctx context.Context, tx dbx.DBTX, userID string) error) error {
	email = CanonicalEmail(email)
	code = strings.TrimSpace(code)

	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: user not found", common.ErrorNotFound)
		}
		return common.ErrorInternal
	}

	otp, err := s.repos.OTPCodes(s.db).FindUsable(ctx, user.ID, code, purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: invalid or expired code", common.ErrorBadRequest)
		}
		return common.ErrorInternal
	}

	// Marking the row consumed and applying the side effect commit or roll
	// back together. The conditional mark keeps a second concurrent caller
	// from consuming the same row.
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		claimed, err := s.repos.OTPCodes(tx).MarkConsumed(ctx, otp.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("%w: invalid or expired code", common.ErrorBadRequest)
		}
		return sideEffect(ctx, tx, user.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorBadRequest) {
			return err
		}
		return common.ErrorInternal
	}
	return nil
}

// GoogleLogin verifies a Google ID token and logs in the matching account,
// creating or linking it as needed.
func (s *AuthService) GoogleLogin(ctx context.Context, rawIDToken string) (*AuthResult, error) {
	clientID := s.googleClientID
	if clientID == "" {
		// Fall back to the persisted setting.
		value, err := s.repos.Settings(s.db).Get(ctx, "google_client_id")
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, fmt.Errorf("%w: google client id not configured", common.ErrorBadRequest)
			}
			return nil, common.ErrorInternal
		}
		clientID = value
	}

	identity, err := s.verifier.VerifyIDToken(ctx, clientID, rawIDToken)
	if err != nil {
		return nil, err
	}

	user, err := s.loginOrLink(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !user.IsVerified {
		return nil, common.ErrorForbidden
	}
	return s.authResult(user)
}

func (s *AuthService) loginOrLink(ctx context.Context, identity *google.Identity) (*models.User, error) {
	repo := s.repos.Users(s.db)
	email := CanonicalEmail(identity.Email)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
		sub := identity.Sub
		created, err := repo.Create(ctx, &models.User{
			ID:           uuid.NewString(),
			Name:         identity.Name,
			Email:        email,
			AuthProvider: models.ProviderGoogle,
			GoogleSub:    &sub,
			IsVerified:   identity.EmailVerified,
		})
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
			}
			return nil, common.ErrorInternal
		}
		return created, nil
	}

	if user.GoogleSub == nil {
		user, err = repo.LinkGoogleSub(ctx, user.ID, identity.Sub)
		if err != nil {
			return nil, common.ErrorInternal
		}
	}

	if !user.IsVerified && identity.EmailVerified {
		if err := repo.SetVerified(ctx, user.ID, true); err != nil {
			return nil, common.ErrorInternal
		}
		user.IsVerified = true
	}

	return user, nil
}

func (s *AuthService) authResult(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}
