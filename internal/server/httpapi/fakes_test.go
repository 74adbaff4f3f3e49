package httpapi

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"pennywise/internal/common"
	"pennywise/internal/dbx"
	"pennywise/internal/logging"
	"pennywise/internal/server/google"
	"pennywise/internal/server/models"
	adminsrepo "pennywise/internal/server/repositories/admins"
	otprepo "pennywise/internal/server/repositories/otpcodes"
	settingsrepo "pennywise/internal/server/repositories/settings"
	usersrepo "pennywise/internal/server/repositories/users"
)

type memUsersRepo struct {
	users map[string]*models.User
}

func (f *memUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}
	c := *user
	c.CreatedAt = time.Now()
	f.users[c.ID] = &c
	out := c
	return &out, nil
}

func (f *memUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *memUsersRepo) LinkGoogleSub(_ context.Context, id string, sub string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.GoogleSub = &sub
	u.AuthProvider = models.ProviderGoogle
	c := *u
	return &c, nil
}

func (f *memUsersRepo) SetVerified(_ context.Context, id string, verified bool) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsVerified = verified
	return nil
}

func (f *memUsersRepo) SetPassword(_ context.Context, id string, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.IsVerified = true
	return nil
}

func (f *memUsersRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := f.users[id]; !ok {
		return 0, nil
	}
	delete(f.users, id)
	return 1, nil
}

type memOTPRepo struct {
	codes []*models.OTPCode
}

func (f *memOTPRepo) Create(_ context.Context, code *models.OTPCode) error {
	c := *code
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	f.codes = append(f.codes, &c)
	return nil
}

func (f *memOTPRepo) LastUnconsumedCreatedAt(_ context.Context, userID string, purpose string) (time.Time, error) {
	var newest *models.OTPCode
	for _, c := range f.codes {
		if c.UserID == userID && c.Purpose == purpose && c.UsedAt == nil {
			if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
				newest = c
			}
		}
	}
	if newest == nil {
		return time.Time{}, common.ErrorNotFound
	}
	return newest.CreatedAt, nil
}

func (f *memOTPRepo) FindUsable(_ context.Context, userID string, code string, purpose string) (*models.OTPCode, error) {
	for _, c := range f.codes {
		if c.UserID == userID && c.Code == code && c.Purpose == purpose &&
			c.UsedAt == nil && c.ExpiresAt.After(time.Now()) {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memOTPRepo) MarkConsumed(_ context.Context, id string) (bool, error) {
	for _, c := range f.codes {
		if c.ID == id && c.UsedAt == nil {
			now := time.Now()
			c.UsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

// latestCode returns the newest stored code for email, for walking the
// verification flow in tests.
func (f *memOTPRepo) latestCode(t *testing.T, users *memUsersRepo, email, purpose string) string {
	t.Helper()
	var userID string
	for _, u := range users.users {
		if u.Email == email {
			userID = u.ID
		}
	}
	var newest *models.OTPCode
	for _, c := range f.codes {
		if c.UserID == userID && c.Purpose == purpose {
			if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
				newest = c
			}
		}
	}
	if newest == nil {
		t.Fatalf("no %s code stored for %s", purpose, email)
	}
	return newest.Code
}

type memAdminsRepo struct {
	admins map[string]*models.Admin
}

func (f *memAdminsRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.admins)), nil
}

func (f *memAdminsRepo) Create(_ context.Context, admin *models.Admin) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.Email == admin.Email {
			return nil, common.ErrorConflict
		}
	}
	c := *admin
	c.CreatedAt = time.Now()
	f.admins[c.ID] = &c
	out := c
	return &out, nil
}

func (f *memAdminsRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *memAdminsRepo) GetByID(_ context.Context, id string) (*models.Admin, error) {
	if a, ok := f.admins[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

type memSettingsRepo struct {
	values map[string]string
}

func (f *memSettingsRepo) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", common.ErrorNotFound
}

func (f *memSettingsRepo) Upsert(_ context.Context, key, value, _ string) error {
	f.values[key] = value
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	o *memOTPRepo
	a *memAdminsRepo
	s *memSettingsRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		u: &memUsersRepo{users: make(map[string]*models.User)},
		o: &memOTPRepo{},
		a: &memAdminsRepo{admins: make(map[string]*models.Admin)},
		s: &memSettingsRepo{values: make(map[string]string)},
	}
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *memRepoManager) OTPCodes(dbx.DBTX) otprepo.Repository         { return m.o }
func (m *memRepoManager) Admins(dbx.DBTX) adminsrepo.Repository        { return m.a }
func (m *memRepoManager) Settings(dbx.DBTX) settingsrepo.Repository    { return m.s }

type stubVerifier struct {
	identity *google.Identity
	err      error
}

func (f *stubVerifier) VerifyIDToken(context.Context, string, string) (*google.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
