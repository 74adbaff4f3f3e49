package services

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

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- in-memory repositories ---

type fakeUsersRepo struct {
	users     map[string]*models.User
	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: make(map[string]*models.User)}
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.GoogleSub != nil {
		sub := *u.GoogleSub
		c.GoogleSub = &sub
	}
	return &c
}

func (f *fakeUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}
	c := copyUser(user)
	c.CreatedAt = time.Now()
	f.users[c.ID] = c
	return copyUser(c), nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) LinkGoogleSub(_ context.Context, id string, sub string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.GoogleSub = &sub
	u.AuthProvider = models.ProviderGoogle
	return copyUser(u), nil
}

func (f *fakeUsersRepo) SetVerified(_ context.Context, id string, verified bool) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsVerified = verified
	return nil
}

func (f *fakeUsersRepo) SetPassword(_ context.Context, id string, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.IsVerified = true
	return nil
}

func (f *fakeUsersRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := f.users[id]; !ok {
		return 0, nil
	}
	delete(f.users, id)
	return 1, nil
}

type fakeOTPRepo struct {
	codes     []*models.OTPCode
	createErr error
}

func (f *fakeOTPRepo) Create(_ context.Context, code *models.OTPCode) error {
	if f.createErr != nil {
		return f.createErr
	}
	c := *code
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	f.codes = append(f.codes, &c)
	return nil
}

func (f *fakeOTPRepo) LastUnconsumedCreatedAt(_ context.Context, userID string, purpose string) (time.Time, error) {
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

func (f *fakeOTPRepo) FindUsable(_ context.Context, userID string, code string, purpose string) (*models.OTPCode, error) {
	var newest *models.OTPCode
	for _, c := range f.codes {
		if c.UserID == userID && c.Code == code && c.Purpose == purpose &&
			c.UsedAt == nil && c.ExpiresAt.After(time.Now()) {
			if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
				newest = c
			}
		}
	}
	if newest == nil {
		return nil, common.ErrorNotFound
	}
	c := *newest
	return &c, nil
}

func (f *fakeOTPRepo) MarkConsumed(_ context.Context, id string) (bool, error) {
	for _, c := range f.codes {
		if c.ID == id {
			if c.UsedAt != nil {
				return false, nil
			}
			now := time.Now()
			c.UsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

type fakeAdminsRepo struct {
	admins   map[string]*models.Admin
	countErr error
	getErr   error
}

func newFakeAdminsRepo() *fakeAdminsRepo {
	return &fakeAdminsRepo{admins: make(map[string]*models.Admin)}
}

func (f *fakeAdminsRepo) Count(_ context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.admins)), nil
}

func (f *fakeAdminsRepo) Create(_ context.Context, admin *models.Admin) (*models.Admin, error) {
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

func (f *fakeAdminsRepo) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.admins {
		if a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAdminsRepo) GetByID(_ context.Context, id string) (*models.Admin, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if a, ok := f.admins[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

type fakeSettingsRepo struct {
	values map[string]string
	getErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: make(map[string]string)}
}

func (f *fakeSettingsRepo) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", common.ErrorNotFound
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, key, value, _ string) error {
	f.values[key] = value
	return nil
}

// fakeRepoManager hands out the shared fakes regardless of the DBTX so
// transactional paths exercise the same state.
type fakeRepoManager struct {
	u *fakeUsersRepo
	o *fakeOTPRepo
	a *fakeAdminsRepo
	s *fakeSettingsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		o: &fakeOTPRepo{},
		a: newFakeAdminsRepo(),
		s: newFakeSettingsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *fakeRepoManager) OTPCodes(dbx.DBTX) otprepo.Repository         { return m.o }
func (m *fakeRepoManager) Admins(dbx.DBTX) adminsrepo.Repository        { return m.a }
func (m *fakeRepoManager) Settings(dbx.DBTX) settingsrepo.Repository    { return m.s }

// fakeVerifier returns a canned identity.
type fakeVerifier struct {
	identity *google.Identity
	err      error

	gotClientID string
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, clientID, _ string) (*google.Identity, error) {
	f.gotClientID = clientID
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }
