package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/wishlist-backend/pkg/auth"
	"github.com/angelmondragon/wishlist-backend/pkg/auth/session"
	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "wishlist-test",
		ExpirationMinutes: 15,
	}
}

type fakeUserRepo struct {
	users      map[string]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}, lastLogins: map[uuid.UUID]time.Time{}}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

type storedSession struct {
	userID  uuid.UUID
	refresh string
}

type fakeSessions struct {
	sessions map[string]storedSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]storedSession{}}
}

func (f *fakeSessions) Generate(_ context.Context, userID uuid.UUID, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.sessions[accessID] = storedSession{userID: userID, refresh: token}
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (*session.Rotation, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored.refresh != provided {
		return nil, session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	accessID := session.NewAccessID()
	token, _ := f.Generate(ctx, stored.userID, accessID)
	return &session.Rotation{UserID: stored.userID, AccessID: accessID, RefreshToken: token}, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.sessions, accessID)
	return nil
}

func newShopper(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Shopper",
		IsActive:     active,
	}
}

func newTestService(t *testing.T, users *fakeUserRepo, sessions *fakeSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       users,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesTokensAndSession(t *testing.T) {
	user := newShopper(t, "ada@example.com", "correct-horse", true)
	users := newFakeUserRepo(user)
	sessions := newFakeSessions()
	svc := newTestService(t, users, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  ADA@example.com ", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "refresh-"+claims.ID, resp.RefreshToken)
	assert.Contains(t, sessions.sessions, claims.ID)
	assert.Contains(t, users.lastLogins, user.ID)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	active := newShopper(t, "ada@example.com", "correct-horse", true)
	inactive := newShopper(t, "gone@example.com", "correct-horse", false)
	svc := newTestService(t, newFakeUserRepo(active, inactive), newFakeSessions())

	cases := map[string]LoginRequest{
		"unknown email":  {Email: "nobody@example.com", Password: "correct-horse"},
		"wrong password": {Email: "ada@example.com", Password: "battery-staple"},
		"inactive user":  {Email: "gone@example.com", Password: "correct-horse"},
		"blank email":    {Email: "   ", Password: "correct-horse"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
		})
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := newShopper(t, "ada@example.com", "correct-horse", true)
	sessions := newFakeSessions()
	svc := newTestService(t, newFakeUserRepo(user), sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "correct-horse"})
	require.NoError(t, err)
	oldClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	newClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), refreshed.AccessToken)
	require.NoError(t, err)

	assert.NotEqual(t, oldClaims.ID, newClaims.ID)
	assert.NotContains(t, sessions.sessions, oldClaims.ID)
	assert.Contains(t, sessions.sessions, newClaims.ID)

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo(), newFakeSessions())
	_, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: "not-a-jwt", RefreshToken: "x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	user := newShopper(t, "ada@example.com", "correct-horse", true)
	sessions := newFakeSessions()
	svc := newTestService(t, newFakeUserRepo(user), sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "correct-horse"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	assert.Empty(t, sessions.sessions)

	err = svc.Logout(ctx, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{SessionManager: newFakeSessions()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: newFakeUserRepo()})
	assert.Error(t, err)
}
