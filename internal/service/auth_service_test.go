package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type mockAuthRepo struct {
	user          *models.User
	findByIDErr   error
	refreshTokens map[string]*models.RefreshToken
	lastLogin     bool
	passwordHash  string
	revokedAll    bool
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.user != nil && m.user.Username == username {
		return m.user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.user != nil && m.user.ID == id {
		return m.user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwordHash = passwordHash
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range m.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

type mockMahasiswaProfileReader struct {
	profile *models.MahasiswaDetail
}

func (m *mockMahasiswaProfileReader) FindByUserID(ctx context.Context, userID string) (*models.MahasiswaDetail, error) {
	if m.profile != nil && m.profile.UserID == userID {
		return m.profile, nil
	}
	return nil, sql.ErrNoRows
}

type mockDosenProfileReader struct {
	profile *models.DosenDetail
}

func (m *mockDosenProfileReader) FindByUserID(ctx context.Context, userID string) (*models.DosenDetail, error) {
	if m.profile != nil && m.profile.UserID == userID {
		return m.profile, nil
	}
	return nil, sql.ErrNoRows
}

type mockSessionCache struct {
	entries map[string][]byte
	getErr  error
}

func (m *mockSessionCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockSessionCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

func (m *mockSessionCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func authTestConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "siakad-test",
	}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Username:     "budi",
		Email:        "budi@kampus.ac.id",
		FullName:     "Budi Santoso",
		Role:         models.RoleMahasiswa,
		PasswordHash: string(hash),
		Active:       true,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	profiles := &mockMahasiswaProfileReader{profile: &models.MahasiswaDetail{Mahasiswa: models.Mahasiswa{ID: "m1", UserID: "u1"}}}
	cache := &mockSessionCache{}
	svc := NewAuthService(repo, profiles, &mockDosenProfileReader{}, cache, nil, validator.New(), zap.NewNop(), authTestConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "budi", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "m1", resp.User.ProfileID)
	assert.True(t, repo.lastLogin)
	assert.Contains(t, cache.entries, "session:user:u1")
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, nil, nil, validator.New(), zap.NewNop(), authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "budi", Password: "salah"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(&mockAuthRepo{user: user}, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, nil, nil, validator.New(), zap.NewNop(), authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "budi", Password: "rahasia123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, nil, nil, validator.New(), zap.NewNop(), authTestConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "budi", Password: "rahasia123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, nil, nil, validator.New(), zap.NewNop(), authTestConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "budi", Password: "rahasia123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleMahasiswa, claims.Role)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceResolveCurrentUser(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	cache := &mockSessionCache{}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, cache, nil, validator.New(), zap.NewNop(), authTestConfig())

	current, err := svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, current.Degraded)
	assert.Equal(t, "budi", current.Username)
	assert.Contains(t, cache.entries, "session:user:u1")
}

func TestAuthServiceResolveCurrentUserDegradedFallback(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t), findByIDErr: errors.New("connection refused")}
	cache := &mockSessionCache{}
	require.NoError(t, cache.Set(context.Background(), "session:user:u1", models.UserInfo{ID: "u1", Username: "budi", Role: models.RoleMahasiswa}, time.Minute))
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, cache, nil, validator.New(), zap.NewNop(), authTestConfig())

	current, err := svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, current.Degraded)
	assert.Equal(t, "budi", current.Username)
}

func TestAuthServiceResolveCurrentUserInactiveClearsCache(t *testing.T) {
	user := activeUser(t)
	repo := &mockAuthRepo{user: user}
	cache := &mockSessionCache{}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, cache, nil, validator.New(), zap.NewNop(), authTestConfig())

	_, err := svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.NoError(t, err)
	assert.Contains(t, cache.entries, "session:user:u1")

	user.Active = false
	_, err = svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
	assert.NotContains(t, cache.entries, "session:user:u1")

	// With the entry gone, an unreachable store must not revive the identity.
	repo.findByIDErr = errors.New("connection refused")
	_, err = svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceResolveCurrentUserMissingIsUnauthorized(t *testing.T) {
	repo := &mockAuthRepo{}
	cache := &mockSessionCache{}
	require.NoError(t, cache.Set(context.Background(), "session:user:ghost", models.UserInfo{ID: "ghost"}, time.Minute))
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, cache, nil, validator.New(), zap.NewNop(), authTestConfig())

	_, err := svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceResolveCurrentUserUnreachableWithoutCache(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t), findByIDErr: errors.New("connection refused")}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, &mockSessionCache{}, nil, validator.New(), zap.NewNop(), authTestConfig())

	_, err := svc.ResolveCurrentUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	cache := &mockSessionCache{entries: map[string][]byte{"session:user:u1": []byte(`{}`)}}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, cache, nil, validator.New(), zap.NewNop(), authTestConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "rahasia123", NewPassword: "rahasiabaru1"})
	require.NoError(t, err)
	assert.True(t, repo.revokedAll)
	assert.NotEmpty(t, repo.passwordHash)
	assert.NotContains(t, cache.entries, "session:user:u1")
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	svc := NewAuthService(repo, &mockMahasiswaProfileReader{}, &mockDosenProfileReader{}, nil, nil, validator.New(), zap.NewNop(), authTestConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "budi", Password: "rahasia123"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
