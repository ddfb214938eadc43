package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type mockUserRepo struct {
	users       map[string]*models.User
	deactivated []string
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if u, ok := m.users[id]; ok {
		u.Active = false
	}
	return nil
}

func TestUserServiceCreateDuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{"u1": {ID: "u1", Username: "budi"}}}
	svc := NewUserService(repo, nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "budi",
		Email:    "budi@kampus.ac.id",
		FullName: "Budi Santoso",
		Role:     models.RoleMahasiswa,
		Password: "rahasia123",
	}, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeactivateClearsSession(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{"u1": {ID: "u1", Username: "budi", Active: true}}}
	cache := &mockSessionCache{entries: map[string][]byte{"session:user:u1": []byte(`{}`)}}
	svc := NewUserService(repo, cache, nil, validator.New(), zap.NewNop())

	err := svc.Deactivate(context.Background(), "u1", "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.deactivated)
	assert.NotContains(t, cache.entries, "session:user:u1")
}

func TestUserServiceUpdateDeactivatingClearsSession(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{"u1": {ID: "u1", Username: "budi", Email: "budi@kampus.ac.id", FullName: "Budi Santoso", Active: true}}}
	cache := &mockSessionCache{entries: map[string][]byte{"session:user:u1": []byte(`{}`)}}
	svc := NewUserService(repo, cache, nil, validator.New(), zap.NewNop())

	inactive := false
	updated, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		Email:    "budi@kampus.ac.id",
		FullName: "Budi Santoso",
		Active:   &inactive,
	}, "admin")
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.NotContains(t, cache.entries, "session:user:u1")
}
