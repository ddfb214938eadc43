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

type mockMataKuliahRepo struct {
	byKode      map[string]models.MataKuliah
	upserts     int
	deactivated []string
}

func (m *mockMataKuliahRepo) List(ctx context.Context, filter models.MataKuliahFilter) ([]models.MataKuliah, int, error) {
	return nil, 0, nil
}

func (m *mockMataKuliahRepo) FindByID(ctx context.Context, id string) (*models.MataKuliah, error) {
	for _, mk := range m.byKode {
		if mk.ID == id {
			return &mk, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockMataKuliahRepo) FindByKode(ctx context.Context, kodeMK string) (*models.MataKuliah, error) {
	if mk, ok := m.byKode[kodeMK]; ok {
		return &mk, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMataKuliahRepo) UpsertByKode(ctx context.Context, mk *models.MataKuliah) error {
	if m.byKode == nil {
		m.byKode = make(map[string]models.MataKuliah)
	}
	if existing, ok := m.byKode[mk.KodeMK]; ok {
		mk.ID = existing.ID
	} else if mk.ID == "" {
		mk.ID = "mk-new"
	}
	m.byKode[mk.KodeMK] = *mk
	m.upserts++
	return nil
}

func (m *mockMataKuliahRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

type mockProdiReader struct {
	prodi map[string]*models.Prodi
}

func (m *mockProdiReader) FindByID(ctx context.Context, id string) (*models.Prodi, error) {
	if p, ok := m.prodi[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func upsertMKRequest() UpsertMataKuliahRequest {
	return UpsertMataKuliahRequest{
		KodeMK:        "SI101",
		Nama:          "Basis Data",
		SKS:           3,
		SemesterIdeal: 3,
		ProdiID:       "p1",
	}
}

func TestMataKuliahServiceUpsertIsIdempotent(t *testing.T) {
	repo := &mockMataKuliahRepo{}
	prodi := &mockProdiReader{prodi: map[string]*models.Prodi{"p1": {ID: "p1"}}}
	svc := NewMataKuliahService(repo, prodi, validator.New(), zap.NewNop())

	first, err := svc.Upsert(context.Background(), upsertMKRequest())
	require.NoError(t, err)
	assert.True(t, first.Aktif)

	req := upsertMKRequest()
	req.Nama = "Basis Data Lanjut"
	second, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Basis Data Lanjut", second.Nama)
	assert.Equal(t, 2, repo.upserts)
}

func TestMataKuliahServiceUpsertUnknownProdi(t *testing.T) {
	svc := NewMataKuliahService(&mockMataKuliahRepo{}, &mockProdiReader{}, validator.New(), zap.NewNop())

	_, err := svc.Upsert(context.Background(), upsertMKRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMataKuliahServiceUpsertRejectsBadSKS(t *testing.T) {
	prodi := &mockProdiReader{prodi: map[string]*models.Prodi{"p1": {ID: "p1"}}}
	svc := NewMataKuliahService(&mockMataKuliahRepo{}, prodi, validator.New(), zap.NewNop())

	req := upsertMKRequest()
	req.SKS = 9
	_, err := svc.Upsert(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMataKuliahServiceDeactivate(t *testing.T) {
	repo := &mockMataKuliahRepo{byKode: map[string]models.MataKuliah{
		"SI101": {ID: "mk-1", KodeMK: "SI101", Aktif: true},
	}}
	svc := NewMataKuliahService(repo, &mockProdiReader{}, validator.New(), zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "mk-1"))
	assert.Contains(t, repo.deactivated, "mk-1")

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
