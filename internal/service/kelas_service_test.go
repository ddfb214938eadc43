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

type mockKelasRepo struct {
	classes   map[string]models.KelasMKDetail
	overlap   bool
	enrolled  map[string]int
	created   *models.KelasMK
	deleted   []string
	rooms     map[string]models.Ruangan
}

func (m *mockKelasRepo) List(ctx context.Context, filter models.KelasMKFilter) ([]models.KelasMKDetail, int, error) {
	return nil, 0, nil
}

func (m *mockKelasRepo) FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error) {
	if k, ok := m.classes[id]; ok {
		return &k, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockKelasRepo) HasRoomOverlap(ctx context.Context, semesterID, ruanganID string, hari int, jamMulai, jamSelesai, excludeID string) (bool, error) {
	return m.overlap, nil
}

func (m *mockKelasRepo) Create(ctx context.Context, kelas *models.KelasMK) error {
	if m.classes == nil {
		m.classes = make(map[string]models.KelasMKDetail)
	}
	m.classes[kelas.ID] = models.KelasMKDetail{KelasMK: *kelas}
	m.created = kelas
	return nil
}

func (m *mockKelasRepo) Update(ctx context.Context, kelas *models.KelasMK) error {
	m.classes[kelas.ID] = models.KelasMKDetail{KelasMK: *kelas}
	return nil
}

func (m *mockKelasRepo) Delete(ctx context.Context, id string) error {
	delete(m.classes, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockKelasRepo) CountEnrollments(ctx context.Context, id string) (int, error) {
	return m.enrolled[id], nil
}

func (m *mockKelasRepo) ListRuangan(ctx context.Context) ([]models.Ruangan, error) {
	var rooms []models.Ruangan
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms, nil
}

func (m *mockKelasRepo) FindRuanganByID(ctx context.Context, id string) (*models.Ruangan, error) {
	if r, ok := m.rooms[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockKelasRepo) CreateRuangan(ctx context.Context, room *models.Ruangan) error {
	if m.rooms == nil {
		m.rooms = make(map[string]models.Ruangan)
	}
	m.rooms[room.ID] = *room
	return nil
}

type mockMataKuliahReader struct {
	courses map[string]*models.MataKuliah
}

func (m *mockMataKuliahReader) FindByID(ctx context.Context, id string) (*models.MataKuliah, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockDosenReader struct {
	lecturers map[string]*models.DosenDetail
}

func (m *mockDosenReader) FindByID(ctx context.Context, id string) (*models.DosenDetail, error) {
	if d, ok := m.lecturers[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func validKelasRequest() KelasRequest {
	return KelasRequest{
		MataKuliahID: "mk-1",
		SemesterID:   "sem-1",
		DosenID:      "d1",
		RuanganID:    "r1",
		NamaKelas:    "A",
		Hari:         1,
		JamMulai:     "08:00",
		JamSelesai:   "10:00",
		Kapasitas:    30,
	}
}

func newKelasFixture() (*mockKelasRepo, *KelasService) {
	repo := &mockKelasRepo{
		rooms:    map[string]models.Ruangan{"r1": {ID: "r1", Kode: "GD1-101"}},
		enrolled: map[string]int{},
	}
	courses := &mockMataKuliahReader{courses: map[string]*models.MataKuliah{"mk-1": {ID: "mk-1", SKS: 3}}}
	lecturers := &mockDosenReader{lecturers: map[string]*models.DosenDetail{"d1": {Dosen: models.Dosen{ID: "d1"}}}}
	semesters := &mockSemesterReader{semesters: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterPendaftaran},
	}}
	svc := NewKelasService(repo, courses, lecturers, semesters, validator.New(), zap.NewNop())
	return repo, svc
}

func TestKelasServiceCreate(t *testing.T) {
	repo, svc := newKelasFixture()

	kelas, err := svc.Create(context.Background(), validKelasRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, kelas.ID)
	assert.Equal(t, "A", repo.created.NamaKelas)
}

func TestKelasServiceCreateRoomOverlap(t *testing.T) {
	repo, svc := newKelasFixture()
	repo.overlap = true

	_, err := svc.Create(context.Background(), validKelasRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestKelasServiceCreateInvertedSlot(t *testing.T) {
	_, svc := newKelasFixture()
	req := validKelasRequest()
	req.JamMulai = "10:00"
	req.JamSelesai = "08:00"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestKelasServiceCreateUnknownDosen(t *testing.T) {
	_, svc := newKelasFixture()
	req := validKelasRequest()
	req.DosenID = "missing"

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestKelasServiceUpdateCapacityBelowEnrollment(t *testing.T) {
	repo, svc := newKelasFixture()
	repo.classes = map[string]models.KelasMKDetail{
		"k1": {KelasMK: models.KelasMK{ID: "k1", SemesterID: "sem-1", Kapasitas: 30}},
	}
	repo.enrolled["k1"] = 25
	req := validKelasRequest()
	req.Kapasitas = 20

	_, err := svc.Update(context.Background(), "k1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestKelasServiceDeleteWithEnrollments(t *testing.T) {
	repo, svc := newKelasFixture()
	repo.classes = map[string]models.KelasMKDetail{
		"k1": {KelasMK: models.KelasMK{ID: "k1", SemesterID: "sem-1"}},
	}
	repo.enrolled["k1"] = 3

	err := svc.Delete(context.Background(), "k1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	repo.enrolled["k1"] = 0
	require.NoError(t, svc.Delete(context.Background(), "k1"))
	assert.Contains(t, repo.deleted, "k1")
}
