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

type mockNilaiRepo struct {
	enrollments map[string]string
	saved       *models.Nilai
	khsRows     []models.KHSRow
}

func (m *mockNilaiRepo) Upsert(ctx context.Context, nilai *models.Nilai) error {
	if nilai.ID == "" {
		nilai.ID = "nilai-new"
	}
	m.saved = nilai
	return nil
}

func (m *mockNilaiRepo) FindKRSDetail(ctx context.Context, kelasID, mahasiswaID string) (string, error) {
	if id, ok := m.enrollments[kelasID+mahasiswaID]; ok {
		return id, nil
	}
	return "", sql.ErrNoRows
}

func (m *mockNilaiRepo) ListByKelas(ctx context.Context, kelasID string) ([]models.NilaiRow, error) {
	return nil, nil
}

func (m *mockNilaiRepo) ListKHSRows(ctx context.Context, mahasiswaID, semesterID string) ([]models.KHSRow, error) {
	return m.khsRows, nil
}

type mockKelasLockRepo struct {
	classes map[string]*models.KelasMKDetail
	locked  map[string]bool
}

func (m *mockKelasLockRepo) FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error) {
	if k, ok := m.classes[id]; ok {
		return k, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockKelasLockRepo) SetNilaiLocked(ctx context.Context, id string, locked bool) error {
	if m.locked == nil {
		m.locked = make(map[string]bool)
	}
	m.locked[id] = locked
	return nil
}

func newNilaiFixture() (*mockNilaiRepo, *mockKelasLockRepo, *mockMahasiswaReader, *mockSemesterReader) {
	repo := &mockNilaiRepo{enrollments: map[string]string{"k1m1": "detail-1"}}
	kelas := &mockKelasLockRepo{classes: map[string]*models.KelasMKDetail{
		"k1": {KelasMK: models.KelasMK{ID: "k1", DosenID: "d1", SemesterID: "sem-1"}},
	}}
	students := &mockMahasiswaReader{students: map[string]*models.MahasiswaDetail{
		"m1": {Mahasiswa: models.Mahasiswa{ID: "m1", NIM: "2023001"}, FullName: "Budi Santoso", ProdiNama: "Sistem Informasi"},
	}}
	semesters := &mockSemesterReader{semesters: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", TahunAjaran: "2025/2026", Periode: models.PeriodeGanjil, Status: models.SemesterBerjalan},
	}}
	return repo, kelas, students, semesters
}

func dosenActor(profileID string) *models.CurrentUser {
	return &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-" + profileID, Role: models.RoleDosen, ProfileID: profileID}}
}

func TestNilaiServiceUpsert(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	audit := &mockAuditRecorder{}
	svc := NewNilaiService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop())

	nilai, err := svc.Upsert(context.Background(), "k1", UpsertNilaiRequest{MahasiswaID: "m1", NilaiAngka: 82}, dosenActor("d1"))
	require.NoError(t, err)
	assert.Equal(t, "detail-1", nilai.KRSDetailID)
	assert.Equal(t, "AB", nilai.NilaiHuruf)
	assert.Equal(t, 3.5, nilai.Bobot)
	require.Len(t, audit.logs, 1)
}

func TestNilaiServiceUpsertLocked(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	kelas.classes["k1"].NilaiLocked = true
	svc := NewNilaiService(repo, kelas, students, semesters, nil, validator.New(), zap.NewNop())

	_, err := svc.Upsert(context.Background(), "k1", UpsertNilaiRequest{MahasiswaID: "m1", NilaiAngka: 82}, dosenActor("d1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErrors.FromError(err).Code)
}

func TestNilaiServiceUpsertNotEnrolled(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	svc := NewNilaiService(repo, kelas, students, semesters, nil, validator.New(), zap.NewNop())

	_, err := svc.Upsert(context.Background(), "k1", UpsertNilaiRequest{MahasiswaID: "m9", NilaiAngka: 82}, dosenActor("d1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNilaiServiceUpsertWrongDosen(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	svc := NewNilaiService(repo, kelas, students, semesters, nil, validator.New(), zap.NewNop())

	_, err := svc.Upsert(context.Background(), "k1", UpsertNilaiRequest{MahasiswaID: "m1", NilaiAngka: 82}, dosenActor("d2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestNilaiServiceLockKelasIsOneWay(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	svc := NewNilaiService(repo, kelas, students, semesters, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.LockKelas(context.Background(), "k1", dosenActor("d1")))
	assert.True(t, kelas.locked["k1"])

	kelas.classes["k1"].NilaiLocked = true
	err := svc.LockKelas(context.Background(), "k1", dosenActor("d1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErrors.FromError(err).Code)
}

func TestNilaiServiceKHS(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	repo.khsRows = []models.KHSRow{
		{KodeMK: "SI101", SKS: 3, NilaiAngka: 88, NilaiHuruf: "A", Bobot: 4.0},
		{KodeMK: "SI102", SKS: 2, NilaiAngka: 76, NilaiHuruf: "B", Bobot: 3.0},
	}
	svc := NewNilaiService(repo, kelas, students, semesters, nil, validator.New(), zap.NewNop())

	khs, err := svc.KHS(context.Background(), "m1", "sem-1")
	require.NoError(t, err)
	assert.Equal(t, 5, khs.TotalSKS)
	assert.InDelta(t, 3.6, khs.IPS, 0.001)
	assert.Equal(t, "2025/2026", khs.TahunAjaran)
	assert.Len(t, khs.Rows, 2)
}

func TestNilaiServiceKHSEmptySemester(t *testing.T) {
	repo, kelas, students, semesters := newNilaiFixture()
	svc := NewNilaiService(repo, kelas, students, semesters, nil, validator.New(), zap.NewNop())

	khs, err := svc.KHS(context.Background(), "m1", "sem-1")
	require.NoError(t, err)
	assert.Zero(t, khs.TotalSKS)
	assert.Zero(t, khs.IPS)
}

func TestKonversiNilaiBands(t *testing.T) {
	cases := []struct {
		angka float64
		huruf string
		bobot float64
	}{
		{92, "A", 4.0},
		{85, "A", 4.0},
		{80, "AB", 3.5},
		{75, "B", 3.0},
		{70, "BC", 2.5},
		{60, "C", 2.0},
		{50, "D", 1.0},
		{49.9, "E", 0.0},
	}
	for _, tc := range cases {
		huruf, bobot, err := models.KonversiNilai(tc.angka)
		require.NoError(t, err)
		assert.Equal(t, tc.huruf, huruf, "angka %.1f", tc.angka)
		assert.Equal(t, tc.bobot, bobot, "angka %.1f", tc.angka)
	}

	_, _, err := models.KonversiNilai(101)
	assert.Error(t, err)
	_, _, err = models.KonversiNilai(-1)
	assert.Error(t, err)
}
