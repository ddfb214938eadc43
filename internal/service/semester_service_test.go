package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type mockSemesterRepo struct {
	semesters map[string]models.Semester
	existing  bool
	activated []string
	statuses  map[string]models.SemesterStatus
}

func (m *mockSemesterRepo) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error) {
	return nil, 0, nil
}

func (m *mockSemesterRepo) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) FindActive(ctx context.Context) (*models.Semester, error) {
	for _, s := range m.semesters {
		if s.IsActive {
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) ExistsByTahunPeriode(ctx context.Context, tahunAjaran string, periode models.SemesterPeriode, excludeID string) (bool, error) {
	return m.existing, nil
}

func (m *mockSemesterRepo) Create(ctx context.Context, semester *models.Semester) error {
	if m.semesters == nil {
		m.semesters = make(map[string]models.Semester)
	}
	m.semesters[semester.ID] = *semester
	return nil
}

func (m *mockSemesterRepo) Update(ctx context.Context, semester *models.Semester) error {
	m.semesters[semester.ID] = *semester
	return nil
}

func (m *mockSemesterRepo) SetActive(ctx context.Context, id string) error {
	for k, s := range m.semesters {
		s.IsActive = k == id
		m.semesters[k] = s
	}
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockSemesterRepo) SetStatus(ctx context.Context, id string, status models.SemesterStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.SemesterStatus)
	}
	m.statuses[id] = status
	if s, ok := m.semesters[id]; ok {
		s.Status = status
		m.semesters[id] = s
	}
	return nil
}

func semesterWindow() (time.Time, time.Time) {
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 14)
}

func TestSemesterServiceCreate(t *testing.T) {
	repo := &mockSemesterRepo{}
	audit := &mockAuditRecorder{}
	svc := NewSemesterService(repo, audit, validator.New(), zap.NewNop())
	mulai, selesai := semesterWindow()

	semester, err := svc.Create(context.Background(), SemesterRequest{
		TahunAjaran: "2025/2026",
		Periode:     models.PeriodeGanjil,
		KRSMulai:    mulai,
		KRSSelesai:  selesai,
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.SemesterDraft, semester.Status)
	assert.False(t, semester.IsActive)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCreate, audit.logs[0].Action)
}

func TestSemesterServiceCreateRejectsInvertedWindow(t *testing.T) {
	svc := NewSemesterService(&mockSemesterRepo{}, nil, validator.New(), zap.NewNop())
	mulai, selesai := semesterWindow()

	_, err := svc.Create(context.Background(), SemesterRequest{
		TahunAjaran: "2025/2026",
		Periode:     models.PeriodeGanjil,
		KRSMulai:    selesai,
		KRSSelesai:  mulai,
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSemesterServiceCreateDuplicatePeriode(t *testing.T) {
	repo := &mockSemesterRepo{existing: true}
	svc := NewSemesterService(repo, nil, validator.New(), zap.NewNop())
	mulai, selesai := semesterWindow()

	_, err := svc.Create(context.Background(), SemesterRequest{
		TahunAjaran: "2025/2026",
		Periode:     models.PeriodeGanjil,
		KRSMulai:    mulai,
		KRSSelesai:  selesai,
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSemesterServiceActivateSwapsActive(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[string]models.Semester{
		"old": {ID: "old", Status: models.SemesterBerjalan, IsActive: true},
		"new": {ID: "new", Status: models.SemesterDraft},
	}}
	svc := NewSemesterService(repo, nil, validator.New(), zap.NewNop())

	semester, err := svc.Activate(context.Background(), "new", "admin-1")
	require.NoError(t, err)
	assert.True(t, semester.IsActive)
	assert.False(t, repo.semesters["old"].IsActive)
	assert.True(t, repo.semesters["new"].IsActive)
}

func TestSemesterServiceActivateFinishedSemester(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[string]models.Semester{
		"done": {ID: "done", Status: models.SemesterSelesai},
	}}
	svc := NewSemesterService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Activate(context.Background(), "done", "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestSemesterServiceTransitionForwardOnly(t *testing.T) {
	repo := &mockSemesterRepo{semesters: map[string]models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterDraft},
	}}
	svc := NewSemesterService(repo, nil, validator.New(), zap.NewNop())

	semester, err := svc.Transition(context.Background(), "sem-1", models.SemesterPendaftaran, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.SemesterPendaftaran, semester.Status)

	_, err = svc.Transition(context.Background(), "sem-1", models.SemesterSelesai, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Transition(context.Background(), "sem-1", models.SemesterDraft, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
