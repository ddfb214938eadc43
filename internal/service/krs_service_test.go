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

type mockKRSRepo struct {
	sheets     map[string]models.KRSView
	existing   map[string]bool
	seats      map[string]int
	details    map[string]bool
	created    *models.KRS
	createdIDs []string
	decided    map[string]models.KRSStatus
	decideOK   bool
}

func (m *mockKRSRepo) List(ctx context.Context, filter models.KRSFilter) ([]models.KRSView, int, error) {
	return nil, 0, nil
}

func (m *mockKRSRepo) FindByID(ctx context.Context, id string) (*models.KRSView, error) {
	if v, ok := m.sheets[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockKRSRepo) FindByMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (*models.KRSView, error) {
	for _, v := range m.sheets {
		if v.MahasiswaID == mahasiswaID && v.SemesterID == semesterID {
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockKRSRepo) ExistsForMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (bool, error) {
	return m.existing[mahasiswaID+semesterID], nil
}

func (m *mockKRSRepo) CreateWithDetails(ctx context.Context, krs *models.KRS, kelasIDs []string) error {
	if krs.ID == "" {
		krs.ID = "krs-new"
	}
	if m.sheets == nil {
		m.sheets = make(map[string]models.KRSView)
	}
	m.sheets[krs.ID] = models.KRSView{KRS: *krs}
	m.created = krs
	m.createdIDs = kelasIDs
	return nil
}

func (m *mockKRSRepo) AddDetail(ctx context.Context, krsID, kelasID string) error {
	if m.details == nil {
		m.details = make(map[string]bool)
	}
	m.details[krsID+kelasID] = true
	return nil
}

func (m *mockKRSRepo) RemoveDetail(ctx context.Context, krsID, kelasID string) error {
	delete(m.details, krsID+kelasID)
	return nil
}

func (m *mockKRSRepo) HasDetail(ctx context.Context, krsID, kelasID string) (bool, error) {
	return m.details[krsID+kelasID], nil
}

func (m *mockKRSRepo) CountSeats(ctx context.Context, kelasID string) (int, error) {
	return m.seats[kelasID], nil
}

func (m *mockKRSRepo) Decide(ctx context.Context, id string, status models.KRSStatus, decidedBy string, catatan string) (bool, error) {
	if !m.decideOK {
		return false, nil
	}
	if m.decided == nil {
		m.decided = make(map[string]models.KRSStatus)
	}
	m.decided[id] = status
	if v, ok := m.sheets[id]; ok {
		v.Status = status
		m.sheets[id] = v
	}
	return true, nil
}

type mockKelasReader struct {
	classes map[string]*models.KelasMKDetail
}

func (m *mockKelasReader) FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error) {
	if k, ok := m.classes[id]; ok {
		return k, nil
	}
	return nil, sql.ErrNoRows
}

type mockMahasiswaReader struct {
	students map[string]*models.MahasiswaDetail
}

func (m *mockMahasiswaReader) FindByID(ctx context.Context, id string) (*models.MahasiswaDetail, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockSemesterReader struct {
	semesters map[string]*models.Semester
}

func (m *mockSemesterReader) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockAuditRecorder struct {
	logs []models.AuditLog
}

func (m *mockAuditRecorder) Record(log models.AuditLog) {
	m.logs = append(m.logs, log)
}

func kelasInSemester(id, semesterID string, sks, kapasitas int) *models.KelasMKDetail {
	return &models.KelasMKDetail{
		KelasMK: models.KelasMK{ID: id, SemesterID: semesterID, Kapasitas: kapasitas},
		SKS:     sks,
	}
}

func newKRSFixture() (*mockKRSRepo, *mockKelasReader, *mockMahasiswaReader, *mockSemesterReader, *mockAuditRecorder) {
	repo := &mockKRSRepo{seats: map[string]int{}, decideOK: true}
	kelas := &mockKelasReader{classes: map[string]*models.KelasMKDetail{
		"k1": kelasInSemester("k1", "sem-1", 3, 30),
		"k2": kelasInSemester("k2", "sem-1", 4, 30),
	}}
	students := &mockMahasiswaReader{students: map[string]*models.MahasiswaDetail{
		"m1": {Mahasiswa: models.Mahasiswa{ID: "m1", NIM: "2023001"}},
	}}
	semesters := &mockSemesterReader{semesters: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterPendaftaran},
	}}
	return repo, kelas, students, semesters, &mockAuditRecorder{}
}

func TestKRSServiceSubmit(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})

	sheet, err := svc.Submit(context.Background(), "m1", SubmitKRSRequest{SemesterID: "sem-1", KelasIDs: []string{"k1", "k2"}})
	require.NoError(t, err)
	assert.Equal(t, models.KRSPending, sheet.Status)
	assert.Equal(t, []string{"k1", "k2"}, repo.createdIDs)
}

func TestKRSServiceSubmitOutsidePendaftaran(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	semesters.semesters["sem-1"].Status = models.SemesterBerjalan
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})

	_, err := svc.Submit(context.Background(), "m1", SubmitKRSRequest{SemesterID: "sem-1", KelasIDs: []string{"k1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceSubmitDuplicateSheet(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	repo.existing = map[string]bool{"m1sem-1": true}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})

	_, err := svc.Submit(context.Background(), "m1", SubmitKRSRequest{SemesterID: "sem-1", KelasIDs: []string{"k1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceSubmitFullClass(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	kelas.classes["k1"].Kapasitas = 1
	repo.seats["k1"] = 1
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})

	_, err := svc.Submit(context.Background(), "m1", SubmitKRSRequest{SemesterID: "sem-1", KelasIDs: []string{"k1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceSubmitOverSKSLimit(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{MaxSKS: 6})

	_, err := svc.Submit(context.Background(), "m1", SubmitKRSRequest{SemesterID: "sem-1", KelasIDs: []string{"k1", "k2"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceAddDetailToDecidedSheet(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	repo.sheets = map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m1", SemesterID: "sem-1", Status: models.KRSApproved}},
	}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})

	_, err := svc.AddDetail(context.Background(), "krs-1", "k1", "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceAddDetailOtherOwner(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	repo.sheets = map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m2", SemesterID: "sem-1", Status: models.KRSPending}},
	}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})

	_, err := svc.AddDetail(context.Background(), "krs-1", "k1", "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceDecideApprove(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	repo.sheets = map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m1", SemesterID: "sem-1", Status: models.KRSPending}},
	}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-admin", Role: models.RoleAdmin}}

	sheet, err := svc.Decide(context.Background(), "krs-1", DecideKRSRequest{Approve: true}, actor)
	require.NoError(t, err)
	assert.Equal(t, models.KRSApproved, sheet.Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionApprove, audit.logs[0].Action)
}

func TestKRSServiceDecideRequiresDosenWali(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	wali := "d-other"
	students.students["m1"].DosenWaliID = &wali
	repo.sheets = map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m1", SemesterID: "sem-1", Status: models.KRSPending}},
	}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-dosen", Role: models.RoleDosen, ProfileID: "d-1"}}

	_, err := svc.Decide(context.Background(), "krs-1", DecideKRSRequest{Approve: true}, actor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceDecideAlreadyDecided(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	repo.sheets = map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m1", SemesterID: "sem-1", Status: models.KRSRejected}},
	}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-admin", Role: models.RoleAdmin}}

	_, err := svc.Decide(context.Background(), "krs-1", DecideKRSRequest{Approve: true}, actor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestKRSServiceDecideLostRace(t *testing.T) {
	repo, kelas, students, semesters, audit := newKRSFixture()
	repo.decideOK = false
	repo.sheets = map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m1", SemesterID: "sem-1", Status: models.KRSPending}},
	}
	svc := NewKRSService(repo, kelas, students, semesters, audit, validator.New(), zap.NewNop(), KRSConfig{})
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-admin", Role: models.RoleAdmin}}

	_, err := svc.Decide(context.Background(), "krs-1", DecideKRSRequest{Approve: true}, actor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, audit.logs)
}
