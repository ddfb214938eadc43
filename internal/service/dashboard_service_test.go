package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
)

type countersStub struct{}

func (countersStub) Count(ctx context.Context, onlyActive bool) (int, error) { return 120, nil }

type dosenCountStub struct{}

func (dosenCountStub) Count(ctx context.Context) (int, error) { return 15, nil }

type kelasCountStub struct{}

func (kelasCountStub) CountBySemester(ctx context.Context, semesterID string) (int, error) {
	return 40, nil
}

func (kelasCountStub) CountByDosen(ctx context.Context, dosenID, semesterID string) (int, error) {
	return 3, nil
}

type pembayaranCountStub struct{}

func (pembayaranCountStub) CountByStatus(ctx context.Context, semesterID string, status models.PembayaranStatus) (int, error) {
	return 7, nil
}

func newDashboardFixture(krs *mockKRSRepo, semesters *mockSemesterRepo, cache sessionCache) *DashboardService {
	return NewDashboardService(countersStub{}, dosenCountStub{}, kelasCountStub{}, krs, pembayaranCountStub{}, semesters, cache, nil, DashboardConfig{}, zap.NewNop())
}

func (m *mockKRSRepo) CountPendingBySemester(ctx context.Context, semesterID string) (int, error) {
	return 12, nil
}

func TestDashboardServiceAdminSummary(t *testing.T) {
	semesters := &mockSemesterRepo{semesters: map[string]models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterBerjalan, IsActive: true},
	}}
	svc := newDashboardFixture(&mockKRSRepo{}, semesters, nil)
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-admin", Role: models.RoleAdmin}}

	summary, err := svc.Summary(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, 120, summary.TotalMahasiswa)
	assert.Equal(t, 15, summary.TotalDosen)
	assert.Equal(t, 40, summary.TotalKelas)
	assert.Equal(t, 12, summary.KRSPending)
	assert.Equal(t, 7, summary.PembayaranPending)
	require.NotNil(t, summary.SemesterAktif)
}

func TestDashboardServiceMahasiswaWithoutSheet(t *testing.T) {
	semesters := &mockSemesterRepo{semesters: map[string]models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterPendaftaran, IsActive: true},
	}}
	svc := newDashboardFixture(&mockKRSRepo{}, semesters, nil)
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", Role: models.RoleMahasiswa, ProfileID: "m1"}}

	summary, err := svc.Summary(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, "BELUM_MENGISI", summary.KRSStatus)
	assert.Zero(t, summary.TotalSKSDisetujui)
}

func TestDashboardServiceMahasiswaApprovedSheet(t *testing.T) {
	semesters := &mockSemesterRepo{semesters: map[string]models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterBerjalan, IsActive: true},
	}}
	krs := &mockKRSRepo{sheets: map[string]models.KRSView{
		"krs-1": {KRS: models.KRS{ID: "krs-1", MahasiswaID: "m1", SemesterID: "sem-1", Status: models.KRSApproved}, TotalSKS: 21},
	}}
	svc := newDashboardFixture(krs, semesters, nil)
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", Role: models.RoleMahasiswa, ProfileID: "m1"}}

	summary, err := svc.Summary(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, string(models.KRSApproved), summary.KRSStatus)
	assert.Equal(t, 21, summary.TotalSKSDisetujui)
}

func TestDashboardServiceNoActiveSemester(t *testing.T) {
	svc := newDashboardFixture(&mockKRSRepo{}, &mockSemesterRepo{}, nil)
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-keu", Role: models.RoleKeuangan}}

	summary, err := svc.Summary(context.Background(), actor)
	require.NoError(t, err)
	assert.Nil(t, summary.SemesterAktif)
	assert.Zero(t, summary.PembayaranPending)
}

func TestDashboardServiceServesCachedSummary(t *testing.T) {
	semesters := &mockSemesterRepo{semesters: map[string]models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterBerjalan, IsActive: true},
	}}
	cache := &mockSessionCache{}
	svc := newDashboardFixture(&mockKRSRepo{}, semesters, cache)
	actor := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u-admin", Role: models.RoleAdmin}}

	first, err := svc.Summary(context.Background(), actor)
	require.NoError(t, err)
	require.Contains(t, cache.entries, "dashboard:ADMIN")

	delete(semesters.semesters, "sem-1")
	second, err := svc.Summary(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, first.TotalMahasiswa, second.TotalMahasiswa)
	require.NotNil(t, second.SemesterAktif)
}
