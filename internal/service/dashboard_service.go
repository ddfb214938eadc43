package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type mahasiswaCounter interface {
	Count(ctx context.Context, onlyActive bool) (int, error)
}

type dosenCounter interface {
	Count(ctx context.Context) (int, error)
}

type kelasCounter interface {
	CountBySemester(ctx context.Context, semesterID string) (int, error)
	CountByDosen(ctx context.Context, dosenID, semesterID string) (int, error)
}

type krsCounter interface {
	CountPendingBySemester(ctx context.Context, semesterID string) (int, error)
	FindByMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (*models.KRSView, error)
}

type pembayaranCounter interface {
	CountByStatus(ctx context.Context, semesterID string, status models.PembayaranStatus) (int, error)
}

type activeSemesterReader interface {
	FindActive(ctx context.Context) (*models.Semester, error)
}

// DashboardConfig defines configuration for dashboard summaries.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// DashboardService assembles role-scoped landing summaries. Counts are
// served from cache when fresh; a miss rebuilds from the database.
type DashboardService struct {
	mahasiswa  mahasiswaCounter
	dosen      dosenCounter
	kelas      kelasCounter
	krs        krsCounter
	pembayaran pembayaranCounter
	semester   activeSemesterReader
	cache      sessionCache
	metrics    *MetricsService
	config     DashboardConfig
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(mahasiswa mahasiswaCounter, dosen dosenCounter, kelas kelasCounter, krs krsCounter, pembayaran pembayaranCounter, semester activeSemesterReader, cache sessionCache, metrics *MetricsService, config DashboardConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{mahasiswa: mahasiswa, dosen: dosen, kelas: kelas, krs: krs, pembayaran: pembayaran, semester: semester, cache: cache, metrics: metrics, config: config, logger: logger}
}

func dashboardKey(role models.UserRole, profileID string) string {
	if profileID == "" {
		return fmt.Sprintf("dashboard:%s", role)
	}
	return fmt.Sprintf("dashboard:%s:%s", role, profileID)
}

// Summary builds the landing payload for the calling user.
func (s *DashboardService) Summary(ctx context.Context, actor *models.CurrentUser) (*models.DashboardSummary, error) {
	key := dashboardKey(actor.Role, actor.ProfileID)
	if s.cache != nil {
		var cached models.DashboardSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		}
	}

	semester, err := s.semester.FindActive(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}

	summary := &models.DashboardSummary{SemesterAktif: semester}
	start := time.Now()
	switch actor.Role {
	case models.RoleAdmin:
		err = s.fillAdmin(ctx, summary, semester)
	case models.RoleDosen:
		err = s.fillDosen(ctx, summary, semester, actor.ProfileID)
	case models.RoleMahasiswa:
		err = s.fillMahasiswa(ctx, summary, semester, actor.ProfileID)
	case models.RoleKeuangan:
		err = s.fillKeuangan(ctx, summary, semester)
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(fmt.Sprintf("dashboard_%s", actor.Role), time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard summary", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *DashboardService) fillAdmin(ctx context.Context, summary *models.DashboardSummary, semester *models.Semester) error {
	var err error
	if summary.TotalMahasiswa, err = s.mahasiswa.Count(ctx, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count mahasiswa")
	}
	if summary.TotalDosen, err = s.dosen.Count(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count dosen")
	}
	if semester == nil {
		return nil
	}
	if summary.TotalKelas, err = s.kelas.CountBySemester(ctx, semester.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count kelas")
	}
	if summary.KRSPending, err = s.krs.CountPendingBySemester(ctx, semester.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending krs")
	}
	if summary.PembayaranPending, err = s.pembayaran.CountByStatus(ctx, semester.ID, models.PembayaranPending); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending pembayaran")
	}
	return nil
}

func (s *DashboardService) fillDosen(ctx context.Context, summary *models.DashboardSummary, semester *models.Semester, dosenID string) error {
	if semester == nil || dosenID == "" {
		return nil
	}
	count, err := s.kelas.CountByDosen(ctx, dosenID, semester.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count kelas diampu")
	}
	summary.KelasDiampu = count
	return nil
}

func (s *DashboardService) fillMahasiswa(ctx context.Context, summary *models.DashboardSummary, semester *models.Semester, mahasiswaID string) error {
	if semester == nil || mahasiswaID == "" {
		return nil
	}
	sheet, err := s.krs.FindByMahasiswaSemester(ctx, mahasiswaID, semester.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			summary.KRSStatus = "BELUM_MENGISI"
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load krs sheet")
	}
	summary.KRSStatus = string(sheet.Status)
	if sheet.Status == models.KRSApproved {
		summary.TotalSKSDisetujui = sheet.TotalSKS
	}
	return nil
}

func (s *DashboardService) fillKeuangan(ctx context.Context, summary *models.DashboardSummary, semester *models.Semester) error {
	if semester == nil {
		return nil
	}
	count, err := s.pembayaran.CountByStatus(ctx, semester.ID, models.PembayaranPending)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending pembayaran")
	}
	summary.PembayaranPending = count
	return nil
}
