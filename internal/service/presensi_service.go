package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type presensiRepository interface {
	Upsert(ctx context.Context, presensi *models.Presensi) error
	ListByKelasPertemuan(ctx context.Context, kelasID string, pertemuan int) ([]models.Presensi, error)
	Rekap(ctx context.Context, kelasID string) ([]models.PresensiRekap, error)
}

type enrollmentChecker interface {
	FindKRSDetail(ctx context.Context, kelasID, mahasiswaID string) (string, error)
}

// RecordPresensiRequest records attendance for one class meeting.
type RecordPresensiRequest struct {
	Pertemuan int                  `json:"pertemuan" validate:"required,min=1,max=16"`
	Tanggal   time.Time            `json:"tanggal" validate:"required"`
	Entries   []PresensiEntryInput `json:"entries" validate:"required,min=1,dive"`
}

// PresensiEntryInput is a single student's status in a meeting.
type PresensiEntryInput struct {
	MahasiswaID string                `json:"mahasiswa_id" validate:"required"`
	Status      models.PresensiStatus `json:"status" validate:"required,oneof=HADIR IZIN SAKIT ALPA"`
}

// PresensiService manages attendance records.
type PresensiService struct {
	repo       presensiRepository
	kelas      kelasReader
	enrollment enrollmentChecker
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPresensiService constructs PresensiService.
func NewPresensiService(repo presensiRepository, kelas kelasReader, enrollment enrollmentChecker, validate *validator.Validate, logger *zap.Logger) *PresensiService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PresensiService{repo: repo, kelas: kelas, enrollment: enrollment, validator: validate, logger: logger}
}

// Record writes attendance for a meeting. Re-recording a student in the
// same meeting replaces the earlier status. Only enrolled students are
// accepted; an unknown entry fails the whole batch before any write.
func (s *PresensiService) Record(ctx context.Context, kelasID string, req RecordPresensiRequest, actor *models.CurrentUser) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid presensi payload")
	}

	kelas, err := s.kelas.FindByID(ctx, kelasID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}
	if actor.Role == models.RoleDosen && kelas.DosenID != actor.ProfileID {
		return appErrors.Clone(appErrors.ErrForbidden, "kelas belongs to another dosen")
	}

	for _, entry := range req.Entries {
		if _, err := s.enrollment.FindKRSDetail(ctx, kelasID, entry.MahasiswaID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "mahasiswa is not enrolled in this kelas")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
		}
	}

	for _, entry := range req.Entries {
		record := &models.Presensi{
			KelasMKID:   kelasID,
			MahasiswaID: entry.MahasiswaID,
			Pertemuan:   req.Pertemuan,
			Tanggal:     req.Tanggal,
			Status:      entry.Status,
		}
		if err := s.repo.Upsert(ctx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save presensi")
		}
	}

	return nil
}

// ListMeeting returns the attendance entries for one meeting.
func (s *PresensiService) ListMeeting(ctx context.Context, kelasID string, pertemuan int) ([]models.Presensi, error) {
	records, err := s.repo.ListByKelasPertemuan(ctx, kelasID, pertemuan)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list presensi")
	}
	return records, nil
}

// Rekap returns the per-student attendance summary for a class.
func (s *PresensiService) Rekap(ctx context.Context, kelasID string) ([]models.PresensiRekap, error) {
	if _, err := s.kelas.FindByID(ctx, kelasID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}

	rekap, err := s.repo.Rekap(ctx, kelasID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build presensi rekap")
	}
	return rekap, nil
}
