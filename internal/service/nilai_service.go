package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type nilaiRepository interface {
	Upsert(ctx context.Context, nilai *models.Nilai) error
	FindKRSDetail(ctx context.Context, kelasID, mahasiswaID string) (string, error)
	ListByKelas(ctx context.Context, kelasID string) ([]models.NilaiRow, error)
	ListKHSRows(ctx context.Context, mahasiswaID, semesterID string) ([]models.KHSRow, error)
}

type kelasLockRepository interface {
	FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error)
	SetNilaiLocked(ctx context.Context, id string, locked bool) error
}

// UpsertNilaiRequest records one numeric grade.
type UpsertNilaiRequest struct {
	MahasiswaID string  `json:"mahasiswa_id" validate:"required"`
	NilaiAngka  float64 `json:"nilai_angka" validate:"min=0,max=100"`
}

// NilaiService manages grading and report cards.
type NilaiService struct {
	repo      nilaiRepository
	kelas     kelasLockRepository
	mahasiswa mahasiswaReader
	semesters semesterReader
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNilaiService constructs NilaiService.
func NewNilaiService(repo nilaiRepository, kelas kelasLockRepository, mahasiswa mahasiswaReader, semesters semesterReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *NilaiService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NilaiService{repo: repo, kelas: kelas, mahasiswa: mahasiswa, semesters: semesters, audit: audit, validator: validate, logger: logger}
}

// Roster returns every approved student in the class with any recorded
// grade. Only the owning dosen or an admin may view it.
func (s *NilaiService) Roster(ctx context.Context, kelasID string, actor *models.CurrentUser) ([]models.NilaiRow, error) {
	if _, err := s.loadOwnedKelas(ctx, kelasID, actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByKelas(ctx, kelasID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return rows, nil
}

// Upsert records or corrects one grade. The class must be unlocked and
// the student must sit on an approved sheet; anyone else is simply not
// on the roster.
func (s *NilaiService) Upsert(ctx context.Context, kelasID string, req UpsertNilaiRequest, actor *models.CurrentUser) (*models.Nilai, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid nilai payload")
	}

	kelas, err := s.loadOwnedKelas(ctx, kelasID, actor)
	if err != nil {
		return nil, err
	}
	if kelas.NilaiLocked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "grades are locked for this kelas")
	}

	huruf, bobot, err := models.KonversiNilai(req.NilaiAngka)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "nilai angka outside valid range")
	}

	detailID, err := s.repo.FindKRSDetail(ctx, kelasID, req.MahasiswaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mahasiswa is not enrolled in this kelas")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
	}

	nilai := &models.Nilai{
		KRSDetailID: detailID,
		NilaiAngka:  req.NilaiAngka,
		NilaiHuruf:  huruf,
		Bobot:       bobot,
	}
	if err := s.repo.Upsert(ctx, nilai); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save nilai")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actor.ID,
			Action:     models.AuditActionUpdate,
			Resource:   "nilai",
			ResourceID: &detailID,
			NewValues:  []byte(`{"nilai_huruf":"` + huruf + `"}`),
		})
	}

	return nilai, nil
}

// LockKelas closes grading for a class. The lock is one-way; unlocking
// would silently rewrite issued report cards.
func (s *NilaiService) LockKelas(ctx context.Context, kelasID string, actor *models.CurrentUser) error {
	kelas, err := s.loadOwnedKelas(ctx, kelasID, actor)
	if err != nil {
		return err
	}
	if kelas.NilaiLocked {
		return appErrors.Clone(appErrors.ErrLocked, "kelas is already locked")
	}

	if err := s.kelas.SetNilaiLocked(ctx, kelasID, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock kelas")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actor.ID,
			Action:     models.AuditActionUpdate,
			Resource:   "kelas_mk",
			ResourceID: &kelasID,
			NewValues:  []byte(`{"nilai_locked":true}`),
		})
	}

	return nil
}

// KHS builds the per-semester grade report. IPS is the SKS-weighted mean
// of the recorded weights, rounded to two decimals.
func (s *NilaiService) KHS(ctx context.Context, mahasiswaID, semesterID string) (*models.KHS, error) {
	student, err := s.mahasiswa.FindByID(ctx, mahasiswaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mahasiswa not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mahasiswa")
	}

	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	rows, err := s.repo.ListKHSRows(ctx, mahasiswaID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load khs rows")
	}

	totalSKS := 0
	weighted := 0.0
	for _, row := range rows {
		totalSKS += row.SKS
		weighted += float64(row.SKS) * row.Bobot
	}
	ips := 0.0
	if totalSKS > 0 {
		ips = math.Round(weighted/float64(totalSKS)*100) / 100
	}

	return &models.KHS{
		MahasiswaID:   student.ID,
		NIM:           student.NIM,
		MahasiswaNama: student.FullName,
		ProdiNama:     student.ProdiNama,
		SemesterID:    semester.ID,
		TahunAjaran:   semester.TahunAjaran,
		Periode:       string(semester.Periode),
		Rows:          rows,
		TotalSKS:      totalSKS,
		IPS:           ips,
	}, nil
}

// loadOwnedKelas fetches the class and enforces grading ownership:
// admins always pass, a dosen must own the class.
func (s *NilaiService) loadOwnedKelas(ctx context.Context, kelasID string, actor *models.CurrentUser) (*models.KelasMKDetail, error) {
	kelas, err := s.kelas.FindByID(ctx, kelasID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}
	if actor.Role == models.RoleDosen && kelas.DosenID != actor.ProfileID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "kelas belongs to another dosen")
	}
	return kelas, nil
}
