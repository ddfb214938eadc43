package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type krsRepository interface {
	List(ctx context.Context, filter models.KRSFilter) ([]models.KRSView, int, error)
	FindByID(ctx context.Context, id string) (*models.KRSView, error)
	FindByMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (*models.KRSView, error)
	ExistsForMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (bool, error)
	CreateWithDetails(ctx context.Context, krs *models.KRS, kelasIDs []string) error
	AddDetail(ctx context.Context, krsID, kelasID string) error
	RemoveDetail(ctx context.Context, krsID, kelasID string) error
	HasDetail(ctx context.Context, krsID, kelasID string) (bool, error)
	CountSeats(ctx context.Context, kelasID string) (int, error)
	Decide(ctx context.Context, id string, status models.KRSStatus, decidedBy string, catatan string) (bool, error)
}

type kelasReader interface {
	FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error)
}

type mahasiswaReader interface {
	FindByID(ctx context.Context, id string) (*models.MahasiswaDetail, error)
}

// SubmitKRSRequest opens a course-selection sheet with an initial set of
// classes.
type SubmitKRSRequest struct {
	SemesterID string   `json:"semester_id" validate:"required"`
	KelasIDs   []string `json:"kelas_ids" validate:"required,min=1,dive,required"`
}

// DecideKRSRequest approves or rejects a pending sheet.
type DecideKRSRequest struct {
	Approve bool   `json:"approve"`
	Catatan string `json:"catatan"`
}

// KRSConfig bounds course selection.
type KRSConfig struct {
	MaxSKS int
}

// KRSService orchestrates the course-selection workflow.
type KRSService struct {
	repo      krsRepository
	kelas     kelasReader
	mahasiswa mahasiswaReader
	semesters semesterReader
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    KRSConfig
}

// NewKRSService constructs KRSService.
func NewKRSService(repo krsRepository, kelas kelasReader, mahasiswa mahasiswaReader, semesters semesterReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config KRSConfig) *KRSService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MaxSKS <= 0 {
		config.MaxSKS = 24
	}
	return &KRSService{repo: repo, kelas: kelas, mahasiswa: mahasiswa, semesters: semesters, audit: audit, validator: validate, logger: logger, config: config}
}

// List returns sheets with pagination metadata.
func (s *KRSService) List(ctx context.Context, filter models.KRSFilter) ([]models.KRSView, *models.Pagination, error) {
	sheets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list krs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sheets, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one sheet with its detail rows.
func (s *KRSService) Get(ctx context.Context, id string) (*models.KRSView, error) {
	krs, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "krs not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load krs")
	}
	return krs, nil
}

// GetMine returns the caller's sheet for one semester.
func (s *KRSService) GetMine(ctx context.Context, mahasiswaID, semesterID string) (*models.KRSView, error) {
	krs, err := s.repo.FindByMahasiswaSemester(ctx, mahasiswaID, semesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "krs not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load krs")
	}
	return krs, nil
}

// Submit opens the caller's sheet for the semester with an initial set of
// classes. Everything is validated up front and the insert is
// transactional, so a failed submission leaves no partial sheet behind.
func (s *KRSService) Submit(ctx context.Context, mahasiswaID string, req SubmitKRSRequest) (*models.KRSView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid krs payload")
	}

	semester, err := s.loadOpenSemester(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}

	if _, err := s.mahasiswa.FindByID(ctx, mahasiswaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mahasiswa not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mahasiswa")
	}

	exists, err := s.repo.ExistsForMahasiswaSemester(ctx, mahasiswaID, req.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing krs")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "krs already submitted for this semester")
	}

	seen := make(map[string]bool, len(req.KelasIDs))
	totalSKS := 0
	for _, kelasID := range req.KelasIDs {
		if seen[kelasID] {
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate kelas in selection")
		}
		seen[kelasID] = true

		kelas, err := s.loadSelectableKelas(ctx, kelasID, semester.ID)
		if err != nil {
			return nil, err
		}
		totalSKS += kelas.SKS
	}
	if totalSKS > s.config.MaxSKS {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "total sks exceeds the allowed maximum")
	}

	krs := &models.KRS{
		MahasiswaID: mahasiswaID,
		SemesterID:  req.SemesterID,
		Status:      models.KRSPending,
	}
	if err := s.repo.CreateWithDetails(ctx, krs, req.KelasIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create krs")
	}

	return s.Get(ctx, krs.ID)
}

// AddDetail appends a class to a still-pending sheet.
func (s *KRSService) AddDetail(ctx context.Context, krsID, kelasID, mahasiswaID string) (*models.KRSView, error) {
	krs, err := s.loadMutableSheet(ctx, krsID, mahasiswaID)
	if err != nil {
		return nil, err
	}

	kelas, err := s.loadSelectableKelas(ctx, kelasID, krs.SemesterID)
	if err != nil {
		return nil, err
	}

	already, err := s.repo.HasDetail(ctx, krsID, kelasID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check krs detail")
	}
	if already {
		return nil, appErrors.Clone(appErrors.ErrConflict, "kelas already on krs")
	}

	if krs.TotalSKS+kelas.SKS > s.config.MaxSKS {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "total sks exceeds the allowed maximum")
	}

	if err := s.repo.AddDetail(ctx, krsID, kelasID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add krs detail")
	}

	return s.Get(ctx, krsID)
}

// RemoveDetail drops a class from a still-pending sheet.
func (s *KRSService) RemoveDetail(ctx context.Context, krsID, kelasID, mahasiswaID string) (*models.KRSView, error) {
	if _, err := s.loadMutableSheet(ctx, krsID, mahasiswaID); err != nil {
		return nil, err
	}

	present, err := s.repo.HasDetail(ctx, krsID, kelasID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check krs detail")
	}
	if !present {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not on krs")
	}

	if err := s.repo.RemoveDetail(ctx, krsID, kelasID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove krs detail")
	}

	return s.Get(ctx, krsID)
}

// Decide approves or rejects a pending sheet. Admins may decide any
// sheet; a dosen may only decide sheets of their advisees.
func (s *KRSService) Decide(ctx context.Context, krsID string, req DecideKRSRequest, actor *models.CurrentUser) (*models.KRSView, error) {
	krs, err := s.Get(ctx, krsID)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleDosen {
		student, err := s.mahasiswa.FindByID(ctx, krs.MahasiswaID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mahasiswa")
		}
		if student.DosenWaliID == nil || *student.DosenWaliID != actor.ProfileID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the dosen wali may decide this krs")
		}
	}

	if krs.Status != models.KRSPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "krs already decided")
	}

	status := models.KRSRejected
	action := models.AuditActionUpdate
	if req.Approve {
		status = models.KRSApproved
		action = models.AuditActionApprove
	}

	decided, err := s.repo.Decide(ctx, krsID, status, actor.ID, req.Catatan)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide krs")
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrConflict, "krs already decided")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actor.ID,
			Action:     action,
			Resource:   "krs",
			ResourceID: &krsID,
			NewValues:  []byte(`{"status":"` + string(status) + `"}`),
		})
	}

	return s.Get(ctx, krsID)
}

// loadMutableSheet fetches a sheet that may still be edited by its owner.
func (s *KRSService) loadMutableSheet(ctx context.Context, krsID, mahasiswaID string) (*models.KRSView, error) {
	krs, err := s.Get(ctx, krsID)
	if err != nil {
		return nil, err
	}
	if krs.MahasiswaID != mahasiswaID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "krs belongs to another mahasiswa")
	}
	if krs.Status != models.KRSPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "krs already decided")
	}
	if _, err := s.loadOpenSemester(ctx, krs.SemesterID); err != nil {
		return nil, err
	}
	return krs, nil
}

// loadOpenSemester fetches a semester and requires its enrollment period
// to be open.
func (s *KRSService) loadOpenSemester(ctx context.Context, semesterID string) (*models.Semester, error) {
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	if !semester.OpenForKRS() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "semester is not open for krs")
	}
	return semester, nil
}

// loadSelectableKelas fetches a class and checks semester membership and
// remaining capacity. Pending seats count against capacity so approval
// can never oversubscribe a class.
func (s *KRSService) loadSelectableKelas(ctx context.Context, kelasID, semesterID string) (*models.KelasMKDetail, error) {
	kelas, err := s.kelas.FindByID(ctx, kelasID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}
	if kelas.SemesterID != semesterID {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "kelas belongs to another semester")
	}

	seats, err := s.repo.CountSeats(ctx, kelasID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count kelas seats")
	}
	if seats >= kelas.Kapasitas {
		return nil, appErrors.Clone(appErrors.ErrConflict, "kelas is full")
	}
	return kelas, nil
}
