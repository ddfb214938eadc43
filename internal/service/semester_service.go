package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type semesterRepository interface {
	List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
	ExistsByTahunPeriode(ctx context.Context, tahunAjaran string, periode models.SemesterPeriode, excludeID string) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	SetActive(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status models.SemesterStatus) error
}

// SemesterRequest payload for creating or updating academic periods.
type SemesterRequest struct {
	TahunAjaran string                 `json:"tahun_ajaran" validate:"required,len=9"`
	Periode     models.SemesterPeriode `json:"periode" validate:"required,oneof=GANJIL GENAP"`
	KRSMulai    time.Time              `json:"krs_mulai" validate:"required"`
	KRSSelesai  time.Time              `json:"krs_selesai" validate:"required"`
}

// SemesterService manages academic periods and their state machine.
type SemesterService struct {
	repo      semesterRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs SemesterService.
func NewSemesterService(repo semesterRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SemesterService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns academic periods with pagination metadata.
func (s *SemesterService) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, *models.Pagination, error) {
	semesters, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return semesters, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one period by ID.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// GetActive returns the active period or NOT_FOUND when none is active.
func (s *SemesterService) GetActive(ctx context.Context) (*models.Semester, error) {
	semester, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	return semester, nil
}

// Create adds a new period in DRAFT.
func (s *SemesterService) Create(ctx context.Context, req SemesterRequest, actorID string) (*models.Semester, error) {
	if err := s.validateWindow(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByTahunPeriode(ctx, req.TahunAjaran, req.Periode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester already exists for tahun ajaran and periode")
	}

	semester := &models.Semester{
		ID:          uuid.NewString(),
		TahunAjaran: req.TahunAjaran,
		Periode:     req.Periode,
		Status:      models.SemesterDraft,
		KRSMulai:    &req.KRSMulai,
		KRSSelesai:  &req.KRSSelesai,
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionCreate,
			Resource:   "semester",
			ResourceID: &semester.ID,
		})
	}

	return semester, nil
}

// Update modifies the KRS window and labels of a period.
func (s *SemesterService) Update(ctx context.Context, id string, req SemesterRequest) (*models.Semester, error) {
	if err := s.validateWindow(req); err != nil {
		return nil, err
	}

	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	exists, err := s.repo.ExistsByTahunPeriode(ctx, req.TahunAjaran, req.Periode, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester already exists for tahun ajaran and periode")
	}

	semester.TahunAjaran = req.TahunAjaran
	semester.Periode = req.Periode
	semester.KRSMulai = &req.KRSMulai
	semester.KRSSelesai = &req.KRSSelesai
	if err := s.repo.Update(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}
	return semester, nil
}

// Activate makes the period the single active one. Deactivation of the
// previous holder and activation happen in one transaction.
func (s *SemesterService) Activate(ctx context.Context, id string, actorID string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	if semester.Status == models.SemesterSelesai {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot activate a finished semester")
	}

	if err := s.repo.SetActive(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate semester")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionUpdate,
			Resource:   "semester",
			ResourceID: &id,
			NewValues:  []byte(`{"is_active":true}`),
		})
	}

	semester.IsActive = true
	return semester, nil
}

// Transition advances the period state machine. Only the next forward
// step is legal; anything else is a conflict.
func (s *SemesterService) Transition(ctx context.Context, id string, target models.SemesterStatus, actorID string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	if !models.CanTransition(semester.Status, target) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "illegal semester status transition")
	}

	if err := s.repo.SetStatus(ctx, id, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set semester status")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionUpdate,
			Resource:   "semester",
			ResourceID: &id,
			NewValues:  []byte(`{"status":"` + string(target) + `"}`),
		})
	}

	semester.Status = target
	return semester, nil
}

func (s *SemesterService) validateWindow(req SemesterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	if !req.KRSSelesai.After(req.KRSMulai) {
		return appErrors.WithFields("invalid krs window", map[string]string{"krs_selesai": "must be after krs_mulai"})
	}
	return nil
}
