package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type pembayaranRepository interface {
	List(ctx context.Context, filter models.PembayaranFilter) ([]models.PembayaranDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PembayaranDetail, error)
	Create(ctx context.Context, payment *models.Pembayaran) error
	Verify(ctx context.Context, id string, status models.PembayaranStatus, verifiedBy string, catatan string) (bool, error)
}

type proofStorage interface {
	SaveStream(relPath string, r io.Reader) (string, error)
	Open(relPath string) (io.ReadCloser, error)
}

// SubmitPembayaranRequest records a payment with its proof upload.
type SubmitPembayaranRequest struct {
	SemesterID string                 `json:"semester_id" form:"semester_id" validate:"required"`
	Jenis      models.PembayaranJenis `json:"jenis" form:"jenis" validate:"required,oneof=SPP PRAKTIKUM WISUDA LAINNYA"`
	Jumlah     int64                  `json:"jumlah" form:"jumlah" validate:"required,min=1"`
	Catatan    string                 `json:"catatan" form:"catatan"`
	FileName   string                 `json:"-"`
	File       io.Reader              `json:"-"`
}

// VerifyPembayaranRequest finalises a pending payment.
type VerifyPembayaranRequest struct {
	Approve bool   `json:"approve"`
	Catatan string `json:"catatan"`
}

// PembayaranService manages payment submission and verification.
type PembayaranService struct {
	repo      pembayaranRepository
	storage   proofStorage
	semesters semesterReader
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPembayaranService constructs PembayaranService.
func NewPembayaranService(repo pembayaranRepository, storage proofStorage, semesters semesterReader, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *PembayaranService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PembayaranService{repo: repo, storage: storage, semesters: semesters, audit: audit, validator: validate, logger: logger}
}

// List returns payments with pagination metadata.
func (s *PembayaranService) List(ctx context.Context, filter models.PembayaranFilter) ([]models.PembayaranDetail, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pembayaran")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one payment record.
func (s *PembayaranService) Get(ctx context.Context, id string) (*models.PembayaranDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pembayaran not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pembayaran")
	}
	return payment, nil
}

// Submit records a new payment for the calling student with its proof
// file. Records are append-only; corrections are new submissions.
func (s *PembayaranService) Submit(ctx context.Context, mahasiswaID string, req SubmitPembayaranRequest) (*models.PembayaranDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pembayaran payload")
	}
	if req.File == nil || req.FileName == "" {
		return nil, appErrors.WithFields("bukti file is required", map[string]string{"bukti": "required"})
	}

	if _, err := s.semesters.FindByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	id := uuid.NewString()
	relPath := filepath.Join("pembayaran", id+filepath.Ext(req.FileName))
	storedPath, err := s.storage.SaveStream(relPath, req.File)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store bukti file")
	}

	payment := &models.Pembayaran{
		ID:          id,
		MahasiswaID: mahasiswaID,
		SemesterID:  req.SemesterID,
		Jenis:       req.Jenis,
		Jumlah:      req.Jumlah,
		BuktiPath:   storedPath,
		Status:      models.PembayaranPending,
		Catatan:     req.Catatan,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create pembayaran")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			Action:     models.AuditActionCreate,
			Resource:   "pembayaran",
			ResourceID: &payment.ID,
		})
	}

	return s.Get(ctx, payment.ID)
}

// Verify finalises a pending payment. A decision is final; deciding an
// already-decided record is a conflict.
func (s *PembayaranService) Verify(ctx context.Context, id string, req VerifyPembayaranRequest, actorID string) (*models.PembayaranDetail, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PembayaranPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "pembayaran already decided")
	}

	status := models.PembayaranRejected
	if req.Approve {
		status = models.PembayaranVerified
	}

	decided, err := s.repo.Verify(ctx, id, status, actorID, req.Catatan)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify pembayaran")
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrConflict, "pembayaran already decided")
	}

	if s.audit != nil {
		s.audit.Record(models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionVerify,
			Resource:   "pembayaran",
			ResourceID: &id,
			NewValues:  []byte(`{"status":"` + string(status) + `"}`),
		})
	}

	return s.Get(ctx, id)
}

// OpenBukti streams the proof file for a payment.
func (s *PembayaranService) OpenBukti(ctx context.Context, id string) (io.ReadCloser, string, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.storage.Open(payment.BuktiPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open bukti file")
	}
	return rc, filepath.Base(payment.BuktiPath), nil
}
