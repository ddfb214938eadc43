package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type prodiRepository interface {
	List(ctx context.Context) ([]models.Prodi, error)
	FindByID(ctx context.Context, id string) (*models.Prodi, error)
	ExistsByKode(ctx context.Context, kode string, excludeID string) (bool, error)
	Create(ctx context.Context, prodi *models.Prodi) error
	Update(ctx context.Context, prodi *models.Prodi) error
}

// ProdiRequest payload for creating or updating programs.
type ProdiRequest struct {
	Kode    string `json:"kode" validate:"required"`
	Nama    string `json:"nama" validate:"required"`
	Jenjang string `json:"jenjang" validate:"required,oneof=D3 D4 S1 S2"`
}

// ProdiService manages academic programs.
type ProdiService struct {
	repo      prodiRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProdiService constructs ProdiService.
func NewProdiService(repo prodiRepository, validate *validator.Validate, logger *zap.Logger) *ProdiService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProdiService{repo: repo, validator: validate, logger: logger}
}

// List returns every program. The catalog is small enough that no
// pagination is needed.
func (s *ProdiService) List(ctx context.Context) ([]models.Prodi, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list prodi")
	}
	return programs, nil
}

// Get returns one program by ID.
func (s *ProdiService) Get(ctx context.Context, id string) (*models.Prodi, error) {
	prodi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}
	return prodi, nil
}

// Create adds a new program.
func (s *ProdiService) Create(ctx context.Context, req ProdiRequest) (*models.Prodi, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prodi payload")
	}

	exists, err := s.repo.ExistsByKode(ctx, req.Kode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prodi uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "prodi kode already exists")
	}

	prodi := &models.Prodi{
		ID:      uuid.NewString(),
		Kode:    req.Kode,
		Nama:    req.Nama,
		Jenjang: req.Jenjang,
	}
	if err := s.repo.Create(ctx, prodi); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create prodi")
	}
	return prodi, nil
}

// Update modifies a program.
func (s *ProdiService) Update(ctx context.Context, id string, req ProdiRequest) (*models.Prodi, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prodi payload")
	}

	prodi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}

	exists, err := s.repo.ExistsByKode(ctx, req.Kode, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prodi uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "prodi kode already exists")
	}

	prodi.Kode = req.Kode
	prodi.Nama = req.Nama
	prodi.Jenjang = req.Jenjang
	if err := s.repo.Update(ctx, prodi); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update prodi")
	}
	return prodi, nil
}
