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

type mataKuliahRepository interface {
	List(ctx context.Context, filter models.MataKuliahFilter) ([]models.MataKuliah, int, error)
	FindByID(ctx context.Context, id string) (*models.MataKuliah, error)
	FindByKode(ctx context.Context, kodeMK string) (*models.MataKuliah, error)
	UpsertByKode(ctx context.Context, mk *models.MataKuliah) error
	Deactivate(ctx context.Context, id string) error
}

// UpsertMataKuliahRequest carries the full catalog entry keyed by kode_mk.
type UpsertMataKuliahRequest struct {
	KodeMK        string `json:"kode_mk" validate:"required"`
	Nama          string `json:"nama" validate:"required"`
	SKS           int    `json:"sks" validate:"required,min=1,max=6"`
	SemesterIdeal int    `json:"semester_ideal" validate:"required,min=1,max=14"`
	ProdiID       string `json:"prodi_id" validate:"required"`
	LintasProdi   bool   `json:"lintas_prodi"`
}

// MataKuliahService manages the course catalog.
type MataKuliahService struct {
	repo      mataKuliahRepository
	prodi     prodiReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMataKuliahService constructs MataKuliahService.
func NewMataKuliahService(repo mataKuliahRepository, prodi prodiReader, validate *validator.Validate, logger *zap.Logger) *MataKuliahService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MataKuliahService{repo: repo, prodi: prodi, validator: validate, logger: logger}
}

// List returns catalog entries with pagination metadata.
func (s *MataKuliahService) List(ctx context.Context, filter models.MataKuliahFilter) ([]models.MataKuliah, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mata kuliah")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one catalog entry by ID.
func (s *MataKuliahService) Get(ctx context.Context, id string) (*models.MataKuliah, error) {
	mk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mata kuliah not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mata kuliah")
	}
	return mk, nil
}

// Upsert creates or updates the entry holding the submitted kode_mk.
// Resubmitting the same payload changes nothing, so catalog imports can
// be replayed safely.
func (s *MataKuliahService) Upsert(ctx context.Context, req UpsertMataKuliahRequest) (*models.MataKuliah, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mata kuliah payload")
	}

	if _, err := s.prodi.FindByID(ctx, req.ProdiID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}

	mk := &models.MataKuliah{
		KodeMK:        req.KodeMK,
		Nama:          req.Nama,
		SKS:           req.SKS,
		SemesterIdeal: req.SemesterIdeal,
		ProdiID:       req.ProdiID,
		LintasProdi:   req.LintasProdi,
		Aktif:         true,
	}

	if existing, err := s.repo.FindByKode(ctx, req.KodeMK); err == nil {
		mk.ID = existing.ID
		mk.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mata kuliah")
	}

	if err := s.repo.UpsertByKode(ctx, mk); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert mata kuliah")
	}

	// re-read by kode so a concurrent insert that won the conflict still
	// yields the surviving row
	saved, err := s.repo.FindByKode(ctx, req.KodeMK)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mata kuliah")
	}
	return saved, nil
}

// Deactivate soft-deletes a catalog entry. Existing class offerings keep
// their reference.
func (s *MataKuliahService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mata kuliah not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mata kuliah")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate mata kuliah")
	}
	return nil
}
