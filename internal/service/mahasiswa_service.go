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

type mahasiswaRepository interface {
	List(ctx context.Context, filter models.MahasiswaFilter) ([]models.MahasiswaDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.MahasiswaDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.MahasiswaDetail, error)
	ExistsByNIM(ctx context.Context, nim string, excludeID string) (bool, error)
	Create(ctx context.Context, mahasiswa *models.Mahasiswa) error
	Update(ctx context.Context, mahasiswa *models.Mahasiswa) error
}

type prodiReader interface {
	FindByID(ctx context.Context, id string) (*models.Prodi, error)
}

type dosenReader interface {
	FindByID(ctx context.Context, id string) (*models.DosenDetail, error)
}

type accountReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateMahasiswaRequest binds a MAHASISWA-role account to a student
// profile.
type CreateMahasiswaRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	NIM         string `json:"nim" validate:"required"`
	ProdiID     string `json:"prodi_id" validate:"required"`
	DosenWaliID string `json:"dosen_wali_id"`
	Angkatan    int    `json:"angkatan" validate:"required,min=2000"`
}

// UpdateMahasiswaRequest payload for profile updates.
type UpdateMahasiswaRequest struct {
	ProdiID     string                 `json:"prodi_id" validate:"required"`
	DosenWaliID string                 `json:"dosen_wali_id"`
	Angkatan    int                    `json:"angkatan" validate:"required,min=2000"`
	Status      models.MahasiswaStatus `json:"status" validate:"required,oneof=AKTIF CUTI NON_AKTIF LULUS DO"`
}

// MahasiswaService manages student profiles.
type MahasiswaService struct {
	repo      mahasiswaRepository
	prodi     prodiReader
	dosen     dosenReader
	users     accountReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMahasiswaService constructs MahasiswaService.
func NewMahasiswaService(repo mahasiswaRepository, prodi prodiReader, dosen dosenReader, users accountReader, validate *validator.Validate, logger *zap.Logger) *MahasiswaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MahasiswaService{repo: repo, prodi: prodi, dosen: dosen, users: users, validator: validate, logger: logger}
}

// List returns student profiles with pagination metadata.
func (s *MahasiswaService) List(ctx context.Context, filter models.MahasiswaFilter) ([]models.MahasiswaDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mahasiswa")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one profile by ID.
func (s *MahasiswaService) Get(ctx context.Context, id string) (*models.MahasiswaDetail, error) {
	mhs, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mahasiswa not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mahasiswa")
	}
	return mhs, nil
}

// GetByUserID returns the profile attached to an account.
func (s *MahasiswaService) GetByUserID(ctx context.Context, userID string) (*models.MahasiswaDetail, error) {
	mhs, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mahasiswa profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mahasiswa")
	}
	return mhs, nil
}

// Create registers a student profile against an existing account.
func (s *MahasiswaService) Create(ctx context.Context, req CreateMahasiswaRequest) (*models.MahasiswaDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create mahasiswa payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleMahasiswa {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "account role must be MAHASISWA")
	}

	if _, err := s.repo.FindByUserID(ctx, req.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account already has a mahasiswa profile")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing profile")
	}

	exists, err := s.repo.ExistsByNIM(ctx, req.NIM, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check nim uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "nim already registered")
	}

	if _, err := s.prodi.FindByID(ctx, req.ProdiID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}

	mhs := &models.Mahasiswa{
		ID:       uuid.NewString(),
		UserID:   req.UserID,
		NIM:      req.NIM,
		ProdiID:  req.ProdiID,
		Angkatan: req.Angkatan,
		Status:   models.MahasiswaAktif,
	}
	if req.DosenWaliID != "" {
		if _, err := s.dosen.FindByID(ctx, req.DosenWaliID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "dosen wali not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dosen wali")
		}
		mhs.DosenWaliID = &req.DosenWaliID
	}

	if err := s.repo.Create(ctx, mhs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mahasiswa")
	}

	return s.Get(ctx, mhs.ID)
}

// Update modifies a student profile.
func (s *MahasiswaService) Update(ctx context.Context, id string, req UpdateMahasiswaRequest) (*models.MahasiswaDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update mahasiswa payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mahasiswa not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mahasiswa")
	}

	if _, err := s.prodi.FindByID(ctx, req.ProdiID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}

	mhs := existing.Mahasiswa
	mhs.ProdiID = req.ProdiID
	mhs.Angkatan = req.Angkatan
	mhs.Status = req.Status
	mhs.DosenWaliID = nil
	if req.DosenWaliID != "" {
		if _, err := s.dosen.FindByID(ctx, req.DosenWaliID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "dosen wali not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dosen wali")
		}
		mhs.DosenWaliID = &req.DosenWaliID
	}

	if err := s.repo.Update(ctx, &mhs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mahasiswa")
	}

	return s.Get(ctx, id)
}
