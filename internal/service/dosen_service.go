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

type dosenRepository interface {
	List(ctx context.Context, filter models.DosenFilter) ([]models.DosenDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.DosenDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.DosenDetail, error)
	ExistsByNIDN(ctx context.Context, nidn string, excludeID string) (bool, error)
	Create(ctx context.Context, dosen *models.Dosen) error
	Update(ctx context.Context, dosen *models.Dosen) error
}

// CreateDosenRequest binds a DOSEN-role account to a lecturer profile.
type CreateDosenRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	NIDN    string `json:"nidn" validate:"required"`
	ProdiID string `json:"prodi_id" validate:"required"`
}

// UpdateDosenRequest payload for profile updates.
type UpdateDosenRequest struct {
	ProdiID string `json:"prodi_id" validate:"required"`
}

// DosenService manages lecturer profiles.
type DosenService struct {
	repo      dosenRepository
	prodi     prodiReader
	users     accountReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDosenService constructs DosenService.
func NewDosenService(repo dosenRepository, prodi prodiReader, users accountReader, validate *validator.Validate, logger *zap.Logger) *DosenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DosenService{repo: repo, prodi: prodi, users: users, validator: validate, logger: logger}
}

// List returns lecturer profiles with pagination metadata.
func (s *DosenService) List(ctx context.Context, filter models.DosenFilter) ([]models.DosenDetail, *models.Pagination, error) {
	lecturers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list dosen")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return lecturers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one profile by ID.
func (s *DosenService) Get(ctx context.Context, id string) (*models.DosenDetail, error) {
	dosen, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dosen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dosen")
	}
	return dosen, nil
}

// GetByUserID returns the profile attached to an account.
func (s *DosenService) GetByUserID(ctx context.Context, userID string) (*models.DosenDetail, error) {
	dosen, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dosen profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dosen")
	}
	return dosen, nil
}

// Create registers a lecturer profile against an existing account.
func (s *DosenService) Create(ctx context.Context, req CreateDosenRequest) (*models.DosenDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create dosen payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleDosen {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "account role must be DOSEN")
	}

	if _, err := s.repo.FindByUserID(ctx, req.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "account already has a dosen profile")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing profile")
	}

	exists, err := s.repo.ExistsByNIDN(ctx, req.NIDN, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check nidn uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "nidn already registered")
	}

	if _, err := s.prodi.FindByID(ctx, req.ProdiID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}

	dosen := &models.Dosen{
		ID:      uuid.NewString(),
		UserID:  req.UserID,
		NIDN:    req.NIDN,
		ProdiID: req.ProdiID,
	}
	if err := s.repo.Create(ctx, dosen); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create dosen")
	}

	return s.Get(ctx, dosen.ID)
}

// Update modifies a lecturer profile.
func (s *DosenService) Update(ctx context.Context, id string, req UpdateDosenRequest) (*models.DosenDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update dosen payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "dosen not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dosen")
	}

	if _, err := s.prodi.FindByID(ctx, req.ProdiID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prodi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prodi")
	}

	dosen := existing.Dosen
	dosen.ProdiID = req.ProdiID
	if err := s.repo.Update(ctx, &dosen); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update dosen")
	}

	return s.Get(ctx, id)
}
