package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type materiRepository interface {
	List(ctx context.Context, filter models.MateriFilter) ([]models.Materi, error)
	FindByID(ctx context.Context, id string) (*models.Materi, error)
	Create(ctx context.Context, materi *models.Materi) error
	Delete(ctx context.Context, id string) error
}

type materiStorage interface {
	SaveStream(relPath string, r io.Reader) (string, error)
	Open(relPath string) (io.ReadCloser, error)
	Delete(relPath string) error
}

type downloadSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string) (resourceID, relPath string, expiresAt time.Time, err error)
}

// UploadMateriRequest stores one course document.
type UploadMateriRequest struct {
	Jenis     models.MateriJenis `json:"jenis" form:"jenis" validate:"required,oneof=RPS RPP MATERI"`
	Judul     string             `json:"judul" form:"judul" validate:"required"`
	Pertemuan *int               `json:"pertemuan" form:"pertemuan" validate:"omitempty,min=1,max=16"`
	FileName  string             `json:"-"`
	File      io.Reader          `json:"-"`
}

// MateriService manages course documents and signed downloads.
type MateriService struct {
	repo       materiRepository
	storage    materiStorage
	signer     downloadSigner
	kelas      kelasReader
	enrollment enrollmentChecker
	validator  *validator.Validate
	logger     *zap.Logger
	baseURL    string
}

// NewMateriService constructs MateriService. baseURL prefixes generated
// download links.
func NewMateriService(repo materiRepository, storage materiStorage, signer downloadSigner, kelas kelasReader, enrollment enrollmentChecker, validate *validator.Validate, logger *zap.Logger, baseURL string) *MateriService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MateriService{repo: repo, storage: storage, signer: signer, kelas: kelas, enrollment: enrollment, validator: validate, logger: logger, baseURL: baseURL}
}

// List returns documents for a class.
func (s *MateriService) List(ctx context.Context, filter models.MateriFilter) ([]models.Materi, error) {
	docs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materi")
	}
	return docs, nil
}

// Upload stores a document for a class. Only the owning dosen may
// upload; weekly materials carry a meeting number, RPS/RPP do not.
func (s *MateriService) Upload(ctx context.Context, kelasID string, req UploadMateriRequest, actor *models.CurrentUser) (*models.Materi, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid materi payload")
	}
	if req.File == nil || req.FileName == "" {
		return nil, appErrors.WithFields("materi file is required", map[string]string{"file": "required"})
	}
	if req.Jenis == models.MateriMateri && req.Pertemuan == nil {
		return nil, appErrors.WithFields("pertemuan is required for weekly materi", map[string]string{"pertemuan": "required"})
	}

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

	id := uuid.NewString()
	relPath := filepath.Join("materi", kelasID, id+filepath.Ext(req.FileName))
	storedPath, err := s.storage.SaveStream(relPath, req.File)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store materi file")
	}

	materi := &models.Materi{
		ID:         id,
		KelasMKID:  kelasID,
		Jenis:      req.Jenis,
		Judul:      req.Judul,
		Pertemuan:  req.Pertemuan,
		FilePath:   storedPath,
		FileName:   req.FileName,
		UploadedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, materi); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create materi")
	}

	return materi, nil
}

// Delete removes a document and its stored file.
func (s *MateriService) Delete(ctx context.Context, id string, actor *models.CurrentUser) error {
	materi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "materi not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load materi")
	}

	kelas, err := s.kelas.FindByID(ctx, materi.KelasMKID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}
	if actor.Role == models.RoleDosen && kelas != nil && kelas.DosenID != actor.ProfileID {
		return appErrors.Clone(appErrors.ErrForbidden, "kelas belongs to another dosen")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete materi")
	}
	if err := s.storage.Delete(materi.FilePath); err != nil {
		s.logger.Warn("failed to remove materi file", zap.Error(err), zap.String("materi_id", id))
	}
	return nil
}

// SignDownload issues a time-limited download URL. Enrolled students,
// the owning dosen, and admins qualify.
func (s *MateriService) SignDownload(ctx context.Context, id string, actor *models.CurrentUser) (*models.MateriDownload, error) {
	materi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "materi not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load materi")
	}

	switch actor.Role {
	case models.RoleMahasiswa:
		if _, err := s.enrollment.FindKRSDetail(ctx, materi.KelasMKID, actor.ProfileID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this kelas")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
		}
	case models.RoleDosen:
		kelas, err := s.kelas.FindByID(ctx, materi.KelasMKID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
		}
		if kelas.DosenID != actor.ProfileID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "kelas belongs to another dosen")
		}
	}

	token, expiresAt, err := s.signer.Generate(materi.ID, materi.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	return &models.MateriDownload{
		MateriID:  materi.ID,
		FileName:  materi.FileName,
		URL:       s.baseURL + "/api/v1/materi/download?token=" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// OpenSigned validates a signed token and streams the file it points to.
func (s *MateriService) OpenSigned(ctx context.Context, token string) (io.ReadCloser, string, error) {
	materiID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}

	materi, err := s.repo.FindByID(ctx, materiID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "materi not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load materi")
	}
	if materi.FilePath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "download token does not match materi")
	}

	rc, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open materi file")
	}
	return rc, materi.FileName, nil
}
