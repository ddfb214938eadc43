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

type kelasRepository interface {
	List(ctx context.Context, filter models.KelasMKFilter) ([]models.KelasMKDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error)
	HasRoomOverlap(ctx context.Context, semesterID, ruanganID string, hari int, jamMulai, jamSelesai, excludeID string) (bool, error)
	Create(ctx context.Context, kelas *models.KelasMK) error
	Update(ctx context.Context, kelas *models.KelasMK) error
	Delete(ctx context.Context, id string) error
	CountEnrollments(ctx context.Context, id string) (int, error)
	ListRuangan(ctx context.Context) ([]models.Ruangan, error)
	FindRuanganByID(ctx context.Context, id string) (*models.Ruangan, error)
	CreateRuangan(ctx context.Context, room *models.Ruangan) error
}

type mataKuliahReader interface {
	FindByID(ctx context.Context, id string) (*models.MataKuliah, error)
}

type semesterReader interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

// KelasRequest carries the schedule slot for one class offering.
type KelasRequest struct {
	MataKuliahID string `json:"mata_kuliah_id" validate:"required"`
	SemesterID   string `json:"semester_id" validate:"required"`
	DosenID      string `json:"dosen_id" validate:"required"`
	RuanganID    string `json:"ruangan_id" validate:"required"`
	NamaKelas    string `json:"nama_kelas" validate:"required"`
	Hari         int    `json:"hari" validate:"required,min=1,max=7"`
	JamMulai     string `json:"jam_mulai" validate:"required,len=5"`
	JamSelesai   string `json:"jam_selesai" validate:"required,len=5"`
	Kapasitas    int    `json:"kapasitas" validate:"required,min=1"`
}

// RuanganRequest payload for registering rooms.
type RuanganRequest struct {
	Kode      string `json:"kode" validate:"required"`
	Nama      string `json:"nama" validate:"required"`
	Kapasitas int    `json:"kapasitas" validate:"required,min=1"`
}

// KelasService manages class offerings and rooms.
type KelasService struct {
	repo      kelasRepository
	courses   mataKuliahReader
	dosen     dosenReader
	semesters semesterReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewKelasService constructs KelasService.
func NewKelasService(repo kelasRepository, courses mataKuliahReader, dosen dosenReader, semesters semesterReader, validate *validator.Validate, logger *zap.Logger) *KelasService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &KelasService{repo: repo, courses: courses, dosen: dosen, semesters: semesters, validator: validate, logger: logger}
}

// List returns class offerings with pagination metadata.
func (s *KelasService) List(ctx context.Context, filter models.KelasMKFilter) ([]models.KelasMKDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list kelas")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one class offering.
func (s *KelasService) Get(ctx context.Context, id string) (*models.KelasMKDetail, error) {
	kelas, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}
	return kelas, nil
}

// Create schedules a new class offering. A room/time overlap within the
// same semester is rejected outright.
func (s *KelasService) Create(ctx context.Context, req KelasRequest) (*models.KelasMKDetail, error) {
	if err := s.validateSlot(ctx, req); err != nil {
		return nil, err
	}

	overlap, err := s.repo.HasRoomOverlap(ctx, req.SemesterID, req.RuanganID, req.Hari, req.JamMulai, req.JamSelesai, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ruangan already booked for an overlapping slot")
	}

	kelas := &models.KelasMK{
		ID:           uuid.NewString(),
		MataKuliahID: req.MataKuliahID,
		SemesterID:   req.SemesterID,
		DosenID:      req.DosenID,
		RuanganID:    req.RuanganID,
		NamaKelas:    req.NamaKelas,
		Hari:         req.Hari,
		JamMulai:     req.JamMulai,
		JamSelesai:   req.JamSelesai,
		Kapasitas:    req.Kapasitas,
	}
	if err := s.repo.Create(ctx, kelas); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create kelas")
	}

	return s.Get(ctx, kelas.ID)
}

// Update reschedules a class offering. Capacity may not drop below the
// seats already claimed.
func (s *KelasService) Update(ctx context.Context, id string, req KelasRequest) (*models.KelasMKDetail, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}

	if err := s.validateSlot(ctx, req); err != nil {
		return nil, err
	}

	overlap, err := s.repo.HasRoomOverlap(ctx, req.SemesterID, req.RuanganID, req.Hari, req.JamMulai, req.JamSelesai, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ruangan already booked for an overlapping slot")
	}

	enrolled, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if req.Kapasitas < enrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "kapasitas below current enrollment")
	}

	kelas := existing.KelasMK
	kelas.MataKuliahID = req.MataKuliahID
	kelas.SemesterID = req.SemesterID
	kelas.DosenID = req.DosenID
	kelas.RuanganID = req.RuanganID
	kelas.NamaKelas = req.NamaKelas
	kelas.Hari = req.Hari
	kelas.JamMulai = req.JamMulai
	kelas.JamSelesai = req.JamSelesai
	kelas.Kapasitas = req.Kapasitas

	if err := s.repo.Update(ctx, &kelas); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update kelas")
	}

	return s.Get(ctx, id)
}

// Delete removes an offering, but only while no sheet references it.
func (s *KelasService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kelas")
	}

	enrolled, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if enrolled > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "kelas has enrolled students")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete kelas")
	}
	return nil
}

// ListRuangan returns every registered room.
func (s *KelasService) ListRuangan(ctx context.Context) ([]models.Ruangan, error) {
	rooms, err := s.repo.ListRuangan(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ruangan")
	}
	return rooms, nil
}

// CreateRuangan registers a room.
func (s *KelasService) CreateRuangan(ctx context.Context, req RuanganRequest) (*models.Ruangan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ruangan payload")
	}
	room := &models.Ruangan{
		ID:        uuid.NewString(),
		Kode:      req.Kode,
		Nama:      req.Nama,
		Kapasitas: req.Kapasitas,
	}
	if err := s.repo.CreateRuangan(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create ruangan")
	}
	return room, nil
}

func (s *KelasService) validateSlot(ctx context.Context, req KelasRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid kelas payload")
	}
	if req.JamMulai >= req.JamSelesai {
		return appErrors.WithFields("invalid time slot", map[string]string{"jam_selesai": "must be after jam_mulai"})
	}

	if _, err := s.courses.FindByID(ctx, req.MataKuliahID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mata kuliah not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mata kuliah")
	}
	if _, err := s.semesters.FindByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	if _, err := s.dosen.FindByID(ctx, req.DosenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "dosen not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dosen")
	}
	if _, err := s.repo.FindRuanganByID(ctx, req.RuanganID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "ruangan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ruangan")
	}
	return nil
}
