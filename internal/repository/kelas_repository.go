package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stikom-adp/siakad-api/internal/models"
)

// KelasRepository manages persistence for class offerings and rooms.
type KelasRepository struct {
	db *sqlx.DB
}

// NewKelasRepository constructs a KelasRepository.
func NewKelasRepository(db *sqlx.DB) *KelasRepository {
	return &KelasRepository{db: db}
}

const kelasDetailColumns = `k.id, k.mata_kuliah_id, k.semester_id, k.dosen_id, k.ruangan_id, k.nama_kelas,
        k.hari, k.jam_mulai, k.jam_selesai, k.kapasitas, k.nilai_locked, k.created_at, k.updated_at,
        mk.kode_mk, mk.nama AS nama_mk, mk.sks, u.full_name AS dosen_nama, r.kode AS ruangan_kode,
        (SELECT COUNT(*) FROM krs_detail kd JOIN krs ON krs.id = kd.krs_id
         WHERE kd.kelas_mk_id = k.id AND krs.status IN ('PENDING', 'APPROVED')) AS terisi`

const kelasDetailJoins = `FROM kelas_mk k
        JOIN mata_kuliah mk ON mk.id = k.mata_kuliah_id
        JOIN dosen d ON d.id = k.dosen_id
        JOIN users u ON u.id = d.user_id
        JOIN ruangan r ON r.id = k.ruangan_id`

// List returns class offerings matching the provided filters.
func (r *KelasRepository) List(ctx context.Context, filter models.KelasMKFilter) ([]models.KelasMKDetail, int, error) {
	base := kelasDetailJoins
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("k.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.MataKuliahID != "" {
		conditions = append(conditions, fmt.Sprintf("k.mata_kuliah_id = $%d", len(args)+1))
		args = append(args, filter.MataKuliahID)
	}
	if filter.DosenID != "" {
		conditions = append(conditions, fmt.Sprintf("k.dosen_id = $%d", len(args)+1))
		args = append(args, filter.DosenID)
	}
	if filter.RuanganID != "" {
		conditions = append(conditions, fmt.Sprintf("k.ruangan_id = $%d", len(args)+1))
		args = append(args, filter.RuanganID)
	}
	if filter.Hari > 0 {
		conditions = append(conditions, fmt.Sprintf("k.hari = $%d", len(args)+1))
		args = append(args, filter.Hari)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(mk.nama) LIKE $%d OR LOWER(mk.kode_mk) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"kode_mk":    "mk.kode_mk",
		"nama_mk":    "mk.nama",
		"hari":       "k.hari",
		"created_at": "k.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "mk.kode_mk"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", kelasDetailColumns, base, column, order, size, offset)

	var classes []models.KelasMKDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list kelas: %w", err)
	}

	countQuery := "SELECT COUNT(k.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count kelas: %w", err)
	}
	return classes, total, nil
}

// FindByID fetches a class offering detail by ID.
func (r *KelasRepository) FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE k.id = $1", kelasDetailColumns, kelasDetailJoins)
	var detail models.KelasMKDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// HasRoomOverlap reports whether another offering in the same semester
// already claims the room on the same day with an intersecting time
// window. Touching endpoints do not count as overlap.
func (r *KelasRepository) HasRoomOverlap(ctx context.Context, semesterID, ruanganID string, hari int, jamMulai, jamSelesai, excludeID string) (bool, error) {
	query := `SELECT 1 FROM kelas_mk
        WHERE semester_id = $1 AND ruangan_id = $2 AND hari = $3
          AND jam_mulai < $5 AND jam_selesai > $4`
	args := []interface{}{semesterID, ruanganID, hari, jamMulai, jamSelesai}
	if excludeID != "" {
		query += " AND id <> $6"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room overlap: %w", err)
	}
	return true, nil
}

// Create inserts a new class offering.
func (r *KelasRepository) Create(ctx context.Context, kelas *models.KelasMK) error {
	if kelas.ID == "" {
		kelas.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if kelas.CreatedAt.IsZero() {
		kelas.CreatedAt = now
	}
	kelas.UpdatedAt = now
	const query = `INSERT INTO kelas_mk (id, mata_kuliah_id, semester_id, dosen_id, ruangan_id, nama_kelas, hari, jam_mulai, jam_selesai, kapasitas, nilai_locked, created_at, updated_at)
        VALUES (:id, :mata_kuliah_id, :semester_id, :dosen_id, :ruangan_id, :nama_kelas, :hari, :jam_mulai, :jam_selesai, :kapasitas, :nilai_locked, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, kelas); err != nil {
		return fmt.Errorf("create kelas: %w", err)
	}
	return nil
}

// Update modifies a class offering.
func (r *KelasRepository) Update(ctx context.Context, kelas *models.KelasMK) error {
	kelas.UpdatedAt = time.Now().UTC()
	const query = `UPDATE kelas_mk SET dosen_id = :dosen_id, ruangan_id = :ruangan_id, nama_kelas = :nama_kelas, hari = :hari, jam_mulai = :jam_mulai, jam_selesai = :jam_selesai, kapasitas = :kapasitas, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, kelas); err != nil {
		return fmt.Errorf("update kelas: %w", err)
	}
	return nil
}

// Delete removes a class offering that has no enrollments yet.
func (r *KelasRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kelas_mk WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete kelas: %w", err)
	}
	return nil
}

// CountEnrollments counts detail rows referencing the class.
func (r *KelasRepository) CountEnrollments(ctx context.Context, id string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM krs_detail WHERE kelas_mk_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count kelas enrollments: %w", err)
	}
	return total, nil
}

// SetNilaiLocked flips the grade lock flag for the class. The lock is
// one-way in the service layer; the repository just persists the flag.
func (r *KelasRepository) SetNilaiLocked(ctx context.Context, id string, locked bool) error {
	const query = `UPDATE kelas_mk SET nilai_locked = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, locked, time.Now().UTC()); err != nil {
		return fmt.Errorf("set nilai lock: %w", err)
	}
	return nil
}

// CountBySemester counts offerings in a semester.
func (r *KelasRepository) CountBySemester(ctx context.Context, semesterID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM kelas_mk WHERE semester_id = $1`, semesterID); err != nil {
		return 0, fmt.Errorf("count kelas by semester: %w", err)
	}
	return total, nil
}

// CountByDosen counts offerings taught by a lecturer in a semester.
func (r *KelasRepository) CountByDosen(ctx context.Context, dosenID, semesterID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM kelas_mk WHERE dosen_id = $1 AND semester_id = $2`, dosenID, semesterID); err != nil {
		return 0, fmt.Errorf("count kelas by dosen: %w", err)
	}
	return total, nil
}

// ListRuangan returns all rooms ordered by code.
func (r *KelasRepository) ListRuangan(ctx context.Context) ([]models.Ruangan, error) {
	const query = `SELECT id, kode, nama, kapasitas, created_at, updated_at FROM ruangan ORDER BY kode ASC`
	var rooms []models.Ruangan
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list ruangan: %w", err)
	}
	return rooms, nil
}

// FindRuanganByID fetches a room by ID.
func (r *KelasRepository) FindRuanganByID(ctx context.Context, id string) (*models.Ruangan, error) {
	const query = `SELECT id, kode, nama, kapasitas, created_at, updated_at FROM ruangan WHERE id = $1`
	var room models.Ruangan
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateRuangan inserts a new room.
func (r *KelasRepository) CreateRuangan(ctx context.Context, room *models.Ruangan) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	const query = `INSERT INTO ruangan (id, kode, nama, kapasitas, created_at, updated_at)
        VALUES (:id, :kode, :nama, :kapasitas, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create ruangan: %w", err)
	}
	return nil
}
