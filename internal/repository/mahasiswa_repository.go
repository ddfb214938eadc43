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

// MahasiswaRepository manages persistence for student profiles.
type MahasiswaRepository struct {
	db *sqlx.DB
}

// NewMahasiswaRepository constructs a MahasiswaRepository.
func NewMahasiswaRepository(db *sqlx.DB) *MahasiswaRepository {
	return &MahasiswaRepository{db: db}
}

const mahasiswaDetailColumns = `m.id, m.user_id, m.nim, m.prodi_id, m.dosen_wali_id, m.angkatan, m.status, m.created_at, m.updated_at,
        u.full_name, u.email, p.nama AS prodi_nama, uw.full_name AS dosen_wali_nama`

const mahasiswaDetailJoins = `FROM mahasiswa m
        JOIN users u ON u.id = m.user_id
        JOIN prodi p ON p.id = m.prodi_id
        LEFT JOIN dosen dw ON dw.id = m.dosen_wali_id
        LEFT JOIN users uw ON uw.id = dw.user_id`

// List returns students matching the provided filters.
func (r *MahasiswaRepository) List(ctx context.Context, filter models.MahasiswaFilter) ([]models.MahasiswaDetail, int, error) {
	base := mahasiswaDetailJoins
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.ProdiID != "" {
		conditions = append(conditions, fmt.Sprintf("m.prodi_id = $%d", len(args)+1))
		args = append(args, filter.ProdiID)
	}
	if filter.DosenWaliID != "" {
		conditions = append(conditions, fmt.Sprintf("m.dosen_wali_id = $%d", len(args)+1))
		args = append(args, filter.DosenWaliID)
	}
	if filter.Angkatan > 0 {
		conditions = append(conditions, fmt.Sprintf("m.angkatan = $%d", len(args)+1))
		args = append(args, filter.Angkatan)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(m.nim) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"nim":        "m.nim",
		"full_name":  "u.full_name",
		"angkatan":   "m.angkatan",
		"created_at": "m.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "m.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", mahasiswaDetailColumns, base, column, order, size, offset)

	var students []models.MahasiswaDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list mahasiswa: %w", err)
	}

	countQuery := "SELECT COUNT(m.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count mahasiswa: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *MahasiswaRepository) FindByID(ctx context.Context, id string) (*models.MahasiswaDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.id = $1", mahasiswaDetailColumns, mahasiswaDetailJoins)
	var detail models.MahasiswaDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID fetches the profile owned by the given account.
func (r *MahasiswaRepository) FindByUserID(ctx context.Context, userID string) (*models.MahasiswaDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE m.user_id = $1", mahasiswaDetailColumns, mahasiswaDetailJoins)
	var detail models.MahasiswaDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByNIM checks NIM uniqueness optionally excluding an ID.
func (r *MahasiswaRepository) ExistsByNIM(ctx context.Context, nim string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM mahasiswa WHERE nim = $1"
	args := []interface{}{nim}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check nim: %w", err)
	}
	return true, nil
}

// Create inserts a new student profile.
func (r *MahasiswaRepository) Create(ctx context.Context, mahasiswa *models.Mahasiswa) error {
	if mahasiswa.ID == "" {
		mahasiswa.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mahasiswa.CreatedAt.IsZero() {
		mahasiswa.CreatedAt = now
	}
	mahasiswa.UpdatedAt = now
	const query = `INSERT INTO mahasiswa (id, user_id, nim, prodi_id, dosen_wali_id, angkatan, status, created_at, updated_at)
        VALUES (:id, :user_id, :nim, :prodi_id, :dosen_wali_id, :angkatan, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mahasiswa); err != nil {
		return fmt.Errorf("create mahasiswa: %w", err)
	}
	return nil
}

// Update modifies a student profile.
func (r *MahasiswaRepository) Update(ctx context.Context, mahasiswa *models.Mahasiswa) error {
	mahasiswa.UpdatedAt = time.Now().UTC()
	const query = `UPDATE mahasiswa SET nim = :nim, prodi_id = :prodi_id, dosen_wali_id = :dosen_wali_id, angkatan = :angkatan, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, mahasiswa); err != nil {
		return fmt.Errorf("update mahasiswa: %w", err)
	}
	return nil
}

// Count returns the number of students, optionally only active ones.
func (r *MahasiswaRepository) Count(ctx context.Context, onlyActive bool) (int, error) {
	query := "SELECT COUNT(*) FROM mahasiswa"
	if onlyActive {
		query += " WHERE status = 'AKTIF'"
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count mahasiswa: %w", err)
	}
	return total, nil
}
