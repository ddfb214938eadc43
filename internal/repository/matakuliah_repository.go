package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stikom-adp/siakad-api/internal/models"
)

// MataKuliahRepository manages persistence for the course catalog.
type MataKuliahRepository struct {
	db *sqlx.DB
}

// NewMataKuliahRepository constructs a MataKuliahRepository.
func NewMataKuliahRepository(db *sqlx.DB) *MataKuliahRepository {
	return &MataKuliahRepository{db: db}
}

const mataKuliahColumns = `id, kode_mk, nama, sks, semester_ideal, prodi_id, lintas_prodi, aktif, created_at, updated_at`

// List returns catalog entries matching the provided filters.
func (r *MataKuliahRepository) List(ctx context.Context, filter models.MataKuliahFilter) ([]models.MataKuliah, int, error) {
	base := "FROM mata_kuliah WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProdiID != "" {
		conditions = append(conditions, fmt.Sprintf("(prodi_id = $%d OR lintas_prodi = true)", len(args)+1))
		args = append(args, filter.ProdiID)
	}
	if filter.SemesterIdeal > 0 {
		conditions = append(conditions, fmt.Sprintf("semester_ideal = $%d", len(args)+1))
		args = append(args, filter.SemesterIdeal)
	}
	if filter.Aktif != nil {
		conditions = append(conditions, fmt.Sprintf("aktif = $%d", len(args)+1))
		args = append(args, *filter.Aktif)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(nama) LIKE $%d OR LOWER(kode_mk) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"kode_mk":        true,
		"nama":           true,
		"sks":            true,
		"semester_ideal": true,
		"created_at":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "kode_mk"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", mataKuliahColumns, base, sortBy, order, size, offset)

	var courses []models.MataKuliah
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list mata kuliah: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count mata kuliah: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a catalog entry by ID.
func (r *MataKuliahRepository) FindByID(ctx context.Context, id string) (*models.MataKuliah, error) {
	query := fmt.Sprintf("SELECT %s FROM mata_kuliah WHERE id = $1", mataKuliahColumns)
	var mk models.MataKuliah
	if err := r.db.GetContext(ctx, &mk, query, id); err != nil {
		return nil, err
	}
	return &mk, nil
}

// FindByKode fetches a catalog entry by its natural key.
func (r *MataKuliahRepository) FindByKode(ctx context.Context, kodeMK string) (*models.MataKuliah, error) {
	query := fmt.Sprintf("SELECT %s FROM mata_kuliah WHERE kode_mk = $1", mataKuliahColumns)
	var mk models.MataKuliah
	if err := r.db.GetContext(ctx, &mk, query, kodeMK); err != nil {
		return nil, err
	}
	return &mk, nil
}

// UpsertByKode inserts the course or updates the row already holding its
// kode_mk. Resubmitting identical fields leaves the row unchanged, so the
// operation is idempotent and can never create a duplicate.
func (r *MataKuliahRepository) UpsertByKode(ctx context.Context, mk *models.MataKuliah) error {
	if mk.ID == "" {
		mk.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mk.CreatedAt.IsZero() {
		mk.CreatedAt = now
	}
	mk.UpdatedAt = now
	const query = `INSERT INTO mata_kuliah (id, kode_mk, nama, sks, semester_ideal, prodi_id, lintas_prodi, aktif, created_at, updated_at)
        VALUES (:id, :kode_mk, :nama, :sks, :semester_ideal, :prodi_id, :lintas_prodi, :aktif, :created_at, :updated_at)
        ON CONFLICT (kode_mk) DO UPDATE SET
            nama = EXCLUDED.nama,
            sks = EXCLUDED.sks,
            semester_ideal = EXCLUDED.semester_ideal,
            prodi_id = EXCLUDED.prodi_id,
            lintas_prodi = EXCLUDED.lintas_prodi,
            aktif = EXCLUDED.aktif,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mk); err != nil {
		return fmt.Errorf("upsert mata kuliah: %w", err)
	}
	return nil
}

// Deactivate marks a catalog entry inactive. Catalog rows are never
// hard-deleted because class offerings reference them.
func (r *MataKuliahRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE mata_kuliah SET aktif = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate mata kuliah: %w", err)
	}
	return nil
}
