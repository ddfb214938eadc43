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

// DosenRepository manages persistence for lecturer profiles.
type DosenRepository struct {
	db *sqlx.DB
}

// NewDosenRepository constructs a DosenRepository.
func NewDosenRepository(db *sqlx.DB) *DosenRepository {
	return &DosenRepository{db: db}
}

const dosenDetailColumns = `d.id, d.user_id, d.nidn, d.prodi_id, d.created_at, d.updated_at,
        u.full_name, u.email, p.nama AS prodi_nama`

const dosenDetailJoins = `FROM dosen d
        JOIN users u ON u.id = d.user_id
        JOIN prodi p ON p.id = d.prodi_id`

// List returns lecturers matching the provided filters.
func (r *DosenRepository) List(ctx context.Context, filter models.DosenFilter) ([]models.DosenDetail, int, error) {
	base := dosenDetailJoins
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.ProdiID != "" {
		conditions = append(conditions, fmt.Sprintf("d.prodi_id = $%d", len(args)+1))
		args = append(args, filter.ProdiID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(d.nidn) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"nidn":       "d.nidn",
		"full_name":  "u.full_name",
		"created_at": "d.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "d.created_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", dosenDetailColumns, base, column, order, size, offset)

	var lecturers []models.DosenDetail
	if err := r.db.SelectContext(ctx, &lecturers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list dosen: %w", err)
	}

	countQuery := "SELECT COUNT(d.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count dosen: %w", err)
	}
	return lecturers, total, nil
}

// FindByID fetches a lecturer detail by ID.
func (r *DosenRepository) FindByID(ctx context.Context, id string) (*models.DosenDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE d.id = $1", dosenDetailColumns, dosenDetailJoins)
	var detail models.DosenDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID fetches the profile owned by the given account.
func (r *DosenRepository) FindByUserID(ctx context.Context, userID string) (*models.DosenDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE d.user_id = $1", dosenDetailColumns, dosenDetailJoins)
	var detail models.DosenDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByNIDN checks NIDN uniqueness optionally excluding an ID.
func (r *DosenRepository) ExistsByNIDN(ctx context.Context, nidn string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM dosen WHERE nidn = $1"
	args := []interface{}{nidn}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check nidn: %w", err)
	}
	return true, nil
}

// Create inserts a new lecturer profile.
func (r *DosenRepository) Create(ctx context.Context, dosen *models.Dosen) error {
	if dosen.ID == "" {
		dosen.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if dosen.CreatedAt.IsZero() {
		dosen.CreatedAt = now
	}
	dosen.UpdatedAt = now
	const query = `INSERT INTO dosen (id, user_id, nidn, prodi_id, created_at, updated_at)
        VALUES (:id, :user_id, :nidn, :prodi_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, dosen); err != nil {
		return fmt.Errorf("create dosen: %w", err)
	}
	return nil
}

// Update modifies a lecturer profile.
func (r *DosenRepository) Update(ctx context.Context, dosen *models.Dosen) error {
	dosen.UpdatedAt = time.Now().UTC()
	const query = `UPDATE dosen SET nidn = :nidn, prodi_id = :prodi_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, dosen); err != nil {
		return fmt.Errorf("update dosen: %w", err)
	}
	return nil
}

// Count returns the number of lecturers.
func (r *DosenRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM dosen"); err != nil {
		return 0, fmt.Errorf("count dosen: %w", err)
	}
	return total, nil
}
