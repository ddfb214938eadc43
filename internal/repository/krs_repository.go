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

// KRSRepository manages persistence for course-selection sheets.
type KRSRepository struct {
	db *sqlx.DB
}

// NewKRSRepository constructs a KRSRepository.
func NewKRSRepository(db *sqlx.DB) *KRSRepository {
	return &KRSRepository{db: db}
}

const krsViewColumns = `k.id, k.mahasiswa_id, k.semester_id, k.status, k.submitted_at, k.decided_at, k.decided_by, k.catatan, k.created_at, k.updated_at,
        u.full_name AS mahasiswa_nama, m.nim,
        COALESCE((SELECT SUM(mk.sks) FROM krs_detail kd
            JOIN kelas_mk kls ON kls.id = kd.kelas_mk_id
            JOIN mata_kuliah mk ON mk.id = kls.mata_kuliah_id
            WHERE kd.krs_id = k.id), 0) AS total_sks`

const krsViewJoins = `FROM krs k
        JOIN mahasiswa m ON m.id = k.mahasiswa_id
        JOIN users u ON u.id = m.user_id`

// List returns KRS sheets matching the provided filters.
func (r *KRSRepository) List(ctx context.Context, filter models.KRSFilter) ([]models.KRSView, int, error) {
	base := krsViewJoins
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.MahasiswaID != "" {
		conditions = append(conditions, fmt.Sprintf("k.mahasiswa_id = $%d", len(args)+1))
		args = append(args, filter.MahasiswaID)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("k.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("k.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"nim":          "m.nim",
		"status":       "k.status",
		"submitted_at": "k.submitted_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "k.submitted_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", krsViewColumns, base, column, order, size, offset)

	var sheets []models.KRSView
	if err := r.db.SelectContext(ctx, &sheets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list krs: %w", err)
	}

	countQuery := "SELECT COUNT(k.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count krs: %w", err)
	}
	return sheets, total, nil
}

// FindByID fetches a KRS with its detail rows.
func (r *KRSRepository) FindByID(ctx context.Context, id string) (*models.KRSView, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE k.id = $1", krsViewColumns, krsViewJoins)
	var view models.KRSView
	if err := r.db.GetContext(ctx, &view, query, id); err != nil {
		return nil, err
	}

	details, err := r.ListDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Details = details
	return &view, nil
}

// FindByMahasiswaSemester fetches the sheet for one student and semester.
func (r *KRSRepository) FindByMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (*models.KRSView, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE k.mahasiswa_id = $1 AND k.semester_id = $2", krsViewColumns, krsViewJoins)
	var view models.KRSView
	if err := r.db.GetContext(ctx, &view, query, mahasiswaID, semesterID); err != nil {
		return nil, err
	}

	details, err := r.ListDetails(ctx, view.ID)
	if err != nil {
		return nil, err
	}
	view.Details = details
	return &view, nil
}

// ListDetails returns the detail rows for a sheet.
func (r *KRSRepository) ListDetails(ctx context.Context, krsID string) ([]models.KRSDetailRow, error) {
	const query = `SELECT kd.id, kd.krs_id, kd.kelas_mk_id, kd.created_at,
        mk.kode_mk, mk.nama AS nama_mk, mk.sks, kls.nama_kelas, u.full_name AS dosen_nama,
        kls.hari, kls.jam_mulai, kls.jam_selesai
        FROM krs_detail kd
        JOIN kelas_mk kls ON kls.id = kd.kelas_mk_id
        JOIN mata_kuliah mk ON mk.id = kls.mata_kuliah_id
        JOIN dosen d ON d.id = kls.dosen_id
        JOIN users u ON u.id = d.user_id
        WHERE kd.krs_id = $1
        ORDER BY mk.kode_mk ASC`
	var details []models.KRSDetailRow
	if err := r.db.SelectContext(ctx, &details, query, krsID); err != nil {
		return nil, fmt.Errorf("list krs details: %w", err)
	}
	return details, nil
}

// ExistsForMahasiswaSemester checks whether the student already holds a
// sheet for the semester.
func (r *KRSRepository) ExistsForMahasiswaSemester(ctx context.Context, mahasiswaID, semesterID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM krs WHERE mahasiswa_id = $1 AND semester_id = $2 LIMIT 1`, mahasiswaID, semesterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check krs existence: %w", err)
	}
	return true, nil
}

// CreateWithDetails inserts a KRS and its detail rows atomically. A
// failure at any point persists nothing.
func (r *KRSRepository) CreateWithDetails(ctx context.Context, krs *models.KRS, kelasIDs []string) (err error) {
	if krs.ID == "" {
		krs.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if krs.CreatedAt.IsZero() {
		krs.CreatedAt = now
	}
	krs.UpdatedAt = now
	if krs.SubmittedAt.IsZero() {
		krs.SubmittedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin krs tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const krsQuery = `INSERT INTO krs (id, mahasiswa_id, semester_id, status, submitted_at, catatan, created_at, updated_at)
        VALUES (:id, :mahasiswa_id, :semester_id, :status, :submitted_at, :catatan, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, krsQuery, krs); err != nil {
		return fmt.Errorf("create krs: %w", err)
	}

	const detailQuery = `INSERT INTO krs_detail (id, krs_id, kelas_mk_id, created_at) VALUES ($1, $2, $3, $4)`
	for _, kelasID := range kelasIDs {
		if _, err = tx.ExecContext(ctx, detailQuery, uuid.NewString(), krs.ID, kelasID, now); err != nil {
			return fmt.Errorf("create krs detail: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit krs tx: %w", err)
	}
	return nil
}

// AddDetail appends one class to a sheet.
func (r *KRSRepository) AddDetail(ctx context.Context, krsID, kelasID string) error {
	const query = `INSERT INTO krs_detail (id, krs_id, kelas_mk_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), krsID, kelasID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add krs detail: %w", err)
	}
	return nil
}

// RemoveDetail drops one class from a sheet.
func (r *KRSRepository) RemoveDetail(ctx context.Context, krsID, kelasID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM krs_detail WHERE krs_id = $1 AND kelas_mk_id = $2`, krsID, kelasID); err != nil {
		return fmt.Errorf("remove krs detail: %w", err)
	}
	return nil
}

// HasDetail reports whether the sheet already lists the class.
func (r *KRSRepository) HasDetail(ctx context.Context, krsID, kelasID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM krs_detail WHERE krs_id = $1 AND kelas_mk_id = $2 LIMIT 1`, krsID, kelasID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check krs detail: %w", err)
	}
	return true, nil
}

// CountSeats counts seats already claimed on a class by pending or
// approved sheets.
func (r *KRSRepository) CountSeats(ctx context.Context, kelasID string) (int, error) {
	const query = `SELECT COUNT(*) FROM krs_detail kd
        JOIN krs k ON k.id = kd.krs_id
        WHERE kd.kelas_mk_id = $1 AND k.status IN ('PENDING', 'APPROVED')`
	var total int
	if err := r.db.GetContext(ctx, &total, query, kelasID); err != nil {
		return 0, fmt.Errorf("count kelas seats: %w", err)
	}
	return total, nil
}

// Decide moves a PENDING sheet to its final status. The conditional
// WHERE keeps decided sheets immutable; callers treat zero affected rows
// as a conflict.
func (r *KRSRepository) Decide(ctx context.Context, id string, status models.KRSStatus, decidedBy string, catatan string) (bool, error) {
	const query = `UPDATE krs SET status = $2, decided_at = $3, decided_by = $4, catatan = $5, updated_at = $3
        WHERE id = $1 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC(), decidedBy, catatan)
	if err != nil {
		return false, fmt.Errorf("decide krs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide krs affected: %w", err)
	}
	return affected > 0, nil
}

// CountPendingBySemester counts undecided sheets in a semester.
func (r *KRSRepository) CountPendingBySemester(ctx context.Context, semesterID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM krs WHERE semester_id = $1 AND status = 'PENDING'`, semesterID); err != nil {
		return 0, fmt.Errorf("count pending krs: %w", err)
	}
	return total, nil
}
