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

// PembayaranRepository manages payment records.
type PembayaranRepository struct {
	db *sqlx.DB
}

// NewPembayaranRepository constructs a PembayaranRepository.
func NewPembayaranRepository(db *sqlx.DB) *PembayaranRepository {
	return &PembayaranRepository{db: db}
}

const pembayaranColumns = `p.id, p.mahasiswa_id, p.semester_id, p.jenis, p.jumlah, p.bukti_path, p.status,
        p.uploaded_at, p.verified_at, p.verified_by, p.catatan, p.created_at, p.updated_at,
        m.nim, u.full_name AS mahasiswa_nama`

const pembayaranJoins = `FROM pembayaran p
        JOIN mahasiswa m ON m.id = p.mahasiswa_id
        JOIN users u ON u.id = m.user_id`

// List returns payments matching the provided filters.
func (r *PembayaranRepository) List(ctx context.Context, filter models.PembayaranFilter) ([]models.PembayaranDetail, int, error) {
	base := pembayaranJoins
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.MahasiswaID != "" {
		conditions = append(conditions, fmt.Sprintf("p.mahasiswa_id = $%d", len(args)+1))
		args = append(args, filter.MahasiswaID)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("p.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Jenis != "" {
		conditions = append(conditions, fmt.Sprintf("p.jenis = $%d", len(args)+1))
		args = append(args, filter.Jenis)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"uploaded_at": "p.uploaded_at",
		"jumlah":      "p.jumlah",
		"status":      "p.status",
		"nim":         "m.nim",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "p.uploaded_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", pembayaranColumns, base, column, order, size, offset)

	var payments []models.PembayaranDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list pembayaran: %w", err)
	}

	countQuery := "SELECT COUNT(p.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count pembayaran: %w", err)
	}
	return payments, total, nil
}

// FindByID fetches one payment with student display fields.
func (r *PembayaranRepository) FindByID(ctx context.Context, id string) (*models.PembayaranDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE p.id = $1", pembayaranColumns, pembayaranJoins)
	var payment models.PembayaranDetail
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a new payment record.
func (r *PembayaranRepository) Create(ctx context.Context, payment *models.Pembayaran) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if payment.UploadedAt.IsZero() {
		payment.UploadedAt = now
	}

	const query = `INSERT INTO pembayaran (id, mahasiswa_id, semester_id, jenis, jumlah, bukti_path, status, uploaded_at, catatan, created_at, updated_at)
        VALUES (:id, :mahasiswa_id, :semester_id, :jenis, :jumlah, :bukti_path, :status, :uploaded_at, :catatan, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create pembayaran: %w", err)
	}
	return nil
}

// Verify moves a PENDING payment to its final status. Decided payments
// stay immutable; callers treat zero affected rows as a conflict.
func (r *PembayaranRepository) Verify(ctx context.Context, id string, status models.PembayaranStatus, verifiedBy string, catatan string) (bool, error) {
	const query = `UPDATE pembayaran SET status = $2, verified_at = $3, verified_by = $4, catatan = $5, updated_at = $3
        WHERE id = $1 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC(), verifiedBy, catatan)
	if err != nil {
		return false, fmt.Errorf("verify pembayaran: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verify pembayaran affected: %w", err)
	}
	return affected > 0, nil
}

// SumVerifiedBySemester totals verified payment amounts for a semester.
func (r *PembayaranRepository) SumVerifiedBySemester(ctx context.Context, semesterID string) (int64, error) {
	var total int64
	const query = `SELECT COALESCE(SUM(jumlah), 0) FROM pembayaran WHERE semester_id = $1 AND status = 'VERIFIED'`
	if err := r.db.GetContext(ctx, &total, query, semesterID); err != nil {
		return 0, fmt.Errorf("sum verified pembayaran: %w", err)
	}
	return total, nil
}

// CountByStatus counts payments in a semester per status.
func (r *PembayaranRepository) CountByStatus(ctx context.Context, semesterID string, status models.PembayaranStatus) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM pembayaran WHERE semester_id = $1 AND status = $2`, semesterID, status); err != nil {
		return 0, fmt.Errorf("count pembayaran by status: %w", err)
	}
	return total, nil
}
