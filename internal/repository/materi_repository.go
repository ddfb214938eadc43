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

// MateriRepository manages course document metadata.
type MateriRepository struct {
	db *sqlx.DB
}

// NewMateriRepository constructs a MateriRepository.
func NewMateriRepository(db *sqlx.DB) *MateriRepository {
	return &MateriRepository{db: db}
}

// List returns documents matching the provided filters.
func (r *MateriRepository) List(ctx context.Context, filter models.MateriFilter) ([]models.Materi, error) {
	base := `SELECT id, kelas_mk_id, jenis, judul, pertemuan, file_path, file_name, uploaded_by, created_at, updated_at FROM materi`
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.KelasMKID != "" {
		conditions = append(conditions, fmt.Sprintf("kelas_mk_id = $%d", len(args)+1))
		args = append(args, filter.KelasMKID)
	}
	if filter.Jenis != "" {
		conditions = append(conditions, fmt.Sprintf("jenis = $%d", len(args)+1))
		args = append(args, filter.Jenis)
	}
	if filter.Pertemuan > 0 {
		conditions = append(conditions, fmt.Sprintf("pertemuan = $%d", len(args)+1))
		args = append(args, filter.Pertemuan)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC", base, strings.Join(conditions, " AND "))

	var docs []models.Materi
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list materi: %w", err)
	}
	return docs, nil
}

// FindByID fetches one document.
func (r *MateriRepository) FindByID(ctx context.Context, id string) (*models.Materi, error) {
	const query = `SELECT id, kelas_mk_id, jenis, judul, pertemuan, file_path, file_name, uploaded_by, created_at, updated_at
        FROM materi WHERE id = $1`
	var doc models.Materi
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts document metadata after the file has been stored.
func (r *MateriRepository) Create(ctx context.Context, materi *models.Materi) error {
	if materi.ID == "" {
		materi.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	materi.CreatedAt = now
	materi.UpdatedAt = now

	const query = `INSERT INTO materi (id, kelas_mk_id, jenis, judul, pertemuan, file_path, file_name, uploaded_by, created_at, updated_at)
        VALUES (:id, :kelas_mk_id, :jenis, :judul, :pertemuan, :file_path, :file_name, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, materi); err != nil {
		return fmt.Errorf("create materi: %w", err)
	}
	return nil
}

// Delete removes the metadata row. File cleanup is the caller's job.
func (r *MateriRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM materi WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete materi: %w", err)
	}
	return nil
}
