package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stikom-adp/siakad-api/internal/models"
)

// ProdiRepository manages persistence for academic programs.
type ProdiRepository struct {
	db *sqlx.DB
}

// NewProdiRepository constructs a ProdiRepository.
func NewProdiRepository(db *sqlx.DB) *ProdiRepository {
	return &ProdiRepository{db: db}
}

// List returns all programs ordered by code.
func (r *ProdiRepository) List(ctx context.Context) ([]models.Prodi, error) {
	const query = `SELECT id, kode, nama, jenjang, created_at, updated_at FROM prodi ORDER BY kode ASC`
	var items []models.Prodi
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list prodi: %w", err)
	}
	return items, nil
}

// FindByID fetches a program by ID.
func (r *ProdiRepository) FindByID(ctx context.Context, id string) (*models.Prodi, error) {
	const query = `SELECT id, kode, nama, jenjang, created_at, updated_at FROM prodi WHERE id = $1`
	var prodi models.Prodi
	if err := r.db.GetContext(ctx, &prodi, query, id); err != nil {
		return nil, err
	}
	return &prodi, nil
}

// ExistsByKode checks program code uniqueness optionally excluding an ID.
func (r *ProdiRepository) ExistsByKode(ctx context.Context, kode string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM prodi WHERE kode = $1"
	args := []interface{}{kode}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check prodi kode: %w", err)
	}
	return true, nil
}

// Create inserts a new program.
func (r *ProdiRepository) Create(ctx context.Context, prodi *models.Prodi) error {
	if prodi.ID == "" {
		prodi.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if prodi.CreatedAt.IsZero() {
		prodi.CreatedAt = now
	}
	prodi.UpdatedAt = now
	const query = `INSERT INTO prodi (id, kode, nama, jenjang, created_at, updated_at)
        VALUES (:id, :kode, :nama, :jenjang, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, prodi); err != nil {
		return fmt.Errorf("create prodi: %w", err)
	}
	return nil
}

// Update modifies an existing program.
func (r *ProdiRepository) Update(ctx context.Context, prodi *models.Prodi) error {
	prodi.UpdatedAt = time.Now().UTC()
	const query = `UPDATE prodi SET kode = :kode, nama = :nama, jenjang = :jenjang, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, prodi); err != nil {
		return fmt.Errorf("update prodi: %w", err)
	}
	return nil
}
