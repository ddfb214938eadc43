package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stikom-adp/siakad-api/internal/models"
)

// NilaiRepository manages grade persistence.
type NilaiRepository struct {
	db *sqlx.DB
}

// NewNilaiRepository constructs a NilaiRepository.
func NewNilaiRepository(db *sqlx.DB) *NilaiRepository {
	return &NilaiRepository{db: db}
}

// Upsert writes a grade keyed by its KRS detail row, replacing any
// earlier value for the same enrollment.
func (r *NilaiRepository) Upsert(ctx context.Context, nilai *models.Nilai) error {
	if nilai.ID == "" {
		nilai.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if nilai.CreatedAt.IsZero() {
		nilai.CreatedAt = now
	}
	nilai.UpdatedAt = now

	const query = `INSERT INTO nilai (id, krs_detail_id, nilai_angka, nilai_huruf, bobot, created_at, updated_at)
        VALUES (:id, :krs_detail_id, :nilai_angka, :nilai_huruf, :bobot, :created_at, :updated_at)
        ON CONFLICT (krs_detail_id) DO UPDATE SET
            nilai_angka = EXCLUDED.nilai_angka,
            nilai_huruf = EXCLUDED.nilai_huruf,
            bobot = EXCLUDED.bobot,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, nilai); err != nil {
		return fmt.Errorf("upsert nilai: %w", err)
	}
	return nil
}

// FindKRSDetail locates the approved enrollment row linking a student to
// a class. Only approved sheets carry gradable enrollments.
func (r *NilaiRepository) FindKRSDetail(ctx context.Context, kelasID, mahasiswaID string) (string, error) {
	const query = `SELECT kd.id FROM krs_detail kd
        JOIN krs k ON k.id = kd.krs_id
        WHERE kd.kelas_mk_id = $1 AND k.mahasiswa_id = $2 AND k.status = 'APPROVED'`
	var id string
	if err := r.db.GetContext(ctx, &id, query, kelasID, mahasiswaID); err != nil {
		return "", err
	}
	return id, nil
}

// ListByKelas returns the class roster with any recorded grades.
func (r *NilaiRepository) ListByKelas(ctx context.Context, kelasID string) ([]models.NilaiRow, error) {
	const query = `SELECT COALESCE(n.id, '') AS id, kd.id AS krs_detail_id,
        COALESCE(n.nilai_angka, 0) AS nilai_angka, COALESCE(n.nilai_huruf, '') AS nilai_huruf,
        COALESCE(n.bobot, 0) AS bobot,
        COALESCE(n.created_at, kd.created_at) AS created_at, COALESCE(n.updated_at, kd.created_at) AS updated_at,
        m.id AS mahasiswa_id, m.nim, u.full_name AS mahasiswa_nama
        FROM krs_detail kd
        JOIN krs k ON k.id = kd.krs_id
        JOIN mahasiswa m ON m.id = k.mahasiswa_id
        JOIN users u ON u.id = m.user_id
        LEFT JOIN nilai n ON n.krs_detail_id = kd.id
        WHERE kd.kelas_mk_id = $1 AND k.status = 'APPROVED'
        ORDER BY m.nim ASC`
	var rows []models.NilaiRow
	if err := r.db.SelectContext(ctx, &rows, query, kelasID); err != nil {
		return nil, fmt.Errorf("list nilai by kelas: %w", err)
	}
	return rows, nil
}

// ListKHSRows returns the graded courses for one student and semester.
func (r *NilaiRepository) ListKHSRows(ctx context.Context, mahasiswaID, semesterID string) ([]models.KHSRow, error) {
	const query = `SELECT mk.kode_mk, mk.nama AS nama_mk, mk.sks,
        n.nilai_angka, n.nilai_huruf, n.bobot
        FROM nilai n
        JOIN krs_detail kd ON kd.id = n.krs_detail_id
        JOIN krs k ON k.id = kd.krs_id
        JOIN kelas_mk kls ON kls.id = kd.kelas_mk_id
        JOIN mata_kuliah mk ON mk.id = kls.mata_kuliah_id
        WHERE k.mahasiswa_id = $1 AND k.semester_id = $2 AND k.status = 'APPROVED'
        ORDER BY mk.kode_mk ASC`
	var rows []models.KHSRow
	if err := r.db.SelectContext(ctx, &rows, query, mahasiswaID, semesterID); err != nil {
		return nil, fmt.Errorf("list khs rows: %w", err)
	}
	return rows, nil
}
