package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stikom-adp/siakad-api/internal/models"
)

// PresensiRepository manages attendance records.
type PresensiRepository struct {
	db *sqlx.DB
}

// NewPresensiRepository constructs a PresensiRepository.
func NewPresensiRepository(db *sqlx.DB) *PresensiRepository {
	return &PresensiRepository{db: db}
}

// Upsert records attendance for one meeting, replacing any earlier
// status for the same (kelas, mahasiswa, pertemuan).
func (r *PresensiRepository) Upsert(ctx context.Context, presensi *models.Presensi) error {
	if presensi.ID == "" {
		presensi.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if presensi.CreatedAt.IsZero() {
		presensi.CreatedAt = now
	}
	presensi.UpdatedAt = now

	const query = `INSERT INTO presensi (id, kelas_mk_id, mahasiswa_id, pertemuan, tanggal, status, created_at, updated_at)
        VALUES (:id, :kelas_mk_id, :mahasiswa_id, :pertemuan, :tanggal, :status, :created_at, :updated_at)
        ON CONFLICT (kelas_mk_id, mahasiswa_id, pertemuan) DO UPDATE SET
            tanggal = EXCLUDED.tanggal,
            status = EXCLUDED.status,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, presensi); err != nil {
		return fmt.Errorf("upsert presensi: %w", err)
	}
	return nil
}

// ListByKelasPertemuan returns attendance for one class meeting.
func (r *PresensiRepository) ListByKelasPertemuan(ctx context.Context, kelasID string, pertemuan int) ([]models.Presensi, error) {
	const query = `SELECT id, kelas_mk_id, mahasiswa_id, pertemuan, tanggal, status, created_at, updated_at
        FROM presensi WHERE kelas_mk_id = $1 AND pertemuan = $2`
	var records []models.Presensi
	if err := r.db.SelectContext(ctx, &records, query, kelasID, pertemuan); err != nil {
		return nil, fmt.Errorf("list presensi: %w", err)
	}
	return records, nil
}

// Rekap aggregates per-student attendance for a class. The percentage is
// attended meetings over recorded meetings.
func (r *PresensiRepository) Rekap(ctx context.Context, kelasID string) ([]models.PresensiRekap, error) {
	const query = `SELECT m.id AS mahasiswa_id, m.nim, u.full_name AS mahasiswa_nama,
        COUNT(*) FILTER (WHERE p.status = 'HADIR') AS hadir,
        COUNT(*) FILTER (WHERE p.status = 'IZIN') AS izin,
        COUNT(*) FILTER (WHERE p.status = 'SAKIT') AS sakit,
        COUNT(*) FILTER (WHERE p.status = 'ALPA') AS alpa,
        COUNT(*) AS total_pertemuan,
        ROUND(100.0 * COUNT(*) FILTER (WHERE p.status = 'HADIR') / COUNT(*), 2) AS persentase
        FROM presensi p
        JOIN mahasiswa m ON m.id = p.mahasiswa_id
        JOIN users u ON u.id = m.user_id
        WHERE p.kelas_mk_id = $1
        GROUP BY m.id, m.nim, u.full_name
        ORDER BY m.nim ASC`
	var rekap []models.PresensiRekap
	if err := r.db.SelectContext(ctx, &rekap, query, kelasID); err != nil {
		return nil, fmt.Errorf("rekap presensi: %w", err)
	}
	return rekap, nil
}

// CountByMahasiswaKelas counts attended meetings for one student.
func (r *PresensiRepository) CountByMahasiswaKelas(ctx context.Context, kelasID, mahasiswaID string) (hadir, total int, err error) {
	const query = `SELECT COUNT(*) FILTER (WHERE status = 'HADIR'), COUNT(*)
        FROM presensi WHERE kelas_mk_id = $1 AND mahasiswa_id = $2`
	row := r.db.QueryRowContext(ctx, query, kelasID, mahasiswaID)
	if err := row.Scan(&hadir, &total); err != nil {
		return 0, 0, fmt.Errorf("count presensi: %w", err)
	}
	return hadir, total, nil
}
