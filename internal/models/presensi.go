package models

import "time"

// PresensiStatus enumerates attendance outcomes for one meeting.
type PresensiStatus string

const (
	PresensiHadir PresensiStatus = "HADIR"
	PresensiIzin  PresensiStatus = "IZIN"
	PresensiSakit PresensiStatus = "SAKIT"
	PresensiAlpa  PresensiStatus = "ALPA"
)

// Presensi is a per-class-meeting attendance record. Unique per
// (kelas, mahasiswa, pertemuan).
type Presensi struct {
	ID          string         `db:"id" json:"id"`
	KelasMKID   string         `db:"kelas_mk_id" json:"kelas_mk_id"`
	MahasiswaID string         `db:"mahasiswa_id" json:"mahasiswa_id"`
	Pertemuan   int            `db:"pertemuan" json:"pertemuan"`
	Tanggal     time.Time      `db:"tanggal" json:"tanggal"`
	Status      PresensiStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// PresensiRekap summarises attendance per student within a class.
type PresensiRekap struct {
	MahasiswaID   string  `db:"mahasiswa_id" json:"mahasiswa_id"`
	NIM           string  `db:"nim" json:"nim"`
	MahasiswaNama string  `db:"mahasiswa_nama" json:"mahasiswa_nama"`
	Hadir         int     `db:"hadir" json:"hadir"`
	Izin          int     `db:"izin" json:"izin"`
	Sakit         int     `db:"sakit" json:"sakit"`
	Alpa          int     `db:"alpa" json:"alpa"`
	TotalPertemuan int    `db:"total_pertemuan" json:"total_pertemuan"`
	Persentase    float64 `db:"persentase" json:"persentase"`
}

// PresensiFilter captures list filters.
type PresensiFilter struct {
	KelasMKID   string
	MahasiswaID string
	Pertemuan   int
}
