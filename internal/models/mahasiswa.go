package models

import "time"

// MahasiswaStatus enumerates the academic lifecycle of a student.
type MahasiswaStatus string

const (
	MahasiswaAktif    MahasiswaStatus = "AKTIF"
	MahasiswaCuti     MahasiswaStatus = "CUTI"
	MahasiswaNonAktif MahasiswaStatus = "NON_AKTIF"
	MahasiswaLulus    MahasiswaStatus = "LULUS"
	MahasiswaDO       MahasiswaStatus = "DO"
)

// Prodi models an academic program (program studi).
type Prodi struct {
	ID        string    `db:"id" json:"id"`
	Kode      string    `db:"kode" json:"kode"`
	Nama      string    `db:"nama" json:"nama"`
	Jenjang   string    `db:"jenjang" json:"jenjang"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Mahasiswa is the student profile, 1:1 with a MAHASISWA-role user.
// Every mahasiswa belongs to exactly one prodi; dosen wali is optional.
type Mahasiswa struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	NIM         string          `db:"nim" json:"nim"`
	ProdiID     string          `db:"prodi_id" json:"prodi_id"`
	DosenWaliID *string         `db:"dosen_wali_id" json:"dosen_wali_id,omitempty"`
	Angkatan    int             `db:"angkatan" json:"angkatan"`
	Status      MahasiswaStatus `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// MahasiswaDetail joins display fields for list/detail responses.
type MahasiswaDetail struct {
	Mahasiswa
	FullName      string  `db:"full_name" json:"full_name"`
	Email         string  `db:"email" json:"email"`
	ProdiNama     string  `db:"prodi_nama" json:"prodi_nama"`
	DosenWaliNama *string `db:"dosen_wali_nama" json:"dosen_wali_nama,omitempty"`
}

// MahasiswaFilter captures list filters.
type MahasiswaFilter struct {
	ProdiID     string
	DosenWaliID string
	Angkatan    int
	Status      MahasiswaStatus
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
