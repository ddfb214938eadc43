package models

import "time"

// Ruangan is a physical room that class meetings are scheduled into.
type Ruangan struct {
	ID        string    `db:"id" json:"id"`
	Kode      string    `db:"kode" json:"kode"`
	Nama      string    `db:"nama" json:"nama"`
	Kapasitas int       `db:"kapasitas" json:"kapasitas"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// KelasMK is a scheduled offering of a mata kuliah in one semester,
// bound to a dosen, a ruangan and a weekly time slot. Hari is ISO weekday
// (1 = Monday). JamMulai/JamSelesai are "HH:MM" wall-clock strings.
type KelasMK struct {
	ID           string    `db:"id" json:"id"`
	MataKuliahID string    `db:"mata_kuliah_id" json:"mata_kuliah_id"`
	SemesterID   string    `db:"semester_id" json:"semester_id"`
	DosenID      string    `db:"dosen_id" json:"dosen_id"`
	RuanganID    string    `db:"ruangan_id" json:"ruangan_id"`
	NamaKelas    string    `db:"nama_kelas" json:"nama_kelas"`
	Hari         int       `db:"hari" json:"hari"`
	JamMulai     string    `db:"jam_mulai" json:"jam_mulai"`
	JamSelesai   string    `db:"jam_selesai" json:"jam_selesai"`
	Kapasitas    int       `db:"kapasitas" json:"kapasitas"`
	NilaiLocked  bool      `db:"nilai_locked" json:"nilai_locked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// KelasMKDetail joins display fields for list/detail responses.
type KelasMKDetail struct {
	KelasMK
	KodeMK      string `db:"kode_mk" json:"kode_mk"`
	NamaMK      string `db:"nama_mk" json:"nama_mk"`
	SKS         int    `db:"sks" json:"sks"`
	DosenNama   string `db:"dosen_nama" json:"dosen_nama"`
	RuanganKode string `db:"ruangan_kode" json:"ruangan_kode"`
	Terisi      int    `db:"terisi" json:"terisi"`
}

// KelasMKFilter captures list filters.
type KelasMKFilter struct {
	SemesterID   string
	MataKuliahID string
	DosenID      string
	RuanganID    string
	Hari         int
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
