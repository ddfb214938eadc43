package models

import "time"

// MataKuliah is a catalog entry. KodeMK is the natural key; upsert-by-kode
// is the supported update path.
type MataKuliah struct {
	ID            string    `db:"id" json:"id"`
	KodeMK        string    `db:"kode_mk" json:"kode_mk"`
	Nama          string    `db:"nama" json:"nama"`
	SKS           int       `db:"sks" json:"sks"`
	SemesterIdeal int       `db:"semester_ideal" json:"semester_ideal"`
	ProdiID       string    `db:"prodi_id" json:"prodi_id"`
	LintasProdi   bool      `db:"lintas_prodi" json:"lintas_prodi"`
	Aktif         bool      `db:"aktif" json:"aktif"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MataKuliahFilter captures list filters.
type MataKuliahFilter struct {
	ProdiID       string
	SemesterIdeal int
	Aktif         *bool
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
