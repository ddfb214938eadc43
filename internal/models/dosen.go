package models

import "time"

// Dosen is the lecturer profile, 1:1 with a DOSEN-role user.
type Dosen struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	NIDN      string    `db:"nidn" json:"nidn"`
	ProdiID   string    `db:"prodi_id" json:"prodi_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DosenDetail joins display fields for list/detail responses.
type DosenDetail struct {
	Dosen
	FullName  string `db:"full_name" json:"full_name"`
	Email     string `db:"email" json:"email"`
	ProdiNama string `db:"prodi_nama" json:"prodi_nama"`
}

// DosenFilter captures list filters.
type DosenFilter struct {
	ProdiID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
