package models

import "time"

// MateriJenis tags uploaded course documents.
type MateriJenis string

const (
	MateriRPS    MateriJenis = "RPS"
	MateriRPP    MateriJenis = "RPP"
	MateriMateri MateriJenis = "MATERI"
)

// Materi is a course document (syllabus, lesson plan, weekly material)
// uploaded by the owning dosen. Pertemuan is set for weekly materials.
type Materi struct {
	ID        string      `db:"id" json:"id"`
	KelasMKID string      `db:"kelas_mk_id" json:"kelas_mk_id"`
	Jenis     MateriJenis `db:"jenis" json:"jenis"`
	Judul     string      `db:"judul" json:"judul"`
	Pertemuan *int        `db:"pertemuan" json:"pertemuan,omitempty"`
	FilePath  string      `db:"file_path" json:"-"`
	FileName  string      `db:"file_name" json:"file_name"`
	UploadedBy string     `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// MateriDownload carries a signed, time-limited download URL.
type MateriDownload struct {
	MateriID  string    `json:"materi_id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MateriFilter captures list filters.
type MateriFilter struct {
	KelasMKID string
	Jenis     MateriJenis
	Pertemuan int
}
