package models

import "time"

// KRSStatus is the approval state machine for a course-selection sheet.
// Only the three observed states exist; a decided KRS never returns to
// PENDING.
type KRSStatus string

const (
	KRSPending  KRSStatus = "PENDING"
	KRSApproved KRSStatus = "APPROVED"
	KRSRejected KRSStatus = "REJECTED"
)

// KRS is a student's course selection for one semester. One KRS per
// mahasiswa per semester. Once APPROVED the detail set is committed and
// becomes the basis for grading.
type KRS struct {
	ID          string     `db:"id" json:"id"`
	MahasiswaID string     `db:"mahasiswa_id" json:"mahasiswa_id"`
	SemesterID  string     `db:"semester_id" json:"semester_id"`
	Status      KRSStatus  `db:"status" json:"status"`
	SubmittedAt time.Time  `db:"submitted_at" json:"submitted_at"`
	DecidedAt   *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	DecidedBy   *string    `db:"decided_by" json:"decided_by,omitempty"`
	Catatan     string     `db:"catatan" json:"catatan"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// KRSDetail is one selected class within a KRS.
type KRSDetail struct {
	ID        string    `db:"id" json:"id"`
	KRSID     string    `db:"krs_id" json:"krs_id"`
	KelasMKID string    `db:"kelas_mk_id" json:"kelas_mk_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// KRSDetailRow joins class display fields onto a detail row.
type KRSDetailRow struct {
	KRSDetail
	KodeMK     string `db:"kode_mk" json:"kode_mk"`
	NamaMK     string `db:"nama_mk" json:"nama_mk"`
	SKS        int    `db:"sks" json:"sks"`
	NamaKelas  string `db:"nama_kelas" json:"nama_kelas"`
	DosenNama  string `db:"dosen_nama" json:"dosen_nama"`
	Hari       int    `db:"hari" json:"hari"`
	JamMulai   string `db:"jam_mulai" json:"jam_mulai"`
	JamSelesai string `db:"jam_selesai" json:"jam_selesai"`
}

// KRSView is a KRS plus its detail rows and SKS total.
type KRSView struct {
	KRS
	MahasiswaNama string         `db:"mahasiswa_nama" json:"mahasiswa_nama"`
	NIM           string         `db:"nim" json:"nim"`
	TotalSKS      int            `db:"total_sks" json:"total_sks"`
	Details       []KRSDetailRow `json:"details"`
}

// KRSFilter captures list filters.
type KRSFilter struct {
	MahasiswaID string
	SemesterID  string
	Status      KRSStatus
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
