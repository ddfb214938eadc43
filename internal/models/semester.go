package models

import "time"

// SemesterPeriode designates the term within an academic year.
type SemesterPeriode string

const (
	PeriodeGanjil SemesterPeriode = "GANJIL"
	PeriodeGenap  SemesterPeriode = "GENAP"
)

// SemesterStatus is the enrollment-period state machine. Transitions are
// forward-only: DRAFT -> PENDAFTARAN -> BERJALAN -> SELESAI. KRS may only
// be created or modified while the semester is in PENDAFTARAN.
type SemesterStatus string

const (
	SemesterDraft       SemesterStatus = "DRAFT"
	SemesterPendaftaran SemesterStatus = "PENDAFTARAN"
	SemesterBerjalan    SemesterStatus = "BERJALAN"
	SemesterSelesai     SemesterStatus = "SELESAI"
)

// Semester is an academic period identified by year label + periode.
// At most one semester is active at a time.
type Semester struct {
	ID          string          `db:"id" json:"id"`
	TahunAjaran string          `db:"tahun_ajaran" json:"tahun_ajaran"`
	Periode     SemesterPeriode `db:"periode" json:"periode"`
	Status      SemesterStatus  `db:"status" json:"status"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	KRSMulai    *time.Time      `db:"krs_mulai" json:"krs_mulai,omitempty"`
	KRSSelesai  *time.Time      `db:"krs_selesai" json:"krs_selesai,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// OpenForKRS reports whether enrollment writes are currently permitted.
func (s *Semester) OpenForKRS() bool {
	return s != nil && s.Status == SemesterPendaftaran
}

// SemesterFilter captures list filters.
type SemesterFilter struct {
	TahunAjaran string
	Periode     SemesterPeriode
	Status      SemesterStatus
	IsActive    *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// nextStatus defines the forward-only transition table.
var nextStatus = map[SemesterStatus]SemesterStatus{
	SemesterDraft:       SemesterPendaftaran,
	SemesterPendaftaran: SemesterBerjalan,
	SemesterBerjalan:    SemesterSelesai,
}

// CanTransition reports whether from may move directly to to.
func CanTransition(from, to SemesterStatus) bool {
	return nextStatus[from] == to
}
