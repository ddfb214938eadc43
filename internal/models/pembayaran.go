package models

import "time"

// PembayaranJenis enumerates payment types.
type PembayaranJenis string

const (
	PembayaranSPP       PembayaranJenis = "SPP"
	PembayaranPraktikum PembayaranJenis = "PRAKTIKUM"
	PembayaranWisuda    PembayaranJenis = "WISUDA"
	PembayaranLainnya   PembayaranJenis = "LAINNYA"
)

// PembayaranStatus is the verification state. A decided payment is final;
// corrections happen by submitting a new record, keeping the audit trail
// append-only.
type PembayaranStatus string

const (
	PembayaranPending  PembayaranStatus = "PENDING"
	PembayaranVerified PembayaranStatus = "VERIFIED"
	PembayaranRejected PembayaranStatus = "REJECTED"
)

// Pembayaran is a student-submitted payment record.
type Pembayaran struct {
	ID         string           `db:"id" json:"id"`
	MahasiswaID string          `db:"mahasiswa_id" json:"mahasiswa_id"`
	SemesterID string           `db:"semester_id" json:"semester_id"`
	Jenis      PembayaranJenis  `db:"jenis" json:"jenis"`
	Jumlah     int64            `db:"jumlah" json:"jumlah"`
	BuktiPath  string           `db:"bukti_path" json:"-"`
	Status     PembayaranStatus `db:"status" json:"status"`
	UploadedAt time.Time        `db:"uploaded_at" json:"uploaded_at"`
	VerifiedAt *time.Time       `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy *string          `db:"verified_by" json:"verified_by,omitempty"`
	Catatan    string           `db:"catatan" json:"catatan"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// PembayaranDetail joins student display fields.
type PembayaranDetail struct {
	Pembayaran
	NIM           string `db:"nim" json:"nim"`
	MahasiswaNama string `db:"mahasiswa_nama" json:"mahasiswa_nama"`
}

// PembayaranFilter captures list filters.
type PembayaranFilter struct {
	MahasiswaID string
	SemesterID  string
	Jenis       PembayaranJenis
	Status      PembayaranStatus
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
