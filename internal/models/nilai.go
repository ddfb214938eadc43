package models

import (
	"fmt"
	"time"
)

// Nilai is a per-student-per-class grade. Keyed by KRS detail row so a
// grade can only exist for a committed enrollment.
type Nilai struct {
	ID          string    `db:"id" json:"id"`
	KRSDetailID string    `db:"krs_detail_id" json:"krs_detail_id"`
	NilaiAngka  float64   `db:"nilai_angka" json:"nilai_angka"`
	NilaiHuruf  string    `db:"nilai_huruf" json:"nilai_huruf"`
	Bobot       float64   `db:"bobot" json:"bobot"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// NilaiRow joins student display fields onto a grade for class rosters.
type NilaiRow struct {
	Nilai
	MahasiswaID   string `db:"mahasiswa_id" json:"mahasiswa_id"`
	NIM           string `db:"nim" json:"nim"`
	MahasiswaNama string `db:"mahasiswa_nama" json:"mahasiswa_nama"`
}

// KHSRow is one graded course on a student's semester report.
type KHSRow struct {
	KodeMK     string  `db:"kode_mk" json:"kode_mk"`
	NamaMK     string  `db:"nama_mk" json:"nama_mk"`
	SKS        int     `db:"sks" json:"sks"`
	NilaiAngka float64 `db:"nilai_angka" json:"nilai_angka"`
	NilaiHuruf string  `db:"nilai_huruf" json:"nilai_huruf"`
	Bobot      float64 `db:"bobot" json:"bobot"`
}

// KHS is a student's finalized grade report for one semester. IPS is the
// SKS-weighted grade point average of the listed rows.
type KHS struct {
	MahasiswaID   string  `json:"mahasiswa_id"`
	NIM           string  `json:"nim"`
	MahasiswaNama string  `json:"mahasiswa_nama"`
	ProdiNama     string  `json:"prodi_nama"`
	SemesterID    string  `json:"semester_id"`
	TahunAjaran   string  `json:"tahun_ajaran"`
	Periode       string  `json:"periode"`
	Rows          []KHSRow `json:"rows"`
	TotalSKS      int     `json:"total_sks"`
	IPS           float64 `json:"ips"`
}

// gradeBand maps a score floor to its letter and weight. Bands are
// ordered descending; the first floor at or below the score wins.
type gradeBand struct {
	Floor float64
	Huruf string
	Bobot float64
}

var gradeBands = []gradeBand{
	{85, "A", 4.00},
	{80, "AB", 3.50},
	{75, "B", 3.00},
	{70, "BC", 2.50},
	{60, "C", 2.00},
	{50, "D", 1.00},
	{0, "E", 0.00},
}

// KonversiNilai converts a numeric score in [0,100] to its letter grade
// and weight. Pure and total over the valid domain; out-of-range scores
// are rejected.
func KonversiNilai(angka float64) (huruf string, bobot float64, err error) {
	if angka < 0 || angka > 100 {
		return "", 0, fmt.Errorf("nilai angka %.2f outside [0,100]", angka)
	}
	for _, band := range gradeBands {
		if angka >= band.Floor {
			return band.Huruf, band.Bobot, nil
		}
	}
	// unreachable: the last band floor is 0
	return "E", 0, nil
}

// NilaiFilter captures list filters for class rosters.
type NilaiFilter struct {
	KelasMKID   string
	MahasiswaID string
}
