package models

import "time"

// DashboardSummary is the role-scoped landing payload. Counts that do not
// apply to the caller's role are zero and omitted.
type DashboardSummary struct {
	SemesterAktif      *Semester `json:"semester_aktif,omitempty"`
	TotalMahasiswa     int       `json:"total_mahasiswa,omitempty"`
	TotalDosen         int       `json:"total_dosen,omitempty"`
	TotalKelas         int       `json:"total_kelas,omitempty"`
	KRSPending         int       `json:"krs_pending,omitempty"`
	PembayaranPending  int       `json:"pembayaran_pending,omitempty"`
	KelasDiampu        int       `json:"kelas_diampu,omitempty"`
	KRSStatus          string    `json:"krs_status,omitempty"`
	TotalSKSDisetujui  int       `json:"total_sks_disetujui,omitempty"`

	// Cached is set on cache hits so handlers can flag it in response meta.
	Cached bool `json:"-"`
}

// SystemMetrics is an aggregated runtime snapshot for the admin console.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
