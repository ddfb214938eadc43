package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
)

type khsStub struct{}

func (khsStub) KHS(ctx context.Context, mahasiswaID, semesterID string) (*models.KHS, error) {
	return &models.KHS{
		MahasiswaID:   mahasiswaID,
		NIM:           "2023001",
		MahasiswaNama: "Budi Santoso",
		ProdiNama:     "Sistem Informasi",
		SemesterID:    semesterID,
		TahunAjaran:   "2025/2026",
		Periode:       "GANJIL",
		Rows: []models.KHSRow{
			{KodeMK: "SI101", NamaMK: "Basis Data", SKS: 3, NilaiAngka: 88, NilaiHuruf: "A", Bobot: 4.0},
		},
		TotalSKS: 3,
		IPS:      4.0,
	}, nil
}

type pembayaranListStub struct{}

func (pembayaranListStub) List(ctx context.Context, filter models.PembayaranFilter) ([]models.PembayaranDetail, int, error) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return []models.PembayaranDetail{
		{
			Pembayaran:    models.Pembayaran{ID: "pay-1", Jenis: models.PembayaranSPP, Jumlah: 2500000, Status: models.PembayaranVerified, UploadedAt: now, VerifiedAt: &now},
			NIM:           "2023001",
			MahasiswaNama: "Budi Santoso",
		},
	}, 1, nil
}

type presensiRekapStub struct{}

func (presensiRekapStub) Rekap(ctx context.Context, kelasID string) ([]models.PresensiRekap, error) {
	return []models.PresensiRekap{
		{NIM: "2023001", MahasiswaNama: "Budi Santoso", Hadir: 12, Izin: 1, Sakit: 1, Alpa: 2, TotalPertemuan: 16, Persentase: 75.0},
	}, nil
}

type exportKelasStub struct{}

func (exportKelasStub) FindByID(ctx context.Context, id string) (*models.KelasMKDetail, error) {
	return &models.KelasMKDetail{KelasMK: models.KelasMK{ID: id, NamaKelas: "A"}, KodeMK: "SI101"}, nil
}

func newExportServiceForTest() *ExportService {
	return NewExportService(khsStub{}, pembayaranListStub{}, presensiRekapStub{}, exportKelasStub{}, nil, nil, zap.NewNop())
}

func TestExportServiceKHSExcel(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.KHSExcel(context.Background(), "m1", "sem-1")
	require.NoError(t, err)
	assert.Equal(t, "khs_2023001_2025-2026.xlsx", file.FileName)
	assert.Equal(t, contentTypeXLSX, file.ContentType)
	assert.NotEmpty(t, file.Payload)
}

func TestExportServiceKHSPDF(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.KHSPDF(context.Background(), "m1", "sem-1")
	require.NoError(t, err)
	assert.Equal(t, "khs_2023001_2025-2026.pdf", file.FileName)
	assert.Equal(t, contentTypePDF, file.ContentType)
	assert.True(t, len(file.Payload) > 0)
}

func TestExportServicePembayaranExcel(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.PembayaranExcel(context.Background(), models.PembayaranFilter{SemesterID: "sem-1"})
	require.NoError(t, err)
	assert.Contains(t, file.FileName, "rekap_pembayaran_")
	assert.NotEmpty(t, file.Payload)
}

func TestExportServicePresensiExcel(t *testing.T) {
	svc := newExportServiceForTest()

	file, err := svc.PresensiExcel(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "rekap_presensi_SI101_A.xlsx", file.FileName)
	assert.NotEmpty(t, file.Payload)
}
