package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/export"
)

type khsBuilder interface {
	KHS(ctx context.Context, mahasiswaID, semesterID string) (*models.KHS, error)
}

type pembayaranLister interface {
	List(ctx context.Context, filter models.PembayaranFilter) ([]models.PembayaranDetail, int, error)
}

type presensiRekapReader interface {
	Rekap(ctx context.Context, kelasID string) ([]models.PresensiRekap, error)
}

type excelRenderer interface {
	Render(sheets ...export.Sheet) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, subtitles ...string) ([]byte, error)
}

// ExportFile is a rendered document ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Payload     []byte
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ExportService renders report files for download.
type ExportService struct {
	khs        khsBuilder
	pembayaran pembayaranLister
	presensi   presensiRekapReader
	kelas      kelasReader
	excel      excelRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(khs khsBuilder, pembayaran pembayaranLister, presensi presensiRekapReader, kelas kelasReader, excel excelRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if excel == nil {
		excel = export.NewExcelExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{khs: khs, pembayaran: pembayaran, presensi: presensi, kelas: kelas, excel: excel, pdf: pdf, logger: logger}
}

// KHSExcel renders a student's semester report as a workbook.
func (s *ExportService) KHSExcel(ctx context.Context, mahasiswaID, semesterID string) (*ExportFile, error) {
	khs, err := s.khs.KHS(ctx, mahasiswaID, semesterID)
	if err != nil {
		return nil, err
	}

	payload, err := s.excel.Render(export.Sheet{Name: "KHS", Data: khsDataset(khs)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render khs workbook")
	}

	return &ExportFile{
		FileName:    fmt.Sprintf("khs_%s_%s.xlsx", khs.NIM, safeLabel(khs.TahunAjaran)),
		ContentType: contentTypeXLSX,
		Payload:     payload,
	}, nil
}

// KHSPDF renders a student's semester report as a printable card.
func (s *ExportService) KHSPDF(ctx context.Context, mahasiswaID, semesterID string) (*ExportFile, error) {
	khs, err := s.khs.KHS(ctx, mahasiswaID, semesterID)
	if err != nil {
		return nil, err
	}

	subtitles := []string{
		fmt.Sprintf("%s - %s", khs.NIM, khs.MahasiswaNama),
		fmt.Sprintf("%s %s %s", khs.ProdiNama, khs.TahunAjaran, khs.Periode),
		fmt.Sprintf("Total SKS: %d    IPS: %.2f", khs.TotalSKS, khs.IPS),
	}
	payload, err := s.pdf.Render(khsDataset(khs), "Kartu Hasil Studi", subtitles...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render khs pdf")
	}

	return &ExportFile{
		FileName:    fmt.Sprintf("khs_%s_%s.pdf", khs.NIM, safeLabel(khs.TahunAjaran)),
		ContentType: contentTypePDF,
		Payload:     payload,
	}, nil
}

// PembayaranExcel renders the payment recap for a semester.
func (s *ExportService) PembayaranExcel(ctx context.Context, filter models.PembayaranFilter) (*ExportFile, error) {
	filter.Page = 1
	filter.PageSize = 100

	var rows []map[string]string
	for {
		payments, total, err := s.pembayaran.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pembayaran")
		}
		for _, p := range payments {
			verified := ""
			if p.VerifiedAt != nil {
				verified = p.VerifiedAt.Format("2006-01-02 15:04")
			}
			rows = append(rows, map[string]string{
				"NIM":        p.NIM,
				"Nama":       p.MahasiswaNama,
				"Jenis":      string(p.Jenis),
				"Jumlah":     strconv.FormatInt(p.Jumlah, 10),
				"Status":     string(p.Status),
				"Diunggah":   p.UploadedAt.Format("2006-01-02 15:04"),
				"Divalidasi": verified,
			})
		}
		if filter.Page*filter.PageSize >= total {
			break
		}
		filter.Page++
	}

	data := export.Dataset{
		Headers: []string{"NIM", "Nama", "Jenis", "Jumlah", "Status", "Diunggah", "Divalidasi"},
		Rows:    rows,
	}
	payload, err := s.excel.Render(export.Sheet{Name: "Pembayaran", Data: data})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pembayaran workbook")
	}

	return &ExportFile{
		FileName:    fmt.Sprintf("rekap_pembayaran_%s.xlsx", time.Now().UTC().Format("20060102")),
		ContentType: contentTypeXLSX,
		Payload:     payload,
	}, nil
}

// PresensiExcel renders the attendance recap for a class.
func (s *ExportService) PresensiExcel(ctx context.Context, kelasID string) (*ExportFile, error) {
	kelas, err := s.kelas.FindByID(ctx, kelasID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "kelas not found")
	}

	rekap, err := s.presensi.Rekap(ctx, kelasID)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(rekap))
	for _, r := range rekap {
		rows = append(rows, map[string]string{
			"NIM":       r.NIM,
			"Nama":      r.MahasiswaNama,
			"Hadir":     strconv.Itoa(r.Hadir),
			"Izin":      strconv.Itoa(r.Izin),
			"Sakit":     strconv.Itoa(r.Sakit),
			"Alpa":      strconv.Itoa(r.Alpa),
			"Pertemuan": strconv.Itoa(r.TotalPertemuan),
			"Kehadiran": fmt.Sprintf("%.2f%%", r.Persentase),
		})
	}

	data := export.Dataset{
		Headers: []string{"NIM", "Nama", "Hadir", "Izin", "Sakit", "Alpa", "Pertemuan", "Kehadiran"},
		Rows:    rows,
	}
	payload, err := s.excel.Render(export.Sheet{Name: "Presensi", Data: data})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render presensi workbook")
	}

	return &ExportFile{
		FileName:    fmt.Sprintf("rekap_presensi_%s_%s.xlsx", kelas.KodeMK, safeLabel(kelas.NamaKelas)),
		ContentType: contentTypeXLSX,
		Payload:     payload,
	}, nil
}

func khsDataset(khs *models.KHS) export.Dataset {
	rows := make([]map[string]string, 0, len(khs.Rows))
	for _, row := range khs.Rows {
		rows = append(rows, map[string]string{
			"Kode":  row.KodeMK,
			"Mata Kuliah": row.NamaMK,
			"SKS":   strconv.Itoa(row.SKS),
			"Angka": fmt.Sprintf("%.2f", row.NilaiAngka),
			"Huruf": row.NilaiHuruf,
			"Bobot": fmt.Sprintf("%.2f", row.Bobot),
		})
	}
	return export.Dataset{
		Headers: []string{"Kode", "Mata Kuliah", "SKS", "Angka", "Huruf", "Bobot"},
		Rows:    rows,
	}
}

func safeLabel(raw string) string {
	replacer := strings.NewReplacer("/", "-", " ", "_")
	return replacer.Replace(raw)
}
