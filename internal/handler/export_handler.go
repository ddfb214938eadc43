package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// ExportHandler exposes file export endpoints.
type ExportHandler struct {
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{exports: exports, metrics: metrics}
}

// KHS godoc
// @Summary Export KHS as Excel or PDF
// @Tags Export
// @Produce octet-stream
// @Param id path string true "Mahasiswa ID"
// @Param semester_id query string true "Semester ID"
// @Param format query string false "xlsx (default) or pdf"
// @Success 200 {file} binary
// @Router /export/khs/{id} [get]
func (h *ExportHandler) KHS(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester_id required"))
		return
	}

	mahasiswaID := c.Param("id")
	if identity := identityFromContext(c); identity != nil && identity.Role == models.RoleMahasiswa && mahasiswaID != identity.ProfileID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	var (
		file *service.ExportFile
		err  error
	)
	switch format {
	case "pdf":
		file, err = h.exports.KHSPDF(c.Request.Context(), mahasiswaID, semesterID)
	case "xlsx":
		file, err = h.exports.KHSExcel(c.Request.Context(), mahasiswaID, semesterID)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be xlsx or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.CountExport("khs", format)
	response.Attachment(c, file.FileName, file.ContentType, file.Payload)
}

// Pembayaran godoc
// @Summary Export payment recap as Excel
// @Tags Export
// @Produce octet-stream
// @Param semester_id query string false "Filter by semester"
// @Param status query string false "Filter by status"
// @Param jenis query string false "Filter by payment type"
// @Success 200 {file} binary
// @Router /export/pembayaran [get]
func (h *ExportHandler) Pembayaran(c *gin.Context) {
	var filter models.PembayaranFilter
	filter.SemesterID = c.Query("semester_id")
	filter.Status = models.PembayaranStatus(strings.ToUpper(c.Query("status")))
	filter.Jenis = models.PembayaranJenis(strings.ToUpper(c.Query("jenis")))

	file, err := h.exports.PembayaranExcel(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.CountExport("pembayaran", "xlsx")
	response.Attachment(c, file.FileName, file.ContentType, file.Payload)
}

// Presensi godoc
// @Summary Export attendance recap as Excel
// @Tags Export
// @Produce octet-stream
// @Param id path string true "Kelas ID"
// @Success 200 {file} binary
// @Router /export/presensi/{id} [get]
func (h *ExportHandler) Presensi(c *gin.Context) {
	file, err := h.exports.PresensiExcel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.CountExport("presensi", "xlsx")
	response.Attachment(c, file.FileName, file.ContentType, file.Payload)
}
