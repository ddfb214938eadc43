package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// PresensiHandler exposes attendance endpoints.
type PresensiHandler struct {
	presensi *service.PresensiService
}

// NewPresensiHandler constructs PresensiHandler.
func NewPresensiHandler(presensi *service.PresensiService) *PresensiHandler {
	return &PresensiHandler{presensi: presensi}
}

// Record godoc
// @Summary Record attendance for a meeting
// @Tags Presensi
// @Accept json
// @Produce json
// @Param id path string true "Kelas ID"
// @Param payload body service.RecordPresensiRequest true "Attendance payload"
// @Success 204 {object} response.Envelope
// @Router /kelas/{id}/presensi [post]
func (h *PresensiHandler) Record(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RecordPresensiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.presensi.Record(c.Request.Context(), c.Param("id"), req, identity); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMeeting godoc
// @Summary Attendance entries for one meeting
// @Tags Presensi
// @Produce json
// @Param id path string true "Kelas ID"
// @Param pertemuan query int true "Meeting number"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id}/presensi [get]
func (h *PresensiHandler) ListMeeting(c *gin.Context) {
	pertemuan, err := strconv.Atoi(c.Query("pertemuan"))
	if err != nil || pertemuan < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pertemuan required"))
		return
	}
	entries, err := h.presensi.ListMeeting(c.Request.Context(), c.Param("id"), pertemuan)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Rekap godoc
// @Summary Per-student attendance recap for a class
// @Tags Presensi
// @Produce json
// @Param id path string true "Kelas ID"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id}/presensi/rekap [get]
func (h *PresensiHandler) Rekap(c *gin.Context) {
	rekap, err := h.presensi.Rekap(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rekap, nil)
}
