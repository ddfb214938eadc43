package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// NilaiHandler exposes grading and report-card endpoints.
type NilaiHandler struct {
	nilai *service.NilaiService
}

// NewNilaiHandler constructs NilaiHandler.
func NewNilaiHandler(nilai *service.NilaiService) *NilaiHandler {
	return &NilaiHandler{nilai: nilai}
}

// Roster godoc
// @Summary Grade roster for a class
// @Tags Nilai
// @Produce json
// @Param id path string true "Kelas ID"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id}/nilai [get]
func (h *NilaiHandler) Roster(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, err := h.nilai.Roster(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Upsert godoc
// @Summary Record a grade
// @Description Writes the numeric score; letter and weight derive from the conversion table
// @Tags Nilai
// @Accept json
// @Produce json
// @Param id path string true "Kelas ID"
// @Param payload body service.UpsertNilaiRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id}/nilai [put]
func (h *NilaiHandler) Upsert(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpsertNilaiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	nilai, err := h.nilai.Upsert(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nilai, nil)
}

// Lock godoc
// @Summary Lock grades for a class
// @Description One-way; locked grades reject further writes
// @Tags Nilai
// @Produce json
// @Param id path string true "Kelas ID"
// @Success 204 {object} response.Envelope
// @Router /kelas/{id}/nilai/lock [post]
func (h *NilaiHandler) Lock(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.nilai.LockKelas(c.Request.Context(), c.Param("id"), identity); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// KHS godoc
// @Summary Semester report card
// @Tags Nilai
// @Produce json
// @Param id path string true "Mahasiswa ID"
// @Param semester_id query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /mahasiswa/{id}/khs [get]
func (h *NilaiHandler) KHS(c *gin.Context) {
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

	khs, err := h.nilai.KHS(c.Request.Context(), mahasiswaID, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, khs, nil)
}
