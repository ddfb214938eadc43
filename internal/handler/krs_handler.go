package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// KRSHandler exposes course-selection endpoints.
type KRSHandler struct {
	krs *service.KRSService
}

// NewKRSHandler constructs KRSHandler.
func NewKRSHandler(krs *service.KRSService) *KRSHandler {
	return &KRSHandler{krs: krs}
}

// List godoc
// @Summary List KRS sheets
// @Tags KRS
// @Produce json
// @Param mahasiswa_id query string false "Filter by mahasiswa"
// @Param semester_id query string false "Filter by semester"
// @Param status query string false "PENDING, APPROVED, or REJECTED"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /krs [get]
func (h *KRSHandler) List(c *gin.Context) {
	var filter models.KRSFilter
	filter.MahasiswaID = c.Query("mahasiswa_id")
	filter.SemesterID = c.Query("semester_id")
	filter.Status = models.KRSStatus(strings.ToUpper(c.Query("status")))
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	// Mahasiswa only ever see their own sheets.
	if identity := identityFromContext(c); identity != nil && identity.Role == models.RoleMahasiswa {
		filter.MahasiswaID = identity.ProfileID
	}

	list, pagination, err := h.krs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get KRS sheet
// @Tags KRS
// @Produce json
// @Param id path string true "KRS ID"
// @Success 200 {object} response.Envelope
// @Router /krs/{id} [get]
func (h *KRSHandler) Get(c *gin.Context) {
	view, err := h.krs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if identity := identityFromContext(c); identity != nil && identity.Role == models.RoleMahasiswa && view.MahasiswaID != identity.ProfileID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// GetMine godoc
// @Summary Own KRS sheet for a semester
// @Tags KRS
// @Produce json
// @Param semester_id query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /krs/me [get]
func (h *KRSHandler) GetMine(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester_id required"))
		return
	}
	view, err := h.krs.GetMine(c.Request.Context(), identity.ProfileID, semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Submit godoc
// @Summary Submit KRS sheet
// @Description Creates a PENDING sheet with the selected classes
// @Tags KRS
// @Accept json
// @Produce json
// @Param payload body service.SubmitKRSRequest true "KRS payload"
// @Success 201 {object} response.Envelope
// @Router /krs [post]
func (h *KRSHandler) Submit(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitKRSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.krs.Submit(c.Request.Context(), identity.ProfileID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// AddDetail godoc
// @Summary Add class to pending KRS sheet
// @Tags KRS
// @Accept json
// @Produce json
// @Param id path string true "KRS ID"
// @Param payload body map[string]string true "Kelas ID"
// @Success 200 {object} response.Envelope
// @Router /krs/{id}/detail [post]
func (h *KRSHandler) AddDetail(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload struct {
		KelasID string `json:"kelas_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "kelas_id required"))
		return
	}
	view, err := h.krs.AddDetail(c.Request.Context(), c.Param("id"), payload.KelasID, identity.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// RemoveDetail godoc
// @Summary Remove class from pending KRS sheet
// @Tags KRS
// @Produce json
// @Param id path string true "KRS ID"
// @Param kelasId path string true "Kelas ID"
// @Success 200 {object} response.Envelope
// @Router /krs/{id}/detail/{kelasId} [delete]
func (h *KRSHandler) RemoveDetail(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.krs.RemoveDetail(c.Request.Context(), c.Param("id"), c.Param("kelasId"), identity.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Decide godoc
// @Summary Approve or reject a pending KRS sheet
// @Description Only the advising dosen wali or an admin may decide
// @Tags KRS
// @Accept json
// @Produce json
// @Param id path string true "KRS ID"
// @Param payload body service.DecideKRSRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /krs/{id}/decide [put]
func (h *KRSHandler) Decide(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.DecideKRSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.krs.Decide(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
