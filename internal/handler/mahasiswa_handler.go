package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// MahasiswaHandler exposes student profile endpoints.
type MahasiswaHandler struct {
	mahasiswa *service.MahasiswaService
}

// NewMahasiswaHandler constructs MahasiswaHandler.
func NewMahasiswaHandler(mahasiswa *service.MahasiswaService) *MahasiswaHandler {
	return &MahasiswaHandler{mahasiswa: mahasiswa}
}

// List godoc
// @Summary List mahasiswa
// @Tags Mahasiswa
// @Produce json
// @Param prodi_id query string false "Filter by prodi"
// @Param dosen_wali_id query string false "Filter by dosen wali"
// @Param angkatan query int false "Filter by cohort year"
// @Param status query string false "Filter by status"
// @Param search query string false "Search NIM or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /mahasiswa [get]
func (h *MahasiswaHandler) List(c *gin.Context) {
	var filter models.MahasiswaFilter
	filter.ProdiID = c.Query("prodi_id")
	filter.DosenWaliID = c.Query("dosen_wali_id")
	if angkatan, err := strconv.Atoi(c.Query("angkatan")); err == nil {
		filter.Angkatan = angkatan
	}
	filter.Status = models.MahasiswaStatus(strings.ToUpper(c.Query("status")))
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	list, pagination, err := h.mahasiswa.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get mahasiswa profile
// @Tags Mahasiswa
// @Produce json
// @Param id path string true "Mahasiswa ID"
// @Success 200 {object} response.Envelope
// @Router /mahasiswa/{id} [get]
func (h *MahasiswaHandler) Get(c *gin.Context) {
	detail, err := h.mahasiswa.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Me godoc
// @Summary Own mahasiswa profile
// @Tags Mahasiswa
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mahasiswa/me [get]
func (h *MahasiswaHandler) Me(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.mahasiswa.GetByUserID(c.Request.Context(), identity.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create mahasiswa profile
// @Tags Mahasiswa
// @Accept json
// @Produce json
// @Param payload body service.CreateMahasiswaRequest true "Mahasiswa payload"
// @Success 201 {object} response.Envelope
// @Router /mahasiswa [post]
func (h *MahasiswaHandler) Create(c *gin.Context) {
	var req service.CreateMahasiswaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.mahasiswa.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update mahasiswa profile
// @Tags Mahasiswa
// @Accept json
// @Produce json
// @Param id path string true "Mahasiswa ID"
// @Param payload body service.UpdateMahasiswaRequest true "Mahasiswa payload"
// @Success 200 {object} response.Envelope
// @Router /mahasiswa/{id} [put]
func (h *MahasiswaHandler) Update(c *gin.Context) {
	var req service.UpdateMahasiswaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.mahasiswa.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
