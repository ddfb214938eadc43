package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// MataKuliahHandler exposes course catalog endpoints.
type MataKuliahHandler struct {
	courses *service.MataKuliahService
}

// NewMataKuliahHandler constructs MataKuliahHandler.
func NewMataKuliahHandler(courses *service.MataKuliahService) *MataKuliahHandler {
	return &MataKuliahHandler{courses: courses}
}

// List godoc
// @Summary List mata kuliah
// @Tags MataKuliah
// @Produce json
// @Param prodi_id query string false "Filter by prodi"
// @Param semester_ideal query int false "Filter by ideal semester"
// @Param aktif query bool false "Filter by active flag"
// @Param search query string false "Search code or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /matakuliah [get]
func (h *MataKuliahHandler) List(c *gin.Context) {
	var filter models.MataKuliahFilter
	filter.ProdiID = c.Query("prodi_id")
	if ideal, err := strconv.Atoi(c.Query("semester_ideal")); err == nil {
		filter.SemesterIdeal = ideal
	}
	if aktif := c.Query("aktif"); aktif != "" {
		v := aktif == "true"
		filter.Aktif = &v
	}
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	list, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get mata kuliah
// @Tags MataKuliah
// @Produce json
// @Param id path string true "Mata kuliah ID"
// @Success 200 {object} response.Envelope
// @Router /matakuliah/{id} [get]
func (h *MataKuliahHandler) Get(c *gin.Context) {
	mk, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mk, nil)
}

// Upsert godoc
// @Summary Create or update mata kuliah by code
// @Description Idempotent upsert keyed on kode_mk
// @Tags MataKuliah
// @Accept json
// @Produce json
// @Param payload body service.UpsertMataKuliahRequest true "Mata kuliah payload"
// @Success 200 {object} response.Envelope
// @Router /matakuliah [post]
func (h *MataKuliahHandler) Upsert(c *gin.Context) {
	var req service.UpsertMataKuliahRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mk, err := h.courses.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mk, nil)
}

// Deactivate godoc
// @Summary Deactivate mata kuliah
// @Tags MataKuliah
// @Produce json
// @Param id path string true "Mata kuliah ID"
// @Success 204 {object} response.Envelope
// @Router /matakuliah/{id} [delete]
func (h *MataKuliahHandler) Deactivate(c *gin.Context) {
	if err := h.courses.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
