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

// KelasHandler exposes class-offering and room endpoints.
type KelasHandler struct {
	kelas *service.KelasService
}

// NewKelasHandler constructs KelasHandler.
func NewKelasHandler(kelas *service.KelasService) *KelasHandler {
	return &KelasHandler{kelas: kelas}
}

// List godoc
// @Summary List kelas
// @Tags Kelas
// @Produce json
// @Param semester_id query string false "Filter by semester"
// @Param mata_kuliah_id query string false "Filter by mata kuliah"
// @Param dosen_id query string false "Filter by dosen"
// @Param ruangan_id query string false "Filter by ruangan"
// @Param hari query int false "Filter by weekday (1-7)"
// @Param search query string false "Search class or course name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /kelas [get]
func (h *KelasHandler) List(c *gin.Context) {
	var filter models.KelasMKFilter
	filter.SemesterID = c.Query("semester_id")
	filter.MataKuliahID = c.Query("mata_kuliah_id")
	filter.DosenID = c.Query("dosen_id")
	filter.RuanganID = c.Query("ruangan_id")
	if hari, err := strconv.Atoi(c.Query("hari")); err == nil {
		filter.Hari = hari
	}
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	list, pagination, err := h.kelas.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get kelas
// @Tags Kelas
// @Produce json
// @Param id path string true "Kelas ID"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id} [get]
func (h *KelasHandler) Get(c *gin.Context) {
	detail, err := h.kelas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create kelas
// @Tags Kelas
// @Accept json
// @Produce json
// @Param payload body service.KelasRequest true "Kelas payload"
// @Success 201 {object} response.Envelope
// @Router /kelas [post]
func (h *KelasHandler) Create(c *gin.Context) {
	var req service.KelasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.kelas.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update kelas
// @Tags Kelas
// @Accept json
// @Produce json
// @Param id path string true "Kelas ID"
// @Param payload body service.KelasRequest true "Kelas payload"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id} [put]
func (h *KelasHandler) Update(c *gin.Context) {
	var req service.KelasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.kelas.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete kelas
// @Tags Kelas
// @Produce json
// @Param id path string true "Kelas ID"
// @Success 204 {object} response.Envelope
// @Router /kelas/{id} [delete]
func (h *KelasHandler) Delete(c *gin.Context) {
	if err := h.kelas.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListRuangan godoc
// @Summary List ruangan
// @Tags Kelas
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ruangan [get]
func (h *KelasHandler) ListRuangan(c *gin.Context) {
	rooms, err := h.kelas.ListRuangan(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// CreateRuangan godoc
// @Summary Register ruangan
// @Tags Kelas
// @Accept json
// @Produce json
// @Param payload body service.RuanganRequest true "Ruangan payload"
// @Success 201 {object} response.Envelope
// @Router /ruangan [post]
func (h *KelasHandler) CreateRuangan(c *gin.Context) {
	var req service.RuanganRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	room, err := h.kelas.CreateRuangan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}
