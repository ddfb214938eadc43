package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// DosenHandler exposes lecturer profile endpoints.
type DosenHandler struct {
	dosen *service.DosenService
}

// NewDosenHandler constructs DosenHandler.
func NewDosenHandler(dosen *service.DosenService) *DosenHandler {
	return &DosenHandler{dosen: dosen}
}

// List godoc
// @Summary List dosen
// @Tags Dosen
// @Produce json
// @Param prodi_id query string false "Filter by prodi"
// @Param search query string false "Search NIDN or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /dosen [get]
func (h *DosenHandler) List(c *gin.Context) {
	var filter models.DosenFilter
	filter.ProdiID = c.Query("prodi_id")
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	list, pagination, err := h.dosen.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get dosen profile
// @Tags Dosen
// @Produce json
// @Param id path string true "Dosen ID"
// @Success 200 {object} response.Envelope
// @Router /dosen/{id} [get]
func (h *DosenHandler) Get(c *gin.Context) {
	detail, err := h.dosen.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Me godoc
// @Summary Own dosen profile
// @Tags Dosen
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dosen/me [get]
func (h *DosenHandler) Me(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.dosen.GetByUserID(c.Request.Context(), identity.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create dosen profile
// @Tags Dosen
// @Accept json
// @Produce json
// @Param payload body service.CreateDosenRequest true "Dosen payload"
// @Success 201 {object} response.Envelope
// @Router /dosen [post]
func (h *DosenHandler) Create(c *gin.Context) {
	var req service.CreateDosenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.dosen.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update dosen profile
// @Tags Dosen
// @Accept json
// @Produce json
// @Param id path string true "Dosen ID"
// @Param payload body service.UpdateDosenRequest true "Dosen payload"
// @Success 200 {object} response.Envelope
// @Router /dosen/{id} [put]
func (h *DosenHandler) Update(c *gin.Context) {
	var req service.UpdateDosenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.dosen.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
