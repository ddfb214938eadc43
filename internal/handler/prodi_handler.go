package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// ProdiHandler exposes study-program endpoints.
type ProdiHandler struct {
	prodi *service.ProdiService
}

// NewProdiHandler constructs ProdiHandler.
func NewProdiHandler(prodi *service.ProdiService) *ProdiHandler {
	return &ProdiHandler{prodi: prodi}
}

// List godoc
// @Summary List prodi
// @Tags Prodi
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /prodi [get]
func (h *ProdiHandler) List(c *gin.Context) {
	list, err := h.prodi.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Get godoc
// @Summary Get prodi
// @Tags Prodi
// @Produce json
// @Param id path string true "Prodi ID"
// @Success 200 {object} response.Envelope
// @Router /prodi/{id} [get]
func (h *ProdiHandler) Get(c *gin.Context) {
	prodi, err := h.prodi.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prodi, nil)
}

// Create godoc
// @Summary Create prodi
// @Tags Prodi
// @Accept json
// @Produce json
// @Param payload body service.ProdiRequest true "Prodi payload"
// @Success 201 {object} response.Envelope
// @Router /prodi [post]
func (h *ProdiHandler) Create(c *gin.Context) {
	var req service.ProdiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	prodi, err := h.prodi.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, prodi)
}

// Update godoc
// @Summary Update prodi
// @Tags Prodi
// @Accept json
// @Produce json
// @Param id path string true "Prodi ID"
// @Param payload body service.ProdiRequest true "Prodi payload"
// @Success 200 {object} response.Envelope
// @Router /prodi/{id} [put]
func (h *ProdiHandler) Update(c *gin.Context) {
	var req service.ProdiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	prodi, err := h.prodi.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prodi, nil)
}
