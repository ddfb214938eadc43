package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// PembayaranHandler exposes payment endpoints.
type PembayaranHandler struct {
	pembayaran *service.PembayaranService
}

// NewPembayaranHandler constructs PembayaranHandler.
func NewPembayaranHandler(pembayaran *service.PembayaranService) *PembayaranHandler {
	return &PembayaranHandler{pembayaran: pembayaran}
}

// List godoc
// @Summary List payments
// @Tags Pembayaran
// @Produce json
// @Param mahasiswa_id query string false "Filter by mahasiswa"
// @Param semester_id query string false "Filter by semester"
// @Param jenis query string false "SPP, PRAKTIKUM, WISUDA, or LAINNYA"
// @Param status query string false "PENDING, VERIFIED, or REJECTED"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /pembayaran [get]
func (h *PembayaranHandler) List(c *gin.Context) {
	var filter models.PembayaranFilter
	filter.MahasiswaID = c.Query("mahasiswa_id")
	filter.SemesterID = c.Query("semester_id")
	filter.Jenis = models.PembayaranJenis(strings.ToUpper(c.Query("jenis")))
	filter.Status = models.PembayaranStatus(strings.ToUpper(c.Query("status")))
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	// Mahasiswa only ever see their own payments.
	if identity := identityFromContext(c); identity != nil && identity.Role == models.RoleMahasiswa {
		filter.MahasiswaID = identity.ProfileID
	}

	list, pagination, err := h.pembayaran.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, pagination)
}

// Get godoc
// @Summary Get payment
// @Tags Pembayaran
// @Produce json
// @Param id path string true "Pembayaran ID"
// @Success 200 {object} response.Envelope
// @Router /pembayaran/{id} [get]
func (h *PembayaranHandler) Get(c *gin.Context) {
	detail, err := h.pembayaran.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if identity := identityFromContext(c); identity != nil && identity.Role == models.RoleMahasiswa && detail.MahasiswaID != identity.ProfileID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Submit godoc
// @Summary Submit payment with proof file
// @Tags Pembayaran
// @Accept multipart/form-data
// @Produce json
// @Param semester_id formData string true "Semester ID"
// @Param jenis formData string true "Payment type"
// @Param jumlah formData int true "Amount"
// @Param catatan formData string false "Note"
// @Param bukti formData file true "Proof of payment"
// @Success 201 {object} response.Envelope
// @Router /pembayaran [post]
func (h *PembayaranHandler) Submit(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitPembayaranRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid pembayaran payload"))
		return
	}

	fileHeader, err := c.FormFile("bukti")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "bukti file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open bukti file"))
		return
	}
	defer src.Close()

	req.FileName = fileHeader.Filename
	req.File = src

	detail, err := h.pembayaran.Submit(c.Request.Context(), identity.ProfileID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Verify godoc
// @Summary Verify or reject payment
// @Description Final decision; verified and rejected payments are immutable
// @Tags Pembayaran
// @Accept json
// @Produce json
// @Param id path string true "Pembayaran ID"
// @Param payload body service.VerifyPembayaranRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Router /pembayaran/{id}/verify [put]
func (h *PembayaranHandler) Verify(c *gin.Context) {
	var req service.VerifyPembayaranRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.pembayaran.Verify(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Bukti godoc
// @Summary Download proof of payment
// @Tags Pembayaran
// @Produce octet-stream
// @Param id path string true "Pembayaran ID"
// @Success 200 {file} binary
// @Router /pembayaran/{id}/bukti [get]
func (h *PembayaranHandler) Bukti(c *gin.Context) {
	if identity := identityFromContext(c); identity != nil && identity.Role == models.RoleMahasiswa {
		detail, err := h.pembayaran.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		if detail.MahasiswaID != identity.ProfileID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	rc, filename, err := h.pembayaran.OpenBukti(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
