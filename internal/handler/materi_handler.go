package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
	"github.com/stikom-adp/siakad-api/pkg/response"
)

// MateriHandler exposes course material endpoints.
type MateriHandler struct {
	materi *service.MateriService
}

// NewMateriHandler constructs MateriHandler.
func NewMateriHandler(materi *service.MateriService) *MateriHandler {
	return &MateriHandler{materi: materi}
}

// List godoc
// @Summary List materials for a class
// @Tags Materi
// @Produce json
// @Param id path string true "Kelas ID"
// @Param jenis query string false "RPS, RPP, or MATERI"
// @Param pertemuan query int false "Meeting number"
// @Success 200 {object} response.Envelope
// @Router /kelas/{id}/materi [get]
func (h *MateriHandler) List(c *gin.Context) {
	filter := models.MateriFilter{KelasMKID: c.Param("id")}
	filter.Jenis = models.MateriJenis(strings.ToUpper(c.Query("jenis")))
	if pertemuan, err := strconv.Atoi(c.Query("pertemuan")); err == nil {
		filter.Pertemuan = pertemuan
	}

	list, err := h.materi.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Upload godoc
// @Summary Upload course material
// @Tags Materi
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Kelas ID"
// @Param jenis formData string true "RPS, RPP, or MATERI"
// @Param judul formData string true "Title"
// @Param pertemuan formData int false "Meeting number"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /kelas/{id}/materi [post]
func (h *MateriHandler) Upload(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UploadMateriRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid materi payload"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	req.FileName = fileHeader.Filename
	req.File = src

	materi, err := h.materi.Upload(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, materi)
}

// Delete godoc
// @Summary Delete course material
// @Tags Materi
// @Produce json
// @Param id path string true "Materi ID"
// @Success 204 {object} response.Envelope
// @Router /materi/{id} [delete]
func (h *MateriHandler) Delete(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.materi.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SignDownload godoc
// @Summary Issue a time-limited download URL
// @Tags Materi
// @Produce json
// @Param id path string true "Materi ID"
// @Success 200 {object} response.Envelope
// @Router /materi/{id}/download-url [get]
func (h *MateriHandler) SignDownload(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	download, err := h.materi.SignDownload(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, download, nil)
}

// Download godoc
// @Summary Download material via signed token
// @Description Token gate; no bearer auth required
// @Tags Materi
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /materi/download [get]
func (h *MateriHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	rc, filename, err := h.materi.OpenSigned(c.Request.Context(), token)
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
