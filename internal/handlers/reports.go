package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"reportes-ciudadanos/internal/apperr"
	"reportes-ciudadanos/internal/middleware"
	"reportes-ciudadanos/internal/models"
	"reportes-ciudadanos/internal/service"

	"github.com/gin-gonic/gin"
)

const multipartMemory = 8 << 20

// ListReports handles GET /api/reports?status=. The Spanish "estado" query
// parameter is accepted too.
func (h *Handler) ListReports(c *gin.Context) {
	filter := c.Query("status")
	if filter == "" {
		filter = c.Query("estado")
	}

	reports, err := h.reports.List(c.Request.Context(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// postForm returns the first non-empty value among the given field names.
func postForm(c *gin.Context, names ...string) string {
	for _, n := range names {
		if v := c.PostForm(n); v != "" {
			return v
		}
	}
	return ""
}

// formPhoto extracts the uploaded photo. A file input submitted without a
// selection arrives as a plain value, which is returned as a photo with an
// empty filename.
func formPhoto(form *multipart.Form, names ...string) (*service.Photo, error) {
	if form == nil {
		return nil, nil
	}
	for _, n := range names {
		if files := form.File[n]; len(files) > 0 {
			return readPhoto(files[0])
		}
	}
	for _, n := range names {
		if _, ok := form.Value[n]; ok {
			return &service.Photo{}, nil
		}
	}
	return nil, nil
}

func readPhoto(fh *multipart.FileHeader) (*service.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.Photo{Filename: fh.Filename, Data: data}, nil
}

// CreateReport handles the multipart submission of a new report.
func (h *Handler) CreateReport(c *gin.Context) {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, apperr.TooLarge(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)))
			return
		}
		h.fail(c, apperr.InvalidInput("invalid form data"))
		return
	}

	in := service.CreateReportInput{
		Address:   postForm(c, "address", "direccion"),
		Comment:   postForm(c, "comment", "comentario"),
		Email:     postForm(c, "email"),
		Latitude:  postForm(c, "lat", "latitude"),
		Longitude: postForm(c, "lng", "longitude"),
	}
	photo, err := formPhoto(c.Request.MultipartForm, "photo", "foto")
	if err != nil {
		h.fail(c, apperr.Internal("error reading photo", err))
		return
	}
	in.Photo = photo

	id, err := h.reports.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Reporte creado exitosamente",
		"id":      id,
	})
}

func reportID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidInput("invalid report id")
	}
	return uint(id), nil
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := h.reports.Get(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type statusRequest struct {
	Status          string  `json:"estado"`
	RejectionReason *string `json:"razon_rechazo"`
}

// UpdateStatus handles PUT /api/reports/:id/status (admin only).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.InvalidInput("invalid request body"))
		return
	}
	reason := ""
	if req.RejectionReason != nil {
		reason = *req.RejectionReason
	}

	status := models.ReportStatus(req.Status)
	err = h.reports.UpdateStatus(c.Request.Context(), middleware.CurrentIdentity(c), id, status, reason)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Estado actualizado a " + req.Status,
	})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.reports.Statistics(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
