package handlers

import (
	"log"
	"net/http"

	"reportes-ciudadanos/internal/apperr"
	"reportes-ciudadanos/internal/repository"
	"reportes-ciudadanos/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler serves the HTML pages and the JSON report API.
type Handler struct {
	users        repository.UserStore
	reports      *service.ReportService
	exposeErrors bool
}

// New builds the handlers. exposeErrors puts internal causes into 500 bodies
// and must be off in production.
func New(users repository.UserStore, reports *service.ReportService, exposeErrors bool) *Handler {
	return &Handler{
		users:        users,
		reports:      reports,
		exposeErrors: exposeErrors,
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": apperr.PublicMessage(err, h.exposeErrors)})
}
