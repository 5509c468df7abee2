package handlers

import (
	"net/http"

	"reportes-ciudadanos/internal/middleware"
	"reportes-ciudadanos/internal/models"

	"github.com/gin-gonic/gin"
)

// Index sends logged-in callers to their landing page and everyone else to login.
func (h *Handler) Index(c *gin.Context) {
	if id := middleware.CurrentIdentity(c); id.Authenticated() {
		c.Redirect(http.StatusFound, landingPath(id))
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *Handler) Dashboard(c *gin.Context) {
	h.showApp(c)
}

func (h *Handler) AdminPage(c *gin.Context) {
	h.showApp(c)
}

func (h *Handler) showApp(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	render(c, http.StatusOK, "index.html", gin.H{
		"RoleLabel": roleLabel(id.Role),
		"Statuses":  models.Statuses,
		"FilterAll": models.FilterAll,
	})
}
