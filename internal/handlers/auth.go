package handlers

import (
	"log"
	"net/http"
	"strings"

	"reportes-ciudadanos/internal/auth"
	"reportes-ciudadanos/internal/metrics"
	"reportes-ciudadanos/internal/middleware"
	"reportes-ciudadanos/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	DashboardPath = "/dashboard"
	AdminPath     = "/admin"

	badCredentials = "Correo o contraseña incorrectos."
)

func landingPath(id auth.Identity) string {
	if id.IsAdmin() {
		return AdminPath
	}
	return DashboardPath
}

func (h *Handler) ShowLogin(c *gin.Context) {
	if id := middleware.CurrentIdentity(c); id.Authenticated() {
		c.Redirect(http.StatusFound, landingPath(id))
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{"error": ""})
}

type loginForm struct {
	Email    string `form:"correo"`
	Password string `form:"contrasena"`
}

func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"error": "Datos inválidos"})
		return
	}
	form.Email = strings.TrimSpace(form.Email)

	user, err := h.users.FindByEmail(c.Request.Context(), form.Email)
	if err != nil {
		log.Printf("failed to load user %s: %v", form.Email, err)
		render(c, http.StatusInternalServerError, "login.html", gin.H{"error": "Error interno, intente de nuevo"})
		return
	}
	if user == nil || !auth.VerifyPassword(form.Password, user.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		render(c, http.StatusUnauthorized, "login.html", gin.H{"error": badCredentials})
		return
	}

	id := auth.Identity{Email: user.Email, Role: user.Role}
	if err := middleware.StartSession(c, id); err != nil {
		log.Printf("failed to save session for %s: %v", user.Email, err)
		render(c, http.StatusInternalServerError, "login.html", gin.H{"error": "Error interno, intente de nuevo"})
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	c.Redirect(http.StatusFound, landingPath(id))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := middleware.EndSession(c); err != nil {
		log.Printf("failed to clear session: %v", err)
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// roleLabel is shown in the page header.
func roleLabel(r models.UserRole) string {
	if r == models.RoleAdmin {
		return "Administrador"
	}
	return "Usuario"
}
