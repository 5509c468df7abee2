package server

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"reportes-ciudadanos/internal/config"
	"reportes-ciudadanos/internal/handlers"
	"reportes-ciudadanos/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "reportes_session"

func NewRouter(cfg *config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.Default()

	r.Static("/static", cfg.StaticDir)
	r.Static("/uploads", cfg.UploadDir)

	r.SetFuncMap(template.FuncMap{
		"eq":    func(a, b interface{}) bool { return a == b },
		"lower": strings.ToLower,
	})
	if cfg.TemplatesGlob != "" {
		if matches, _ := filepath.Glob(cfg.TemplatesGlob); len(matches) > 0 {
			r.LoadHTMLGlob(cfg.TemplatesGlob)
		}
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectIdentity())

	// PAGES
	r.GET("/", h.Index)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", middleware.RequireAuth(), h.Logout)
	r.GET("/dashboard", middleware.RequireAuth(), h.Dashboard)
	r.GET("/admin", middleware.RequireAdmin(), h.AdminPage)

	// REPORTS API
	// the Spanish paths are kept for the existing browser client
	for _, prefix := range []string{"/api/reports", "/api/reportes"} {
		api := r.Group(prefix)
		api.Use(middleware.RequireAuth())

		api.GET("", h.ListReports)
		api.POST("", middleware.LimitBody(cfg.MaxUploadBytes), h.CreateReport)
		api.GET("/:id", h.GetReport)

		api.PUT("/:id/status", middleware.RequireAdmin(), h.UpdateStatus)
		api.PUT("/:id/estado", middleware.RequireAdmin(), h.UpdateStatus)
	}

	r.GET("/api/statistics", middleware.RequireAdmin(), h.Statistics)
	r.GET("/api/estadisticas", middleware.RequireAdmin(), h.Statistics)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
