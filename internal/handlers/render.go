package handlers

import (
	"reportes-ciudadanos/internal/middleware"

	"github.com/gin-gonic/gin"
)

// render wraps c.HTML and passes the current identity to every template.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if id := middleware.CurrentIdentity(c); id.Authenticated() {
		data["correo"] = id.Email
		data["rol"] = string(id.Role)
		data["IsAdmin"] = id.IsAdmin()
	}

	c.HTML(status, tmpl, data)
}
