package middleware

import (
	"net/http"
	"strings"

	"reportes-ciudadanos/internal/service"

	"github.com/gin-gonic/gin"
)

const LoginPath = "/login"

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
}

var allowed = Decision{Allowed: true}

func denied(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// Authenticate allows any caller holding a session identity.
func Authenticate(c *gin.Context) Decision {
	if !CurrentIdentity(c).Authenticated() {
		return denied(http.StatusUnauthorized, "No autenticado")
	}
	return allowed
}

// AuthorizeAdmin allows authenticated admins only.
func AuthorizeAdmin(c *gin.Context) Decision {
	if d := Authenticate(c); !d.Allowed {
		return d
	}
	if !CurrentIdentity(c).IsAdmin() {
		return denied(http.StatusForbidden, service.ForbiddenMessage)
	}
	return allowed
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// Deny writes the failure response of a guard. Anonymous browser navigation
// goes to the login page, everything else gets a JSON error.
func Deny(c *gin.Context, d Decision) {
	if d.Status == http.StatusUnauthorized && !isAPI(c) {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(d.Status, gin.H{"error": d.Reason})
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := Authenticate(c); !d.Allowed {
			Deny(c, d)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := AuthorizeAdmin(c); !d.Allowed {
			Deny(c, d)
			return
		}
		c.Next()
	}
}
