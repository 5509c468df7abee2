package middleware

import (
	"log"

	"reportes-ciudadanos/internal/auth"
	"reportes-ciudadanos/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionEmailKey = "correo"
	SessionRoleKey  = "rol"

	identityKey = "Identity"
)

// InjectIdentity resolves the caller from the session once per request. A
// session carrying only one of email/role is invalid and gets cleared.
func InjectIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		email, _ := sess.Get(SessionEmailKey).(string)
		role, _ := sess.Get(SessionRoleKey).(string)

		id := auth.Identity{Email: email, Role: models.UserRole(role)}
		if !id.Authenticated() {
			if email != "" || role != "" {
				sess.Clear()
				if err := sess.Save(); err != nil {
					log.Printf("failed to clear partial session: %v", err)
				}
			}
			id = auth.Identity{}
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// CurrentIdentity returns the identity set by InjectIdentity, or the
// anonymous identity.
func CurrentIdentity(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}

// StartSession binds the identity to the session in a single save.
func StartSession(c *gin.Context, id auth.Identity) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(SessionEmailKey, id.Email)
	sess.Set(SessionRoleKey, string(id.Role))
	if err := sess.Save(); err != nil {
		return err
	}
	c.Set(identityKey, id)
	return nil
}

func EndSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		return err
	}
	c.Set(identityKey, auth.Identity{})
	return nil
}
