package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextAdminIDKey    = "auth_admin_id"
	contextAdminEmailKey = "auth_admin_email"
	contextRoleKey       = "auth_role"
)

func SetAuthContext(c echo.Context, adminID uuid.UUID, email string, role string) {
	c.Set(contextAdminIDKey, adminID)
	c.Set(contextAdminEmailKey, email)
	c.Set(contextRoleKey, role)
}

func AdminIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextAdminIDKey)
	adminID, ok := value.(uuid.UUID)
	return adminID, ok
}

// ActorFromContext returns the authenticated administrator's email, the
// identity recorded on every audited mutation.
func ActorFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextAdminEmailKey)
	email, ok := value.(string)
	return email, ok
}

func RoleFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextRoleKey)
	role, ok := value.(string)
	return role, ok
}
