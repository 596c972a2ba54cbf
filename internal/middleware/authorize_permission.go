package middleware

import (
	"bondbook-backend/internal/constants"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the session user's role against constants.PermissionRoles.
// Unconfigured permission -> 500 "Permission configuration error"; role not allowed -> 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if user.Role == "" {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		roles, ok := constants.PermissionRoles[permission]
		if !ok || len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, user.Role) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
