package auth

import (
	"github.com/gofiber/fiber/v2"

	authHelper "kelasku_backend/internals/helpers/auth"
)

// OnlyRoles meloloskan request hanya jika role di Locals (diisi
// AuthMiddleware) termasuk daftar. Dipasang SETELAH AuthMiddleware;
// tanpa role di context berarti salah urutan pasang → 401.
func OnlyRoles(forbiddenMessage string, roles ...string) fiber.Handler {
	if forbiddenMessage == "" {
		forbiddenMessage = "Anda tidak punya akses ke fitur ini"
	}
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(authHelper.LocRole).(string)
		if !ok || role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: missing role information",
			})
		}
		if _, ok := allowed[role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": forbiddenMessage,
			})
		}
		return c.Next()
	}
}
