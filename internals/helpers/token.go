// file: internals/helpers/token.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocRawToken: raw JWT yang disimpan middleware auth di Locals supaya
// handler logout tidak perlu parse ulang header.
const LocRawToken = "raw_token"

// GetRawAccessToken mencari access token dari tiga tempat, urut:
// cookie access_token, Locals hasil middleware, lalu header Authorization.
func GetRawAccessToken(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v
	}
	if v, ok := c.Locals(LocRawToken).(string); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	if after, found := strings.CutPrefix(c.Get("Authorization"), "Bearer "); found {
		return strings.TrimSpace(after)
	}
	return ""
}

// GetRefreshTokenFromCookie: refresh token hanya pernah hidup di cookie.
func GetRefreshTokenFromCookie(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Cookies("refresh_token"))
}

// CheckCSRFCookieHeader menjalankan double-submit check untuk request
// yang autentikasinya lewat cookie: header X-CSRF-Token wajib ada dan
// sama persis dengan cookie csrf_token.
func CheckCSRFCookieHeader(c *fiber.Ctx) error {
	cookie := strings.TrimSpace(c.Cookies("csrf_token"))
	header := strings.TrimSpace(c.Get("X-CSRF-Token"))
	switch {
	case cookie == "":
		return fiber.NewError(fiber.StatusForbidden, "CSRF token missing (cookie)")
	case header == "":
		return fiber.NewError(fiber.StatusForbidden, "CSRF token missing (header)")
	case cookie != header:
		return fiber.NewError(fiber.StatusForbidden, "CSRF token mismatch")
	}
	return nil
}
