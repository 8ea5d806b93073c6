package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ipLimiter membuat limiter per alamat IP dengan pesan penolakan sendiri.
func ipLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})
}

// GlobalRateLimiter dipasang di seluruh app.
func GlobalRateLimiter() fiber.Handler {
	return ipLimiter(100, time.Minute, "Terlalu banyak permintaan. Silakan coba lagi nanti.")
}

// LoginRateLimiter lebih ketat: dipasang di endpoint login guru & siswa.
func LoginRateLimiter() fiber.Handler {
	return ipLimiter(5, time.Minute, "Terlalu banyak percobaan login. Coba beberapa saat lagi.")
}

// ResetPasswordRateLimiter membatasi reset password siswa oleh guru.
func ResetPasswordRateLimiter() fiber.Handler {
	return ipLimiter(10, 5*time.Minute, "Terlalu banyak permintaan reset password. Tunggu beberapa menit.")
}

// ExportRateLimiter membatasi export CSV (query berat).
func ExportRateLimiter() fiber.Handler {
	return ipLimiter(6, time.Minute, "Terlalu banyak permintaan export. Silakan coba lagi dalam 1 menit.")
}
