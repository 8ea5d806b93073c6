package routes

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	databases "kelasku_backend/internals/databases"
)

// BaseRoutes: endpoint infrastruktur di luar guard (root, health, panic test).
func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Kelasku backend siap 🚀")
	})

	// memverifikasi recovery middleware di lingkungan nyata
	app.Get("/panic-test", func(c *fiber.Ctx) error {
		panic("Simulasi panic error!")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		serverState, dbState := "OK", "connected"
		if sqlDB, err := databases.DB.DB(); err != nil || sqlDB.Ping() != nil {
			status = fiber.StatusServiceUnavailable
			serverState, dbState = "DOWN", "unreachable"
		}

		return c.Status(status).JSON(fiber.Map{
			"status":         serverState,
			"database":       dbState,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    os.Getenv("APP_ENV"),
		})
	})
}
