// file: internals/features/users/auth/route/user_route.go
package route

import (
	"kelasku_backend/internals/constants"
	controller "kelasku_backend/internals/features/users/auth/controller"
	"kelasku_backend/internals/features/users/auth/service"
	rateLimiter "kelasku_backend/internals/middlewares"
	authMw "kelasku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthRoutes mendaftarkan seluruh endpoint auth.
// Base: /api/auth
func AuthRoutes(app *fiber.App, db *gorm.DB, deps *service.Deps) {
	authController := controller.NewAuthController(db, deps)

	baseAuth := app.Group("/api/auth")

	// CSRF seed & refresh (cookie-based, tanpa middleware auth)
	baseAuth.Get("/csrf", authController.CSRF)
	baseAuth.Post("/refresh", authController.RefreshToken)

	// 🔓 Public: tiga jalur login
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.LoginTeacher)
	baseAuth.Post("/login-google", rateLimiter.LoginRateLimiter(), authController.LoginGoogle)
	baseAuth.Post("/login-siswa", rateLimiter.LoginRateLimiter(), authController.LoginStudent)

	// Logout sengaja TANPA AuthMiddleware: token yang sudah expired pun
	// harus tetap bisa logout (clear cookies + revoke refresh).
	baseAuth.Post("/logout", authController.Logout)

	// One-shot redirect path, keyed cookie device_id (belum tentu login)
	baseAuth.Get("/redirect-path", authController.RedirectPath)

	// 🔒 Butuh access token valid dengan role yang dikenal aplikasi
	protected := baseAuth.Group("", authMw.AuthMiddleware(db), authMw.OnlyRoles("", constants.AllRoles...))
	protected.Get("/me", authController.Me)
	protected.Get("/state", authController.State)
}
