package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	studentController "kelasku_backend/internals/features/school/students/controller"
	rateLimiter "kelasku_backend/internals/middlewares"
)

// Panggil dengan: route.StudentAdminRoutes(app.Group("/api/a/students", ...guard guru), db)
// Hasil endpoint:
//
//	/api/a/students            (CRUD + list)
//	/api/a/students/export     (CSV roster)
//	/api/a/students/mine       (record milik guru pemanggil)
func StudentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := studentController.NewStudentController(db)

	r.Get("/export", rateLimiter.ExportRateLimiter(), ctl.ExportCSV)

	r.Get("/mine", ctl.ListMine)
	r.Delete("/mine/:id", ctl.DeleteMine)

	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Patch("/:id/deactivate", ctl.Deactivate)
	r.Patch("/:id/reactivate", ctl.Reactivate)
	r.Post("/:id/reset-password", rateLimiter.ResetPasswordRateLimiter(), ctl.ResetPassword)
}
