package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentController "kelasku_backend/internals/features/school/assignments/controller"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

// Panggil dengan: route.AssignmentAdminRoutes(app.Group("/api/a/assignments", ...guard guru), db, files)
func AssignmentAdminRoutes(r fiber.Router, db *gorm.DB, files helperOSS.FileService) {
	ctl := assignmentController.NewAssignmentController(db, files)

	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}

// Panggil dengan: route.AssignmentUserRoutes(app.Group("/api/u/assignments", ...guard siswa), db, files)
func AssignmentUserRoutes(r fiber.Router, db *gorm.DB, files helperOSS.FileService) {
	ctl := assignmentController.NewAssignmentController(db, files)

	r.Get("/", ctl.ListMine)
	r.Get("/:id", ctl.GetMine)
}
