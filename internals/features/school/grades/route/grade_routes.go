package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	gradeController "kelasku_backend/internals/features/school/grades/controller"
)

// Panggil dengan: route.GradeAdminRoutes(app.Group("/api/a/grades", ...guard guru), db)
func GradeAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := gradeController.NewGradeController(db)

	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}

// Panggil dengan: route.GradeUserRoutes(app.Group("/api/u/grades", ...guard siswa), db)
func GradeUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := gradeController.NewGradeController(db)

	r.Get("/", ctl.ListMine)
}
