package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	classController "kelasku_backend/internals/features/school/classes/controller"
)

// Panggil dengan: route.ClassAdminRoutes(app.Group("/api/a/classes", ...guard guru), db)
func ClassAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctl := classController.NewClassController(db)

	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}

// Panggil dengan: route.ClassUserRoutes(app.Group("/api/u/classes", ...guard siswa), db)
func ClassUserRoutes(r fiber.Router, db *gorm.DB) {
	ctl := classController.NewClassController(db)

	r.Get("/me", ctl.GetMyClass)
}
