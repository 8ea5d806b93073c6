package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	materialController "kelasku_backend/internals/features/school/materials/controller"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

// Panggil dengan: route.MaterialAdminRoutes(app.Group("/api/a/materials", ...guard guru), db, files)
func MaterialAdminRoutes(r fiber.Router, db *gorm.DB, files helperOSS.FileService) {
	ctl := materialController.NewMaterialController(db, files)

	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}

// Panggil dengan: route.MaterialUserRoutes(app.Group("/api/u/materials", ...guard siswa), db, files)
func MaterialUserRoutes(r fiber.Router, db *gorm.DB, files helperOSS.FileService) {
	ctl := materialController.NewMaterialController(db, files)

	r.Get("/", ctl.ListMine)
	r.Get("/:id", ctl.GetMine)
}
