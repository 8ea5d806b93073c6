// internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kelasku_backend/internals/constants"
	assignmentRoute "kelasku_backend/internals/features/school/assignments/route"
	classRoute "kelasku_backend/internals/features/school/classes/route"
	gradeRoute "kelasku_backend/internals/features/school/grades/route"
	materialRoute "kelasku_backend/internals/features/school/materials/route"
	studentRoute "kelasku_backend/internals/features/school/students/route"
	authRoute "kelasku_backend/internals/features/users/auth/route"
	authService "kelasku_backend/internals/features/users/auth/service"
	helperAuth "kelasku_backend/internals/helpers/auth"
	helperOSS "kelasku_backend/internals/helpers/oss"
	authMw "kelasku_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, deps *authService.Deps, files helperOSS.FileService) {
	startTime = time.Now()

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db, deps)

	// ===================== NAVIGASI (halaman SPA) =====================
	// /masuk: kalau sudah login, langsung lempar ke landing role-nya
	app.Get(constants.LoginPath, authMw.OptionalAuthMiddleware(db), func(c *fiber.Ctx) error {
		authMw.EnsureDeviceID(c)
		if role, ok := c.Locals(helperAuth.LocRole).(string); ok && role != "" {
			return c.Redirect(constants.Landing(role), fiber.StatusFound)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Silakan login",
		})
	})

	log.Println("[INFO] Setting up navigation guards...")
	guru := app.Group(constants.LandingTeacher, authMw.Guard(authMw.GuardConfig{
		DB:       db,
		Registry: deps.Registry,
		KV:       deps.KV,
		Role:     constants.RoleTeacher,
	}))
	guru.Get("/*", func(c *fiber.Ctx) error {
		name, _ := c.Locals(helperAuth.LocUserName).(string)
		return c.JSON(fiber.Map{
			"success":   true,
			"role":      constants.RoleTeacher,
			"user_name": name,
		})
	})

	siswa := app.Group(constants.LandingStudent, authMw.Guard(authMw.GuardConfig{
		DB:       db,
		Registry: deps.Registry,
		KV:       deps.KV,
		Role:     constants.RoleStudent,
	}))
	siswa.Get("/*", func(c *fiber.Ctx) error {
		name, _ := c.Locals(helperAuth.LocUserName).(string)
		return c.JSON(fiber.Map{
			"success":   true,
			"role":      constants.RoleStudent,
			"user_name": name,
		})
	})

	// ===================== API GURU =====================
	log.Println("[INFO] Setting up ADMIN group (guru)...")
	admin := app.Group("/api/a",
		authMw.AuthMiddleware(db),
		authMw.OnlyRoles(constants.RoleErrorTeacher("manajemen kelas"), constants.TeacherOnly...),
	)

	studentRoute.StudentAdminRoutes(admin.Group("/students"), db)
	classRoute.ClassAdminRoutes(admin.Group("/classes"), db)
	materialRoute.MaterialAdminRoutes(admin.Group("/materials"), db, files)
	assignmentRoute.AssignmentAdminRoutes(admin.Group("/assignments"), db, files)
	gradeRoute.GradeAdminRoutes(admin.Group("/grades"), db)

	// ===================== API SISWA =====================
	log.Println("[INFO] Setting up USER group (siswa)...")
	user := app.Group("/api/u",
		authMw.AuthMiddleware(db),
		authMw.OnlyRoles(constants.RoleErrorStudent("ruang siswa"), constants.StudentOnly...),
	)

	classRoute.ClassUserRoutes(user.Group("/classes"), db)
	materialRoute.MaterialUserRoutes(user.Group("/materials"), db, files)
	assignmentRoute.AssignmentUserRoutes(user.Group("/assignments"), db, files)
	gradeRoute.GradeUserRoutes(user.Group("/grades"), db)
}
