// internals/features/school/grades/controller/grade_user_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	gradeDTO "kelasku_backend/internals/features/school/grades/dto"
	gradeModel "kelasku_backend/internals/features/school/grades/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

/* ================= Handlers (siswa) ================= */

// GET /api/u/grades
// Siswa hanya bisa lihat nilainya sendiri; filter mapel/semester opsional.
func (h *GradeController) ListMine(c *fiber.Ctx) error {
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&gradeModel.GradeModel{}).Where("student_id = ?", studentID)

	if v := strings.TrimSpace(c.Query("subject")); v != "" {
		tx = tx.Where("subject ILIKE ?", "%"+v+"%")
	}
	if v := strings.TrimSpace(c.Query("semester")); v != "" {
		tx = tx.Where("semester = ?", v)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung nilai")
	}

	var rows []gradeModel.GradeModel
	if err := tx.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil nilai")
	}

	resp := make([]*gradeDTO.GradeResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, gradeDTO.NewGradeResponse(&rows[i], ""))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}
