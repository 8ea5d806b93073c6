// internals/features/school/classes/controller/class_user_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	classDTO "kelasku_backend/internals/features/school/classes/dto"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

/* ================= Handlers (siswa) ================= */

// GET /api/u/classes/me
// Siswa hanya bisa lihat kelasnya sendiri.
func (h *ClassController) GetMyClass(c *fiber.Ctx) error {
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var row struct {
		ClassID *uuid.UUID
	}
	if err := h.DB.Table("students").
		Select("class_id").
		Where("id = ?", studentID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}
	if row.ClassID == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Belum terdaftar di kelas manapun")
	}

	m, err := h.findClass(*row.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas")
	}

	counts, err := h.studentCounts([]uuid.UUID{m.ID})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}
	return helper.JsonOK(c, "OK", classDTO.NewClassResponse(m, counts[m.ID]))
}
