// internals/features/school/materials/controller/material_user_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	materialDTO "kelasku_backend/internals/features/school/materials/dto"
	materialModel "kelasku_backend/internals/features/school/materials/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

/* ================= Handlers (siswa) ================= */

// studentClassID membaca kelas siswa pemanggil dari roster
func (h *MaterialController) studentClassID(c *fiber.Ctx) (uuid.UUID, error) {
	studentID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	var row struct {
		ClassID *uuid.UUID
	}
	if err := h.DB.Table("students").
		Select("class_id").
		Where("id = ? AND is_active = ?", studentID, true).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fiber.NewError(fiber.StatusNotFound, "Siswa tidak ditemukan")
		}
		return uuid.Nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}
	if row.ClassID == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusNotFound, "Belum terdaftar di kelas manapun")
	}
	return *row.ClassID, nil
}

// GET /api/u/materials
// Hanya materi kelas siswa sendiri.
func (h *MaterialController) ListMine(c *fiber.Ctx) error {
	classID, err := h.studentClassID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&materialModel.MaterialModel{}).Where("class_id = ?", classID)

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung materi")
	}

	var rows []materialModel.MaterialModel
	if err := tx.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil materi")
	}

	resp := make([]*materialDTO.MaterialResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, materialDTO.NewMaterialResponse(&rows[i]))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// GET /api/u/materials/:id
func (h *MaterialController) GetMine(c *fiber.Ctx) error {
	classID, err := h.studentClassID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var m materialModel.MaterialModel
	if err := h.DB.
		Where("id = ? AND class_id = ?", id, classID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Materi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil materi")
	}

	return helper.JsonOK(c, "OK", materialDTO.NewMaterialResponse(&m))
}
