// internals/features/school/assignments/controller/assignment_user_controller.go
package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	assignmentDTO "kelasku_backend/internals/features/school/assignments/dto"
	assignmentModel "kelasku_backend/internals/features/school/assignments/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

/* ================= Handlers (siswa) ================= */

func (h *AssignmentController) studentClassID(c *fiber.Ctx) (uuid.UUID, error) {
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

// GET /api/u/assignments
// Tugas kelas siswa sendiri, urut tenggat terdekat; flag overdue dihitung server.
func (h *AssignmentController) ListMine(c *fiber.Ctx) error {
	classID, err := h.studentClassID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	p := helper.ParseFiber(c, "due_at", "asc", helper.DefaultOpts)

	tx := h.DB.Model(&assignmentModel.AssignmentModel{}).Where("class_id = ?", classID)

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung tugas")
	}

	var rows []assignmentModel.AssignmentModel
	if err := tx.Order("due_at ASC NULLS LAST").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tugas")
	}

	now := time.Now()
	resp := make([]*assignmentDTO.AssignmentResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, assignmentDTO.NewAssignmentResponse(&rows[i], now))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// GET /api/u/assignments/:id
func (h *AssignmentController) GetMine(c *fiber.Ctx) error {
	classID, err := h.studentClassID(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	var m assignmentModel.AssignmentModel
	if err := h.DB.
		Where("id = ? AND class_id = ?", id, classID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Tugas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tugas")
	}

	return helper.JsonOK(c, "OK", assignmentDTO.NewAssignmentResponse(&m, time.Now()))
}
