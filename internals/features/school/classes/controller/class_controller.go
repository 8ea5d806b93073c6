// internals/features/school/classes/controller/class_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	classDTO "kelasku_backend/internals/features/school/classes/dto"
	classModel "kelasku_backend/internals/features/school/classes/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

type ClassController struct {
	DB *gorm.DB
}

func NewClassController(db *gorm.DB) *ClassController {
	return &ClassController{DB: db}
}

var validateClass = validator.New()

/* ================= Helpers ================= */

func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

func (h *ClassController) findClass(id uuid.UUID) (*classModel.ClassModel, error) {
	var m classModel.ClassModel
	if err := h.DB.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// studentCounts menghitung siswa aktif per kelas dalam satu query
func (h *ClassController) studentCounts(classIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(classIDs))
	if len(classIDs) == 0 {
		return out, nil
	}
	type row struct {
		ClassID uuid.UUID
		Total   int64
	}
	var rows []row
	err := h.DB.Table("students").
		Select("class_id, COUNT(*) AS total").
		Where("class_id IN ? AND is_active = ?", classIDs, true).
		Group("class_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ClassID] = r.Total
	}
	return out, nil
}

/* ================= Handlers (guru) ================= */

// POST /api/a/classes
func (h *ClassController) Create(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var req classDTO.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validateClass.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	m := req.ToModel(teacherID)
	if err := h.DB.Create(m).Error; err != nil {
		if isUniqueErr(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kelas dengan nama itu sudah ada di tahun ajaran tsb")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan kelas")
	}

	return helper.JsonCreated(c, "Kelas berhasil dibuat", classDTO.NewClassResponse(m, 0))
}

// GET /api/a/classes/:id
func (h *ClassController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	m, err := h.findClass(id)
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

// GET /api/a/classes
func (h *ClassController) List(c *fiber.Ctx) error {
	var q classDTO.ListClassQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	p := helper.ParseFiber(c, "grade", "asc", helper.DefaultOpts)

	tx := h.DB.Model(&classModel.ClassModel{})

	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		like := "%" + strings.TrimSpace(*q.Search) + "%"
		tx = tx.Where("name ILIKE ? OR subject ILIKE ? OR homeroom ILIKE ?", like, like, like)
	}
	if q.Grade != nil {
		tx = tx.Where("grade = ?", *q.Grade)
	}
	if q.AcademicYear != nil && strings.TrimSpace(*q.AcademicYear) != "" {
		tx = tx.Where("academic_year = ?", strings.TrimSpace(*q.AcademicYear))
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung kelas")
	}

	allowedSort := map[string]string{
		"grade":         "grade",
		"name":          "name",
		"academic_year": "academic_year",
		"created_at":    "created_at",
	}
	orderClause, err := p.SafeOrderClause(allowedSort, "grade")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "sort_by tidak valid")
	}
	orderExpr := strings.TrimPrefix(orderClause, "ORDER BY ")

	var rows []classModel.ClassModel
	if err := tx.Order(orderExpr).Order("name ASC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data kelas")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	counts, err := h.studentCounts(ids)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}

	resp := make([]*classDTO.ClassResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, classDTO.NewClassResponse(&rows[i], counts[rows[i].ID]))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// PUT /api/a/classes/:id
func (h *ClassController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findClass(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kelas")
	}

	var req classDTO.UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validateClass.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	req.ApplyToModel(existing)

	if err := h.DB.Save(existing).Error; err != nil {
		if isUniqueErr(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Kelas dengan nama itu sudah ada di tahun ajaran tsb")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui kelas")
	}

	counts, err := h.studentCounts([]uuid.UUID{existing.ID})
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}
	return helper.JsonUpdated(c, "Kelas diperbarui", classDTO.NewClassResponse(existing, counts[existing.ID]))
}

// DELETE /api/a/classes/:id
// Siswa di kelas itu dilepas (class_id NULL), tidak ikut terhapus.
func (h *ClassController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("students").
			Where("class_id = ?", id).
			Update("class_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&classModel.ClassModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus kelas")
	}

	return helper.JsonDeleted(c, "Kelas dihapus", fiber.Map{"id": id})
}
