// internals/features/school/grades/controller/grade_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	gradeDTO "kelasku_backend/internals/features/school/grades/dto"
	gradeModel "kelasku_backend/internals/features/school/grades/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

type GradeController struct {
	DB *gorm.DB
}

func NewGradeController(db *gorm.DB) *GradeController {
	return &GradeController{DB: db}
}

var validateGrade = validator.New()

/* ================= Helpers ================= */

type gradeWithName struct {
	gradeModel.GradeModel
	FullName string
}

func (h *GradeController) findGrade(id uuid.UUID) (*gradeModel.GradeModel, error) {
	var m gradeModel.GradeModel
	if err := h.DB.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (h *GradeController) studentName(studentID uuid.UUID) string {
	var name string
	if err := h.DB.Table("students").
		Select("full_name").
		Where("id = ?", studentID).
		Take(&name).Error; err != nil {
		return ""
	}
	return name
}

/* ================= Handlers (guru) ================= */

// POST /api/a/grades
func (h *GradeController) Create(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var req gradeDTO.CreateGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validateGrade.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var studentCount int64
	if err := h.DB.Table("students").Where("id = ?", req.StudentID).Count(&studentCount).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa siswa")
	}
	if studentCount == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
	}

	if req.AssignmentID != nil && *req.AssignmentID != uuid.Nil {
		var assignmentCount int64
		if err := h.DB.Table("assignments").
			Where("id = ? AND deleted_at IS NULL", *req.AssignmentID).
			Count(&assignmentCount).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa tugas")
		}
		if assignmentCount == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "Tugas tidak ditemukan")
		}
	}

	m := req.ToModel(teacherID)
	if err := h.DB.Create(m).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan nilai")
	}

	return helper.JsonCreated(c, "Nilai berhasil disimpan", gradeDTO.NewGradeResponse(m, h.studentName(m.StudentID)))
}

// GET /api/a/grades/:id
func (h *GradeController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	m, err := h.findGrade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Nilai tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil nilai")
	}
	return helper.JsonOK(c, "OK", gradeDTO.NewGradeResponse(m, h.studentName(m.StudentID)))
}

// GET /api/a/grades
// Filter per siswa, per kelas (join roster), mapel, dan semester.
func (h *GradeController) List(c *fiber.Ctx) error {
	var q gradeDTO.ListGradeQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&gradeModel.GradeModel{}).
		Joins("JOIN students s ON s.id = grades.student_id")

	if q.StudentID != nil && strings.TrimSpace(*q.StudentID) != "" {
		sid, err := uuid.Parse(strings.TrimSpace(*q.StudentID))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "student_id tidak valid")
		}
		tx = tx.Where("grades.student_id = ?", sid)
	}
	if q.ClassID != nil && strings.TrimSpace(*q.ClassID) != "" {
		cid, err := uuid.Parse(strings.TrimSpace(*q.ClassID))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
		}
		tx = tx.Where("s.class_id = ?", cid)
	}
	if q.Subject != nil && strings.TrimSpace(*q.Subject) != "" {
		tx = tx.Where("grades.subject ILIKE ?", "%"+strings.TrimSpace(*q.Subject)+"%")
	}
	if q.Semester != nil && strings.TrimSpace(*q.Semester) != "" {
		tx = tx.Where("grades.semester = ?", strings.TrimSpace(*q.Semester))
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung nilai")
	}

	allowedSort := map[string]string{
		"created_at": "grades.created_at",
		"score":      "grades.score",
		"subject":    "grades.subject",
		"full_name":  "s.full_name",
	}
	orderClause, err := p.SafeOrderClause(allowedSort, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "sort_by tidak valid")
	}
	orderExpr := strings.TrimPrefix(orderClause, "ORDER BY ")

	var rows []gradeWithName
	if err := tx.Select("grades.*, s.full_name").
		Order(orderExpr).
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil nilai")
	}

	resp := make([]*gradeDTO.GradeResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, gradeDTO.NewGradeResponse(&rows[i].GradeModel, rows[i].FullName))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// PUT /api/a/grades/:id
func (h *GradeController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findGrade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Nilai tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil nilai")
	}

	var req gradeDTO.UpdateGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validateGrade.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	req.ApplyToModel(existing)

	if err := h.DB.Save(existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui nilai")
	}

	return helper.JsonUpdated(c, "Nilai diperbarui", gradeDTO.NewGradeResponse(existing, h.studentName(existing.StudentID)))
}

// DELETE /api/a/grades/:id
func (h *GradeController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	res := h.DB.Where("id = ?", id).Delete(&gradeModel.GradeModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus nilai")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Nilai tidak ditemukan")
	}

	return helper.JsonDeleted(c, "Nilai dihapus", fiber.Map{"id": id})
}
