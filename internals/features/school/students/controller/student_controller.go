// internals/features/school/students/controller/student_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	studentDTO "kelasku_backend/internals/features/school/students/dto"
	studentModel "kelasku_backend/internals/features/school/students/model"
	studentRepo "kelasku_backend/internals/features/school/students/repository"
	authHelper "kelasku_backend/internals/features/users/auth/helper"
	authService "kelasku_backend/internals/features/users/auth/service"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
)

type StudentController struct {
	DB *gorm.DB
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db}
}

var validateStudent = validator.New()

/* ================= Helpers ================= */

func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

func (h *StudentController) findStudent(id uuid.UUID) (*studentModel.StudentModel, error) {
	var m studentModel.StudentModel
	if err := h.DB.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (h *StudentController) classExists(classID uuid.UUID) (bool, error) {
	var count int64
	err := h.DB.Table("classes").Where("id = ?", classID).Count(&count).Error
	return count > 0, err
}

/* ================= Handlers ================= */

// POST /api/a/students
func (h *StudentController) Create(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var req studentDTO.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validateStudent.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	birthDate, err := req.ParseBirthDate()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format tanggal lahir tidak valid (YYYY-MM-DD)")
	}

	if req.ClassID != nil && *req.ClassID != uuid.Nil {
		ok, err := h.classExists(*req.ClassID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kelas")
		}
		if !ok {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
	}

	studentID, err := studentRepo.GenerateStudentID(c.Context(), h.DB)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal generate ID siswa")
	}
	email, err := studentRepo.GenerateStudentEmail(c.Context(), h.DB, req.FullName)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal generate email siswa")
	}

	// Password awal selalu dari tanggal lahir; plaintext dikirim sekali ke guru
	plain := authHelper.DerivePasswordFromBirthDate(birthDate)
	m := req.ToModel(teacherID, studentID, email, authHelper.HashPassword(plain), birthDate)

	if err := h.DB.Create(m).Error; err != nil {
		if isUniqueErr(err) {
			return helper.JsonError(c, fiber.StatusConflict, "ID siswa atau email sudah terpakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan siswa")
	}

	return helper.JsonCreated(c, "Siswa berhasil dibuat", studentDTO.CreatedStudentResponse{
		StudentResponse: studentDTO.NewStudentResponse(m),
		Password:        plain,
	})
}

// GET /api/a/students/:id
func (h *StudentController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	m, err := h.findStudent(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil siswa")
	}
	return helper.JsonOK(c, "OK", studentDTO.NewStudentResponse(m))
}

// GET /api/a/students
func (h *StudentController) List(c *fiber.Ctx) error {
	var q studentDTO.ListStudentQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&studentModel.StudentModel{})

	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		like := "%" + strings.TrimSpace(*q.Search) + "%"
		tx = tx.Where("full_name ILIKE ? OR email ILIKE ? OR student_id ILIKE ?", like, like, like)
	}
	if q.ClassID != nil && strings.TrimSpace(*q.ClassID) != "" {
		classID, err := uuid.Parse(strings.TrimSpace(*q.ClassID))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
		}
		tx = tx.Where("class_id = ?", classID)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}

	allowedSort := map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"student_id": "student_id",
	}
	orderClause, err := p.SafeOrderClause(allowedSort, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "sort_by tidak valid")
	}
	orderExpr := strings.TrimPrefix(orderClause, "ORDER BY ")

	var rows []studentModel.StudentModel
	if err := tx.Order(orderExpr).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}

	resp := make([]*studentDTO.StudentResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, studentDTO.NewStudentResponse(&rows[i]))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// PUT /api/a/students/:id
func (h *StudentController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findStudent(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil siswa")
	}

	var req studentDTO.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validateStudent.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if req.ClassID != nil && *req.ClassID != uuid.Nil {
		ok, err := h.classExists(*req.ClassID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kelas")
		}
		if !ok {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
	}

	birthChanged, err := req.ApplyToModel(existing)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Format tanggal lahir tidak valid (YYYY-MM-DD)")
	}

	// Password ikut tanggal lahir baru hanya kalau guru minta reset
	newPlain := ""
	if birthChanged && req.ResetPassword != nil && *req.ResetPassword {
		newPlain = authHelper.DerivePasswordFromBirthDate(existing.BirthDate)
		existing.Password = authHelper.HashPassword(newPlain)
	}

	if err := h.DB.Save(existing).Error; err != nil {
		if isUniqueErr(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Data unik siswa bertabrakan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui siswa")
	}

	if newPlain != "" {
		return helper.JsonUpdated(c, "Siswa diperbarui, password direset", studentDTO.CreatedStudentResponse{
			StudentResponse: studentDTO.NewStudentResponse(existing),
			Password:        newPlain,
		})
	}
	return helper.JsonUpdated(c, "Siswa diperbarui", studentDTO.NewStudentResponse(existing))
}

// PATCH /api/a/students/:id/deactivate
// Nonaktif = soft delete roster; siswa langsung tidak bisa login.
func (h *StudentController) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false, "Siswa dinonaktifkan")
}

// PATCH /api/a/students/:id/reactivate
func (h *StudentController) Reactivate(c *fiber.Ctx) error {
	return h.setActive(c, true, "Siswa diaktifkan kembali")
}

func (h *StudentController) setActive(c *fiber.Ctx, active bool, msg string) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	res := h.DB.Model(&studentModel.StudentModel{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengubah status siswa")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
	}
	return helper.JsonUpdated(c, msg, fiber.Map{"id": id, "is_active": active})
}

// POST /api/a/students/:id/reset-password
func (h *StudentController) ResetPassword(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	plain, err := authService.ResetStudentPassword(h.DB, id)
	if err != nil {
		if errors.Is(err, authService.ErrStudentNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal reset password siswa")
	}

	return helper.JsonOK(c, "Password siswa direset", fiber.Map{
		"id":       id,
		"password": plain,
	})
}

// GET /api/a/students/mine
// Daftar siswa yang dibuat guru ini (management surface terpisah).
func (h *StudentController) ListMine(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&studentModel.StudentModel{}).Where("created_by = ?", teacherID)

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung siswa")
	}

	var rows []studentModel.StudentModel
	if err := tx.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}

	resp := make([]*studentDTO.StudentResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, studentDTO.NewStudentResponse(&rows[i]))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// DELETE /api/a/students/mine/:id
// Hard delete, hanya untuk record milik guru pemanggil.
func (h *StudentController) DeleteMine(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	res := h.DB.
		Where("id = ? AND created_by = ?", id, teacherID).
		Delete(&studentModel.StudentModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus siswa")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Siswa tidak ditemukan atau bukan milik Anda")
	}

	return helper.JsonDeleted(c, "Siswa dihapus", fiber.Map{"id": id})
}
