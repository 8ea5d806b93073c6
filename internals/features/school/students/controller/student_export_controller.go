// internals/features/school/students/controller/student_export_controller.go
package controller

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	studentModel "kelasku_backend/internals/features/school/students/model"
	authHelper "kelasku_backend/internals/features/users/auth/helper"
	helper "kelasku_backend/internals/helpers"
	"kelasku_backend/internals/helpers/dbtime"
)

var csvHeader = []string{"No", "Nama Lengkap", "ID Siswa", "Email", "Password", "Status"}

type exportClassInfo struct {
	Name  string
	Grade int
}

// GET /api/a/students/export?class_id=...
// Password di CSV diregenerasi dari tanggal lahir; plaintext tidak pernah disimpan.
func (h *StudentController) ExportCSV(c *fiber.Ctx) error {
	rawClassID := strings.TrimSpace(c.Query("class_id"))
	if rawClassID == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "class_id wajib diisi")
	}
	classID, err := uuid.Parse(rawClassID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
	}

	var cls exportClassInfo
	if err := h.DB.Table("classes").
		Select("name, grade").
		Where("id = ?", classID).
		Take(&cls).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data kelas")
	}

	var rows []studentModel.StudentModel
	if err := h.DB.
		Where("class_id = ? AND is_active = ?", classID, true).
		Order("full_name ASC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}

	payload, err := buildStudentCSV(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menulis CSV")
	}

	filename := exportFilename(cls.Grade, cls.Name, dbtime.NowInSchool())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(payload)
}

// buildStudentCSV menulis satu baris per siswa. Kolom Password diisi
// password derivasi tanggal lahir; plaintext memang tidak pernah disimpan,
// jadi diregenerasi di sini.
func buildStudentCSV(rows []studentModel.StudentModel) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range rows {
		s := &rows[i]
		if err := w.Write([]string{
			strconv.Itoa(i + 1),
			s.FullName,
			s.StudentID,
			s.Email,
			authHelper.DerivePasswordFromBirthDate(s.BirthDate),
			"Aktif",
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportFilename(grade int, className string, now time.Time) string {
	return fmt.Sprintf("Data Siswa Kelas %d%s %s.csv", grade, className, now.Format("02-01-2006"))
}
