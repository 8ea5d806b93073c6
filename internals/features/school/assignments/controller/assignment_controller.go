// internals/features/school/assignments/controller/assignment_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	assignmentDTO "kelasku_backend/internals/features/school/assignments/dto"
	assignmentModel "kelasku_backend/internals/features/school/assignments/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type AssignmentController struct {
	DB    *gorm.DB
	Files helperOSS.FileService
}

func NewAssignmentController(db *gorm.DB, files helperOSS.FileService) *AssignmentController {
	return &AssignmentController{DB: db, Files: files}
}

var validateAssignment = validator.New()

/* ================= Helpers ================= */

func (h *AssignmentController) findAssignment(id uuid.UUID) (*assignmentModel.AssignmentModel, error) {
	var m assignmentModel.AssignmentModel
	if err := h.DB.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (h *AssignmentController) ensureClassExists(classID uuid.UUID) error {
	var count int64
	if err := h.DB.Table("classes").Where("id = ?", classID).Count(&count).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa kelas")
	}
	if count == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Kelas tidak ditemukan")
	}
	return nil
}

func parseDueAt(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *AssignmentController) moveToSpamBestEffort(c *fiber.Ctx, url string) {
	if strings.TrimSpace(url) == "" {
		return
	}
	if _, err := h.Files.MoveToSpamByURL(c.Context(), url); err != nil {
		log.Printf("[WARN] assignments: gagal memindahkan lampiran lama ke spam: %v", err)
	}
}

// uploadFormFiles mengunggah semua lampiran multipart, mengembalikan URL publik
func (h *AssignmentController) uploadFormFiles(c *fiber.Ctx, classID uuid.UUID) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files, _ := helperOSS.CollectUploadFiles(form, nil)
	if len(files) == 0 {
		return nil, nil
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.Files.UploadAttachment(c.Context(), classID, fh)
		if err != nil {
			// rapikan yang sudah terlanjur naik
			for _, u := range urls {
				h.moveToSpamBestEffort(c, u)
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

/* ================= Handlers (guru) ================= */

// POST /api/a/assignments
// Menerima JSON murni atau multipart (field + banyak lampiran).
func (h *AssignmentController) Create(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var req assignmentDTO.CreateAssignmentRequest
	ct := c.Get("Content-Type")
	isMultipart := strings.HasPrefix(ct, "multipart/form-data")

	if isMultipart {
		req.Title = strings.TrimSpace(c.FormValue("title"))
		if v := strings.TrimSpace(c.FormValue("instructions")); v != "" {
			req.Instructions = &v
		}
		if v := strings.TrimSpace(c.FormValue("class_id")); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
			}
			req.ClassID = id
		}
		due, err := parseDueAt(c.FormValue("due_at"))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Format due_at tidak valid (RFC3339)")
		}
		req.DueAt = due
	} else {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	if err := validateAssignment.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := h.ensureClassExists(req.ClassID); err != nil {
		return helper.FromFiberError(c, err)
	}

	m := req.ToModel(teacherID)

	if isMultipart {
		urls, err := h.uploadFormFiles(c, m.ClassID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadGateway, "Gagal mengunggah lampiran")
		}
		m.AttachmentURLs = urls
	}

	if err := h.DB.Create(m).Error; err != nil {
		for _, u := range m.AttachmentURLs {
			h.moveToSpamBestEffort(c, u)
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan tugas")
	}

	return helper.JsonCreated(c, "Tugas berhasil dibuat", assignmentDTO.NewAssignmentResponse(m, time.Now()))
}

// GET /api/a/assignments/:id
func (h *AssignmentController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	m, err := h.findAssignment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Tugas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tugas")
	}
	return helper.JsonOK(c, "OK", assignmentDTO.NewAssignmentResponse(m, time.Now()))
}

// GET /api/a/assignments
func (h *AssignmentController) List(c *fiber.Ctx) error {
	var q assignmentDTO.ListAssignmentQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&assignmentModel.AssignmentModel{})
	if q.ClassID != nil && strings.TrimSpace(*q.ClassID) != "" {
		classID, err := uuid.Parse(strings.TrimSpace(*q.ClassID))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
		}
		tx = tx.Where("class_id = ?", classID)
	}
	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		like := "%" + strings.TrimSpace(*q.Search) + "%"
		tx = tx.Where("title ILIKE ? OR instructions ILIKE ?", like, like)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung tugas")
	}

	allowedSort := map[string]string{
		"created_at": "created_at",
		"due_at":     "due_at",
		"title":      "title",
	}
	orderClause, err := p.SafeOrderClause(allowedSort, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "sort_by tidak valid")
	}
	orderExpr := strings.TrimPrefix(orderClause, "ORDER BY ")

	var rows []assignmentModel.AssignmentModel
	if err := tx.Order(orderExpr).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tugas")
	}

	now := time.Now()
	resp := make([]*assignmentDTO.AssignmentResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, assignmentDTO.NewAssignmentResponse(&rows[i], now))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// PUT /api/a/assignments/:id
// Multipart: keep_urls[] menentukan lampiran lama yang dipertahankan,
// sisanya dikarantina; file baru ditambahkan di belakang.
func (h *AssignmentController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findAssignment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Tugas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tugas")
	}

	var req assignmentDTO.UpdateAssignmentRequest
	ct := c.Get("Content-Type")
	isMultipart := strings.HasPrefix(ct, "multipart/form-data")

	if isMultipart {
		if v := strings.TrimSpace(c.FormValue("title")); v != "" {
			req.Title = &v
		}
		if v := strings.TrimSpace(c.FormValue("instructions")); v != "" {
			req.Instructions = &v
		}
		if v := strings.TrimSpace(c.FormValue("class_id")); v != "" {
			cid, err := uuid.Parse(v)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
			}
			req.ClassID = &cid
		}
		if raw := strings.TrimSpace(c.FormValue("due_at")); raw != "" {
			due, err := parseDueAt(raw)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "Format due_at tidak valid (RFC3339)")
			}
			req.DueAt = due
		}
		if v := strings.TrimSpace(c.FormValue("clear_due_at")); v == "true" || v == "1" {
			t := true
			req.ClearDueAt = &t
		}
	} else {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	if err := validateAssignment.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if req.ClassID != nil && *req.ClassID != uuid.Nil {
		if err := h.ensureClassExists(*req.ClassID); err != nil {
			return helper.FromFiberError(c, err)
		}
	}

	req.ApplyToModel(existing)

	if isMultipart {
		form, ferr := c.MultipartForm()
		if ferr == nil && form != nil {
			keep := helperOSS.CollectStringValues(form, "keep_urls[]", "keep_urls")
			if len(form.Value["keep_urls[]"]) > 0 || len(form.Value["keep_urls"]) > 0 {
				keepSet := make(map[string]struct{}, len(keep))
				for _, u := range keep {
					keepSet[strings.TrimSpace(u)] = struct{}{}
				}
				kept := make([]string, 0, len(existing.AttachmentURLs))
				for _, u := range existing.AttachmentURLs {
					if _, ok := keepSet[u]; ok {
						kept = append(kept, u)
					} else {
						h.moveToSpamBestEffort(c, u)
					}
				}
				existing.AttachmentURLs = kept
			}
		}

		urls, err := h.uploadFormFiles(c, existing.ClassID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadGateway, "Gagal mengunggah lampiran")
		}
		existing.AttachmentURLs = append(existing.AttachmentURLs, urls...)
	}

	if err := h.DB.Save(existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui tugas")
	}

	return helper.JsonUpdated(c, "Tugas diperbarui", assignmentDTO.NewAssignmentResponse(existing, time.Now()))
}

// DELETE /api/a/assignments/:id
// Soft delete; semua lampiran dikarantina ke spam/.
func (h *AssignmentController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findAssignment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Tugas tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil tugas")
	}

	if err := h.DB.Delete(existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus tugas")
	}

	for _, u := range existing.AttachmentURLs {
		h.moveToSpamBestEffort(c, u)
	}

	return helper.JsonDeleted(c, "Tugas dihapus", fiber.Map{"id": id})
}
