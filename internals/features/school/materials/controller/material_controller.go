// internals/features/school/materials/controller/material_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kelasku_backend/internals/constants"
	materialDTO "kelasku_backend/internals/features/school/materials/dto"
	materialModel "kelasku_backend/internals/features/school/materials/model"
	helper "kelasku_backend/internals/helpers"
	helperAuth "kelasku_backend/internals/helpers/auth"
	helperOSS "kelasku_backend/internals/helpers/oss"
)

type MaterialController struct {
	DB    *gorm.DB
	Files helperOSS.FileService
}

func NewMaterialController(db *gorm.DB, files helperOSS.FileService) *MaterialController {
	return &MaterialController{DB: db, Files: files}
}

var validateMaterial = validator.New()

/* ================= Helpers ================= */

func (h *MaterialController) findMaterial(id uuid.UUID) (*materialModel.MaterialModel, error) {
	var m materialModel.MaterialModel
	if err := h.DB.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func buildFileMeta(fh *multipart.FileHeader) datatypes.JSON {
	b, err := json.Marshal(fiber.Map{
		"original_name": fh.Filename,
		"size_bytes":    fh.Size,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// pickAttachment ambil satu file lampiran dari form (kandidat field umum)
func pickAttachment(form *multipart.Form) *multipart.FileHeader {
	files, _ := helperOSS.CollectUploadFiles(form, nil)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func pickCover(form *multipart.Form) *multipart.FileHeader {
	for _, key := range []string{"cover", "cover_image"} {
		if fhs := form.File[key]; len(fhs) > 0 {
			return fhs[0]
		}
	}
	return nil
}

// uploadErrResponse: 415 dari konversi webp diteruskan apa adanya,
// error transport OSS jadi 502 dengan pesan aman.
func uploadErrResponse(c *fiber.Ctx, err error, fallback string) error {
	if fe, ok := err.(*fiber.Error); ok {
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] materials: upload gagal: %v", err)
	return helper.JsonError(c, fiber.StatusBadGateway, fallback)
}

// moveToSpamBestEffort memindahkan objek lama ke karantina; gagal hanya dicatat
func (h *MaterialController) moveToSpamBestEffort(c *fiber.Ctx, url *string) {
	if url == nil || strings.TrimSpace(*url) == "" {
		return
	}
	if _, err := h.Files.MoveToSpamByURL(c.Context(), *url); err != nil {
		log.Printf("[WARN] materials: gagal memindahkan objek lama ke spam: %v", err)
	}
}

/* ================= Handlers (guru) ================= */

// POST /api/a/materials
// Menerima JSON murni atau multipart (field + file lampiran + cover).
func (h *MaterialController) Create(c *fiber.Ctx) error {
	teacherID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var req materialDTO.CreateMaterialRequest
	ct := c.Get("Content-Type")
	isMultipart := strings.HasPrefix(ct, "multipart/form-data")

	if isMultipart {
		req.Title = strings.TrimSpace(c.FormValue("title"))
		if v := strings.TrimSpace(c.FormValue("description")); v != "" {
			req.Description = &v
		}
		if v := strings.TrimSpace(c.FormValue("class_id")); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
			}
			req.ClassID = id
		}
	} else {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	if err := validateMaterial.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var classCount int64
	if err := h.DB.Table("classes").Where("id = ?", req.ClassID).Count(&classCount).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kelas")
	}
	if classCount == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
	}

	m := req.ToModel(teacherID)

	if isMultipart {
		form, err := c.MultipartForm()
		if err == nil && form != nil {
			if fh := pickAttachment(form); fh != nil {
				url, err := h.Files.UploadAttachment(c.Context(), m.ClassID, fh)
				if err != nil {
					return uploadErrResponse(c, err, "Gagal mengunggah lampiran")
				}
				ft := constants.DetectFileTypeFromExt(fh.Filename)
				m.FileURL = &url
				m.FileType = &ft
				m.Meta = buildFileMeta(fh)
			}
			if fh := pickCover(form); fh != nil {
				url, err := h.Files.UploadCoverImage(c.Context(), m.ClassID, fh)
				if err != nil {
					return uploadErrResponse(c, err, "Gagal mengunggah cover")
				}
				m.CoverURL = &url
			}
		}
	}

	if err := h.DB.Create(m).Error; err != nil {
		// rapikan objek yang terlanjur naik
		h.moveToSpamBestEffort(c, m.FileURL)
		h.moveToSpamBestEffort(c, m.CoverURL)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan materi")
	}

	return helper.JsonCreated(c, "Materi berhasil dibuat", materialDTO.NewMaterialResponse(m))
}

// GET /api/a/materials/:id
func (h *MaterialController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	m, err := h.findMaterial(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Materi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil materi")
	}
	return helper.JsonOK(c, "OK", materialDTO.NewMaterialResponse(m))
}

// GET /api/a/materials
func (h *MaterialController) List(c *fiber.Ctx) error {
	var q materialDTO.ListMaterialQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	tx := h.DB.Model(&materialModel.MaterialModel{})
	if q.ClassID != nil && strings.TrimSpace(*q.ClassID) != "" {
		classID, err := uuid.Parse(strings.TrimSpace(*q.ClassID))
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
		}
		tx = tx.Where("class_id = ?", classID)
	}
	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		like := "%" + strings.TrimSpace(*q.Search) + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung materi")
	}

	allowedSort := map[string]string{
		"created_at": "created_at",
		"title":      "title",
	}
	orderClause, err := p.SafeOrderClause(allowedSort, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "sort_by tidak valid")
	}
	orderExpr := strings.TrimPrefix(orderClause, "ORDER BY ")

	var rows []materialModel.MaterialModel
	if err := tx.Order(orderExpr).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil materi")
	}

	resp := make([]*materialDTO.MaterialResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, materialDTO.NewMaterialResponse(&rows[i]))
	}
	return helper.JsonList(c, "OK", resp, helper.BuildMeta(total, p))
}

// PUT /api/a/materials/:id
// Multipart boleh menyertakan file/cover baru; objek lama dikarantina.
func (h *MaterialController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findMaterial(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Materi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil materi")
	}

	var req materialDTO.UpdateMaterialRequest
	ct := c.Get("Content-Type")
	isMultipart := strings.HasPrefix(ct, "multipart/form-data")

	if isMultipart {
		if v := strings.TrimSpace(c.FormValue("title")); v != "" {
			req.Title = &v
		}
		if v := strings.TrimSpace(c.FormValue("description")); v != "" {
			req.Description = &v
		}
		if v := strings.TrimSpace(c.FormValue("class_id")); v != "" {
			cid, err := uuid.Parse(v)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "class_id tidak valid")
			}
			req.ClassID = &cid
		}
	} else {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	if err := validateMaterial.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if req.ClassID != nil && *req.ClassID != uuid.Nil {
		var classCount int64
		if err := h.DB.Table("classes").Where("id = ?", *req.ClassID).Count(&classCount).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memeriksa kelas")
		}
		if classCount == 0 {
			return helper.JsonError(c, fiber.StatusNotFound, "Kelas tidak ditemukan")
		}
	}

	req.ApplyToModel(existing)

	if isMultipart {
		form, err := c.MultipartForm()
		if err == nil && form != nil {
			if fh := pickAttachment(form); fh != nil {
				url, err := h.Files.UploadAttachment(c.Context(), existing.ClassID, fh)
				if err != nil {
					return uploadErrResponse(c, err, "Gagal mengunggah lampiran")
				}
				h.moveToSpamBestEffort(c, existing.FileURL)
				ft := constants.DetectFileTypeFromExt(fh.Filename)
				existing.FileURL = &url
				existing.FileType = &ft
				existing.Meta = buildFileMeta(fh)
			}
			if fh := pickCover(form); fh != nil {
				url, err := h.Files.UploadCoverImage(c.Context(), existing.ClassID, fh)
				if err != nil {
					return uploadErrResponse(c, err, "Gagal mengunggah cover")
				}
				h.moveToSpamBestEffort(c, existing.CoverURL)
				existing.CoverURL = &url
			}
		}
	}

	if err := h.DB.Save(existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui materi")
	}

	return helper.JsonUpdated(c, "Materi diperbarui", materialDTO.NewMaterialResponse(existing))
}

// DELETE /api/a/materials/:id
// Soft delete; objek OSS dikarantina ke spam/ (reaper yang menghapus permanen).
func (h *MaterialController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	existing, err := h.findMaterial(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Materi tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil materi")
	}

	if err := h.DB.Delete(existing).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus materi")
	}

	h.moveToSpamBestEffort(c, existing.FileURL)
	h.moveToSpamBestEffort(c, existing.CoverURL)

	return helper.JsonDeleted(c, "Materi dihapus", fiber.Map{"id": id})
}
