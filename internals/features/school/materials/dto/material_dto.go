// internals/features/school/materials/dto/material_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	materialModel "kelasku_backend/internals/features/school/materials/model"
)

/* ===================== REQUESTS ===================== */

// CreateMaterialRequest dipakai untuk JSON maupun multipart
// (field form diisi manual di controller saat multipart).
type CreateMaterialRequest struct {
	ClassID     uuid.UUID `json:"class_id" form:"class_id" validate:"required"`
	Title       string    `json:"title" form:"title" validate:"required,min=2,max=160"`
	Description *string   `json:"description" form:"description" validate:"omitempty,max=5000"`
}

func (r CreateMaterialRequest) ToModel(createdBy uuid.UUID) *materialModel.MaterialModel {
	m := &materialModel.MaterialModel{
		ClassID:   r.ClassID,
		Title:     strings.TrimSpace(r.Title),
		CreatedBy: createdBy,
	}
	if r.Description != nil {
		if v := strings.TrimSpace(*r.Description); v != "" {
			m.Description = &v
		}
	}
	return m
}

type UpdateMaterialRequest struct {
	Title       *string    `json:"title" form:"title" validate:"omitempty,min=2,max=160"`
	Description *string    `json:"description" form:"description" validate:"omitempty,max=5000"`
	ClassID     *uuid.UUID `json:"class_id" form:"class_id"`
}

func (r UpdateMaterialRequest) ApplyToModel(m *materialModel.MaterialModel) {
	if r.Title != nil {
		m.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		if v := strings.TrimSpace(*r.Description); v != "" {
			m.Description = &v
		} else {
			m.Description = nil
		}
	}
	if r.ClassID != nil && *r.ClassID != uuid.Nil {
		m.ClassID = *r.ClassID
	}
}

type ListMaterialQuery struct {
	ClassID *string `query:"class_id"`
	Search  *string `query:"search"`
}

/* ===================== RESPONSES ===================== */

type MaterialResponse struct {
	ID          uuid.UUID      `json:"id"`
	ClassID     uuid.UUID      `json:"class_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	FileURL     *string        `json:"file_url,omitempty"`
	CoverURL    *string        `json:"cover_url,omitempty"`
	FileType    *int           `json:"file_type,omitempty"`
	Meta        datatypes.JSON `json:"meta,omitempty"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewMaterialResponse(m *materialModel.MaterialModel) *MaterialResponse {
	return &MaterialResponse{
		ID:          m.ID,
		ClassID:     m.ClassID,
		Title:       m.Title,
		Description: m.Description,
		FileURL:     m.FileURL,
		CoverURL:    m.CoverURL,
		FileType:    m.FileType,
		Meta:        m.Meta,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
