// internals/features/school/materials/model/material_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =======================================================
   class_materials
   - file_url/cover_url menunjuk objek OSS; saat dihapus,
     objek dipindah ke prefix spam/ lalu dibersihkan reaper
   - soft delete; baris lama dipanen reaper DB
======================================================= */

type MaterialModel struct {
	ID uuid.UUID `json:"id" gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	ClassID uuid.UUID `json:"class_id" gorm:"column:class_id;type:uuid;not null;index"`

	Title       string  `json:"title" gorm:"column:title;type:varchar(160);not null"`
	Description *string `json:"description,omitempty" gorm:"column:description;type:text"`

	FileURL  *string `json:"file_url,omitempty" gorm:"column:file_url;type:text"`
	CoverURL *string `json:"cover_url,omitempty" gorm:"column:cover_url;type:text"`
	FileType *int    `json:"file_type,omitempty" gorm:"column:file_type"`

	Meta datatypes.JSON `json:"meta,omitempty" gorm:"column:meta;type:jsonb"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"column:created_by;type:uuid;not null"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (MaterialModel) TableName() string {
	return "class_materials"
}
