// internals/features/school/assignments/model/assignment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

/* =======================================================
   assignments
   - attachment_urls: array URL OSS (multi lampiran)
   - due_at dipakai frontend untuk flag terlambat
======================================================= */

type AssignmentModel struct {
	ID uuid.UUID `json:"id" gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	ClassID uuid.UUID `json:"class_id" gorm:"column:class_id;type:uuid;not null;index"`

	Title        string     `json:"title" gorm:"column:title;type:varchar(160);not null"`
	Instructions *string    `json:"instructions,omitempty" gorm:"column:instructions;type:text"`
	DueAt        *time.Time `json:"due_at,omitempty" gorm:"column:due_at;type:timestamptz"`

	AttachmentURLs pq.StringArray `json:"attachment_urls,omitempty" gorm:"column:attachment_urls;type:text[]"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"column:created_by;type:uuid;not null"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (AssignmentModel) TableName() string {
	return "assignments"
}
