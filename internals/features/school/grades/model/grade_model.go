// internals/features/school/grades/model/grade_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* =======================================================
   grades
   - assignment_id opsional; nilai bebas (UH/UTS/UAS) tanpa tugas
   - score 0..100 divalidasi di DTO dan CHECK constraint
======================================================= */

type GradeModel struct {
	ID uuid.UUID `json:"id" gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	StudentID    uuid.UUID  `json:"student_id" gorm:"column:student_id;type:uuid;not null;index"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty" gorm:"column:assignment_id;type:uuid"`

	Subject  string  `json:"subject" gorm:"column:subject;type:varchar(80);not null"`
	Score    float64 `json:"score" gorm:"column:score;type:numeric(5,2);not null;check:score >= 0 AND score <= 100"`
	Semester string  `json:"semester" gorm:"column:semester;type:varchar(20);not null"`
	Notes    *string `json:"notes,omitempty" gorm:"column:notes;type:text"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"column:created_by;type:uuid;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (GradeModel) TableName() string {
	return "grades"
}
