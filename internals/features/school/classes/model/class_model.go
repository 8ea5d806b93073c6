// internals/features/school/classes/model/class_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* =======================================================
   classes
   - nama kelas = grade + name, mis. grade 7 + name "A" => "7A"
   - homeroom = wali kelas (teks bebas, bukan FK)
======================================================= */

type ClassModel struct {
	ID uuid.UUID `json:"id" gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	Name  string `json:"name" gorm:"column:name;type:varchar(40);not null;uniqueIndex:uq_classes_grade_name_year"`
	Grade int    `json:"grade" gorm:"column:grade;not null;uniqueIndex:uq_classes_grade_name_year"`

	Subject      *string `json:"subject,omitempty" gorm:"column:subject;type:varchar(80)"`
	AcademicYear string  `json:"academic_year" gorm:"column:academic_year;type:varchar(20);not null;uniqueIndex:uq_classes_grade_name_year"`
	Homeroom     *string `json:"homeroom,omitempty" gorm:"column:homeroom;type:varchar(120)"`

	IsActive  bool      `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"column:created_by;type:uuid;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (ClassModel) TableName() string {
	return "classes"
}
