// internals/features/school/students/model/student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* =======================================================
   students
   - email & student_id digenerate backend (lihat repository)
   - password = digest sha256 bersalt, bukan plaintext
   - nonaktif = is_active false; baris tidak dihapus dari roster
======================================================= */

type StudentModel struct {
	ID uuid.UUID `json:"id" gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	StudentID string `json:"student_id" gorm:"column:student_id;type:varchar(20);unique;not null"`
	Email     string `json:"email" gorm:"column:email;type:varchar(120);unique;not null"`
	Password  string `json:"-" gorm:"column:password;type:varchar(64);not null"`

	FullName  string    `json:"full_name" gorm:"column:full_name;type:varchar(120);not null"`
	BirthDate time.Time `json:"birth_date" gorm:"column:birth_date;type:date;not null"`

	Phone   *string `json:"phone,omitempty" gorm:"column:phone;type:varchar(24)"`
	Address *string `json:"address,omitempty" gorm:"column:address;type:text"`

	ClassID *uuid.UUID `json:"class_id,omitempty" gorm:"column:class_id;type:uuid"`

	IsActive  bool      `json:"is_active" gorm:"column:is_active;not null;default:true"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"column:created_by;type:uuid;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (StudentModel) TableName() string {
	return "students"
}
