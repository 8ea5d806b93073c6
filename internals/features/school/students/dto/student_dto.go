// internals/features/school/students/dto/student_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	model "kelasku_backend/internals/features/school/students/model"
)

// Format tanggal lahir di payload (DATE, tanpa jam)
const BirthDateLayout = "2006-01-02"

/* ===================== REQUESTS ===================== */

// Create: student_id, email, dan password digenerate backend,
// jadi tidak ada di payload.
type CreateStudentRequest struct {
	FullName  string     `json:"full_name" validate:"required,min=2,max=120"`
	BirthDate string     `json:"birth_date" validate:"required"`
	Phone     *string    `json:"phone" validate:"omitempty,max=24"`
	Address   *string    `json:"address" validate:"omitempty,max=500"`
	ClassID   *uuid.UUID `json:"class_id" validate:"omitempty"`
}

func (r CreateStudentRequest) ParseBirthDate() (time.Time, error) {
	return time.Parse(BirthDateLayout, strings.TrimSpace(r.BirthDate))
}

// ToModel: builder untuk create. Kredensial diisi caller karena
// digenerate terpisah (repository + password helper).
func (r CreateStudentRequest) ToModel(createdBy uuid.UUID, studentID, email, passwordDigest string, birthDate time.Time) *model.StudentModel {
	m := &model.StudentModel{
		StudentID: studentID,
		Email:     email,
		Password:  passwordDigest,
		FullName:  strings.TrimSpace(r.FullName),
		BirthDate: birthDate,
		ClassID:   r.ClassID,
		IsActive:  true,
		CreatedBy: createdBy,
	}
	if r.Phone != nil {
		p := strings.TrimSpace(*r.Phone)
		if p != "" {
			m.Phone = &p
		}
	}
	if r.Address != nil {
		a := strings.TrimSpace(*r.Address)
		if a != "" {
			m.Address = &a
		}
	}
	return m
}

// Update: semua optional (partial update).
// reset_password hanya berefek kalau birth_date ikut dikirim:
// password baru diturunkan dari tanggal lahir baru.
type UpdateStudentRequest struct {
	FullName      *string    `json:"full_name" validate:"omitempty,min=2,max=120"`
	BirthDate     *string    `json:"birth_date" validate:"omitempty"`
	Phone         *string    `json:"phone" validate:"omitempty,max=24"`
	Address       *string    `json:"address" validate:"omitempty,max=500"`
	ClassID       *uuid.UUID `json:"class_id" validate:"omitempty"`
	ResetPassword *bool      `json:"reset_password" validate:"omitempty"`
}

// ApplyToModel: terapkan hanya field yang dikirim.
// Return true kalau birth_date berubah (caller yang memutuskan re-derive).
func (r *UpdateStudentRequest) ApplyToModel(m *model.StudentModel) (birthChanged bool, err error) {
	if r.FullName != nil {
		m.FullName = strings.TrimSpace(*r.FullName)
	}
	if r.BirthDate != nil {
		bd, perr := time.Parse(BirthDateLayout, strings.TrimSpace(*r.BirthDate))
		if perr != nil {
			return false, perr
		}
		if !bd.Equal(m.BirthDate) {
			birthChanged = true
		}
		m.BirthDate = bd
	}
	if r.Phone != nil {
		p := strings.TrimSpace(*r.Phone)
		if p == "" {
			m.Phone = nil
		} else {
			m.Phone = &p
		}
	}
	if r.Address != nil {
		a := strings.TrimSpace(*r.Address)
		if a == "" {
			m.Address = nil
		} else {
			m.Address = &a
		}
	}
	if r.ClassID != nil {
		if *r.ClassID == uuid.Nil {
			m.ClassID = nil
		} else {
			id := *r.ClassID
			m.ClassID = &id
		}
	}
	return birthChanged, nil
}

/* ===================== QUERIES ===================== */

type ListStudentQuery struct {
	Search   *string `query:"search"`    // ILIKE full_name/email/student_id
	ClassID  *string `query:"class_id"`  // uuid
	IsActive *bool   `query:"is_active"` // true/false
}

/* ===================== RESPONSES ===================== */

type StudentResponse struct {
	ID        uuid.UUID  `json:"id"`
	StudentID string     `json:"student_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	BirthDate string     `json:"birth_date"`
	Phone     *string    `json:"phone,omitempty"`
	Address   *string    `json:"address,omitempty"`
	ClassID   *uuid.UUID `json:"class_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewStudentResponse(m *model.StudentModel) *StudentResponse {
	if m == nil {
		return nil
	}
	return &StudentResponse{
		ID:        m.ID,
		StudentID: m.StudentID,
		Email:     m.Email,
		FullName:  m.FullName,
		BirthDate: m.BirthDate.Format(BirthDateLayout),
		Phone:     m.Phone,
		Address:   m.Address,
		ClassID:   m.ClassID,
		IsActive:  m.IsActive,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CreatedStudentResponse dipakai sekali saat create / reset password:
// satu-satunya momen plaintext dikirim ke guru.
type CreatedStudentResponse struct {
	*StudentResponse
	Password string `json:"password"`
}
