// internals/features/school/classes/dto/class_dto.go
package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	classModel "kelasku_backend/internals/features/school/classes/model"
)

/* ===================== REQUESTS ===================== */

type CreateClassRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=40"`
	Grade        int     `json:"grade" validate:"required,min=1,max=12"`
	Subject      *string `json:"subject" validate:"omitempty,max=80"`
	AcademicYear string  `json:"academic_year" validate:"required,min=4,max=20"`
	Homeroom     *string `json:"homeroom" validate:"omitempty,max=120"`
}

func (r CreateClassRequest) ToModel(createdBy uuid.UUID) *classModel.ClassModel {
	m := &classModel.ClassModel{
		Name:         strings.TrimSpace(r.Name),
		Grade:        r.Grade,
		AcademicYear: strings.TrimSpace(r.AcademicYear),
		IsActive:     true,
		CreatedBy:    createdBy,
	}
	if r.Subject != nil {
		if v := strings.TrimSpace(*r.Subject); v != "" {
			m.Subject = &v
		}
	}
	if r.Homeroom != nil {
		if v := strings.TrimSpace(*r.Homeroom); v != "" {
			m.Homeroom = &v
		}
	}
	return m
}

type UpdateClassRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=40"`
	Grade        *int    `json:"grade" validate:"omitempty,min=1,max=12"`
	Subject      *string `json:"subject" validate:"omitempty,max=80"`
	AcademicYear *string `json:"academic_year" validate:"omitempty,min=4,max=20"`
	Homeroom     *string `json:"homeroom" validate:"omitempty,max=120"`
	IsActive     *bool   `json:"is_active"`
}

func (r UpdateClassRequest) ApplyToModel(m *classModel.ClassModel) {
	if r.Name != nil {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.Grade != nil {
		m.Grade = *r.Grade
	}
	if r.Subject != nil {
		if v := strings.TrimSpace(*r.Subject); v != "" {
			m.Subject = &v
		} else {
			m.Subject = nil
		}
	}
	if r.AcademicYear != nil {
		m.AcademicYear = strings.TrimSpace(*r.AcademicYear)
	}
	if r.Homeroom != nil {
		if v := strings.TrimSpace(*r.Homeroom); v != "" {
			m.Homeroom = &v
		} else {
			m.Homeroom = nil
		}
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
}

type ListClassQuery struct {
	Search       *string `query:"search"`
	Grade        *int    `query:"grade"`
	AcademicYear *string `query:"academic_year"`
	IsActive     *bool   `query:"is_active"`
}

/* ===================== RESPONSES ===================== */

type ClassResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Grade        int       `json:"grade"`
	Label        string    `json:"label"`
	Subject      *string   `json:"subject,omitempty"`
	AcademicYear string    `json:"academic_year"`
	Homeroom     *string   `json:"homeroom,omitempty"`
	IsActive     bool      `json:"is_active"`
	StudentCount int64     `json:"student_count"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewClassResponse(m *classModel.ClassModel, studentCount int64) *ClassResponse {
	return &ClassResponse{
		ID:           m.ID,
		Name:         m.Name,
		Grade:        m.Grade,
		Label:        ClassLabel(m),
		Subject:      m.Subject,
		AcademicYear: m.AcademicYear,
		Homeroom:     m.Homeroom,
		IsActive:     m.IsActive,
		StudentCount: studentCount,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ClassLabel gabungan grade+name untuk tampilan ("7A")
func ClassLabel(m *classModel.ClassModel) string {
	return strconv.Itoa(m.Grade) + strings.TrimSpace(m.Name)
}
