// internals/features/school/grades/dto/grade_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	gradeModel "kelasku_backend/internals/features/school/grades/model"
)

/* ===================== REQUESTS ===================== */

type CreateGradeRequest struct {
	StudentID    uuid.UUID  `json:"student_id" validate:"required"`
	AssignmentID *uuid.UUID `json:"assignment_id"`
	Subject      string     `json:"subject" validate:"required,min=2,max=80"`
	Score        float64    `json:"score" validate:"min=0,max=100"`
	Semester     string     `json:"semester" validate:"required,min=4,max=20"`
	Notes        *string    `json:"notes" validate:"omitempty,max=2000"`
}

func (r CreateGradeRequest) ToModel(createdBy uuid.UUID) *gradeModel.GradeModel {
	m := &gradeModel.GradeModel{
		StudentID: r.StudentID,
		Subject:   strings.TrimSpace(r.Subject),
		Score:     r.Score,
		Semester:  strings.TrimSpace(r.Semester),
		CreatedBy: createdBy,
	}
	if r.AssignmentID != nil && *r.AssignmentID != uuid.Nil {
		m.AssignmentID = r.AssignmentID
	}
	if r.Notes != nil {
		if v := strings.TrimSpace(*r.Notes); v != "" {
			m.Notes = &v
		}
	}
	return m
}

type UpdateGradeRequest struct {
	Subject  *string  `json:"subject" validate:"omitempty,min=2,max=80"`
	Score    *float64 `json:"score" validate:"omitempty,min=0,max=100"`
	Semester *string  `json:"semester" validate:"omitempty,min=4,max=20"`
	Notes    *string  `json:"notes" validate:"omitempty,max=2000"`
}

func (r UpdateGradeRequest) ApplyToModel(m *gradeModel.GradeModel) {
	if r.Subject != nil {
		m.Subject = strings.TrimSpace(*r.Subject)
	}
	if r.Score != nil {
		m.Score = *r.Score
	}
	if r.Semester != nil {
		m.Semester = strings.TrimSpace(*r.Semester)
	}
	if r.Notes != nil {
		if v := strings.TrimSpace(*r.Notes); v != "" {
			m.Notes = &v
		} else {
			m.Notes = nil
		}
	}
}

type ListGradeQuery struct {
	StudentID *string `query:"student_id"`
	ClassID   *string `query:"class_id"`
	Subject   *string `query:"subject"`
	Semester  *string `query:"semester"`
}

/* ===================== RESPONSES ===================== */

type GradeResponse struct {
	ID           uuid.UUID  `json:"id"`
	StudentID    uuid.UUID  `json:"student_id"`
	StudentName  string     `json:"student_name,omitempty"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	Subject      string     `json:"subject"`
	Score        float64    `json:"score"`
	Semester     string     `json:"semester"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedBy    uuid.UUID  `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewGradeResponse(m *gradeModel.GradeModel, studentName string) *GradeResponse {
	return &GradeResponse{
		ID:           m.ID,
		StudentID:    m.StudentID,
		StudentName:  studentName,
		AssignmentID: m.AssignmentID,
		Subject:      m.Subject,
		Score:        m.Score,
		Semester:     m.Semester,
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
