// internals/features/school/assignments/dto/assignment_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	assignmentModel "kelasku_backend/internals/features/school/assignments/model"
)

/* ===================== REQUESTS ===================== */

type CreateAssignmentRequest struct {
	ClassID      uuid.UUID  `json:"class_id" form:"class_id" validate:"required"`
	Title        string     `json:"title" form:"title" validate:"required,min=2,max=160"`
	Instructions *string    `json:"instructions" form:"instructions" validate:"omitempty,max=10000"`
	DueAt        *time.Time `json:"due_at" form:"due_at"`
}

func (r CreateAssignmentRequest) ToModel(createdBy uuid.UUID) *assignmentModel.AssignmentModel {
	m := &assignmentModel.AssignmentModel{
		ClassID:   r.ClassID,
		Title:     strings.TrimSpace(r.Title),
		DueAt:     r.DueAt,
		CreatedBy: createdBy,
	}
	if r.Instructions != nil {
		if v := strings.TrimSpace(*r.Instructions); v != "" {
			m.Instructions = &v
		}
	}
	return m
}

type UpdateAssignmentRequest struct {
	Title        *string    `json:"title" form:"title" validate:"omitempty,min=2,max=160"`
	Instructions *string    `json:"instructions" form:"instructions" validate:"omitempty,max=10000"`
	DueAt        *time.Time `json:"due_at" form:"due_at"`
	ClearDueAt   *bool      `json:"clear_due_at" form:"clear_due_at"`
	ClassID      *uuid.UUID `json:"class_id" form:"class_id"`
}

func (r UpdateAssignmentRequest) ApplyToModel(m *assignmentModel.AssignmentModel) {
	if r.Title != nil {
		m.Title = strings.TrimSpace(*r.Title)
	}
	if r.Instructions != nil {
		if v := strings.TrimSpace(*r.Instructions); v != "" {
			m.Instructions = &v
		} else {
			m.Instructions = nil
		}
	}
	if r.DueAt != nil {
		m.DueAt = r.DueAt
	}
	if r.ClearDueAt != nil && *r.ClearDueAt {
		m.DueAt = nil
	}
	if r.ClassID != nil && *r.ClassID != uuid.Nil {
		m.ClassID = *r.ClassID
	}
}

type ListAssignmentQuery struct {
	ClassID *string `query:"class_id"`
	Search  *string `query:"search"`
}

/* ===================== RESPONSES ===================== */

type AssignmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	ClassID        uuid.UUID  `json:"class_id"`
	Title          string     `json:"title"`
	Instructions   *string    `json:"instructions,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty"`
	Overdue        bool       `json:"overdue"`
	AttachmentURLs []string   `json:"attachment_urls"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewAssignmentResponse(m *assignmentModel.AssignmentModel, now time.Time) *AssignmentResponse {
	urls := make([]string, 0, len(m.AttachmentURLs))
	urls = append(urls, m.AttachmentURLs...)

	return &AssignmentResponse{
		ID:             m.ID,
		ClassID:        m.ClassID,
		Title:          m.Title,
		Instructions:   m.Instructions,
		DueAt:          m.DueAt,
		Overdue:        m.DueAt != nil && now.After(*m.DueAt),
		AttachmentURLs: urls,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
