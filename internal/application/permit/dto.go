package permit

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/permit"
	"github.com/google/uuid"
)

// CourseSectionInput is one course the student sits an exam for
type CourseSectionInput struct {
	Code    string `json:"code" binding:"required,max=20"`
	Section string `json:"section" binding:"required,max=20"`
}

// RequestPermitInput represents a permit request
type RequestPermitInput struct {
	TermID  string               `json:"term_id" binding:"required,uuid"`
	Courses []CourseSectionInput `json:"courses" binding:"omitempty,max=20,dive"`
}

// PermitResponse represents an issued permit in API responses
type PermitResponse struct {
	ID         uuid.UUID            `json:"id"`
	PermitNo   string               `json:"permit_no"`
	Title      string               `json:"title"`
	LedgerID   uuid.UUID            `json:"ledger_id"`
	TermID     uuid.UUID            `json:"term_id"`
	Term       string               `json:"term"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	College    string               `json:"college"`
	Semester   int                  `json:"semester"`
	SchoolYear string               `json:"school_year"`
	Courses    []permit.CourseEntry `json:"courses"`
	IssuedAt   time.Time            `json:"issued_at"`
	IsValid    bool                 `json:"is_valid"`
}

// RequestResult is the outcome of a permit request. The permit is issued
// even when Delivered is false.
type RequestResult struct {
	Permit        PermitResponse `json:"permit"`
	Delivered     bool           `json:"delivered"`
	DeliveryError string         `json:"delivery_error,omitempty"`
}

// ToPermitResponse converts a domain permit
func ToPermitResponse(p *permit.Permit) PermitResponse {
	courses := p.Courses
	if courses == nil {
		courses = []permit.CourseEntry{}
	}
	return PermitResponse{
		ID:         p.ID,
		PermitNo:   p.PermitNo,
		Title:      p.Title(),
		LedgerID:   p.LedgerID,
		TermID:     p.TermID,
		Term:       p.Term,
		Name:       p.Name,
		Email:      p.Email,
		College:    p.College,
		Semester:   p.Semester,
		SchoolYear: p.SchoolYear,
		Courses:    courses,
		IssuedAt:   p.IssuedAt,
		IsValid:    p.IsValid,
	}
}

// ToPermitResponses converts a list of domain permits
func ToPermitResponses(permits []*permit.Permit) []PermitResponse {
	out := make([]PermitResponse, 0, len(permits))
	for _, p := range permits {
		out = append(out, ToPermitResponse(p))
	}
	return out
}
