package catalog

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ListPlansQuery selects semester plans. Year and Semester narrow the
// result to a single plan when both are set.
type ListPlansQuery struct {
	Program  string `form:"program" binding:"required,program_code"`
	Year     *int   `form:"year" binding:"omitempty,min=1,max=6"`
	Semester *int   `form:"semester" binding:"omitempty,min=1,max=3"`
}

// SeedResult reports what a seed run wrote
type SeedResult struct {
	Programs []string `json:"programs"`
	Count    int      `json:"count"`
}

// CourseResponse is one course of a semester plan
type CourseResponse struct {
	Code          string            `json:"code"`
	AcademicUnits int               `json:"academic_units"`
	LectureFee    valueobject.Money `json:"lecture_fee"`
	LaboratoryFee valueobject.Money `json:"laboratory_fee"`
	TotalFee      valueobject.Money `json:"total_fee"`
	Status        string            `json:"status"`
}

// SemesterPlanResponse represents a semester plan in API responses
type SemesterPlanResponse struct {
	ID           uuid.UUID         `json:"id"`
	ProgramCode  string            `json:"program_code"`
	Year         int               `json:"year"`
	Semester     int               `json:"semester"`
	Courses      []CourseResponse  `json:"courses"`
	TotalLecture valueobject.Money `json:"total_lecture_fee"`
	TotalLab     valueobject.Money `json:"total_laboratory_fee"`
	GrandTotal   valueobject.Money `json:"grand_total"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ProgramResponse is one entry of the program table
type ProgramResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	College   string `json:"college"`
	Schedule  string `json:"schedule"`
	Semesters int    `json:"semesters"`
}

// ToSemesterPlanResponse converts a domain plan
func ToSemesterPlanResponse(p *catalog.SemesterPlan) SemesterPlanResponse {
	courses := p.Courses()
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, CourseResponse{
			Code:          c.Code,
			AcademicUnits: c.AcademicUnits,
			LectureFee:    c.LectureFee,
			LaboratoryFee: c.LaboratoryFee,
			TotalFee:      c.TotalFee,
			Status:        c.Status,
		})
	}
	totals := p.Totals()
	return SemesterPlanResponse{
		ID:           p.ID,
		ProgramCode:  p.ProgramCode,
		Year:         p.Year,
		Semester:     p.Semester,
		Courses:      out,
		TotalLecture: totals.Lecture,
		TotalLab:     totals.Laboratory,
		GrandTotal:   totals.GrandTotal,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToSemesterPlanResponses converts a list of plans
func ToSemesterPlanResponses(plans []*catalog.SemesterPlan) []SemesterPlanResponse {
	out := make([]SemesterPlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, ToSemesterPlanResponse(p))
	}
	return out
}

// ToProgramResponse converts a program policy
func ToProgramResponse(p catalog.ProgramPolicy) ProgramResponse {
	return ProgramResponse{
		Code:      p.Code,
		Name:      p.Name,
		College:   p.College,
		Schedule:  string(p.Schedule),
		Semesters: len(p.Buckets),
	}
}
