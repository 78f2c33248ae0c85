package catalog

import (
	"fmt"
	"strings"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
)

// CourseStatusRegular is the enrolment status of generated course entries
const CourseStatusRegular = "Regular"

// Catalog errors
var (
	ErrProgramNotFound      = shared.NewDomainError("PROGRAM_NOT_FOUND", "Program not found")
	ErrSemesterPlanNotFound = shared.NewDomainError("SEMESTER_PLAN_NOT_FOUND", "Semester plan not found")
)

// CourseFee is one course of a semester plan with its fees
type CourseFee struct {
	Code          string
	AcademicUnits int
	LectureFee    valueobject.Money
	LaboratoryFee valueobject.Money
	TotalFee      valueobject.Money
	Status        string
}

// NewCourseFee creates a course fee entry; TotalFee is derived.
func NewCourseFee(code string, units int, lecture, laboratory valueobject.Money) (CourseFee, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CourseFee{}, shared.NewDomainError("INVALID_COURSE", "Course code cannot be empty")
	}
	if units < 1 {
		return CourseFee{}, shared.NewDomainError("INVALID_COURSE", "Academic units must be positive")
	}
	if lecture.IsNegative() || laboratory.IsNegative() {
		return CourseFee{}, shared.NewDomainError("INVALID_COURSE", "Fees cannot be negative")
	}
	return CourseFee{
		Code:          code,
		AcademicUnits: units,
		LectureFee:    lecture,
		LaboratoryFee: laboratory,
		TotalFee:      lecture.Add(laboratory),
		Status:        CourseStatusRegular,
	}, nil
}

// Totals are the aggregated fees of a semester plan
type Totals struct {
	Lecture    valueobject.Money
	Laboratory valueobject.Money
	GrandTotal valueobject.Money
}

// ComputeTotals sums the fees of the given courses
func ComputeTotals(courses []CourseFee) Totals {
	t := Totals{
		Lecture:    valueobject.Zero(),
		Laboratory: valueobject.Zero(),
		GrandTotal: valueobject.Zero(),
	}
	for _, c := range courses {
		t.Lecture = t.Lecture.Add(c.LectureFee)
		t.Laboratory = t.Laboratory.Add(c.LaboratoryFee)
		t.GrandTotal = t.GrandTotal.Add(c.TotalFee)
	}
	return t
}

// SemesterPlan is the fee baseline of one (program, year, semester).
// The course list and totals only change together through SetCourses.
type SemesterPlan struct {
	shared.BaseAggregateRoot
	ProgramCode string
	Year        int
	Semester    int
	courses     []CourseFee
	totals      Totals
}

// NewSemesterPlan creates a plan and computes its totals
func NewSemesterPlan(programCode string, year, semester int, courses []CourseFee) (*SemesterPlan, error) {
	programCode = NormalizeProgramCode(programCode)
	if programCode == "" {
		return nil, shared.NewDomainError("INVALID_PROGRAM", "Program code cannot be empty")
	}
	if year < 1 {
		return nil, shared.NewDomainError("INVALID_YEAR", "Year must be positive")
	}
	if semester != 1 && semester != 2 {
		return nil, shared.NewDomainError("INVALID_SEMESTER", "Semester must be 1 or 2")
	}

	p := &SemesterPlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProgramCode:       programCode,
		Year:              year,
		Semester:          semester,
	}
	if err := p.setCourses(courses); err != nil {
		return nil, err
	}
	return p, nil
}

// RehydrateSemesterPlan rebuilds a stored plan and checks the stored totals
// still match the course list.
func RehydrateSemesterPlan(base shared.BaseAggregateRoot, programCode string, year, semester int, courses []CourseFee, stored Totals) (*SemesterPlan, error) {
	p := &SemesterPlan{
		BaseAggregateRoot: base,
		ProgramCode:       programCode,
		Year:              year,
		Semester:          semester,
		courses:           append([]CourseFee(nil), courses...),
		totals:            ComputeTotals(courses),
	}
	if !p.totals.GrandTotal.Equals(stored.GrandTotal) ||
		!p.totals.Lecture.Equals(stored.Lecture) ||
		!p.totals.Laboratory.Equals(stored.Laboratory) {
		return nil, shared.NewDomainError(shared.ErrInvariantViolation.Code,
			fmt.Sprintf("Semester plan %s Y%d S%d stored totals %s do not match course sum %s",
				programCode, year, semester, stored.GrandTotal, p.totals.GrandTotal))
	}
	return p, nil
}

// SetCourses replaces the course list and recomputes totals
func (p *SemesterPlan) SetCourses(courses []CourseFee) error {
	if err := p.setCourses(courses); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *SemesterPlan) setCourses(courses []CourseFee) error {
	if len(courses) == 0 {
		return shared.NewDomainError("INVALID_COURSE", "Semester plan must have at least one course")
	}
	for _, c := range courses {
		if !c.TotalFee.Equals(c.LectureFee.Add(c.LaboratoryFee)) {
			return shared.NewDomainError("INVALID_COURSE", "Course "+c.Code+" total fee must equal lecture plus laboratory")
		}
	}
	p.courses = append([]CourseFee(nil), courses...)
	p.totals = ComputeTotals(p.courses)
	return nil
}

// Courses returns a copy of the course list
func (p *SemesterPlan) Courses() []CourseFee {
	return append([]CourseFee(nil), p.courses...)
}

// CourseCodes returns the course codes in plan order
func (p *SemesterPlan) CourseCodes() []string {
	codes := make([]string, len(p.courses))
	for i, c := range p.courses {
		codes[i] = c.Code
	}
	return codes
}

// Totals returns the aggregated fees
func (p *SemesterPlan) Totals() Totals {
	return p.totals
}
