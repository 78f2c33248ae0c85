package models

import (
	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SemesterPlanModel is the persistence model for a catalog semester plan.
// The stored totals are denormalized; rehydration re-checks them.
type SemesterPlanModel struct {
	AggregateModel
	ProgramCode     string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_semester_plan_slot,priority:1"`
	Year            int              `gorm:"not null;uniqueIndex:idx_semester_plan_slot,priority:2"`
	Semester        int              `gorm:"not null;uniqueIndex:idx_semester_plan_slot,priority:3"`
	LectureTotal    decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	LaboratoryTotal decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	GrandTotal      decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Courses         []CourseFeeModel `gorm:"foreignKey:SemesterPlanID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SemesterPlanModel) TableName() string {
	return "semester_plans"
}

// CourseFeeModel is one course row of a semester plan
type CourseFeeModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	SemesterPlanID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position       int             `gorm:"not null"`
	Code           string          `gorm:"type:varchar(20);not null"`
	AcademicUnits  int             `gorm:"not null"`
	LectureFee     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LaboratoryFee  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalFee       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (CourseFeeModel) TableName() string {
	return "semester_plan_courses"
}

// ToDomain converts the model to a domain SemesterPlan. Courses must be
// loaded ordered by position.
func (m *SemesterPlanModel) ToDomain() (*catalog.SemesterPlan, error) {
	courses := make([]catalog.CourseFee, len(m.Courses))
	for i, c := range m.Courses {
		courses[i] = catalog.CourseFee{
			Code:          c.Code,
			AcademicUnits: c.AcademicUnits,
			LectureFee:    valueobject.NewMoney(c.LectureFee),
			LaboratoryFee: valueobject.NewMoney(c.LaboratoryFee),
			TotalFee:      valueobject.NewMoney(c.TotalFee),
			Status:        c.Status,
		}
	}
	return catalog.RehydrateSemesterPlan(m.ToAggregateRoot(), m.ProgramCode, m.Year, m.Semester, courses, catalog.Totals{
		Lecture:    valueobject.NewMoney(m.LectureTotal),
		Laboratory: valueobject.NewMoney(m.LaboratoryTotal),
		GrandTotal: valueobject.NewMoney(m.GrandTotal),
	})
}

// SemesterPlanModelFromDomain creates a persistence model from a domain plan
func SemesterPlanModelFromDomain(p *catalog.SemesterPlan) *SemesterPlanModel {
	totals := p.Totals()
	m := &SemesterPlanModel{
		ProgramCode:     p.ProgramCode,
		Year:            p.Year,
		Semester:        p.Semester,
		LectureTotal:    totals.Lecture.Amount(),
		LaboratoryTotal: totals.Laboratory.Amount(),
		GrandTotal:      totals.GrandTotal.Amount(),
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)

	for i, c := range p.Courses() {
		m.Courses = append(m.Courses, CourseFeeModel{
			ID:             uuid.New(),
			SemesterPlanID: p.ID,
			Position:       i + 1,
			Code:           c.Code,
			AcademicUnits:  c.AcademicUnits,
			LectureFee:     c.LectureFee.Amount(),
			LaboratoryFee:  c.LaboratoryFee.Amount(),
			TotalFee:       c.TotalFee.Amount(),
			Status:         c.Status,
		})
	}
	return m
}
