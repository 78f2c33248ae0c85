package models

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/permit"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PermitModel is the persistence model for an issued permit
type PermitModel struct {
	AggregateModel
	PermitNo   string                                  `gorm:"type:varchar(8);not null;uniqueIndex"`
	LedgerID   uuid.UUID                               `gorm:"type:uuid;not null;index"`
	SemesterID uuid.UUID                               `gorm:"type:uuid;not null"`
	TermID     uuid.UUID                               `gorm:"type:uuid;not null;index"`
	StudentID  uuid.UUID                               `gorm:"type:uuid;not null;index"`
	Name       string                                  `gorm:"type:varchar(100);not null"`
	Email      string                                  `gorm:"type:varchar(200);not null"`
	College    string                                  `gorm:"type:varchar(200)"`
	Semester   int                                     `gorm:"not null"`
	Term       string                                  `gorm:"type:varchar(50);not null"`
	SchoolYear string                                  `gorm:"type:varchar(20);not null"`
	Courses    datatypes.JSONSlice[permit.CourseEntry] `gorm:"not null"`
	IssuedAt   time.Time                               `gorm:"not null;index"`
	IsValid    bool                                    `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PermitModel) TableName() string {
	return "permits"
}

// ToDomain converts the persistence model to a domain permit
func (m *PermitModel) ToDomain() *permit.Permit {
	return &permit.Permit{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PermitNo:          m.PermitNo,
		LedgerID:          m.LedgerID,
		SemesterID:        m.SemesterID,
		TermID:            m.TermID,
		StudentID:         m.StudentID,
		Name:              m.Name,
		Email:             m.Email,
		College:           m.College,
		Semester:          m.Semester,
		Term:              m.Term,
		SchoolYear:        m.SchoolYear,
		Courses:           append([]permit.CourseEntry(nil), m.Courses...),
		IssuedAt:          m.IssuedAt,
		IsValid:           m.IsValid,
	}
}

// PermitModelFromDomain creates a persistence model from a domain permit
func PermitModelFromDomain(p *permit.Permit) *PermitModel {
	m := &PermitModel{
		PermitNo:   p.PermitNo,
		LedgerID:   p.LedgerID,
		SemesterID: p.SemesterID,
		TermID:     p.TermID,
		StudentID:  p.StudentID,
		Name:       p.Name,
		Email:      p.Email,
		College:    p.College,
		Semester:   p.Semester,
		Term:       p.Term,
		SchoolYear: p.SchoolYear,
		Courses:    datatypes.NewJSONSlice(append([]permit.CourseEntry{}, p.Courses...)),
		IssuedAt:   p.IssuedAt,
		IsValid:    p.IsValid,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
