package models

import (
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TuitionLedgerModel is the root row of a student's ledger
type TuitionLedgerModel struct {
	AggregateModel
	StudentID uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	Semesters []TuitionSemesterModel `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TuitionLedgerModel) TableName() string {
	return "tuition_ledgers"
}

// TuitionSemesterModel holds one semester of a ledger and its aggregates
type TuitionSemesterModel struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primary_key"`
	LedgerID         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Position         int                         `gorm:"not null"`
	ProgramCode      string                      `gorm:"type:varchar(20);not null"`
	Year             int                         `gorm:"not null"`
	Semester         int                         `gorm:"not null"`
	CourseCodes      datatypes.JSONSlice[string] `gorm:"not null"`
	TotalPayments    decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	RemainingBalance decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	Terms            []TuitionTermModel          `gorm:"foreignKey:SemesterID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TuitionSemesterModel) TableName() string {
	return "tuition_semesters"
}

// TuitionTermModel is one term row. Rows are addressed by id only and
// mutated with in-place increments.
type TuitionTermModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	SemesterID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	LedgerID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence            int             `gorm:"not null"`
	Name                string          `gorm:"type:varchar(50);not null"`
	DueAmount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Paid                decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Balance             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ExamPermitRequested int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (TuitionTermModel) TableName() string {
	return "tuition_terms"
}

// ToDomain converts the model tree to a domain ledger. Semesters and terms
// must be loaded in position and sequence order.
func (m *TuitionLedgerModel) ToDomain() *tuition.TuitionLedger {
	ledger := &tuition.TuitionLedger{
		BaseAggregateRoot: m.ToAggregateRoot(),
		StudentID:         m.StudentID,
		Semesters:         make([]*tuition.SemesterLedger, 0, len(m.Semesters)),
	}
	for _, s := range m.Semesters {
		semester := &tuition.SemesterLedger{
			ID:               s.ID,
			ProgramCode:      s.ProgramCode,
			Year:             s.Year,
			Semester:         s.Semester,
			CourseCodes:      append([]string(nil), s.CourseCodes...),
			Terms:            make([]*tuition.TermLedger, 0, len(s.Terms)),
			TotalPayments:    valueobject.NewMoney(s.TotalPayments),
			RemainingBalance: valueobject.NewMoney(s.RemainingBalance),
		}
		for _, t := range s.Terms {
			semester.Terms = append(semester.Terms, &tuition.TermLedger{
				ID:                  t.ID,
				Sequence:            t.Sequence,
				Name:                t.Name,
				DueAmount:           valueobject.NewMoney(t.DueAmount),
				Paid:                valueobject.NewMoney(t.Paid),
				Balance:             valueobject.NewMoney(t.Balance),
				ExamPermitRequested: t.ExamPermitRequested,
			})
		}
		ledger.Semesters = append(ledger.Semesters, semester)
	}
	return ledger
}

// TuitionLedgerModelFromDomain creates the model tree of a domain ledger
func TuitionLedgerModelFromDomain(l *tuition.TuitionLedger) *TuitionLedgerModel {
	m := &TuitionLedgerModel{
		StudentID: l.StudentID,
		Semesters: make([]TuitionSemesterModel, 0, len(l.Semesters)),
	}
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)

	for i, s := range l.Semesters {
		sm := TuitionSemesterModel{
			ID:               s.ID,
			LedgerID:         l.ID,
			Position:         i + 1,
			ProgramCode:      s.ProgramCode,
			Year:             s.Year,
			Semester:         s.Semester,
			CourseCodes:      datatypes.NewJSONSlice(append([]string{}, s.CourseCodes...)),
			TotalPayments:    s.TotalPayments.Amount(),
			RemainingBalance: s.RemainingBalance.Amount(),
			Terms:            make([]TuitionTermModel, 0, len(s.Terms)),
		}
		for _, t := range s.Terms {
			sm.Terms = append(sm.Terms, TuitionTermModel{
				ID:                  t.ID,
				SemesterID:          s.ID,
				LedgerID:            l.ID,
				Sequence:            t.Sequence,
				Name:                t.Name,
				DueAmount:           t.DueAmount.Amount(),
				Paid:                t.Paid.Amount(),
				Balance:             t.Balance.Amount(),
				ExamPermitRequested: t.ExamPermitRequested,
			})
		}
		m.Semesters = append(m.Semesters, sm)
	}
	return m
}
