package tuition

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/google/uuid"
)

// TermResponse is one term of a semester ledger
type TermResponse struct {
	ID                  uuid.UUID         `json:"id"`
	Sequence            int               `json:"sequence"`
	Name                string            `json:"name"`
	DueAmount           valueobject.Money `json:"due_amount"`
	Paid                valueobject.Money `json:"paid"`
	Balance             valueobject.Money `json:"balance"`
	ExamPermitRequested int               `json:"exam_permit_requested"`
	CanRequestPermit    bool              `json:"can_request_permit"`
}

// SemesterResponse is one semester of a tuition ledger
type SemesterResponse struct {
	ID               uuid.UUID         `json:"id"`
	ProgramCode      string            `json:"program_code"`
	Year             int               `json:"year"`
	Semester         int               `json:"semester"`
	CourseCodes      []string          `json:"course_codes"`
	Terms            []TermResponse    `json:"terms"`
	TotalDue         valueobject.Money `json:"total_due"`
	TotalPayments    valueobject.Money `json:"total_payments"`
	RemainingBalance valueobject.Money `json:"remaining_balance"`
}

// LedgerResponse represents a student's tuition ledger in API responses
type LedgerResponse struct {
	ID                 uuid.UUID          `json:"id"`
	StudentID          uuid.UUID          `json:"student_id"`
	Semesters          []SemesterResponse `json:"semesters"`
	OutstandingBalance valueobject.Money  `json:"outstanding_balance"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ToLedgerResponse converts a domain ledger
func ToLedgerResponse(l *tuition.TuitionLedger) LedgerResponse {
	semesters := make([]SemesterResponse, 0, len(l.Semesters))
	for _, s := range l.Semesters {
		terms := make([]TermResponse, 0, len(s.Terms))
		for _, t := range s.Terms {
			terms = append(terms, TermResponse{
				ID:                  t.ID,
				Sequence:            t.Sequence,
				Name:                t.Name,
				DueAmount:           t.DueAmount,
				Paid:                t.Paid,
				Balance:             t.Balance,
				ExamPermitRequested: t.ExamPermitRequested,
				CanRequestPermit:    tuition.CanRequestPermit(t),
			})
		}
		semesters = append(semesters, SemesterResponse{
			ID:               s.ID,
			ProgramCode:      s.ProgramCode,
			Year:             s.Year,
			Semester:         s.Semester,
			CourseCodes:      append([]string(nil), s.CourseCodes...),
			Terms:            terms,
			TotalDue:         s.TotalDue(),
			TotalPayments:    s.TotalPayments,
			RemainingBalance: s.RemainingBalance,
		})
	}
	return LedgerResponse{
		ID:                 l.ID,
		StudentID:          l.StudentID,
		Semesters:          semesters,
		OutstandingBalance: l.OutstandingBalance(),
		UpdatedAt:          l.UpdatedAt,
	}
}
