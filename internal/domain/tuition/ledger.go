package tuition

import (
	"fmt"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Ledger errors
var (
	ErrLedgerNotFound      = shared.NewDomainError("LEDGER_NOT_FOUND", "No tuition record found for this student")
	ErrLedgerAlreadyExists = shared.NewDomainError("ALREADY_EXISTS", "Student already has a tuition ledger")
	ErrTermNotFound        = shared.NewDomainError("TERM_NOT_FOUND", "Term not found in tuition ledger")
	ErrInvalidAmount       = shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
)

// TermLedger holds the due, paid and balance figures of one term.
// Paid + Balance == DueAmount at all times.
type TermLedger struct {
	ID                  uuid.UUID
	Sequence            int
	Name                string
	DueAmount           valueobject.Money
	Paid                valueobject.Money
	Balance             valueobject.Money
	ExamPermitRequested int
}

// CanRequestPermit reports whether the term is paid in full
func (t *TermLedger) CanRequestPermit() bool {
	return !t.Balance.IsPositive()
}

func (t *TermLedger) verify() error {
	if t.Paid.IsNegative() || t.Balance.IsNegative() {
		return invariantError("term %s has negative figures (paid %s, balance %s)", t.Name, t.Paid, t.Balance)
	}
	if !t.Paid.Add(t.Balance).Equals(t.DueAmount) {
		return invariantError("term %s paid %s + balance %s != due %s", t.Name, t.Paid, t.Balance, t.DueAmount)
	}
	if t.ExamPermitRequested < 0 {
		return invariantError("term %s has negative permit counter", t.Name)
	}
	return nil
}

// SemesterLedger groups the terms of one semester and keeps
// running aggregates over them.
type SemesterLedger struct {
	ID               uuid.UUID
	ProgramCode      string
	Year             int
	Semester         int
	CourseCodes      []string
	Terms            []*TermLedger
	TotalPayments    valueobject.Money
	RemainingBalance valueobject.Money
}

// TotalDue sums the due amounts of all terms
func (s *SemesterLedger) TotalDue() valueobject.Money {
	total := valueobject.Zero()
	for _, t := range s.Terms {
		total = total.Add(t.DueAmount)
	}
	return total
}

func (s *SemesterLedger) verify() error {
	paid, balance := valueobject.Zero(), valueobject.Zero()
	for _, t := range s.Terms {
		if err := t.verify(); err != nil {
			return err
		}
		paid = paid.Add(t.Paid)
		balance = balance.Add(t.Balance)
	}
	if !s.RemainingBalance.Equals(balance) {
		return invariantError("semester %d remaining %s != sum of term balances %s", s.Semester, s.RemainingBalance, balance)
	}
	if !s.TotalPayments.Add(s.RemainingBalance).Equals(s.TotalDue()) {
		return invariantError("semester %d payments %s + remaining %s != total due %s", s.Semester, s.TotalPayments, s.RemainingBalance, s.TotalDue())
	}
	if !s.TotalPayments.Equals(paid) {
		return invariantError("semester %d payments %s != sum of term payments %s", s.Semester, s.TotalPayments, paid)
	}
	return nil
}

// TuitionLedger is the per-student record of dues, payments and balances.
// It is only mutated by the allocation engine and the permit counter.
type TuitionLedger struct {
	shared.BaseAggregateRoot
	StudentID uuid.UUID
	Semesters []*SemesterLedger
}

// Verify checks every term and semester invariant
func (l *TuitionLedger) Verify() error {
	for _, s := range l.Semesters {
		if err := s.verify(); err != nil {
			return err
		}
	}
	return nil
}

// OutstandingBalance is the sum of all remaining balances
func (l *TuitionLedger) OutstandingBalance() valueobject.Money {
	total := valueobject.Zero()
	for _, s := range l.Semesters {
		total = total.Add(s.RemainingBalance)
	}
	return total
}

// FindTerm locates a term and its semester by term id
func (l *TuitionLedger) FindTerm(termID uuid.UUID) (*SemesterLedger, *TermLedger, error) {
	for _, s := range l.Semesters {
		for _, t := range s.Terms {
			if t.ID == termID {
				return s, t, nil
			}
		}
	}
	return nil, nil, ErrTermNotFound
}

// RecordPermitRequest runs the permit gate on a term and, if the term is
// paid in full, increments its request counter.
func (l *TuitionLedger) RecordPermitRequest(termID uuid.UUID) (*SemesterLedger, *TermLedger, error) {
	semester, term, err := l.FindTerm(termID)
	if err != nil {
		return nil, nil, err
	}
	if !CanRequestPermit(term) {
		return nil, nil, NewPermitNotEligibleError(term)
	}
	term.ExamPermitRequested++
	l.Touch()
	l.AddDomainEvent(NewPermitRequestedEvent(l, semester, term))
	return semester, term, nil
}

// applyToTerm moves amount from balance to paid on one term and its semester.
func (l *TuitionLedger) applyToTerm(semester *SemesterLedger, term *TermLedger, amount valueobject.Money) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(term.Balance) {
		return invariantError("allocation %s exceeds balance %s of term %s", amount, term.Balance, term.Name)
	}
	term.Paid = term.Paid.Add(amount)
	term.Balance = term.Balance.Subtract(amount)
	semester.TotalPayments = semester.TotalPayments.Add(amount)
	semester.RemainingBalance = semester.RemainingBalance.Subtract(amount)
	return nil
}

// CanRequestPermit is the permit eligibility gate: a term qualifies
// once its balance is zero.
func CanRequestPermit(term *TermLedger) bool {
	return term != nil && term.CanRequestPermit()
}

// NewPermitNotEligibleError reports the outstanding balance of a term
func NewPermitNotEligibleError(term *TermLedger) *shared.DomainError {
	return shared.NewDomainError("PERMIT_NOT_ELIGIBLE",
		fmt.Sprintf("%s still has an outstanding balance of %s", term.Name, term.Balance))
}

// ErrPermitNotEligible matches any NewPermitNotEligibleError via errors.Is
var ErrPermitNotEligible = shared.NewDomainError("PERMIT_NOT_ELIGIBLE", "Term has an outstanding balance")

func invariantError(format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInvariantViolation.Code, fmt.Sprintf(format, args...))
}
