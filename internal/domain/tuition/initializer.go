package tuition

import (
	"cmp"
	"slices"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Initializer opens tuition ledgers from a program's semester plans
type Initializer struct {
	programs    *catalog.PolicyTable
	downPayment valueobject.Money
}

// NewInitializer creates an initializer. downPayment is pre-applied to the
// first term of every semester; pass zero to disable it.
func NewInitializer(programs *catalog.PolicyTable, downPayment valueobject.Money) *Initializer {
	return &Initializer{
		programs:    programs,
		downPayment: downPayment.FloorZero(),
	}
}

// DownPayment returns the configured down payment
func (i *Initializer) DownPayment() valueobject.Money {
	return i.downPayment
}

// CreateLedger builds a ledger for the student from the given plans, which
// must all belong to programCode. Terms are split per the program's schedule.
func (i *Initializer) CreateLedger(studentID uuid.UUID, programCode string, plans []*catalog.SemesterPlan) (*TuitionLedger, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	program, err := i.programs.Lookup(programCode)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, shared.NewDomainError(catalog.ErrSemesterPlanNotFound.Code, "No semester plans found for program "+program.Code)
	}
	schedule, err := ScheduleFor(program.Schedule)
	if err != nil {
		return nil, err
	}

	ordered := slices.Clone(plans)
	slices.SortStableFunc(ordered, func(a, b *catalog.SemesterPlan) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Semester, b.Semester))
	})

	ledger := &TuitionLedger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		Semesters:         make([]*SemesterLedger, 0, len(ordered)),
	}

	for _, plan := range ordered {
		if plan.ProgramCode != program.Code {
			return nil, shared.NewDomainError("INVALID_PROGRAM", "Semester plan belongs to program "+plan.ProgramCode)
		}
		semester, err := i.newSemesterLedger(schedule, plan)
		if err != nil {
			return nil, err
		}
		ledger.Semesters = append(ledger.Semesters, semester)
	}

	if err := ledger.Verify(); err != nil {
		return nil, err
	}
	ledger.AddDomainEvent(NewLedgerCreatedEvent(ledger, i.downPayment))
	return ledger, nil
}

func (i *Initializer) newSemesterLedger(schedule TermSchedule, plan *catalog.SemesterPlan) (*SemesterLedger, error) {
	grandTotal := plan.Totals().GrandTotal
	shares, err := SplitTotal(schedule, grandTotal)
	if err != nil {
		return nil, err
	}

	semester := &SemesterLedger{
		ID:               uuid.New(),
		ProgramCode:      plan.ProgramCode,
		Year:             plan.Year,
		Semester:         plan.Semester,
		CourseCodes:      plan.CourseCodes(),
		Terms:            make([]*TermLedger, 0, len(shares)),
		TotalPayments:    valueobject.Zero(),
		RemainingBalance: grandTotal,
	}
	for idx, name := range schedule.TermNames() {
		semester.Terms = append(semester.Terms, &TermLedger{
			ID:        uuid.New(),
			Sequence:  idx + 1,
			Name:      name,
			DueAmount: shares[idx],
			Paid:      valueobject.Zero(),
			Balance:   shares[idx],
		})
	}

	if i.downPayment.IsPositive() && len(semester.Terms) > 0 {
		first := semester.Terms[0]
		applied := i.downPayment.Min(first.DueAmount)
		first.Paid = applied
		first.Balance = first.DueAmount.Subtract(applied)
		semester.TotalPayments = applied
		semester.RemainingBalance = grandTotal.Subtract(applied)
	}
	return semester, nil
}
