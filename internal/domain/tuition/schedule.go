package tuition

import (
	"fmt"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TermSchedule is the closed set of ways a semester total is split into terms.
// Implementations are ThreeTermPlan and FourTermPlan.
type TermSchedule interface {
	Kind() catalog.ScheduleKind
	TermNames() []string
	Percentages() []decimal.Decimal
	isTermSchedule()
}

// ThreeTermPlan splits 40/30/30
type ThreeTermPlan struct{}

func (ThreeTermPlan) Kind() catalog.ScheduleKind { return catalog.ScheduleThreeTerm }
func (ThreeTermPlan) TermNames() []string        { return []string{"1st Term", "2nd Term", "3rd Term"} }
func (ThreeTermPlan) Percentages() []decimal.Decimal {
	return []decimal.Decimal{decimal.NewFromInt(40), decimal.NewFromInt(30), decimal.NewFromInt(30)}
}
func (ThreeTermPlan) isTermSchedule() {}

// FourTermPlan splits into four equal shares
type FourTermPlan struct{}

func (FourTermPlan) Kind() catalog.ScheduleKind { return catalog.ScheduleFourTerm }
func (FourTermPlan) TermNames() []string {
	return []string{"Pre-Midterm", "Midterm", "Pre-Final", "Final"}
}
func (FourTermPlan) Percentages() []decimal.Decimal {
	q := decimal.NewFromInt(25)
	return []decimal.Decimal{q, q, q, q}
}
func (FourTermPlan) isTermSchedule() {}

// ScheduleFor returns the schedule of the given kind
func ScheduleFor(kind catalog.ScheduleKind) (TermSchedule, error) {
	switch kind {
	case catalog.ScheduleThreeTerm:
		return ThreeTermPlan{}, nil
	case catalog.ScheduleFourTerm:
		return FourTermPlan{}, nil
	}
	return nil, shared.NewDomainError("INVALID_SCHEDULE", fmt.Sprintf("Unknown term schedule %q", kind))
}

// SplitTotal divides a semester grand total across the schedule's terms.
// The shares always add up to total.
func SplitTotal(schedule TermSchedule, total valueobject.Money) ([]valueobject.Money, error) {
	return total.SplitByPercent(schedule.Percentages())
}
