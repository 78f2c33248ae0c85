package tuition

import (
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TermAllocation is the part of a payment applied to one term
type TermAllocation struct {
	SemesterID   uuid.UUID         `json:"semester_id"`
	Year         int               `json:"year"`
	Semester     int               `json:"semester"`
	TermID       uuid.UUID         `json:"term_id"`
	TermName     string            `json:"term_name"`
	Applied      valueobject.Money `json:"applied"`
	BalanceAfter valueobject.Money `json:"balance_after"`
}

// AllocationResult is the complete outcome of spreading one amount over a ledger
type AllocationResult struct {
	Requested      valueobject.Money `json:"requested"`
	TotalAllocated valueobject.Money `json:"total_allocated"`
	// Unapplied is the part of Requested no term could take. It is not
	// credited anywhere.
	Unapplied    valueobject.Money `json:"unapplied"`
	Allocations  []TermAllocation  `json:"allocations"`
	FullySettled bool              `json:"fully_settled"`
}

// IsNoop reports whether nothing was allocated
func (r *AllocationResult) IsNoop() bool {
	return len(r.Allocations) == 0
}

// AllocationStrategy decides how an amount is spread over a ledger's terms.
// Plan must not mutate the ledger.
type AllocationStrategy interface {
	Name() string
	Plan(ledger *TuitionLedger, amount valueobject.Money) (*AllocationResult, error)
}

// EarliestOutstandingFirst fills terms greedily in stored order: semesters
// first, then terms within a semester. Each term is paid off completely
// before the next one receives anything.
type EarliestOutstandingFirst struct{}

// NewEarliestOutstandingFirst creates the default allocation strategy
func NewEarliestOutstandingFirst() *EarliestOutstandingFirst {
	return &EarliestOutstandingFirst{}
}

// Name returns the strategy name
func (s *EarliestOutstandingFirst) Name() string {
	return "earliest_outstanding_first"
}

// Plan implements AllocationStrategy
func (s *EarliestOutstandingFirst) Plan(ledger *TuitionLedger, amount valueobject.Money) (*AllocationResult, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	result := &AllocationResult{
		Requested:      amount,
		TotalAllocated: valueobject.Zero(),
		Allocations:    make([]TermAllocation, 0),
	}
	remaining := amount

out:
	for _, semester := range ledger.Semesters {
		for _, term := range semester.Terms {
			if !remaining.IsPositive() {
				break out
			}
			if !term.Balance.IsPositive() {
				continue
			}
			applied := term.Balance.Min(remaining)
			result.Allocations = append(result.Allocations, TermAllocation{
				SemesterID:   semester.ID,
				Year:         semester.Year,
				Semester:     semester.Semester,
				TermID:       term.ID,
				TermName:     term.Name,
				Applied:      applied,
				BalanceAfter: term.Balance.Subtract(applied),
			})
			result.TotalAllocated = result.TotalAllocated.Add(applied)
			remaining = remaining.Subtract(applied)
		}
	}

	result.Unapplied = remaining
	result.FullySettled = ledger.OutstandingBalance().Subtract(result.TotalAllocated).IsZero()
	return result, nil
}

// Engine applies payments to ledgers using a strategy
type Engine struct {
	strategy AllocationStrategy
}

// NewEngine creates an allocation engine; nil selects EarliestOutstandingFirst.
func NewEngine(strategy AllocationStrategy) *Engine {
	if strategy == nil {
		strategy = NewEarliestOutstandingFirst()
	}
	return &Engine{strategy: strategy}
}

// Strategy returns the engine's strategy
func (e *Engine) Strategy() AllocationStrategy {
	return e.strategy
}

// Allocate plans the allocation of amount and applies it to the ledger in
// memory. The ledger invariants are re-checked afterwards; a violation is
// returned as an invariant error and the ledger must be discarded.
// A zero amount or a fully paid ledger yields an empty allocation list.
func (e *Engine) Allocate(ledger *TuitionLedger, amount valueobject.Money) (*AllocationResult, error) {
	result, err := e.strategy.Plan(ledger, amount)
	if err != nil {
		return nil, err
	}
	if result.IsNoop() {
		return result, nil
	}
	if err := ledger.Apply(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Apply mutates the ledger according to a planned allocation
func (l *TuitionLedger) Apply(result *AllocationResult) error {
	for _, a := range result.Allocations {
		semester, term, err := l.FindTerm(a.TermID)
		if err != nil {
			return err
		}
		if err := l.applyToTerm(semester, term, a.Applied); err != nil {
			return err
		}
	}
	if err := l.Verify(); err != nil {
		return err
	}
	l.Touch()
	l.AddDomainEvent(NewPaymentAllocatedEvent(l, result))
	return nil
}
