package tuition

import (
	"context"

	"github.com/google/uuid"
)

// LedgerRepository defines the interface for tuition ledger persistence.
// Terms are keyed by their own id, never by position or name.
type LedgerRepository interface {
	// Create persists a new ledger with all semesters and terms
	Create(ctx context.Context, ledger *TuitionLedger) error

	// FindByID loads a ledger by its id
	FindByID(ctx context.Context, id uuid.UUID) (*TuitionLedger, error)

	// FindByStudentID loads the ledger of a student
	FindByStudentID(ctx context.Context, studentID uuid.UUID) (*TuitionLedger, error)

	// FindByStudentIDForUpdate loads the ledger and locks it until the
	// surrounding transaction ends
	FindByStudentIDForUpdate(ctx context.Context, studentID uuid.UUID) (*TuitionLedger, error)

	// ExistsByStudentID checks whether a student already has a ledger
	ExistsByStudentID(ctx context.Context, studentID uuid.UUID) (bool, error)

	// ApplyAllocations persists allocations as per-term atomic increments and
	// checks the stored figures against ledger, which must already reflect them
	ApplyAllocations(ctx context.Context, ledger *TuitionLedger, allocations []TermAllocation) error

	// IncrementPermitRequested bumps the permit counter of one term
	IncrementPermitRequested(ctx context.Context, ledgerID, termID uuid.UUID) error
}
