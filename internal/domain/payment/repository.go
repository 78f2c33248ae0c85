package payment

import (
	"context"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Repository defines the interface for payment record persistence
type Repository interface {
	// Create persists a new pending record
	Create(ctx context.Context, record *Record) error

	// FindByTransactionID loads a record by its transaction id
	FindByTransactionID(ctx context.Context, transactionID string) (*Record, error)

	// ExistsByReferenceNumber checks whether a reference number was already submitted
	ExistsByReferenceNumber(ctx context.Context, referenceNumber string) (bool, error)

	// FindAll lists records matching the filter, newest first
	FindAll(ctx context.Context, filter Filter) ([]*Record, int64, error)

	// TransitionFromPending sets the status only if the record is still
	// pending. It returns ErrAlreadyVerified when no pending row matched
	// and ErrPaymentNotFound when the id is unknown.
	TransitionFromPending(ctx context.Context, transactionID string, to Status, verifiedBy uuid.UUID, at time.Time) error

	// RecordSettlement stores the applied and unapplied parts of an accepted payment
	RecordSettlement(ctx context.Context, transactionID string, applied, unapplied valueobject.Money) error
}
