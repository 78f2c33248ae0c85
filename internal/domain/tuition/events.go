package tuition

import (
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AggregateTypeTuitionLedger is the aggregate type of ledger events
const AggregateTypeTuitionLedger = "TuitionLedger"

// Ledger event types
const (
	EventTypeLedgerCreated    = "TuitionLedgerCreated"
	EventTypePaymentAllocated = "TuitionPaymentAllocated"
	EventTypePermitRequested  = "TuitionPermitRequested"
)

// LedgerCreatedEvent is published when a student's ledger is opened
type LedgerCreatedEvent struct {
	shared.BaseDomainEvent
	StudentID   uuid.UUID         `json:"student_id"`
	Semesters   int               `json:"semesters"`
	TotalDue    valueobject.Money `json:"total_due"`
	DownPayment valueobject.Money `json:"down_payment"`
}

// NewLedgerCreatedEvent creates a LedgerCreatedEvent
func NewLedgerCreatedEvent(l *TuitionLedger, downPayment valueobject.Money) *LedgerCreatedEvent {
	total := valueobject.Zero()
	for _, s := range l.Semesters {
		total = total.Add(s.TotalDue())
	}
	return &LedgerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerCreated, AggregateTypeTuitionLedger, l.ID),
		StudentID:       l.StudentID,
		Semesters:       len(l.Semesters),
		TotalDue:        total,
		DownPayment:     downPayment,
	}
}

// PaymentAllocatedEvent is published after an amount is spread over terms
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	StudentID      uuid.UUID         `json:"student_id"`
	TotalAllocated valueobject.Money `json:"total_allocated"`
	Unapplied      valueobject.Money `json:"unapplied"`
	TermsTouched   int               `json:"terms_touched"`
}

// NewPaymentAllocatedEvent creates a PaymentAllocatedEvent
func NewPaymentAllocatedEvent(l *TuitionLedger, result *AllocationResult) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocated, AggregateTypeTuitionLedger, l.ID),
		StudentID:       l.StudentID,
		TotalAllocated:  result.TotalAllocated,
		Unapplied:       result.Unapplied,
		TermsTouched:    len(result.Allocations),
	}
}

// PermitRequestedEvent is published when the permit gate lets a request through
type PermitRequestedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID `json:"student_id"`
	TermID    uuid.UUID `json:"term_id"`
	Semester  int       `json:"semester"`
	TermName  string    `json:"term_name"`
	Requests  int       `json:"requests"`
}

// NewPermitRequestedEvent creates a PermitRequestedEvent
func NewPermitRequestedEvent(l *TuitionLedger, s *SemesterLedger, t *TermLedger) *PermitRequestedEvent {
	return &PermitRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePermitRequested, AggregateTypeTuitionLedger, l.ID),
		StudentID:       l.StudentID,
		TermID:          t.ID,
		Semester:        s.Semester,
		TermName:        t.Name,
		Requests:        t.ExamPermitRequested,
	}
}
