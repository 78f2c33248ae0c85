package payment

import (
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AggregateTypePayment is the aggregate type of payment events
const AggregateTypePayment = "PaymentRecord"

// Payment event types
const (
	EventTypePaymentSubmitted = "PaymentSubmitted"
	EventTypePaymentAccepted  = "PaymentAccepted"
	EventTypePaymentRejected  = "PaymentRejected"
)

// PaymentSubmittedEvent is published when a student reports a payment
type PaymentSubmittedEvent struct {
	shared.BaseDomainEvent
	TransactionID string            `json:"transaction_id"`
	StudentID     uuid.UUID         `json:"student_id"`
	Amount        valueobject.Money `json:"amount"`
}

// NewPaymentSubmittedEvent creates a PaymentSubmittedEvent
func NewPaymentSubmittedEvent(r *Record) *PaymentSubmittedEvent {
	return &PaymentSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentSubmitted, AggregateTypePayment, r.ID),
		TransactionID:   r.TransactionID,
		StudentID:       r.StudentID,
		Amount:          r.Amount,
	}
}

// PaymentAcceptedEvent is published after an accepted payment reached the ledger
type PaymentAcceptedEvent struct {
	shared.BaseDomainEvent
	TransactionID string            `json:"transaction_id"`
	StudentID     uuid.UUID         `json:"student_id"`
	Amount        valueobject.Money `json:"amount"`
	Applied       valueobject.Money `json:"applied"`
	Unapplied     valueobject.Money `json:"unapplied"`
}

// NewPaymentAcceptedEvent creates a PaymentAcceptedEvent
func NewPaymentAcceptedEvent(r *Record) *PaymentAcceptedEvent {
	return &PaymentAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAccepted, AggregateTypePayment, r.ID),
		TransactionID:   r.TransactionID,
		StudentID:       r.StudentID,
		Amount:          r.Amount,
		Applied:         r.AppliedAmount,
		Unapplied:       r.UnappliedAmount,
	}
}

// PaymentRejectedEvent is published when an admin rejects a payment
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	TransactionID string    `json:"transaction_id"`
	StudentID     uuid.UUID `json:"student_id"`
}

// NewPaymentRejectedEvent creates a PaymentRejectedEvent
func NewPaymentRejectedEvent(r *Record) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRejected, AggregateTypePayment, r.ID),
		TransactionID:   r.TransactionID,
		StudentID:       r.StudentID,
	}
}
