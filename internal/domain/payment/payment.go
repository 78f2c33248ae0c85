package payment

import (
	"strings"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Status is the verification state of a payment record
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Method is the self-reported payment channel
type Method string

// MethodGCash is the only supported channel
const MethodGCash Method = "GCash"

// Payment errors
var (
	ErrPaymentNotFound     = shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	ErrAlreadyVerified     = shared.NewDomainError("PAYMENT_ALREADY_VERIFIED", "Payment has already been verified")
	ErrReferenceNumberUsed = shared.NewDomainError("ALREADY_EXISTS", "Reference number has already been submitted")
	ErrUnsupportedMethod   = shared.NewDomainError("INVALID_INPUT", "Payment method must be GCash")
	ErrNonPositiveAmount   = shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than zero")
)

// Submission holds what a student declares when reporting a payment
type Submission struct {
	StudentID       uuid.UUID
	FullName        string
	MobileNumber    string
	Email           string
	ReferenceNumber string
	Amount          valueobject.Money
	Method          Method
	ProofURL        string
}

// Record is a self-reported payment awaiting or past verification.
// Status moves from pending exactly once.
type Record struct {
	shared.BaseAggregateRoot
	TransactionID   string
	StudentID       uuid.UUID
	FullName        string
	MobileNumber    string
	Email           string
	ReferenceNumber string
	Amount          valueobject.Money
	Method          Method
	ProofURL        string
	Status          Status
	SubmittedAt     time.Time
	VerifiedAt      *time.Time
	VerifiedBy      *uuid.UUID
	AppliedAmount   valueobject.Money
	UnappliedAmount valueobject.Money
}

// NewRecord validates a submission and creates a pending record
func NewRecord(transactionID string, s Submission) (*Record, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transaction ID cannot be empty")
	}
	if s.StudentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Student ID cannot be empty")
	}
	if strings.TrimSpace(s.FullName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Full name is required")
	}
	if strings.TrimSpace(s.MobileNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Mobile number is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Email is required")
	}
	if strings.TrimSpace(s.ReferenceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reference number is required")
	}
	if !s.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if s.Method == "" {
		s.Method = MethodGCash
	}
	if s.Method != MethodGCash {
		return nil, ErrUnsupportedMethod
	}
	if strings.TrimSpace(s.ProofURL) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Proof of payment is required")
	}

	r := &Record{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransactionID:     transactionID,
		StudentID:         s.StudentID,
		FullName:          strings.TrimSpace(s.FullName),
		MobileNumber:      strings.TrimSpace(s.MobileNumber),
		Email:             strings.ToLower(strings.TrimSpace(s.Email)),
		ReferenceNumber:   strings.TrimSpace(s.ReferenceNumber),
		Amount:            s.Amount,
		Method:            s.Method,
		ProofURL:          s.ProofURL,
		Status:            StatusPending,
		AppliedAmount:     valueobject.Zero(),
		UnappliedAmount:   valueobject.Zero(),
	}
	r.SubmittedAt = r.CreatedAt
	r.AddDomainEvent(NewPaymentSubmittedEvent(r))
	return r, nil
}

// IsPending reports whether the record still awaits verification
func (r *Record) IsPending() bool {
	return r.Status == StatusPending
}

// Accept moves a pending record to accepted and records how much of the
// amount reached the ledger.
func (r *Record) Accept(adminID uuid.UUID, at time.Time, applied, unapplied valueobject.Money) error {
	if err := r.transition(StatusAccepted, adminID, at); err != nil {
		return err
	}
	r.AppliedAmount = applied
	r.UnappliedAmount = unapplied
	r.AddDomainEvent(NewPaymentAcceptedEvent(r))
	return nil
}

// Reject moves a pending record to rejected
func (r *Record) Reject(adminID uuid.UUID, at time.Time) error {
	if err := r.transition(StatusRejected, adminID, at); err != nil {
		return err
	}
	r.AddDomainEvent(NewPaymentRejectedEvent(r))
	return nil
}

func (r *Record) transition(to Status, adminID uuid.UUID, at time.Time) error {
	if !r.IsPending() {
		return ErrAlreadyVerified
	}
	r.Status = to
	r.VerifiedAt = &at
	r.VerifiedBy = &adminID
	r.UpdatedAt = at
	r.IncrementVersion()
	return nil
}

// Filter narrows payment history queries
type Filter struct {
	shared.Filter
	Email     string
	StudentID *uuid.UUID
	Status    *Status
}

// NewFilter returns a filter with default paging
func NewFilter() Filter {
	return Filter{Filter: shared.DefaultFilter()}
}
