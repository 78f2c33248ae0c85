package permit

import (
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypePermit is the aggregate type of permit events
const AggregateTypePermit = "Permit"

// EventTypePermitIssued is published once a permit record is stored
const EventTypePermitIssued = "PermitIssued"

// PermitIssuedEvent is published when a permit is issued
type PermitIssuedEvent struct {
	shared.BaseDomainEvent
	PermitNo  string    `json:"permit_no"`
	StudentID uuid.UUID `json:"student_id"`
	TermID    uuid.UUID `json:"term_id"`
	Term      string    `json:"term"`
}

// NewPermitIssuedEvent creates a PermitIssuedEvent
func NewPermitIssuedEvent(p *Permit) *PermitIssuedEvent {
	return &PermitIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePermitIssued, AggregateTypePermit, p.ID),
		PermitNo:        p.PermitNo,
		StudentID:       p.StudentID,
		TermID:          p.TermID,
		Term:            p.Term,
	}
}
