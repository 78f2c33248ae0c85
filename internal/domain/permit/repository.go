package permit

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for permit persistence
type Repository interface {
	// Create appends an issued permit
	Create(ctx context.Context, p *Permit) error

	// FindByStudentID lists a student's permits, newest first
	FindByStudentID(ctx context.Context, studentID uuid.UUID) ([]*Permit, error)

	// FindByPermitNo loads a permit by its number
	FindByPermitNo(ctx context.Context, permitNo string) (*Permit, error)
}
