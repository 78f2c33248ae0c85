package catalog

import (
	"context"
)

// SemesterPlanRepository defines the interface for semester plan persistence
type SemesterPlanRepository interface {
	// ReplacePrograms deletes every plan of the given programs and inserts
	// plans in their place, atomically.
	ReplacePrograms(ctx context.Context, programCodes []string, plans []*SemesterPlan) error

	// FindByProgram returns the plans of a program ordered by year, semester
	FindByProgram(ctx context.Context, programCode string) ([]*SemesterPlan, error)

	// FindOne returns the plan of one (program, year, semester)
	FindOne(ctx context.Context, programCode string, year, semester int) (*SemesterPlan, error)

	// CountByProgram counts the plans of a program
	CountByProgram(ctx context.Context, programCode string) (int64, error)
}
