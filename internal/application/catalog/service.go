package catalog

import (
	"context"
	"fmt"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogService seeds and reads the semester plan catalog
type CatalogService struct {
	planRepo catalog.SemesterPlanRepository
	builder  *catalog.Builder
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(planRepo catalog.SemesterPlanRepository, builder *catalog.Builder, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		planRepo: planRepo,
		builder:  builder,
		logger:   logger,
	}
}

// Seed rebuilds the plans of one program, or of all programs for "all",
// replacing whatever was stored for them in a single transaction.
func (s *CatalogService) Seed(ctx context.Context, program string) (*SeedResult, error) {
	programs, err := s.builder.Policies().Resolve(program)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(programs))
	for _, p := range programs {
		codes = append(codes, p.Code)
	}

	plans, err := s.builder.Build(program)
	if err != nil {
		return nil, err
	}
	if err := s.planRepo.ReplacePrograms(ctx, codes, plans); err != nil {
		return nil, fmt.Errorf("failed to save semester plans: %w", err)
	}

	s.logger.Info("Catalog seeded",
		zap.Strings("programs", codes),
		zap.Int("plans", len(plans)))
	return &SeedResult{Programs: codes, Count: len(plans)}, nil
}

// GetSemesterPlan returns the plan of one (program, year, semester)
func (s *CatalogService) GetSemesterPlan(ctx context.Context, program string, year, semester int) (*SemesterPlanResponse, error) {
	if !s.builder.Policies().Has(program) {
		return nil, catalog.ErrProgramNotFound
	}
	plan, err := s.planRepo.FindOne(ctx, catalog.NormalizeProgramCode(program), year, semester)
	if err != nil {
		return nil, err
	}
	resp := ToSemesterPlanResponse(plan)
	return &resp, nil
}

// ListPlans returns every plan of a program. Year and semester filters
// are applied when present.
func (s *CatalogService) ListPlans(ctx context.Context, query ListPlansQuery) ([]SemesterPlanResponse, error) {
	if query.Year != nil && query.Semester != nil {
		plan, err := s.GetSemesterPlan(ctx, query.Program, *query.Year, *query.Semester)
		if err != nil {
			return nil, err
		}
		return []SemesterPlanResponse{*plan}, nil
	}
	if !s.builder.Policies().Has(query.Program) {
		return nil, catalog.ErrProgramNotFound
	}

	plans, err := s.planRepo.FindByProgram(ctx, catalog.NormalizeProgramCode(query.Program))
	if err != nil {
		return nil, err
	}
	filtered := plans[:0:0]
	for _, p := range plans {
		if query.Year != nil && p.Year != *query.Year {
			continue
		}
		if query.Semester != nil && p.Semester != *query.Semester {
			continue
		}
		filtered = append(filtered, p)
	}
	return ToSemesterPlanResponses(filtered), nil
}

// ListPrograms returns the program table
func (s *CatalogService) ListPrograms(_ context.Context) []ProgramResponse {
	policies := s.builder.Policies().Policies()
	out := make([]ProgramResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, ToProgramResponse(p))
	}
	return out
}

// EnsureSeeded reports whether a program has plans a ledger can be built
// from.
func (s *CatalogService) EnsureSeeded(ctx context.Context, program string) error {
	if !s.builder.Policies().Has(program) {
		return shared.NewDomainError("INVALID_PROGRAM", "Unknown course "+program)
	}
	n, err := s.planRepo.CountByProgram(ctx, catalog.NormalizeProgramCode(program))
	if err != nil {
		return fmt.Errorf("failed to count semester plans: %w", err)
	}
	if n == 0 {
		return shared.NewDomainError("INVALID_PROGRAM", "Course "+catalog.NormalizeProgramCode(program)+" has no tuition plans yet")
	}
	return nil
}
