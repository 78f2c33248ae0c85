package tuition

import (
	"context"
	"fmt"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService creates and reads tuition ledgers
type LedgerService struct {
	ledgerRepo     tuition.LedgerRepository
	planRepo       catalog.SemesterPlanRepository
	initializer    *tuition.Initializer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	ledgerRepo tuition.LedgerRepository,
	planRepo catalog.SemesterPlanRepository,
	initializer *tuition.Initializer,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		ledgerRepo:  ledgerRepo,
		planRepo:    planRepo,
		initializer: initializer,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateLedger builds the ledger of a student from the program's semester
// plans. Run it inside the transaction that creates the student so both
// rows commit together.
func (s *LedgerService) CreateLedger(ctx context.Context, studentID uuid.UUID, programCode string) (*tuition.TuitionLedger, error) {
	exists, err := s.ledgerRepo.ExistsByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}
	if exists {
		return nil, tuition.ErrLedgerAlreadyExists
	}

	plans, err := s.planRepo.FindByProgram(ctx, catalog.NormalizeProgramCode(programCode))
	if err != nil {
		return nil, fmt.Errorf("failed to load semester plans: %w", err)
	}

	ledger, err := s.initializer.CreateLedger(studentID, programCode, plans)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Create(ctx, ledger); err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	s.logger.Info("Tuition ledger created",
		zap.String("student_id", studentID.String()),
		zap.String("program", ledger.Semesters[0].ProgramCode),
		zap.Int("semesters", len(ledger.Semesters)),
		zap.String("outstanding", ledger.OutstandingBalance().String()))
	return ledger, nil
}

// PublishEvents hands the ledger's pending events to the publisher. Call it
// after the creating transaction committed.
func (s *LedgerService) PublishEvents(ctx context.Context, ledger *tuition.TuitionLedger) {
	if s.eventPublisher == nil {
		ledger.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, ledger.GetDomainEvents()...); err != nil {
		s.logger.Warn("Failed to publish ledger events", zap.Error(err))
	}
	ledger.ClearDomainEvents()
}

// GetByStudent returns the ledger of a student
func (s *LedgerService) GetByStudent(ctx context.Context, studentID uuid.UUID) (*LedgerResponse, error) {
	ledger, err := s.ledgerRepo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	resp := ToLedgerResponse(ledger)
	return &resp, nil
}
