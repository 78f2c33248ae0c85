package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/mail"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryReceipt is the delivery kind reported for failed receipts
const DeliveryReceipt = "receipt"

// ErrLedgerBusy is returned when the ledger lock could not be acquired
var ErrLedgerBusy = shared.NewDomainError("CONFLICT", "Another verification for this student is in progress")

// DeliveryRecorder counts documents that failed to reach the student
type DeliveryRecorder interface {
	RecordDeliveryFailure(ctx context.Context, kind string)
}

// LedgerLockKey is the lock key serializing work on a student's ledger
func LedgerLockKey(studentID uuid.UUID) string {
	return "ledger:" + studentID.String()
}

// VerificationServiceConfig holds the collaborators of the verification workflow
type VerificationServiceConfig struct {
	PaymentRepo payment.Repository
	LedgerRepo  tuition.LedgerRepository
	Engine      *tuition.Engine
	Locker      shared.Locker
	TxManager   shared.TransactionManager
	Documents   printing.DocumentRenderer
	Mailer      mail.Mailer
	Logger      *zap.Logger
}

// VerificationService accepts or rejects pending payments. Acceptance
// credits the student's ledger and then emails a receipt.
type VerificationService struct {
	paymentRepo    payment.Repository
	ledgerRepo     tuition.LedgerRepository
	engine         *tuition.Engine
	locker         shared.Locker
	txManager      shared.TransactionManager
	documents      printing.DocumentRenderer
	mailer         mail.Mailer
	eventPublisher shared.EventPublisher
	delivery       DeliveryRecorder
	now            func() time.Time
	logger         *zap.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(cfg VerificationServiceConfig) *VerificationService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := cfg.Engine
	if engine == nil {
		engine = tuition.NewEngine(nil)
	}
	return &VerificationService{
		paymentRepo: cfg.PaymentRepo,
		ledgerRepo:  cfg.LedgerRepo,
		engine:      engine,
		locker:      cfg.Locker,
		txManager:   cfg.TxManager,
		documents:   cfg.Documents,
		mailer:      cfg.Mailer,
		now:         time.Now,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *VerificationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDeliveryRecorder sets where failed receipt deliveries are counted
func (s *VerificationService) SetDeliveryRecorder(recorder DeliveryRecorder) {
	s.delivery = recorder
}

// Accept verifies a pending payment and applies its amount to the ledger,
// earliest outstanding term first. The status flip, the ledger update and
// the settlement figures commit together; the receipt is sent afterwards
// and its failure never undoes the acceptance.
func (s *VerificationService) Accept(ctx context.Context, transactionID string, adminID uuid.UUID) (*VerificationResult, error) {
	record, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !record.IsPending() {
		return nil, payment.ErrAlreadyVerified
	}

	unlock, err := s.locker.Lock(ctx, LedgerLockKey(record.StudentID))
	if err != nil {
		s.logger.Warn("Failed to lock ledger",
			zap.String("transaction_id", transactionID),
			zap.String("student_id", record.StudentID.String()),
			zap.Error(err))
		return nil, ErrLedgerBusy
	}
	defer unlock()

	at := s.now()
	var (
		ledger     *tuition.TuitionLedger
		allocation *tuition.AllocationResult
	)
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.paymentRepo.TransitionFromPending(txCtx, transactionID, payment.StatusAccepted, adminID, at); err != nil {
			return err
		}
		var err error
		ledger, err = s.ledgerRepo.FindByStudentIDForUpdate(txCtx, record.StudentID)
		if err != nil {
			return err
		}
		allocation, err = s.engine.Allocate(ledger, record.Amount)
		if err != nil {
			return err
		}
		if !allocation.IsNoop() {
			if err := s.ledgerRepo.ApplyAllocations(txCtx, ledger, allocation.Allocations); err != nil {
				return err
			}
		}
		return s.paymentRepo.RecordSettlement(txCtx, transactionID, allocation.TotalAllocated, allocation.Unapplied)
	})
	if err != nil {
		if shared.IsDomainError(err, shared.ErrInvariantViolation.Code) {
			s.logger.Error("Ledger invariant violated while accepting payment",
				zap.String("transaction_id", transactionID),
				zap.String("student_id", record.StudentID.String()),
				zap.Error(err))
		} else {
			s.logger.Warn("Payment acceptance failed", zap.String("transaction_id", transactionID), zap.Error(err))
		}
		return nil, err
	}

	if err := record.Accept(adminID, at, allocation.TotalAllocated, allocation.Unapplied); err != nil {
		return nil, err
	}
	if allocation.Unapplied.IsPositive() {
		s.logger.Warn("Payment exceeds outstanding balance",
			zap.String("transaction_id", transactionID),
			zap.String("student_id", record.StudentID.String()),
			zap.String("unapplied", allocation.Unapplied.String()))
	}
	s.logger.Info("Payment accepted",
		zap.String("transaction_id", transactionID),
		zap.String("admin_id", adminID.String()),
		zap.String("applied", allocation.TotalAllocated.String()),
		zap.Int("terms", len(allocation.Allocations)))

	s.publish(ctx, record.GetDomainEvents()...)
	record.ClearDomainEvents()
	s.publish(ctx, ledger.GetDomainEvents()...)
	ledger.ClearDomainEvents()

	result := &VerificationResult{
		TransactionID:      transactionID,
		Status:             payment.StatusAccepted,
		Applied:            allocation.TotalAllocated,
		Unapplied:          allocation.Unapplied,
		Allocations:        ToAllocationLines(allocation.Allocations),
		OutstandingBalance: ledger.OutstandingBalance(),
		FullySettled:       allocation.FullySettled,
	}
	if err := s.sendReceipt(ctx, record, ledger, allocation); err != nil {
		s.logger.Warn("Receipt delivery failed",
			zap.String("transaction_id", transactionID),
			zap.String("email", record.Email),
			zap.Error(err))
		if s.delivery != nil {
			s.delivery.RecordDeliveryFailure(ctx, DeliveryReceipt)
		}
		result.ReceiptError = err.Error()
	} else {
		result.ReceiptSent = true
	}
	return result, nil
}

// Reject marks a pending payment as rejected. The ledger is not touched.
func (s *VerificationService) Reject(ctx context.Context, transactionID string, adminID uuid.UUID) (*VerificationResult, error) {
	record, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.paymentRepo.TransitionFromPending(ctx, transactionID, payment.StatusRejected, adminID, at); err != nil {
		return nil, err
	}
	if err := record.Reject(adminID, at); err != nil {
		return nil, err
	}
	s.publish(ctx, record.GetDomainEvents()...)
	record.ClearDomainEvents()

	s.logger.Info("Payment rejected",
		zap.String("transaction_id", transactionID),
		zap.String("admin_id", adminID.String()))
	return &VerificationResult{
		TransactionID: transactionID,
		Status:        payment.StatusRejected,
		Applied:       valueobject.Zero(),
		Unapplied:     valueobject.Zero(),
		Allocations:   []AllocationLine{},
	}, nil
}

func (s *VerificationService) sendReceipt(ctx context.Context, record *payment.Record, ledger *tuition.TuitionLedger, allocation *tuition.AllocationResult) error {
	if s.documents == nil || s.mailer == nil {
		return errors.New("receipt delivery is not configured")
	}

	lines := make([]printing.ReceiptLine, 0, len(allocation.Allocations))
	for _, a := range allocation.Allocations {
		lines = append(lines, printing.ReceiptLine{
			Year:         a.Year,
			Semester:     a.Semester,
			TermName:     a.TermName,
			Applied:      a.Applied,
			BalanceAfter: a.BalanceAfter,
		})
	}
	acceptedAt := s.now()
	if record.VerifiedAt != nil {
		acceptedAt = *record.VerifiedAt
	}

	doc, err := s.documents.RenderReceipt(ctx, &printing.ReceiptData{
		TransactionID:   record.TransactionID,
		ReferenceNumber: record.ReferenceNumber,
		PayerName:       record.FullName,
		PayerEmail:      record.Email,
		Method:          string(record.Method),
		Amount:          record.Amount,
		Applied:         allocation.TotalAllocated,
		Unapplied:       allocation.Unapplied,
		Outstanding:     ledger.OutstandingBalance(),
		AcceptedAt:      acceptedAt,
		Lines:           lines,
	})
	if err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}

	err = s.mailer.Send(ctx, &mail.Message{
		To:          record.Email,
		ToName:      record.FullName,
		Subject:     "Payment Receipt",
		TextContent: fmt.Sprintf("Good day! Your payment of PHP %s (transaction %s) has been verified. Please find attached your official receipt.", record.Amount.String(), record.TransactionID),
		Attachments: []mail.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Content:     doc.Content,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}
	return nil
}

func (s *VerificationService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish verification events", zap.Error(err))
	}
}
