package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/export"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllowedProofTypes maps the accepted proof content types to the file
// extension used for the stored object.
var AllowedProofTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// Proof validation errors
var (
	ErrProofMissing     = shared.NewDomainError("INVALID_FILE", "Proof of payment is required")
	ErrProofTooLarge    = shared.NewDomainError("INVALID_FILE", "Proof of payment exceeds the upload limit")
	ErrProofType        = shared.NewDomainError("INVALID_FILE", "Proof of payment must be a JPEG, PNG or PDF file")
	ErrProofStoreFailed = shared.NewDomainError("STORAGE_ERROR", "Failed to store proof of payment")
)

// ProofStorage stores proof files and can map their URLs back to keys
type ProofStorage interface {
	storage.ObjectStorage
	BaseURL() string
}

// SubmissionConfig holds configuration for payment submission
type SubmissionConfig struct {
	ProofFolder       string
	MaxUploadSize     int64
	DownloadURLExpiry time.Duration
}

// DefaultSubmissionConfig returns the default configuration
func DefaultSubmissionConfig() SubmissionConfig {
	return SubmissionConfig{
		ProofFolder:       "payment-proofs",
		MaxUploadSize:     5 << 20,
		DownloadURLExpiry: time.Hour,
	}
}

// SubmissionService records self-reported payments and serves payment history
type SubmissionService struct {
	paymentRepo    payment.Repository
	proofs         ProofStorage
	ids            *payment.TransactionIDGenerator
	config         SubmissionConfig
	eventPublisher shared.EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	paymentRepo payment.Repository,
	proofs ProofStorage,
	ids *payment.TransactionIDGenerator,
	logger *zap.Logger,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = payment.NewTransactionIDGenerator()
	}
	return &SubmissionService{
		paymentRepo: paymentRepo,
		proofs:      proofs,
		ids:         ids,
		config:      DefaultSubmissionConfig(),
		now:         time.Now,
		logger:      logger,
	}
}

// SetConfig sets the service configuration. Zero fields keep their defaults.
func (s *SubmissionService) SetConfig(config SubmissionConfig) {
	defaults := DefaultSubmissionConfig()
	if config.ProofFolder == "" {
		config.ProofFolder = defaults.ProofFolder
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = defaults.MaxUploadSize
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = defaults.DownloadURLExpiry
	}
	s.config = config
}

// MaxUploadSize is the largest accepted proof file in bytes
func (s *SubmissionService) MaxUploadSize() int64 {
	return s.config.MaxUploadSize
}

// SetEventPublisher sets the event publisher
func (s *SubmissionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Submit validates a payment report, stores its proof and records it as
// pending. Nothing is recorded when the proof cannot be stored.
func (s *SubmissionService) Submit(ctx context.Context, studentID uuid.UUID, req SubmitPaymentRequest, proof ProofFile) (*SubmitResult, error) {
	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be a number")
	}
	ext, contentType, err := s.checkProof(proof)
	if err != nil {
		return nil, err
	}

	used, err := s.paymentRepo.ExistsByReferenceNumber(ctx, req.ReferenceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check reference number: %w", err)
	}
	if used {
		return nil, payment.ErrReferenceNumberUsed
	}

	transactionID, err := s.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction id: %w", err)
	}
	key := storage.ObjectKey(s.config.ProofFolder, transactionID+ext)

	record, err := payment.NewRecord(transactionID, payment.Submission{
		StudentID:       studentID,
		FullName:        req.FullName,
		MobileNumber:    req.MobileNumber,
		Email:           req.Email,
		ReferenceNumber: req.ReferenceNumber,
		Amount:          amount,
		Method:          payment.Method(req.PaymentMethod),
		ProofURL:        key,
	})
	if err != nil {
		return nil, err
	}

	url, err := s.proofs.Put(ctx, key, proof.Content, contentType)
	if err != nil {
		s.logger.Error("Failed to store proof of payment",
			zap.String("transaction_id", transactionID),
			zap.String("key", key),
			zap.Error(err))
		return nil, ErrProofStoreFailed
	}
	record.ProofURL = url

	if err := s.paymentRepo.Create(ctx, record); err != nil {
		if delErr := s.proofs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned proof", zap.String("key", key), zap.Error(delErr))
		}
		if errors.Is(err, payment.ErrReferenceNumberUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.publish(ctx, record)
	s.logger.Info("Payment submitted",
		zap.String("transaction_id", transactionID),
		zap.String("student_id", studentID.String()),
		zap.String("amount", amount.String()),
		zap.String("proof_type", contentType))

	return &SubmitResult{
		TransactionID: record.TransactionID,
		Status:        record.Status,
		ProofURL:      record.ProofURL,
		SubmittedAt:   record.SubmittedAt,
	}, nil
}

// checkProof enforces the size limit and sniffs the content type from the
// file bytes; the client-declared type is ignored.
func (s *SubmissionService) checkProof(proof ProofFile) (ext, contentType string, err error) {
	if len(proof.Content) == 0 {
		return "", "", ErrProofMissing
	}
	if int64(len(proof.Content)) > s.config.MaxUploadSize {
		return "", "", ErrProofTooLarge
	}
	detected := mimetype.Detect(proof.Content)
	for allowed, extension := range AllowedProofTypes {
		if detected.Is(allowed) {
			return extension, allowed, nil
		}
	}
	s.logger.Warn("Rejected proof of payment",
		zap.String("filename", proof.Filename),
		zap.String("detected_type", detected.String()))
	return "", "", ErrProofType
}

// History lists all payments, newest first
func (s *SubmissionService) History(ctx context.Context, query HistoryQuery) (*HistoryResponse, error) {
	return s.list(ctx, query.ToFilter())
}

// HistoryByEmail lists the payments submitted with an email address
func (s *SubmissionService) HistoryByEmail(ctx context.Context, email string, query HistoryQuery) (*HistoryResponse, error) {
	filter := query.ToFilter()
	filter.Email = email
	return s.list(ctx, filter)
}

// HistoryByStudent lists the payments of a student
func (s *SubmissionService) HistoryByStudent(ctx context.Context, studentID uuid.UUID, query HistoryQuery) (*HistoryResponse, error) {
	filter := query.ToFilter()
	filter.StudentID = &studentID
	return s.list(ctx, filter)
}

func (s *SubmissionService) list(ctx context.Context, filter payment.Filter) (*HistoryResponse, error) {
	records, total, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &HistoryResponse{
		Payments: ToPaymentResponses(records),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Get returns one payment with a time-limited link to its proof
func (s *SubmissionService) Get(ctx context.Context, transactionID string) (*PaymentResponse, error) {
	record, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(record)

	if key, ok := storage.KeyFromURL(s.proofs.BaseURL(), record.ProofURL); ok {
		link, _, err := s.proofs.DownloadURL(ctx, key, s.config.DownloadURLExpiry)
		if err != nil {
			s.logger.Warn("Failed to sign proof URL", zap.String("transaction_id", transactionID), zap.Error(err))
		} else {
			resp.ProofDownloadURL = link
		}
	}
	return &resp, nil
}

// ExportHistory renders every payment into an XLSX workbook
func (s *SubmissionService) ExportHistory(ctx context.Context) (*ExportResult, error) {
	filter := payment.NewFilter()
	filter.PageSize = 0
	records, _, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	generatedAt := s.now()
	content, err := export.PaymentHistory(records, generatedAt)
	if err != nil {
		s.logger.Error("Failed to build payment history workbook", zap.Error(err))
		return nil, shared.NewDomainError("RENDER_ERROR", "Failed to build payment history export")
	}
	s.logger.Info("Payment history exported", zap.Int("payments", len(records)))
	return &ExportResult{
		Filename:    export.Filename(generatedAt),
		ContentType: export.ContentType,
		Content:     content,
	}, nil
}

// ExportResult is a generated download
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (s *SubmissionService) publish(ctx context.Context, record *payment.Record) {
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, record.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish payment events", zap.Error(err))
		}
	}
	record.ClearDomainEvents()
}
