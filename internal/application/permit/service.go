package permit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
	"github.com/Miraku17/Exam-Permit/internal/domain/permit"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/mail"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryKind is reported to the DeliveryRecorder when a permit email fails
const DeliveryKind = "permit"

const (
	mailSubject = "Examination Permit"
	mailText    = "Good day! Please find attached your examination permit."
)

// ErrCourseNotInSemester is returned for a course outside the term's semester
var ErrCourseNotInSemester = shared.NewDomainError("INVALID_COURSE", "Course is not part of this semester")

// DeliveryRecorder counts documents that failed to reach the student
type DeliveryRecorder interface {
	RecordDeliveryFailure(ctx context.Context, kind string)
}

// ServiceConfig holds the collaborators of the permit service
type ServiceConfig struct {
	PermitRepo permit.Repository
	LedgerRepo tuition.LedgerRepository
	UserRepo   identity.UserRepository
	Policies   *catalog.PolicyTable
	Numbers    *permit.NumberGenerator
	TxManager  shared.TransactionManager
	Documents  printing.DocumentRenderer
	Mailer     mail.Mailer
	SchoolYear string
	Logger     *zap.Logger
}

// Service issues examination permits for fully paid terms
type Service struct {
	permitRepo     permit.Repository
	ledgerRepo     tuition.LedgerRepository
	userRepo       identity.UserRepository
	policies       *catalog.PolicyTable
	numbers        *permit.NumberGenerator
	txManager      shared.TransactionManager
	documents      printing.DocumentRenderer
	mailer         mail.Mailer
	schoolYear     string
	eventPublisher shared.EventPublisher
	delivery       DeliveryRecorder
	logger         *zap.Logger
}

// NewService creates a new permit service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policies := cfg.Policies
	if policies == nil {
		policies = catalog.DefaultPolicyTable()
	}
	numbers := cfg.Numbers
	if numbers == nil {
		numbers = permit.NewNumberGenerator()
	}
	return &Service{
		permitRepo: cfg.PermitRepo,
		ledgerRepo: cfg.LedgerRepo,
		userRepo:   cfg.UserRepo,
		policies:   policies,
		numbers:    numbers,
		txManager:  cfg.TxManager,
		documents:  cfg.Documents,
		mailer:     cfg.Mailer,
		schoolYear: cfg.SchoolYear,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDeliveryRecorder sets where failed permit deliveries are counted
func (s *Service) SetDeliveryRecorder(recorder DeliveryRecorder) {
	s.delivery = recorder
}

// Request issues a permit for a term once it is paid in full. The counter
// bump and the permit insert commit together; the email is sent after
// commit and a failed delivery leaves the permit in place.
func (s *Service) Request(ctx context.Context, studentID uuid.UUID, input RequestPermitInput) (*RequestResult, error) {
	termID, err := uuid.Parse(input.TermID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid term ID")
	}

	ledger, err := s.ledgerRepo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	semester, term, err := ledger.RecordPermitRequest(termID)
	if err != nil {
		if errors.Is(err, tuition.ErrPermitNotEligible) {
			s.logger.Info("Permit request refused",
				zap.String("student_id", studentID.String()),
				zap.String("term_id", termID.String()),
				zap.Error(err))
		}
		return nil, err
	}
	courses, err := courseEntries(semester, input.Courses)
	if err != nil {
		return nil, err
	}

	student, err := s.userRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	college := ""
	if policy, err := s.policies.Lookup(semester.ProgramCode); err == nil {
		college = policy.College
	}

	permitNo, err := s.numbers.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate permit number: %w", err)
	}
	p, err := permit.NewPermit(permit.Issue{
		PermitNo:   permitNo,
		LedgerID:   ledger.ID,
		SemesterID: semester.ID,
		TermID:     term.ID,
		StudentID:  studentID,
		Name:       student.FullName,
		Email:      student.Email,
		College:    college,
		Semester:   semester.Semester,
		Term:       term.Name,
		SchoolYear: s.schoolYear,
		Courses:    courses,
	})
	if err != nil {
		return nil, err
	}

	doc, err := s.render(ctx, p)
	if err != nil {
		s.logger.Error("Failed to render permit",
			zap.String("permit_no", p.PermitNo),
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("RENDER_ERROR", "Failed to render examination permit")
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ledgerRepo.IncrementPermitRequested(txCtx, ledger.ID, term.ID); err != nil {
			return err
		}
		return s.permitRepo.Create(txCtx, p)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ledger.GetDomainEvents()...)
	ledger.ClearDomainEvents()
	s.publish(ctx, p.GetDomainEvents()...)
	p.ClearDomainEvents()

	s.logger.Info("Permit issued",
		zap.String("permit_no", p.PermitNo),
		zap.String("student_id", studentID.String()),
		zap.String("term", term.Name),
		zap.Int("requests", term.ExamPermitRequested))

	result := &RequestResult{Permit: ToPermitResponse(p)}
	if err := s.send(ctx, p, doc); err != nil {
		s.logger.Warn("Permit delivery failed",
			zap.String("permit_no", p.PermitNo),
			zap.String("email", p.Email),
			zap.Error(err))
		if s.delivery != nil {
			s.delivery.RecordDeliveryFailure(ctx, DeliveryKind)
		}
		result.DeliveryError = err.Error()
	} else {
		result.Delivered = true
	}
	return result, nil
}

// ListPermits lists the permits issued to a student
func (s *Service) ListPermits(ctx context.Context, studentID uuid.UUID) ([]PermitResponse, error) {
	permits, err := s.permitRepo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permits: %w", err)
	}
	return ToPermitResponses(permits), nil
}

func (s *Service) render(ctx context.Context, p *permit.Permit) (*printing.Document, error) {
	if s.documents == nil {
		return nil, errors.New("permit rendering is not configured")
	}
	courses := make([]printing.PermitCourse, 0, len(p.Courses))
	for _, c := range p.Courses {
		courses = append(courses, printing.PermitCourse{Code: c.Code, Section: c.Section})
	}
	return s.documents.RenderPermit(ctx, &printing.PermitData{
		PermitNo:      p.PermitNo,
		Title:         p.Title(),
		StudentName:   p.Name,
		College:       p.College,
		SemesterLabel: p.SemesterLabel(),
		SchoolYear:    p.SchoolYear,
		IssuedAt:      p.IssuedAt,
		Courses:       courses,
	})
}

func (s *Service) send(ctx context.Context, p *permit.Permit, doc *printing.Document) error {
	if s.mailer == nil {
		return errors.New("permit delivery is not configured")
	}
	err := s.mailer.Send(ctx, &mail.Message{
		To:          p.Email,
		ToName:      p.Name,
		Subject:     mailSubject,
		TextContent: mailText,
		Attachments: []mail.Attachment{{
			Filename:    printing.PermitFilename,
			ContentType: doc.ContentType,
			Content:     doc.Content,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to send permit: %w", err)
	}
	return nil
}

// courseEntries builds the permit course table. Without explicit courses
// every course of the semester is listed with no section.
func courseEntries(semester *tuition.SemesterLedger, input []CourseSectionInput) ([]permit.CourseEntry, error) {
	if len(input) == 0 {
		entries := make([]permit.CourseEntry, 0, len(semester.CourseCodes))
		for _, code := range semester.CourseCodes {
			entries = append(entries, permit.CourseEntry{Code: code})
		}
		return entries, nil
	}

	known := make(map[string]string, len(semester.CourseCodes))
	for _, code := range semester.CourseCodes {
		known[strings.ToUpper(code)] = code
	}
	entries := make([]permit.CourseEntry, 0, len(input))
	for _, c := range input {
		code := strings.TrimSpace(c.Code)
		if len(known) > 0 {
			canonical, ok := known[strings.ToUpper(code)]
			if !ok {
				return nil, shared.NewDomainError(ErrCourseNotInSemester.Code,
					fmt.Sprintf("Course %s is not part of this semester", code))
			}
			code = canonical
		}
		entries = append(entries, permit.CourseEntry{Code: code, Section: strings.TrimSpace(c.Section)})
	}
	return entries, nil
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish permit events", zap.Error(err))
	}
}
