package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/mail"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, record *payment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*payment.Record, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Record), args.Error(1)
}

func (m *MockPaymentRepository) ExistsByReferenceNumber(ctx context.Context, referenceNumber string) (bool, error) {
	args := m.Called(ctx, referenceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter payment.Filter) ([]*payment.Record, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*payment.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) TransitionFromPending(ctx context.Context, transactionID string, to payment.Status, verifiedBy uuid.UUID, at time.Time) error {
	args := m.Called(ctx, transactionID, to, verifiedBy, at)
	return args.Error(0)
}

func (m *MockPaymentRepository) RecordSettlement(ctx context.Context, transactionID string, applied, unapplied valueobject.Money) error {
	args := m.Called(ctx, transactionID, applied, unapplied)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of tuition.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *tuition.TuitionLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuition.TuitionLedger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.TuitionLedger), args.Error(1)
}

func (m *MockLedgerRepository) FindByStudentID(ctx context.Context, studentID uuid.UUID) (*tuition.TuitionLedger, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.TuitionLedger), args.Error(1)
}

func (m *MockLedgerRepository) FindByStudentIDForUpdate(ctx context.Context, studentID uuid.UUID) (*tuition.TuitionLedger, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tuition.TuitionLedger), args.Error(1)
}

func (m *MockLedgerRepository) ExistsByStudentID(ctx context.Context, studentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) ApplyAllocations(ctx context.Context, ledger *tuition.TuitionLedger, allocations []tuition.TermAllocation) error {
	args := m.Called(ctx, ledger, allocations)
	return args.Error(0)
}

func (m *MockLedgerRepository) IncrementPermitRequested(ctx context.Context, ledgerID, termID uuid.UUID) error {
	args := m.Called(ctx, ledgerID, termID)
	return args.Error(0)
}

// fakeTxManager runs fn directly and counts commits
type fakeTxManager struct {
	committed int
}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	f.committed++
	return nil
}

// fakeDocuments renders fixed bytes or fails
type fakeDocuments struct {
	err      error
	receipts []*printing.ReceiptData
}

func (f *fakeDocuments) RenderReceipt(_ context.Context, data *printing.ReceiptData) (*printing.Document, error) {
	f.receipts = append(f.receipts, data)
	if f.err != nil {
		return nil, f.err
	}
	return &printing.Document{Filename: printing.ReceiptFilename, ContentType: printing.PDFContentType, Content: []byte("%PDF-1.4 receipt")}, nil
}

func (f *fakeDocuments) RenderPermit(_ context.Context, _ *printing.PermitData) (*printing.Document, error) {
	return nil, f.err
}

// fakeMailer records sent messages
type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []*mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeDelivery counts delivery failures by kind
type fakeDelivery struct {
	failures map[string]int
}

func (f *fakeDelivery) RecordDeliveryFailure(_ context.Context, kind string) {
	if f.failures == nil {
		f.failures = make(map[string]int)
	}
	f.failures[kind]++
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func money(s string) valueobject.Money {
	m, err := valueobject.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// moneyEq matches a Money argument by value
func moneyEq(s string) any {
	want := money(s)
	return mock.MatchedBy(func(m valueobject.Money) bool { return m.Equals(want) })
}

// testLedger builds a BSA ledger with one 3000.00 semester, four terms of 750.00
func testLedger(t *testing.T, studentID uuid.UUID) *tuition.TuitionLedger {
	t.Helper()
	fee, err := catalog.NewCourseFee("PRIACC130", 3, valueobject.NewMoneyFromInt(3000), valueobject.Zero())
	require.NoError(t, err)
	plan, err := catalog.NewSemesterPlan("BSA", 1, 1, []catalog.CourseFee{fee})
	require.NoError(t, err)
	ledger, err := tuition.NewInitializer(catalog.DefaultPolicyTable(), valueobject.Zero()).
		CreateLedger(studentID, "BSA", []*catalog.SemesterPlan{plan})
	require.NoError(t, err)
	ledger.ClearDomainEvents()
	return ledger
}

func pendingRecord(t *testing.T, studentID uuid.UUID, amount string) *payment.Record {
	t.Helper()
	record, err := payment.NewRecord("TRX20240101ABCDEF", payment.Submission{
		StudentID:       studentID,
		FullName:        "Juan Dela Cruz",
		MobileNumber:    "09171234567",
		Email:           "juan@example.com",
		ReferenceNumber: "GC-0001",
		Amount:          money(amount),
		ProofURL:        "memory://proofs/payment-proofs/TRX20240101ABCDEF.png",
	})
	require.NoError(t, err)
	record.ClearDomainEvents()
	return record
}
