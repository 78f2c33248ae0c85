package payment

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	pngProof = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)
	pdfProof = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
)

// brokenStorage fails every upload
type brokenStorage struct {
	*storage.MemoryObjectStorage
}

func (brokenStorage) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func validSubmission() SubmitPaymentRequest {
	return SubmitPaymentRequest{
		FullName:        "Juan Dela Cruz",
		MobileNumber:    "09171234567",
		Email:           "Juan@Example.com",
		ReferenceNumber: "GC-778899",
		Amount:          "1500.50",
		PaymentMethod:   "GCash",
	}
}

func newSubmissionService(repo *MockPaymentRepository, proofs ProofStorage) *SubmissionService {
	svc := NewSubmissionService(repo, proofs, nil, nil)
	svc.SetConfig(SubmissionConfig{MaxUploadSize: 1024})
	return svc
}

func TestSubmissionService_Submit(t *testing.T) {
	ctx := context.Background()
	studentID := uuid.New()

	t.Run("stores proof and records pending payment", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		proofs := storage.NewMemoryObjectStorage("memory://proofs")
		svc := newSubmissionService(repo, proofs)
		publisher := &recordingPublisher{}
		svc.SetEventPublisher(publisher)

		repo.On("ExistsByReferenceNumber", ctx, "GC-778899").Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(r *payment.Record) bool {
			return r.StudentID == studentID && r.Status == payment.StatusPending &&
				r.Email == "juan@example.com" && r.Amount.Equals(money("1500.50"))
		})).Return(nil)

		result, err := svc.Submit(ctx, studentID, validSubmission(), ProofFile{Filename: "proof.png", Content: pngProof})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.TransactionID, "TRX"))
		assert.Equal(t, payment.StatusPending, result.Status)
		assert.Equal(t, "memory://proofs/payment-proofs/"+result.TransactionID+".png", result.ProofURL)

		obj, ok := proofs.Get("payment-proofs/" + result.TransactionID + ".png")
		require.True(t, ok)
		assert.Equal(t, "image/png", obj.ContentType)
		assert.Equal(t, []string{payment.EventTypePaymentSubmitted}, publisher.types())
		repo.AssertExpectations(t)
	})

	t.Run("pdf proof keeps pdf extension", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		proofs := storage.NewMemoryObjectStorage("")
		svc := newSubmissionService(repo, proofs)
		repo.On("ExistsByReferenceNumber", ctx, mock.Anything).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		result, err := svc.Submit(ctx, studentID, validSubmission(), ProofFile{Filename: "proof.bin", Content: pdfProof})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.ProofURL, ".pdf"))
	})

	t.Run("rejected proofs create nothing", func(t *testing.T) {
		cases := []struct {
			name    string
			content []byte
			want    error
		}{
			{"missing", nil, ErrProofMissing},
			{"oversize", append(append([]byte{}, pngProof...), bytes.Repeat([]byte{1}, 2048)...), ErrProofTooLarge},
			{"plain text", []byte("definitely not an image"), ErrProofType},
			{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`), ErrProofType},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := new(MockPaymentRepository)
				proofs := storage.NewMemoryObjectStorage("")
				svc := newSubmissionService(repo, proofs)

				_, err := svc.Submit(ctx, studentID, validSubmission(), ProofFile{Filename: "proof", Content: tc.content})
				assert.ErrorIs(t, err, tc.want)
				assert.True(t, shared.IsDomainError(err, "INVALID_FILE"))
				assert.Zero(t, proofs.Len())
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("invalid amount", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		svc := newSubmissionService(repo, storage.NewMemoryObjectStorage(""))
		for _, amount := range []string{"abc", "0", "-20"} {
			req := validSubmission()
			req.Amount = amount
			if amount == "abc" {
				_, err := svc.Submit(ctx, studentID, req, ProofFile{Content: pngProof})
				assert.True(t, shared.IsDomainError(err, "INVALID_AMOUNT"), amount)
				continue
			}
			repo.On("ExistsByReferenceNumber", ctx, mock.Anything).Return(false, nil).Once()
			_, err := svc.Submit(ctx, studentID, req, ProofFile{Content: pngProof})
			assert.ErrorIs(t, err, payment.ErrNonPositiveAmount, amount)
		}
	})

	t.Run("method other than GCash", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		svc := newSubmissionService(repo, storage.NewMemoryObjectStorage(""))
		repo.On("ExistsByReferenceNumber", ctx, mock.Anything).Return(false, nil)
		req := validSubmission()
		req.PaymentMethod = "Maya"

		_, err := svc.Submit(ctx, studentID, req, ProofFile{Content: pngProof})
		assert.ErrorIs(t, err, payment.ErrUnsupportedMethod)
	})

	t.Run("duplicate reference number", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		proofs := storage.NewMemoryObjectStorage("")
		svc := newSubmissionService(repo, proofs)
		repo.On("ExistsByReferenceNumber", ctx, "GC-778899").Return(true, nil)

		_, err := svc.Submit(ctx, studentID, validSubmission(), ProofFile{Content: pngProof})
		assert.ErrorIs(t, err, payment.ErrReferenceNumberUsed)
		assert.Zero(t, proofs.Len())
	})

	t.Run("storage failure is fatal", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		svc := newSubmissionService(repo, brokenStorage{storage.NewMemoryObjectStorage("")})
		repo.On("ExistsByReferenceNumber", ctx, mock.Anything).Return(false, nil)

		_, err := svc.Submit(ctx, studentID, validSubmission(), ProofFile{Content: pngProof})
		assert.ErrorIs(t, err, ErrProofStoreFailed)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("failed insert removes the uploaded proof", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		proofs := storage.NewMemoryObjectStorage("")
		svc := newSubmissionService(repo, proofs)
		repo.On("ExistsByReferenceNumber", ctx, mock.Anything).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

		_, err := svc.Submit(ctx, studentID, validSubmission(), ProofFile{Content: pngProof})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save payment")
		assert.Zero(t, proofs.Len())
	})
}

func TestSubmissionService_History(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newSubmissionService(repo, storage.NewMemoryObjectStorage(""))
	records := []*payment.Record{pendingRecord(t, uuid.New(), "100")}

	repo.On("FindAll", ctx, mock.MatchedBy(func(f payment.Filter) bool {
		return f.Email == "" && f.Status != nil && *f.Status == payment.StatusPending && f.Page == 2
	})).Return(records, int64(51), nil)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f payment.Filter) bool {
		return f.Email == "juan@example.com"
	})).Return(records, int64(1), nil)

	page, err := svc.History(ctx, HistoryQuery{Page: 2, Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(51), page.Total)
	assert.Equal(t, 50, page.PageSize)
	require.Len(t, page.Payments, 1)

	byEmail, err := svc.HistoryByEmail(ctx, "juan@example.com", HistoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byEmail.Total)
}

func TestSubmissionService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newSubmissionService(repo, storage.NewMemoryObjectStorage("memory://proofs"))
	record := pendingRecord(t, uuid.New(), "100")
	repo.On("FindByTransactionID", ctx, record.TransactionID).Return(record, nil)
	repo.On("FindByTransactionID", ctx, "TRXMISSING").Return(nil, payment.ErrPaymentNotFound)

	resp, err := svc.Get(ctx, record.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, record.ProofURL, resp.ProofDownloadURL)

	_, err = svc.Get(ctx, "TRXMISSING")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestSubmissionService_ExportHistory(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newSubmissionService(repo, storage.NewMemoryObjectStorage(""))
	svc.now = func() time.Time { return time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC) }

	records := []*payment.Record{pendingRecord(t, uuid.New(), "1200"), pendingRecord(t, uuid.New(), "300")}
	repo.On("FindAll", ctx, mock.MatchedBy(func(f payment.Filter) bool { return f.PageSize == 0 })).
		Return(records, int64(2), nil)

	out, err := svc.ExportHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "payment_history_20240801_093000.xlsx", out.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(out.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Payments")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
