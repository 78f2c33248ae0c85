package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T, txID, reference, email string, amount string) *payment.Record {
	t.Helper()
	r, err := payment.NewRecord(txID, payment.Submission{
		StudentID:       uuid.New(),
		FullName:        "Juan Dela Cruz",
		MobileNumber:    "09171234567",
		Email:           email,
		ReferenceNumber: reference,
		Amount:          money(amount),
		Method:          payment.MethodGCash,
		ProofURL:        "https://bucket.example/payment-proofs/" + reference + ".png",
	})
	require.NoError(t, err)
	return r
}

func TestGormPaymentRepository_CreateAndFind(t *testing.T) {
	repo := NewGormPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	record := newTestRecord(t, "TRXA1", "REF-1", "Juan@Example.com", "1500.25")
	require.NoError(t, repo.Create(ctx, record))

	found, err := repo.FindByTransactionID(ctx, "TRXA1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, "juan@example.com", found.Email)
	assert.True(t, found.Amount.Equals(money("1500.25")))
	assert.Equal(t, payment.StatusPending, found.Status)
	assert.Nil(t, found.VerifiedAt)

	_, err = repo.FindByTransactionID(ctx, "TRXNOPE")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)

	exists, err := repo.ExistsByReferenceNumber(ctx, "REF-1")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, newTestRecord(t, "TRXA2", "REF-1", "other@example.com", "10"))
	assert.ErrorIs(t, err, payment.ErrReferenceNumberUsed)
}

func TestGormPaymentRepository_TransitionFromPending(t *testing.T) {
	repo := NewGormPaymentRepository(setupTestDB(t))
	ctx := context.Background()
	admin := uuid.New()
	at := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTestRecord(t, "TRXB1", "REF-B1", "b@example.com", "500")))

	require.NoError(t, repo.TransitionFromPending(ctx, "TRXB1", payment.StatusAccepted, admin, at))

	t.Run("second flip conflicts", func(t *testing.T) {
		err := repo.TransitionFromPending(ctx, "TRXB1", payment.StatusRejected, admin, at)
		assert.ErrorIs(t, err, payment.ErrAlreadyVerified)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := repo.TransitionFromPending(ctx, "TRXNOPE", payment.StatusAccepted, admin, at)
		assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	})

	t.Run("pending is not a target", func(t *testing.T) {
		err := repo.TransitionFromPending(ctx, "TRXB1", payment.StatusPending, admin, at)
		assert.Error(t, err)
	})

	t.Run("settlement is stored", func(t *testing.T) {
		require.NoError(t, repo.RecordSettlement(ctx, "TRXB1", money("400"), money("100")))

		found, err := repo.FindByTransactionID(ctx, "TRXB1")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusAccepted, found.Status)
		require.NotNil(t, found.VerifiedBy)
		assert.Equal(t, admin, *found.VerifiedBy)
		assert.True(t, found.AppliedAmount.Equals(money("400")))
		assert.True(t, found.UnappliedAmount.Equals(money("100")))
		assert.Equal(t, 2, found.Version)
	})
}

func TestGormPaymentRepository_FindAll(t *testing.T) {
	repo := NewGormPaymentRepository(setupTestDB(t))
	ctx := context.Background()

	for i, ref := range []string{"R1", "R2", "R3"} {
		r := newTestRecord(t, "TRXC"+ref, ref, "c@example.com", "100")
		r.CreatedAt = time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Create(ctx, r))
	}
	require.NoError(t, repo.Create(ctx, newTestRecord(t, "TRXD1", "D1", "d@example.com", "100")))

	t.Run("by email newest first", func(t *testing.T) {
		filter := payment.NewFilter()
		filter.Email = "C@example.com"
		records, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, records, 3)
		assert.Equal(t, "TRXCR3", records[0].TransactionID)
		assert.Equal(t, "TRXCR1", records[2].TransactionID)
	})

	t.Run("paging", func(t *testing.T) {
		filter := payment.NewFilter()
		filter.PageSize = 2
		filter.Page = 2
		records, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, records, 2)
	})

	t.Run("by status", func(t *testing.T) {
		status := payment.StatusAccepted
		filter := payment.NewFilter()
		filter.Status = &status
		records, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, records)
	})
}

func TestGormPaymentRepository_ConditionalUpdateSQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepository(db)
	admin := uuid.New()
	at := time.Now()

	t.Run("guards on pending status", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "payment_records" SET "status"=\$1,"updated_at"=\$2,"verified_at"=\$3,"verified_by"=\$4,"version"=version \+ 1 WHERE transaction_id = \$5 AND status = \$6`).
			WithArgs(payment.StatusAccepted, at, at, admin, "TRX1", payment.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.TransitionFromPending(context.Background(), "TRX1", payment.StatusAccepted, admin, at))
	})

	t.Run("zero rows on an existing record conflicts", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "payment_records" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_records" WHERE transaction_id = \$1`).
			WithArgs("TRX1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.TransitionFromPending(context.Background(), "TRX1", payment.StatusRejected, admin, at)
		assert.ErrorIs(t, err, payment.ErrAlreadyVerified)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
