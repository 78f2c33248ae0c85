package payment

import (
	"bytes"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		StudentID:       uuid.New(),
		FullName:        " Juan Dela Cruz ",
		MobileNumber:    "09171234567",
		Email:           "Juan@Example.com",
		ReferenceNumber: "REF-0001",
		Amount:          valueobject.NewMoneyFromInt(3000),
		ProofURL:        "https://bucket.s3.amazonaws.com/payment-proofs/a.png",
	}
}

func TestNewRecord(t *testing.T) {
	t.Run("creates pending record", func(t *testing.T) {
		r, err := NewRecord("TRXABC", validSubmission())
		require.NoError(t, err)
		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, MethodGCash, r.Method)
		assert.Equal(t, "juan@example.com", r.Email)
		assert.Equal(t, "Juan Dela Cruz", r.FullName)
		assert.True(t, r.AppliedAmount.IsZero())
		assert.Nil(t, r.VerifiedAt)
		assert.False(t, r.SubmittedAt.IsZero())

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePaymentSubmitted, events[0].EventType())
	})

	tests := []struct {
		name   string
		mutate func(*Submission)
		want   error
	}{
		{"zero amount", func(s *Submission) { s.Amount = valueobject.Zero() }, ErrNonPositiveAmount},
		{"negative amount", func(s *Submission) { s.Amount = valueobject.NewMoneyFromInt(-5) }, ErrNonPositiveAmount},
		{"other method", func(s *Submission) { s.Method = "Card" }, ErrUnsupportedMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)
			_, err := NewRecord("TRXABC", s)
			assert.True(t, errors.Is(err, tt.want))
		})
	}

	required := map[string]func(*Submission){
		"student":   func(s *Submission) { s.StudentID = uuid.Nil },
		"full name": func(s *Submission) { s.FullName = " " },
		"mobile":    func(s *Submission) { s.MobileNumber = "" },
		"email":     func(s *Submission) { s.Email = "" },
		"reference": func(s *Submission) { s.ReferenceNumber = "" },
		"proof":     func(s *Submission) { s.ProofURL = "" },
	}
	for name, mutate := range required {
		t.Run("missing "+name, func(t *testing.T) {
			s := validSubmission()
			mutate(&s)
			_, err := NewRecord("TRXABC", s)
			assert.Error(t, err)
		})
	}

	t.Run("missing transaction id", func(t *testing.T) {
		_, err := NewRecord("", validSubmission())
		assert.Error(t, err)
	})
}

func TestRecord_Transitions(t *testing.T) {
	admin := uuid.New()
	at := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)

	t.Run("accept records settlement", func(t *testing.T) {
		r, err := NewRecord("TRX1", validSubmission())
		require.NoError(t, err)
		require.NoError(t, r.Accept(admin, at, valueobject.NewMoneyFromInt(2500), valueobject.NewMoneyFromInt(500)))

		assert.Equal(t, StatusAccepted, r.Status)
		assert.True(t, r.Status.IsTerminal())
		assert.Equal(t, at, *r.VerifiedAt)
		assert.Equal(t, admin, *r.VerifiedBy)
		assert.Equal(t, "2500.00", r.AppliedAmount.String())
		assert.Equal(t, "500.00", r.UnappliedAmount.String())
	})

	t.Run("reject", func(t *testing.T) {
		r, err := NewRecord("TRX2", validSubmission())
		require.NoError(t, err)
		require.NoError(t, r.Reject(admin, at))
		assert.Equal(t, StatusRejected, r.Status)
	})

	t.Run("terminal states refuse further transitions", func(t *testing.T) {
		r, err := NewRecord("TRX3", validSubmission())
		require.NoError(t, err)
		require.NoError(t, r.Reject(admin, at))

		assert.ErrorIs(t, r.Accept(admin, at, valueobject.Zero(), valueobject.Zero()), ErrAlreadyVerified)
		assert.ErrorIs(t, r.Reject(admin, at), ErrAlreadyVerified)
		assert.Equal(t, StatusRejected, r.Status)
	})
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, Status("void").IsValid())
}

func TestTransactionIDGenerator(t *testing.T) {
	t.Run("fixed clock and entropy", func(t *testing.T) {
		now := func() time.Time { return time.UnixMilli(1700000000000) }
		gen := NewTransactionIDGeneratorWith(now, bytes.NewReader([]byte{0xab, 0x01}))
		id, err := gen.Generate()
		require.NoError(t, err)
		// 1700000000000 in base36 is "loyw3v28"
		assert.Equal(t, "TRXLOYW3V28AB01", id)
	})

	t.Run("default generator shape", func(t *testing.T) {
		id, err := NewTransactionIDGenerator().Generate()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^TRX[0-9A-Z]+[0-9A-F]{4}$`), id)
	})

	t.Run("entropy failure", func(t *testing.T) {
		gen := NewTransactionIDGeneratorWith(time.Now, bytes.NewReader(nil))
		_, err := gen.Generate()
		assert.Error(t, err)
	})
}
