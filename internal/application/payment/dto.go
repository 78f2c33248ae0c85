package payment

import (
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/google/uuid"
)

// SubmitPaymentRequest is the form a student sends with a proof of payment
type SubmitPaymentRequest struct {
	FullName        string `form:"fullName" binding:"required,min=3,max=100"`
	MobileNumber    string `form:"mobileNumber" binding:"required,min=7,max=20"`
	Email           string `form:"email" binding:"required,email"`
	ReferenceNumber string `form:"referenceNumber" binding:"required,max=64"`
	Amount          string `form:"amount" binding:"required,money"`
	PaymentMethod   string `form:"paymentMethod" binding:"omitempty,eq=GCash"`
}

// ProofFile is the uploaded proof of payment
type ProofFile struct {
	Filename string
	Content  []byte
}

// SubmitResult is returned after a payment was recorded
type SubmitResult struct {
	TransactionID string         `json:"transaction_id"`
	Status        payment.Status `json:"status"`
	ProofURL      string         `json:"proof_url"`
	SubmittedAt   time.Time      `json:"submitted_at"`
}

// HistoryQuery filters payment history
type HistoryQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	Status   string `form:"status" binding:"omitempty,oneof=pending accepted rejected"`
}

// ToFilter converts the query to a repository filter
func (q HistoryQuery) ToFilter() payment.Filter {
	f := payment.NewFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	if q.Status != "" {
		status := payment.Status(q.Status)
		f.Status = &status
	}
	return f
}

// PaymentResponse represents a payment record in API responses
type PaymentResponse struct {
	TransactionID    string            `json:"transaction_id"`
	StudentID        uuid.UUID         `json:"student_id"`
	FullName         string            `json:"fullname"`
	MobileNumber     string            `json:"mobile_number"`
	Email            string            `json:"email"`
	ReferenceNumber  string            `json:"reference_number"`
	Amount           valueobject.Money `json:"amount"`
	PaymentMethod    string            `json:"payment_method"`
	ProofURL         string            `json:"proof_url"`
	ProofDownloadURL string            `json:"proof_download_url,omitempty"`
	Status           payment.Status    `json:"status"`
	SubmittedAt      time.Time         `json:"submitted_at"`
	VerifiedAt       *time.Time        `json:"verified_at,omitempty"`
	VerifiedBy       *uuid.UUID        `json:"verified_by,omitempty"`
	AppliedAmount    valueobject.Money `json:"applied_amount"`
	UnappliedAmount  valueobject.Money `json:"unapplied_amount"`
}

// HistoryResponse is one page of payment history
type HistoryResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ToPaymentResponse converts a domain record
func ToPaymentResponse(r *payment.Record) PaymentResponse {
	return PaymentResponse{
		TransactionID:   r.TransactionID,
		StudentID:       r.StudentID,
		FullName:        r.FullName,
		MobileNumber:    r.MobileNumber,
		Email:           r.Email,
		ReferenceNumber: r.ReferenceNumber,
		Amount:          r.Amount,
		PaymentMethod:   string(r.Method),
		ProofURL:        r.ProofURL,
		Status:          r.Status,
		SubmittedAt:     r.SubmittedAt,
		VerifiedAt:      r.VerifiedAt,
		VerifiedBy:      r.VerifiedBy,
		AppliedAmount:   r.AppliedAmount,
		UnappliedAmount: r.UnappliedAmount,
	}
}

// ToPaymentResponses converts a list of records
func ToPaymentResponses(records []*payment.Record) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToPaymentResponse(r))
	}
	return out
}

// AllocationLine is one term credited by an accepted payment
type AllocationLine struct {
	SemesterID   uuid.UUID         `json:"semester_id"`
	Year         int               `json:"year"`
	Semester     int               `json:"semester"`
	TermID       uuid.UUID         `json:"term_id"`
	TermName     string            `json:"term_name"`
	Applied      valueobject.Money `json:"applied"`
	BalanceAfter valueobject.Money `json:"balance_after"`
}

// VerificationResult reports the outcome of accepting or rejecting a payment
type VerificationResult struct {
	TransactionID      string            `json:"transaction_id"`
	Status             payment.Status    `json:"status"`
	Applied            valueobject.Money `json:"applied"`
	Unapplied          valueobject.Money `json:"unapplied"`
	Allocations        []AllocationLine  `json:"allocations"`
	OutstandingBalance valueobject.Money `json:"outstanding_balance"`
	FullySettled       bool              `json:"fully_settled"`
	ReceiptSent        bool              `json:"receipt_sent"`
	ReceiptError       string            `json:"receipt_error,omitempty"`
}

// ToAllocationLines converts engine allocations
func ToAllocationLines(allocations []tuition.TermAllocation) []AllocationLine {
	out := make([]AllocationLine, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, AllocationLine{
			SemesterID:   a.SemesterID,
			Year:         a.Year,
			Semester:     a.Semester,
			TermID:       a.TermID,
			TermName:     a.TermName,
			Applied:      a.Applied,
			BalanceAfter: a.BalanceAfter,
		})
	}
	return out
}
