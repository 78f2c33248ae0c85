package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Miraku17/Exam-Permit/internal/application/payment"
	"github.com/Miraku17/Exam-Permit/internal/domain/identity"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/logger"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/dto"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// ProofFormField is the multipart field carrying the proof of payment
const ProofFormField = "proofOfPayment"

// PaymentHandler handles payment submission, history and verification
type PaymentHandler struct {
	BaseHandler
	submissions   *payment.SubmissionService
	verifications *payment.VerificationService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(submissions *payment.SubmissionService, verifications *payment.VerificationService) *PaymentHandler {
	return &PaymentHandler{
		submissions:   submissions,
		verifications: verifications,
	}
}

// Submit godoc
// @Summary      Submit a payment
// @Description  Report a GCash payment with its proof; it stays pending until verified
// @Tags         payments
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName        formData string true  "Payer name"
// @Param        mobileNumber    formData string true  "Mobile number"
// @Param        email           formData string true  "Email"
// @Param        referenceNumber formData string true  "GCash reference number"
// @Param        amount          formData string true  "Amount"
// @Param        paymentMethod   formData string false "Payment method"
// @Param        proofOfPayment  formData file   true  "JPEG, PNG or PDF proof"
// @Success      201 {object} APIResponse[payment.SubmitResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	var req payment.SubmitPaymentRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		h.ValidationError(c, err)
		return
	}

	proof, err := h.readProof(c)
	if err != nil {
		logger.GetGinLogger(c).Warn("Failed to read proof upload", zap.Error(err))
		h.BadRequest(c, dto.ErrCodeInvalidFile, "Failed to read proof of payment")
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), userID, req, proof)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// readProof reads at most one byte past the upload limit so the service can
// refuse oversize files without buffering them whole. A missing file yields
// an empty proof.
func (h *PaymentHandler) readProof(c *gin.Context) (payment.ProofFile, error) {
	header, err := c.FormFile(ProofFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return payment.ProofFile{}, nil
		}
		return payment.ProofFile{}, err
	}
	f, err := header.Open()
	if err != nil {
		return payment.ProofFile{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.submissions.MaxUploadSize()+1))
	if err != nil {
		return payment.ProofFile{}, err
	}
	return payment.ProofFile{Filename: header.Filename, Content: content}, nil
}

// History godoc
// @Summary      Payment history
// @Tags         payments
// @Produce      json
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Param        status    query string false "pending, accepted or rejected"
// @Success      200 {object} APIResponse[[]payment.PaymentResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	var query payment.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.submissions.History(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Payments, result.Total, result.Page, result.PageSize)
}

// HistoryByEmail godoc
// @Summary      Payment history of an email
// @Description  Students may only read the history of their own email
// @Tags         payments
// @Produce      json
// @Param        email path string true "Email"
// @Success      200 {object} APIResponse[[]payment.PaymentResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/history/{email} [get]
func (h *PaymentHandler) HistoryByEmail(c *gin.Context) {
	email := identity.NormalizeEmail(c.Param("email"))
	if !middleware.IsAdmin(c) {
		claims := middleware.GetJWTClaims(c)
		if claims == nil || identity.NormalizeEmail(claims.Email) != email {
			h.Forbidden(c, "Access to this payment history is forbidden")
			return
		}
	}
	var query payment.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.submissions.HistoryByEmail(c.Request.Context(), email, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Payments, result.Total, result.Page, result.PageSize)
}

// ExportHistory godoc
// @Summary      Export payment history
// @Tags         payments
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/history/export [get]
func (h *PaymentHandler) ExportHistory(c *gin.Context) {
	out, err := h.submissions.ExportHistory(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Content)
}

// Get godoc
// @Summary      Get a payment
// @Description  Administrators may read any payment; students only their own
// @Tags         payments
// @Produce      json
// @Param        transactionId path string true "Transaction ID"
// @Success      200 {object} APIResponse[payment.PaymentResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{transactionId} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	resp, err := h.submissions.Get(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.StudentID != userID && !middleware.IsAdmin(c) {
		h.Forbidden(c, "Access to this payment is forbidden")
		return
	}
	h.Success(c, resp)
}

// Accept godoc
// @Summary      Accept a payment
// @Description  Credit the payment to the student's ledger, earliest term first, and email a receipt
// @Tags         payments
// @Produce      json
// @Param        transactionId path string true "Transaction ID"
// @Success      200 {object} APIResponse[payment.VerificationResult]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{transactionId}/accept [post]
func (h *PaymentHandler) Accept(c *gin.Context) {
	adminID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	result, err := h.verifications.Accept(c.Request.Context(), c.Param("transactionId"), adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reject godoc
// @Summary      Reject a payment
// @Tags         payments
// @Produce      json
// @Param        transactionId path string true "Transaction ID"
// @Success      200 {object} APIResponse[payment.VerificationResult]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{transactionId}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	adminID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	result, err := h.verifications.Reject(c.Request.Context(), c.Param("transactionId"), adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
