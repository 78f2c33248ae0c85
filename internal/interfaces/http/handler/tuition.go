package handler

import (
	"github.com/Miraku17/Exam-Permit/internal/application/tuition"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/dto"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TuitionHandler serves tuition ledgers
type TuitionHandler struct {
	BaseHandler
	ledgerService *tuition.LedgerService
}

// NewTuitionHandler creates a new tuition handler
func NewTuitionHandler(ledgerService *tuition.LedgerService) *TuitionHandler {
	return &TuitionHandler{
		ledgerService: ledgerService,
	}
}

// GetMine godoc
// @Summary      Caller's tuition ledger
// @Tags         tuition
// @Produce      json
// @Success      200 {object} APIResponse[tuition.LedgerResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tuition/me [get]
func (h *TuitionHandler) GetMine(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	h.respondLedger(c, userID)
}

// GetByStudent godoc
// @Summary      Tuition ledger of a student
// @Description  Administrators may read any ledger; students only their own
// @Tags         tuition
// @Produce      json
// @Param        studentId path string true "Student ID"
// @Success      200 {object} APIResponse[tuition.LedgerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tuition/students/{studentId} [get]
func (h *TuitionHandler) GetByStudent(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidInput, "Invalid student ID")
		return
	}
	if studentID != userID && !middleware.IsAdmin(c) {
		h.Forbidden(c, "Access to this ledger is forbidden")
		return
	}
	h.respondLedger(c, studentID)
}

func (h *TuitionHandler) respondLedger(c *gin.Context, studentID uuid.UUID) {
	ledger, err := h.ledgerService.GetByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}
