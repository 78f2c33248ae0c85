package handler

import (
	"github.com/Miraku17/Exam-Permit/internal/application/permit"
	"github.com/gin-gonic/gin"
)

// PermitHandler issues and lists examination permits
type PermitHandler struct {
	BaseHandler
	permitService *permit.Service
}

// NewPermitHandler creates a new permit handler
func NewPermitHandler(permitService *permit.Service) *PermitHandler {
	return &PermitHandler{
		permitService: permitService,
	}
}

// Request godoc
// @Summary      Request an examination permit
// @Description  Issue a permit for a fully paid term and email it to the student
// @Tags         permits
// @Accept       json
// @Produce      json
// @Param        request body permit.RequestPermitInput true "Term and courses"
// @Success      201 {object} APIResponse[permit.RequestResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /permits [post]
func (h *PermitHandler) Request(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	var req permit.RequestPermitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.permitService.Request(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListMine godoc
// @Summary      Caller's permits
// @Tags         permits
// @Produce      json
// @Success      200 {object} APIResponse[[]permit.PermitResponse]
// @Security     BearerAuth
// @Router       /permits/me [get]
func (h *PermitHandler) ListMine(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}
	permits, err := h.permitService.ListPermits(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, permits)
}
