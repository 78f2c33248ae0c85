package handler

import (
	"github.com/Miraku17/Exam-Permit/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the program table and semester plans
type CatalogHandler struct {
	BaseHandler
	catalogService *catalog.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListPrograms godoc
// @Summary      List programs
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalog.ProgramResponse]
// @Router       /catalog/programs [get]
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	h.Success(c, h.catalogService.ListPrograms(c.Request.Context()))
}

// ListPlans godoc
// @Summary      List semester plans
// @Description  Plans of a program, narrowed by year and semester when given
// @Tags         catalog
// @Produce      json
// @Param        program  query string true  "Program code"
// @Param        year     query int    false "Year level"
// @Param        semester query int    false "Semester"
// @Success      200 {object} APIResponse[[]catalog.SemesterPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/plans [get]
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	var query catalog.ListPlansQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	plans, err := h.catalogService.ListPlans(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

// Seed godoc
// @Summary      Seed semester plans
// @Description  Rebuild the plans of one program, or of every program with "all"
// @Tags         catalog
// @Produce      json
// @Param        program path string true "Program code or all"
// @Success      200 {object} APIResponse[catalog.SeedResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /catalog/seed/{program} [post]
func (h *CatalogHandler) Seed(c *gin.Context) {
	result, err := h.catalogService.Seed(c.Request.Context(), c.Param("program"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
