package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	payrollapp "github.com/repairshop/erp/internal/application/payroll"
	"github.com/repairshop/erp/internal/domain/shared"
	"github.com/repairshop/erp/internal/interfaces/http/dto"
)

// SalaryService is the application surface the salary handler depends on
type SalaryService interface {
	Create(ctx context.Context, tenantID, principal uuid.UUID, req payrollapp.SalaryRequest) (*payrollapp.SalaryResponse, error)
	Update(ctx context.Context, tenantID, id, principal uuid.UUID, req payrollapp.SalaryRequest) (*payrollapp.SalaryResponse, error)
	MarkAsPaid(ctx context.Context, tenantID, id, principal uuid.UUID, req payrollapp.MarkPaidRequest) (*payrollapp.SalaryResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*payrollapp.SalaryResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter payrollapp.SalaryListFilter) (*shared.Paginated[payrollapp.SalaryResponse], error)
	Delete(ctx context.Context, tenantID, id, principal uuid.UUID) error
	Calculate(ctx context.Context, tenantID uuid.UUID, req payrollapp.CalculateSalaryRequest) (*payrollapp.BreakdownResponse, error)
	Summary(ctx context.Context, tenantID uuid.UUID, month string, year int) (*payrollapp.SummaryResponse, error)
	Payslip(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error)
	Generate(ctx context.Context, tenantID, principal uuid.UUID, req payrollapp.GenerateRequest) (*payrollapp.GenerateResult, error)
}

// SalaryHandler handles the salary record endpoints
type SalaryHandler struct {
	BaseHandler
	salaryService SalaryService
}

// NewSalaryHandler creates a new SalaryHandler. debug adds internal error
// details to 500 responses.
func NewSalaryHandler(salaryService SalaryService, debug bool) *SalaryHandler {
	return &SalaryHandler{
		BaseHandler:   BaseHandler{debug: debug},
		salaryService: salaryService,
	}
}

// SummaryQuery selects the period of a summary
type SummaryQuery struct {
	Month string `form:"month" binding:"required"`
	Year  int    `form:"year" binding:"required"`
}

// RegisterRoutes mounts the salary endpoints on an authenticated group.
// Static segments are registered before :id so they never match as IDs.
func (h *SalaryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	salaries := rg.Group("/salaries")
	salaries.GET("", h.List)
	salaries.POST("", h.Create)
	salaries.POST("/generate", h.Generate)
	salaries.POST("/calculate", h.Calculate)
	salaries.GET("/summary", h.Summary)
	salaries.GET("/:id", h.GetByID)
	salaries.PUT("/:id", h.Update)
	salaries.DELETE("/:id", h.Delete)
	salaries.POST("/:id/mark-paid", h.MarkAsPaid)
	salaries.GET("/:id/payslip", h.Payslip)
}

// Create stores a new salary record
func (h *SalaryHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req payrollapp.SalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	salary, err := h.salaryService.Create(c.Request.Context(), p.TenantID, p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, salary)
}

// Update recomputes and stores an existing salary record
func (h *SalaryHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req payrollapp.SalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	salary, err := h.salaryService.Update(c.Request.Context(), p.TenantID, id, p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, salary)
}

// MarkAsPaid settles a salary record. The body is optional.
func (h *SalaryHandler) MarkAsPaid(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req payrollapp.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}

	salary, err := h.salaryService.MarkAsPaid(c.Request.Context(), p.TenantID, id, p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageResponse("Salary marked as paid", salary))
}

// GetByID returns one salary record
func (h *SalaryHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	salary, err := h.salaryService.GetByID(c.Request.Context(), p.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, salary)
}

// List returns a filtered page of salary records
func (h *SalaryHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter payrollapp.SalaryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.salaryService.List(c.Request.Context(), p.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Delete soft-deletes a salary record
func (h *SalaryHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.salaryService.Delete(c.Request.Context(), p.TenantID, id, p.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMessageResponse("Salary record deleted", nil))
}

// Calculate previews a salary breakdown without storing it
func (h *SalaryHandler) Calculate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req payrollapp.CalculateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	breakdown, err := h.salaryService.Calculate(c.Request.Context(), p.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}

// Summary aggregates one payroll period
func (h *SalaryHandler) Summary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	summary, err := h.salaryService.Summary(c.Request.Context(), p.TenantID, q.Month, q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Payslip streams the PDF payslip of a salary record
func (h *SalaryHandler) Payslip(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	pdf, filename, err := h.salaryService.Payslip(c.Request.Context(), p.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Generate creates pending salaries for every active employee of a period
func (h *SalaryHandler) Generate(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req payrollapp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.salaryService.Generate(c.Request.Context(), p.TenantID, p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GenerateResponse{
		Success: true,
		Message: result.Message,
		Count:   result.Count,
		Skipped: result.Skipped,
		Errors:  result.Errors,
		Warning: result.Warning,
	})
}

var _ SalaryService = (*payrollapp.SalaryService)(nil)
