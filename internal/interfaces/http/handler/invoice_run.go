package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// InvoiceRunHandler handles batch invoice run API endpoints
type InvoiceRunHandler struct {
	BaseHandler
	runService *billingapp.InvoiceRunService
}

// NewInvoiceRunHandler creates a new InvoiceRunHandler
func NewInvoiceRunHandler(runService *billingapp.InvoiceRunService) *InvoiceRunHandler {
	return &InvoiceRunHandler{
		runService: runService,
	}
}

// CancelRunRequest represents a request to cancel a pending run
// @Description Request body for cancelling an invoice run
type CancelRunRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Started with wrong period"`
}

// Start godoc
// @Summary      Start a batch invoice run
// @Description  Launch invoice generation for every lease due in the billing month
// @Tags         invoice-runs
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body billingapp.StartRunRequest true "Billing period start"
// @Success      202 {object} dto.Response{data=billingapp.InvoiceRunResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoice-runs [post]
func (h *InvoiceRunHandler) Start(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	run, err := h.runService.Start(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Accepted(c, run)
}

// GetByID godoc
// @Summary      Get invoice run by ID
// @Description  Retrieve a run with its per-lease outcomes
// @Tags         invoice-runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.InvoiceRunResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoice-runs/{id} [get]
func (h *InvoiceRunHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	run, err := h.runService.GetByID(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// List godoc
// @Summary      List invoice runs
// @Tags         invoice-runs
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]billingapp.InvoiceRunResponse,meta=dto.Meta}
// @Router       /billing/invoice-runs [get]
func (h *InvoiceRunHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.runService.List(c.Request.Context(), tenantID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Cancel godoc
// @Summary      Cancel a pending invoice run
// @Tags         invoice-runs
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Run ID" format(uuid)
// @Param        request body CancelRunRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=billingapp.InvoiceRunResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoice-runs/{id}/cancel [post]
func (h *InvoiceRunHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid run ID format")
		return
	}

	var req CancelRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	run, err := h.runService.Cancel(c.Request.Context(), tenantID, runID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}
