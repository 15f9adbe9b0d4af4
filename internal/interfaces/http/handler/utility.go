package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// UtilityHandler handles utility rate plan and statement API endpoints
type UtilityHandler struct {
	BaseHandler
	utilityService *billingapp.UtilityService
}

// NewUtilityHandler creates a new UtilityHandler
func NewUtilityHandler(utilityService *billingapp.UtilityService) *UtilityHandler {
	return &UtilityHandler{
		utilityService: utilityService,
	}
}

// CreateRatePlan godoc
// @Summary      Create a utility rate plan
// @Description  Create a tiered rate plan; the last slab must be unbounded
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body billingapp.CreateRatePlanRequest true "Rate plan definition"
// @Success      201 {object} dto.Response{data=billingapp.RatePlanResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/rate-plans [post]
func (h *UtilityHandler) CreateRatePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateRatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.utilityService.CreateRatePlan(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// GetRatePlan godoc
// @Summary      Get rate plan by ID
// @Tags         utilities
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Rate plan ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.RatePlanResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/rate-plans/{id} [get]
func (h *UtilityHandler) GetRatePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate plan ID format")
		return
	}

	plan, err := h.utilityService.GetRatePlan(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// ListRatePlans godoc
// @Summary      List rate plans
// @Tags         utilities
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]billingapp.RatePlanResponse,meta=dto.Meta}
// @Router       /billing/rate-plans [get]
func (h *UtilityHandler) ListRatePlans(c *gin.Context) {
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

	result, err := h.utilityService.ListRatePlans(c.Request.Context(), tenantID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// DeactivateRatePlan godoc
// @Summary      Deactivate a rate plan
// @Description  Deactivated plans stay attached to existing statements but cannot be used for new ones
// @Tags         utilities
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Rate plan ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.RatePlanResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/rate-plans/{id}/deactivate [post]
func (h *UtilityHandler) DeactivateRatePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate plan ID format")
		return
	}

	plan, err := h.utilityService.DeactivateRatePlan(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// RecordStatement godoc
// @Summary      Record a utility statement
// @Description  Record meter readings priced against a rate plan, or a direct provider amount, as the next revision for the period
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body billingapp.RecordStatementRequest true "Consumption details"
// @Success      201 {object} dto.Response{data=billingapp.StatementResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/utility-statements [post]
func (h *UtilityHandler) RecordStatement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.RecordStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.utilityService.RecordStatement(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, statement)
}

// FinalizeStatement godoc
// @Summary      Finalize a utility statement
// @Description  Mark one revision as the billable statement for its lease, period and utility; at most one revision per period can be final
// @Tags         utilities
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Statement ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.StatementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/utility-statements/{id}/finalize [post]
func (h *UtilityHandler) FinalizeStatement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.utilityService.FinalizeStatement(c.Request.Context(), tenantID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// ListStatements godoc
// @Summary      List utility statements for a lease
// @Tags         utilities
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        lease_id path string true "Lease ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]billingapp.StatementResponse,meta=dto.Meta}
// @Router       /billing/leases/{lease_id}/utility-statements [get]
func (h *UtilityHandler) ListStatements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("lease_id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.utilityService.ListStatements(c.Request.Context(), tenantID, leaseID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
