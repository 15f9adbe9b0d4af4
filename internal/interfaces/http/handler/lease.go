package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/propman/backend/internal/application/leasing"
)

// LeaseHandler handles lease-related API endpoints
type LeaseHandler struct {
	BaseHandler
	leaseService *leasingapp.LeaseService
}

// NewLeaseHandler creates a new LeaseHandler
func NewLeaseHandler(leaseService *leasingapp.LeaseService) *LeaseHandler {
	return &LeaseHandler{
		leaseService: leaseService,
	}
}

// Create godoc
// @Summary      Create a new lease
// @Description  Create a draft lease for a unit
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body leasingapp.CreateLeaseRequest true "Lease creation request"
// @Success      201 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases [post]
func (h *LeaseHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req leasingapp.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lease)
}

// GetByID godoc
// @Summary      Get lease by ID
// @Description  Retrieve a lease with its parties, terms and billing settings
// @Tags         leases
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id} [get]
func (h *LeaseHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	lease, err := h.leaseService.GetByID(c.Request.Context(), tenantID, leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// List godoc
// @Summary      List leases
// @Description  Retrieve a paginated list of leases with optional filtering
// @Tags         leases
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        search query string false "Search term (lease number)"
// @Param        unit_id query string false "Unit ID" format(uuid)
// @Param        status query string false "Lease status" Enums(DRAFT, ACTIVE, NOTICE_GIVEN, ENDED, CANCELLED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]leasingapp.LeaseListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases [get]
func (h *LeaseHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := leasingapp.LeaseListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.leaseService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// AddParty godoc
// @Summary      Add a party to a lease
// @Description  Attach a tenant party to a draft lease
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.AddPartyRequest true "Party details"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/parties [post]
func (h *LeaseHandler) AddParty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.AddPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.AddParty(c.Request.Context(), tenantID, leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// RemoveParty godoc
// @Summary      Remove a party from a lease
// @Tags         leases
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        party_id path string true "Party ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/parties/{party_id} [delete]
func (h *LeaseHandler) RemoveParty(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	partyID, err := uuid.Parse(c.Param("party_id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	if err := h.leaseService.RemoveParty(c.Request.Context(), tenantID, leaseID, partyID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AppendTerm godoc
// @Summary      Append a financial term to a lease
// @Description  Append a new term; terms are append-only and must not overlap
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.AppendTermRequest true "Term details"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/terms [post]
func (h *LeaseHandler) AppendTerm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.AppendTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.AppendTerm(c.Request.Context(), tenantID, leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// SetBillingSetting godoc
// @Summary      Configure lease billing
// @Description  Set the billing day, payment terms and proration method
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.BillingSettingRequest true "Billing settings"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/billing-setting [put]
func (h *LeaseHandler) SetBillingSetting(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.BillingSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.SetBillingSetting(c.Request.Context(), tenantID, leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// Activate godoc
// @Summary      Activate a lease
// @Description  Run activation checks and transition the lease from DRAFT to ACTIVE
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.ActivateLeaseRequest true "Expected aggregate version"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/activate [post]
func (h *LeaseHandler) Activate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.ActivateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.Activate(c.Request.Context(), tenantID, leaseID, req.ExpectedVersion)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// GiveNotice godoc
// @Summary      Record notice to vacate
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.GiveNoticeRequest true "Notice date"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/notice [post]
func (h *LeaseHandler) GiveNotice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.GiveNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.GiveNotice(c.Request.Context(), tenantID, leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// End godoc
// @Summary      End a lease
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.EndLeaseRequest true "End date"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/end [post]
func (h *LeaseHandler) End(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.EndLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.End(c.Request.Context(), tenantID, leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// Cancel godoc
// @Summary      Cancel a draft lease
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body leasingapp.CancelLeaseRequest true "Cancellation reason"
// @Success      200 {object} dto.Response{data=leasingapp.LeaseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leasing/leases/{id}/cancel [post]
func (h *LeaseHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req leasingapp.CancelLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lease, err := h.leaseService.Cancel(c.Request.Context(), tenantID, leaseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}
