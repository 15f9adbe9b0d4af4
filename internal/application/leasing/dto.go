package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// CreateLeaseRequest is the request to create a lease
type CreateLeaseRequest struct {
	UnitID     uuid.UUID  `json:"unit_id" binding:"required"`
	StartDate  time.Time  `json:"start_date" binding:"required"`
	EndDate    *time.Time `json:"end_date"`
	RentDueDay int        `json:"rent_due_day" binding:"required,min=1,max=28"`
	AutoRenew  bool       `json:"auto_renew"`
}

// AddPartyRequest is the request to add a party to a lease
type AddPartyRequest struct {
	TenantPartyID      uuid.UUID `json:"tenant_party_id" binding:"required"`
	Name               string    `json:"name" binding:"required"`
	Role               string    `json:"role" binding:"required"`
	PaymentResponsible bool      `json:"payment_responsible"`
}

// AppendTermRequest is the request to append a term to a lease
type AppendTermRequest struct {
	EffectiveFrom            time.Time       `json:"effective_from" binding:"required"`
	EffectiveTo              *time.Time      `json:"effective_to"`
	MonthlyRent              decimal.Decimal `json:"monthly_rent" binding:"required"`
	SecurityDeposit          decimal.Decimal `json:"security_deposit"`
	MaintenanceCharge        decimal.Decimal `json:"maintenance_charge"`
	OtherFixedCharge         decimal.Decimal `json:"other_fixed_charge"`
	EscalationType           string          `json:"escalation_type"`
	EscalationValue          decimal.Decimal `json:"escalation_value"`
	EscalationIntervalMonths int             `json:"escalation_interval_months"`
}

// BillingSettingRequest is the request to configure lease billing
type BillingSettingRequest struct {
	BillingDay            int    `json:"billing_day" binding:"required,min=1,max=28"`
	PaymentTermDays       int    `json:"payment_term_days" binding:"min=0"`
	GenerateAutomatically bool   `json:"generate_automatically"`
	ProrationMethod       string `json:"proration_method" binding:"required"`
	InvoiceNumberPrefix   string `json:"invoice_number_prefix"`
}

// ActivateLeaseRequest carries the optimistic lock version for activation
type ActivateLeaseRequest struct {
	ExpectedVersion int `json:"expected_version" binding:"required,min=1"`
}

// GiveNoticeRequest is the request to record notice to vacate
type GiveNoticeRequest struct {
	NoticeDate time.Time `json:"notice_date" binding:"required"`
}

// EndLeaseRequest is the request to close a lease
type EndLeaseRequest struct {
	EndDate time.Time `json:"end_date" binding:"required"`
}

// CancelLeaseRequest is the request to cancel a draft lease
type CancelLeaseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LeaseListFilter carries list query options
type LeaseListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Status   string `form:"status"`
	UnitID   string `form:"unit_id"`
}

// LeasePartyResponse is the API representation of a lease party
type LeasePartyResponse struct {
	ID                 uuid.UUID `json:"id"`
	TenantPartyID      uuid.UUID `json:"tenant_party_id"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	PaymentResponsible bool      `json:"payment_responsible"`
}

// LeaseTermResponse is the API representation of a lease term
type LeaseTermResponse struct {
	ID                       uuid.UUID       `json:"id"`
	EffectiveFrom            time.Time       `json:"effective_from"`
	EffectiveTo              *time.Time      `json:"effective_to,omitempty"`
	MonthlyRent              decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit          decimal.Decimal `json:"security_deposit"`
	MaintenanceCharge        decimal.Decimal `json:"maintenance_charge"`
	OtherFixedCharge         decimal.Decimal `json:"other_fixed_charge"`
	EscalationType           string          `json:"escalation_type"`
	EscalationValue          decimal.Decimal `json:"escalation_value"`
	EscalationIntervalMonths int             `json:"escalation_interval_months"`
}

// BillingSettingResponse is the API representation of billing settings
type BillingSettingResponse struct {
	BillingDay            int    `json:"billing_day"`
	PaymentTermDays       int    `json:"payment_term_days"`
	GenerateAutomatically bool   `json:"generate_automatically"`
	ProrationMethod       string `json:"proration_method"`
	InvoiceNumberPrefix   string `json:"invoice_number_prefix,omitempty"`
}

// LeaseResponse is the API representation of a lease
type LeaseResponse struct {
	ID          uuid.UUID               `json:"id"`
	LeaseNumber string                  `json:"lease_number"`
	UnitID      uuid.UUID               `json:"unit_id"`
	Status      string                  `json:"status"`
	StartDate   time.Time               `json:"start_date"`
	EndDate     *time.Time              `json:"end_date,omitempty"`
	RentDueDay  int                     `json:"rent_due_day"`
	AutoRenew   bool                    `json:"auto_renew"`
	Version     int                     `json:"version"`
	Parties     []LeasePartyResponse    `json:"parties"`
	Terms       []LeaseTermResponse     `json:"terms"`
	Setting     *BillingSettingResponse `json:"billing_setting,omitempty"`
	ActivatedAt *time.Time              `json:"activated_at,omitempty"`
	NoticeAt    *time.Time              `json:"notice_at,omitempty"`
	EndedAt     *time.Time              `json:"ended_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// LeaseListItemResponse is the compact list representation of a lease
type LeaseListItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeaseNumber string     `json:"lease_number"`
	UnitID      uuid.UUID  `json:"unit_id"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToLeaseResponse converts a lease aggregate to its API representation
func ToLeaseResponse(lease *leasing.Lease) LeaseResponse {
	parties := make([]LeasePartyResponse, 0, len(lease.Parties))
	for _, p := range lease.Parties {
		parties = append(parties, LeasePartyResponse{
			ID:                 p.ID,
			TenantPartyID:      p.TenantPartyID,
			Name:               p.Name,
			Role:               p.Role.String(),
			PaymentResponsible: p.PaymentResponsible,
		})
	}

	terms := make([]LeaseTermResponse, 0, len(lease.Terms))
	for _, t := range lease.Terms {
		terms = append(terms, LeaseTermResponse{
			ID:                       t.ID,
			EffectiveFrom:            t.EffectiveFrom,
			EffectiveTo:              t.EffectiveTo,
			MonthlyRent:              t.MonthlyRent,
			SecurityDeposit:          t.SecurityDeposit,
			MaintenanceCharge:        t.MaintenanceCharge,
			OtherFixedCharge:         t.OtherFixedCharge,
			EscalationType:           string(t.EscalationType),
			EscalationValue:          t.EscalationValue,
			EscalationIntervalMonths: t.EscalationIntervalMonths,
		})
	}

	var setting *BillingSettingResponse
	if lease.Setting != nil {
		setting = &BillingSettingResponse{
			BillingDay:            lease.Setting.BillingDay,
			PaymentTermDays:       lease.Setting.PaymentTermDays,
			GenerateAutomatically: lease.Setting.GenerateAutomatically,
			ProrationMethod:       lease.Setting.ProrationMethod.String(),
			InvoiceNumberPrefix:   lease.Setting.InvoiceNumberPrefix,
		}
	}

	return LeaseResponse{
		ID:          lease.ID,
		LeaseNumber: lease.LeaseNumber,
		UnitID:      lease.UnitID,
		Status:      lease.Status.String(),
		StartDate:   lease.StartDate,
		EndDate:     lease.EndDate,
		RentDueDay:  lease.RentDueDay,
		AutoRenew:   lease.AutoRenew,
		Version:     lease.Version,
		Parties:     parties,
		Terms:       terms,
		Setting:     setting,
		ActivatedAt: lease.ActivatedAt,
		NoticeAt:    lease.NoticeAt,
		EndedAt:     lease.EndedAt,
		CreatedAt:   lease.CreatedAt,
		UpdatedAt:   lease.UpdatedAt,
	}
}

// ToLeaseListItemResponses converts leases to their list representation
func ToLeaseListItemResponses(leases []*leasing.Lease) []LeaseListItemResponse {
	items := make([]LeaseListItemResponse, 0, len(leases))
	for _, l := range leases {
		items = append(items, LeaseListItemResponse{
			ID:          l.ID,
			LeaseNumber: l.LeaseNumber,
			UnitID:      l.UnitID,
			Status:      l.Status.String(),
			StartDate:   l.StartDate,
			EndDate:     l.EndDate,
			CreatedAt:   l.CreatedAt,
		})
	}
	return items
}
