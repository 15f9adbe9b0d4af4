package billing

import "github.com/propman/backend/internal/domain/shared"

// Billing domain errors
var (
	ErrInvalidProrationRange = shared.NewDomainError("INVALID_PRORATION_RANGE", "Proration range is empty or inverted")
	ErrInvalidRatePlan       = shared.NewDomainError("INVALID_RATE_PLAN", "Utility rate plan slabs are not valid")
	ErrInvalidInvoiceState   = shared.NewDomainError("INVALID_INVOICE_STATE", "Invoice state does not allow this operation")
	ErrInvalidRunState       = shared.NewDomainError("INVALID_RUN_STATE", "Invoice run state does not allow this operation")
	ErrEmptyInvoice          = shared.NewDomainError("EMPTY_INVOICE", "Invoice must contain at least one line")
	ErrNegativeConsumption   = shared.NewDomainError("NEGATIVE_CONSUMPTION", "Utility consumption cannot be negative")
	ErrOverpayment           = shared.NewDomainError("OVERPAYMENT", "Payment exceeds the invoice outstanding balance")
	ErrDuplicateRun          = shared.NewDomainError("DUPLICATE_RUN", "An invoice run for this period is already in progress")
	ErrInvoiceExists         = shared.NewDomainError("INVOICE_EXISTS", "An invoice already covers this lease and billing period")
	ErrNothingToBill         = shared.NewDomainError("NOTHING_TO_BILL", "The lease has no billable days in this period")
	ErrStatementNotFinal     = shared.NewDomainError("STATEMENT_NOT_FINAL", "Utility statement must be finalized before it can be billed")
	ErrStatementFinalExists  = shared.NewDomainError("STATEMENT_FINAL_EXISTS", "A finalized statement already covers this lease, period and utility")
)
